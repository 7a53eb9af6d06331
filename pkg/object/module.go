// Package object models one relocatable object module: the "LNK" container
// around a record stream, plus structured views folded from the records.
//
// A parsed Module keeps the exact record sequence it was decoded from, so
// Serialize reproduces the input byte for byte. The folded views (sections,
// symbols, relocations) are projections for readers; mutating them does not
// change what Serialize writes.
package object

import (
	"bytes"
	"fmt"

	"github.com/ttkb-oss/psy-k/pkg/codec"
	"github.com/ttkb-oss/psy-k/pkg/expr"
)

// Magic identifies an object module file.
var Magic = []byte("LNK")

// Version is the only container version this package reads and writes.
const Version uint8 = 2

// ModuleError reports a structurally invalid module. RecordIndex is -1 for
// container-level failures (bad magic, bad version, truncated header).
type ModuleError struct {
	RecordIndex int
	Offset      int
	Msg         string
}

func (e *ModuleError) Error() string {
	if e.RecordIndex < 0 {
		return fmt.Sprintf("object: %s at offset %d", e.Msg, e.Offset)
	}
	return fmt.Sprintf("object: record %d: %s at offset %d", e.RecordIndex, e.Msg, e.Offset)
}

// SymbolKind classifies entries in a module's symbol list.
type SymbolKind uint8

const (
	SymbolExport SymbolKind = iota // XDEF
	SymbolImport                   // XREF
	SymbolBSS                      // XBSS
	SymbolLocal                    // local, not in the external table
)

// Symbol is one name from the module's symbol records, in insertion order.
type Symbol struct {
	Kind    SymbolKind
	Number  uint16
	Section uint16
	Offset  uint32 // definition offset; unused for imports
	Size    uint32 // XBSS reservation size
	Name    string
}

// Section is the folded view of one section: declared identity plus the
// initialized content and reserved space accumulated by code and bss
// records while the section was current.
type Section struct {
	ID        uint16
	Group     uint16
	Alignment uint8
	Name      string

	// Data holds initialized bytes in encounter order. Reserved holds the
	// bss byte count. Patch records carry their own target offsets, so
	// neither projection depends on a computed write cursor.
	Data     []byte
	Reserved uint32
}

// Relocation is a patch bound to the section that was current when it was
// decoded.
type Relocation struct {
	Section uint16
	Type    uint8
	Offset  uint16
	Expr    expr.Expression
}

// Module is one parsed object module.
type Module struct {
	Version uint8

	// Records is the full decoded stream. Serialize writes exactly this.
	Records []codec.Record

	// Name is the module's own name, taken from its first file-index
	// record. Empty when the module carries no debug file table.
	Name string

	// CPU is the last processor declaration seen, or CPUM68000 when the
	// module never declares one.
	CPU uint8

	Sections    []*Section
	Symbols     []Symbol
	Relocations []Relocation

	violations []string
}

// Violations lists structural oddities that do not prevent parsing, such
// as duplicate export names. Legacy tools emitted these; surfacing them
// beats rejecting archives that shipped.
func (m *Module) Violations() []string { return m.violations }

// Section returns the folded section with the given format id, or nil.
func (m *Module) Section(id uint16) *Section {
	for _, s := range m.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ExportedSymbols returns the names this module contributes to a library's
// export table: xdef and xbss names, in record order.
func (m *Module) ExportedSymbols() []string {
	var names []string
	for _, r := range m.Records {
		switch rec := r.(type) {
		case codec.XDEF:
			names = append(names, rec.Name)
		case codec.XBSS:
			names = append(names, rec.Name)
		}
	}
	return names
}

// Serialize encodes the module. For a module produced by Parse the result
// is identical to the input bytes.
func (m *Module) Serialize() []byte {
	buf := make([]byte, 0, 4+16*len(m.Records))
	buf = append(buf, Magic...)
	buf = append(buf, m.Version)
	for _, r := range m.Records {
		buf = codec.AppendRecord(buf, r)
	}
	return buf
}

// New builds a module from a record sequence, folding the same views Parse
// would. The records must form a valid stream ending in a single End.
func New(records []codec.Record) (*Module, error) {
	data := codec.EncodeRecords(records)
	buf := make([]byte, 0, 4+len(data))
	buf = append(buf, Magic...)
	buf = append(buf, Version)
	return Parse(append(buf, data...))
}

// Parse decodes an object module.
func Parse(data []byte) (*Module, error) {
	if len(data) < 4 {
		return nil, &ModuleError{RecordIndex: -1, Offset: 0, Msg: "truncated header"}
	}
	if !bytes.Equal(data[:3], Magic) {
		return nil, &ModuleError{RecordIndex: -1, Offset: 0, Msg: fmt.Sprintf("bad magic % x", data[:3])}
	}
	if data[3] != Version {
		return nil, &ModuleError{RecordIndex: -1, Offset: 3, Msg: fmt.Sprintf("unsupported version %d", data[3])}
	}

	m := &Module{Version: data[3]}
	sections := make(map[uint16]*Section)
	exports := make(map[string]bool)

	// section returns the folded section for id, creating a placeholder
	// when a switch or symbol arrives before the section's definition.
	section := func(id uint16) *Section {
		if s, ok := sections[id]; ok {
			return s
		}
		s := &Section{ID: id}
		sections[id] = s
		m.Sections = append(m.Sections, s)
		return s
	}

	var current *Section
	off := 4
	for {
		if off >= len(data) {
			return nil, &ModuleError{RecordIndex: len(m.Records), Offset: off, Msg: "stream ends without end record"}
		}
		recOff := off
		rec, next, err := codec.DecodeRecord(data, off)
		if err != nil {
			return nil, &ModuleError{RecordIndex: len(m.Records), Offset: recOff, Msg: err.Error()}
		}
		idx := len(m.Records)
		m.Records = append(m.Records, rec)
		off = next

		switch r := rec.(type) {
		case codec.End:
			if off != len(data) {
				return nil, &ModuleError{RecordIndex: idx, Offset: off, Msg: fmt.Sprintf("%d bytes after end record", len(data)-off)}
			}
			return m, nil

		case codec.SetCPU:
			m.CPU = r.Type

		case codec.FileIndex:
			if m.Name == "" {
				m.Name = r.Name
			}

		case codec.SectionDef:
			s := section(r.Section)
			s.Group = r.Group
			s.Alignment = r.Align
			s.Name = r.Name

		case codec.SwitchSection:
			current = section(r.ID)

		case codec.Code:
			if current == nil {
				return nil, &ModuleError{RecordIndex: idx, Offset: recOff, Msg: "code before any section switch"}
			}
			current.Data = append(current.Data, r.Data...)

		case codec.BSS:
			if current == nil {
				return nil, &ModuleError{RecordIndex: idx, Offset: recOff, Msg: "bss before any section switch"}
			}
			current.Reserved += r.Size

		case codec.Patch:
			if current == nil {
				return nil, &ModuleError{RecordIndex: idx, Offset: recOff, Msg: "patch before any section switch"}
			}
			m.Relocations = append(m.Relocations, Relocation{
				Section: current.ID,
				Type:    r.Type,
				Offset:  r.Offset,
				Expr:    r.Expr,
			})

		case codec.XDEF:
			if exports[r.Name] {
				m.violations = append(m.violations, fmt.Sprintf("duplicate export %q", r.Name))
			}
			exports[r.Name] = true
			m.Symbols = append(m.Symbols, Symbol{
				Kind: SymbolExport, Number: r.Number, Section: r.Section,
				Offset: r.Offset, Name: r.Name,
			})

		case codec.XBSS:
			if exports[r.Name] {
				m.violations = append(m.violations, fmt.Sprintf("duplicate export %q", r.Name))
			}
			exports[r.Name] = true
			m.Symbols = append(m.Symbols, Symbol{
				Kind: SymbolBSS, Number: r.Number, Section: r.Section,
				Size: r.Size, Name: r.Name,
			})

		case codec.XREF:
			m.Symbols = append(m.Symbols, Symbol{Kind: SymbolImport, Number: r.Number, Name: r.Name})

		case codec.LocalSymbol:
			m.Symbols = append(m.Symbols, Symbol{
				Kind: SymbolLocal, Section: r.Section, Offset: r.Offset, Name: r.Name,
			})
		}
	}
}

// ScanExports collects xdef and xbss names from raw module bytes without
// requiring the whole stream to decode. Scanning stops quietly at the
// first record it cannot read, so modules written by newer tools still
// yield the exports in their leading records.
func ScanExports(data []byte) ([]string, error) {
	if len(data) < 4 || !bytes.Equal(data[:3], Magic) {
		return nil, &ModuleError{RecordIndex: -1, Offset: 0, Msg: "not an object module"}
	}

	var names []string
	off := 4
	for off < len(data) {
		rec, next, err := codec.DecodeRecord(data, off)
		if err != nil {
			break
		}
		switch r := rec.(type) {
		case codec.End:
			return names, nil
		case codec.XDEF:
			names = append(names, r.Name)
		case codec.XBSS:
			names = append(names, r.Name)
		}
		off = next
	}
	return names, nil
}
