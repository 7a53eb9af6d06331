package codec

import (
	"encoding/binary"

	"github.com/ttkb-oss/psy-k/pkg/expr"
)

// RecordKind is the wire tag of a record.
type RecordKind uint8

const (
	KindEnd           RecordKind = 0
	KindCode          RecordKind = 2
	KindRunAtOffset   RecordKind = 4
	KindSwitchSection RecordKind = 6
	KindBSS           RecordKind = 8
	KindPatch         RecordKind = 10
	KindXDEF          RecordKind = 12
	KindXREF          RecordKind = 14
	KindSectionDef    RecordKind = 16
	KindLocalSymbol   RecordKind = 18
	KindGroupDef      RecordKind = 20
	KindFileIndex     RecordKind = 28
	KindSetMX         RecordKind = 44
	KindSetCPU        RecordKind = 46
	KindXBSS          RecordKind = 48
	KindIncLine       RecordKind = 50
	KindIncLineByte   RecordKind = 52
	KindSetLine       RecordKind = 56
	KindSetLineFile   RecordKind = 58
	KindEndLineInfo   RecordKind = 60
	KindFuncStart     RecordKind = 74
	KindFuncEnd       RecordKind = 76
	KindBlockStart    RecordKind = 78
	KindBlockEnd      RecordKind = 80
	KindDef           RecordKind = 82
	KindDef2          RecordKind = 84
)

// CPU type identifiers carried by SetCPU records.
const (
	CPUM68000  uint8 = 0 // Sega Genesis / Mega Drive / Sega CD
	CPUMIPSR3K uint8 = 7 // PlayStation 1 (R3000 with GTE)
	CPUSH2     uint8 = 8 // Sega Saturn
)

// Record is one tagged unit of an object module stream. The implementation
// set is closed; decoders dispatch on the wire tag and encoders on the
// concrete type, so adding a newly discovered record kind is a localized
// change here.
type Record interface {
	Kind() RecordKind

	// appendTo writes tag and payload.
	appendTo(buf []byte) []byte
}

// End terminates a module's record stream.
type End struct{}

// Code carries raw machine code appended to the current section.
type Code struct {
	Data []byte
}

// RunAtOffset positions subsequent content at an explicit offset.
type RunAtOffset struct {
	Offset uint16
	Value  uint16
}

// SwitchSection makes the named section current for subsequent
// code/data/patch records.
type SwitchSection struct {
	ID uint16
}

// BSS reserves uninitialized space in the current section.
type BSS struct {
	Size uint32
}

// Patch is a relocation: apply Expr at Offset within the current section,
// interpreted according to the patch type.
type Patch struct {
	Type   uint8
	Offset uint16
	Expr   expr.Expression
}

// XDEF defines an external (exported) symbol.
type XDEF struct {
	Number  uint16
	Section uint16
	Offset  uint32
	Name    string
}

// XREF references a symbol defined in another module.
type XREF struct {
	Number uint16
	Name   string
}

// SectionDef declares a section and assigns its format-level id.
type SectionDef struct {
	Section uint16
	Group   uint16
	Align   uint8
	Name    string
}

// LocalSymbol defines a symbol visible only within the module.
type LocalSymbol struct {
	Section uint16
	Offset  uint32
	Name    string
}

// GroupDef declares a section group.
type GroupDef struct {
	Number uint16
	Type   uint8
	Name   string
}

// FileIndex names a source file for debug records; the first one doubles
// as the module's own name.
type FileIndex struct {
	Number uint16
	Name   string
}

// SetMX is an MX info directive.
type SetMX struct {
	Offset uint16
	Value  uint8
}

// SetCPU declares the target processor for subsequent code.
type SetCPU struct {
	Type uint8
}

// XBSS defines an exported uninitialized-data symbol.
type XBSS struct {
	Number  uint16
	Section uint16
	Size    uint32
	Name    string
}

// IncLine advances the source-line debug counter by one.
type IncLine struct {
	Offset uint16
}

// IncLineByte advances the source-line debug counter by Amount.
type IncLineByte struct {
	Offset uint16
	Amount uint8
}

// SetLine sets the source-line debug counter.
type SetLine struct {
	Offset uint16
	Line   uint32
}

// SetLineFile sets the source-line debug counter and the current file.
type SetLineFile struct {
	Offset uint16
	Line   uint32
	File   uint16
}

// EndLineInfo closes the source-line debug stream.
type EndLineInfo struct {
	Offset uint16
}

// FuncStart opens a function's debug scope.
type FuncStart struct {
	Section     uint16
	Offset      uint32
	File        uint16
	Line        uint32
	FrameReg    uint16
	FrameSize   uint32
	ReturnPCReg uint16
	Mask        uint32
	MaskOffset  int32
	Name        string
}

// FuncEnd closes a function's debug scope.
type FuncEnd struct {
	Section uint16
	Offset  uint32
	Line    uint32
}

// BlockStart opens a lexical block's debug scope.
type BlockStart struct {
	Section uint16
	Offset  uint32
	Line    uint32
}

// BlockEnd closes a lexical block's debug scope.
type BlockEnd struct {
	Section uint16
	Offset  uint32
	Line    uint32
}

// Def is a variable or type definition debug record.
type Def struct {
	Section uint16
	Value   uint32
	Class   uint16
	Type    uint16
	Size    uint32
	Name    string
}

// Dim is the dimension field of a Def2 record: absent, or one value.
type Dim struct {
	Defined bool
	Value   uint32
}

// Def2 extends Def with array dimensions and a struct/union tag.
type Def2 struct {
	Section uint16
	Value   uint32
	Class   uint16
	Type    uint16
	Size    uint32
	Dims    Dim
	Tag     string
	Name    string
}

func (End) Kind() RecordKind           { return KindEnd }
func (Code) Kind() RecordKind          { return KindCode }
func (RunAtOffset) Kind() RecordKind   { return KindRunAtOffset }
func (SwitchSection) Kind() RecordKind { return KindSwitchSection }
func (BSS) Kind() RecordKind           { return KindBSS }
func (Patch) Kind() RecordKind         { return KindPatch }
func (XDEF) Kind() RecordKind          { return KindXDEF }
func (XREF) Kind() RecordKind          { return KindXREF }
func (SectionDef) Kind() RecordKind    { return KindSectionDef }
func (LocalSymbol) Kind() RecordKind   { return KindLocalSymbol }
func (GroupDef) Kind() RecordKind      { return KindGroupDef }
func (FileIndex) Kind() RecordKind     { return KindFileIndex }
func (SetMX) Kind() RecordKind         { return KindSetMX }
func (SetCPU) Kind() RecordKind        { return KindSetCPU }
func (XBSS) Kind() RecordKind          { return KindXBSS }
func (IncLine) Kind() RecordKind       { return KindIncLine }
func (IncLineByte) Kind() RecordKind   { return KindIncLineByte }
func (SetLine) Kind() RecordKind       { return KindSetLine }
func (SetLineFile) Kind() RecordKind   { return KindSetLineFile }
func (EndLineInfo) Kind() RecordKind   { return KindEndLineInfo }
func (FuncStart) Kind() RecordKind     { return KindFuncStart }
func (FuncEnd) Kind() RecordKind       { return KindFuncEnd }
func (BlockStart) Kind() RecordKind    { return KindBlockStart }
func (BlockEnd) Kind() RecordKind      { return KindBlockEnd }
func (Def) Kind() RecordKind           { return KindDef }
func (Def2) Kind() RecordKind          { return KindDef2 }

func appendU16(buf []byte, v uint16) []byte { return binary.LittleEndian.AppendUint16(buf, v) }
func appendU32(buf []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(buf, v) }

// appendName writes a length-prefixed name. Names longer than 255 bytes
// cannot be represented in the format; constructing one is a programming
// error, mirroring the length panics in the record constructors upstream.
func appendName(buf []byte, name string) []byte {
	if len(name) > 255 {
		panic("codec: name longer than 255 bytes")
	}
	buf = append(buf, uint8(len(name)))
	return append(buf, name...)
}

func (End) appendTo(buf []byte) []byte { return append(buf, uint8(KindEnd)) }

func (r Code) appendTo(buf []byte) []byte {
	if len(r.Data) > 0xFFFF {
		panic("codec: code block longer than 65535 bytes")
	}
	buf = append(buf, uint8(KindCode))
	buf = appendU16(buf, uint16(len(r.Data)))
	return append(buf, r.Data...)
}

func (r RunAtOffset) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindRunAtOffset))
	buf = appendU16(buf, r.Offset)
	return appendU16(buf, r.Value)
}

func (r SwitchSection) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindSwitchSection))
	return appendU16(buf, r.ID)
}

func (r BSS) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindBSS))
	return appendU32(buf, r.Size)
}

func (r Patch) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindPatch), r.Type)
	buf = appendU16(buf, r.Offset)
	return expr.Append(buf, r.Expr)
}

func (r XDEF) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindXDEF))
	buf = appendU16(buf, r.Number)
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Offset)
	return appendName(buf, r.Name)
}

func (r XREF) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindXREF))
	buf = appendU16(buf, r.Number)
	return appendName(buf, r.Name)
}

func (r SectionDef) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindSectionDef))
	buf = appendU16(buf, r.Section)
	buf = appendU16(buf, r.Group)
	buf = append(buf, r.Align)
	return appendName(buf, r.Name)
}

func (r LocalSymbol) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindLocalSymbol))
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Offset)
	return appendName(buf, r.Name)
}

func (r GroupDef) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindGroupDef))
	buf = appendU16(buf, r.Number)
	buf = append(buf, r.Type)
	return appendName(buf, r.Name)
}

func (r FileIndex) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindFileIndex))
	buf = appendU16(buf, r.Number)
	return appendName(buf, r.Name)
}

func (r SetMX) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindSetMX))
	buf = appendU16(buf, r.Offset)
	return append(buf, r.Value)
}

func (r SetCPU) appendTo(buf []byte) []byte {
	return append(buf, uint8(KindSetCPU), r.Type)
}

func (r XBSS) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindXBSS))
	buf = appendU16(buf, r.Number)
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Size)
	return appendName(buf, r.Name)
}

func (r IncLine) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindIncLine))
	return appendU16(buf, r.Offset)
}

func (r IncLineByte) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindIncLineByte))
	buf = appendU16(buf, r.Offset)
	return append(buf, r.Amount)
}

func (r SetLine) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindSetLine))
	buf = appendU16(buf, r.Offset)
	return appendU32(buf, r.Line)
}

func (r SetLineFile) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindSetLineFile))
	buf = appendU16(buf, r.Offset)
	buf = appendU32(buf, r.Line)
	return appendU16(buf, r.File)
}

func (r EndLineInfo) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindEndLineInfo))
	return appendU16(buf, r.Offset)
}

func (r FuncStart) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindFuncStart))
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Offset)
	buf = appendU16(buf, r.File)
	buf = appendU32(buf, r.Line)
	buf = appendU16(buf, r.FrameReg)
	buf = appendU32(buf, r.FrameSize)
	buf = appendU16(buf, r.ReturnPCReg)
	buf = appendU32(buf, r.Mask)
	buf = appendU32(buf, uint32(r.MaskOffset))
	return appendName(buf, r.Name)
}

func (r FuncEnd) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindFuncEnd))
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Offset)
	return appendU32(buf, r.Line)
}

func (r BlockStart) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindBlockStart))
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Offset)
	return appendU32(buf, r.Line)
}

func (r BlockEnd) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindBlockEnd))
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Offset)
	return appendU32(buf, r.Line)
}

func (r Def) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindDef))
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Value)
	buf = appendU16(buf, r.Class)
	buf = appendU16(buf, r.Type)
	buf = appendU32(buf, r.Size)
	return appendName(buf, r.Name)
}

func (r Def2) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(KindDef2))
	buf = appendU16(buf, r.Section)
	buf = appendU32(buf, r.Value)
	buf = appendU16(buf, r.Class)
	buf = appendU16(buf, r.Type)
	buf = appendU32(buf, r.Size)
	if r.Dims.Defined {
		buf = appendU16(buf, 1)
		buf = appendU32(buf, r.Dims.Value)
	} else {
		buf = appendU16(buf, 0)
	}
	buf = appendName(buf, r.Tag)
	return appendName(buf, r.Name)
}

// AppendRecord appends the wire encoding of r to buf.
func AppendRecord(buf []byte, r Record) []byte {
	return r.appendTo(buf)
}

// EncodeRecords encodes a record sequence. It is the exact inverse of
// DecodeRecords for any stream DecodeRecords accepts.
func EncodeRecords(records []Record) []byte {
	var buf []byte
	for _, r := range records {
		buf = r.appendTo(buf)
	}
	return buf
}
