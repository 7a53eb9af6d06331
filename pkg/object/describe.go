package object

import (
	"fmt"
	"io"
	"strings"

	"github.com/ttkb-oss/psy-k/pkg/codec"
)

// CodeFormat selects how code record contents are rendered in a dump.
type CodeFormat int

const (
	CodeNone CodeFormat = iota
	CodeHex
)

// DumpOptions controls Dump output.
type DumpOptions struct {
	Code CodeFormat
	// Debug includes source-line and scope records in the dump.
	Debug bool
}

// Dump writes the record-by-record view of the module, the format the
// original OBJDUMP.EXE produced.
func (m *Module) Dump(w io.Writer, opts DumpOptions) error {
	if _, err := fmt.Fprintf(w, "Header : LNK version %d\n", m.Version); err != nil {
		return err
	}
	for _, r := range m.Records {
		if !opts.Debug && isDebugRecord(r) {
			continue
		}
		if _, err := fmt.Fprintln(w, DescribeRecord(r, opts)); err != nil {
			return err
		}
	}
	return nil
}

// isDebugRecord reports whether a record carries source-line or scope
// information rather than content the linker consumes.
func isDebugRecord(r codec.Record) bool {
	switch r.Kind() {
	case codec.KindIncLine, codec.KindIncLineByte, codec.KindSetLine,
		codec.KindSetLineFile, codec.KindEndLineInfo,
		codec.KindFuncStart, codec.KindFuncEnd,
		codec.KindBlockStart, codec.KindBlockEnd,
		codec.KindDef, codec.KindDef2:
		return true
	}
	return false
}

// DescribeRecord renders one record as dump text. Multi-line forms carry
// their internal newlines; the caller adds the trailing one.
func DescribeRecord(r codec.Record, opts DumpOptions) string {
	switch rec := r.(type) {
	case codec.End:
		return "0 : End of file"

	case codec.Code:
		var b strings.Builder
		fmt.Fprintf(&b, "2 : Code %d bytes", len(rec.Data))
		if opts.Code == CodeHex {
			b.WriteString("\n")
			for i := 0; i < len(rec.Data); i += 16 {
				end := i + 16
				if end > len(rec.Data) {
					end = len(rec.Data)
				}
				fmt.Fprintf(&b, "\n%04x:", i)
				for _, v := range rec.Data[i:end] {
					fmt.Fprintf(&b, " %02x", v)
				}
			}
		}
		return b.String()

	case codec.RunAtOffset:
		return fmt.Sprintf("4 : Run at offset %x value %x", rec.Offset, rec.Value)

	case codec.SwitchSection:
		return fmt.Sprintf("6 : Switch to section %x", rec.ID)

	case codec.BSS:
		return fmt.Sprintf("8 : Uninitialized data, %d bytes", rec.Size)

	case codec.Patch:
		return fmt.Sprintf("10 : Patch type %d at offset %x with %s", rec.Type, rec.Offset, rec.Expr)

	case codec.XDEF:
		return fmt.Sprintf("12 : XDEF symbol number %x '%s' at offset %x in section %x",
			rec.Number, rec.Name, rec.Offset, rec.Section)

	case codec.XREF:
		return fmt.Sprintf("14 : XREF symbol number %x '%s'", rec.Number, rec.Name)

	case codec.SectionDef:
		return fmt.Sprintf("16 : Section symbol number %x '%s' in group %d alignment %d",
			rec.Section, rec.Name, rec.Group, rec.Align)

	case codec.LocalSymbol:
		return fmt.Sprintf("18 : Local symbol '%s' at offset %x in section %x",
			rec.Name, rec.Offset, rec.Section)

	case codec.GroupDef:
		return fmt.Sprintf("20 : Group symbol number %x `%s` type %d", rec.Number, rec.Name, rec.Type)

	case codec.FileIndex:
		return fmt.Sprintf("28 : Define file number %x as \"%s\"", rec.Number, rec.Name)

	case codec.SetMX:
		return fmt.Sprintf("44 : Set MX info at offset %x to %x", rec.Offset, rec.Value)

	case codec.SetCPU:
		return fmt.Sprintf("46 : Processor type %d", rec.Type)

	case codec.XBSS:
		return fmt.Sprintf("48 : XBSS symbol number %x '%s' size %x in section %x",
			rec.Number, rec.Name, rec.Size, rec.Section)

	case codec.IncLine:
		return fmt.Sprintf("50 : Inc SLD linenum at offset %x", rec.Offset)

	case codec.IncLineByte:
		return fmt.Sprintf("52 : Inc SLD linenum by byte %d at offset %x", rec.Amount, rec.Offset)

	case codec.SetLine:
		return fmt.Sprintf("56 : Set SLD linenum to %d at offset %x", rec.Line, rec.Offset)

	case codec.SetLineFile:
		return fmt.Sprintf("58 : Set SLD linenum to %d at offset %x in file %x",
			rec.Line, rec.Offset, rec.File)

	case codec.EndLineInfo:
		return fmt.Sprintf("60 : End SLD info at offset %x", rec.Offset)

	case codec.FuncStart:
		return fmt.Sprintf("74 : Function start :\n"+
			"  section %04x\n"+
			"  offset $%08x\n"+
			"  file %04x\n"+
			"  start line %d\n"+
			"  frame reg %d\n"+
			"  frame size %d\n"+
			"  return pc reg %d\n"+
			"  mask $%08x\n"+
			"  mask offset %d\n"+
			"  name %s",
			rec.Section, rec.Offset, rec.File, rec.Line, rec.FrameReg,
			rec.FrameSize, rec.ReturnPCReg, rec.Mask, rec.MaskOffset, rec.Name)

	case codec.FuncEnd:
		return fmt.Sprintf("76 : Function end :\n  section %04x\n  offset $%08x\n  end line %d",
			rec.Section, rec.Offset, rec.Line)

	// The missing newline before section matches the output of
	// OBJDUMP.EXE.
	case codec.BlockStart:
		return fmt.Sprintf("78 : Block start :  section %04x\n  offset $%08x\n  start line %d",
			rec.Section, rec.Offset, rec.Line)

	case codec.BlockEnd:
		return fmt.Sprintf("80 : Block end\n  section %04x\n  offset $%08x\n  end line %d",
			rec.Section, rec.Offset, rec.Line)

	case codec.Def:
		return fmt.Sprintf("82 : Def :\n"+
			"  section %04x\n  value $%08x\n  class %d\n  type %d\n  size %d\n  name : %s",
			rec.Section, rec.Value, rec.Class, rec.Type, rec.Size, rec.Name)

	case codec.Def2:
		dims := "none"
		if rec.Dims.Defined {
			dims = fmt.Sprintf("%d", rec.Dims.Value)
		}
		return fmt.Sprintf("84 : Def2 :\n"+
			"  section %04x\n  value $%08x\n  class %d\n  type %d\n  size %d\n"+
			"  dims %s \n  tag %s\n%s",
			rec.Section, rec.Value, rec.Class, rec.Type, rec.Size, dims, rec.Tag, rec.Name)
	}

	return fmt.Sprintf("%d : Unknown record", r.Kind())
}
