package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/ttkb-oss/psy-k/pkg/expr"
)

// reader is a bounds-checked cursor over a record stream. Methods set err
// on the first failure and return zero values afterwards, so a decode
// sequence only needs a single check at the end.
type reader struct {
	data []byte
	off  int
	tag  uint8
	err  error
}

func (r *reader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = &DecodeError{Offset: r.off, Tag: r.tag, Msg: fmt.Sprintf(format, args...)}
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if len(r.data)-r.off < n {
		r.fail("need %d bytes, have %d", n, len(r.data)-r.off)
		return false
	}
	return true
}

func (r *reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *reader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := make([]byte, n)
	copy(v, r.data[r.off:r.off+n])
	r.off += n
	return v
}

// name reads a u8 length followed by that many bytes. The result is a
// string for value semantics; arbitrary byte values round-trip through it.
func (r *reader) name() string {
	n := int(r.u8())
	if !r.need(n) {
		return ""
	}
	v := string(r.data[r.off : r.off+n])
	r.off += n
	return v
}

func (r *reader) expr() expr.Expression {
	if r.err != nil {
		return nil
	}
	e, next, err := expr.Decode(r.data, r.off)
	if err != nil {
		r.err = &DecodeError{Offset: r.off, Tag: r.tag, Msg: err.Error()}
		return nil
	}
	r.off = next
	return e
}

// DecodeRecord decodes one record starting at off and returns it with the
// offset of the byte after it.
func DecodeRecord(data []byte, off int) (Record, int, error) {
	r := &reader{data: data, off: off}
	tag := r.u8()
	if r.err != nil {
		return nil, off, r.err
	}
	r.tag = tag

	var rec Record
	switch RecordKind(tag) {
	case KindEnd:
		rec = End{}
	case KindCode:
		n := int(r.u16())
		rec = Code{Data: r.bytes(n)}
	case KindRunAtOffset:
		rec = RunAtOffset{Offset: r.u16(), Value: r.u16()}
	case KindSwitchSection:
		rec = SwitchSection{ID: r.u16()}
	case KindBSS:
		rec = BSS{Size: r.u32()}
	case KindPatch:
		rec = Patch{Type: r.u8(), Offset: r.u16(), Expr: r.expr()}
	case KindXDEF:
		rec = XDEF{Number: r.u16(), Section: r.u16(), Offset: r.u32(), Name: r.name()}
	case KindXREF:
		rec = XREF{Number: r.u16(), Name: r.name()}
	case KindSectionDef:
		rec = SectionDef{Section: r.u16(), Group: r.u16(), Align: r.u8(), Name: r.name()}
	case KindLocalSymbol:
		rec = LocalSymbol{Section: r.u16(), Offset: r.u32(), Name: r.name()}
	case KindGroupDef:
		rec = GroupDef{Number: r.u16(), Type: r.u8(), Name: r.name()}
	case KindFileIndex:
		rec = FileIndex{Number: r.u16(), Name: r.name()}
	case KindSetMX:
		rec = SetMX{Offset: r.u16(), Value: r.u8()}
	case KindSetCPU:
		rec = SetCPU{Type: r.u8()}
	case KindXBSS:
		rec = XBSS{Number: r.u16(), Section: r.u16(), Size: r.u32(), Name: r.name()}
	case KindIncLine:
		rec = IncLine{Offset: r.u16()}
	case KindIncLineByte:
		rec = IncLineByte{Offset: r.u16(), Amount: r.u8()}
	case KindSetLine:
		rec = SetLine{Offset: r.u16(), Line: r.u32()}
	case KindSetLineFile:
		rec = SetLineFile{Offset: r.u16(), Line: r.u32(), File: r.u16()}
	case KindEndLineInfo:
		rec = EndLineInfo{Offset: r.u16()}
	case KindFuncStart:
		rec = FuncStart{
			Section:     r.u16(),
			Offset:      r.u32(),
			File:        r.u16(),
			Line:        r.u32(),
			FrameReg:    r.u16(),
			FrameSize:   r.u32(),
			ReturnPCReg: r.u16(),
			Mask:        r.u32(),
			MaskOffset:  int32(r.u32()),
			Name:        r.name(),
		}
	case KindFuncEnd:
		rec = FuncEnd{Section: r.u16(), Offset: r.u32(), Line: r.u32()}
	case KindBlockStart:
		rec = BlockStart{Section: r.u16(), Offset: r.u32(), Line: r.u32()}
	case KindBlockEnd:
		rec = BlockEnd{Section: r.u16(), Offset: r.u32(), Line: r.u32()}
	case KindDef:
		rec = Def{
			Section: r.u16(),
			Value:   r.u32(),
			Class:   r.u16(),
			Type:    r.u16(),
			Size:    r.u32(),
			Name:    r.name(),
		}
	case KindDef2:
		d := Def2{
			Section: r.u16(),
			Value:   r.u32(),
			Class:   r.u16(),
			Type:    r.u16(),
			Size:    r.u32(),
		}
		switch dims := r.u16(); dims {
		case 0:
		case 1:
			d.Dims = Dim{Defined: true, Value: r.u32()}
		default:
			r.fail("dimension count %d not supported", dims)
		}
		d.Tag = r.name()
		d.Name = r.name()
		rec = d
	default:
		return nil, off, &UnknownTagError{Offset: off, Tag: tag}
	}

	if r.err != nil {
		return nil, off, r.err
	}
	return rec, r.off, nil
}

// DecodeRecords decodes a complete record stream. The stream must close
// with exactly one End record and leave no trailing bytes; truncated and
// overlong streams both fail.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	off := 0
	for {
		if off >= len(data) {
			return nil, &DecodeError{Offset: off, Tag: uint8(KindEnd), Msg: "stream ends without end record"}
		}
		rec, next, err := DecodeRecord(data, off)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		off = next
		if rec.Kind() == KindEnd {
			if off != len(data) {
				return nil, &DecodeError{Offset: off, Tag: uint8(KindEnd), Msg: fmt.Sprintf("%d bytes after end record", len(data)-off)}
			}
			return records, nil
		}
	}
}
