package expr

import (
	"encoding/binary"
	"fmt"
)

// Operand tags. Each introduces a leaf node; the constant tag carries a
// 32-bit immediate, every other leaf carries a 16-bit index.
const (
	tagConstant     uint8 = 0
	tagSymbol       uint8 = 2
	tagSectionBase  uint8 = 4
	tagBank         uint8 = 6
	tagSectionOf    uint8 = 8
	tagOffset       uint8 = 10
	tagSectionStart uint8 = 12
	tagGroupStart   uint8 = 14
	tagGroupOf      uint8 = 16
	tagSegment      uint8 = 18
	tagGroupOrg     uint8 = 20
	tagSectionEnd   uint8 = 22
)

// Op identifies a binary operator. The numeric values are the wire tags.
type Op uint8

const (
	OpEq         Op = 32
	OpNe         Op = 34
	OpLe         Op = 36
	OpLt         Op = 38
	OpGe         Op = 40
	OpGt         Op = 42
	OpAdd        Op = 44
	OpSub        Op = 46
	OpMul        Op = 48
	OpDiv        Op = 50
	OpAnd        Op = 52
	OpOr         Op = 54
	OpXor        Op = 56
	OpShl        Op = 58
	OpShr        Op = 60
	OpMod        Op = 62
	OpDashes     Op = 64
	OpRevword    Op = 66
	OpCheck0     Op = 68
	OpCheck1     Op = 70
	OpBitRange   Op = 72
	OpArshiftChk Op = 74
)

var opNames = map[Op]string{
	OpEq:         "=",
	OpNe:         "<>",
	OpLe:         "<=",
	OpLt:         "<",
	OpGe:         ">=",
	OpGt:         ">",
	OpAdd:        "+",
	OpSub:        "-",
	OpMul:        "*",
	OpDiv:        "/",
	OpAnd:        "&",
	OpOr:         "!",
	OpXor:        "^",
	OpShl:        "<<",
	OpShr:        ">>",
	OpMod:        "%%",
	OpDashes:     "---",
	OpRevword:    "-revword-",
	OpCheck0:     "-check0-",
	OpCheck1:     "-check1-",
	OpBitRange:   "-bitrange-",
	OpArshiftChk: "-arshift_chk-",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// saturnOnly reports whether the operator only appears in SH-2 objects.
func (o Op) saturnOnly() bool {
	return o >= OpRevword && o <= OpArshiftChk
}

// Expression is a relocation expression node. The set of implementations
// is closed: Constant, Ref, and Binary.
type Expression interface {
	fmt.Stringer

	// append writes the wire encoding of the node.
	append(buf []byte) []byte
}

// Constant is an immediate 32-bit value.
type Constant uint32

func (c Constant) String() string { return fmt.Sprintf("$%x", uint32(c)) }

func (c Constant) append(buf []byte) []byte {
	buf = append(buf, tagConstant)
	return binary.LittleEndian.AppendUint32(buf, uint32(c))
}

// RefKind distinguishes the 16-bit indexed leaf operands.
type RefKind uint8

const (
	RefSymbol       = RefKind(tagSymbol)
	RefSectionBase  = RefKind(tagSectionBase)
	RefBank         = RefKind(tagBank)
	RefSectionOf    = RefKind(tagSectionOf)
	RefOffset       = RefKind(tagOffset)
	RefSectionStart = RefKind(tagSectionStart)
	RefGroupStart   = RefKind(tagGroupStart)
	RefGroupOf      = RefKind(tagGroupOf)
	RefSegment      = RefKind(tagSegment)
	RefGroupOrg     = RefKind(tagGroupOrg)
	RefSectionEnd   = RefKind(tagSectionEnd)
)

// Ref is a symbol, section, or group reference by format index.
type Ref struct {
	Kind  RefKind
	Index uint16
}

func (r Ref) String() string {
	switch r.Kind {
	case RefSymbol:
		return fmt.Sprintf("[%x]", r.Index)
	case RefSectionBase:
		return fmt.Sprintf("sectbase(%x)", r.Index)
	case RefBank:
		return fmt.Sprintf("bank(%x)", r.Index)
	case RefSectionOf:
		return fmt.Sprintf("sectof(%x)", r.Index)
	case RefOffset:
		return fmt.Sprintf("offs(%x)", r.Index)
	case RefSectionStart:
		return fmt.Sprintf("sectstart(%x)", r.Index)
	case RefGroupStart:
		return fmt.Sprintf("groupstart(%x)", r.Index)
	case RefGroupOf:
		return fmt.Sprintf("groupof(%x)", r.Index)
	case RefSegment:
		return fmt.Sprintf("seg(%x)", r.Index)
	case RefGroupOrg:
		return fmt.Sprintf("grouporg(%x)", r.Index)
	case RefSectionEnd:
		return fmt.Sprintf("sectend(%x)", r.Index)
	}
	return fmt.Sprintf("ref(%d,%x)", uint8(r.Kind), r.Index)
}

func (r Ref) append(buf []byte) []byte {
	buf = append(buf, uint8(r.Kind))
	return binary.LittleEndian.AppendUint16(buf, r.Index)
}

// Binary applies Op to two sub-expressions. Operand order is part of the
// wire format: Left is encoded and evaluated before Right.
type Binary struct {
	Op    Op
	Left  Expression
	Right Expression
}

func (b Binary) String() string {
	return fmt.Sprintf("(%s%s%s)", b.Left, b.Op, b.Right)
}

func (b Binary) append(buf []byte) []byte {
	buf = append(buf, uint8(b.Op))
	buf = b.Left.append(buf)
	return b.Right.append(buf)
}

// Append appends the wire encoding of e to buf.
func Append(buf []byte, e Expression) []byte {
	return e.append(buf)
}

// Encode returns the wire encoding of e.
func Encode(e Expression) []byte {
	return e.append(nil)
}

// maxDepth bounds operator nesting so that a malicious buffer cannot
// exhaust the goroutine stack.
const maxDepth = 64

// DecodeError reports a malformed expression encoding. Offset is absolute
// within the buffer passed to Decode.
type DecodeError struct {
	Offset int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("expression: %s at offset %d", e.Msg, e.Offset)
}

// Decode reads one expression from data starting at off and returns it
// together with the offset of the first byte after it.
func Decode(data []byte, off int) (Expression, int, error) {
	return decode(data, off, 0)
}

func decode(data []byte, off, depth int) (Expression, int, error) {
	if depth > maxDepth {
		return nil, off, &DecodeError{Offset: off, Msg: "nested too deeply"}
	}
	if off >= len(data) {
		return nil, off, &DecodeError{Offset: off, Msg: "truncated"}
	}

	tag := data[off]
	off++

	switch {
	case tag == tagConstant:
		if len(data)-off < 4 {
			return nil, off, &DecodeError{Offset: off, Msg: "truncated constant"}
		}
		v := binary.LittleEndian.Uint32(data[off:])
		return Constant(v), off + 4, nil

	case tag >= tagSymbol && tag <= tagSectionEnd && tag%2 == 0:
		if len(data)-off < 2 {
			return nil, off, &DecodeError{Offset: off, Msg: "truncated operand"}
		}
		idx := binary.LittleEndian.Uint16(data[off:])
		return Ref{Kind: RefKind(tag), Index: idx}, off + 2, nil

	case Op(tag) >= OpEq && Op(tag) <= OpArshiftChk && tag%2 == 0:
		left, next, err := decode(data, off, depth+1)
		if err != nil {
			return nil, next, err
		}
		right, next, err := decode(data, next, depth+1)
		if err != nil {
			return nil, next, err
		}
		return Binary{Op: Op(tag), Left: left, Right: right}, next, nil
	}

	return nil, off - 1, &DecodeError{Offset: off - 1, Msg: fmt.Sprintf("unknown operator tag %d", tag)}
}

// CheckVariant rejects expressions that use operators unknown to the given
// CPU type. Decoding itself is variant-agnostic; this is the policy layer
// for consumers that target one architecture.
func CheckVariant(e Expression, cpu uint8) error {
	const hitachiSH2 = 8
	b, ok := e.(Binary)
	if !ok {
		return nil
	}
	if b.Op.saturnOnly() && cpu != hitachiSH2 {
		return fmt.Errorf("operator %q not valid for cpu type %d", b.Op, cpu)
	}
	if err := CheckVariant(b.Left, cpu); err != nil {
		return err
	}
	return CheckVariant(b.Right, cpu)
}
