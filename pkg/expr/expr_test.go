package expr

import (
	"bytes"
	"reflect"
	"testing"
)

func TestExpression_EncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		expr Expression
	}{
		{name: "constant zero", expr: Constant(0)},
		{name: "constant max", expr: Constant(0xFFFFFFFF)},
		{name: "symbol", expr: Ref{Kind: RefSymbol, Index: 0x12}},
		{name: "section base", expr: Ref{Kind: RefSectionBase, Index: 1}},
		{name: "bank", expr: Ref{Kind: RefBank, Index: 2}},
		{name: "section of", expr: Ref{Kind: RefSectionOf, Index: 3}},
		{name: "offset", expr: Ref{Kind: RefOffset, Index: 4}},
		{name: "section start", expr: Ref{Kind: RefSectionStart, Index: 5}},
		{name: "group start", expr: Ref{Kind: RefGroupStart, Index: 6}},
		{name: "group of", expr: Ref{Kind: RefGroupOf, Index: 7}},
		{name: "segment", expr: Ref{Kind: RefSegment, Index: 8}},
		{name: "group org", expr: Ref{Kind: RefGroupOrg, Index: 9}},
		{name: "section end", expr: Ref{Kind: RefSectionEnd, Index: 10}},
		{
			name: "addition",
			expr: Binary{Op: OpAdd, Left: Ref{Kind: RefSectionBase, Index: 1}, Right: Constant(0x22)},
		},
		{
			name: "nested",
			expr: Binary{
				Op: OpArshiftChk,
				Left: Constant(2),
				Right: Binary{
					Op: OpSub,
					Left: Binary{
						Op:    OpAnd,
						Left:  Constant(0xFFFFFFFC),
						Right: Binary{Op: OpAdd, Left: Ref{Kind: RefSectionBase, Index: 1}, Right: Constant(0x22)},
					},
					Right: Binary{Op: OpAdd, Left: Ref{Kind: RefSectionBase, Index: 1}, Right: Constant(0x60)},
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := Encode(tc.expr)

			decoded, next, err := Decode(encoded, 0)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if next != len(encoded) {
				t.Fatalf("Decode consumed %d bytes, want %d", next, len(encoded))
			}
			if !reflect.DeepEqual(decoded, tc.expr) {
				t.Errorf("round trip mismatch: got %#v, want %#v", decoded, tc.expr)
			}
		})
	}
}

func TestDecode_AbsoluteOffsets(t *testing.T) {
	// The expression is embedded mid-buffer, as inside a patch record.
	buf := []byte{0xAA, 0xBB, 0x00, 0x34, 0x12, 0x00, 0x00, 0xCC}

	e, next, err := Decode(buf, 2)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if next != 7 {
		t.Errorf("next offset = %d, want 7", next)
	}
	if e != Constant(0x1234) {
		t.Errorf("decoded %v, want $1234", e)
	}
}

func TestDecode_Errors(t *testing.T) {
	deep := bytes.Repeat([]byte{uint8(OpAdd)}, 80)

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "odd tag", data: []byte{0x01}},
		{name: "unknown tag", data: []byte{0x1E, 0x00, 0x00}},
		{name: "truncated constant", data: []byte{0x00, 0x12, 0x34}},
		{name: "truncated operand", data: []byte{0x02, 0x12}},
		{name: "missing right operand", data: []byte{uint8(OpAdd), 0x02, 0x01, 0x00}},
		{name: "nested too deeply", data: deep},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Decode(tc.data, 0); err == nil {
				t.Errorf("Decode accepted malformed input % x", tc.data)
			}
		})
	}
}

func TestExpression_String(t *testing.T) {
	arshift := Binary{
		Op: OpArshiftChk,
		Left: Constant(2),
		Right: Binary{
			Op: OpSub,
			Left: Binary{
				Op:    OpAnd,
				Left:  Constant(0xFFFFFFFC),
				Right: Binary{Op: OpAdd, Left: Ref{Kind: RefSectionBase, Index: 1}, Right: Constant(0x22)},
			},
			Right: Binary{Op: OpAdd, Left: Ref{Kind: RefSectionBase, Index: 1}, Right: Constant(0x60)},
		},
	}

	testCases := []struct {
		name string
		expr Expression
		want string
	}{
		{name: "constant", expr: Constant(0x280C0C), want: "$280c0c"},
		{name: "symbol", expr: Ref{Kind: RefSymbol, Index: 0x1F}, want: "[1f]"},
		{name: "section base", expr: Ref{Kind: RefSectionBase, Index: 1}, want: "sectbase(1)"},
		{
			name: "or uses bang",
			expr: Binary{Op: OpOr, Left: Constant(1), Right: Constant(2)},
			want: "($1!$2)",
		},
		{
			name: "mod uses double percent",
			expr: Binary{Op: OpMod, Left: Constant(7), Right: Constant(4)},
			want: "($7%%$4)",
		},
		{
			name: "arshift check",
			expr: arshift,
			want: "($2-arshift_chk-(($fffffffc&(sectbase(1)+$22))-(sectbase(1)+$60)))",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.expr.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

// evalContext resolves everything from fixed tables.
type evalContext struct {
	symbols map[uint16]uint32
	bases   map[uint16]uint32
	starts  map[uint16]uint32
	ends    map[uint16]uint32
}

func (c *evalContext) lookup(m map[uint16]uint32, id uint16) (uint32, error) {
	v, ok := m[id]
	if !ok {
		return 0, &EvalError{Msg: "no such index"}
	}
	return v, nil
}

func (c *evalContext) SymbolAddress(n uint16) (uint32, error) { return c.lookup(c.symbols, n) }
func (c *evalContext) SectionBase(id uint16) (uint32, error)  { return c.lookup(c.bases, id) }
func (c *evalContext) SectionStart(id uint16) (uint32, error) { return c.lookup(c.starts, id) }
func (c *evalContext) SectionEnd(id uint16) (uint32, error)   { return c.lookup(c.ends, id) }

func TestEvaluate(t *testing.T) {
	ctx := &evalContext{
		symbols: map[uint16]uint32{1: 0x8001000},
		bases:   map[uint16]uint32{1: 0x200},
		starts:  map[uint16]uint32{1: 0x100},
		ends:    map[uint16]uint32{1: 0x300},
	}

	testCases := []struct {
		name string
		expr Expression
		want int64
	}{
		{name: "constant", expr: Constant(42), want: 42},
		{name: "symbol address", expr: Ref{Kind: RefSymbol, Index: 1}, want: 0x8001000},
		{
			name: "subtraction is left minus right",
			expr: Binary{Op: OpSub, Left: Constant(10), Right: Constant(3)},
			want: 7,
		},
		{
			name: "section extent",
			expr: Binary{
				Op:    OpSub,
				Left:  Ref{Kind: RefSectionEnd, Index: 1},
				Right: Ref{Kind: RefSectionStart, Index: 1},
			},
			want: 0x200,
		},
		{
			name: "comparison true is one",
			expr: Binary{Op: OpLt, Left: Constant(1), Right: Constant(2)},
			want: 1,
		},
		{
			name: "comparison false is zero",
			expr: Binary{Op: OpGe, Left: Constant(1), Right: Constant(2)},
			want: 0,
		},
		{
			name: "base plus displacement",
			expr: Binary{Op: OpAdd, Left: Ref{Kind: RefSectionBase, Index: 1}, Right: Constant(0x22)},
			want: 0x222,
		},
		{
			name: "shift left",
			expr: Binary{Op: OpShl, Left: Constant(1), Right: Constant(8)},
			want: 256,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.expr, ctx)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("Evaluate = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	ctx := &evalContext{}

	testCases := []struct {
		name string
		expr Expression
	}{
		{name: "division by zero", expr: Binary{Op: OpDiv, Left: Constant(1), Right: Constant(0)}},
		{name: "modulo by zero", expr: Binary{Op: OpMod, Left: Constant(1), Right: Constant(0)}},
		{name: "shift out of range", expr: Binary{Op: OpShl, Left: Constant(1), Right: Constant(64)}},
		{name: "unresolvable bank", expr: Ref{Kind: RefBank, Index: 1}},
		{name: "unknown symbol", expr: Ref{Kind: RefSymbol, Index: 99}},
		{
			name: "link-time check operator",
			expr: Binary{Op: OpCheck0, Left: Constant(1), Right: Constant(2)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Evaluate(tc.expr, ctx); err == nil {
				t.Errorf("Evaluate accepted %v", tc.expr)
			}
		})
	}
}

func TestCheckVariant(t *testing.T) {
	saturn := Binary{Op: OpRevword, Left: Constant(1), Right: Constant(2)}
	plain := Binary{Op: OpAdd, Left: Constant(1), Right: Constant(2)}

	if err := CheckVariant(saturn, 8); err != nil {
		t.Errorf("CheckVariant rejected revword on SH-2: %v", err)
	}
	if err := CheckVariant(saturn, 7); err == nil {
		t.Error("CheckVariant accepted revword on R3000")
	}
	if err := CheckVariant(plain, 0); err != nil {
		t.Errorf("CheckVariant rejected addition: %v", err)
	}
	nested := Binary{Op: OpAdd, Left: Constant(1), Right: saturn}
	if err := CheckVariant(nested, 0); err == nil {
		t.Error("CheckVariant missed nested operator")
	}
}
