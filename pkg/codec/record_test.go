package codec

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ttkb-oss/psy-k/pkg/expr"
)

func TestRecord_EncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		record Record
	}{
		{name: "end", record: End{}},
		{name: "code", record: Code{Data: []byte{0x4E, 0x75}}},
		{name: "code empty", record: Code{Data: []byte{}}},
		{name: "run at offset", record: RunAtOffset{Offset: 0x10, Value: 0x20}},
		{name: "switch section", record: SwitchSection{ID: 1}},
		{name: "bss", record: BSS{Size: 0x1000}},
		{
			name:   "patch constant",
			record: Patch{Type: 0x52, Offset: 8, Expr: expr.Constant(0x280C0C)},
		},
		{
			name: "patch expression",
			record: Patch{Type: 0x10, Offset: 0x40, Expr: expr.Binary{
				Op:    expr.OpAdd,
				Left:  expr.Ref{Kind: expr.RefSectionBase, Index: 1},
				Right: expr.Constant(0x22),
			}},
		},
		{name: "xdef", record: XDEF{Number: 10, Section: 1, Offset: 0x100, Name: "InitCARD"}},
		{name: "xref", record: XREF{Number: 3, Name: "printf"}},
		{name: "section def", record: SectionDef{Section: 1, Group: 0, Align: 8, Name: "text"}},
		{name: "local symbol", record: LocalSymbol{Section: 1, Offset: 4, Name: "loop"}},
		{name: "group def", record: GroupDef{Number: 2, Type: 0x80, Name: "bss"}},
		{name: "file index", record: FileIndex{Number: 1, Name: "C:\\PSX\\CARD.C"}},
		{name: "set mx", record: SetMX{Offset: 0x10, Value: 1}},
		{name: "set cpu", record: SetCPU{Type: CPUMIPSR3K}},
		{name: "xbss", record: XBSS{Number: 4, Section: 2, Size: 64, Name: "buffer"}},
		{name: "inc line", record: IncLine{Offset: 2}},
		{name: "inc line byte", record: IncLineByte{Offset: 2, Amount: 3}},
		{name: "set line", record: SetLine{Offset: 4, Line: 120}},
		{name: "set line file", record: SetLineFile{Offset: 4, Line: 120, File: 1}},
		{name: "end line info", record: EndLineInfo{Offset: 8}},
		{
			name: "func start",
			record: FuncStart{
				Section: 1, Offset: 0x40, File: 1, Line: 12,
				FrameReg: 29, FrameSize: 24, ReturnPCReg: 31,
				Mask: 0x80000000, MaskOffset: -4, Name: "main",
			},
		},
		{name: "func end", record: FuncEnd{Section: 1, Offset: 0x80, Line: 30}},
		{name: "block start", record: BlockStart{Section: 1, Offset: 0x44, Line: 13}},
		{name: "block end", record: BlockEnd{Section: 1, Offset: 0x7C, Line: 29}},
		{name: "def", record: Def{Section: 1, Value: 0, Class: 2, Type: 4, Size: 4, Name: "count"}},
		{
			name:   "def2 no dims",
			record: Def2{Section: 1, Value: 8, Class: 8, Type: 0x78, Size: 12, Tag: "point", Name: "origin"},
		},
		{
			name: "def2 with dims",
			record: Def2{
				Section: 1, Value: 8, Class: 8, Type: 0x78, Size: 48,
				Dims: Dim{Defined: true, Value: 4}, Tag: "point", Name: "corners",
			},
		},
		{name: "nul prefixed name", record: XDEF{Number: 1, Section: 1, Offset: 0, Name: "\x00raw"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := AppendRecord(nil, tc.record)

			decoded, next, err := DecodeRecord(encoded, 0)
			if err != nil {
				t.Fatalf("DecodeRecord failed: %v", err)
			}
			if next != len(encoded) {
				t.Fatalf("DecodeRecord consumed %d bytes, want %d", next, len(encoded))
			}
			if !reflect.DeepEqual(decoded, tc.record) {
				t.Errorf("round trip mismatch: got %#v, want %#v", decoded, tc.record)
			}
			if decoded.Kind() != tc.record.Kind() {
				t.Errorf("Kind mismatch: got %d, want %d", decoded.Kind(), tc.record.Kind())
			}
		})
	}
}

// Records from a real Saturn object, starting after the file header.
var saturnRecords = []byte{
	0x2E, 0x08,
	0x14, 0x0B, 0x33, 0x80, 0x03, 'b', 's', 's',
	0x10, 0x0C, 0x33, 0x0B, 0x33, 0x08, 0x06, 'b', 's', 's', 'e', 'n', 'd',
	0x06, 0x0C, 0x33,
	0x0C, 0x0A, 0x33, 0x0C, 0x33, 0x00, 0x00, 0x00, 0x00, 0x03, 'e', 'n', 'd',
	0x00,
}

func TestDecodeRecords_SaturnStream(t *testing.T) {
	records, err := DecodeRecords(saturnRecords)
	if err != nil {
		t.Fatalf("DecodeRecords failed: %v", err)
	}

	want := []Record{
		SetCPU{Type: CPUSH2},
		GroupDef{Number: 0x330B, Type: 0x80, Name: "bss"},
		SectionDef{Section: 0x330C, Group: 0x330B, Align: 8, Name: "bssend"},
		SwitchSection{ID: 0x330C},
		XDEF{Number: 0x330A, Section: 0x330C, Offset: 0, Name: "end"},
		End{},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("decoded records mismatch:\ngot  %#v\nwant %#v", records, want)
	}

	if got := EncodeRecords(records); !bytes.Equal(got, saturnRecords) {
		t.Errorf("re-encoded stream differs from input:\ngot  % x\nwant % x", got, saturnRecords)
	}
}

func TestDecodeRecords_Errors(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "empty stream", data: []byte{}},
		{name: "missing end record", data: []byte{0x06, 0x01, 0x00}},
		{name: "trailing bytes after end", data: []byte{0x00, 0xFF}},
		{name: "truncated code payload", data: []byte{0x02, 0x10, 0x00, 0xAA}},
		{name: "truncated name", data: []byte{0x0E, 0x01, 0x00, 0x08, 'h', 'i'}},
		{name: "truncated fixed fields", data: []byte{0x08, 0x00, 0x10}},
		{name: "truncated expression", data: []byte{0x0A, 0x52, 0x08, 0x00, 0x2C, 0x00}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeRecords(tc.data); err == nil {
				t.Errorf("DecodeRecords accepted malformed stream % x", tc.data)
			}
		})
	}
}

func TestDecodeRecord_UnknownTag(t *testing.T) {
	_, _, err := DecodeRecord([]byte{0x63}, 0)
	if err == nil {
		t.Fatal("DecodeRecord accepted unknown tag")
	}
	unknown, ok := err.(*UnknownTagError)
	if !ok {
		t.Fatalf("error type %T, want *UnknownTagError", err)
	}
	if unknown.Tag != 0x63 {
		t.Errorf("Tag = %d, want %d", unknown.Tag, 0x63)
	}
}

func TestDecodeRecord_Def2DimensionCount(t *testing.T) {
	// Two dimensions is outside the supported format.
	data := AppendRecord(nil, Def{Section: 1, Value: 0, Class: 8, Type: 0x78, Size: 4, Name: "x"})
	data[0] = uint8(KindDef2)
	data = append(data[:len(data)-2], 0x02, 0x00, 0x00, 0x00)

	if _, _, err := DecodeRecord(data, 0); err == nil {
		t.Error("DecodeRecord accepted unsupported dimension count")
	}
}

func TestAppendRecord_OversizeNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AppendRecord did not panic on oversize name")
		}
	}()
	AppendRecord(nil, XREF{Number: 1, Name: string(bytes.Repeat([]byte("a"), 256))})
}
