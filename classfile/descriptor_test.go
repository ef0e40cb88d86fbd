package classfile

import (
	"errors"
	"testing"
)

func TestParseFieldType(t *testing.T) {
	cases := []struct {
		desc  string
		kind  byte
		width int
		ref   bool
	}{
		{"B", 'I', 1, false},
		{"C", 'I', 1, false},
		{"S", 'I', 1, false},
		{"Z", 'I', 1, false},
		{"I", 'I', 1, false},
		{"J", 'J', 2, false},
		{"F", 'F', 1, false},
		{"D", 'D', 2, false},
		{"Ljava/lang/String;", 'A', 1, true},
		{"[I", 'A', 1, true},
		{"[[J", 'A', 1, true},
		{"[Lcom/acme/Line;", 'A', 1, true},
	}
	for _, tc := range cases {
		ft, err := ParseFieldType(tc.desc)
		if err != nil {
			t.Errorf("ParseFieldType(%q) failed: %v", tc.desc, err)
			continue
		}
		if ft.Kind != tc.kind {
			t.Errorf("ParseFieldType(%q).Kind = %c, want %c", tc.desc, ft.Kind, tc.kind)
		}
		if ft.Width() != tc.width {
			t.Errorf("ParseFieldType(%q).Width = %d, want %d", tc.desc, ft.Width(), tc.width)
		}
		if ft.IsReference() != tc.ref {
			t.Errorf("ParseFieldType(%q).IsReference = %v, want %v", tc.desc, ft.IsReference(), tc.ref)
		}
	}
}

func TestParseFieldTypeRejectsInvalid(t *testing.T) {
	for _, desc := range []string{"", "X", "L;", "Lfoo", "II", "[", "[[", "V", "Lfoo;x"} {
		if _, err := ParseFieldType(desc); !errors.Is(err, ErrBadDescriptor) {
			t.Errorf("ParseFieldType(%q) err = %v, want ErrBadDescriptor", desc, err)
		}
	}
}

func TestFieldTypeOpcodes(t *testing.T) {
	cases := []struct {
		desc string
		load byte
		ret  byte
	}{
		{"I", OpIload1, OpIreturn},
		{"Z", OpIload1, OpIreturn},
		{"J", OpLload1, OpLreturn},
		{"F", OpFload1, OpFreturn},
		{"D", OpDload1, OpDreturn},
		{"Ljava/lang/String;", OpAload1, OpAreturn},
		{"[B", OpAload1, OpAreturn},
	}
	for _, tc := range cases {
		ft, err := ParseFieldType(tc.desc)
		if err != nil {
			t.Fatalf("ParseFieldType(%q) failed: %v", tc.desc, err)
		}
		if got := ft.LoadSlot1(); got != tc.load {
			t.Errorf("%q LoadSlot1 = 0x%02X, want 0x%02X", tc.desc, got, tc.load)
		}
		if got := ft.ReturnOp(); got != tc.ret {
			t.Errorf("%q ReturnOp = 0x%02X, want 0x%02X", tc.desc, got, tc.ret)
		}
	}
}
