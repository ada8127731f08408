package model

import (
	"reflect"
	"testing"
)

func TestClone(t *testing.T) {
	objs := []Object{
		ObjNull{},
		ObjBool(true),
		ObjInt(45),
		ObjFloat(-0.25),
		ObjName("Type"),
		ObjStringLiteral("abcd(e"),
		ObjHexLiteral("\xfe\xff"),
		ObjIndirectRef{ObjectNumber: 12, GenerationNumber: 2},
		ObjCommand("Tj"),
		ObjArray{ObjInt(1), ObjArray{ObjName("Sub")}},
		ObjDict{"Key": ObjArray{ObjNull{}}},
		ObjStream{Args: ObjDict{"Length": ObjInt(2)}, Content: []byte{0, 1}},
	}
	for _, o := range objs {
		c := o.Clone()
		if !reflect.DeepEqual(o, c) {
			t.Errorf("expected %v, got %v", o, c)
		}
		if reflect.TypeOf(o) != reflect.TypeOf(c) {
			t.Errorf("clone of %T changed type to %T", o, c)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	arr := ObjArray{ObjInt(1)}
	d := ObjDict{"A": arr}
	c := d.Clone().(ObjDict)
	arr[0] = ObjInt(2)
	if c["A"].(ObjArray)[0] != ObjInt(1) {
		t.Error("expected deep copy")
	}

	st := ObjStream{Args: ObjDict{}, Content: []byte{1}}
	c2 := st.Clone().(ObjStream)
	st.Content[0] = 8
	if c2.Content[0] != 1 {
		t.Error("expected deep copy of stream content")
	}
}

func TestPDFString(t *testing.T) {
	for _, test := range []struct {
		obj Object
		exp string
	}{
		{ObjNull{}, "null"},
		{ObjBool(false), "false"},
		{ObjInt(12), "12"},
		{ObjFloat(1.5), "1.5"},
		{ObjName("Name1"), "/Name1"},
		{ObjName("A B"), "/A#20B"},
		{ObjStringLiteral("ab"), "(ab)"},
		{ObjStringLiteral("a(b"), `(a\(b)`},
		{ObjHexLiteral("\x0f\xaa"), "<0faa>"},
		{ObjIndirectRef{ObjectNumber: 4, GenerationNumber: 1}, "4 1 R"},
		{ObjArray{ObjInt(1), ObjName("N")}, "[1 /N]"},
		{ObjDict{"K": ObjInt(7)}, "<</K 7>>"},
	} {
		if got := test.obj.PDFString(); got != test.exp {
			t.Errorf("expected %s, got %s", test.exp, got)
		}
	}
}

func TestIsNumber(t *testing.T) {
	if v, ok := IsNumber(ObjInt(3)); !ok || v != 3 {
		t.Errorf("expected 3, got %v %v", v, ok)
	}
	if v, ok := IsNumber(ObjFloat(2.5)); !ok || v != 2.5 {
		t.Errorf("expected 2.5, got %v %v", v, ok)
	}
	if _, ok := IsNumber(ObjName("3")); ok {
		t.Error("expected failure on name")
	}
}

func TestRectangle(t *testing.T) {
	r, ok := NewRectangle(ObjArray{ObjInt(0), ObjInt(0), ObjFloat(595.28), ObjFloat(841.89)})
	if !ok {
		t.Fatal("expected valid rectangle")
	}
	if r.Width() != 595.28 || r.Height() != 841.89 {
		t.Errorf("unexpected dimensions %v %v", r.Width(), r.Height())
	}
	if _, ok = NewRectangle(ObjArray{ObjInt(0)}); ok {
		t.Error("expected failure on short array")
	}
	if _, ok = NewRectangle(ObjArray{ObjInt(0), ObjName("a"), ObjInt(0), ObjInt(0)}); ok {
		t.Error("expected failure on non numeric entry")
	}
}

func TestMatrix(t *testing.T) {
	m := Translation(10, 20).Mul(Scaling(2, 3))
	x, y := m.Apply(1, 1)
	if x != 22 || y != 63 {
		t.Errorf("expected (22, 63), got (%v, %v)", x, y)
	}

	if got := Identity.Mul(m); got != m {
		t.Errorf("expected %v, got %v", m, got)
	}

	// Td shift happens in text space
	m2 := Scaling(2, 2).Shift(5, 0)
	x, y = m2.Apply(0, 0)
	if x != 10 || y != 0 {
		t.Errorf("expected (10, 0), got (%v, %v)", x, y)
	}
}

func TestDecodeTextString(t *testing.T) {
	for _, test := range []struct {
		in  string
		exp string
	}{
		{"abc", "abc"},
		{"\xfe\xff\x00h\x00i", "hi"},
		{"caf\xe9", "café"},
		{"a\x84b", "a—b"},
		{"\xa0", "€"},
	} {
		if got := DecodeTextString(test.in); got != test.exp {
			t.Errorf("DecodeTextString(%q): expected %q, got %q", test.in, test.exp, got)
		}
	}
}
