package file

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/jferard/minimalpdfparser/parser"
)

// buildXRefStreamPDF forges a minimal file using a cross
// reference stream, compressed with flate.
func buildXRefStreamPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")
	offsets := make([]int, 4)
	writeObj := func(num int, body string) {
		offsets[num-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<</Type /Catalog /Pages 2 0 R>>")
	writeObj(2, "<</Type /Pages /Kids [3 0 R] /Count 1>>")
	writeObj(3, "<</Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]>>")

	xref := buf.Len()
	var entries bytes.Buffer
	writeEntry := func(ty byte, f2 int, f3 byte) {
		entries.Write([]byte{ty, byte(f2 >> 8), byte(f2), f3})
	}
	writeEntry(0, 0, 0xFF) // object 0 is always free
	writeEntry(1, offsets[0], 0)
	writeEntry(1, offsets[1], 0)
	writeEntry(1, offsets[2], 0)
	writeEntry(1, xref, 0) // the xref stream itself

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, _ = w.Write(entries.Bytes())
	_ = w.Close()

	fmt.Fprintf(&buf, "4 0 obj\n<</Type /XRef /Size 5 /W [1 2 1] /Root 1 0 R /Filter /FlateDecode /Length %d>>\nstream\n",
		compressed.Len())
	buf.Write(compressed.Bytes())
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref)
	return buf.Bytes()
}

func TestXRefStream(t *testing.T) {
	doc, err := Read(bytes.NewReader(buildXRefStreamPDF()), nil)
	if err != nil {
		t.Fatal(err)
	}
	pages, err := doc.Pages()
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].MediaBox.Width() != 612 || pages[0].MediaBox.Height() != 792 {
		t.Errorf("unexpected MediaBox %v", pages[0].MediaBox)
	}
}

// buildObjectStreamPDF forges a file where the catalog, the page
// tree and the page are compressed in an object stream.
func buildObjectStreamPDF() []byte {
	objects := []string{
		"<</Type /Catalog /Pages 2 0 R>>",
		"<</Type /Pages /Kids [3 0 R] /Count 1>>",
		"<</Type /Page /Parent 2 0 R /MediaBox [0 0 595 842]>>",
	}
	var header, body bytes.Buffer
	for i, o := range objects {
		fmt.Fprintf(&header, "%d %d ", i+1, body.Len())
		body.WriteString(o)
		body.WriteString("\n")
	}
	first := header.Len()
	full := append(header.Bytes(), body.Bytes()...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")
	objStm := buf.Len()
	fmt.Fprintf(&buf, "5 0 obj\n<</Type /ObjStm /N 3 /First %d /Length %d>>\nstream\n",
		first, len(full))
	buf.Write(full)
	buf.WriteString("\nendstream\nendobj\n")

	xref := buf.Len()
	var entries bytes.Buffer
	writeEntry := func(ty byte, f2, f3 int) {
		entries.Write([]byte{ty, byte(f2 >> 8), byte(f2), byte(f3 >> 8), byte(f3)})
	}
	writeEntry(0, 0, 0xFFFF) // object 0: free
	writeEntry(2, 5, 0)      // object 1, in the object stream 5
	writeEntry(2, 5, 1)
	writeEntry(2, 5, 2)
	writeEntry(0, 0, 0xFFFF) // object 4: free
	writeEntry(1, objStm, 0)
	writeEntry(1, xref, 0)

	// an uncompressed cross reference stream is legal
	fmt.Fprintf(&buf, "6 0 obj\n<</Type /XRef /Size 7 /W [1 2 2] /Root 1 0 R /Length %d>>\nstream\n",
		entries.Len())
	buf.Write(entries.Bytes())
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref)
	return buf.Bytes()
}

func TestObjectStream(t *testing.T) {
	doc, err := Read(bytes.NewReader(buildObjectStreamPDF()), nil)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := doc.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if cat["Type"] != parser.Name("Catalog") {
		t.Errorf("unexpected catalog %v", cat)
	}
	pages, err := doc.Pages()
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].MediaBox.Width() != 595 {
		t.Errorf("unexpected MediaBox %v", pages[0].MediaBox)
	}
}

func TestXRefStreamDict(t *testing.T) {
	_, err := parseXRefStreamDict(parser.Dict{})
	if err == nil {
		t.Error("expected error on missing Size")
	}
	_, err = parseXRefStreamDict(parser.Dict{"Size": parser.Integer(4)})
	if err == nil {
		t.Error("expected error on missing W")
	}

	sd, err := parseXRefStreamDict(parser.Dict{
		"Size": parser.Integer(10),
		"W":    parser.Array{parser.Integer(1), parser.Integer(2), parser.Integer(1)},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Index defaults to a single subsection covering all the objects
	if sd.count() != 10 || sd.entrySize() != 4 {
		t.Errorf("unexpected layout %v", sd)
	}

	sd, err = parseXRefStreamDict(parser.Dict{
		"Size": parser.Integer(10),
		"W":    parser.Array{parser.Integer(1), parser.Integer(2), parser.Integer(1)},
		"Index": parser.Array{
			parser.Integer(0), parser.Integer(2),
			parser.Integer(8), parser.Integer(3),
		},
		"Prev": parser.Integer(122),
	})
	if err != nil {
		t.Fatal(err)
	}
	if sd.count() != 5 || sd.prev != 122 {
		t.Errorf("unexpected layout %v", sd)
	}
}

func TestBufToInt64(t *testing.T) {
	if got := bufToInt64([]byte{0x01, 0x00}); got != 256 {
		t.Errorf("expected 256, got %d", got)
	}
	if got := bufToInt64(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := bufToInt64([]byte{0xFF}); got != 255 {
		t.Errorf("expected 255, got %d", got)
	}
}
