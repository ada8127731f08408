package file

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jferard/minimalpdfparser/parser"
)

func newTestContext(t *testing.T, content string) *context {
	t.Helper()
	ctx, err := newContext(strings.NewReader(content), nil)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

func TestLines(t *testing.T) {
	input := "\r\nabc\r\nd\r \nefgh \r\n\n\n"
	expected := []struct {
		line   string
		offset int64
	}{
		{"abc", 2},
		{"d", 7},
		{" ", 9},
		{"efgh ", 11},
	}
	lr := newLineReader(strings.NewReader(input))
	for _, exp := range expected {
		line, offset := lr.readLine()
		if string(line) != exp.line || offset != exp.offset {
			t.Errorf("expected (%q, %d), got (%q, %d)", exp.line, exp.offset, line, offset)
		}
	}
	if line, _ := lr.readLine(); line != nil {
		t.Errorf("expected end of source, got %q", line)
	}
}

func TestHeaderVersion(t *testing.T) {
	for _, tc := range []struct {
		input   string
		version string
		offset  int64
		wantErr bool
	}{
		{"%PDF-1.7\nsome content", "1.7", 0, false},
		{"garbage%PDF-1.4", "1.4", 7, false},
		{"%PDF-", "", 0, true},
		{"no header at all", "", 0, true},
	} {
		got, offset, err := headerVersion(strings.NewReader(tc.input), "%PDF-")
		if (err != nil) != tc.wantErr {
			t.Errorf("input %q: unexpected error state %v", tc.input, err)
		}
		if got != tc.version || offset != tc.offset {
			t.Errorf("input %q: expected (%q, %d), got (%q, %d)",
				tc.input, tc.version, tc.offset, got, offset)
		}
	}
}

func TestObjectDeclarationLine(t *testing.T) {
	for _, tc := range []struct {
		line     string
		obj, gen int
		ok       bool
	}{
		{"12 0 obj", 12, 0, true},
		{"12 0 obj<</Type /Page>>", 12, 0, true},
		{"3 11 obj ", 3, 11, true},
		{"12 0 objc", 12, 0, true},
		{"endobj", 0, 0, false},
		{"xref", 0, 0, false},
		{"12 X obj", 0, 0, false},
		{"-1 0 obj", 0, 0, false},
	} {
		obj, gen, ok := parseObjectDeclarationLine([]byte(tc.line))
		if ok != tc.ok || obj != tc.obj || gen != tc.gen {
			t.Errorf("line %q: expected (%d, %d, %v), got (%d, %d, %v)",
				tc.line, tc.obj, tc.gen, tc.ok, obj, gen, ok)
		}
	}
}

func TestOffsetLastXRefSection(t *testing.T) {
	// the keyword is searched backwards, in chunks
	content := strings.Repeat("x", 600) + "startxref\n 42 \n%%EOF"
	ctx := newTestContext(t, content)
	offset, err := ctx.offsetLastXRefSection(0)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 42 {
		t.Errorf("expected offset 42, got %d", offset)
	}

	ctx = newTestContext(t, strings.Repeat("x", 600))
	if _, err = ctx.offsetLastXRefSection(0); err == nil {
		t.Error("expected error on missing startxref")
	}

	// an offset outside of the file is invalid
	ctx = newTestContext(t, "startxref 999999 %%EOF")
	if _, err = ctx.offsetLastXRefSection(0); err == nil {
		t.Error("expected error on out of bounds offset")
	}
}

// a file with a damaged startxref: the objects are recovered
// by scanning the file
func TestBypassXrefSection(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj <</Type /Catalog /Pages 2 0 R>> endobj\n")
	buf.WriteString("2 0 obj <</Type /Pages /Kids [3 0 R] /Count 1>> endobj\n")
	buf.WriteString("3 0 obj <</Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]>> endobj\n")
	buf.WriteString("trailer <</Root 1 0 R /Size 4>>\n")
	buf.WriteString("startxref\n999999\n%%EOF")

	doc, err := Read(bytes.NewReader(buf.Bytes()), nil)
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
	if pages[0].MediaBox.Width() != 612 {
		t.Errorf("unexpected MediaBox %v", pages[0].MediaBox)
	}
}

// an appended update redefines an object: the scan must keep
// the last declaration
func TestBypassUpdatedObject(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj <</Type /Catalog /Pages 2 0 R>> endobj\n")
	buf.WriteString("2 0 obj <</Type /Pages /Kids [3 0 R] /Count 1>> endobj\n")
	buf.WriteString("3 0 obj <</Type /Page /Parent 2 0 R /Rotate 90>> endobj\n")
	buf.WriteString("trailer <</Root 1 0 R /Size 4>>\n")
	// the update
	buf.WriteString("3 0 obj <</Type /Page /Parent 2 0 R /Rotate 180>> endobj\n")

	doc, err := Read(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatal(err)
	}
	pages, err := doc.Pages()
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || pages[0].Rotate != 180 {
		t.Errorf("expected the updated page, got %v", pages)
	}
}

func TestClassicXref(t *testing.T) {
	// build a file with a well formed xref table
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 4)
	writeObj := func(num int, body string) {
		offsets[num-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<</Type /Catalog /Pages 2 0 R>>")
	writeObj(2, "<</Type /Pages /Kids [3 0 R] /Count 1>>")
	writeObj(3, "<</Type /Page /Parent 2 0 R /Contents 4 0 R>>")
	writeObj(4, "<</Length 9>>\nstream\n(Go) Tj f\nendstream")

	xref := buf.Len()
	buf.WriteString("xref\n0 5\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, o := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", o)
	}
	buf.WriteString("trailer\n<</Size 5 /Root 1 0 R>>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref)

	doc, err := Read(bytes.NewReader(buf.Bytes()), nil)
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
	if string(pages[0].Contents) != "(Go) Tj f" {
		t.Errorf("unexpected page content %q", pages[0].Contents)
	}
}

// a wrong Length entry on an unfiltered stream must not leak the
// bytes following the stream into its content
func TestWrongStreamLength(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 4)
	writeObj := func(num int, body string) {
		offsets[num-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<</Type /Catalog /Pages 2 0 R>>")
	writeObj(2, "<</Type /Pages /Kids [3 0 R] /Count 1>>")
	writeObj(3, "<</Type /Page /Parent 2 0 R /Contents 4 0 R>>")
	writeObj(4, "<</Length 60>>\nstream\n(Go) Tj f\nendstream")

	xref := buf.Len()
	buf.WriteString("xref\n0 5\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, o := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", o)
	}
	buf.WriteString("trailer\n<</Size 5 /Root 1 0 R>>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref)

	doc, err := Read(bytes.NewReader(buf.Bytes()), nil)
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
	if string(pages[0].Contents) != "(Go) Tj f" {
		t.Errorf("unexpected page content %q", pages[0].Contents)
	}
}

// a single subsection legally starting at object 1: the declared
// numbering must be kept
func TestXrefStartingAtOne(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 3)
	writeObj := func(num int, body string) {
		offsets[num-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<</Type /Catalog /Pages 2 0 R>>")
	writeObj(2, "<</Type /Pages /Kids [3 0 R] /Count 1>>")
	writeObj(3, "<</Type /Page /Parent 2 0 R>>")

	xref := buf.Len()
	buf.WriteString("xref\n1 3\n")
	for _, o := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", o)
	}
	buf.WriteString("trailer\n<</Size 4 /Root 1 0 R>>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref)

	doc, err := Read(bytes.NewReader(buf.Bytes()), nil)
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
}

// the free entry of object 0 written under number 1: every object
// number of the subsection is one too high
func TestOffByOneXref(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 3)
	writeObj := func(num int, body string) {
		offsets[num-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<</Type /Catalog /Pages 2 0 R>>")
	writeObj(2, "<</Type /Pages /Kids [3 0 R] /Count 1>>")
	writeObj(3, "<</Type /Page /Parent 2 0 R>>")

	xref := buf.Len()
	buf.WriteString("xref\n1 4\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, o := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", o)
	}
	buf.WriteString("trailer\n<</Size 4 /Root 1 0 R>>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref)

	doc, err := Read(bytes.NewReader(buf.Bytes()), nil)
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
}

// an incremental update rewrites an object under a new generation:
// the most recent definition must win, whatever the map order
func TestUpdatedGeneration(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 3)
	writeObj := func(num int, body string) {
		offsets[num-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<</Type /Catalog /Pages 2 0 R>>")
	writeObj(2, "<</Type /Pages /Kids [3 0 R] /Count 1>>")
	writeObj(3, "<</Type /Page /Parent 2 0 R /Rotate 90>>")

	xref1 := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, o := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", o)
	}
	buf.WriteString("trailer\n<</Size 4 /Root 1 0 R>>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref1)

	// the appended update
	updated := buf.Len()
	buf.WriteString("3 1 obj\n<</Type /Page /Parent 2 0 R /Rotate 180>>\nendobj\n")
	xref2 := buf.Len()
	buf.WriteString("xref\n3 1\n")
	fmt.Fprintf(&buf, "%010d 00001 n \n", updated)
	fmt.Fprintf(&buf, "trailer\n<</Size 4 /Root 1 0 R /Prev %d>>\n", xref1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref2)

	doc, err := Read(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatal(err)
	}
	pages, err := doc.Pages()
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || pages[0].Rotate != 180 {
		t.Errorf("expected the updated page, got %v", pages)
	}
}

// garbage before the header: the offsets of the file are counted
// from the header, not from the start of the source
func TestLeadingGarbage(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 3)
	writeObj := func(num int, body string) {
		offsets[num-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<</Type /Catalog /Pages 2 0 R>>")
	writeObj(2, "<</Type /Pages /Kids [3 0 R] /Count 1>>")
	writeObj(3, "<</Type /Page /Parent 2 0 R>>")

	xref := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, o := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", o)
	}
	buf.WriteString("trailer\n<</Size 4 /Root 1 0 R>>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref)

	full := append([]byte("a few junk bytes\n"), buf.Bytes()...)
	doc, err := Read(bytes.NewReader(full), nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.HeaderVersion != "1.4" {
		t.Errorf("unexpected version %q", doc.HeaderVersion)
	}
	pages, err := doc.Pages()
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
}
