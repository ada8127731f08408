package extractor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jferard/minimalpdfparser/file"
	"github.com/jferard/minimalpdfparser/parser"
	"github.com/phpdave11/gofpdf"
)

// helveticaPage forges a page using a bare standard font.
func helveticaPage(content string) file.Page {
	return file.Page{
		Resources: parser.Dict{"Font": parser.Dict{
			"F1": parser.Dict{
				"Type":     parser.Name("Font"),
				"Subtype":  parser.Name("Type1"),
				"BaseFont": parser.Name("Helvetica"),
			},
		}},
		Contents: []byte(content),
	}
}

func TestRawLines(t *testing.T) {
	ex := New(file.PDFFile{})
	page := helveticaPage("BT /F1 10 Tf 20 700 Td (Hello) Tj 0 -20 Td (World) Tj ET")
	if got := ex.PageText(page, NewRawProcessor()); got != "Hello\nWorld" {
		t.Errorf("unexpected text %q", got)
	}

	// a small vertical move stays on the same line
	page = helveticaPage("BT /F1 10 Tf 20 700 Td (Hel) Tj 16 2 Td (lo) Tj ET")
	if got := ex.PageText(page, NewRawProcessor()); got != "Hello" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestKerning(t *testing.T) {
	ex := New(file.PDFFile{})

	// a large negative adjustment is a disguised space
	page := helveticaPage("BT /F1 10 Tf 0 700 Td [(A) -2000 (B)] TJ ET")
	if got := ex.PageText(page, NewRawProcessor()); got != "A B" {
		t.Errorf("unexpected text %q", got)
	}

	// a small one is plain kerning
	page = helveticaPage("BT /F1 10 Tf 0 700 Td [(A) -40 (B)] TJ ET")
	if got := ex.PageText(page, NewRawProcessor()); got != "AB" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestLayout(t *testing.T) {
	ex := New(file.PDFFile{})
	page := helveticaPage("BT /F1 10 Tf 0 700 Td (Left) Tj ET " +
		"BT /F1 10 Tf 100 700 Td (Right) Tj ET " +
		"BT /F1 10 Tf 0 680 Td (Below) Tj ET")

	got := ex.PageText(page, NewLayoutProcessor())
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	// the space of the font is 5 units wide: the second column
	// starts at cell 100/5 = 20
	if lines[0] != "Left"+strings.Repeat(" ", 16)+"Right" {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if lines[1] != "Below" {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestMissingFont(t *testing.T) {
	ex := New(file.PDFFile{})
	// the font F2 is not in the resources: its text is skipped
	page := helveticaPage("BT /F2 10 Tf 0 700 Td (lost) Tj /F1 10 Tf (kept) Tj ET")
	if got := ex.PageText(page, NewRawProcessor()); got != "kept" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestExtractDocument(t *testing.T) {
	pdf := gofpdf.New("", "", "", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Cell(40, 10, "First page")
	pdf.AddPage()
	pdf.Cell(40, 10, "Second page")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}

	doc, err := file.Read(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := New(doc).Text()
	if err != nil {
		t.Fatal(err)
	}
	pages := strings.Split(got, "\f")
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if !strings.Contains(pages[0], "First page") || !strings.Contains(pages[1], "Second page") {
		t.Errorf("unexpected text %q", got)
	}
}
