package file

import (
	"bytes"
	"strings"
	"testing"

	cs "github.com/jferard/minimalpdfparser/contentstream"
	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	"github.com/phpdave11/gofpdf"
)

// buildPDF forges a one page document.
func buildPDF(t *testing.T, userPassword string) []byte {
	t.Helper()
	pdf := gofpdf.New("", "", "", "")
	if userPassword != "" {
		pdf.SetProtection(0, userPassword, "owner secret")
	}
	pdf.SetTitle("A test fixture", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(40, 10, "Hello, world")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// shownTexts collects the strings of the text showing operations.
func shownTexts(t *testing.T, content []byte) string {
	t.Helper()
	ops, err := parser.ParseContent(content)
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	for _, op := range ops {
		switch op := op.(type) {
		case cs.OpShowText:
			sb.WriteString(op.Text)
		case cs.OpShowSpaceText:
			for _, txt := range op.Texts {
				sb.WriteString(txt.CharCodes)
			}
		}
	}
	return sb.String()
}

func TestRead(t *testing.T) {
	doc, err := Read(bytes.NewReader(buildPDF(t, "")), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(doc.HeaderVersion, "1.") {
		t.Errorf("unexpected header version %s", doc.HeaderVersion)
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
	if got := shownTexts(t, pages[0].Contents); !strings.Contains(got, "Hello, world") {
		t.Errorf("expected the page text, got %q", got)
	}
	if pages[0].Resources["Font"] == nil {
		t.Error("missing Font resources")
	}

	info := doc.DocumentInfo()
	if info["Title"] != "A test fixture" {
		t.Errorf("unexpected Info %v", info)
	}
}

func TestReadProtected(t *testing.T) {
	data := buildPDF(t, "user secret")

	if _, err := Read(bytes.NewReader(data), nil); err == nil {
		t.Fatal("expected an error without the password")
	}

	for _, password := range []string{"user secret", "owner secret"} {
		doc, err := Read(bytes.NewReader(data), &Configuration{Password: password})
		if err != nil {
			t.Fatal(err)
		}
		if doc.Encryption == nil {
			t.Fatal("missing encryption information")
		}
		pages, err := doc.Pages()
		if err != nil {
			t.Fatal(err)
		}
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}
		if got := shownTexts(t, pages[0].Contents); !strings.Contains(got, "Hello, world") {
			t.Errorf("expected the decrypted page text, got %q", got)
		}
		if title := doc.DocumentInfo()["Title"]; title != "A test fixture" {
			t.Errorf("expected the decrypted title, got %q", title)
		}
	}
}

func TestResolveObject(t *testing.T) {
	doc := PDFFile{XrefTable: XrefTable{
		4: parser.Integer(8),
	}}
	if got := doc.ResolveObject(parser.IndirectRef{ObjectNumber: 4}); got != parser.Integer(8) {
		t.Errorf("unexpected object %v", got)
	}
	// direct objects pass through
	if got := doc.ResolveObject(parser.Name("direct")); got != parser.Name("direct") {
		t.Errorf("unexpected object %v", got)
	}
	// an undefined reference is the null object
	if got := doc.ResolveObject(parser.IndirectRef{ObjectNumber: 88}); got != (model.ObjNull{}) {
		t.Errorf("unexpected object %v", got)
	}
}
