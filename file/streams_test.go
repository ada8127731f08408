package file

import (
	"bytes"
	"compress/zlib"
	"strings"
	"testing"

	"github.com/jferard/minimalpdfparser/parser"
	"github.com/jferard/minimalpdfparser/parser/filters"
)

func TestReadBlindly(t *testing.T) {
	ctx := newTestContext(t, "AAAA\nBBBB\nendstream blabla")
	got, err := ctx.readStreamBlindly(0)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "AAAA\nBBBB" {
		t.Errorf("unexpected content %q", got)
	}

	// the keyword may span two chunks
	long := strings.Repeat("x", 3000)
	ctx = newTestContext(t, long+"\r\nendstream")
	got, err = ctx.readStreamBlindly(0)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != long {
		t.Errorf("unexpected content length %d", len(got))
	}

	ctx = newTestContext(t, "no end of stream")
	if _, err = ctx.readStreamBlindly(0); err == nil {
		t.Error("expected error on missing endstream")
	}
}

func TestReadFromLength(t *testing.T) {
	ctx := newTestContext(t, "ABCD\nendstream")
	got, err := ctx.readStreamFromLength(parser.Dict{"Length": parser.Integer(4)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ABCD" {
		t.Errorf("unexpected content %q", got)
	}

	// a Length out of bounds triggers the endstream scan
	got, err = ctx.readStreamFromLength(parser.Dict{"Length": parser.Integer(4000)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ABCD" {
		t.Errorf("unexpected content %q", got)
	}

	// a plausible but wrong Length is rejected too, since the
	// endstream keyword does not follow the announced bytes
	got, err = ctx.readStreamFromLength(parser.Dict{"Length": parser.Integer(7)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ABCD" {
		t.Errorf("unexpected content %q", got)
	}

	// so does a missing Length
	got, err = ctx.readStreamFromLength(parser.Dict{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ABCD" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestReadWithEOD(t *testing.T) {
	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, _ = w.Write([]byte("some content, compressed"))
	_ = w.Close()

	// a wrong Length entry is ignored when the filter
	// provides an End Of Data marker
	full := append(compressed.Bytes(), "\nendstream trailing garbage"...)
	ctx := newTestContext(t, string(full))
	args := parser.Dict{
		"Filter": parser.Name("FlateDecode"),
		"Length": parser.Integer(2), // wrong
	}
	got, err := ctx.extractStreamContent(args, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, compressed.Bytes()) {
		t.Errorf("expected %d bytes, got %d", compressed.Len(), len(got))
	}

	fls, err := parser.ParseDirectFilters(args["Filter"], nil)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := filters.DecodeChain(fls, got)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "some content, compressed" {
		t.Errorf("unexpected decoded content %q", decoded)
	}
}
