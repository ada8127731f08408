package model

import (
	"fmt"
	"strconv"
	"strings"
)

// implements the basic types found in PDF files

// Object is a node of a PDF syntax tree.
//
// It is obtained from a PDF file by tokenizing and parsing its content,
// and the concrete types are the basic PDF types defined in this file.
//
// Note that the PDF null object is represented by its own concrete type,
// so Object must never be nil.
type Object interface {
	// PDFString returns a PDF string representation of the object,
	// suitable for logging and debugging. Strings and names are
	// escaped as they would be in a PDF file.
	PDFString() string

	// Clone must return a deep copy of the object, preserving the concrete type.
	Clone() Object
}

type ObjNull struct{}

func (ObjNull) String() string { return "<null>" }

func (ObjNull) PDFString() string { return "null" }

func (n ObjNull) Clone() Object { return n }

// ObjName is a symbol to be referenced,
// included in PDF files without encoding, by prepending /
type ObjName string

// String returns the PDF representation of a name
func (n ObjName) String() string {
	return "/" + string(n)
}

func (n ObjName) Clone() Object { return n }

func (n ObjName) PDFString() string {
	var b strings.Builder
	b.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c <= 0x20 || c >= 0x7f || strings.IndexByte("()<>[]{}/%#", c) != -1 {
			fmt.Fprintf(&b, "#%02X", c)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ObjFloat represents a PDF real object.
type ObjFloat Fl

func (f ObjFloat) Clone() Object { return f }
func (f ObjFloat) PDFString() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

// ObjBool represents a PDF boolean object.
type ObjBool bool

func (boolean ObjBool) Clone() Object { return boolean }
func (boolean ObjBool) PDFString() string {
	return fmt.Sprintf("%v", bool(boolean))
}

// ObjInt represents a PDF integer object.
type ObjInt int

func (i ObjInt) Clone() Object { return i }
func (i ObjInt) PDFString() string {
	return strconv.Itoa(int(i))
}

// ObjStringLiteral represents a PDF string literal object.
// Its content is stored decoded: escape sequences have been
// processed, but no text encoding has been applied.
type ObjStringLiteral string

func (s ObjStringLiteral) Clone() Object { return s }

func (s ObjStringLiteral) PDFString() string {
	return EscapeString([]byte(s))
}

// ObjHexLiteral represents a PDF hex literal object.
// As with ObjStringLiteral, its content is stored decoded.
type ObjHexLiteral string

func (h ObjHexLiteral) Clone() Object { return h }

func (h ObjHexLiteral) PDFString() string {
	var b strings.Builder
	b.WriteByte('<')
	for i := 0; i < len(h); i++ {
		fmt.Fprintf(&b, "%02x", h[i])
	}
	b.WriteByte('>')
	return b.String()
}

// ObjIndirectRef represents a reference to a PDF indirect object,
// identified by its object and generation numbers.
type ObjIndirectRef struct {
	ObjectNumber     int
	GenerationNumber int
}

func (ir ObjIndirectRef) Clone() Object { return ir }

func (ir ObjIndirectRef) PDFString() string {
	return fmt.Sprintf("%d %d R", ir.ObjectNumber, ir.GenerationNumber)
}

// ObjCommand is a PDF operator found in content streams.
type ObjCommand string

func (cmd ObjCommand) Clone() Object { return cmd }

func (cmd ObjCommand) PDFString() string {
	return string(cmd)
}

// ObjArray represents a PDF array object.
type ObjArray []Object

func (arr ObjArray) Clone() Object {
	out := make(ObjArray, len(arr))
	for i, v := range arr {
		out[i] = v.Clone()
	}
	return out
}

func (arr ObjArray) PDFString() string {
	chunks := make([]string, len(arr))
	for i, o := range arr {
		chunks[i] = o.PDFString()
	}
	return "[" + strings.Join(chunks, " ") + "]"
}

// ObjDict represents a PDF dict object.
type ObjDict map[Name]Object

func (d ObjDict) Clone() Object {
	out := make(ObjDict, len(d))
	for k, v := range d {
		out[k] = v.Clone()
	}
	return out
}

func (d ObjDict) PDFString() string {
	chunks := make([]string, 0, len(d))
	for i, o := range d {
		chunks = append(chunks, i.PDFString(), o.PDFString())
	}
	return "<<" + strings.Join(chunks, " ") + ">>"
}

// ObjStream is a stream object. Content is stored as written
// in the PDF file, that is, still encoded and possibly encrypted.
type ObjStream struct {
	Args    ObjDict
	Content []byte
}

func (stream ObjStream) Clone() Object {
	return ObjStream{
		Args:    stream.Args.Clone().(ObjDict),
		Content: append([]byte(nil), stream.Content...),
	}
}

func (stream ObjStream) PDFString() string {
	return stream.Args.PDFString() + fmt.Sprintf(" stream(%d bytes)", len(stream.Content))
}

// EscapeString escapes the given byte string and adds
// the enclosing parenthesis, as found in PDF files.
func EscapeString(s []byte) string {
	var b strings.Builder
	b.WriteByte('(')
	for _, c := range s {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// ----------------------- utils commonly used -----------------------

// Name is so used that it deserves a shorter alias
type Name = ObjName

// Fl is the numeric type used for float values.
type Fl = float64

// IsString returns `true` if `o` is either a StringLiteral
// or an HexLiteral
func IsString(o Object) (string, bool) {
	switch s := o.(type) {
	case ObjStringLiteral:
		return string(s), true
	case ObjHexLiteral:
		return string(s), true
	default:
		return "", false
	}
}

// IsNumber returns `true` if `o` is either a Float
// or an Int
func IsNumber(o Object) (Fl, bool) {
	switch t := o.(type) {
	case ObjFloat:
		return Fl(t), true
	case ObjInt:
		return Fl(t), true
	default:
		return 0, false
	}
}

// IsInt returns `true` if `o` is an integer.
func IsInt(o Object) (int, bool) {
	i, ok := o.(ObjInt)
	return int(i), ok
}

// Rectangle maps a PDF rectangle array.
type Rectangle struct {
	Llx, Lly, Urx, Ury Fl // lower-left and upper-right corners
}

// NewRectangle interprets `arr` as a rectangle.
func NewRectangle(arr ObjArray) (Rectangle, bool) {
	if len(arr) < 4 {
		return Rectangle{}, false
	}
	var out [4]Fl
	for i := 0; i < 4; i++ {
		f, ok := IsNumber(arr[i])
		if !ok {
			return Rectangle{}, false
		}
		out[i] = f
	}
	return Rectangle{Llx: out[0], Lly: out[1], Urx: out[2], Ury: out[3]}, true
}

// Height returns the absolute value of the height of the rectangle.
func (r Rectangle) Height() Fl {
	h := r.Ury - r.Lly
	if h < 0 {
		return -h
	}
	return h
}

// Width returns the absolute value of the width of the rectangle.
func (r Rectangle) Width() Fl {
	w := r.Urx - r.Llx
	if w < 0 {
		return -w
	}
	return w
}
