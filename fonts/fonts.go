// Package fonts interprets font dictionaries, providing what text
// extraction needs: the segmentation of content stream strings
// into character codes, their unicode meaning and their widths.
package fonts

import (
	"github.com/jferard/minimalpdfparser/fonts/cmaps"
	"github.com/jferard/minimalpdfparser/fonts/simpleencodings"
	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	"github.com/pdfcpu/pdfcpu/pkg/log"
	fmt "golang.org/x/exp/errors/fmt"
)

type Fl = model.Fl

// Document provides access to the resolved and decoded objects
// of a PDF file. It is implemented by file.PDFFile.
type Document interface {
	ResolveObject(o parser.Object) parser.Object
	DecodeStream(stream model.ObjStream) ([]byte, error)
}

// Font exposes the text semantics of a font dictionary.
type Font interface {
	// SplitCodes segments the string argument of a text showing
	// operator into character codes.
	SplitCodes(content []byte) []cmaps.CharCode

	// Unicode returns the unicode text of the given character code.
	Unicode(c cmaps.CharCode) []rune

	// Width returns the glyph width of the given character code,
	// in thousandths of a unit of text space.
	Width(c cmaps.CharCode) Fl

	// SpaceWidth returns the width of the space character, used
	// by layout heuristics, with the same unit as Width.
	SpaceWidth() Fl

	// SingleByte returns true when the font encodes its character
	// codes on one byte. Word spacing only applies to the
	// single-byte code 32 (9.3.3).
	SingleByte() bool
}

// when a font provides no metrics at all, glyphs are given an
// arbitrary plausible width instead of zero, which would collapse
// the layout
const defaultGlyphWidth = 500

// BuildFont interprets the given font dictionary.
// The returned Font is always usable: missing or invalid optional
// entries degrade to fallbacks.
func BuildFont(doc Document, font parser.Dict) (Font, error) {
	subtype, _ := doc.ResolveObject(font["Subtype"]).(parser.Name)
	switch subtype {
	case "Type0":
		return buildType0Font(doc, font)
	case "Type1", "MMType1", "TrueType", "Type3":
		return buildSimpleFont(doc, font, subtype)
	default:
		return nil, fmt.Errorf("unsupported font subtype %s", subtype)
	}
}

// simpleFont is a font whose character codes are single bytes:
// Type1, TrueType and Type3 fonts.
type simpleFont struct {
	toUnicode    [256][]rune
	widths       []Fl // indexed from firstChar
	firstChar    int
	missingWidth Fl
}

func (f *simpleFont) SplitCodes(content []byte) []cmaps.CharCode {
	out := make([]cmaps.CharCode, len(content))
	for i, b := range content {
		out[i] = cmaps.CharCode(b)
	}
	return out
}

func (f *simpleFont) Unicode(c cmaps.CharCode) []rune {
	if c < 0 || c > 255 || f.toUnicode[c] == nil {
		return []rune{cmaps.MissingCodeRune}
	}
	return f.toUnicode[c]
}

func (f *simpleFont) Width(c cmaps.CharCode) Fl {
	index := int(c) - f.firstChar
	if index >= 0 && index < len(f.widths) {
		return f.widths[index]
	}
	return f.missingWidth
}

func (f *simpleFont) SpaceWidth() Fl {
	if w := f.Width(32); w > 0 {
		return w
	}
	return f.missingWidth
}

func (f *simpleFont) SingleByte() bool { return true }

func buildSimpleFont(doc Document, font parser.Dict, subtype parser.Name) (Font, error) {
	out := &simpleFont{}

	base := builtinEncoding(doc, font)
	var diffs parser.Array
	switch enc := doc.ResolveObject(font["Encoding"]).(type) {
	case parser.Name:
		if predefined, ok := simpleencodings.PredefinedEncodings[enc]; ok {
			base = predefined
		} else {
			log.Read.Printf("unknown encoding %s", enc)
		}
	case parser.Dict:
		if name, ok := doc.ResolveObject(enc["BaseEncoding"]).(parser.Name); ok {
			if predefined, ok := simpleencodings.PredefinedEncodings[name]; ok {
				base = predefined
			}
		}
		diffs, _ = doc.ResolveObject(enc["Differences"]).(parser.Array)
	}

	for code, r := range base {
		if r != 0 {
			out.toUnicode[code] = []rune{r}
		}
	}
	applyDifferences(doc, diffs, &out.toUnicode)

	// the ToUnicode entry takes precedence over the encoding (9.10.2)
	for code, runes := range parseToUnicode(doc, font) {
		if code <= 255 {
			out.toUnicode[code] = runes
		}
	}

	out.firstChar, out.widths = parseSimpleWidths(doc, font)
	desc, _ := doc.ResolveObject(font["FontDescriptor"]).(parser.Dict)
	if mw, ok := model.IsNumber(doc.ResolveObject(desc["MissingWidth"])); ok {
		out.missingWidth = mw
	} else if len(out.widths) == 0 {
		// no metrics at all, probably one of the standard 14 fonts
		out.missingWidth = defaultGlyphWidth
	}

	// Type3 glyph space is defined by the font matrix instead of
	// the usual 1/1000 scale (9.6.5)
	if subtype == "Type3" {
		if matrix, ok := doc.ResolveObject(font["FontMatrix"]).(parser.Array); ok && len(matrix) == 6 {
			if sx, ok := model.IsNumber(matrix[0]); ok {
				for i := range out.widths {
					out.widths[i] *= sx * 1000
				}
				out.missingWidth *= sx * 1000
			}
		}
	}
	return out, nil
}

// builtinEncoding returns the encoding of the font itself, used
// when the font dictionary has no Encoding entry.
func builtinEncoding(doc Document, font parser.Dict) *simpleencodings.Encoding {
	// the two standard fonts with a symbolic builtin encoding
	// are recognized by name (embedded font files are not parsed)
	switch doc.ResolveObject(font["BaseFont"]) {
	case parser.Name("Symbol"):
		return &simpleencodings.Symbol
	case parser.Name("ZapfDingbats"):
		return &simpleencodings.ZapfDingbats
	}
	return &simpleencodings.Standard
}

// applyDifferences overlays a Differences array: integers select
// the current code, names are resolved against the glyph list.
func applyDifferences(doc Document, diffs parser.Array, table *[256][]rune) {
	code := -1
	for _, item := range diffs {
		switch item := doc.ResolveObject(item).(type) {
		case parser.Integer:
			code = int(item)
		case parser.Name:
			if code < 0 || code > 255 {
				continue
			}
			if r, ok := simpleencodings.RuneFromGlyphName(string(item)); ok {
				table[code] = []rune{r}
			} else {
				log.Read.Printf("unknown glyph name %s", item)
				table[code] = nil
			}
			code++
		}
	}
}

func parseSimpleWidths(doc Document, font parser.Dict) (firstChar int, widths []Fl) {
	firstChar, _ = model.IsInt(doc.ResolveObject(font["FirstChar"]))
	arr, _ := doc.ResolveObject(font["Widths"]).(parser.Array)
	for _, w := range arr {
		width, _ := model.IsNumber(doc.ResolveObject(w))
		widths = append(widths, width)
	}
	return firstChar, widths
}

// parseToUnicode decodes and parses the optional ToUnicode CMap
// of a font dictionary. Errors are not fatal: text extraction
// falls back on the encoding.
func parseToUnicode(doc Document, font parser.Dict) map[cmaps.CID][]rune {
	stream, ok := doc.ResolveObject(font["ToUnicode"]).(model.ObjStream)
	if !ok {
		return nil
	}
	content, err := doc.DecodeStream(stream)
	if err != nil {
		log.Read.Printf("invalid ToUnicode stream: %s", err)
		return nil
	}
	cmap, err := cmaps.ParseUnicodeCMap(content)
	if err != nil {
		log.Read.Printf("invalid ToUnicode cmap: %s", err)
		return nil
	}
	return cmap.ProperLookupTable()
}

// compositeFont is a Type0 font: character codes are segmented
// by a CMap and mapped to the CIDs of the descendant font.
type compositeFont struct {
	// nil means one of the Identity predefined CMaps
	cmap          *cmaps.CMap
	charCodeToCID map[cmaps.CharCode]cmaps.CID

	toUnicode    map[cmaps.CID][]rune
	widths       map[cmaps.CID]Fl
	defaultWidth Fl
}

func (f *compositeFont) SplitCodes(content []byte) []cmaps.CharCode {
	if f.cmap == nil { // Identity: two-byte big-endian codes
		out := make([]cmaps.CharCode, 0, (len(content)+1)/2)
		for i := 0; i+1 < len(content); i += 2 {
			out = append(out, cmaps.CharCode(content[i])<<8|cmaps.CharCode(content[i+1]))
		}
		if len(content)%2 != 0 { // truncated trailing code
			out = append(out, cmaps.CharCode(content[len(content)-1])<<8)
		}
		return out
	}
	codes, ok := f.cmap.BytesToCharcodes(content)
	if !ok {
		log.Read.Printf("string partially outside of the font codespaces")
	}
	return codes
}

func (f *compositeFont) cid(c cmaps.CharCode) cmaps.CID {
	if f.charCodeToCID == nil {
		return cmaps.CID(c)
	}
	if cid, ok := f.charCodeToCID[c]; ok {
		return cid
	}
	return cmaps.CID(c)
}

func (f *compositeFont) Unicode(c cmaps.CharCode) []rune {
	if runes, ok := f.toUnicode[f.cid(c)]; ok {
		return runes
	}
	return []rune{cmaps.MissingCodeRune}
}

func (f *compositeFont) Width(c cmaps.CharCode) Fl {
	if w, ok := f.widths[f.cid(c)]; ok {
		return w
	}
	return f.defaultWidth
}

func (f *compositeFont) SpaceWidth() Fl {
	for cid, runes := range f.toUnicode {
		if len(runes) == 1 && runes[0] == ' ' {
			if w, ok := f.widths[cid]; ok {
				return w
			}
			break
		}
	}
	return f.defaultWidth
}

func (f *compositeFont) SingleByte() bool {
	return f.cmap != nil && f.cmap.Simple()
}

func buildType0Font(doc Document, font parser.Dict) (Font, error) {
	out := &compositeFont{defaultWidth: 1000}

	switch enc := doc.ResolveObject(font["Encoding"]).(type) {
	case parser.Name:
		// the two Identity CMaps are the only predefined
		// CMaps supported
		if enc != "Identity-H" && enc != "Identity-V" {
			log.Read.Printf("unsupported predefined CMap %s, using Identity", enc)
		}
	case model.ObjStream:
		content, err := doc.DecodeStream(enc)
		if err != nil {
			return nil, fmt.Errorf("invalid embedded CMap: %w", err)
		}
		cmap, err := cmaps.ParseCIDCMap(content)
		if err != nil {
			return nil, err
		}
		out.cmap = &cmap
		out.charCodeToCID = cmap.CharCodeToCID()
	default:
		return nil, fmt.Errorf("missing Encoding entry in Type0 font")
	}

	descendants, _ := doc.ResolveObject(font["DescendantFonts"]).(parser.Array)
	if len(descendants) != 1 {
		return nil, fmt.Errorf("expected one descendant font, got %d", len(descendants))
	}
	desc, ok := doc.ResolveObject(descendants[0]).(parser.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid descendant font")
	}

	if dw, ok := model.IsNumber(doc.ResolveObject(desc["DW"])); ok {
		out.defaultWidth = dw
	}
	out.widths = parseCIDWidths(doc, doc.ResolveObject(desc["W"]))
	out.toUnicode = parseToUnicode(doc, font)
	return out, nil
}

// parseCIDWidths interprets a W array (9.7.4.3), a list of
//
//	c [w1 w2 ... wn]
//	cFirst cLast w
//
// elements, freely mixed.
func parseCIDWidths(doc Document, w parser.Object) map[cmaps.CID]Fl {
	arr, _ := w.(parser.Array)
	if arr == nil {
		return nil
	}
	out := map[cmaps.CID]Fl{}
	for i := 0; i < len(arr); {
		start, ok := model.IsInt(doc.ResolveObject(arr[i]))
		if !ok || i+1 >= len(arr) {
			return out
		}
		switch item := doc.ResolveObject(arr[i+1]).(type) {
		case parser.Array:
			for j, wo := range item {
				if width, ok := model.IsNumber(doc.ResolveObject(wo)); ok {
					out[cmaps.CID(start+j)] = width
				}
			}
			i += 2
		default:
			last, ok1 := model.IsInt(item)
			if i+2 >= len(arr) {
				return out
			}
			width, ok2 := model.IsNumber(doc.ResolveObject(arr[i+2]))
			if !ok1 || !ok2 || last < start {
				return out
			}
			for cid := start; cid <= last; cid++ {
				out[cmaps.CID(cid)] = width
			}
			i += 3
		}
	}
	return out
}
