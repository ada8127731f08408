// Package extractor implements text extraction from the pages of
// a PDF file: it interprets the text showing operators of content
// streams, tracking the text matrices and the font metrics, and
// hands positioned text runs to a pluggable Processor.
package extractor

import (
	"math"
	"strings"

	cs "github.com/jferard/minimalpdfparser/contentstream"
	"github.com/jferard/minimalpdfparser/file"
	"github.com/jferard/minimalpdfparser/fonts"
	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

type Fl = model.Fl

// Text is a positioned run of text, in device space.
type Text struct {
	S string

	X, Y  Fl // position of the text origin
	Width Fl

	// effective font size, used by line detection
	FontSize Fl

	// width of the space character of the font, used by
	// layout heuristics
	SpaceWidth Fl
}

// Processor accumulates positioned text runs into a plain
// text output.
type Processor interface {
	Run(t Text)
	Result() string
}

// Extractor walks the pages of a document.
type Extractor struct {
	doc file.PDFFile
}

func New(doc file.PDFFile) Extractor { return Extractor{doc: doc} }

// Text extracts the text of all the pages, in stream order,
// separated by form feeds.
func (e Extractor) Text() (string, error) {
	pages, err := e.doc.Pages()
	if err != nil {
		return "", err
	}
	chunks := make([]string, len(pages))
	for i, page := range pages {
		chunks[i] = e.PageText(page, NewRawProcessor())
	}
	return strings.Join(chunks, "\f"), nil
}

// PageText extracts the text of one page with the given
// processor. Damaged content degrades to a partial output
// instead of failing.
func (e Extractor) PageText(page file.Page, proc Processor) string {
	ops, err := parser.ParseContent(page.Contents)
	if err != nil {
		log.Read.Printf("damaged page content: %s", err)
	}
	eng := engine{
		fonts: e.pageFonts(page),
		proc:  proc,
		ctm:   model.Identity,
	}
	eng.ts.reset()
	for _, op := range ops {
		eng.process(op)
	}
	return proc.Result()
}

// pageFonts builds the fonts of the page resources. A font that
// can't be interpreted is skipped: its text will be ignored.
func (e Extractor) pageFonts(page file.Page) map[model.ObjName]fonts.Font {
	dict, _ := e.doc.ResolveObject(page.Resources["Font"]).(parser.Dict)
	out := make(map[model.ObjName]fonts.Font, len(dict))
	for name, ref := range dict {
		fontDict, ok := e.doc.ResolveObject(ref).(parser.Dict)
		if !ok {
			continue
		}
		font, err := fonts.BuildFont(e.doc, fontDict)
		if err != nil {
			log.Read.Printf("unusable font %s: %s", name, err)
			continue
		}
		out[name] = font
	}
	return out
}

// textState is the text related part of the graphics state (9.3.1).
type textState struct {
	tm, tlm model.Matrix

	font     fonts.Font
	fontSize Fl

	charSpacing Fl // Tc
	wordSpacing Fl // Tw
	scale       Fl // Tz, as a percentage
	leading     Fl // TL
	rise        Fl // Ts
	render      uint8
}

func (ts *textState) reset() {
	*ts = textState{tm: model.Identity, tlm: model.Identity, scale: 100}
}

// nextLine moves to the start of the next line, offset from the
// start of the current line (Td).
func (ts *textState) nextLine(tx, ty Fl) {
	ts.tlm = ts.tlm.Shift(tx, ty)
	ts.tm = ts.tlm
}

type engine struct {
	fonts map[model.ObjName]fonts.Font
	proc  Processor

	ctm   model.Matrix
	stack []model.Matrix

	ts textState
}

func (e *engine) process(op cs.Operation) {
	switch op := op.(type) {
	case cs.OpSave:
		e.stack = append(e.stack, e.ctm)
	case cs.OpRestore:
		if L := len(e.stack); L != 0 {
			e.ctm = e.stack[L-1]
			e.stack = e.stack[:L-1]
		}
	case cs.OpConcat:
		e.ctm = op.Matrix.Mul(e.ctm)
	case cs.OpBeginText:
		e.ts.tm = model.Identity
		e.ts.tlm = model.Identity
	case cs.OpSetFont:
		e.ts.font = e.fonts[op.Font]
		e.ts.fontSize = op.Size
	case cs.OpSetCharSpacing:
		e.ts.charSpacing = op.CharSpace
	case cs.OpSetWordSpacing:
		e.ts.wordSpacing = op.WordSpace
	case cs.OpSetHorizScaling:
		e.ts.scale = op.Scale
	case cs.OpSetTextLeading:
		e.ts.leading = op.L
	case cs.OpSetTextRise:
		e.ts.rise = op.Rise
	case cs.OpSetTextRender:
		e.ts.render = op.Render
	case cs.OpTextMove:
		e.ts.nextLine(op.X, op.Y)
	case cs.OpTextMoveSet:
		e.ts.leading = -op.Y
		e.ts.nextLine(op.X, op.Y)
	case cs.OpSetTextMatrix:
		e.ts.tm = op.Matrix
		e.ts.tlm = op.Matrix
	case cs.OpTextNextLine:
		e.ts.nextLine(0, -e.ts.leading)
	case cs.OpShowText:
		e.show([]byte(op.Text))
	case cs.OpMoveShowText:
		e.ts.nextLine(0, -e.ts.leading)
		e.show([]byte(op.Text))
	case cs.OpMoveSetShowText:
		e.ts.wordSpacing = op.WordSpacing
		e.ts.charSpacing = op.CharacterSpacing
		e.ts.nextLine(0, -e.ts.leading)
		e.show([]byte(op.Text))
	case cs.OpShowSpaceText:
		for _, chunk := range op.Texts {
			if chunk.CharCodes != "" {
				e.show([]byte(chunk.CharCodes))
			}
			// a positive adjustment moves the next glyph back (9.4.3)
			shift := -chunk.SpaceSubtractedAfter / 1000 * e.ts.fontSize * e.ts.scale / 100
			e.ts.tm = e.ts.tm.Shift(shift, 0)
		}
	}
}

// show decodes one string argument of a text showing operator,
// emits the resulting run and advances the text matrix (9.4.4).
func (e *engine) show(content []byte) {
	ts := &e.ts
	if ts.font == nil {
		log.Read.Printf("text shown before a font is set")
		return
	}

	trm := ts.tm.Mul(e.ctm)
	x0, y0 := trm.Apply(0, ts.rise)

	var (
		sb    strings.Builder
		width Fl // in unscaled text space
	)
	for _, code := range ts.font.SplitCodes(content) {
		sb.WriteString(string(ts.font.Unicode(code)))
		w := ts.font.Width(code)/1000*ts.fontSize + ts.charSpacing
		if code == 32 && ts.font.SingleByte() {
			w += ts.wordSpacing
		}
		width += w * ts.scale / 100
	}
	ts.tm = ts.tm.Shift(width, 0)

	x1, _ := ts.tm.Mul(e.ctm).Apply(0, ts.rise)
	e.proc.Run(Text{
		S:          sb.String(),
		X:          x0,
		Y:          y0,
		Width:      x1 - x0,
		FontSize:   ts.fontSize * math.Hypot(trm[2], trm[3]),
		SpaceWidth: ts.font.SpaceWidth() / 1000 * ts.fontSize * ts.scale / 100 * math.Hypot(trm[0], trm[1]),
	})
}
