package file

import (
	"errors"
	"fmt"

	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	"github.com/jferard/minimalpdfparser/parser/filters"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// xrefEntry is one entry of the cross reference table.
type xrefEntry struct {
	// the resolved object, or nil before resolution.
	// Free entries stay nil.
	object parser.Object

	free bool

	// offset of the object declaration, for regular objects
	offset int64

	// for compressed objects, the object number of the object
	// stream containing them, and their index in it
	streamObjectNumber int
	streamObjectIndex  int
}

type xRefTable struct {
	objects map[parser.IndirectRef]*xrefEntry

	// generation of the most recent definition of each object
	// number. Older generations stay in `objects` but are not
	// visible in the final document.
	generations map[int]int

	// cache of the already parsed object streams
	objectStreams map[int][]parser.Object
}

func newXRefTable() xRefTable {
	return xRefTable{
		objects:       map[parser.IndirectRef]*xrefEntry{},
		generations:   map[int]int{},
		objectStreams: map[int][]parser.Object{},
	}
}

// setEntry records an entry found in a cross reference section.
// Sections are parsed from the most recent to the oldest one, so
// the first generation seen for a number is the live one.
func (x xRefTable) setEntry(ref parser.IndirectRef, entry *xrefEntry) {
	x.objects[ref] = entry
	if _, has := x.generations[ref.ObjectNumber]; !has {
		x.generations[ref.ObjectNumber] = ref.GenerationNumber
	}
}

func (x xRefTable) hasObjectNumber(objNumber int) bool {
	_, has := x.generations[objNumber]
	return has
}

// processAllObjects resolves every object of the table.
// Damaged objects are not fatal: they are logged and dropped.
func (ctx *context) processAllObjects() error {
	for ref, entry := range ctx.xrefTable.objects {
		_, err := ctx.resolveObjectNumber(ref)
		if err != nil {
			log.Read.Printf("can't read object %d %d (%s): dropping it",
				ref.ObjectNumber, ref.GenerationNumber, err)
			entry.free = true
		}
	}
	return nil
}

// resolve returns the object referenced by `o` if it is an indirect
// reference, or `o` itself otherwise.
func (ctx *context) resolve(o parser.Object) (parser.Object, error) {
	ref, ok := o.(parser.IndirectRef)
	if !ok {
		return o, nil
	}
	return ctx.resolveObjectNumber(ref)
}

func (ctx *context) resolveObjectNumber(ref parser.IndirectRef) (parser.Object, error) {
	entry, has := ctx.xrefTable.objects[ref]
	if !has || entry.free {
		// 7.3.10: a reference to an undefined object
		// is the null object
		return model.ObjNull{}, nil
	}
	if entry.object != nil {
		return entry.object, nil
	}
	// pre-seed the entry, to avoid looping on cyclic references
	entry.object = model.ObjNull{}

	if entry.streamObjectNumber != 0 { // compressed object
		objs, err := ctx.processObjectStream(entry.streamObjectNumber)
		if err != nil {
			return nil, err
		}
		if entry.streamObjectIndex >= len(objs) {
			return nil, fmt.Errorf("invalid object index %d in object stream %d",
				entry.streamObjectIndex, entry.streamObjectNumber)
		}
		// objects in object streams are not encrypted:
		// the stream content already was
		entry.object = objs[entry.streamObjectIndex]
		return entry.object, nil
	}

	tk, err := ctx.tokenizerAt(entry.offset)
	if err != nil {
		return nil, err
	}
	if _, _, err = parseObjectDeclaration(tk); err != nil {
		return nil, err
	}
	o, err := parser.NewParserFromTokenizer(tk).ParseObject()
	if err != nil {
		return nil, err
	}

	if next, _ := tk.PeekToken(); next.IsOther("stream") {
		dict, ok := o.(parser.Dict)
		if !ok {
			return nil, errors.New("expected dictionary before stream keyword")
		}
		_, _ = tk.NextToken() // consume the stream keyword
		contentOffset := entry.offset + int64(tk.StreamPosition())
		content, err := ctx.extractStreamContent(dict, contentOffset)
		if err != nil {
			return nil, err
		}
		o = model.ObjStream{Args: dict, Content: content}
	}

	if ctx.enc != nil {
		if o, err = ctx.enc.decryptObject(o, ref); err != nil {
			return nil, err
		}
	}

	entry.object = o
	return o, nil
}

// xrefStreamDict is the layout information of a cross
// reference stream.
type xrefStreamDict struct {
	w     [3]int
	index [][2]int // pairs (first object number, count)
	size  int
	prev  int64
}

func (sd xrefStreamDict) count() int {
	c := 0
	for _, pair := range sd.index {
		c += pair[1]
	}
	return c
}

func (sd xrefStreamDict) entrySize() int { return sd.w[0] + sd.w[1] + sd.w[2] }

func parseXRefStreamDict(dict parser.Dict) (xrefStreamDict, error) {
	var out xrefStreamDict
	var ok bool
	out.size, ok = model.IsInt(dict["Size"])
	if !ok {
		return out, errors.New("missing Size entry in xref stream dictionary")
	}
	w, ok := dict["W"].(parser.Array)
	if !ok || len(w) < 3 {
		return out, fmt.Errorf("invalid W entry %v", dict["W"])
	}
	for i := 0; i < 3; i++ {
		wi, ok := model.IsInt(w[i])
		if !ok || wi < 0 {
			return out, fmt.Errorf("invalid W entry %v", w[i])
		}
		out.w[i] = wi
	}
	if index, ok := dict["Index"].(parser.Array); ok {
		if len(index)%2 != 0 {
			return out, fmt.Errorf("invalid Index entry %v", index)
		}
		out.index = make([][2]int, len(index)/2)
		for i := range out.index {
			start, ok1 := model.IsInt(index[2*i])
			count, ok2 := model.IsInt(index[2*i+1])
			if !ok1 || !ok2 || count < 0 {
				return out, fmt.Errorf("invalid Index entry %v", index)
			}
			out.index[i] = [2]int{start, count}
		}
	} else { // default to one subsection covering all the objects
		out.index = [][2]int{{0, out.size}}
	}
	if prev, ok := model.IsInt(dict["Prev"]); ok {
		out.prev = int64(prev)
	}
	return out, nil
}

// parseXRefStream parses a cross reference stream at `offset`,
// and the trailer information stored in its dictionary. It returns
// the offset of the previous section (0 if it is the last one).
// With `hybrid`, entries override the free entries found in the
// classic table of the same revision.
func (ctx *context) parseXRefStream(offset int64, hybrid bool) (prev int64, err error) {
	tk, err := ctx.tokenizerAt(offset)
	if err != nil {
		return 0, err
	}
	if _, _, err = parseObjectDeclaration(tk); err != nil {
		return 0, err
	}
	o, err := parser.NewParserFromTokenizer(tk).ParseObject()
	if err != nil {
		return 0, err
	}
	dict, ok := o.(parser.Dict)
	if !ok {
		return 0, errors.New("expected cross reference stream dictionary")
	}
	if next, _ := tk.PeekToken(); !next.IsOther("stream") {
		return 0, errors.New("expected stream keyword")
	}
	_, _ = tk.NextToken()
	contentOffset := offset + int64(tk.StreamPosition())

	sd, err := parseXRefStreamDict(dict)
	if err != nil {
		return 0, err
	}

	// in a cross reference stream, Length and the filters
	// are always direct objects
	length, ok := model.IsInt(dict["Length"])
	if !ok || length < 0 || contentOffset+int64(length) > ctx.fileSize {
		return 0, fmt.Errorf("invalid xref stream Length %v", dict["Length"])
	}
	content, err := ctx.readAt(length, contentOffset)
	if err != nil {
		return 0, err
	}
	fls, err := parser.ParseDirectFilters(dict["Filter"], dict["DecodeParms"])
	if err != nil {
		return 0, err
	}
	decoded, err := filters.DecodeChain(fls, content)
	if err != nil {
		return 0, err
	}

	ctx.parseTrailerInfo(dict)
	err = ctx.extractXRefTableEntriesFromXRefStream(decoded, sd, hybrid)
	if err != nil {
		return 0, err
	}
	return sd.prev, nil
}

func bufToInt64(buf []byte) (i int64) {
	for _, b := range buf {
		i = i<<8 + int64(b)
	}
	return i
}

// extractXRefTableEntriesFromXRefStream reads the binary entries of
// a cross reference stream, each made of three big endian fields of
// w0, w1 and w2 bytes.
func (ctx *context) extractXRefTableEntriesFromXRefStream(buf []byte, sd xrefStreamDict, hybrid bool) error {
	entrySize := sd.entrySize()
	if entrySize == 0 {
		return errors.New("invalid xref stream: empty entries")
	}
	if len(buf) < sd.count()*entrySize {
		return fmt.Errorf("invalid xref stream: expected %d bytes, got %d",
			sd.count()*entrySize, len(buf))
	}

	w0, w1 := sd.w[0], sd.w[1]
	j := 0
	for _, pair := range sd.index {
		start, count := pair[0], pair[1]
		for objNumber := start; objNumber < start+count; objNumber++ {
			b := buf[j*entrySize : (j+1)*entrySize]
			j++

			c1 := int64(1) // when w0 is 0, the type defaults to 1
			if w0 > 0 {
				c1 = bufToInt64(b[0:w0])
			}
			c2 := bufToInt64(b[w0 : w0+w1])
			c3 := bufToInt64(b[w0+w1:])

			var (
				ref parser.IndirectRef
				xe  xrefEntry
			)
			switch c1 {
			case 0: // free object
				ref = parser.IndirectRef{ObjectNumber: objNumber, GenerationNumber: int(c3)}
				xe = xrefEntry{free: true}
			case 1: // regular object
				if c2 == 0 {
					log.Read.Printf("skipping in-use entry with offset 0 (object %d)", objNumber)
					continue
				}
				ref = parser.IndirectRef{ObjectNumber: objNumber, GenerationNumber: int(c3)}
				xe = xrefEntry{offset: c2}
			case 2: // object stored in an object stream
				ref = parser.IndirectRef{ObjectNumber: objNumber}
				xe = xrefEntry{streamObjectNumber: int(c2), streamObjectIndex: int(c3)}
			default:
				// 7.5.8.3: entries with an unknown type refer
				// to the null object
				continue
			}

			if previous, has := ctx.xrefTable.objects[ref]; has {
				// the first definition wins, except for hybrid
				// files where the stream completes the table
				if !(hybrid && previous.free && !xe.free) {
					continue
				}
			}
			e := xe
			ctx.xrefTable.setEntry(ref, &e)
		}
	}
	return nil
}
