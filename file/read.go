package file

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	tkn "github.com/jferard/minimalpdfparser/parser/tokenizer"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// context holds the state needed to read a PDF file.
type context struct {
	rs       io.ReadSeeker
	fileSize int64

	conf Configuration

	xrefTable xRefTable

	// set when the first entry of a subsection starting at 1 is
	// a free entry: the signature of a table shifted by one
	offByOneXref bool

	trailer trailerInfo

	headerVersion string

	enc *decryptor
}

func newContext(rs io.ReadSeeker, conf *Configuration) (*context, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if conf == nil {
		conf = NewDefaultConfiguration()
	}
	return &context{
		rs:        rs,
		fileSize:  size,
		conf:      *conf,
		xrefTable: newXRefTable(),
	}, nil
}

// readAt returns `n` bytes read at `offset`.
func (ctx *context) readAt(n int, offset int64) ([]byte, error) {
	_, err := ctx.rs.Seek(offset, io.SeekStart)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	_, err = io.ReadFull(ctx.rs, buf)
	return buf, err
}

// stream contents are read directly from the file,
// so a fixed window is enough for the other objects
const maxObjectLength = 1 << 20

// tokenizerAt returns a tokenizer positionned at `offset` in the file.
func (ctx *context) tokenizerAt(offset int64) (*tkn.Tokenizer, error) {
	if offset < 0 || offset >= ctx.fileSize {
		return nil, fmt.Errorf("invalid offset %d (file size is %d)", offset, ctx.fileSize)
	}
	l := ctx.fileSize - offset
	if l > maxObjectLength {
		l = maxObjectLength
	}
	buf, err := ctx.readAt(int(l), offset)
	if err != nil {
		return nil, err
	}
	return tkn.NewTokenizer(buf), nil
}

// parseObjectDeclaration reads an "<object> <generation> obj" header.
func parseObjectDeclaration(tk *tkn.Tokenizer) (objNumber, genNumber int, err error) {
	objTok, err := tk.NextToken()
	if err != nil {
		return 0, 0, err
	}
	objNumber, err = objTok.Int()
	if err != nil {
		return 0, 0, fmt.Errorf("invalid object number: %s", err)
	}
	genTok, err := tk.NextToken()
	if err != nil {
		return 0, 0, err
	}
	genNumber, err = genTok.Int()
	if err != nil {
		return 0, 0, fmt.Errorf("invalid generation number: %s", err)
	}
	kw, err := tk.NextToken()
	if err != nil {
		return 0, 0, err
	}
	if !kw.IsOther("obj") {
		return 0, 0, fmt.Errorf("expected obj keyword, got %v", kw)
	}
	return objNumber, genNumber, nil
}

// headerVersion returns the version of the PDF file found in its
// header and the position of the header, with a tolerance for
// leading garbage bytes.
func headerVersion(rs io.ReadSeeker, prefix string) (string, int64, error) {
	_, err := rs.Seek(0, io.SeekStart)
	if err != nil {
		return "", 0, err
	}
	buf := make([]byte, 100)
	n, _ := io.ReadFull(rs, buf)
	buf = buf[:n]

	i := bytes.Index(buf, []byte(prefix))
	if i < 0 {
		return "", 0, fmt.Errorf("corrupted header: %s not found", prefix)
	}
	v := buf[i+len(prefix):]
	if len(v) < 3 {
		return "", 0, errors.New("corrupted header: missing version")
	}
	return string(v[0:3]), int64(i), nil
}

// offsetReader exposes the tail of a source, hiding `base` leading
// bytes. The offsets of a file with garbage before its header are
// counted from the header, and can be used unchanged on it.
type offsetReader struct {
	rs   io.ReadSeeker
	base int64
}

func (r offsetReader) Read(p []byte) (int, error) { return r.rs.Read(p) }

func (r offsetReader) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekStart {
		offset += r.base
	}
	pos, err := r.rs.Seek(offset, whence)
	return pos - r.base, err
}

const bufSize = 512

// offsetLastXRefSection returns the offset of the last cross reference
// section, given by the startxref keyword. `skip` may be used to ignore
// the last bytes of the file.
func (ctx *context) offsetLastXRefSection(skip int64) (int64, error) {
	var prevBuf []byte
	for chunkEnd := ctx.fileSize - skip; ; {
		chunkStart := chunkEnd - bufSize
		if chunkStart < 0 {
			chunkStart = 0
		}
		if chunkStart >= chunkEnd {
			return 0, errors.New("can't find startxref keyword")
		}
		buf, err := ctx.readAt(int(chunkEnd-chunkStart), chunkStart)
		if err != nil {
			return 0, err
		}
		workBuf := append(buf, prevBuf...)
		if j := bytes.LastIndex(workBuf, []byte("startxref")); j != -1 {
			fields := bytes.Fields(workBuf[j+len("startxref"):])
			if len(fields) == 0 {
				return 0, errors.New("missing startxref offset")
			}
			offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
			if err != nil || offset < 0 || offset >= ctx.fileSize {
				return 0, fmt.Errorf("corrupted startxref offset %s", fields[0])
			}
			return offset, nil
		}
		prevBuf = workBuf
		chunkEnd = chunkStart
	}
}

// buildXRefTableStartingAt parses the last cross reference section
// and follows the chain of the previous ones.
func (ctx *context) buildXRefTableStartingAt(offset int64) error {
	offs := map[int64]bool{}
	ssCount := 0

	for offset != 0 {
		if offs[offset] {
			log.Read.Printf("warning: the cross reference sections form a cycle (offset %d)", offset)
			break
		}
		offs[offset] = true

		tk, err := ctx.tokenizerAt(offset)
		if err != nil {
			return err
		}
		token, err := tk.PeekToken()
		if err != nil {
			return err
		}
		if token.IsOther("xref") { // classic cross reference table
			offset, err = ctx.parseXRefSection(tk)
			if err != nil {
				return err
			}
			ssCount++
		} else { // cross reference stream
			prev, err := ctx.parseXRefStream(offset, false)
			if err != nil {
				// the section is damaged: scan the file for objects
				log.Read.Printf("invalid xref stream at %d (%s): scanning the file", offset, err)
				return ctx.bypassXrefSection()
			}
			offset = prev
		}
	}

	// some buggy producers write the free entry of object 0 under
	// the number 1, shifting all the object numbers. A table that
	// simply starts at object 1 is legal and left untouched.
	if ssCount == 1 && ctx.offByOneXref && !ctx.xrefTable.hasObjectNumber(0) {
		log.Read.Println("the free entry of object 0 is numbered 1: shifting the object numbers")
		shifted := make(map[parser.IndirectRef]*xrefEntry, len(ctx.xrefTable.objects))
		for ref, entry := range ctx.xrefTable.objects {
			ref.ObjectNumber--
			shifted[ref] = entry
		}
		ctx.xrefTable.objects = shifted
		generations := make(map[int]int, len(ctx.xrefTable.generations))
		for objNumber, gen := range ctx.xrefTable.generations {
			generations[objNumber-1] = gen
		}
		ctx.xrefTable.generations = generations
	}

	return nil
}

// parseXRefSection parses a classic cross reference table, including
// its trailer, and returns the offset of the previous section
// (0 if it is the last one).
func (ctx *context) parseXRefSection(tk *tkn.Tokenizer) (int64, error) {
	_, err := tk.NextToken() // consume the xref keyword
	if err != nil {
		return 0, err
	}

	for {
		token, err := tk.PeekToken()
		if err != nil {
			return 0, err
		}
		if token.IsOther("trailer") {
			break
		}
		if err := ctx.parseXRefTableSubSection(tk); err != nil {
			return 0, err
		}
	}

	_, err = tk.NextToken() // consume the trailer keyword
	if err != nil {
		return 0, err
	}
	return ctx.processTrailer(tk)
}

// parseXRefTableSubSection reads a "<start> <count>" line and
// the `count` entries after it.
func (ctx *context) parseXRefTableSubSection(tk *tkn.Tokenizer) error {
	startTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	start, err := startTok.Int()
	if err != nil {
		return fmt.Errorf("invalid xref subsection start: %s", err)
	}
	countTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	count, err := countTok.Int()
	if err != nil {
		return fmt.Errorf("invalid xref subsection count: %s", err)
	}
	for i := 0; i < count; i++ {
		free, err := ctx.parseXRefTableEntry(tk, start+i)
		if err != nil {
			return err
		}
		if i == 0 && start == 1 && free {
			ctx.offByOneXref = true
		}
	}
	return nil
}

// parseXRefTableEntry reads one "<offset> <generation> n|f" entry.
// Since the most recent sections come first, the first definition
// of an object wins.
func (ctx *context) parseXRefTableEntry(tk *tkn.Tokenizer, objNumber int) (free bool, err error) {
	offsetTok, err := tk.NextToken()
	if err != nil {
		return false, err
	}
	offset, err := offsetTok.Int()
	if err != nil {
		return false, fmt.Errorf("invalid xref entry offset: %s", err)
	}
	genTok, err := tk.NextToken()
	if err != nil {
		return false, err
	}
	gen, err := genTok.Int()
	if err != nil {
		return false, fmt.Errorf("invalid xref entry generation: %s", err)
	}
	typeTok, err := tk.NextToken()
	if err != nil {
		return false, err
	}
	free = typeTok.IsOther("f")
	if !free && !typeTok.IsOther("n") {
		return false, fmt.Errorf("invalid xref entry type %v", typeTok)
	}

	ref := parser.IndirectRef{ObjectNumber: objNumber, GenerationNumber: gen}
	if _, has := ctx.xrefTable.objects[ref]; has {
		return free, nil
	}

	if free {
		ctx.xrefTable.setEntry(ref, &xrefEntry{free: true})
	} else {
		if offset == 0 {
			// buggy entry: treat the object as undefined
			log.Read.Printf("skipping in-use entry with offset 0 (object %d)", objNumber)
			return false, nil
		}
		ctx.xrefTable.setEntry(ref, &xrefEntry{offset: int64(offset)})
	}
	return free, nil
}

// processTrailer parses the trailer dictionary, merges its content,
// and returns the offset of the previous xref section (0 if none).
func (ctx *context) processTrailer(tk *tkn.Tokenizer) (int64, error) {
	o, err := parser.NewParserFromTokenizer(tk).ParseObject()
	if err != nil {
		return 0, fmt.Errorf("invalid trailer: %s", err)
	}
	dict, ok := o.(parser.Dict)
	if !ok {
		return 0, fmt.Errorf("expected trailer dictionary, got %v", o)
	}
	return ctx.processTrailerDict(dict)
}

func (ctx *context) processTrailerDict(dict parser.Dict) (int64, error) {
	ctx.parseTrailerInfo(dict)

	// hybrid reference file: the additional entries are stored
	// in a cross reference stream, which takes precedence over
	// the free entries of the classic table
	if x, ok := model.IsInt(dict["XRefStm"]); ok {
		if _, err := ctx.parseXRefStream(int64(x), true); err != nil {
			log.Read.Printf("invalid XRefStm at %d: %s", x, err)
		}
	}

	prev, _ := model.IsInt(dict["Prev"])
	return int64(prev), nil
}

// trailerInfo gathers the information found in the trailers.
type trailerInfo struct {
	root              *parser.IndirectRef
	info              *parser.IndirectRef
	encrypt           parser.Object
	id                [2]string
	size              int
	additionalStreams parser.Array
}

// parseTrailerInfo merges the entries of `d` into the current trailer.
// Trailers are parsed from the most recent to the oldest one, so the
// first value found wins.
func (ctx *context) parseTrailerInfo(d parser.Dict) {
	tr := &ctx.trailer
	if tr.root == nil {
		if root, ok := d["Root"].(parser.IndirectRef); ok {
			tr.root = &root
		}
	}
	if tr.info == nil {
		if info, ok := d["Info"].(parser.IndirectRef); ok {
			tr.info = &info
		}
	}
	if tr.encrypt == nil {
		if enc, ok := d["Encrypt"]; ok {
			tr.encrypt = enc
		}
	}
	if tr.size == 0 {
		if size, ok := model.IsInt(d["Size"]); ok {
			tr.size = size
		}
	}
	if tr.id == [2]string{} {
		if id, ok := d["ID"].(parser.Array); ok && len(id) == 2 {
			id0, _ := model.IsString(id[0])
			id1, _ := model.IsString(id[1])
			tr.id = [2]string{id0, id1}
		}
	}
	if tr.additionalStreams == nil {
		if streams, ok := d["AdditionalStreams"].(parser.Array); ok {
			tr.additionalStreams = streams
		}
	}
}

// lineReader reads a source line by line, keeping track
// of the position of each line in the source.
// The logic is adapted from pdfcpu.
type lineReader struct {
	src *bufio.Reader
	pos int64 // position of the next byte to read
}

func newLineReader(rs io.Reader) lineReader {
	return lineReader{src: bufio.NewReader(rs)}
}

// readLine returns the next non empty line and the position of
// its first byte, or a nil line at the end of the source.
func (lr *lineReader) readLine() ([]byte, int64) {
	var c byte
	var err error
	for { // skip the end of line markers
		c, err = lr.src.ReadByte()
		if err != nil {
			return nil, lr.pos
		}
		lr.pos++
		if c != '\r' && c != '\n' {
			break
		}
	}
	start := lr.pos - 1
	line := []byte{c}
	for {
		c, err = lr.src.ReadByte()
		if err != nil {
			return line, start
		}
		lr.pos++
		if c == '\r' || c == '\n' {
			return line, start
		}
		line = append(line, c)
	}
}

// parseObjectDeclarationLine matches lines of the form "12 0 obj ...".
func parseObjectDeclarationLine(line []byte) (objNumber, genNumber int, ok bool) {
	fields := bytes.Fields(line)
	if len(fields) < 3 || !bytes.HasPrefix(fields[2], []byte("obj")) {
		return 0, 0, false
	}
	objNumber, err := strconv.Atoi(string(fields[0]))
	if err != nil {
		return 0, 0, false
	}
	genNumber, err = strconv.Atoi(string(fields[1]))
	if err != nil || objNumber < 0 || genNumber < 0 {
		return 0, 0, false
	}
	return objNumber, genNumber, true
}

// bypassXrefSection is a brute force fallback used when the cross
// reference sections are damaged: the whole file is scanned, looking
// for object declarations and trailers.
func (ctx *context) bypassXrefSection() error {
	if _, err := ctx.rs.Seek(0, io.SeekStart); err != nil {
		return err
	}
	log.Read.Println("scanning the file for object declarations")

	lr := newLineReader(ctx.rs)
	var trailers []int64
	for {
		line, offset := lr.readLine()
		if line == nil {
			break
		}
		if objNumber, genNumber, ok := parseObjectDeclarationLine(line); ok {
			// appended updates come last: the last declaration
			// wins, including its generation
			ref := parser.IndirectRef{ObjectNumber: objNumber, GenerationNumber: genNumber}
			ctx.xrefTable.objects[ref] = &xrefEntry{offset: offset}
			ctx.xrefTable.generations[objNumber] = genNumber
		} else if i := bytes.Index(line, []byte("trailer")); i != -1 {
			trailers = append(trailers, offset+int64(i)+int64(len("trailer")))
		}
	}

	// process the trailers, the most recent first
	for i := len(trailers) - 1; i >= 0; i-- {
		tk, err := ctx.tokenizerAt(trailers[i])
		if err != nil {
			continue
		}
		o, err := parser.NewParserFromTokenizer(tk).ParseObject()
		if err != nil {
			log.Read.Printf("invalid trailer at %d: %s", trailers[i], err)
			continue
		}
		if dict, ok := o.(parser.Dict); ok {
			ctx.parseTrailerInfo(dict)
		}
	}
	return nil
}

// recoverTrailer looks for the information usually found in the
// trailer in the objects themselves. It is used as a last resort,
// when no trailer dictionary could be located.
func (ctx *context) recoverTrailer() {
	for ref, entry := range ctx.xrefTable.objects {
		if entry.free || entry.object == nil {
			continue
		}
		switch o := entry.object.(type) {
		case parser.Dict:
			if o["Type"] == parser.Name("Catalog") && ctx.trailer.root == nil {
				root := ref
				ctx.trailer.root = &root
			}
		case model.ObjStream:
			if o.Args["Type"] == parser.Name("XRef") {
				ctx.parseTrailerInfo(o.Args)
			}
		}
	}
}
