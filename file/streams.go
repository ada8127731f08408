package file

import (
	"bytes"
	"errors"
	"io"

	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	"github.com/jferard/minimalpdfparser/parser/filters"
	tkn "github.com/jferard/minimalpdfparser/parser/tokenizer"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// extractStreamContent reads the raw content of a stream, starting
// at `contentOffset`. The Length entry is unreliable in practice,
// so several strategies are combined:
//   - for filtered, unencrypted streams, the End Of Data marker of
//     the first filter is authoritative
//   - otherwise the Length entry is used, when it is valid
//   - as a last resort, the data is scanned for the endstream keyword
func (ctx *context) extractStreamContent(args parser.Dict, contentOffset int64) ([]byte, error) {
	fls, err := parser.ParseFilters(args["Filter"], args["DecodeParms"], ctx.resolve)
	if err != nil {
		return nil, err
	}

	if ctx.enc == nil && len(fls) > 0 {
		content, err := ctx.readStreamWithEOD(fls[0], contentOffset)
		if err == nil {
			return content, nil
		}
		log.Read.Printf("can't use the filter EOD to read a stream (%s): using the Length entry", err)
	}
	return ctx.readStreamFromLength(args, contentOffset)
}

// readStreamWithEOD reads the content of a filtered stream, relying
// on the End Of Data marker of its first filter.
func (ctx *context) readStreamWithEOD(fi model.Filter, contentOffset int64) ([]byte, error) {
	skipper, err := filters.SkipperFor(fi)
	if err != nil {
		return nil, err
	}
	if _, err = ctx.rs.Seek(contentOffset, io.SeekStart); err != nil {
		return nil, err
	}
	length, err := skipper.Skip(ctx.rs)
	if err != nil {
		return nil, err
	}
	return ctx.readAt(length, contentOffset)
}

// readStreamFromLength reads the stream content using the Length
// entry, falling back on a scan for the endstream keyword when
// the entry is dubious.
func (ctx *context) readStreamFromLength(args parser.Dict, contentOffset int64) ([]byte, error) {
	lengthO, err := ctx.resolve(args["Length"])
	if err != nil {
		return nil, err
	}
	length, ok := model.IsInt(lengthO)
	if !ok || length < 0 || contentOffset+int64(length) > ctx.fileSize {
		log.Read.Printf("invalid stream Length %v: scanning for the endstream keyword", lengthO)
		return ctx.readStreamBlindly(contentOffset)
	}
	content, err := ctx.readAt(length, contentOffset)
	if err != nil {
		return nil, err
	}
	// a plausible Length may still be wrong: it is only trusted
	// when the endstream keyword actually follows the content
	if !ctx.keywordFollows(contentOffset+int64(length), "endstream") {
		log.Read.Printf("no endstream keyword after the %d announced bytes: scanning for it", length)
		return ctx.readStreamBlindly(contentOffset)
	}
	return content, nil
}

// keywordFollows reports whether the next token at `offset` is the
// given keyword, skipping the end of line marker before it.
func (ctx *context) keywordFollows(offset int64, keyword string) bool {
	n := int64(len(keyword)) + 4
	if offset+n > ctx.fileSize {
		n = ctx.fileSize - offset
	}
	if n < int64(len(keyword)) {
		return false
	}
	buf, err := ctx.readAt(int(n), offset)
	if err != nil {
		return false
	}
	i := 0
	for i < len(buf) && tkn.IsWhitespace(buf[i]) {
		i++
	}
	return bytes.HasPrefix(buf[i:], []byte(keyword))
}

// readStreamBlindly reads the stream content at `offset` by looking
// for the endstream keyword.
func (ctx *context) readStreamBlindly(offset int64) ([]byte, error) {
	if _, err := ctx.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	var (
		content []byte
		chunk   = make([]byte, 1024)
	)
	for {
		n, err := ctx.rs.Read(chunk)
		content = append(content, chunk[:n]...)
		if i := bytes.Index(content, []byte("endstream")); i != -1 {
			content = content[:i]
			break
		}
		if err == io.EOF {
			return nil, errors.New("missing endstream keyword")
		}
		if err != nil {
			return nil, err
		}
	}
	// remove the end of line marker required before endstream
	if l := len(content); l > 0 && content[l-1] == '\n' {
		content = content[:l-1]
	}
	if l := len(content); l > 0 && content[l-1] == '\r' {
		content = content[:l-1]
	}
	return content, nil
}

// decodeStreamContent applies the filters of the stream to its
// content. Crypt filters are ignored: the decryption already
// happened when loading the objects.
func (ctx *context) decodeStreamContent(stream model.ObjStream) ([]byte, error) {
	fls, err := parser.ParseFilters(stream.Args["Filter"], stream.Args["DecodeParms"], ctx.resolve)
	if err != nil {
		return nil, err
	}
	return filters.DecodeChain(dropCryptFilters(fls), stream.Content)
}

func dropCryptFilters(fls model.Filters) model.Filters {
	out := fls[:0:0]
	for _, fi := range fls {
		if fi.Name == model.Crypt {
			continue
		}
		out = append(out, fi)
	}
	return out
}
