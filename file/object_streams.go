package file

import (
	"fmt"

	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	tkn "github.com/jferard/minimalpdfparser/parser/tokenizer"
)

// processObjectStream parses the object stream with the given object
// number and returns the objects it contains, in order.
// The result is cached: an object stream usually contains many
// objects, resolved one by one.
func (ctx *context) processObjectStream(objNumber int) ([]parser.Object, error) {
	if objs, has := ctx.xrefTable.objectStreams[objNumber]; has {
		return objs, nil
	}

	// object streams are always referenced with generation 0
	o, err := ctx.resolveObjectNumber(parser.IndirectRef{ObjectNumber: objNumber})
	if err != nil {
		return nil, err
	}
	stream, ok := o.(model.ObjStream)
	if !ok {
		return nil, fmt.Errorf("object %d is not an object stream", objNumber)
	}

	n, ok := model.IsInt(stream.Args["N"])
	if !ok || n < 0 {
		return nil, fmt.Errorf("invalid N entry in object stream %d", objNumber)
	}
	first, ok := model.IsInt(stream.Args["First"])
	if !ok {
		return nil, fmt.Errorf("invalid First entry in object stream %d", objNumber)
	}

	content, err := ctx.decodeStreamContent(stream)
	if err != nil {
		return nil, err
	}
	if first < 0 || first > len(content) {
		return nil, fmt.Errorf("invalid First offset %d in object stream %d", first, objNumber)
	}

	// the header is a list of (object number, offset) pairs,
	// the offsets being relative to First
	headerTk := tkn.NewTokenizer(content[:first])
	offsets := make([]int, n)
	for i := range offsets {
		if _, err := headerTk.NextToken(); err != nil { // object number
			return nil, err
		}
		offTok, err := headerTk.NextToken()
		if err != nil {
			return nil, err
		}
		if offsets[i], err = offTok.Int(); err != nil {
			return nil, fmt.Errorf("invalid offset in object stream %d: %s", objNumber, err)
		}
	}

	objs := make([]parser.Object, n)
	for i, off := range offsets {
		if off < 0 || first+off > len(content) {
			return nil, fmt.Errorf("invalid offset %d in object stream %d", off, objNumber)
		}
		obj, err := parser.ParseObject(content[first+off:])
		if err != nil {
			return nil, err
		}
		objs[i] = obj
	}

	ctx.xrefTable.objectStreams[objNumber] = objs
	return objs, nil
}
