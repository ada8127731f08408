package file

import (
	"bytes"
	"errors"

	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	"github.com/jferard/minimalpdfparser/parser/filters"
)

// DecodeStream applies the filters of the stream to its content.
// Crypt filters are ignored, since decryption happened when loading
// the objects.
func (f PDFFile) DecodeStream(stream model.ObjStream) ([]byte, error) {
	resolve := func(o parser.Object) (parser.Object, error) { return f.ResolveObject(o), nil }
	fls, err := parser.ParseFilters(stream.Args["Filter"], stream.Args["DecodeParms"], resolve)
	if err != nil {
		return nil, err
	}
	return filters.DecodeChain(dropCryptFilters(fls), stream.Content)
}

// Catalog returns the resolved Root dictionary.
func (f PDFFile) Catalog() (parser.Dict, error) {
	cat, ok := f.ResolveObject(f.Root).(parser.Dict)
	if !ok {
		return nil, errors.New("missing Catalog dictionary")
	}
	return cat, nil
}

// Page is a leaf of the page tree, with its inherited attributes
// resolved and its content streams decoded.
type Page struct {
	Resources parser.Dict
	MediaBox  model.Rectangle
	Rotate    int

	// the concatenation of the decoded content streams
	Contents []byte
}

// attributes inherited through the page tree (7.7.3.4)
type inherited struct {
	resources parser.Dict
	mediaBox  *model.Rectangle
	rotate    *int
}

// Pages walks the page tree and returns the pages of the document,
// in order.
func (f PDFFile) Pages() ([]Page, error) {
	cat, err := f.Catalog()
	if err != nil {
		return nil, err
	}
	root, ok := f.ResolveObject(cat["Pages"]).(parser.Dict)
	if !ok {
		return nil, errors.New("missing Pages dictionary")
	}
	var out []Page
	err = f.walkPageTree(root, inherited{}, map[parser.IndirectRef]bool{}, &out)
	return out, err
}

func (f PDFFile) walkPageTree(node parser.Dict, inh inherited, seen map[parser.IndirectRef]bool, out *[]Page) error {
	if res, ok := f.ResolveObject(node["Resources"]).(parser.Dict); ok {
		inh.resources = res
	}
	if mb, ok := f.ResolveObject(node["MediaBox"]).(parser.Array); ok {
		if r, ok := model.NewRectangle(mb); ok {
			inh.mediaBox = &r
		}
	}
	if rot, ok := model.IsInt(f.ResolveObject(node["Rotate"])); ok {
		inh.rotate = &rot
	}

	if node["Type"] == parser.Name("Page") || node["Kids"] == nil { // a leaf
		page := Page{Resources: inh.resources}
		if inh.mediaBox != nil {
			page.MediaBox = *inh.mediaBox
		} else { // default to US Letter
			page.MediaBox = model.Rectangle{Urx: 612, Ury: 792}
		}
		if inh.rotate != nil {
			page.Rotate = *inh.rotate
		}
		var err error
		page.Contents, err = f.pageContents(node["Contents"])
		if err != nil {
			return err
		}
		*out = append(*out, page)
		return nil
	}

	kids, _ := f.ResolveObject(node["Kids"]).(parser.Array)
	for _, kid := range kids {
		if ref, ok := kid.(parser.IndirectRef); ok {
			if seen[ref] {
				return errors.New("cyclic page tree")
			}
			seen[ref] = true
		}
		kidDict, ok := f.ResolveObject(kid).(parser.Dict)
		if !ok {
			continue
		}
		if err := f.walkPageTree(kidDict, inh, seen, out); err != nil {
			return err
		}
	}
	return nil
}

// pageContents decodes and concatenates the content streams of
// a page. Missing or invalid Contents yield an empty content.
func (f PDFFile) pageContents(contents parser.Object) ([]byte, error) {
	var parts [][]byte
	switch c := f.ResolveObject(contents).(type) {
	case model.ObjStream:
		b, err := f.DecodeStream(c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, b)
	case parser.Array:
		for _, o := range c {
			stream, ok := f.ResolveObject(o).(model.ObjStream)
			if !ok {
				continue
			}
			b, err := f.DecodeStream(stream)
			if err != nil {
				return nil, err
			}
			parts = append(parts, b)
		}
	}
	// 7.8.2: the streams of a page form a single token flow,
	// but a token never spans two streams
	return bytes.Join(parts, []byte("\n")), nil
}

// DocumentInfo returns the string entries of the Info dictionary
// (Title, Author, ...), decoded as UTF-8.
func (f PDFFile) DocumentInfo() map[string]string {
	if f.Info == nil {
		return nil
	}
	dict, ok := f.ResolveObject(*f.Info).(parser.Dict)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(dict))
	for k, v := range dict {
		if s, ok := model.IsString(f.ResolveObject(v)); ok {
			out[string(k)] = model.DecodeTextString(s)
		}
	}
	return out
}
