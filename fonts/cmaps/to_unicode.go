package cmaps

import "github.com/jferard/minimalpdfparser/model"

// ToUnicode is one entry of a ToUnicode CMap, a compact mapping
// from CIDs to unicode code points.
type ToUnicode interface {
	MergeTo(accu map[CID][]rune)
}

// ToUnicodePair maps one CID to its (possibly multi-rune)
// unicode translation.
type ToUnicodePair struct {
	From CID
	Dest []rune
}

func (p ToUnicodePair) MergeTo(accu map[CID][]rune) {
	accu[p.From] = p.Dest
}

// ToUnicodeArray is a compact mapping of [From, To] to Runes.
type ToUnicodeArray struct {
	Runes    [][]rune // length To - From + 1
	From, To CID
}

func (arr ToUnicodeArray) MergeTo(accu map[CID][]rune) {
	for code := arr.From; code <= arr.To; code++ {
		accu[code] = arr.Runes[code-arr.From]
	}
}

// ToUnicodeTranslation is a compact mapping of [From, To] to
// [Dest, Dest+To-From]. It also represents a single mapping
// when From == To.
type ToUnicodeTranslation struct {
	From, To CID
	Dest     rune
}

func (tr ToUnicodeTranslation) MergeTo(accu map[CID][]rune) {
	r := tr.Dest
	for code := tr.From; code <= tr.To; code++ {
		accu[code] = []rune{r}
		r++
	}
}

// UnicodeCMap maps CIDs to unicode points. Note that it differs
// from a CID CMap in the sense that the origins of the mapping
// are CIDs and not character codes.
type UnicodeCMap struct {
	// base this cmap on UseCMap if UseCMap is not empty
	UseCMap model.ObjName

	Mappings []ToUnicode // compact representation
}

// ProperLookupTable returns a convenient form of the mapping,
// without resolving a potential UseCMap.
func (u UnicodeCMap) ProperLookupTable() map[CID][]rune {
	out := make(map[CID][]rune, len(u.Mappings)) // at least
	for _, m := range u.Mappings {
		m.MergeTo(out)
	}
	return out
}
