// Package cmaps implements a CMap parser, handling both the
// CID CMaps embedded in Type0 fonts (9.7.5.3) and the ToUnicode
// CMaps (9.10.3).
package cmaps

import (
	"errors"
	"fmt"

	"github.com/jferard/minimalpdfparser/model"
)

const (
	// maximum number of bytes per character code
	maxCodeLen = 4

	// MissingCodeRune replaces characters that can't be decoded.
	MissingCodeRune = '�'
)

// CharCode is a compact representation of 1 to 4 bytes,
// as found in the strings of PDF content streams.
type CharCode int32

// CID is a character identifier, the index of a glyph
// in a CID font.
type CID uint32

// CMap maps character codes to CIDs.
type CMap struct {
	Name          model.ObjName
	CIDSystemInfo CIDSystemInfo
	Type          int
	Codespaces    []Codespace
	CIDs          []CIDRange

	// base this cmap on UseCMap if UseCMap is not empty
	UseCMap model.ObjName

	simple *bool // cached value of Simple
}

// CIDSystemInfo identifies the character collection
// assumed by a CMap.
type CIDSystemInfo struct {
	Registry   string
	Ordering   string
	Supplement int
}

// Codespace is a range of character codes, sharing
// a common byte length.
type Codespace struct {
	NumBytes  int      // how many bytes should be read to match this code (between 1 and 4)
	Low, High CharCode // compact version of [4]byte
}

// newCodespaceFromBytes converts the decoded hex bounds to a
// codespace, rejecting invalid ranges.
func newCodespaceFromBytes(low, high []byte) (Codespace, error) {
	if len(low) != len(high) {
		return Codespace{}, errors.New("unequal number of bytes in range")
	}
	if L := len(low); L == 0 || L > maxCodeLen {
		return Codespace{}, fmt.Errorf("unsupported number of bytes: %d", L)
	}
	c := Codespace{
		NumBytes: len(low),
		Low:      hexToCharCode(low),
		High:     hexToCharCode(high),
	}
	if c.High < c.Low {
		return Codespace{}, errors.New("invalid character code range")
	}
	return c, nil
}

// CIDRange associates an increasing number of CIDs to the
// codes from Low to High.
type CIDRange struct {
	Codespace
	CIDStart CID // CID of the first character code in the range
}

// Simple returns true if only one-byte character codes are
// encoded. The result is cached, so Codespaces should not be
// mutated after the call.
func (cm *CMap) Simple() bool {
	if cm.simple != nil {
		return *cm.simple
	}
	simple := true
	for _, space := range cm.Codespaces {
		if space.NumBytes > 1 {
			simple = false
			break
		}
	}
	cm.simple = &simple
	return simple
}

// CharCodeToCID accumulates all the CID ranges into one map.
func (cm CMap) CharCodeToCID() map[CharCode]CID {
	out := map[CharCode]CID{}
	for _, v := range cm.CIDs {
		for index := CharCode(0); index <= v.High-v.Low; index++ {
			out[v.Low+index] = v.CIDStart + CID(index)
		}
	}
	return out
}

// BytesToCharcodes attempts to convert the entire byte array to a
// list of character codes from the ranges specified by the cmap
// codespaces.
// A partial list is returned with a false flag if a complete
// match is not possible.
func (cm *CMap) BytesToCharcodes(data []byte) ([]CharCode, bool) {
	var charcodes []CharCode
	if cm.Simple() {
		for _, b := range data {
			charcodes = append(charcodes, CharCode(b))
		}
		return charcodes, true
	}
	for i := 0; i < len(data); {
		code, n, matched := cm.matchCode(data[i:])
		if !matched {
			return charcodes, false
		}
		charcodes = append(charcodes, code)
		i += n
	}
	return charcodes, true
}

// matchCode attempts to match the start of `data` with a character
// code in the cmap codespaces, returning the code and the number
// of bytes read.
func (cm CMap) matchCode(data []byte) (code CharCode, n int, matched bool) {
	for j := 0; j < maxCodeLen; j++ {
		if j < len(data) {
			code = code<<8 | CharCode(data[j])
			n++
		}
		if cm.inCodespace(code, j+1) {
			return code, n, true
		}
	}
	return 0, 0, false
}

// inCodespace returns true if `code` is in a `numBytes` codespace.
func (cm CMap) inCodespace(code CharCode, numBytes int) bool {
	for _, cs := range cm.Codespaces {
		if cs.Low <= code && code <= cs.High && numBytes == cs.NumBytes {
			return true
		}
	}
	return false
}
