package cmaps

import (
	fmt "golang.org/x/exp/errors/fmt"
	"golang.org/x/text/encoding/unicode"
)

var utf16Dec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()

// hexToCharCode returns the big-endian integer encoded by the
// (already decoded) hex string.
func hexToCharCode(shex []byte) CharCode {
	var code CharCode
	for _, v := range shex {
		code = code<<8 | CharCode(v)
	}
	return code
}

// hexToCID interprets the hex string as a CID. ToUnicode CMaps
// use at most two byte codes.
func hexToCID(shex []byte) (CID, error) {
	switch len(shex) {
	case 1:
		return CID(shex[0]), nil
	case 2:
		return CID(shex[0])<<8 | CID(shex[1]), nil
	default:
		return 0, fmt.Errorf("%w: invalid hex literal %v", ErrBadCMap, shex)
	}
}

// hexToRunes decodes the UTF-16BE encoded string to unicode
// runes. See 9.10.3: the bfchar and bfrange operators define
// mappings to character sequences expressed in UTF-16BE.
func hexToRunes(shex []byte) []rune {
	b, err := utf16Dec.Bytes(shex)
	if err != nil {
		return []rune{MissingCodeRune}
	}
	return []rune(string(b))
}
