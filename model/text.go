package model

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16BEDec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// DecodeTextString decodes a PDF text string (as used for /Info values,
// outline titles, etc.) into UTF-8. Strings starting with the UTF-16BE
// byte order mark are decoded accordingly, others use PDFDocEncoding.
func DecodeTextString(s string) string {
	if len(s) >= 2 && s[0] == 0xFE && s[1] == 0xFF {
		out, err := utf16BEDec.NewDecoder().String(s[2:])
		if err != nil {
			return s
		}
		return out
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b.WriteRune(PDFDocRunes[s[i]])
	}
	return b.String()
}

// PDFDocRunes maps PDFDocEncoding bytes to runes. Undefined codes
// map to U+FFFD.
var PDFDocRunes = [256]rune{}

func init() {
	for i := range PDFDocRunes {
		// identical to Latin-1 outside the ranges patched below
		PDFDocRunes[i] = rune(i)
	}
	for code, r := range pdfDocDiffs {
		PDFDocRunes[code] = r
	}
}

// pdfDocDiffs lists where PDFDocEncoding departs from Latin-1
// (PDF 32000-1:2008, appendix D.3).
var pdfDocDiffs = map[byte]rune{
	0x18: '˘', // breve
	0x19: 'ˇ', // caron
	0x1A: 'ˆ', // circumflex
	0x1B: '˙', // dotaccent
	0x1C: '˝', // hungarumlaut
	0x1D: '˛', // ogonek
	0x1E: '˚', // ring
	0x1F: '˜', // tilde
	0x7F: '�',
	0x80: '•', // bullet
	0x81: '†', // dagger
	0x82: '‡', // daggerdbl
	0x83: '…', // ellipsis
	0x84: '—', // emdash
	0x85: '–', // endash
	0x86: 'ƒ', // florin
	0x87: '⁄', // fraction
	0x88: '‹', // guilsinglleft
	0x89: '›', // guilsinglright
	0x8A: '−', // minus
	0x8B: '‰', // perthousand
	0x8C: '„', // quotedblbase
	0x8D: '“', // quotedblleft
	0x8E: '”', // quotedblright
	0x8F: '‘', // quoteleft
	0x90: '’', // quoteright
	0x91: '‚', // quotesinglbase
	0x92: '™', // trademark
	0x93: 'ﬁ', // fi
	0x94: 'ﬂ', // fl
	0x95: 'Ł', // Lslash
	0x96: 'Œ', // OE
	0x97: 'Š', // Scaron
	0x98: 'Ÿ', // Ydieresis
	0x99: 'Ž', // Zcaron
	0x9A: 'ı', // dotlessi
	0x9B: 'ł', // lslash
	0x9C: 'œ', // oe
	0x9D: 'š', // scaron
	0x9E: 'ž', // zcaron
	0x9F: '�',
	0xA0: '€', // Euro
	0xAD: '�',
}
