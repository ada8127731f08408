// Package simpleencodings provides the predefined single-byte
// encodings used by PDF simple fonts (Annex D of the specification).
package simpleencodings

import (
	"unicode/utf8"

	"github.com/jferard/minimalpdfparser/model"
	"golang.org/x/text/encoding/charmap"
)

// Encoding maps the 256 character codes of a simple font to
// their unicode value. A zero entry means the code is not
// defined by the encoding.
type Encoding [256]rune

// fromCharmap converts one of the x/text tables, dropping
// the codes mapped to the replacement rune.
func fromCharmap(cm *charmap.Charmap) Encoding {
	var out Encoding
	for code := 0; code < 256; code++ {
		r := cm.DecodeByte(byte(code))
		if r != utf8.RuneError {
			out[code] = r
		}
	}
	return out
}

var (
	// WinAnsi is WinAnsiEncoding, that is Windows code page 1252.
	WinAnsi = fromCharmap(charmap.Windows1252)

	// MacRoman is MacRomanEncoding.
	MacRoman = fromCharmap(charmap.Macintosh)

	// PdfDoc is PDFDocEncoding, used for text strings
	// outside of content streams.
	PdfDoc = Encoding(model.PDFDocRunes)
)

// PredefinedEncodings exposes the encodings that may be selected
// by name in a font dictionary.
var PredefinedEncodings = map[model.ObjName]*Encoding{
	"StandardEncoding": &Standard,
	"WinAnsiEncoding":  &WinAnsi,
	"MacRomanEncoding": &MacRoman,
	"PDFDocEncoding":   &PdfDoc,
}

// Standard is the Adobe StandardEncoding (Table D.2),
// the default encoding of non symbolic Type1 fonts.
var Standard = Encoding{
	0x20: ' ', 0x21: '!', 0x22: '"', 0x23: '#', 0x24: '$', 0x25: '%',
	0x26: '&', 0x27: 0x2019, 0x28: '(', 0x29: ')', 0x2A: '*', 0x2B: '+',
	0x2C: ',', 0x2D: '-', 0x2E: '.', 0x2F: '/',
	0x30: '0', 0x31: '1', 0x32: '2', 0x33: '3', 0x34: '4', 0x35: '5',
	0x36: '6', 0x37: '7', 0x38: '8', 0x39: '9',
	0x3A: ':', 0x3B: ';', 0x3C: '<', 0x3D: '=', 0x3E: '>', 0x3F: '?',
	0x40: '@',
	0x41: 'A', 0x42: 'B', 0x43: 'C', 0x44: 'D', 0x45: 'E', 0x46: 'F',
	0x47: 'G', 0x48: 'H', 0x49: 'I', 0x4A: 'J', 0x4B: 'K', 0x4C: 'L',
	0x4D: 'M', 0x4E: 'N', 0x4F: 'O', 0x50: 'P', 0x51: 'Q', 0x52: 'R',
	0x53: 'S', 0x54: 'T', 0x55: 'U', 0x56: 'V', 0x57: 'W', 0x58: 'X',
	0x59: 'Y', 0x5A: 'Z',
	0x5B: '[', 0x5C: '\\', 0x5D: ']', 0x5E: '^', 0x5F: '_', 0x60: 0x2018,
	0x61: 'a', 0x62: 'b', 0x63: 'c', 0x64: 'd', 0x65: 'e', 0x66: 'f',
	0x67: 'g', 0x68: 'h', 0x69: 'i', 0x6A: 'j', 0x6B: 'k', 0x6C: 'l',
	0x6D: 'm', 0x6E: 'n', 0x6F: 'o', 0x70: 'p', 0x71: 'q', 0x72: 'r',
	0x73: 's', 0x74: 't', 0x75: 'u', 0x76: 'v', 0x77: 'w', 0x78: 'x',
	0x79: 'y', 0x7A: 'z',
	0x7B: '{', 0x7C: '|', 0x7D: '}', 0x7E: '~',
	0xA1: 0x00A1, 0xA2: 0x00A2, 0xA3: 0x00A3, 0xA4: 0x2044, 0xA5: 0x00A5,
	0xA6: 0x0192, 0xA7: 0x00A7, 0xA8: 0x00A4, 0xA9: 0x0027, 0xAA: 0x201C,
	0xAB: 0x00AB, 0xAC: 0x2039, 0xAD: 0x203A, 0xAE: 0xFB01, 0xAF: 0xFB02,
	0xB1: 0x2013, 0xB2: 0x2020, 0xB3: 0x2021, 0xB4: 0x00B7, 0xB6: 0x00B6,
	0xB7: 0x2022, 0xB8: 0x201A, 0xB9: 0x201E, 0xBA: 0x201D, 0xBB: 0x00BB,
	0xBC: 0x2026, 0xBD: 0x2030, 0xBF: 0x00BF,
	0xC1: 0x0060, 0xC2: 0x00B4, 0xC3: 0x02C6, 0xC4: 0x02DC, 0xC5: 0x00AF,
	0xC6: 0x02D8, 0xC7: 0x02D9, 0xC8: 0x00A8, 0xCA: 0x02DA, 0xCB: 0x00B8,
	0xCD: 0x02DD, 0xCE: 0x02DB, 0xCF: 0x02C7,
	0xD0: 0x2014,
	0xE1: 0x00C6, 0xE3: 0x00AA, 0xE8: 0x0141, 0xE9: 0x00D8, 0xEA: 0x0152,
	0xEB: 0x00BA,
	0xF1: 0x00E6, 0xF5: 0x0131, 0xF8: 0x0142, 0xF9: 0x00F8, 0xFA: 0x0153,
	0xFB: 0x00DF,
}

// Symbol is the builtin encoding of the Symbol font (Table D.5).
var Symbol = Encoding{
	0x20: ' ', 0x21: '!', 0x22: 0x2200, 0x23: '#', 0x24: 0x2203,
	0x25: '%', 0x26: '&', 0x27: 0x220B, 0x28: '(', 0x29: ')',
	0x2A: 0x2217, 0x2B: '+', 0x2C: ',', 0x2D: 0x2212, 0x2E: '.', 0x2F: '/',
	0x30: '0', 0x31: '1', 0x32: '2', 0x33: '3', 0x34: '4', 0x35: '5',
	0x36: '6', 0x37: '7', 0x38: '8', 0x39: '9',
	0x3A: ':', 0x3B: ';', 0x3C: '<', 0x3D: '=', 0x3E: '>', 0x3F: '?',
	0x40: 0x2245,
	0x41: 0x0391, 0x42: 0x0392, 0x43: 0x03A7, 0x44: 0x0394, 0x45: 0x0395,
	0x46: 0x03A6, 0x47: 0x0393, 0x48: 0x0397, 0x49: 0x0399, 0x4A: 0x03D1,
	0x4B: 0x039A, 0x4C: 0x039B, 0x4D: 0x039C, 0x4E: 0x039D, 0x4F: 0x039F,
	0x50: 0x03A0, 0x51: 0x0398, 0x52: 0x03A1, 0x53: 0x03A3, 0x54: 0x03A4,
	0x55: 0x03A5, 0x56: 0x03C2, 0x57: 0x03A9, 0x58: 0x039E, 0x59: 0x03A8,
	0x5A: 0x0396,
	0x5B: '[', 0x5C: 0x2234, 0x5D: ']', 0x5E: 0x22A5, 0x5F: '_',
	0x60: 0xF8E5,
	0x61: 0x03B1, 0x62: 0x03B2, 0x63: 0x03C7, 0x64: 0x03B4, 0x65: 0x03B5,
	0x66: 0x03C6, 0x67: 0x03B3, 0x68: 0x03B7, 0x69: 0x03B9, 0x6A: 0x03D5,
	0x6B: 0x03BA, 0x6C: 0x03BB, 0x6D: 0x03BC, 0x6E: 0x03BD, 0x6F: 0x03BF,
	0x70: 0x03C0, 0x71: 0x03B8, 0x72: 0x03C1, 0x73: 0x03C3, 0x74: 0x03C4,
	0x75: 0x03C5, 0x76: 0x03D6, 0x77: 0x03C9, 0x78: 0x03BE, 0x79: 0x03C8,
	0x7A: 0x03B6,
	0x7B: '{', 0x7C: '|', 0x7D: '}', 0x7E: 0x223C,
	0xA0: 0x20AC, 0xA1: 0x03D2, 0xA2: 0x2032, 0xA3: 0x2264, 0xA4: 0x2044,
	0xA5: 0x221E, 0xA6: 0x0192, 0xA7: 0x2663, 0xA8: 0x2666, 0xA9: 0x2665,
	0xAA: 0x2660, 0xAB: 0x2194, 0xAC: 0x2190, 0xAD: 0x2191, 0xAE: 0x2192,
	0xAF: 0x2193,
	0xB0: 0x00B0, 0xB1: 0x00B1, 0xB2: 0x2033, 0xB3: 0x2265, 0xB4: 0x00D7,
	0xB5: 0x221D, 0xB6: 0x2202, 0xB7: 0x2022, 0xB8: 0x00F7, 0xB9: 0x2260,
	0xBA: 0x2261, 0xBB: 0x2248, 0xBC: 0x2026, 0xBD: 0x23D0, 0xBE: 0x23AF,
	0xBF: 0x21B5,
	0xC0: 0x2135, 0xC1: 0x2111, 0xC2: 0x211C, 0xC3: 0x2118, 0xC4: 0x2297,
	0xC5: 0x2295, 0xC6: 0x2205, 0xC7: 0x2229, 0xC8: 0x222A, 0xC9: 0x2283,
	0xCA: 0x2287, 0xCB: 0x2284, 0xCC: 0x2282, 0xCD: 0x2286, 0xCE: 0x2208,
	0xCF: 0x2209,
	0xD0: 0x2220, 0xD1: 0x2207, 0xD2: 0x00AE, 0xD3: 0x00A9, 0xD4: 0x2122,
	0xD5: 0x220F, 0xD6: 0x221A, 0xD7: 0x22C5, 0xD8: 0x00AC, 0xD9: 0x2227,
	0xDA: 0x2228, 0xDB: 0x21D4, 0xDC: 0x21D0, 0xDD: 0x21D1, 0xDE: 0x21D2,
	0xDF: 0x21D3,
	0xE0: 0x25CA, 0xE1: 0x2329, 0xE2: 0x00AE, 0xE3: 0x00A9, 0xE4: 0x2122,
	0xE5: 0x2211, 0xE6: 0x239B, 0xE7: 0x239C, 0xE8: 0x239D, 0xE9: 0x23A1,
	0xEA: 0x23A2, 0xEB: 0x23A3, 0xEC: 0x23A7, 0xED: 0x23A8, 0xEE: 0x23A9,
	0xEF: 0x23AA,
	0xF1: 0x232A, 0xF2: 0x222B, 0xF3: 0x2320, 0xF4: 0x23AE, 0xF5: 0x2321,
	0xF6: 0x239E, 0xF7: 0x239F, 0xF8: 0x23A0, 0xF9: 0x23A4, 0xFA: 0x23A5,
	0xFB: 0x23A6, 0xFC: 0x23AB, 0xFD: 0x23AC, 0xFE: 0x23AD,
}

// ZapfDingbats is the builtin encoding of the ZapfDingbats
// font (Table D.6).
var ZapfDingbats = Encoding{
	0x20: ' ', 0x21: 0x2701, 0x22: 0x2702, 0x23: 0x2703, 0x24: 0x2704,
	0x25: 0x260E, 0x26: 0x2706, 0x27: 0x2707, 0x28: 0x2708, 0x29: 0x2709,
	0x2A: 0x261B, 0x2B: 0x261E, 0x2C: 0x270C, 0x2D: 0x270D, 0x2E: 0x270E,
	0x2F: 0x270F,
	0x30: 0x2710, 0x31: 0x2711, 0x32: 0x2712, 0x33: 0x2713, 0x34: 0x2714,
	0x35: 0x2715, 0x36: 0x2716, 0x37: 0x2717, 0x38: 0x2718, 0x39: 0x2719,
	0x3A: 0x271A, 0x3B: 0x271B, 0x3C: 0x271C, 0x3D: 0x271D, 0x3E: 0x271E,
	0x3F: 0x271F,
	0x40: 0x2720, 0x41: 0x2721, 0x42: 0x2722, 0x43: 0x2723, 0x44: 0x2724,
	0x45: 0x2725, 0x46: 0x2726, 0x47: 0x2727, 0x48: 0x2605, 0x49: 0x2729,
	0x4A: 0x272A, 0x4B: 0x272B, 0x4C: 0x272C, 0x4D: 0x272D, 0x4E: 0x272E,
	0x4F: 0x272F,
	0x50: 0x2730, 0x51: 0x2731, 0x52: 0x2732, 0x53: 0x2733, 0x54: 0x2734,
	0x55: 0x2735, 0x56: 0x2736, 0x57: 0x2737, 0x58: 0x2738, 0x59: 0x2739,
	0x5A: 0x273A, 0x5B: 0x273B, 0x5C: 0x273C, 0x5D: 0x273D, 0x5E: 0x273E,
	0x5F: 0x273F,
	0x60: 0x2740, 0x61: 0x2741, 0x62: 0x2742, 0x63: 0x2743, 0x64: 0x2744,
	0x65: 0x2745, 0x66: 0x2746, 0x67: 0x2747, 0x68: 0x2748, 0x69: 0x2749,
	0x6A: 0x274A, 0x6B: 0x274B, 0x6C: 0x25CF, 0x6D: 0x274D, 0x6E: 0x25A0,
	0x6F: 0x274F,
	0x70: 0x2750, 0x71: 0x2751, 0x72: 0x2752, 0x73: 0x25B2, 0x74: 0x25BC,
	0x75: 0x25C6, 0x76: 0x2756, 0x77: 0x25D7, 0x78: 0x2758, 0x79: 0x2759,
	0x7A: 0x275A, 0x7B: 0x275B, 0x7C: 0x275C, 0x7D: 0x275D, 0x7E: 0x275E,
	0x80: 0x2768, 0x81: 0x2769, 0x82: 0x276A, 0x83: 0x276B, 0x84: 0x276C,
	0x85: 0x276D, 0x86: 0x276E, 0x87: 0x276F, 0x88: 0x2770, 0x89: 0x2771,
	0x8A: 0x2772, 0x8B: 0x2773, 0x8C: 0x2774, 0x8D: 0x2775,
	0xA1: 0x2761, 0xA2: 0x2762, 0xA3: 0x2763, 0xA4: 0x2764, 0xA5: 0x2765,
	0xA6: 0x2766, 0xA7: 0x2767, 0xA8: 0x2663, 0xA9: 0x2666, 0xAA: 0x2665,
	0xAB: 0x2660, 0xAC: 0x2460, 0xAD: 0x2461, 0xAE: 0x2462, 0xAF: 0x2463,
	0xB0: 0x2464, 0xB1: 0x2465, 0xB2: 0x2466, 0xB3: 0x2467, 0xB4: 0x2468,
	0xB5: 0x2469, 0xB6: 0x2776, 0xB7: 0x2777, 0xB8: 0x2778, 0xB9: 0x2779,
	0xBA: 0x277A, 0xBB: 0x277B, 0xBC: 0x277C, 0xBD: 0x277D, 0xBE: 0x277E,
	0xBF: 0x277F,
	0xC0: 0x2780, 0xC1: 0x2781, 0xC2: 0x2782, 0xC3: 0x2783, 0xC4: 0x2784,
	0xC5: 0x2785, 0xC6: 0x2786, 0xC7: 0x2787, 0xC8: 0x2788, 0xC9: 0x2789,
	0xCA: 0x278A, 0xCB: 0x278B, 0xCC: 0x278C, 0xCD: 0x278D, 0xCE: 0x278E,
	0xCF: 0x278F,
	0xD0: 0x2790, 0xD1: 0x2791, 0xD2: 0x2792, 0xD3: 0x2793, 0xD4: 0x2794,
	0xD5: 0x2192, 0xD6: 0x2194, 0xD7: 0x2195, 0xD8: 0x2798, 0xD9: 0x2799,
	0xDA: 0x279A, 0xDB: 0x279B, 0xDC: 0x279C, 0xDD: 0x279D, 0xDE: 0x279E,
	0xDF: 0x279F,
	0xE0: 0x27A0, 0xE1: 0x27A1, 0xE2: 0x27A2, 0xE3: 0x27A3, 0xE4: 0x27A4,
	0xE5: 0x27A5, 0xE6: 0x27A6, 0xE7: 0x27A7, 0xE8: 0x27A8, 0xE9: 0x27A9,
	0xEA: 0x27AA, 0xEB: 0x27AB, 0xEC: 0x27AC, 0xED: 0x27AD, 0xEE: 0x27AE,
	0xEF: 0x27AF,
	0xF1: 0x27B1, 0xF2: 0x27B2, 0xF3: 0x27B3, 0xF4: 0x27B4, 0xF5: 0x27B5,
	0xF6: 0x27B6, 0xF7: 0x27B7, 0xF8: 0x27B8, 0xF9: 0x27B9, 0xFA: 0x27BA,
	0xFB: 0x27BB, 0xFC: 0x27BC, 0xFD: 0x27BD, 0xFE: 0x27BE,
}
