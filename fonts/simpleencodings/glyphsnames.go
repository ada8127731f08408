package simpleencodings

import "strings"

// RuneFromGlyphName maps a PostScript glyph name, as found in an
// encoding Differences array, to its unicode value.
// It combines a subset of the Adobe Glyph List with the
// algorithmic uniXXXX, uXXXX[XX], gNNN and cidNNN forms.
func RuneFromGlyphName(name string) (rune, bool) {
	if r, ok := glyphNames[name]; ok {
		return r, true
	}

	// uni followed by exactly four hex digits
	if strings.HasPrefix(name, "uni") && len(name) == 7 {
		return hexName(name[3:])
	}
	// u followed by four to six hex digits
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		return hexName(name[1:])
	}
	// gNNN and cidNNN identify glyphs, not characters: the decimal
	// value is kept as a last resort so that distinct glyphs at least
	// yield distinct outputs
	if strings.HasPrefix(name, "g") {
		return decimalName(name[1:])
	}
	if strings.HasPrefix(name, "cid") {
		return decimalName(name[3:])
	}

	// single letter names ("A", "a", ...) are their own value
	if len(name) == 1 && name[0] >= 0x21 && name[0] <= 0x7E {
		return rune(name[0]), true
	}
	return 0, false
}

func hexName(digits string) (rune, bool) {
	var val rune
	for _, c := range digits {
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		default:
			return 0, false
		}
		val = val<<4 | d
	}
	if val <= 0 || val > 0x10FFFF {
		return 0, false
	}
	return val, true
}

func decimalName(digits string) (rune, bool) {
	if digits == "" {
		return 0, false
	}
	var val rune
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
		val = val*10 + (c - '0')
	}
	if val <= 0 || val > 0x10FFFF {
		return 0, false
	}
	return val, true
}

// the names of the encodings of Annex D, plus a few common
// extended names
var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "grave": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',

	"exclamdown": 0x00A1, "cent": 0x00A2, "sterling": 0x00A3,
	"currency": 0x00A4, "yen": 0x00A5, "brokenbar": 0x00A6,
	"section": 0x00A7, "dieresis": 0x00A8, "copyright": 0x00A9,
	"ordfeminine": 0x00AA, "guillemotleft": 0x00AB, "logicalnot": 0x00AC,
	"registered": 0x00AE, "macron": 0x00AF, "degree": 0x00B0,
	"plusminus": 0x00B1, "twosuperior": 0x00B2, "threesuperior": 0x00B3,
	"acute": 0x00B4, "mu": 0x00B5, "paragraph": 0x00B6,
	"periodcentered": 0x00B7, "cedilla": 0x00B8, "onesuperior": 0x00B9,
	"ordmasculine": 0x00BA, "guillemotright": 0x00BB, "onequarter": 0x00BC,
	"onehalf": 0x00BD, "threequarters": 0x00BE, "questiondown": 0x00BF,
	"multiply": 0x00D7, "divide": 0x00F7,

	"Agrave": 0x00C0, "Aacute": 0x00C1, "Acircumflex": 0x00C2,
	"Atilde": 0x00C3, "Adieresis": 0x00C4, "Aring": 0x00C5, "AE": 0x00C6,
	"Ccedilla": 0x00C7, "Egrave": 0x00C8, "Eacute": 0x00C9,
	"Ecircumflex": 0x00CA, "Edieresis": 0x00CB, "Igrave": 0x00CC,
	"Iacute": 0x00CD, "Icircumflex": 0x00CE, "Idieresis": 0x00CF,
	"Eth": 0x00D0, "Ntilde": 0x00D1, "Ograve": 0x00D2, "Oacute": 0x00D3,
	"Ocircumflex": 0x00D4, "Otilde": 0x00D5, "Odieresis": 0x00D6,
	"Oslash": 0x00D8, "Ugrave": 0x00D9, "Uacute": 0x00DA,
	"Ucircumflex": 0x00DB, "Udieresis": 0x00DC, "Yacute": 0x00DD,
	"Thorn": 0x00DE, "germandbls": 0x00DF,
	"agrave": 0x00E0, "aacute": 0x00E1, "acircumflex": 0x00E2,
	"atilde": 0x00E3, "adieresis": 0x00E4, "aring": 0x00E5, "ae": 0x00E6,
	"ccedilla": 0x00E7, "egrave": 0x00E8, "eacute": 0x00E9,
	"ecircumflex": 0x00EA, "edieresis": 0x00EB, "igrave": 0x00EC,
	"iacute": 0x00ED, "icircumflex": 0x00EE, "idieresis": 0x00EF,
	"eth": 0x00F0, "ntilde": 0x00F1, "ograve": 0x00F2, "oacute": 0x00F3,
	"ocircumflex": 0x00F4, "otilde": 0x00F5, "odieresis": 0x00F6,
	"oslash": 0x00F8, "ugrave": 0x00F9, "uacute": 0x00FA,
	"ucircumflex": 0x00FB, "udieresis": 0x00FC, "yacute": 0x00FD,
	"thorn": 0x00FE, "ydieresis": 0x00FF, "Ydieresis": 0x0178,

	"Amacron": 0x0100, "amacron": 0x0101, "Abreve": 0x0102,
	"abreve": 0x0103, "Aogonek": 0x0104, "aogonek": 0x0105,
	"Cacute": 0x0106, "cacute": 0x0107, "Ccaron": 0x010C,
	"ccaron": 0x010D, "Dcaron": 0x010E, "dcaron": 0x010F,
	"Dcroat": 0x0110, "dcroat": 0x0111, "Emacron": 0x0112,
	"emacron": 0x0113, "Eogonek": 0x0118, "eogonek": 0x0119,
	"Ecaron": 0x011A, "ecaron": 0x011B, "Gbreve": 0x011E,
	"gbreve": 0x011F, "Imacron": 0x012A, "imacron": 0x012B,
	"Iogonek": 0x012E, "iogonek": 0x012F, "Idotaccent": 0x0130,
	"dotlessi": 0x0131, "Lacute": 0x0139, "lacute": 0x013A,
	"Lcaron": 0x013D, "lcaron": 0x013E, "Lslash": 0x0141,
	"lslash": 0x0142, "Nacute": 0x0143, "nacute": 0x0144,
	"Ncaron": 0x0147, "ncaron": 0x0148, "Omacron": 0x014C,
	"omacron": 0x014D, "Ohungarumlaut": 0x0150, "ohungarumlaut": 0x0151,
	"OE": 0x0152, "oe": 0x0153, "Racute": 0x0154, "racute": 0x0155,
	"Rcaron": 0x0158, "rcaron": 0x0159, "Sacute": 0x015A,
	"sacute": 0x015B, "Scedilla": 0x015E, "scedilla": 0x015F,
	"Scaron": 0x0160, "scaron": 0x0161, "Tcaron": 0x0164,
	"tcaron": 0x0165, "Umacron": 0x016A, "umacron": 0x016B,
	"Uring": 0x016E, "uring": 0x016F, "Uhungarumlaut": 0x0170,
	"uhungarumlaut": 0x0171, "Uogonek": 0x0172, "uogonek": 0x0173,
	"Zacute": 0x0179, "zacute": 0x017A, "Zdotaccent": 0x017B,
	"zdotaccent": 0x017C, "Zcaron": 0x017D, "zcaron": 0x017E,
	"florin": 0x0192, "caron": 0x02C7, "circumflex": 0x02C6,
	"breve": 0x02D8, "dotaccent": 0x02D9, "ring": 0x02DA,
	"ogonek": 0x02DB, "tilde": 0x02DC, "hungarumlaut": 0x02DD,

	"endash": 0x2013, "emdash": 0x2014, "quoteleft": 0x2018,
	"quoteright": 0x2019, "quotesinglbase": 0x201A, "quotedblleft": 0x201C,
	"quotedblright": 0x201D, "quotedblbase": 0x201E, "dagger": 0x2020,
	"daggerdbl": 0x2021, "bullet": 0x2022, "ellipsis": 0x2026,
	"perthousand": 0x2030, "guilsinglleft": 0x2039, "guilsinglright": 0x203A,
	"fraction": 0x2044, "Euro": 0x20AC, "trademark": 0x2122,
	"minus": 0x2212, "fi": 0xFB01, "fl": 0xFB02,
	"nbspace": 0x00A0, "sfthyphen": 0x00AD, "middot": 0x00B7,
	"apple": 0xF8FF, "notequal": 0x2260, "infinity": 0x221E,
	"lessequal": 0x2264, "greaterequal": 0x2265, "partialdiff": 0x2202,
	"summation": 0x2211, "product": 0x220F, "pi": 0x03C0,
	"integral": 0x222B, "Omega": 0x03A9, "radical": 0x221A,
	"approxequal": 0x2248, "Delta": 0x0394, "lozenge": 0x25CA,
}
