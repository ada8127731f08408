package cmaps

// the overall parsing logic is inspired by
// https://git.maze.io/go/unipdf/src/branch/master/internal/cmap

import (
	"errors"
	"io"
	"sort"

	"github.com/jferard/minimalpdfparser/parser"
	tkn "github.com/jferard/minimalpdfparser/parser/tokenizer"
	fmt "golang.org/x/exp/errors/fmt"
)

// ErrBadCMap is the sentinel error of the CMap parser.
var ErrBadCMap = errors.New("bad cmap")

// ParseUnicodeCMap parses the given ToUnicode CMap content.
// See 9.10.3 ToUnicode CMaps.
func ParseUnicodeCMap(data []byte) (UnicodeCMap, error) {
	cm := newCMapParser(data)
	if err := cm.parse(); err != nil {
		return UnicodeCMap{}, err
	}
	return cm.unicode, nil
}

// ParseCIDCMap parses the given CMap content, mapping character
// codes to CIDs. See 9.7.5.3 Embedded CMap Files.
func ParseCIDCMap(data []byte) (CMap, error) {
	cm := newCMapParser(data)
	if err := cm.parse(); err != nil {
		return CMap{}, err
	}
	if len(cm.cids.Codespaces) == 0 {
		if cm.cids.UseCMap != "" {
			return cm.cids, nil
		}
		return CMap{}, fmt.Errorf("%w: no codespaces", ErrBadCMap)
	}
	// shorter codes are checked first
	sort.Slice(cm.cids.Codespaces, func(i, j int) bool {
		return cm.cids.Codespaces[i].Low < cm.cids.Codespaces[j].Low
	})
	return cm.cids, nil
}

// cmapParser interprets the PostScript-flavoured content of a
// CMap stream. A CMap may contain either CIDs or unicode points:
// both are accumulated and the entry points select the relevant
// part.
type cmapParser struct {
	tokens *tkn.Tokenizer
	pr     *parser.Parser

	unicode UnicodeCMap
	cids    CMap
}

func newCMapParser(content []byte) *cmapParser {
	tokens := tkn.NewTokenizer(content)
	pr := parser.NewParserFromTokenizer(tokens)
	// CMap operators are parsed as commands
	pr.ContentStreamMode = true
	return &cmapParser{tokens: tokens, pr: pr}
}

// nextObject returns the next object of the content, or io.EOF.
func (cm *cmapParser) nextObject() (parser.Object, error) {
	if cm.tokens.IsEOF() {
		return nil, io.EOF
	}
	return cm.pr.ParseObject()
}

func (cm *cmapParser) parse() error {
	var prev parser.Object
	for {
		o, err := cm.nextObject()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := o.(type) {
		case parser.Command:
			switch t {
			case "begincodespacerange":
				err = cm.parseCodespaceRange()
			case "begincidrange":
				err = cm.parseCIDRange()
			case "begincidchar":
				err = cm.parseCIDChar()
			case "beginbfchar":
				err = cm.parseBfChar()
			case "beginbfrange":
				err = cm.parseBfRange()
			case "usecmap":
				name, ok := prev.(parser.Name)
				if !ok {
					return fmt.Errorf("%w: missing name before usecmap", ErrBadCMap)
				}
				cm.cids.UseCMap = name
				cm.unicode.UseCMap = name
			}
			if err != nil {
				return err
			}
		case parser.Name:
			switch t {
			case "CIDSystemInfo":
				err = cm.parseSystemInfo()
			case "CMapName":
				err = cm.parseName()
			case "CMapType":
				err = cm.parseType()
			}
			if err != nil {
				return err
			}
		}
		prev = o
	}
}

// parseName reads a /CMapName <name> def sequence. Some writers
// emit names with unescaped spaces, so the trailing operators
// before "def" are appended to the name.
func (cm *cmapParser) parseName() error {
	var name parser.Name
	for i := 0; i < 10; i++ {
		o, err := cm.nextObject()
		if err != nil {
			return err
		}
		switch t := o.(type) {
		case parser.Command:
			if t == "def" {
				cm.cids.Name = name
				return nil
			}
			if name != "" {
				name = parser.Name(string(name) + " " + string(t))
			}
		case parser.Name:
			name = t
		}
	}
	return ErrBadCMap
}

// parseType reads a /CMapType <int> def sequence.
func (cm *cmapParser) parseType() error {
	var ctype int
	for i := 0; i < 3; i++ {
		o, err := cm.nextObject()
		if err != nil {
			return err
		}
		switch t := o.(type) {
		case parser.Command:
			if t == "def" {
				cm.cids.Type = ctype
				return nil
			}
			return ErrBadCMap
		case parser.Integer:
			ctype = int(t)
		}
	}
	return ErrBadCMap
}

// parseSystemInfo reads a CIDSystemInfo definition, given either
// as a dictionary or as a begin ... end sequence.
func (cm *cmapParser) parseSystemInfo() error {
	var (
		inDict bool
		name   parser.Name
		info   CIDSystemInfo
	)
	// generous but arbitrary limit, to avoid looping on
	// badly formed content
	for i := 0; i < 50; i++ {
		o, err := cm.nextObject()
		if err != nil {
			return err
		}
		switch t := o.(type) {
		case parser.Dict:
			r, _ := t["Registry"].(parser.StringLiteral)
			info.Registry = string(r)
			ord, _ := t["Ordering"].(parser.StringLiteral)
			info.Ordering = string(ord)
			if s, ok := t["Supplement"].(parser.Integer); ok {
				info.Supplement = int(s)
			}
			cm.cids.CIDSystemInfo = info
			return nil
		case parser.Command:
			switch t {
			case "begin":
				inDict = true
			case "end":
				cm.cids.CIDSystemInfo = info
				return nil
			}
		case parser.Name:
			if inDict {
				name = t
			}
		case parser.StringLiteral:
			switch name {
			case "Registry":
				info.Registry = string(t)
			case "Ordering":
				info.Ordering = string(t)
			}
		case parser.Integer:
			if name == "Supplement" {
				info.Supplement = int(t)
			}
		}
	}
	return ErrBadCMap
}

func (cm *cmapParser) parseCodespaceRange() error {
	for {
		o, err := cm.nextObject()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		hexLow, ok := o.(parser.HexLiteral)
		if !ok {
			if op, isOp := o.(parser.Command); isOp && op == "endcodespacerange" {
				return nil
			}
			return fmt.Errorf("%w: codespace low bound must be an hex string", ErrBadCMap)
		}

		o, err = cm.nextObject()
		if err != nil {
			return err
		}
		hexHigh, ok := o.(parser.HexLiteral)
		if !ok {
			return fmt.Errorf("%w: codespace high bound must be an hex string", ErrBadCMap)
		}

		cspace, err := newCodespaceFromBytes([]byte(hexLow), []byte(hexHigh))
		if err != nil {
			return err
		}
		cm.cids.Codespaces = append(cm.cids.Codespaces, cspace)
	}
	if len(cm.cids.Codespaces) == 0 {
		return ErrBadCMap
	}
	return nil
}

func (cm *cmapParser) parseCIDRange() error {
	for {
		// character code interval start
		o, err := cm.nextObject()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		hexStart, ok := o.(parser.HexLiteral)
		if !ok {
			if op, isOp := o.(parser.Command); isOp && op == "endcidrange" {
				return nil
			}
			return fmt.Errorf("%w: cid interval start must be an hex string", ErrBadCMap)
		}

		// character code interval end
		o, err = cm.nextObject()
		if err != nil {
			return err
		}
		hexEnd, ok := o.(parser.HexLiteral)
		if !ok {
			return fmt.Errorf("%w: cid interval end must be an hex string", ErrBadCMap)
		}

		// CID of the interval start
		o, err = cm.nextObject()
		if err != nil {
			return err
		}
		cidStart, ok := o.(parser.Integer)
		if !ok || cidStart < 0 {
			return fmt.Errorf("%w: invalid cid start value", ErrBadCMap)
		}

		codespace, err := newCodespaceFromBytes([]byte(hexStart), []byte(hexEnd))
		if err != nil {
			return err
		}
		cm.cids.CIDs = append(cm.cids.CIDs, CIDRange{
			Codespace: codespace, CIDStart: CID(cidStart),
		})
	}
	return nil
}

func (cm *cmapParser) parseCIDChar() error {
	for {
		o, err := cm.nextObject()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		hexCode, ok := o.(parser.HexLiteral)
		if !ok {
			if op, isOp := o.(parser.Command); isOp && op == "endcidchar" {
				return nil
			}
			return fmt.Errorf("%w: cid char code must be an hex string", ErrBadCMap)
		}

		o, err = cm.nextObject()
		if err != nil {
			return err
		}
		cid, ok := o.(parser.Integer)
		if !ok || cid < 0 {
			return fmt.Errorf("%w: invalid cid value", ErrBadCMap)
		}

		// a single char is a range of length one
		codespace, err := newCodespaceFromBytes([]byte(hexCode), []byte(hexCode))
		if err != nil {
			return err
		}
		cm.cids.CIDs = append(cm.cids.CIDs, CIDRange{
			Codespace: codespace, CIDStart: CID(cid),
		})
	}
	return nil
}

func (cm *cmapParser) parseBfChar() error {
	for {
		// source code
		o, err := cm.nextObject()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		var code CID
		switch v := o.(type) {
		case parser.Command:
			if v == "endbfchar" {
				return nil
			}
			return fmt.Errorf("%w: unexpected operand %s", ErrBadCMap, v)
		case parser.HexLiteral:
			code, err = hexToCID([]byte(v))
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected bfchar source %v", ErrBadCMap, o)
		}

		// target
		o, err = cm.nextObject()
		if err != nil {
			return err
		}
		var target []rune
		switch v := o.(type) {
		case parser.Command:
			if v == "endbfchar" {
				return nil
			}
			return ErrBadCMap
		case parser.HexLiteral:
			target = hexToRunes([]byte(v))
		case parser.Name:
			// a glyph name: we have no font to interpret it
			target = []rune{MissingCodeRune}
		default:
			return ErrBadCMap
		}

		cm.unicode.Mappings = append(cm.unicode.Mappings, ToUnicodePair{
			From: code, Dest: target,
		})
	}
	return nil
}

func (cm *cmapParser) parseBfRange() error {
	for {
		// the specifications are triplets
		// <srcCodeFrom> <srcCodeTo> <target>
		// where target is either an hex string or an array

		var srcCodeFrom CID
		o, err := cm.nextObject()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch v := o.(type) {
		case parser.Command:
			if v == "endbfrange" {
				return nil
			}
			return fmt.Errorf("%w: unexpected operand %s", ErrBadCMap, v)
		case parser.HexLiteral:
			srcCodeFrom, err = hexToCID([]byte(v))
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected bfrange source %v", ErrBadCMap, o)
		}

		var srcCodeTo CID
		o, err = cm.nextObject()
		if err != nil {
			return err
		}
		hexTo, ok := o.(parser.HexLiteral)
		if !ok {
			return ErrBadCMap
		}
		srcCodeTo, err = hexToCID([]byte(hexTo))
		if err != nil {
			return err
		}
		if srcCodeTo < srcCodeFrom {
			return fmt.Errorf("%w: invalid bfrange bounds", ErrBadCMap)
		}

		o, err = cm.nextObject()
		if err != nil {
			return err
		}
		switch v := o.(type) {
		case parser.Array:
			if len(v) != int(srcCodeTo-srcCodeFrom)+1 {
				return ErrBadCMap
			}
			arr := ToUnicodeArray{
				From: srcCodeFrom, To: srcCodeTo,
				Runes: make([][]rune, len(v)),
			}
			for i, dst := range v {
				hexs, ok := dst.(parser.HexLiteral)
				if !ok {
					return fmt.Errorf("%w: non-hex string in bfrange array", ErrBadCMap)
				}
				arr.Runes[i] = hexToRunes([]byte(hexs))
			}
			cm.unicode.Mappings = append(cm.unicode.Mappings, arr)
		case parser.HexLiteral:
			// maps [from, to] to [dst, dst+to-from]
			runes := hexToRunes([]byte(v))
			if len(runes) == 0 {
				runes = []rune{MissingCodeRune}
			}
			if len(runes) > 1 {
				// a multi-rune target only makes sense for a
				// single code
				if srcCodeFrom != srcCodeTo {
					return fmt.Errorf("%w: multi-rune bfrange target", ErrBadCMap)
				}
				cm.unicode.Mappings = append(cm.unicode.Mappings, ToUnicodePair{
					From: srcCodeFrom, Dest: runes,
				})
			} else {
				cm.unicode.Mappings = append(cm.unicode.Mappings, ToUnicodeTranslation{
					From: srcCodeFrom, To: srcCodeTo, Dest: runes[0],
				})
			}
		default:
			return ErrBadCMap
		}
	}
	return nil
}
