// Package tokenizer implements the lowest level of processing of PDF files:
// splitting a byte stream into lexical tokens.
// See the higher level package parser to read PDF objects.
package tokenizer

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"
)

type Fl = float64

type Kind uint8

const (
	EOF Kind = iota
	Float
	Integer
	String
	StringHex
	Name
	StartArray
	EndArray
	StartDic
	EndDic
	Other // includes commands in content streams
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Float:
		return "Float"
	case Integer:
		return "Integer"
	case String:
		return "String"
	case StringHex:
		return "StringHex"
	case Name:
		return "Name"
	case StartArray:
		return "StartArray"
	case EndArray:
		return "EndArray"
	case StartDic:
		return "StartDic"
	case EndDic:
		return "EndDic"
	case Other:
		return "Other"
	default:
		return "<invalid token>"
	}
}

// IsWhitespace returns true for the 6 PDF white space characters.
func IsWhitespace(ch byte) bool {
	switch ch {
	case 0, 9, 10, 12, 13, 32:
		return true
	default:
		return false
	}
}

// white space + delimiters
func isDelimiter(ch byte) bool {
	switch ch {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return IsWhitespace(ch)
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Token represents a basic piece of information.
// `Value` must be interpreted according to `Kind`,
// which is left to parsing packages.
type Token struct {
	Kind  Kind
	Value string // additional value found in the data
}

// Int returns the integer value of the token,
// also accepting float values and rounding them.
func (t Token) Int() (int, error) {
	f, err := t.Float()
	return int(f), err
}

// Float returns the float value of the token.
func (t Token) Float() (Fl, error) {
	return strconv.ParseFloat(t.Value, 64)
}

// IsNumber returns `true` for integers and floats.
func (t Token) IsNumber() bool {
	return t.Kind == Integer || t.Kind == Float
}

// IsOther returns `true` if the token is the given keyword.
func (t Token) IsOther(value string) bool {
	return t.Kind == Other && t.Value == value
}

// return true for binary stream or inline image data
func (t Token) startsBinary() bool {
	return t.Kind == Other && (t.Value == "stream" || t.Value == "ID")
}

// Tokenize consumes all the input, splitting it into tokens.
// When performance matters, the iteration method `NextToken`
// of the Tokenizer type should be used instead.
func Tokenize(data []byte) ([]Token, error) {
	tk := NewTokenizer(data)
	var out []Token
	t, err := tk.NextToken()
	for ; t.Kind != EOF && err == nil; t, err = tk.NextToken() {
		out = append(out, t)
	}
	return out, err
}

// Tokenizer is a PDF tokenizer.
//
// Comments are ignored.
//
// The tokenizer can't handle streams and inline image data on its own:
// it will stop (by returning EOF) when reaching the `stream` or `ID`
// keywords. Processing may be resumed with the `SetPosition` and
// `SkipBytes` methods.
//
// Regarding exponential numbers, see 7.3.3 Numeric Objects:
// a conforming writer shall not use the PostScript syntax for numbers
// with non-decimal radices (such as 16#FFFE) or in exponential format
// (such as 6.02E23).
// Nonetheless, such numbers show up in the wild, so the tokenizer
// accepts them (there is no confusion with other types, so no compromise).
type Tokenizer struct {
	data []byte

	// since indirect references require
	// to read two more tokens
	// we store the two next tokens

	pos int // main position (end of the aaToken)

	currentPos int // end of the current token
	nextPos    int // end of the +1 token

	aToken Token // +1
	aError error // +1

	aaToken Token // +2
	aaError error // +2
}

func NewTokenizer(data []byte) *Tokenizer {
	tk := Tokenizer{data: data}
	tk.initiateAt(0)
	return &tk
}

// NewTokenizerFromReader reads `src` entirely and returns
// a tokenizer on its content.
func NewTokenizerFromReader(src io.Reader) (*Tokenizer, error) {
	data, err := ioutil.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return NewTokenizer(data), nil
}

// there are two cases where NextToken() is not sufficient:
// at the start (aToken and aaToken are empty)
// and after skipping over bytes (aToken and aaToken are invalid)
// in these cases, `initiateAt` forces the 2 next tokenizations
// (in the contrary, NextToken only does 1).
func (tk *Tokenizer) initiateAt(pos int) {
	if pos > len(tk.data) {
		pos = len(tk.data)
	}
	tk.currentPos = pos
	tk.pos = pos
	tk.aToken, tk.aError = tk.nextToken()
	tk.nextPos = tk.pos
	tk.aaToken, tk.aaError = tk.nextToken()
}

// PeekToken reads a token but does not advance the position.
// It returns a cached value, meaning it is a very cheap call.
func (pr *Tokenizer) PeekToken() (Token, error) {
	return pr.aToken, pr.aError
}

// PeekPeekToken reads the token after the next but does not advance the position.
// It returns a cached value, meaning it is a very cheap call.
func (pr *Tokenizer) PeekPeekToken() (Token, error) {
	return pr.aaToken, pr.aaError
}

// NextToken reads a token and advances (consuming the token).
// If EOF is reached, no error is returned, but an `EOF` token.
func (pr *Tokenizer) NextToken() (Token, error) {
	tk, err := pr.PeekToken()                     // n+1 to n
	pr.aToken, pr.aError = pr.aaToken, pr.aaError // n+2 to n+1
	pr.currentPos = pr.nextPos                    // n+1 to n
	pr.nextPos = pr.pos                           // n+2 to n

	// the tokenizer can't handle binary streams or inline data:
	// such data will be handled by a parser
	// thus, we simply stop the tokenization when we encounter them
	// to avoid useless (and maybe costly) processing
	if pr.aaToken.startsBinary() {
		pr.aaToken, pr.aaError = Token{Kind: EOF}, nil
	} else {
		pr.aaToken, pr.aaError = pr.nextToken()
	}
	return tk, err
}

// IsEOF returns true if all the tokens have been consumed.
func (pr *Tokenizer) IsEOF() bool {
	tk, err := pr.PeekToken()
	return err == nil && tk.Kind == EOF
}

// CurrentPosition returns the position in the data, just
// after the last token returned by NextToken.
func (pr *Tokenizer) CurrentPosition() int {
	return pr.currentPos
}

// SetPosition resets the tokenizer to the absolute position `pos`,
// invalidating the cached tokens.
func (pr *Tokenizer) SetPosition(pos int) {
	pr.initiateAt(pos)
}

// StreamPosition returns the position of the stream data
// following a `stream` keyword (the current position),
// skipping the end of line marker required by the syntax.
func (pr *Tokenizer) StreamPosition() int {
	p := pr.currentPos
	if p < len(pr.data) && pr.data[p] == '\r' {
		p++
	}
	if p < len(pr.data) && pr.data[p] == '\n' {
		p++
	}
	return p
}

// HasEOLBeforeToken checks if the next token is preceded by
// an end of line marker, meaning the bytes until the token
// are white spaces including \n or \r.
func (pr *Tokenizer) HasEOLBeforeToken() bool {
	for i := pr.currentPos; i < len(pr.data); i++ {
		c := pr.data[i]
		if !IsWhitespace(c) {
			return false
		}
		if c == '\n' || c == '\r' {
			return true
		}
	}
	return false
}

// SkipBytes skips the next `n` bytes and returns them. This method is useful
// to handle streams and inline data.
func (pr *Tokenizer) SkipBytes(n int) []byte {
	// use currentPos, which is the position 'expected' by the caller
	target := pr.currentPos + n
	if target > len(pr.data) { // truncate if needed
		target = len(pr.data)
	}
	out := pr.data[pr.currentPos:target]
	pr.initiateAt(target)
	return out
}

// Bytes returns a slice of the data, starting
// from the current position.
func (pr *Tokenizer) Bytes() []byte {
	if pr.currentPos >= len(pr.data) {
		return nil
	}
	return pr.data[pr.currentPos:]
}

// IsHexChar converts a hex character into its value and a success flag
// (see encoding/hex for details).
func IsHexChar(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return c, false
}

// return false at EOF, true if we moved forward
func (pr *Tokenizer) read() (byte, bool) {
	if pr.pos >= len(pr.data) {
		return 0, false
	}
	ch := pr.data[pr.pos]
	pr.pos++
	return ch, true
}

// reads and advances, mutating `pos`
func (pr *Tokenizer) nextToken() (Token, error) {
	ch, ok := pr.read()
	for ok && IsWhitespace(ch) {
		ch, ok = pr.read()
	}
	if !ok {
		return Token{Kind: EOF}, nil
	}

	var outBuf []byte
	switch ch {
	case '[':
		return Token{Kind: StartArray}, nil
	case ']':
		return Token{Kind: EndArray}, nil
	case '/':
		for {
			ch, ok = pr.read()
			if !ok || isDelimiter(ch) {
				break
			}
			if ch == '#' {
				h1, _ := pr.read()
				h2, _ := pr.read()
				out := []byte{0}
				_, err := hex.Decode(out, []byte{h1, h2})
				if err != nil {
					return Token{}, errors.New("corrupted name object")
				}
				outBuf = append(outBuf, out[0])
				continue
			}
			outBuf = append(outBuf, ch)
		}
		// the delimiter may be important, dont skip it
		if ok { // we moved, so its safe go back
			pr.pos--
		}
		return Token{Kind: Name, Value: string(outBuf)}, nil
	case '>':
		ch, _ = pr.read()
		if ch != '>' {
			return Token{}, errors.New("'>' not expected")
		}
		return Token{Kind: EndDic}, nil
	case '<':
		v1, ok1 := pr.read()
		if v1 == '<' {
			return Token{Kind: StartDic}, nil
		}
		var (
			v2  byte
			ok2 bool
		)
		for {
			for ok1 && IsWhitespace(v1) {
				v1, ok1 = pr.read()
			}
			if !ok1 {
				return Token{}, errors.New("unterminated hex string")
			}
			if v1 == '>' {
				break
			}
			v1, ok1 = IsHexChar(v1)
			if !ok1 {
				return Token{}, fmt.Errorf("invalid hex char %d (%s)", v1, string(rune(v1)))
			}
			v2, ok2 = pr.read()
			for ok2 && IsWhitespace(v2) {
				v2, ok2 = pr.read()
			}
			if !ok2 {
				return Token{}, errors.New("unterminated hex string")
			}
			if v2 == '>' {
				// odd number of digits, the last one is padded with 0
				outBuf = append(outBuf, v1<<4)
				break
			}
			v2, ok2 = IsHexChar(v2)
			if !ok2 {
				return Token{}, fmt.Errorf("invalid hex char %d", v2)
			}
			outBuf = append(outBuf, (v1<<4)+v2)
			v1, ok1 = pr.read()
		}
		return Token{Kind: StringHex, Value: string(outBuf)}, nil
	case '%':
		ch, ok = pr.read()
		for ok && ch != '\r' && ch != '\n' {
			ch, ok = pr.read()
		}
		// ignore comments: go to next token
		return pr.nextToken()
	case '(':
		nesting := 0
		for {
			ch, ok = pr.read()
			if !ok {
				break
			}
			if ch == '(' {
				nesting++
			} else if ch == ')' {
				nesting--
			} else if ch == '\\' {
				lineBreak := false
				ch, ok = pr.read()
				switch ch {
				case 'n':
					ch = '\n'
				case 'r':
					ch = '\r'
				case 't':
					ch = '\t'
				case 'b':
					ch = '\b'
				case 'f':
					ch = '\f'
				case '(', ')', '\\':
				case '\r':
					lineBreak = true
					ch, ok = pr.read()
					if ch != '\n' {
						pr.pos--
					}
				case '\n':
					lineBreak = true
				default:
					if ch < '0' || ch > '7' {
						break
					}
					octal := ch - '0'
					ch, ok = pr.read()
					if ch < '0' || ch > '7' {
						pr.pos--
						ch = octal
						break
					}
					octal = (octal << 3) + ch - '0'
					ch, ok = pr.read()
					if ch < '0' || ch > '7' {
						pr.pos--
						ch = octal
						break
					}
					octal = (octal << 3) + ch - '0'
					ch = octal & 0xff
				}
				if lineBreak {
					continue
				}
				if !ok {
					break
				}
			} else if ch == '\r' {
				ch, ok = pr.read()
				if !ok {
					break
				}
				if ch != '\n' {
					pr.pos--
				}
				ch = '\n'
			}
			if nesting == -1 {
				break
			}
			outBuf = append(outBuf, ch)
		}
		if !ok {
			return Token{}, errors.New("error reading string: unexpected EOF")
		}
		return Token{Kind: String, Value: string(outBuf)}, nil
	default:
		pr.pos-- // we need the first char
		if token, ok := pr.readNumber(); ok {
			return token, nil
		}
		ch, _ = pr.read() // we went back before trying to parse a number
		outBuf = append(outBuf, ch)
		ch, ok = pr.read()
		for ok && !isDelimiter(ch) {
			outBuf = append(outBuf, ch)
			ch, ok = pr.read()
		}
		if ok {
			pr.pos--
		}
		return Token{Kind: Other, Value: string(outBuf)}, nil
	}
}

// accept PS syntax (radix and exponents)
// return false if it is not a number
func (pr *Tokenizer) readNumber() (Token, bool) {
	markedPos := pr.pos

	sb, radix := &strings.Builder{}, &strings.Builder{}
	c, ok := pr.read()
	hasDigit := false
	// optional + or -
	if c == '+' || c == '-' {
		sb.WriteByte(c)
		c, ok = pr.read()
	}

	// optional digits
	for isDigit(c) {
		sb.WriteByte(c)
		c, ok = pr.read()
		hasDigit = true
	}

	// optional .
	if c == '.' {
		sb.WriteByte(c)
		c, ok = pr.read()
	} else if c == '#' && hasDigit {
		// PostScript radix number takes the form base#number
		radix = sb
		sb = &strings.Builder{}
		c, ok = pr.read()
	} else if sb.Len() == 0 || !hasDigit {
		// failure
		pr.pos = markedPos
		return Token{}, false
	} else if c == 'E' || c == 'e' {
		// optional minus
		sb.WriteByte(c)
		c, ok = pr.read()
		if c == '-' {
			sb.WriteByte(c)
			c, ok = pr.read()
		}
	} else {
		// integer
		if ok {
			pr.pos--
		}
		return Token{Value: sb.String(), Kind: Integer}, true
	}

	// required digit
	if isDigit(c) {
		sb.WriteByte(c)
		c, ok = pr.read()
	} else {
		// failure
		pr.pos = markedPos
		return Token{}, false
	}

	// optional digits
	for isDigit(c) {
		sb.WriteByte(c)
		c, ok = pr.read()
	}

	if ok {
		pr.pos--
	}
	if radix := radix.String(); radix != "" {
		intRadix, _ := strconv.Atoi(radix)
		valInt, _ := strconv.ParseInt(sb.String(), intRadix, 0)
		return Token{Value: strconv.Itoa(int(valInt)), Kind: Integer}, true
	}
	return Token{Value: sb.String(), Kind: Float}, true
}
