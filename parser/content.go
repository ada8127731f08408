package parser

import (
	"fmt"

	cs "github.com/jferard/minimalpdfparser/contentstream"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

var errEndOfContent = fmt.Errorf("unexpected end of content stream")

// ParseContentElement parse one operation and advances.
// `ContentStreamMode` must have been set to true, and EOF
// should be checked before calling this method.
// Operations with invalid operands are logged and skipped.
// See `ParseContent` for a convenient way of parsing a whole content stream.
func (pr *Parser) ParseContentElement() (cs.Operation, error) {
	for {
		if pr.tokens.IsEOF() {
			return nil, errEndOfContent
		}

		obj, err := pr.ParseObject()
		if err != nil {
			return nil, err
		}
		switch obj := obj.(type) {
		case Command:
			// special case
			if obj == "BI" {
				cmd, err := pr.parseInlineImage()
				if err != nil {
					return nil, err
				}
				pr.opsStack = pr.opsStack[:0] // keep the capacity
				return cmd, nil
			}
			// use the current stack to try and parse
			// the command arguments
			cmd, err := parseCommand(string(obj), pr.opsStack)
			pr.opsStack = pr.opsStack[:0]
			if err != nil {
				// real-world content streams are far from pristine:
				// an invalid operation should not by itself
				// interrupt the processing of the page
				log.Parse.Printf("skipping invalid command %s: %s\n", obj, err)
				continue
			}
			return cmd, nil
		default:
			// store the object
			pr.opsStack = append(pr.opsStack, obj)
		}
	}
}

// ParseContent parse a decrypted Content Stream.
// Invalid operations are skipped, so that the maximum
// amount of content is recovered.
func ParseContent(content []byte) ([]cs.Operation, error) {
	var out []cs.Operation

	pr := NewParser(content)
	pr.ContentStreamMode = true
	pr.opsStack = make([]Object, 0, 6)

	for !pr.tokens.IsEOF() {
		cmd, err := pr.ParseContentElement()
		if err == errEndOfContent {
			// operands without a command at the end of the stream
			log.Parse.Printf("dangling operands at the end of content: %v\n", pr.opsStack)
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}
