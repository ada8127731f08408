package parser

import (
	"bytes"
	"errors"
	"fmt"

	cs "github.com/jferard/minimalpdfparser/contentstream"
	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser/filters"
)

var errBIExpressionCorrupt = errors.New("corrupt BI (inline image) expression")

// both the full names and the abbreviations are allowed in
// an inline image dict: we normalize to the abbreviated form
var imgFieldAbbreviations = map[Name]Name{
	"BitsPerComponent": "BPC",
	"ColorSpace":       "CS",
	"Decode":           "D",
	"DecodeParms":      "DP",
	"Filter":           "F",
	"Height":           "H",
	"ImageMask":        "IM",
	"Interpolate":      "I",
	"Length":           "L",
	"Width":            "W",
}

func (pr *Parser) parseInlineImage() (cs.OpBeginImage, error) {
	out := cs.OpBeginImage{Fields: Dict{}}
	var fils, decodeParams Object // parsing delayed
	if err := assertLength(pr.opsStack, 0); err != nil {
		return out, err
	}
	// process the image characteristics
	for {
		obj, err := pr.ParseObject()
		if err != nil {
			return out, err
		}
		if obj == Command("ID") {
			// done with the characteristics;
			err = pr.parseImageData(&out, fils, decodeParams)
			// EI is consumed in parseImageData
			return out, err
		}
		// we expect a name and a value
		name, ok := obj.(Name)
		if !ok {
			return out, errBIExpressionCorrupt
		}
		value, err := pr.ParseObject()
		if err != nil {
			return out, errBIExpressionCorrupt
		}
		if ab, isLong := imgFieldAbbreviations[name]; isLong {
			name = ab
		}
		switch name {
		case "F": // parsing is delayed
			fils = value
		case "DP": // parsing is delayed
			decodeParams = value
		default:
			out.Fields[name] = value
		}
	}
}

// bits per component and number of components of the unfiltered data
func inlineImageMetrics(fields Dict) (bits, comps int, err error) {
	if mask, _ := fields["IM"].(Bool); bool(mask) {
		// an image mask is 1 bit per pixel
		return 1, 1, nil
	}
	bits, ok := model.IsInt(fields["BPC"])
	if !ok {
		return 0, 0, errors.New("missing BitsPerComponent in inline image")
	}
	switch space := fields["CS"].(type) {
	case nil:
		comps = 1
	case Name:
		switch space {
		case "DeviceGray", "G", "CalGray", "Indexed", "I":
			comps = 1
		case "DeviceRGB", "RGB", "CalRGB":
			comps = 3
		case "DeviceCMYK", "CMYK":
			comps = 4
		default:
			return 0, 0, fmt.Errorf("unsupported inline image color space %s", space)
		}
	case Array: // Indexed color space
		comps = 1
	default:
		return 0, 0, errBIExpressionCorrupt
	}
	return bits, comps, nil
}

// read the inline data, store its content in img, and skip EI command
func (pr *Parser) parseImageData(img *cs.OpBeginImage, fils, decodeParams Object) error {
	var err error
	// first we update the filter list
	img.Filters, err = ParseDirectFilters(fils, decodeParams)
	if err != nil {
		return err
	}

	// to read the binary data, there are 2 cases
	// 	- if the data is not filtered, we use the image metadata to deduce the length
	//	- if the data is filtered, we have to rely on the filter format End Of Data marker

	pr.tokens.SkipBytes(1) // space after ID

	if len(img.Filters) == 0 {
		width, okW := model.IsInt(img.Fields["W"])
		height, okH := model.IsInt(img.Fields["H"])
		if !okW || !okH {
			return errors.New("missing Width or Height in inline image")
		}
		bits, comps, err := inlineImageMetrics(img.Fields)
		if err != nil {
			return err
		}
		n := height * ((width*comps*bits + 7) / 8)

		img.Content = pr.tokens.SkipBytes(n)
	} else {
		input := pr.tokens.Bytes()

		// we only apply the first filter
		fi := img.Filters[0]
		skipper, err := filters.SkipperFor(fi)
		if err != nil {
			return err
		}
		encodedLength, err := skipper.Skip(bytes.NewReader(input))
		if err != nil {
			return fmt.Errorf("can't read compressed inline image data: %s", err)
		}
		// we return the compressed version ...
		img.Content = input[0:encodedLength]
		// ... and move the tokenizer
		pr.tokens.SkipBytes(encodedLength)
	}
	o, err := pr.ParseObject() // EI
	if err != nil {
		return err
	}
	if o != Command("EI") {
		return fmt.Errorf("expected end of inline image, got %v", o)
	}
	return nil
}
