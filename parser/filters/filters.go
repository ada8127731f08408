// Package filters provides logic to handle binary data encoded
// with PDF stream filters.
// Regular stream objects provide a Length information, but inline data
// images don't, and real-world Length values are often wrong: both cases
// require detecting the End of Data marker, which depends on the filter.
// Decoding itself is delegated to pdfcpu/pkg/filter, completed here
// with CCITT and DCT support.
package filters

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"io/ioutil"

	"github.com/jferard/minimalpdfparser/model"
	pdffilter "github.com/pdfcpu/pdfcpu/pkg/filter"
	"golang.org/x/image/ccitt"
)

// PDF defines the following filters. See also 7.4 in the PDF spec,
// and 8.9.7 - Inline Images
const (
	ASCII85   = "ASCII85Decode"
	ASCIIHex  = "ASCIIHexDecode"
	RunLength = "RunLengthDecode"
	LZW       = "LZWDecode"
	Flate     = "FlateDecode"
	DCT       = "DCTDecode"
	CCITTFax  = "CCITTFaxDecode"
)

// Skipper is able to detect the end of a filtered content.
// Since some filters take additional parameters, skippers should
// be directly created by their concrete types, but this interface is
// exposed as a convenience.
type Skipper interface {
	// Skip reads the input data and looks for an EOD marker.
	// It returns the number of bytes read to go right after EOD.
	Skip(io.Reader) (int, error)
}

// SkipperFor returns the skipper matching the given filter,
// or an error for filters with no EOD marker support.
func SkipperFor(fi model.Filter) (Skipper, error) {
	switch string(fi.Name) {
	case ASCII85:
		return SkipperAscii85{}, nil
	case ASCIIHex:
		return SkipperAsciiHex{}, nil
	case RunLength:
		return SkipperRunLength{}, nil
	case Flate:
		return SkipperFlate{}, nil
	case DCT:
		return SkipperDCT{}, nil
	case LZW:
		return SkipperLZW{EarlyChange: fi.Parameter("EarlyChange", 1) == 1}, nil
	default:
		return nil, errors.New("no EOD detection for filter " + string(fi.Name))
	}
}

// Decode decodes `encoded` according to the single filter `fi`.
// DCT (and JPX) content is returned as is, since the compressed
// image payload is what callers expect.
func Decode(fi model.Filter, encoded []byte) ([]byte, error) {
	switch fi.Name {
	case model.DCT, model.JPX:
		return encoded, nil
	case model.CCITTFax:
		return decodeCCITT(fi, encoded)
	default:
		fl, err := pdffilter.NewFilter(string(fi.Name), fi.DecodeParms)
		if err != nil {
			return nil, err
		}
		r, err := fl.Decode(bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		return ioutil.ReadAll(r)
	}
}

// DecodeChain applies each filter of the chain in order.
func DecodeChain(chain model.Filters, encoded []byte) ([]byte, error) {
	var err error
	for _, fi := range chain {
		encoded, err = Decode(fi, encoded)
		if err != nil {
			return nil, err
		}
	}
	return encoded, nil
}

func decodeCCITT(fi model.Filter, encoded []byte) ([]byte, error) {
	cols := fi.Parameter("Columns", 1728)
	rows := fi.Parameter("Rows", 0)
	if rows <= 0 {
		return nil, errors.New("missing Rows parameter in CCITT stream")
	}
	sf := ccitt.Group3
	if fi.Parameter("K", 0) < 0 {
		sf = ccitt.Group4
	} else if fi.Parameter("K", 0) > 0 {
		return nil, errors.New("mixed 2D CCITT encoding is not supported")
	}
	opts := &ccitt.Options{
		Invert: fi.Parameter("BlackIs1", 0) == 0,
		Align:  fi.Parameter("EncodedByteAlign", 0) == 1,
	}
	r := ccitt.NewReader(bytes.NewReader(encoded), ccitt.MSB, sf, cols, rows, opts)
	return ioutil.ReadAll(r)
}

type countReader struct {
	src       bufio.Reader
	totalRead int
}

func newCountReader(src io.Reader) *countReader {
	return &countReader{src: *bufio.NewReader(src)}
}

func (c *countReader) Read(p []byte) (n int, err error) {
	n, err = c.src.Read(p)
	c.totalRead += n
	return n, err
}

func (c *countReader) ReadByte() (byte, error) {
	b, err := c.src.ReadByte()
	if err == nil {
		c.totalRead++
	}
	return b, err
}
