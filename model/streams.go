package model

// Standard stream filter names.
const (
	ASCII85   Name = "ASCII85Decode"
	ASCIIHex  Name = "ASCIIHexDecode"
	RunLength Name = "RunLengthDecode"
	LZW       Name = "LZWDecode"
	Flate     Name = "FlateDecode"
	CCITTFax  Name = "CCITTFaxDecode"
	JBIG2     Name = "JBIG2Decode"
	DCT       Name = "DCTDecode"
	JPX       Name = "JPXDecode"
	Crypt     Name = "Crypt"
)

// Filter is one element of a stream filter chain,
// the normalized form of one entry of /Filter and /DecodeParms.
type Filter struct {
	Name Name
	// DecodeParms keeps the integer parameters of the filter
	// (booleans are stored as 0 or 1).
	DecodeParms map[string]int
}

// Parameter returns the named parameter, or `def` if it is not set.
func (f Filter) Parameter(name string, def int) int {
	if v, has := f.DecodeParms[name]; has {
		return v
	}
	return def
}

// Filters is an ordered filter chain: the first element
// is the first decoding step to apply.
type Filters []Filter
