package filters

import (
	"errors"
	"io"
)

type SkipperDCT struct{}

// Skip implements Skipper for a DCTDecode filter,
// by walking the JPEG segments until the EOI marker.
func (f SkipperDCT) Skip(encoded io.Reader) (int, error) {
	r := newCountReader(encoded)

	b0, err := r.ReadByte()
	if err != nil {
		return 0, unexpectedEOF(err)
	}
	b1, err := r.ReadByte()
	if err != nil {
		return 0, unexpectedEOF(err)
	}
	if b0 != 0xFF || b1 != 0xD8 { // SOI
		return 0, errors.New("not a JPEG stream")
	}

	var (
		marker     byte
		hasPending bool
	)
	for {
		if !hasPending {
			marker, err = f.readMarker(r)
			if err != nil {
				return 0, err
			}
		}
		hasPending = false

		switch {
		case marker == 0xD9: // EOI
			return r.totalRead, nil
		case marker == 0x01 || (0xD0 <= marker && marker <= 0xD7):
			// standalone markers, no payload
		case marker == 0xDA: // SOS: segment header, then entropy coded data
			if err = f.skipSegment(r); err != nil {
				return 0, err
			}
			// the entropy data ends at the next real marker
			marker, err = f.skipEntropyData(r)
			if err != nil {
				return 0, err
			}
			hasPending = true
		default:
			if err = f.skipSegment(r); err != nil {
				return 0, err
			}
		}
	}
}

func (f SkipperDCT) readMarker(r *countReader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, unexpectedEOF(err)
	}
	if b != 0xFF {
		return 0, errors.New("corrupt JPEG stream: expected marker")
	}
	// fill bytes are allowed before the marker code
	for b == 0xFF {
		b, err = r.ReadByte()
		if err != nil {
			return 0, unexpectedEOF(err)
		}
	}
	return b, nil
}

// segment with a 2-byte big endian length (length included)
func (f SkipperDCT) skipSegment(r *countReader) error {
	h, err := r.ReadByte()
	if err != nil {
		return unexpectedEOF(err)
	}
	l, err := r.ReadByte()
	if err != nil {
		return unexpectedEOF(err)
	}
	length := int(h)<<8 | int(l)
	if length < 2 {
		return errors.New("corrupt JPEG stream: invalid segment length")
	}
	for i := 0; i < length-2; i++ {
		if _, err := r.ReadByte(); err != nil {
			return unexpectedEOF(err)
		}
	}
	return nil
}

// reads entropy coded data, stopping at the first real marker,
// which is returned (0x00 stuffing and restart markers are data)
func (f SkipperDCT) skipEntropyData(r *countReader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, unexpectedEOF(err)
		}
		if b != 0xFF {
			continue
		}
		m, err := r.ReadByte()
		if err != nil {
			return 0, unexpectedEOF(err)
		}
		if m == 0x00 || m == 0xFF || (0xD0 <= m && m <= 0xD7) {
			continue
		}
		return m, nil
	}
}
