package filters

import (
	"bufio"
	"errors"
	"io"
)

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return errors.New("missing EOD marker in encoded stream")
	}
	return err
}

// reacher reads from its source until the given pattern
// has been read (included), then returns EOF.
// Reaching the source EOF before the pattern is an error.
type reacher struct {
	src     io.ByteReader
	pattern []byte
	matched int
	done    bool
}

func newReacher(src io.Reader, pattern []byte) *reacher {
	br, ok := src.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(src)
	}
	return &reacher{src: br, pattern: pattern}
}

func (r *reacher) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	var n int
	for n < len(p) {
		b, err := r.src.ReadByte()
		if err != nil {
			return n, unexpectedEOF(err)
		}
		p[n] = b
		n++
		if b == r.pattern[r.matched] {
			r.matched++
			if r.matched == len(r.pattern) {
				r.done = true
				return n, io.EOF
			}
		} else if b == r.pattern[0] {
			r.matched = 1
		} else {
			r.matched = 0
		}
	}
	return n, nil
}
