package bufreader

import (
	"bytes"
	"errors"
	"io"
)

var ErrTokenTooLong = errors.New("bufreader: token does not fit in buffer")

// StreamUntilToken copies bytes from input into w until token is encountered.
// The token itself is consumed from the input but not copied.
// End of stream before the token is not an error by itself: found reports
// whether the token was seen, n how many bytes were written to w.
// Matching is byte-exact and works across buffer refills; tokens longer than
// the buffer are rejected with ErrTokenTooLong.
func (r *BufReader) StreamUntilToken(
	w io.Writer, token []byte) (n int64, found bool, err error) {

	if len(token) == 0 {
		return 0, true, nil
	}
	if len(token) > len(r.b) {
		return 0, false, ErrTokenTooLong
	}

	var x int
	for {
		b := r.Buffered()

		if i := bytes.Index(b, token); i >= 0 {
			if i != 0 {
				x, err = w.Write(b[:i])
				r.r += x
				n += int64(x)
				if err != nil {
					return
				}
			}
			r.r += len(token)
			found = true
			return
		}

		// no match in what we have. flush data which can no longer take part
		// in one, keeping a tail which may be a prefix of token
		keep := len(token) - 1
		if keep > len(b) {
			keep = len(b)
		}
		if len(b) > keep {
			x, err = w.Write(b[:len(b)-keep])
			r.r += x
			n += int64(x)
			if err != nil {
				return
			}
		}

		r.CompactBuffer()
		x, err = r.FillBufferAtleast(1)
		if x <= 0 {
			// stream ended before token; leftover tail is ordinary data
			if rem := r.Buffered(); len(rem) != 0 {
				xx, werr := w.Write(rem)
				r.r += xx
				n += int64(xx)
				if werr != nil {
					return n, false, werr
				}
			}
			if err == io.EOF {
				err = nil
			}
			return
		}
	}
}

// PeekUpto returns the next up to n bytes of input without consuming them,
// reading in more as needed. The returned slice aliases the internal buffer
// and is valid only until the next operation on r. Fewer than n bytes are
// returned only if the stream ends before that many.
func (r *BufReader) PeekUpto(n int) ([]byte, error) {
	if n > len(r.b) {
		n = len(r.b)
	}
	if n > len(r.b)-r.r {
		r.CompactBuffer()
	}
	for r.w-r.r < n {
		_, err := r.FillBufferUpto(n)
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return r.b[r.r:r.w], err
		}
		if r.w-r.r >= n {
			break
		}
		if r.err != nil {
			err = r.readErr()
			if err == io.EOF {
				err = nil
			}
			return r.b[r.r:r.w], err
		}
	}
	return r.b[r.r : r.r+n], nil
}
