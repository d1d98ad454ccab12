package mail

import (
	"errors"
	"fmt"
	"io"
)

var ErrHeaderLineTooLong = errors.New("header line is too long")

func writeHeaderLine(
	w io.Writer, h, v string, s HeaderValSplitList, lt string, force bool) (
	e error) {

	if len(s) != 0 {
		l := int(s[0])
		if !force && len(h)+2+l+len(lt) > maxHeaderLen {
			return ErrHeaderLineTooLong
		}
		if _, e = fmt.Fprintf(w, "%s: %s%s", h, v[:l], lt); e != nil {
			return
		}
		for i := 1; i < len(s); i++ {
			x := int(s[i])
			if !force && x+len(lt) > maxHeaderLen {
				return ErrHeaderLineTooLong
			}
			if _, e = fmt.Fprintf(w, "%s%s", v[l:l+x], lt); e != nil {
				return
			}
			l += x
		}
		if !force && len(v)-l+len(lt) > maxHeaderLen {
			return ErrHeaderLineTooLong
		}
		if _, e = fmt.Fprintf(w, "%s%s", v[l:], lt); e != nil {
			return
		}

		return
	}

	if !force && len(h)+2+len(v)+len(lt) > maxHeaderLen {
		return ErrHeaderLineTooLong
	}
	if _, e = fmt.Fprintf(w, "%s: %s%s", h, v, lt); e != nil {
		return
	}
	return
}

// WriteHeaderList writes out headers in the order they are held,
// reproducing original spellings and fold points, terminating lines
// with lt. Unless force is set, overlong lines fail with
// ErrHeaderLineTooLong instead of being written.
func WriteHeaderList(
	w io.Writer, hl HeaderList, lt string, force bool) (err error) {

	for _, x := range hl {
		hh := x.K
		if x.O != "" {
			hh = x.O
		}
		if err = writeHeaderLine(w, hh, x.V, x.S, lt, force); err != nil {
			return
		}
	}
	return
}
