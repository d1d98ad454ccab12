package mail

import (
	"bytes"
	"fmt"

	au "github.com/mikedilger/mime-multipart/lib/asciiutils"
)

func errInvalidHeaderContent(k string, v []byte) error {
	return fmt.Errorf("invalid %q header content %#q", k, v)
}

func errInvalidHeaderName(k []byte) error {
	return fmt.Errorf("invalid header name: %#q", k)
}

func estimateNumHeaders(b []byte) (n int) {
	cont := 0 // spare addition incase last header line doesn't end with '\n'
	for i, c := range b {
		if c == '\n' {
			if cont == 0 {
				// \n\n or \n without any previous content -- end of headers
				return
			}
			if i+1 < len(b) && (b[i+1] == ' ' || b[i+1] == '\t') {
				// that's just continuation of previous header
				continue
			}
			n++
			cont = 0
		} else if c != '\r' {
			cont = 1
		}
	}
	n += cont
	return
}

// ParseHeaderBlock parses a raw header block into a HeaderList.
// b must contain the terminating blank line; anything past it is ignored.
// Both CRLF and LF line endings are accepted. If maxHeaders is positive,
// blocks with more headers than that fail with ErrPartialHeaders.
// May modify b, as header names are canonicalised in place.
func ParseHeaderBlock(b []byte, maxHeaders int) (hl HeaderList, e error) {

	hl = make(HeaderList, 0, estimateNumHeaders(b))

	var currHeader, origHeader string
	var splits HeaderValSplitList

	var val []byte // defrag'd content of current header
	var lastStart int // begining of val's last logical fragment
	var nheaders int

	finishCurrent := func() error {
		if len(currHeader) != 0 {
			if !validHeaderContent(val) {
				return errInvalidHeaderContent(currHeader, val)
			}
			hl = append(hl, Header{
				K: currHeader,
				V: string(au.TrimWSBytes(val)),
				O: origHeader,
				S: splits,
			})
			splits = HeaderValSplitList(nil)
			currHeader = ""
		}
		val = val[:0]
		lastStart = 0
		return nil
	}

	for {
		n := bytes.IndexByte(b, '\n')
		if n < 0 {
			// ran out before the terminating blank line
			return nil, ErrPartialHeaders
		}
		line := b[:n]
		b = b[n+1:]

		// LF is already cut off; have CR? cut that too
		if len(line) != 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}

		if len(line) == 0 {
			// empty line terminates headers
			break
		}

		if line[0] != ' ' && line[0] != '\t' {
			// not logical continuation, just normal line

			// finish current, if any
			if e = finishCurrent(); e != nil {
				return nil, e
			}

			nheaders++
			if maxHeaders > 0 && nheaders > maxHeaders {
				return nil, fmt.Errorf(
					"%w: more than %d headers", ErrPartialHeaders, maxHeaders)
			}

			// find :
			nn := bytes.IndexByte(line, ':')
			if nn < 0 {
				// no ':' -- illegal
				return nil, errMissingColon
			}
			hn := nn

			// strip possible whitespace before ':'
			for hn != 0 && (line[hn-1] == ' ' || line[hn-1] == '\t') {
				hn--
			}

			// empty or invalid
			if hn == 0 {
				return nil, errEmptyHeaderName
			}
			if !ValidHeaderName(line[:hn]) {
				return nil, errInvalidHeaderName(line[:hn])
			}

			// get proper header string
			currHeader, origHeader =
				unsafeMapCanonicalOriginalHeaders(line[:hn])

			nn++ // step over ':'

			// trim before actual text
			for nn < len(line) && (line[nn] == ' ' || line[nn] == '\t') {
				nn++
			}

			val = append(val[:0], line[nn:]...)
			lastStart = 0

		} else {
			// logical continuation

			if len(currHeader) == 0 {
				return nil, errInvalidContinuation
			}
			if len(val)-lastStart == 0 || len(au.TrimLeftWSBytes(line)) == 0 {
				// last fragment was empty or this one is
				// it would be a problem because of how it interacts with trimming
				return nil, errEmptyFold
			}

			splits = append(splits, HeaderValSplit(len(val)-lastStart))
			lastStart = len(val)
			val = append(val, line...)
		}
	}

	if e = finishCurrent(); e != nil {
		return nil, e
	}
	return hl, nil
}
