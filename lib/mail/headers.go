package mail

import (
	"errors"
	"unicode/utf8"

	au "github.com/mikedilger/mime-multipart/lib/asciiutils"
)

/*
 * some utility stuff
 */
func ValidHeaderName(h []byte) bool {
	return au.IsPrintableASCIISlice(h, ':')
}

func validHeaderContent(b []byte) bool {
	has8bit := false
	for _, c := range b {
		if c == '\000' || c == '\r' || c == '\n' {
			return false
		}
		if c&0x80 != 0 {
			has8bit = true
		}
	}
	return !has8bit || utf8.Valid(b)
}

const maxHeaderLen = 2000

var (
	// ErrPartialHeaders means the header block has no terminating blank
	// line or holds more headers than the caller allotted for.
	// This is final; callers do not retry with more room.
	ErrPartialHeaders = errors.New("mail: incomplete header block")

	errMissingColon        = errors.New("missing colon in header")
	errEmptyHeaderName     = errors.New("empty header name")
	errInvalidContinuation = errors.New("invalid header continuation")
	errEmptyFold           = errors.New("empty folding lines aren't allowed")
)

const maxCommonHdrLen = 32

/*
 * header list stuff
 */

type HeaderValSplit = uint32
type HeaderValSplitList = []HeaderValSplit

// Header is one header line (logical, after unfolding).
type Header struct {
	K string             // canonical name
	V string             // value
	O string             // original name, set only if non-canonical
	S HeaderValSplitList // split points, for folding/unfolding
}

// HeaderList carries headers in the order they were received.
type HeaderList []Header

func OneHeader(k, v string) HeaderList {
	return HeaderList{{K: k, V: v}}
}

// Lookup returns value of first header named x and whether any was present.
// Matching is done on canonical names, so lookup is case-insensitive.
func (hl HeaderList) Lookup(x string) (string, bool) {
	if y := FindCommonCanonicalKey(x); y != "" {
		x = y
	} else {
		var bx [maxCommonHdrLen]byte
		var b []byte
		if len(x) <= maxCommonHdrLen {
			b = bx[:len(x)]
		} else {
			b = make([]byte, len(x))
		}
		copy(b, x)
		canonicaliseSlice(b)
		x = string(b)
	}
	for i := range hl {
		if hl[i].K == x {
			return hl[i].V, true
		}
	}
	return "", false
}

// GetFirst is like Lookup but without the presence bit.
func (hl HeaderList) GetFirst(x string) string {
	s, _ := hl.Lookup(x)
	return s
}
