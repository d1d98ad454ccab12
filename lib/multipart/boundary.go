package multipart

import (
	"crypto/rand"
	"encoding/base64"
	"mime"

	au "github.com/mikedilger/mime-multipart/lib/asciiutils"
	"github.com/mikedilger/mime-multipart/lib/mail"
)

func mediaTypeOf(h mail.HeaderList) string {
	ct, ok := h.Lookup("Content-Type")
	if !ok {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

// rawBoundary digs the boundary parameter out of h's Content-Type.
func rawBoundary(h mail.HeaderList) ([]byte, error) {
	ct, ok := h.Lookup("Content-Type")
	if !ok {
		return nil, ErrNoContentType
	}
	mt, params, err := mime.ParseMediaType(ct)
	if err != nil {
		// same as a typed-header miss: unparsable counts as not there
		return nil, ErrNoContentType
	}
	if !au.StartsWithFoldString(mt, "multipart/") {
		return nil, ErrNotMultipart
	}
	b := params["boundary"]
	if b == "" {
		return nil, ErrBoundaryNotSpecified
	}
	return []byte(b), nil
}

// Boundary returns the literal token which starts every boundary line
// of the multipart body h describes: "--" plus the boundary parameter
// of its Content-Type.
func Boundary(h mail.HeaderList) ([]byte, error) {
	b, err := rawBoundary(h)
	if err != nil {
		return nil, err
	}
	t := make([]byte, 0, 2+len(b))
	t = append(t, '-', '-')
	t = append(t, b...)
	return t, nil
}

// GenerateBoundary makes a random boundary value long enough to never
// collide with wrapped content, built from characters which need no
// quoting inside a Content-Type parameter.
func GenerateBoundary() []byte {
	var b [51]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("rand.Read: " + err.Error())
	}
	e := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
	base64.StdEncoding.Encode(e, b[:])
	for i, c := range e {
		// '=' terminates the parameter, '/' needs a quoted-string
		if c == '=' {
			e[i] = '-'
		} else if c == '/' {
			e[i] = '.'
		}
	}
	return e
}
