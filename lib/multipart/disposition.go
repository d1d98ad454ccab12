package multipart

import (
	"errors"
	"strings"

	au "github.com/mikedilger/mime-multipart/lib/asciiutils"
	"github.com/mikedilger/mime-multipart/lib/mail"
)

var errBadExtValue = errors.New("multipart: malformed extended parameter value")

// dispositionToken returns the disposition type of a Content-Disposition
// value, the token before any parameters.
func dispositionToken(v string) string {
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = v[:i]
	}
	return au.TrimWSString(v)
}

// eachDispositionParam walks parameters of a Content-Disposition value
// in declared order, calling f with each name (lowercased) and raw
// value (quoted-strings unquoted, escapes resolved). f returning false
// stops the walk. Junk segments are skipped, not fatal; the stock
// media type parser cannot do this as it both reorders parameters into
// a map and silently drops ones with charsets it doesn't know.
func eachDispositionParam(v string, f func(name, value string) bool) {
	i := strings.IndexByte(v, ';')
	if i < 0 {
		return
	}
	v = v[i+1:]

	for len(v) != 0 {
		e := strings.IndexByte(v, '=')
		if e < 0 {
			return
		}
		if s := strings.IndexByte(v, ';'); s >= 0 && s < e {
			// valueless segment
			v = v[s+1:]
			continue
		}
		name := strings.ToLower(au.TrimWSString(v[:e]))
		v = v[e+1:]

		var value string
		if len(v) != 0 && v[0] == '"' {
			var b strings.Builder
			j := 1
			for j < len(v) {
				c := v[j]
				if c == '\\' && j+1 < len(v) {
					b.WriteByte(v[j+1])
					j += 2
					continue
				}
				j++
				if c == '"' {
					break
				}
				b.WriteByte(c)
			}
			value = b.String()
			// anything between the closing quote and ';' is junk
			if k := strings.IndexByte(v[j:], ';'); k >= 0 {
				v = v[j+k+1:]
			} else {
				v = ""
			}
		} else {
			if k := strings.IndexByte(v, ';'); k >= 0 {
				value = au.TrimWSString(v[:k])
				v = v[k+1:]
			} else {
				value = au.TrimWSString(v)
				v = ""
			}
		}

		if name != "" && !f(name, value) {
			return
		}
	}
}

// dispositionFilename extracts and decodes the first filename or
// filename* parameter of a Content-Disposition value. Plain filename
// values must be valid UTF-8; extended ones carry their own charset
// (RFC 5987 charset'lang'percent-encoded) and go through the decode
// table. No parameter at all is ("", nil).
func dispositionFilename(cd string) (fname string, err error) {
	eachDispositionParam(cd, func(name, value string) bool {
		switch name {
		case "filename":
			fname, err = CharsetDecode("utf-8", []byte(value))
			return false
		case "filename*":
			fname, err = decodeExtValue(value)
			return false
		}
		return true
	})
	return
}

func decodeExtValue(v string) (string, error) {
	i := strings.IndexByte(v, '\'')
	if i < 0 {
		return "", errBadExtValue
	}
	j := strings.IndexByte(v[i+1:], '\'')
	if j < 0 {
		return "", errBadExtValue
	}
	// language tag between the quotes carries nothing we need
	raw, err := pctDecode(v[i+1+j+1:])
	if err != nil {
		return "", err
	}
	return CharsetDecode(v[:i], raw)
}

func pctDecode(s string) ([]byte, error) {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b = append(b, c)
			continue
		}
		if i+2 >= len(s) {
			return nil, errBadExtValue
		}
		h1, h2 := unhex(s[i+1]), unhex(s[i+2])
		if h1 < 0 || h2 < 0 {
			return nil, errBadExtValue
		}
		b = append(b, byte(h1<<4|h2))
		i += 2
	}
	return b, nil
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// isFilePart decides whether a part's content belongs on disk: forced
// by the flag, or an attachment disposition, or any filename parameter
// present.
func isFilePart(h mail.HeaderList, alwaysUseFiles bool) bool {
	if alwaysUseFiles {
		return true
	}
	cd, ok := h.Lookup("Content-Disposition")
	if !ok {
		return false
	}
	if au.EqualFoldString(dispositionToken(cd), "attachment") {
		return true
	}
	isfile := false
	eachDispositionParam(cd, func(name, _ string) bool {
		if name == "filename" || name == "filename*" {
			isfile = true
			return false
		}
		return true
	})
	return isfile
}
