package multipart

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/traditionalchinese"
)

func errBadEncoding(cs string) error {
	return fmt.Errorf("multipart: data is not valid %s", cs)
}

type charsetDecodeFunc = func(cs string, b []byte) (string, error)

func decodeASCII(cs string, b []byte) (string, error) {
	for _, c := range b {
		if c >= 0x80 {
			return "", errBadEncoding(cs)
		}
	}
	return string(b), nil
}

func decodeUTF8(cs string, b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errBadEncoding(cs)
	}
	return string(b), nil
}

func decodeWith(enc encoding.Encoding) charsetDecodeFunc {
	return func(cs string, b []byte) (string, error) {
		x, err := enc.NewDecoder().Bytes(b)
		if err != nil {
			return "", errBadEncoding(cs)
		}
		s := string(x)
		// x/text substitutes the replacement rune instead of erroring;
		// no charset in the table can produce it from valid input
		if strings.ContainsRune(s, utf8.RuneError) {
			return "", errBadEncoding(cs)
		}
		return s, nil
	}
}

// Charsets a filename parameter may declare. Identifiers outside this
// table are unsupported.
var charsetDecoders = map[string]charsetDecodeFunc{
	"us-ascii":    decodeASCII,
	"iso-8859-1":  decodeWith(charmap.ISO8859_1),
	"iso-8859-2":  decodeWith(charmap.ISO8859_2),
	"iso-8859-3":  decodeWith(charmap.ISO8859_3),
	"iso-8859-4":  decodeWith(charmap.ISO8859_4),
	"iso-8859-5":  decodeWith(charmap.ISO8859_5),
	"iso-8859-6":  decodeWith(charmap.ISO8859_6),
	"iso-8859-7":  decodeWith(charmap.ISO8859_7),
	"iso-8859-8":  decodeWith(charmap.ISO8859_8),
	"iso-8859-10": decodeWith(charmap.ISO8859_10),
	"euc-jp":      decodeWith(japanese.EUCJP),
	"iso-2022-jp": decodeWith(japanese.ISO2022JP),
	"big5":        decodeWith(traditionalchinese.Big5),
	"koi8-r":      decodeWith(charmap.KOI8R),
	"utf-8":       decodeUTF8,
}

// CharsetDecode decodes b per the named charset, strictly: input which
// is not a valid sequence in that charset is an error, never a
// replacement character. Unknown names fail with ErrUnsupportedCharset.
func CharsetDecode(charset string, b []byte) (string, error) {
	cs := strings.ToLower(charset)
	f := charsetDecoders[cs]
	if f == nil {
		return "", fmt.Errorf("%w %q", ErrUnsupportedCharset, charset)
	}
	return f(cs, b)
}
