package multipart

import (
	"errors"
	"testing"
)

func TestCharsetDecode(t *testing.T) {
	testcases := []struct {
		cs  string
		in  string
		out string
		bad bool
	}{
		{"us-ascii", "plain name.txt", "plain name.txt", false},
		{"us-ascii", "caf\x80", "", true},
		{"utf-8", "héllo.txt", "héllo.txt", false},
		{"utf-8", "\xff\xfe", "", true},
		{"UTF-8", "case folded", "case folded", false},
		{"iso-8859-1", "\xe9\xef", "éï", false},
		// latin-1 has no holes, even the control range decodes
		{"iso-8859-1", "\x81", "\u0081", false},
		{"ISO-8859-1", "ok", "ok", false},
		{"iso-8859-2", "\xb1", "ą", false},
		// 0xa5 is one of the latin-3 holes
		{"iso-8859-3", "\xa5", "", true},
		{"iso-8859-7", "\xe1", "α", false},
		{"iso-8859-10", "abc", "abc", false},
		{"koi8-r", "\xc1", "а", false},
		{"euc-jp", "\xa4\xa2", "あ", false},
		{"euc-jp", "\xff\xff", "", true},
		{"iso-2022-jp", "\x1b$B$\"\x1b(B", "あ", false},
		{"big5", "\xa4\x40", "一", false},
		{"big5", "\xff", "", true},
	}

	for i := range testcases {
		tc := &testcases[i]
		out, err := CharsetDecode(tc.cs, []byte(tc.in))
		if tc.bad {
			if err == nil {
				t.Errorf("%s %q: expected an error, got %q", tc.cs, tc.in, out)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s %q: err %v", tc.cs, tc.in, err)
			continue
		}
		if out != tc.out {
			t.Errorf("%s %q: got %q expected %q", tc.cs, tc.in, out, tc.out)
		}
	}
}

func TestCharsetDecodeUnsupported(t *testing.T) {
	for _, cs := range []string{
		"shift_jis",
		"euc-kr",
		"iso-2022-kr",
		"iso-2022-jp-2",
		"iso-8859-9",
		"iso-8859-6-e",
		"iso-8859-8-i",
		"gb2312",
		"utf-16",
		"x-mystery-meat",
		"",
	} {
		_, err := CharsetDecode(cs, []byte("x"))
		if !errors.Is(err, ErrUnsupportedCharset) {
			t.Errorf("%q: err %v expected %v", cs, err, ErrUnsupportedCharset)
		}
	}
}
