package multipart

import (
	"bytes"
	"testing"

	"github.com/mikedilger/mime-multipart/lib/mail"
)

func TestBoundary(t *testing.T) {
	mkCT := func(v string) mail.HeaderList {
		return mail.OneHeader("Content-Type", v)
	}
	testcases := []struct {
		name string
		h    mail.HeaderList
		bnd  string
		err  error
	}{
		{
			"bare",
			mkCT("multipart/form-data; boundary=AaB03x"), "--AaB03x", nil,
		},
		{
			"quoted",
			mkCT("multipart/mixed; boundary=\"abcdefg\""), "--abcdefg", nil,
		},
		{
			"case folded type",
			mkCT("MULTIPART/Mixed; boundary=x"), "--x", nil,
		},
		{"no content type", nil, "", ErrNoContentType},
		{"unparsable content type", mkCT(";;;"), "", ErrNoContentType},
		{"not multipart", mkCT("image/gif"), "", ErrNotMultipart},
		{
			"no boundary",
			mkCT("multipart/mixed"), "", ErrBoundaryNotSpecified,
		},
		{
			"empty boundary",
			mkCT("multipart/mixed; boundary=\"\""), "",
			ErrBoundaryNotSpecified,
		},
	}

	for i := range testcases {
		tc := &testcases[i]
		bnd, err := Boundary(tc.h)
		if err != tc.err {
			t.Logf("testcase %q", tc.name)
			t.Errorf("err %v expected %v", err, tc.err)
			continue
		}
		if string(bnd) != tc.bnd {
			t.Logf("testcase %q", tc.name)
			t.Errorf("boundary %q expected %q", bnd, tc.bnd)
		}
	}
}

func TestGenerateBoundary(t *testing.T) {
	prev := GenerateBoundary()
	for i := 0; i < 100; i++ {
		b := GenerateBoundary()
		if len(b) != 68 {
			t.Fatalf("boundary %q is %d bytes expected 68", b, len(b))
		}
		if j := bytes.IndexAny(b, "=/"); j >= 0 {
			t.Fatalf("boundary %q contains %q", b, b[j])
		}
		for _, c := range b {
			if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') &&
				(c < '0' || c > '9') && c != '+' && c != '-' && c != '.' {

				t.Fatalf("boundary %q contains %q", b, c)
			}
		}
		if bytes.Equal(b, prev) {
			t.Fatalf("two identical boundaries %q", b)
		}
		prev = b
	}
}
