package form

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"github.com/mikedilger/mime-multipart/lib/fstore"
	"github.com/mikedilger/mime-multipart/lib/mail"
)

const formBody = "--AaB03x\r\n" +
	"Content-Disposition: form-data; name=\"submit-name\"\r\n" +
	"\r\n" +
	"Larry\r\n" +
	"--AaB03x\r\n" +
	"Content-Disposition: form-data; name=\"unwanted\"\r\n" +
	"\r\n" +
	"drop me\r\n" +
	"--AaB03x\r\n" +
	"Content-Disposition: form-data; name=\"files\"\r\n" +
	"Content-Type: multipart/mixed; boundary=BbC04y\r\n" +
	"\r\n" +
	"--BbC04y\r\n" +
	"Content-Disposition: file; filename=\"file1.txt\"\r\n" +
	"\r\n" +
	"... contents of file1.txt ...\r\n" +
	"--BbC04y\r\n" +
	"Content-Disposition: file; filename=\"awesome_image.gif\"\r\n" +
	"Content-Type: image/gif\r\n" +
	"Content-Transfer-Encoding: binary\r\n" +
	"\r\n" +
	"... contents of awesome_image.gif ...\r\n" +
	"--BbC04y--\r\n" +
	"--AaB03x--"

var formHdr = mail.OneHeader(
	"Content-Type", "multipart/form-data; boundary=AaB03x")

func testStore(t *testing.T) *fstore.FStore {
	t.Helper()
	st, err := fstore.OpenFStore(fstore.Config{Path: t.TempDir(), Private: "."})
	if err != nil {
		t.Fatalf("fstore.OpenFStore err: %v", err)
	}
	return &st
}

func mustBeEmptyDir(t *testing.T, dir string) {
	t.Helper()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("os.ReadDir err: %v", err)
	}
	if len(ents) != 0 {
		t.Fatalf("%d stray entries left in %q", len(ents), dir)
	}
}

func testParams(t *testing.T) (ParserParams, *fstore.FStore) {
	st := testStore(t)
	pp := DefaultParserParams
	pp.Multipart.Store = st
	return pp, st
}

func TestParseForm(t *testing.T) {
	pp, st := testParams(t)

	f, err := pp.ParseForm(
		strings.NewReader(formBody), formHdr,
		[]string{"submit-name"}, []string{"files"})
	if err != nil {
		t.Fatalf("ParseForm err: %v", err)
	}
	defer f.RemoveAll()

	wantValues := map[string][]string{"submit-name": {"Larry"}}
	if d := cmp.Diff(wantValues, f.Values); d != "" {
		t.Errorf("values mismatch (-want +got):\n%s", d)
	}

	files := f.Files["files"]
	if len(f.Files) != 1 || len(files) != 2 {
		t.Fatalf("files mismatch:\n%s", spew.Sdump(f.Files))
	}
	if files[0].FileName != "file1.txt" || files[0].Size != 29 ||
		files[0].ContentType != "" {

		t.Errorf("1st file mismatch:\n%s", spew.Sdump(files[0]))
	}
	if files[1].FileName != "awesome_image.gif" || files[1].Size != 37 ||
		files[1].ContentType != "image/gif" {

		t.Errorf("2nd file mismatch:\n%s", spew.Sdump(files[1]))
	}

	r, err := files[0].Open()
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	b := make([]byte, 64)
	n, _ := r.Read(b)
	r.Close()
	if string(b[:n]) != "... contents of file1.txt ..." {
		t.Errorf("1st file content %q", b[:n])
	}

	f.RemoveAll()
	mustBeEmptyDir(t, st.Main())
}

func TestParseFormUnwanted(t *testing.T) {
	pp, st := testParams(t)

	// no file fields wanted: file content must not stay on disk
	f, err := pp.ParseForm(
		strings.NewReader(formBody), formHdr,
		[]string{"submit-name"}, nil)
	if err != nil {
		t.Fatalf("ParseForm err: %v", err)
	}
	if len(f.Files) != 0 {
		t.Errorf("unexpected files %v", f.Files)
	}
	if len(f.Values) != 1 || f.Values["submit-name"][0] != "Larry" {
		t.Errorf("values %v", f.Values)
	}
	mustBeEmptyDir(t, st.Main())

	// nothing wanted at all
	f, err = pp.ParseForm(strings.NewReader(formBody), formHdr, nil, nil)
	if err != nil {
		t.Fatalf("ParseForm err: %v", err)
	}
	if len(f.Values) != 0 || len(f.Files) != 0 {
		t.Errorf("unwanted content kept: %v %v", f.Values, f.Files)
	}
	mustBeEmptyDir(t, st.Main())
}

func TestParseFormLimits(t *testing.T) {
	testcases := []struct {
		name string
		mut  func(*ParserParams)
		err  error
	}{
		{
			"too many fields",
			func(p *ParserParams) { p.MaxFields = 0 },
			errTooMuchFields,
		},
		{
			"too many files",
			func(p *ParserParams) { p.MaxFileCount = 0 },
			errTooMuchFiles,
		},
		{
			"fields too big",
			func(p *ParserParams) { p.MaxMemory = 3 },
			errFormTooBig,
		},
		{
			"single file too big",
			func(p *ParserParams) { p.MaxFileSingleSize = 30 },
			errFormTooBig,
		},
		{
			"files too big together",
			func(p *ParserParams) { p.MaxFileAllSize = 50 },
			errFormTooBig,
		},
	}

	for i := range testcases {
		tc := &testcases[i]
		pp, st := testParams(t)
		tc.mut(&pp)

		f, err := pp.ParseForm(
			strings.NewReader(formBody), formHdr,
			[]string{"submit-name"}, []string{"files"})
		if !errors.Is(err, tc.err) {
			t.Logf("testcase %q", tc.name)
			t.Errorf("err %v expected %v", err, tc.err)
			f.RemoveAll()
			continue
		}
		if len(f.Values) != 0 || len(f.Files) != 0 {
			t.Logf("testcase %q", tc.name)
			t.Errorf("partial form returned alongside error")
		}
		// a failed parse must not leave droppings
		mustBeEmptyDir(t, st.Main())
	}
}

func TestParseFormFilenamePathStrip(t *testing.T) {
	body := "--B\r\n" +
		"Content-Disposition: form-data; name=\"up\";" +
		" filename=\"C:\\\\stuff\\\\evil.exe\"\r\n" +
		"\r\n" +
		"mz\r\n" +
		"--B\r\n" +
		"Content-Disposition: form-data; name=\"up\";" +
		" filename=\"/home/u/two.txt\"\r\n" +
		"\r\n" +
		"hi\r\n" +
		"--B--"
	h := mail.OneHeader("Content-Type", "multipart/form-data; boundary=B")

	pp, _ := testParams(t)
	f, err := pp.ParseForm(strings.NewReader(body), h, nil, []string{"up"})
	if err != nil {
		t.Fatalf("ParseForm err: %v", err)
	}
	defer f.RemoveAll()

	ups := f.Files["up"]
	if len(ups) != 2 {
		t.Fatalf("files mismatch:\n%s", spew.Sdump(f.Files))
	}
	if ups[0].FileName != "evil.exe" {
		t.Errorf("1st file name %q expected %q", ups[0].FileName, "evil.exe")
	}
	if ups[1].FileName != "two.txt" {
		t.Errorf("2nd file name %q expected %q", ups[1].FileName, "two.txt")
	}
}

func TestParseFormDefaults(t *testing.T) {
	f, err := ParseForm(
		strings.NewReader(formBody), formHdr,
		[]string{"submit-name"}, []string{"files"})
	if err != nil {
		t.Fatalf("ParseForm err: %v", err)
	}
	defer f.RemoveAll()

	if f.Values["submit-name"][0] != "Larry" {
		t.Errorf("values %v", f.Values)
	}
	if len(f.Files["files"]) != 2 {
		t.Errorf("files mismatch:\n%s", spew.Sdump(f.Files))
	}
}
