package form

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"os"
	"strings"

	"github.com/mikedilger/mime-multipart/lib/mail"
	"github.com/mikedilger/mime-multipart/lib/multipart"
)

type ParserParams struct {
	MaxMemory         int // total bytes of inline field content
	MaxFields         int
	MaxFileCount      int
	MaxFileSingleSize int64
	MaxFileAllSize    int64
	Multipart         multipart.ParserParams
}

var DefaultParserParams = ParserParams{
	MaxMemory:    1024 * 1024,
	MaxFields:    1024,
	MaxFileCount: 256,
}

type File struct {
	FP          *multipart.FilePart
	ContentType string
	FileName    string // Windows and UNIX paths are stripped
	Size        int64
}

// Open opens the backing file for reading.
func (f File) Open() (*os.File, error) {
	return os.Open(f.FP.Path)
}

func (f File) Remove() {
	f.FP.Remove()
}

type Form struct {
	Values map[string][]string
	Files  map[string][]File
}

func (f Form) RemoveAll() {
	for k, v := range f.Files {
		for i := range v {
			v[i].Remove()
		}
		delete(f.Files, k)
	}
}

var (
	errFormTooBig    = errors.New("form submission is too big")
	errTooMuchFields = errors.New("form submission contains too much fields")
	errTooMuchFiles  = errors.New("form submission contains too much files")
)

// fieldName digs the form field name out of Content-Disposition; empty
// for parts which are not form-data members.
func fieldName(h mail.HeaderList) string {
	cd, ok := h.Lookup("Content-Disposition")
	if !ok {
		return ""
	}
	disp, param, e := mime.ParseMediaType(cd)
	if e != nil || disp != "form-data" {
		return ""
	}
	return param["name"]
}

// ParseForm reads a multipart/form-data body from r and sorts its
// parts into named values and files. h carries the message headers
// with the boundary-bearing Content-Type. Only fields named in
// textfields/filefields are kept; everything else is dropped and, for
// file content, deleted. A multipart/mixed member claims its whole
// subtree for its field name, the files-in-one-field convention.
func ParseForm(
	r io.Reader, h mail.HeaderList,
	textfields, filefields []string) (Form, error) {

	return DefaultParserParams.ParseForm(r, h, textfields, filefields)
}

func (fp *ParserParams) ParseForm(
	r io.Reader, h mail.HeaderList,
	textfields, filefields []string) (f Form, e error) {

	var nodes []multipart.Node
	defer func() {
		if e != nil {
			// claimed or not, every file part is still in the tree
			multipart.RemoveAll(nodes)
			f = Form{}
		}
	}()

	nodes, e = fp.Multipart.ReadMultipartBody(r, h, false)
	if e != nil {
		return
	}

	f.Values = make(map[string][]string)
	f.Files = make(map[string][]File)

	wantTextField := func(field string) bool {
		for _, v := range textfields {
			if field == v {
				return true
			}
		}
		return false
	}
	wantFileField := func(field string) bool {
		for _, v := range filefields {
			if field == v {
				return true
			}
		}
		return false
	}

	memleft := fp.MaxMemory
	fieldsleft := fp.MaxFields
	numfiles := 0
	var filebytesleft int64
	if fp.MaxFileAllSize > 0 {
		filebytesleft = fp.MaxFileAllSize
	} else {
		filebytesleft = math.MaxInt64
	}

	takeValue := func(name string, body []byte) error {
		fieldsleft--
		if fieldsleft < 0 {
			return errTooMuchFields
		}
		if len(body) > memleft {
			return errFormTooBig
		}
		memleft -= len(body)
		f.Values[name] = append(f.Values[name], string(body))
		return nil
	}

	takeFile := func(name string, fpart *multipart.FilePart) error {
		numfiles++
		if fp.MaxFileCount >= 0 && numfiles > fp.MaxFileCount {
			return errTooMuchFiles
		}
		fbl := filebytesleft
		if fp.MaxFileSingleSize > 0 && fbl > fp.MaxFileSingleSize {
			fbl = fp.MaxFileSingleSize
		}
		if fpart.Size > fbl {
			return errFormTooBig
		}
		filebytesleft -= fpart.Size

		fname, err := fpart.Filename()
		if err != nil {
			return fmt.Errorf("failed decoding file name: %w", err)
		}
		// users will only need this part
		if i := strings.LastIndexAny(fname, "/\\"); i >= 0 {
			fname = fname[i+1:]
		}

		f.Files[name] = append(f.Files[name], File{
			FP:          fpart,
			FileName:    fname,
			ContentType: fpart.Headers.GetFirst("Content-Type"),
			Size:        fpart.Size,
		})
		return nil
	}

	// nested levels inherit the field name of the member which
	// brought them in; only top-level parts carry their own
	var walk func(name string, nested bool, nds []multipart.Node) error
	walk = func(name string, nested bool, nds []multipart.Node) error {
		for _, nd := range nds {
			switch x := nd.(type) {
			case *multipart.Part:
				n := name
				if !nested {
					n = fieldName(x.Headers)
					if n == "" || !wantTextField(n) {
						// don't need
						continue
					}
				}
				if err := takeValue(n, x.Body); err != nil {
					return err
				}
			case *multipart.FilePart:
				n := name
				if !nested {
					n = fieldName(x.Headers)
					if n == "" || !wantFileField(n) {
						// don't need, so don't keep on disk either
						x.Remove()
						continue
					}
				}
				if err := takeFile(n, x); err != nil {
					return err
				}
			case *multipart.Multipart:
				n := name
				if !nested {
					n = fieldName(x.Headers)
					if n == "" || !wantFileField(n) {
						multipart.RemoveAll(x.Children)
						continue
					}
				}
				if err := walk(n, true, x.Children); err != nil {
					return err
				}
			}
		}
		return nil
	}

	e = walk("", false, nodes)
	return
}
