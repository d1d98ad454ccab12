package multipart

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"

	"github.com/mikedilger/mime-multipart/lib/fstore"
	"github.com/mikedilger/mime-multipart/lib/mail"
)

// Node is one element of a parsed multipart tree:
// *Part, *FilePart or *Multipart.
type Node interface {
	nodeHeaders() mail.HeaderList
}

// Part is a part held in memory.
type Part struct {
	Headers mail.HeaderList
	Body    []byte
}

func (p *Part) nodeHeaders() mail.HeaderList { return p.Headers }

// ContentType returns the part's media type, like "image/gif".
// Returns "" if the header is missing or unparsable.
func (p *Part) ContentType() string { return mediaTypeOf(p.Headers) }

// FilePart is a part whose content was streamed out to a file.
// Parts made by the parser own their storage: one temp directory
// holding one randomly named file, both deleted by Remove.
type FilePart struct {
	Headers mail.HeaderList
	Path    string
	Size    int64 // content byte count; -1 until the parser has written it all

	tempdir string // owned temp directory; empty once detached or removed
}

func (fp *FilePart) nodeHeaders() mail.HeaderList { return fp.Headers }

// ContentType returns the part's media type, like "image/gif".
// Returns "" if the header is missing or unparsable.
func (fp *FilePart) ContentType() string { return mediaTypeOf(fp.Headers) }

// Filename returns the filename this part was uploaded under, decoded
// per its declared charset. Returns "" if there is no Content-Disposition
// header or it carries no filename parameter.
func (fp *FilePart) Filename() (string, error) {
	cd, ok := fp.Headers.Lookup("Content-Disposition")
	if !ok {
		return "", nil
	}
	return dispositionFilename(cd)
}

// Detach disclaims storage ownership. The file stays on disk for the
// caller; this part will never delete it.
func (fp *FilePart) Detach() {
	fp.tempdir = ""
}

// Remove deletes the backing file and its temp directory, if this part
// owns them. Does nothing the second time or after Detach.
// Deletion failures are ignored.
func (fp *FilePart) Remove() {
	if fp.tempdir == "" {
		return
	}
	os.Remove(fp.Path)
	os.Remove(fp.tempdir)
	fp.tempdir = ""
}

// Multipart is a container of nested parts.
type Multipart struct {
	Headers  mail.HeaderList
	Children []Node
}

func (mp *Multipart) nodeHeaders() mail.HeaderList { return mp.Headers }

// ContentType returns the container's media type, like "multipart/mixed".
// Returns "" if the header is missing or unparsable.
func (mp *Multipart) ContentType() string { return mediaTypeOf(mp.Headers) }

// RemoveAll releases every owned file-backed part in the tree.
func RemoveAll(nodes []Node) {
	for _, n := range nodes {
		switch x := n.(type) {
		case *FilePart:
			x.Remove()
		case *Multipart:
			RemoveAll(x.Children)
		}
	}
}

const tempDirPrefix = "mime-multipart-"

// file names carry 24 bytes of OS entropy, so 32 chars after encoding
const fileNameRawLen = 24

var (
	defStoreOnce sync.Once
	defStore     fstore.FStore
	defStoreErr  error
)

func defaultStore() (*fstore.FStore, error) {
	defStoreOnce.Do(func() {
		defStore, defStoreErr = fstore.OpenFStore(fstore.Config{
			Path:    os.TempDir(),
			Private: ".",
		})
	})
	if defStoreErr != nil {
		return nil, defStoreErr
	}
	return &defStore, nil
}

// NewFilePart allocates backing storage for one file part: a fresh
// uniquely named temp directory inside st holding one unpredictably
// named file. The part owns the storage until Detach or Remove.
// If st is nil the store rooted at the OS temp directory is used.
func NewFilePart(st *fstore.FStore, h mail.HeaderList) (_ *FilePart, err error) {
	if st == nil {
		st, err = defaultStore()
		if err != nil {
			return nil, err
		}
	}

	dir, err := st.NewDir("", tempDirPrefix, "")
	if err != nil {
		return nil, err
	}

	var b [fileNameRawLen]byte
	if _, err = rand.Read(b[:]); err != nil {
		os.Remove(dir)
		return nil, err
	}

	return &FilePart{
		Headers: h,
		Path:    filepath.Join(dir, base64.RawURLEncoding.EncodeToString(b[:])),
		Size:    -1,
		tempdir: dir,
	}, nil
}
