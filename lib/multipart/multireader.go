package multipart

import (
	"bytes"
	"io"
	"os"

	au "github.com/mikedilger/mime-multipart/lib/asciiutils"
	"github.com/mikedilger/mime-multipart/lib/bufreader"
	"github.com/mikedilger/mime-multipart/lib/fstore"
	"github.com/mikedilger/mime-multipart/lib/logx"
	"github.com/mikedilger/mime-multipart/lib/mail"
)

var crlfcrlf = []byte("\r\n\r\n")

const (
	defaultMaxMessageHeaders = 16
	defaultMaxPartHeaders    = 4
)

// ParserParams adjusts parsing behavior. The zero value behaves like
// DefaultParserParams.
type ParserParams struct {
	// Header count caps for the message block and for each part block.
	// Exceeding one is a fatal partial-headers error, never a grow and
	// retry. Zero means the default, negative means no cap.
	MaxMessageHeaders int
	MaxPartHeaders    int
	// Store is where file part content lands, a fresh directory per
	// part. Nil uses a store rooted at the OS temp directory.
	Store *fstore.FStore
	// Logger takes parse progress at DEBUG. Nil logs nothing.
	Logger logx.Logger
}

// DefaultParserParams is what the package-level Read functions use.
var DefaultParserParams = ParserParams{
	MaxMessageHeaders: defaultMaxMessageHeaders,
	MaxPartHeaders:    defaultMaxPartHeaders,
}

func (p ParserParams) maxMessageHeaders() int {
	if p.MaxMessageHeaders == 0 {
		return defaultMaxMessageHeaders
	}
	return p.MaxMessageHeaders
}

func (p ParserParams) maxPartHeaders() int {
	if p.MaxPartHeaders == 0 {
		return defaultMaxPartHeaders
	}
	return p.MaxPartHeaders
}

func (p ParserParams) logger() logx.Logger {
	if p.Logger == nil {
		return logx.NilLogger{}
	}
	return p.Logger
}

// ReadMultipart parses a full multipart message from r: message
// headers first, then the body delimited by the boundary their
// Content-Type declares. Inline parts come back as *Part, file
// content is streamed to disk as *FilePart, nested multipart/* parts
// become *Multipart subtrees. alwaysUseFiles forces every leaf to
// disk regardless of disposition.
//
// On error no nodes are returned and any files already written are
// removed.
func ReadMultipart(r io.Reader, alwaysUseFiles bool) ([]Node, error) {
	return DefaultParserParams.ReadMultipart(r, alwaysUseFiles)
}

// ReadMultipartBody is ReadMultipart for a stream already past its
// message headers, which are given in h instead.
func ReadMultipartBody(
	r io.Reader, h mail.HeaderList, alwaysUseFiles bool) ([]Node, error) {

	return DefaultParserParams.ReadMultipartBody(r, h, alwaysUseFiles)
}

func (p ParserParams) ReadMultipart(
	r io.Reader, alwaysUseFiles bool) (_ []Node, err error) {

	br := obtainBufReader(r)
	defer dropBufReader(br)

	hbuf := hdrPool.Get().(*bytes.Buffer)
	defer hdrPool.Put(hbuf)
	hbuf.Reset()

	// message headers end at an empty line. these are CRLF by
	// contract; for other conventions parse them yourself and use
	// ReadMultipartBody
	_, found, err := br.StreamUntilToken(hbuf, crlfcrlf)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEOFInMainHeaders
	}
	// the header parser wants the terminating blank line in the block
	hbuf.Write(crlfcrlf)

	h, err := mail.ParseHeaderBlock(hbuf.Bytes(), p.maxMessageHeaders())
	if err != nil {
		return nil, err
	}

	return p.readBody(br, h, alwaysUseFiles)
}

func (p ParserParams) ReadMultipartBody(
	r io.Reader, h mail.HeaderList, alwaysUseFiles bool) ([]Node, error) {

	br := obtainBufReader(r)
	defer dropBufReader(br)
	return p.readBody(br, h, alwaysUseFiles)
}

func (p ParserParams) readBody(
	br *bufreader.BufReader, h mail.HeaderList,
	alwaysUseFiles bool) (nodes []Node, err error) {

	var fparts []*FilePart
	defer func() {
		if err != nil {
			// no partial results: whatever already hit disk goes away
			// before the error is handed out
			for _, fp := range fparts {
				fp.Remove()
			}
			nodes = nil
		}
	}()

	nodes, err = p.readParts(br, h, alwaysUseFiles, &fparts)
	return
}

func (p ParserParams) readParts(
	br *bufreader.BufReader, h mail.HeaderList,
	alwaysUseFiles bool, fparts *[]*FilePart) (nodes []Node, err error) {

	log := p.logger()

	bnd, err := Boundary(h)
	if err != nil {
		return nil, err
	}

	// preamble before the first boundary is discarded
	_, found, err := br.StreamUntilToken(io.Discard, bnd)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEOFBeforeFirstBoundary
	}

	// whatever terminates the first boundary line fixes the line
	// ending convention for this whole level
	pk, err := br.PeekUpto(2)
	if err != nil {
		return nil, err
	}
	var lt []byte
	switch {
	case len(pk) >= 2 && pk[0] == '\r' && pk[1] == '\n':
		lt = []byte("\r\n")
	case len(pk) >= 1 && pk[0] == '\n':
		lt = []byte("\n")
	default:
		return nil, ErrNoCRLFAfterBoundary
	}

	blank := bytes.Repeat(lt, 2)
	ltBnd := append(append(make([]byte, 0, len(lt)+len(bnd)), lt...), bnd...)

	hbuf := hdrPool.Get().(*bytes.Buffer)
	defer hdrPool.Put(hbuf)

	for {
		// two dashes after a boundary mean the trailer: level done
		pk, err = br.PeekUpto(2)
		if err != nil {
			return nil, err
		}
		if len(pk) >= 2 && pk[0] == '-' && pk[1] == '-' {
			return nodes, nil
		}

		// step past the rest of the boundary line
		_, found, err = br.StreamUntilToken(io.Discard, lt)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrNoCRLFAfterBoundary
		}

		// capture this part's header block
		hbuf.Reset()
		_, found, err = br.StreamUntilToken(hbuf, blank)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrEOFInPartHeaders
		}
		hbuf.Write(blank)

		var ph mail.HeaderList
		ph, err = mail.ParseHeaderBlock(hbuf.Bytes(), p.maxPartHeaders())
		if err != nil {
			return nil, err
		}

		// multipart/* content is a container no matter its disposition
		if au.StartsWithFoldString(mediaTypeOf(ph), "multipart/") {
			log.LogPrintf(logx.DEBUG, "descending into nested multipart")
			var children []Node
			children, err = p.readParts(br, ph, alwaysUseFiles, fparts)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &Multipart{Headers: ph, Children: children})
			// the recursive call stopped at a trailer; so do we
			continue
		}

		if isFilePart(ph, alwaysUseFiles) {
			var fp *FilePart
			fp, err = NewFilePart(p.Store, ph)
			if err != nil {
				return nil, err
			}
			*fparts = append(*fparts, fp)

			var f *os.File
			f, err = os.Create(fp.Path)
			if err != nil {
				return nil, err
			}
			var n int64
			n, found, err = br.StreamUntilToken(f, ltBnd)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, ErrEOFInFile
			}
			fp.Size = n
			log.LogPrintf(logx.DEBUG,
				"streamed %d byte file part to %q", n, fp.Path)
			nodes = append(nodes, fp)
		} else {
			var body bytes.Buffer
			_, found, err = br.StreamUntilToken(&body, ltBnd)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, ErrEOFInPart
			}
			nodes = append(nodes, &Part{Headers: ph, Body: body.Bytes()})
		}
	}
}
