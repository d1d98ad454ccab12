package multipart

import (
	"fmt"
	"io"
	"os"

	"github.com/mikedilger/mime-multipart/lib/mail"
)

var crlf = []byte("\r\n")

type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(b []byte) (n int, err error) {
	n, err = cw.w.Write(b)
	cw.n += int64(n)
	return
}

// WriteMultipart writes nodes as a multipart body delimited by
// boundary (the bare parameter value, no leading dashes) and returns
// the exact number of bytes written. Line endings are CRLF throughout.
// Any enclosing headers, including the Content-Type carrying the
// boundary, are the caller's business.
//
// FilePart content is read back from disk at write time; the file is
// authoritative, not the recorded size.
func WriteMultipart(w io.Writer, boundary []byte, nodes []Node) (int64, error) {
	cw := &countWriter{w: w}
	err := writeParts(cw, boundary, nodes)
	return cw.n, err
}

func writeParts(w io.Writer, boundary []byte, nodes []Node) (err error) {
	for _, nd := range nodes {
		_, err = fmt.Fprintf(w, "--%s\r\n", boundary)
		if err != nil {
			return
		}
		err = mail.WriteHeaderList(w, nd.nodeHeaders(), "\r\n", true)
		if err != nil {
			return
		}
		_, err = w.Write(crlf)
		if err != nil {
			return
		}
		err = writeBody(w, nd)
		if err != nil {
			return
		}
		_, err = w.Write(crlf)
		if err != nil {
			return
		}
	}
	// no line terminator after the trailer
	_, err = fmt.Fprintf(w, "--%s--", boundary)
	return
}

func writeBody(w io.Writer, nd Node) (err error) {
	switch x := nd.(type) {
	case *Part:
		_, err = w.Write(x.Body)
	case *FilePart:
		var f *os.File
		f, err = os.Open(x.Path)
		if err != nil {
			return
		}
		_, err = io.Copy(w, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	case *Multipart:
		var b []byte
		b, err = rawBoundary(x.Headers)
		if err != nil {
			return
		}
		err = writeParts(w, b, x.Children)
	}
	return
}

// chunkedWriter frames every Write as one Transfer-Encoding chunk.
type chunkedWriter struct {
	w io.Writer
}

func (cw chunkedWriter) Write(b []byte) (int, error) {
	if len(b) == 0 {
		// a zero chunk would terminate the body early
		return 0, nil
	}
	if _, err := fmt.Fprintf(cw.w, "%x\r\n", len(b)); err != nil {
		return 0, err
	}
	if n, err := cw.w.Write(b); err != nil {
		return n, err
	}
	_, err := cw.w.Write(crlf)
	return len(b), err
}

func (cw chunkedWriter) finish() error {
	_, err := io.WriteString(cw.w, "0\r\n\r\n")
	return err
}

// WriteMultipartChunked is WriteMultipart under HTTP chunked framing:
// each write becomes one length-prefixed chunk and the zero chunk
// closes the body. Unchunking the output yields exactly what
// WriteMultipart would have produced.
func WriteMultipartChunked(w io.Writer, boundary []byte, nodes []Node) error {
	cw := chunkedWriter{w: w}
	if err := writeParts(cw, boundary, nodes); err != nil {
		return err
	}
	return cw.finish()
}
