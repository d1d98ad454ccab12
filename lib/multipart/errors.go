package multipart

import "errors"

// Top-level contract failures.
var (
	ErrNoContentType        = errors.New("multipart: no Content-Type header")
	ErrNotMultipart         = errors.New("multipart: Content-Type is not multipart/*")
	ErrBoundaryNotSpecified = errors.New("multipart: Content-Type has no boundary parameter")
	ErrNoCRLFAfterBoundary  = errors.New("multipart: no line terminator after boundary")
)

// Truncation failures. Each names the region of the stream which hit
// end of input so callers can tell where a partial upload broke off.
var (
	ErrEOFInMainHeaders       = errors.New("multipart: unexpected EOF in message headers")
	ErrEOFBeforeFirstBoundary = errors.New("multipart: unexpected EOF before first boundary")
	ErrEOFInPartHeaders       = errors.New("multipart: unexpected EOF in part headers")
	ErrEOFInFile              = errors.New("multipart: unexpected EOF in file content")
	ErrEOFInPart              = errors.New("multipart: unexpected EOF in part content")
)

// ErrUnsupportedCharset is reported when a filename parameter declares
// a charset the decode table has no entry for.
var ErrUnsupportedCharset = errors.New("multipart: unsupported charset")
