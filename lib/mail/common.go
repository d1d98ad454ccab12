package mail

// common header names statically allocated to avoid dynamic allocations
var commonHeaders = map[string]string{
	// overrides
	// RFCs digestion, also observation of actual messages
	"Message-Id":   "Message-ID",
	"Content-Id":   "Content-ID",
	"Mime-Version": "MIME-Version",
}

var commonHeadersList = [...]string{
	// MIME and message headers multipart payloads actually carry

	"Bcc",
	"Cc",
	"Comments",
	"Content-Description",
	"Content-Disposition",
	"Content-Language",
	"Content-Length",
	"Content-Transfer-Encoding",
	"Content-Type",
	"Date",
	"From",
	"In-Reply-To",
	"Keywords",
	"Received",
	"References",
	"Reply-To",
	"Return-Path",
	"Sender",
	"Subject",
	"To",
	"User-Agent",
}

func AddCommonKey(h string) {
	if len(h) > maxCommonHdrLen {
		panic("maxCommonHdrLen needs adjustment")
	}
	commonHeaders[h] = h
}

func AddCommonKeyOverride(h, o string) {
	if len(h) > maxCommonHdrLen || len(o) > maxCommonHdrLen {
		panic("maxCommonHdrLen needs adjustment")
	}
	commonHeaders[h] = o // override
	commonHeaders[o] = o // self-map
}

func init() {
	// self-map overrides, to allow more efficient lookup
	for _, v := range commonHeaders {
		commonHeaders[v] = v
	}
	// common headers which match their canonical versions
	for _, v := range commonHeadersList {
		commonHeaders[v] = v
	}
}

// FindCommonCanonicalKey does not allocate anything, just returns
// canonical form if header is common and empty string otherwise.
func FindCommonCanonicalKey(s string) string {
	if y, ok := commonHeaders[s]; ok {
		return y
	}

	if len(s) > maxCommonHdrLen {
		return "" // not common
	}

	var b [maxCommonHdrLen]byte
	upper := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if upper && c >= 'a' && c <= 'z' {
			c = c - ('a' - 'A')
		}
		if !upper && c >= 'A' && c <= 'Z' {
			c = c + ('a' - 'A')
		}
		b[i] = c
		upper = c == '-'
	}
	return commonHeaders[string(b[:len(s)])]
}

func canonicaliseSlice(b []byte) {
	upper := true
	for i, c := range b {
		if upper && c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
		if !upper && c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
		upper = c == '-'
	}
}

// unsafeMapCanonicalOriginalHeaders maps header name to its
// canonical form, also returning original header form
// if we can't be sure of its canonical form. May modify buffer.
func unsafeMapCanonicalOriginalHeaders(b []byte) (string, string) {
	// fast path: maybe its common header in form we want
	if h, ok := commonHeaders[string(b)]; ok {
		return h, ""
	}
	// save original form
	orig := string(b)
	// canonicalise
	canonicaliseSlice(b)
	// try to use static name again
	if h, ok := commonHeaders[string(b)]; ok {
		// if it works, then we're sure of its canonical form
		return h, ""
	}
	// ohwell nothing we can do, just copy
	can := string(b)
	if can == orig {
		return can, ""
	} else {
		return can, orig
	}
}
