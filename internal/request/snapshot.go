package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// ErrBodyNotText reports an inbound body that does not decode as UTF-8
// text. The caller answers such requests with a diagnostic response and
// issues no outbound attempts.
var ErrBodyNotText = errors.New("request body is not valid UTF-8 text")

// Snapshot is an immutable, fully buffered copy of an inbound request.
// It is detached from the originating connection, so any number of
// concurrent destination attempts can read it without re-consuming the
// original body stream.
type Snapshot struct {
	Method     string
	Path       string
	RawQuery   string
	Proto      string
	ProtoMajor int
	ProtoMinor int
	Host       string
	Header     http.Header

	body []byte
}

// Capture drains the inbound request body into memory and builds a
// Snapshot. The body is read exactly once; it must decode as UTF-8 text
// or Capture fails with ErrBodyNotText.
func Capture(r *http.Request) (*Snapshot, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}

	if !utf8.Valid(body) {
		return nil, ErrBodyNotText
	}

	return &Snapshot{
		Method:     r.Method,
		Path:       r.URL.Path,
		RawQuery:   r.URL.RawQuery,
		Proto:      r.Proto,
		ProtoMajor: r.ProtoMajor,
		ProtoMinor: r.ProtoMinor,
		Host:       r.Host,
		Header:     r.Header.Clone(),
		body:       body,
	}, nil
}

// Body returns the buffered body bytes. The slice is shared by every
// reader and must be treated as read-only.
func (s *Snapshot) Body() []byte {
	return s.body
}

// BodyString returns the buffered body as a string.
func (s *Snapshot) BodyString() string {
	return string(s.body)
}

// RequestURI returns the original path and query, suitable for logs and
// for rebasing onto a destination authority.
func (s *Snapshot) RequestURI() string {
	if s.RawQuery == "" {
		return s.Path
	}
	return s.Path + "?" + s.RawQuery
}
