package destination

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/omerlavanet/dev-server/internal/request"
)

// Destination is a configured upstream base address eligible to receive
// a mirrored copy of an inbound request. The address is fixed for the
// process lifetime; only the observational reachability flag, maintained
// by the probe package, ever changes.
type Destination struct {
	url       *url.URL
	mutex     sync.Mutex
	reachable bool
}

// New creates a Destination for the given base URL.
// Destinations start out as reachable.
func New(u *url.URL) *Destination {
	return &Destination{
		url:       u,
		reachable: true,
	}
}

// Parse validates a configured base address and builds a Destination
// from it. Only the scheme and authority are kept; the inbound request
// supplies the path and query at mirror time.
func Parse(raw string) (*Destination, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse destination %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("destination %q: scheme must be http or https", raw)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("destination %q: missing host", raw)
	}

	return New(&url.URL{Scheme: u.Scheme, Host: u.Host}), nil
}

// URL returns the destination base URL.
func (d *Destination) URL() *url.URL {
	return d.url
}

// Reachable returns the result of the most recent reachability probe.
func (d *Destination) Reachable() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.reachable
}

// SetReachable updates the reachability flag.
// Returns true if the flag changed, false if it was already in that state.
func (d *Destination) SetReachable(reachable bool) (changed bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.reachable == reachable {
		return false
	}

	d.reachable = reachable
	return true
}

// NewRequest builds the outbound request that mirrors snap to this
// destination: the destination's scheme and authority joined with the
// original path and query, the method, protocol version, and headers
// cloned verbatim, and the shared body bytes attached. The Host header
// is the one the client sent, not the destination authority.
func (d *Destination) NewRequest(ctx context.Context, snap *request.Snapshot) (*http.Request, error) {
	target := url.URL{
		Scheme:   d.url.Scheme,
		Host:     d.url.Host,
		Path:     snap.Path,
		RawQuery: snap.RawQuery,
	}

	req, err := http.NewRequestWithContext(ctx, snap.Method, target.String(), bytes.NewReader(snap.Body()))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", d.url, err)
	}

	req.Header = snap.Header.Clone()
	req.Host = snap.Host
	req.Proto = snap.Proto
	req.ProtoMajor = snap.ProtoMajor
	req.ProtoMinor = snap.ProtoMinor
	req.ContentLength = int64(len(snap.Body()))

	return req, nil
}
