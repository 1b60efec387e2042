package usecase

import (
	"context"
	"net/http"
	"time"
)

// ConnectivityChecker reports whether the network is reachable. The
// probe targets general reachability, not the remote datastore itself.
type ConnectivityChecker interface {
	Online(ctx context.Context) bool
}

// HTTPChecker probes a well-known URL. Any HTTP response, whatever the
// status, proves reachability; only a transport error means offline.
type HTTPChecker struct {
	client *http.Client
	url    string
}

// NewHTTPChecker creates a checker probing the given URL.
func NewHTTPChecker(url string) *HTTPChecker {
	return &HTTPChecker{
		client: &http.Client{Timeout: 5 * time.Second},
		url:    url,
	}
}

func (c *HTTPChecker) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// StaticChecker always reports the same state. Used for standalone mode
// (always offline, no remote configured) and in tests.
type StaticChecker bool

func (c StaticChecker) Online(context.Context) bool {
	return bool(c)
}
