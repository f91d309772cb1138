package netprobe

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultUserAgent       = "ThreatLens Security Scanner/1.0"
	DefaultRedirectTimeout = 5 * time.Second
)

// Redirect is the outcome of probing a single redirect hop.
// Location is empty when no redirect was observed; Error is set when the
// request itself failed.
type Redirect struct {
	Location   string `json:"redirects_to,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Redirected reports whether the probe observed a 3xx with a Location
func (r Redirect) Redirected() bool {
	return r.Location != ""
}

// FollowRedirect issues a HEAD to target without following redirects and
// reports the first hop. Failures are returned as a note, never as an error.
func (p *Prober) FollowRedirect(ctx context.Context, target string) Redirect {
	timeout := p.RedirectTimeout
	if timeout <= 0 {
		timeout = DefaultRedirectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return Redirect{Error: fmt.Sprintf("Could not follow URL: %v", err)}
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.client().Do(req)
	if err != nil {
		return Redirect{Error: fmt.Sprintf("Could not follow URL: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return Redirect{Location: resp.Header.Get("Location"), StatusCode: resp.StatusCode}
	}
	return Redirect{StatusCode: resp.StatusCode}
}

// client returns a copy of the configured client that never follows redirects
func (p *Prober) client() *http.Client {
	c := http.Client{}
	if p.HTTPClient != nil {
		c = *p.HTTPClient
	}
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}
