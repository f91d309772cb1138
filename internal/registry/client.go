package registry

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRegistryURL is the public npm registry
const DefaultRegistryURL = "https://registry.npmjs.org"

// Status tags the outcome of a registry lookup
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lookup is the tagged result of a registry fetch. Metadata is only set
// for StatusFound; Message explains the other outcomes.
type Lookup struct {
	Status   Status
	Metadata *Metadata
	Message  string
}

// Client fetches package metadata from an npm-compatible registry
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a registry client. An empty baseURL selects the public npm registry.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistryURL
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Lookup fetches the packument for name with a single GET.
// It never returns an error: every failure is folded into the result.
func (c *Client) Lookup(ctx context.Context, name string) Lookup {
	reqURL := fmt.Sprintf("%s/%s", c.BaseURL, normalizePackageName(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return failed(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return failed(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Lookup{
			Status:  StatusNotFound,
			Message: fmt.Sprintf("Package %q not found in npm registry.", name),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Lookup{
			Status:  StatusFailed,
			Message: fmt.Sprintf("NPM Registry returned HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(fmt.Errorf("failed to read response: %w", err))
	}

	meta, err := ParseMetadata(body)
	if err != nil {
		return failed(err)
	}

	log.Printf("[INFO] Registry metadata for %s: latest=%s versions=%d", name, meta.LatestVersion, meta.VersionCount)
	return Lookup{Status: StatusFound, Metadata: meta}
}

func failed(err error) Lookup {
	return Lookup{
		Status:  StatusFailed,
		Message: fmt.Sprintf("Failed to fetch from npm registry: %v", err),
	}
}

// normalizePackageName escapes a package name for use as a single path segment.
// Scoped names keep their leading @ and have the slash encoded.
func normalizePackageName(name string) string {
	return url.PathEscape(name)
}
