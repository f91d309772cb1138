// Package netprobe performs the network lookups used to enrich URL analysis:
// DNS resolution and single-hop redirect following.
package netprobe

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Resolver is the subset of *net.Resolver used for DNS enrichment
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Prober bundles the resolver and HTTP client used for URL probing
type Prober struct {
	Resolver        Resolver
	HTTPClient      *http.Client
	UserAgent       string
	RedirectTimeout time.Duration
}

// NewProber creates a prober backed by the system resolver
func NewProber() *Prober {
	return &Prober{
		Resolver: net.DefaultResolver,
		HTTPClient: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		UserAgent:       DefaultUserAgent,
		RedirectTimeout: DefaultRedirectTimeout,
	}
}

// DNSResult holds A and MX records for a host. Either list may be empty
// when its lookup failed; Error is only set when the whole stage failed.
type DNSResult struct {
	ARecords  []string `json:"a_records"`
	MXRecords []string `json:"mx_records"`
	Error     string   `json:"error,omitempty"`
}

// LookupDNS resolves A and MX records concurrently. A failed lookup only
// empties its own list; a crash in either lookup degrades the whole stage
// to an empty result with an error note. An IP literal has no A records of
// its own, so that lookup is skipped for it.
func (p *Prober) LookupDNS(ctx context.Context, host string) DNSResult {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		crashed  bool
		aRecords = []string{}
		mxHosts  = []string{}
	)

	guard := func() {
		if r := recover(); r != nil {
			log.Printf("[WARN] DNS lookup for %s panicked: %v", host, r)
			mu.Lock()
			crashed = true
			mu.Unlock()
		}
	}

	if net.ParseIP(host) == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer guard()
			ips, err := p.Resolver.LookupIP(ctx, "ip4", host)
			if err != nil {
				return
			}
			for _, ip := range ips {
				aRecords = append(aRecords, ip.String())
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer guard()
		mxs, err := p.Resolver.LookupMX(ctx, host)
		if err != nil {
			return
		}
		for _, mx := range mxs {
			mxHosts = append(mxHosts, strings.TrimSuffix(mx.Host, "."))
		}
	}()
	wg.Wait()

	if crashed {
		return DNSResult{ARecords: []string{}, MXRecords: []string{}, Error: "DNS lookup failed"}
	}
	return DNSResult{ARecords: aRecords, MXRecords: mxHosts}
}
