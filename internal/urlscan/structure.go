// Package urlscan extracts structural and homograph features from URLs.
// Everything here is pure; network probing lives in netprobe.
package urlscan

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// SuspiciousTLDs are TLDs that are cheap or free to register and common in phishing
var SuspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top",
	".buzz", ".club", ".work", ".click", ".link", ".info",
}

// Shorteners are matched as substrings of the hostname
var Shorteners = []string{
	"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly",
	"is.gd", "v.gd", "buff.ly", "rebrand.ly", "short.io",
}

// BrandKeywords are matched case-insensitively against hostname and path
var BrandKeywords = []string{
	"google", "microsoft", "apple", "amazon", "paypal", "facebook",
	"instagram", "github", "netflix", "linkedin", "twitter", "bank",
	"login", "verify", "secure", "account", "update", "confirm",
}

// ErrInvalidURL is returned when the input cannot be parsed into a URL with a host
var ErrInvalidURL = errors.New("invalid URL")

// No 0-255 range check and no IPv6; "999.999.999.999" matches.
var ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// Features is the structural breakdown of a single URL
type Features struct {
	FullURL        string   `json:"fullUrl"`
	Protocol       string   `json:"protocol"`
	Hostname       string   `json:"hostname"`
	ASCIIHostname  string   `json:"asciiHostname"`
	Registrable    string   `json:"registrableDomain"`
	Port           string   `json:"port"`
	Path           string   `json:"path"`
	QueryParams    string   `json:"queryParams"`
	Hash           string   `json:"hash"`
	TLD            string   `json:"tld"`
	SubdomainCount int      `json:"subdomainCount"`
	Subdomains     string   `json:"subdomains"`
	SuspiciousTLD  bool     `json:"isSuspiciousTld"`
	IsIPAddress    bool     `json:"isIpAddress"`
	IsShortener    bool     `json:"isShortener"`
	BrandTargets   []string `json:"brandTargets"`
}

// Normalize prefixes http:// when the input carries no http(s) scheme
func Normalize(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "http://" + raw
}

// Analyze parses raw (after Normalize) and derives its features
func Analyze(raw string) (*Features, error) {
	normalized := Normalize(raw)
	u, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	hostname := u.Hostname()
	lowerHost := strings.ToLower(hostname)
	parts := strings.Split(hostname, ".")
	tld := "." + parts[len(parts)-1]

	f := &Features{
		FullURL:        u.String(),
		Protocol:       u.Scheme + ":",
		Hostname:       hostname,
		ASCIIHostname:  asciiHostname(hostname),
		Registrable:    registrableDomain(lowerHost),
		Port:           u.Port(),
		Path:           u.EscapedPath(),
		TLD:            tld,
		SubdomainCount: len(parts) - 2,
		SuspiciousTLD:  contains(SuspiciousTLDs, strings.ToLower(tld)),
		IsIPAddress:    ipv4Pattern.MatchString(hostname),
		BrandTargets:   []string{},
	}
	if len(parts) > 2 {
		f.Subdomains = strings.Join(parts[:len(parts)-2], ".")
	}
	if f.Port == "" {
		if u.Scheme == "https" {
			f.Port = "443"
		} else {
			f.Port = "80"
		}
	}
	if u.RawQuery != "" {
		f.QueryParams = "?" + u.RawQuery
	}
	if u.Fragment != "" {
		f.Hash = "#" + u.EscapedFragment()
	}

	for _, s := range Shorteners {
		if strings.Contains(lowerHost, s) {
			f.IsShortener = true
			break
		}
	}

	lowerPath := strings.ToLower(u.Path)
	for _, b := range BrandKeywords {
		if strings.Contains(lowerHost, b) || strings.Contains(lowerPath, b) {
			f.BrandTargets = append(f.BrandTargets, b)
		}
	}

	return f, nil
}

// asciiHostname returns the punycode form of host, or "" when host cannot be encoded
func asciiHostname(host string) string {
	ascii, err := idna.Punycode.ToASCII(host)
	if err != nil {
		return ""
	}
	return ascii
}

func registrableDomain(host string) string {
	if ipv4Pattern.MatchString(host) {
		return "N/A"
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "N/A"
	}
	return etld1
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
