package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/acheong08/threatlens/internal/urlscan"
)

// MaxSubdomains is the subdomain count above which a URL is flagged
const MaxSubdomains = 3

// URL builds the analysis context for a URL. Unparseable input stops after
// the structure section; DNS and redirect failures become notes.
func (p *Preprocessors) URL(ctx context.Context, input string) string {
	trimmed := strings.TrimSpace(input)
	sections := []string{
		fmt.Sprintf("## URL Analysis Request\n\n**Input URL:** `%s`", trimmed),
	}

	f, err := urlscan.Analyze(trimmed)
	if err != nil {
		if !errors.Is(err, urlscan.ErrInvalidURL) {
			log.Printf("[WARN] Unexpected URL analysis error: %v", err)
		}
		sections = append(sections, fmt.Sprintf("### URL Structure\n⚠️ Invalid URL: %q", urlscan.Normalize(trimmed)))
		return strings.Join(sections, "\n\n")
	}

	sections = append(sections, structureSection(f))
	sections = append(sections, homographSection(urlscan.DetectHomographs(f.Hostname)))

	dnsHost := f.ASCIIHostname
	if dnsHost == "" {
		dnsHost = f.Hostname
	}
	dns := p.Prober.LookupDNS(ctx, dnsHost)
	dnsSection := fmt.Sprintf("### DNS Records\n- **A Records:** %s\n- **MX Records:** %s",
		joinOr(dns.ARecords, "None / Failed"),
		joinOr(dns.MXRecords, "None / Failed"),
	)
	if dns.Error != "" {
		dnsSection += "\n- **Error:** " + dns.Error
	}
	sections = append(sections, dnsSection)

	if f.IsShortener {
		r := p.Prober.FollowRedirect(ctx, urlscan.Normalize(trimmed))
		switch {
		case r.Redirected():
			sections = append(sections, fmt.Sprintf("### Redirect Chain\n- **Short URL redirects to:** %s\n- **HTTP Status:** %d", r.Location, r.StatusCode))
		case r.Error != "":
			sections = append(sections, "### Redirect Chain\n- **Note:** "+r.Error)
		default:
			sections = append(sections, "### Redirect Chain\n- **Note:** No redirect detected")
		}
	}

	sections = append(sections, "\nAnalyze this URL for phishing attempts, homograph attacks, malware delivery, and deceptive intent.")
	return strings.Join(sections, "\n\n")
}

func structureSection(f *urlscan.Features) string {
	lines := []string{
		"### URL Structure",
		"- **Full URL:** " + f.FullURL,
		"- **Protocol:** " + f.Protocol,
		"- **Hostname:** " + f.Hostname,
	}
	if f.ASCIIHostname == "" {
		lines = append(lines, "- **Punycode Hostname:** (not IDNA-encodable)")
	} else if f.ASCIIHostname != strings.ToLower(f.Hostname) {
		lines = append(lines, "- **Punycode Hostname:** "+f.ASCIIHostname)
	}
	lines = append(lines,
		"- **Registrable Domain:** "+f.Registrable,
		"- **Port:** "+f.Port,
		"- **Path:** "+f.Path,
		"- **Query Params:** "+orDefault(f.QueryParams, "None"),
		"- **TLD:** "+f.TLD+flag(f.SuspiciousTLD, " ⚠️ SUSPICIOUS TLD"),
		fmt.Sprintf("- **Subdomain Count:** %d%s", f.SubdomainCount, flag(f.SubdomainCount > MaxSubdomains, " ⚠️ EXCESSIVE SUBDOMAINS")),
		"- **Is IP Address:** "+yesNo(f.IsIPAddress),
		"- **Is URL Shortener:** "+yesNo(f.IsShortener),
	)
	if len(f.BrandTargets) > 0 {
		lines = append(lines, "- **Brand Targets Detected:** ⚠️ "+strings.Join(f.BrandTargets, ", "))
	} else {
		lines = append(lines, "- **Brand Targets Detected:** None")
	}
	return strings.Join(lines, "\n")
}

func homographSection(findings []urlscan.HomographFinding) string {
	if len(findings) == 0 {
		return "### Homograph Check\n✅ No homograph characters detected."
	}
	lines := []string{"### ⚠️ Homograph Characters Detected"}
	for _, h := range findings {
		lines = append(lines, fmt.Sprintf("  - Character %q (%s) looks like Latin %q", h.Char, h.Codepoint, h.Lookalike))
	}
	return strings.Join(lines, "\n")
}

func flag(cond bool, note string) string {
	if cond {
		return note
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "⚠️ YES"
	}
	return "No"
}

func joinOr(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}
