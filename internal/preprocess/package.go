package preprocess

import (
	"context"
	"fmt"
	"strings"

	"github.com/acheong08/threatlens/internal/parser"
	"github.com/acheong08/threatlens/internal/registry"
)

// SensitiveScriptKeys are lifecycle hooks the package manager runs without asking
var SensitiveScriptKeys = []string{
	"preinstall", "postinstall", "preuninstall", "postuninstall", "prepare", "prepublish",
}

// SuspiciousCommandFragments flag a script regardless of its key.
// Matching is a case-sensitive substring test.
var SuspiciousCommandFragments = []string{"curl", "wget", "eval", "base64"}

// Package builds the analysis context for a package name or package.json
func (p *Preprocessors) Package(ctx context.Context, input string) string {
	in := parser.ParseManifestInput(input)

	sections := []string{
		fmt.Sprintf("## Package Analysis Request\n\n**Package Name:** %s", in.Name),
	}

	lookup := p.Registry.Lookup(ctx, in.Name)
	if lookup.Status == registry.StatusFound {
		sections = append(sections, registrySections(lookup.Metadata)...)
	} else {
		sections = append(sections, fmt.Sprintf("### Registry Lookup\n⚠️ %s", lookup.Message))
	}

	if in.HasManifest() {
		section := "### User-Provided package.json\n"
		if deps := in.Manifest.GetAllDependencies(); len(deps) > 0 {
			section += fmt.Sprintf("**Declared Dependencies:** %d\n", len(deps))
		}
		section += jsonBlock(registry.IndentJSON(in.Raw))
		sections = append(sections, section)
	}

	sections = append(sections, "\nAnalyze this package for supply chain security risks, typosquatting, malicious scripts, and suspicious behavior.")
	return strings.Join(sections, "\n\n")
}

func registrySections(m *registry.Metadata) []string {
	maintainers := "None listed"
	if len(m.Maintainers) > 0 {
		maintainers = strings.Join(m.Maintainers, ", ")
	}

	sections := []string{fmt.Sprintf(`### Registry Metadata
- **Latest Version:** %s
- **Author:** %s
- **Maintainers:** %s
- **Created:** %s
- **Last Modified:** %s
- **Total Versions:** %d
- **License:** %s
- **Description:** %s`,
		orDefault(m.LatestVersion, "N/A"),
		m.Author,
		maintainers,
		orDefault(m.Created, "N/A"),
		orDefault(m.Modified, "N/A"),
		m.VersionCount,
		orDefault(m.License, "None specified"),
		orDefault(m.Description, "No description"),
	)}

	if len(m.Scripts) > 0 {
		if risky := RiskyScripts(m.Scripts); len(risky) > 0 {
			sections = append(sections, "### ⚠️ Install/Lifecycle Scripts (Security-Critical)\n"+jsonBlock(registry.ScriptsJSON(risky)))
		}
		sections = append(sections, "### All Scripts\n"+jsonBlock(registry.ScriptsJSON(m.Scripts)))
	}

	if deps := m.DependenciesJSON(); deps != "" {
		sections = append(sections, "### Dependencies\n"+jsonBlock(deps))
	}
	return sections
}

// RiskyScripts keeps scripts with a sensitive key or a suspicious command,
// preserving order.
func RiskyScripts(scripts []registry.Script) []registry.Script {
	var out []registry.Script
	for _, s := range scripts {
		if isRiskyScript(s) {
			out = append(out, s)
		}
	}
	return out
}

func isRiskyScript(s registry.Script) bool {
	for _, key := range SensitiveScriptKeys {
		if s.Name == key {
			return true
		}
	}
	for _, frag := range SuspiciousCommandFragments {
		if strings.Contains(s.Command, frag) {
			return true
		}
	}
	return false
}

func jsonBlock(body string) string {
	return "```json\n" + body + "\n```"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
