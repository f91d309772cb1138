package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PackageJSON holds the package.json fields the package preprocessor cares about
type PackageJSON struct {
	Name            string
	Version         string
	Dependencies    map[string]string
	DevDependencies map[string]string
}

// ManifestInput is the interpreted form of a package analysis request
type ManifestInput struct {
	// Name is the package to look up in the registry
	Name string
	// Raw is the trimmed manifest text, empty when the input was a bare name
	Raw string
	// Manifest is set only when Raw parsed as a JSON object
	Manifest *PackageJSON
}

// HasManifest reports whether the caller supplied a package.json
func (m ManifestInput) HasManifest() bool {
	return m.Manifest != nil
}

// ParseManifestInput decides whether input is a bare package name or a
// package.json document. Input that looks like JSON but fails to parse is
// treated as a package name.
func ParseManifestInput(input string) ManifestInput {
	trimmed := strings.TrimSpace(input)
	result := ManifestInput{Name: trimmed}

	if !strings.HasPrefix(trimmed, "{") {
		return result
	}

	pkg, err := ParsePackageJSON([]byte(trimmed))
	if err != nil {
		return result
	}

	result.Raw = trimmed
	result.Manifest = pkg
	if pkg.Name != "" {
		result.Name = pkg.Name
	}
	return result
}

// ParsePackageJSON decodes a package.json document. Fields with unexpected
// types are ignored rather than rejected.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to parse package.json: not an object")
	}

	pkg := &PackageJSON{
		Dependencies:    stringMap(doc["dependencies"]),
		DevDependencies: stringMap(doc["devDependencies"]),
	}
	pkg.Name, _ = doc["name"].(string)
	pkg.Version, _ = doc["version"].(string)
	return pkg, nil
}

// GetAllDependencies returns production + dev dependencies
func (p *PackageJSON) GetAllDependencies() map[string]string {
	all := make(map[string]string, len(p.Dependencies)+len(p.DevDependencies))
	for k, v := range p.Dependencies {
		all[k] = v
	}
	for k, v := range p.DevDependencies {
		all[k] = v
	}
	return all
}

func stringMap(v any) map[string]string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, raw := range obj {
		if s, ok := raw.(string); ok {
			out[k] = s
		}
	}
	return out
}
