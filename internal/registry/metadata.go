package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Script is one entry of a package's scripts map. RawName and RawCommand
// keep the document's JSON encoding so re-emitted blocks match the source.
type Script struct {
	Name       string
	Command    string
	RawName    string
	RawCommand string
}

// Metadata is the distilled, security-relevant view of a registry packument
type Metadata struct {
	Name          string
	LatestVersion string
	Author        string
	Maintainers   []string
	Created       string
	Modified      string
	VersionCount  int
	License       string
	Description   string

	// From the manifest of the latest version, in document order
	Scripts         []Script
	DependencyCount int
	dependencies    string
}

// ParseMetadata extracts Metadata from a raw packument
func ParseMetadata(body []byte) (*Metadata, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("failed to decode registry response: invalid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("failed to decode registry response: expected object, got %s", doc.Type)
	}

	meta := &Metadata{
		Name:          doc.Get("name").String(),
		LatestVersion: doc.Get("dist-tags.latest").String(),
		Author:        formatAuthor(doc.Get("author")),
		Created:       doc.Get("time.created").String(),
		Modified:      doc.Get("time.modified").String(),
		License:       formatLicense(doc.Get("license")),
		Description:   doc.Get("description").String(),
	}

	doc.Get("maintainers").ForEach(func(_, m gjson.Result) bool {
		if name := m.Get("name").String(); name != "" {
			meta.Maintainers = append(meta.Maintainers, name)
		}
		return true
	})

	var latest gjson.Result
	versions := doc.Get("versions")
	if versions.IsObject() {
		versions.ForEach(func(key, value gjson.Result) bool {
			meta.VersionCount++
			if meta.LatestVersion != "" && key.String() == meta.LatestVersion {
				latest = value
			}
			return true
		})
	}

	if latest.IsObject() {
		latest.Get("scripts").ForEach(func(key, value gjson.Result) bool {
			meta.Scripts = append(meta.Scripts, Script{
				Name:       key.String(),
				Command:    value.String(),
				RawName:    key.Raw,
				RawCommand: value.Raw,
			})
			return true
		})

		deps := latest.Get("dependencies")
		if deps.IsObject() {
			deps.ForEach(func(_, _ gjson.Result) bool {
				meta.DependencyCount++
				return true
			})
			meta.dependencies = deps.Raw
		}
	}

	return meta, nil
}

// ScriptsJSON renders scripts as an indented JSON object in the given order
func ScriptsJSON(scripts []Script) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, s := range scripts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.RawName)
		b.WriteByte(':')
		b.WriteString(s.RawCommand)
	}
	b.WriteByte('}')
	return IndentJSON(b.String())
}

// DependenciesJSON returns the latest version's dependency map as indented JSON,
// or an empty string when there are none.
func (m *Metadata) DependenciesJSON() string {
	if m.DependencyCount == 0 {
		return ""
	}
	return IndentJSON(m.dependencies)
}

// IndentJSON re-indents raw JSON with two spaces, keeping key order and
// string escapes exactly as they were. Invalid input is returned unchanged.
func IndentJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return raw
	}
	return buf.String()
}

func formatAuthor(author gjson.Result) string {
	switch {
	case author.Type == gjson.String && author.Str != "":
		return author.Str
	case author.IsObject():
		name := author.Get("name").String()
		if name == "" {
			name = "Unknown"
		}
		email := author.Get("email").String()
		if email == "" {
			email = "no email"
		}
		return fmt.Sprintf("%s <%s>", name, email)
	default:
		return "No author listed"
	}
}

func formatLicense(license gjson.Result) string {
	if license.IsObject() {
		return license.Get("type").String()
	}
	if license.Type == gjson.String {
		return license.Str
	}
	return ""
}
