package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifestInput(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectedName string
		hasManifest  bool
	}{
		{"bare name", "lodash", "lodash", false},
		{"bare name padded", "  colors-lib-v2 \n", "colors-lib-v2", false},
		{"scoped name", "@types/node", "@types/node", false},
		{"manifest with name", `{"name": "evil-pkg", "version": "1.0.0"}`, "evil-pkg", true},
		{"manifest without name", `{"version": "1.0.0"}`, `{"version": "1.0.0"}`, true},
		{"manifest with non-string name", `{"name": 42}`, `{"name": 42}`, true},
		{"broken json", `{"name": "evil-pkg",`, `{"name": "evil-pkg",`, false},
		{"trailing garbage", `{"name": "a"} extra`, `{"name": "a"} extra`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseManifestInput(tt.input)
			assert.Equal(t, tt.expectedName, got.Name)
			assert.Equal(t, tt.hasManifest, got.HasManifest())
			if tt.hasManifest {
				assert.NotEmpty(t, got.Raw)
			} else {
				assert.Empty(t, got.Raw)
			}
		})
	}
}

func TestParsePackageJSON(t *testing.T) {
	data := []byte(`{
		"name": "demo-package",
		"version": "0.0.1",
		"dependencies": {"lodash": "^4.17.21", "bad": 5},
		"devDependencies": {"jest": "^29.0.0"}
	}`)

	pkg, err := ParsePackageJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "demo-package", pkg.Name)
	assert.Equal(t, "0.0.1", pkg.Version)
	assert.Equal(t, map[string]string{"lodash": "^4.17.21"}, pkg.Dependencies)

	all := pkg.GetAllDependencies()
	assert.Len(t, all, 2)
	assert.Equal(t, "^29.0.0", all["jest"])
}

func TestParsePackageJSONInvalid(t *testing.T) {
	_, err := ParsePackageJSON([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = ParsePackageJSON([]byte(`null`))
	assert.Error(t, err)
}
