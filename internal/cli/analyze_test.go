package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acheong08/threatlens/internal/config"
	"github.com/acheong08/threatlens/internal/server"
	"github.com/acheong08/threatlens/pkg/models"
)

type stubAnalyzer struct {
	verdict *models.RiskVerdict
	err     error
	got     string
}

func (s *stubAnalyzer) Analyze(_ context.Context, _, userContent string) (*models.RiskVerdict, error) {
	s.got = userContent
	return s.verdict, s.err
}

func withAnalyzer(t *testing.T, a server.Analyzer) {
	t.Helper()
	for _, key := range []string{"PORT", "APP_ENV", "NODE_ENV", "GEMINI_API_KEY", "NPM_REGISTRY_URL"} {
		t.Setenv(key, "")
	}
	t.Setenv("THREATLENS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())

	orig := newAnalyzer
	newAnalyzer = func(*config.Config) server.Analyzer { return a }
	t.Cleanup(func() { newAnalyzer = orig })
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var sampleVerdict = &models.RiskVerdict{
	RiskScore: 87,
	RiskLevel: models.RiskHigh,
	Summary:   "Spawns a shell from user input.",
	KeyFindings: []models.Finding{
		{Type: "Command Injection", Description: "exec called with request data", RelevantLines: []string{"3 | exec(req.query.cmd)"}},
	},
}

func TestAnalyzeRendersVerdict(t *testing.T) {
	stub := &stubAnalyzer{verdict: sampleVerdict}
	withAnalyzer(t, stub)

	out, err := execute("analyze", "--type", "code", "eval(atob('ZWNobw=='))")
	require.NoError(t, err)

	assert.Contains(t, stub.got, "## Code Analysis Request")
	assert.Contains(t, out, "ThreatLens · CODE")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "87/100")
	assert.Contains(t, out, "Spawns a shell from user input.")
	assert.Contains(t, out, "Key Findings (1)")
	assert.Contains(t, out, "[Command Injection] exec called with request data")
	assert.Contains(t, out, "3 | exec(req.query.cmd)")
}

func TestAnalyzeJSON(t *testing.T) {
	withAnalyzer(t, &stubAnalyzer{verdict: sampleVerdict})

	out, err := execute("analyze", "--type", "code", "--json", "print('hi')")
	require.NoError(t, err)

	var got server.ResultPayload
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Error)
	assert.Equal(t, models.KindCode, got.Type)
	assert.Equal(t, sampleVerdict, got.Result)
}

func TestAnalyzeModelError(t *testing.T) {
	withAnalyzer(t, &stubAnalyzer{err: errors.New("quota exceeded")})

	_, err := execute("analyze", "--type", "code", "x = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis failed: quota exceeded")
}

func TestRenderVerdictRawOutput(t *testing.T) {
	out := RenderVerdict(models.KindURL, &models.RiskVerdict{
		RiskLevel: models.RiskUnknown,
		Summary:   "The model did not return valid JSON. See raw output.",
		RawOutput: "I think it's fine",
	})
	assert.Contains(t, out, "ThreatLens · URL")
	assert.Contains(t, out, "0/100")
	assert.Contains(t, out, "Raw Model Output")
	assert.Contains(t, out, "I think it's fine")
	assert.NotContains(t, out, "Key Findings")
}

func TestFindingColor(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"Data Exfiltration", string(danger)},
		{"Typosquatting", string(danger)},
		{"Suspicious install script", string(warning)},
		{"Benign behavior", string(success)},
		{"Other", string(fg)},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, string(findingColor(models.Finding{Type: tt.typ})))
		})
	}
}

func TestReadContentJoinsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(""))
	got, err := readContent(cmd, []string{"left-pad", "extra"})
	require.NoError(t, err)
	assert.Equal(t, "left-pad extra", got)
}
