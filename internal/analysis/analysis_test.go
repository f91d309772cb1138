package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/acheong08/threatlens/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	response string
	err      error
	system   string
	user     string
}

func (s *stubCompleter) Complete(_ context.Context, systemPrompt, userContent string) (string, error) {
	s.system = systemPrompt
	s.user = userContent
	return s.response, s.err
}

func TestNormalizeVerdictNonJSON(t *testing.T) {
	v := NormalizeVerdict("not json")

	assert.Equal(t, 0, v.RiskScore)
	assert.Equal(t, models.RiskUnknown, v.RiskLevel)
	assert.Equal(t, "AI returned a non-JSON response. Raw output attached.", v.Summary)
	assert.Equal(t, "not json", v.RawOutput)
	assert.NotNil(t, v.KeyFindings)
	assert.Empty(t, v.KeyFindings)
}

func TestNormalizeVerdictMissingScore(t *testing.T) {
	v := NormalizeVerdict(`{
		"risk_level": "High",
		"summary": "Downloads and runs a remote payload.",
		"key_findings": [
			{"type": "Remote Execution", "description": "curl | sh in postinstall", "relevant_lines": ["3 | curl x | sh"]}
		]
	}`)

	assert.Equal(t, 0, v.RiskScore)
	assert.Equal(t, models.RiskHigh, v.RiskLevel)
	assert.Equal(t, "Downloads and runs a remote payload.", v.Summary)
	require.Len(t, v.KeyFindings, 1)
	assert.Equal(t, models.Finding{
		Type:          "Remote Execution",
		Description:   "curl | sh in postinstall",
		RelevantLines: []string{"3 | curl x | sh"},
	}, v.KeyFindings[0])
	assert.Empty(t, v.RawOutput)
}

func TestNormalizeVerdictFieldDefaults(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		score   int
		level   models.RiskLevel
		summary string
		nFind   int
	}{
		{"empty object", `{}`, 0, models.RiskUnknown, "No summary available.", 0},
		{"score clamped high", `{"risk_score": 250}`, 100, models.RiskUnknown, "No summary available.", 0},
		{"score clamped low", `{"risk_score": -5}`, 0, models.RiskUnknown, "No summary available.", 0},
		{"fractional score", `{"risk_score": 72.6}`, 73, models.RiskUnknown, "No summary available.", 0},
		{"numeric string score", `{"risk_score": "85"}`, 85, models.RiskUnknown, "No summary available.", 0},
		{"wrong typed score", `{"risk_score": true}`, 0, models.RiskUnknown, "No summary available.", 0},
		{"level case folded", `{"risk_level": "critical"}`, 0, models.RiskCritical, "No summary available.", 0},
		{"unknown level", `{"risk_level": "Severe"}`, 0, models.RiskUnknown, "No summary available.", 0},
		{"findings not array", `{"key_findings": "none"}`, 0, models.RiskUnknown, "No summary available.", 0},
		{"summary wrong type", `{"summary": 7}`, 0, models.RiskUnknown, "No summary available.", 0},
		{"mixed findings", `{"key_findings": [{"type": "x"}, "loose note", 3]}`, 0, models.RiskUnknown, "No summary available.", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NormalizeVerdict(tt.raw)
			assert.Equal(t, tt.score, v.RiskScore)
			assert.Equal(t, tt.level, v.RiskLevel)
			assert.Equal(t, tt.summary, v.Summary)
			assert.Len(t, v.KeyFindings, tt.nFind)
			assert.Empty(t, v.RawOutput)
		})
	}
}

func TestNormalizeVerdictNonObjectJSON(t *testing.T) {
	for _, raw := range []string{`[1, 2]`, `null`, `"text"`} {
		v := NormalizeVerdict(raw)
		assert.Equal(t, models.RiskUnknown, v.RiskLevel, raw)
		assert.Equal(t, raw, v.RawOutput, raw)
	}
}

func TestNormalizeVerdictStripsFence(t *testing.T) {
	raw := "```json\n{\"risk_score\": 10, \"risk_level\": \"Low\", \"summary\": \"ok\"}\n```"
	v := NormalizeVerdict(raw)

	assert.Equal(t, 10, v.RiskScore)
	assert.Equal(t, models.RiskLow, v.RiskLevel)
	assert.Equal(t, "ok", v.Summary)
	assert.Empty(t, v.RawOutput)
}

func TestNormalizeVerdictRelevantLinesStringified(t *testing.T) {
	v := NormalizeVerdict(`{"key_findings": [{"relevant_lines": [12, "eval(x)", null]}]}`)
	require.Len(t, v.KeyFindings, 1)
	assert.Equal(t, []string{"12", "eval(x)", ""}, v.KeyFindings[0].RelevantLines)
}

func TestGatewayMissingAPIKey(t *testing.T) {
	g := NewGateway(Config{})
	assert.Equal(t, DefaultModel, g.Model())

	_, err := g.Analyze(context.Background(), CodeAnalystPrompt, "x")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	// Still reported on later calls
	_, err = g.Analyze(context.Background(), CodeAnalystPrompt, "x")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGatewayAnalyze(t *testing.T) {
	stub := &stubCompleter{response: `{"risk_score": 91, "risk_level": "Critical", "summary": "Reverse shell", "key_findings": []}`}
	g := NewGatewayWithCompleter(stub)

	v, err := g.Analyze(context.Background(), URLAnalystPrompt, "## URL Analysis Request")
	require.NoError(t, err)
	assert.Equal(t, 91, v.RiskScore)
	assert.Equal(t, models.RiskCritical, v.RiskLevel)
	assert.Contains(t, stub.system, URLAnalystPrompt)
	assert.Contains(t, stub.system, "Respond with a single JSON object only.")
	assert.Equal(t, "## URL Analysis Request", stub.user)
}

func TestGatewayAnalyzeModelError(t *testing.T) {
	g := NewGatewayWithCompleter(&stubCompleter{err: errors.New("quota exceeded")})

	_, err := g.Analyze(context.Background(), CodeAnalystPrompt, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestPromptFor(t *testing.T) {
	for _, kind := range models.Kinds {
		prompt, ok := PromptFor(kind)
		assert.True(t, ok)
		assert.Contains(t, prompt, "risk_score")
	}
	_, ok := PromptFor("binary")
	assert.False(t, ok)
}
