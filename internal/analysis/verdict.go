package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/acheong08/threatlens/pkg/models"
)

const (
	nonJSONSummary = "AI returned a non-JSON response. Raw output attached."
	defaultSummary = "No summary available."
)

// NormalizeVerdict turns raw model output into a well-formed verdict. It never
// fails: unparseable output yields a degraded verdict carrying the raw text,
// and each field of a parsed object is defaulted on its own.
func NormalizeVerdict(raw string) models.RiskVerdict {
	var doc map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &doc); err != nil || doc == nil {
		return models.RiskVerdict{
			RiskScore:   0,
			RiskLevel:   models.RiskUnknown,
			Summary:     nonJSONSummary,
			KeyFindings: []models.Finding{},
			RawOutput:   raw,
		}
	}

	v := models.RiskVerdict{
		RiskScore:   normalizeScore(doc["risk_score"]),
		RiskLevel:   models.RiskUnknown,
		Summary:     defaultSummary,
		KeyFindings: normalizeFindings(doc["key_findings"]),
	}
	if level, ok := doc["risk_level"].(string); ok {
		v.RiskLevel = models.ParseRiskLevel(level)
	}
	if summary, ok := doc["summary"].(string); ok {
		v.Summary = summary
	}
	if rawOutput, ok := doc["raw_output"].(string); ok {
		v.RawOutput = rawOutput
	}
	return v
}

// stripCodeFence removes one surrounding ``` fence, with or without a language tag
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(s, "```")
	nl := strings.IndexByte(body, '\n')
	if nl == -1 {
		return s
	}
	return strings.TrimSpace(body[nl+1:])
}

func normalizeScore(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func normalizeFindings(v any) []models.Finding {
	items, ok := v.([]any)
	if !ok {
		return []models.Finding{}
	}

	findings := make([]models.Finding, 0, len(items))
	for _, item := range items {
		switch f := item.(type) {
		case map[string]any:
			finding := models.Finding{RelevantLines: []string{}}
			finding.Type, _ = f["type"].(string)
			finding.Description, _ = f["description"].(string)
			if lines, ok := f["relevant_lines"].([]any); ok {
				for _, line := range lines {
					finding.RelevantLines = append(finding.RelevantLines, stringify(line))
				}
			}
			findings = append(findings, finding)
		case string:
			findings = append(findings, models.Finding{Description: f, RelevantLines: []string{}})
		}
	}
	return findings
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
