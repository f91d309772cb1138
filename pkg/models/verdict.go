package models

import "strings"

// AnalysisKind is the declared type of an analysis input
type AnalysisKind string

const (
	KindCode    AnalysisKind = "code"
	KindPackage AnalysisKind = "package"
	KindURL     AnalysisKind = "url"
)

// Kinds lists every accepted kind in display order
var Kinds = []AnalysisKind{KindCode, KindPackage, KindURL}

// ParseKind returns the kind named by s, or false if s is not one of Kinds
func ParseKind(s string) (AnalysisKind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// KindNames returns the accepted kinds joined for error messages
func KindNames() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// RiskLevel is the model's coarse verdict
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
	RiskUnknown  RiskLevel = "Unknown"
)

var riskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical, RiskUnknown}

// ParseRiskLevel matches s case-insensitively against the known levels.
// Anything else maps to RiskUnknown.
func ParseRiskLevel(s string) RiskLevel {
	s = strings.TrimSpace(s)
	for _, l := range riskLevels {
		if strings.EqualFold(string(l), s) {
			return l
		}
	}
	return RiskUnknown
}

// Finding is a single observation reported by the model
type Finding struct {
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	RelevantLines []string `json:"relevant_lines"`
}

// RiskVerdict is the normalized result returned to callers
type RiskVerdict struct {
	RiskScore   int       `json:"risk_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Summary     string    `json:"summary"`
	KeyFindings []Finding `json:"key_findings"`
	RawOutput   string    `json:"raw_output,omitempty"`
}
