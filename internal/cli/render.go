package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/acheong08/threatlens/pkg/models"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	orange  = lipgloss.Color("#FB923C")
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	levelColors = map[models.RiskLevel]lipgloss.Color{
		models.RiskLow:      success,
		models.RiskMedium:   warning,
		models.RiskHigh:     orange,
		models.RiskCritical: danger,
		models.RiskUnknown:  dim,
	}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	separatorLine = lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("─", 64))
)

// findingColor picks a color from the finding type. Unknown types stay neutral.
func findingColor(f models.Finding) lipgloss.Color {
	t := strings.ToLower(f.Type)
	switch {
	case containsAny(t, "malicious", "exfiltration", "backdoor", "obfuscat", "phishing", "homograph", "typosquat"):
		return danger
	case containsAny(t, "suspicious", "script", "redirect", "shortener", "network", "eval"):
		return warning
	case containsAny(t, "benign", "safe", "clean"):
		return success
	default:
		return fg
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// RenderVerdict formats a verdict for the terminal
func RenderVerdict(kind models.AnalysisKind, v *models.RiskVerdict) string {
	var b strings.Builder

	color, ok := levelColors[v.RiskLevel]
	if !ok {
		color = dim
	}
	levelStyle := lipgloss.NewStyle().Bold(true).Foreground(color)

	header := fmt.Sprintf("%s\n\n%s  %s",
		titleStyle.Render("ThreatLens · "+strings.ToUpper(string(kind))),
		levelStyle.Render(string(v.RiskLevel)),
		levelStyle.Render(fmt.Sprintf("%d/100", v.RiskScore)),
	)
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(v.Summary)
	b.WriteString("\n")

	if len(v.KeyFindings) > 0 {
		b.WriteString("\n")
		b.WriteString(separatorLine)
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("Key Findings (%d)", len(v.KeyFindings))))
		b.WriteString("\n")
		for _, f := range v.KeyFindings {
			label := f.Type
			if label == "" {
				label = "finding"
			}
			tag := lipgloss.NewStyle().Bold(true).Foreground(findingColor(f)).Render("[" + label + "]")
			fmt.Fprintf(&b, "  %s %s\n", tag, f.Description)
			for _, line := range f.RelevantLines {
				fmt.Fprintf(&b, "      %s\n", dimStyle.Render(line))
			}
		}
	}

	if v.RawOutput != "" {
		b.WriteString("\n")
		b.WriteString(separatorLine)
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Raw Model Output"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(v.RawOutput))
		b.WriteString("\n")
	}

	return b.String()
}
