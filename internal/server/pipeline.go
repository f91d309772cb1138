package server

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/acheong08/threatlens/internal/analysis"
	"github.com/acheong08/threatlens/internal/preprocess"
	"github.com/acheong08/threatlens/pkg/models"
)

// ProgressSender interface for sending progress updates
type ProgressSender interface {
	SendMessage(msg Message)
	SendLog(message, level string)
	SendProgress(percent int, stage, message string)
	SendError(message string, err error)
}

// Analyzer is the model side of the pipeline
type Analyzer interface {
	Analyze(ctx context.Context, systemPrompt, userContent string) (*models.RiskVerdict, error)
}

// ValidationError is a client input error. Handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks an analysis request in order: both fields present, type
// known, content a non-blank string. The first violation wins.
func Validate(typ, content any) (models.AnalysisKind, string, error) {
	if !truthy(typ) || !truthy(content) {
		return "", "", &ValidationError{Message: `Both "type" and "content" fields are required.`}
	}

	name, _ := typ.(string)
	kind, ok := models.ParseKind(name)
	if !ok {
		return "", "", &ValidationError{
			Message: fmt.Sprintf("Invalid type %q. Must be one of: %s", fmt.Sprint(typ), models.KindNames()),
		}
	}

	text, ok := content.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return "", "", &ValidationError{Message: `"content" must be a non-empty string.`}
	}
	return kind, text, nil
}

// truthy treats absent, null, false, zero and empty-string values as missing
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

// Pipeline wires preprocessors and analyst prompts to the model gateway
type Pipeline struct {
	pre      *preprocess.Preprocessors
	analyzer Analyzer
}

// NewPipeline creates a new pipeline instance
func NewPipeline(pre *preprocess.Preprocessors, analyzer Analyzer) *Pipeline {
	return &Pipeline{pre: pre, analyzer: analyzer}
}

// Preprocess runs only the enrichment step for kind
func (p *Pipeline) Preprocess(ctx context.Context, kind models.AnalysisKind, content string) (string, error) {
	fn, ok := p.pre.For(kind)
	if !ok {
		return "", fmt.Errorf("no preprocessor for type %q", kind)
	}
	return fn(ctx, content), nil
}

// Run preprocesses content and asks the model for a verdict. sender may be nil.
func (p *Pipeline) Run(ctx context.Context, kind models.AnalysisKind, content string, sender ProgressSender) (*models.RiskVerdict, error) {
	r := &run{sender: sender}

	prompt, ok := analysis.PromptFor(kind)
	if !ok {
		return nil, fmt.Errorf("no analyst prompt for type %q", kind)
	}

	r.log(fmt.Sprintf("Analyzing [%s]: %s", strings.ToUpper(string(kind)), preview(content, 80)), "info")
	r.progress(10, "preprocess", fmt.Sprintf("Preprocessing %s input...", kind))

	enriched, err := p.Preprocess(ctx, kind, content)
	if err != nil {
		return nil, err
	}
	r.log("Pre-processing complete", "success")
	r.progress(50, "model", "Waiting for model verdict...")

	verdict, err := p.analyzer.Analyze(ctx, prompt, enriched)
	if err != nil {
		r.log(fmt.Sprintf("Model analysis failed: %v", err), "error")
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	r.log(fmt.Sprintf("AI analysis complete: %s (%d/100)", verdict.RiskLevel, verdict.RiskScore), "success")
	r.progress(100, "model", "Analysis complete")

	return verdict, nil
}

// run sends log lines both to the optional client and to the console
type run struct {
	sender ProgressSender
}

func (r *run) log(message, level string) {
	if r.sender != nil {
		r.sender.SendLog(message, level)
	}

	prefix := "[INFO]"
	switch level {
	case "success":
		prefix = "[SUCCESS]"
	case "warning":
		prefix = "[WARN]"
	case "error":
		prefix = "[ERROR]"
	}
	log.Printf("%s %s", prefix, message)
}

func (r *run) progress(percent int, stage, message string) {
	if r.sender != nil {
		r.sender.SendProgress(percent, stage, message)
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
