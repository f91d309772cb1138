package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/schema"
	"github.com/acheong08/threatlens/pkg/models"
)

const (
	// DefaultModel is used when no model override is configured
	DefaultModel = "gemini-2.0-flash"
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	Temperature     = 0.2
	MaxOutputTokens = 4096
)

// ErrMissingAPIKey is returned on first use when no API key is configured
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set, create a .env file with your Google AI Studio API key")

const jsonOnlyInstruction = "\n\nRespond with a single JSON object only. Do not wrap it in markdown or add any other text."

// Completer sends one system + user exchange to a model and returns its raw text
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// Config selects the model endpoint
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Gateway wraps the external model call and normalizes what comes back.
// The model client is built on first use and shared afterwards. A failed
// build is retried on the next call.
type Gateway struct {
	cfg Config

	mu        sync.Mutex
	completer Completer
}

// NewGateway creates a gateway. No connection or key check happens until
// the first Analyze call.
func NewGateway(cfg Config) *Gateway {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Gateway{cfg: cfg}
}

// NewGatewayWithCompleter creates a gateway that uses c instead of building a model client
func NewGatewayWithCompleter(c Completer) *Gateway {
	return &Gateway{completer: c}
}

// Model returns the configured model name
func (g *Gateway) Model() string {
	return g.cfg.Model
}

// Analyze sends the analyst prompt and preprocessed context to the model and
// returns a normalized verdict. Malformed model output is not an error.
func (g *Gateway) Analyze(ctx context.Context, systemPrompt, userContent string) (*models.RiskVerdict, error) {
	completer, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := completer.Complete(ctx, systemPrompt+jsonOnlyInstruction, userContent)
	if err != nil {
		return nil, fmt.Errorf("model generation failed: %w", err)
	}

	verdict := NormalizeVerdict(raw)
	if verdict.RawOutput != "" {
		log.Printf("[WARN] Model returned output that needed recovery (%d bytes)", len(raw))
	}
	return &verdict, nil
}

func (g *Gateway) client(ctx context.Context) (Completer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.completer != nil {
		return g.completer, nil
	}
	if g.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	model, err := newLanguageModel(ctx, g.cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Model client ready: %s", g.cfg.Model)
	g.completer = &objectCompleter{model: model}
	return g.completer, nil
}

var newLanguageModel = func(ctx context.Context, cfg Config) (fantasy.LanguageModel, error) {
	provider, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithAPIKey(cfg.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create language model: %w", err)
	}
	return model, nil
}

// verdictSchema is the strict response format requested from the model.
// Every property is required so providers enforcing strict mode accept it.
var verdictSchema = fantasy.Schema{
	Type: "object",
	Properties: map[string]*fantasy.Schema{
		"risk_score": {Type: "integer", Description: "0 (safe) to 100 (certainly malicious)"},
		"risk_level": {Type: "string", Enum: []any{"Low", "Medium", "High", "Critical"}},
		"summary":    {Type: "string"},
		"key_findings": {
			Type: "array",
			Items: &fantasy.Schema{
				Type: "object",
				Properties: map[string]*fantasy.Schema{
					"type":           {Type: "string"},
					"description":    {Type: "string"},
					"relevant_lines": {Type: "array", Items: &fantasy.Schema{Type: "string"}},
				},
				Required: []string{"type", "description", "relevant_lines"},
			},
		},
	},
	Required: []string{"risk_score", "risk_level", "summary", "key_findings"},
}

// objectCompleter asks the model for a JSON object matching verdictSchema
type objectCompleter struct {
	model fantasy.LanguageModel
}

func (o *objectCompleter) Complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	resp, err := o.model.GenerateObject(ctx, fantasy.ObjectCall{
		Prompt: fantasy.Prompt{
			fantasy.NewSystemMessage(systemPrompt),
			fantasy.NewUserMessage(userContent),
		},
		Schema:            verdictSchema,
		SchemaName:        "risk_verdict",
		SchemaDescription: "Security risk verdict",
		Temperature:       fantasy.Opt(float64(Temperature)),
		MaxOutputTokens:   fantasy.Opt(int64(MaxOutputTokens)),
	})
	if err != nil {
		// Output that fails parsing or validation is still handed to
		// NormalizeVerdict, which degrades it instead of failing.
		if raw, ok := rawTextOf(err); ok {
			return raw, nil
		}
		return "", fmt.Errorf("object generation failed: %w", err)
	}
	return resp.RawText, nil
}

func rawTextOf(err error) (string, bool) {
	var noObject *fantasy.NoObjectGeneratedError
	if errors.As(err, &noObject) {
		return noObject.RawText, true
	}
	var parseErr *schema.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.RawText, true
	}
	return "", false
}
