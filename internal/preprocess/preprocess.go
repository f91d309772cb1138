package preprocess

import (
	"context"

	"github.com/acheong08/threatlens/internal/netprobe"
	"github.com/acheong08/threatlens/internal/registry"
	"github.com/acheong08/threatlens/pkg/models"
)

// Func turns raw input into a model-ready context
type Func func(ctx context.Context, input string) string

// Preprocessors holds the network collaborators the package and URL
// preprocessors need.
type Preprocessors struct {
	Registry *registry.Client
	Prober   *netprobe.Prober
}

// New creates preprocessors. Nil collaborators are replaced with defaults.
func New(reg *registry.Client, prober *netprobe.Prober) *Preprocessors {
	if reg == nil {
		reg = registry.NewClient("")
	}
	if prober == nil {
		prober = netprobe.NewProber()
	}
	return &Preprocessors{Registry: reg, Prober: prober}
}

// For returns the preprocessor for kind
func (p *Preprocessors) For(kind models.AnalysisKind) (Func, bool) {
	switch kind {
	case models.KindCode:
		return func(_ context.Context, input string) string { return Code(input) }, true
	case models.KindPackage:
		return p.Package, true
	case models.KindURL:
		return p.URL, true
	default:
		return nil, false
	}
}
