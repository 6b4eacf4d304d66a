package receipt

import (
	"context"
	"fmt"
)

// Providers understood by NewParser.
const (
	ProviderNone   = ""
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
)

// Config selects and configures a receipt provider.
type Config struct {
	Provider string
	Endpoint string // http only
	APIKey   string
	Model    string // gemini only
	Paths    Paths  // http only
}

// NewParser builds the parser selected by cfg.Provider.
// It returns ErrNotConfigured when no provider is set.
func NewParser(ctx context.Context, cfg Config) (Parser, error) {
	switch cfg.Provider {
	case ProviderNone:
		return nil, ErrNotConfigured
	case ProviderHTTP:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("receipt provider %q needs an endpoint", cfg.Provider)
		}
		p := NewHTTPParser(cfg.Endpoint, cfg.APIKey)
		p.Paths = cfg.Paths.withDefaults()
		return p, nil
	case ProviderGemini:
		return NewGeminiParser(ctx, cfg.APIKey, cfg.Model)
	}
	return nil, fmt.Errorf("unknown receipt provider %q", cfg.Provider)
}
