package ai

import (
	"context"
	"fmt"

	"roamgenie/internal/config"
)

// Providers bundles the generator selected by configuration and the OCR extractor.
// Vision is nil when no Gemini key is configured.
type Providers struct {
	Generator Generator
	Vision    TextExtractor
	close     func()
}

// Close releases provider resources.
func (p *Providers) Close() {
	if p.close != nil {
		p.close()
	}
}

// New builds the configured Generator. Every call is bounded by cfg.AI.Timeout. Image OCR always runs on Gemini vision,
// so a Gemini key enables it regardless of which provider generates text.
func New(ctx context.Context, cfg config.Config) (*Providers, error) {
	out := &Providers{}

	var gemini *GeminiProvider
	if cfg.AI.GeminiKey != "" {
		model := cfg.AI.Model
		if cfg.AI.Provider != config.ProviderGemini {
			model = ""
		}
		g, err := NewGeminiProvider(ctx, cfg.AI.GeminiKey, model, cfg.AI.Temperature)
		if err != nil {
			return nil, err
		}
		gemini = g
		out.Vision = WithExtractTimeout(g, config.ProviderGemini, cfg.AI.Timeout)
		out.close = g.Close
	}

	switch cfg.AI.Provider {
	case config.ProviderAnthropic:
		p, err := NewAnthropicProvider(cfg.AIKey(), cfg.AI.Model)
		if err != nil {
			return nil, err
		}
		out.Generator = p
	case config.ProviderOpenAI:
		p, err := NewOpenAIProvider(cfg.AIKey(), cfg.AI.Model, cfg.AI.Temperature)
		if err != nil {
			return nil, err
		}
		out.Generator = p
	default:
		if gemini == nil {
			return nil, fmt.Errorf("gemini: missing api key (set GEMINI_API_KEY)")
		}
		out.Generator = gemini
	}
	out.Generator = WithTimeout(out.Generator, cfg.AI.Provider, cfg.AI.Timeout)
	return out, nil
}
