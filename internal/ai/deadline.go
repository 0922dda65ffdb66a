package ai

import (
	"context"
	"errors"
	"time"
)

// deadlineGenerator bounds every Generate call with a per-call timeout.
type deadlineGenerator struct {
	next     Generator
	provider string
	timeout  time.Duration
}

// WithTimeout bounds each call on g to d. A zero or negative d returns g unchanged.
func WithTimeout(g Generator, provider string, d time.Duration) Generator {
	if g == nil || d <= 0 {
		return g
	}
	return &deadlineGenerator{next: g, provider: provider, timeout: d}
}

func (g *deadlineGenerator) Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	out, err := g.next.Generate(ctx, systemInstruction, userPrompt)
	if err != nil {
		return "", classify(ctx, g.provider, err)
	}
	return out, nil
}

type deadlineExtractor struct {
	next     TextExtractor
	provider string
	timeout  time.Duration
}

// WithExtractTimeout is WithTimeout for OCR calls.
func WithExtractTimeout(x TextExtractor, provider string, d time.Duration) TextExtractor {
	if x == nil || d <= 0 {
		return x
	}
	return &deadlineExtractor{next: x, provider: provider, timeout: d}
}

func (x *deadlineExtractor) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	out, err := x.next.ExtractText(ctx, image, mimeType)
	if err != nil {
		return "", classify(ctx, x.provider, err)
	}
	return out, nil
}

// classify keeps an existing *UpstreamError unless it missed our own deadline.
func classify(ctx context.Context, provider string, err error) error {
	var up *UpstreamError
	if errors.As(err, &up) && (up.Timeout || ctx.Err() == nil) {
		return err
	}
	return upstreamError(ctx, provider, err)
}
