package ai

import (
	"context"
)

// Generator defines the contract for a generative text backend.
// One Generator is configured with one fixed model for the process lifetime.
type Generator interface {
	// Generate sends one system instruction and one user prompt to the model and
	// returns the trimmed text response. Backend failures come back as *UpstreamError.
	// Implementations never retry.
	Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error)
}

// TextExtractor turns an image into raw text (OCR).
// An empty string is a valid result and means "no usable text".
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}
