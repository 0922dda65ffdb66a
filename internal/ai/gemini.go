package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

const ocrInstruction = `You are an OCR engine. Transcribe every piece of text visible in the image exactly as printed.
Keep the original line breaks. Do not summarise, translate or explain. If there is no legible text, return an empty response.`

// GeminiProvider implements Generator and TextExtractor using Google's Gemini models.
type GeminiProvider struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from configuration; an empty model selects DefaultGeminiModel.
func NewGeminiProvider(ctx context.Context, apiKey, model string, temperature float32) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{
		client:      client,
		modelName:   model,
		temperature: temperature,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Model returns the configured model identifier.
func (p *GeminiProvider) Model() string { return p.modelName }

// newModel builds a per-call model handle so the system instruction never leaks across requests.
func (p *GeminiProvider) newModel(systemInstruction string) *genai.GenerativeModel {
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(p.temperature)
	if systemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	}
	return model
}

// Generate implements Generator.
func (p *GeminiProvider) Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	resp, err := p.newModel(systemInstruction).GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", upstreamError(ctx, "gemini", fmt.Errorf("generate content: %w", err))
	}
	return responseText(resp)
}

// ExtractText implements TextExtractor with Gemini vision.
func (p *GeminiProvider) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", nil
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	model := p.newModel(ocrInstruction)
	model.SetTemperature(0)
	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: image},
		genai.Text("Extract all text from this image."),
	)
	if err != nil {
		return "", upstreamError(ctx, "gemini", fmt.Errorf("extract text: %w", err))
	}
	text, err := responseText(resp)
	if err != nil {
		// A vision call that yields no candidates is "no usable text", not a failure.
		return "", nil
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &UpstreamError{Provider: "gemini", Err: fmt.Errorf("no response candidates")}
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(responseText.String()), nil
}
