package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"

	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "gpt-4o-mini"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIProvider implements Generator against the OpenAI chat completions endpoint.
type OpenAIProvider struct {
	apiKey      string
	modelName   string
	temperature float32
	endpoint    string
	httpClient  *http.Client
}

// NewOpenAIProvider creates a Generator backed by OpenAI chat completions.
// The 30s client timeout guards against stalled connections; ctx deadlines still apply.
func NewOpenAIProvider(apiKey, model string, temperature float32) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai: missing api key")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		apiKey:      apiKey,
		modelName:   model,
		temperature: temperature,
		endpoint:    openAIEndpoint,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// WithEndpoint points the provider at a different chat completions URL.
func (p *OpenAIProvider) WithEndpoint(url string) *OpenAIProvider {
	p.endpoint = url
	return p
}

// Generate implements Generator.
func (p *OpenAIProvider) Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemInstruction})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	reqBody, err := json.Marshal(chatRequest{
		Model:       p.modelName,
		Messages:    messages,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", upstreamError(ctx, "openai", fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstreamError(ctx, "openai", fmt.Errorf("read response: %w", err))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", upstreamError(ctx, "openai", fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err))
	}
	if cr.Error != nil {
		return "", upstreamError(ctx, "openai", fmt.Errorf("api error: %s", cr.Error.Message))
	}
	if len(cr.Choices) == 0 {
		return "", upstreamError(ctx, "openai", fmt.Errorf("API returned empty choices array (raw: %s)", body))
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
