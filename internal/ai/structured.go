package ai

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// JSONResult is the outcome of GenerateJSON.
// Data is nil when the model output could not be parsed; Raw always carries the trimmed text.
type JSONResult struct {
	Raw  string
	Data json.RawMessage
}

// Unparsed reports whether the model output failed strict JSON parsing.
func (r JSONResult) Unparsed() bool { return r.Data == nil }

// GenerateJSON calls g and applies the fence-strip and strict-parse repair protocol.
// Malformed output is returned as an unparsed result, never as an error; only
// upstream failures are returned as errors.
func GenerateJSON(ctx context.Context, g Generator, systemInstruction, userPrompt string) (JSONResult, error) {
	raw, err := g.Generate(ctx, systemInstruction, userPrompt)
	if err != nil {
		return JSONResult{}, err
	}
	return ParseJSON(raw), nil
}

// ParseJSON applies the repair protocol to already-generated text.
func ParseJSON(raw string) JSONResult {
	raw = strings.TrimSpace(raw)
	cleaned := cleanJSONString(raw)
	if cleaned == "" || !json.Valid([]byte(cleaned)) {
		return JSONResult{Raw: raw}
	}
	return JSONResult{Raw: raw, Data: json.RawMessage(cleaned)}
}

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = leadingFence.ReplaceAllString(input, "")
	input = trailingFence.ReplaceAllString(input, "")
	return strings.TrimSpace(input)
}
