package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCleanJSONString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"upper fence", "```JSON {\"a\":1} ```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padding", "  \n```json\n{\"a\":1}```  \n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONString(tt.in); got != tt.want {
				t.Errorf("cleanJSONString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateJSON(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		wantUnparsed bool
	}{
		{"valid object", `{"type":"flight"}`, false},
		{"fenced object", "```json\n{\"type\":\"hotel\"}\n```", false},
		{"prose", "Sorry, I could not find any booking.", true},
		{"truncated", `{"type":"flight",`, true},
		{"empty", "   ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := GenerateJSON(context.Background(), NewMockGenerator(tt.reply), "sys", "user")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Unparsed() != tt.wantUnparsed {
				t.Errorf("Unparsed() = %v, want %v (data=%s)", res.Unparsed(), tt.wantUnparsed, res.Data)
			}
			if res.Raw != strings.TrimSpace(tt.reply) {
				t.Errorf("Raw = %q, want trimmed reply", res.Raw)
			}
		})
	}
}

func TestGenerateJSON_PropagatesUpstreamError(t *testing.T) {
	upstream := &UpstreamError{Provider: "mock", Err: errors.New("quota exceeded")}
	_, err := GenerateJSON(context.Background(), NewFailingGenerator(upstream), "sys", "user")
	if !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("expected ErrUpstreamGeneration, got %v", err)
	}
	if errors.Is(err, ErrUpstreamTimeout) {
		t.Errorf("quota failure must not match ErrUpstreamTimeout")
	}
}

func TestUpstreamError_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	err := upstreamError(ctx, "gemini", context.DeadlineExceeded)
	if !errors.Is(err, ErrUpstreamTimeout) || !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("deadline should match both sentinels, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cause chain lost")
	}
}

func TestMockGenerator_RepeatsLastReply(t *testing.T) {
	m := NewMockGenerator("one", "two")
	ctx := context.Background()
	for i, want := range []string{"one", "two", "two"} {
		got, _ := m.Generate(ctx, "", "")
		if got != want {
			t.Errorf("call %d = %q, want %q", i, got, want)
		}
	}
	if m.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", m.Calls())
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		gotBody = buf.String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello  "}}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("sk-test", "", 0.2)
	if err != nil {
		t.Fatal(err)
	}
	p.WithEndpoint(srv.URL)

	got, err := p.Generate(context.Background(), "be brief", "say hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want trimmed hello", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if !strings.Contains(gotBody, `"role":"system"`) || !strings.Contains(gotBody, "be brief") {
		t.Errorf("system message missing from body: %s", gotBody)
	}
}

func TestOpenAIProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	p, _ := NewOpenAIProvider("sk-test", "", 0)
	p.WithEndpoint(srv.URL)

	_, err := p.Generate(context.Background(), "", "x")
	if !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error should carry api message: %v", err)
	}
}
