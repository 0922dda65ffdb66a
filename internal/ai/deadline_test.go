package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"roamgenie/internal/config"
)

func TestWithTimeout_SlowGenerator(t *testing.T) {
	slow := NewMockGenerator()
	slow.GenerateFn = func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	g := WithTimeout(slow, "gemini", 20*time.Millisecond)

	start := time.Now()
	_, err := g.Generate(context.Background(), "sys", "user")
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want ErrUpstreamTimeout", err)
	}
	if !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("err = %v, want ErrUpstreamGeneration too", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("call took %s, deadline not applied", elapsed)
	}
}

func TestWithTimeout_PassesThrough(t *testing.T) {
	g := WithTimeout(NewMockGenerator("ok"), "gemini", time.Second)
	out, err := g.Generate(context.Background(), "sys", "user")
	if err != nil || out != "ok" {
		t.Fatalf("Generate = %q, %v", out, err)
	}

	cause := errors.New("quota exceeded")
	failing := WithTimeout(NewFailingGenerator(&UpstreamError{Provider: "gemini", Err: cause}), "gemini", time.Second)
	_, err = failing.Generate(context.Background(), "sys", "user")
	if !errors.Is(err, cause) || errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want the original non-timeout failure", err)
	}

	m := NewMockGenerator()
	if WithTimeout(m, "gemini", 0) != Generator(m) {
		t.Fatal("zero timeout should leave the generator unwrapped")
	}
}

func TestWithExtractTimeout_SlowExtractor(t *testing.T) {
	slow := NewMockGenerator()
	slow.ExtractTextFn = func(ctx context.Context, _ []byte, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	x := WithExtractTimeout(slow, "gemini", 20*time.Millisecond)
	if _, err := x.ExtractText(context.Background(), []byte{0x89}, "image/png"); !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want ErrUpstreamTimeout", err)
	}
}

func TestNew_UsesProviderKeyAndTimeout(t *testing.T) {
	var cfg config.Config
	cfg.AI.Provider = config.ProviderAnthropic
	cfg.AI.AnthropicKey = "sk-test"
	cfg.AI.OpenAIKey = "unused"
	cfg.AI.Timeout = 5 * time.Second

	p, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()
	d, ok := p.Generator.(*deadlineGenerator)
	if !ok {
		t.Fatalf("generator = %T, want a deadline-bound generator", p.Generator)
	}
	if _, ok := d.next.(*AnthropicProvider); !ok || d.timeout != 5*time.Second {
		t.Errorf("wrapped = %T with %s", d.next, d.timeout)
	}
	if p.Vision != nil {
		t.Errorf("vision = %T, want nil without a gemini key", p.Vision)
	}

	cfg.AI.Provider = config.ProviderOpenAI
	cfg.AI.OpenAIKey = ""
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("openai without its own key should fail")
	}
}
