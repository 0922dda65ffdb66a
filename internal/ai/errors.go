package ai

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUpstreamGeneration matches every failure of the generative backend call itself.
	ErrUpstreamGeneration = errors.New("upstream generation failed")
	// ErrUpstreamTimeout matches backend failures caused by the caller's deadline.
	ErrUpstreamTimeout = errors.New("upstream generation timed out")
)

// UpstreamError wraps a failed backend call with the provider that produced it.
type UpstreamError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is lets errors.Is match the taxonomy sentinels without losing the cause chain.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstreamGeneration:
		return true
	case ErrUpstreamTimeout:
		return e.Timeout
	}
	return false
}

// upstreamError classifies err for provider. Deadline and cancellation map to a timeout.
func upstreamError(ctx context.Context, provider string, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
	return &UpstreamError{Provider: provider, Timeout: timeout, Err: err}
}
