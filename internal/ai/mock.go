package ai

import (
	"context"
	"sync"
)

// MockCall records one invocation of MockGenerator.
type MockCall struct {
	SystemInstruction string
	UserPrompt        string
}

// MockGenerator is a test double for Generator and TextExtractor.
// Replies are consumed in order; the last reply repeats once the list runs out.
type MockGenerator struct {
	GenerateFn    func(ctx context.Context, systemInstruction, userPrompt string) (string, error)
	ExtractTextFn func(ctx context.Context, image []byte, mimeType string) (string, error)

	mu      sync.Mutex
	replies []string
	err     error
	calls   []MockCall
}

// NewMockGenerator returns a mock that answers with the given replies in order.
func NewMockGenerator(replies ...string) *MockGenerator {
	return &MockGenerator{replies: replies}
}

// NewFailingGenerator returns a mock whose every call fails with err.
func NewFailingGenerator(err error) *MockGenerator {
	return &MockGenerator{err: err}
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	m.mu.Lock()
	idx := len(m.calls)
	m.calls = append(m.calls, MockCall{SystemInstruction: systemInstruction, UserPrompt: userPrompt})
	fn, err := m.GenerateFn, m.err
	var reply string
	if len(m.replies) > 0 {
		if idx >= len(m.replies) {
			idx = len(m.replies) - 1
		}
		reply = m.replies[idx]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, systemInstruction, userPrompt)
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

// ExtractText implements TextExtractor.
func (m *MockGenerator) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if m.ExtractTextFn != nil {
		return m.ExtractTextFn(ctx, image, mimeType)
	}
	return "", nil
}

// Calls returns how many times Generate was invoked.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Call returns the i-th recorded invocation.
func (m *MockGenerator) Call(i int) MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}
