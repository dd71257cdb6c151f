package llm

import "context"

// MockClient is a ModelClient for tests. When GenerateFunc is nil it replies
// with a fixed string. Calls counts every invocation.
type MockClient struct {
	GenerateFunc func(ctx context.Context, messages []Message, opts Options) (string, error)
	Calls        int
}

// Generate implements ModelClient.
func (m *MockClient) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	m.Calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, opts)
	}
	return "mock reply", nil
}
