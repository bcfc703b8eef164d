package llm

import (
	"context"
	"sync"
)

// Mock is a scripted Provider for tests. Each call returns the next entry
// of Responses (the last one repeats) or Err when set.
type Mock struct {
	mu        sync.Mutex
	Calls     []CompletionRequest
	Responses []string
	Err       error
}

func NewMock(responses ...string) *Mock {
	return &Mock{Responses: responses}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	content := ""
	if n := len(m.Responses); n > 0 {
		content = m.Responses[min(len(m.Calls)-1, n-1)]
	}
	return &CompletionResponse{Content: content, Model: "mock", FinishReason: "stop"}, nil
}

func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
