package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned result for the MockProvider.
type MockResponse struct {
	Text string
	Err  error
}

// MockCall records one Generate invocation.
type MockCall struct {
	Model   string
	Request Request
}

// MockProvider is a deterministic Provider for testing. It returns canned
// responses in FIFO order and records every call.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse

	Calls  []MockCall
	Models []string

	// ListErr makes ListModels fail, exercising the hard-coded fallback.
	ListErr error
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response, or ErrUnavailable when the
// queue is empty.
func (m *MockProvider) Generate(_ context.Context, model string, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Model: model, Request: req})

	if len(m.responses) == 0 {
		return "", &ErrUnavailable{}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}

func (m *MockProvider) ListModels(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]string(nil), m.Models...), nil
}

func (m *MockProvider) Name() string { return "mock" }

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
