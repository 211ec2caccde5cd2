package llm

import (
	"context"
	"errors"
	"sync"
)

// MockResponse is one scripted reply. A non-nil Err is returned instead of
// a Response.
type MockResponse struct {
	Content string
	Usage   Usage
	Err     error
}

// MockCall is a request as the mock saw it, with the call metadata that
// travelled on its context.
type MockCall struct {
	Request
	Purpose   string
	RequestID string
}

// MockProvider replays scripted replies in order and records every call.
// Once the script runs out it reports the provider as unavailable.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	calls  []MockCall
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Request: req, Purpose: PurposeFrom(ctx), RequestID: RequestIDFrom(ctx)})
	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{Err: errors.New("mock script exhausted")}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent call, if any.
func (m *MockProvider) LastCall() (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return MockCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// EchoProvider backs the "mock" provider so the proxy runs without
// credentials. It quotes the latest user turn and notes an attached image.
type EchoProvider struct{}

func NewEchoProvider() EchoProvider { return EchoProvider{} }

func (EchoProvider) Generate(_ context.Context, req Request) (*Response, error) {
	turns := foldTurns(req.Messages)
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.role != RoleUser {
			continue
		}
		reply := "You said: " + t.text()
		if len(t.images) > 0 {
			reply += " (with an image)"
		}
		return &Response{Content: reply, Model: "mock", StopReason: "end"}, nil
	}
	return &Response{Content: "You said nothing.", Model: "mock", StopReason: "end"}, nil
}

func (EchoProvider) ModelID() string { return "mock" }
