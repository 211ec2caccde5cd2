package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anthropicUpstream fakes the Messages endpoint and captures the last body.
func anthropicUpstream(t *testing.T, status int, header http.Header, reply any) (*AnthropicProvider, *map[string]any) {
	t.Helper()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)
	return p, &got
}

func anthropicFailure(kind string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
}

func TestAnthropicProvider_TutorReply(t *testing.T) {
	p, body := anthropicUpstream(t, http.StatusOK, nil, map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": "end_turn",
		"content": []map[string]any{
			{"type": "text", "text": "Try completing "},
			{"type": "text", "text": "the square."},
		},
		"usage": map[string]any{"input_tokens": 40, "output_tokens": 12},
	})

	resp, err := p.Generate(context.Background(), Request{
		System:      "You are a friendly tutor.",
		MaxTokens:   4000,
		Temperature: 0.7,
		Messages: []Message{
			{Role: RoleUser, Content: "How do I solve x^2+6x+5=0?"},
			{Role: RoleAssistant, Content: "Have you tried factorising?"},
			{Role: RoleUser, Content: "Yes, I'm stuck."},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Try completing the square.", resp.Content)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 12, TotalTokens: 52}, resp.Usage)
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)

	sent := *body
	assert.Equal(t, "claude-haiku-4-5-20251001", sent["model"])
	assert.EqualValues(t, 4000, sent["max_tokens"])
	assert.InDelta(t, 0.7, sent["temperature"], 1e-9)
	assert.Len(t, sent["messages"], 3)
	system := sent["system"].([]any)
	assert.Equal(t, "You are a friendly tutor.", system[0].(map[string]any)["text"])
}

func TestAnthropicProvider_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   string
		check  func(t *testing.T, err error)
	}{
		{"rate limit carries retry-after", http.StatusTooManyRequests, "rate_limit_error", func(t *testing.T, err error) {
			var rl *ErrRateLimit
			require.ErrorAs(t, err, &rl)
			assert.Equal(t, 7*time.Second, rl.RetryAfter)
		}},
		{"overloaded", http.StatusServiceUnavailable, "overloaded_error", func(t *testing.T, err error) {
			var un *ErrProviderUnavailable
			assert.ErrorAs(t, err, &un)
		}},
		{"bad image", http.StatusBadRequest, "invalid_request_error", func(t *testing.T, err error) {
			var bad *ErrBadRequest
			require.ErrorAs(t, err, &bad)
			assert.Equal(t, http.StatusBadRequest, bad.Status)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := anthropicUpstream(t, tt.status, http.Header{"Retry-After": {"7"}}, anthropicFailure(tt.kind))
			_, err := p.Generate(context.Background(), Request{
				MaxTokens: 100,
				Messages:  []Message{{Role: RoleUser, Content: "hi"}},
			})
			tt.check(t, err)
		})
	}
}

func TestAnthropicProvider_EmptyConversationRejected(t *testing.T) {
	p := &AnthropicProvider{model: "claude-haiku-4-5-20251001"}
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "  "}}})
	var bad *ErrBadRequest
	assert.ErrorAs(t, err, &bad)
}

func TestAnthropicMessages_FoldsTurnsAndLeadsWithImages(t *testing.T) {
	msgs := anthropicMessages([]Message{
		{Role: RoleUser, Content: "what is this?", Image: "data:image/png;base64,aGVsbG8="},
		{Role: RoleUser, Content: "it's from my homework"},
		{Role: RoleAssistant, Content: "A parabola."},
		{Role: RoleAssistant, Content: ""},
		{Role: RoleUser, Content: "", Image: "not-a-data-url"},
	})

	require.Len(t, msgs, 2, "turn with only an unusable image is dropped")
	first := msgs[0].Content
	require.Len(t, first, 2)
	assert.NotNil(t, first[0].OfImage)
	require.NotNil(t, first[1].OfText)
	assert.Equal(t, "what is this?\n\nit's from my homework", first[1].OfText.Text)

	require.Len(t, msgs[1].Content, 1)
	assert.Equal(t, "A parabola.", msgs[1].Content[0].OfText.Text)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "claude-3-opus-latest", resolveModel("claude-3-opus-latest", anthropicModels))
}
