package llm

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_ReplaysScriptThenRunsDry(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: "Think about the gradient.", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	ctx := WithRequestID(WithPurpose(context.Background(), "tutor-chat"), "req-1")

	resp, err := mock.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "slope?"}}})
	require.NoError(t, err)
	assert.Equal(t, "Think about the gradient.", resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	_, err = mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = mock.Generate(context.Background(), Request{})
	var un *ErrProviderUnavailable
	assert.ErrorAs(t, err, &un)

	assert.Equal(t, 3, mock.CallCount())
	last, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "unknown", last.Purpose)
}

func TestMockProvider_RecordsCallMetadata(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: "ok"})
	_, ok := mock.LastCall()
	assert.False(t, ok)

	ctx := WithRequestID(WithPurpose(context.Background(), "tutor-chat"), "req-9")
	_, err := mock.Generate(ctx, Request{System: "sys"})
	require.NoError(t, err)

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "sys", call.System)
	assert.Equal(t, "tutor-chat", call.Purpose)
	assert.Equal(t, "req-9", call.RequestID)
}

func TestEchoProvider(t *testing.T) {
	tests := []struct {
		name string
		msgs []Message
		want string
	}{
		{"quotes latest user turn", []Message{
			{Role: RoleUser, Content: "first"},
			{Role: RoleAssistant, Content: "reply"},
			{Role: RoleUser, Content: "second"},
		}, "You said: second"},
		{"folds consecutive user messages", []Message{
			{Role: RoleUser, Content: "a"},
			{Role: RoleUser, Content: "b"},
		}, "You said: a\n\nb"},
		{"notes images", []Message{
			{Role: RoleUser, Content: "this?", Image: "data:image/png;base64,aGVsbG8="},
		}, "You said: this? (with an image)"},
		{"no user turn", []Message{{Role: RoleAssistant, Content: "hi"}}, "You said nothing."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := NewEchoProvider().Generate(context.Background(), Request{Messages: tt.msgs})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Content)
		})
	}
}

func TestCallContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Empty(t, RequestIDFrom(ctx))

	ctx = WithPurpose(ctx, "tutor-chat")
	ctx = WithRequestID(ctx, "abc")
	assert.Equal(t, "tutor-chat", PurposeFrom(ctx))
	assert.Equal(t, "abc", RequestIDFrom(ctx))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"azure needs endpoint", Config{Provider: "azure", Azure: AzureConfig{APIKey: "k", Deployment: "gpt-4o"}}, "AZURE_OPENAI_ENDPOINT"},
		{"azure needs deployment", Config{Provider: "azure", Azure: AzureConfig{APIKey: "k", Endpoint: "https://x.openai.azure.com"}}, "DEPLOYMENT_NAME"},
		{"azure complete", Config{Provider: "azure", Azure: AzureConfig{APIKey: "k", Endpoint: "https://x.openai.azure.com", Deployment: "gpt-4o"}}, ""},
		{"openai needs key", Config{Provider: "openai"}, "OPENAI_API_KEY"},
		{"anthropic needs key", Config{Provider: "anthropic"}, "ANTHROPIC_API_KEY"},
		{"gemini needs key", Config{Provider: "gemini"}, "GEMINI_API_KEY"},
		{"openrouter needs key", Config{Provider: "openrouter"}, "OPENROUTER_API_KEY"},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk"}}, ""},
		{"mock needs nothing", Config{Provider: "mock"}, ""},
		{"unknown provider", Config{Provider: "bard"}, "unknown model provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewProvider_MockIsWrapped(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock", Retry: RetryConfig{MaxAttempts: 1}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "ping"}}})
	require.NoError(t, err)
	assert.Equal(t, "You said: ping", resp.Content)
}

func TestDecodeDataURL(t *testing.T) {
	mediaType, data, err := DecodeDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, "hello", string(data))

	for _, bad := range []string{
		"hello",
		"data:image/png,aGVsbG8=",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png;base64,!!!",
	} {
		_, _, err := DecodeDataURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestClassifyStatus(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "3")
	var rl *ErrRateLimit
	require.ErrorAs(t, classifyStatus(http.StatusTooManyRequests, parseRetryAfter(h), nil), &rl)
	assert.Equal(t, 3*time.Second, rl.RetryAfter)

	var bad *ErrBadRequest
	assert.ErrorAs(t, classifyStatus(http.StatusUnauthorized, 0, nil), &bad)

	var un *ErrProviderUnavailable
	assert.ErrorAs(t, classifyStatus(http.StatusBadGateway, 0, nil), &un)
	assert.ErrorAs(t, classifyStatus(0, 0, nil), &un)

	assert.Zero(t, parseRetryAfter(http.Header{"Retry-After": {"Wed, 21 Oct 2026 07:28:00 GMT"}}))
	assert.Zero(t, parseRetryAfter(nil))
}
