package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Provider is the core abstraction for chat-completion models.
type Provider interface {
	// Generate sends the conversation to the model and returns its reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// MaxTokens caps the completion length.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the provider default.
	Temperature float64
}

// Message is a single turn in the conversation.
type Message struct {
	Role    Role
	Content string

	// Image is an optional data URL (data:image/png;base64,...) sent
	// alongside the text on user turns.
	Image string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a role a conversation may carry.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Response holds the model's output.
type Response struct {
	// Content is the reply text. It may be empty.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// DecodeDataURL splits a base64 image data URL into its media type and raw
// bytes.
func DecodeDataURL(dataURL string) (mediaType string, data []byte, err error) {
	mediaType, payload, ok := splitDataURL(dataURL)
	if !ok {
		return "", nil, fmt.Errorf("not a base64 data URL")
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mediaType, data, nil
}

// splitDataURL returns the media type and still-encoded payload of a base64
// image data URL.
func splitDataURL(dataURL string) (mediaType, payload string, ok bool) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", "", false
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", false
	}
	mediaType, ok = strings.CutSuffix(meta, ";base64")
	return mediaType, payload, ok
}
