package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/learnhub/internal/logger"
)

// ChatPath is the proxy route the overlay posts to.
const ChatPath = "/api/tutor-chat"

// Role of a chat message as the proxy understands it.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn. Image is a data URL and only set on user turns.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

type chatRequest struct {
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Content string `json:"content"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Sender sends a conversation and returns the assistant's reply.
type Sender interface {
	Send(ctx context.Context, history []Message) (string, error)
}

// Client talks to the chat proxy.
type Client struct {
	url  string
	http *http.Client
	log  *logger.Logger
}

var _ Sender = (*Client)(nil)

// NewClient creates a proxy client for baseURL. timeout <= 0 means no
// client-side limit.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		url:  strings.TrimRight(baseURL, "/") + ChatPath,
		http: &http.Client{Timeout: timeout},
		log:  log.With("component", "chat"),
	}
}

func (c *Client) Send(ctx context.Context, history []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Messages: history})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var out chatResponse
	_ = json.Unmarshal(raw, &out)

	c.log.Debug("chat reply", "status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds(), "messages", len(history))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if out.Error != "" {
			return "", fmt.Errorf("chat proxy: %d %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("chat proxy: status %d", resp.StatusCode)
	}
	return out.Content, nil
}
