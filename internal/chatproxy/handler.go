package chatproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/learnhub/internal/llm"
)

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

type chatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

const invalidMessages = "Invalid messages format"

// PurposeTutorChat labels proxy calls in the usage log.
const PurposeTutorChat = "tutor-chat"

func (s *Server) tutorChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMessages})
		return
	}
	msgs, ok := parseMessages(req.Messages)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMessages})
		return
	}

	ctx := llm.WithPurpose(c.Request.Context(), PurposeTutorChat)
	ctx = llm.WithRequestID(ctx, c.GetString("request_id"))
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      SystemPrompt,
		Messages:    msgs,
		MaxTokens:   maxCompletionTokens,
		Temperature: temperature,
	})
	if err != nil {
		s.metrics.replies.WithLabelValues("error").Inc()
		s.log.Error("tutor chat failed", "request_id", c.GetString("request_id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get AI response",
			"details": err.Error(),
		})
		return
	}

	content := resp.Content
	if strings.TrimSpace(content) == "" {
		s.metrics.replies.WithLabelValues("empty").Inc()
		content = EmptyReply
	} else {
		s.metrics.replies.WithLabelValues("ok").Inc()
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

// parseMessages requires a JSON array of user/assistant turns. Turns before
// the first user message are dropped since some providers reject a
// conversation that opens with the assistant.
func parseMessages(raw json.RawMessage) ([]llm.Message, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var wire []wireMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, false
	}

	out := make([]llm.Message, 0, len(wire))
	for _, m := range wire {
		role := llm.Role(m.Role)
		if !role.Valid() {
			return nil, false
		}
		if len(out) == 0 && role != llm.RoleUser {
			continue
		}
		msg := llm.Message{Role: role, Content: m.Content}
		if role == llm.RoleUser && m.Image != "" {
			if _, _, err := llm.DecodeDataURL(m.Image); err != nil {
				return nil, false
			}
			msg.Image = m.Image
		}
		out = append(out, msg)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
