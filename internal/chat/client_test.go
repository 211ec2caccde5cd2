package chat

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

func TestClientSend_PostsHistory(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ChatPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"content": "Try factorising."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, nil)
	history := []Message{
		{Role: RoleAssistant, Content: Greeting},
		{Role: RoleUser, Content: "help", Image: "data:image/png;base64,AAAA"},
	}
	reply, err := c.Send(context.Background(), history)

	require.NoError(t, err)
	assert.Equal(t, "Try factorising.", reply)
	assert.Equal(t, history, got.Messages)
}

func TestClientSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to get AI response", "details": "boom"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).Send(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "Failed to get AI response")
}

func TestClientSend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, nil).Send(context.Background(), nil)
	assert.Error(t, err)
}
