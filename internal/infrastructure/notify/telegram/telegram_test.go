package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify(t *testing.T) {
	var got sendMessageRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("bot-token", "chat-42", nil, WithBaseURL(srv.URL))
	require.NoError(t, c.Notify(context.Background(), "hello"))

	assert.Equal(t, "/botbot-token/sendMessage", path)
	assert.Equal(t, "chat-42", got.ChatID)
	assert.Equal(t, "hello", got.Text)
}

func TestNotifyNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("t", "c", nil, WithBaseURL(srv.URL))
	assert.Error(t, c.Notify(context.Background(), "hello"))
}

func TestNotifyRespectsContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New("t", "c", nil, WithBaseURL(srv.URL))
	assert.Error(t, c.Notify(ctx, "hello"))
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, Nop{}.Notify(context.Background(), "anything"))
}
