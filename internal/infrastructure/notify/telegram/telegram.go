package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/leafy-market/leafy-backend/internal/observability"
)

const defaultTimeout = 5 * time.Second

// Client pushes order summaries to a Telegram chat via the bot API. It
// implements the order notifier port; callers treat every error as
// non-fatal.
type Client struct {
	httpClient *http.Client
	botToken   string
	chatID     string
	baseURL    string
	log        observability.Logger
}

type Option func(*Client)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func New(botToken, chatID string, logger observability.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = observability.NopLogger()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		botToken:   botToken,
		chatID:     chatID,
		baseURL:    "https://api.telegram.org",
		log:        logger.With(observability.F("component", "telegram_notifier")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Notify posts the text to the configured chat. The request is bounded by the
// context and the client timeout, whichever fires first.
func (c *Client) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("telegram: marshal: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}

	c.log.Debug("telegram_message_sent")
	return nil
}

// Nop is a notifier that does nothing, used when no bot token is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
