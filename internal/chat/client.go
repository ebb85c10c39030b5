package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxReplyBytes ограничивает размер ответа вебхука.
const maxReplyBytes = 1 << 20

var (
	ErrTimeout       = errors.New("chat webhook timeout")
	ErrNotConfigured = errors.New("chat webhook is not configured")
	ErrEmptyReply    = errors.New("chat webhook returned no text")
)

// Request: сообщение пользователя для чат-бота.
type Request struct {
	Action    string
	SessionID string
	Input     string
}

type Client interface {
	Ask(ctx context.Context, req Request) (string, []byte, error)
}

// WebhookClient пересылает сообщения во внешний вебхук чат-бота.
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

type webhookPayload struct {
	SessionID string `json:"sessionId"`
	ChatInput string `json:"chatInput"`
}

// NewWebhookClient создает клиент вебхука с таймаутом на весь запрос.
func NewWebhookClient(webhookURL string, timeout time.Duration) *WebhookClient {
	return &WebhookClient{
		webhookURL: strings.TrimSpace(webhookURL),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ask отправляет сообщение и возвращает текст ответа без markdown и сырой ответ вебхука.
func (c *WebhookClient) Ask(ctx context.Context, req Request) (string, []byte, error) {
	if c.webhookURL == "" {
		return "", nil, ErrNotConfigured
	}

	endpoint, err := c.endpoint(req.Action)
	if err != nil {
		return "", nil, err
	}

	payload, err := json.Marshal(webhookPayload{SessionID: req.SessionID, ChatInput: req.Input})
	if err != nil {
		return "", nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		if isTimeout(err) {
			return "", nil, ErrTimeout
		}
		return "", nil, fmt.Errorf("chat webhook request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxReplyBytes))
	if err != nil {
		if isTimeout(err) {
			return "", nil, ErrTimeout
		}
		return "", nil, fmt.Errorf("read chat webhook response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", body, fmt.Errorf("chat webhook status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	text, ok := ParseReply(body)
	if !ok {
		return "", body, ErrEmptyReply
	}

	return StripMarkdown(text), body, nil
}

func (c *WebhookClient) endpoint(action string) (string, error) {
	parsed, err := url.Parse(c.webhookURL)
	if err != nil {
		return "", fmt.Errorf("parse chat webhook url: %w", err)
	}

	if action = strings.TrimSpace(action); action != "" {
		query := parsed.Query()
		query.Set("action", action)
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
