package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// WebhookTransport posts replies and reactions as JSON to the messaging
// bridge. Without a URL it only logs what it would have sent.
type WebhookTransport struct {
	url string
	hc  *http.Client
	log logrus.FieldLogger
}

type webhookEvent struct {
	Type      string `json:"type"`
	ChatID    string `json:"chat_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Emoji     string `json:"emoji,omitempty"`
}

func NewWebhookTransport(url string, httpClient *http.Client, log logrus.FieldLogger) *WebhookTransport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookTransport{url: url, hc: httpClient, log: log.WithField("component", "bot_webhook")}
}

func (w *WebhookTransport) Reply(ctx context.Context, chatID, text string) error {
	return w.post(ctx, webhookEvent{Type: "reply", ChatID: chatID, Text: text})
}

func (w *WebhookTransport) React(ctx context.Context, msg Message, emoji string) error {
	return w.post(ctx, webhookEvent{Type: "react", ChatID: msg.ChatID, MessageID: msg.ID, Emoji: emoji})
}

func (w *WebhookTransport) post(ctx context.Context, ev webhookEvent) error {
	if w.url == "" {
		w.log.WithFields(logrus.Fields{"type": ev.Type, "chat_id": ev.ChatID, "text": ev.Text, "emoji": ev.Emoji}).Info("webhook disabled, not sent")
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("webhook marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("webhook new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.hc.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
