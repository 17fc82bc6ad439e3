package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WebhookTransport posts each message as JSON to a relay such as a hosted
// script endpoint. Any non-2xx answer is a failure.
type WebhookTransport struct {
	endpoint string
	client   *http.Client
}

type webhookPayload struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	SenderName  string `json:"senderName"`
	SenderEmail string `json:"senderEmail"`
}

func NewWebhookTransport(endpoint string, client *http.Client) *WebhookTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookTransport{endpoint: endpoint, client: client}
}

func (t *WebhookTransport) Name() string { return "webhook" }

func (t *WebhookTransport) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(webhookPayload{
		To:          msg.To,
		Subject:     msg.Subject,
		Body:        msg.Body,
		SenderName:  msg.FromName,
		SenderEmail: msg.FromEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
