package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookClient posts a formatted summary message to a chat webhook.
type WebhookClient interface {
	Post(ctx context.Context, url, text string) error
}

// HTTPWebhookClient implements WebhookClient with a plain HTTP POST of
// {"text": ...}, the payload shape chat webhooks expect.
type HTTPWebhookClient struct {
	client *http.Client
}

// NewHTTPWebhookClient constructs an HTTPWebhookClient with a 10s timeout.
func NewHTTPWebhookClient() *HTTPWebhookClient {
	return &HTTPWebhookClient{client: &http.Client{Timeout: 10 * time.Second}}
}

// Post sends the message; any non-2xx response is a failure.
func (c *HTTPWebhookClient) Post(ctx context.Context, url, text string) error {
	payload, errMarshal := json.Marshal(map[string]string{"text": text})
	if errMarshal != nil {
		return fmt.Errorf("notify: marshal webhook payload: %w", errMarshal)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if errReq != nil {
		return fmt.Errorf("notify: build webhook request: %w", errReq)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := c.client.Do(req)
	if errDo != nil {
		return fmt.Errorf("notify: post webhook: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
