package notify

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultWebhookTimeout = 10 * time.Second

type webhookPayload struct {
	Content string `json:"content"`
}

// WebhookChannel posts notifications to a Discord webhook.
type WebhookChannel struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
}

var _ Channel = (*WebhookChannel)(nil)

func NewWebhookChannel(url string, httpClient *http.Client, timeout time.Duration) *WebhookChannel {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &WebhookChannel{
		url:        url,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (c *WebhookChannel) Name() string {
	return ChannelTypeDiscord
}

func (c *WebhookChannel) Deliver(ctx context.Context, n Notification) error {
	body, err := json.Marshal(webhookPayload{Content: FormatWebhookContent(n)})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Channel: c.Name(), Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Channel: c.Name(), Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &DeliveryError{Channel: c.Name(), StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	return nil
}

// FormatWebhookContent renders the Discord message body: the bold title and,
// when there is a link, a markdown link line.
func FormatWebhookContent(n Notification) string {
	content := fmt.Sprintf("**%s**", n.Title)
	if n.LinkURL != "" {
		content += fmt.Sprintf("\n[%s](%s)", cmp.Or(n.LinkText, "Link"), n.LinkURL)
	}
	return content
}
