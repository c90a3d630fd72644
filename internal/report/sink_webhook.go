package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// webhookBackoffs are the waits before each retry.
var webhookBackoffs = []time.Duration{100 * time.Millisecond, 300 * time.Millisecond}

// WebhookSink POSTs report events to an HTTP endpoint.
type WebhookSink struct {
	url     string
	headers map[string]string
	client  *http.Client
}

func NewWebhookSink(url string, headers map[string]string, timeout time.Duration) (*WebhookSink, error) {
	if url == "" {
		return nil, errors.New("webhook url is empty")
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	hdr := make(map[string]string, len(headers))
	for k, v := range headers {
		hdr[k] = v
	}
	return &WebhookSink{url: url, headers: hdr, client: &http.Client{Timeout: timeout}}, nil
}

func (s *WebhookSink) Name() string { return "webhook:" + s.url }

// Deliver posts ev, retrying twice. Any non-2xx status is an error.
func (s *WebhookSink) Deliver(ctx context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= len(webhookBackoffs); attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = s.post(ctx, payload); lastErr == nil {
			return nil
		}
		if attempt < len(webhookBackoffs) {
			timer := time.NewTimer(webhookBackoffs[attempt])
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (s *WebhookSink) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d body=%q", resp.StatusCode, truncateBody(body))
	}
	return nil
}

func (s *WebhookSink) Close(context.Context) error { return nil }

func truncateBody(b []byte) string {
	const limit = 200
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
