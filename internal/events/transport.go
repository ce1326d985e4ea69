package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// SidecarTransport publishes events over HTTP to a pub/sub sidecar
// (POST {base}/v1.0/publish/{pubsub}/{topic}).
type SidecarTransport struct {
	baseURL string
	pubsub  string
	client  *http.Client
}

// NewSidecarTransport creates a transport for the given sidecar base URL.
func NewSidecarTransport(baseURL, pubsub string) *SidecarTransport {
	return &SidecarTransport{
		baseURL: baseURL,
		pubsub:  pubsub,
		client:  &http.Client{},
	}
}

// Publish posts the event as JSON to the sidecar.
func (t *SidecarTransport) Publish(ctx context.Context, topic string, event TaskEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	url := fmt.Sprintf("%s/v1.0/publish/%s/%s", t.baseURL, t.pubsub, topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish to sidecar: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sidecar returned status %d", resp.StatusCode)
	}
	return nil
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, topic string, event TaskEvent) error

// Publish calls f.
func (f TransportFunc) Publish(ctx context.Context, topic string, event TaskEvent) error {
	return f(ctx, topic, event)
}
