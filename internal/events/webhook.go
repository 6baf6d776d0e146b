package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/platform/httpclient"
	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that WebhookNotifier implements ports.Subscriber.
var _ ports.Subscriber = (*WebhookNotifier)(nil)

// eventEnvelope is the wire shape POSTed to webhook endpoints.
type eventEnvelope struct {
	Event      string       `json:"event"`
	OccurredAt time.Time    `json:"occurred_at"`
	ActorID    string       `json:"actor_id"`
	Payload    domain.Event `json:"payload"`
}

// WebhookNotifier delivers committed events to an external endpoint as
// JSON envelopes. Delivery runs through the instrumented HTTP client, so
// retries, circuit breaking, and tracing come with it; a delivery that
// still fails is reported to the dispatcher, logged, and dropped.
type WebhookNotifier struct {
	client *httpclient.Client
	path   string
}

// NewWebhookNotifier creates a notifier posting to path on the client's
// base URL.
func NewWebhookNotifier(client *httpclient.Client, path string) *WebhookNotifier {
	if path == "" {
		path = "/events"
	}
	return &WebhookNotifier{client: client, path: path}
}

// Name implements ports.Subscriber.
func (n *WebhookNotifier) Name() string { return "webhook-notifier" }

// Handle implements ports.Subscriber.
func (n *WebhookNotifier) Handle(ctx context.Context, evt domain.Event) error {
	body, err := json.Marshal(eventEnvelope{
		Event:      evt.EventName(),
		OccurredAt: evt.OccurredAt(),
		ActorID:    evt.Actor(),
		Payload:    evt,
	})
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", evt.EventName(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.client.BaseURL()+n.path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(ctx, req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("delivering %s: %w", evt.EventName(), err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("delivering %s: endpoint returned %d", evt.EventName(), resp.StatusCode)
	}
	return nil
}
