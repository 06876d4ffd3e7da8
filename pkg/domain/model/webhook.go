package model

import (
	"time"

	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypeWorkflowRun WebhookEventType = "workflow_run"
	EventTypePing        WebhookEventType = "ping"
	EventTypeUnknown     WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         types.DeliveryID // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., completed, requested)
	Repository string           // Repository name
	Sender     string           // Sender username
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsSupportedEvent checks if the event can reach the publisher. Only a
// workflow_run that has completed carries a conclusion to gate on.
func (e *WebhookEvent) IsSupportedEvent() bool {
	switch e.Type {
	case EventTypeWorkflowRun:
		return e.Action == "completed"
	default:
		return false
	}
}
