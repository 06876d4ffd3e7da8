package interfaces

import (
	"context"

	"github.com/m-mizutani/slipway/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// Publisher evaluates the gate for one trigger event and, when it opens,
// executes the publish pipeline. The returned run is always terminal:
// skipped, published or failed. The error is non-nil only when the
// pipeline failed; a skip is a normal outcome, not an error.
type Publisher interface {
	HandleEvent(ctx context.Context, ev *model.TriggerEvent) (*model.PublishRun, error)
}
