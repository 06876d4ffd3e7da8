package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/usecase"
)

func TestWebhookUseCase_ProcessEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   *model.WebhookEvent
		wantErr bool
	}{
		{
			name: "Process completed workflow run event",
			event: &model.WebhookEvent{
				ID:         "test-delivery-1",
				Type:       model.EventTypeWorkflowRun,
				Action:     "completed",
				Repository: "test/repo",
				Sender:     "testuser",
				ReceivedAt: time.Now(),
				RawPayload: []byte(`{"action":"completed"}`),
			},
			wantErr: false,
		},
		{
			name: "Process in-progress workflow run event",
			event: &model.WebhookEvent{
				ID:         "test-delivery-2",
				Type:       model.EventTypeWorkflowRun,
				Action:     "in_progress",
				Repository: "test/repo",
				Sender:     "testuser",
				ReceivedAt: time.Now(),
				RawPayload: []byte(`{"action":"in_progress"}`),
			},
			wantErr: false, // Should not error, just log
		},
		{
			name: "Process ping event",
			event: &model.WebhookEvent{
				ID:         "test-delivery-3",
				Type:       model.EventTypePing,
				Repository: "test/repo",
				ReceivedAt: time.Now(),
				RawPayload: []byte(`{"zen":"Keep it logically awesome."}`),
			},
			wantErr: false,
		},
		{
			name: "Process unknown event type",
			event: &model.WebhookEvent{
				ID:         "test-delivery-4",
				Type:       model.EventTypeUnknown,
				Action:     "unknown",
				Repository: "test/repo",
				Sender:     "testuser",
				ReceivedAt: time.Now(),
				RawPayload: []byte(`{}`),
			},
			wantErr: false, // Should not error, just log
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewWebhook()
			ctx := context.Background()

			err := uc.ProcessEvent(ctx, tt.event)
			if (err != nil) != tt.wantErr {
				t.Errorf("ProcessEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
