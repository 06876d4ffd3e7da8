package github

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/slipway/pkg/domain/interfaces"
	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// EventProcessor routes parsed GitHub webhook payloads to the publisher
type EventProcessor struct {
	publisher interfaces.Publisher
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(publisher interfaces.Publisher) *EventProcessor {
	return &EventProcessor{
		publisher: publisher,
	}
}

// ProcessEvent processes a GitHub webhook event
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, delivery types.DeliveryID, payload interface{}) error {
	logger := ctxlog.From(ctx)

	switch eventType {
	case "workflow_run":
		return p.processWorkflowRun(ctx, delivery, payload)
	default:
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		return nil
	}
}

// processWorkflowRun hands a completed workflow run to the publisher. Other
// actions (requested, in_progress) carry no conclusion to gate on.
func (p *EventProcessor) processWorkflowRun(ctx context.Context, delivery types.DeliveryID, payload interface{}) error {
	logger := ctxlog.From(ctx)

	wrEvent, ok := payload.(*github.WorkflowRunEvent)
	if !ok {
		logger.Warn("Invalid workflow_run event payload")
		return nil
	}

	if wrEvent.GetAction() != "completed" {
		logger.Info("Ignoring workflow_run event with non-completed action",
			"action", wrEvent.GetAction(),
		)
		return nil
	}

	ev, err := TriggerEventFromWorkflowRun(wrEvent)
	if err != nil {
		logger.Error("Failed to extract trigger event", "error", err)
		return err
	}
	ev.Delivery = delivery

	logger.Info("Processing workflow_run event",
		"repository", ev.Repository,
		"workflow", ev.Workflow,
		"conclusion", ev.Conclusion,
		"head_branch", ev.HeadBranch,
		"event", ev.Event,
	)

	run, err := p.publisher.HandleEvent(ctx, ev)
	if err != nil {
		if run != nil {
			logger.Error("Publish run failed", "run_id", run.ID, "status", run.Status, "error", err)
		} else {
			logger.Error("Failed to handle trigger event", "error", err)
		}
		return err
	}

	logger.Info("Publish run finished", "run_id", run.ID, "status", run.Status)
	return nil
}

// TriggerEventFromWorkflowRun extracts the gate inputs from a workflow_run
// event
func TriggerEventFromWorkflowRun(event *github.WorkflowRunEvent) (*model.TriggerEvent, error) {
	if event.GetRepo() == nil {
		return nil, goerr.New("missing repository information in workflow_run event")
	}

	run := event.GetWorkflowRun()
	if run == nil {
		return nil, goerr.New("missing workflow run information in workflow_run event")
	}

	// Use Get*() helper methods for concise and nil-safe field access
	ev := &model.TriggerEvent{
		Conclusion: types.Conclusion(run.GetConclusion()),
		HeadBranch: types.BranchName(run.GetHeadBranch()),
		Event:      types.EventKind(run.GetEvent()),
		Repository: types.RepoID(event.GetRepo().GetFullName()),
		HeadSHA:    types.CommitSHA(run.GetHeadSHA()),
		Workflow:   event.GetWorkflow().GetName(),
		RunID:      run.GetID(),
		RunURL:     run.GetHTMLURL(),
		ReceivedAt: time.Now(),
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}

	return ev, nil
}
