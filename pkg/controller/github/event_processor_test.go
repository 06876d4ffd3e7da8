package github_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	githubcontroller "github.com/m-mizutani/slipway/pkg/controller/github"
	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	handleEventFunc func(ctx context.Context, ev *model.TriggerEvent) (*model.PublishRun, error)
	calls           []*model.TriggerEvent
}

func (m *MockPublisher) HandleEvent(ctx context.Context, ev *model.TriggerEvent) (*model.PublishRun, error) {
	m.calls = append(m.calls, ev)
	if m.handleEventFunc != nil {
		return m.handleEventFunc(ctx, ev)
	}
	return nil, errors.New("mock not configured")
}

// completedWorkflowRunEvent builds a typical successful main-branch push run
func completedWorkflowRunEvent() *github.WorkflowRunEvent {
	return &github.WorkflowRunEvent{
		Action: github.Ptr("completed"),
		WorkflowRun: &github.WorkflowRun{
			ID:         github.Ptr(int64(987)),
			HeadBranch: github.Ptr("main"),
			HeadSHA:    github.Ptr("4b825dc642cb6eb9a060e54bf8d69288fbee4904"),
			Event:      github.Ptr("push"),
			Conclusion: github.Ptr("success"),
			HTMLURL:    github.Ptr("https://github.com/acme/mylib/actions/runs/987"),
		},
		Workflow: &github.Workflow{
			Name: github.Ptr("CI"),
		},
		Repo: &github.Repository{
			FullName: github.Ptr("acme/mylib"),
		},
	}
}

func TestEventProcessor_ProcessWorkflowRun(t *testing.T) {
	ctx := context.Background()

	mockPub := &MockPublisher{
		handleEventFunc: func(ctx context.Context, ev *model.TriggerEvent) (*model.PublishRun, error) {
			run := model.NewPublishRun(ev)
			gt.NoError(t, run.MarkSkipped([]string{"test"}))
			return run, nil
		},
	}

	processor := githubcontroller.NewEventProcessor(mockPub)

	err := processor.ProcessEvent(ctx, "workflow_run", "delivery-1", completedWorkflowRunEvent())
	gt.NoError(t, err)

	gt.Number(t, len(mockPub.calls)).Equal(1)

	ev := mockPub.calls[0]
	gt.Value(t, ev.Repository).Equal(types.RepoID("acme/mylib"))
	gt.Value(t, ev.HeadBranch).Equal(types.BranchName("main"))
	gt.Value(t, ev.Event).Equal(types.EventKindPush)
	gt.Value(t, ev.Conclusion).Equal(types.ConclusionSuccess)
	gt.Value(t, ev.HeadSHA).Equal(types.CommitSHA("4b825dc642cb6eb9a060e54bf8d69288fbee4904"))
	gt.Value(t, ev.Workflow).Equal("CI")
	gt.Value(t, ev.RunID).Equal(int64(987))
	gt.Value(t, ev.Delivery).Equal(types.DeliveryID("delivery-1"))
}

func TestEventProcessor_ProcessWorkflowRun_PublisherError(t *testing.T) {
	ctx := context.Background()

	mockPub := &MockPublisher{
		handleEventFunc: func(ctx context.Context, ev *model.TriggerEvent) (*model.PublishRun, error) {
			return nil, errors.New("pipeline exploded")
		},
	}

	processor := githubcontroller.NewEventProcessor(mockPub)

	err := processor.ProcessEvent(ctx, "workflow_run", "delivery-2", completedWorkflowRunEvent())
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("pipeline exploded")

	gt.Number(t, len(mockPub.calls)).Equal(1)
}

func TestEventProcessor_NonCompletedAction(t *testing.T) {
	ctx := context.Background()

	mockPub := &MockPublisher{}
	processor := githubcontroller.NewEventProcessor(mockPub)

	event := completedWorkflowRunEvent()
	event.Action = github.Ptr("requested")

	err := processor.ProcessEvent(ctx, "workflow_run", "delivery-3", event)
	gt.NoError(t, err)

	// Verify mock was not called
	gt.Number(t, len(mockPub.calls)).Equal(0)
}

func TestEventProcessor_UnsupportedEventType(t *testing.T) {
	ctx := context.Background()

	mockPub := &MockPublisher{}
	processor := githubcontroller.NewEventProcessor(mockPub)

	err := processor.ProcessEvent(ctx, "push", "delivery-4", nil)
	gt.NoError(t, err)

	gt.Number(t, len(mockPub.calls)).Equal(0)
}

func TestEventProcessor_IncompleteEvent(t *testing.T) {
	ctx := context.Background()

	mockPub := &MockPublisher{}
	processor := githubcontroller.NewEventProcessor(mockPub)

	// A completed run without branch information cannot be gated
	event := completedWorkflowRunEvent()
	event.WorkflowRun.HeadBranch = nil

	err := processor.ProcessEvent(ctx, "workflow_run", "delivery-5", event)
	gt.Error(t, err)

	gt.Number(t, len(mockPub.calls)).Equal(0)
}

func TestTriggerEventFromWorkflowRun_MissingRun(t *testing.T) {
	event := &github.WorkflowRunEvent{
		Action: github.Ptr("completed"),
		Repo: &github.Repository{
			FullName: github.Ptr("acme/mylib"),
		},
	}

	_, err := githubcontroller.TriggerEventFromWorkflowRun(event)
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("missing workflow run")
}
