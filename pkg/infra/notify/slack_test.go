package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

func terminalRun(status types.RunStatus) *model.PublishRun {
	run := &model.PublishRun{
		ID:         "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Status:     status,
		Conclusion: types.ConclusionSuccess,
		HeadBranch: "main",
		Event:      types.EventKindPush,
		Repository: "acme/mylib",
		HeadSHA:    "4b825dc642cb6eb9a060e54bf8d69288fbee4904",
		RunURL:     "https://github.com/acme/mylib/actions/runs/987",
	}

	switch status {
	case types.RunStatusPublished:
		run.Artifact = &model.Artifact{
			FileName: "mylib-1.2.3.tar.gz",
			Name:     "mylib",
			Version:  "1.2.3",
		}
	case types.RunStatusFailed:
		run.FailedStep = types.StepBuild
		run.FailureKind = types.FailureBuild
		run.Error = "setup.py exited with status 1"
	case types.RunStatusSkipped:
		run.SkipReasons = []string{`head branch is "develop", not "main"`}
	}

	return run
}

func TestSlackNotifier_Published(t *testing.T) {
	var gotURL string
	var gotMsg *slack.WebhookMessage

	notifier := &SlackNotifier{
		webhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
		post: func(ctx context.Context, url string, msg *slack.WebhookMessage) error {
			gotURL = url
			gotMsg = msg
			return nil
		},
	}

	gt.NoError(t, notifier.Notify(context.Background(), terminalRun(types.RunStatusPublished)))

	gt.Value(t, gotURL).Equal("https://hooks.slack.com/services/T000/B000/XXX")
	gt.V(t, gotMsg).NotNil()
	gt.Number(t, len(gotMsg.Attachments)).Equal(1)

	att := gotMsg.Attachments[0]
	gt.Value(t, att.Color).Equal("good")
	gt.Value(t, att.Title).Equal("Published mylib 1.2.3")

	titles := make([]string, 0, len(att.Fields))
	for _, f := range att.Fields {
		titles = append(titles, f.Title)
	}
	gt.Equal(t, titles, []string{"Repository", "Commit", "Artifact", "Upstream run"})
	gt.Value(t, att.Fields[0].Value).Equal("acme/mylib")
	gt.Value(t, att.Fields[1].Value).Equal("4b825dc642cb")
}

func TestSlackNotifier_Failed(t *testing.T) {
	var gotMsg *slack.WebhookMessage

	notifier := &SlackNotifier{
		webhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
		post: func(ctx context.Context, url string, msg *slack.WebhookMessage) error {
			gotMsg = msg
			return nil
		},
	}

	gt.NoError(t, notifier.Notify(context.Background(), terminalRun(types.RunStatusFailed)))

	gt.V(t, gotMsg).NotNil()
	att := gotMsg.Attachments[0]
	gt.Value(t, att.Color).Equal("danger")
	gt.Value(t, att.Title).Equal("Publish failed")
	gt.String(t, att.Text).Contains("setup.py exited")

	var step, kind string
	for _, f := range att.Fields {
		switch f.Title {
		case "Step":
			step = f.Value
		case "Kind":
			kind = f.Value
		}
	}
	gt.Value(t, step).Equal("build")
	gt.Value(t, kind).Equal("build_failed")
}

func TestSlackNotifier_SkippedIsSilent(t *testing.T) {
	called := false
	notifier := &SlackNotifier{
		webhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
		post: func(ctx context.Context, url string, msg *slack.WebhookMessage) error {
			called = true
			return nil
		},
	}

	gt.NoError(t, notifier.Notify(context.Background(), terminalRun(types.RunStatusSkipped)))
	gt.False(t, called)
}

func TestSlackNotifier_PostError(t *testing.T) {
	notifier := &SlackNotifier{
		webhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
		post: func(ctx context.Context, url string, msg *slack.WebhookMessage) error {
			return errors.New("webhook gone")
		},
	}

	err := notifier.Notify(context.Background(), terminalRun(types.RunStatusFailed))
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to post Slack message")
}
