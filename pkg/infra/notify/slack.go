package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// SlackNotifier posts run outcomes to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	post       func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// NewSlack creates a Slack notifier for the incoming webhook URL.
func NewSlack(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		post:       slack.PostWebhookContext,
	}
}

// Notify posts one message describing the terminal run. Skipped runs are
// not message-worthy and are ignored when they arrive here.
func (x *SlackNotifier) Notify(ctx context.Context, run *model.PublishRun) error {
	msg := buildSlackMessage(run)
	if msg == nil {
		return nil
	}

	if err := x.post(ctx, x.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("run_id", run.ID))
	}
	return nil
}

func buildSlackMessage(run *model.PublishRun) *slack.WebhookMessage {
	fields := []slack.AttachmentField{
		{Title: "Repository", Value: run.Repository.String(), Short: true},
		{Title: "Commit", Value: short(run.HeadSHA), Short: true},
	}

	switch run.Status {
	case types.RunStatusPublished:
		title := "Published"
		if run.Artifact != nil {
			title = fmt.Sprintf("Published %s %s", run.Artifact.Name, run.Artifact.Version)
			fields = append(fields, slack.AttachmentField{
				Title: "Artifact", Value: run.Artifact.FileName, Short: true,
			})
		}
		if run.RunURL != "" {
			fields = append(fields, slack.AttachmentField{
				Title: "Upstream run", Value: run.RunURL, Short: false,
			})
		}
		return &slack.WebhookMessage{
			Attachments: []slack.Attachment{{
				Color:  "good",
				Title:  title,
				Fields: fields,
			}},
		}

	case types.RunStatusFailed:
		fields = append(fields,
			slack.AttachmentField{Title: "Step", Value: run.FailedStep.String(), Short: true},
			slack.AttachmentField{Title: "Kind", Value: run.FailureKind.String(), Short: true},
		)
		return &slack.WebhookMessage{
			Attachments: []slack.Attachment{{
				Color:  "danger",
				Title:  "Publish failed",
				Text:   run.Error,
				Fields: fields,
			}},
		}

	default:
		return nil
	}
}
