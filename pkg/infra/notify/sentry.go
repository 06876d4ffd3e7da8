package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// SentryNotifier forwards failed runs to Sentry. Published and skipped runs
// are normal operation and are not captured.
type SentryNotifier struct{}

// NewSentry initializes the Sentry SDK and returns a notifier for pipeline
// failures.
func NewSentry(dsn string) (*SentryNotifier, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          "slipway@" + types.Version,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Sentry")
	}

	return &SentryNotifier{}, nil
}

// Notify captures one event per failed run, tagged with step and kind.
func (x *SentryNotifier) Notify(_ context.Context, run *model.PublishRun) error {
	if run.Status != types.RunStatusFailed {
		return nil
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("failed_step", run.FailedStep.String())
		scope.SetTag("failure_kind", run.FailureKind.String())
		scope.SetTag("repository", run.Repository.String())
		scope.SetExtra("run_id", run.ID.String())
		scope.SetExtra("head_sha", run.HeadSHA.String())
		sentry.CaptureMessage(fmt.Sprintf("publish failed at %s: %s", run.FailedStep, run.Error))
	})

	return nil
}

// Flush waits for buffered events to reach Sentry, bounded by timeout.
// Call before process exit.
func (x *SentryNotifier) Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
