package cli

import (
	"context"
	"os"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	githubctrl "github.com/m-mizutani/slipway/pkg/controller/github"
	"github.com/m-mizutani/slipway/pkg/domain/types"
	"github.com/m-mizutani/slipway/pkg/infra/notify"
	"github.com/m-mizutani/slipway/pkg/usecase"
)

func cmdRun() *cli.Command {
	var (
		pipeCfg   pipelineConfig
		eventPath string
	)

	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:        "event",
			Usage:       "Path to a workflow_run event payload JSON file",
			Required:    true,
			Destination: &eventPath,
			Sources:     cli.EnvVars("GITHUB_EVENT_PATH"),
		},
	}, pipeCfg.flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Evaluate one workflow_run event and publish when the gate opens",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			body, err := os.ReadFile(eventPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read event payload", goerr.V("path", eventPath))
			}

			payload, err := github.ParseWebHook("workflow_run", body)
			if err != nil {
				return goerr.Wrap(err, "failed to parse event payload")
			}
			wrEvent, ok := payload.(*github.WorkflowRunEvent)
			if !ok {
				return goerr.New("event payload is not a workflow_run event")
			}

			ev, err := githubctrl.TriggerEventFromWorkflowRun(wrEvent)
			if err != nil {
				return err
			}
			ev.Delivery = types.DeliveryID(uuid.NewString())

			console := notify.NewConsole()
			publisher, cleanup, err := pipeCfg.buildPublisher(ctx, usecase.WithNotifier(console))
			if err != nil {
				return err
			}
			defer cleanup()

			// A failed pipeline propagates its error so the process exits
			// non-zero; a skip is a normal exit.
			run, err := publisher.HandleEvent(ctx, ev)
			if err != nil {
				return err
			}

			if run.Status == types.RunStatusSkipped {
				if err := console.Notify(ctx, run); err != nil {
					logger.Warn("Failed to print skip summary", "error", err)
				}
			}

			return nil
		},
	}
}
