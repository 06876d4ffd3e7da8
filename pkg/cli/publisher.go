package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/slipway/pkg/cli/config"
	"github.com/m-mizutani/slipway/pkg/domain/interfaces"
	"github.com/m-mizutani/slipway/pkg/infra/firestore"
	"github.com/m-mizutani/slipway/pkg/infra/gcs"
	githubinfra "github.com/m-mizutani/slipway/pkg/infra/github"
	"github.com/m-mizutani/slipway/pkg/infra/memory"
	"github.com/m-mizutani/slipway/pkg/infra/notify"
	"github.com/m-mizutani/slipway/pkg/infra/python"
	"github.com/m-mizutani/slipway/pkg/infra/registry"
	"github.com/m-mizutani/slipway/pkg/usecase"
)

// pipelineConfig groups the flag sets every publishing command shares.
type pipelineConfig struct {
	gate      config.Gate
	github    config.GitHub
	python    config.Python
	registry  config.Registry
	firestore config.Firestore
	store     config.Store
	notify    config.Notify
	gemini    config.Gemini
}

func (x *pipelineConfig) flags() []cli.Flag {
	return x.assemble(x.github.Flags())
}

func (x *pipelineConfig) serveFlags() []cli.Flag {
	return x.assemble(x.github.ServeFlags())
}

func (x *pipelineConfig) assemble(githubFlags []cli.Flag) []cli.Flag {
	flags := githubFlags
	flags = append(flags, x.gate.Flags()...)
	flags = append(flags, x.python.Flags()...)
	flags = append(flags, x.registry.Flags()...)
	flags = append(flags, x.firestore.Flags()...)
	flags = append(flags, x.store.Flags()...)
	flags = append(flags, x.notify.Flags()...)
	flags = append(flags, x.gemini.Flags()...)
	return flags
}

// buildPublisher wires the publish pipeline from configuration. The returned
// cleanup releases every client it opened and must be called once the
// publisher is no longer used.
func (x *pipelineConfig) buildPublisher(ctx context.Context, extra ...usecase.PublisherOption) (interfaces.Publisher, func(), error) {
	logger := ctxlog.From(ctx)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	policy, err := x.gate.Policy()
	if err != nil {
		return nil, nil, err
	}

	privateKey, err := os.ReadFile(x.github.PrivateKeyPath)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to read GitHub App private key",
			goerr.V("path", x.github.PrivateKeyPath))
	}

	ghClient, err := githubinfra.NewClient(x.github.AppID, x.github.InstallationID, privateKey)
	if err != nil {
		return nil, nil, err
	}

	runner := python.NewRunner(x.python.Bin)
	regClient := registry.New(x.registry.Endpoint, x.registry.Username, x.registry.Token)

	var repo interfaces.RunRepository
	if x.firestore.ProjectID != "" {
		fsClient, err := firestore.New(ctx, x.firestore.ProjectID, x.firestore.Collection)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, func() {
			if err := fsClient.Close(); err != nil {
				logger.Warn("Failed to close Firestore client", "error", err)
			}
		})
		repo = fsClient
		logger.Info("Run records stored in Firestore",
			"project_id", x.firestore.ProjectID,
			"collection", x.firestore.Collection,
		)
	} else {
		repo = memory.New()
		logger.Info("Run records stored in memory; they are lost on restart")
	}

	opts := append([]usecase.PublisherOption{}, extra...)
	if x.python.VersionPin != "" {
		opts = append(opts, usecase.WithPythonPin(x.python.VersionPin))
	}
	if len(x.python.BuildDeps) > 0 {
		opts = append(opts, usecase.WithBuildDeps(x.python.BuildDeps))
	}
	if len(x.python.BuildCommand) > 0 {
		opts = append(opts, usecase.WithBuildCommand(x.python.BuildCommand))
	}
	if x.python.WorkDir != "" {
		opts = append(opts, usecase.WithWorkDir(x.python.WorkDir))
	}

	if x.store.Bucket != "" {
		store, err := gcs.New(ctx, x.store.Bucket, x.store.Prefix)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close archive store", "error", err)
			}
		})
		opts = append(opts, usecase.WithArtifactStore(store))
	}

	if x.notify.SlackWebhookURL != "" {
		opts = append(opts, usecase.WithNotifier(notify.NewSlack(x.notify.SlackWebhookURL)))
	}
	if x.notify.SentryDSN != "" {
		sentryNotifier, err := notify.NewSentry(x.notify.SentryDSN)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() {
			sentryNotifier.Flush(2 * time.Second)
		})
		opts = append(opts, usecase.WithNotifier(sentryNotifier))
	}

	if x.gemini.ProjectID != "" {
		llmClient, err := gemini.New(ctx, x.gemini.Location, x.gemini.ProjectID,
			gemini.WithModel(x.gemini.Model),
		)
		if err != nil {
			cleanup()
			return nil, nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		announcer, err := usecase.NewAnnouncer(llmClient)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts, usecase.WithAnnouncer(announcer))
	}

	pub, err := usecase.NewPublisher(policy, ghClient, runner, regClient, repo, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return pub, cleanup, nil
}
