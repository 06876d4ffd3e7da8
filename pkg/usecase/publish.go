package usecase

import (
	"context"
	"os"
	"path"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/slipway/pkg/domain/interfaces"
	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
	"github.com/m-mizutani/slipway/pkg/utils/metrics"
)

// Build defaults reproduce the upstream publish job: upgrade the packaging
// toolchain, then let setup.py produce the sdist.
var (
	defaultBuildDeps    = []string{"pip", "setuptools", "wheel"}
	defaultBuildCommand = []string{"setup.py", "sdist"}
)

type publisher struct {
	policy   *model.GatePolicy
	github   interfaces.GitHubClient
	py       interfaces.PythonRunner
	registry interfaces.RegistryClient
	repo     interfaces.RunRepository

	notifiers []interfaces.Notifier
	archive   interfaces.ArtifactStore
	announcer *Announcer

	pythonPin    string
	buildDeps    []string
	buildCommand []string
	workDir      string
}

// PublisherOption configures NewPublisher.
type PublisherOption func(*publisher)

// WithNotifier adds a notifier for terminal runs. May be given repeatedly.
func WithNotifier(n interfaces.Notifier) PublisherOption {
	return func(uc *publisher) {
		uc.notifiers = append(uc.notifiers, n)
	}
}

// WithArtifactStore enables post-publish artifact archiving.
func WithArtifactStore(s interfaces.ArtifactStore) PublisherOption {
	return func(uc *publisher) {
		uc.archive = s
	}
}

// WithAnnouncer enables LLM announcement generation for published runs.
func WithAnnouncer(a *Announcer) PublisherOption {
	return func(uc *publisher) {
		uc.announcer = a
	}
}

// WithPythonPin requires the interpreter version to match the pin by
// component prefix.
func WithPythonPin(pin string) PublisherOption {
	return func(uc *publisher) {
		uc.pythonPin = pin
	}
}

// WithBuildDeps replaces the packages installed before the build.
func WithBuildDeps(deps []string) PublisherOption {
	return func(uc *publisher) {
		if len(deps) > 0 {
			uc.buildDeps = deps
		}
	}
}

// WithBuildCommand replaces the interpreter arguments producing the sdist.
func WithBuildCommand(args []string) PublisherOption {
	return func(uc *publisher) {
		if len(args) > 0 {
			uc.buildCommand = args
		}
	}
}

// WithWorkDir sets the parent directory for per-run working directories.
func WithWorkDir(dir string) PublisherOption {
	return func(uc *publisher) {
		uc.workDir = dir
	}
}

// NewPublisher creates the use case gating and executing publish runs.
// policy, github, python, registry and repo are required.
func NewPublisher(
	policy *model.GatePolicy,
	github interfaces.GitHubClient,
	py interfaces.PythonRunner,
	registry interfaces.RegistryClient,
	repo interfaces.RunRepository,
	opts ...PublisherOption,
) (interfaces.Publisher, error) {
	if policy == nil {
		return nil, goerr.New("publisher requires a gate policy")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if github == nil || py == nil || registry == nil || repo == nil {
		return nil, goerr.New("publisher requires github, python, registry and repository clients")
	}

	uc := &publisher{
		policy:       policy,
		github:       github,
		py:           py,
		registry:     registry,
		repo:         repo,
		buildDeps:    defaultBuildDeps,
		buildCommand: defaultBuildCommand,
	}
	for _, opt := range opts {
		opt(uc)
	}

	return uc, nil
}

// HandleEvent evaluates the gate for the event and, when it opens, runs the
// publish pipeline. The returned run is terminal. A skip returns (run, nil);
// only a pipeline failure returns a non-nil error.
func (uc *publisher) HandleEvent(ctx context.Context, ev *model.TriggerEvent) (*model.PublishRun, error) {
	logger := ctxlog.From(ctx)
	metrics.EventsReceived.Add(1)

	if err := ev.Validate(); err != nil {
		return nil, goerr.Wrap(err, "rejecting malformed trigger event", goerr.T(types.ErrTagBadRequest))
	}

	run := model.NewPublishRun(ev)
	logger.Info("Evaluating publish gate",
		"run_id", run.ID,
		"repository", ev.Repository,
		"head_branch", ev.HeadBranch,
		"event", ev.Event,
		"conclusion", ev.Conclusion,
	)

	decision := uc.policy.Evaluate(ev)
	if !decision.Allowed {
		if err := run.MarkSkipped(decision.Reasons); err != nil {
			return nil, err
		}
		metrics.RunsSkipped.Add(1)
		logger.Info("Gate closed, skipping publish", "run_id", run.ID, "reasons", decision.Reasons)
		uc.persist(ctx, run)
		return run, nil
	}

	if err := run.MarkRunning(); err != nil {
		return nil, err
	}
	metrics.RunsStarted.Add(1)
	uc.persist(ctx, run)

	logger.Info("Gate open, starting publish pipeline", "run_id", run.ID, "head_sha", ev.HeadSHA)

	artifact, cleanup, pipeErr := uc.runPipeline(ctx, ev, run)
	if cleanup != nil {
		// The working directory must survive until post-publish archiving
		// has read the artifact.
		defer cleanup()
	}
	if pipeErr != nil {
		kind := types.FailureKindOf(pipeErr)
		step := lastFailedStep(run)
		if err := run.MarkFailed(step, kind, pipeErr); err != nil {
			return nil, err
		}
		metrics.RunsFailed.Add(1)
		logger.Error("Publish pipeline failed",
			"run_id", run.ID,
			"step", step,
			"kind", kind,
			"error", pipeErr,
		)
		uc.persist(ctx, run)
		uc.notify(ctx, run)
		return run, pipeErr
	}

	if err := run.MarkPublished(artifact); err != nil {
		return nil, err
	}
	metrics.RunsPublished.Add(1)
	logger.Info("Published",
		"run_id", run.ID,
		"name", artifact.Name,
		"version", artifact.Version,
		"file", artifact.FileName,
	)

	uc.afterPublish(ctx, run, artifact)
	uc.persist(ctx, run)
	uc.notify(ctx, run)

	return run, nil
}

// persist writes the run record. Storage trouble must not change the
// outcome of a publish, so failures are logged and swallowed.
func (uc *publisher) persist(ctx context.Context, run *model.PublishRun) {
	if err := uc.repo.Put(ctx, run); err != nil {
		ctxlog.From(ctx).Warn("Failed to save run record", "run_id", run.ID, "error", err)
	}
}

// notify reports a terminal run to all notifiers. Skips never arrive here.
func (uc *publisher) notify(ctx context.Context, run *model.PublishRun) {
	logger := ctxlog.From(ctx)
	for _, n := range uc.notifiers {
		if err := n.Notify(ctx, run); err != nil {
			metrics.NotifyFailures.Add(1)
			logger.Warn("Failed to notify run result", "run_id", run.ID, "error", err)
		}
	}
}

// afterPublish runs the best-effort follow-ups of a successful upload:
// archive the artifact and generate an announcement. Neither changes the
// run's outcome.
func (uc *publisher) afterPublish(ctx context.Context, run *model.PublishRun, artifact *model.Artifact) {
	logger := ctxlog.From(ctx)

	if uc.archive != nil {
		file, err := os.Open(artifact.Path)
		if err != nil {
			logger.Warn("Failed to open artifact for archiving", "path", artifact.Path, "error", err)
		} else {
			object := path.Join(run.Repository.String(), run.ID.String(), artifact.FileName)
			url, err := uc.archive.Put(ctx, object, "application/gzip", file)
			if closeErr := file.Close(); closeErr != nil {
				logger.Warn("Failed to close artifact file", "path", artifact.Path, "error", closeErr)
			}
			if err != nil {
				logger.Warn("Failed to archive artifact", "run_id", run.ID, "error", err)
			} else {
				run.ArchiveURL = url
				logger.Info("Archived artifact", "run_id", run.ID, "url", url)
			}
		}
	}

	if uc.announcer != nil {
		text, err := uc.announcer.Announce(ctx, run)
		if err != nil {
			logger.Warn("Failed to generate announcement", "run_id", run.ID, "error", err)
		} else {
			run.Announcement = text
		}
	}
}

func lastFailedStep(run *model.PublishRun) types.StepName {
	for i := len(run.Steps) - 1; i >= 0; i-- {
		if !run.Steps[i].OK {
			return run.Steps[i].Name
		}
	}
	return ""
}

// step runs one pipeline step with timing, recording the result on the run.
// A cancelled context stops the pipeline at the boundary before fn starts.
func (uc *publisher) step(ctx context.Context, run *model.PublishRun, name types.StepName, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		run.RecordStep(model.StepRecord{
			Name:       name,
			StartedAt:  time.Now().UTC(),
			FinishedAt: time.Now().UTC(),
			OK:         false,
			Detail:     "cancelled before start",
		})
		return goerr.Wrap(err, "pipeline cancelled", goerr.V("step", name))
	}

	rec := model.StepRecord{Name: name, StartedAt: time.Now().UTC()}
	err := fn(ctx)
	rec.FinishedAt = time.Now().UTC()
	rec.OK = err == nil
	if err != nil {
		rec.Detail = err.Error()
	}
	run.RecordStep(rec)

	if err != nil {
		return err
	}
	return nil
}
