package usecase

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
	"github.com/m-mizutani/slipway/pkg/infra/python"
	"github.com/m-mizutani/slipway/pkg/utils/metrics"
)

// runPipeline executes the five publish steps in order: checkout, toolchain
// verification, dependency installation, packaging, upload. The first
// failing step aborts the rest; there is no retry and no rollback. The
// returned cleanup removes the working directory and is non-nil once the
// checkout created one.
func (uc *publisher) runPipeline(ctx context.Context, ev *model.TriggerEvent, run *model.PublishRun) (*model.Artifact, func(), error) {
	logger := ctxlog.From(ctx)

	var checkout *model.Checkout
	if err := uc.step(ctx, run, types.StepCheckout, func(ctx context.Context) error {
		var err error
		checkout, err = uc.checkoutTree(ctx, ev)
		return err
	}); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := os.RemoveAll(checkout.TempDir); err != nil {
			logger.Warn("Failed to clean up working directory", "dir", checkout.TempDir, "error", err)
		} else {
			logger.Debug("Cleaned up working directory", "dir", checkout.TempDir)
		}
	}

	// Best effort: log what the repository declares about itself. The
	// sdist's PKG-INFO decides what actually gets uploaded.
	if meta, err := python.ReadProjectMeta(checkout.Root); err != nil {
		logger.Warn("Failed to read project metadata", "error", err)
	} else if meta != nil {
		logger.Info("Project declares", "name", meta.Name, "version", meta.Version)
	}

	if err := uc.step(ctx, run, types.StepToolchain, func(ctx context.Context) error {
		return uc.verifyToolchain(ctx)
	}); err != nil {
		return nil, cleanup, err
	}

	if err := uc.step(ctx, run, types.StepDeps, func(ctx context.Context) error {
		if err := uc.py.Install(ctx, checkout.Root, uc.buildDeps); err != nil {
			return goerr.Wrap(err, "failed to install build dependencies",
				goerr.T(types.ErrTagDependencyInstall),
				goerr.V("packages", uc.buildDeps),
			)
		}
		return nil
	}); err != nil {
		return nil, cleanup, err
	}

	var artifact *model.Artifact
	if err := uc.step(ctx, run, types.StepBuild, func(ctx context.Context) error {
		var err error
		artifact, err = uc.buildSdist(ctx, checkout.Root)
		return err
	}); err != nil {
		return nil, cleanup, err
	}

	if err := uc.step(ctx, run, types.StepPublish, func(ctx context.Context) error {
		metrics.UploadsAttempted.Add(1)
		return uc.registry.Upload(ctx, artifact)
	}); err != nil {
		return nil, cleanup, err
	}

	return artifact, cleanup, nil
}

// verifyToolchain checks that the interpreter exists and its version
// satisfies the configured pin by component prefix.
func (uc *publisher) verifyToolchain(ctx context.Context) error {
	version, err := uc.py.Version(ctx)
	if err != nil {
		return goerr.Wrap(err, "interpreter unavailable", goerr.T(types.ErrTagToolchainUnavailable))
	}

	if !python.VersionMatchesPin(version, uc.pythonPin) {
		return goerr.New("interpreter version does not satisfy pin",
			goerr.T(types.ErrTagToolchainUnavailable),
			goerr.V("version", version),
			goerr.V("pin", uc.pythonPin),
		)
	}

	ctxlog.From(ctx).Info("Toolchain verified", "version", version, "pin", uc.pythonPin)
	return nil
}

// buildSdist runs the build command and inspects its product. Exactly one
// source distribution must appear in dist/.
func (uc *publisher) buildSdist(ctx context.Context, root string) (*model.Artifact, error) {
	if err := uc.py.Build(ctx, root, uc.buildCommand); err != nil {
		return nil, goerr.Wrap(err, "build command failed",
			goerr.T(types.ErrTagBuild),
			goerr.V("command", uc.buildCommand),
		)
	}

	sdistPath, err := python.FindSdist(filepath.Join(root, "dist"))
	if err != nil {
		return nil, goerr.Wrap(err, "no publishable artifact", goerr.T(types.ErrTagBuild))
	}

	artifact, err := python.InspectSdist(sdistPath)
	if err != nil {
		return nil, goerr.Wrap(err, "artifact metadata unreadable", goerr.T(types.ErrTagBuild))
	}

	return artifact, nil
}
