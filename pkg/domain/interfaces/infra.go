package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// RegistryClient uploads one source distribution to the package registry.
type RegistryClient interface {
	// Upload sends the artifact file with its metadata. The registry
	// rejects re-publication of an existing version; that rejection
	// surfaces as a tagged error, never as silent success.
	Upload(ctx context.Context, artifact *model.Artifact) error
}

// PythonRunner drives the configured Python interpreter.
type PythonRunner interface {
	// Version reports the interpreter version string, e.g. "3.8.18".
	Version(ctx context.Context) (string, error)
	// Install runs pip install --upgrade for the packages, from dir.
	Install(ctx context.Context, dir string, packages []string) error
	// Build runs the interpreter with args in dir, e.g. ["setup.py", "sdist"].
	Build(ctx context.Context, dir string, args []string) error
}

// RunRepository persists publish run records.
type RunRepository interface {
	Put(ctx context.Context, run *model.PublishRun) error
	// Get returns (nil, nil) when no record has the ID.
	Get(ctx context.Context, id types.RunID) (*model.PublishRun, error)
	// List returns up to limit runs, newest first. A non-positive limit
	// means no cap.
	List(ctx context.Context, limit int) ([]*model.PublishRun, error)
}

// ArtifactStore archives built artifacts outside the run's temp directory.
type ArtifactStore interface {
	// Put stores the content under the object name and returns its location.
	Put(ctx context.Context, object, contentType string, r io.Reader) (string, error)
}

// Notifier reports a terminal run to a human-facing channel. Called for
// published and failed runs only; skips stay silent.
type Notifier interface {
	Notify(ctx context.Context, run *model.PublishRun) error
}
