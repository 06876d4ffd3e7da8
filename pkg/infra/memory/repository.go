package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// Repository keeps publish run records in process memory. It backs tests
// and deployments that run without a Firestore project; records live only
// as long as the process.
type Repository struct {
	mu   sync.RWMutex
	runs map[types.RunID]model.PublishRun
}

// New creates an empty in-memory run repository.
func New() *Repository {
	return &Repository{
		runs: make(map[types.RunID]model.PublishRun),
	}
}

// Put stores a snapshot of the run record. Later mutations of the caller's
// struct do not leak into the stored record.
func (x *Repository) Put(_ context.Context, run *model.PublishRun) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	snapshot := *run
	snapshot.Steps = append([]model.StepRecord(nil), run.Steps...)
	if run.Artifact != nil {
		artifact := *run.Artifact
		snapshot.Artifact = &artifact
	}
	x.runs[run.ID] = snapshot

	return nil
}

// Get returns the run record, or (nil, nil) when the ID is unknown.
func (x *Repository) Get(_ context.Context, id types.RunID) (*model.PublishRun, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	run, ok := x.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

// List returns up to limit run records, newest first.
func (x *Repository) List(_ context.Context, limit int) ([]*model.PublishRun, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	runs := make([]*model.PublishRun, 0, len(x.runs))
	for id := range x.runs {
		run := x.runs[id]
		runs = append(runs, &run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}
