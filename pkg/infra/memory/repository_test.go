package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
	"github.com/m-mizutani/slipway/pkg/infra/memory"
)

func storedRun(id types.RunID, createdAt time.Time) *model.PublishRun {
	return &model.PublishRun{
		ID:         id,
		Status:     types.RunStatusPublished,
		Conclusion: types.ConclusionSuccess,
		HeadBranch: "main",
		Event:      types.EventKindPush,
		Repository: "acme/mylib",
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestRepository_PutAndGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	run := storedRun("01ARZ3NDEKTSV4RRFFQ69G5FAV", time.Now().UTC())
	run.Steps = []model.StepRecord{{Name: types.StepCheckout, OK: true}}
	run.Artifact = &model.Artifact{Name: "mylib", Version: "1.2.3"}
	gt.NoError(t, repo.Put(ctx, run))

	got, err := repo.Get(ctx, run.ID)
	gt.NoError(t, err)
	gt.V(t, got).NotNil()
	gt.Value(t, got.ID).Equal(run.ID)
	gt.Value(t, got.Status).Equal(types.RunStatusPublished)
	gt.Number(t, len(got.Steps)).Equal(1)
	gt.Value(t, got.Artifact.Name).Equal("mylib")
}

func TestRepository_GetUnknownID(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	got, err := repo.Get(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	gt.NoError(t, err)
	gt.Value(t, got).Nil()
}

func TestRepository_PutStoresSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	run := storedRun("01ARZ3NDEKTSV4RRFFQ69G5FAV", time.Now().UTC())
	run.Status = types.RunStatusRunning
	gt.NoError(t, repo.Put(ctx, run))

	// Mutations after Put must not leak into the stored record
	run.Status = types.RunStatusFailed
	run.Steps = append(run.Steps, model.StepRecord{Name: types.StepCheckout, OK: false})

	got, err := repo.Get(ctx, run.ID)
	gt.NoError(t, err)
	gt.Value(t, got.Status).Equal(types.RunStatusRunning)
	gt.Number(t, len(got.Steps)).Equal(0)
}

func TestRepository_PutOverwritesSameID(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	run := storedRun("01ARZ3NDEKTSV4RRFFQ69G5FAV", time.Now().UTC())
	run.Status = types.RunStatusRunning
	gt.NoError(t, repo.Put(ctx, run))

	run.Status = types.RunStatusPublished
	gt.NoError(t, repo.Put(ctx, run))

	got, err := repo.Get(ctx, run.ID)
	gt.NoError(t, err)
	gt.Value(t, got.Status).Equal(types.RunStatusPublished)

	runs, err := repo.List(ctx, 0)
	gt.NoError(t, err)
	gt.Number(t, len(runs)).Equal(1)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	gt.NoError(t, repo.Put(ctx, storedRun("01OLD0000000000000000000AA", base)))
	gt.NoError(t, repo.Put(ctx, storedRun("01MID0000000000000000000BB", base.Add(time.Minute))))
	gt.NoError(t, repo.Put(ctx, storedRun("01NEW0000000000000000000CC", base.Add(2*time.Minute))))

	runs, err := repo.List(ctx, 10)
	gt.NoError(t, err)
	gt.Number(t, len(runs)).Equal(3)
	gt.Value(t, runs[0].ID).Equal(types.RunID("01NEW0000000000000000000CC"))
	gt.Value(t, runs[1].ID).Equal(types.RunID("01MID0000000000000000000BB"))
	gt.Value(t, runs[2].ID).Equal(types.RunID("01OLD0000000000000000000AA"))
}

func TestRepository_ListHonorsLimit(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := types.RunID("01RUN000000000000000000000" + string(rune('A'+i)))
		gt.NoError(t, repo.Put(ctx, storedRun(id, base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := repo.List(ctx, 2)
	gt.NoError(t, err)
	gt.Number(t, len(runs)).Equal(2)

	// Zero means no limit
	all, err := repo.List(ctx, 0)
	gt.NoError(t, err)
	gt.Number(t, len(all)).Equal(5)
}
