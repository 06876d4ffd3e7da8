package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oklog/ulid/v2"

	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// PublishRun is the audit record of one publish invocation, from event
// receipt to its terminal state. Skipped, Published and Failed are all
// terminal; a run never leaves a terminal state.
type PublishRun struct {
	ID     types.RunID     `firestore:"id" json:"id"`
	Status types.RunStatus `firestore:"status" json:"status"`

	Conclusion types.Conclusion `firestore:"conclusion" json:"conclusion"`
	HeadBranch types.BranchName `firestore:"head_branch" json:"head_branch"`
	Event      types.EventKind  `firestore:"event" json:"event"`
	Repository types.RepoID     `firestore:"repository" json:"repository"`

	HeadSHA    types.CommitSHA  `firestore:"head_sha" json:"head_sha"`
	Workflow   string           `firestore:"workflow,omitempty" json:"workflow,omitempty"`
	UpstreamID int64            `firestore:"upstream_id,omitempty" json:"upstream_id,omitempty"`
	RunURL     string           `firestore:"run_url,omitempty" json:"run_url,omitempty"`
	Delivery   types.DeliveryID `firestore:"delivery,omitempty" json:"delivery,omitempty"`

	SkipReasons []string          `firestore:"skip_reasons,omitempty" json:"skip_reasons,omitempty"`
	FailedStep  types.StepName    `firestore:"failed_step,omitempty" json:"failed_step,omitempty"`
	FailureKind types.FailureKind `firestore:"failure_kind,omitempty" json:"failure_kind,omitempty"`
	Error       string            `firestore:"error,omitempty" json:"error,omitempty"`

	Steps    []StepRecord `firestore:"steps,omitempty" json:"steps,omitempty"`
	Artifact *Artifact    `firestore:"artifact,omitempty" json:"artifact,omitempty"`

	ArchiveURL   string `firestore:"archive_url,omitempty" json:"archive_url,omitempty"`
	Announcement string `firestore:"announcement,omitempty" json:"announcement,omitempty"`

	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at" json:"updated_at"`
}

// StepRecord captures the timing and outcome of one pipeline step.
type StepRecord struct {
	Name       types.StepName `firestore:"name" json:"name"`
	StartedAt  time.Time      `firestore:"started_at" json:"started_at"`
	FinishedAt time.Time      `firestore:"finished_at" json:"finished_at"`
	OK         bool           `firestore:"ok" json:"ok"`
	Detail     string         `firestore:"detail,omitempty" json:"detail,omitempty"`
}

// NewPublishRun creates a pending run record for the event.
func NewPublishRun(ev *TriggerEvent) *PublishRun {
	now := time.Now().UTC()
	return &PublishRun{
		ID:         types.RunID(ulid.Make().String()),
		Status:     types.RunStatusPending,
		Conclusion: ev.Conclusion,
		HeadBranch: ev.HeadBranch,
		Event:      ev.Event,
		Repository: ev.Repository,
		HeadSHA:    ev.HeadSHA,
		Workflow:   ev.Workflow,
		UpstreamID: ev.RunID,
		RunURL:     ev.RunURL,
		Delivery:   ev.Delivery,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (r *PublishRun) transition(next types.RunStatus) error {
	if !r.Status.CanTransition(next) {
		return goerr.New("invalid run status transition",
			goerr.V("run_id", r.ID),
			goerr.V("from", r.Status),
			goerr.V("to", next),
		)
	}
	r.Status = next
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkSkipped closes the run without side effects, recording why the gate
// stayed shut.
func (r *PublishRun) MarkSkipped(reasons []string) error {
	if err := r.transition(types.RunStatusSkipped); err != nil {
		return err
	}
	r.SkipReasons = reasons
	return nil
}

// MarkRunning moves the run into pipeline execution.
func (r *PublishRun) MarkRunning() error {
	return r.transition(types.RunStatusRunning)
}

// MarkPublished closes the run successfully with the uploaded artifact.
func (r *PublishRun) MarkPublished(artifact *Artifact) error {
	if err := r.transition(types.RunStatusPublished); err != nil {
		return err
	}
	r.Artifact = artifact
	return nil
}

// MarkFailed closes the run with the step that failed and its failure kind.
func (r *PublishRun) MarkFailed(step types.StepName, kind types.FailureKind, cause error) error {
	if err := r.transition(types.RunStatusFailed); err != nil {
		return err
	}
	r.FailedStep = step
	r.FailureKind = kind
	if cause != nil {
		r.Error = cause.Error()
	}
	return nil
}

// RecordStep appends one step timing record.
func (r *PublishRun) RecordStep(rec StepRecord) {
	r.Steps = append(r.Steps, rec)
	r.UpdatedAt = time.Now().UTC()
}
