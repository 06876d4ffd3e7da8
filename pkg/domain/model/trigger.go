package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// TriggerEvent describes a completed upstream workflow run. The first four
// fields are the gate inputs; the rest are carried for execution and audit
// and never consulted by the gate. The record is immutable and consumed by
// exactly one publish invocation.
type TriggerEvent struct {
	Conclusion types.Conclusion // Outcome of the upstream run (success, failure, ...)
	HeadBranch types.BranchName // Branch the upstream run executed on
	Event      types.EventKind  // Kind of event that triggered the upstream run
	Repository types.RepoID     // Full repository identifier (owner/name)

	HeadSHA    types.CommitSHA  // Commit to check out when the gate opens
	Workflow   string           // Upstream workflow name
	RunID      int64            // Upstream workflow run ID
	RunURL     string           // Link to the upstream run
	Delivery   types.DeliveryID // Webhook delivery ID, or generated UUID
	ReceivedAt time.Time        // Time when the event entered the system
}

// Validate checks the fields required before gate evaluation.
func (e *TriggerEvent) Validate() error {
	if e.Repository == "" {
		return goerr.New("trigger event has no repository")
	}
	if !e.Repository.Validate() {
		return goerr.New("trigger event repository is not owner/name", goerr.V("repository", e.Repository))
	}
	if e.Conclusion == "" {
		return goerr.New("trigger event has no conclusion")
	}
	if e.HeadBranch == "" {
		return goerr.New("trigger event has no head branch")
	}
	if e.Event == "" {
		return goerr.New("trigger event has no event kind")
	}
	return nil
}
