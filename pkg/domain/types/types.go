package types

import "strings"

// Version is the application version, overwritten at build time via ldflags.
var Version = "dev"

// ServiceName identifies this service in health responses and telemetry.
const ServiceName = "slipway"

// RunID identifies a single publish run. ULID, sortable by creation time.
type RunID string

func (x RunID) String() string { return string(x) }

// DeliveryID is the webhook delivery identifier (X-GitHub-Delivery), or a
// generated UUID for events that arrive without one.
type DeliveryID string

func (x DeliveryID) String() string { return string(x) }

// RepoID is a full repository identifier in "owner/name" form.
type RepoID string

func (x RepoID) String() string { return string(x) }

// Owner returns the owner part of the identifier, or "" if malformed.
func (x RepoID) Owner() string {
	owner, _, ok := strings.Cut(string(x), "/")
	if !ok {
		return ""
	}
	return owner
}

// Name returns the repository name part of the identifier, or "" if malformed.
func (x RepoID) Name() string {
	_, name, ok := strings.Cut(string(x), "/")
	if !ok {
		return ""
	}
	return name
}

// Validate checks that the identifier has both owner and name parts.
func (x RepoID) Validate() bool {
	owner, name, ok := strings.Cut(string(x), "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}

// CommitSHA is a git commit hash.
type CommitSHA string

func (x CommitSHA) String() string { return string(x) }

// BranchName is a git branch name (without refs/heads/ prefix).
type BranchName string

func (x BranchName) String() string { return string(x) }

// Conclusion is the outcome of an upstream workflow run.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionCancelled Conclusion = "cancelled"
	ConclusionSkipped   Conclusion = "skipped"
	ConclusionTimedOut  Conclusion = "timed_out"
)

func (x Conclusion) String() string { return string(x) }

// EventKind is the kind of event that triggered the upstream workflow run
// (workflow_run.event), not the webhook event type itself.
type EventKind string

const (
	EventKindPush             EventKind = "push"
	EventKindPullRequest      EventKind = "pull_request"
	EventKindWorkflowDispatch EventKind = "workflow_dispatch"
	EventKindSchedule         EventKind = "schedule"
)

func (x EventKind) String() string { return string(x) }

// RunStatus is the lifecycle state of a publish run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusSkipped   RunStatus = "skipped"
	RunStatusRunning   RunStatus = "running"
	RunStatusPublished RunStatus = "published"
	RunStatusFailed    RunStatus = "failed"
)

func (x RunStatus) String() string { return string(x) }

// IsTerminal reports whether no further transition is allowed from the status.
func (x RunStatus) IsTerminal() bool {
	switch x {
	case RunStatusSkipped, RunStatusPublished, RunStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving from the status to next is a valid
// lifecycle step. Pending may become Skipped or Running; Running may become
// Published or Failed; terminal states allow nothing.
func (x RunStatus) CanTransition(next RunStatus) bool {
	switch x {
	case RunStatusPending:
		return next == RunStatusSkipped || next == RunStatusRunning
	case RunStatusRunning:
		return next == RunStatusPublished || next == RunStatusFailed
	}
	return false
}

// StepName identifies one pipeline step.
type StepName string

const (
	StepCheckout  StepName = "checkout"
	StepToolchain StepName = "toolchain"
	StepDeps      StepName = "deps"
	StepBuild     StepName = "build"
	StepPublish   StepName = "publish"
)

func (x StepName) String() string { return string(x) }

// PipelineSteps lists the steps in execution order.
func PipelineSteps() []StepName {
	return []StepName{StepCheckout, StepToolchain, StepDeps, StepBuild, StepPublish}
}

// FailureKind classifies a pipeline failure. Derived from the error tag of
// the failing step; empty for runs that did not fail.
type FailureKind string

const (
	FailureSourceUnavailable    FailureKind = "source_unavailable"
	FailureToolchainUnavailable FailureKind = "toolchain_unavailable"
	FailureDependencyInstall    FailureKind = "dependency_install_failed"
	FailureBuild                FailureKind = "build_failed"
	FailureAuthentication       FailureKind = "authentication_failed"
	FailureDuplicateVersion     FailureKind = "duplicate_version"
	FailureNetwork              FailureKind = "network_failed"
)

func (x FailureKind) String() string { return string(x) }
