package model

import (
	"fmt"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// GatePolicy is the static predicate configuration. An event passes the
// gate only when every condition holds.
type GatePolicy struct {
	Repository types.RepoID      `yaml:"repository"` // Required: owner/name to accept events from
	Branch     types.BranchName  `yaml:"branch"`     // Required branch of the upstream run
	Events     []types.EventKind `yaml:"events"`     // Allowed triggering event kinds
	Workflow   string            `yaml:"workflow"`   // Optional: restrict to one upstream workflow
}

// DefaultBranch is the branch a policy requires unless configured otherwise.
const DefaultBranch = types.BranchName("main")

// DefaultEvents returns the event kinds a policy allows unless configured
// otherwise. Push only: manually dispatched and tag-triggered runs stay
// gated out until a deployment opts in.
func DefaultEvents() []types.EventKind {
	return []types.EventKind{types.EventKindPush}
}

// Validate checks that the policy is complete enough to evaluate.
func (p *GatePolicy) Validate() error {
	if p.Repository == "" {
		return goerr.New("gate policy has no repository")
	}
	if !p.Repository.Validate() {
		return goerr.New("gate policy repository is not owner/name", goerr.V("repository", p.Repository))
	}
	if p.Branch == "" {
		return goerr.New("gate policy has no branch")
	}
	if len(p.Events) == 0 {
		return goerr.New("gate policy has no allowed events")
	}
	return nil
}

// Decision is the result of evaluating a policy against one event. When the
// gate stays closed, Reasons lists every failing condition, not just the
// first, so the skip record explains the whole mismatch.
type Decision struct {
	Allowed bool
	Reasons []string
}

// Evaluate applies the gate predicate to one event. Pure: no I/O, no side
// effects. All conditions are checked even after one fails.
func (p *GatePolicy) Evaluate(ev *TriggerEvent) Decision {
	var reasons []string

	if ev.Conclusion != types.ConclusionSuccess {
		reasons = append(reasons, fmt.Sprintf("conclusion is %q, not %q", ev.Conclusion, types.ConclusionSuccess))
	}
	if ev.HeadBranch != p.Branch {
		reasons = append(reasons, fmt.Sprintf("head branch is %q, not %q", ev.HeadBranch, p.Branch))
	}
	if !slices.Contains(p.Events, ev.Event) {
		reasons = append(reasons, fmt.Sprintf("event %q is not allowed (allowed: %v)", ev.Event, p.Events))
	}
	if ev.Repository != p.Repository {
		reasons = append(reasons, fmt.Sprintf("repository is %q, not %q", ev.Repository, p.Repository))
	}
	if p.Workflow != "" && ev.Workflow != p.Workflow {
		reasons = append(reasons, fmt.Sprintf("workflow is %q, not %q", ev.Workflow, p.Workflow))
	}

	return Decision{
		Allowed: len(reasons) == 0,
		Reasons: reasons,
	}
}
