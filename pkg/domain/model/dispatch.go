package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// DispatchRequest is the body of a direct dispatch call. The caller's
// identity comes from the OIDC token, never from the body; HeadSHA may
// narrow the commit when it differs from the token's sha claim.
type DispatchRequest struct {
	HeadSHA string `json:"head_sha,omitempty"`
}

// DispatchResponse acknowledges an accepted dispatch. The pipeline runs
// asynchronously; the delivery ID is recorded on the resulting run so the
// caller can correlate it later via the run listing.
type DispatchResponse struct {
	Delivery types.DeliveryID `json:"delivery_id"`
	Status   string           `json:"status"`
}

// ActionsClaims are the GitHub Actions OIDC token claims the dispatch
// surface consumes. Field names follow the token claim names.
type ActionsClaims struct {
	Repository string
	Ref        string
	EventName  string
	SHA        string
	Workflow   string
	RunID      string
	Actor      string
}

// ToTriggerEvent maps verified claims onto a trigger event. The calling job
// is alive when it presents the token, so the conclusion is success by
// construction.
func (c *ActionsClaims) ToTriggerEvent(delivery types.DeliveryID, receivedAt time.Time) *TriggerEvent {
	runID, _ := strconv.ParseInt(c.RunID, 10, 64)
	return &TriggerEvent{
		Conclusion: types.ConclusionSuccess,
		HeadBranch: types.BranchName(strings.TrimPrefix(c.Ref, "refs/heads/")),
		Event:      types.EventKind(c.EventName),
		Repository: types.RepoID(c.Repository),
		HeadSHA:    types.CommitSHA(c.SHA),
		Workflow:   c.Workflow,
		RunID:      runID,
		Delivery:   delivery,
		ReceivedAt: receivedAt,
	}
}
