package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/slipway/pkg/domain/interfaces"
	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
	"github.com/m-mizutani/slipway/pkg/utils/async"
)

// DispatchHandler lets a GitHub Actions job request a publish run directly,
// authenticated by its OIDC ID token instead of a webhook signature.
type DispatchHandler struct {
	verifier  interfaces.TokenVerifier
	publisher interfaces.Publisher
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(verifier interfaces.TokenVerifier, publisher interfaces.Publisher) *DispatchHandler {
	return &DispatchHandler{
		verifier:  verifier,
		publisher: publisher,
	}
}

// Handle processes dispatch requests
func (h *DispatchHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		writeError(w, goerr.New("missing bearer token"), http.StatusUnauthorized)
		return
	}

	claims, err := h.verifier.VerifyToken(ctx, raw)
	if err != nil {
		logger.Warn("Rejected dispatch token", "error", err)
		writeError(w, goerr.New("invalid ID token"), http.StatusUnauthorized)
		return
	}

	var req model.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	delivery := types.DeliveryID(uuid.NewString())
	ev := claims.ToTriggerEvent(delivery, time.Now())
	if req.HeadSHA != "" {
		ev.HeadSHA = types.CommitSHA(req.HeadSHA)
	}

	logger.Info("Accepted dispatch request",
		"delivery", delivery,
		"repository", ev.Repository,
		"workflow", ev.Workflow,
		"actor", claims.Actor,
	)

	async.Dispatch(ctx, "dispatch-publish", func(ctx context.Context) error {
		run, err := h.publisher.HandleEvent(ctx, ev)
		if err != nil {
			return err
		}
		ctxlog.From(ctx).Info("Publish run finished", "run_id", run.ID, "status", run.Status)
		return nil
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(&model.DispatchResponse{
		Delivery: delivery,
		Status:   "accepted",
	}); err != nil {
		logger.Error("Failed to encode dispatch response", "error", err)
	}
}
