// Package ack serves the recipient-facing flow: a magic link opens the
// acknowledgment page, the view gate collects review evidence, and the
// acknowledgment submit is honored only once the gate confirms.
package ack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"attest/internal/assignment"
	"attest/internal/assignment/service"
	"attest/internal/magiclink"
	"attest/internal/platform/metrics"
	"attest/internal/platform/middleware"
	"attest/internal/policy"
	"attest/internal/transport/http/shared"
	"attest/internal/viewgate"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	audit "attest/pkg/platform/audit"
	"attest/pkg/platform/sentinel"
)

// TokenVerifier resolves a magic link token to its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*magiclink.Claims, error)
}

// Assignments defines the lifecycle operations the recipient flow drives.
type Assignments interface {
	Get(ctx context.Context, assignmentID id.AssignmentID) (*assignment.Record, error)
	MarkViewed(ctx context.Context, assignmentID id.AssignmentID) (*assignment.Record, error)
	Acknowledge(ctx context.Context, assignmentID id.AssignmentID, params service.AcknowledgeParams) (*assignment.Record, error)
	Decline(ctx context.Context, assignmentID id.AssignmentID) (*assignment.Record, error)
}

// Handler wires the recipient endpoints. The magic link token is the only
// credential; there is no login on this surface.
type Handler struct {
	assignments Assignments
	policies    policy.Store
	tokens      TokenVerifier
	gates       *viewgate.Manager
	probe       viewgate.RenderCapabilityProbe
	recorder    *audit.Recorder
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func New(
	assignments Assignments,
	policies policy.Store,
	tokens TokenVerifier,
	gates *viewgate.Manager,
	probe viewgate.RenderCapabilityProbe,
	recorder *audit.Recorder,
	logger *slog.Logger,
	m *metrics.Metrics) *Handler {
	return &Handler{
		assignments: assignments,
		policies:    policies,
		tokens:      tokens,
		gates:       gates,
		probe:       probe,
		recorder:    recorder,
		logger:      logger,
		metrics:     m,
		now:         time.Now,
	}
}

// Register attaches the recipient routes. Routes live in a Group so this
// handler shares the parent router with the admin surface.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(recipient chi.Router) {
		recipient.Use(middleware.Recovery(h.logger))
		recipient.Use(middleware.RequestID)
		recipient.Use(middleware.Logger(h.logger))
		recipient.Use(middleware.Timeout(30 * time.Second))
		recipient.Use(middleware.LatencyMiddleware(h.metrics))

		recipient.Get("/ack/{token}", h.handlePage)
		recipient.Post("/ack/{token}/view", h.handleOpenView)
		recipient.Post("/ack/{token}", h.handleAcknowledge)
		recipient.Post("/ack/{token}/decline", h.handleDecline)

		recipient.Post("/view/sessions/{sessionID}/loaded", h.handleLoaded)
		recipient.Post("/view/sessions/{sessionID}/load-error", h.handleLoadError)
		recipient.Post("/view/sessions/{sessionID}/page", h.handlePageChanged)
		recipient.Post("/view/sessions/{sessionID}/confirm", h.handleConfirm)
		recipient.Delete("/view/sessions/{sessionID}", h.handleCloseSession)
	})
}

// verifyToken resolves the URL token, translating verification failures into
// recipient-safe codes.
func (h *Handler) verifyToken(ctx context.Context, r *http.Request) (*magiclink.Claims, error) {
	claims, err := h.tokens.Verify(ctx, chi.URLParam(r, "token"))
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, sentinel.ErrExpired):
		return nil, dErrors.New(dErrors.CodeTokenExpired, "this link has expired; ask your administrator for a new one")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return nil, dErrors.New(dErrors.CodeTokenRevoked, "this link has been replaced; use the most recent one")
	default:
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid link")
	}
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, err := h.verifyToken(ctx, r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rec, err := h.assignments.Get(ctx, claims.AssignmentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pol, err := h.policies.Get(ctx, rec.PolicyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, newPageResponse(rec, pol, h.now()))
}

// handleOpenView marks the assignment viewed and opens a gate session.
// Opening is all "viewed" takes; the gate decides when review is complete.
func (h *Handler) handleOpenView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	claims, err := h.verifyToken(ctx, r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rec, err := h.assignments.MarkViewed(ctx, claims.AssignmentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	capability := h.probe.Probe(r.UserAgent())
	gate := h.gates.Open(rec.ID, capability, h.onReviewConfirmed(rec))
	h.logger.InfoContext(ctx, "view session opened",
		"request_id", requestID,
		"assignment_id", rec.ID.String(),
		"session_id", gate.SessionID().String(),
		"browser", capability.Browser,
	)
	shared.WriteJSON(w, http.StatusCreated, newSessionResponse(gate.Snapshot()))
}

// onReviewConfirmed builds the gate callback; it fires exactly once per
// session, when the gate reaches confirmed.
func (h *Handler) onReviewConfirmed(rec *assignment.Record) func() {
	assignmentID := rec.ID
	policyID := rec.PolicyID
	email := rec.UserEmail
	return func() {
		if h.recorder == nil {
			return
		}
		if !h.recorder.Record(audit.Event{
			Action:       audit.EventReviewConfirmed,
			AssignmentID: assignmentID,
			PolicyID:     policyID,
			UserEmail:    email,
		}) {
			h.logger.Warn("audit inbox full, event dropped",
				"action", string(audit.EventReviewConfirmed),
				"assignment_id", assignmentID.String(),
			)
		}
	}
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	claims, err := h.verifyToken(ctx, r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	req, ok := shared.DecodeAndPrepare[AcknowledgeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	gate, err := h.gates.Get(req.ParsedSessionID())
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotReviewed, "no active review session for this acknowledgment"))
		return
	}
	snap := gate.Snapshot()
	if snap.AssignmentID != claims.AssignmentID {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "review session does not belong to this assignment"))
		return
	}

	rec, err := h.assignments.Acknowledge(ctx, claims.AssignmentID, service.AcknowledgeParams{
		ReviewConfirmed: snap.Confirmed,
		Method:          req.Method,
		TypedSignature:  req.TypedSignature,
		ClientIP:        r.RemoteAddr,
		UserAgent:       r.UserAgent(),
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.gates.Close(snap.SessionID)
	h.logger.InfoContext(ctx, "assignment acknowledged",
		"request_id", requestID,
		"assignment_id", rec.ID.String(),
		"method", req.Method,
	)
	shared.WriteJSON(w, http.StatusOK, newAcknowledgeResponse(rec))
}

func (h *Handler) handleDecline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, err := h.verifyToken(ctx, r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rec, err := h.assignments.Decline(ctx, claims.AssignmentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// A decline carries no session ID, so tear down whatever sessions the
	// assignment still has open rather than waiting on the close beacon.
	h.gates.CloseForAssignment(rec.ID)
	shared.WriteJSON(w, http.StatusOK, newAcknowledgeResponse(rec))
}

func (h *Handler) sessionGate(w http.ResponseWriter, r *http.Request) (*viewgate.Gate, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.WriteError(w, err)
		return nil, false
	}
	gate, err := h.gates.Get(sessionID)
	if err != nil {
		shared.WriteError(w, err)
		return nil, false
	}
	return gate, true
}

func (h *Handler) handleLoaded(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	gate, ok := h.sessionGate(w, r)
	if !ok {
		return
	}
	req, ok := shared.DecodeAndPrepare[LoadedRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	gate.Loaded(req.PageCount)
	shared.WriteJSON(w, http.StatusOK, newSessionResponse(gate.Snapshot()))
}

func (h *Handler) handleLoadError(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.sessionGate(w, r)
	if !ok {
		return
	}
	gate.LoadError()
	shared.WriteJSON(w, http.StatusOK, newSessionResponse(gate.Snapshot()))
}

func (h *Handler) handlePageChanged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	gate, ok := h.sessionGate(w, r)
	if !ok {
		return
	}
	req, ok := shared.DecodeAndPrepare[PageRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	gate.PageChanged(req.Page)
	shared.WriteJSON(w, http.StatusOK, newSessionResponse(gate.Snapshot()))
}

// handleConfirm applies the explicit confirmation action. A confirm before
// the dwell threshold is not an error; the response's confirmed flag simply
// stays false.
func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.sessionGate(w, r)
	if !ok {
		return
	}
	gate.ConfirmReview()
	shared.WriteJSON(w, http.StatusOK, newSessionResponse(gate.Snapshot()))
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.gates.Close(sessionID)
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("session %s closed", sessionID),
	})
}
