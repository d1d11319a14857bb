// Package handler exposes the admin assignment endpoints: recipient import,
// distribution, listing, per-row actions, and the bulk coordinator.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"attest/internal/assignment"
	"attest/internal/assignment/bulk"
	"attest/internal/assignment/service"
	"attest/internal/platform/metrics"
	"attest/internal/platform/middleware"
	"attest/internal/transport/http/shared"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

const defaultPerPage = 20

// Service defines the assignment operations the admin endpoints call.
type Service interface {
	List(ctx context.Context, policyID id.PolicyID, filter assignment.ListFilter) ([]*assignment.Record, int, error)
	AddRecipients(ctx context.Context, policyID id.PolicyID, emails []string) (*service.AddRecipientsResult, error)
	SendAssignments(ctx context.Context, policyID id.PolicyID) (*service.SendResult, error)
	Remind(ctx context.Context, assignmentID id.AssignmentID) (*service.RemindResult, error)
	Delete(ctx context.Context, assignmentID id.AssignmentID) error
	ResendLink(ctx context.Context, assignmentID id.AssignmentID) (*service.ResendResult, error)
	Receipt(ctx context.Context, assignmentID id.AssignmentID) ([]byte, error)
	PrepareBulk(ctx context.Context, policyID id.PolicyID, action service.BulkAction, selected []id.AssignmentID) (*service.BulkPreview, error)
	RunBulk(ctx context.Context, policyID id.PolicyID, action service.BulkAction, selected []id.AssignmentID) (bulk.Outcome, error)
}

// Handler wires the admin assignment endpoints to the service.
type Handler struct {
	service      Service
	logger       *slog.Logger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	now          func() time.Time
}

// New constructs an assignment handler with its dependencies.
func New(
	service Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		metrics:      metrics,
		jwtValidator: jwtValidator,
		now:          time.Now,
	}
}

// Register attaches the admin routes. Routes live in a Group so this handler
// and the recipient handler can share one parent router without a Mount
// collision at the root path.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Recovery(h.logger))
		admin.Use(middleware.RequestID)
		admin.Use(middleware.Logger(h.logger))
		admin.Use(middleware.Timeout(30 * time.Second))
		admin.Use(middleware.LatencyMiddleware(h.metrics))
		admin.Use(middleware.RequireAdmin(h.jwtValidator, h.logger))

		admin.Post("/policies/{policyID}/recipients", h.handleAddRecipients)
		admin.Post("/policies/{policyID}/send", h.handleSend)
		admin.Get("/policies/{policyID}/assignments", h.handleList)
		admin.Post("/assignments/{assignmentID}/remind", h.handleRemind)
		admin.Delete("/assignments/{assignmentID}", h.handleDelete)
		admin.Post("/assignments/{assignmentID}/resend-link", h.handleResendLink)
		admin.Get("/assignments/{assignmentID}/receipt", h.handleReceipt)
		admin.Post("/assignments/bulk/{action}", h.handleBulk)
	})
}

func (h *Handler) handleAddRecipients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	req, ok := shared.DecodeAndPrepare[AddRecipientsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.AddRecipients(ctx, policyID, req.Emails)
	if err != nil {
		h.logger.ErrorContext(ctx, "recipient import failed",
			"request_id", requestID,
			"policy_id", policyID.String(),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "recipients imported",
		"request_id", requestID,
		"policy_id", policyID.String(),
		"created", result.Created,
		"skipped", len(result.Skipped),
		"invalid", len(result.Invalid),
	)
	shared.WriteJSON(w, http.StatusCreated, &AddRecipientsResponse{
		Created: result.Created,
		Skipped: emptyIfNil(result.Skipped),
		Invalid: emptyIfNil(result.Invalid),
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.service.SendAssignments(ctx, policyID)
	if err != nil {
		h.logger.ErrorContext(ctx, "distribution failed",
			"request_id", requestID,
			"policy_id", policyID.String(),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, &SendResponse{
		Sent:   result.Sent,
		Failed: emptyIfNil(result.Failed),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	status, err := parseStatusFilter(query.Get("status"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	filter := assignment.ListFilter{
		Status:  status,
		Search:  query.Get("search"),
		Page:    queryInt(query.Get("page"), 1),
		PerPage: queryInt(query.Get("per_page"), defaultPerPage),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}

	records, total, err := h.service.List(ctx, policyID, filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	now := h.now()
	rows := make([]*AssignmentResponse, 0, len(records))
	for _, rec := range records {
		rows = append(rows, FromRecord(rec, now))
	}
	shared.WriteJSON(w, http.StatusOK, &ListResponse{
		Assignments: rows,
		Total:       total,
		Page:        filter.Page,
		PerPage:     filter.PerPage,
	})
}

func (h *Handler) handleRemind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	assignmentID, err := id.ParseAssignmentID(chi.URLParam(r, "assignmentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.service.Remind(ctx, assignmentID)
	if err != nil {
		h.writeActionError(ctx, w, requestID, assignmentID, "remind", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, &RemindResponse{
		Message:             result.Message,
		ReminderCount:       result.ReminderCount,
		MaxRemindersReached: result.MaxRemindersReached,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	assignmentID, err := id.ParseAssignmentID(chi.URLParam(r, "assignmentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, assignmentID); err != nil {
		h.writeActionError(ctx, w, requestID, assignmentID, "delete", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, &MessageResponse{Message: "assignment deleted"})
}

func (h *Handler) handleResendLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	assignmentID, err := id.ParseAssignmentID(chi.URLParam(r, "assignmentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.service.ResendLink(ctx, assignmentID)
	if err != nil {
		h.writeActionError(ctx, w, requestID, assignmentID, "resend-link", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, &ResendResponse{
		Message:    result.Message,
		NewLinkURL: result.NewLinkURL,
	})
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	assignmentID, err := id.ParseAssignmentID(chi.URLParam(r, "assignmentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	artifact, err := h.service.Receipt(ctx, assignmentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=\"receipt-"+assignmentID.String()+".json\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	action, err := parseBulkAction(chi.URLParam(r, "action"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	req, ok := shared.DecodeAndPrepare[BulkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if req.DryRun {
		preview, err := h.service.PrepareBulk(ctx, req.ParsedPolicyID(), action, req.ParsedIDs())
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, FromPreview(preview))
		return
	}

	outcome, err := h.service.RunBulk(ctx, req.ParsedPolicyID(), action, req.ParsedIDs())
	if err != nil {
		h.logger.ErrorContext(ctx, "bulk action failed",
			"request_id", requestID,
			"policy_id", req.PolicyID,
			"action", string(action),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bulk action completed",
		"request_id", requestID,
		"action", string(action),
		"eligible", outcome.Eligible,
		"succeeded", outcome.Succeeded,
		"failed", len(outcome.Failed),
	)
	shared.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}

// writeActionError maps in-flight duplicates to a conflict so a double click
// surfaces as "already running", not as a server fault.
func (h *Handler) writeActionError(ctx context.Context, w http.ResponseWriter, requestID string, assignmentID id.AssignmentID, action string, err error) {
	if errors.Is(err, service.ErrInFlight) {
		shared.WriteError(w, dErrors.New(dErrors.CodeConflict, "this action is already in progress for the assignment"))
		return
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "assignment action failed",
			"request_id", requestID,
			"assignment_id", assignmentID.String(),
			"action", action,
			"error", err,
		)
	}
	shared.WriteError(w, err)
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
