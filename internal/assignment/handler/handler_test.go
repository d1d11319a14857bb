package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"attest/internal/assignment"
	"attest/internal/assignment/bulk"
	"attest/internal/assignment/handler/mocks"
	"attest/internal/assignment/service"
	"attest/internal/platform/metrics"
	"attest/internal/platform/middleware"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/assignment-mocks.go -package=mocks Service

// staticValidator accepts one token and returns fixed claims.
type staticValidator struct {
	token  string
	claims *middleware.JWTClaims
}

func (v *staticValidator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	if tokenString != v.token {
		return nil, errors.New("unknown token")
	}
	return v.claims, nil
}

type AssignmentHandlerSuite struct {
	suite.Suite
	ctx          context.Context
	policyID     id.PolicyID
	assignmentID id.AssignmentID
}

func (s *AssignmentHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
	s.policyID = id.NewPolicyID()
	s.assignmentID = id.NewAssignmentID()
}

func TestAssignmentHandlerSuite(t *testing.T) {
	suite.Run(t, new(AssignmentHandlerSuite))
}

const adminToken = "admin-token"

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validator := &staticValidator{
		token:  adminToken,
		claims: &middleware.JWTClaims{UserID: "admin1", Email: "admin@example.com", Role: "admin"},
	}

	h := New(mockService, logger, metrics.NewWith(prometheus.NewRegistry()), validator)
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService
}

func (s *AssignmentHandlerSuite) doJSON(r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (s *AssignmentHandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(w.Body).Decode(v))
}

func (s *AssignmentHandlerSuite) TestAuth() {
	s.Run("missing bearer token is unauthorized", func() {
		r, _ := newTestRouter(s.T())
		req := httptest.NewRequest(http.MethodGet, "/policies/"+s.policyID.String()+"/assignments", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("non-admin role is forbidden", func() {
		ctrl := gomock.NewController(s.T())
		defer ctrl.Finish()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		validator := &staticValidator{
			token:  "viewer-token",
			claims: &middleware.JWTClaims{UserID: "u1", Role: "viewer"},
		}
		h := New(mocks.NewMockService(ctrl), logger, metrics.NewWith(prometheus.NewRegistry()), validator)
		r := chi.NewRouter()
		h.Register(r)

		req := httptest.NewRequest(http.MethodGet, "/policies/"+s.policyID.String()+"/assignments", nil)
		req.Header.Set("Authorization", "Bearer viewer-token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		s.Equal(http.StatusForbidden, w.Code)
	})
}

func (s *AssignmentHandlerSuite) TestAddRecipients() {
	s.Run("imports and reports the split", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			AddRecipients(gomock.Any(), s.policyID, []string{"alice@example.com", "bob@example.com"}).
			Return(&service.AddRecipientsResult{Created: 2}, nil)

		w := s.doJSON(r, http.MethodPost, "/policies/"+s.policyID.String()+"/recipients",
			AddRecipientsRequest{Emails: []string{"alice@example.com", " bob@example.com "}})
		s.Equal(http.StatusCreated, w.Code)

		var resp AddRecipientsResponse
		s.decode(w, &resp)
		s.Equal(2, resp.Created)
		s.Empty(resp.Skipped)
		s.Empty(resp.Invalid)
	})

	s.Run("empty body is rejected before the service", func() {
		r, _ := newTestRouter(s.T())
		w := s.doJSON(r, http.MethodPost, "/policies/"+s.policyID.String()+"/recipients",
			AddRecipientsRequest{})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *AssignmentHandlerSuite) TestList() {
	s.Run("returns rows with affordance flags", func() {
		r, mockService := newTestRouter(s.T())
		rec := &assignment.Record{
			ID:            s.assignmentID,
			PolicyID:      s.policyID,
			UserEmail:     "alice@example.com",
			UserName:      "Alice Adams",
			Status:        assignment.StatusViewed,
			ReminderCount: 2,
			CreatedAt:     time.Now(),
		}
		mockService.EXPECT().
			List(gomock.Any(), s.policyID, assignment.ListFilter{Status: assignment.StatusViewed, Page: 1, PerPage: 20}).
			Return([]*assignment.Record{rec}, 1, nil)

		w := s.doJSON(r, http.MethodGet, "/policies/"+s.policyID.String()+"/assignments?status=viewed", nil)
		s.Equal(http.StatusOK, w.Code)

		var resp ListResponse
		s.decode(w, &resp)
		s.Equal(1, resp.Total)
		s.Require().Len(resp.Assignments, 1)
		row := resp.Assignments[0]
		s.Equal("viewed", row.Status)
		s.Equal(1, row.RemainingReminders)
		s.True(row.CanRemind)
		s.True(row.CanDelete)
		s.True(row.CanResendLink)
	})

	s.Run("acknowledged rows disable every control", func() {
		r, mockService := newTestRouter(s.T())
		rec := &assignment.Record{
			ID:         s.assignmentID,
			PolicyID:   s.policyID,
			UserEmail:  "bob@example.com",
			Status:     assignment.StatusAcknowledged,
			HasReceipt: true,
			CreatedAt:  time.Now(),
		}
		mockService.EXPECT().
			List(gomock.Any(), s.policyID, gomock.Any()).
			Return([]*assignment.Record{rec}, 1, nil)

		w := s.doJSON(r, http.MethodGet, "/policies/"+s.policyID.String()+"/assignments", nil)
		s.Equal(http.StatusOK, w.Code)

		var resp ListResponse
		s.decode(w, &resp)
		row := resp.Assignments[0]
		s.False(row.CanRemind)
		s.False(row.CanDelete)
		s.False(row.CanResendLink)
		s.True(row.HasReceipt)
	})

	s.Run("past-due unresolved rows read as overdue", func() {
		r, mockService := newTestRouter(s.T())
		past := time.Now().Add(-48 * time.Hour)
		rec := &assignment.Record{
			ID:        s.assignmentID,
			PolicyID:  s.policyID,
			UserEmail: "carol@example.com",
			Status:    assignment.StatusSent,
			DueAt:     &past,
			CreatedAt: time.Now(),
		}
		mockService.EXPECT().
			List(gomock.Any(), s.policyID, gomock.Any()).
			Return([]*assignment.Record{rec}, 1, nil)

		w := s.doJSON(r, http.MethodGet, "/policies/"+s.policyID.String()+"/assignments", nil)
		var resp ListResponse
		s.decode(w, &resp)
		s.Equal("overdue", resp.Assignments[0].Status)
	})

	s.Run("filtering on the derived overdue status is rejected", func() {
		r, _ := newTestRouter(s.T())
		w := s.doJSON(r, http.MethodGet, "/policies/"+s.policyID.String()+"/assignments?status=overdue", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *AssignmentHandlerSuite) TestRemind() {
	s.Run("returns the send summary", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Remind(gomock.Any(), s.assignmentID).
			Return(&service.RemindResult{Message: "Reminder #3 sent", ReminderCount: 3, MaxRemindersReached: true}, nil)

		w := s.doJSON(r, http.MethodPost, "/assignments/"+s.assignmentID.String()+"/remind", nil)
		s.Equal(http.StatusOK, w.Code)

		var resp RemindResponse
		s.decode(w, &resp)
		s.Equal(3, resp.ReminderCount)
		s.True(resp.MaxRemindersReached)
	})

	s.Run("reminder cap surfaces as 409", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Remind(gomock.Any(), s.assignmentID).
			Return(nil, dErrors.New(dErrors.CodeMaxReminders, "maximum number of reminders (3) already sent for this assignment"))

		w := s.doJSON(r, http.MethodPost, "/assignments/"+s.assignmentID.String()+"/remind", nil)
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("in-flight duplicate surfaces as 409", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Remind(gomock.Any(), s.assignmentID).
			Return(nil, service.ErrInFlight)

		w := s.doJSON(r, http.MethodPost, "/assignments/"+s.assignmentID.String()+"/remind", nil)
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("malformed id never reaches the service", func() {
		r, _ := newTestRouter(s.T())
		w := s.doJSON(r, http.MethodPost, "/assignments/not-a-uuid/remind", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *AssignmentHandlerSuite) TestDelete() {
	s.Run("confirms the removal", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().Delete(gomock.Any(), s.assignmentID).Return(nil)

		w := s.doJSON(r, http.MethodDelete, "/assignments/"+s.assignmentID.String(), nil)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("acknowledged assignments refuse deletion", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Delete(gomock.Any(), s.assignmentID).
			Return(dErrors.New(dErrors.CodeIneligible, "cannot delete acknowledged assignment"))

		w := s.doJSON(r, http.MethodDelete, "/assignments/"+s.assignmentID.String(), nil)
		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *AssignmentHandlerSuite) TestResendLink() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		ResendLink(gomock.Any(), s.assignmentID).
		Return(&service.ResendResult{Message: "New link issued", NewLinkURL: "https://attest.example.com/ack/tok"}, nil)

	w := s.doJSON(r, http.MethodPost, "/assignments/"+s.assignmentID.String()+"/resend-link", nil)
	s.Equal(http.StatusOK, w.Code)

	var resp ResendResponse
	s.decode(w, &resp)
	s.Equal("https://attest.example.com/ack/tok", resp.NewLinkURL)
}

func (s *AssignmentHandlerSuite) TestReceipt() {
	s.Run("streams the artifact as a download", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Receipt(gomock.Any(), s.assignmentID).
			Return([]byte(`{"assignment_id":"x"}`), nil)

		w := s.doJSON(r, http.MethodGet, "/assignments/"+s.assignmentID.String()+"/receipt", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Equal("application/json", w.Header().Get("Content-Type"))
		s.Contains(w.Header().Get("Content-Disposition"), "attachment")
		s.Equal(`{"assignment_id":"x"}`, w.Body.String())
	})

	s.Run("missing receipt is 404", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Receipt(gomock.Any(), s.assignmentID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "no receipt exists for this assignment"))

		w := s.doJSON(r, http.MethodGet, "/assignments/"+s.assignmentID.String()+"/receipt", nil)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *AssignmentHandlerSuite) TestBulk() {
	ids := []id.AssignmentID{id.NewAssignmentID(), id.NewAssignmentID(), id.NewAssignmentID()}
	rawIDs := []string{ids[0].String(), ids[1].String(), ids[2].String()}

	s.Run("runs the action and reports the tally", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			RunBulk(gomock.Any(), s.policyID, service.BulkActionRemind, ids).
			Return(bulk.Outcome{Eligible: 3, Succeeded: 2, Failed: []id.AssignmentID{ids[2]}}, nil)

		w := s.doJSON(r, http.MethodPost, "/assignments/bulk/remind",
			BulkRequest{PolicyID: s.policyID.String(), IDs: rawIDs})
		s.Equal(http.StatusOK, w.Code)

		var resp BulkResponse
		s.decode(w, &resp)
		s.Equal(3, resp.Eligible)
		s.Equal(2, resp.Succeeded)
		s.Equal([]string{ids[2].String()}, resp.Failed)
		s.False(resp.NoOp)
	})

	s.Run("nothing eligible reports a no-op", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			RunBulk(gomock.Any(), s.policyID, service.BulkActionDelete, ids).
			Return(bulk.Outcome{}, nil)

		w := s.doJSON(r, http.MethodPost, "/assignments/bulk/delete",
			BulkRequest{PolicyID: s.policyID.String(), IDs: rawIDs})
		s.Equal(http.StatusOK, w.Code)

		var resp BulkResponse
		s.decode(w, &resp)
		s.True(resp.NoOp)
		s.Zero(resp.Succeeded)
	})

	s.Run("dry run previews without executing", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			PrepareBulk(gomock.Any(), s.policyID, service.BulkActionRemind, ids).
			Return(&service.BulkPreview{Eligible: 2}, nil)

		w := s.doJSON(r, http.MethodPost, "/assignments/bulk/remind",
			BulkRequest{PolicyID: s.policyID.String(), IDs: rawIDs, DryRun: true})
		s.Equal(http.StatusOK, w.Code)

		var resp BulkResponse
		s.decode(w, &resp)
		s.Equal(2, resp.Eligible)
		s.True(resp.DryRun)
	})

	s.Run("unknown action is rejected", func() {
		r, _ := newTestRouter(s.T())
		w := s.doJSON(r, http.MethodPost, "/assignments/bulk/archive",
			BulkRequest{PolicyID: s.policyID.String(), IDs: rawIDs})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("malformed assignment id in the selection is rejected", func() {
		r, _ := newTestRouter(s.T())
		w := s.doJSON(r, http.MethodPost, "/assignments/bulk/remind",
			BulkRequest{PolicyID: s.policyID.String(), IDs: []string{"nope"}})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}
