package ack

import (
	"time"

	"attest/internal/assignment"
	"attest/internal/policy"
	"attest/internal/viewgate"
)

// PageResponse is the data the acknowledgment page needs to render.
type PageResponse struct {
	PolicyTitle           string     `json:"policy_title"`
	PolicyVersion         string     `json:"policy_version"`
	FileURL               string     `json:"file_url"`
	DueAt                 *time.Time `json:"due_at,omitempty"`
	RequireTypedSignature bool       `json:"require_typed_signature"`
	RecipientName         string     `json:"recipient_name"`
	RecipientEmail        string     `json:"recipient_email"`
	Status                string     `json:"status"`
}

func newPageResponse(rec *assignment.Record, pol *policy.Policy, now time.Time) *PageResponse {
	return &PageResponse{
		PolicyTitle:           pol.Title,
		PolicyVersion:         pol.Version,
		FileURL:               pol.FileURL,
		DueAt:                 rec.DueAt,
		RequireTypedSignature: pol.RequireTypedSignature,
		RecipientName:         rec.UserName,
		RecipientEmail:        rec.UserEmail,
		Status:                string(rec.EffectiveStatus(now)),
	}
}

// SessionResponse mirrors the gate state back to the viewer after every
// session event, so the client can enable its confirm control from
// confirm_enabled instead of tracking dwell itself.
type SessionResponse struct {
	SessionID      string `json:"session_id"`
	State          string `json:"state"`
	Strategy       string `json:"strategy"`
	TotalPages     int    `json:"total_pages,omitempty"`
	PagesViewed    int    `json:"pages_viewed"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Confirmed      bool   `json:"confirmed"`
	ConfirmEnabled bool   `json:"confirm_enabled"`
}

func newSessionResponse(snap viewgate.Snapshot) *SessionResponse {
	return &SessionResponse{
		SessionID:      snap.SessionID.String(),
		State:          string(snap.State),
		Strategy:       string(snap.Strategy),
		TotalPages:     snap.TotalPages,
		PagesViewed:    snap.PagesViewed,
		ElapsedSeconds: snap.ElapsedSeconds,
		Confirmed:      snap.Confirmed,
		ConfirmEnabled: snap.ConfirmEnabled,
	}
}

// AcknowledgeResponse confirms the terminal state to the recipient.
type AcknowledgeResponse struct {
	Status         string     `json:"status"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	DeclinedAt     *time.Time `json:"declined_at,omitempty"`
	HasReceipt     bool       `json:"has_receipt"`
}

func newAcknowledgeResponse(rec *assignment.Record) *AcknowledgeResponse {
	return &AcknowledgeResponse{
		Status:         string(rec.Status),
		AcknowledgedAt: rec.AcknowledgedAt,
		DeclinedAt:     rec.DeclinedAt,
		HasReceipt:     rec.HasReceipt,
	}
}
