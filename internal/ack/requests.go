package ack

import (
	"strings"

	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

// LoadedRequest reports the native renderer's successful load.
type LoadedRequest struct {
	PageCount int `json:"page_count"`
}

func (r *LoadedRequest) Validate() error {
	if r == nil || r.PageCount < 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "page_count must be at least 1")
	}
	return nil
}

// PageRequest reports the currently displayed page changing.
type PageRequest struct {
	Page int `json:"page"`
}

func (r *PageRequest) Validate() error {
	if r == nil || r.Page < 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "page must be at least 1")
	}
	return nil
}

// AcknowledgeRequest is the recipient's acknowledgment submission. The
// session must belong to the same assignment as the token and must have
// reached confirmed.
type AcknowledgeRequest struct {
	SessionID      string `json:"session_id"`
	Method         string `json:"method"`
	TypedSignature string `json:"typed_signature"`

	parsedSessionID id.SessionID
}

func (r *AcknowledgeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	sessionID, err := id.ParseSessionID(strings.TrimSpace(r.SessionID))
	if err != nil {
		return err
	}
	r.parsedSessionID = sessionID

	r.Method = strings.TrimSpace(r.Method)
	if r.Method == "" {
		r.Method = "oneclick"
	}
	if r.Method != "oneclick" && r.Method != "typed" {
		return dErrors.New(dErrors.CodeInvalidInput, "method must be oneclick or typed")
	}
	r.TypedSignature = strings.TrimSpace(r.TypedSignature)
	return nil
}

// ParsedSessionID returns the validated session ID.
func (r *AcknowledgeRequest) ParsedSessionID() id.SessionID {
	return r.parsedSessionID
}
