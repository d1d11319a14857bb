// Package bulk executes one action over the eligible subset of a user
// selection. Execution is deliberately sequential: one awaited call per
// record, so a batch never bursts the backend, and one record's failure
// never aborts the rest.
package bulk

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"attest/internal/assignment"
	id "attest/pkg/domain"
)

// Action performs the per-record operation for a batch.
type Action func(ctx context.Context, rec *assignment.Record) error

// Outcome reports how a batch went. Failures are accumulated, not thrown.
type Outcome struct {
	Eligible  int
	Succeeded int
	Failed    []id.AssignmentID
}

// NoOp reports whether the batch had nothing eligible to act on. Callers must
// surface this rather than silently sending zero requests.
func (o Outcome) NoOp() bool { return o.Eligible == 0 }

// Eligible filters records down to those that are both selected and pass the
// eligibility predicate, preserving the source list order so execution is
// stable and repeatable.
func Eligible(records []*assignment.Record, selection Selection, predicate func(*assignment.Record) bool) []*assignment.Record {
	var out []*assignment.Record
	for _, rec := range records {
		if selection.Contains(rec.ID) && predicate(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Run executes the action over the eligible records, one at a time in order.
// It is a fold, not exception-based control flow: every record is attempted,
// failures are collected into the outcome, and the batch always runs to
// completion of the eligible set.
func Run(ctx context.Context, eligible []*assignment.Record, action Action) Outcome {
	ctx, span := otel.Tracer("attest/bulk").Start(ctx, "bulk.run")
	defer span.End()

	outcome := Outcome{Eligible: len(eligible)}
	for _, rec := range eligible {
		if err := action(ctx, rec); err != nil {
			outcome.Failed = append(outcome.Failed, rec.ID)
			continue
		}
		outcome.Succeeded++
	}
	span.SetAttributes(
		attribute.Int("bulk.eligible", outcome.Eligible),
		attribute.Int("bulk.succeeded", outcome.Succeeded),
		attribute.Int("bulk.failed", len(outcome.Failed)),
	)
	return outcome
}
