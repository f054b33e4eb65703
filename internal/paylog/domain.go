// Package paylog defines an append-only audit trail of payment-gateway
// interactions: every STK push attempt and every callback the gateway
// delivers becomes one immutable row.
//
// The log is pure observability. Nothing in the order flow reads it back,
// and there is deliberately no correlation between push rows and callback
// rows — the gateway callback carries no order identity in this system.
package paylog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Kind distinguishes the two gateway interactions that get audited.
type Kind string

const (
	KindSTKPush  Kind = "STK_PUSH"
	KindCallback Kind = "CALLBACK"
)

// Status is the outcome recorded for an entry.
type Status string

const (
	// StatusAccepted: the gateway took the push request.
	StatusAccepted Status = "ACCEPTED"
	// StatusFailed: the push attempt errored (config, network, or gateway).
	StatusFailed Status = "FAILED"
	// StatusReceived: a callback body arrived, valid JSON or not.
	StatusReceived Status = "RECEIVED"
)

// Entry is a single audit row.
type Entry struct {
	// SubmissionID ties the row to one storefront submission in the logs.
	// Empty for callback rows, which arrive without order identity.
	SubmissionID string

	Kind   Kind
	Status Status

	// Payload is the raw gateway response (push) or callback body.
	Payload string

	// Detail carries the failure description on FAILED rows.
	Detail string

	// TraceID and SpanID come from the OTel span active when the row was
	// written, so a row can be joined with the full request trace.
	TraceID string
	SpanID  string

	CreatedAt time.Time
}

// Repository is the port for persisting audit entries. A nil Repository
// means auditing is disabled; callers must treat Save failures as
// log-and-continue, never as request failures.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
}

// NewEntry builds an Entry with trace identifiers extracted from the
// active span in ctx. Without an active span (unit tests, tracing
// disabled) both identifiers are empty.
func NewEntry(ctx context.Context, submissionID string, kind Kind, status Status, payload, detail string) *Entry {
	e := &Entry{
		SubmissionID: submissionID,
		Kind:         kind,
		Status:       status,
		Payload:      payload,
		Detail:       detail,
		CreatedAt:    time.Now().UTC(),
	}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}

	return e
}
