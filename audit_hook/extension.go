// Package audithook turns billpay invoice lifecycle events into audit
// records.
//
// It defines a local Recorder interface so callers choose the audit backend
// at wiring time; the billpay binary records to its structured log.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/billpay/invoice"
	"github.com/xraph/billpay/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnInvoiceCreated       = (*Extension)(nil)
	_ plugin.OnInvoicePaid          = (*Extension)(nil)
	_ plugin.OnInvoicePartiallyPaid = (*Extension)(nil)
	_ plugin.OnInvoiceDuplicate     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a single audit record.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resourceId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension records invoice lifecycle events through a Recorder.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (e *Extension) OnInvoiceCreated(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoiceCreated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryBilling, nil,
		"subscriber_no", inv.SubscriberNo,
		"month", inv.Month,
		"amount", inv.Amount.String(),
	)
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (e *Extension) OnInvoicePaid(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoicePaid, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryPayment, nil,
		paymentFields(inv)...,
	)
}

// OnInvoicePartiallyPaid implements plugin.OnInvoicePartiallyPaid.
func (e *Extension) OnInvoicePartiallyPaid(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoicePartiallyPaid, SeverityInfo, OutcomePartial,
		ResourceInvoice, inv.ID.String(), CategoryPayment, nil,
		paymentFields(inv)...,
	)
}

// OnInvoiceDuplicate implements plugin.OnInvoiceDuplicate.
func (e *Extension) OnInvoiceDuplicate(ctx context.Context, subscriberNo, month string) error {
	return e.record(ctx, ActionInvoiceDuplicate, SeverityWarning, OutcomeFailure,
		ResourceInvoice, "", CategoryBilling, nil,
		"subscriber_no", subscriberNo,
		"month", month,
	)
}

func paymentFields(inv *invoice.Invoice) []any {
	kv := []any{
		"subscriber_no", inv.SubscriberNo,
		"month", inv.Month,
		"amount", inv.Amount.String(),
		"status", inv.Status.String(),
	}
	if inv.AmountPaid != nil {
		kv = append(kv, "amount_paid", inv.AmountPaid.String())
	}
	return kv
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
