// Package plugin provides hook points into the billpay invoice lifecycle.
// Plugins implement any subset of the hook interfaces below; the Registry
// discovers them by type assertion at registration time.
package plugin

import (
	"context"

	"github.com/xraph/billpay/invoice"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called once the engine has started.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the engine is stopping.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated is called after an invoice has been added.
type OnInvoiceCreated interface {
	Plugin
	OnInvoiceCreated(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoicePaid is called after a payment settles an invoice.
type OnInvoicePaid interface {
	Plugin
	OnInvoicePaid(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoicePartiallyPaid is called after a payment that does not cover the
// invoice amount.
type OnInvoicePartiallyPaid interface {
	Plugin
	OnInvoicePartiallyPaid(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoiceDuplicate is called when an add is rejected because the
// subscriber already has an invoice for the month.
type OnInvoiceDuplicate interface {
	Plugin
	OnInvoiceDuplicate(ctx context.Context, subscriberNo, month string) error
}
