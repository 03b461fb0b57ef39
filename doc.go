// Package billpay is an in-memory invoice ledger for a bill-payment service.
//
// Each invoice belongs to one subscriber and one billing month; at most one
// invoice exists per (subscriberNo, month). Invoices are created with
// AddInvoice, looked up with FindInvoice, FindInvoicesPage and FindUnpaid,
// and settled with Pay. There is no delete.
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/billpay"
//	    "github.com/xraph/billpay/store/memory"
//	)
//
//	l := billpay.New(memory.New())
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
//	inv, err := l.AddInvoice(ctx, "1234567890", "2024-03", decimal.NewFromInt(50))
//
// # Payments
//
// A payment at least equal to the invoice amount marks it PAID and records
// the invoice amount as paid. A smaller payment marks it PARTIALLY_PAID and
// records the submitted value. Payments replace each other; they do not
// accumulate.
//
// # Stores
//
// The memory store is the default. The sqlite, postgres and mongo stores
// persist the same model through Grove and migrate their schema on Start.
//
// # Plugins
//
// Plugins observe the invoice lifecycle (created, paid, partially paid,
// duplicate rejected). The audit_hook and observability packages ship
// ready-made plugins for audit trails and Prometheus metrics.
package billpay
