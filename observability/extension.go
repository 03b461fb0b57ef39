// Package observability provides a metrics plugin for billpay that counts
// invoice lifecycle events through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/billpay/invoice"
	"github.com/xraph/billpay/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCreated       = (*MetricsExtension)(nil)
	_ plugin.OnInvoicePaid          = (*MetricsExtension)(nil)
	_ plugin.OnInvoicePartiallyPaid = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDuplicate     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records invoice lifecycle metrics.
// Register it as a billpay plugin to track them automatically.
type MetricsExtension struct {
	factory MetricFactory

	InvoiceCreated       Counter
	InvoiceDuplicate     Counter
	InvoicePaid          Counter
	InvoicePartiallyPaid Counter

	// InvoiceAmount observes the amount of each created invoice.
	InvoiceAmount Histogram
	// PaymentAmount observes the recorded amountPaid of each payment.
	PaymentAmount Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		InvoiceCreated:       factory.Counter("billpay.invoice.created"),
		InvoiceDuplicate:     factory.Counter("billpay.invoice.duplicate_rejected"),
		InvoicePaid:          factory.Counter("billpay.invoice.paid"),
		InvoicePartiallyPaid: factory.Counter("billpay.invoice.partially_paid"),

		InvoiceAmount: factory.Histogram("billpay.invoice.amount"),
		PaymentAmount: factory.Histogram("billpay.payment.amount"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	return nil
}

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (m *MetricsExtension) OnInvoiceCreated(_ context.Context, inv *invoice.Invoice) error {
	m.InvoiceCreated.Inc()
	m.InvoiceAmount.Observe(inv.Amount.InexactFloat64())
	return nil
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (m *MetricsExtension) OnInvoicePaid(_ context.Context, inv *invoice.Invoice) error {
	m.InvoicePaid.Inc()
	m.observePayment(inv)
	return nil
}

// OnInvoicePartiallyPaid implements plugin.OnInvoicePartiallyPaid.
func (m *MetricsExtension) OnInvoicePartiallyPaid(_ context.Context, inv *invoice.Invoice) error {
	m.InvoicePartiallyPaid.Inc()
	m.observePayment(inv)
	return nil
}

// OnInvoiceDuplicate implements plugin.OnInvoiceDuplicate.
func (m *MetricsExtension) OnInvoiceDuplicate(_ context.Context, _, _ string) error {
	m.InvoiceDuplicate.Inc()
	return nil
}

func (m *MetricsExtension) observePayment(inv *invoice.Invoice) {
	if inv.AmountPaid != nil {
		m.PaymentAmount.Observe(inv.AmountPaid.InexactFloat64())
	}
}
