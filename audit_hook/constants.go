package audithook

// Action constants for audit events.
const (
	ActionInvoiceCreated       = "invoice.created"
	ActionInvoiceDuplicate     = "invoice.duplicate_rejected"
	ActionInvoicePaid          = "invoice.paid"
	ActionInvoicePartiallyPaid = "invoice.partially_paid"
)

// Resource constants for audit events.
const (
	ResourceInvoice = "invoice"
)

// Category constants for audit events.
const (
	CategoryBilling = "billing"
	CategoryPayment = "payment"
)

// Severity levels for audit events.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
