package billpay

import "github.com/xraph/billpay/invoice"

// Re-export common types so callers don't have to import the invoice package.

// Invoice is re-exported from the invoice package.
type Invoice = invoice.Invoice

// Status is re-exported from the invoice package.
type Status = invoice.Status

// Re-export invoice statuses.
const (
	StatusUnset         = invoice.StatusUnset
	StatusPartiallyPaid = invoice.StatusPartiallyPaid
	StatusPaid          = invoice.StatusPaid
)
