package invoice

import (
	"context"
)

// Store persists invoices. Implementations hand out copies, reject a second
// invoice for an existing Key and list invoices in insertion order.
type Store interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoiceByKey(ctx context.Context, subscriberNo, month string) (*Invoice, error)
	ListInvoices(ctx context.Context, opts ListOpts) ([]*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
}

type ListOpts struct {
	SubscriberNo string
	// Month narrows the listing to one billing month when set.
	Month string
	// Unpaid excludes invoices whose status is PAID.
	Unpaid bool
	Limit  int
	Offset int
}
