package billpay

import "github.com/xraph/billpay/id"

// ID is the identifier type of billpay invoices.
type ID = id.ID
