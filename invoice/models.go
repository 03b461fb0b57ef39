package invoice

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billpay/id"
	"github.com/xraph/billpay/types"
)

type Status string

const (
	// StatusUnset is the status of an invoice that has never been paid.
	// It is omitted from JSON.
	StatusUnset         Status = ""
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
)

func (s Status) String() string {
	if s == StatusUnset {
		return "UNSET"
	}
	return string(s)
}

func (s Status) IsPaid() bool { return s == StatusPaid }

type Invoice struct {
	types.Entity
	ID           id.InvoiceID     `json:"id"`
	SubscriberNo string           `json:"subscriberNo"`
	Month        string           `json:"month"`
	Amount       decimal.Decimal  `json:"amount"`
	AmountPaid   *decimal.Decimal `json:"amountPaid,omitempty"`
	Status       Status           `json:"status,omitempty"`
	PaidAt       *time.Time       `json:"paidAt,omitempty"`
}

// Key identifies an invoice by subscriber and billing month. At most one
// invoice exists per key.
type Key struct {
	SubscriberNo string
	Month        string
}

func (k Key) String() string { return k.SubscriberNo + "/" + k.Month }

// New builds an unpaid invoice stamped at the given time.
func New(subscriberNo, month string, amount decimal.Decimal, at time.Time) *Invoice {
	return &Invoice{
		Entity:       types.NewEntity(at),
		ID:           id.NewInvoiceID(),
		SubscriberNo: subscriberNo,
		Month:        month,
		Amount:       amount,
	}
}

func (inv *Invoice) Key() Key {
	return Key{SubscriberNo: inv.SubscriberNo, Month: inv.Month}
}

// ApplyPayment records a payment of amount against the invoice. A payment
// that covers the invoice amount settles it, with the recorded amount capped
// at the invoice amount; anything less leaves it partially paid with the
// submitted value. Each payment replaces the previous one.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal, at time.Time) {
	at = at.UTC()
	if amount.GreaterThanOrEqual(inv.Amount) {
		paid := inv.Amount
		inv.AmountPaid = &paid
		inv.Status = StatusPaid
		inv.PaidAt = &at
	} else {
		paid := amount
		inv.AmountPaid = &paid
		inv.Status = StatusPartiallyPaid
		inv.PaidAt = nil
	}
	inv.Touch(at)
}

// MarshalJSON encodes amounts as JSON numbers.
func (inv Invoice) MarshalJSON() ([]byte, error) {
	type plain Invoice
	out := struct {
		plain
		Amount     json.Number  `json:"amount"`
		AmountPaid *json.Number `json:"amountPaid,omitempty"`
	}{
		plain:  plain(inv),
		Amount: json.Number(inv.Amount.String()),
	}
	if inv.AmountPaid != nil {
		paid := json.Number(inv.AmountPaid.String())
		out.AmountPaid = &paid
	}
	return json.Marshal(out)
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	if inv.AmountPaid != nil {
		paid := *inv.AmountPaid
		c.AmountPaid = &paid
	}
	if inv.PaidAt != nil {
		at := *inv.PaidAt
		c.PaidAt = &at
	}
	return &c
}
