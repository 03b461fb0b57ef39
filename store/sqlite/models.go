package sqlite

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/billpay/id"
	"github.com/xraph/billpay/invoice"
	"github.com/xraph/billpay/types"
)

// invoiceModel stores amounts as decimal text so no precision is lost on
// the way through the driver.
type invoiceModel struct {
	grove.BaseModel `grove:"table:billpay_invoices"`

	ID           string     `grove:"id,pk"`
	SubscriberNo string     `grove:"subscriber_no"`
	Month        string     `grove:"month"`
	Amount       string     `grove:"amount"`
	AmountPaid   *string    `grove:"amount_paid"`
	Status       string     `grove:"status"`
	PaidAt       *time.Time `grove:"paid_at"`
	CreatedAt    time.Time  `grove:"created_at"`
	UpdatedAt    time.Time  `grove:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	m := &invoiceModel{
		ID:           inv.ID.String(),
		SubscriberNo: inv.SubscriberNo,
		Month:        inv.Month,
		Amount:       inv.Amount.String(),
		Status:       string(inv.Status),
		PaidAt:       inv.PaidAt,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
	if inv.AmountPaid != nil {
		paid := inv.AmountPaid.String()
		m.AmountPaid = &paid
	}
	return m
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	invID, err := id.ParseInvoiceID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("billpay/sqlite: invoice %s amount: %w", m.ID, err)
	}

	inv := &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           invID,
		SubscriberNo: m.SubscriberNo,
		Month:        m.Month,
		Amount:       amount,
		Status:       invoice.Status(m.Status),
		PaidAt:       m.PaidAt,
	}
	if m.AmountPaid != nil {
		paid, err := decimal.NewFromString(*m.AmountPaid)
		if err != nil {
			return nil, fmt.Errorf("billpay/sqlite: invoice %s amount paid: %w", m.ID, err)
		}
		inv.AmountPaid = &paid
	}
	return inv, nil
}
