package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/billpay/id"
	"github.com/xraph/billpay/invoice"
	"github.com/xraph/billpay/types"
)

// invoiceModel keeps amounts as Decimal128 so they stay exact and sortable
// server-side.
type invoiceModel struct {
	grove.BaseModel `grove:"table:billpay_invoices"`

	ID           string           `grove:"id,pk"         bson:"_id"`
	SubscriberNo string           `grove:"subscriber_no" bson:"subscriber_no"`
	Month        string           `grove:"month"         bson:"month"`
	Amount       bson.Decimal128  `grove:"amount"        bson:"amount"`
	AmountPaid   *bson.Decimal128 `grove:"amount_paid"   bson:"amount_paid,omitempty"`
	Status       string           `grove:"status"        bson:"status"`
	PaidAt       *time.Time       `grove:"paid_at"       bson:"paid_at,omitempty"`
	CreatedAt    time.Time        `grove:"created_at"    bson:"created_at"`
	UpdatedAt    time.Time        `grove:"updated_at"    bson:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) (*invoiceModel, error) {
	amount, err := bson.ParseDecimal128(inv.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("billpay/mongo: invoice %s amount: %w", inv.ID, err)
	}

	m := &invoiceModel{
		ID:           inv.ID.String(),
		SubscriberNo: inv.SubscriberNo,
		Month:        inv.Month,
		Amount:       amount,
		Status:       string(inv.Status),
		PaidAt:       inv.PaidAt,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
	if inv.AmountPaid != nil {
		paid, err := bson.ParseDecimal128(inv.AmountPaid.String())
		if err != nil {
			return nil, fmt.Errorf("billpay/mongo: invoice %s amount paid: %w", inv.ID, err)
		}
		m.AmountPaid = &paid
	}
	return m, nil
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	invID, err := id.ParseInvoiceID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(m.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("billpay/mongo: invoice %s amount: %w", m.ID, err)
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
		paid, err := decimal.NewFromString(m.AmountPaid.String())
		if err != nil {
			return nil, fmt.Errorf("billpay/mongo: invoice %s amount paid: %w", m.ID, err)
		}
		inv.AmountPaid = &paid
	}
	return inv, nil
}
