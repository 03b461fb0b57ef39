package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billpay/invoice"
)

func TestInvoiceModelPreservesPayment(t *testing.T) {
	at := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	inv := invoice.New("1234567890", "2024-03", decimal.RequireFromString("50.10"), at)
	inv.ApplyPayment(decimal.RequireFromString("20.05"), at)

	m := toInvoiceModel(inv)
	assert.Equal(t, "50.1", m.Amount)
	require.NotNil(t, m.AmountPaid)
	assert.Equal(t, "20.05", *m.AmountPaid)
	assert.Equal(t, "PARTIALLY_PAID", m.Status)

	back, err := fromInvoiceModel(m)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, back.ID)
	assert.True(t, back.Amount.Equal(inv.Amount))
	assert.True(t, back.AmountPaid.Equal(*inv.AmountPaid))
	assert.Equal(t, inv.Status, back.Status)
}

func TestInvoiceModelUnpaid(t *testing.T) {
	inv := invoice.New("1", "2024-03", decimal.NewFromInt(75), time.Now())
	m := toInvoiceModel(inv)
	assert.Nil(t, m.AmountPaid)
	assert.Empty(t, m.Status)

	m.Amount = "abc"
	_, err := fromInvoiceModel(m)
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_billpay_invoices_key" (SQLSTATE 23505)`)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
