package tui

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xraph/billpay/invoice"
)

func TestRenderSeed(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	paid := invoice.New("0987654321", "2024-03", decimal.NewFromInt(75), at)
	paid.ApplyPayment(decimal.NewFromInt(75), at)

	out := RenderSeed([]*invoice.Invoice{
		invoice.New("1234567890", "2024-03", decimal.NewFromInt(50), at),
		paid,
	})

	assert.Contains(t, out, "(2 invoices)")
	assert.Contains(t, out, "SUBSCRIBER")
	assert.Contains(t, out, "1234567890")
	assert.Contains(t, out, "50.00")
	assert.Contains(t, out, "75.00")
	assert.Contains(t, out, "UNSET")
	assert.Contains(t, out, "PAID")
}

func TestRenderSeedEmpty(t *testing.T) {
	out := RenderSeed(nil)
	assert.Contains(t, out, "(0 invoices)")
	assert.Contains(t, out, "no invoices")
	assert.NotContains(t, out, "SUBSCRIBER")
}
