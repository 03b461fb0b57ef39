package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/billpay/invoice"
)

func TestInvoiceModelUsesDecimal128(t *testing.T) {
	at := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	inv := invoice.New("1234567890", "2024-03", decimal.RequireFromString("50.25"), at)
	inv.ApplyPayment(decimal.RequireFromString("10.5"), at)

	m, err := toInvoiceModel(inv)
	require.NoError(t, err)
	assert.Equal(t, "50.25", m.Amount.String())
	require.NotNil(t, m.AmountPaid)
	assert.Equal(t, "10.5", m.AmountPaid.String())

	back, err := fromInvoiceModel(m)
	require.NoError(t, err)
	assert.True(t, back.Amount.Equal(inv.Amount))
	assert.True(t, back.AmountPaid.Equal(*inv.AmountPaid))
	assert.Equal(t, invoice.StatusPartiallyPaid, back.Status)
}

func TestListFilter(t *testing.T) {
	assert.Equal(t, bson.M{"subscriber_no": "1"}, listFilter(invoice.ListOpts{SubscriberNo: "1"}))
	assert.Equal(t,
		bson.M{"subscriber_no": "1", "month": "2024-03"},
		listFilter(invoice.ListOpts{SubscriberNo: "1", Month: "2024-03"}))
	assert.Equal(t,
		bson.M{"subscriber_no": "1", "status": bson.M{"$ne": "PAID"}},
		listFilter(invoice.ListOpts{SubscriberNo: "1", Unpaid: true}))
}

func TestMigrationIndexesEnforceKey(t *testing.T) {
	idx := migrationIndexes()[colInvoices]
	require.NotEmpty(t, idx)
	assert.Equal(t, bson.D{{Key: "subscriber_no", Value: 1}, {Key: "month", Value: 1}}, idx[0].Keys)
	assert.NotNil(t, idx[0].Options)
}
