package billpay_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billpay"
	"github.com/xraph/billpay/invoice"
	"github.com/xraph/billpay/store/memory"
)

var fixedNow = time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type events struct {
	mu   sync.Mutex
	seen []string
}

func (e *events) Name() string { return "events" }

func (e *events) add(s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, s)
	return nil
}

func (e *events) OnInvoiceCreated(_ context.Context, inv *invoice.Invoice) error {
	return e.add("created " + inv.Key().String())
}

func (e *events) OnInvoicePaid(_ context.Context, inv *invoice.Invoice) error {
	return e.add("paid " + inv.Key().String())
}

func (e *events) OnInvoicePartiallyPaid(_ context.Context, inv *invoice.Invoice) error {
	return e.add("partial " + inv.Key().String())
}

func (e *events) OnInvoiceDuplicate(_ context.Context, subscriberNo, month string) error {
	return e.add("duplicate " + subscriberNo + "/" + month)
}

func newLedger(t *testing.T, opts ...billpay.Option) *billpay.Ledger {
	t.Helper()
	opts = append([]billpay.Option{billpay.WithClock(func() time.Time { return fixedNow })}, opts...)
	l := billpay.New(memory.New(), opts...)
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() { _ = l.Stop() })

	_, err := l.Seed(context.Background(), []*invoice.Invoice{
		{SubscriberNo: "1234567890", Month: "2024-03", Amount: d(50)},
		{SubscriberNo: "0987654321", Month: "2024-03", Amount: d(75)},
	})
	require.NoError(t, err)
	return l
}

func TestFindInvoice(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	inv, err := l.FindInvoice(ctx, "1234567890", "2024-03")
	require.NoError(t, err)
	assert.True(t, inv.Amount.Equal(d(50)))
	assert.Equal(t, invoice.StatusUnset, inv.Status)
	assert.Nil(t, inv.AmountPaid)
	assert.Equal(t, fixedNow, inv.CreatedAt)

	_, err = l.FindInvoice(ctx, "1234567890", "2024-04")
	assert.ErrorIs(t, err, billpay.ErrInvoiceNotFound)
	assert.True(t, billpay.IsNotFound(err))

	_, err = l.FindInvoice(ctx, "1234567890", "")
	assert.ErrorIs(t, err, billpay.ErrMissingParameter)

	var verr billpay.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "month", verr.Field)
}

func TestFindInvoicesPage(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	tests := []struct {
		name     string
		page     int
		pageSize int
		wantLen  int
		wantErr  error
	}{
		{"defaults", 0, 0, 1, nil},
		{"negative falls back", -3, -1, 1, nil},
		{"explicit first page", 1, 10, 1, nil},
		{"page past end", 2, 10, 0, billpay.ErrInvoiceNotFound},
		{"huge page does not overflow", math.MaxInt, 10, 0, billpay.ErrInvoiceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invs, err := l.FindInvoicesPage(ctx, "1234567890", "2024-03", tt.page, tt.pageSize)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, invs, tt.wantLen)
		})
	}

	_, err := l.FindInvoicesPage(ctx, "", "2024-03", 1, 10)
	assert.ErrorIs(t, err, billpay.ErrMissingParameter)
}

func TestFindUnpaid(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	_, err := l.AddInvoice(ctx, "1234567890", "2024-04", d(20))
	require.NoError(t, err)
	_, err = l.AddInvoice(ctx, "1234567890", "2024-05", d(20))
	require.NoError(t, err)

	_, err = l.Pay(ctx, "1234567890", "2024-04", d(20))
	require.NoError(t, err)
	_, err = l.Pay(ctx, "1234567890", "2024-05", d(5))
	require.NoError(t, err)

	unpaid, err := l.FindUnpaid(ctx, "1234567890")
	require.NoError(t, err)
	require.Len(t, unpaid, 2)
	assert.Equal(t, "2024-03", unpaid[0].Month)
	assert.Equal(t, "2024-05", unpaid[1].Month)
	assert.Equal(t, invoice.StatusPartiallyPaid, unpaid[1].Status)

	_, err = l.FindUnpaid(ctx, "5555555555")
	assert.ErrorIs(t, err, billpay.ErrInvoiceNotFound)

	_, err = l.FindUnpaid(ctx, "")
	assert.ErrorIs(t, err, billpay.ErrMissingParameter)
}

func TestFindUnpaidAllPaid(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	_, err := l.Pay(ctx, "0987654321", "2024-03", d(75))
	require.NoError(t, err)

	_, err = l.FindUnpaid(ctx, "0987654321")
	assert.ErrorIs(t, err, billpay.ErrInvoiceNotFound)
}

func TestPay(t *testing.T) {
	tests := []struct {
		name       string
		amount     decimal.Decimal
		wantStatus invoice.Status
		wantPaid   decimal.Decimal
		wantPaidAt bool
	}{
		{"partial", d(30), invoice.StatusPartiallyPaid, d(30), false},
		{"exact", d(50), invoice.StatusPaid, d(50), true},
		{"overpayment is capped", d(80), invoice.StatusPaid, d(50), true},
		{"fractional", decimal.RequireFromString("49.99"), invoice.StatusPartiallyPaid, decimal.RequireFromString("49.99"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l := newLedger(t)

			inv, err := l.Pay(ctx, "1234567890", "2024-03", tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, inv.Status)
			require.NotNil(t, inv.AmountPaid)
			assert.True(t, inv.AmountPaid.Equal(tt.wantPaid), "amountPaid %s", inv.AmountPaid)
			assert.Equal(t, tt.wantPaidAt, inv.PaidAt != nil)

			stored, err := l.FindInvoice(ctx, "1234567890", "2024-03")
			require.NoError(t, err)
			assert.Equal(t, inv.Status, stored.Status)
			assert.True(t, stored.Amount.Equal(d(50)), "amount is never changed by a payment")
		})
	}
}

func TestPayRejections(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	_, err := l.Pay(ctx, "1234567890", "2024-03", decimal.Zero)
	assert.ErrorIs(t, err, billpay.ErrMissingParameter)

	_, err = l.Pay(ctx, "1234567890", "2024-03", d(-5))
	assert.ErrorIs(t, err, billpay.ErrInvalidAmount)
	assert.True(t, billpay.IsBadRequest(err))

	_, err = l.Pay(ctx, "1234567890", "2025-01", d(5))
	assert.ErrorIs(t, err, billpay.ErrInvoiceNotFound)

	_, err = l.Pay(ctx, "", "2024-03", d(5))
	assert.ErrorIs(t, err, billpay.ErrMissingParameter)

	inv, err := l.FindInvoice(ctx, "1234567890", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusUnset, inv.Status, "rejected payments leave the invoice untouched")
}

func TestRepaymentIsReevaluated(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	inv, err := l.Pay(ctx, "1234567890", "2024-03", d(50))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, inv.Status)

	inv, err = l.Pay(ctx, "1234567890", "2024-03", d(10))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(d(10)))
	assert.Nil(t, inv.PaidAt)
}

func TestAddInvoice(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	inv, err := l.AddInvoice(ctx, "1234567890", "2024-04", d(60))
	require.NoError(t, err)
	assert.False(t, inv.ID.IsNil())
	assert.True(t, inv.Amount.Equal(d(60)))
	assert.Equal(t, invoice.StatusUnset, inv.Status)

	_, err = l.AddInvoice(ctx, "1234567890", "2024-04", d(99))
	assert.ErrorIs(t, err, billpay.ErrDuplicateInvoice)
	assert.True(t, billpay.IsConflict(err))

	found, err := l.FindInvoice(ctx, "1234567890", "2024-04")
	require.NoError(t, err)
	assert.True(t, found.Amount.Equal(d(60)), "duplicate leaves the original untouched")

	zero, err := l.AddInvoice(ctx, "1234567890", "2024-05", decimal.Decimal{})
	require.NoError(t, err)
	assert.True(t, zero.Amount.IsZero())

	_, err = l.AddInvoice(ctx, "", "2024-05", d(1))
	assert.ErrorIs(t, err, billpay.ErrMissingParameter)
}

func TestConcurrentAddCreatesOneInvoice(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.AddInvoice(ctx, "42", "2024-06", d(int64(i+1)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, billpay.ErrDuplicateInvoice):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	invs, err := l.FindInvoicesPage(ctx, "42", "2024-06", 1, 100)
	require.NoError(t, err)
	assert.Len(t, invs, 1)
}

func TestConcurrentPayments(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Pay(ctx, "1234567890", "2024-03", d(int64(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	inv, err := l.FindInvoice(ctx, "1234567890", "2024-03")
	require.NoError(t, err)
	require.NotNil(t, inv.AmountPaid)
	// Whichever payment landed last, the invoice is internally consistent.
	if inv.Status == invoice.StatusPaid {
		assert.True(t, inv.AmountPaid.Equal(d(50)))
	} else {
		assert.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
		assert.True(t, inv.AmountPaid.LessThan(d(50)))
	}
}

func TestSeedSkipsExisting(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	n, err := l.Seed(ctx, []*invoice.Invoice{
		{SubscriberNo: "1234567890", Month: "2024-03", Amount: d(1)},
		{SubscriberNo: "1234567890", Month: "2024-04", Amount: d(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	inv, err := l.FindInvoice(ctx, "1234567890", "2024-03")
	require.NoError(t, err)
	assert.True(t, inv.Amount.Equal(d(50)))

	n, err = l.Seed(ctx, []*invoice.Invoice{{SubscriberNo: "", Month: "2024-03"}})
	assert.ErrorIs(t, err, billpay.ErrMissingParameter)
	assert.Equal(t, 0, n)
}

func TestPluginEvents(t *testing.T) {
	ctx := context.Background()
	ev := &events{}
	l := newLedger(t, billpay.WithPlugin(ev))

	_, err := l.Pay(ctx, "1234567890", "2024-03", d(10))
	require.NoError(t, err)
	_, err = l.Pay(ctx, "1234567890", "2024-03", d(50))
	require.NoError(t, err)
	_, err = l.AddInvoice(ctx, "1234567890", "2024-03", d(1))
	require.Error(t, err)
	_, err = l.Pay(ctx, "1234567890", "1999-01", d(1))
	require.Error(t, err)

	assert.Equal(t, []string{
		"created 1234567890/2024-03",
		"created 0987654321/2024-03",
		"partial 1234567890/2024-03",
		"paid 1234567890/2024-03",
		"duplicate 1234567890/2024-03",
	}, ev.seen)
}

func TestStopClosesStore(t *testing.T) {
	ctx := context.Background()
	l := billpay.New(memory.New())
	require.NoError(t, l.Start(ctx))
	require.NoError(t, l.Ping(ctx))

	require.NoError(t, l.Stop())
	assert.ErrorIs(t, l.Ping(ctx), billpay.ErrStoreClosed)
}

type failingStore struct {
	*memory.Store
}

func (failingStore) Migrate(context.Context) error { return fmt.Errorf("disk full") }

func TestStartWrapsMigrationFailure(t *testing.T) {
	l := billpay.New(failingStore{memory.New()})
	assert.ErrorIs(t, l.Start(context.Background()), billpay.ErrMigrationFailed)

	l = billpay.New(failingStore{memory.New()}, billpay.WithAutoMigrate(false))
	assert.NoError(t, l.Start(context.Background()))
}
