package billpay_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/billpay"
	"github.com/xraph/billpay/store/memory"
)

// TestDocumentationExamples verifies that the package documentation examples work.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		l := billpay.New(memory.New(), billpay.WithLogger(slog.Default()))

		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		inv, err := l.AddInvoice(ctx, "1234567890", "2024-03", decimal.NewFromInt(50))
		if err != nil {
			t.Fatal(err)
		}
		if inv.ID.IsNil() {
			t.Error("expected an ID to be assigned")
		}
	})
}

func Example() {
	ctx := context.Background()
	l := billpay.New(memory.New())
	if err := l.Start(ctx); err != nil {
		panic(err)
	}
	defer l.Stop()

	if _, err := l.AddInvoice(ctx, "1234567890", "2024-03", decimal.NewFromInt(50)); err != nil {
		panic(err)
	}

	inv, _ := l.Pay(ctx, "1234567890", "2024-03", decimal.NewFromInt(30))
	fmt.Println(inv.Status, inv.AmountPaid)

	inv, _ = l.Pay(ctx, "1234567890", "2024-03", decimal.NewFromInt(80))
	fmt.Println(inv.Status, inv.AmountPaid)

	// Output:
	// PARTIALLY_PAID 30
	// PAID 50
}
