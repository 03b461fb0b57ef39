package billpay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billpay/invoice"
	"github.com/xraph/billpay/plugin"
	"github.com/xraph/billpay/store"
)

// Pagination defaults applied when a caller passes a value below 1.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Ledger is the invoice engine. It owns the uniqueness and payment rules and
// serializes every mutation, so check-then-insert and read-modify-write
// sequences are atomic.
type Ledger struct {
	mu      sync.RWMutex
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	now     func() time.Time

	autoMigrate bool
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:       s,
		plugins:     plugin.NewRegistry(),
		logger:      slog.Default(),
		now:         time.Now,
		autoMigrate: true,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		if err := l.plugins.Register(p); err != nil {
			l.logger.Warn("plugin registration skipped", "plugin", p.Name(), "error", err)
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithPluginTimeout bounds each plugin hook call. Defaults to
// plugin.DefaultTimeout.
func WithPluginTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.plugins.WithTimeout(d)
	}
}

// WithAutoMigrate controls whether Start migrates the store. Defaults to true.
func WithAutoMigrate(enabled bool) Option {
	return func(l *Ledger) {
		l.autoMigrate = enabled
	}
}

// Plugins exposes the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if l.autoMigrate {
		if err := l.store.Migrate(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
		}
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("billpay ledger started",
		"plugins", l.plugins.Count(),
		"auto_migrate", l.autoMigrate,
	)

	return nil
}

// Stop notifies plugins and closes the store.
func (l *Ledger) Stop() error {
	l.plugins.EmitShutdown(context.Background())

	return l.store.Close()
}

// Ping reports whether the backing store is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// FindInvoice returns the invoice for subscriberNo and month.
func (l *Ledger) FindInvoice(ctx context.Context, subscriberNo, month string) (*invoice.Invoice, error) {
	if err := required("subscriberNo", subscriberNo, "month", month); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.store.GetInvoiceByKey(ctx, subscriberNo, month)
}

// FindInvoicesPage returns one page of the invoices matching subscriberNo and
// month. Page and pageSize below 1 fall back to DefaultPage and
// DefaultPageSize. An empty page is reported as ErrInvoiceNotFound.
func (l *Ledger) FindInvoicesPage(ctx context.Context, subscriberNo, month string, page, pageSize int) ([]*invoice.Invoice, error) {
	if err := required("subscriberNo", subscriberNo, "month", month); err != nil {
		return nil, err
	}
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page-1 > math.MaxInt/pageSize {
		return nil, ErrInvoiceNotFound
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	invs, err := l.store.ListInvoices(ctx, invoice.ListOpts{
		SubscriberNo: subscriberNo,
		Month:        month,
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, ErrInvoiceNotFound
	}
	return invs, nil
}

// FindUnpaid returns every invoice of subscriberNo that is not fully paid.
func (l *Ledger) FindUnpaid(ctx context.Context, subscriberNo string) ([]*invoice.Invoice, error) {
	if err := required("subscriberNo", subscriberNo); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	invs, err := l.store.ListInvoices(ctx, invoice.ListOpts{
		SubscriberNo: subscriberNo,
		Unpaid:       true,
	})
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, ErrInvoiceNotFound
	}
	return invs, nil
}

// ──────────────────────────────────────────────────
// Mutations
// ──────────────────────────────────────────────────

// Pay records a payment against the invoice for subscriberNo and month and
// returns the updated invoice. See invoice.Invoice.ApplyPayment for the
// settlement rule.
func (l *Ledger) Pay(ctx context.Context, subscriberNo, month string, amountPaid decimal.Decimal) (*invoice.Invoice, error) {
	if err := required("subscriberNo", subscriberNo, "month", month); err != nil {
		return nil, err
	}
	if amountPaid.IsZero() {
		return nil, ValidationError{Field: "amountPaid", Message: "is required"}
	}
	if amountPaid.IsNegative() {
		return nil, fmt.Errorf("%w: amountPaid %s", ErrInvalidAmount, amountPaid)
	}

	inv, err := l.pay(ctx, subscriberNo, month, amountPaid)
	if err != nil {
		return nil, err
	}

	if inv.Status.IsPaid() {
		l.plugins.EmitInvoicePaid(ctx, inv)
	} else {
		l.plugins.EmitInvoicePartiallyPaid(ctx, inv)
	}

	l.logger.Debug("payment recorded",
		"invoice_id", inv.ID.String(),
		"status", inv.Status.String(),
		"amount_paid", amountPaid.String(),
	)

	return inv, nil
}

func (l *Ledger) pay(ctx context.Context, subscriberNo, month string, amountPaid decimal.Decimal) (*invoice.Invoice, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inv, err := l.store.GetInvoiceByKey(ctx, subscriberNo, month)
	if err != nil {
		return nil, err
	}

	inv.ApplyPayment(amountPaid, l.now())

	if err := l.store.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// AddInvoice creates the invoice for subscriberNo and month with the given
// total. A second invoice for the same key is rejected with
// ErrDuplicateInvoice.
func (l *Ledger) AddInvoice(ctx context.Context, subscriberNo, month string, total decimal.Decimal) (*invoice.Invoice, error) {
	if err := required("subscriberNo", subscriberNo, "month", month); err != nil {
		return nil, err
	}

	l.mu.Lock()
	inv, err := l.add(ctx, subscriberNo, month, total)
	l.mu.Unlock()

	if errors.Is(err, ErrDuplicateInvoice) {
		l.plugins.EmitInvoiceDuplicate(ctx, subscriberNo, month)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	l.plugins.EmitInvoiceCreated(ctx, inv)
	return inv, nil
}

// add must be called with l.mu held.
func (l *Ledger) add(ctx context.Context, subscriberNo, month string, total decimal.Decimal) (*invoice.Invoice, error) {
	_, err := l.store.GetInvoiceByKey(ctx, subscriberNo, month)
	switch {
	case err == nil:
		return nil, ErrDuplicateInvoice
	case !errors.Is(err, ErrInvoiceNotFound):
		return nil, err
	}

	inv := invoice.New(subscriberNo, month, total, l.now())
	if err := l.store.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Seed inserts the given invoices, skipping any whose key already exists, and
// returns how many were inserted. Only SubscriberNo, Month and Amount of each
// entry are used.
func (l *Ledger) Seed(ctx context.Context, invs []*invoice.Invoice) (int, error) {
	var (
		created []*invoice.Invoice
		errs    MultiError
	)

	l.mu.Lock()
	for _, draft := range invs {
		if err := required("subscriberNo", draft.SubscriberNo, "month", draft.Month); err != nil {
			errs.Add(err)
			continue
		}
		inv, err := l.add(ctx, draft.SubscriberNo, draft.Month, draft.Amount)
		if errors.Is(err, ErrDuplicateInvoice) {
			continue
		}
		if err != nil {
			errs.Add(fmt.Errorf("seed %s: %w", draft.Key(), err))
			continue
		}
		created = append(created, inv)
	}
	l.mu.Unlock()

	for _, inv := range created {
		l.plugins.EmitInvoiceCreated(ctx, inv)
	}

	l.logger.Info("billpay ledger seeded",
		"inserted", len(created),
		"skipped", len(invs)-len(created)-len(errs.Errors),
	)

	return len(created), errs.ErrorOrNil()
}

// required takes field/value pairs and reports the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return ValidationError{Field: pairs[i], Message: "is required"}
		}
	}
	return nil
}
