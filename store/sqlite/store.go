// Package sqlite persists billpay invoices in SQLite via Grove. It suits
// single-node deployments that need invoices to survive a restart.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/billpay"
	"github.com/xraph/billpay/invoice"
	billpaystore "github.com/xraph/billpay/store"
)

// compile-time interface check
var _ billpaystore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("billpay/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("billpay/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	_, err := s.sdb.NewInsert(toInvoiceModel(inv)).Exec(ctx)
	if isUniqueViolation(err) {
		return billpay.ErrDuplicateInvoice
	}
	return err
}

func (s *Store) GetInvoiceByKey(ctx context.Context, subscriberNo, month string) (*invoice.Invoice, error) {
	m := new(invoiceModel)
	err := s.sdb.NewSelect(m).
		Where("subscriber_no = ?", subscriberNo).
		Where("month = ?", month).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, billpay.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("billpay/sqlite: get invoice: %w", err)
	}
	return fromInvoiceModel(m)
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	q := s.sdb.NewSelect(&models).Where("subscriber_no = ?", opts.SubscriberNo)

	if opts.Month != "" {
		q = q.Where("month = ?", opts.Month)
	}
	if opts.Unpaid {
		q = q.Where("status <> ?", string(invoice.StatusPaid))
	}
	// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
	switch {
	case opts.Limit > 0:
		q = q.Limit(opts.Limit)
	case opts.Offset > 0:
		q = q.Limit(-1)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC, id ASC")

	if err := q.Scan(ctx); err != nil {
		if isNoRows(err) {
			return []*invoice.Invoice{}, nil
		}
		return nil, fmt.Errorf("billpay/sqlite: list invoices: %w", err)
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		inv, err := fromInvoiceModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = inv
	}
	return result, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	res, err := s.sdb.NewUpdate(toInvoiceModel(inv)).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return billpay.ErrDuplicateInvoice
		}
		return fmt.Errorf("billpay/sqlite: update invoice: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return billpay.ErrInvoiceNotFound
	}
	return nil
}

// ==================== Helpers ====================

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
