// Package postgres persists billpay invoices in PostgreSQL via Grove.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/billpay"
	"github.com/xraph/billpay/invoice"
	billpaystore "github.com/xraph/billpay/store"
)

// compile-time interface check
var _ billpaystore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("billpay/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("billpay/postgres: migration failed: %w", err)
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
	_, err := s.pg.NewInsert(toInvoiceModel(inv)).Exec(ctx)
	if isUniqueViolation(err) {
		return billpay.ErrDuplicateInvoice
	}
	return err
}

func (s *Store) GetInvoiceByKey(ctx context.Context, subscriberNo, month string) (*invoice.Invoice, error) {
	m := new(invoiceModel)
	err := s.pg.NewSelect(m).
		Where("subscriber_no = $1", subscriberNo).
		Where("month = $2", month).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, billpay.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("billpay/postgres: get invoice: %w", err)
	}
	return fromInvoiceModel(m)
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	q := s.pg.NewSelect(&models).Where("subscriber_no = $1", opts.SubscriberNo)

	argIdx := 1
	if opts.Month != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("month = $%d", argIdx), opts.Month)
	}
	if opts.Unpaid {
		argIdx++
		q = q.Where(fmt.Sprintf("status <> $%d", argIdx), string(invoice.StatusPaid))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC, id ASC")

	if err := q.Scan(ctx); err != nil {
		if isNoRows(err) {
			return []*invoice.Invoice{}, nil
		}
		return nil, fmt.Errorf("billpay/postgres: list invoices: %w", err)
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
	res, err := s.pg.NewUpdate(toInvoiceModel(inv)).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return billpay.ErrDuplicateInvoice
		}
		return fmt.Errorf("billpay/postgres: update invoice: %w", err)
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

// isUniqueViolation reports a unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key value")
}
