// Package mongo persists billpay invoices in MongoDB via Grove.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/billpay"
	"github.com/xraph/billpay/invoice"
	billpaystore "github.com/xraph/billpay/store"
)

// Collection name constants.
const (
	colInvoices = "billpay_invoices"
)

// compile-time interface check
var _ billpaystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all billpay collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("billpay/mongo: migrate %s indexes: %w", col, err)
		}
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
	m, err := toInvoiceModel(inv)
	if err != nil {
		return err
	}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return billpay.ErrDuplicateInvoice
		}
		return fmt.Errorf("billpay/mongo: create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoiceByKey(ctx context.Context, subscriberNo, month string) (*invoice.Invoice, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"subscriber_no": subscriberNo, "month": month}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billpay.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("billpay/mongo: get invoice: %w", err)
	}
	return fromInvoiceModel(&m)
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel

	q := s.mdb.NewFind(&models).
		Filter(listFilter(opts)).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		if isNoDocuments(err) {
			return []*invoice.Invoice{}, nil
		}
		return nil, fmt.Errorf("billpay/mongo: list invoices: %w", err)
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
	m, err := toInvoiceModel(inv)
	if err != nil {
		return err
	}

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billpay/mongo: update invoice: %w", err)
	}
	if res.MatchedCount() == 0 {
		return billpay.ErrInvoiceNotFound
	}
	return nil
}

// ==================== Helpers ====================

func listFilter(opts invoice.ListOpts) bson.M {
	filter := bson.M{"subscriber_no": opts.SubscriberNo}
	if opts.Month != "" {
		filter["month"] = opts.Month
	}
	if opts.Unpaid {
		filter["status"] = bson.M{"$ne": string(invoice.StatusPaid)}
	}
	return filter
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all billpay collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colInvoices: {
			{
				Keys:    bson.D{{Key: "subscriber_no", Value: 1}, {Key: "month", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "subscriber_no", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "subscriber_no", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
}
