// Package store defines the composite persistence interface used by the
// billpay engine. Backends live in sub-packages: memory, sqlite, postgres
// and mongo.
package store

import (
	"context"

	"github.com/xraph/billpay/invoice"
)

// Store is the unified storage interface for billpay.
type Store interface {
	invoice.Store

	// Migrate prepares the backend schema. It is idempotent.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
