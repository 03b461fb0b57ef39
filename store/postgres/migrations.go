package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the billpay store.
var Migrations = migrate.NewGroup("billpay")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_billpay_invoices",
			Version: "20240301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billpay_invoices (
    id            TEXT PRIMARY KEY,
    subscriber_no TEXT NOT NULL,
    month         TEXT NOT NULL,
    amount        TEXT NOT NULL DEFAULT '0',
    amount_paid   TEXT,
    status        TEXT NOT NULL DEFAULT '',
    paid_at       TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_billpay_invoices_key ON billpay_invoices (subscriber_no, month);
CREATE INDEX IF NOT EXISTS idx_billpay_invoices_status ON billpay_invoices (subscriber_no, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billpay_invoices`)
				return err
			},
		},
	)
}
