package extension

import (
	"time"

	"github.com/xraph/billpay"
	"github.com/xraph/billpay/plugin"
	"github.com/xraph/billpay/store"
)

// Option configures the billpay Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes a billpay.Option through to the underlying engine.
func WithLedgerOption(opt billpay.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a billpay plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, billpay.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithDisableSeed skips seeding on start.
func WithDisableSeed() Option {
	return func(e *Extension) { e.config.DisableSeed = true }
}

// WithSeedFile seeds from a YAML file instead of the built-in invoices.
func WithSeedFile(path string) Option {
	return func(e *Extension) { e.config.SeedFile = path }
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.PluginTimeout = d }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
