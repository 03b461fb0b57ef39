// Package extension provides the Forge extension adapter for billpay.
//
// It integrates the invoice ledger into a Forge application with DI
// registration and lifecycle management. Configuration can be provided
// programmatically via Option functions or via YAML configuration files
// under "extensions.billpay" or "billpay" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/billpay"
	"github.com/xraph/billpay/seed"
	"github.com/xraph/billpay/store"
	"github.com/xraph/billpay/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "billpay"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Invoice ledger for bill payments"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the billpay Ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *billpay.Ledger
	store      store.Store
	ledgerOpts []billpay.Option
}

// New creates a new billpay Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *billpay.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		e.store = memory.New()
	}

	e.engine = billpay.New(e.store, e.buildLedgerOpts()...)

	return vessel.Provide(fapp.Container(), func() (*billpay.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension]. It starts the engine and loads the
// seed invoices unless seeding is disabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("billpay: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	if !e.config.DisableSeed {
		invs, err := seed.Resolve(e.config.SeedFile)
		if err != nil {
			return fmt.Errorf("billpay: load seed: %w", err)
		}
		n, err := e.engine.Seed(ctx, invs)
		if err != nil {
			return fmt.Errorf("billpay: seed: %w", err)
		}
		e.Logger().Debug("billpay: seeded invoices", forge.F("inserted", n))
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("billpay: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildLedgerOpts constructs billpay.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []billpay.Option {
	opts := make([]billpay.Option, 0, len(e.ledgerOpts)+2)

	opts = append(opts, billpay.WithAutoMigrate(!e.config.DisableMigrate))
	if e.config.PluginTimeout > 0 {
		opts = append(opts, billpay.WithPluginTimeout(e.config.PluginTimeout))
	}

	// Pass-through options go last so callers can override the above.
	return append(opts, e.ledgerOpts...)
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("billpay: configuration is required but not found in config files; " +
				"ensure 'extensions.billpay' or 'billpay' key exists in your config")
		}
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("billpay: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("disable_seed", e.config.DisableSeed),
		forge.F("seed_file", e.config.SeedFile),
		forge.F("plugin_timeout", e.config.PluginTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.billpay", "billpay"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("billpay: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("billpay: loaded config from file", forge.F("key", key))
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = DefaultConfig().PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic bool flags and values fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.DisableSeed {
		yamlConfig.DisableSeed = true
	}
	if yamlConfig.SeedFile == "" && programmaticConfig.SeedFile != "" {
		yamlConfig.SeedFile = programmaticConfig.SeedFile
	}
	if yamlConfig.PluginTimeout == 0 && programmaticConfig.PluginTimeout != 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}
	return e.mergeWithDefaults(yamlConfig)
}
