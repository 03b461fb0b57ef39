package extension

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xraph/billpay/store/memory"
)

func TestMergeWithDefaults(t *testing.T) {
	e := &Extension{}

	cfg := e.mergeWithDefaults(Config{})
	assert.Equal(t, 5*time.Second, cfg.PluginTimeout)

	cfg = e.mergeWithDefaults(Config{PluginTimeout: time.Second})
	assert.Equal(t, time.Second, cfg.PluginTimeout)
}

func TestMergeConfigurations(t *testing.T) {
	e := &Extension{}

	fromFile := Config{SeedFile: "file.yaml"}
	programmatic := Config{
		DisableSeed:   true,
		SeedFile:      "code.yaml",
		PluginTimeout: 2 * time.Second,
	}

	cfg := e.mergeConfigurations(fromFile, programmatic)
	assert.True(t, cfg.DisableSeed, "programmatic flags win when set")
	assert.False(t, cfg.DisableMigrate)
	assert.Equal(t, "file.yaml", cfg.SeedFile, "file values take precedence")
	assert.Equal(t, 2*time.Second, cfg.PluginTimeout, "programmatic values fill gaps")
}

func TestOptions(t *testing.T) {
	s := memory.New()
	e := &Extension{}
	for _, opt := range []Option{
		WithStore(s),
		WithDisableMigrate(),
		WithDisableSeed(),
		WithSeedFile("seed.yaml"),
		WithPluginTimeout(time.Second),
		WithRequireConfig(true),
	} {
		opt(e)
	}

	assert.Same(t, s, e.store)
	assert.True(t, e.config.DisableMigrate)
	assert.True(t, e.config.DisableSeed)
	assert.Equal(t, "seed.yaml", e.config.SeedFile)
	assert.Equal(t, time.Second, e.config.PluginTimeout)
	assert.True(t, e.config.RequireConfig)

	// auto-migrate + plugin timeout
	assert.Len(t, e.buildLedgerOpts(), 2)
}
