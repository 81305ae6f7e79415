package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestSaveAndLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "desk.yaml")

	cfg := Default()
	cfg.Owner = "research"
	cfg.Signal.BullishThreshold = 0.5
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "research", loaded.Owner)
	assert.Equal(t, 0.5, loaded.Signal.BullishThreshold)
	assert.Equal(t, cfg.Journal.DBPath, loaded.Journal.DBPath)
	assert.Equal(t, cfg.Sweep.MaxVetoPct, loaded.Sweep.MaxVetoPct)
}

func TestSaveAndLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "desk.json")

	cfg := Default()
	cfg.Backtest.TransactionCostBps = 8
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8.0, loaded.Backtest.TransactionCostBps)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: intraday\n"), 0644))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "intraday", loaded.Owner)
	assert.Equal(t, Default().Signal.BullishThreshold, loaded.Signal.BullishThreshold)
	assert.Equal(t, Default().Journal.DBPath, loaded.Journal.DBPath)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not parseable"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty db path", func(c *Config) { c.Journal.DBPath = "" }},
		{"non-positive bullish", func(c *Config) { c.Signal.BullishThreshold = 0 }},
		{"non-negative bearish", func(c *Config) { c.Signal.BearishThreshold = 0.1 }},
		{"non-positive strong move", func(c *Config) { c.Signal.StrongMoveThreshold = -1 }},
		{"missing model version", func(c *Config) { c.Signal.ModelVersion = "" }},
		{"negative friction", func(c *Config) { c.Backtest.SlippageBps = -1 }},
		{"zero annualization", func(c *Config) { c.Backtest.AnnualizationFactor = 0 }},
		{"veto pct out of range", func(c *Config) { c.Sweep.MaxVetoPct = 150 }},
		{"zero top k", func(c *Config) { c.Sweep.TopK = 0 }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
