package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-panel/internal/contracts"
)

func TestLoad(t *testing.T) {
	path := "../../config/policy/panel_v1.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("policy file not found")
	}

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)

	assert.Equal(t, "panel_v1", cfg.Meta.PolicyID)
	assert.Len(t, cfg.Styles.Enabled, 5)
	assert.Equal(t, 0.70, cfg.Aggregator.Bullish)
	assert.Equal(t, 20.0, cfg.Consensus.DividedSpread)

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Empty(t, Warn(cfg))
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "panel_default", cfg.Meta.PolicyID)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_UnknownFieldFails(t *testing.T) {
	data := []byte(`
meta:
  policy_id: typo
aggregator:
  bulish: 0.7
`)
	_, err := Parse(data)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"missing policy id", func(c *Config) { c.Meta.PolicyID = "" }, "meta.policy_id"},
		{"no styles", func(c *Config) { c.Styles.Enabled = nil }, "styles.enabled"},
		{"unknown style", func(c *Config) { c.Styles.Enabled = []contracts.Style{"macro"} }, "styles.enabled"},
		{"duplicate style", func(c *Config) {
			c.Styles.Enabled = []contracts.Style{contracts.StyleValue, contracts.StyleValue}
		}, "styles.enabled"},
		{"ratio out of range", func(c *Config) { c.Aggregator.Bullish = 1.5 }, "aggregator.bullish"},
		{"bearish above bullish", func(c *Config) { c.Aggregator.Bearish = 0.8 }, "aggregator"},
		{"strong not a majority", func(c *Config) { c.Consensus.Strong = 50 }, "consensus.strong"},
		{"moderate above strong", func(c *Config) { c.Consensus.Moderate = 80 }, "consensus.moderate"},
		{"negative spread", func(c *Config) { c.Consensus.DividedSpread = -1 }, "consensus.divided_spread"},
		{"zero price window", func(c *Config) { c.Fetch.PriceWindowDays = 0 }, "fetch.price_window_days"},
		{"tolerance out of range", func(c *Config) { c.Narrative.DisagreementTolerance = 101 }, "narrative.disagreement_tolerance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Styles.Enabled = []contracts.Style{contracts.StyleRisk}
	cfg.Aggregator.Bullish = 0.55
	cfg.Aggregator.Bearish = 0.45
	cfg.Fetch.PriceWindowDays = 10

	var codes []string
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []string{"FEW_STYLES", "NARROW_NEUTRAL_BAND", "SHORT_PRICE_WINDOW"}, codes)
}

func TestHash(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b, "same policy, same hash")

	changed := Default()
	changed.Consensus.Strong = 75
	c, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
