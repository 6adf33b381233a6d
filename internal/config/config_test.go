package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
account:
  api_key: key
  api_secret: secret
  subaccount: lending
general:
  invest_ratio: 80
  apy_min: 2
  discount: 5
  allow_coin_conversion: true
  fiat_assets: [USD, USDT]
  ignore_assets: [FTT]
assets:
  USDT:
    discount: 0
    convert: [USD]
  BTC:
    rate: 4.5
    invest_ratio: 50
  ETH:
    ignore: true
tuning:
  pause_after_submit: 3s
schedule:
  interval: 2m
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "lending", cfg.Account.Subaccount)
	assert.Equal(t, 80.0, cfg.General.InvestRatio)
	assert.True(t, cfg.General.AllowCoinConversion)
	assert.Equal(t, 3*time.Second, cfg.Tuning.PauseAfterSubmit)
	assert.Equal(t, 2*time.Minute, cfg.Schedule.Interval)

	// defaults
	assert.Equal(t, 0.1, cfg.Tuning.RenewOfferTolerance)
	assert.Equal(t, 0.1, cfg.Tuning.MinAvailableLimitUSD)
	assert.Equal(t, int32(8), cfg.Tuning.LendPricePrecision)
	assert.Equal(t, 10, cfg.Schedule.ResetAfterCount)
	assert.Equal(t, "info", cfg.App.LogLevel)
}

func TestLoad_ExplicitZeroTuningIsKept(t *testing.T) {
	body := strings.Replace(sampleYAML, "  pause_after_submit: 3s", `  pause_after_submit: 0s
  renew_offer_tolerance: 0
  min_available_limit_usd: 0
  lend_price_precision: 0`, 1)
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Zero(t, cfg.Tuning.RenewOfferTolerance)
	assert.Zero(t, cfg.Tuning.MinAvailableLimitUSD)
	assert.Zero(t, cfg.Tuning.LendPricePrecision)
	assert.Zero(t, cfg.Tuning.PauseAfterSubmit)
	assert.Equal(t, time.Second, cfg.Tuning.PauseAfterCancel, "omitted keys keep their default")
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("FTX_API_KEY", "env-key")
	t.Setenv("FTX_API_SECRET", "env-secret")
	t.Setenv("INVEST_RATIO", "25")
	t.Setenv("INTERVAL_CHECK_MIN", "5")
	t.Setenv("IGNORE_ASSETS", "SRM, FTT")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-key", cfg.Account.APIKey)
	assert.Equal(t, 25.0, cfg.General.InvestRatio)
	assert.Equal(t, 5*time.Minute, cfg.Schedule.Interval)
	assert.Equal(t, []string{"SRM", "FTT"}, cfg.General.IgnoreAssets)
	assert.Equal(t, []string{"USD", "USDT", "USDC"}, cfg.General.FiatAssets)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "general: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	bad := 150.0
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing key", func(c *Config) { c.Account.APIKey = "" }},
		{"missing secret", func(c *Config) { c.Account.APISecret = "" }},
		{"invest ratio", func(c *Config) { c.General.InvestRatio = 120 }},
		{"negative apy", func(c *Config) { c.General.APYMin = -1 }},
		{"discount", func(c *Config) { c.General.Discount = 101 }},
		{"negative tolerance", func(c *Config) { c.Tuning.RenewOfferTolerance = -0.1 }},
		{"negative pause", func(c *Config) { c.Tuning.PauseAfterRenew = -time.Second }},
		{"asset invest ratio", func(c *Config) {
			c.Assets["BTC"] = AssetConfig{InvestRatio: &bad}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, sampleYAML))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestAsset_Resolver(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	usdt := cfg.Asset("USDT")
	assert.False(t, usdt.Ignore)
	assert.Nil(t, usdt.Rate)
	assert.Equal(t, 0.0, usdt.Discount, "override to zero must win over the generic discount")
	assert.Equal(t, 80.0, usdt.InvestRatio)
	assert.Equal(t, []string{"USD"}, usdt.Convert)

	btc := cfg.Asset("BTC")
	require.NotNil(t, btc.Rate)
	assert.Equal(t, 4.5, *btc.Rate)
	assert.Equal(t, 50.0, btc.InvestRatio)
	assert.Equal(t, 5.0, btc.Discount)

	assert.True(t, cfg.Asset("ETH").Ignore)
	assert.True(t, cfg.Asset("FTT").Ignore, "general ignore list")

	other := cfg.Asset("SOL")
	assert.False(t, other.Ignore)
	assert.Equal(t, 5.0, other.Discount)
	assert.Empty(t, other.Convert)
}
