package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
dev:
  dry_run: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.99, cfg.Trading.TargetCombinedCost)
	assert.Equal(t, 0.02, cfg.Trading.MinProfitMargin)
	assert.Equal(t, 100.0, cfg.Trading.BankrollUSDC)
	assert.Equal(t, 0.75, cfg.Trading.MaxWalletUtilization)
	assert.Equal(t, 5, cfg.Trading.MaxConsecutiveErrors)
	assert.Equal(t, "Bitcoin", cfg.Market.Keyword)
	assert.Equal(t, 1000.0, cfg.Market.MinLiquidityUSDC)
	assert.Equal(t, "gabagool.db", cfg.Storage.DSN)

	assert.Equal(t, 10*time.Second, cfg.PollInterval())
	assert.Equal(t, 2*time.Minute, cfg.DiscoveryInterval())
	assert.Equal(t, 2*time.Minute, cfg.ExpiryBuffer())
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
trading:
  target_combined_cost: 0.97
  min_profit_margin: 0.03
  bankroll_usdc: 500
  poll_interval_sec: 30
  discovery_interval_sec: 300
market:
  keyword: Ethereum
  min_liquidity_usdc: 2500
dev:
  dry_run: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.97, cfg.Trading.TargetCombinedCost)
	assert.Equal(t, 500.0, cfg.Trading.BankrollUSDC)
	assert.Equal(t, "Ethereum", cfg.Market.Keyword)
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, 5*time.Minute, cfg.DiscoveryInterval())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_PrivateKeyRequiredForLiveTrading(t *testing.T) {
	path := writeConfig(t, `
dev:
  dry_run: false
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private_key")
}

func TestLoad_PrivateKeyFromEnv(t *testing.T) {
	t.Setenv("WALLET_PRIVATE_KEY", "0xdeadbeef")
	path := writeConfig(t, `
dev:
  dry_run: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", cfg.Wallet.PrivateKey)
}

func TestLoad_PrivateKeyEnvRef(t *testing.T) {
	t.Setenv("MY_PK", "0xcafe")
	path := writeConfig(t, `
wallet:
  private_key: ${MY_PK}
dev:
  dry_run: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0xcafe", cfg.Wallet.PrivateKey)
}

func TestValidate_Ranges(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Dev.DryRun = true
		setDefaults(cfg)
		return cfg
	}

	cases := map[string]func(*Config){
		"target above 1":        func(c *Config) { c.Trading.TargetCombinedCost = 1.5 },
		"margin negative":       func(c *Config) { c.Trading.MinProfitMargin = -0.1 },
		"utilization above 1":   func(c *Config) { c.Trading.MaxWalletUtilization = 1.2 },
		"tolerance at 1":        func(c *Config) { c.Trading.QtyBalanceTolerance = 1.0 },
		"poll zero":             func(c *Config) { c.Trading.PollIntervalSec = 0 },
		"discovery below poll":  func(c *Config) { c.Trading.DiscoveryIntervalSec = 5 },
		"max errors zero":       func(c *Config) { c.Trading.MaxConsecutiveErrors = 0 },
		"negative liquidity":    func(c *Config) { c.Market.MinLiquidityUSDC = -1 },
		"negative expiry":       func(c *Config) { c.Market.ExpiryBufferMinutes = -1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			require.NoError(t, cfg.Validate())
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandEnvRef(t *testing.T) {
	t.Setenv("SOME_VAR", "value")
	assert.Equal(t, "value", expandEnvRef("${SOME_VAR}"))
	assert.Equal(t, "plain", expandEnvRef("plain"))
	assert.Equal(t, "", expandEnvRef("${UNSET_VAR_XYZ}"))
}
