package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del scanner.
// Cada knob está tipado y se valida al arrancar — fallar rápido en vez de
// descubrir una key inválida en el primer uso.
type Config struct {
	Trading TradingConfig `yaml:"trading"`
	Market  MarketConfig  `yaml:"market"`
	API     APIConfig     `yaml:"api"`
	Wallet  WalletConfig  `yaml:"wallet"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Dev     DevConfig     `yaml:"dev"`
}

// TradingConfig controla la detección y el sizing de oportunidades.
type TradingConfig struct {
	TargetCombinedCost   float64 `yaml:"target_combined_cost"`   // techo YES+NO (< 1.0)
	MinProfitMargin      float64 `yaml:"min_profit_margin"`      // margen mínimo accionable
	BankrollUSDC         float64 `yaml:"bankroll_usdc"`          // capital máximo total
	MaxWalletUtilization float64 `yaml:"max_wallet_utilization"` // fracción del balance por trade
	QtyBalanceTolerance  float64 `yaml:"qty_balance_tolerance"`  // tolerancia de balance de cantidades
	PollIntervalSec      int     `yaml:"poll_interval_sec"`      // sleep entre ciclos
	DiscoveryIntervalSec int     `yaml:"discovery_interval_sec"` // cadencia del discovery completo
	MaxConsecutiveErrors int     `yaml:"max_consecutive_errors"` // techo de fallos antes del stop fatal
}

// MarketConfig controla qué mercados se consideran.
type MarketConfig struct {
	Keyword             string  `yaml:"keyword"`               // filtro de título, ej. "Bitcoin"
	MinLiquidityUSDC    float64 `yaml:"min_liquidity_usdc"`    // liquidez mínima
	ExpiryBufferMinutes int     `yaml:"expiry_buffer_minutes"` // no operar mercados que resuelven antes
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
}

// WalletConfig contiene las credenciales del wallet de Polygon.
// PrivateKey admite ${ENV_VAR} para no escribir la key en el YAML.
type WalletConfig struct {
	PrivateKey string `yaml:"private_key"`
}

// StorageConfig controla dónde se persiste el ledger.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// DevConfig contiene flags de desarrollo.
type DevConfig struct {
	DryRun bool `yaml:"dry_run"` // true = no tocar el gateway de ejecución
}

// Load carga la configuración desde el archivo YAML y el .env si existe,
// aplica overrides de entorno, defaults y valida. Un error aquí es fatal
// para el proceso.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

// PollInterval devuelve el intervalo entre ciclos como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Trading.PollIntervalSec) * time.Second
}

// DiscoveryInterval devuelve la cadencia del discovery completo.
func (c *Config) DiscoveryInterval() time.Duration {
	return time.Duration(c.Trading.DiscoveryIntervalSec) * time.Second
}

// ExpiryBuffer devuelve el margen de seguridad de expiración.
func (c *Config) ExpiryBuffer() time.Duration {
	return time.Duration(c.Market.ExpiryBufferMinutes) * time.Minute
}

// Validate comprueba los invariantes de la configuración.
func (c *Config) Validate() error {
	t := c.Trading
	if t.TargetCombinedCost <= 0 || t.TargetCombinedCost > 1.0 {
		return fmt.Errorf("trading.target_combined_cost must be in (0, 1], got %v", t.TargetCombinedCost)
	}
	if t.MinProfitMargin < 0 || t.MinProfitMargin >= 1.0 {
		return fmt.Errorf("trading.min_profit_margin must be in [0, 1), got %v", t.MinProfitMargin)
	}
	if t.BankrollUSDC <= 0 {
		return fmt.Errorf("trading.bankroll_usdc must be positive, got %v", t.BankrollUSDC)
	}
	if t.MaxWalletUtilization <= 0 || t.MaxWalletUtilization > 1.0 {
		return fmt.Errorf("trading.max_wallet_utilization must be in (0, 1], got %v", t.MaxWalletUtilization)
	}
	if t.QtyBalanceTolerance < 0 || t.QtyBalanceTolerance >= 1.0 {
		return fmt.Errorf("trading.qty_balance_tolerance must be in [0, 1), got %v", t.QtyBalanceTolerance)
	}
	if t.PollIntervalSec <= 0 {
		return fmt.Errorf("trading.poll_interval_sec must be positive, got %d", t.PollIntervalSec)
	}
	if t.DiscoveryIntervalSec < t.PollIntervalSec {
		return fmt.Errorf("trading.discovery_interval_sec (%d) must be >= poll_interval_sec (%d)",
			t.DiscoveryIntervalSec, t.PollIntervalSec)
	}
	if t.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("trading.max_consecutive_errors must be positive, got %d", t.MaxConsecutiveErrors)
	}
	if c.Market.MinLiquidityUSDC < 0 {
		return fmt.Errorf("market.min_liquidity_usdc must be >= 0, got %v", c.Market.MinLiquidityUSDC)
	}
	if c.Market.ExpiryBufferMinutes < 0 {
		return fmt.Errorf("market.expiry_buffer_minutes must be >= 0, got %d", c.Market.ExpiryBufferMinutes)
	}
	if !c.Dev.DryRun && c.Wallet.PrivateKey == "" {
		return fmt.Errorf("wallet.private_key is required unless dev.dry_run is set")
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno.
// wallet.private_key admite además la sintaxis ${VAR} en el YAML.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("WALLET_PRIVATE_KEY"); v != "" {
		cfg.Wallet.PrivateKey = v
	}
	cfg.Wallet.PrivateKey = expandEnvRef(cfg.Wallet.PrivateKey)
}

// expandEnvRef resuelve un valor ${VAR} contra el entorno.
// Un placeholder sin resolver queda vacío para que Validate lo detecte.
func expandEnvRef(v string) string {
	if len(v) > 3 && v[:2] == "${" && v[len(v)-1] == '}' {
		return os.Getenv(v[2 : len(v)-1])
	}
	return v
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Trading.TargetCombinedCost <= 0 {
		cfg.Trading.TargetCombinedCost = 0.99
	}
	if cfg.Trading.MinProfitMargin <= 0 {
		cfg.Trading.MinProfitMargin = 0.02
	}
	if cfg.Trading.BankrollUSDC <= 0 {
		cfg.Trading.BankrollUSDC = 100
	}
	if cfg.Trading.MaxWalletUtilization <= 0 {
		cfg.Trading.MaxWalletUtilization = 0.75
	}
	if cfg.Trading.QtyBalanceTolerance <= 0 {
		cfg.Trading.QtyBalanceTolerance = 0.05
	}
	if cfg.Trading.PollIntervalSec <= 0 {
		cfg.Trading.PollIntervalSec = 10
	}
	if cfg.Trading.DiscoveryIntervalSec <= 0 {
		cfg.Trading.DiscoveryIntervalSec = 120
	}
	if cfg.Trading.MaxConsecutiveErrors <= 0 {
		cfg.Trading.MaxConsecutiveErrors = 5
	}
	if cfg.Market.Keyword == "" {
		cfg.Market.Keyword = "Bitcoin"
	}
	if cfg.Market.MinLiquidityUSDC <= 0 {
		cfg.Market.MinLiquidityUSDC = 1000
	}
	if cfg.Market.ExpiryBufferMinutes <= 0 {
		cfg.Market.ExpiryBufferMinutes = 2
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "gabagool.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
