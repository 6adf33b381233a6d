package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	App struct {
		LogLevel       string        `yaml:"log_level"`
		LogFile        string        `yaml:"log_file"`
		LogMaxSizeMB   int           `yaml:"log_max_size_mb"`
		LogMaxBackups  int           `yaml:"log_max_backups"`
		LogMaxAgeDays  int           `yaml:"log_max_age_days"`
		MetricsAddr    string        `yaml:"metrics_addr"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"app"`
	Account  Account                `yaml:"account"`
	General  General                `yaml:"general"`
	Assets   map[string]AssetConfig `yaml:"assets"`
	Tuning   Tuning                 `yaml:"tuning"`
	Schedule struct {
		Interval        time.Duration `yaml:"interval"`
		ResetAfterCount int           `yaml:"reset_after_count"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Account is passed through to the exchange client untouched.
type Account struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	APISecret  string `yaml:"api_secret"`
	Subaccount string `yaml:"subaccount"`
}

// General holds the defaults applied to every coin.
type General struct {
	InvestRatio         float64  `yaml:"invest_ratio"` // percent of lendable to offer
	APYMin              float64  `yaml:"apy_min"`      // percent
	Discount            float64  `yaml:"discount"`     // percent off the market estimate
	AllowCoinConversion bool     `yaml:"allow_coin_conversion"`
	FiatAssets          []string `yaml:"fiat_assets"`
	IgnoreAssets        []string `yaml:"ignore_assets"`
}

// AssetConfig overrides General for a single coin. Nil fields fall back.
type AssetConfig struct {
	Ignore      bool     `yaml:"ignore"`
	Rate        *float64 `yaml:"rate"` // fixed APY percent
	Discount    *float64 `yaml:"discount"`
	InvestRatio *float64 `yaml:"invest_ratio"`
	Convert     []string `yaml:"convert"`
}

// Tuning holds engine thresholds and pauses.
type Tuning struct {
	RenewOfferTolerance  float64       `yaml:"renew_offer_tolerance"` // APY percentage points
	MinAvailableLimitUSD float64       `yaml:"min_available_limit_usd"`
	LendPricePrecision   int32         `yaml:"lend_price_precision"`
	PauseAfterSubmit     time.Duration `yaml:"pause_after_submit"`
	PauseAfterCancel     time.Duration `yaml:"pause_after_cancel"`
	PauseAfterRenew      time.Duration `yaml:"pause_after_renew"`
}

// Load reads the .env file and the YAML config, then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	// A missing .env is fine; variables may come from the real environment.
	_ = godotenv.Load()

	cfg := &Config{Tuning: defaultTuning()}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FTX_API_KEY"); v != "" {
		cfg.Account.APIKey = v
	}
	if v := os.Getenv("FTX_API_SECRET"); v != "" {
		cfg.Account.APISecret = v
	}
	if v := os.Getenv("FTX_SUBACCOUNT_ID"); v != "" {
		cfg.Account.Subaccount = v
	}
	if v := os.Getenv("EXCHANGE_BASE_URL"); v != "" {
		cfg.Account.BaseURL = v
	}
	if f, ok := envFloat("INVEST_RATIO"); ok {
		cfg.General.InvestRatio = f
	}
	if f, ok := envFloat("APY_MIN"); ok {
		cfg.General.APYMin = f
	}
	if f, ok := envFloat("DISCOUNT"); ok {
		cfg.General.Discount = f
	}
	if v := os.Getenv("ALLOW_COIN_CONVERSION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.General.AllowCoinConversion = b
		}
	}
	if v := os.Getenv("FIAT_ASSETS"); v != "" {
		cfg.General.FiatAssets = splitList(v)
	}
	if v := os.Getenv("IGNORE_ASSETS"); v != "" {
		cfg.General.IgnoreAssets = splitList(v)
	}
	if f, ok := envFloat("INTERVAL_CHECK_MIN"); ok && f > 0 {
		cfg.Schedule.Interval = time.Duration(f * float64(time.Minute))
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.App.MetricsAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

// defaultTuning seeds Tuning before the file is decoded, so an explicit zero
// in the YAML is kept rather than replaced.
func defaultTuning() Tuning {
	return Tuning{
		RenewOfferTolerance:  0.1,
		MinAvailableLimitUSD: 0.1,
		LendPricePrecision:   8,
		PauseAfterSubmit:     5 * time.Second,
		PauseAfterCancel:     time.Second,
		PauseAfterRenew:      2 * time.Second,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.RequestTimeout == 0 {
		cfg.App.RequestTimeout = 30 * time.Second
	}
	if cfg.Account.BaseURL == "" {
		cfg.Account.BaseURL = "https://ftx.com/api"
	}
	if cfg.General.InvestRatio == 0 {
		cfg.General.InvestRatio = 100
	}
	if len(cfg.General.FiatAssets) == 0 {
		cfg.General.FiatAssets = []string{"USD", "USDT", "USDC"}
	}
	if cfg.Schedule.Interval == 0 {
		cfg.Schedule.Interval = time.Minute
	}
	if cfg.Schedule.ResetAfterCount == 0 {
		cfg.Schedule.ResetAfterCount = 10
	}
}

// Validate checks that required fields are set and percentages are in range.
func (c *Config) Validate() error {
	if c.Account.APIKey == "" {
		return fmt.Errorf("%w: account.api_key is required", ErrInvalid)
	}
	if c.Account.APISecret == "" {
		return fmt.Errorf("%w: account.api_secret is required", ErrInvalid)
	}
	if c.General.InvestRatio <= 0 || c.General.InvestRatio > 100 {
		return fmt.Errorf("%w: general.invest_ratio must be in (0, 100]", ErrInvalid)
	}
	if c.General.APYMin < 0 {
		return fmt.Errorf("%w: general.apy_min must not be negative", ErrInvalid)
	}
	if c.General.Discount < 0 || c.General.Discount > 100 {
		return fmt.Errorf("%w: general.discount must be in [0, 100]", ErrInvalid)
	}
	for coin, a := range c.Assets {
		if a.InvestRatio != nil && (*a.InvestRatio <= 0 || *a.InvestRatio > 100) {
			return fmt.Errorf("%w: assets.%s.invest_ratio must be in (0, 100]", ErrInvalid, coin)
		}
		if a.Discount != nil && (*a.Discount < 0 || *a.Discount > 100) {
			return fmt.Errorf("%w: assets.%s.discount must be in [0, 100]", ErrInvalid, coin)
		}
		if a.Rate != nil && *a.Rate < 0 {
			return fmt.Errorf("%w: assets.%s.rate must not be negative", ErrInvalid, coin)
		}
	}
	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("%w: schedule.interval must be positive", ErrInvalid)
	}
	if c.Schedule.ResetAfterCount <= 0 {
		return fmt.Errorf("%w: schedule.reset_after_count must be positive", ErrInvalid)
	}
	if c.Tuning.RenewOfferTolerance < 0 || c.Tuning.MinAvailableLimitUSD < 0 {
		return fmt.Errorf("%w: tuning thresholds must not be negative", ErrInvalid)
	}
	if c.Tuning.PauseAfterSubmit < 0 || c.Tuning.PauseAfterCancel < 0 || c.Tuning.PauseAfterRenew < 0 {
		return fmt.Errorf("%w: tuning pauses must not be negative", ErrInvalid)
	}
	if c.Tuning.LendPricePrecision < 0 {
		return fmt.Errorf("%w: tuning.lend_price_precision must not be negative", ErrInvalid)
	}
	return nil
}

// TelegramEnabled reports whether report delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
