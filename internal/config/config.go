package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Ledger   LedgerConfig
	Data     DataConfig
	Economy  EconomyConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"tcsgo-engine"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
}

// LedgerConfig holds ledger persistence settings.
type LedgerConfig struct {
	// Backend selects the primary store: file, sqlite or mysql.
	Backend string `envconfig:"LEDGER_BACKEND" default:"file"`
	Path    string `envconfig:"LEDGER_PATH" default:"./data/inventories.json"`
	// FallbackPath is the sqlite database used when the primary file write
	// fails its verification. Empty disables the fallback.
	FallbackPath string `envconfig:"LEDGER_FALLBACK_PATH" default:"./data/inventories-fallback.db"`
	// ResetOnCorrupt restores the legacy behavior of treating an unparsable
	// ledger as empty instead of failing the load.
	ResetOnCorrupt bool `envconfig:"LEDGER_RESET_ON_CORRUPT" default:"false"`
}

// DataConfig holds paths to the external read-only tables.
type DataConfig struct {
	CaseOddsDir string `envconfig:"CASE_ODDS_DIR" default:"./data/case-odds"`
	PricesPath  string `envconfig:"PRICES_PATH" default:"./data/prices.json"`
	AliasesPath string `envconfig:"ALIASES_PATH" default:"./data/case-aliases.json"`
}

// EconomyConfig holds the economy tunables.
type EconomyConfig struct {
	TradeLockDays int           `envconfig:"TRADE_LOCK_DAYS" default:"7"`
	SellTokenTTL  time.Duration `envconfig:"SELL_TOKEN_TTL" default:"60s"`
	KeyID         string        `envconfig:"KEY_ID" default:"case-key"`
}

// DatabaseConfig holds MySQL connection settings for the mysql ledger backend.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"tcsgo"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// RedisConfig holds redis settings for result delivery and dedup.
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	// ResultTTL bounds how long a polled result slot stays readable.
	ResultTTL time.Duration `envconfig:"REDIS_RESULT_TTL" default:"5m"`
	// DedupTTL is the retention window of the eventId dedup hook. Zero
	// disables deduplication entirely.
	DedupTTL time.Duration `envconfig:"REDIS_DEDUP_TTL" default:"0"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Address returns the Redis address in host:port format.
func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
