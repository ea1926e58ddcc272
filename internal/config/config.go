package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `env:",prefix=SERVER_"`

	// Database configuration
	Database DatabaseConfig `env:",prefix=DB_"`

	// Issuance configuration
	Issuance IssuanceConfig `env:",prefix=ISSUANCE_"`

	// Referral configuration
	Referral ReferralConfig `env:",prefix=REFERRAL_"`

	// Application configuration
	App AppConfig `env:",prefix=APP_"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string `env:"PORT,default=8080"`
	Host         string `env:"HOST,default=0.0.0.0"`
	ReadTimeout  int    `env:"READ_TIMEOUT,default=30"`  // seconds
	WriteTimeout int    `env:"WRITE_TIMEOUT,default=30"` // seconds
}

// DatabaseConfig selects the store backend and carries per-driver settings.
// Driver is one of sqlite, postgres, mongodb or memory; the unused settings
// for the other drivers are ignored.
type DatabaseConfig struct {
	Driver  string        `env:"DRIVER,default=sqlite"`
	Timeout time.Duration `env:"TIMEOUT,default=5s"`

	// SQLite. An empty path runs the database in memory.
	SQLitePath string `env:"SQLITE_PATH"`

	// PostgreSQL
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD,default=postgres"`
	Name     string `env:"NAME,default=rewards"`
	SSLMode  string `env:"SSL_MODE,default=disable"`

	// MongoDB
	MongoURI  string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoName string `env:"MONGO_NAME,default=rewards"`
}

// IssuanceConfig holds the voucher issuance settings
type IssuanceConfig struct {
	// Mode is strict or besteffort. Strict enforces campaign stock with an
	// atomic reservation; besteffort keeps the original count-then-insert
	// behavior.
	Mode string `env:"MODE,default=strict"`
}

// ReferralConfig holds the referral reward settings
type ReferralConfig struct {
	// Milestones maps a confirmed-referral count to the prize it earns,
	// e.g. REFERRAL_MILESTONES="3:Free voucher,5:10% off next purchase".
	Milestones map[int64]string `env:"MILESTONES"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	Debug       bool   `env:"DEBUG,default=false"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if len(cfg.Referral.Milestones) == 0 {
		// A struct tag cannot hold the comma-separated default, so the
		// milestone table falls back here.
		cfg.Referral.Milestones = map[int64]string{
			3: "Free voucher",
			5: "10% off next purchase",
		}
	}
	return &cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if running in development environment
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
