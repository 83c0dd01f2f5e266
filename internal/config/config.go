package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"rental-ledger-backend/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	JWT          JWTConfig          `yaml:"jwt"`
	Log          LogConfig          `yaml:"log"`
	Booking      BookingConfig      `yaml:"booking"`
	Notification NotificationConfig `yaml:"notification"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
}

// ServerConfig contains gRPC and REST listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	HTTPPort int    `yaml:"http_port"` // defaults to Port+1
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Driver        string `yaml:"driver"` // "postgres" or "memory"
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Database      string `yaml:"database"`
	SSLMode       string `yaml:"ssl_mode"`
	MigrationsDir string `yaml:"migrations_dir"`
	AutoMigrate   bool   `yaml:"auto_migrate"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
}

// JWTConfig contains the shared secret of the identity provider
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig contains booking policy settings
type BookingConfig struct {
	CancelCutoffDays int                  `yaml:"cancel_cutoff_days"`
	LockTimeout      time.Duration        `yaml:"lock_timeout"`
	Discounts        []DiscountTierConfig `yaml:"discounts"`
}

// DiscountTierConfig is one row of the discount policy table.
// Rate is kept as a string so that "0.9" never passes through a float.
type DiscountTierConfig struct {
	MinDays int    `yaml:"min_days"`
	Rate    string `yaml:"rate"`
}

// NotificationConfig contains delivery channel settings
type NotificationConfig struct {
	SendGrid    SendGridConfig `yaml:"sendgrid"`
	Firebase    FirebaseConfig `yaml:"firebase"`
	BatchSize   int            `yaml:"batch_size"`
	MaxAttempts int            `yaml:"max_attempts"`
	BaseURL     string         `yaml:"base_url"`
}

// SendGridConfig enables the email channel when APIKey is set
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// FirebaseConfig enables the push channel when Enabled is true
type FirebaseConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	TopicPrefix     string `yaml:"topic_prefix"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CompleteElapsedRentals string `yaml:"complete_elapsed_rentals"`
	DispatchNotifications  string `yaml:"dispatch_notifications"`
	ReconcileLedger        string `yaml:"reconcile_ledger"`
}

// RateLimitConfig is a ulule/limiter formatted rate such as "100-M"
type RateLimitConfig struct {
	Rate string `yaml:"rate"`
}

// envOverrides lists the settings that may be replaced from the environment.
type envOverrides struct {
	DBHost           string `env:"DB_HOST"`
	DBPort           int    `env:"DB_PORT"`
	DBUser           string `env:"DB_USER"`
	DBPassword       string `env:"DB_PASSWORD"`
	DBName           string `env:"DB_NAME"`
	DBSSLMode        string `env:"DB_SSL_MODE"`
	MigrationsDir    string `env:"MIGRATIONS_DIR"`
	JWTSecret        string `env:"JWT_SECRET"`
	ServerHost       string `env:"SERVER_HOST"`
	ServerPort       int    `env:"SERVER_PORT"`
	LogLevel         string `env:"LOG_LEVEL"`
	LogFormat        string `env:"LOG_FORMAT"`
	SendGridAPIKey   string `env:"SENDGRID_API_KEY"`
	FirebaseCredFile string `env:"FIREBASE_CREDENTIALS_FILE"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes, applies environment overrides and validates it
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to parse env config: %w", err)
	}

	setString(&c.Database.Host, o.DBHost)
	setInt(&c.Database.Port, o.DBPort)
	setString(&c.Database.User, o.DBUser)
	setString(&c.Database.Password, o.DBPassword)
	setString(&c.Database.Database, o.DBName)
	setString(&c.Database.SSLMode, o.DBSSLMode)
	setString(&c.Database.MigrationsDir, o.MigrationsDir)
	setString(&c.JWT.Secret, o.JWTSecret)
	setString(&c.Server.Host, o.ServerHost)
	setInt(&c.Server.Port, o.ServerPort)
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.Format, o.LogFormat)
	setString(&c.Notification.SendGrid.APIKey, o.SendGridAPIKey)
	setString(&c.Notification.Firebase.CredentialsFile, o.FirebaseCredFile)
	return nil
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setInt(dst *int, val int) {
	if val != 0 {
		*dst = val
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = c.Server.Port + 1
	}

	// Database validation
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.MigrationsDir == "" {
			c.Database.MigrationsDir = "migrations"
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver: %s", c.Database.Driver)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Booking defaults
	if c.Booking.CancelCutoffDays == 0 {
		c.Booking.CancelCutoffDays = 3
	}
	if c.Booking.LockTimeout == 0 {
		c.Booking.LockTimeout = 5 * time.Second
	}
	for i, tier := range c.Booking.Discounts {
		if tier.MinDays < 1 {
			return fmt.Errorf("discount tier %d: min_days must be positive", i)
		}
		rate, err := decimal.NewFromString(tier.Rate)
		if err != nil {
			return fmt.Errorf("discount tier %d: invalid rate %q: %w", i, tier.Rate, err)
		}
		if !rate.IsPositive() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("discount tier %d: rate must be in (0, 1]", i)
		}
	}

	// Notification defaults
	if c.Notification.BatchSize == 0 {
		c.Notification.BatchSize = 50
	}
	if c.Notification.MaxAttempts == 0 {
		c.Notification.MaxAttempts = 5
	}
	if c.Notification.Firebase.Enabled && c.Notification.Firebase.CredentialsFile == "" {
		return fmt.Errorf("firebase credentials file is required when push is enabled")
	}
	if c.Notification.Firebase.TopicPrefix == "" {
		c.Notification.Firebase.TopicPrefix = "user-"
	}

	// Scheduler defaults
	if c.Scheduler.CompleteElapsedRentals == "" {
		c.Scheduler.CompleteElapsedRentals = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.DispatchNotifications == "" {
		c.Scheduler.DispatchNotifications = "0 * * * * *" // every minute
	}
	if c.Scheduler.ReconcileLedger == "" {
		c.Scheduler.ReconcileLedger = "0 30 3 * * *" // 3:30 AM UTC
	}

	if c.RateLimit.Rate == "" {
		c.RateLimit.Rate = "300-M"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the REST server address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// CancelCutoff returns the minimum lead time before startDate for a renter cancel
func (c *Config) CancelCutoff() time.Duration {
	return time.Duration(c.Booking.CancelCutoffDays) * 24 * time.Hour
}

// DiscountTiers converts the configured discount table for the pricing engine.
// Rates were checked by Validate.
func (c *Config) DiscountTiers() []utils.DiscountTier {
	tiers := make([]utils.DiscountTier, 0, len(c.Booking.Discounts))
	for _, d := range c.Booking.Discounts {
		tiers = append(tiers, utils.DiscountTier{MinDays: d.MinDays, Rate: decimal.RequireFromString(d.Rate)})
	}
	return tiers
}
