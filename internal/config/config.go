package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Environment names accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Database drivers accepted in DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the whole runtime configuration.
type Config struct {
	AppEnv       string
	APIPort      int
	PasswordCost int
	CORSOrigins  string

	Database Database
	JWT      JWT
	Log      Log
	RabbitMQ RabbitMQ
}

// Database selects and addresses the store.
type Database struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// DSN builds the Postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// JWT configures access token signing.
type JWT struct {
	Secret    string
	ExpiresIn time.Duration
}

// Log configures the zap logger.
type Log struct {
	Level string
	Dev   bool
}

// RabbitMQ publishing is disabled when URL is empty.
type RabbitMQ struct {
	URL      string
	Exchange string
	Queue    string
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.AppEnv == EnvProduction }

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.APIPort) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("API_PORT", 3000)
	v.SetDefault("PASSWORD_SALT", bcrypt.DefaultCost)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "store")
	v.SetDefault("POSTGRES_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "store.db")

	v.SetDefault("JWT_EXPIRES_IN", "1h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEV", false)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog.events")
	v.SetDefault("RABBITMQ_QUEUE", "catalog.product_events")
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// parseExpiry reads a token lifetime. A bare integer is a number of seconds,
// anything else must be a Go duration such as "15m" or "1h".
func parseExpiry(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("JWT_EXPIRES_IN %q is neither seconds nor a duration", raw)
	}
	return d, nil
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	expiresIn, err := parseExpiry(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		AppEnv:       strings.ToLower(v.GetString("APP_ENV")),
		APIPort:      v.GetInt("API_PORT"),
		PasswordCost: v.GetInt("PASSWORD_SALT"),
		CORSOrigins:  v.GetString("CORS_ALLOW_ORIGINS"),
		Database: Database{
			Driver:     strings.ToLower(v.GetString("DATABASE_DRIVER")),
			Host:       v.GetString("POSTGRES_HOST"),
			Port:       v.GetInt("POSTGRES_PORT"),
			User:       v.GetString("POSTGRES_USER"),
			Password:   v.GetString("POSTGRES_PASSWORD"),
			Name:       v.GetString("POSTGRES_DB"),
			SSLMode:    v.GetString("POSTGRES_SSL_MODE"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		JWT: JWT{
			Secret:    v.GetString("JWT_SECRET"),
			ExpiresIn: expiresIn,
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
			Dev:   v.GetBool("LOG_DEV"),
		},
		RabbitMQ: RabbitMQ{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Queue:    v.GetString("RABBITMQ_QUEUE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AppEnv {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.AppEnv)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT out of range: %d", c.APIPort)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWT.ExpiresIn)
	}
	if c.PasswordCost < bcrypt.MinCost || c.PasswordCost > bcrypt.MaxCost {
		return fmt.Errorf("PASSWORD_SALT must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.PasswordCost)
	}
	return nil
}
