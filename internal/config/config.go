package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	Wheel  WheelConfig
	Wizard WizardConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	BodyLimit       int    `envconfig:"BODY_LIMIT_BYTES" default:"10485760"`
}

// DBConfig holds database-related configuration.
// The award ledger is optional; with DB_ENABLED=false awards are only logged.
// WARNING: Default password is for local development only.
type DBConfig struct {
	Enabled  bool   `envconfig:"DB_ENABLED" default:"false"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"spinwheel_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"2"`
	Retries  int    `envconfig:"DB_CONNECT_RETRIES" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// WheelConfig holds the prize wheel's timings, spin range and catalog source.
type WheelConfig struct {
	Anticipation time.Duration `envconfig:"WHEEL_ANTICIPATION" default:"500ms"`
	Spin         time.Duration `envconfig:"WHEEL_SPIN" default:"3500ms"`
	Celebration  time.Duration `envconfig:"WHEEL_CELEBRATION" default:"3s"`
	MinRotations float64       `envconfig:"WHEEL_MIN_ROTATIONS" default:"3"`
	MaxRotations float64       `envconfig:"WHEEL_MAX_ROTATIONS" default:"5"`
	Seed         uint64        `envconfig:"WHEEL_SEED" default:"0"` // 0 = random
	CatalogFile  string        `envconfig:"WHEEL_CATALOG_FILE" default:""`
}

// WizardConfig holds the promo wizard session settings.
type WizardConfig struct {
	ValidationDelay time.Duration `envconfig:"WIZARD_VALIDATION_DELAY" default:"2s"`
	MaxUploadBytes  int64         `envconfig:"WIZARD_MAX_UPLOAD_BYTES" default:"10485760"`
	SessionTTL      time.Duration `envconfig:"WIZARD_SESSION_TTL" default:"1h"`
	CleanupInterval time.Duration `envconfig:"WIZARD_CLEANUP_INTERVAL" default:"10m"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Wheel.MaxRotations < cfg.Wheel.MinRotations {
		return nil, fmt.Errorf("WHEEL_MAX_ROTATIONS (%v) must not be below WHEEL_MIN_ROTATIONS (%v)",
			cfg.Wheel.MaxRotations, cfg.Wheel.MinRotations)
	}
	return &cfg, nil
}
