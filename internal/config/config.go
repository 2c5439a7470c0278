package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = 8080
	defaultPhoenixTimeout = 60 * time.Second
	defaultSessionMaxAge  = 24 * time.Hour
	defaultJWTTTL         = 30 * 24 * time.Hour
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Phoenix  PhoenixConfig  `yaml:"phoenix"`
	Session  SessionConfig  `yaml:"session"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Fixtures FixturesConfig `yaml:"fixtures"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// PhoenixConfig holds settings for the external Phoenix photo API
type PhoenixConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig holds cookie session configuration
type SessionConfig struct {
	Secret string        `yaml:"secret"`
	MaxAge time.Duration `yaml:"max_age"`
	Secure bool          `yaml:"secure"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// FixturesConfig lists users seeded at startup
type FixturesConfig struct {
	Users []FixtureUser `yaml:"users"`
}

// FixtureUser is a seeded user with an optional login token
type FixtureUser struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Name      string `yaml:"name"`
	LastName  string `yaml:"last_name"`
	AuthToken string `yaml:"auth_token"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// Values from a .env file in the working directory are loaded first, if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.Phoenix.BaseURL == "" {
		return nil, fmt.Errorf("phoenix.base_url is required")
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("session.secret is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}

	return &cfg, nil
}

// Path returns the config file path, honoring CONFIG_PATH.
func Path() string {
	return getEnv("CONFIG_PATH", "config.yaml")
}

func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Database.Host = getEnv("DATABASE_HOST", c.Database.Host)
	c.Database.User = getEnv("DATABASE_USER", c.Database.User)
	c.Database.Password = getEnv("DATABASE_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DATABASE_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DATABASE_SSLMODE", c.Database.SSLMode)
	c.Phoenix.BaseURL = getEnv("PHOENIX_BASE_URL", c.Phoenix.BaseURL)
	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	var err error
	if c.Server.Port, err = getEnvAsInt("SERVER_PORT", c.Server.Port); err != nil {
		return err
	}
	if c.Database.Port, err = getEnvAsInt("DATABASE_PORT", c.Database.Port); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Phoenix.Timeout <= 0 {
		c.Phoenix.Timeout = defaultPhoenixTimeout
	}
	if c.Session.MaxAge <= 0 {
		c.Session.MaxAge = defaultSessionMaxAge
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = defaultJWTTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
