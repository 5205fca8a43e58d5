package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMySQL = "mysql"
	StorageFile  = "file"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	Storage  string `mapstructure:"STORAGE"`
	DataFile string `mapstructure:"DATA_FILE"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	APIKey         string `mapstructure:"API_KEY"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	TrustProxy     bool   `mapstructure:"TRUST_PROXY"`

	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FILE",
	"STORAGE", "DATA_FILE",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"JWT_SECRET", "API_KEY", "ALLOWED_ORIGINS", "TRUST_PROXY",
	"RESEND_API_KEY", "EMAIL_FROM",
}

// Load reads .env (if present) and the environment. Environment wins.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE", StorageMySQL)
	v.SetDefault("DATA_FILE", "data/patients.json")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "anamnesis")
	v.SetDefault("DB_PASSWORD", "anamnesis_pass")
	v.SetDefault("DB_NAME", "anamnesis")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("EMAIL_FROM", "Anamnese <no-reply@anamnese.app>")

	for _, k := range keys {
		v.BindEnv(k)
	}

	// a missing .env is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	switch c.Storage {
	case StorageMySQL:
	case StorageFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required when STORAGE is %q", StorageFile)
		}
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMySQL, StorageFile, c.Storage)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}
