package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	CORS   CORSConfig   `yaml:"cors"`
	Log    LogConfig    `yaml:"log"`
	Source SourceConfig `yaml:"source"`
	Cache  CacheConfig  `yaml:"cache"`
	View   ViewConfig   `yaml:"view"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `yaml:"port" validate:"required,numeric"`
	Host string `yaml:"host"`
	Addr string `yaml:"-"` // Combined host:port for convenience
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,required"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// SourceConfig describes what is fetched from Yahoo Finance.
type SourceConfig struct {
	GoldSymbol    string        `yaml:"gold_symbol" validate:"required"`
	FXSymbol      string        `yaml:"fx_symbol" validate:"required"`
	LookbackRange string        `yaml:"lookback_range" validate:"required"`
	FXRange       string        `yaml:"fx_range" validate:"required"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string        `yaml:"backend" validate:"oneof=memory file sqlite redis"`
	TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
	File          string        `yaml:"file" validate:"required_if=Backend file"`
	DBPath        string        `yaml:"db_path" validate:"required_if=Backend sqlite"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"min=0"`
	RedisKey      string        `yaml:"redis_key" validate:"required_if=Backend redis"`
}

// ViewConfig holds the dashboard parameters.
type ViewConfig struct {
	WindowDays    int    `yaml:"window_days" validate:"min=1"`
	PageSize      int    `yaml:"page_size" validate:"min=1"`
	GramsPerOunce string `yaml:"grams_per_ounce" validate:"required,numeric"`
}

// Grams returns GramsPerOunce as a decimal.
func (v ViewConfig) Grams() decimal.Decimal {
	d, err := decimal.NewFromString(v.GramsPerOunce)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "5001",
			Host: "localhost",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Source: SourceConfig{
			GoldSymbol:    "GC=F",
			FXSymbol:      "USDIDR=X",
			LookbackRange: "2y",
			FXRange:       "5d",
			Timeout:       10 * time.Second,
		},
		Cache: CacheConfig{
			Backend:  BackendSQLite,
			TTL:      6 * time.Hour,
			File:     "./data/gold_price_cache.json",
			DBPath:   "./data/gold_price.db",
			RedisKey: "gold:price_cache",
		},
		View: ViewConfig{
			WindowDays:    60,
			PageSize:      10,
			GramsPerOunce: "31.1034768",
		},
	}
}

// Load reads configuration from the built-in defaults, an optional YAML file
// named by CONFIG_FILE, and environment variables (including a .env file),
// in increasing order of precedence.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !config.View.Grams().IsPositive() {
		return nil, fmt.Errorf("invalid configuration: grams per ounce must be positive, got %s", config.View.GramsPerOunce)
	}

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) error {
	setString(&c.Server.Port, "SERVER_PORT")
	setString(&c.Server.Host, "SERVER_HOST")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.Source.GoldSymbol, "GOLD_SYMBOL")
	setString(&c.Source.FXSymbol, "FX_SYMBOL")
	setString(&c.Source.LookbackRange, "LOOKBACK_RANGE")
	setString(&c.Source.FXRange, "FX_RANGE")

	setString(&c.Cache.Backend, "CACHE_BACKEND")
	setString(&c.Cache.File, "CACHE_FILE")
	setString(&c.Cache.DBPath, "DB_PATH")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Cache.RedisPassword, "REDIS_PASSWORD")
	setString(&c.Cache.RedisKey, "REDIS_KEY")

	setString(&c.View.GramsPerOunce, "GRAMS_PER_OUNCE")

	durations := map[string]*time.Duration{
		"SOURCE_TIMEOUT": &c.Source.Timeout,
		"CACHE_TTL":      &c.Cache.TTL,
	}
	for key, dst := range durations {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}

	ints := map[string]*int{
		"REDIS_DB":    &c.Cache.RedisDB,
		"WINDOW_DAYS": &c.View.WindowDays,
		"PAGE_SIZE":   &c.View.PageSize,
	}
	for key, dst := range ints {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func setString(dst *string, key string) {
	*dst = getEnv(key, *dst)
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
