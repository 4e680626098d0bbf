package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	LLM      LLMConfig      `yaml:"llm"`
	Postgres PostgresConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Session  SessionConfig  `yaml:"session"`
	Storage  StorageConfig  `yaml:"storage"`
	Queue    QueueConfig    `yaml:"queue"`
	Readings ReadingsConfig `yaml:"readings"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// WhatsAppConfig holds Cloud API credentials and webhook secrets.
type WhatsAppConfig struct {
	GraphBaseURL string        `yaml:"graphBaseUrl"`
	APIVersion   string        `yaml:"apiVersion"`
	AccessToken  string        `yaml:"accessToken"`
	VerifyToken  string        `yaml:"verifyToken"`
	AppSecret    string        `yaml:"appSecret"`
	Timeout      time.Duration `yaml:"timeout"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	VisionModel string  `yaml:"visionModel"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN         string `yaml:"dsn"`
	MaxConns    int32  `yaml:"maxConns"`
	MinConns    int32  `yaml:"minConns"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// ValkeyConfig contains connection information for session and queue storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// SessionConfig tunes dialogue state.
type SessionConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	LockTimeout time.Duration `yaml:"lockTimeout"`
	LockLease   time.Duration `yaml:"lockLease"`
	KeyPrefix   string        `yaml:"keyPrefix"`
}

// StorageConfig points at the S3 compatible bucket for meal photos.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"useSSL"`
}

// QueueConfig selects synchronous or Valkey-backed event processing.
type QueueConfig struct {
	Async   bool          `yaml:"async"`
	Key     string        `yaml:"key"`
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// ReadingsConfig tunes blood sugar reporting.
type ReadingsConfig struct {
	WindowDays int `yaml:"windowDays"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")

	setString(&cfg.WhatsApp.GraphBaseURL, "WHATSAPP_GRAPH_BASE_URL")
	setString(&cfg.WhatsApp.APIVersion, "WHATSAPP_API_VERSION")
	setString(&cfg.WhatsApp.AccessToken, "GRAPH_API_TOKEN")
	setString(&cfg.WhatsApp.VerifyToken, "WEBHOOK_VERIFY_TOKEN")
	setString(&cfg.WhatsApp.AppSecret, "WHATSAPP_APP_SECRET")

	setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.VisionModel, "LLM_VISION_MODEL")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setString(&cfg.Postgres.DSN, "POSTGRES_DSN")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	setBool(&cfg.Postgres.AutoMigrate, "POSTGRES_AUTO_MIGRATE")

	setBool(&cfg.Valkey.Enabled, "VALKEY_ENABLED")
	setString(&cfg.Valkey.Addr, "VALKEY_ADDR")

	setDuration(&cfg.Session.TTL, "SESSION_TTL")
	setDuration(&cfg.Session.LockTimeout, "SESSION_LOCK_TIMEOUT")

	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Region, "STORAGE_REGION")

	setBool(&cfg.Queue.Async, "QUEUE_ASYNC")
	setString(&cfg.Queue.Key, "QUEUE_KEY")
	setInt(&cfg.Queue.Workers, "QUEUE_WORKERS")

	setInt(&cfg.Readings.WindowDays, "READINGS_WINDOW_DAYS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 600,
				Burst:             100,
			},
		},
		WhatsApp: WhatsAppConfig{
			GraphBaseURL: "https://graph.facebook.com",
			APIVersion:   "v22.0",
			Timeout:      15 * time.Second,
		},
		LLM: LLMConfig{
			VisionModel: "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   800,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
			MinConns: 0,
		},
		Session: SessionConfig{
			TTL:         30 * time.Minute,
			LockTimeout: 30 * time.Second,
			LockLease:   2 * time.Minute,
			KeyPrefix:   "glucobot:session:",
		},
		Storage: StorageConfig{
			Region: "auto",
			UseSSL: true,
		},
		Queue: QueueConfig{
			Key:     "glucobot:events",
			Workers: 2,
			Timeout: 2 * time.Minute,
		},
		Readings: ReadingsConfig{
			WindowDays: 7,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.WhatsApp.GraphBaseURL) == "" {
		return errors.New("whatsapp.graphBaseUrl cannot be empty")
	}
	if strings.TrimSpace(c.WhatsApp.APIVersion) == "" {
		return errors.New("whatsapp.apiVersion cannot be empty")
	}
	if strings.TrimSpace(c.LLM.VisionModel) == "" {
		return errors.New("llm.visionModel cannot be empty")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.Session.LockTimeout <= 0 {
		return errors.New("session.lockTimeout must be positive")
	}
	if c.Session.LockLease <= 0 {
		return errors.New("session.lockLease must be positive")
	}
	if c.Queue.Async {
		if !c.Valkey.Enabled {
			return errors.New("queue.async requires valkey.enabled")
		}
		if strings.TrimSpace(c.Queue.Key) == "" {
			return errors.New("queue.key cannot be empty when queue.async is enabled")
		}
		if c.Queue.Workers <= 0 {
			return errors.New("queue.workers must be positive")
		}
	}
	if c.Readings.WindowDays <= 0 {
		return errors.New("readings.windowDays must be positive")
	}
	return nil
}
