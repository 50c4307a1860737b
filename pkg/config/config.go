package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Health    HealthConfig    `mapstructure:"health"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	SecretKey       string   `mapstructure:"secret_key"`
	TokenTTLMinutes int      `mapstructure:"access_token_expire_minutes"`
	APIKeys         []string `mapstructure:"api_keys"`
}

// RateLimitConfig drives the usage ledger. Mode selects what a window
// counts: "requests" charges 1 per admitted request at admission time,
// "tokens" charges the actual token usage after the upstream call returns.
type RateLimitConfig struct {
	Requests      int    `mapstructure:"requests"`
	WindowSeconds int    `mapstructure:"window"`
	Mode          string `mapstructure:"mode"`
	FailOpen      bool   `mapstructure:"fail_open"`
}

type ProviderConfig struct {
	APIKey                 string `mapstructure:"api_key"`
	Model                  string `mapstructure:"model"`
	MaxTokens              int    `mapstructure:"max_tokens"`
	TimeoutSeconds         int    `mapstructure:"timeout"`
	MaxRetries             int    `mapstructure:"max_retries"`
	BreakerCooldownSeconds int    `mapstructure:"breaker_cooldown"`
	BreakerMaxFailures     int    `mapstructure:"breaker_failures"`
}

type HealthConfig struct {
	IntervalSeconds int `mapstructure:"interval"`
	SampleSize      int `mapstructure:"samples"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const (
	ModeRequests = "requests"
	ModeTokens   = "tokens"
)

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c ProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ProviderConfig) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownSeconds) * time.Second
}

func (c HealthConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Load reads config.yaml from configPath (falling back to ./config and the
// working directory), lets environment variables override file values, and
// returns the resulting configuration. The returned struct is built once at
// startup and never mutated afterwards.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaultValues(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Auth.TokenTTLMinutes == 0 {
		cfg.Auth.TokenTTLMinutes = 60
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 60
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.RateLimit.Mode == "" {
		cfg.RateLimit.Mode = ModeRequests
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "claude-haiku-4-5"
	}
	if cfg.Provider.MaxTokens == 0 {
		cfg.Provider.MaxTokens = 1024
	}
	if cfg.Provider.TimeoutSeconds == 0 {
		cfg.Provider.TimeoutSeconds = 30
	}
	if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = 2
	}
	if cfg.Provider.BreakerCooldownSeconds == 0 {
		cfg.Provider.BreakerCooldownSeconds = 30
	}
	if cfg.Provider.BreakerMaxFailures == 0 {
		cfg.Provider.BreakerMaxFailures = 5
	}
	// Non-positive values would panic downstream (zero-length ring, ticker
	// with a non-positive period), so they fall back to the defaults too.
	if cfg.Health.IntervalSeconds < 1 {
		cfg.Health.IntervalSeconds = 300
	}
	if cfg.Health.SampleSize < 1 {
		cfg.Health.SampleSize = 1000
	}
}

func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return errors.New("auth.secret_key is required")
	}
	if c.RateLimit.Mode != ModeRequests && c.RateLimit.Mode != ModeTokens {
		return fmt.Errorf("rate_limit.mode must be %q or %q", ModeRequests, ModeTokens)
	}
	return nil
}
