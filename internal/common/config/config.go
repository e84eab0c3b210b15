// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Search    SearchConfig    `mapstructure:"search"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Listings  ListingsConfig  `mapstructure:"listings"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Email     EmailConfig     `mapstructure:"email"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds

	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SearchConfig holds listing-index settings for the search endpoint.
type SearchConfig struct {
	Index            string `mapstructure:"index"`
	FreshnessHours   int    `mapstructure:"freshness_hours"`
	RequestTimeoutMs int    `mapstructure:"request_timeout_ms"`
}

// RequestTimeout bounds every listing-index call.
func (s SearchConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

func (e EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMs) * time.Millisecond
}

// ListingsConfig holds settings for the external listing source.
type ListingsConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Source    string `mapstructure:"source"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

func (l ListingsConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutMs) * time.Millisecond
}

// AuthConfig holds session settings.
type AuthConfig struct {
	SessionTTLHours int    `mapstructure:"session_ttl_hours"`
	BcryptCost      int    `mapstructure:"bcrypt_cost"`
	VerifyBaseURL   string `mapstructure:"verify_base_url"`
}

func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// EmailConfig holds settings for verification mail via SES.
type EmailConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	FromEmail string `mapstructure:"from_email"`
}

// SchedulerConfig drives the periodic listing refresh.
type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CronSpec     string `mapstructure:"cron_spec"`
	DefaultQuery string `mapstructure:"default_query"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig holds Jaeger exporter settings.
type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}
