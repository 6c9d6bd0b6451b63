// Package config defines the service configuration and loads it from a YAML
// file and TASKFLOW_-prefixed environment variables, with env taking
// precedence.
package config

import "time"

// Config holds the complete application configuration, populated by Load.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Email    EmailConfig    `mapstructure:"email"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	// LogLevel controls logging verbosity.
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// JWTSecret signs access tokens. Minimum 32 characters.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is how long issued tokens stay valid.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=1440"`

	// ServiceToken authenticates sibling services calling the internal
	// event-ingest endpoint.
	ServiceToken string `mapstructure:"service_token" validate:"required,min=16"`
}

// TokenLifetime returns the configured token lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// EmailConfig holds SMTP settings for the email channel. An empty Host
// disables real delivery; sent mail is logged instead.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,gt=0,lte=65535"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required_with=Host,omitempty,email"`
}

// Enabled reports whether real SMTP delivery is configured.
func (c EmailConfig) Enabled() bool {
	return c.Host != ""
}

// KafkaConfig holds event-bus consumer settings. No brokers means the
// consumer is not started and events arrive over HTTP only.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic" validate:"required_with=Brokers"`
	GroupID string   `mapstructure:"group_id" validate:"required_with=Brokers"`
}

// Enabled reports whether the event-bus consumer should run.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// DispatchConfig holds fan-out tuning knobs.
type DispatchConfig struct {
	// WorkerCount bounds concurrent per-member deliveries for one event.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0,lte=64"`

	// ConnectionBuffer is the per-connection push frame buffer size.
	ConnectionBuffer int `mapstructure:"connection_buffer" validate:"required,gt=0,lte=1024"`
}
