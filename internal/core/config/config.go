package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for the checkout pipeline.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Queue    QueueConfig    `koanf:"queue"`
	Stripe   StripeConfig   `koanf:"stripe"`
	Checkout CheckoutConfig `koanf:"checkout"`
	Consumer ConsumerConfig `koanf:"consumer"`
}

// ServerConfig holds the HTTP server configuration (webhook receiver + query API).
type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // "debug" or "release"
}

// DatabaseConfig holds the connection settings for the ledger/payment store.
type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// QueueConfig holds the settings for the at-least-once message queue.
// Dead-letter redrive (max receive count, DLQ target) is queue configuration
// owned by the transport, not by this process.
type QueueConfig struct {
	URL             string `koanf:"url"`
	Region          string `koanf:"region"`
	WaitTimeSeconds int    `koanf:"wait_time_seconds"`
	MaxBatchSize    int    `koanf:"max_batch_size"`
}

// StripeConfig holds the payment-provider credentials.
type StripeConfig struct {
	APIKey        string `koanf:"api_key"`
	WebhookSecret string `koanf:"webhook_secret"`
}

// CheckoutConfig configures the hosted-checkout redirect endpoint.
type CheckoutConfig struct {
	SuccessURL string `koanf:"success_url"` // where the provider sends the customer after paying
}

// ConsumerConfig tunes the batch consumer.
type ConsumerConfig struct {
	Enabled     bool   `koanf:"enabled"`
	WorkerCount int    `koanf:"worker_count"`
	OpTimeout   string `koanf:"op_timeout"` // per external call (ledger/provider/store)
}

// OpTimeoutDuration parses the per-call timeout, falling back to 10s.
func (c ConsumerConfig) OpTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.OpTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Validate checks cross-field constraints that should fail startup early.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535]")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("server.mode must be \"debug\" or \"release\"")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns must be >= 0")
	}

	if c.Consumer.Enabled {
		if strings.TrimSpace(c.Queue.URL) == "" {
			return fmt.Errorf("queue.url is required when the consumer is enabled")
		}
		if strings.TrimSpace(c.Queue.Region) == "" {
			return fmt.Errorf("queue.region is required when the consumer is enabled")
		}
		if c.Consumer.WorkerCount <= 0 {
			return fmt.Errorf("consumer.worker_count must be > 0")
		}
		if _, err := time.ParseDuration(c.Consumer.OpTimeout); err != nil {
			return fmt.Errorf("invalid consumer.op_timeout %q: %w", c.Consumer.OpTimeout, err)
		}
	}
	if c.Queue.WaitTimeSeconds < 0 || c.Queue.WaitTimeSeconds > 20 {
		return fmt.Errorf("queue.wait_time_seconds must be in [0, 20]")
	}
	if c.Queue.MaxBatchSize <= 0 || c.Queue.MaxBatchSize > 10 {
		return fmt.Errorf("queue.max_batch_size must be in (0, 10]")
	}

	if strings.TrimSpace(c.Stripe.APIKey) == "" {
		return fmt.Errorf("stripe.api_key is required")
	}
	if strings.TrimSpace(c.Stripe.WebhookSecret) == "" {
		return fmt.Errorf("stripe.webhook_secret is required")
	}

	if strings.TrimSpace(c.Checkout.SuccessURL) == "" {
		return fmt.Errorf("checkout.success_url is required")
	}

	return nil
}

// Load parses config from defaults, then the optional file, then CHECKOUT_*
// environment variables, and validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.max_body_size_mb": 1,
		"server.mode":             "release",
		"database.dsn":            "",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 25,
		"database.auto_migrate":   true,
		"queue.url":               "",
		"queue.region":            "us-east-1",
		"queue.wait_time_seconds": 10,
		"queue.max_batch_size":    10,
		"stripe.api_key":          "",
		"stripe.webhook_secret":   "",
		"checkout.success_url":    "",
		"consumer.enabled":        true,
		"consumer.worker_count":   10,
		"consumer.op_timeout":     "10s",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("CHECKOUT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CHECKOUT_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
