package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"goodworks"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
		WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
		// Comma-separated path prefixes reachable without a session.
		// "/" matches the landing page only, everything else by prefix.
		PublicPaths string `envconfig:"PUBLIC_PATHS" default:"/,/sign-in,/healthz,/metrics,/api/webhooks,/api/session"`
	}

	Storage struct {
		Dir string `envconfig:"STORAGE_DIR" default:"data"`
		Key string `envconfig:"STORAGE_KEY" default:"demo_donations_v1"`
	}

	// Delays before each automatic transition fires, measured from
	// scheduling. Must be strictly increasing.
	Lifecycle struct {
		AcceptAfter   time.Duration `envconfig:"LIFECYCLE_ACCEPT_AFTER" default:"4s"`
		PickupAfter   time.Duration `envconfig:"LIFECYCLE_PICKUP_AFTER" default:"7s"`
		CompleteAfter time.Duration `envconfig:"LIFECYCLE_COMPLETE_AFTER" default:"11s"`
	}

	Admin struct {
		Username string `envconfig:"ADMIN_USERNAME" default:"admin"`
		Password string `envconfig:"ADMIN_PASSWORD" default:"admin"`
		Name     string `envconfig:"ADMIN_NAME" default:"Venkatesh"`
		Initials string `envconfig:"ADMIN_INITIALS" default:"V"`
	}

	Kafka struct {
		// Empty brokers selects the console producer.
		Brokers string `envconfig:"KAFKA_BROKERS" default:""`
		Topic   string `envconfig:"KAFKA_TOPIC" default:"donation_audit"`
	}

	Audit struct {
		Workers       int           `envconfig:"AUDIT_WORKERS" default:"2"`
		BatchSize     int           `envconfig:"AUDIT_BATCH_SIZE" default:"5"`
		FlushInterval time.Duration `envconfig:"AUDIT_FLUSH_INTERVAL" default:"500ms"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if !(cfg.Lifecycle.AcceptAfter < cfg.Lifecycle.PickupAfter && cfg.Lifecycle.PickupAfter < cfg.Lifecycle.CompleteAfter) {
		return nil, fmt.Errorf("lifecycle delays must be strictly increasing: %v, %v, %v",
			cfg.Lifecycle.AcceptAfter, cfg.Lifecycle.PickupAfter, cfg.Lifecycle.CompleteAfter)
	}

	return &cfg, nil
}

func (c *Config) PublicPathList() []string {
	parts := strings.Split(c.Server.PublicPaths, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) KafkaBrokerList() []string {
	if c.Kafka.Brokers == "" {
		return nil
	}
	parts := strings.Split(c.Kafka.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
