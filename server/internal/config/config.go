package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold over a scenario summary.
type AlertRule struct {
	// Name identifies the rule and keys deduplication.
	Name string `yaml:"name"`

	// Condition is "field op value" over summary fields, e.g.
	// "critical_events >= 5", "avg_risk > 2.5", "final_warning_margin <= 2".
	Condition string `yaml:"condition"`

	// Scenario restricts the rule to one scenario ID. Empty matches every
	// scenario in the sweep.
	Scenario string `yaml:"scenario"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires after an alert fires. Defaults to 15m.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv names the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Default values for the server configuration.
const (
	DefaultGRPCPort          = 50051
	DefaultHTTPPort          = 8080
	DefaultSweepTTL          = 24 * time.Hour
	DefaultBroadcastInterval = 5 * time.Second
)

// Config holds the `server:` section of the shared config file. The
// `modeler:` key in the same file is ignored.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// GRPCPort is where modelers publish sweeps (default 50051).
	GRPCPort int `yaml:"grpc_port"`

	// HTTPPort serves the REST API, WebSocket hub and /metrics (default 8080).
	HTTPPort int `yaml:"http_port"`

	Auth AuthConfig `yaml:"auth"`

	// Sweeps controls in-memory retention of the latest sweep per site.
	Sweeps SweepConfig `yaml:"sweeps"`

	// BroadcastInterval is how often the WebSocket hub pushes the snapshot.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	Alerts AlertsConfig `yaml:"alerts"`
}

// AuthConfig controls client authentication on the server side.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv names the environment variable holding the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the gRPC metadata key to read the key from. Defaults to
	// "x-api-key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// SweepConfig controls sweep retention.
type SweepConfig struct {
	// TTL is how long a site's sweep stays visible after it was received.
	// Default: 24h.
	TTL time.Duration `yaml:"ttl"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no config file is supplied.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCPort:          DefaultGRPCPort,
			HTTPPort:          DefaultHTTPPort,
			Sweeps:            SweepConfig{TTL: DefaultSweepTTL},
			BroadcastInterval: DefaultBroadcastInterval,
		},
	}
}

func validate(cfg *Config) error {
	s := cfg.Server
	if s.GRPCPort <= 0 || s.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port %d is out of range [1, 65535]", s.GRPCPort)
	}
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if s.GRPCPort == s.HTTPPort {
		return fmt.Errorf("server.grpc_port and server.http_port must differ")
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	if s.Sweeps.TTL <= 0 {
		return fmt.Errorf("server.sweeps.ttl must be positive")
	}
	if s.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}

	names := make(map[string]bool, len(s.Alerts.Rules))
	for i, r := range s.Alerts.Rules {
		if r.Name == "" {
			return fmt.Errorf("server.alerts.rules[%d]: name is required", i)
		}
		if names[r.Name] {
			return fmt.Errorf("server.alerts.rules[%d]: duplicate name %q", i, r.Name)
		}
		names[r.Name] = true
		if r.Condition == "" {
			return fmt.Errorf("server.alerts.rules[%d] %q: condition is required", i, r.Name)
		}
		switch r.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("server.alerts.rules[%d] %q: severity %q unknown", i, r.Name, r.Severity)
		}
		if r.Cooldown < 0 {
			return fmt.Errorf("server.alerts.rules[%d] %q: cooldown must not be negative", i, r.Name)
		}
	}
	for i, w := range s.Alerts.Webhooks {
		switch w.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("server.alerts.webhooks[%d]: type %q unknown: want slack|teams|http", i, w.Type)
		}
	}
	return nil
}
