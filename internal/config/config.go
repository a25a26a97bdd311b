package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "LEADBOARD_CONFIG"

var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/leadboard/config.yaml",
}

type CRMConfig struct {
	// BaseURL of the upstream CRM REST API.
	BaseURL string `koanf:"base_url" validate:"required,url"`
	// APIToken may be empty at startup; requests fail until it is set.
	APIToken string `koanf:"api_token"`
	// ProjectID is the project whose contacts the dashboard reports on.
	ProjectID int `koanf:"project_id" validate:"required,gt=0"`
	// PageSize for list endpoints. The fetch loop stops when a page comes
	// back short.
	PageSize int `koanf:"page_size" validate:"gte=1,lte=100"`
	// MaxPages caps pagination for any single cursor so a misbehaving
	// upstream cannot loop us forever.
	MaxPages int `koanf:"max_pages" validate:"gte=1"`
	// DetailBatchSize is how many per-contact detail fetches are in flight
	// at once.
	DetailBatchSize int `koanf:"detail_batch_size" validate:"gte=1,lte=100"`
	// RequestsPerSecond throttles outbound calls; the only guard we have
	// against upstream rate limits besides batch size.
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
}

type ServerConfig struct {
	Port            string        `koanf:"port" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RateLimit is requests per minute per client IP on the dashboard
	// endpoints.
	RateLimit      int      `koanf:"rate_limit" validate:"gte=1"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type Config struct {
	CRM      CRMConfig     `koanf:"crm"`
	Server   ServerConfig  `koanf:"server"`
	Log      LogConfig     `koanf:"log"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gt=0"`
}

func defaults() *Config {
	return &Config{
		CRM: CRMConfig{
			BaseURL:           "https://api.spark.re/v2",
			PageSize:          100,
			MaxPages:          50,
			DetailBatchSize:   50,
			RequestsPerSecond: 10,
			Timeout:           15 * time.Second,
		},
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       60,
			AllowedOrigins:  []string{"*"},
		},
		Log:      LogConfig{Level: "info", Format: "json"},
		CacheTTL: 5 * time.Minute,
	}
}

// Load builds the config from defaults, an optional YAML file, and
// LEADBOARD_-prefixed environment variables, in that order of precedence.
// Example: LEADBOARD_CRM__API_TOKEN maps to crm.api_token.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("LEADBOARD_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKey maps LEADBOARD_CRM__API_TOKEN to crm.api_token. A double underscore
// separates sections so single underscores survive inside field names.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "LEADBOARD_"))
	return strings.ReplaceAll(key, "__", ".")
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
