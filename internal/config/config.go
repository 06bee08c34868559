// Package config loads roleguard settings from a YAML file and ROLEGUARD_* env vars.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendClaims     = "claims"
	BackendIntrospect = "introspect"
	BackendFGA        = "fga"
)

type Config struct {
	Listen         string        `yaml:"listen"          mapstructure:"listen"`
	ClientID       string        `yaml:"client_id"       mapstructure:"client_id"` // namespace for unqualified role names
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	Log            Log           `yaml:"log"             mapstructure:"log"`
	Grants         Grants        `yaml:"grants"          mapstructure:"grants"`
	Tracing        Tracing       `yaml:"tracing"         mapstructure:"tracing"`
	Operations     []Operation   `yaml:"operations"      mapstructure:"operations"`
}

type Log struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json"  mapstructure:"json"`
}

// Tracing exports spans over OTLP/HTTP when enabled.
type Tracing struct {
	Enabled     bool    `yaml:"enabled"      mapstructure:"enabled"`
	Endpoint    string  `yaml:"endpoint"     mapstructure:"endpoint"` // e.g. http://localhost:4318/v1/traces
	SampleRatio float64 `yaml:"sample_ratio" mapstructure:"sample_ratio"`
}

type Grants struct {
	Backend    string     `yaml:"backend"    mapstructure:"backend"`
	Introspect Introspect `yaml:"introspect" mapstructure:"introspect"`
	FGA        FGA        `yaml:"fga"        mapstructure:"fga"`
	Cache      Cache      `yaml:"cache"      mapstructure:"cache"`
}

type Introspect struct {
	URL          string        `yaml:"url"           mapstructure:"url"`
	ClientID     string        `yaml:"client_id"     mapstructure:"client_id"`
	ClientSecret string        `yaml:"client_secret" mapstructure:"client_secret"`
	Timeout      time.Duration `yaml:"timeout"       mapstructure:"timeout"`
}

type FGA struct {
	APIURL   string `yaml:"api_url"   mapstructure:"api_url"`
	StoreID  string `yaml:"store_id"  mapstructure:"store_id"`
	ModelID  string `yaml:"model_id"  mapstructure:"model_id"`  // optional but recommended in prod
	APIToken string `yaml:"api_token" mapstructure:"api_token"` // optional
	UserType string `yaml:"user_type" mapstructure:"user_type"`
	RoleType string `yaml:"role_type" mapstructure:"role_type"`
	Relation string `yaml:"relation"  mapstructure:"relation"`
}

type Cache struct {
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"        mapstructure:"ttl"`
}

// Operation declares the roles required by one operation.
type Operation struct {
	ID    string   `yaml:"id"    mapstructure:"id"`
	Roles []string `yaml:"roles" mapstructure:"roles"`
	Match string   `yaml:"match" mapstructure:"match"` // all|any, default all
}

// DefaultPath is ~/.roleguard/config.yaml, or ./.roleguard/config.yaml when HOME is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".roleguard", "config.yaml")
	}
	return filepath.Join(home, ".roleguard", "config.yaml")
}

// Load reads path, falling back to defaults when the file does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("listen", ":8090")
	v.SetDefault("client_id", "")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("grants.backend", BackendClaims)
	v.SetDefault("grants.introspect.url", "")
	v.SetDefault("grants.introspect.client_id", "")
	v.SetDefault("grants.introspect.client_secret", "")
	v.SetDefault("grants.introspect.timeout", "5s")
	v.SetDefault("grants.fga.api_url", "http://localhost:8080")
	v.SetDefault("grants.fga.store_id", "")
	v.SetDefault("grants.fga.model_id", "")
	v.SetDefault("grants.fga.api_token", "")
	v.SetDefault("grants.fga.user_type", "user")
	v.SetDefault("grants.fga.role_type", "role")
	v.SetDefault("grants.fga.relation", "assignee")
	v.SetDefault("grants.cache.redis_addr", "")
	v.SetDefault("grants.cache.ttl", "30s")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_ratio", 1.0)

	// Env overrides: ROLEGUARD_LISTEN, ROLEGUARD_GRANTS_BACKEND, etc.
	v.SetEnvPrefix("ROLEGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Read file if it exists, otherwise return defaults without error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that the selected grant backend has what it needs.
func (c *Config) Validate() error {
	switch c.Grants.Backend {
	case BackendClaims:
	case BackendIntrospect:
		if c.Grants.Introspect.URL == "" {
			return errors.New("grants.introspect.url is required for the introspect backend")
		}
	case BackendFGA:
		if c.Grants.FGA.APIURL == "" || c.Grants.FGA.StoreID == "" {
			return errors.New("grants.fga.api_url and grants.fga.store_id are required for the fga backend")
		}
	default:
		return fmt.Errorf("unknown grants.backend %q", c.Grants.Backend)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return errors.New("tracing.endpoint is required when tracing is enabled")
	}
	if c.Grants.Cache.RedisAddr != "" && c.Grants.Cache.TTL <= 0 {
		return errors.New("grants.cache.ttl must be positive when a cache is configured")
	}
	return nil
}

// Logger builds the process logger described by l.
func (l Log) Logger(w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
