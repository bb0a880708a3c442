package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 5000
	defaultEnv        = "development"
)

// DefaultNodes is the built-in Steem API node list, tried in order.
// It can be replaced via the config file but never via the environment.
var DefaultNodes = []string{
	"https://api.steemit.com",
	"https://api.steemyy.com",
	"https://api.justyy.com",
	"https://steem.justyy.com",
}

// Environment variable names. Env values take precedence over the YAML file.
const (
	EnvPostingKey = "STEEM_POSTING_KEY"
	EnvAuthor     = "STEEM_AUTHOR"
	EnvPort       = "PORT"
	EnvRedisURL   = "REDIS_URL"
)

// AppConfig holds runtime startup configuration. It is immutable after Load.
type AppConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"` // "development" | "production"
	Author         string   `yaml:"author"`
	PostingKey     string   `yaml:"posting_key"`
	Nodes          []string `yaml:"nodes"`
	RedisURL       string   `yaml:"redis_url"` // empty disables the rate limiter
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type rawAppConfig struct {
	Port               int      `yaml:"port"`
	Env                string   `yaml:"env"`
	NodeEnv            string   `yaml:"node_env"`
	Author             string   `yaml:"author"`
	SteemAuthor        string   `yaml:"steem_author"`
	PostingKey         string   `yaml:"posting_key"`
	SteemPostingKey    string   `yaml:"steem_posting_key"`
	Nodes              []string `yaml:"nodes"`
	SteemNodes         []string `yaml:"steem_nodes"`
	RedisURL           string   `yaml:"redis_url"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// Load reads the optional YAML config file, applies environment overrides
// and validates the result. A missing file is not an error: the gateway is
// primarily configured through the environment.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if decodeErr := decoder.Decode(&raw); decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, decodeErr)
		}
		applyRawAppConfig(&cfg, raw)
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if len(cfg.Nodes) == 0 {
		return nil, errors.New("node list is empty")
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:  defaultPort,
		Env:   defaultEnv,
		Nodes: append([]string(nil), DefaultNodes...),
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.Author); v != "" {
		cfg.Author = v
	}
	if v := strings.TrimSpace(raw.SteemAuthor); v != "" {
		cfg.Author = v
	}
	if v := strings.TrimSpace(raw.PostingKey); v != "" {
		cfg.PostingKey = v
	}
	if v := strings.TrimSpace(raw.SteemPostingKey); v != "" {
		cfg.PostingKey = v
	}
	switch {
	case len(raw.Nodes) > 0:
		cfg.Nodes = normalizeNodes(raw.Nodes)
	case len(raw.SteemNodes) > 0:
		cfg.Nodes = normalizeNodes(raw.SteemNodes)
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	}

	cfg.Env = normalizeEnv(cfg.Env)
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvPostingKey)); v != "" {
		cfg.PostingKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAuthor)); v != "" {
		cfg.Author = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
}

func normalizeNodes(nodes []string) []string {
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		trimmed := strings.TrimRight(strings.TrimSpace(node), "/")
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

// IsDev reports whether the gateway runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// KeyConfigured reports whether a posting credential is present.
func (c *AppConfig) KeyConfigured() bool {
	return strings.TrimSpace(c.PostingKey) != ""
}
