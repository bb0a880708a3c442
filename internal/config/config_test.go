package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	for _, key := range []string{EnvPostingKey, EnvAuthor, EnvPort, EnvRedisURL} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 5000 {
		t.Fatalf("expected default port 5000, got %d", cfg.Port)
	}
	if len(cfg.Nodes) != len(DefaultNodes) {
		t.Fatalf("expected %d default nodes, got %d", len(DefaultNodes), len(cfg.Nodes))
	}
	if !cfg.IsDev() {
		t.Fatalf("expected development env by default")
	}
	if cfg.KeyConfigured() {
		t.Fatalf("expected no posting key by default")
	}
}

func TestLoadYAMLAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "port: 8080\nauthor: fileauthor\nposting_key: filekey\nnodes:\n  - https://node-a.example/\n  - https://node-b.example\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(EnvPostingKey, "")
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvAuthor, "envauthor")
	t.Setenv(EnvPort, "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Author != "envauthor" {
		t.Fatalf("env should override file author, got %q", cfg.Author)
	}
	if cfg.Port != 9090 {
		t.Fatalf("env should override file port, got %d", cfg.Port)
	}
	if cfg.PostingKey != "filekey" {
		t.Fatalf("file posting key should survive, got %q", cfg.PostingKey)
	}
	if got := cfg.Nodes[0]; got != "https://node-a.example" {
		t.Fatalf("expected trailing slash trimmed, got %q", got)
	}
	if len(cfg.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(cfg.Nodes))
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("port: 99999\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("prot: 8080\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown config key")
	}
}
