package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensei.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Addr() != "localhost:8080" {
		t.Errorf("Addr() = %q, want localhost:8080", cfg.Addr())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9000
dev = true
trusted_proxies = ["10.0.0.0/8", "127.0.0.1"]

[storage]
path = "games.db"

[cache]
redis_url = "redis://localhost:6379/0"
ttl = "2h"

[limits]
rate = 20
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 9000 || !cfg.Server.Dev || cfg.Server.Host != "localhost" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if len(cfg.Server.TrustedProxies) != 2 || cfg.Server.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("TrustedProxies = %v", cfg.Server.TrustedProxies)
	}
	if cfg.Storage.Path != "games.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("Cache.TTL = %v, want 2h", cfg.Cache.TTL)
	}
	if cfg.Limits.Rate != 20 || cfg.Limits.AuthRate != 5 {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[server]\nprot = 1\n", "unknown config keys"},
		{"bad port", "[server]\nport = 70000\n", "out of range"},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", "cache.ttl"},
		{"short secret", "[auth]\njwt_secret = \"short\"\n", "jwt_secret"},
		{"lock without file", "[server]\npid_lock = true\n", "pid_file"},
		{"bad proxy", "[server]\ntrusted_proxies = [\"proxy.local\"]\n", "trusted_proxies"},
		{"syntax", "[server\n", "failed to read"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load error = %v, want containing %q", err, tc.want)
			}
		})
	}
}
