package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Fatalf("expected default API base URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("expected 10s API timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("expected 24h session TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Session.KeyPrefix != "session:" {
		t.Fatalf("unexpected session key prefix %q", cfg.Session.KeyPrefix)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected HTTP addr %q", cfg.HTTP.Addr)
	}
}

func TestAppConfig_ParseAPIEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("API_TOKEN_PATH", "data.token")
	t.Setenv("API_MESSAGE_PATH", "error.message")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expected := APIConfig{
		BaseURL:     "https://api.example.com/v1",
		Timeout:     3 * time.Second,
		TokenPath:   "data.token",
		MessagePath: "error.message",
	}

	if !reflect.DeepEqual(cfg.API, expected) {
		t.Fatalf("unexpected API configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.API)
	}
}

func TestAppConfig_ParseRedisEnv(t *testing.T) {
	t.Setenv("REDIS_URI", "redis://cache:6379/2")
	t.Setenv("REDIS_USE_CLUSTER", "true")
	t.Setenv("REDIS_CLUSTER_NODES", "a:7000,b:7001")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	if cfg.Redis.URI != "redis://cache:6379/2" {
		t.Fatalf("unexpected redis URI %q", cfg.Redis.URI)
	}
	if !cfg.Redis.UseCluster {
		t.Fatalf("expected cluster mode")
	}
	if !reflect.DeepEqual(cfg.Redis.ClusterNodes, []string{"a:7000", "b:7001"}) {
		t.Fatalf("unexpected cluster nodes %#v", cfg.Redis.ClusterNodes)
	}
}

func TestAPIConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    APIConfig
		expected APIConfig
	}{
		{
			name:  "empty values fall back to defaults",
			input: APIConfig{},
			expected: APIConfig{
				BaseURL:     DefaultAPIBaseURL,
				Timeout:     10 * time.Second,
				TokenPath:   "accessToken",
				MessagePath: "message",
			},
		},
		{
			name: "trailing slashes are trimmed",
			input: APIConfig{
				BaseURL:     " https://api.example.com// ",
				Timeout:     time.Second,
				TokenPath:   "token",
				MessagePath: "msg",
			},
			expected: APIConfig{
				BaseURL:     "https://api.example.com",
				Timeout:     time.Second,
				TokenPath:   "token",
				MessagePath: "msg",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			cfg.Sanitize()
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Fatalf("expected %#v, got %#v", tt.expected, cfg)
			}
		})
	}
}

func TestSessionConfig_Sanitize(t *testing.T) {
	cfg := SessionConfig{TTL: time.Second}
	cfg.Sanitize()

	if cfg.TTL != time.Minute {
		t.Fatalf("expected TTL to be clamped to one minute, got %v", cfg.TTL)
	}
	if cfg.KeyPrefix != "session:" || cfg.ViewStateKeyPrefix != "view:positions:" {
		t.Fatalf("expected default prefixes, got %q and %q", cfg.KeyPrefix, cfg.ViewStateKeyPrefix)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name       string
		input      HTTPConfig
		wantLevel  int
		wantDomain string
	}{
		{name: "clamps low level", input: HTTPConfig{CompressionLevel: 0}, wantLevel: 1},
		{name: "clamps high level", input: HTTPConfig{CompressionLevel: 42}, wantLevel: 9},
		{
			name:       "keeps registrable domain",
			input:      HTTPConfig{CompressionLevel: 6, CookieDomain: " Positions.Example.com "},
			wantLevel:  6,
			wantDomain: "positions.example.com",
		},
		{
			name:      "drops public suffix domain",
			input:     HTTPConfig{CompressionLevel: 6, CookieDomain: "co.uk"},
			wantLevel: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			cfg.Sanitize()
			if cfg.CompressionLevel != tt.wantLevel {
				t.Fatalf("expected level %d, got %d", tt.wantLevel, cfg.CompressionLevel)
			}
			if cfg.CookieDomain != tt.wantDomain {
				t.Fatalf("expected cookie domain %q, got %q", tt.wantDomain, cfg.CookieDomain)
			}
		})
	}
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	cfg := AppConfig{}
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Fatalf("expected NODE_ENV=development to enable dev mode")
	}
}

func TestMetricsConfig(t *testing.T) {
	t.Setenv("OBSERVABILITY_METRICS_ENABLED", "true")
	t.Setenv("OBSERVABILITY_METRICS_PREFIX", ".ui.")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if got := cfg.Observability.Metrics.Address(); got != "127.0.0.1:8125" {
		t.Fatalf("expected default statsd address, got %q", got)
	}
	if cfg.Observability.Metrics.Prefix != "ui" {
		t.Fatalf("unexpected metrics prefix %q", cfg.Observability.Metrics.Prefix)
	}

	off := MetricsConfig{Enabled: true, StatsdAddress: "  "}
	off.Sanitize()
	if off.Enabled || off.Address() != "" {
		t.Fatalf("expected metrics disabled without address, got %#v", off)
	}
	if off.Prefix != defaultMetricsPrefix {
		t.Fatalf("expected default prefix, got %q", off.Prefix)
	}
}
