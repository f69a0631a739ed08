package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.Server.AllowedOrigins)
	}

	if cfg.Server.MaxMessageSize != 4096 {
		t.Errorf("expected max message size 4096, got %d", cfg.Server.MaxMessageSize)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver by default, got %q", cfg.Database.Driver)
	}

	if cfg.Cache.Enabled {
		t.Error("expected Redis cache disabled by default")
	}

	if cfg.Generator.DefaultSeed != "" {
		t.Errorf("expected no default seed, got %q", cfg.Generator.DefaultSeed)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/shipyard.yaml")

	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected default config for missing file, got nil")
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "shipyard.yaml")

	content := `
server:
  addr: ":9000"
  allowed_origins:
    - "https://example.com"
    - "http://localhost:3000"
  max_message_size: 8192
rate_limit:
  enabled: false
  burst: 5
database:
  driver: postgres
  postgres:
    host: db.internal
    database: shipyard
cache:
  enabled: true
  ttl_seconds: 60
generator:
  default_seed: spaceship-abc123
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("expected 2 allowed origins, got %d", len(cfg.Server.AllowedOrigins))
	}
	if cfg.Server.MaxMessageSize != 8192 {
		t.Errorf("expected max message size 8192, got %d", cfg.Server.MaxMessageSize)
	}
	if cfg.RateLimit.Enabled {
		t.Error("expected rate limiting disabled")
	}
	if cfg.RateLimit.RequestsPerSecond != 10 {
		t.Errorf("unset keys should keep defaults, got rps %v", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.Database.Postgres.Port != 5432 {
		t.Errorf("expected default postgres port, got %d", cfg.Database.Postgres.Port)
	}
	if cfg.Generator.DefaultSeed != "spaceship-abc123" {
		t.Errorf("expected default seed, got %q", cfg.Generator.DefaultSeed)
	}

	dbc := cfg.DatabaseConfig()
	if dbc.Driver != "postgres" || dbc.Postgres.Host != "db.internal" || dbc.Postgres.Database != "shipyard" {
		t.Errorf("DatabaseConfig() = %+v", dbc)
	}
	if dbc.Postgres.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, want 5m", dbc.Postgres.ConnMaxLifetime)
	}

	cc := cfg.CacheConfig()
	if !cc.Enabled || cc.TTL != time.Minute {
		t.Errorf("CacheConfig() = %+v", cc)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "shipyard.yaml")
	if err := os.WriteFile(configPath, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg == nil || cfg.Server.Addr != ":8080" {
		t.Error("expected defaults alongside the parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SHIPYARD_ADDR", ":7000")
	t.Setenv("SHIPYARD_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SHIPYARD_MAX_PER_IP", "9")
	t.Setenv("SHIPYARD_CACHE_ENABLED", "true")
	t.Setenv("SHIPYARD_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("SHIPYARD_DEFAULT_SEED", "env-seed")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Connections.MaxPerIP != 9 {
		t.Errorf("MaxPerIP = %d", cfg.Connections.MaxPerIP)
	}
	if !cfg.Cache.Enabled || cfg.Cache.URL != "redis://localhost:6379/1" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Generator.DefaultSeed != "env-seed" {
		t.Errorf("DefaultSeed = %q", cfg.Generator.DefaultSeed)
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	t.Setenv("SHIPYARD_PG_PORT", "not-a-port")
	t.Setenv("SHIPYARD_TRUST_PROXY", "maybe")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for malformed values")
	}
	if cfg.Database.Postgres.Port != 5432 {
		t.Errorf("malformed value should leave port unchanged, got %d", cfg.Database.Postgres.Port)
	}
	if cfg.RateLimit.TrustProxy {
		t.Error("malformed value should leave trust_proxy unchanged")
	}
}

func TestTimeouts(t *testing.T) {
	s := DefaultConfig().Server
	if s.ReadTimeout() != 15*time.Second || s.WriteTimeout() != 30*time.Second || s.IdleTimeout() != time.Minute {
		t.Errorf("timeouts = %v %v %v", s.ReadTimeout(), s.WriteTimeout(), s.IdleTimeout())
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := ServerConfig{
		AllowedOrigins: []string{},
	}

	if !cfg.IsOriginAllowed("", "localhost:4000") {
		t.Error("expected empty origin to be allowed (same-origin)")
	}

	if !cfg.IsOriginAllowed("http://localhost:4000", "localhost:4000") {
		t.Error("expected matching origin to be allowed (same-origin)")
	}

	if cfg.IsOriginAllowed("http://evil.com", "localhost:4000") {
		t.Error("expected different origin to be rejected (same-origin policy)")
	}
}

func TestIsOriginAllowed_Wildcard(t *testing.T) {
	cfg := ServerConfig{
		AllowedOrigins: []string{"*"},
	}

	if !cfg.IsOriginAllowed("http://anything.com", "localhost:4000") {
		t.Error("expected wildcard to allow any origin")
	}

	if !cfg.IsOriginAllowed("", "localhost:4000") {
		t.Error("expected wildcard to allow empty origin")
	}
}

func TestIsOriginAllowed_ExactMatch(t *testing.T) {
	cfg := ServerConfig{
		AllowedOrigins: []string{
			"https://example.com",
			"http://localhost:3000",
		},
	}

	if !cfg.IsOriginAllowed("https://example.com", "localhost:4000") {
		t.Error("expected exact match to be allowed")
	}

	if !cfg.IsOriginAllowed("http://localhost:3000", "localhost:4000") {
		t.Error("expected exact match to be allowed")
	}

	if cfg.IsOriginAllowed("http://evil.com", "localhost:4000") {
		t.Error("expected non-matching origin to be rejected")
	}

	// Partial match should not work
	if cfg.IsOriginAllowed("https://example.com:8080", "localhost:4000") {
		t.Error("expected partial match to be rejected")
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin      string
		requestHost string
		expected    bool
	}{
		{"", "localhost:4000", true},
		{"http://localhost:4000", "localhost:4000", true},
		{"https://localhost:4000", "localhost:4000", true},
		{"http://localhost:4000/", "localhost:4000", true},
		{"http://example.com", "localhost:4000", false},
		{"http://localhost:3000", "localhost:4000", false},
		{"ws://localhost:4000", "localhost:4000", true},
	}

	for _, tt := range tests {
		result := isSameOrigin(tt.origin, tt.requestHost)
		if result != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v",
				tt.origin, tt.requestHost, result, tt.expected)
		}
	}
}

func TestThrottleConfig(t *testing.T) {
	cfg := DefaultConfig()
	tc := cfg.ThrottleConfig()
	if !tc.Enabled || tc.MaxSeeds != 20 || tc.Window != 10*time.Second {
		t.Errorf("unexpected default throttle config: %+v", tc)
	}

	t.Setenv("SHIPYARD_SESSION_THROTTLE", "false")
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.ThrottleConfig().Enabled {
		t.Error("expected SHIPYARD_SESSION_THROTTLE=false to disable the throttle")
	}
}
