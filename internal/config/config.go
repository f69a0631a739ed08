// Package config loads shipyard.yaml and applies SHIPYARD_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/shipyard/internal/cache"
	"github.com/lawnchairsociety/shipyard/internal/database"
	"github.com/lawnchairsociety/shipyard/internal/throttle"
)

// Config holds service-wide configuration settings.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Connections ConnectionsConfig `yaml:"connections"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Database    DatabaseConfig    `yaml:"database"`
	Cache       CacheConfig       `yaml:"cache"`
	Generator   GeneratorConfig   `yaml:"generator"`
}

// ServerConfig holds HTTP and WebSocket listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// AllowedOrigins is a list of origins allowed for CORS and WebSocket upgrades.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int `yaml:"idle_timeout_seconds"`
}

// ConnectionsConfig holds WebSocket connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// SessionsConfig throttles how fast a single viewer session may request ships.
type SessionsConfig struct {
	ThrottleEnabled bool `yaml:"throttle_enabled"`
	MaxSeeds        int  `yaml:"max_seeds"`
	WindowSeconds   int  `yaml:"window_seconds"`
}

// RateLimitConfig holds per-client HTTP request limits.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`

	// TrustProxy honours X-Forwarded-For and X-Real-IP when identifying clients.
	TrustProxy bool `yaml:"trust_proxy"`
}

// DatabaseConfig selects the catalog store.
type DatabaseConfig struct {
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig mirrors database.PostgresConfig with YAML tags.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `yaml:"conn_max_lifetime_seconds"`
}

// CacheConfig holds snapshot cache settings. When Enabled is false an in-memory cache is used.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	TTLSeconds    int    `yaml:"ttl_seconds"`
	MemoryEntries int    `yaml:"memory_entries"`
}

// GeneratorConfig holds ship generation settings.
type GeneratorConfig struct {
	// DefaultSeed replaces blank seeds. Empty means a fresh random seed each time.
	DefaultSeed string `yaml:"default_seed"`

	// HistoryLimit is the number of seed visits kept and the default page size.
	HistoryLimit int `yaml:"history_limit"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() *Config {
	pg := database.DefaultPostgresConfig()
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			AllowedOrigins:      []string{}, // Same-origin only by default
			MaxMessageSize:      4096,
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
			IdleTimeoutSeconds:  60,
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 3,
			MaxTotal: 100,
		},
		Sessions: SessionsConfig{
			ThrottleEnabled: true,
			MaxSeeds:        20,
			WindowSeconds:   10,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "data/shipyard.db",
			Postgres: PostgresConfig{
				Host:                   pg.Host,
				Port:                   pg.Port,
				SSLMode:                pg.SSLMode,
				MaxOpenConns:           pg.MaxOpenConns,
				MaxIdleConns:           pg.MaxIdleConns,
				ConnMaxLifetimeSeconds: int(pg.ConnMaxLifetime / time.Second),
			},
		},
		Cache: CacheConfig{
			Addr:          "localhost:6379",
			TTLSeconds:    3600,
			MemoryEntries: cache.DefaultMemoryEntries,
		},
		Generator: GeneratorConfig{
			HistoryLimit: 100,
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides settings from SHIPYARD_* environment variables.
// Malformed numeric or boolean values are reported and leave the setting unchanged.
func (c *Config) ApplyEnv() error {
	var errs []string
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, key)
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, key)
				return
			}
			*dst = b
		}
	}

	str("SHIPYARD_ADDR", &c.Server.Addr)
	if v, ok := os.LookupEnv("SHIPYARD_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	num("SHIPYARD_MAX_PER_IP", &c.Connections.MaxPerIP)
	num("SHIPYARD_MAX_CONNECTIONS", &c.Connections.MaxTotal)
	flag("SHIPYARD_SESSION_THROTTLE", &c.Sessions.ThrottleEnabled)
	flag("SHIPYARD_RATE_LIMIT_ENABLED", &c.RateLimit.Enabled)
	flag("SHIPYARD_TRUST_PROXY", &c.RateLimit.TrustProxy)

	str("SHIPYARD_DB_DRIVER", &c.Database.Driver)
	str("SHIPYARD_SQLITE_PATH", &c.Database.SQLitePath)
	str("SHIPYARD_PG_HOST", &c.Database.Postgres.Host)
	num("SHIPYARD_PG_PORT", &c.Database.Postgres.Port)
	str("SHIPYARD_PG_USER", &c.Database.Postgres.User)
	str("SHIPYARD_PG_PASSWORD", &c.Database.Postgres.Password)
	str("SHIPYARD_PG_DATABASE", &c.Database.Postgres.Database)
	str("SHIPYARD_PG_SSLMODE", &c.Database.Postgres.SSLMode)

	flag("SHIPYARD_CACHE_ENABLED", &c.Cache.Enabled)
	str("SHIPYARD_REDIS_URL", &c.Cache.URL)
	str("SHIPYARD_REDIS_ADDR", &c.Cache.Addr)
	str("SHIPYARD_REDIS_PASSWORD", &c.Cache.Password)

	str("SHIPYARD_DEFAULT_SEED", &c.Generator.DefaultSeed)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(errs, ", "))
	}
	return nil
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ThrottleConfig converts the sessions section into a throttle.Config.
func (c *Config) ThrottleConfig() throttle.Config {
	return throttle.ConfigFromYAML(c.Sessions.ThrottleEnabled, c.Sessions.MaxSeeds, c.Sessions.WindowSeconds)
}

// DatabaseConfig converts the YAML section into a database.Config.
func (c *Config) DatabaseConfig() database.Config {
	pg := c.Database.Postgres
	return database.Config{
		Driver:     c.Database.Driver,
		SQLitePath: c.Database.SQLitePath,
		Postgres: database.PostgresConfig{
			Host:            pg.Host,
			Port:            pg.Port,
			User:            pg.User,
			Password:        pg.Password,
			Database:        pg.Database,
			SSLMode:         pg.SSLMode,
			MaxOpenConns:    pg.MaxOpenConns,
			MaxIdleConns:    pg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(pg.ConnMaxLifetimeSeconds) * time.Second,
		},
	}
}

// CacheConfig converts the YAML section into a cache.Config.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Enabled:       c.Cache.Enabled,
		URL:           c.Cache.URL,
		Addr:          c.Cache.Addr,
		Password:      c.Cache.Password,
		DB:            c.Cache.DB,
		TTL:           time.Duration(c.Cache.TTLSeconds) * time.Second,
		MemoryEntries: c.Cache.MemoryEntries,
	}
}

// ReadTimeout returns the HTTP read timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the HTTP write timeout.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the HTTP keep-alive timeout.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (s *ServerConfig) IsOriginAllowed(origin, requestHost string) bool {
	// If no origins configured, enforce same-origin policy
	if len(s.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range s.AllowedOrigins {
		if allowed == "*" {
			return true
		}
		if allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// Extract host from origin URL (e.g., "http://localhost:3000" -> "localhost:3000")
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
