package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:                   "8080",
		CatalogBackend:         CatalogMemory,
		SQLiteDBPath:           "./test.db",
		QuoteCache:             QuoteCacheMemory,
		RedisAddr:              "localhost:6379",
		QuoteCacheSize:         512,
		QuoteCacheTTL:          10 * time.Minute,
		RateLimitPerMinute:     60,
		AffordabilityThreshold: 0.10,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid memory config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid sqlite catalog",
			mutate:  func(c *Config) { c.CatalogBackend = CatalogSQLite },
			wantErr: false,
		},
		{
			name:    "valid redis cache",
			mutate:  func(c *Config) { c.QuoteCache = QuoteCacheRedis },
			wantErr: false,
		},
		{
			name:    "valid cache off",
			mutate:  func(c *Config) { c.QuoteCache = QuoteCacheOff },
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid catalog backend",
			mutate:      func(c *Config) { c.CatalogBackend = "postgres" },
			wantErr:     true,
			errorString: "invalid catalog backend 'postgres'",
		},
		{
			name: "sqlite catalog missing database path",
			mutate: func(c *Config) {
				c.CatalogBackend = CatalogSQLite
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name:        "invalid quote cache",
			mutate:      func(c *Config) { c.QuoteCache = "memcached" },
			wantErr:     true,
			errorString: "invalid quote cache 'memcached'",
		},
		{
			name: "redis cache missing address",
			mutate: func(c *Config) {
				c.QuoteCache = QuoteCacheRedis
				c.RedisAddr = ""
			},
			wantErr:     true,
			errorString: "Redis address cannot be empty",
		},
		{
			name: "redis cache malformed address",
			mutate: func(c *Config) {
				c.QuoteCache = QuoteCacheRedis
				c.RedisAddr = "localhost"
			},
			wantErr:     true,
			errorString: "must be host:port",
		},
		{
			name: "redis database out of range",
			mutate: func(c *Config) {
				c.QuoteCache = QuoteCacheRedis
				c.RedisDB = 16
			},
			wantErr:     true,
			errorString: "invalid Redis database 16",
		},
		{
			name:        "cache size too small",
			mutate:      func(c *Config) { c.QuoteCacheSize = 0 },
			wantErr:     true,
			errorString: "invalid quote cache size 0: must be at least 1",
		},
		{
			name:        "cache size too large",
			mutate:      func(c *Config) { c.QuoteCacheSize = 200000 },
			wantErr:     true,
			errorString: "invalid quote cache size 200000: must be at most 100000",
		},
		{
			name:        "cache TTL too short",
			mutate:      func(c *Config) { c.QuoteCacheTTL = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid quote cache TTL 500ms: must be at least 1 second",
		},
		{
			name:        "cache TTL too long",
			mutate:      func(c *Config) { c.QuoteCacheTTL = 25 * time.Hour },
			wantErr:     true,
			errorString: "invalid quote cache TTL 25h0m0s: must be at most 24 hours",
		},
		{
			name: "cache off skips size and TTL checks",
			mutate: func(c *Config) {
				c.QuoteCache = QuoteCacheOff
				c.QuoteCacheSize = 0
				c.QuoteCacheTTL = 0
			},
			wantErr: false,
		},
		{
			name:        "rate limit too small",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0",
		},
		{
			name:        "rate limit too large",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 20000 },
			wantErr:     true,
			errorString: "invalid rate limit 20000",
		},
		{
			name:        "affordability threshold zero",
			mutate:      func(c *Config) { c.AffordabilityThreshold = 0 },
			wantErr:     true,
			errorString: "invalid affordability threshold 0",
		},
		{
			name:        "affordability threshold above one",
			mutate:      func(c *Config) { c.AffordabilityThreshold = 1.5 },
			wantErr:     true,
			errorString: "invalid affordability threshold 1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	keys := []string{
		"PORT", "CATALOG_BACKEND", "SQLITE_DB_PATH",
		"QUOTE_CACHE", "REDIS_ADDR", "REDIS_DB",
		"QUOTE_CACHE_SIZE", "QUOTE_CACHE_TTL",
		"RATE_LIMIT_PER_MINUTE", "AFFORDABILITY_THRESHOLD",
	}
	originalVars := map[string]string{}
	for _, key := range keys {
		originalVars[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8080" {
			t.Errorf("Load() Port = %v, want 8080", cfg.Port)
		}
		if cfg.CatalogBackend != CatalogMemory {
			t.Errorf("Load() CatalogBackend = %v, want memory", cfg.CatalogBackend)
		}
		if cfg.QuoteCache != QuoteCacheMemory {
			t.Errorf("Load() QuoteCache = %v, want memory", cfg.QuoteCache)
		}
		if cfg.QuoteCacheSize != 512 {
			t.Errorf("Load() QuoteCacheSize = %v, want 512", cfg.QuoteCacheSize)
		}
		if cfg.QuoteCacheTTL != 10*time.Minute {
			t.Errorf("Load() QuoteCacheTTL = %v, want 10m", cfg.QuoteCacheTTL)
		}
		if cfg.RateLimitPerMinute != 60 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 60", cfg.RateLimitPerMinute)
		}
		if cfg.AffordabilityThreshold != 0.10 {
			t.Errorf("Load() AffordabilityThreshold = %v, want 0.10", cfg.AffordabilityThreshold)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("CATALOG_BACKEND", "sqlite")
		os.Setenv("SQLITE_DB_PATH", "/tmp/quotes.db")
		os.Setenv("QUOTE_CACHE", "redis")
		os.Setenv("REDIS_ADDR", "redis:6379")
		os.Setenv("QUOTE_CACHE_TTL", "45s")
		os.Setenv("RATE_LIMIT_PER_MINUTE", "120")
		os.Setenv("AFFORDABILITY_THRESHOLD", "0.15")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.CatalogBackend != CatalogSQLite {
			t.Errorf("Load() CatalogBackend = %v, want sqlite", cfg.CatalogBackend)
		}
		if cfg.SQLiteDBPath != "/tmp/quotes.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/quotes.db", cfg.SQLiteDBPath)
		}
		if cfg.QuoteCache != QuoteCacheRedis {
			t.Errorf("Load() QuoteCache = %v, want redis", cfg.QuoteCache)
		}
		if cfg.RedisAddr != "redis:6379" {
			t.Errorf("Load() RedisAddr = %v, want redis:6379", cfg.RedisAddr)
		}
		if cfg.QuoteCacheTTL != 45*time.Second {
			t.Errorf("Load() QuoteCacheTTL = %v, want 45s", cfg.QuoteCacheTTL)
		}
		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 120", cfg.RateLimitPerMinute)
		}
		if cfg.AffordabilityThreshold != 0.15 {
			t.Errorf("Load() AffordabilityThreshold = %v, want 0.15", cfg.AffordabilityThreshold)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		os.Setenv("QUOTE_CACHE_SIZE", "invalid")
		os.Setenv("QUOTE_CACHE_TTL", "invalid")
		os.Setenv("AFFORDABILITY_THRESHOLD", "invalid")

		cfg := Load()

		if cfg.QuoteCacheSize != 512 {
			t.Errorf("Load() QuoteCacheSize = %v, want 512 (default for invalid input)", cfg.QuoteCacheSize)
		}
		if cfg.QuoteCacheTTL != 10*time.Minute {
			t.Errorf("Load() QuoteCacheTTL = %v, want 10m (default for invalid input)", cfg.QuoteCacheTTL)
		}
		if cfg.AffordabilityThreshold != 0.10 {
			t.Errorf("Load() AffordabilityThreshold = %v, want 0.10 (default for invalid input)", cfg.AffordabilityThreshold)
		}
	})
}
