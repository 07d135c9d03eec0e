package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backend and cache selector values accepted by Validate.
const (
	CatalogMemory = "memory"
	CatalogSQLite = "sqlite"

	QuoteCacheOff    = "off"
	QuoteCacheMemory = "memory"
	QuoteCacheRedis  = "redis"
)

type Config struct {
	// HTTP Server
	Port string

	// Preset catalog
	CatalogBackend string
	SQLiteDBPath   string

	// Quote cache
	QuoteCache     string
	RedisAddr      string
	RedisDB        int
	QuoteCacheSize int
	QuoteCacheTTL  time.Duration

	// Request limiting
	RateLimitPerMinute int

	// Affordability classification: ceiling for the share of monthly income,
	// as a fraction.
	AffordabilityThreshold float64
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		CatalogBackend: getEnv("CATALOG_BACKEND", CatalogMemory),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/autoloan.db"),

		QuoteCache:     getEnv("QUOTE_CACHE", QuoteCacheMemory),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		QuoteCacheSize: getEnvInt("QUOTE_CACHE_SIZE", 512),
		QuoteCacheTTL:  getEnvDuration("QUOTE_CACHE_TTL", 10*time.Minute),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		AffordabilityThreshold: getEnvFloat("AFFORDABILITY_THRESHOLD", 0.10),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validCatalogs := []string{CatalogMemory, CatalogSQLite}
	if !oneOf(c.CatalogBackend, validCatalogs) {
		errors = append(errors, fmt.Sprintf("invalid catalog backend '%s': must be one of %v", c.CatalogBackend, validCatalogs))
	}

	if c.CatalogBackend == CatalogSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite catalog")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	validCaches := []string{QuoteCacheOff, QuoteCacheMemory, QuoteCacheRedis}
	if !oneOf(c.QuoteCache, validCaches) {
		errors = append(errors, fmt.Sprintf("invalid quote cache '%s': must be one of %v", c.QuoteCache, validCaches))
	}

	if c.QuoteCache == QuoteCacheRedis {
		if c.RedisAddr == "" {
			errors = append(errors, "Redis address cannot be empty when using redis quote cache")
		} else if _, _, err := net.SplitHostPort(c.RedisAddr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Redis address '%s': must be host:port", c.RedisAddr))
		}
		if c.RedisDB < 0 || c.RedisDB > 15 {
			errors = append(errors, fmt.Sprintf("invalid Redis database %d: must be between 0 and 15", c.RedisDB))
		}
	}

	if c.QuoteCache == QuoteCacheMemory {
		if c.QuoteCacheSize < 1 {
			errors = append(errors, fmt.Sprintf("invalid quote cache size %d: must be at least 1", c.QuoteCacheSize))
		} else if c.QuoteCacheSize > 100000 {
			errors = append(errors, fmt.Sprintf("invalid quote cache size %d: must be at most 100000", c.QuoteCacheSize))
		}
	}

	if c.QuoteCache != QuoteCacheOff {
		if c.QuoteCacheTTL < time.Second {
			errors = append(errors, fmt.Sprintf("invalid quote cache TTL %v: must be at least 1 second", c.QuoteCacheTTL))
		} else if c.QuoteCacheTTL > 24*time.Hour {
			errors = append(errors, fmt.Sprintf("invalid quote cache TTL %v: must be at most 24 hours", c.QuoteCacheTTL))
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	} else if c.RateLimitPerMinute > 10000 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at most 10000 requests per minute", c.RateLimitPerMinute))
	}

	if c.AffordabilityThreshold <= 0 || c.AffordabilityThreshold > 1 {
		errors = append(errors, fmt.Sprintf("invalid affordability threshold %v: must be a fraction in (0, 1]", c.AffordabilityThreshold))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func oneOf(value string, valid []string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
