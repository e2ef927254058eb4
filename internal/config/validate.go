package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Store.validate(c.Database); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	if err := c.Platform.validate(); err != nil {
		return fmt.Errorf("platform: %w", err)
	}

	if c.RateLimit.LoginPerMinute < 0 || c.RateLimit.WritesPerMinute < 0 {
		return fmt.Errorf("rate_limit: limits must not be negative")
	}

	return nil
}

func (s *StoreConfig) validate(db DatabaseConfig) error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case BackendPostgres:
		if db.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres backend")
		}
	case BackendSQLite:
		if s.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}
	return nil
}

func (p *PlatformConfig) validate() error {
	if p.MarketplaceName == "" || len(p.MarketplaceName) > 32 {
		return fmt.Errorf("marketplace_name must be 1-32 bytes (got %d)", len(p.MarketplaceName))
	}
	switch p.ReviewPolicy {
	case "open", "holder":
	default:
		return fmt.Errorf("review_policy must be open or holder (got %q)", p.ReviewPolicy)
	}
	return nil
}
