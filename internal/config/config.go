package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage modes for repositories and the audit log.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// DevSigningKey is used when TOKEN_SIGNING_KEY is unset in development.
// Tokens signed with it must never be accepted outside a local run.
const DevSigningKey = "dev-only-signing-key-change-me-0123456789"

type Config struct {
	Port                 string        `mapstructure:"PORT"`
	Env                  string        `mapstructure:"ENV"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32         `mapstructure:"DB_MIN_CONNS"`
	Storage              string        `mapstructure:"AUDIT_STORE"`
	TokenSigningKey      string        `mapstructure:"TOKEN_SIGNING_KEY"`
	CORSOrigins          []string      `mapstructure:"CORS_ORIGINS"`
	LoginRateLimitRPS    float64       `mapstructure:"LOGIN_RATE_LIMIT_RPS"`
	LoginRateLimitBurst  int           `mapstructure:"LOGIN_RATE_LIMIT_BURST"`
	AuditBreakerFailures uint32        `mapstructure:"AUDIT_BREAKER_FAILURES"`
	AuditBreakerTimeout  time.Duration `mapstructure:"AUDIT_BREAKER_TIMEOUT"`
	BodyLimit            string        `mapstructure:"BODY_LIMIT"`
	TrustedProxies       []string      `mapstructure:"TRUSTED_PROXIES"`
	BootstrapAdminUser   string        `mapstructure:"BOOTSTRAP_ADMIN_USER"`
	BootstrapAdminPass   string        `mapstructure:"BOOTSTRAP_ADMIN_PASSWORD"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"AUDIT_STORE", "TOKEN_SIGNING_KEY", "CORS_ORIGINS",
	"LOGIN_RATE_LIMIT_RPS", "LOGIN_RATE_LIMIT_BURST",
	"AUDIT_BREAKER_FAILURES", "AUDIT_BREAKER_TIMEOUT", "BODY_LIMIT", "TRUSTED_PROXIES",
	"BOOTSTRAP_ADMIN_USER", "BOOTSTRAP_ADMIN_PASSWORD",
}

// Load reads configuration from the environment and an optional .env file.
// It does not validate; call Validate before serving.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AUDIT_STORE", StoragePostgres)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 5)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 10)
	v.SetDefault("AUDIT_BREAKER_FAILURES", 5)
	v.SetDefault("AUDIT_BREAKER_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")

	// Bind explicitly so Unmarshal sees env vars without defaults.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))

	if cfg.TokenSigningKey == "" && cfg.IsDev() {
		cfg.TokenSigningKey = DevSigningKey
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesPostgres reports whether repositories and the audit log live in
// PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Storage == StoragePostgres
}

// Validate checks that the configuration is safe to serve with.
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when AUDIT_STORE is %q", StoragePostgres)
		}
	case StorageMemory:
		if c.IsProduction() {
			return fmt.Errorf("AUDIT_STORE=%q is not allowed in production", StorageMemory)
		}
	default:
		return fmt.Errorf("AUDIT_STORE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}

	if len(c.TokenSigningKey) < 32 {
		return fmt.Errorf("TOKEN_SIGNING_KEY must be at least 32 bytes, got %d", len(c.TokenSigningKey))
	}
	if !c.IsDev() && c.TokenSigningKey == DevSigningKey {
		return fmt.Errorf("TOKEN_SIGNING_KEY must be set outside development")
	}

	if c.LoginRateLimitRPS <= 0 || c.LoginRateLimitBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_RPS and LOGIN_RATE_LIMIT_BURST must be positive")
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
	}

	if (c.BootstrapAdminUser == "") != (c.BootstrapAdminPass == "") {
		return fmt.Errorf("BOOTSTRAP_ADMIN_USER and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}

	return nil
}
