package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Pricing  PricingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// PricingConfig holds the pricing engine's tunables
type PricingConfig struct {
	TolerancePercent float64       // allowed client price deviation, inclusive
	CommitDedupeTTL  time.Duration // how long redemption commits are deduplicated
	DefaultCurrency  string
}

// Load reads configuration in priority order: ERP_-prefixed environment
// variables override config.toml, which overrides the built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Pricing: PricingConfig{
			TolerancePercent: v.GetFloat64("pricing.tolerance_percent"),
			CommitDedupeTTL:  v.GetDuration("pricing.commit_dedupe_ttl"),
			DefaultCurrency:  v.GetString("pricing.default_currency"),
		},
	}
}

func setString(target *string, def string) {
	if *target == "" {
		*target = def
	}
}

func setInt(target *int, def int) {
	if *target == 0 {
		*target = def
	}
}

func setDuration(target *time.Duration, def time.Duration) {
	if *target == 0 {
		*target = def
	}
}

// applyDefaults fills in every unset field with its built-in default.
func applyDefaults(cfg *Config) {
	setString(&cfg.App.Name, "pricing-service")
	setString(&cfg.App.Env, "development")
	setString(&cfg.App.Port, "8080")

	setString(&cfg.Database.Host, "localhost")
	setInt(&cfg.Database.Port, 5432)
	setString(&cfg.Database.User, "postgres")
	setString(&cfg.Database.DBName, "pricing")
	setString(&cfg.Database.SSLMode, "disable")
	setInt(&cfg.Database.MaxOpenConns, 25)
	setInt(&cfg.Database.MaxIdleConns, 5)
	setInt(&cfg.Database.ConnMaxLifetime, 60)
	setInt(&cfg.Database.ConnMaxIdleTime, 30)

	setString(&cfg.Redis.Host, "localhost")
	setInt(&cfg.Redis.Port, 6379)

	setDuration(&cfg.JWT.AccessTokenExpiration, 15*time.Minute)
	setString(&cfg.JWT.Issuer, "pricing-service")

	setString(&cfg.Log.Level, "info")
	setString(&cfg.Log.Format, "console")
	setString(&cfg.Log.Output, "stdout")

	setDuration(&cfg.HTTP.ReadTimeout, 15*time.Second)
	setDuration(&cfg.HTTP.WriteTimeout, 15*time.Second)
	setDuration(&cfg.HTTP.IdleTimeout, 60*time.Second)
	setInt(&cfg.HTTP.MaxHeaderBytes, 1<<20)
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20
	}
	setInt(&cfg.HTTP.RateLimitRequests, 100)
	setDuration(&cfg.HTTP.RateLimitWindow, time.Minute)

	// CORS origins intentionally have no "*" fallback. An empty list means no
	// cross-origin requests until origins are configured explicitly.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID"}
	}

	if cfg.Pricing.TolerancePercent == 0 {
		cfg.Pricing.TolerancePercent = 1.0
	}
	setDuration(&cfg.Pricing.CommitDedupeTTL, 24*time.Hour)
	setString(&cfg.Pricing.DefaultCurrency, "USD")
}

// validate rejects configurations that would misbehave at runtime. Production
// additionally requires real secrets and TLS to the database.
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Pricing.TolerancePercent < 0 {
		return fmt.Errorf("pricing.tolerance_percent cannot be negative")
	}
	if c.Pricing.CommitDedupeTTL < 0 {
		return fmt.Errorf("pricing.commit_dedupe_ttl cannot be negative")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
