package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "pricing-service", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1.0, cfg.Pricing.TolerancePercent)
	assert.Equal(t, 24*time.Hour, cfg.Pricing.CommitDedupeTTL)
	assert.Equal(t, "USD", cfg.Pricing.DefaultCurrency)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
}

func TestApplyDefaultsDoesNotOverride(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Port: "9090"},
		Pricing: PricingConfig{
			TolerancePercent: 2.5,
			DefaultCurrency:  "EUR",
		},
	}
	applyDefaults(cfg)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 2.5, cfg.Pricing.TolerancePercent)
	assert.Equal(t, "EUR", cfg.Pricing.DefaultCurrency)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("valid development config", func(t *testing.T) {
		cfg := base()
		assert.NoError(t, cfg.validate())
	})

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxOpenConns = 5
		cfg.Database.MaxIdleConns = 10
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("negative tolerance rejected", func(t *testing.T) {
		cfg := base()
		cfg.Pricing.TolerancePercent = -0.5
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tolerance_percent")
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production requires long jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.JWT.Secret = "short"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("production forbids sslmode disable", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("production forbids wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "pricing",
		Password: "p@ss:word/1",
		DBName:   "pricing",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss:word/1")
}
