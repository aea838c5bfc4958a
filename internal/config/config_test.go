package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 150.0, cfg.Fees.PerPersonCharge)
	assert.Equal(t, "Maratib Ali", cfg.Fees.PayeeName)
	assert.Equal(t, "SadaPay", cfg.Fees.BankName)
	assert.Equal(t, "03330374616", cfg.Fees.AccountNumber)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DEFAULT_DELIVERY_FEE", "200.5")
	t.Setenv("SHEETS_RELAY_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 200.5, cfg.Fees.PerPersonCharge)
	assert.Equal(t, time.Minute, cfg.Sheets.RelayInterval)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:      AppConfig{Environment: "development", Timezone: "UTC"},
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "db", Name: "campus", User: "u"},
			Redis:    RedisConfig{Host: "redis"},
			Session:  SessionConfig{Store: "redis"},
			JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Fees:     FeeConfig{PerPersonCharge: 150},
		}
	}

	require.NoError(t, base().Validate())

	cases := map[string]func(c *Config){
		"short secret":      func(c *Config) { c.JWT.Secret = "short" },
		"unknown store":     func(c *Config) { c.Session.Store = "memcached" },
		"pebble needs dir":  func(c *Config) { c.Session.Store = "pebble"; c.Session.PebbleDir = "" },
		"zero fee":          func(c *Config) { c.Fees.PerPersonCharge = 0 },
		"bad timezone":      func(c *Config) { c.App.Timezone = "Mars/Olympus" },
		"production no key": func(c *Config) { c.App.Environment = "production" },
		"smtp needs host":   func(c *Config) { c.Email.Provider = "smtp" },
		"resend needs key":  func(c *Config) { c.Email.Provider = "resend" },
		"unknown mailer":    func(c *Config) { c.Email.Provider = "pigeon" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
