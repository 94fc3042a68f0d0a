package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Success_Defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")

		cfg := Load()

		assert.Equal(t, 10*time.Minute, cfg.TokenTTL)
		assert.Equal(t, 10*time.Minute, cfg.RevocationTTL)
		assert.Equal(t, 10*time.Minute, cfg.ChallengeTTL)
		assert.Equal(t, "jwt", cfg.CookieName)
		assert.True(t, cfg.CookieSecure)
		assert.Equal(t, DriverMemory, cfg.StoreDriver)
		assert.Equal(t, DriverLog, cfg.MailerDriver)
		assert.False(t, cfg.RateLimitEnabled)
		require.NoError(t, cfg.Validate())
	})

	t.Run("Success_RevocationFollowsTokenTTL", func(t *testing.T) {
		t.Setenv("TOKEN_TTL_SECONDS", "3600")

		cfg := Load()

		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, time.Hour, cfg.RevocationTTL)
	})

	t.Run("Success_RevocationOverride", func(t *testing.T) {
		t.Setenv("TOKEN_TTL_SECONDS", "600")
		t.Setenv("REVOCATION_TTL_SECONDS", "7200")

		cfg := Load()

		assert.Equal(t, 2*time.Hour, cfg.RevocationTTL)
	})

	t.Run("Success_Overrides", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "redis")
		t.Setenv("COOKIE_SECURE", "false")
		t.Setenv("SERVER_PORT", "9000")

		cfg := Load()

		assert.Equal(t, DriverRedis, cfg.StoreDriver)
		assert.False(t, cfg.CookieSecure)
		assert.Equal(t, 9000, cfg.ServerPort)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecret:       "secret",
			TokenTTL:        10 * time.Minute,
			RevocationTTL:   10 * time.Minute,
			ChallengeTTL:    10 * time.Minute,
			StoreDriver:     DriverMemory,
			UserStoreDriver: DriverMemory,
			MailerDriver:    DriverLog,
		}
	}

	t.Run("Success_Valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("Error_MissingSecret", func(t *testing.T) {
		cfg := valid()
		cfg.JWTSecret = ""
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("Error_RevocationShorterThanToken", func(t *testing.T) {
		cfg := valid()
		cfg.RevocationTTL = time.Minute
		assert.ErrorContains(t, cfg.Validate(), "REVOCATION_TTL_SECONDS")
	})

	t.Run("Error_UnknownDrivers", func(t *testing.T) {
		cfg := valid()
		cfg.StoreDriver = "etcd"
		cfg.MailerDriver = "carrier-pigeon"
		err := cfg.Validate()
		assert.ErrorContains(t, err, "STORE_DRIVER")
		assert.ErrorContains(t, err, "MAILER_DRIVER")
	})
}

func TestConfig_GetGinMode(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "info"}).GetGinMode())
}
