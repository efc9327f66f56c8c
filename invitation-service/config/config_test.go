package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(false)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Port)
	assert.Equal(t, 10, cfg.GetTimeout())
	assert.Equal(t, 1048576, cfg.GetBodyLimit())
	assert.Equal(t, DriverPostgres, cfg.DbDriver)
	assert.Equal(t, 587, cfg.EmailConfig.SmtpPort)
	assert.False(t, cfg.GetIsProduction())
	assert.Nil(t, cfg.JwtParsedPublicKey)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":4000")
	t.Setenv("PRODUCTION", "true")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DSN", ":memory:")
	t.Setenv("EMAIL_SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAIL_SMTP_USER", "noreply@example.com")

	cfg, err := Load(false)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.GetPort())
	assert.True(t, cfg.GetIsProduction())
	assert.Equal(t, DriverSqlite, cfg.DbDriver)
	assert.Equal(t, "noreply@example.com", cfg.EmailConfig.From)

	server := ProvideSmtp(cfg)
	require.NotNil(t, server)
	assert.Equal(t, "smtp.example.com", server.Host)
	assert.Equal(t, 587, server.Port)
}

func TestLoadInvalidPublicKey(t *testing.T) {
	t.Setenv("JWT_PUBLIC_KEY", "bm90IGEga2V5")

	_, err := Load(true)
	assert.Error(t, err)
}

func TestProvideSmtpDisabled(t *testing.T) {
	cfg, err := Load(true)
	require.NoError(t, err)

	assert.Nil(t, ProvideSmtp(cfg))
}

func TestProvideDatabaseUnknownDriver(t *testing.T) {
	_, err := ProvideDatabase(&Config{DbDriver: "oracle"})
	assert.Error(t, err)
}

func TestProvideDatabaseSqlite(t *testing.T) {
	db, err := ProvideDatabase(&Config{DbDriver: DriverSqlite, Dsn: ":memory:", IsProduction: true})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
}
