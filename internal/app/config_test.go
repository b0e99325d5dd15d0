package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gorm-trashbin/internal/auth"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.False(t, cfg.Server.LogFile.Enabled)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/trashbin.sqlite", cfg.Database.Path)

	require.Equal(t, "trashbin", cfg.Auth.JWT.Issuer)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)

	require.True(t, cfg.Retention.Enabled)
	require.Equal(t, 30, cfg.Retention.Days)
	require.Equal(t, "@daily", cfg.Retention.Schedule)
	require.Equal(t, 90, cfg.Retention.EventDays)

	require.True(t, cfg.Monitoring.Prometheus)
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, "trashbin", cfg.Database.Postgres.Database)

	require.Equal(t, "file-configured-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.Equal(t, 14, cfg.Retention.Days)
	require.Equal(t, "@hourly", cfg.Retention.Schedule)
	require.Equal(t, 45, cfg.Retention.EventDays)

	require.False(t, cfg.Monitoring.Prometheus)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TRASHBIN_SERVER_PORT", "8181")
	t.Setenv("TRASHBIN_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("TRASHBIN_RETENTION_DAYS", "7")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8181, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 7, cfg.Retention.Days)
}

func TestJWTServiceConfigDefaultsTTL(t *testing.T) {
	cfg := AuthConfig{JWT: JWTSettings{Secret: "s3cret", Issuer: "trashbin"}}

	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, "s3cret", jwtCfg.Secret)
	require.Equal(t, "trashbin", jwtCfg.Issuer)
	require.Equal(t, auth.DefaultAccessTokenTTL, jwtCfg.AccessTokenTTL)

	cfg.JWT.TTL = time.Hour
	require.Equal(t, time.Hour, cfg.JWTServiceConfig().AccessTokenTTL)
}
