package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulab/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "xlsx", cfg.Catalog.Backend)
	assert.Equal(t, "formulab.xlsx", cfg.Catalog.XLSXPath)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "ordenes", cfg.Storage.LocalDir)
	assert.Equal(t, "noop", cfg.Notify.Provider)
	assert.Equal(t, 12*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, "formulab", cfg.JWT.Issuer)
	assert.Equal(t, "operador", cfg.Auth.Username)
	assert.Empty(t, cfg.Auth.PasswordHash)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FORMULAB_SERVER_PORT", ":9090")
	t.Setenv("FORMULAB_CATALOG_BACKEND", "postgres")
	t.Setenv("FORMULAB_DB_HOST", "db.plant.local")
	t.Setenv("FORMULAB_DB_PASSWORD", "secreto")
	t.Setenv("FORMULAB_STORAGE_BACKEND", "s3")
	t.Setenv("FORMULAB_S3_BUCKET", "formulab-ordenes")
	t.Setenv("FORMULAB_CORS_ALLOWED_ORIGINS", "https://planta.example.com, https://oficina.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Catalog.Backend)
	assert.Equal(t, "db.plant.local", cfg.DB.Host)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "formulab-ordenes", cfg.S3.Bucket)
	assert.Contains(t, cfg.DB.DSN(), "db.plant.local")
	assert.Equal(t, []string{"https://planta.example.com", "https://oficina.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "3000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Port)
}
