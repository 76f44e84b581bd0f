package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, 20, cfg.LoginRateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/insumos?sslmode=disable")
	t.Setenv("TIMEZONE", "America/Mexico_City")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://u:p@db:5432/insumos?sslmode=disable", cfg.DSN())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())
}

func TestDSNFromParts(t *testing.T) {
	cfg := &Config{DBHost: "h", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433", Timezone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5433 sslmode=disable TimeZone=UTC", cfg.DSN())
}

func TestInvalidTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.Error(t, err)
}
