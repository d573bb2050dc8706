package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0 3 * * *", cfg.Sweep.Cron)
	assert.Equal(t, "America/Bogota", cfg.Sweep.Timezone)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.App.LogLevel)
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("SWEEP_CRON", "30 2 * * *")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_DB", "no-es-numero")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "30 2 * * *", cfg.Sweep.Cron)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_ProduccionSinSecreto(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestSweepLocation(t *testing.T) {
	assert.Equal(t, time.UTC, config.SweepConfig{Timezone: "No/Existe"}.Location())
	assert.Equal(t, "America/Bogota", config.SweepConfig{Timezone: "America/Bogota"}.Location().String())
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:wd", DBName: "trazabilidad", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Awd@db:5432/trazabilidad?sslmode=disable", c.DSN())
}
