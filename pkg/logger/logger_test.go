package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

func TestLoteAgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})

	log.Lote("L-API-001").Info().Str("motivo", "VENTA").Msg("movimiento registrado")

	var evento map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &evento))
	assert.Equal(t, "L-API-001", evento["lote"])
	assert.Equal(t, "VENTA", evento["motivo"])
	assert.Equal(t, "info", evento["level"])
}

func TestNivelFiltraEventos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "warn", Out: &buf})

	log.Info().Msg("descartado")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("registrado")
	assert.NotZero(t, buf.Len())
}

func TestLoggerNilNoFalla(t *testing.T) {
	var log *logger.Logger
	assert.NotPanics(t, func() {
		log.Info().Msg("sin destino")
		log.Lote("L-1").Error().Msg("sin destino")
	})
}
