package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvertir_EntreUnidadesDeMasa(t *testing.T) {
	casos := []struct {
		nombre   string
		cantidad string
		desde    entity.Unidad
		hacia    entity.Unidad
		esperado string
	}{
		{"gramos a kilos", "15000", entity.UnidadGramo, entity.UnidadKilogramo, "15"},
		{"kilos a gramos", "2.5", entity.UnidadKilogramo, entity.UnidadGramo, "2500"},
		{"microgramos a miligramos", "750", entity.UnidadMicrogramo, entity.UnidadMiligramo, "0.75"},
		{"kilos a microgramos", "0.000001", entity.UnidadKilogramo, entity.UnidadMicrogramo, "1000"},
		{"misma unidad", "3", entity.UnidadUnidad, entity.UnidadUnidad, "3"},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			got, err := inventory.Convertir(dec(c.cantidad), c.desde, c.hacia)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(c.esperado)), "esperado %s, obtenido %s", c.esperado, got)
		})
	}
}

// La ida y vuelta entre unidades de masa devuelve exactamente la cantidad original.
func TestConvertir_IdaYVueltaExacta(t *testing.T) {
	unidades := []entity.Unidad{entity.UnidadKilogramo, entity.UnidadGramo, entity.UnidadMiligramo, entity.UnidadMicrogramo}
	cantidad := dec("123.456789")
	for _, a := range unidades {
		for _, b := range unidades {
			ida, err := inventory.Convertir(cantidad, a, b)
			require.NoError(t, err)
			vuelta, err := inventory.Convertir(ida, b, a)
			require.NoError(t, err)
			assert.True(t, vuelta.Equal(cantidad), "%s -> %s -> %s perdió precisión: %s", a, b, a, vuelta)
		}
	}
}

func TestConvertir_MasaYUnidadContable_Incompatibles(t *testing.T) {
	_, err := inventory.Convertir(dec("1"), entity.UnidadUnidad, entity.UnidadGramo)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversionIncompatible)
	assert.ErrorIs(t, err, domain.ErrIllegalArgument)

	assert.False(t, inventory.Compatibles(entity.UnidadKilogramo, entity.UnidadUnidad))
	assert.True(t, inventory.Compatibles(entity.UnidadKilogramo, entity.UnidadMicrogramo))
}

func TestConvertir_UnidadDesconocida(t *testing.T) {
	_, err := inventory.Convertir(dec("1"), entity.Unidad("LIBRA"), entity.UnidadGramo)
	assert.ErrorIs(t, err, domain.ErrUnidadDesconocida)
	assert.False(t, inventory.Compatibles(entity.Unidad("LIBRA"), entity.UnidadGramo))
}
