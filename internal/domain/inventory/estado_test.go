package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
)

func TestDerivarEstado(t *testing.T) {
	assert.Equal(t, entity.EstadoNuevo, inventory.DerivarEstado(dec("100"), dec("100")))
	assert.Equal(t, entity.EstadoNuevo, inventory.DerivarEstado(dec("100.000"), dec("100")), "la escala no cambia la comparación")
	assert.Equal(t, entity.EstadoEnUso, inventory.DerivarEstado(dec("50"), dec("100")))
	assert.Equal(t, entity.EstadoConsumido, inventory.DerivarEstado(dec("0"), dec("100")))
}

func TestRecalcular_RespetaEstadosTerminales(t *testing.T) {
	for _, terminal := range []entity.EstadoLote{entity.EstadoDevuelto, entity.EstadoRecall, entity.EstadoVencido} {
		l := &entity.Lote{CantidadInicial: dec("10"), CantidadActual: dec("4"), Estado: terminal}
		inventory.RecalcularLote(l)
		assert.Equal(t, terminal, l.Estado)

		b := &entity.Bulto{CantidadInicial: dec("10"), CantidadActual: dec("4"), Estado: terminal}
		inventory.RecalcularBulto(b)
		assert.Equal(t, terminal, b.Estado)
	}

	l := &entity.Lote{CantidadInicial: dec("10"), CantidadActual: dec("4"), Estado: entity.EstadoNuevo}
	inventory.RecalcularLote(l)
	assert.Equal(t, entity.EstadoEnUso, l.Estado)
}

func TestConserva_SumaDeBultosEnUnidadDelLote(t *testing.T) {
	l := &entity.Lote{Activo: true, Unidad: entity.UnidadKilogramo, CantidadActual: dec("60")}
	l.AgregarBulto(&entity.Bulto{Nro: 1, Activo: true, Unidad: entity.UnidadKilogramo, CantidadActual: dec("45")})
	l.AgregarBulto(&entity.Bulto{Nro: 2, Activo: true, Unidad: entity.UnidadGramo, CantidadActual: dec("15000")})
	l.AgregarBulto(&entity.Bulto{Nro: 3, Activo: false, Unidad: entity.UnidadKilogramo, CantidadActual: dec("99")})
	assert.True(t, inventory.Conserva(l))

	l.CantidadActual = dec("61")
	assert.False(t, inventory.Conserva(l))

	l.Activo = false
	assert.True(t, inventory.Conserva(l), "un lote desactivado no se verifica")
}
