package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
)

var hoy = time.Date(2026, 5, 20, 3, 0, 0, 0, time.UTC)

func dia(offset int) *time.Time {
	f := time.Date(2026, 5, 20, 18, 30, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &f
}

func loteConStock(codigo string) *entity.Lote {
	return &entity.Lote{
		Codigo:          codigo,
		Activo:          true,
		CantidadInicial: dec("10"),
		CantidadActual:  dec("10"),
		Estado:          entity.EstadoNuevo,
		Dictamen:        entity.DictamenRecibido,
	}
}

func aprobado(reanalisis, vencimiento *time.Time, creado time.Time) *entity.Analisis {
	return &entity.Analisis{
		NroAnalisis:      creado.Format("0102"),
		Dictamen:         entity.DictamenAprobado.Ptr(),
		FechaReanalisis:  reanalisis,
		FechaVencimiento: vencimiento,
		Activo:           true,
		CreadoEn:         creado,
	}
}

func TestPlanificarVencimientos_FechaProveedorAlcanzada(t *testing.T) {
	l := loteConStock("L1")
	l.FechaVencimientoProveedor = dia(0)

	acc := inventory.PlanificarVencimientos(hoy, []*entity.Lote{l})
	require.Len(t, acc, 1, "la fecha de hoy cuenta como alcanzada aunque la hora sea posterior")
	assert.True(t, acc[0].Vencer)
	assert.False(t, acc[0].ExpirarAnalisis)
}

func TestPlanificarVencimientos_FechaFuturaNoHaceNada(t *testing.T) {
	l := loteConStock("L1")
	l.FechaVencimientoProveedor = dia(1)
	assert.Empty(t, inventory.PlanificarVencimientos(hoy, []*entity.Lote{l}))
}

func TestPlanificarVencimientos_AmbasReglasIndependientes(t *testing.T) {
	l := loteConStock("L1")
	l.Dictamen = entity.DictamenAprobado
	l.AgregarAnalisis(aprobado(dia(-2), dia(-1), hoy.AddDate(0, -6, 0)))

	acc := inventory.PlanificarVencimientos(hoy, []*entity.Lote{l})
	require.Len(t, acc, 1)
	assert.True(t, acc[0].ExpirarAnalisis)
	assert.True(t, acc[0].Vencer)
}

// Un análisis aprobado posterior reemplaza las fechas del anterior.
func TestPlanificarVencimientos_UsaElUltimoAnalisisAprobado(t *testing.T) {
	l := loteConStock("L1")
	l.Dictamen = entity.DictamenAprobado
	l.FechaVencimientoProveedor = dia(-10)
	l.AgregarAnalisis(aprobado(dia(-5), dia(-3), hoy.AddDate(0, -6, 0)))
	l.AgregarAnalisis(aprobado(dia(30), dia(60), hoy.AddDate(0, 0, -1)))

	assert.Empty(t, inventory.PlanificarVencimientos(hoy, []*entity.Lote{l}))
	assert.Equal(t, dia(60), inventory.FechaVencimiento(l))
}

func TestPlanificarVencimientos_IgnoraSinStockInactivosYYaVencidos(t *testing.T) {
	sinStock := loteConStock("L1")
	sinStock.CantidadActual = dec("0")
	sinStock.FechaVencimientoProveedor = dia(-1)

	inactivo := loteConStock("L2")
	inactivo.Activo = false
	inactivo.FechaVencimientoProveedor = dia(-1)

	vencido := loteConStock("L3")
	vencido.Estado = entity.EstadoVencido
	vencido.FechaVencimientoProveedor = dia(-1)

	assert.Empty(t, inventory.PlanificarVencimientos(hoy, []*entity.Lote{sinStock, inactivo, vencido}))
}

// Con dictamen distinto de APROBADO no hay análisis que expirar.
func TestPlanificarVencimientos_ExpiracionSoloConDictamenAprobado(t *testing.T) {
	l := loteConStock("L1")
	l.Dictamen = entity.DictamenAnalisisExpirado
	l.AgregarAnalisis(aprobado(dia(-1), nil, hoy.AddDate(0, -1, 0)))
	assert.Empty(t, inventory.PlanificarVencimientos(hoy, []*entity.Lote{l}))
}
