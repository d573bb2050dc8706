package lotes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// foto resume el estado observable de un lote para comparar antes y después de un reverso.
type foto struct {
	Cantidad string
	Estado   entity.EstadoLote
	Dictamen entity.Dictamen
	Bultos   map[int]string
	Trazas   map[int64]entity.EstadoTraza
	Analisis map[string]string
}

func fotografiar(l *entity.Lote) foto {
	f := foto{
		Cantidad: l.CantidadActual.String(),
		Estado:   l.Estado,
		Dictamen: l.Dictamen,
		Bultos:   make(map[int]string),
		Trazas:   estadosTrazas(l),
		Analisis: make(map[string]string),
	}
	for _, b := range l.Bultos {
		if b.Activo {
			f.Bultos[b.Nro] = b.CantidadActual.String() + " " + string(b.Estado)
		}
	}
	for _, a := range l.Analisis {
		if !a.Activo {
			continue
		}
		f.Analisis[a.NroAnalisis] = "EN_CURSO"
		if a.Dictamen != nil {
			f.Analisis[a.NroAnalisis] = string(*a.Dictamen)
		}
	}
	return f
}

func TestReversar_BajaEsInversaExacta(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "100", entity.UnidadKilogramo,
		bulto("50", entity.UnidadKilogramo), bulto("50000", entity.UnidadGramo))
	e.aprobar(t, l.Codigo, "A-1")
	e.bajar(t, l.Codigo, entity.MotivoConsumoProduccion, nil, detalle(1, "20", entity.UnidadKilogramo))
	antes := fotografiar(e.lote(t, l.Codigo))

	mov := e.bajar(t, l.Codigo, entity.MotivoConsumoProduccion, nil, detalle(2, "30", entity.UnidadKilogramo))
	rev := e.reversar(t, mov.Codigo)

	despues := e.lote(t, l.Codigo)
	assert.Equal(t, antes, fotografiar(despues))
	requireConserva(t, despues)

	assert.False(t, e.movimiento(t, mov.Codigo).Activo, "el original queda inactivo")
	assert.False(t, rev.Activo, "el registro del reverso queda inactivo")
	assert.Equal(t, entity.MotivoReverso, rev.Motivo)
	assert.Equal(t, entity.TipoModificacion, rev.Tipo)
	assert.Equal(t, mov.Codigo, rev.MovimientoOrigenCodigo)
	assert.Equal(t, usuarioTest, rev.UsuarioID)

	_, err := e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: mov.Codigo})
	assert.ErrorIs(t, err, domain.ErrMovimientoInactivo)
}

// Revertir el consumo total reabre el análisis cancelado automáticamente.
func TestReversar_ConsumoTotalReabreAnalisis(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "10", entity.UnidadKilogramo, bulto("10", entity.UnidadKilogramo))
	_, err := e.mod.IngresarAnalisis(context.Background(), dto.AnalisisRequest{LoteCodigo: l.Codigo, NroAnalisis: "A-1", Fecha: ahora})
	require.NoError(t, err)
	antes := fotografiar(e.lote(t, l.Codigo))

	mov := e.bajar(t, l.Codigo, entity.MotivoAjuste, nil, detalle(1, "10", entity.UnidadKilogramo))
	e.reversar(t, mov.Codigo)

	despues := e.lote(t, l.Codigo)
	assert.Equal(t, antes, fotografiar(despues))
	require.NotNil(t, despues.AnalisisEnCurso())
	assert.Equal(t, "A-1", despues.AnalisisEnCurso().NroAnalisis)
}

func TestReversar_DevolucionCompra(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "10", entity.UnidadKilogramo,
		bulto("4", entity.UnidadKilogramo), bulto("6", entity.UnidadKilogramo))
	e.bajar(t, l.Codigo, entity.MotivoAjuste, nil, detalle(1, "1", entity.UnidadKilogramo))
	antes := fotografiar(e.lote(t, l.Codigo))

	mov := e.bajar(t, l.Codigo, entity.MotivoDevolucionCompra, nil)
	e.reversar(t, mov.Codigo)

	assert.Equal(t, antes, fotografiar(e.lote(t, l.Codigo)))
}

func TestReversar_VentaTrazadaDevuelveTrazasADisponible(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoVent, "4", entity.UnidadUnidad,
		bulto("2", entity.UnidadUnidad, 1, 2), bulto("2", entity.UnidadUnidad, 3, 4))
	e.aprobar(t, l.Codigo, "A-1")
	antes := fotografiar(e.lote(t, l.Codigo))

	venta := e.bajar(t, l.Codigo, entity.MotivoVenta, []int64{3}, detalle(2, "1", entity.UnidadUnidad))
	e.reversar(t, venta.Codigo)

	assert.Equal(t, antes, fotografiar(e.lote(t, l.Codigo)))
}

func TestReversar_Recall(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoVent, "4", entity.UnidadUnidad,
		bulto("2", entity.UnidadUnidad, 1, 2), bulto("2", entity.UnidadUnidad, 3, 4))
	e.aprobar(t, l.Codigo, "A-1")
	e.bajar(t, l.Codigo, entity.MotivoVenta, []int64{1, 2}, detalle(1, "2", entity.UnidadUnidad))
	antes := fotografiar(e.lote(t, l.Codigo))

	rec, err := e.mod.Recall(context.Background(), dto.RecallRequest{LoteCodigo: l.Codigo, Fecha: ahora})
	require.NoError(t, err)
	e.reversar(t, rec.Codigo)

	despues := e.lote(t, l.Codigo)
	assert.Equal(t, antes, fotografiar(despues))
	assert.Equal(t, entity.DictamenAprobado, despues.Dictamen)
}

func TestReversar_ResultadoYAnalisis(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "10", entity.UnidadKilogramo, bulto("10", entity.UnidadKilogramo))
	inicial := fotografiar(e.lote(t, l.Codigo))

	ing, err := e.mod.IngresarAnalisis(context.Background(), dto.AnalisisRequest{LoteCodigo: l.Codigo, NroAnalisis: "A-1", Fecha: ahora})
	require.NoError(t, err)
	enCurso := fotografiar(e.lote(t, l.Codigo))

	res, err := e.mod.RegistrarResultado(context.Background(), dto.ResultadoAnalisisRequest{
		LoteCodigo: l.Codigo, NroAnalisis: "A-1", Dictamen: string(entity.DictamenRechazado), Fecha: ahora,
	})
	require.NoError(t, err)

	_, err = e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: ing.Codigo})
	assert.ErrorIs(t, err, domain.ErrAnalisisDictaminado, "primero se revierte el resultado")

	e.reversar(t, res.Codigo)
	assert.Equal(t, enCurso, fotografiar(e.lote(t, l.Codigo)))

	e.reversar(t, ing.Codigo)
	assert.Equal(t, inicial, fotografiar(e.lote(t, l.Codigo)))
}

func TestReversar_AltaDesactivaElLote(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "10", entity.UnidadKilogramo, bulto("10", entity.UnidadKilogramo))
	mov := e.bajar(t, l.Codigo, entity.MotivoAjuste, nil, detalle(1, "1", entity.UnidadKilogramo))

	_, err := e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: l.Movimientos[0].Codigo})
	assert.ErrorIs(t, err, domain.ErrLoteConMovimientos)

	e.reversar(t, mov.Codigo)
	e.reversar(t, l.Movimientos[0].Codigo)

	activo, err := e.store.Repos().Lotes.GetActivoByCodigo(context.Background(), l.Codigo)
	require.NoError(t, err)
	assert.Nil(t, activo)
	assert.Nil(t, e.lote(t, l.Codigo).BultoPorNro(1), "los bultos quedan inactivos")
}

func TestReversar_MovimientosIrreversibles(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "10", entity.UnidadKilogramo, bulto("10", entity.UnidadKilogramo))
	reanalisis := ahora.AddDate(0, 0, -1)
	_, err := e.mod.RegistrarResultado(context.Background(), dto.ResultadoAnalisisRequest{
		LoteCodigo: l.Codigo, NroAnalisis: "A-1", Dictamen: string(entity.DictamenAprobado), Fecha: ahora.AddDate(0, -1, 0),
		FechaReanalisis: &reanalisis,
	})
	require.NoError(t, err)

	barrido, err := e.venc.Ejecutar(context.Background(), ahora)
	require.NoError(t, err)
	require.Len(t, barrido.Movimientos, 1)

	exp := e.movimiento(t, barrido.Movimientos[0])
	assert.Equal(t, entity.MotivoExpiracionAnalisis, exp.Motivo)

	_, err = e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: exp.Codigo})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMovimientoIrreversible)
	assert.ErrorIs(t, err, domain.ErrIllegalState)

	res, err := e.rev.ValidarReverso(context.Background(), dto.ReversoRequest{MovimientoCodigo: exp.Codigo})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrMovimientoIrreversible)

	resultado := movimientoPorMotivo(t, e.lote(t, l.Codigo), entity.MotivoResultadoAnalisis)
	_, err = e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: resultado.Codigo})
	assert.ErrorIs(t, err, domain.ErrCambioPosterior)
	assert.Equal(t, entity.DictamenAnalisisExpirado, e.lote(t, l.Codigo).Dictamen)
}

func TestReversar_VencimientoEsIrreversible(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "10", entity.UnidadKilogramo, bulto("10", entity.UnidadKilogramo))
	e.aprobar(t, l.Codigo, "A-1")

	barrido, err := e.venc.Ejecutar(context.Background(), ahora.AddDate(1, 0, 1))
	require.NoError(t, err)
	require.Len(t, barrido.Movimientos, 1)
	venc := e.movimiento(t, barrido.Movimientos[0])
	require.Equal(t, entity.MotivoVencimiento, venc.Motivo)

	_, err = e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: venc.Codigo})
	assert.ErrorIs(t, err, domain.ErrMovimientoIrreversible)
	assert.ErrorIs(t, err, domain.ErrIllegalState)
	assert.True(t, e.movimiento(t, venc.Codigo).Activo)
}

func TestReversar_ResultadoDespuesDelVencimientoFallaCerrado(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "10", entity.UnidadKilogramo, bulto("10", entity.UnidadKilogramo))
	e.aprobar(t, l.Codigo, "A-1")
	_, err := e.venc.Ejecutar(context.Background(), ahora.AddDate(1, 0, 1))
	require.NoError(t, err)
	vencido := fotografiar(e.lote(t, l.Codigo))

	resultado := movimientoPorMotivo(t, e.lote(t, l.Codigo), entity.MotivoResultadoAnalisis)
	_, err = e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: resultado.Codigo})
	assert.ErrorIs(t, err, domain.ErrCambioPosterior)
	assert.ErrorIs(t, err, domain.ErrIllegalState)

	despues := e.lote(t, l.Codigo)
	assert.Equal(t, vencido, fotografiar(despues))
	assert.Equal(t, entity.DictamenVencido, despues.Dictamen)
	assert.Equal(t, entity.EstadoVencido, despues.Estado)
	assert.True(t, e.movimiento(t, resultado.Codigo).Activo)
}

func TestReversar_RecallDespuesDelVencimientoFallaCerrado(t *testing.T) {
	e := nuevoEntorno(t)
	l := e.ingresar(t, productoAPI, "10", entity.UnidadKilogramo, bulto("10", entity.UnidadKilogramo))
	e.aprobar(t, l.Codigo, "A-1")
	rec, err := e.mod.Recall(context.Background(), dto.RecallRequest{LoteCodigo: l.Codigo, Fecha: ahora})
	require.NoError(t, err)

	_, err = e.venc.Ejecutar(context.Background(), ahora.AddDate(1, 0, 1))
	require.NoError(t, err)
	vencido := fotografiar(e.lote(t, l.Codigo))
	require.Equal(t, entity.EstadoVencido, e.lote(t, l.Codigo).Estado)

	_, err = e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: rec.Codigo})
	assert.ErrorIs(t, err, domain.ErrCambioPosterior)
	assert.ErrorIs(t, err, domain.ErrIllegalState)

	despues := e.lote(t, l.Codigo)
	assert.Equal(t, vencido, fotografiar(despues))
	assert.Equal(t, entity.DictamenVencido, despues.Dictamen)
	assert.Equal(t, entity.EstadoVencido, despues.BultoPorNro(1).Estado)
	assert.True(t, e.movimiento(t, rec.Codigo).Activo)
}

func TestReversar_MovimientoInexistente(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: "M-NO-EXISTE"})
	assert.ErrorIs(t, err, domain.ErrMovimientoNoEncontrado)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes derivados
// ──────────────────────────────────────────────────────────────────────────────

func TestReversar_LoteConDerivadoActivoFallaCerrado(t *testing.T) {
	e := nuevoEntorno(t)
	origen, venta := loteVendido(t, e)
	_, err := e.alta.IngresoDevolucionVenta(context.Background(), devolucion(origen.Codigo, venta.Codigo, 1))
	require.NoError(t, err)

	_, err = e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: venta.Codigo})
	assert.ErrorIs(t, err, domain.ErrLoteConDerivados)
	assert.True(t, e.movimiento(t, venta.Codigo).Activo)
}

func TestReversar_DevolucionVentaRestituyeTrazasVendidas(t *testing.T) {
	e := nuevoEntorno(t)
	origen, venta := loteVendido(t, e)
	antes := fotografiar(e.lote(t, origen.Codigo))

	alta, err := e.alta.IngresoDevolucionVenta(context.Background(), devolucion(origen.Codigo, venta.Codigo, 1))
	require.NoError(t, err)
	e.reversar(t, alta.Codigo)

	origen = e.lote(t, origen.Codigo)
	assert.Equal(t, antes, fotografiar(origen))
	tr := origen.TrazaPorNro(1)
	require.NotNil(t, tr)
	assert.Equal(t, entity.TrazaVendida, tr.Estado)
	assert.Equal(t, 1, tr.NroBulto)
	assert.Empty(t, tr.LoteCodigoAnterior)

	dev := e.lote(t, alta.LoteCodigo)
	assert.False(t, dev.Activo)

	// Sin derivados activos la venta vuelve a ser reversible.
	e.reversar(t, venta.Codigo)
	assert.Equal(t, entity.EstadoNuevo, e.lote(t, origen.Codigo).Estado)
}

func TestReversar_RetiroMercadoRevierteElRecallDependiente(t *testing.T) {
	e := nuevoEntorno(t)
	origen, _ := loteVendido(t, e)
	antes := fotografiar(e.lote(t, origen.Codigo))

	alta, err := e.alta.IngresoRetiroMercado(context.Background(), devolucion(origen.Codigo, "", 1))
	require.NoError(t, err)
	recall := e.lote(t, origen.Codigo).Movimientos
	rec := recall[len(recall)-1]
	require.Equal(t, entity.MotivoRecall, rec.Motivo)

	e.reversar(t, alta.Codigo)

	origenDespues := e.lote(t, origen.Codigo)
	assert.Equal(t, antes, fotografiar(origenDespues))
	assert.Equal(t, entity.DictamenAprobado, origenDespues.Dictamen)
	assert.False(t, e.movimiento(t, rec.Codigo).Activo, "el recall dependiente queda revertido")
	assert.False(t, e.lote(t, alta.LoteCodigo).Activo)

	var reversos int
	for _, m := range origenDespues.Movimientos {
		if m.Motivo == entity.MotivoReverso && m.MovimientoOrigenCodigo == rec.Codigo {
			reversos++
		}
	}
	assert.Equal(t, 1, reversos)
}

func TestReversar_RetiroSinRecallDependiente(t *testing.T) {
	e := nuevoEntorno(t)
	origen, _ := loteVendido(t, e)
	_, err := e.mod.Recall(context.Background(), dto.RecallRequest{LoteCodigo: origen.Codigo, Fecha: ahora})
	require.NoError(t, err)

	// El origen ya estaba en recall: el retiro no genera movimiento dependiente.
	alta, err := e.alta.IngresoRetiroMercado(context.Background(), devolucion(origen.Codigo, "", 1))
	require.NoError(t, err)
	e.reversar(t, alta.Codigo)

	origenDespues := e.lote(t, origen.Codigo)
	assert.Equal(t, entity.EstadoRecall, origenDespues.Estado)
	assert.Equal(t, entity.TrazaVendida, origenDespues.TrazaPorNro(1).Estado)
}
