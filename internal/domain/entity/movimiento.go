package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoMovimiento es la categoría de un movimiento.
type TipoMovimiento string

const (
	TipoAlta         TipoMovimiento = "ALTA"
	TipoBaja         TipoMovimiento = "BAJA"
	TipoModificacion TipoMovimiento = "MODIFICACION"
)

// MotivoMovimiento es el código de razón de un movimiento.
type MotivoMovimiento string

// Altas.
const (
	MotivoCompra           MotivoMovimiento = "COMPRA"
	MotivoProduccionPropia MotivoMovimiento = "PRODUCCION_PROPIA"
	MotivoDevolucionVenta  MotivoMovimiento = "DEVOLUCION_VENTA"
	MotivoRetiroMercado    MotivoMovimiento = "RETIRO_MERCADO"
)

// Bajas.
const (
	MotivoConsumoProduccion MotivoMovimiento = "CONSUMO_PRODUCCION"
	MotivoVenta             MotivoMovimiento = "VENTA"
	MotivoMuestreo          MotivoMovimiento = "MUESTREO"
	MotivoDevolucionCompra  MotivoMovimiento = "DEVOLUCION_COMPRA"
	MotivoAjuste            MotivoMovimiento = "AJUSTE"
)

// Modificaciones.
const (
	MotivoAnalisis           MotivoMovimiento = "ANALISIS"
	MotivoResultadoAnalisis  MotivoMovimiento = "RESULTADO_ANALISIS"
	MotivoRecall             MotivoMovimiento = "RECALL"
	MotivoVencimiento        MotivoMovimiento = "VENCIMIENTO"
	MotivoExpiracionAnalisis MotivoMovimiento = "EXPIRACION_ANALISIS"
	MotivoReverso            MotivoMovimiento = "REVERSO"
)

// Reversible indica si el motivo admite reverso.
func (m MotivoMovimiento) Reversible() bool {
	switch m {
	case MotivoVencimiento, MotivoExpiracionAnalisis, MotivoReverso:
		return false
	}
	return true
}

// Movimiento es un asiento inmutable del libro de movimientos de un lote.
// El reverso solo cambia Activo; nunca los campos de negocio.
type Movimiento struct {
	ID                     string
	Codigo                 string
	Tipo                   TipoMovimiento
	Motivo                 MotivoMovimiento
	Fecha                  time.Time // fecha de negocio declarada
	CreadoEn               time.Time
	Cantidad               decimal.Decimal // en la unidad del lote
	Unidad                 Unidad
	LoteCodigo             string
	MovimientoOrigenCodigo string
	DictamenInicial        Dictamen
	DictamenFinal          Dictamen
	NroAnalisis            string
	AnalisisCancelado      string // análisis cancelado automáticamente por este movimiento
	Observaciones          string
	UsuarioID              string
	Activo                 bool
	Detalles               []*DetalleMovimiento
}

// DetalleMovimiento vincula un movimiento con un bulto y, si el lote es trazado, con sus trazas.
type DetalleMovimiento struct {
	ID               string
	MovimientoCodigo string
	NroBulto         int
	Cantidad         decimal.Decimal // en la unidad del bulto
	Unidad           Unidad
	NrosTraza        []int64
}

// AgregarDetalle agrega una línea al movimiento y fija su referencia inversa.
func (m *Movimiento) AgregarDetalle(d *DetalleMovimiento) {
	d.MovimientoCodigo = m.Codigo
	m.Detalles = append(m.Detalles, d)
}
