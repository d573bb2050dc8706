package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BultoIngresoDTO describe un bulto recibido. NrosTraza solo para productos trazados.
type BultoIngresoDTO struct {
	Cantidad  decimal.Decimal `json:"cantidad"`
	Unidad    string          `json:"unidad" validate:"required"`
	NrosTraza []int64         `json:"nros_traza,omitempty"`
}

// IngresoRequest body para POST /api/lotes/ingresos/{compra,produccion}.
type IngresoRequest struct {
	ProductoCodigo   string            `json:"producto_codigo" validate:"required"`
	Proveedor        string            `json:"proveedor,omitempty"`
	Fabricante       string            `json:"fabricante,omitempty"`
	LoteProveedor    string            `json:"lote_proveedor,omitempty"`
	FechaIngreso     time.Time         `json:"fecha_ingreso" validate:"required"`
	FechaVencimiento *time.Time        `json:"fecha_vencimiento,omitempty"`
	Cantidad         decimal.Decimal   `json:"cantidad"`
	Unidad           string            `json:"unidad" validate:"required"`
	Trazado          bool              `json:"trazado"`
	Bultos           []BultoIngresoDTO `json:"bultos" validate:"required,min=1,dive"`
	Observaciones    string            `json:"observaciones,omitempty"`
}

// DevolucionRequest body para POST /api/lotes/ingresos/{devolucion-venta,retiro-mercado}.
// Crea un lote derivado del lote vendido LoteOrigenCodigo.
type DevolucionRequest struct {
	LoteOrigenCodigo      string            `json:"lote_origen_codigo" validate:"required"`
	MovimientoVentaCodigo string            `json:"movimiento_venta_codigo,omitempty"`
	FechaIngreso          time.Time         `json:"fecha_ingreso" validate:"required"`
	Cantidad              decimal.Decimal   `json:"cantidad"`
	Unidad                string            `json:"unidad" validate:"required"`
	Bultos                []BultoIngresoDTO `json:"bultos" validate:"required,min=1,dive"`
	Observaciones         string            `json:"observaciones,omitempty"`
}

// DetalleBajaDTO cantidad a descontar de un bulto.
type DetalleBajaDTO struct {
	NroBulto int             `json:"nro_bulto" validate:"gt=0"`
	Cantidad decimal.Decimal `json:"cantidad"`
	Unidad   string          `json:"unidad" validate:"required"`
}

// BajaRequest body para POST /api/lotes/:codigo/bajas.
// DEVOLUCION_COMPRA no lleva detalles: devuelve todo el stock remanente.
type BajaRequest struct {
	LoteCodigo      string           `json:"lote_codigo" validate:"required"`
	Motivo          string           `json:"motivo" validate:"required,oneof=CONSUMO_PRODUCCION VENTA MUESTREO DEVOLUCION_COMPRA AJUSTE"`
	Fecha           time.Time        `json:"fecha" validate:"required"`
	Detalles        []DetalleBajaDTO `json:"detalles" validate:"required_unless=Motivo DEVOLUCION_COMPRA,dive"`
	NrosTraza       []int64          `json:"nros_traza,omitempty"`
	NroAnalisis     string           `json:"nro_analisis,omitempty"`
	OrdenProduccion string           `json:"orden_produccion,omitempty"`
	Observaciones   string           `json:"observaciones,omitempty"`
}

// AnalisisRequest body para POST /api/lotes/:codigo/analisis (ingreso a análisis).
type AnalisisRequest struct {
	LoteCodigo    string    `json:"lote_codigo" validate:"required"`
	NroAnalisis   string    `json:"nro_analisis" validate:"required"`
	Fecha         time.Time `json:"fecha" validate:"required"`
	Observaciones string    `json:"observaciones,omitempty"`
}

// ResultadoAnalisisRequest body para POST /api/lotes/:codigo/resultado-analisis.
type ResultadoAnalisisRequest struct {
	LoteCodigo       string           `json:"lote_codigo" validate:"required"`
	NroAnalisis      string           `json:"nro_analisis" validate:"required"`
	Dictamen         string           `json:"dictamen" validate:"required,oneof=APROBADO RECHAZADO CUARENTENA"`
	Fecha            time.Time        `json:"fecha" validate:"required"`
	FechaRealizado   *time.Time       `json:"fecha_realizado,omitempty"`
	FechaReanalisis  *time.Time       `json:"fecha_reanalisis,omitempty"`
	FechaVencimiento *time.Time       `json:"fecha_vencimiento,omitempty"`
	Titulo           *decimal.Decimal `json:"titulo,omitempty"`
	Observaciones    string           `json:"observaciones,omitempty"`
}

// RecallRequest body para POST /api/lotes/:codigo/recall.
type RecallRequest struct {
	LoteCodigo    string    `json:"lote_codigo" validate:"required"`
	Fecha         time.Time `json:"fecha" validate:"required"`
	Observaciones string    `json:"observaciones,omitempty"`
}

// ReversoRequest body para POST /api/movimientos/:codigo/reverso.
type ReversoRequest struct {
	MovimientoCodigo string `json:"movimiento_codigo" validate:"required"`
	Observaciones    string `json:"observaciones,omitempty"`
}
