package dto

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DetalleMovimientoResponse línea de un movimiento.
type DetalleMovimientoResponse struct {
	NroBulto  int             `json:"nro_bulto"`
	Cantidad  decimal.Decimal `json:"cantidad"`
	Unidad    string          `json:"unidad"`
	NrosTraza []int64         `json:"nros_traza,omitempty"`
}

// MovimientoResponse representación pública de un movimiento.
type MovimientoResponse struct {
	Codigo                 string                      `json:"codigo"`
	Tipo                   string                      `json:"tipo"`
	Motivo                 string                      `json:"motivo"`
	Fecha                  time.Time                   `json:"fecha"`
	CreadoEn               time.Time                   `json:"creado_en"`
	Cantidad               decimal.Decimal             `json:"cantidad"`
	Unidad                 string                      `json:"unidad"`
	LoteCodigo             string                      `json:"lote_codigo"`
	MovimientoOrigenCodigo string                      `json:"movimiento_origen_codigo,omitempty"`
	DictamenInicial        string                      `json:"dictamen_inicial,omitempty"`
	DictamenFinal          string                      `json:"dictamen_final,omitempty"`
	UsuarioID              string                      `json:"usuario_id"`
	Activo                 bool                        `json:"activo"`
	Detalles               []DetalleMovimientoResponse `json:"detalles,omitempty"`
}

// NewMovimientoResponse mapea la entidad.
func NewMovimientoResponse(m *entity.Movimiento) MovimientoResponse {
	out := MovimientoResponse{
		Codigo:                 m.Codigo,
		Tipo:                   string(m.Tipo),
		Motivo:                 string(m.Motivo),
		Fecha:                  m.Fecha,
		CreadoEn:               m.CreadoEn,
		Cantidad:               m.Cantidad,
		Unidad:                 string(m.Unidad),
		LoteCodigo:             m.LoteCodigo,
		MovimientoOrigenCodigo: m.MovimientoOrigenCodigo,
		DictamenInicial:        string(m.DictamenInicial),
		DictamenFinal:          string(m.DictamenFinal),
		UsuarioID:              m.UsuarioID,
		Activo:                 m.Activo,
	}
	for _, d := range m.Detalles {
		out.Detalles = append(out.Detalles, DetalleMovimientoResponse{
			NroBulto:  d.NroBulto,
			Cantidad:  d.Cantidad,
			Unidad:    string(d.Unidad),
			NrosTraza: d.NrosTraza,
		})
	}
	return out
}

// BultoResponse estado de un bulto.
type BultoResponse struct {
	Nro             int             `json:"nro"`
	CantidadInicial decimal.Decimal `json:"cantidad_inicial"`
	CantidadActual  decimal.Decimal `json:"cantidad_actual"`
	Unidad          string          `json:"unidad"`
	Estado          string          `json:"estado"`
	TrazasPorEstado map[string]int  `json:"trazas_por_estado,omitempty"`
}

// AnalisisResponse estado de un análisis.
type AnalisisResponse struct {
	NroAnalisis      string           `json:"nro_analisis"`
	Dictamen         string           `json:"dictamen,omitempty"`
	FechaReanalisis  *time.Time       `json:"fecha_reanalisis,omitempty"`
	FechaVencimiento *time.Time       `json:"fecha_vencimiento,omitempty"`
	Titulo           *decimal.Decimal `json:"titulo,omitempty"`
	Activo           bool             `json:"activo"`
}

// InformeLoteResponse ficha de trazabilidad de un lote.
type InformeLoteResponse struct {
	Codigo           string               `json:"codigo"`
	ProductoCodigo   string               `json:"producto_codigo"`
	LoteOrigenCodigo string               `json:"lote_origen_codigo,omitempty"`
	CantidadInicial  decimal.Decimal      `json:"cantidad_inicial"`
	CantidadActual   decimal.Decimal      `json:"cantidad_actual"`
	Unidad           string               `json:"unidad"`
	Estado           string               `json:"estado"`
	Dictamen         string               `json:"dictamen"`
	Trazado          bool                 `json:"trazado"`
	Activo           bool                 `json:"activo"`
	FechaVencimiento *time.Time           `json:"fecha_vencimiento,omitempty"`
	Bultos           []BultoResponse      `json:"bultos"`
	Analisis         []AnalisisResponse   `json:"analisis"`
	Movimientos      []MovimientoResponse `json:"movimientos"`
}

// BarridoResponse resumen del barrido de vencimientos.
type BarridoResponse struct {
	Evaluados   int      `json:"evaluados"`
	Movimientos []string `json:"movimientos"`
	Fallidos    []string `json:"fallidos,omitempty"`
}

// LoteStockResponse fila del listado de lotes con stock.
type LoteStockResponse struct {
	Codigo           string          `json:"codigo"`
	ProductoCodigo   string          `json:"producto_codigo"`
	CantidadActual   decimal.Decimal `json:"cantidad_actual"`
	Unidad           string          `json:"unidad"`
	Estado           string          `json:"estado"`
	Dictamen         string          `json:"dictamen"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento,omitempty"`
}

// StockResponse página del listado de lotes con stock.
type StockResponse struct {
	Items []LoteStockResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
