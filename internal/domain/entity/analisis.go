package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Analisis es un registro de control de calidad sobre un lote.
// Dictamen nil significa "en curso".
type Analisis struct {
	ID               string
	LoteCodigo       string
	NroAnalisis      string // único por lote
	Dictamen         *Dictamen
	FechaRealizado   *time.Time
	FechaReanalisis  *time.Time
	FechaVencimiento *time.Time
	Titulo           *decimal.Decimal // porcentaje, 0 < titulo <= 100
	Observaciones    string
	MovimientoCodigo string // movimiento que lo creó
	Activo           bool
	CreadoEn         time.Time
}

// EnCurso indica si el análisis todavía no tiene dictamen.
func (a *Analisis) EnCurso() bool { return a.Activo && a.Dictamen == nil }

// Aprobado indica si el análisis está activo y aprobado.
func (a *Analisis) Aprobado() bool {
	return a.Activo && a.Dictamen != nil && *a.Dictamen == DictamenAprobado
}

// Cancelar aplica la cancelación automática; no toca análisis ya dictaminados.
func (a *Analisis) Cancelar() bool {
	if !a.EnCurso() {
		return false
	}
	a.Dictamen = DictamenCancelado.Ptr()
	return true
}

// Reabrir deshace una cancelación automática.
func (a *Analisis) Reabrir() {
	if a.Dictamen != nil && *a.Dictamen == DictamenCancelado {
		a.Dictamen = nil
	}
}
