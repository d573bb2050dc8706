package inventory

import (
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DerivarEstado calcula el estado operativo a partir de la cantidad actual e inicial.
//
//	actual == inicial      -> NUEVO
//	actual == 0            -> CONSUMIDO
//	0 < actual < inicial   -> EN_USO
func DerivarEstado(actual, inicial decimal.Decimal) entity.EstadoLote {
	switch {
	case actual.Equal(inicial):
		return entity.EstadoNuevo
	case actual.IsZero():
		return entity.EstadoConsumido
	default:
		return entity.EstadoEnUso
	}
}

// RecalcularLote re-deriva el estado del lote salvo que tenga un estado terminal asignado.
func RecalcularLote(l *entity.Lote) {
	if l.Estado.EsTerminal() {
		return
	}
	l.Estado = DerivarEstado(l.CantidadActual, l.CantidadInicial)
}

// RecalcularBulto re-deriva el estado del bulto salvo que tenga un estado terminal asignado.
func RecalcularBulto(b *entity.Bulto) {
	if b.Estado.EsTerminal() {
		return
	}
	b.Estado = DerivarEstado(b.CantidadActual, b.CantidadInicial)
}
