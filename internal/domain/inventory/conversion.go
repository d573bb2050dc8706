package inventory

import (
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// exponenteGramo es la potencia de 10 que lleva cada unidad de masa a gramos.
// Convertir con Shift es exacto, así que la ida y vuelta nunca pierde información.
var exponenteGramo = map[entity.Unidad]int32{
	entity.UnidadKilogramo:  3,
	entity.UnidadGramo:      0,
	entity.UnidadMiligramo:  -3,
	entity.UnidadMicrogramo: -6,
}

// Convertir expresa cantidad (registrada en desde) en la unidad hacia.
// UNIDAD solo convierte a sí misma; mezclar masa y unidades contables es un error de programación
// y se devuelve como ErrConversionIncompatible para abortar la operación.
func Convertir(cantidad decimal.Decimal, desde, hacia entity.Unidad) (decimal.Decimal, error) {
	if !desde.Valida() || !hacia.Valida() {
		return decimal.Zero, domain.ErrUnidadDesconocida
	}
	if desde == hacia {
		return cantidad, nil
	}
	if desde.EsContable() || hacia.EsContable() {
		return decimal.Zero, domain.ErrConversionIncompatible
	}
	return cantidad.Shift(exponenteGramo[desde] - exponenteGramo[hacia]), nil
}

// Compatibles indica si dos unidades pueden convertirse entre sí.
func Compatibles(a, b entity.Unidad) bool {
	if !a.Valida() || !b.Valida() {
		return false
	}
	return a == b || (!a.EsContable() && !b.EsContable())
}
