package inventory

import (
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SumaBultos devuelve la suma de la cantidad actual de los bultos activos, en la unidad del lote.
func SumaBultos(l *entity.Lote) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range l.Bultos {
		if !b.Activo {
			continue
		}
		c, err := Convertir(b.CantidadActual, b.Unidad, l.Unidad)
		if err != nil {
			return decimal.Zero, fmt.Errorf("bulto %d: %w", b.Nro, err)
		}
		total = total.Add(c)
	}
	return total, nil
}

// Conserva verifica que la suma de los bultos coincida con la cantidad actual del lote.
func Conserva(l *entity.Lote) bool {
	if !l.Activo {
		return true
	}
	total, err := SumaBultos(l)
	if err != nil {
		return false
	}
	return total.Equal(l.CantidadActual)
}
