package inventory

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// AccionVencimiento describe lo que el barrido diario debe aplicar a un lote.
// Ambas reglas son independientes; un lote puede requerir las dos.
type AccionVencimiento struct {
	Lote            *entity.Lote
	ExpirarAnalisis bool
	Vencer          bool
}

// PlanificarVencimientos evalúa los lotes candidatos contra la fecha hoy.
// Es puro: no lee reloj ni modifica los lotes.
func PlanificarVencimientos(hoy time.Time, lotes []*entity.Lote) []AccionVencimiento {
	var acciones []AccionVencimiento
	for _, l := range lotes {
		if !l.Activo || !l.TieneStock() {
			continue
		}
		acc := AccionVencimiento{
			Lote:            l,
			ExpirarAnalisis: requiereExpiracionAnalisis(l, hoy),
			Vencer:          requiereVencimiento(l, hoy),
		}
		if acc.ExpirarAnalisis || acc.Vencer {
			acciones = append(acciones, acc)
		}
	}
	return acciones
}

func requiereExpiracionAnalisis(l *entity.Lote, hoy time.Time) bool {
	if l.Dictamen != entity.DictamenAprobado {
		return false
	}
	a := l.UltimoAnalisisAprobado()
	return a != nil && a.FechaReanalisis != nil && alcanzada(*a.FechaReanalisis, hoy)
}

func requiereVencimiento(l *entity.Lote, hoy time.Time) bool {
	if l.Estado == entity.EstadoVencido {
		return false
	}
	f := FechaVencimiento(l)
	return f != nil && alcanzada(*f, hoy)
}

// FechaVencimiento es la del último análisis aprobado que la informe, o la declarada por el proveedor.
func FechaVencimiento(l *entity.Lote) *time.Time {
	if a := l.UltimoAnalisisAprobado(); a != nil && a.FechaVencimiento != nil {
		return a.FechaVencimiento
	}
	return l.FechaVencimientoProveedor
}

// alcanzada compara solo la fecha calendario: f <= hoy.
func alcanzada(f, hoy time.Time) bool {
	f = f.In(hoy.Location())
	fy, fm, fd := f.Date()
	hy, hm, hd := hoy.Date()
	fecha := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	dia := time.Date(hy, hm, hd, 0, 0, 0, 0, time.UTC)
	return !fecha.After(dia)
}
