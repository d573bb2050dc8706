package lotes

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// aplicarRecall pasa el lote y su stock remanente a RECALL.
// Es idempotente: un lote ya en RECALL no genera movimiento y devuelve nil.
// Los bultos sin stock y las trazas ya vendidas o devueltas son historia y no se tocan.
func aplicarRecall(l *entity.Lote, fecha time.Time, observaciones string, mc ContextoMovimiento, c *cambios) *entity.Movimiento {
	if l.Estado == entity.EstadoRecall {
		return nil
	}
	mov := MovimientoRecall(fecha, observaciones, l, mc)
	for _, b := range l.Bultos {
		if !b.Activo || !b.TieneStock() {
			continue
		}
		d := &entity.DetalleMovimiento{NroBulto: b.Nro, Cantidad: b.CantidadActual, Unidad: b.Unidad}
		b.Estado = entity.EstadoRecall
		for _, t := range b.Trazas {
			if !t.Disponible() {
				continue
			}
			t.Estado = entity.TrazaRecall
			d.NrosTraza = append(d.NrosTraza, t.NroTraza)
			c.traza(t)
		}
		mov.AgregarDetalle(d)
		c.bulto(b)
	}
	l.Estado = entity.EstadoRecall
	l.Dictamen = entity.DictamenRecall
	l.UpdatedAt = mc.Ahora
	cancelarAnalisisEnCurso(l, mov, c)
	c.lote(l)
	return mov
}
