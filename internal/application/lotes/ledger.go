package lotes

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// cambios acumula lo que una operación modificó para persistirlo al final de la transacción.
type cambios struct {
	lotes       []*entity.Lote
	bultos      []*entity.Bulto
	trazas      []*entity.Traza
	analisis    []*entity.Analisis
	movimientos []*entity.Movimiento
}

func (c *cambios) lote(l *entity.Lote) {
	for _, x := range c.lotes {
		if x == l {
			return
		}
	}
	c.lotes = append(c.lotes, l)
}

func (c *cambios) bulto(b *entity.Bulto) {
	for _, x := range c.bultos {
		if x == b {
			return
		}
	}
	c.bultos = append(c.bultos, b)
}

func (c *cambios) traza(t *entity.Traza) {
	for _, x := range c.trazas {
		if x == t {
			return
		}
	}
	c.trazas = append(c.trazas, t)
}

func (c *cambios) analisisModificado(a *entity.Analisis) {
	for _, x := range c.analisis {
		if x == a {
			return
		}
	}
	c.analisis = append(c.analisis, a)
}

func (c *cambios) movimiento(m *entity.Movimiento) {
	c.movimientos = append(c.movimientos, m)
}

// persistir guarda en orden: bultos, lotes, trazas, análisis y por último movimientos.
func (c *cambios) persistir(ctx context.Context, r Repos) error {
	if len(c.bultos) > 0 {
		if err := r.Bultos.SaveAll(ctx, c.bultos); err != nil {
			return err
		}
	}
	for _, l := range c.lotes {
		if err := r.Lotes.Save(ctx, l); err != nil {
			return err
		}
	}
	if len(c.trazas) > 0 {
		if err := r.Trazas.SaveAll(ctx, c.trazas); err != nil {
			return err
		}
	}
	for _, a := range c.analisis {
		if err := r.Analisis.Save(ctx, a); err != nil {
			return err
		}
	}
	for _, m := range c.movimientos {
		if err := r.Movimientos.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// descontar resta del bulto y del lote la cantidad pedida, convertida a la unidad de cada uno.
// Devuelve lo descontado en la unidad del bulto y en la del lote.
func descontar(l *entity.Lote, b *entity.Bulto, cantidad decimal.Decimal, unidad entity.Unidad) (enBulto, enLote decimal.Decimal, err error) {
	if enBulto, err = inventory.Convertir(cantidad, unidad, b.Unidad); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if enLote, err = inventory.Convertir(cantidad, unidad, l.Unidad); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if enBulto.GreaterThan(b.CantidadActual) || enLote.GreaterThan(l.CantidadActual) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("bulto %d: %w", b.Nro, domain.ErrCantidadExcedida)
	}
	b.CantidadActual = b.CantidadActual.Sub(enBulto)
	inventory.RecalcularBulto(b)
	l.CantidadActual = l.CantidadActual.Sub(enLote)
	return enBulto, enLote, nil
}

// reponer devuelve al bulto y al lote la cantidad de una línea de detalle.
func reponer(l *entity.Lote, b *entity.Bulto, d *entity.DetalleMovimiento) error {
	enBulto, err := inventory.Convertir(d.Cantidad, d.Unidad, b.Unidad)
	if err != nil {
		return err
	}
	enLote, err := inventory.Convertir(d.Cantidad, d.Unidad, l.Unidad)
	if err != nil {
		return err
	}
	b.CantidadActual = b.CantidadActual.Add(enBulto)
	l.CantidadActual = l.CantidadActual.Add(enLote)
	return nil
}

// quitar resta la cantidad de una línea de detalle (reverso de un ALTA).
func quitar(l *entity.Lote, b *entity.Bulto, d *entity.DetalleMovimiento) error {
	enBulto, err := inventory.Convertir(d.Cantidad, d.Unidad, b.Unidad)
	if err != nil {
		return err
	}
	enLote, err := inventory.Convertir(d.Cantidad, d.Unidad, l.Unidad)
	if err != nil {
		return err
	}
	b.CantidadActual = b.CantidadActual.Sub(enBulto)
	l.CantidadActual = l.CantidadActual.Sub(enLote)
	return nil
}

// validarCantidadTrazada exige cantidad entera en la unidad contable.
func validarCantidadTrazada(cantidad decimal.Decimal, unidad entity.Unidad) error {
	if unidad != entity.UnidadUnidad {
		return domain.ErrUnidadNoTrazable
	}
	if !cantidad.Equal(cantidad.Truncate(0)) {
		return domain.ErrCantidadNoEntera
	}
	return nil
}

// seleccionarTrazas resuelve los números pedidos contra las trazas disponibles del bulto.
func seleccionarTrazas(b *entity.Bulto, nros []int64, cantidad decimal.Decimal) ([]*entity.Traza, error) {
	if int64(len(nros)) != cantidad.IntPart() {
		return nil, domain.ErrTrazasInsuficientes
	}
	vistas := make(map[int64]bool, len(nros))
	out := make([]*entity.Traza, 0, len(nros))
	for _, nro := range nros {
		t := b.TrazaPorNro(nro)
		if t == nil || !t.Disponible() || vistas[nro] {
			return nil, fmt.Errorf("traza %d: %w", nro, domain.ErrTrazaNoEncontrada)
		}
		vistas[nro] = true
		out = append(out, t)
	}
	return out, nil
}

// cancelarAnalisisEnCurso aplica la cancelación automática y la registra en el movimiento.
func cancelarAnalisisEnCurso(l *entity.Lote, m *entity.Movimiento, c *cambios) {
	a := l.AnalisisEnCurso()
	if a == nil || !a.Cancelar() {
		return
	}
	m.AnalisisCancelado = a.NroAnalisis
	c.analisisModificado(a)
}

// estadoTrazaBaja es el estado al que pasa una traza según el motivo de la baja.
func estadoTrazaBaja(motivo entity.MotivoMovimiento) entity.EstadoTraza {
	switch motivo {
	case entity.MotivoVenta:
		return entity.TrazaVendida
	case entity.MotivoDevolucionCompra:
		return entity.TrazaDevuelta
	default:
		return entity.TrazaConsumida
	}
}
