package memoria

import (
	"context"
	"sort"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// LoteRepository implementa repository.LoteRepository.
type LoteRepository struct{ s *Store }

// GetByCodigo devuelve el lote aunque esté inactivo.
func (r *LoteRepository) GetByCodigo(_ context.Context, codigo string) (*entity.Lote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.cargarLote(codigo), nil
}

// GetActivoByCodigo devuelve nil si el lote no existe o fue desactivado.
func (r *LoteRepository) GetActivoByCodigo(ctx context.Context, codigo string) (*entity.Lote, error) {
	l, _ := r.GetByCodigo(ctx, codigo)
	if l == nil || !l.Activo {
		return nil, nil
	}
	return l, nil
}

// GetForUpdate equivale a GetByCodigo: las transacciones ya están serializadas.
func (r *LoteRepository) GetForUpdate(ctx context.Context, codigo string) (*entity.Lote, error) {
	return r.GetByCodigo(ctx, codigo)
}

// ListConStock devuelve los lotes activos con cantidad remanente.
func (r *LoteRepository) ListConStock(_ context.Context) ([]*entity.Lote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Lote
	for codigo, l := range r.s.t.lotes {
		if l.Activo && l.TieneStock() {
			out = append(out, r.s.cargarLote(codigo))
		}
	}
	ordenarLotes(out)
	return out, nil
}

// ListDerivados devuelve los lotes cuyo lote de origen es codigoOrigen.
func (r *LoteRepository) ListDerivados(_ context.Context, codigoOrigen string) ([]*entity.Lote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Lote
	for codigo, l := range r.s.t.lotes {
		if l.LoteOrigenCodigo == codigoOrigen {
			out = append(out, r.s.cargarLote(codigo))
		}
	}
	ordenarLotes(out)
	return out, nil
}

// Save inserta o actualiza la fila del lote; las colecciones se guardan con sus repositorios.
func (r *LoteRepository) Save(_ context.Context, lote *entity.Lote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.t.registrar(&lote.ID)
	r.s.t.lotes[lote.Codigo] = filaLote(lote)
	return nil
}

// BultoRepository implementa repository.BultoRepository.
type BultoRepository struct{ s *Store }

// SaveAll inserta o actualiza los bultos.
func (r *BultoRepository) SaveAll(_ context.Context, bultos []*entity.Bulto) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range bultos {
		r.s.t.registrar(&b.ID)
		r.s.t.bultos[b.ID] = filaBulto(b)
	}
	return nil
}

// TrazaRepository implementa repository.TrazaRepository.
type TrazaRepository struct{ s *Store }

// SaveAll inserta o actualiza las trazas, incluida su ubicación.
func (r *TrazaRepository) SaveAll(_ context.Context, trazas []*entity.Traza) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range trazas {
		r.s.t.registrar(&t.ID)
		r.s.t.trazas[t.ID] = clonarTraza(t)
	}
	return nil
}

// AnalisisRepository implementa repository.AnalisisRepository.
type AnalisisRepository struct{ s *Store }

// Save inserta o actualiza el análisis.
func (r *AnalisisRepository) Save(_ context.Context, a *entity.Analisis) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.t.registrar(&a.ID)
	r.s.t.analisis[a.ID] = clonarAnalisis(a)
	return nil
}

// MovimientoRepository implementa repository.MovimientoRepository.
type MovimientoRepository struct{ s *Store }

// GetByCodigo devuelve el movimiento con sus detalles.
func (r *MovimientoRepository) GetByCodigo(_ context.Context, codigo string) (*entity.Movimiento, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.t.movimientos[codigo]
	if !ok {
		return nil, nil
	}
	return clonarMovimiento(m), nil
}

// ListByOrigen devuelve los movimientos activos ligados a codigoOrigen.
func (r *MovimientoRepository) ListByOrigen(_ context.Context, codigoOrigen string) ([]*entity.Movimiento, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.movimientosDe(func(m *entity.Movimiento) bool {
		return m.Activo && m.MovimientoOrigenCodigo == codigoOrigen
	}), nil
}

// Save inserta el movimiento o actualiza su marca de actividad.
func (r *MovimientoRepository) Save(_ context.Context, m *entity.Movimiento) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if prev, ok := r.s.t.movimientos[m.Codigo]; ok {
		prev.Activo = m.Activo
		return nil
	}
	r.s.t.registrar(&m.ID)
	for _, d := range m.Detalles {
		r.s.t.registrar(&d.ID)
	}
	r.s.t.movimientos[m.Codigo] = clonarMovimiento(m)
	return nil
}

// ProductoRepository implementa repository.ProductoRepository.
type ProductoRepository struct{ s *Store }

// GetByCodigo devuelve nil si el producto no existe.
func (r *ProductoRepository) GetByCodigo(_ context.Context, codigo string) (*entity.Producto, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.t.productos[codigo]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func ordenarLotes(ls []*entity.Lote) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].Codigo < ls[j].Codigo })
}
