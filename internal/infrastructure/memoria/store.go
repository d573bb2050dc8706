// Package memoria implementa los puertos de persistencia en memoria.
// Reproduce el contrato de los repositorios PostgreSQL (agregados completos, copias
// independientes y rollback por transacción) y se usa en tests y demos locales.
package memoria

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lotes"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

type tablas struct {
	productos   map[string]*entity.Producto
	lotes       map[string]*entity.Lote
	bultos      map[string]*entity.Bulto
	trazas      map[string]*entity.Traza
	analisis    map[string]*entity.Analisis
	movimientos map[string]*entity.Movimiento
	orden       map[string]int // secuencia de alta por ID, para listar en orden de registro
	seq         int
}

func nuevasTablas() *tablas {
	return &tablas{
		productos:   make(map[string]*entity.Producto),
		lotes:       make(map[string]*entity.Lote),
		bultos:      make(map[string]*entity.Bulto),
		trazas:      make(map[string]*entity.Traza),
		analisis:    make(map[string]*entity.Analisis),
		movimientos: make(map[string]*entity.Movimiento),
		orden:       make(map[string]int),
	}
}

func (t *tablas) copiar() *tablas {
	out := nuevasTablas()
	for k, v := range t.productos {
		p := *v
		out.productos[k] = &p
	}
	for k, v := range t.lotes {
		out.lotes[k] = filaLote(v)
	}
	for k, v := range t.bultos {
		out.bultos[k] = filaBulto(v)
	}
	for k, v := range t.trazas {
		out.trazas[k] = clonarTraza(v)
	}
	for k, v := range t.analisis {
		out.analisis[k] = clonarAnalisis(v)
	}
	for k, v := range t.movimientos {
		out.movimientos[k] = clonarMovimiento(v)
	}
	for k, v := range t.orden {
		out.orden[k] = v
	}
	out.seq = t.seq
	return out
}

// registrar asigna ID y secuencia a una fila nueva.
func (t *tablas) registrar(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if _, ok := t.orden[*id]; !ok {
		t.seq++
		t.orden[*id] = t.seq
	}
}

// Store es la base en memoria. Las transacciones se serializan y se deshacen si fn falla.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	t    *tablas
}

// NewStore crea una base vacía con el catálogo de productos dado.
func NewStore(productos ...*entity.Producto) *Store {
	s := &Store{t: nuevasTablas()}
	for _, p := range productos {
		c := *p
		s.t.productos[p.Codigo] = &c
	}
	return s
}

// Repos devuelve los repositorios sobre la base (fuera de transacción).
func (s *Store) Repos() lotes.Repos {
	return lotes.Repos{
		Lotes:       &LoteRepository{s: s},
		Bultos:      &BultoRepository{s: s},
		Trazas:      &TrazaRepository{s: s},
		Movimientos: &MovimientoRepository{s: s},
		Analisis:    &AnalisisRepository{s: s},
	}
}

// Productos devuelve el repositorio del catálogo.
func (s *Store) Productos() *ProductoRepository { return &ProductoRepository{s: s} }

// Run implementa lotes.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r lotes.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.t.copiar()
	s.mu.RUnlock()

	if err := fn(ctx, s.Repos()); err != nil {
		s.mu.Lock()
		s.t = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// cargarLote arma el agregado completo a partir de las filas. Requiere s.mu tomado.
func (s *Store) cargarLote(codigo string) *entity.Lote {
	fila, ok := s.t.lotes[codigo]
	if !ok {
		return nil
	}
	l := filaLote(fila)
	for _, b := range s.t.bultos {
		if b.LoteCodigo == codigo {
			l.Bultos = append(l.Bultos, filaBulto(b))
		}
	}
	sort.Slice(l.Bultos, func(i, j int) bool { return l.Bultos[i].Nro < l.Bultos[j].Nro })
	for _, t := range s.t.trazas {
		if t.LoteCodigo != codigo {
			continue
		}
		for _, b := range l.Bultos {
			if b.Nro == t.NroBulto {
				b.Trazas = append(b.Trazas, clonarTraza(t))
				break
			}
		}
	}
	for _, b := range l.Bultos {
		sort.Slice(b.Trazas, func(i, j int) bool { return b.Trazas[i].NroTraza < b.Trazas[j].NroTraza })
	}
	for _, a := range s.t.analisis {
		if a.LoteCodigo == codigo {
			l.Analisis = append(l.Analisis, clonarAnalisis(a))
		}
	}
	sort.Slice(l.Analisis, func(i, j int) bool { return s.t.orden[l.Analisis[i].ID] < s.t.orden[l.Analisis[j].ID] })
	l.Movimientos = s.movimientosDe(func(m *entity.Movimiento) bool { return m.LoteCodigo == codigo })
	return l
}

func (s *Store) movimientosDe(filtro func(*entity.Movimiento) bool) []*entity.Movimiento {
	var out []*entity.Movimiento
	for _, m := range s.t.movimientos {
		if filtro(m) {
			out = append(out, clonarMovimiento(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.t.orden[out[i].ID] < s.t.orden[out[j].ID] })
	return out
}
