package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lote representa una cantidad recibida o producida de un producto, rastreable como unidad.
// Es dueño de sus bultos, movimientos y análisis; nunca se borra físicamente.
type Lote struct {
	ID                        string
	Codigo                    string // derivado, inmutable y único
	ProductoCodigo            string
	Proveedor                 string
	Fabricante                string
	LoteProveedor             string
	FechaIngreso              time.Time
	FechaVencimientoProveedor *time.Time
	CantidadInicial           decimal.Decimal
	CantidadActual            decimal.Decimal
	Unidad                    Unidad
	Estado                    EstadoLote
	Dictamen                  Dictamen
	Trazado                   bool
	Activo                    bool
	LoteOrigenCodigo          string // devoluciones y retiros de mercado
	Bultos                    []*Bulto
	Movimientos               []*Movimiento
	Analisis                  []*Analisis
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// TieneStock indica si al lote le queda cantidad.
func (l *Lote) TieneStock() bool { return l.CantidadActual.GreaterThan(decimal.Zero) }

// AgregarBulto asigna el bulto al lote y fija su referencia inversa.
func (l *Lote) AgregarBulto(b *Bulto) {
	b.LoteCodigo = l.Codigo
	for _, t := range b.Trazas {
		t.LoteCodigo = l.Codigo
		t.NroBulto = b.Nro
	}
	l.Bultos = append(l.Bultos, b)
}

// AgregarMovimiento registra el movimiento en el lote.
func (l *Lote) AgregarMovimiento(m *Movimiento) {
	m.LoteCodigo = l.Codigo
	l.Movimientos = append(l.Movimientos, m)
}

// AgregarAnalisis registra el análisis en el lote.
func (l *Lote) AgregarAnalisis(a *Analisis) {
	a.LoteCodigo = l.Codigo
	l.Analisis = append(l.Analisis, a)
}

// BultoPorNro busca un bulto activo por número.
func (l *Lote) BultoPorNro(nro int) *Bulto {
	for _, b := range l.Bultos {
		if b.Activo && b.Nro == nro {
			return b
		}
	}
	return nil
}

// TrazasActivas devuelve todas las trazas activas de los bultos activos.
func (l *Lote) TrazasActivas() []*Traza {
	var out []*Traza
	for _, b := range l.Bultos {
		if !b.Activo {
			continue
		}
		for _, t := range b.Trazas {
			if t.Activo {
				out = append(out, t)
			}
		}
	}
	return out
}

// TrazaPorNro busca una traza activa del lote.
func (l *Lote) TrazaPorNro(nro int64) *Traza {
	for _, t := range l.TrazasActivas() {
		if t.NroTraza == nro {
			return t
		}
	}
	return nil
}

// AnalisisActual es el análisis activo creado más recientemente.
func (l *Lote) AnalisisActual() *Analisis {
	var actual *Analisis
	for _, a := range l.Analisis {
		if !a.Activo {
			continue
		}
		if actual == nil || !a.CreadoEn.Before(actual.CreadoEn) {
			actual = a
		}
	}
	return actual
}

// AnalisisEnCurso devuelve el análisis sin dictamen, si existe.
func (l *Lote) AnalisisEnCurso() *Analisis {
	for _, a := range l.Analisis {
		if a.EnCurso() {
			return a
		}
	}
	return nil
}

// AnalisisPorNro busca un análisis activo por número.
func (l *Lote) AnalisisPorNro(nro string) *Analisis {
	for _, a := range l.Analisis {
		if a.Activo && a.NroAnalisis == nro {
			return a
		}
	}
	return nil
}

// UltimoAnalisisAprobado devuelve el análisis aprobado más reciente.
func (l *Lote) UltimoAnalisisAprobado() *Analisis {
	var ultimo *Analisis
	for _, a := range l.Analisis {
		if !a.Aprobado() {
			continue
		}
		if ultimo == nil || !a.CreadoEn.Before(ultimo.CreadoEn) {
			ultimo = a
		}
	}
	return ultimo
}

// MovimientoPorCodigo busca un movimiento del lote.
func (l *Lote) MovimientoPorCodigo(codigo string) *Movimiento {
	for _, m := range l.Movimientos {
		if m.Codigo == codigo {
			return m
		}
	}
	return nil
}

// MovimientosActivos devuelve los movimientos vigentes en orden de registro.
func (l *Lote) MovimientosActivos() []*Movimiento {
	var out []*Movimiento
	for _, m := range l.Movimientos {
		if m.Activo {
			out = append(out, m)
		}
	}
	return out
}
