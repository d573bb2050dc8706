package entity

import "github.com/shopspring/decimal"

// Bulto representa un envase físico dentro de un lote.
type Bulto struct {
	ID              string
	LoteCodigo      string // referencia inversa al lote dueño
	Nro             int    // único dentro del lote
	CantidadInicial decimal.Decimal
	CantidadActual  decimal.Decimal
	Unidad          Unidad
	Estado          EstadoLote
	Activo          bool
	Trazas          []*Traza
}

// TieneStock indica si al bulto le queda cantidad.
func (b *Bulto) TieneStock() bool { return b.CantidadActual.GreaterThan(decimal.Zero) }

// TrazaPorNro busca una traza activa del bulto.
func (b *Bulto) TrazaPorNro(nro int64) *Traza {
	for _, t := range b.Trazas {
		if t.Activo && t.NroTraza == nro {
			return t
		}
	}
	return nil
}

// AgregarTraza asigna la traza al bulto y actualiza su referencia inversa.
func (b *Bulto) AgregarTraza(t *Traza) {
	t.LoteCodigo = b.LoteCodigo
	t.NroBulto = b.Nro
	b.Trazas = append(b.Trazas, t)
}

// quitarTraza saca la traza de la colección sin tocar su referencia inversa.
func (b *Bulto) quitarTraza(t *Traza) bool {
	for i, x := range b.Trazas {
		if x == t {
			b.Trazas = append(b.Trazas[:i], b.Trazas[i+1:]...)
			return true
		}
	}
	return false
}

// ReubicarTraza mueve la traza de un bulto a otro (de otro lote) y recuerda la ubicación previa.
func ReubicarTraza(t *Traza, desde, hacia *Bulto) {
	desde.quitarTraza(t)
	t.LoteCodigoAnterior = desde.LoteCodigo
	t.NroBultoAnterior = desde.Nro
	hacia.AgregarTraza(t)
}

// RestituirTraza devuelve una traza reubicada a su bulto anterior.
func RestituirTraza(t *Traza, desde, hacia *Bulto) {
	desde.quitarTraza(t)
	hacia.AgregarTraza(t)
	t.LoteCodigoAnterior = ""
	t.NroBultoAnterior = 0
}
