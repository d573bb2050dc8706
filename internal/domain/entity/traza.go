package entity

// Traza es una unidad contable numerada dentro de un bulto.
// LoteCodigo y NroBulto son la referencia inversa al dueño; solo las muta el lote dueño.
type Traza struct {
	ID             string
	NroTraza       int64 // único dentro del lote en que se creó
	ProductoCodigo string
	LoteCodigo     string
	NroBulto       int
	Estado         EstadoTraza
	Activo         bool

	// Ubicación previa cuando una devolución o retiro de mercado la reubicó en otro lote.
	LoteCodigoAnterior string
	NroBultoAnterior   int
}

// Disponible indica si la traza todavía es stock propio.
func (t *Traza) Disponible() bool { return t.Activo && t.Estado == TrazaDisponible }
