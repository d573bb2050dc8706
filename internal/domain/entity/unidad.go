package entity

// Unidad es la unidad de medida en que se registra una cantidad.
type Unidad string

// Unidades de masa y la unidad contable (no convertible a masa).
const (
	UnidadKilogramo  Unidad = "KILOGRAMO"
	UnidadGramo      Unidad = "GRAMO"
	UnidadMiligramo  Unidad = "MILIGRAMO"
	UnidadMicrogramo Unidad = "MICROGRAMO"
	UnidadUnidad     Unidad = "UNIDAD"
)

// EsContable indica si la unidad cuenta piezas discretas.
func (u Unidad) EsContable() bool { return u == UnidadUnidad }

// Valida indica si la unidad pertenece al conjunto soportado.
func (u Unidad) Valida() bool {
	switch u {
	case UnidadKilogramo, UnidadGramo, UnidadMiligramo, UnidadMicrogramo, UnidadUnidad:
		return true
	}
	return false
}
