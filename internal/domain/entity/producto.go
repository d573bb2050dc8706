package entity

import "time"

// TipoProducto clasifica los productos del catálogo.
type TipoProducto string

const (
	TipoAPI             TipoProducto = "API"
	TipoExcipiente      TipoProducto = "EXCIPIENTE"
	TipoAcondPrimario   TipoProducto = "ACOND_PRIMARIO"
	TipoAcondSecundario TipoProducto = "ACOND_SECUNDARIO"
	TipoSemielaborado   TipoProducto = "SEMIELABORADO"
	TipoUnidadVenta     TipoProducto = "UNIDAD_VENTA"
)

// Producto representa un ítem del catálogo (materia prima, material o unidad de venta).
type Producto struct {
	ID           string
	Codigo       string // código único
	Nombre       string
	Tipo         TipoProducto
	UnidadMedida Unidad
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdmiteTrazado indica si los lotes del producto pueden llevar trazas individuales.
func (p *Producto) AdmiteTrazado() bool { return p.Tipo == TipoUnidadVenta }
