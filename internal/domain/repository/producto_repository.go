package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// ProductoRepository consulta el catálogo de productos.
type ProductoRepository interface {
	GetByCodigo(ctx context.Context, codigo string) (*entity.Producto, error)
}
