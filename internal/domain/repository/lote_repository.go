package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// LoteRepository define el puerto de persistencia de lotes.
// Los Get cargan el agregado completo (bultos con trazas, movimientos con detalles y análisis)
// y devuelven (nil, nil) si no existe.
type LoteRepository interface {
	GetByCodigo(ctx context.Context, codigo string) (*entity.Lote, error)
	GetActivoByCodigo(ctx context.Context, codigo string) (*entity.Lote, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, codigo string) (*entity.Lote, error)
	ListConStock(ctx context.Context) ([]*entity.Lote, error)
	ListDerivados(ctx context.Context, codigoOrigen string) ([]*entity.Lote, error)
	Save(ctx context.Context, lote *entity.Lote) error
}
