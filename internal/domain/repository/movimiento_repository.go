package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// MovimientoRepository define el puerto del libro de movimientos (solo agrega; Save actualiza Activo).
type MovimientoRepository interface {
	GetByCodigo(ctx context.Context, codigo string) (*entity.Movimiento, error)
	// ListByOrigen devuelve los movimientos activos cuyo movimiento de origen es codigoOrigen.
	ListByOrigen(ctx context.Context, codigoOrigen string) ([]*entity.Movimiento, error)
	Save(ctx context.Context, mov *entity.Movimiento) error
}
