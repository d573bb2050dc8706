package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// TrazaRepository persiste trazas en bloque (estado y ubicación).
type TrazaRepository interface {
	SaveAll(ctx context.Context, trazas []*entity.Traza) error
}
