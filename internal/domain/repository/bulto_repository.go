package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// BultoRepository define el puerto de persistencia de bultos.
type BultoRepository interface {
	SaveAll(ctx context.Context, bultos []*entity.Bulto) error
}
