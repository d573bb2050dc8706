package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// AnalisisRepository persiste los análisis de calidad.
type AnalisisRepository interface {
	Save(ctx context.Context, analisis *entity.Analisis) error
}
