package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.BultoRepository = (*BultoRepo)(nil)

// BultoRepo implementación de BultoRepository sobre PostgreSQL.
type BultoRepo struct {
	q Querier
}

// NewBultoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBultoRepository(q Querier) *BultoRepo {
	return &BultoRepo{q: q}
}

// SaveAll inserta o actualiza los bultos; el lote dueño puede guardarse después en la misma tx.
func (r *BultoRepo) SaveAll(ctx context.Context, bultos []*entity.Bulto) error {
	query := `
		INSERT INTO bultos (id, lote_codigo, nro, cantidad_inicial, cantidad_actual, unidad, estado, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			cantidad_actual = EXCLUDED.cantidad_actual,
			estado = EXCLUDED.estado,
			activo = EXCLUDED.activo`
	for _, b := range bultos {
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, query,
			b.ID, b.LoteCodigo, b.Nro, b.CantidadInicial, b.CantidadActual, b.Unidad, b.Estado, b.Activo,
		)
		if err != nil {
			return fmt.Errorf("save bulto %s/%d: %w", b.LoteCodigo, b.Nro, err)
		}
	}
	return nil
}

func listBultos(ctx context.Context, q Querier, where string, args ...any) ([]*entity.Bulto, error) {
	rows, err := q.Query(ctx, `
		SELECT id, lote_codigo, nro, cantidad_inicial, cantidad_actual, unidad, estado, activo
		FROM bultos `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list bultos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Bulto
	for rows.Next() {
		var b entity.Bulto
		if err := rows.Scan(
			&b.ID, &b.LoteCodigo, &b.Nro, &b.CantidadInicial, &b.CantidadActual, &b.Unidad, &b.Estado, &b.Activo,
		); err != nil {
			return nil, fmt.Errorf("scan bulto: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
