package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.TrazaRepository = (*TrazaRepo)(nil)

// TrazaRepo implementación de TrazaRepository sobre PostgreSQL.
type TrazaRepo struct {
	q Querier
}

// NewTrazaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTrazaRepository(q Querier) *TrazaRepo {
	return &TrazaRepo{q: q}
}

// SaveAll inserta o actualiza estado y ubicación de las trazas.
func (r *TrazaRepo) SaveAll(ctx context.Context, trazas []*entity.Traza) error {
	query := `
		INSERT INTO trazas (id, nro_traza, producto_codigo, lote_codigo, nro_bulto, estado, activo,
			lote_codigo_anterior, nro_bulto_anterior)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, 0))
		ON CONFLICT (id) DO UPDATE SET
			lote_codigo = EXCLUDED.lote_codigo,
			nro_bulto = EXCLUDED.nro_bulto,
			estado = EXCLUDED.estado,
			activo = EXCLUDED.activo,
			lote_codigo_anterior = EXCLUDED.lote_codigo_anterior,
			nro_bulto_anterior = EXCLUDED.nro_bulto_anterior`
	for _, t := range trazas {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, query,
			t.ID, t.NroTraza, t.ProductoCodigo, t.LoteCodigo, t.NroBulto, t.Estado, t.Activo,
			t.LoteCodigoAnterior, t.NroBultoAnterior,
		)
		if err != nil {
			return fmt.Errorf("save traza %d: %w", t.NroTraza, err)
		}
	}
	return nil
}

// listTrazas devuelve las trazas ubicadas hoy en los lotes dados, por número.
func listTrazas(ctx context.Context, q Querier, codigosLote []string) ([]*entity.Traza, error) {
	rows, err := q.Query(ctx, `
		SELECT id, nro_traza, producto_codigo, lote_codigo, nro_bulto, estado, activo,
			COALESCE(lote_codigo_anterior, ''), COALESCE(nro_bulto_anterior, 0)
		FROM trazas WHERE lote_codigo = ANY($1) ORDER BY lote_codigo, nro_traza`, codigosLote)
	if err != nil {
		return nil, fmt.Errorf("list trazas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Traza
	for rows.Next() {
		var t entity.Traza
		if err := rows.Scan(
			&t.ID, &t.NroTraza, &t.ProductoCodigo, &t.LoteCodigo, &t.NroBulto, &t.Estado, &t.Activo,
			&t.LoteCodigoAnterior, &t.NroBultoAnterior,
		); err != nil {
			return nil, fmt.Errorf("scan traza: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
