package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.AnalisisRepository = (*AnalisisRepo)(nil)

// AnalisisRepo implementación de AnalisisRepository sobre PostgreSQL.
type AnalisisRepo struct {
	q Querier
}

// NewAnalisisRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAnalisisRepository(q Querier) *AnalisisRepo {
	return &AnalisisRepo{q: q}
}

// Save inserta o actualiza el análisis (dictamen, fechas, título y actividad).
func (r *AnalisisRepo) Save(ctx context.Context, a *entity.Analisis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO analisis (id, lote_codigo, nro_analisis, dictamen, fecha_realizado, fecha_reanalisis,
			fecha_vencimiento, titulo, observaciones, movimiento_codigo, activo, creado_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			dictamen = EXCLUDED.dictamen,
			fecha_realizado = EXCLUDED.fecha_realizado,
			fecha_reanalisis = EXCLUDED.fecha_reanalisis,
			fecha_vencimiento = EXCLUDED.fecha_vencimiento,
			titulo = EXCLUDED.titulo,
			observaciones = EXCLUDED.observaciones,
			activo = EXCLUDED.activo`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.LoteCodigo, a.NroAnalisis, a.Dictamen, a.FechaRealizado, a.FechaReanalisis,
		a.FechaVencimiento, a.Titulo, a.Observaciones, a.MovimientoCodigo, a.Activo, a.CreadoEn,
	)
	if err != nil {
		return fmt.Errorf("save analisis %s: %w", a.NroAnalisis, err)
	}
	return nil
}

// listAnalisis devuelve los análisis de los lotes dados en orden de registro.
func listAnalisis(ctx context.Context, q Querier, codigosLote []string) ([]*entity.Analisis, error) {
	rows, err := q.Query(ctx, `
		SELECT id, lote_codigo, nro_analisis, dictamen, fecha_realizado, fecha_reanalisis,
			fecha_vencimiento, titulo, observaciones, movimiento_codigo, activo, creado_en
		FROM analisis WHERE lote_codigo = ANY($1) ORDER BY seq`, codigosLote)
	if err != nil {
		return nil, fmt.Errorf("list analisis: %w", err)
	}
	defer rows.Close()
	var list []*entity.Analisis
	for rows.Next() {
		var a entity.Analisis
		if err := rows.Scan(
			&a.ID, &a.LoteCodigo, &a.NroAnalisis, &a.Dictamen, &a.FechaRealizado, &a.FechaReanalisis,
			&a.FechaVencimiento, &a.Titulo, &a.Observaciones, &a.MovimientoCodigo, &a.Activo, &a.CreadoEn,
		); err != nil {
			return nil, fmt.Errorf("scan analisis: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
