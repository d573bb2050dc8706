package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

// MovimientoRepo implementación del libro de movimientos sobre PostgreSQL.
// Las filas solo se agregan; lo único que cambia después es la marca activo.
type MovimientoRepo struct {
	q Querier
}

// NewMovimientoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovimientoRepository(q Querier) *MovimientoRepo {
	return &MovimientoRepo{q: q}
}

// GetByCodigo devuelve el movimiento con sus detalles, o nil si no existe.
func (r *MovimientoRepo) GetByCodigo(ctx context.Context, codigo string) (*entity.Movimiento, error) {
	list, err := listMovimientos(ctx, r.q, `WHERE codigo = $1`, codigo)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// ListByOrigen devuelve los movimientos activos ligados a codigoOrigen.
func (r *MovimientoRepo) ListByOrigen(ctx context.Context, codigoOrigen string) ([]*entity.Movimiento, error) {
	return listMovimientos(ctx, r.q, `WHERE movimiento_origen_codigo = $1 AND activo`, codigoOrigen)
}

// Save inserta el movimiento con sus detalles o, si ya existe, actualiza su marca de actividad.
func (r *MovimientoRepo) Save(ctx context.Context, m *entity.Movimiento) error {
	cmd, err := r.q.Exec(ctx, `UPDATE movimientos SET activo = $2 WHERE codigo = $1`, m.Codigo, m.Activo)
	if err != nil {
		return fmt.Errorf("update movimiento: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movimientos (id, codigo, tipo, motivo, fecha, creado_en, cantidad, unidad, lote_codigo,
			movimiento_origen_codigo, dictamen_inicial, dictamen_final, nro_analisis, analisis_cancelado,
			observaciones, usuario_id, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.q.Exec(ctx, query,
		m.ID, m.Codigo, m.Tipo, m.Motivo, m.Fecha, m.CreadoEn, m.Cantidad, m.Unidad, m.LoteCodigo,
		m.MovimientoOrigenCodigo, m.DictamenInicial, m.DictamenFinal, m.NroAnalisis, m.AnalisisCancelado,
		m.Observaciones, m.UsuarioID, m.Activo,
	)
	if err != nil {
		return traducir(err, "insert movimiento "+m.Codigo)
	}

	detalle := `
		INSERT INTO detalles_movimiento (id, movimiento_codigo, nro_bulto, cantidad, unidad, nros_traza)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, d := range m.Detalles {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		nros := d.NrosTraza
		if nros == nil {
			nros = []int64{}
		}
		if _, err := r.q.Exec(ctx, detalle, d.ID, m.Codigo, d.NroBulto, d.Cantidad, d.Unidad, nros); err != nil {
			return fmt.Errorf("insert detalle movimiento: %w", err)
		}
	}
	return nil
}

// listMovimientos consulta movimientos en orden de registro y les adjunta sus detalles.
func listMovimientos(ctx context.Context, q Querier, where string, args ...any) ([]*entity.Movimiento, error) {
	rows, err := q.Query(ctx, `
		SELECT id, codigo, tipo, motivo, fecha, creado_en, cantidad, unidad, lote_codigo,
			COALESCE(movimiento_origen_codigo, ''), dictamen_inicial, dictamen_final, nro_analisis,
			analisis_cancelado, observaciones, usuario_id, activo
		FROM movimientos `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movimiento
	porCodigo := make(map[string]*entity.Movimiento)
	for rows.Next() {
		var m entity.Movimiento
		if err := rows.Scan(
			&m.ID, &m.Codigo, &m.Tipo, &m.Motivo, &m.Fecha, &m.CreadoEn, &m.Cantidad, &m.Unidad, &m.LoteCodigo,
			&m.MovimientoOrigenCodigo, &m.DictamenInicial, &m.DictamenFinal, &m.NroAnalisis,
			&m.AnalisisCancelado, &m.Observaciones, &m.UsuarioID, &m.Activo,
		); err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		list = append(list, &m)
		porCodigo[m.Codigo] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	codigos := make([]string, 0, len(list))
	for _, m := range list {
		codigos = append(codigos, m.Codigo)
	}
	drows, err := q.Query(ctx, `
		SELECT id, movimiento_codigo, nro_bulto, cantidad, unidad, nros_traza
		FROM detalles_movimiento WHERE movimiento_codigo = ANY($1) ORDER BY seq`, codigos)
	if err != nil {
		return nil, fmt.Errorf("list detalles movimiento: %w", err)
	}
	defer drows.Close()
	for drows.Next() {
		var d entity.DetalleMovimiento
		if err := drows.Scan(&d.ID, &d.MovimientoCodigo, &d.NroBulto, &d.Cantidad, &d.Unidad, &d.NrosTraza); err != nil {
			return nil, fmt.Errorf("scan detalle movimiento: %w", err)
		}
		if len(d.NrosTraza) == 0 {
			d.NrosTraza = nil
		}
		porCodigo[d.MovimientoCodigo].Detalles = append(porCodigo[d.MovimientoCodigo].Detalles, &d)
	}
	return list, drows.Err()
}
