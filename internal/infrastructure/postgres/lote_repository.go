package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.LoteRepository = (*LoteRepo)(nil)

const loteColumnas = `
	id, codigo, producto_codigo, proveedor, fabricante, lote_proveedor, fecha_ingreso,
	fecha_vencimiento_proveedor, cantidad_inicial, cantidad_actual, unidad, estado, dictamen,
	trazado, activo, COALESCE(lote_origen_codigo, ''), created_at, updated_at`

// LoteRepo implementación de LoteRepository sobre PostgreSQL (usable con pool o tx).
// Los Get arman el agregado completo con una consulta por colección.
type LoteRepo struct {
	q Querier
}

// NewLoteRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLoteRepository(q Querier) *LoteRepo {
	return &LoteRepo{q: q}
}

// GetByCodigo obtiene el lote, activo o no.
func (r *LoteRepo) GetByCodigo(ctx context.Context, codigo string) (*entity.Lote, error) {
	return r.uno(ctx, `SELECT`+loteColumnas+` FROM lotes WHERE codigo = $1`, codigo)
}

// GetActivoByCodigo devuelve nil si el lote no existe o fue desactivado.
func (r *LoteRepo) GetActivoByCodigo(ctx context.Context, codigo string) (*entity.Lote, error) {
	return r.uno(ctx, `SELECT`+loteColumnas+` FROM lotes WHERE codigo = $1 AND activo`, codigo)
}

// GetForUpdate obtiene el lote y bloquea su fila hasta el fin de la transacción.
func (r *LoteRepo) GetForUpdate(ctx context.Context, codigo string) (*entity.Lote, error) {
	return r.uno(ctx, `SELECT`+loteColumnas+` FROM lotes WHERE codigo = $1 FOR UPDATE`, codigo)
}

// ListConStock devuelve los lotes activos con cantidad remanente, ordenados por código.
func (r *LoteRepo) ListConStock(ctx context.Context) ([]*entity.Lote, error) {
	return r.varios(ctx, `SELECT`+loteColumnas+`
		FROM lotes WHERE activo AND cantidad_actual > 0 ORDER BY codigo`)
}

// ListDerivados devuelve los lotes cuyo lote de origen es codigoOrigen.
func (r *LoteRepo) ListDerivados(ctx context.Context, codigoOrigen string) ([]*entity.Lote, error) {
	return r.varios(ctx, `SELECT`+loteColumnas+`
		FROM lotes WHERE lote_origen_codigo = $1 ORDER BY codigo`, codigoOrigen)
}

// Save inserta o actualiza la fila del lote; las colecciones se guardan con sus repositorios.
func (r *LoteRepo) Save(ctx context.Context, l *entity.Lote) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lotes (id, codigo, producto_codigo, proveedor, fabricante, lote_proveedor, fecha_ingreso,
			fecha_vencimiento_proveedor, cantidad_inicial, cantidad_actual, unidad, estado, dictamen,
			trazado, activo, lote_origen_codigo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, ''), $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			cantidad_actual = EXCLUDED.cantidad_actual,
			estado = EXCLUDED.estado,
			dictamen = EXCLUDED.dictamen,
			activo = EXCLUDED.activo,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.Codigo, l.ProductoCodigo, l.Proveedor, l.Fabricante, l.LoteProveedor, l.FechaIngreso,
		l.FechaVencimientoProveedor, l.CantidadInicial, l.CantidadActual, l.Unidad, l.Estado, l.Dictamen,
		l.Trazado, l.Activo, l.LoteOrigenCodigo, l.CreatedAt, l.UpdatedAt,
	)
	return traducir(err, "save lote "+l.Codigo)
}

func (r *LoteRepo) uno(ctx context.Context, query string, args ...any) (*entity.Lote, error) {
	l, err := scanLote(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lote: %w", err)
	}
	if err := r.completar(ctx, []*entity.Lote{l}); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LoteRepo) varios(ctx context.Context, query string, args ...any) ([]*entity.Lote, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lotes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lote
	for rows.Next() {
		l, err := scanLote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lote: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.completar(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// completar carga bultos con trazas, análisis y movimientos con detalles de los lotes dados.
func (r *LoteRepo) completar(ctx context.Context, list []*entity.Lote) error {
	if len(list) == 0 {
		return nil
	}
	porCodigo := make(map[string]*entity.Lote, len(list))
	codigos := make([]string, 0, len(list))
	for _, l := range list {
		porCodigo[l.Codigo] = l
		codigos = append(codigos, l.Codigo)
	}

	bultos, err := listBultos(ctx, r.q, `WHERE lote_codigo = ANY($1) ORDER BY lote_codigo, nro`, codigos)
	if err != nil {
		return err
	}
	type clave struct {
		lote string
		nro  int
	}
	porBulto := make(map[clave]*entity.Bulto, len(bultos))
	for _, b := range bultos {
		porBulto[clave{b.LoteCodigo, b.Nro}] = b
		porCodigo[b.LoteCodigo].Bultos = append(porCodigo[b.LoteCodigo].Bultos, b)
	}

	trazas, err := listTrazas(ctx, r.q, codigos)
	if err != nil {
		return err
	}
	for _, t := range trazas {
		if b, ok := porBulto[clave{t.LoteCodigo, t.NroBulto}]; ok {
			b.Trazas = append(b.Trazas, t)
		}
	}

	analisis, err := listAnalisis(ctx, r.q, codigos)
	if err != nil {
		return err
	}
	for _, a := range analisis {
		porCodigo[a.LoteCodigo].Analisis = append(porCodigo[a.LoteCodigo].Analisis, a)
	}

	movs, err := listMovimientos(ctx, r.q, `WHERE lote_codigo = ANY($1)`, codigos)
	if err != nil {
		return err
	}
	for _, m := range movs {
		porCodigo[m.LoteCodigo].Movimientos = append(porCodigo[m.LoteCodigo].Movimientos, m)
	}
	return nil
}

func scanLote(row pgx.Row) (*entity.Lote, error) {
	var l entity.Lote
	err := row.Scan(
		&l.ID, &l.Codigo, &l.ProductoCodigo, &l.Proveedor, &l.Fabricante, &l.LoteProveedor, &l.FechaIngreso,
		&l.FechaVencimientoProveedor, &l.CantidadInicial, &l.CantidadActual, &l.Unidad, &l.Estado, &l.Dictamen,
		&l.Trazado, &l.Activo, &l.LoteOrigenCodigo, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
