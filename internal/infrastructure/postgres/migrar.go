package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrar aplica, en orden de nombre, los scripts .sql de fsys que todavía no figuren en schema_migraciones.
// Cada script corre en su propia transacción.
func Migrar(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]string, error) {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migraciones (
			nombre     TEXT PRIMARY KEY,
			aplicada_en TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return nil, fmt.Errorf("crear schema_migraciones: %w", err)
	}

	nombres, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	sort.Strings(nombres)

	var aplicadas []string
	for _, nombre := range nombres {
		var existe bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migraciones WHERE nombre = $1)`, nombre,
		).Scan(&existe); err != nil {
			return aplicadas, fmt.Errorf("consultar migración %s: %w", nombre, err)
		}
		if existe {
			continue
		}
		sql, err := fs.ReadFile(fsys, nombre)
		if err != nil {
			return aplicadas, fmt.Errorf("leer migración %s: %w", nombre, err)
		}
		if strings.TrimSpace(string(sql)) == "" {
			continue
		}
		if err := aplicar(ctx, pool, nombre, string(sql)); err != nil {
			return aplicadas, err
		}
		aplicadas = append(aplicadas, nombre)
	}
	return aplicadas, nil
}

func aplicar(ctx context.Context, pool *pgxpool.Pool, nombre, sql string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Sin argumentos pgx usa el protocolo simple y admite varias sentencias.
	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("aplicar migración %s: %w", nombre, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migraciones (nombre) VALUES ($1)`, nombre); err != nil {
		return fmt.Errorf("registrar migración %s: %w", nombre, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
