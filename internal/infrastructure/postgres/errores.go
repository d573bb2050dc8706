package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
)

// Códigos SQLSTATE que se reportan como conflicto de concurrencia o unicidad.
const (
	codUniqueViolation      = "23505"
	codLockNotAvailable     = "55P03"
	codSerializationFailure = "40001"
	codDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// traducir envuelve err con domain.ErrConflict cuando Postgres rechaza la escritura por
// unicidad o por bloqueo concurrente; el resto queda como error de infraestructura.
func traducir(err error, op string) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codUniqueViolation, codLockNotAvailable, codSerializationFailure, codDeadlockDetected:
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrConflict, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
