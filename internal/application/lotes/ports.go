package lotes

import (
	"context"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Lotes       repository.LoteRepository
	Bultos      repository.BultoRepository
	Trazas      repository.TrazaRepository
	Movimientos repository.MovimientoRepository
	Analisis    repository.AnalisisRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Cada caso de uso corre en una sola unidad de trabajo: si fn falla no queda ninguna escritura.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// IdentityProvider resuelve el usuario que firma el movimiento.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (string, error)
}

// Clock provee la hora actual; en tests se fija.
type Clock interface {
	Now() time.Time
}

// SystemClock usa el reloj del sistema.
type SystemClock struct{}

// Now implementa Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// InformePDFGenerator genera la ficha de trazabilidad en PDF.
type InformePDFGenerator interface {
	GenerarInformeLote(ctx context.Context, informe *dto.InformeLoteResponse) ([]byte, error)
}

// Deps dependencias compartidas por los casos de uso de lotes.
// Lotes, Movimientos y Productos se usan fuera de transacción (validaciones y consultas).
type Deps struct {
	Tx          TxRunner
	Lotes       repository.LoteRepository
	Movimientos repository.MovimientoRepository
	Productos   repository.ProductoRepository
	Identity    IdentityProvider
	Clock       Clock
	Log         *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}
