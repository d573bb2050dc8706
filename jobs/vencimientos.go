package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lotes"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskVencimientos is the task type for the daily expiration sweep.
	TaskVencimientos = "lotes:vencimientos"
)

// VencimientosPayload fija el instante de corte. Vacío = hora de ejecución (tarea del cron).
type VencimientosPayload struct {
	Fecha time.Time `json:"fecha,omitempty"`
}

// NewVencimientosTask construye la tarea del barrido para el instante at.
// Con at cero la fecha se resuelve al ejecutar, que es lo que necesita el cron.
func NewVencimientosTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(VencimientosPayload{Fecha: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVencimientos, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// Barrido es el caso de uso que corre la tarea.
type Barrido interface {
	Ejecutar(ctx context.Context, hoy time.Time) (*dto.BarridoResponse, error)
}

// VencimientosHandler procesa TaskVencimientos evaluando "hoy" en loc.
// Los lotes que fallan quedan registrados en el log y no provocan reintento de la tarea.
func VencimientosHandler(b Barrido, loc *time.Location, clock lotes.Clock, log *logger.Logger) asynq.HandlerFunc {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = lotes.SystemClock{}
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload VencimientosPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
			}
		}
		at := payload.Fecha
		if at.IsZero() {
			at = clock.Now()
		}
		hoy := at.In(loc)
		resp, err := b.Ejecutar(ctx, hoy)
		if err != nil {
			return fmt.Errorf("barrido de vencimientos: %w", err)
		}
		log.Info().
			Str("hoy", hoy.Format(time.DateOnly)).
			Int("evaluados", resp.Evaluados).
			Int("movimientos", len(resp.Movimientos)).
			Strs("fallidos", resp.Fallidos).
			Msg("tarea de vencimientos completada")
		return nil
	}
}
