package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/Trazabilidad-api/internal/application/identidad"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lotes"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Trazabilidad-api/jobs"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// usuarioSistema firma los movimientos automáticos del barrido.
const usuarioSistema = "sistema"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	deps := lotes.Deps{
		Tx:          postgres.NewTxRunner(pool),
		Lotes:       postgres.NewLoteRepository(pool),
		Movimientos: postgres.NewMovimientoRepository(pool),
		Productos:   postgres.NewProductoRepository(pool),
		Identity:    identidad.Fijo(usuarioSistema),
		Clock:       lotes.SystemClock{},
		Log:         log,
	}
	vencimientoUC := lotes.NewVencimientoUseCase(deps)

	loc := cfg.Sweep.Location()
	cronTask, err := jobs.NewVencimientosTask(time.Time{})
	if err != nil {
		log.Fatal().Err(err).Msg("tarea de vencimientos")
	}

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    log,
		Location:  loc,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskVencimientos, Handler: jobs.VencimientosHandler(vencimientoUC, loc, deps.Clock, log)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Sweep.Cron, Task: cronTask},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar worker")
	}

	log.Info().
		Str("cron", cfg.Sweep.Cron).
		Str("zona", loc.String()).
		Msg("barrido de vencimientos programado")

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
