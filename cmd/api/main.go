package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Trazabilidad-api/internal/application/identidad"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lotes"
	infrapdf "github.com/jhoicas/Trazabilidad-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Trazabilidad-api/internal/interfaces/http"
	"github.com/jhoicas/Trazabilidad-api/migrations"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	aplicadas, err := postgres.Migrar(ctx, pool, migrations.FS)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	if len(aplicadas) > 0 {
		log.Info().Strs("scripts", aplicadas).Msg("migraciones aplicadas")
	}

	deps := lotes.Deps{
		Tx:          postgres.NewTxRunner(pool),
		Lotes:       postgres.NewLoteRepository(pool),
		Movimientos: postgres.NewMovimientoRepository(pool),
		Productos:   postgres.NewProductoRepository(pool),
		Identity:    identidad.Contexto{},
		Clock:       lotes.SystemClock{},
		Log:         log,
	}
	altaUC := lotes.NewAltaUseCase(deps)
	bajaUC := lotes.NewBajaUseCase(deps)
	modUC := lotes.NewModificacionUseCase(deps)
	reversoUC := lotes.NewReversoUseCase(deps)
	vencimientoUC := lotes.NewVencimientoUseCase(deps)

	// PDF: ficha de trazabilidad del lote
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	informeUC := lotes.NewInformeUseCase(deps, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Trazabilidad API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Lotes:     httpRouter.NewLoteHandler(altaUC, bajaUC, modUC, reversoUC, log),
		Informes:  httpRouter.NewInformeHandler(informeUC, vencimientoUC, deps.Clock, log),
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
