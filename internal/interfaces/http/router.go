package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Lotes     *LoteHandler
	Informes  *InformeHandler
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	operacion := RequireRole(RolAdmin, RolDeposito)
	calidad := RequireRole(RolAdmin, RolCalidad)

	lotes := api.Group("/lotes")

	// Ingresos
	ingresos := lotes.Group("/ingresos")
	ingresos.Post("/compra", operacion, deps.Lotes.IngresoCompra)
	ingresos.Post("/produccion", operacion, deps.Lotes.IngresoProduccion)
	ingresos.Post("/devolucion-venta", operacion, deps.Lotes.IngresoDevolucionVenta)
	ingresos.Post("/retiro-mercado", calidad, deps.Lotes.IngresoRetiroMercado)

	// Barrido manual (el worker lo corre a diario)
	lotes.Post("/vencimientos", RequireRole(RolAdmin), deps.Informes.Vencimientos)

	// Bajas y modificaciones
	lotes.Post("/:codigo/bajas", operacion, deps.Lotes.Baja)
	lotes.Post("/:codigo/analisis", calidad, deps.Lotes.IngresarAnalisis)
	lotes.Post("/:codigo/resultado-analisis", calidad, deps.Lotes.ResultadoAnalisis)
	lotes.Post("/:codigo/recall", calidad, deps.Lotes.Recall)

	// Informes (cualquier rol autenticado)
	lotes.Get("/", deps.Informes.Stock)
	lotes.Get("/:codigo", deps.Informes.Informe)
	lotes.Get("/:codigo/informe.pdf", deps.Informes.InformePDF)

	// Reversos
	api.Post("/movimientos/:codigo/reverso", calidad, deps.Lotes.Reversar)
}
