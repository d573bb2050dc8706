package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lotes"
	"github.com/jhoicas/Trazabilidad-api/internal/application/validacion"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// LoteHandler maneja los movimientos de lotes (protegido).
type LoteHandler struct {
	alta    *lotes.AltaUseCase
	baja    *lotes.BajaUseCase
	mod     *lotes.ModificacionUseCase
	reverso *lotes.ReversoUseCase
	log     *logger.Logger
}

// NewLoteHandler construye el handler.
func NewLoteHandler(
	alta *lotes.AltaUseCase,
	baja *lotes.BajaUseCase,
	mod *lotes.ModificacionUseCase,
	reverso *lotes.ReversoUseCase,
	log *logger.Logger,
) *LoteHandler {
	return &LoteHandler{alta: alta, baja: baja, mod: mod, reverso: reverso, log: log}
}

// registrar valida el cuerpo, ejecuta la operación y responde con el movimiento creado.
func registrar[T any](
	c *fiber.Ctx,
	log *logger.Logger,
	in T,
	validar func(context.Context, T) (*validacion.Resultado, error),
	op func(context.Context, T) (*entity.Movimiento, error),
) error {
	ctx := c.UserContext()
	res, err := validar(ctx, in)
	if err != nil {
		return responderError(c, log, err)
	}
	if res.TieneErrores() {
		return responderValidacion(c, res)
	}
	mov, err := op(ctx, in)
	if err != nil {
		return responderError(c, log, err)
	}
	if mov == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "sin cambios"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovimientoResponse(mov))
}

func cuerpoInvalido(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func (h *LoteHandler) ingreso(c *fiber.Ctx, motivo entity.MotivoMovimiento, op func(context.Context, dto.IngresoRequest) (*entity.Movimiento, error)) error {
	var in dto.IngresoRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	validar := func(ctx context.Context, in dto.IngresoRequest) (*validacion.Resultado, error) {
		return h.alta.ValidarIngreso(ctx, in, motivo)
	}
	return registrar(c, h.log, in, validar, op)
}

// IngresoCompra godoc
// @Summary      Ingreso de lote por compra
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IngresoRequest  true  "producto, bultos y trazas"
// @Success      201   {object}  dto.MovimientoResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lotes/ingresos/compra [post]
func (h *LoteHandler) IngresoCompra(c *fiber.Ctx) error {
	return h.ingreso(c, entity.MotivoCompra, h.alta.IngresoCompra)
}

// IngresoProduccion godoc
// @Summary      Ingreso de lote por producción propia
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IngresoRequest  true  "producto, bultos y trazas"
// @Success      201   {object}  dto.MovimientoResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Router       /api/lotes/ingresos/produccion [post]
func (h *LoteHandler) IngresoProduccion(c *fiber.Ctx) error {
	return h.ingreso(c, entity.MotivoProduccionPropia, h.alta.IngresoProduccion)
}

// IngresoDevolucionVenta godoc
// @Summary      Devolución de cliente sobre un lote vendido
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DevolucionRequest  true  "lote de origen, bultos y trazas devueltas"
// @Success      201   {object}  dto.MovimientoResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lotes/ingresos/devolucion-venta [post]
func (h *LoteHandler) IngresoDevolucionVenta(c *fiber.Ctx) error {
	var in dto.DevolucionRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	return registrar(c, h.log, in, h.alta.ValidarDevolucion, h.alta.IngresoDevolucionVenta)
}

// IngresoRetiroMercado godoc
// @Summary      Retiro de mercado (recall del lote de origen en cascada)
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DevolucionRequest  true  "lote de origen, bultos y trazas retiradas"
// @Success      201   {object}  dto.MovimientoResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lotes/ingresos/retiro-mercado [post]
func (h *LoteHandler) IngresoRetiroMercado(c *fiber.Ctx) error {
	var in dto.DevolucionRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	return registrar(c, h.log, in, h.alta.ValidarDevolucion, h.alta.IngresoRetiroMercado)
}

// Baja godoc
// @Summary      Baja de stock (consumo, venta, muestreo, devolución a proveedor, ajuste)
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        codigo  path  string           true  "código de lote"
// @Param        body    body  dto.BajaRequest  true  "motivo y detalles por bulto"
// @Success      201     {object}  dto.MovimientoResponse
// @Failure      400     {object}  dto.ValidationErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/lotes/{codigo}/bajas [post]
func (h *LoteHandler) Baja(c *fiber.Ctx) error {
	var in dto.BajaRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	in.LoteCodigo = c.Params("codigo")
	return registrar(c, h.log, in, h.baja.ValidarBaja, h.baja.RegistrarBaja)
}

// IngresarAnalisis godoc
// @Summary      Ingreso del lote a análisis (cuarentena)
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        codigo  path  string               true  "código de lote"
// @Param        body    body  dto.AnalisisRequest  true  "número de análisis"
// @Success      201     {object}  dto.MovimientoResponse
// @Failure      400     {object}  dto.ValidationErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/lotes/{codigo}/analisis [post]
func (h *LoteHandler) IngresarAnalisis(c *fiber.Ctx) error {
	var in dto.AnalisisRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	in.LoteCodigo = c.Params("codigo")
	return registrar(c, h.log, in, h.mod.ValidarIngresoAnalisis, h.mod.IngresarAnalisis)
}

// ResultadoAnalisis godoc
// @Summary      Resultado de análisis (dictamen, fechas y título)
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        codigo  path  string                        true  "código de lote"
// @Param        body    body  dto.ResultadoAnalisisRequest  true  "dictamen"
// @Success      201     {object}  dto.MovimientoResponse
// @Failure      400     {object}  dto.ValidationErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/lotes/{codigo}/resultado-analisis [post]
func (h *LoteHandler) ResultadoAnalisis(c *fiber.Ctx) error {
	var in dto.ResultadoAnalisisRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	in.LoteCodigo = c.Params("codigo")
	return registrar(c, h.log, in, h.mod.ValidarResultado, h.mod.RegistrarResultado)
}

// Recall godoc
// @Summary      Recall del lote
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        codigo  path  string             true  "código de lote"
// @Param        body    body  dto.RecallRequest  true  "fecha y observaciones"
// @Success      201     {object}  dto.MovimientoResponse
// @Success      200     {object}  map[string]string  "el lote ya estaba en recall"
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/lotes/{codigo}/recall [post]
func (h *LoteHandler) Recall(c *fiber.Ctx) error {
	var in dto.RecallRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	in.LoteCodigo = c.Params("codigo")
	return registrar(c, h.log, in, h.mod.ValidarRecall, h.mod.Recall)
}

// Reversar godoc
// @Summary      Reverso de un movimiento
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        codigo  path  string              true  "código del movimiento a revertir"
// @Param        body    body  dto.ReversoRequest  false "observaciones"
// @Success      201     {object}  dto.MovimientoResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/movimientos/{codigo}/reverso [post]
func (h *LoteHandler) Reversar(c *fiber.Ctx) error {
	var in dto.ReversoRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return cuerpoInvalido(c)
		}
	}
	in.MovimientoCodigo = c.Params("codigo")
	return registrar(c, h.log, in, h.reverso.ValidarReverso, h.reverso.Reversar)
}

// InformeHandler expone la ficha de trazabilidad y el barrido de vencimientos.
type InformeHandler struct {
	informe     *lotes.InformeUseCase
	vencimiento *lotes.VencimientoUseCase
	clock       lotes.Clock
	log         *logger.Logger
}

// NewInformeHandler construye el handler. clock nil usa el reloj del sistema.
func NewInformeHandler(informe *lotes.InformeUseCase, vencimiento *lotes.VencimientoUseCase, clock lotes.Clock, log *logger.Logger) *InformeHandler {
	if clock == nil {
		clock = lotes.SystemClock{}
	}
	return &InformeHandler{informe: informe, vencimiento: vencimiento, clock: clock, log: log}
}

// Informe godoc
// @Summary      Ficha de trazabilidad del lote
// @Tags         lotes
// @Security     Bearer
// @Produce      json
// @Param        codigo  path  string  true  "código de lote"
// @Success      200     {object}  dto.InformeLoteResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/lotes/{codigo} [get]
func (h *InformeHandler) Informe(c *fiber.Ctx) error {
	inf, err := h.informe.Informe(c.UserContext(), c.Params("codigo"))
	if err != nil {
		return responderError(c, h.log, err)
	}
	return c.JSON(inf)
}

// Stock godoc
// @Summary      Lotes con stock
// @Tags         lotes
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "tamaño de página (1-100)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200     {object}  dto.StockResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/lotes [get]
func (h *InformeHandler) Stock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}
	page.DefaultPage()
	res := validacion.Nuevo()
	if !validacion.Estructura(res, page) {
		return responderValidacion(c, res)
	}
	resp, err := h.informe.Stock(c.UserContext(), page)
	if err != nil {
		return responderError(c, h.log, err)
	}
	return c.JSON(resp)
}

// InformePDF godoc
// @Summary      Ficha de trazabilidad del lote en PDF
// @Tags         lotes
// @Security     Bearer
// @Produce      application/pdf
// @Param        codigo  path  string  true  "código de lote"
// @Success      200
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/lotes/{codigo}/informe.pdf [get]
func (h *InformeHandler) InformePDF(c *fiber.Ctx) error {
	codigo := c.Params("codigo")
	doc, err := h.informe.InformePDF(c.UserContext(), codigo)
	if err != nil {
		return responderError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+codigo+`.pdf"`)
	return c.Send(doc)
}

// Vencimientos godoc
// @Summary      Ejecuta el barrido de vencimientos
// @Description  fecha (YYYY-MM-DD) opcional; por defecto hoy.
// @Tags         lotes
// @Security     Bearer
// @Produce      json
// @Param        fecha  query  string  false  "fecha de corte"
// @Success      200    {object}  dto.BarridoResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/lotes/vencimientos [post]
func (h *InformeHandler) Vencimientos(c *fiber.Ctx) error {
	hoy := h.clock.Now()
	if f := c.Query("fecha"); f != "" {
		t, err := time.ParseInLocation(time.DateOnly, f, hoy.Location())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, use YYYY-MM-DD"})
		}
		hoy = t
	}
	resp, err := h.vencimiento.Ejecutar(c.UserContext(), hoy)
	if err != nil {
		return responderError(c, h.log, err)
	}
	return c.JSON(resp)
}
