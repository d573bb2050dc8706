package domain

import "errors"

// Tipos de error de dominio (sin dependencias externas).
// Los errores concretos envuelven uno de estos tipos; el llamador decide con errors.Is.
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrIllegalState    = errors.New("estado ilegal")
	ErrIllegalArgument = errors.New("argumento ilegal")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrConflict        = errors.New("conflicto con el estado actual")
)

// Error es un error de dominio con mensaje fijo, visible para el usuario.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Unwrap permite errors.Is(err, domain.ErrIllegalState) y similares.
func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) *Error        { return &Error{Kind: ErrNotFound, Msg: msg} }
func illegalState(msg string) *Error    { return &Error{Kind: ErrIllegalState, Msg: msg} }
func illegalArgument(msg string) *Error { return &Error{Kind: ErrIllegalArgument, Msg: msg} }

// Precondiciones (no encontrado).
var (
	ErrLoteNoEncontrado             = notFound("lote no encontrado")
	ErrBultoNoEncontrado            = notFound("bulto no encontrado")
	ErrMovimientoNoEncontrado       = notFound("movimiento no encontrado")
	ErrMovimientoOrigenNoEncontrado = notFound("movimiento de origen no encontrado")
	ErrProductoNoEncontrado         = notFound("producto no encontrado")
	ErrTrazaNoEncontrada            = notFound("traza no encontrada")
	ErrAnalisisNoCoincide           = notFound("el número de análisis no coincide con el análisis en curso")
	ErrAnalisisNoEncontrado         = notFound("análisis no encontrado")
)

// Violaciones de invariantes.
var (
	ErrCantidadNoEntera       = illegalState("la cantidad de un producto trazado debe ser un número entero")
	ErrUnidadNoTrazable       = illegalState("un producto trazado solo admite la unidad UNIDAD")
	ErrMultimuestreo          = illegalState("Multimuestreo no soportado")
	ErrTrazasInsuficientes    = illegalState("la cantidad de trazas seleccionadas no coincide con la cantidad")
	ErrMovimientoIrreversible = illegalState("el movimiento no admite reverso")
	ErrMovimientoInactivo     = illegalState("el movimiento ya fue revertido")
	ErrLoteConDerivados       = illegalState("el lote tiene lotes derivados activos; no se puede revertir")
	ErrLoteConMovimientos     = illegalState("el lote tiene movimientos posteriores; no se puede revertir el ingreso")
	ErrTipoMovimientoInvalido = illegalState("tipo de movimiento inesperado para el reverso")
	ErrAnalisisEnCurso        = illegalState("el lote ya tiene un análisis en curso")
	ErrCantidadExcedida       = illegalState("la cantidad supera el stock disponible")
	ErrAnalisisDictaminado    = illegalState("el análisis ya tiene dictamen")
	ErrLoteTerminal           = illegalState("el lote está en un estado terminal; revierta primero ese cambio")
	ErrCambioPosterior        = illegalState("el dictamen o el estado del lote cambiaron después del movimiento; no se puede revertir")
	ErrSinCambios             = illegalArgument("el movimiento no modifica ningún bulto")
	ErrConversionIncompatible = illegalArgument("no se puede convertir entre unidades de masa y unidades contables")
	ErrUnidadDesconocida      = illegalArgument("unidad de medida desconocida")
	ErrMotivoInvalido         = illegalArgument("motivo de movimiento inválido para la operación")
	ErrDictamenInvalido       = illegalArgument("dictamen inválido para un resultado de análisis")
)
