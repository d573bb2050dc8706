package lotes

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/validacion"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// ModificacionUseCase registra cambios de calidad sin movimiento de stock:
// ingreso a análisis, resultado de análisis y recall.
type ModificacionUseCase struct {
	d Deps
}

// NewModificacionUseCase construye el caso de uso.
func NewModificacionUseCase(d Deps) *ModificacionUseCase {
	return &ModificacionUseCase{d: d.withDefaults()}
}

func (uc *ModificacionUseCase) loteActivo(ctx context.Context, codigo string) (*entity.Lote, error) {
	lote, err := uc.d.Lotes.GetActivoByCodigo(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if lote == nil {
		return nil, domain.ErrLoteNoEncontrado
	}
	return lote, nil
}

// ValidarIngresoAnalisis: un solo análisis en curso por lote y número no repetido.
func (uc *ModificacionUseCase) ValidarIngresoAnalisis(ctx context.Context, in dto.AnalisisRequest) (*validacion.Resultado, error) {
	res := validacion.Nuevo()
	if !validacion.Estructura(res, in) {
		return res, nil
	}
	lote, err := uc.loteActivo(ctx, in.LoteCodigo)
	if err != nil {
		return nil, err
	}
	switch {
	case lote.Estado.EsTerminal():
		res.Rechazar("lote_codigo", "el lote está en estado "+string(lote.Estado))
	case !lote.TieneStock():
		res.Rechazar("lote_codigo", "el lote no tiene stock")
	case lote.AnalisisEnCurso() != nil:
		res.Rechazar("nro_analisis", "el lote ya tiene un análisis en curso")
	case lote.AnalisisPorNro(in.NroAnalisis) != nil:
		res.Rechazar("nro_analisis", "el número de análisis ya existe en el lote")
	}
	return res, nil
}

// IngresarAnalisis abre un análisis en curso y pone el lote en CUARENTENA.
func (uc *ModificacionUseCase) IngresarAnalisis(ctx context.Context, in dto.AnalisisRequest) (*entity.Movimiento, error) {
	usuario, err := uc.d.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	ahora := uc.d.Clock.Now()
	var mov *entity.Movimiento
	err = uc.d.Tx.Run(ctx, func(ctx context.Context, r Repos) error {
		lote, err := loteParaModificar(ctx, r, in.LoteCodigo)
		if err != nil {
			return err
		}
		if lote.AnalisisEnCurso() != nil {
			return domain.ErrAnalisisEnCurso
		}
		mov = MovimientoAnalisis(in, lote, nuevoContexto(usuario, ahora))
		a := &entity.Analisis{
			NroAnalisis:      in.NroAnalisis,
			MovimientoCodigo: mov.Codigo,
			Observaciones:    in.Observaciones,
			Activo:           true,
			CreadoEn:         ahora,
		}
		lote.AgregarAnalisis(a)
		lote.Dictamen = entity.DictamenCuarentena
		lote.UpdatedAt = ahora
		lote.AgregarMovimiento(mov)

		c := &cambios{}
		c.lote(lote)
		c.analisisModificado(a)
		c.movimiento(mov)
		return c.persistir(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	uc.d.Log.Info().Str("lote", in.LoteCodigo).Str("analisis", in.NroAnalisis).Str("movimiento", mov.Codigo).Msg("ingreso a análisis")
	return mov, nil
}

// ValidarResultado verifica dictamen, fechas y título; un número distinto al del análisis en curso
// es una precondición y se devuelve como error.
func (uc *ModificacionUseCase) ValidarResultado(ctx context.Context, in dto.ResultadoAnalisisRequest) (*validacion.Resultado, error) {
	res := validacion.Nuevo()
	if !validacion.Estructura(res, in) {
		return res, nil
	}
	lote, err := uc.loteActivo(ctx, in.LoteCodigo)
	if err != nil {
		return nil, err
	}
	if en := lote.AnalisisEnCurso(); en != nil && en.NroAnalisis != in.NroAnalisis {
		return nil, domain.ErrAnalisisNoCoincide
	}
	if a := lote.AnalisisPorNro(in.NroAnalisis); a != nil && !a.EnCurso() {
		res.Rechazar("nro_analisis", "el análisis ya tiene dictamen")
		return res, nil
	}
	if !validarFechasResultado(res, in) {
		return res, nil
	}
	validarTitulo(res, in.Titulo)
	return res, nil
}

func validarFechasResultado(res *validacion.Resultado, in dto.ResultadoAnalisisRequest) bool {
	if entity.Dictamen(in.Dictamen) != entity.DictamenAprobado {
		return true
	}
	if in.FechaReanalisis == nil && in.FechaVencimiento == nil {
		return res.Rechazar("fecha_reanalisis", "un análisis aprobado requiere fecha de reanálisis o de vencimiento")
	}
	if in.FechaReanalisis != nil && in.FechaVencimiento != nil && in.FechaReanalisis.After(*in.FechaVencimiento) {
		return res.Rechazar("fecha_reanalisis", "no puede ser posterior a la fecha de vencimiento")
	}
	return true
}

func validarTitulo(res *validacion.Resultado, titulo *decimal.Decimal) bool {
	if titulo == nil {
		return true
	}
	if !titulo.GreaterThan(decimal.Zero) || titulo.GreaterThan(cien) {
		return res.Rechazar("titulo", "debe estar entre 0 (excluido) y 100")
	}
	return true
}

// RegistrarResultado dictamina el análisis en curso (o crea uno con ese número) y copia el dictamen al lote.
func (uc *ModificacionUseCase) RegistrarResultado(ctx context.Context, in dto.ResultadoAnalisisRequest) (*entity.Movimiento, error) {
	dictamen := entity.Dictamen(in.Dictamen)
	if !dictamen.EsResultadoAnalisis() {
		return nil, domain.ErrDictamenInvalido
	}
	usuario, err := uc.d.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	ahora := uc.d.Clock.Now()
	var mov *entity.Movimiento
	err = uc.d.Tx.Run(ctx, func(ctx context.Context, r Repos) error {
		lote, err := loteParaModificar(ctx, r, in.LoteCodigo)
		if err != nil {
			return err
		}
		if en := lote.AnalisisEnCurso(); en != nil && en.NroAnalisis != in.NroAnalisis {
			return domain.ErrAnalisisNoCoincide
		}
		mov = MovimientoResultado(in, lote, nuevoContexto(usuario, ahora))
		a := lote.AnalisisPorNro(in.NroAnalisis)
		if a == nil {
			a = &entity.Analisis{
				NroAnalisis:      in.NroAnalisis,
				MovimientoCodigo: mov.Codigo,
				Activo:           true,
				CreadoEn:         ahora,
			}
			lote.AgregarAnalisis(a)
		} else if !a.EnCurso() {
			return domain.ErrAnalisisDictaminado
		}
		a.Dictamen = dictamen.Ptr()
		a.FechaRealizado = in.FechaRealizado
		a.FechaReanalisis = in.FechaReanalisis
		a.FechaVencimiento = in.FechaVencimiento
		a.Titulo = in.Titulo
		if in.Observaciones != "" {
			a.Observaciones = in.Observaciones
		}
		lote.Dictamen = dictamen
		lote.UpdatedAt = ahora
		lote.AgregarMovimiento(mov)

		c := &cambios{}
		c.lote(lote)
		c.analisisModificado(a)
		c.movimiento(mov)
		return c.persistir(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	uc.d.Log.Info().Str("lote", in.LoteCodigo).Str("analisis", in.NroAnalisis).Str("dictamen", in.Dictamen).Str("movimiento", mov.Codigo).Msg("resultado de análisis")
	return mov, nil
}

// ValidarRecall solo exige el lote; el recall sobre un lote ya retirado no falla.
func (uc *ModificacionUseCase) ValidarRecall(ctx context.Context, in dto.RecallRequest) (*validacion.Resultado, error) {
	res := validacion.Nuevo()
	if !validacion.Estructura(res, in) {
		return res, nil
	}
	if _, err := uc.loteActivo(ctx, in.LoteCodigo); err != nil {
		return nil, err
	}
	return res, nil
}

// Recall retira el lote del mercado. Devuelve nil sin error si el lote ya estaba en RECALL.
func (uc *ModificacionUseCase) Recall(ctx context.Context, in dto.RecallRequest) (*entity.Movimiento, error) {
	usuario, err := uc.d.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	ahora := uc.d.Clock.Now()
	var mov *entity.Movimiento
	err = uc.d.Tx.Run(ctx, func(ctx context.Context, r Repos) error {
		lote, err := loteParaModificar(ctx, r, in.LoteCodigo)
		if err != nil {
			return err
		}
		c := &cambios{}
		mov = aplicarRecall(lote, in.Fecha, in.Observaciones, nuevoContexto(usuario, ahora), c)
		if mov == nil {
			return nil
		}
		lote.AgregarMovimiento(mov)
		c.movimiento(mov)
		return c.persistir(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	if mov == nil {
		uc.d.Log.Debug().Str("lote", in.LoteCodigo).Msg("recall omitido: el lote ya está en recall")
		return nil, nil
	}
	uc.d.Log.Info().Str("lote", in.LoteCodigo).Str("movimiento", mov.Codigo).Msg("recall registrado")
	return mov, nil
}

func loteParaModificar(ctx context.Context, r Repos, codigo string) (*entity.Lote, error) {
	lote, err := r.Lotes.GetForUpdate(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if lote == nil || !lote.Activo {
		return nil, domain.ErrLoteNoEncontrado
	}
	return lote, nil
}
