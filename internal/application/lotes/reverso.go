package lotes

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/validacion"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
)

// ReversoUseCase deshace un movimiento restaurando exactamente el estado previo del lote,
// sus bultos, trazas y análisis. El original y su registro de reverso quedan inactivos.
type ReversoUseCase struct {
	d Deps
}

// NewReversoUseCase construye el caso de uso.
func NewReversoUseCase(d Deps) *ReversoUseCase {
	return &ReversoUseCase{d: d.withDefaults()}
}

// ValidarReverso comprueba que el movimiento exista, siga vigente y admita reverso.
func (uc *ReversoUseCase) ValidarReverso(ctx context.Context, in dto.ReversoRequest) (*validacion.Resultado, error) {
	res := validacion.Nuevo()
	if !validacion.Estructura(res, in) {
		return res, nil
	}
	mov, err := uc.d.Movimientos.GetByCodigo(ctx, in.MovimientoCodigo)
	if err != nil {
		return nil, err
	}
	if err := reversible(mov); err != nil {
		return nil, err
	}
	return res, nil
}

func reversible(mov *entity.Movimiento) error {
	switch {
	case mov == nil:
		return domain.ErrMovimientoNoEncontrado
	case !mov.Activo:
		return domain.ErrMovimientoInactivo
	case !mov.Motivo.Reversible():
		return domain.ErrMovimientoIrreversible
	}
	return nil
}

// Reversar aplica el inverso del movimiento y devuelve el registro de auditoría del reverso.
func (uc *ReversoUseCase) Reversar(ctx context.Context, in dto.ReversoRequest) (*entity.Movimiento, error) {
	usuario, err := uc.d.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	ahora := uc.d.Clock.Now()
	var rev *entity.Movimiento
	err = uc.d.Tx.Run(ctx, func(ctx context.Context, r Repos) error {
		m, err := r.Movimientos.GetByCodigo(ctx, in.MovimientoCodigo)
		if err != nil {
			return err
		}
		if err := reversible(m); err != nil {
			return err
		}
		lote, err := r.Lotes.GetForUpdate(ctx, m.LoteCodigo)
		if err != nil {
			return err
		}
		if lote == nil {
			return domain.ErrLoteNoEncontrado
		}
		if x := lote.MovimientoPorCodigo(m.Codigo); x != nil {
			m = x
		}
		rv := &reversor{r: r, c: &cambios{}, obs: in.Observaciones, lotes: map[string]*entity.Lote{lote.Codigo: lote}}
		if rev, err = rv.reversar(ctx, lote, m, nuevoContexto(usuario, ahora), true); err != nil {
			return err
		}
		return rv.c.persistir(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	uc.d.Log.Info().
		Str("movimiento", in.MovimientoCodigo).
		Str("reverso", rev.Codigo).
		Str("lote", rev.LoteCodigo).
		Msg("movimiento revertido")
	return rev, nil
}

// reversor mantiene una sola copia de cada lote cargado durante un reverso en cascada.
type reversor struct {
	r     Repos
	c     *cambios
	obs   string
	lotes map[string]*entity.Lote
}

func (rv *reversor) lote(ctx context.Context, codigo string) (*entity.Lote, error) {
	if l, ok := rv.lotes[codigo]; ok {
		return l, nil
	}
	l, err := rv.r.Lotes.GetForUpdate(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("lote %s: %w", codigo, domain.ErrLoteNoEncontrado)
	}
	rv.lotes[codigo] = l
	return l, nil
}

func (rv *reversor) reversar(ctx context.Context, l *entity.Lote, m *entity.Movimiento, mc ContextoMovimiento, verificarDerivados bool) (*entity.Movimiento, error) {
	if err := reversible(m); err != nil {
		return nil, err
	}
	bloqueable := m.Tipo != entity.TipoModificacion || m.Motivo == entity.MotivoRecall
	if verificarDerivados && bloqueable {
		if err := rv.sinDerivados(ctx, l); err != nil {
			return nil, err
		}
	}
	antes := l.Dictamen

	var err error
	switch m.Tipo {
	case entity.TipoAlta:
		err = rv.revertirAlta(ctx, l, m, mc)
	case entity.TipoBaja:
		err = rv.revertirBaja(l, m)
	case entity.TipoModificacion:
		err = rv.revertirModificacion(l, m)
	default:
		err = domain.ErrTipoMovimientoInvalido
	}
	if err != nil {
		return nil, err
	}

	m.Activo = false
	rev := MovimientoReverso(m, rv.obs, l, mc)
	rev.DictamenInicial = antes
	rev.Activo = false
	l.UpdatedAt = mc.Ahora
	l.AgregarMovimiento(rev)
	rv.c.lote(l)
	rv.c.movimiento(m)
	rv.c.movimiento(rev)
	return rev, nil
}

func (rv *reversor) sinDerivados(ctx context.Context, l *entity.Lote) error {
	derivados, err := rv.r.Lotes.ListDerivados(ctx, l.Codigo)
	if err != nil {
		return err
	}
	for _, d := range derivados {
		if d.Activo {
			return domain.ErrLoteConDerivados
		}
	}
	return nil
}

// revertirAlta desactiva el lote ingresado. En devoluciones y retiros las trazas vuelven
// a su bulto de origen como vendidas; en un retiro se revierte además el recall dependiente.
func (rv *reversor) revertirAlta(ctx context.Context, l *entity.Lote, m *entity.Movimiento, mc ContextoMovimiento) error {
	for _, x := range l.MovimientosActivos() {
		if x != m {
			return domain.ErrLoteConMovimientos
		}
	}
	var origen *entity.Lote
	if l.LoteOrigenCodigo != "" {
		var err error
		if origen, err = rv.lote(ctx, l.LoteOrigenCodigo); err != nil {
			return err
		}
	}
	for _, d := range m.Detalles {
		b := l.BultoPorNro(d.NroBulto)
		if b == nil {
			return fmt.Errorf("bulto %d: %w", d.NroBulto, domain.ErrBultoNoEncontrado)
		}
		if err := quitar(l, b, d); err != nil {
			return err
		}
		for _, t := range append([]*entity.Traza(nil), b.Trazas...) {
			if origen != nil && t.LoteCodigoAnterior == origen.Codigo {
				hacia := origen.BultoPorNro(t.NroBultoAnterior)
				if hacia == nil {
					return fmt.Errorf("bulto %d del lote %s: %w", t.NroBultoAnterior, origen.Codigo, domain.ErrBultoNoEncontrado)
				}
				entity.RestituirTraza(t, b, hacia)
				t.Estado = entity.TrazaVendida
			} else {
				t.Activo = false
			}
			rv.c.traza(t)
		}
		b.Activo = false
		rv.c.bulto(b)
	}
	l.Activo = false

	if m.Motivo == entity.MotivoRetiroMercado {
		return rv.revertirRecallDependiente(ctx, m, mc)
	}
	return nil
}

// revertirRecallDependiente solo actúa cuando el retiro tiene exactamente un movimiento dependiente vigente.
func (rv *reversor) revertirRecallDependiente(ctx context.Context, alta *entity.Movimiento, mc ContextoMovimiento) error {
	deps, err := rv.r.Movimientos.ListByOrigen(ctx, alta.Codigo)
	if err != nil {
		return err
	}
	if len(deps) != 1 {
		return nil
	}
	dep := deps[0]
	if dep.Tipo != entity.TipoModificacion || dep.Motivo != entity.MotivoRecall {
		return domain.ErrTipoMovimientoInvalido
	}
	origen, err := rv.lote(ctx, dep.LoteCodigo)
	if err != nil {
		return err
	}
	if x := origen.MovimientoPorCodigo(dep.Codigo); x != nil {
		dep = x
	}
	_, err = rv.reversar(ctx, origen, dep, mc.siguiente(), false)
	return err
}

// revertirBaja repone lo descontado y devuelve las trazas a DISPONIBLE.
func (rv *reversor) revertirBaja(l *entity.Lote, m *entity.Movimiento) error {
	devolucion := m.Motivo == entity.MotivoDevolucionCompra
	if !devolucion && l.Estado.EsTerminal() {
		return domain.ErrLoteTerminal
	}
	for _, d := range m.Detalles {
		b := l.BultoPorNro(d.NroBulto)
		if b == nil {
			return fmt.Errorf("bulto %d: %w", d.NroBulto, domain.ErrBultoNoEncontrado)
		}
		if err := reponer(l, b, d); err != nil {
			return err
		}
		for _, nro := range d.NrosTraza {
			t := b.TrazaPorNro(nro)
			if t == nil {
				return fmt.Errorf("traza %d: %w", nro, domain.ErrTrazaNoEncontrada)
			}
			t.Estado = entity.TrazaDisponible
			rv.c.traza(t)
		}
		if devolucion {
			b.Estado = inventory.DerivarEstado(b.CantidadActual, b.CantidadInicial)
		} else {
			inventory.RecalcularBulto(b)
		}
		rv.c.bulto(b)
	}
	if devolucion {
		l.Estado = inventory.DerivarEstado(l.CantidadActual, l.CantidadInicial)
	} else {
		inventory.RecalcularLote(l)
	}
	rv.reabrirAnalisis(l, m)
	return nil
}

func (rv *reversor) revertirModificacion(l *entity.Lote, m *entity.Movimiento) error {
	switch m.Motivo {
	case entity.MotivoAnalisis:
		a := l.AnalisisPorNro(m.NroAnalisis)
		if a == nil {
			return domain.ErrAnalisisNoEncontrado
		}
		if !a.EnCurso() {
			return domain.ErrAnalisisDictaminado
		}
		if cambiadoDespues(l, m) {
			return domain.ErrCambioPosterior
		}
		a.Activo = false
		rv.c.analisisModificado(a)
	case entity.MotivoResultadoAnalisis:
		if cambiadoDespues(l, m) {
			return domain.ErrCambioPosterior
		}
		a := l.AnalisisPorNro(m.NroAnalisis)
		if a == nil {
			return domain.ErrAnalisisNoEncontrado
		}
		if a.MovimientoCodigo == m.Codigo {
			a.Activo = false
		} else {
			if l.AnalisisEnCurso() != nil {
				return domain.ErrAnalisisEnCurso
			}
			a.Dictamen = nil
			a.FechaRealizado = nil
			a.FechaReanalisis = nil
			a.FechaVencimiento = nil
			a.Titulo = nil
		}
		rv.c.analisisModificado(a)
	case entity.MotivoRecall:
		if cambiadoDespues(l, m) || l.Estado != entity.EstadoRecall {
			return domain.ErrCambioPosterior
		}
		rv.revertirRecall(l, m)
	default:
		return domain.ErrTipoMovimientoInvalido
	}
	l.Dictamen = m.DictamenInicial
	return nil
}

// cambiadoDespues indica si otro movimiento posterior a m fijó el dictamen del lote.
// Vencimientos y expiraciones de análisis son definitivos aunque no cambien el dictamen.
func cambiadoDespues(l *entity.Lote, m *entity.Movimiento) bool {
	if l.Dictamen != m.DictamenFinal {
		return true
	}
	posterior := false
	for _, x := range l.Movimientos {
		if x.Codigo == m.Codigo {
			posterior = true
			continue
		}
		if posterior && x.Activo && (x.Motivo == entity.MotivoVencimiento || x.Motivo == entity.MotivoExpiracionAnalisis) {
			return true
		}
	}
	return false
}

// revertirRecall re-deriva los estados: el recall nunca tocó cantidades.
func (rv *reversor) revertirRecall(l *entity.Lote, m *entity.Movimiento) {
	for _, d := range m.Detalles {
		b := l.BultoPorNro(d.NroBulto)
		if b == nil {
			continue
		}
		if b.Estado == entity.EstadoRecall {
			b.Estado = inventory.DerivarEstado(b.CantidadActual, b.CantidadInicial)
			rv.c.bulto(b)
		}
		for _, nro := range d.NrosTraza {
			if t := b.TrazaPorNro(nro); t != nil && t.Estado == entity.TrazaRecall {
				t.Estado = entity.TrazaDisponible
				rv.c.traza(t)
			}
		}
	}
	l.Estado = inventory.DerivarEstado(l.CantidadActual, l.CantidadInicial)
	rv.reabrirAnalisis(l, m)
}

// reabrirAnalisis deshace la cancelación automática registrada en el movimiento.
func (rv *reversor) reabrirAnalisis(l *entity.Lote, m *entity.Movimiento) {
	if m.AnalisisCancelado == "" || l.AnalisisEnCurso() != nil {
		return
	}
	if a := l.AnalisisPorNro(m.AnalisisCancelado); a != nil {
		a.Reabrir()
		rv.c.analisisModificado(a)
	}
}
