package lotes

import (
	"context"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
)

// VencimientoUseCase es el barrido diario de expiración de análisis y vencimiento de producto.
type VencimientoUseCase struct {
	d Deps
}

// NewVencimientoUseCase construye el caso de uso.
func NewVencimientoUseCase(d Deps) *VencimientoUseCase {
	return &VencimientoUseCase{d: d.withDefaults()}
}

// Ejecutar evalúa los lotes con stock a la fecha hoy. Cada lote se procesa en su propia
// transacción; un lote que falla se registra y el barrido sigue con los demás.
func (uc *VencimientoUseCase) Ejecutar(ctx context.Context, hoy time.Time) (*dto.BarridoResponse, error) {
	usuario, err := uc.d.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	candidatos, err := uc.d.Lotes.ListConStock(ctx)
	if err != nil {
		return nil, err
	}
	acciones := inventory.PlanificarVencimientos(hoy, candidatos)
	resp := &dto.BarridoResponse{Evaluados: len(candidatos), Movimientos: []string{}}
	for _, acc := range acciones {
		codigos, err := uc.procesarLote(ctx, acc.Lote.Codigo, hoy, usuario)
		if err != nil {
			uc.d.Log.Lote(acc.Lote.Codigo).Error().Err(err).Msg("barrido de vencimientos: lote no procesado")
			resp.Fallidos = append(resp.Fallidos, acc.Lote.Codigo)
			continue
		}
		resp.Movimientos = append(resp.Movimientos, codigos...)
	}
	uc.d.Log.Info().
		Int("evaluados", resp.Evaluados).
		Int("movimientos", len(resp.Movimientos)).
		Int("fallidos", len(resp.Fallidos)).
		Msg("barrido de vencimientos terminado")
	return resp, nil
}

// procesarLote vuelve a planificar sobre la copia bloqueada del lote; otro proceso pudo haberlo cambiado.
func (uc *VencimientoUseCase) procesarLote(ctx context.Context, codigo string, hoy time.Time, usuario string) ([]string, error) {
	var codigos []string
	err := uc.d.Tx.Run(ctx, func(ctx context.Context, r Repos) error {
		codigos = nil
		l, err := r.Lotes.GetForUpdate(ctx, codigo)
		if err != nil {
			return err
		}
		if l == nil {
			return nil
		}
		plan := inventory.PlanificarVencimientos(hoy, []*entity.Lote{l})
		if len(plan) == 0 {
			return nil
		}
		mc := nuevoContexto(usuario, uc.d.Clock.Now())
		c := &cambios{}
		if plan[0].ExpirarAnalisis {
			mov := expirarAnalisis(l, hoy, mc)
			c.movimiento(mov)
			codigos = append(codigos, mov.Codigo)
			mc = mc.siguiente()
		}
		if plan[0].Vencer {
			mov := vencer(l, hoy, mc, c)
			c.movimiento(mov)
			codigos = append(codigos, mov.Codigo)
		}
		l.UpdatedAt = mc.Ahora
		c.lote(l)
		return c.persistir(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return codigos, nil
}

func expirarAnalisis(l *entity.Lote, hoy time.Time, mc ContextoMovimiento) *entity.Movimiento {
	mov := MovimientoExpiracionAnalisis(hoy, l.UltimoAnalisisAprobado(), l, mc)
	l.Dictamen = entity.DictamenAnalisisExpirado
	l.AgregarMovimiento(mov)
	return mov
}

// vencer marca VENCIDO el lote y su stock remanente; las trazas ya vendidas no cambian.
func vencer(l *entity.Lote, hoy time.Time, mc ContextoMovimiento, c *cambios) *entity.Movimiento {
	mov := MovimientoVencimiento(hoy, l, mc)
	for _, b := range l.Bultos {
		if !b.Activo || !b.TieneStock() {
			continue
		}
		d := &entity.DetalleMovimiento{NroBulto: b.Nro, Cantidad: b.CantidadActual, Unidad: b.Unidad}
		for _, t := range b.Trazas {
			if t.Disponible() {
				t.Estado = entity.TrazaVencida
				d.NrosTraza = append(d.NrosTraza, t.NroTraza)
				c.traza(t)
			}
		}
		b.Estado = entity.EstadoVencido
		mov.AgregarDetalle(d)
		c.bulto(b)
	}
	l.Estado = entity.EstadoVencido
	l.Dictamen = entity.DictamenVencido
	cancelarAnalisisEnCurso(l, mov, c)
	l.AgregarMovimiento(mov)
	return mov
}
