package lotes

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/validacion"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

var motivosBaja = map[entity.MotivoMovimiento]bool{
	entity.MotivoConsumoProduccion: true,
	entity.MotivoVenta:             true,
	entity.MotivoMuestreo:          true,
	entity.MotivoDevolucionCompra:  true,
	entity.MotivoAjuste:            true,
}

// BajaUseCase registra salidas de stock: consumo, venta, muestreo, devolución a proveedor y ajuste.
type BajaUseCase struct {
	d Deps
}

// NewBajaUseCase construye el caso de uso.
func NewBajaUseCase(d Deps) *BajaUseCase {
	return &BajaUseCase{d: d.withDefaults()}
}

// ValidarBaja verifica el lote, el dictamen requerido por el motivo y cada línea contra el stock del bulto.
// Las violaciones de trazado y un análisis que no coincide se devuelven como error.
func (uc *BajaUseCase) ValidarBaja(ctx context.Context, in dto.BajaRequest) (*validacion.Resultado, error) {
	res := validacion.Nuevo()
	if !validacion.Estructura(res, in) {
		return res, nil
	}
	lote, err := uc.d.Lotes.GetActivoByCodigo(ctx, in.LoteCodigo)
	if err != nil {
		return nil, err
	}
	if lote == nil {
		return nil, domain.ErrLoteNoEncontrado
	}
	motivo := entity.MotivoMovimiento(in.Motivo)
	switch {
	case lote.Estado.EsTerminal():
		res.Rechazar("lote_codigo", "el lote está en estado "+string(lote.Estado))
		return res, nil
	case !lote.TieneStock():
		res.Rechazar("lote_codigo", "el lote no tiene stock")
		return res, nil
	case (motivo == entity.MotivoVenta || motivo == entity.MotivoConsumoProduccion) && lote.Dictamen != entity.DictamenAprobado:
		res.Rechazar("motivo", "el lote no está aprobado")
		return res, nil
	}
	if motivo == entity.MotivoMuestreo {
		if in.NroAnalisis == "" {
			res.Rechazar("nro_analisis", "campo obligatorio en un muestreo")
			return res, nil
		}
		if en := lote.AnalisisEnCurso(); en != nil && en.NroAnalisis != in.NroAnalisis {
			return nil, domain.ErrAnalisisNoCoincide
		}
	}
	if motivo == entity.MotivoDevolucionCompra {
		return res, nil
	}
	if err := validarDetallesBaja(res, lote, in); err != nil {
		return nil, err
	}
	return res, nil
}

func validarDetallesBaja(res *validacion.Resultado, lote *entity.Lote, in dto.BajaRequest) error {
	if lote.Trazado && lineasConCantidad(in.Detalles) > 1 {
		return domain.ErrMultimuestreo
	}
	vistos := make(map[int]bool)
	total := decimal.Zero
	for i, di := range in.Detalles {
		campo := fmt.Sprintf("detalles[%d]", i)
		b := lote.BultoPorNro(di.NroBulto)
		if b == nil {
			res.Rechazar(campo+".nro_bulto", "bulto inexistente en el lote")
			return nil
		}
		if vistos[di.NroBulto] {
			res.Rechazar(campo+".nro_bulto", "bulto repetido")
			return nil
		}
		vistos[di.NroBulto] = true
		unidad := entity.Unidad(di.Unidad)
		if !inventory.Compatibles(unidad, b.Unidad) {
			res.Rechazar(campo+".unidad", "unidad incompatible con la del bulto")
			return nil
		}
		if di.Cantidad.IsNegative() {
			res.Rechazar(campo+".cantidad", "no puede ser negativa")
			return nil
		}
		if di.Cantidad.IsZero() {
			continue
		}
		enBulto, _ := inventory.Convertir(di.Cantidad, unidad, b.Unidad)
		if enBulto.GreaterThan(b.CantidadActual) {
			res.Rechazar(campo+".cantidad", "supera el stock del bulto")
			return nil
		}
		total = total.Add(enBulto)
		if !lote.Trazado {
			continue
		}
		if err := validarCantidadTrazada(di.Cantidad, unidad); err != nil {
			return err
		}
		if int64(len(in.NrosTraza)) != di.Cantidad.IntPart() {
			res.Rechazar("nros_traza", "debe informar una traza por unidad")
			return nil
		}
		for _, nro := range in.NrosTraza {
			if t := b.TrazaPorNro(nro); t == nil || !t.Disponible() {
				res.Rechazar("nros_traza", fmt.Sprintf("la traza %d no está disponible en el bulto %d", nro, b.Nro))
				return nil
			}
		}
	}
	if total.IsZero() {
		res.Rechazar("detalles", "ninguna línea informa cantidad")
	}
	return nil
}

func lineasConCantidad(detalles []dto.DetalleBajaDTO) int {
	n := 0
	for _, d := range detalles {
		if !d.Cantidad.IsZero() {
			n++
		}
	}
	return n
}

// RegistrarBaja descuenta el stock pedido y registra la BAJA.
// Si el lote queda sin stock (o se devuelve al proveedor) se cancela el análisis en curso.
func (uc *BajaUseCase) RegistrarBaja(ctx context.Context, in dto.BajaRequest) (*entity.Movimiento, error) {
	motivo := entity.MotivoMovimiento(in.Motivo)
	if !motivosBaja[motivo] {
		return nil, domain.ErrMotivoInvalido
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
		if motivo == entity.MotivoMuestreo {
			if en := lote.AnalisisEnCurso(); en != nil && en.NroAnalisis != in.NroAnalisis {
				return domain.ErrAnalisisNoCoincide
			}
		}
		mov = MovimientoBaja(in, lote, nuevoContexto(usuario, ahora))
		c := &cambios{}
		if motivo == entity.MotivoDevolucionCompra {
			err = devolverCompra(lote, mov, c)
		} else {
			err = aplicarDetalles(lote, mov, in, motivo, c)
		}
		if err != nil {
			return err
		}
		if !lote.TieneStock() || motivo == entity.MotivoDevolucionCompra {
			cancelarAnalisisEnCurso(lote, mov, c)
		}
		lote.UpdatedAt = ahora
		lote.AgregarMovimiento(mov)
		c.lote(lote)
		c.movimiento(mov)
		return c.persistir(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	uc.d.Log.Info().
		Str("lote", in.LoteCodigo).
		Str("motivo", in.Motivo).
		Str("cantidad", mov.Cantidad.String()).
		Str("movimiento", mov.Codigo).
		Msg("baja registrada")
	return mov, nil
}

// aplicarDetalles descuenta cada línea pedida; las líneas en cero no generan detalle.
func aplicarDetalles(lote *entity.Lote, mov *entity.Movimiento, in dto.BajaRequest, motivo entity.MotivoMovimiento, c *cambios) error {
	if lote.Trazado && lineasConCantidad(in.Detalles) > 1 {
		return domain.ErrMultimuestreo
	}
	total := decimal.Zero
	for _, di := range in.Detalles {
		if di.Cantidad.IsZero() {
			continue
		}
		b := lote.BultoPorNro(di.NroBulto)
		if b == nil {
			return fmt.Errorf("bulto %d: %w", di.NroBulto, domain.ErrBultoNoEncontrado)
		}
		unidad := entity.Unidad(di.Unidad)
		var trazas []*entity.Traza
		if lote.Trazado {
			if err := validarCantidadTrazada(di.Cantidad, unidad); err != nil {
				return err
			}
			var err error
			if trazas, err = seleccionarTrazas(b, in.NrosTraza, di.Cantidad); err != nil {
				return err
			}
		}
		enBulto, enLote, err := descontar(lote, b, di.Cantidad, unidad)
		if err != nil {
			return err
		}
		d := &entity.DetalleMovimiento{NroBulto: b.Nro, Cantidad: enBulto, Unidad: b.Unidad}
		for _, t := range trazas {
			t.Estado = estadoTrazaBaja(motivo)
			d.NrosTraza = append(d.NrosTraza, t.NroTraza)
			c.traza(t)
		}
		mov.AgregarDetalle(d)
		c.bulto(b)
		total = total.Add(enLote)
	}
	if len(mov.Detalles) == 0 {
		return domain.ErrSinCambios
	}
	mov.Cantidad = total
	inventory.RecalcularLote(lote)
	return nil
}

// devolverCompra devuelve al proveedor todo el stock remanente: bultos y lote quedan DEVUELTO.
func devolverCompra(lote *entity.Lote, mov *entity.Movimiento, c *cambios) error {
	total := decimal.Zero
	for _, b := range lote.Bultos {
		if !b.Activo || !b.TieneStock() {
			continue
		}
		enBulto, enLote, err := descontar(lote, b, b.CantidadActual, b.Unidad)
		if err != nil {
			return err
		}
		d := &entity.DetalleMovimiento{NroBulto: b.Nro, Cantidad: enBulto, Unidad: b.Unidad}
		for _, t := range b.Trazas {
			if !t.Disponible() {
				continue
			}
			t.Estado = entity.TrazaDevuelta
			d.NrosTraza = append(d.NrosTraza, t.NroTraza)
			c.traza(t)
		}
		b.Estado = entity.EstadoDevuelto
		mov.AgregarDetalle(d)
		c.bulto(b)
		total = total.Add(enLote)
	}
	if len(mov.Detalles) == 0 {
		return domain.ErrSinCambios
	}
	mov.Cantidad = total
	lote.Estado = entity.EstadoDevuelto
	return nil
}
