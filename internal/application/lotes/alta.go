package lotes

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/validacion"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// AltaUseCase registra ingresos de lotes: compra, producción propia, devolución de venta y retiro de mercado.
type AltaUseCase struct {
	d Deps
}

// NewAltaUseCase construye el caso de uso.
func NewAltaUseCase(d Deps) *AltaUseCase {
	return &AltaUseCase{d: d.withDefaults()}
}

// ValidarIngreso verifica las reglas de negocio de un ingreso por compra o producción.
func (uc *AltaUseCase) ValidarIngreso(ctx context.Context, in dto.IngresoRequest, motivo entity.MotivoMovimiento) (*validacion.Resultado, error) {
	res := validacion.Nuevo()
	if !validacion.Estructura(res, in) {
		return res, nil
	}
	if motivo == entity.MotivoCompra && in.Proveedor == "" {
		res.Rechazar("proveedor", "campo obligatorio en una compra")
		return res, nil
	}
	producto, err := uc.d.Productos.GetByCodigo(ctx, in.ProductoCodigo)
	if err != nil {
		return nil, err
	}
	if producto == nil {
		res.Rechazar("producto_codigo", "producto inexistente")
		return res, nil
	}
	if !validarCantidades(res, in.Cantidad, entity.Unidad(in.Unidad), in.Bultos) {
		return res, nil
	}
	if !validarTrazadoIngreso(res, in, producto) {
		return res, nil
	}
	validarFechasIngreso(res, in.FechaIngreso, in.FechaVencimiento)
	return res, nil
}

// validarCantidades: total positivo, unidades válidas y suma de bultos igual al total declarado.
func validarCantidades(res *validacion.Resultado, total decimal.Decimal, unidad entity.Unidad, bultos []dto.BultoIngresoDTO) bool {
	if !unidad.Valida() {
		return res.Rechazar("unidad", "unidad de medida desconocida")
	}
	if !total.GreaterThan(decimal.Zero) {
		return res.Rechazar("cantidad", "debe ser mayor que cero")
	}
	suma := decimal.Zero
	for i, b := range bultos {
		campo := fmt.Sprintf("bultos[%d]", i)
		u := entity.Unidad(b.Unidad)
		if !inventory.Compatibles(u, unidad) {
			return res.Rechazar(campo+".unidad", "unidad incompatible con la del lote")
		}
		if !b.Cantidad.GreaterThan(decimal.Zero) {
			return res.Rechazar(campo+".cantidad", "debe ser mayor que cero")
		}
		c, _ := inventory.Convertir(b.Cantidad, u, unidad)
		suma = suma.Add(c)
	}
	if !suma.Equal(total) {
		return res.Rechazar("cantidad", "la suma de los bultos no coincide con la cantidad total")
	}
	return true
}

func validarTrazadoIngreso(res *validacion.Resultado, in dto.IngresoRequest, producto *entity.Producto) bool {
	if !in.Trazado {
		for i, b := range in.Bultos {
			if len(b.NrosTraza) > 0 {
				return res.Rechazar(fmt.Sprintf("bultos[%d].nros_traza", i), "el lote no es trazado")
			}
		}
		return true
	}
	if !producto.AdmiteTrazado() {
		return res.Rechazar("trazado", "solo las unidades de venta admiten trazado")
	}
	return validarTrazasBultos(res, entity.Unidad(in.Unidad), in.Bultos, nil)
}

// validarTrazasBultos: unidad contable, cantidades enteras y un número de traza por unidad, sin repetir.
// Si existe es no nulo, cada número debe satisfacerlo.
func validarTrazasBultos(res *validacion.Resultado, unidad entity.Unidad, bultos []dto.BultoIngresoDTO, existe func(int64) bool) bool {
	if unidad != entity.UnidadUnidad {
		return res.Rechazar("unidad", "un lote trazado se registra en UNIDAD")
	}
	vistas := make(map[int64]bool)
	for i, b := range bultos {
		campo := fmt.Sprintf("bultos[%d]", i)
		if !b.Cantidad.Equal(b.Cantidad.Truncate(0)) {
			return res.Rechazar(campo+".cantidad", "debe ser un número entero")
		}
		if int64(len(b.NrosTraza)) != b.Cantidad.IntPart() {
			return res.Rechazar(campo+".nros_traza", "debe informar una traza por unidad")
		}
		for _, nro := range b.NrosTraza {
			if vistas[nro] {
				return res.Rechazar(campo+".nros_traza", fmt.Sprintf("traza %d repetida", nro))
			}
			vistas[nro] = true
			if existe != nil && !existe(nro) {
				return res.Rechazar(campo+".nros_traza", fmt.Sprintf("la traza %d no está vendida en el lote de origen", nro))
			}
		}
	}
	return true
}

func validarFechasIngreso(res *validacion.Resultado, ingreso time.Time, vencimiento *time.Time) bool {
	if vencimiento != nil && !vencimiento.After(ingreso) {
		return res.Rechazar("fecha_vencimiento", "debe ser posterior a la fecha de ingreso")
	}
	return true
}

// IngresoCompra registra un lote comprado.
func (uc *AltaUseCase) IngresoCompra(ctx context.Context, in dto.IngresoRequest) (*entity.Movimiento, error) {
	return uc.ingresar(ctx, in, entity.MotivoCompra)
}

// IngresoProduccion registra un lote de producción propia.
func (uc *AltaUseCase) IngresoProduccion(ctx context.Context, in dto.IngresoRequest) (*entity.Movimiento, error) {
	return uc.ingresar(ctx, in, entity.MotivoProduccionPropia)
}

func (uc *AltaUseCase) ingresar(ctx context.Context, in dto.IngresoRequest, motivo entity.MotivoMovimiento) (*entity.Movimiento, error) {
	usuario, err := uc.d.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	producto, err := uc.d.Productos.GetByCodigo(ctx, in.ProductoCodigo)
	if err != nil {
		return nil, err
	}
	if producto == nil {
		return nil, domain.ErrProductoNoEncontrado
	}
	ahora := uc.d.Clock.Now()

	lote := &entity.Lote{
		Codigo:                    nuevoCodigoLote(producto.Codigo, in.FechaIngreso),
		ProductoCodigo:            producto.Codigo,
		Proveedor:                 in.Proveedor,
		Fabricante:                in.Fabricante,
		LoteProveedor:             in.LoteProveedor,
		FechaIngreso:              in.FechaIngreso,
		FechaVencimientoProveedor: in.FechaVencimiento,
		CantidadInicial:           in.Cantidad,
		CantidadActual:            in.Cantidad,
		Unidad:                    entity.Unidad(in.Unidad),
		Estado:                    entity.EstadoNuevo,
		Dictamen:                  entity.DictamenRecibido,
		Trazado:                   in.Trazado,
		Activo:                    true,
		CreatedAt:                 ahora,
		UpdatedAt:                 ahora,
	}
	for i, bi := range in.Bultos {
		b := &entity.Bulto{
			Nro:             i + 1,
			CantidadInicial: bi.Cantidad,
			CantidadActual:  bi.Cantidad,
			Unidad:          entity.Unidad(bi.Unidad),
			Estado:          entity.EstadoNuevo,
			Activo:          true,
		}
		for _, nro := range bi.NrosTraza {
			b.Trazas = append(b.Trazas, &entity.Traza{
				NroTraza:       nro,
				ProductoCodigo: producto.Codigo,
				Estado:         entity.TrazaDisponible,
				Activo:         true,
			})
		}
		lote.AgregarBulto(b)
	}

	mov := MovimientoIngreso(in, motivo, lote, nuevoContexto(usuario, ahora))
	lote.AgregarMovimiento(mov)

	c := &cambios{}
	c.lote(lote)
	for _, b := range lote.Bultos {
		c.bulto(b)
	}
	for _, t := range lote.TrazasActivas() {
		c.traza(t)
	}
	c.movimiento(mov)

	if err := uc.d.Tx.Run(ctx, func(ctx context.Context, r Repos) error {
		return c.persistir(ctx, r)
	}); err != nil {
		return nil, err
	}
	uc.d.Log.Lote(lote.Codigo).Info().Str("motivo", string(motivo)).Str("movimiento", mov.Codigo).Msg("ingreso registrado")
	return mov, nil
}

// ValidarDevolucion verifica una devolución de venta o un retiro de mercado contra el lote vendido.
func (uc *AltaUseCase) ValidarDevolucion(ctx context.Context, in dto.DevolucionRequest) (*validacion.Resultado, error) {
	res := validacion.Nuevo()
	if !validacion.Estructura(res, in) {
		return res, nil
	}
	origen, err := uc.d.Lotes.GetActivoByCodigo(ctx, in.LoteOrigenCodigo)
	if err != nil {
		return nil, err
	}
	if origen == nil {
		res.Rechazar("lote_origen_codigo", "lote inexistente")
		return res, nil
	}
	if in.MovimientoVentaCodigo != "" {
		mv, err := uc.d.Movimientos.GetByCodigo(ctx, in.MovimientoVentaCodigo)
		if err != nil {
			return nil, err
		}
		if mv == nil || mv.LoteCodigo != origen.Codigo || mv.Motivo != entity.MotivoVenta || !mv.Activo {
			res.Rechazar("movimiento_venta_codigo", "no es una venta vigente del lote de origen")
			return res, nil
		}
	}
	unidad := entity.Unidad(in.Unidad)
	if !inventory.Compatibles(unidad, origen.Unidad) {
		res.Rechazar("unidad", "unidad incompatible con la del lote de origen")
		return res, nil
	}
	if !validarCantidades(res, in.Cantidad, unidad, in.Bultos) {
		return res, nil
	}
	if origen.Trazado {
		vendida := func(nro int64) bool {
			t := origen.TrazaPorNro(nro)
			return t != nil && t.Estado == entity.TrazaVendida
		}
		validarTrazasBultos(res, unidad, in.Bultos, vendida)
	}
	return res, nil
}

// IngresoDevolucionVenta registra la devolución de un cliente como un lote nuevo derivado del vendido.
func (uc *AltaUseCase) IngresoDevolucionVenta(ctx context.Context, in dto.DevolucionRequest) (*entity.Movimiento, error) {
	return uc.devolver(ctx, in, entity.MotivoDevolucionVenta)
}

// IngresoRetiroMercado registra unidades retiradas del mercado y aplica el recall al lote de origen.
func (uc *AltaUseCase) IngresoRetiroMercado(ctx context.Context, in dto.DevolucionRequest) (*entity.Movimiento, error) {
	return uc.devolver(ctx, in, entity.MotivoRetiroMercado)
}

func (uc *AltaUseCase) devolver(ctx context.Context, in dto.DevolucionRequest, motivo entity.MotivoMovimiento) (*entity.Movimiento, error) {
	usuario, err := uc.d.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	ahora := uc.d.Clock.Now()
	mc := nuevoContexto(usuario, ahora)

	var mov *entity.Movimiento
	var codigoLote string
	err = uc.d.Tx.Run(ctx, func(ctx context.Context, r Repos) error {
		origen, err := r.Lotes.GetForUpdate(ctx, in.LoteOrigenCodigo)
		if err != nil {
			return err
		}
		if origen == nil || !origen.Activo {
			return domain.ErrLoteNoEncontrado
		}
		if in.MovimientoVentaCodigo != "" {
			mv, err := r.Movimientos.GetByCodigo(ctx, in.MovimientoVentaCodigo)
			if err != nil {
				return err
			}
			if mv == nil {
				return domain.ErrMovimientoOrigenNoEncontrado
			}
		}

		lote := loteDerivado(origen, in, motivo, ahora)
		c := &cambios{}
		for i, bi := range in.Bultos {
			b := lote.Bultos[i]
			for _, nro := range bi.NrosTraza {
				t := origen.TrazaPorNro(nro)
				if t == nil || t.Estado != entity.TrazaVendida {
					return fmt.Errorf("traza %d: %w", nro, domain.ErrTrazaNoEncontrada)
				}
				desde := origen.BultoPorNro(t.NroBulto)
				if desde == nil {
					return domain.ErrBultoNoEncontrado
				}
				entity.ReubicarTraza(t, desde, b)
				t.Estado = entity.TrazaDevuelta
				if motivo == entity.MotivoRetiroMercado {
					t.Estado = entity.TrazaRecall
				}
				c.traza(t)
			}
		}

		mov = MovimientoDevolucion(in, motivo, lote, mc)
		lote.AgregarMovimiento(mov)
		c.lote(lote)
		for _, b := range lote.Bultos {
			c.bulto(b)
		}
		c.movimiento(mov)

		if motivo == entity.MotivoRetiroMercado {
			if rec := aplicarRecall(origen, in.FechaIngreso, in.Observaciones, mc.siguiente(), c); rec != nil {
				rec.MovimientoOrigenCodigo = mov.Codigo
				origen.AgregarMovimiento(rec)
				c.movimiento(rec)
			}
		}
		codigoLote = lote.Codigo
		return c.persistir(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	uc.d.Log.Info().Str("lote", codigoLote).Str("lote_origen", in.LoteOrigenCodigo).Str("motivo", string(motivo)).Str("movimiento", mov.Codigo).Msg("devolución registrada")
	return mov, nil
}

// loteDerivado arma el lote de devolución o retiro con los datos del lote de origen.
func loteDerivado(origen *entity.Lote, in dto.DevolucionRequest, motivo entity.MotivoMovimiento, ahora time.Time) *entity.Lote {
	estado, dictamen := entity.EstadoNuevo, entity.DictamenDevolucionClientes
	if motivo == entity.MotivoRetiroMercado {
		estado, dictamen = entity.EstadoRecall, entity.DictamenRecall
	}
	lote := &entity.Lote{
		Codigo:                    nuevoCodigoLote(origen.ProductoCodigo, in.FechaIngreso),
		ProductoCodigo:            origen.ProductoCodigo,
		Proveedor:                 origen.Proveedor,
		Fabricante:                origen.Fabricante,
		LoteProveedor:             origen.LoteProveedor,
		FechaIngreso:              in.FechaIngreso,
		FechaVencimientoProveedor: inventory.FechaVencimiento(origen),
		CantidadInicial:           in.Cantidad,
		CantidadActual:            in.Cantidad,
		Unidad:                    entity.Unidad(in.Unidad),
		Estado:                    estado,
		Dictamen:                  dictamen,
		Trazado:                   origen.Trazado,
		Activo:                    true,
		LoteOrigenCodigo:          origen.Codigo,
		CreatedAt:                 ahora,
		UpdatedAt:                 ahora,
	}
	for i, bi := range in.Bultos {
		lote.AgregarBulto(&entity.Bulto{
			Nro:             i + 1,
			CantidadInicial: bi.Cantidad,
			CantidadActual:  bi.Cantidad,
			Unidad:          entity.Unidad(bi.Unidad),
			Estado:          estado,
			Activo:          true,
		})
	}
	return lote
}
