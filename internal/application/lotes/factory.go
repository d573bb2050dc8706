package lotes

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ContextoMovimiento datos que no vienen del DTO: código asignado, usuario y hora de registro.
type ContextoMovimiento struct {
	Codigo    string
	UsuarioID string
	Ahora     time.Time
}

func nuevoContexto(usuarioID string, ahora time.Time) ContextoMovimiento {
	return ContextoMovimiento{Codigo: nuevoCodigoMovimiento(ahora), UsuarioID: usuarioID, Ahora: ahora}
}

// siguiente devuelve un contexto con código nuevo para un segundo movimiento de la misma operación.
func (c ContextoMovimiento) siguiente() ContextoMovimiento {
	c.Codigo = nuevoCodigoMovimiento(c.Ahora)
	return c
}

func base(tipo entity.TipoMovimiento, motivo entity.MotivoMovimiento, fecha time.Time, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	return &entity.Movimiento{
		Codigo:          c.Codigo,
		Tipo:            tipo,
		Motivo:          motivo,
		Fecha:           fecha,
		CreadoEn:        c.Ahora,
		Cantidad:        decimal.Zero,
		Unidad:          l.Unidad,
		LoteCodigo:      l.Codigo,
		DictamenInicial: l.Dictamen,
		DictamenFinal:   l.Dictamen,
		UsuarioID:       c.UsuarioID,
		Activo:          true,
	}
}

// MovimientoIngreso construye el ALTA de un lote nuevo (compra o producción) con una línea por bulto.
func MovimientoIngreso(in dto.IngresoRequest, motivo entity.MotivoMovimiento, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoAlta, motivo, in.FechaIngreso, l, c)
	m.Cantidad = l.CantidadInicial
	m.DictamenInicial = ""
	m.Observaciones = in.Observaciones
	for _, b := range l.Bultos {
		m.AgregarDetalle(detalleBulto(b, b.CantidadInicial))
	}
	return m
}

// MovimientoDevolucion construye el ALTA del lote derivado de una devolución o retiro de mercado.
func MovimientoDevolucion(in dto.DevolucionRequest, motivo entity.MotivoMovimiento, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoAlta, motivo, in.FechaIngreso, l, c)
	m.Cantidad = l.CantidadInicial
	m.DictamenInicial = ""
	m.MovimientoOrigenCodigo = in.MovimientoVentaCodigo
	m.Observaciones = in.Observaciones
	for _, b := range l.Bultos {
		m.AgregarDetalle(detalleBulto(b, b.CantidadInicial))
	}
	return m
}

// MovimientoBaja construye la cabecera de una BAJA; las líneas las agrega el caso de uso al descontar.
func MovimientoBaja(in dto.BajaRequest, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoBaja, entity.MotivoMovimiento(in.Motivo), in.Fecha, l, c)
	m.NroAnalisis = in.NroAnalisis
	m.Observaciones = in.Observaciones
	if in.OrdenProduccion != "" {
		m.Observaciones = joinObs("OP "+in.OrdenProduccion, in.Observaciones)
	}
	return m
}

// MovimientoAnalisis construye la MODIFICACION de ingreso a análisis (dictamen -> CUARENTENA).
func MovimientoAnalisis(in dto.AnalisisRequest, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoModificacion, entity.MotivoAnalisis, in.Fecha, l, c)
	m.NroAnalisis = in.NroAnalisis
	m.DictamenFinal = entity.DictamenCuarentena
	m.Observaciones = in.Observaciones
	return m
}

// MovimientoResultado construye la MODIFICACION con el dictamen de un análisis.
func MovimientoResultado(in dto.ResultadoAnalisisRequest, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoModificacion, entity.MotivoResultadoAnalisis, in.Fecha, l, c)
	m.NroAnalisis = in.NroAnalisis
	m.DictamenFinal = entity.Dictamen(in.Dictamen)
	m.Observaciones = in.Observaciones
	return m
}

// MovimientoRecall construye la MODIFICACION de retiro de mercado sobre el lote.
func MovimientoRecall(fecha time.Time, observaciones string, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoModificacion, entity.MotivoRecall, fecha, l, c)
	m.Cantidad = l.CantidadActual
	m.DictamenFinal = entity.DictamenRecall
	m.Observaciones = observaciones
	return m
}

// MovimientoExpiracionAnalisis construye la MODIFICACION irreversible por fecha de reanálisis cumplida.
func MovimientoExpiracionAnalisis(hoy time.Time, a *entity.Analisis, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoModificacion, entity.MotivoExpiracionAnalisis, hoy, l, c)
	m.Cantidad = l.CantidadActual
	m.DictamenFinal = entity.DictamenAnalisisExpirado
	if a != nil {
		m.NroAnalisis = a.NroAnalisis
	}
	return m
}

// MovimientoVencimiento construye la MODIFICACION irreversible por vencimiento del producto.
func MovimientoVencimiento(hoy time.Time, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoModificacion, entity.MotivoVencimiento, hoy, l, c)
	m.Cantidad = l.CantidadActual
	m.DictamenFinal = entity.DictamenVencido
	return m
}

// MovimientoReverso construye el registro de auditoría de un reverso, ligado al original.
func MovimientoReverso(original *entity.Movimiento, observaciones string, l *entity.Lote, c ContextoMovimiento) *entity.Movimiento {
	m := base(entity.TipoModificacion, entity.MotivoReverso, c.Ahora, l, c)
	m.Cantidad = original.Cantidad
	m.Unidad = original.Unidad
	m.MovimientoOrigenCodigo = original.Codigo
	m.NroAnalisis = original.NroAnalisis
	m.Observaciones = observaciones
	for _, d := range original.Detalles {
		m.AgregarDetalle(&entity.DetalleMovimiento{
			NroBulto:  d.NroBulto,
			Cantidad:  d.Cantidad,
			Unidad:    d.Unidad,
			NrosTraza: append([]int64(nil), d.NrosTraza...),
		})
	}
	return m
}

func detalleBulto(b *entity.Bulto, cantidad decimal.Decimal) *entity.DetalleMovimiento {
	d := &entity.DetalleMovimiento{NroBulto: b.Nro, Cantidad: cantidad, Unidad: b.Unidad}
	for _, t := range b.Trazas {
		d.NrosTraza = append(d.NrosTraza, t.NroTraza)
	}
	return d
}

func joinObs(a, b string) string {
	if b == "" {
		return a
	}
	return a + " | " + b
}
