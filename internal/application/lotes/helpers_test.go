package lotes_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/identidad"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lotes"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memoria"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	usuarioTest  = "00000000-0000-0000-0000-000000000001"
	productoAPI  = "API-001"
	productoVent = "UV-001"
)

var ahora = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type relojFijo time.Time

func (r relojFijo) Now() time.Time { return time.Time(r) }

type entorno struct {
	store *memoria.Store
	deps  lotes.Deps
	alta  *lotes.AltaUseCase
	baja  *lotes.BajaUseCase
	mod   *lotes.ModificacionUseCase
	rev   *lotes.ReversoUseCase
	venc  *lotes.VencimientoUseCase
	inf   *lotes.InformeUseCase
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	store := memoria.NewStore(
		&entity.Producto{Codigo: productoAPI, Nombre: "Paracetamol", Tipo: entity.TipoAPI, UnidadMedida: entity.UnidadKilogramo},
		&entity.Producto{Codigo: productoVent, Nombre: "Paracetamol 500 mg x 20", Tipo: entity.TipoUnidadVenta, UnidadMedida: entity.UnidadUnidad},
	)
	return entornoSobre(store, store)
}

func entornoSobre(store *memoria.Store, tx lotes.TxRunner) *entorno {
	r := store.Repos()
	d := lotes.Deps{
		Tx:          tx,
		Lotes:       r.Lotes,
		Movimientos: r.Movimientos,
		Productos:   store.Productos(),
		Identity:    identidad.Fijo(usuarioTest),
		Clock:       relojFijo(ahora),
	}
	return &entorno{
		store: store,
		deps:  d,
		alta:  lotes.NewAltaUseCase(d),
		baja:  lotes.NewBajaUseCase(d),
		mod:   lotes.NewModificacionUseCase(d),
		rev:   lotes.NewReversoUseCase(d),
		venc:  lotes.NewVencimientoUseCase(d),
		inf:   lotes.NewInformeUseCase(d, nil),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireDec(t *testing.T, esperado string, obtenido decimal.Decimal) {
	t.Helper()
	require.Truef(t, obtenido.Equal(dec(esperado)), "esperado %s, obtenido %s", esperado, obtenido.String())
}

func bulto(cantidad string, unidad entity.Unidad, trazas ...int64) dto.BultoIngresoDTO {
	return dto.BultoIngresoDTO{Cantidad: dec(cantidad), Unidad: string(unidad), NrosTraza: trazas}
}

func (e *entorno) lote(t *testing.T, codigo string) *entity.Lote {
	t.Helper()
	l, err := e.store.Repos().Lotes.GetByCodigo(context.Background(), codigo)
	require.NoError(t, err)
	require.NotNil(t, l, "el lote %s debe existir", codigo)
	return l
}

// ingresar registra una compra validada y devuelve el lote creado.
func (e *entorno) ingresar(t *testing.T, producto, total string, unidad entity.Unidad, bultos ...dto.BultoIngresoDTO) *entity.Lote {
	t.Helper()
	in := dto.IngresoRequest{
		ProductoCodigo: producto,
		Proveedor:      "Droguería Central",
		FechaIngreso:   ahora.AddDate(0, 0, -30),
		Cantidad:       dec(total),
		Unidad:         string(unidad),
		Trazado:        producto == productoVent,
		Bultos:         bultos,
	}
	ctx := context.Background()
	res, err := e.alta.ValidarIngreso(ctx, in, entity.MotivoCompra)
	require.NoError(t, err)
	require.False(t, res.TieneErrores(), "ingreso inválido: %v", res.ErroresCampo)
	mov, err := e.alta.IngresoCompra(ctx, in)
	require.NoError(t, err)
	return e.lote(t, mov.LoteCodigo)
}

// aprobar ingresa el lote a análisis y lo aprueba con vencimiento a un año.
func (e *entorno) aprobar(t *testing.T, codigo, nro string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.mod.IngresarAnalisis(ctx, dto.AnalisisRequest{LoteCodigo: codigo, NroAnalisis: nro, Fecha: ahora})
	require.NoError(t, err)
	venc := ahora.AddDate(1, 0, 0)
	_, err = e.mod.RegistrarResultado(ctx, dto.ResultadoAnalisisRequest{
		LoteCodigo:       codigo,
		NroAnalisis:      nro,
		Dictamen:         string(entity.DictamenAprobado),
		Fecha:            ahora,
		FechaVencimiento: &venc,
	})
	require.NoError(t, err)
}

func detalle(nro int, cantidad string, unidad entity.Unidad) dto.DetalleBajaDTO {
	return dto.DetalleBajaDTO{NroBulto: nro, Cantidad: dec(cantidad), Unidad: string(unidad)}
}

// bajar valida y registra una baja; falla el test si la validación rechaza algo.
func (e *entorno) bajar(t *testing.T, codigo string, motivo entity.MotivoMovimiento, trazas []int64, detalles ...dto.DetalleBajaDTO) *entity.Movimiento {
	t.Helper()
	in := dto.BajaRequest{LoteCodigo: codigo, Motivo: string(motivo), Fecha: ahora, Detalles: detalles, NrosTraza: trazas}
	ctx := context.Background()
	res, err := e.baja.ValidarBaja(ctx, in)
	require.NoError(t, err)
	require.False(t, res.TieneErrores(), "baja inválida: %v", res.ErroresCampo)
	mov, err := e.baja.RegistrarBaja(ctx, in)
	require.NoError(t, err)
	return mov
}

func (e *entorno) reversar(t *testing.T, codigo string) *entity.Movimiento {
	t.Helper()
	rev, err := e.rev.Reversar(context.Background(), dto.ReversoRequest{MovimientoCodigo: codigo})
	require.NoError(t, err)
	return rev
}

func (e *entorno) movimiento(t *testing.T, codigo string) *entity.Movimiento {
	t.Helper()
	m, err := e.store.Repos().Movimientos.GetByCodigo(context.Background(), codigo)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func requireConserva(t *testing.T, l *entity.Lote) {
	t.Helper()
	require.True(t, inventory.Conserva(l), "la suma de los bultos debe coincidir con el lote %s", l.Codigo)
}

func estadosTrazas(l *entity.Lote) map[int64]entity.EstadoTraza {
	out := make(map[int64]entity.EstadoTraza)
	for _, t := range l.TrazasActivas() {
		out[t.NroTraza] = t.Estado
	}
	return out
}

func movimientoPorMotivo(t *testing.T, l *entity.Lote, motivo entity.MotivoMovimiento) *entity.Movimiento {
	t.Helper()
	for _, m := range l.Movimientos {
		if m.Motivo == motivo && m.Activo {
			return m
		}
	}
	require.FailNow(t, "movimiento no encontrado", "lote %s sin movimiento activo %s", l.Codigo, motivo)
	return nil
}
