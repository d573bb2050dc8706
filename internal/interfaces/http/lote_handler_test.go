package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/identidad"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lotes"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memoria"
	apphttp "github.com/jhoicas/Trazabilidad-api/internal/interfaces/http"
)

var hoyTest = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type relojFijo time.Time

func (r relojFijo) Now() time.Time { return time.Time(r) }

type pdfFalso struct{}

func (pdfFalso) GenerarInformeLote(_ context.Context, inf *dto.InformeLoteResponse) ([]byte, error) {
	return []byte("%PDF-" + inf.Codigo), nil
}

// buildLotesApp arma la API completa sobre el almacén en memoria.
func buildLotesApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memoria.NewStore(
		&entity.Producto{Codigo: "API-001", Nombre: "Paracetamol", Tipo: entity.TipoAPI, UnidadMedida: entity.UnidadKilogramo},
	)
	r := store.Repos()
	d := lotes.Deps{
		Tx:          store,
		Lotes:       r.Lotes,
		Movimientos: r.Movimientos,
		Productos:   store.Productos(),
		Identity:    identidad.Contexto{},
		Clock:       relojFijo(hoyTest),
	}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Lotes: apphttp.NewLoteHandler(
			lotes.NewAltaUseCase(d),
			lotes.NewBajaUseCase(d),
			lotes.NewModificacionUseCase(d),
			lotes.NewReversoUseCase(d),
			nil,
		),
		Informes: apphttp.NewInformeHandler(
			lotes.NewInformeUseCase(d, pdfFalso{}),
			lotes.NewVencimientoUseCase(d),
			relojFijo(hoyTest),
			nil,
		),
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func ingresoCompra() fiber.Map {
	return fiber.Map{
		"producto_codigo": "API-001",
		"proveedor":       "Droguería Central",
		"fecha_ingreso":   hoyTest.AddDate(0, 0, -1),
		"cantidad":        "10",
		"unidad":          "KILOGRAMO",
		"bultos": []fiber.Map{
			{"cantidad": "6", "unidad": "KILOGRAMO"},
			{"cantidad": "4000", "unidad": "GRAMO"},
		},
	}
}

func ingresar(t *testing.T, app *fiber.App) dto.MovimientoResponse {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/lotes/ingresos/compra", apphttp.RolDeposito, ingresoCompra())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var mov dto.MovimientoResponse
	require.NoError(t, json.Unmarshal(body, &mov))
	return mov
}

func TestIngresoCompra_FirmaConUsuarioDelToken(t *testing.T) {
	app := buildLotesApp(t)
	mov := ingresar(t, app)

	assert.Equal(t, "ALTA", mov.Tipo)
	assert.Equal(t, "COMPRA", mov.Motivo)
	assert.Equal(t, testUserID, mov.UsuarioID)
	assert.NotEmpty(t, mov.LoteCodigo)
	assert.Len(t, mov.Detalles, 2)
}

func TestIngresoCompra_SumaDeBultosNoCoincide(t *testing.T) {
	app := buildLotesApp(t)
	in := ingresoCompra()
	in["cantidad"] = "11"

	resp, body := call(t, app, http.MethodPost, "/api/lotes/ingresos/compra", apphttp.RolDeposito, in)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var verr dto.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(body, &verr))
	assert.Equal(t, "VALIDATION", verr.Code)
	assert.Contains(t, verr.Errors, "cantidad")
}

func TestIngresoCompra_CuerpoInvalido(t *testing.T) {
	app := buildLotesApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/lotes/ingresos/compra", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RolAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBaja_LoteInexistente_Retorna404(t *testing.T) {
	app := buildLotesApp(t)
	resp, body := call(t, app, http.MethodPost, "/api/lotes/L-NO-EXISTE/bajas", apphttp.RolDeposito, fiber.Map{
		"motivo":   "AJUSTE",
		"fecha":    hoyTest,
		"detalles": []fiber.Map{{"nro_bulto": 1, "cantidad": "1", "unidad": "KILOGRAMO"}},
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "lote no encontrado", e.Message)
}

func TestBaja_VentaSinAprobar_Retorna400(t *testing.T) {
	app := buildLotesApp(t)
	mov := ingresar(t, app)

	resp, body := call(t, app, http.MethodPost, "/api/lotes/"+mov.LoteCodigo+"/bajas", apphttp.RolDeposito, fiber.Map{
		"motivo":   "VENTA",
		"fecha":    hoyTest,
		"detalles": []fiber.Map{{"nro_bulto": 1, "cantidad": "1", "unidad": "KILOGRAMO"}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var verr dto.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(body, &verr))
	assert.Equal(t, "el lote no está aprobado", verr.Errors["motivo"])
}

func TestBaja_AjusteDescuentaStock(t *testing.T) {
	app := buildLotesApp(t)
	mov := ingresar(t, app)

	resp, body := call(t, app, http.MethodPost, "/api/lotes/"+mov.LoteCodigo+"/bajas", apphttp.RolDeposito, fiber.Map{
		"motivo":   "AJUSTE",
		"fecha":    hoyTest,
		"detalles": []fiber.Map{{"nro_bulto": 2, "cantidad": "500", "unidad": "GRAMO"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, app, http.MethodGet, "/api/lotes/"+mov.LoteCodigo, apphttp.RolCalidad, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inf dto.InformeLoteResponse
	require.NoError(t, json.Unmarshal(body, &inf))
	assert.Equal(t, "9.5", inf.CantidadActual.String())
	assert.Equal(t, "EN_USO", inf.Estado)
	assert.Len(t, inf.Movimientos, 2)
}

func TestRecall_DepositoSinPermiso(t *testing.T) {
	app := buildLotesApp(t)
	mov := ingresar(t, app)

	resp, _ := call(t, app, http.MethodPost, "/api/lotes/"+mov.LoteCodigo+"/recall", apphttp.RolDeposito, fiber.Map{
		"fecha": hoyTest,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRecall_SegundaVezSinCambios(t *testing.T) {
	app := buildLotesApp(t)
	mov := ingresar(t, app)
	path := "/api/lotes/" + mov.LoteCodigo + "/recall"

	resp, body := call(t, app, http.MethodPost, path, apphttp.RolCalidad, fiber.Map{"fecha": hoyTest})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = call(t, app, http.MethodPost, path, apphttp.RolCalidad, fiber.Map{"fecha": hoyTest})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReverso_DobleReversoRetorna409(t *testing.T) {
	app := buildLotesApp(t)
	mov := ingresar(t, app)
	path := "/api/movimientos/" + mov.Codigo + "/reverso"

	resp, body := call(t, app, http.MethodPost, path, apphttp.RolCalidad, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var rev dto.MovimientoResponse
	require.NoError(t, json.Unmarshal(body, &rev))
	assert.Equal(t, "REVERSO", rev.Motivo)
	assert.Equal(t, mov.Codigo, rev.MovimientoOrigenCodigo)

	resp, body = call(t, app, http.MethodPost, path, apphttp.RolCalidad, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "ILLEGAL_STATE", e.Code)
}

func TestReverso_MovimientoInexistente(t *testing.T) {
	app := buildLotesApp(t)
	resp, _ := call(t, app, http.MethodPost, "/api/movimientos/M-NADA/reverso", apphttp.RolAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInformePDF(t *testing.T) {
	app := buildLotesApp(t)
	mov := ingresar(t, app)

	resp, body := call(t, app, http.MethodGet, "/api/lotes/"+mov.LoteCodigo+"/informe.pdf", apphttp.RolDeposito, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "%PDF-"+mov.LoteCodigo, string(body))
}

func TestVencimientos(t *testing.T) {
	app := buildLotesApp(t)
	ingresar(t, app)

	resp, _ := call(t, app, http.MethodPost, "/api/lotes/vencimientos?fecha=10-03-2026", apphttp.RolAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/lotes/vencimientos", apphttp.RolCalidad, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/lotes/vencimientos?fecha=2026-03-10", apphttp.RolAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var barrido dto.BarridoResponse
	require.NoError(t, json.Unmarshal(body, &barrido))
	assert.Equal(t, 1, barrido.Evaluados)
	assert.Empty(t, barrido.Movimientos)
	assert.Empty(t, barrido.Fallidos)
}

func TestStock_Paginado(t *testing.T) {
	app := buildLotesApp(t)
	a := ingresar(t, app)
	b := ingresar(t, app)

	resp, body := call(t, app, http.MethodGet, "/api/lotes?limit=1", apphttp.RolCalidad, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var page dto.StockResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 2, page.Page.Total)
	require.Len(t, page.Items, 1)
	assert.Contains(t, []string{a.LoteCodigo, b.LoteCodigo}, page.Items[0].Codigo)
	assert.Equal(t, "10", page.Items[0].CantidadActual.String())

	resp, body = call(t, app, http.MethodGet, "/api/lotes?limit=500", apphttp.RolCalidad, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
}
