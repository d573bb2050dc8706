// Package pdf genera la ficha de trazabilidad de un lote con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Código de lote + producto │ Estado + dictamen      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: cantidades / vencimiento / lote de origen            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BULTOS: Nro | Inicial | Actual | Unidad | Estado | Trazas   │
//	│  ANÁLISIS: Nro | Dictamen | Reanálisis | Vencimiento | Título│
//	│  MOVIMIENTOS: Fecha | Tipo/Motivo | Cantidad | Dictamen      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el código de lote                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lotes"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlerta  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ lotes.InformePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa lotes.InformePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	// Autor del documento; vacío usa el nombre por defecto.
	Autor string
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(autor string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{Autor: autor}
}

// GenerarInformeLote genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerarInformeLote(_ context.Context, inf *dto.InformeLoteResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Ficha de trazabilidad "+inf.Codigo, true).
		WithAuthor(nonEmpty(g.Autor, "Trazabilidad"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inf))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(datosRow(inf))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(seccionRow("BULTOS"))
	m.AddRows(bultosHeaderRow())
	m.AddRows(bultosRows(inf.Bultos)...)

	if len(inf.Analisis) > 0 {
		m.AddRows(seccionRow("ANÁLISIS"))
		m.AddRows(analisisHeaderRow())
		m.AddRows(analisisRows(inf.Analisis)...)
	}

	m.AddRows(seccionRow("MOVIMIENTOS"))
	m.AddRows(movimientosHeaderRow())
	m.AddRows(movimientosRows(inf.Movimientos)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(inf))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: código de lote y producto (izq), estado y dictamen (der).
func headerRow(inf *dto.InformeLoteResponse) core.Row {
	estado := inf.Estado
	colorEstado := colorPrimary
	if !inf.Activo {
		estado += " (ANULADO)"
		colorEstado = colorAlerta
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(inf.Codigo, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Producto: "+inf.ProductoCodigo, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FICHA DE TRAZABILIDAD", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(estado, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7, Color: colorEstado,
			}),
			text.New("Dictamen: "+nonEmpty(inf.Dictamen, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// datosRow: cantidades, vencimiento y origen.
func datosRow(inf *dto.InformeLoteResponse) core.Row {
	trazado := "No"
	if inf.Trazado {
		trazado = "Sí"
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DATOS DEL LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Cantidad inicial: %s %s   |   Actual: %s %s   |   Trazado: %s",
				inf.CantidadInicial.String(), inf.Unidad,
				inf.CantidadActual.String(), inf.Unidad,
				trazado,
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
			text.New(fmt.Sprintf("Vencimiento: %s   |   Lote de origen: %s",
				fecha(inf.FechaVencimiento),
				nonEmpty(inf.LoteOrigenCodigo, "-"),
			), props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

func seccionRow(titulo string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(titulo, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 3,
		}),
	))
}

func cabecera(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func celda(valor string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(valor, props.Text{
		Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func bultosHeaderRow() core.Row {
	return row.New(6).Add(
		cabecera("Nro", 1, align.Center),
		cabecera("Inicial", 2, align.Right),
		cabecera("Actual", 2, align.Right),
		cabecera("Unidad", 2, align.Center),
		cabecera("Estado", 2, align.Left),
		cabecera("Trazas", 3, align.Left),
	)
}

func bultosRows(bultos []dto.BultoResponse) []core.Row {
	out := make([]core.Row, 0, len(bultos))
	for _, b := range bultos {
		out = append(out, row.New(6).Add(
			celda(fmt.Sprintf("%d", b.Nro), 1, align.Center),
			celda(b.CantidadInicial.String(), 2, align.Right),
			celda(b.CantidadActual.String(), 2, align.Right),
			celda(b.Unidad, 2, align.Center),
			celda(b.Estado, 2, align.Left),
			celda(resumenTrazas(b.TrazasPorEstado), 3, align.Left),
		))
	}
	return out
}

func analisisHeaderRow() core.Row {
	return row.New(6).Add(
		cabecera("Nro análisis", 3, align.Left),
		cabecera("Dictamen", 3, align.Left),
		cabecera("Reanálisis", 2, align.Center),
		cabecera("Vencimiento", 2, align.Center),
		cabecera("Título %", 2, align.Right),
	)
}

func analisisRows(analisis []dto.AnalisisResponse) []core.Row {
	out := make([]core.Row, 0, len(analisis))
	for _, a := range analisis {
		nro := a.NroAnalisis
		if !a.Activo {
			nro += " (anulado)"
		}
		titulo := "-"
		if a.Titulo != nil {
			titulo = a.Titulo.String()
		}
		out = append(out, row.New(6).Add(
			celda(nro, 3, align.Left),
			celda(nonEmpty(a.Dictamen, "EN CURSO"), 3, align.Left),
			celda(fecha(a.FechaReanalisis), 2, align.Center),
			celda(fecha(a.FechaVencimiento), 2, align.Center),
			celda(titulo, 2, align.Right),
		))
	}
	return out
}

func movimientosHeaderRow() core.Row {
	return row.New(6).Add(
		cabecera("Fecha", 2, align.Center),
		cabecera("Tipo / Motivo", 4, align.Left),
		cabecera("Cantidad", 2, align.Right),
		cabecera("Dictamen", 2, align.Left),
		cabecera("Usuario", 2, align.Left),
	)
}

func movimientosRows(movs []dto.MovimientoResponse) []core.Row {
	out := make([]core.Row, 0, len(movs))
	for _, m := range movs {
		motivo := m.Tipo + " / " + m.Motivo
		if !m.Activo {
			motivo += " (revertido)"
		}
		out = append(out, row.New(6).Add(
			celda(m.Fecha.Format("02/01/2006"), 2, align.Center),
			celda(motivo, 4, align.Left),
			celda(m.Cantidad.String()+" "+m.Unidad, 2, align.Right),
			celda(nonEmpty(m.DictamenFinal, "-"), 2, align.Left),
			celda(m.UsuarioID, 2, align.Left),
		))
	}
	return out
}

// footerRow: QR con el código de lote para escanear en depósito.
func footerRow(inf *dto.InformeLoteResponse) core.Row {
	return row.New(40).Add(
		col.New(4).Add(code.NewQr(inf.Codigo, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Escanee el código QR para identificar el lote.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(inf.Codigo, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 16, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func fecha(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

// resumenTrazas arma "DISPONIBLE: 3, VENDIDO: 2" con los estados en orden alfabético.
func resumenTrazas(porEstado map[string]int) string {
	if len(porEstado) == 0 {
		return "-"
	}
	estados := make([]string, 0, len(porEstado))
	for e := range porEstado {
		estados = append(estados, e)
	}
	sort.Strings(estados)
	partes := make([]string, 0, len(estados))
	for _, e := range estados {
		partes = append(partes, fmt.Sprintf("%s: %d", e, porEstado[e]))
	}
	return strings.Join(partes, ", ")
}
