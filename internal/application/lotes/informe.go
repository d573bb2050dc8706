package lotes

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/inventory"
)

// InformeUseCase arma la ficha de trazabilidad de un lote, en JSON o PDF.
type InformeUseCase struct {
	d   Deps
	pdf InformePDFGenerator
}

// NewInformeUseCase construye el caso de uso. pdf puede ser nil si no se exponen informes PDF.
func NewInformeUseCase(d Deps, pdf InformePDFGenerator) *InformeUseCase {
	return &InformeUseCase{d: d.withDefaults(), pdf: pdf}
}

// Informe devuelve la ficha del lote, incluidos los movimientos revertidos.
func (uc *InformeUseCase) Informe(ctx context.Context, codigo string) (*dto.InformeLoteResponse, error) {
	l, err := uc.d.Lotes.GetByCodigo(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrLoteNoEncontrado
	}
	return NewInformeLote(l), nil
}

// InformePDF renderiza la ficha del lote.
func (uc *InformeUseCase) InformePDF(ctx context.Context, codigo string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, domain.ErrNotFound
	}
	inf, err := uc.Informe(ctx, codigo)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerarInformeLote(ctx, inf)
}

// Stock lista los lotes activos con cantidad remanente, ordenados por código.
func (uc *InformeUseCase) Stock(ctx context.Context, page dto.PageRequest) (*dto.StockResponse, error) {
	page.DefaultPage()
	candidatos, err := uc.d.Lotes.ListConStock(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.StockResponse{
		Items: []dto.LoteStockResponse{},
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(candidatos)},
	}
	if page.Offset >= len(candidatos) {
		return out, nil
	}
	fin := min(page.Offset+page.Limit, len(candidatos))
	for _, l := range candidatos[page.Offset:fin] {
		out.Items = append(out.Items, dto.LoteStockResponse{
			Codigo:           l.Codigo,
			ProductoCodigo:   l.ProductoCodigo,
			CantidadActual:   l.CantidadActual,
			Unidad:           string(l.Unidad),
			Estado:           string(l.Estado),
			Dictamen:         string(l.Dictamen),
			FechaVencimiento: inventory.FechaVencimiento(l),
		})
	}
	return out, nil
}

// NewInformeLote mapea el agregado a su ficha.
func NewInformeLote(l *entity.Lote) *dto.InformeLoteResponse {
	out := &dto.InformeLoteResponse{
		Codigo:           l.Codigo,
		ProductoCodigo:   l.ProductoCodigo,
		LoteOrigenCodigo: l.LoteOrigenCodigo,
		CantidadInicial:  l.CantidadInicial,
		CantidadActual:   l.CantidadActual,
		Unidad:           string(l.Unidad),
		Estado:           string(l.Estado),
		Dictamen:         string(l.Dictamen),
		Trazado:          l.Trazado,
		Activo:           l.Activo,
		FechaVencimiento: inventory.FechaVencimiento(l),
		Bultos:           []dto.BultoResponse{},
		Analisis:         []dto.AnalisisResponse{},
		Movimientos:      []dto.MovimientoResponse{},
	}
	for _, b := range l.Bultos {
		if !b.Activo {
			continue
		}
		br := dto.BultoResponse{
			Nro:             b.Nro,
			CantidadInicial: b.CantidadInicial,
			CantidadActual:  b.CantidadActual,
			Unidad:          string(b.Unidad),
			Estado:          string(b.Estado),
		}
		for _, t := range b.Trazas {
			if !t.Activo {
				continue
			}
			if br.TrazasPorEstado == nil {
				br.TrazasPorEstado = make(map[string]int)
			}
			br.TrazasPorEstado[string(t.Estado)]++
		}
		out.Bultos = append(out.Bultos, br)
	}
	for _, a := range l.Analisis {
		ar := dto.AnalisisResponse{
			NroAnalisis:      a.NroAnalisis,
			FechaReanalisis:  a.FechaReanalisis,
			FechaVencimiento: a.FechaVencimiento,
			Titulo:           a.Titulo,
			Activo:           a.Activo,
		}
		if a.Dictamen != nil {
			ar.Dictamen = string(*a.Dictamen)
		}
		out.Analisis = append(out.Analisis, ar)
	}
	for _, m := range l.Movimientos {
		out.Movimientos = append(out.Movimientos, dto.NewMovimientoResponse(m))
	}
	return out
}
