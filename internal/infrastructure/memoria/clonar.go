package memoria

import "github.com/jhoicas/Trazabilidad-api/internal/domain/entity"

// filaLote copia los campos propios del lote, sin colecciones.
func filaLote(l *entity.Lote) *entity.Lote {
	c := *l
	c.Bultos, c.Movimientos, c.Analisis = nil, nil, nil
	if l.FechaVencimientoProveedor != nil {
		f := *l.FechaVencimientoProveedor
		c.FechaVencimientoProveedor = &f
	}
	return &c
}

func filaBulto(b *entity.Bulto) *entity.Bulto {
	c := *b
	c.Trazas = nil
	return &c
}

func clonarTraza(t *entity.Traza) *entity.Traza {
	c := *t
	return &c
}

func clonarAnalisis(a *entity.Analisis) *entity.Analisis {
	c := *a
	if a.Dictamen != nil {
		d := *a.Dictamen
		c.Dictamen = &d
	}
	if a.FechaRealizado != nil {
		f := *a.FechaRealizado
		c.FechaRealizado = &f
	}
	if a.FechaReanalisis != nil {
		f := *a.FechaReanalisis
		c.FechaReanalisis = &f
	}
	if a.FechaVencimiento != nil {
		f := *a.FechaVencimiento
		c.FechaVencimiento = &f
	}
	if a.Titulo != nil {
		t := *a.Titulo
		c.Titulo = &t
	}
	return &c
}

func clonarMovimiento(m *entity.Movimiento) *entity.Movimiento {
	c := *m
	c.Detalles = make([]*entity.DetalleMovimiento, 0, len(m.Detalles))
	for _, d := range m.Detalles {
		dc := *d
		dc.NrosTraza = append([]int64(nil), d.NrosTraza...)
		c.Detalles = append(c.Detalles, &dc)
	}
	return &c
}
