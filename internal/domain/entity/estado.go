package entity

// EstadoLote es el estado operativo de un Lote o de un Bulto.
type EstadoLote string

const (
	EstadoNuevo      EstadoLote = "NUEVO"
	EstadoDisponible EstadoLote = "DISPONIBLE"
	EstadoEnUso      EstadoLote = "EN_USO"
	EstadoConsumido  EstadoLote = "CONSUMIDO"
	EstadoDevuelto   EstadoLote = "DEVUELTO"
	EstadoRecall     EstadoLote = "RECALL"
	EstadoVencido    EstadoLote = "VENCIDO"
)

// EsTerminal indica los estados asignados explícitamente que prevalecen sobre el derivado de la cantidad.
func (e EstadoLote) EsTerminal() bool {
	return e == EstadoDevuelto || e == EstadoRecall || e == EstadoVencido
}

// EstadoTraza es el estado de una unidad trazada.
type EstadoTraza string

const (
	TrazaDisponible EstadoTraza = "DISPONIBLE"
	TrazaConsumida  EstadoTraza = "CONSUMIDO"
	TrazaVendida    EstadoTraza = "VENDIDO"
	TrazaDevuelta   EstadoTraza = "DEVUELTO"
	TrazaRecall     EstadoTraza = "RECALL"
	TrazaVencida    EstadoTraza = "VENCIDO"
)

// Dictamen es el veredicto de calidad de un lote o de un análisis.
type Dictamen string

const (
	DictamenRecibido           Dictamen = "RECIBIDO"
	DictamenCuarentena         Dictamen = "CUARENTENA"
	DictamenAprobado           Dictamen = "APROBADO"
	DictamenRechazado          Dictamen = "RECHAZADO"
	DictamenVencido            Dictamen = "VENCIDO"
	DictamenAnalisisExpirado   Dictamen = "ANALISIS_EXPIRADO"
	DictamenCancelado          Dictamen = "CANCELADO"
	DictamenRecall             Dictamen = "RECALL"
	DictamenDevolucionClientes Dictamen = "DEVOLUCION_CLIENTES"
)

// EsResultadoAnalisis indica si el dictamen puede cargarse como resultado de un análisis.
func (d Dictamen) EsResultadoAnalisis() bool {
	return d == DictamenAprobado || d == DictamenRechazado || d == DictamenCuarentena
}

// Ptr devuelve un puntero al dictamen (los análisis en curso tienen dictamen nil).
func (d Dictamen) Ptr() *Dictamen { return &d }
