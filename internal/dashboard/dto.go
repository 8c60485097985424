package dashboard

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/enums"
)

// Actor identifies the authenticated caller for metric scoping.
type Actor struct {
	UsuarioID uuid.UUID
	Roles     enums.RolSet
}

// EsStaff reports whether the actor sees operational counters instead of
// personal ones.
func (a Actor) EsStaff() bool {
	return a.Roles.ContainsAny(enums.RolAdministrador, enums.RolPersonalVivero)
}

// Resumen is the global dashboard rollup.
type Resumen struct {
	PedidosTotales    int64           `json:"pedidos_totales"`
	PedidosPendientes int64           `json:"pedidos_pendientes"`
	PedidosEntregados int64           `json:"pedidos_entregados"`
	Usuarios          int64           `json:"usuarios"`
	UsuariosActivos   int64           `json:"usuarios_activos_30d"`
	PlantasEnStock    int64           `json:"plantas_en_stock"`
	RutasPendientes   int64           `json:"rutas_pendientes"`
	IngresosMes       decimal.Decimal `json:"ingresos_mes"`
}

// EstadisticasRequest selects the reporting window.
type EstadisticasRequest struct {
	Rango       Rango
	FechaInicio *string
	FechaFin    *string
}

// PuntoSerie is one calendar day in the per-day order series.
type PuntoSerie struct {
	Fecha    string          `json:"fecha"`
	Cantidad int64           `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

// TopProducto is one row of the best-sellers ranking.
type TopProducto struct {
	PilonID  uuid.UUID `json:"pilon_id"`
	Variedad string    `json:"variedad"`
	Cantidad int64     `json:"cantidad"`
}

// ItemStockBajo is one low-stock variety ranked by how deep under the
// minimum it sits.
type ItemStockBajo struct {
	PilonID     uuid.UUID       `json:"pilon_id"`
	Variedad    string          `json:"variedad"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stock_minimo"`
	Porcentaje  decimal.Decimal `json:"porcentaje"`
}

// ConteoPeriodo is the orders rollup for a fixed period.
type ConteoPeriodo struct {
	Cantidad int64           `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

// EstadisticasResponse is the full statistics payload for a window.
type EstadisticasResponse struct {
	Rango            Rango            `json:"rango"`
	Serie            []PuntoSerie     `json:"serie"`
	TopProductos     []TopProducto    `json:"top_productos"`
	StockBajo        []ItemStockBajo  `json:"stock_bajo"`
	Hoy              ConteoPeriodo    `json:"hoy"`
	Semana           ConteoPeriodo    `json:"semana"`
	Mes              ConteoPeriodo    `json:"mes"`
	PedidosPorEstado map[string]int64 `json:"pedidos_por_estado"`
}

// Metricas is the role-dependent quick panel.
type Metricas struct {
	// Personal metrics, set for non-staff callers.
	MisPedidos *MetricasAgricultor `json:"mis_pedidos,omitempty"`
	// Operational counters, set for staff callers.
	Operacion *MetricasOperacion `json:"operacion,omitempty"`
}

// MetricasAgricultor summarizes the caller's own orders.
type MetricasAgricultor struct {
	Total                 int64 `json:"total"`
	EnProceso             int64 `json:"en_proceso"`
	Entregados            int64 `json:"entregados"`
	NotificacionesSinLeer int64 `json:"notificaciones_sin_leer"`
}

// MetricasOperacion summarizes today's nursery operation.
type MetricasOperacion struct {
	PedidosHoy     int64 `json:"pedidos_hoy"`
	EntregasHoy    int64 `json:"entregas_hoy"`
	RutasActivas   int64 `json:"rutas_activas"`
	StockBajoItems int64 `json:"stock_bajo_items"`
}
