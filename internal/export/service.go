package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agriconecta/backend/internal/dashboard"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	hojaResumen      = "Resumen"
	hojaTopProductos = "Top Productos"
	hojaStockBajo    = "Stock Bajo"
)

// Archivo is a ready-to-download export.
type Archivo struct {
	Nombre    string
	Contenido []byte
}

// Service builds downloadable dashboard workbooks.
type Service interface {
	Exportar(ctx context.Context, req dashboard.EstadisticasRequest) (*Archivo, error)
}

// tablero is the slice of the dashboard service the exporter consumes.
type tablero interface {
	Resumen(ctx context.Context) (*dashboard.Resumen, error)
	Estadisticas(ctx context.Context, req dashboard.EstadisticasRequest) (*dashboard.EstadisticasResponse, error)
}

type service struct {
	tablero tablero
	now     func() time.Time
}

// ServiceParams bundles the dependencies required to build an export service.
type ServiceParams struct {
	Tablero tablero
	Now     func() time.Time
}

// NewService constructs an export service over the dashboard service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tablero == nil {
		return nil, fmt.Errorf("dashboard service is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{tablero: params.Tablero, now: now}, nil
}

// Exportar assembles a three-sheet workbook from the dashboard rollup and the
// statistics of the requested window.
func (s *service) Exportar(ctx context.Context, req dashboard.EstadisticasRequest) (*Archivo, error) {
	resumen, err := s.tablero.Resumen(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.tablero.Estadisticas(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &libro{f: f}
	w.hojaResumen(resumen, stats)
	w.hojaTopProductos(stats.TopProductos)
	w.hojaStockBajo(stats.StockBajo)
	if w.err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, w.err, "generar libro de exportacion")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serializar libro de exportacion")
	}
	nombre := fmt.Sprintf("dashboard_agriconecta_%s.xlsx", s.now().Format("20060102_150405"))
	return &Archivo{Nombre: nombre, Contenido: buf.Bytes()}, nil
}

// libro wraps the workbook with sticky error handling so each sheet builder
// reads as a plain sequence of rows.
type libro struct {
	f   *excelize.File
	err error
}

func (w *libro) hojaResumen(resumen *dashboard.Resumen, stats *dashboard.EstadisticasResponse) {
	w.do(func() error { return w.f.SetSheetName("Sheet1", hojaResumen) })
	w.encabezado(hojaResumen, "A1", "Indicador", "Valor")
	w.fila(hojaResumen, 2, "Rango", string(stats.Rango))
	w.fila(hojaResumen, 3, "Pedidos totales", resumen.PedidosTotales)
	w.fila(hojaResumen, 4, "Pedidos pendientes", resumen.PedidosPendientes)
	w.fila(hojaResumen, 5, "Pedidos entregados", resumen.PedidosEntregados)
	w.fila(hojaResumen, 6, "Usuarios", resumen.Usuarios)
	w.fila(hojaResumen, 7, "Usuarios activos (30 dias)", resumen.UsuariosActivos)
	w.fila(hojaResumen, 8, "Plantas en stock", resumen.PlantasEnStock)
	w.fila(hojaResumen, 9, "Rutas pendientes", resumen.RutasPendientes)
	w.fila(hojaResumen, 10, "Ingresos del mes", resumen.IngresosMes.InexactFloat64())
	w.fila(hojaResumen, 11, "Pedidos en la ventana", cantidadVentana(stats))
	w.fila(hojaResumen, 12, "Pedidos hoy", stats.Hoy.Cantidad)
	w.fila(hojaResumen, 13, "Pedidos esta semana", stats.Semana.Cantidad)
	w.fila(hojaResumen, 14, "Pedidos este mes", stats.Mes.Cantidad)
	w.do(func() error { return w.f.SetColWidth(hojaResumen, "A", "A", 28) })
	w.do(func() error { return w.f.SetColWidth(hojaResumen, "B", "B", 18) })
}

func (w *libro) hojaTopProductos(top []dashboard.TopProducto) {
	w.do(func() error { _, err := w.f.NewSheet(hojaTopProductos); return err })
	w.encabezado(hojaTopProductos, "A1", "Variedad", "Cantidad vendida")
	for i, producto := range top {
		w.fila(hojaTopProductos, i+2, producto.Variedad, producto.Cantidad)
	}
	w.do(func() error { return w.f.SetColWidth(hojaTopProductos, "A", "A", 32) })
}

func (w *libro) hojaStockBajo(items []dashboard.ItemStockBajo) {
	w.do(func() error { _, err := w.f.NewSheet(hojaStockBajo); return err })
	w.encabezado(hojaStockBajo, "A1", "Variedad", "Stock", "Stock minimo", "Porcentaje")
	for i, item := range items {
		w.fila(hojaStockBajo, i+2, item.Variedad, item.Stock, item.StockMinimo, item.Porcentaje.InexactFloat64())
	}
	w.do(func() error { return w.f.SetColWidth(hojaStockBajo, "A", "A", 32) })
}

func (w *libro) encabezado(hoja, celda string, titulos ...interface{}) {
	w.do(func() error { return w.f.SetSheetRow(hoja, celda, &titulos) })
	w.do(func() error {
		estilo, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		fin, err := excelize.CoordinatesToCellName(len(titulos), 1)
		if err != nil {
			return err
		}
		return w.f.SetCellStyle(hoja, celda, fin, estilo)
	})
}

func (w *libro) fila(hoja string, numero int, valores ...interface{}) {
	w.do(func() error {
		celda, err := excelize.CoordinatesToCellName(1, numero)
		if err != nil {
			return err
		}
		return w.f.SetSheetRow(hoja, celda, &valores)
	})
}

func (w *libro) do(fn func() error) {
	if w.err != nil {
		return
	}
	w.err = fn()
}

func cantidadVentana(stats *dashboard.EstadisticasResponse) int64 {
	var total int64
	for _, punto := range stats.Serie {
		total += punto.Cantidad
	}
	return total
}
