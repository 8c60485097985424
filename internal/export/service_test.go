package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/agriconecta/backend/internal/dashboard"
)

type fakeTablero struct {
	resumen dashboard.Resumen
	stats   dashboard.EstadisticasResponse
}

func (f *fakeTablero) Resumen(ctx context.Context) (*dashboard.Resumen, error) {
	resumen := f.resumen
	return &resumen, nil
}

func (f *fakeTablero) Estadisticas(ctx context.Context, req dashboard.EstadisticasRequest) (*dashboard.EstadisticasResponse, error) {
	stats := f.stats
	return &stats, nil
}

func TestExportarGeneraLibroConTresHojas(t *testing.T) {
	tab := &fakeTablero{
		resumen: dashboard.Resumen{
			PedidosTotales:    40,
			PedidosPendientes: 12,
			PedidosEntregados: 25,
			Usuarios:          30,
			UsuariosActivos:   18,
			PlantasEnStock:    5400,
			RutasPendientes:   3,
			IngresosMes:       decimal.NewFromFloat(1250.75),
		},
		stats: dashboard.EstadisticasResponse{
			Rango: dashboard.RangoUltimos7Dias,
			Serie: []dashboard.PuntoSerie{
				{Fecha: "2025-06-13", Cantidad: 2, Total: decimal.NewFromInt(80)},
				{Fecha: "2025-06-14", Cantidad: 1, Total: decimal.NewFromInt(50)},
			},
			TopProductos: []dashboard.TopProducto{
				{PilonID: uuid.New(), Variedad: "Tomate Rio Grande", Cantidad: 120},
				{PilonID: uuid.New(), Variedad: "Chile Pimiento", Cantidad: 75},
			},
			StockBajo: []dashboard.ItemStockBajo{
				{PilonID: uuid.New(), Variedad: "Cebolla Blanca", Stock: 5, StockMinimo: 10, Porcentaje: decimal.NewFromInt(50)},
			},
			Hoy:    dashboard.ConteoPeriodo{Cantidad: 1, Total: decimal.NewFromInt(50)},
			Semana: dashboard.ConteoPeriodo{Cantidad: 3, Total: decimal.NewFromInt(130)},
			Mes:    dashboard.ConteoPeriodo{Cantidad: 3, Total: decimal.NewFromInt(130)},
		},
	}
	svc, err := NewService(ServiceParams{
		Tablero: tab,
		Now:     func() time.Time { return time.Date(2025, 6, 14, 16, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	archivo, err := svc.Exportar(context.Background(), dashboard.EstadisticasRequest{})
	if err != nil {
		t.Fatalf("Exportar: %v", err)
	}
	if archivo.Nombre != "dashboard_agriconecta_20250614_160000.xlsx" {
		t.Fatalf("unexpected file name %q", archivo.Nombre)
	}

	f, err := excelize.OpenReader(bytes.NewReader(archivo.Contenido))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	defer f.Close()

	hojas := f.GetSheetList()
	esperadas := []string{"Resumen", "Top Productos", "Stock Bajo"}
	if len(hojas) != len(esperadas) {
		t.Fatalf("expected sheets %v, got %v", esperadas, hojas)
	}
	for i, nombre := range esperadas {
		if hojas[i] != nombre {
			t.Fatalf("expected sheet %q at position %d, got %v", nombre, i, hojas)
		}
	}

	celda := func(hoja, ref string) string {
		t.Helper()
		valor, err := f.GetCellValue(hoja, ref)
		if err != nil {
			t.Fatalf("read %s!%s: %v", hoja, ref, err)
		}
		return valor
	}
	if got := celda("Resumen", "B3"); got != "40" {
		t.Fatalf("expected 40 total orders, got %q", got)
	}
	if got := celda("Resumen", "B10"); got != "1250.75" {
		t.Fatalf("expected month revenue 1250.75, got %q", got)
	}
	if got := celda("Resumen", "B11"); got != "3" {
		t.Fatalf("expected 3 window orders, got %q", got)
	}
	if got := celda("Top Productos", "A2"); got != "Tomate Rio Grande" {
		t.Fatalf("expected top product, got %q", got)
	}
	if got := celda("Top Productos", "B3"); got != "75" {
		t.Fatalf("expected second quantity, got %q", got)
	}
	if got := celda("Stock Bajo", "D2"); got != "50" {
		t.Fatalf("expected 50 percent, got %q", got)
	}
}

func TestExportarRequiereTablero(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected constructor error without dashboard service")
	}
}
