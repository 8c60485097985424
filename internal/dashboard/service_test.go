package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

type fakeRepo struct {
	totalPedidos      int64
	pendientes        int64
	entregados        int64
	usuarios          int64
	usuariosActivos   int64
	plantas           int64
	rutasPendientes   int64
	ingresos          decimal.Decimal
	ventana           []PedidoVentana
	top               []TopProducto
	stockBajo         []models.CatalogoPilon
	stockBajoTotal    int64
	porEstado         map[string]int64
	entregas          int64
	rutasActivas      int64
	usuarioTotal      int64
	usuarioEnProceso  int64
	usuarioEntregados int64
	sinLeer           int64
}

func (f *fakeRepo) TotalesPedidos(ctx context.Context) (int64, int64, int64, error) {
	return f.totalPedidos, f.pendientes, f.entregados, nil
}

func (f *fakeRepo) TotalesUsuarios(ctx context.Context, activosDesde time.Time) (int64, int64, error) {
	return f.usuarios, f.usuariosActivos, nil
}

func (f *fakeRepo) PlantasEnStock(ctx context.Context) (int64, error) {
	return f.plantas, nil
}

func (f *fakeRepo) RutasPendientes(ctx context.Context) (int64, error) {
	return f.rutasPendientes, nil
}

func (f *fakeRepo) IngresosEntregadosEntre(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	return f.ingresos, nil
}

func (f *fakeRepo) PedidosVentana(ctx context.Context, desde, hasta time.Time) ([]PedidoVentana, error) {
	var out []PedidoVentana
	for _, row := range f.ventana {
		if !row.FechaPedido.Before(desde) && row.FechaPedido.Before(hasta) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRepo) TopProductos(ctx context.Context, desde, hasta time.Time, limit int) ([]TopProducto, error) {
	return f.top, nil
}

func (f *fakeRepo) StockBajo(ctx context.Context, limit int) ([]models.CatalogoPilon, error) {
	return f.stockBajo, nil
}

func (f *fakeRepo) CountStockBajo(ctx context.Context) (int64, error) {
	return f.stockBajoTotal, nil
}

func (f *fakeRepo) PedidosPorEstado(ctx context.Context) (map[string]int64, error) {
	return f.porEstado, nil
}

func (f *fakeRepo) ConteoPedidosEntre(ctx context.Context, desde, hasta time.Time) (ConteoPeriodo, error) {
	conteo := ConteoPeriodo{Total: decimal.Zero}
	for _, row := range f.ventana {
		if !row.FechaPedido.Before(desde) && row.FechaPedido.Before(hasta) {
			conteo.Cantidad++
			conteo.Total = conteo.Total.Add(row.Total)
		}
	}
	return conteo, nil
}

func (f *fakeRepo) CountEntregasEntre(ctx context.Context, desde, hasta time.Time) (int64, error) {
	return f.entregas, nil
}

func (f *fakeRepo) ConteoPedidosUsuario(ctx context.Context, usuarioID uuid.UUID) (int64, int64, int64, error) {
	return f.usuarioTotal, f.usuarioEnProceso, f.usuarioEntregados, nil
}

func (f *fakeRepo) NotificacionesSinLeer(ctx context.Context, usuarioID uuid.UUID) (int64, error) {
	return f.sinLeer, nil
}

func (f *fakeRepo) RutasActivas(ctx context.Context) (int64, error) {
	return f.rutasActivas, nil
}

// 2025-06-14 16:00 UTC is 10:00 on Saturday June 14 in Guatemala.
var ahoraFija = time.Date(2025, 6, 14, 16, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *fakeRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		TimeZone: "America/Guatemala",
		Now:      func() time.Time { return ahoraFija },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func guatemala(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Guatemala")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func fecha(raw string) *string {
	return &raw
}

func TestResolverRangoVentanas(t *testing.T) {
	loc := guatemala(t)
	dia := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}

	cases := []struct {
		nombre string
		rango  Rango
		desde  time.Time
		hasta  time.Time
	}{
		{"default", "", dia(2025, 6, 8), dia(2025, 6, 15)},
		{"ultimos 7", RangoUltimos7Dias, dia(2025, 6, 8), dia(2025, 6, 15)},
		{"ultimos 30", RangoUltimos30Dias, dia(2025, 5, 16), dia(2025, 6, 15)},
		{"mes actual", RangoMesActual, dia(2025, 6, 1), dia(2025, 6, 15)},
		{"mes anterior", RangoMesAnterior, dia(2025, 5, 1), dia(2025, 6, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			ventana, err := ResolverRango(tc.rango, ahoraFija, loc, nil, nil)
			if err != nil {
				t.Fatalf("ResolverRango: %v", err)
			}
			if !ventana.Desde.Equal(tc.desde) || !ventana.Hasta.Equal(tc.hasta) {
				t.Fatalf("expected [%s, %s), got [%s, %s)", tc.desde, tc.hasta, ventana.Desde, ventana.Hasta)
			}
		})
	}
}

func TestResolverRangoPersonalizado(t *testing.T) {
	loc := guatemala(t)
	inicio := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	fin := time.Date(2025, 6, 10, 0, 0, 0, 0, loc)

	ventana, err := ResolverRango(RangoPersonalizado, ahoraFija, loc, &inicio, &fin)
	if err != nil {
		t.Fatalf("ResolverRango: %v", err)
	}
	if !ventana.Desde.Equal(inicio) {
		t.Fatalf("expected desde %s, got %s", inicio, ventana.Desde)
	}
	if !ventana.Hasta.Equal(fin.AddDate(0, 0, 1)) {
		t.Fatalf("expected hasta inclusive of June 10, got %s", ventana.Hasta)
	}
	if ventana.Dias() != 10 {
		t.Fatalf("expected 10 days, got %d", ventana.Dias())
	}
}

func TestResolverRangoPersonalizadoValidaciones(t *testing.T) {
	loc := guatemala(t)
	inicio := time.Date(2025, 6, 10, 0, 0, 0, 0, loc)
	fin := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)

	_, err := ResolverRango(RangoPersonalizado, ahoraFija, loc, nil, nil)
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = ResolverRango(RangoPersonalizado, ahoraFija, loc, &inicio, &fin)
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = ResolverRango(Rango("trimestre"), ahoraFija, loc, nil, nil)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestEstadisticasSerieRellenaDiasVacios(t *testing.T) {
	cincuenta := decimal.NewFromInt(50)
	treinta := decimal.NewFromInt(30)
	repo := &fakeRepo{
		ventana: []PedidoVentana{
			// 03:00 UTC on June 10 is still June 9 in Guatemala.
			{FechaPedido: time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC), Total: cincuenta, Estado: enums.EstadoPedidoRecibido},
			{FechaPedido: time.Date(2025, 6, 12, 18, 0, 0, 0, time.UTC), Total: treinta, Estado: enums.EstadoPedidoEntregado},
			{FechaPedido: time.Date(2025, 6, 12, 20, 0, 0, 0, time.UTC), Total: treinta, Estado: enums.EstadoPedidoConfirmado},
		},
		porEstado: map[string]int64{"pendiente": 1, "entregado": 1, "confirmado": 1},
	}
	svc := newTestService(t, repo)

	resp, err := svc.Estadisticas(context.Background(), EstadisticasRequest{})
	if err != nil {
		t.Fatalf("Estadisticas: %v", err)
	}
	if resp.Rango != RangoUltimos7Dias {
		t.Fatalf("expected default rango, got %s", resp.Rango)
	}
	if len(resp.Serie) != 7 {
		t.Fatalf("expected 7 points, got %d", len(resp.Serie))
	}
	porDia := make(map[string]PuntoSerie, len(resp.Serie))
	for _, punto := range resp.Serie {
		porDia[punto.Fecha] = punto
	}
	if p := porDia["2025-06-09"]; p.Cantidad != 1 || !p.Total.Equal(cincuenta) {
		t.Fatalf("expected June 9 to hold the cross-midnight order, got %+v", p)
	}
	if p := porDia["2025-06-12"]; p.Cantidad != 2 || !p.Total.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected June 12 to aggregate two orders, got %+v", p)
	}
	if p := porDia["2025-06-11"]; p.Cantidad != 0 || !p.Total.IsZero() {
		t.Fatalf("expected June 11 empty, got %+v", p)
	}
	if resp.PedidosPorEstado["entregado"] != 1 {
		t.Fatalf("expected estado breakdown passthrough, got %v", resp.PedidosPorEstado)
	}
}

func TestEstadisticasStockBajoPorcentaje(t *testing.T) {
	repo := &fakeRepo{
		stockBajo: []models.CatalogoPilon{
			{ID: uuid.New(), NombreVariedad: "Tomate Rio Grande", Stock: 5, StockMinimo: 10},
			{ID: uuid.New(), NombreVariedad: "Chile Pimiento", Stock: 3, StockMinimo: 8},
		},
	}
	svc := newTestService(t, repo)

	resp, err := svc.Estadisticas(context.Background(), EstadisticasRequest{Rango: RangoUltimos7Dias})
	if err != nil {
		t.Fatalf("Estadisticas: %v", err)
	}
	if len(resp.StockBajo) != 2 {
		t.Fatalf("expected 2 low stock items, got %d", len(resp.StockBajo))
	}
	if !resp.StockBajo[0].Porcentaje.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50%%, got %s", resp.StockBajo[0].Porcentaje)
	}
	if !resp.StockBajo[1].Porcentaje.Equal(decimal.NewFromFloat(37.5)) {
		t.Fatalf("expected 37.5%%, got %s", resp.StockBajo[1].Porcentaje)
	}
}

func TestEstadisticasFechaInvalida(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	_, err := svc.Estadisticas(context.Background(), EstadisticasRequest{
		Rango:       RangoPersonalizado,
		FechaInicio: fecha("14/06/2025"),
		FechaFin:    fecha("2025-06-14"),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestMetricasAgricultor(t *testing.T) {
	repo := &fakeRepo{
		usuarioTotal:      8,
		usuarioEnProceso:  2,
		usuarioEntregados: 5,
		sinLeer:           3,
	}
	svc := newTestService(t, repo)
	actor := Actor{UsuarioID: uuid.New(), Roles: enums.NewRolSet(enums.RolAgricultor)}

	metricas, err := svc.Metricas(context.Background(), actor)
	if err != nil {
		t.Fatalf("Metricas: %v", err)
	}
	if metricas.Operacion != nil {
		t.Fatal("expected no operational panel for a farmer")
	}
	mis := metricas.MisPedidos
	if mis == nil {
		t.Fatal("expected personal panel")
	}
	if mis.Total != 8 || mis.EnProceso != 2 || mis.Entregados != 5 || mis.NotificacionesSinLeer != 3 {
		t.Fatalf("unexpected personal metrics: %+v", mis)
	}
}

func TestMetricasStaff(t *testing.T) {
	repo := &fakeRepo{
		ventana: []PedidoVentana{
			{FechaPedido: ahoraFija, Total: decimal.NewFromInt(10), Estado: enums.EstadoPedidoRecibido},
		},
		entregas:       4,
		rutasActivas:   2,
		stockBajoTotal: 6,
	}
	svc := newTestService(t, repo)
	actor := Actor{UsuarioID: uuid.New(), Roles: enums.NewRolSet(enums.RolAdministrador)}

	metricas, err := svc.Metricas(context.Background(), actor)
	if err != nil {
		t.Fatalf("Metricas: %v", err)
	}
	if metricas.MisPedidos != nil {
		t.Fatal("expected no personal panel for staff")
	}
	op := metricas.Operacion
	if op == nil {
		t.Fatal("expected operational panel")
	}
	if op.PedidosHoy != 1 || op.EntregasHoy != 4 || op.RutasActivas != 2 || op.StockBajoItems != 6 {
		t.Fatalf("unexpected operational metrics: %+v", op)
	}
}

func TestResumen(t *testing.T) {
	ingresos := decimal.NewFromFloat(1250.75)
	repo := &fakeRepo{
		totalPedidos:    40,
		pendientes:      12,
		entregados:      25,
		usuarios:        30,
		usuariosActivos: 18,
		plantas:         5400,
		rutasPendientes: 3,
		ingresos:        ingresos,
	}
	svc := newTestService(t, repo)

	resumen, err := svc.Resumen(context.Background())
	if err != nil {
		t.Fatalf("Resumen: %v", err)
	}
	if resumen.PedidosTotales != 40 || resumen.PedidosPendientes != 12 || resumen.PedidosEntregados != 25 {
		t.Fatalf("unexpected order totals: %+v", resumen)
	}
	if resumen.Usuarios != 30 || resumen.UsuariosActivos != 18 {
		t.Fatalf("unexpected user totals: %+v", resumen)
	}
	if resumen.PlantasEnStock != 5400 || resumen.RutasPendientes != 3 {
		t.Fatalf("unexpected inventory totals: %+v", resumen)
	}
	if !resumen.IngresosMes.Equal(ingresos) {
		t.Fatalf("expected ingresos %s, got %s", ingresos, resumen.IngresosMes)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error with code %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}
