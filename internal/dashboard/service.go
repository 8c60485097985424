package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

const (
	topProductosLimit = 5
	stockBajoLimit    = 10
)

// Service defines the analytics operations behind the dashboard endpoints.
type Service interface {
	Resumen(ctx context.Context) (*Resumen, error)
	Estadisticas(ctx context.Context, req EstadisticasRequest) (*EstadisticasResponse, error)
	Metricas(ctx context.Context, actor Actor) (*Metricas, error)
}

type service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build a dashboard service.
type ServiceParams struct {
	Repo     Repository
	TimeZone string
	Now      func() time.Time
}

// NewService constructs a dashboard service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("dashboard repository is required")
	}
	loc, err := time.LoadLocation(params.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", params.TimeZone, err)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, loc: loc, now: now}, nil
}

func (s *service) Resumen(ctx context.Context) (*Resumen, error) {
	total, pendientes, entregados, err := s.repo.TotalesPedidos(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "totales de pedidos")
	}

	ahora := s.now()
	usuarios, activos, err := s.repo.TotalesUsuarios(ctx, ahora.AddDate(0, 0, -30))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "totales de usuarios")
	}
	plantas, err := s.repo.PlantasEnStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "plantas en stock")
	}
	rutas, err := s.repo.RutasPendientes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rutas pendientes")
	}

	mes, err := ResolverRango(RangoMesActual, ahora, s.loc, nil, nil)
	if err != nil {
		return nil, err
	}
	ingresos, err := s.repo.IngresosEntregadosEntre(ctx, mes.Desde, mes.Hasta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ingresos del mes")
	}

	return &Resumen{
		PedidosTotales:    total,
		PedidosPendientes: pendientes,
		PedidosEntregados: entregados,
		Usuarios:          usuarios,
		UsuariosActivos:   activos,
		PlantasEnStock:    plantas,
		RutasPendientes:   rutas,
		IngresosMes:       ingresos,
	}, nil
}

func (s *service) Estadisticas(ctx context.Context, req EstadisticasRequest) (*EstadisticasResponse, error) {
	ahora := s.now()

	fechaInicio, err := s.parseFecha(req.FechaInicio, "fecha_inicio")
	if err != nil {
		return nil, err
	}
	fechaFin, err := s.parseFecha(req.FechaFin, "fecha_fin")
	if err != nil {
		return nil, err
	}

	ventana, err := ResolverRango(req.Rango, ahora, s.loc, fechaInicio, fechaFin)
	if err != nil {
		return nil, err
	}

	serie, err := s.serie(ctx, ventana)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProductos(ctx, ventana.Desde, ventana.Hasta, topProductosLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top productos")
	}
	stockBajo, err := s.stockBajo(ctx)
	if err != nil {
		return nil, err
	}
	porEstado, err := s.repo.PedidosPorEstado(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pedidos por estado")
	}

	// The fixed rollups always describe today, this week, and this month in
	// the reporting zone, independent of the requested window.
	hoy := truncarDia(ahora.In(s.loc), s.loc)
	conteoHoy, err := s.repo.ConteoPedidosEntre(ctx, hoy, hoy.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "conteo de hoy")
	}
	semana, err := s.repo.ConteoPedidosEntre(ctx, inicioSemana(hoy), hoy.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "conteo de la semana")
	}
	inicioMes := time.Date(hoy.Year(), hoy.Month(), 1, 0, 0, 0, 0, s.loc)
	mes, err := s.repo.ConteoPedidosEntre(ctx, inicioMes, hoy.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "conteo del mes")
	}

	rango := req.Rango
	if rango == "" {
		rango = RangoUltimos7Dias
	}
	return &EstadisticasResponse{
		Rango:            rango,
		Serie:            serie,
		TopProductos:     top,
		StockBajo:        stockBajo,
		Hoy:              conteoHoy,
		Semana:           semana,
		Mes:              mes,
		PedidosPorEstado: porEstado,
	}, nil
}

func (s *service) Metricas(ctx context.Context, actor Actor) (*Metricas, error) {
	if !actor.EsStaff() {
		total, enProceso, entregados, err := s.repo.ConteoPedidosUsuario(ctx, actor.UsuarioID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "conteo de pedidos del usuario")
		}
		sinLeer, err := s.repo.NotificacionesSinLeer(ctx, actor.UsuarioID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notificaciones sin leer")
		}
		return &Metricas{MisPedidos: &MetricasAgricultor{
			Total:                 total,
			EnProceso:             enProceso,
			Entregados:            entregados,
			NotificacionesSinLeer: sinLeer,
		}}, nil
	}

	hoy := truncarDia(s.now().In(s.loc), s.loc)
	manana := hoy.AddDate(0, 0, 1)

	pedidosHoy, err := s.repo.ConteoPedidosEntre(ctx, hoy, manana)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pedidos de hoy")
	}
	entregasHoy, err := s.repo.CountEntregasEntre(ctx, hoy, manana)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "entregas de hoy")
	}
	rutasActivas, err := s.repo.RutasActivas(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rutas activas")
	}
	stockBajo, err := s.repo.CountStockBajo(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "items con stock bajo")
	}

	return &Metricas{Operacion: &MetricasOperacion{
		PedidosHoy:     pedidosHoy.Cantidad,
		EntregasHoy:    entregasHoy,
		RutasActivas:   rutasActivas,
		StockBajoItems: stockBajo,
	}}, nil
}

// serie buckets window orders by calendar day in the reporting zone, emitting
// a point for every day even when it had no orders.
func (s *service) serie(ctx context.Context, ventana Ventana) ([]PuntoSerie, error) {
	rows, err := s.repo.PedidosVentana(ctx, ventana.Desde, ventana.Hasta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pedidos de la ventana")
	}

	type acumulado struct {
		cantidad int64
		total    decimal.Decimal
	}
	buckets := make(map[string]*acumulado)
	for _, row := range rows {
		dia := row.FechaPedido.In(s.loc).Format("2006-01-02")
		bucket, ok := buckets[dia]
		if !ok {
			bucket = &acumulado{total: decimal.Zero}
			buckets[dia] = bucket
		}
		bucket.cantidad++
		bucket.total = bucket.total.Add(row.Total)
	}

	serie := make([]PuntoSerie, 0, ventana.Dias())
	for dia := ventana.Desde; dia.Before(ventana.Hasta); dia = dia.AddDate(0, 0, 1) {
		clave := dia.Format("2006-01-02")
		punto := PuntoSerie{Fecha: clave, Total: decimal.Zero}
		if bucket, ok := buckets[clave]; ok {
			punto.Cantidad = bucket.cantidad
			punto.Total = bucket.total
		}
		serie = append(serie, punto)
	}
	return serie, nil
}

func (s *service) stockBajo(ctx context.Context) ([]ItemStockBajo, error) {
	rows, err := s.repo.StockBajo(ctx, stockBajoLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stock bajo")
	}
	out := make([]ItemStockBajo, 0, len(rows))
	for i := range rows {
		p := rows[i]
		item := ItemStockBajo{
			PilonID:     p.ID,
			Variedad:    p.NombreVariedad,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
			Porcentaje:  decimal.Zero,
		}
		if p.StockMinimo > 0 {
			item.Porcentaje = decimal.NewFromInt(int64(p.Stock)).
				Div(decimal.NewFromInt(int64(p.StockMinimo))).
				Mul(decimal.NewFromInt(100)).
				Round(1)
		}
		out = append(out, item)
	}
	return out, nil
}

// inicioSemana returns Monday 00:00 of the week containing dia.
func inicioSemana(dia time.Time) time.Time {
	offset := (int(dia.Weekday()) + 6) % 7
	return dia.AddDate(0, 0, -offset)
}

// parseFecha reads a YYYY-MM-DD date in the reporting zone so a custom range
// covers the calendar days the caller named, not their UTC shadow.
func (s *service) parseFecha(raw *string, field string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", *raw, s.loc)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" invalida, formato esperado YYYY-MM-DD")
	}
	return &parsed, nil
}
