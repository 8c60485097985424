package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agriconecta/backend/api/controllers"
	"github.com/agriconecta/backend/api/middleware"
	"github.com/agriconecta/backend/internal/auth"
	"github.com/agriconecta/backend/internal/catalog"
	"github.com/agriconecta/backend/internal/dashboard"
	"github.com/agriconecta/backend/internal/export"
	"github.com/agriconecta/backend/internal/fleet"
	"github.com/agriconecta/backend/internal/locations"
	"github.com/agriconecta/backend/internal/logistics"
	"github.com/agriconecta/backend/internal/notifications"
	"github.com/agriconecta/backend/internal/orders"
	"github.com/agriconecta/backend/internal/users"
	"github.com/agriconecta/backend/pkg/auth/session"
	"github.com/agriconecta/backend/pkg/config"
	"github.com/agriconecta/backend/pkg/enums"
	"github.com/agriconecta/backend/pkg/logger"
	"github.com/agriconecta/backend/pkg/metrics"
)

// Services groups every domain service the router exposes.
type Services struct {
	Auth          auth.Service
	Users         users.Service
	Locations     locations.Service
	Catalog       catalog.Service
	Orders        orders.Service
	Logistics     logistics.Service
	Fleet         fleet.Service
	Notifications notifications.Service
	Dashboard     dashboard.Service
	Export        export.Service
}

// Deps carries the infrastructure the router needs beyond domain services.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(deps Deps, svcs Services) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	authed := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	staffOnly := middleware.RequireRoles(logg,
		enums.RolAdministrador, enums.RolPersonalVivero)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
				r.Post("/cambiar-password", controllers.AuthChangePassword(svcs.Auth, logg))
				r.Get("/perfil", controllers.AuthProfile(svcs.Users, logg))
			})
		})

		// Geographic reference data feeds the registration screens and
		// stays public.
		r.Get("/departamentos", controllers.Departamentos(svcs.Locations, logg))
		r.Get("/municipios", controllers.Municipios(svcs.Locations, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Route("/catalogo", func(r chi.Router) {
				r.Get("/categorias", controllers.CategoriasList(svcs.Catalog, logg))
				r.With(staffOnly).Post("/categorias", controllers.CategoriasCreate(svcs.Catalog, logg))
				r.With(staffOnly).Put("/categorias/{categoriaId}", controllers.CategoriasUpdate(svcs.Catalog, logg))

				r.Get("/pilones", controllers.PilonesList(svcs.Catalog, logg))
				r.Get("/pilones/disponibles", controllers.PilonesDisponibles(svcs.Catalog, logg))
				r.With(staffOnly).Get("/pilones/stock-bajo", controllers.PilonesStockBajo(svcs.Catalog, logg))
				r.With(staffOnly).Post("/pilones", controllers.PilonesCreate(svcs.Catalog, logg))
				r.Get("/pilones/{pilonId}", controllers.PilonesGet(svcs.Catalog, logg))
				r.With(staffOnly).Put("/pilones/{pilonId}", controllers.PilonesUpdate(svcs.Catalog, logg))
				r.With(staffOnly).Delete("/pilones/{pilonId}", controllers.PilonesDeactivate(svcs.Catalog, logg))
			})

			r.Route("/pedidos", func(r chi.Router) {
				r.Post("/", controllers.PedidosCrear(svcs.Orders, logg))
				r.Get("/", controllers.PedidosList(svcs.Orders, logg))
				r.Get("/mis-pedidos", controllers.PedidosMios(svcs.Orders, logg))
				r.Get("/{pedidoId}", controllers.PedidosGet(svcs.Orders, logg))
				r.Put("/{pedidoId}/estado", controllers.PedidosCambiarEstado(svcs.Orders, logg))
				r.Post("/{pedidoId}/cancelar", controllers.PedidosCancelar(svcs.Orders, logg))
				r.Post("/{pedidoId}/calificar", controllers.PedidosCalificar(svcs.Orders, logg))
				r.Delete("/{pedidoId}", controllers.PedidosEliminar(svcs.Orders, logg))
			})

			r.Route("/notificaciones", func(r chi.Router) {
				r.Get("/", controllers.NotificacionesList(svcs.Notifications, logg))
				r.Get("/no-leidas", controllers.NotificacionesNoLeidas(svcs.Notifications, logg))
				r.Post("/{notificacionId}/leida", controllers.NotificacionesMarcarLeida(svcs.Notifications, logg))
				r.Post("/marcar-todas-leidas", controllers.NotificacionesMarcarTodasLeidas(svcs.Notifications, logg))
			})

			r.Get("/metricas", controllers.DashboardMetricas(svcs.Dashboard, logg))

			// Route planning is shared between nursery staff and the
			// field technicians who drive them; narrowing a technician
			// to their own routes happens in the service.
			r.Route("/rutas", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg,
					enums.RolAdministrador, enums.RolPersonalVivero, enums.RolTecnicoCampo))
				r.Post("/", controllers.RutasCrear(svcs.Logistics, logg))
				r.Get("/", controllers.RutasList(svcs.Logistics, logg))
				r.Get("/estadisticas", controllers.RutasEstadisticas(svcs.Logistics, logg))
				r.Get("/{rutaId}", controllers.RutasGet(svcs.Logistics, logg))
				r.Put("/{rutaId}", controllers.RutasActualizar(svcs.Logistics, logg))
				r.Delete("/{rutaId}", controllers.RutasEliminar(svcs.Logistics, logg))
				r.Put("/{rutaId}/paradas/{pedidoId}", controllers.RutasActualizarParada(svcs.Logistics, logg))
				r.Post("/{rutaId}/iniciar", controllers.RutasIniciar(svcs.Logistics, logg))
				r.Post("/{rutaId}/finalizar", controllers.RutasFinalizar(svcs.Logistics, logg))
				r.Post("/{rutaId}/confirmar-entrega", controllers.RutasConfirmarEntrega(svcs.Logistics, logg))
				r.Get("/{rutaId}/validar-capacidad", controllers.RutasValidarCapacidad(svcs.Logistics, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(staffOnly)

				r.Route("/usuarios", func(r chi.Router) {
					r.Get("/", controllers.UsersList(svcs.Users, logg))
					r.Post("/", controllers.UsersCreate(svcs.Users, logg))
					r.Get("/{usuarioId}", controllers.UsersGet(svcs.Users, logg))
					r.Put("/{usuarioId}", controllers.UsersUpdate(svcs.Users, logg))
					r.Delete("/{usuarioId}", controllers.UsersDeactivate(svcs.Users, logg))
					r.Post("/{usuarioId}/asignar-rol", controllers.UsersAsignarRol(svcs.Users, logg))
					r.Get("/{usuarioId}/parcelas", controllers.UsersParcelas(svcs.Users, logg))
					r.Post("/{usuarioId}/parcelas", controllers.UsersCrearParcela(svcs.Users, logg))
				})

				r.Route("/puntos-siembra", func(r chi.Router) {
					r.Get("/", controllers.PuntosSiembraList(svcs.Locations, logg))
					r.Post("/", controllers.PuntosSiembraCreate(svcs.Locations, logg))
					r.Put("/{puntoId}", controllers.PuntosSiembraUpdate(svcs.Locations, logg))
				})
				r.Route("/fincas", func(r chi.Router) {
					r.Get("/", controllers.FincasList(svcs.Locations, logg))
					r.Post("/", controllers.FincasCreate(svcs.Locations, logg))
					r.Put("/{fincaId}", controllers.FincasUpdate(svcs.Locations, logg))
				})

				r.Route("/vehiculos", func(r chi.Router) {
					r.Get("/", controllers.VehiculosList(svcs.Fleet, logg))
					r.Post("/", controllers.VehiculosCreate(svcs.Fleet, logg))
					r.Get("/{vehiculoId}", controllers.VehiculosGet(svcs.Fleet, logg))
					r.Put("/{vehiculoId}", controllers.VehiculosUpdate(svcs.Fleet, logg))
					r.Delete("/{vehiculoId}", controllers.VehiculosDeactivate(svcs.Fleet, logg))
					r.Get("/{vehiculoId}/documentos", controllers.DocumentosList(svcs.Fleet, logg))
					r.Post("/{vehiculoId}/documentos", controllers.DocumentosCreate(svcs.Fleet, logg))
				})
				r.Route("/documentos-vehiculo", func(r chi.Router) {
					r.Put("/{documentoId}", controllers.DocumentosUpdate(svcs.Fleet, logg))
					r.Delete("/{documentoId}", controllers.DocumentosDelete(svcs.Fleet, logg))
				})
				r.Route("/transportistas", func(r chi.Router) {
					r.Get("/", controllers.TransportistasList(svcs.Fleet, logg))
					r.Post("/", controllers.TransportistasCreate(svcs.Fleet, logg))
					r.Put("/{transportistaId}", controllers.TransportistasUpdate(svcs.Fleet, logg))
					r.Delete("/{transportistaId}", controllers.TransportistasDeactivate(svcs.Fleet, logg))
				})

				r.Route("/dashboard", func(r chi.Router) {
					r.Get("/", controllers.DashboardResumen(svcs.Dashboard, logg))
					r.Get("/estadisticas", controllers.DashboardEstadisticas(svcs.Dashboard, logg))
					r.Get("/export", controllers.DashboardExport(svcs.Export, logg))
				})
			})
		})
	})

	return r
}
