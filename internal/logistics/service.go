package logistics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/internal/codigos"
	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type codeGenerator interface {
	Next(ctx context.Context, tx *gorm.DB, prefijo string, now time.Time) (string, error)
}

type notifier interface {
	NotificarRutaAsignada(ctx context.Context, tx *gorm.DB, usuarioID, rutaID uuid.UUID, codigo string) error
	NotificarEntrega(ctx context.Context, tx *gorm.DB, usuarioID, pedidoID uuid.UUID, codigo string) error
}

// Service defines the delivery-route workflow operations.
type Service interface {
	Crear(ctx context.Context, actor Actor, req CrearRutaRequest) (*RutaDTO, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req ActualizarRutaRequest) (*RutaDTO, error)
	ActualizarParada(ctx context.Context, actor Actor, rutaID, pedidoID uuid.UUID, req ActualizarParadaRequest) (*RutaDTO, error)
	List(ctx context.Context, actor Actor, filter ListFilter) ([]RutaDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*RutaDTO, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error

	Iniciar(ctx context.Context, actor Actor, id uuid.UUID) (*RutaDTO, error)
	Finalizar(ctx context.Context, actor Actor, id uuid.UUID) (*RutaDTO, error)
	ConfirmarEntrega(ctx context.Context, actor Actor, rutaID uuid.UUID, req ConfirmarEntregaRequest) (*RutaDTO, error)
	ValidarCapacidad(ctx context.Context, actor Actor, id uuid.UUID) (*CapacidadResult, error)
	Estadisticas(ctx context.Context, actor Actor) (*Estadisticas, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	codigos  codeGenerator
	notifier notifier
	log      *logger.Logger
	loc      *time.Location
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a logistics service.
type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Codigos  codeGenerator
	Notifier notifier
	Logger   *logger.Logger
	TimeZone string
	Now      func() time.Time
}

// NewService constructs a logistics service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("logistics repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Codigos == nil {
		return nil, fmt.Errorf("code generator is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	loc, err := time.LoadLocation(params.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", params.TimeZone, err)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.TxRunner,
		codigos:  params.Codigos,
		notifier: params.Notifier,
		log:      params.Logger,
		loc:      loc,
		now:      now,
	}, nil
}

func (s *service) Crear(ctx context.Context, actor Actor, req CrearRutaRequest) (*RutaDTO, error) {
	if !actor.EsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "solo el personal puede crear rutas")
	}
	tecnicoID, err := uuid.Parse(req.TecnicoCampoID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tecnico_campo_id invalido")
	}
	for _, p := range req.Paradas {
		if p.PesoKg.IsNegative() || p.VolumenM3.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "las estimaciones de carga no pueden ser negativas")
		}
	}

	ruta := &models.RutaEntrega{
		NombreRuta:       req.NombreRuta,
		TecnicoCampoID:   tecnicoID,
		FechaPlanificada: req.FechaPlanificada,
		Estado:           enums.EstadoRutaPlanificada,
		Etiqueta:         req.Etiqueta,
		Observaciones:    req.Observaciones,
	}
	if ruta.VehiculoID, err = parseOptionalUUID(req.VehiculoID, "vehiculo_id"); err != nil {
		return nil, err
	}
	if ruta.TransportistaID, err = parseOptionalUUID(req.TransportistaID, "transportista_id"); err != nil {
		return nil, err
	}
	if ruta.DepartamentoID, err = parseOptionalUUID(req.DepartamentoID, "departamento_id"); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		codigo, err := s.codigos.Next(ctx, tx, codigos.PrefijoRuta, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generar codigo de ruta")
		}
		ruta.CodigoRuta = codigo

		// Stops are numbered in request order; ids that do not resolve to an
		// order are skipped rather than failing the whole route.
		orden := 0
		peso := decimal.Zero
		volumen := decimal.Zero
		for _, solicitud := range paradasSolicitadas(req) {
			pedidoID, err := uuid.Parse(solicitud.PedidoID)
			if err != nil {
				continue
			}
			pedido, err := repo.FindPedido(ctx, pedidoID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar pedido para parada")
			}
			orden++
			peso = peso.Add(solicitud.PesoKg)
			volumen = volumen.Add(solicitud.VolumenM3)
			ruta.Paradas = append(ruta.Paradas, models.PedidoRuta{
				PedidoID:     pedido.ID,
				OrdenEntrega: orden,
				Prioridad:    solicitud.Prioridad,
				PesoKg:       solicitud.PesoKg,
				VolumenM3:    solicitud.VolumenM3,
			})
		}
		ruta.PesoTotalKg = peso
		ruta.VolumenTotalM3 = volumen

		if err := repo.CreateRuta(ctx, ruta); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear ruta")
		}
		if err := s.notifier.NotificarRutaAsignada(ctx, tx, ruta.TecnicoCampoID, ruta.ID, ruta.CodigoRuta); err != nil {
			s.warn(ctx, "notificar ruta asignada", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, ruta.ID)
}

func (s *service) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req ActualizarRutaRequest) (*RutaDTO, error) {
	if !actor.EsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "solo el personal puede modificar rutas")
	}
	ruta, err := s.findRuta(ctx, id)
	if err != nil {
		return nil, err
	}

	tecnicoID, err := uuid.Parse(req.TecnicoCampoID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tecnico_campo_id invalido")
	}
	ruta.NombreRuta = req.NombreRuta
	ruta.TecnicoCampoID = tecnicoID
	if ruta.VehiculoID, err = parseOptionalUUID(req.VehiculoID, "vehiculo_id"); err != nil {
		return nil, err
	}
	if ruta.TransportistaID, err = parseOptionalUUID(req.TransportistaID, "transportista_id"); err != nil {
		return nil, err
	}
	if ruta.DepartamentoID, err = parseOptionalUUID(req.DepartamentoID, "departamento_id"); err != nil {
		return nil, err
	}
	if req.FechaPlanificada != nil {
		ruta.FechaPlanificada = *req.FechaPlanificada
	}
	if req.Estado != nil {
		estado, err := enums.ParseEstadoRuta(*req.Estado)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "estado invalido")
		}
		ruta.Estado = estado
	}
	ruta.Etiqueta = req.Etiqueta
	ruta.Observaciones = req.Observaciones

	if err := s.repo.SaveRuta(ctx, ruta); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar ruta")
	}
	return s.Get(ctx, actor, id)
}

// ActualizarParada adjusts one stop's load estimate and priority, then
// recomputes the route totals from all stops in the same transaction.
func (s *service) ActualizarParada(ctx context.Context, actor Actor, rutaID, pedidoID uuid.UUID, req ActualizarParadaRequest) (*RutaDTO, error) {
	if !actor.EsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "solo el personal puede modificar paradas")
	}
	if req.PesoKg != nil && req.PesoKg.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "peso_kg no puede ser negativo")
	}
	if req.VolumenM3 != nil && req.VolumenM3.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "volumen_m3 no puede ser negativo")
	}
	ruta, err := s.findRuta(ctx, rutaID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		parada, err := repo.FindParada(ctx, ruta.ID, pedidoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "el pedido no pertenece a esta ruta")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar parada")
		}
		if req.Prioridad != nil {
			parada.Prioridad = *req.Prioridad
		}
		if req.PesoKg != nil {
			parada.PesoKg = *req.PesoKg
		}
		if req.VolumenM3 != nil {
			parada.VolumenM3 = *req.VolumenM3
		}
		if err := repo.SaveParada(ctx, parada); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "guardar parada")
		}

		peso := decimal.Zero
		volumen := decimal.Zero
		for i := range ruta.Paradas {
			p := &ruta.Paradas[i]
			if p.PedidoID == pedidoID {
				p = parada
			}
			peso = peso.Add(p.PesoKg)
			volumen = volumen.Add(p.VolumenM3)
		}
		ruta.PesoTotalKg = peso
		ruta.VolumenTotalM3 = volumen
		if err := repo.SaveRuta(ctx, ruta); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar totales de ruta")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, rutaID)
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter) ([]RutaDTO, error) {
	if actor.SoloTecnico() {
		filter.TecnicoCampoID = &actor.UsuarioID
	}
	rows, err := s.repo.ListRutas(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar rutas")
	}
	out := make([]RutaDTO, 0, len(rows))
	for i := range rows {
		out = append(out, rutaFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*RutaDTO, error) {
	ruta, err := s.findRuta(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.SoloTecnico() && ruta.TecnicoCampoID != actor.UsuarioID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ruta no encontrada")
	}
	dto := rutaFromModel(ruta)
	return &dto, nil
}

func (s *service) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.EsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "solo el personal puede eliminar rutas")
	}
	if _, err := s.findRuta(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteRuta(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar ruta")
	}
	return nil
}

func (s *service) Iniciar(ctx context.Context, actor Actor, id uuid.UUID) (*RutaDTO, error) {
	ruta, err := s.rutaParaOperar(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ruta.Estado != enums.EstadoRutaPlanificada {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf(
			"la ruta no se puede iniciar desde el estado %s", ruta.Estado,
		))
	}

	inicio := s.now()
	ruta.Estado = enums.EstadoRutaEnProgreso
	ruta.FechaInicio = &inicio
	if err := s.repo.SaveRuta(ctx, ruta); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "iniciar ruta")
	}
	return s.Get(ctx, actor, id)
}

func (s *service) Finalizar(ctx context.Context, actor Actor, id uuid.UUID) (*RutaDTO, error) {
	ruta, err := s.rutaParaOperar(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ruta.Estado != enums.EstadoRutaEnProgreso {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf(
			"la ruta no se puede finalizar desde el estado %s", ruta.Estado,
		))
	}

	fin := s.now()
	ruta.Estado = enums.EstadoRutaCompletada
	ruta.FechaFin = &fin
	if err := s.repo.SaveRuta(ctx, ruta); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalizar ruta")
	}
	return s.Get(ctx, actor, id)
}

// ConfirmarEntrega marks the stop delivered and forces the order to entregado
// in the same transaction. The order's current state is deliberately not
// checked: the receipt on the doorstep wins over whatever the board says.
func (s *service) ConfirmarEntrega(ctx context.Context, actor Actor, rutaID uuid.UUID, req ConfirmarEntregaRequest) (*RutaDTO, error) {
	ruta, err := s.rutaParaOperar(ctx, actor, rutaID)
	if err != nil {
		return nil, err
	}
	pedidoID, err := uuid.Parse(req.PedidoID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pedido_id invalido")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		parada, err := repo.FindParada(ctx, ruta.ID, pedidoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "el pedido no pertenece a esta ruta")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar parada")
		}

		ahora := s.now()
		parada.Entregado = true
		parada.HoraSalida = &ahora
		if parada.HoraLlegada == nil {
			parada.HoraLlegada = &ahora
		}
		parada.ReceptorNombre = req.ReceptorNombre
		parada.ReceptorDocumento = req.ReceptorDocumento
		parada.FirmaDigital = req.FirmaDigital
		parada.FotoEntrega = req.FotoEntrega
		parada.ObservacionesEntrega = req.ObservacionesEntrega
		if err := repo.SaveParada(ctx, parada); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "guardar parada")
		}

		pedido, err := repo.FindPedido(ctx, pedidoID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar pedido")
		}
		anterior := pedido.Estado
		pedido.Estado = enums.EstadoPedidoEntregado
		pedido.FechaEntregaReal = &ahora
		if err := repo.SavePedido(ctx, pedido); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "entregar pedido")
		}
		if err := repo.AddHistorialPedido(ctx, &models.HistorialEstadoPedido{
			PedidoID:        pedido.ID,
			EstadoAnterior:  &anterior,
			EstadoNuevo:     enums.EstadoPedidoEntregado,
			UsuarioCambioID: &actor.UsuarioID,
			Comentario:      fmt.Sprintf("Entrega confirmada en ruta %s", ruta.CodigoRuta),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "registrar historial")
		}

		if err := s.notifier.NotificarEntrega(ctx, tx, pedido.UsuarioID, pedido.ID, pedido.CodigoSeguimiento); err != nil {
			s.warn(ctx, "notificar entrega", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, rutaID)
}

// ValidarCapacidad is advisory: over-capacity routes are reported, never
// rejected.
func (s *service) ValidarCapacidad(ctx context.Context, actor Actor, id uuid.UUID) (*CapacidadResult, error) {
	ruta, err := s.findRuta(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.SoloTecnico() && ruta.TecnicoCampoID != actor.UsuarioID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ruta no encontrada")
	}
	if ruta.VehiculoID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "la ruta no tiene vehiculo asignado")
	}

	vehiculo, err := s.repo.FindVehiculo(ctx, *ruta.VehiculoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehiculo no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar vehiculo")
	}

	peso := decimal.Zero
	volumen := decimal.Zero
	for i := range ruta.Paradas {
		peso = peso.Add(ruta.Paradas[i].PesoKg)
		volumen = volumen.Add(ruta.Paradas[i].VolumenM3)
	}

	result := &CapacidadResult{OK: true}
	if peso.GreaterThan(vehiculo.CapacidadCargaKg) {
		result.OK = false
		result.Excedentes = append(result.Excedentes, ExcesoCapacidad{
			Dimension: "peso",
			Carga:     peso,
			Capacidad: vehiculo.CapacidadCargaKg,
		})
	}
	if vehiculo.CapacidadVolumenM3 != nil && volumen.GreaterThan(*vehiculo.CapacidadVolumenM3) {
		result.OK = false
		result.Excedentes = append(result.Excedentes, ExcesoCapacidad{
			Dimension: "volumen",
			Carga:     volumen,
			Capacidad: *vehiculo.CapacidadVolumenM3,
		})
	}
	return result, nil
}

func (s *service) Estadisticas(ctx context.Context, actor Actor) (*Estadisticas, error) {
	if !actor.EsStaff() && !actor.Roles.Contains(enums.RolTecnicoCampo) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sin acceso a estadisticas de logistica")
	}

	activas, err := s.repo.CountRutasActivas(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar rutas activas")
	}
	sinAsignar, err := s.repo.CountPedidosSinAsignar(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar pedidos sin asignar")
	}

	hoy := s.now().In(s.loc)
	inicio := time.Date(hoy.Year(), hoy.Month(), hoy.Day(), 0, 0, 0, 0, s.loc)
	entregasHoy, err := s.repo.CountEntregasEntre(ctx, inicio, inicio.Add(24*time.Hour))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar entregas de hoy")
	}

	total, enRuta, err := s.repo.CountVehiculos(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar vehiculos")
	}

	return &Estadisticas{
		RutasActivas:        activas,
		PedidosSinAsignar:   sinAsignar,
		EntregasHoy:         entregasHoy,
		VehiculosTotales:    total,
		VehiculosEnRuta:     enRuta,
		VehiculosDisponible: total - enRuta,
	}, nil
}

func (s *service) findRuta(ctx context.Context, id uuid.UUID) (*models.RutaEntrega, error) {
	ruta, err := s.repo.FindRuta(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ruta no encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar ruta")
	}
	return ruta, nil
}

// rutaParaOperar loads a route for a driving operation: staff can operate on
// any route, a field technician only on their own.
func (s *service) rutaParaOperar(ctx context.Context, actor Actor, id uuid.UUID) (*models.RutaEntrega, error) {
	ruta, err := s.findRuta(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.EsStaff() || ruta.TecnicoCampoID == actor.UsuarioID {
		return ruta, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sin acceso a esta ruta")
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.log != nil {
		s.log.Error(ctx, msg, err)
	}
}

// paradasSolicitadas flattens both request shapes into one list: explicit
// paradas first, then pedidos_ids not already covered (with zero estimates).
func paradasSolicitadas(req CrearRutaRequest) []ParadaRequest {
	out := make([]ParadaRequest, 0, len(req.Paradas)+len(req.PedidosIDs))
	vistos := make(map[string]bool, len(req.Paradas))
	for _, p := range req.Paradas {
		out = append(out, p)
		vistos[p.PedidoID] = true
	}
	for _, id := range req.PedidosIDs {
		if vistos[id] {
			continue
		}
		vistos[id] = true
		out = append(out, ParadaRequest{PedidoID: id})
	}
	return out
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" invalido")
	}
	return &parsed, nil
}
