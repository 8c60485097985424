package logistics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
)

// Actor identifies the authenticated caller for authorization decisions.
type Actor struct {
	UsuarioID uuid.UUID
	Roles     enums.RolSet
}

// EsStaff reports whether the actor can manage any route.
func (a Actor) EsStaff() bool {
	return a.Roles.ContainsAny(enums.RolAdministrador, enums.RolPersonalVivero)
}

// SoloTecnico reports whether the actor is a field technician without a
// staff role, whose route listings are scoped to their own assignments.
func (a Actor) SoloTecnico() bool {
	return a.Roles.Contains(enums.RolTecnicoCampo) && !a.EsStaff()
}

// CrearRutaRequest plans a new delivery route. Stops come either from
// paradas (with load estimates) or from the pedidos_ids shorthand.
type CrearRutaRequest struct {
	NombreRuta       string          `json:"nombre_ruta" validate:"required"`
	TecnicoCampoID   string          `json:"tecnico_campo_id" validate:"required,uuid"`
	VehiculoID       *string         `json:"vehiculo_id,omitempty" validate:"omitempty,uuid"`
	TransportistaID  *string         `json:"transportista_id,omitempty" validate:"omitempty,uuid"`
	FechaPlanificada time.Time       `json:"fecha_planificada" validate:"required"`
	DepartamentoID   *string         `json:"departamento_id,omitempty" validate:"omitempty,uuid"`
	Etiqueta         *string         `json:"etiqueta,omitempty"`
	Observaciones    *string         `json:"observaciones,omitempty"`
	Paradas          []ParadaRequest `json:"paradas,omitempty" validate:"omitempty,dive"`
	PedidosIDs       []string        `json:"pedidos_ids,omitempty"`
}

// ParadaRequest assigns one order to a route with its load estimate.
type ParadaRequest struct {
	PedidoID  string          `json:"pedido_id" validate:"required,uuid"`
	Prioridad int             `json:"prioridad,omitempty" validate:"omitempty,gte=0"`
	PesoKg    decimal.Decimal `json:"peso_kg,omitempty"`
	VolumenM3 decimal.Decimal `json:"volumen_m3,omitempty"`
}

// ActualizarParadaRequest adjusts the load estimate and priority of one stop.
type ActualizarParadaRequest struct {
	Prioridad *int             `json:"prioridad,omitempty" validate:"omitempty,gte=0"`
	PesoKg    *decimal.Decimal `json:"peso_kg,omitempty"`
	VolumenM3 *decimal.Decimal `json:"volumen_m3,omitempty"`
}

// ActualizarRutaRequest updates route metadata. Stops are adjusted through
// the per-stop parada endpoint.
type ActualizarRutaRequest struct {
	NombreRuta       string     `json:"nombre_ruta" validate:"required"`
	TecnicoCampoID   string     `json:"tecnico_campo_id" validate:"required,uuid"`
	VehiculoID       *string    `json:"vehiculo_id,omitempty" validate:"omitempty,uuid"`
	TransportistaID  *string    `json:"transportista_id,omitempty" validate:"omitempty,uuid"`
	FechaPlanificada *time.Time `json:"fecha_planificada,omitempty"`
	DepartamentoID   *string    `json:"departamento_id,omitempty" validate:"omitempty,uuid"`
	Estado           *string    `json:"estado,omitempty"`
	Etiqueta         *string    `json:"etiqueta,omitempty"`
	Observaciones    *string    `json:"observaciones,omitempty"`
}

// ConfirmarEntregaRequest records the delivery receipt for one stop.
type ConfirmarEntregaRequest struct {
	PedidoID             string  `json:"pedido_id" validate:"required,uuid"`
	ReceptorNombre       *string `json:"receptor_nombre,omitempty"`
	ReceptorDocumento    *string `json:"receptor_documento,omitempty"`
	FirmaDigital         *string `json:"firma_digital,omitempty"`
	FotoEntrega          *string `json:"foto_entrega,omitempty"`
	ObservacionesEntrega *string `json:"observaciones_entrega,omitempty"`
}

// ListFilter narrows route listings.
type ListFilter struct {
	TecnicoCampoID *uuid.UUID
	Estado         *enums.EstadoRuta
	Fecha          *time.Time
}

// RutaDTO is the API representation of a delivery route.
type RutaDTO struct {
	ID               uuid.UUID       `json:"id"`
	CodigoRuta       string          `json:"codigo_ruta"`
	NombreRuta       string          `json:"nombre_ruta"`
	TecnicoCampoID   uuid.UUID       `json:"tecnico_campo_id"`
	TecnicoCampo     string          `json:"tecnico_campo,omitempty"`
	VehiculoID       *uuid.UUID      `json:"vehiculo_id,omitempty"`
	VehiculoPlaca    string          `json:"vehiculo_placa,omitempty"`
	TransportistaID  *uuid.UUID      `json:"transportista_id,omitempty"`
	FechaPlanificada time.Time       `json:"fecha_planificada"`
	FechaInicio      *time.Time      `json:"fecha_inicio,omitempty"`
	FechaFin         *time.Time      `json:"fecha_fin,omitempty"`
	Estado           string          `json:"estado"`
	Departamento     string          `json:"departamento,omitempty"`
	PesoTotalKg      decimal.Decimal `json:"peso_total_kg"`
	VolumenTotalM3   decimal.Decimal `json:"volumen_total_m3"`
	Etiqueta         *string         `json:"etiqueta,omitempty"`
	Observaciones    *string         `json:"observaciones,omitempty"`
	Paradas          []ParadaDTO     `json:"paradas,omitempty"`
}

// ParadaDTO is one stop on a route.
type ParadaDTO struct {
	ID                uuid.UUID       `json:"id"`
	PedidoID          uuid.UUID       `json:"pedido_id"`
	CodigoSeguimiento string          `json:"codigo_seguimiento,omitempty"`
	Direccion         string          `json:"direccion,omitempty"`
	OrdenEntrega      int             `json:"orden_entrega"`
	Prioridad         int             `json:"prioridad"`
	PesoKg            decimal.Decimal `json:"peso_kg"`
	VolumenM3         decimal.Decimal `json:"volumen_m3"`
	HoraLlegada       *time.Time      `json:"hora_llegada,omitempty"`
	HoraSalida        *time.Time      `json:"hora_salida,omitempty"`
	Entregado         bool            `json:"entregado"`
	ReceptorNombre    *string         `json:"receptor_nombre,omitempty"`
}

// CapacidadResult reports the advisory load check for a route.
type CapacidadResult struct {
	OK         bool              `json:"ok"`
	Excedentes []ExcesoCapacidad `json:"excedentes,omitempty"`
}

// ExcesoCapacidad names one exceeded dimension with its amounts.
type ExcesoCapacidad struct {
	Dimension string          `json:"dimension"`
	Carga     decimal.Decimal `json:"carga"`
	Capacidad decimal.Decimal `json:"capacidad"`
}

// Estadisticas summarizes the logistics board.
type Estadisticas struct {
	RutasActivas        int64 `json:"rutas_activas"`
	PedidosSinAsignar   int64 `json:"pedidos_sin_asignar"`
	EntregasHoy         int64 `json:"entregas_hoy"`
	VehiculosTotales    int64 `json:"vehiculos_totales"`
	VehiculosEnRuta     int64 `json:"vehiculos_en_ruta"`
	VehiculosDisponible int64 `json:"vehiculos_disponibles"`
}

func rutaFromModel(r *models.RutaEntrega) RutaDTO {
	dto := RutaDTO{
		ID:               r.ID,
		CodigoRuta:       r.CodigoRuta,
		NombreRuta:       r.NombreRuta,
		TecnicoCampoID:   r.TecnicoCampoID,
		VehiculoID:       r.VehiculoID,
		TransportistaID:  r.TransportistaID,
		FechaPlanificada: r.FechaPlanificada,
		FechaInicio:      r.FechaInicio,
		FechaFin:         r.FechaFin,
		Estado:           r.Estado.String(),
		PesoTotalKg:      r.PesoTotalKg,
		VolumenTotalM3:   r.VolumenTotalM3,
		Etiqueta:         r.Etiqueta,
		Observaciones:    r.Observaciones,
	}
	if r.TecnicoCampo != nil {
		dto.TecnicoCampo = r.TecnicoCampo.NombreCompleto
	}
	if r.Vehiculo != nil {
		dto.VehiculoPlaca = r.Vehiculo.Placa
	}
	if r.Departamento != nil {
		dto.Departamento = r.Departamento.Nombre
	}
	for i := range r.Paradas {
		dto.Paradas = append(dto.Paradas, paradaFromModel(&r.Paradas[i]))
	}
	return dto
}

func paradaFromModel(p *models.PedidoRuta) ParadaDTO {
	dto := ParadaDTO{
		ID:             p.ID,
		PedidoID:       p.PedidoID,
		OrdenEntrega:   p.OrdenEntrega,
		Prioridad:      p.Prioridad,
		PesoKg:         p.PesoKg,
		VolumenM3:      p.VolumenM3,
		HoraLlegada:    p.HoraLlegada,
		HoraSalida:     p.HoraSalida,
		Entregado:      p.Entregado,
		ReceptorNombre: p.ReceptorNombre,
	}
	if p.Pedido != nil {
		dto.CodigoSeguimiento = p.Pedido.CodigoSeguimiento
		dto.Direccion = p.Pedido.DireccionCompuesta
	}
	return dto
}
