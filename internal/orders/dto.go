package orders

import (
	"strings"
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

// EsStaff reports whether the actor can operate on any order.
func (a Actor) EsStaff() bool {
	return a.Roles.ContainsAny(enums.RolAdministrador, enums.RolPersonalVivero)
}

// CrearPedidoRequest captures a new order with its lines.
type CrearPedidoRequest struct {
	UsuarioID string `json:"usuario_id,omitempty"`

	DireccionEntrega   string  `json:"direccion_entrega" validate:"required"`
	MunicipioEntregaID *string `json:"municipio_entrega_id,omitempty" validate:"omitempty,uuid"`
	ReferenciaEntrega  *string `json:"referencia_entrega,omitempty"`
	CentroPoblado      *string `json:"centro_poblado,omitempty"`

	NombreContacto   *string `json:"nombre_contacto,omitempty"`
	TelefonoContacto *string `json:"telefono_contacto,omitempty"`
	NombresCliente   *string `json:"nombres_cliente,omitempty"`
	ApellidosCliente *string `json:"apellidos_cliente,omitempty"`

	NitFacturacion       *string `json:"nit_facturacion,omitempty"`
	NombreFacturacion    *string `json:"nombre_facturacion,omitempty"`
	DireccionFacturacion *string `json:"direccion_facturacion,omitempty"`

	TipoPago       string  `json:"tipo_pago,omitempty"`
	ComentarioPago *string `json:"comentario_pago,omitempty"`
	CanalOrigen    string  `json:"canal_origen,omitempty"`

	FechaEntregaEstimada *time.Time `json:"fecha_entrega_estimada,omitempty"`
	Descuento            string     `json:"descuento,omitempty"`
	Observaciones        *string    `json:"observaciones,omitempty"`

	Detalles []CrearDetalleRequest `json:"detalles" validate:"required,min=1,dive"`
}

// CrearDetalleRequest is one requested order line. PrecioUnitario overrides the
// catalog price when present; quantity must be positive.
type CrearDetalleRequest struct {
	PilonID        string `json:"pilon_id" validate:"required,uuid"`
	Cantidad       int    `json:"cantidad" validate:"required,gt=0"`
	PrecioUnitario string `json:"precio_unitario,omitempty"`
}

// CambiarEstadoRequest moves an order to a new workflow state.
type CambiarEstadoRequest struct {
	Estado     string `json:"estado" validate:"required"`
	Comentario string `json:"comentario,omitempty"`
}

// CancelarRequest cancels an order with an optional reason.
type CancelarRequest struct {
	Motivo string `json:"motivo,omitempty"`
}

// CalificarRequest records the buyer's rating after delivery.
type CalificarRequest struct {
	Calificacion int     `json:"calificacion" validate:"required,gte=1,lte=5"`
	Comentario   *string `json:"comentario,omitempty"`
}

// ListFilter narrows order listings.
type ListFilter struct {
	UsuarioID *uuid.UUID
	Estado    *enums.EstadoPedido
	Search    string
}

// PedidoDTO is the API representation of an order.
type PedidoDTO struct {
	ID                 uuid.UUID       `json:"id"`
	CodigoSeguimiento  string          `json:"codigo_seguimiento"`
	UsuarioID          uuid.UUID       `json:"usuario_id"`
	Cliente            string          `json:"cliente,omitempty"`
	Estado             string          `json:"estado"`
	FechaPedido        time.Time       `json:"fecha_pedido"`
	FechaEntregaEst    *time.Time      `json:"fecha_entrega_estimada,omitempty"`
	FechaEntregaReal   *time.Time      `json:"fecha_entrega_real,omitempty"`
	DireccionEntrega   string          `json:"direccion_entrega"`
	DireccionCompuesta string          `json:"direccion_compuesta"`
	MunicipioEntrega   string          `json:"municipio_entrega,omitempty"`
	TipoPago           string          `json:"tipo_pago"`
	CanalOrigen        string          `json:"canal_origen"`
	Total              decimal.Decimal `json:"total"`
	Descuento          decimal.Decimal `json:"descuento"`
	Calificacion       *int            `json:"calificacion,omitempty"`
	Activo             bool            `json:"activo"`

	Detalles  []DetalleDTO   `json:"detalles,omitempty"`
	Historial []HistorialDTO `json:"historial,omitempty"`
}

// DetalleDTO is one order line.
type DetalleDTO struct {
	ID             uuid.UUID       `json:"id"`
	PilonID        uuid.UUID       `json:"pilon_id"`
	Variedad       string          `json:"variedad,omitempty"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// HistorialDTO is one entry in the order state trail.
type HistorialDTO struct {
	EstadoAnterior *string   `json:"estado_anterior,omitempty"`
	EstadoNuevo    string    `json:"estado_nuevo"`
	FechaCambio    time.Time `json:"fecha_cambio"`
	Comentario     string    `json:"comentario,omitempty"`
}

func pedidoFromModel(p *models.Pedido) PedidoDTO {
	dto := PedidoDTO{
		ID:                 p.ID,
		CodigoSeguimiento:  p.CodigoSeguimiento,
		UsuarioID:          p.UsuarioID,
		Estado:             p.Estado.String(),
		FechaPedido:        p.FechaPedido,
		FechaEntregaEst:    p.FechaEntregaEstimada,
		FechaEntregaReal:   p.FechaEntregaReal,
		DireccionEntrega:   p.DireccionEntrega,
		DireccionCompuesta: p.DireccionCompuesta,
		TipoPago:           p.TipoPago.String(),
		CanalOrigen:        p.CanalOrigen.String(),
		Total:              p.Total,
		Descuento:          p.Descuento,
		Calificacion:       p.Calificacion,
		Activo:             p.Activo,
	}
	if p.Usuario != nil {
		dto.Cliente = p.Usuario.NombreCompleto
	}
	if p.MunicipioEntrega != nil {
		dto.MunicipioEntrega = p.MunicipioEntrega.Nombre
	}
	for i := range p.Detalles {
		d := p.Detalles[i]
		line := DetalleDTO{
			ID:             d.ID,
			PilonID:        d.PilonID,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		}
		if d.Pilon != nil {
			line.Variedad = d.Pilon.NombreVariedad
		}
		dto.Detalles = append(dto.Detalles, line)
	}
	for i := range p.Historial {
		h := p.Historial[i]
		entry := HistorialDTO{
			EstadoNuevo: h.EstadoNuevo.String(),
			FechaCambio: h.FechaCambio,
			Comentario:  h.Comentario,
		}
		if h.EstadoAnterior != nil {
			anterior := h.EstadoAnterior.String()
			entry.EstadoAnterior = &anterior
		}
		dto.Historial = append(dto.Historial, entry)
	}
	return dto
}

// componerDireccion joins the delivery address pieces into the label printed on
// dispatch sheets, in fixed order: direccion, centro poblado, municipio,
// departamento, referencia.
func componerDireccion(direccion string, centroPoblado *string, municipio *models.Municipio, referencia *string) string {
	parts := []string{strings.TrimSpace(direccion)}
	if centroPoblado != nil && strings.TrimSpace(*centroPoblado) != "" {
		parts = append(parts, strings.TrimSpace(*centroPoblado))
	}
	if municipio != nil {
		parts = append(parts, municipio.Nombre)
		if municipio.Departamento != nil {
			parts = append(parts, municipio.Departamento.Nombre)
		}
	}
	if referencia != nil && strings.TrimSpace(*referencia) != "" {
		parts = append(parts, "Ref: "+strings.TrimSpace(*referencia))
	}
	return strings.Join(parts, ", ")
}
