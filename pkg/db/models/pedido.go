package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/enums"
)

// Pedido is the order aggregate root.
type Pedido struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CodigoSeguimiento string             `gorm:"column:codigo_seguimiento;not null;uniqueIndex"`
	UsuarioID         uuid.UUID          `gorm:"column:usuario_id;type:uuid;not null;index"`
	Usuario           *Usuario           `gorm:"foreignKey:UsuarioID"`
	Estado            enums.EstadoPedido `gorm:"column:estado;not null;default:recibido"`

	FechaPedido          time.Time  `gorm:"column:fecha_pedido;autoCreateTime"`
	FechaEntregaEstimada *time.Time `gorm:"column:fecha_entrega_estimada"`
	FechaEntregaReal     *time.Time `gorm:"column:fecha_entrega_real"`

	DireccionEntrega   string     `gorm:"column:direccion_entrega;not null"`
	MunicipioEntregaID *uuid.UUID `gorm:"column:municipio_entrega_id;type:uuid"`
	MunicipioEntrega   *Municipio `gorm:"foreignKey:MunicipioEntregaID"`
	ReferenciaEntrega  *string    `gorm:"column:referencia_entrega"`
	CentroPoblado      *string    `gorm:"column:centro_poblado"`
	DireccionCompuesta string     `gorm:"column:direccion_compuesta"`

	NombreContacto   *string `gorm:"column:nombre_contacto"`
	TelefonoContacto *string `gorm:"column:telefono_contacto"`
	NombresCliente   *string `gorm:"column:nombres_cliente"`
	ApellidosCliente *string `gorm:"column:apellidos_cliente"`

	NitFacturacion       *string `gorm:"column:nit_facturacion"`
	NombreFacturacion    *string `gorm:"column:nombre_facturacion"`
	DireccionFacturacion *string `gorm:"column:direccion_facturacion"`

	TipoPago        enums.TipoPago   `gorm:"column:tipo_pago;not null;default:efectivo"`
	ComentarioPago  *string          `gorm:"column:comentario_pago"`
	NumeroDeposito  *string          `gorm:"column:numero_deposito"`
	FechaDeposito   *time.Time       `gorm:"column:fecha_deposito"`
	MontoDeposito   *decimal.Decimal `gorm:"column:monto_deposito;type:numeric(10,2)"`
	ComprobantePago *string          `gorm:"column:comprobante_pago"`

	PendienteViaje bool       `gorm:"column:pendiente_viaje;not null;default:false"`
	FechaViaje     *time.Time `gorm:"column:fecha_viaje"`
	LinkPendientes *string    `gorm:"column:link_pendientes"`

	VendedorID          *uuid.UUID `gorm:"column:vendedor_id;type:uuid"`
	Vendedor            *Usuario   `gorm:"foreignKey:VendedorID"`
	TecnicoEncargadoID  *uuid.UUID `gorm:"column:tecnico_encargado_id;type:uuid"`
	TecnicoEncargado    *Usuario   `gorm:"foreignKey:TecnicoEncargadoID"`
	OrdenCerrada        bool       `gorm:"column:orden_cerrada;not null;default:false"`
	ComentariosInternos *string    `gorm:"column:comentarios_internos"`

	Total     decimal.Decimal `gorm:"column:total;type:numeric(10,2);not null;default:0"`
	Descuento decimal.Decimal `gorm:"column:descuento;type:numeric(10,2);not null;default:0"`

	Observaciones         *string           `gorm:"column:observaciones"`
	ObservacionesInternas *string           `gorm:"column:observaciones_internas"`
	CanalOrigen           enums.CanalOrigen `gorm:"column:canal_origen;not null;default:web"`

	Calificacion           *int    `gorm:"column:calificacion"`
	ComentarioCalificacion *string `gorm:"column:comentario_calificacion"`

	Activo bool `gorm:"column:activo;not null;default:true"`

	Detalles  []DetallePedido         `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE"`
	Historial []HistorialEstadoPedido `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Pedido) TableName() string { return "pedidos" }

// DetallePedido is a single order line priced at capture time.
type DetallePedido struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PedidoID       uuid.UUID       `gorm:"column:pedido_id;type:uuid;not null;index"`
	PilonID        uuid.UUID       `gorm:"column:pilon_id;type:uuid;not null"`
	Pilon          *CatalogoPilon  `gorm:"foreignKey:PilonID"`
	Cantidad       int             `gorm:"column:cantidad;not null"`
	PrecioUnitario decimal.Decimal `gorm:"column:precio_unitario;type:numeric(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
}

func (DetallePedido) TableName() string { return "detalles_pedido" }

// HistorialEstadoPedido is the append-only order state trail.
type HistorialEstadoPedido struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PedidoID        uuid.UUID           `gorm:"column:pedido_id;type:uuid;not null;index"`
	EstadoAnterior  *enums.EstadoPedido `gorm:"column:estado_anterior"`
	EstadoNuevo     enums.EstadoPedido  `gorm:"column:estado_nuevo;not null"`
	FechaCambio     time.Time           `gorm:"column:fecha_cambio;autoCreateTime"`
	UsuarioCambioID *uuid.UUID          `gorm:"column:usuario_cambio_id;type:uuid"`
	UsuarioCambio   *Usuario            `gorm:"foreignKey:UsuarioCambioID"`
	Comentario      string              `gorm:"column:comentario"`
}

func (HistorialEstadoPedido) TableName() string { return "historial_estados_pedido" }
