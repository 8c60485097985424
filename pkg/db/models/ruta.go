package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/enums"
)

// RutaEntrega is a planned delivery route with its ordered stops.
type RutaEntrega struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CodigoRuta       string           `gorm:"column:codigo_ruta;not null;uniqueIndex"`
	NombreRuta       string           `gorm:"column:nombre_ruta;not null"`
	TecnicoCampoID   uuid.UUID        `gorm:"column:tecnico_campo_id;type:uuid;not null;index"`
	TecnicoCampo     *Usuario         `gorm:"foreignKey:TecnicoCampoID"`
	VehiculoID       *uuid.UUID       `gorm:"column:vehiculo_id;type:uuid"`
	Vehiculo         *Vehiculo        `gorm:"foreignKey:VehiculoID;constraint:OnDelete:SET NULL"`
	TransportistaID  *uuid.UUID       `gorm:"column:transportista_id;type:uuid"`
	Transportista    *Transportista   `gorm:"foreignKey:TransportistaID"`
	FechaPlanificada time.Time        `gorm:"column:fecha_planificada;not null"`
	FechaInicio      *time.Time       `gorm:"column:fecha_inicio"`
	FechaFin         *time.Time       `gorm:"column:fecha_fin"`
	Estado           enums.EstadoRuta `gorm:"column:estado;not null;default:planificada"`
	DepartamentoID   *uuid.UUID       `gorm:"column:departamento_id;type:uuid"`
	Departamento     *Departamento    `gorm:"foreignKey:DepartamentoID"`
	PesoTotalKg      decimal.Decimal  `gorm:"column:peso_total_kg;type:numeric(10,2);not null;default:0"`
	VolumenTotalM3   decimal.Decimal  `gorm:"column:volumen_total_m3;type:numeric(10,3);not null;default:0"`
	Etiqueta         *string          `gorm:"column:etiqueta"`
	Observaciones    *string          `gorm:"column:observaciones"`
	Paradas          []PedidoRuta     `gorm:"foreignKey:RutaID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (RutaEntrega) TableName() string { return "rutas_entrega" }

// PedidoRuta is one stop on a route. A given order appears at most once per
// route; delivery confirmation flips Entregado and stamps the receipt fields.
type PedidoRuta struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RutaID        uuid.UUID `gorm:"column:ruta_id;type:uuid;not null;uniqueIndex:uq_ruta_pedido"`
	PedidoID      uuid.UUID `gorm:"column:pedido_id;type:uuid;not null;uniqueIndex:uq_ruta_pedido"`
	Pedido        *Pedido   `gorm:"foreignKey:PedidoID"`
	OrdenEntrega  int       `gorm:"column:orden_entrega;not null;default:1"`
	Prioridad     int       `gorm:"column:prioridad;not null;default:0"`
	VentanaInicio *string   `gorm:"column:ventana_inicio"`
	VentanaFin    *string   `gorm:"column:ventana_fin"`

	PesoKg    decimal.Decimal `gorm:"column:peso_kg;type:numeric(10,2);not null;default:0"`
	VolumenM3 decimal.Decimal `gorm:"column:volumen_m3;type:numeric(10,3);not null;default:0"`

	HoraLlegada *time.Time `gorm:"column:hora_llegada"`
	HoraSalida  *time.Time `gorm:"column:hora_salida"`
	Entregado   bool       `gorm:"column:entregado;not null;default:false"`

	ReceptorNombre       *string `gorm:"column:receptor_nombre"`
	ReceptorDocumento    *string `gorm:"column:receptor_documento"`
	FirmaDigital         *string `gorm:"column:firma_digital"`
	FotoEntrega          *string `gorm:"column:foto_entrega"`
	ObservacionesEntrega *string `gorm:"column:observaciones_entrega"`
}

func (PedidoRuta) TableName() string { return "pedidos_ruta" }
