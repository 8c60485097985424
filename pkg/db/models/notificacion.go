package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriconecta/backend/pkg/enums"
)

// Notificacion is a per-user in-app notification. Rows are immutable except
// for the leida flag.
type Notificacion struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UsuarioID     uuid.UUID              `gorm:"column:usuario_id;type:uuid;not null;index"`
	Tipo          enums.TipoNotificacion `gorm:"column:tipo;not null"`
	Titulo        string                 `gorm:"column:titulo;not null"`
	Mensaje       string                 `gorm:"column:mensaje;not null"`
	Leida         bool                   `gorm:"column:leida;not null;default:false"`
	FechaCreacion time.Time              `gorm:"column:fecha_creacion;autoCreateTime"`
	PedidoID      *uuid.UUID             `gorm:"column:pedido_id;type:uuid"`
	RutaID        *uuid.UUID             `gorm:"column:ruta_id;type:uuid"`
}

func (Notificacion) TableName() string { return "notificaciones" }
