package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Usuario represents the canonical identity entity.
type Usuario struct {
	ID             uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string       `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash   string       `gorm:"column:password_hash;not null"`
	NombreCompleto string       `gorm:"column:nombre_completo;not null"`
	Telefono       *string      `gorm:"column:telefono"`
	Direccion      *string      `gorm:"column:direccion"`
	MunicipioID    *uuid.UUID   `gorm:"column:municipio_id;type:uuid"`
	Municipio      *Municipio   `gorm:"foreignKey:MunicipioID"`
	Activo         bool         `gorm:"column:activo;not null;default:true"`
	IsStaff        bool         `gorm:"column:is_staff;not null;default:false"`
	FechaRegistro  time.Time    `gorm:"column:fecha_registro;autoCreateTime"`
	UltimoAcceso   *time.Time   `gorm:"column:ultimo_acceso"`
	Roles          []UsuarioRol `gorm:"foreignKey:UsuarioID"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Usuario) TableName() string { return "usuarios" }

// Rol is one of the four closed system roles.
type Rol struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NombreRol   string    `gorm:"column:nombre_rol;not null;uniqueIndex"`
	Descripcion string    `gorm:"column:descripcion"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Rol) TableName() string { return "roles" }

// UsuarioRol joins users to roles. An inactive row keeps the grant history
// and is reactivated instead of duplicated when the role is assigned again.
type UsuarioRol struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UsuarioID       uuid.UUID `gorm:"column:usuario_id;type:uuid;not null;uniqueIndex:uq_usuario_rol"`
	RolID           uuid.UUID `gorm:"column:rol_id;type:uuid;not null;uniqueIndex:uq_usuario_rol"`
	Rol             *Rol      `gorm:"foreignKey:RolID"`
	FechaAsignacion time.Time `gorm:"column:fecha_asignacion;autoCreateTime"`
	Activo          bool      `gorm:"column:activo;not null;default:true"`
}

func (UsuarioRol) TableName() string { return "usuario_roles" }

// Parcela is a grower's registered plot.
type Parcela struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UsuarioID     uuid.UUID       `gorm:"column:usuario_id;type:uuid;not null;index"`
	MunicipioID   *uuid.UUID      `gorm:"column:municipio_id;type:uuid"`
	Municipio     *Municipio      `gorm:"foreignKey:MunicipioID"`
	Nombre        string          `gorm:"column:nombre;not null"`
	Direccion     *string         `gorm:"column:direccion"`
	AreaHectareas decimal.Decimal `gorm:"column:area_hectareas;type:numeric(10,2);not null;default:0"`
	TipoCultivo   *string         `gorm:"column:tipo_cultivo"`
	Activa        bool            `gorm:"column:activa;not null;default:true"`
	Observaciones *string         `gorm:"column:observaciones"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Parcela) TableName() string { return "parcelas" }
