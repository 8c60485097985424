package models

import (
	"time"

	"github.com/google/uuid"
)

// PuntoSiembra is a planting drop-off point used when planning routes.
type PuntoSiembra struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Nombre         string        `gorm:"column:nombre;not null"`
	Contacto       *string       `gorm:"column:contacto"`
	Telefono       *string       `gorm:"column:telefono"`
	DepartamentoID *uuid.UUID    `gorm:"column:departamento_id;type:uuid"`
	Departamento   *Departamento `gorm:"foreignKey:DepartamentoID"`
	MunicipioID    *uuid.UUID    `gorm:"column:municipio_id;type:uuid"`
	Municipio      *Municipio    `gorm:"foreignKey:MunicipioID"`
	Direccion      *string       `gorm:"column:direccion"`
	Activo         bool          `gorm:"column:activo;not null;default:true"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (PuntoSiembra) TableName() string { return "puntos_siembra" }

// Finca is a farm, optionally owned by a registered user.
type Finca struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Nombre         string        `gorm:"column:nombre;not null"`
	Contacto       *string       `gorm:"column:contacto"`
	Telefono       *string       `gorm:"column:telefono"`
	DepartamentoID *uuid.UUID    `gorm:"column:departamento_id;type:uuid"`
	Departamento   *Departamento `gorm:"foreignKey:DepartamentoID"`
	MunicipioID    *uuid.UUID    `gorm:"column:municipio_id;type:uuid"`
	Municipio      *Municipio    `gorm:"foreignKey:MunicipioID"`
	Direccion      *string       `gorm:"column:direccion"`
	UsuarioID      *uuid.UUID    `gorm:"column:usuario_id;type:uuid"`
	Usuario        *Usuario      `gorm:"foreignKey:UsuarioID"`
	Activo         bool          `gorm:"column:activo;not null;default:true"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Finca) TableName() string { return "fincas" }
