package models

import "github.com/google/uuid"

// Departamento is top-level geographic reference data.
type Departamento struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Nombre string    `gorm:"column:nombre;not null;uniqueIndex"`
	Region *string   `gorm:"column:region"`
}

func (Departamento) TableName() string { return "departamentos" }

// Municipio belongs to exactly one departamento.
type Municipio struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Nombre         string        `gorm:"column:nombre;not null"`
	DepartamentoID uuid.UUID     `gorm:"column:departamento_id;type:uuid;not null;index"`
	Departamento   *Departamento `gorm:"foreignKey:DepartamentoID"`
}

func (Municipio) TableName() string { return "municipios" }
