package locations

import (
	"github.com/google/uuid"

	"github.com/agriconecta/backend/pkg/db/models"
)

// DepartamentoDTO is the API representation of a department.
type DepartamentoDTO struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
	Region *string   `json:"region,omitempty"`
}

// MunicipioDTO is the API representation of a municipality.
type MunicipioDTO struct {
	ID             uuid.UUID `json:"id"`
	Nombre         string    `json:"nombre"`
	DepartamentoID uuid.UUID `json:"departamento_id"`
	Departamento   string    `json:"departamento,omitempty"`
}

// PuntoSiembraDTO is the API representation of a planting point.
type PuntoSiembraDTO struct {
	ID             uuid.UUID  `json:"id"`
	Nombre         string     `json:"nombre"`
	Contacto       *string    `json:"contacto,omitempty"`
	Telefono       *string    `json:"telefono,omitempty"`
	DepartamentoID *uuid.UUID `json:"departamento_id,omitempty"`
	MunicipioID    *uuid.UUID `json:"municipio_id,omitempty"`
	Direccion      *string    `json:"direccion,omitempty"`
	Activo         bool       `json:"activo"`
}

// FincaDTO is the API representation of a farm.
type FincaDTO struct {
	ID             uuid.UUID  `json:"id"`
	Nombre         string     `json:"nombre"`
	Contacto       *string    `json:"contacto,omitempty"`
	Telefono       *string    `json:"telefono,omitempty"`
	DepartamentoID *uuid.UUID `json:"departamento_id,omitempty"`
	MunicipioID    *uuid.UUID `json:"municipio_id,omitempty"`
	Direccion      *string    `json:"direccion,omitempty"`
	UsuarioID      *uuid.UUID `json:"usuario_id,omitempty"`
	Activo         bool       `json:"activo"`
}

// UpsertPuntoSiembraRequest creates or updates a planting point.
type UpsertPuntoSiembraRequest struct {
	Nombre         string  `json:"nombre" validate:"required"`
	Contacto       *string `json:"contacto,omitempty"`
	Telefono       *string `json:"telefono,omitempty"`
	DepartamentoID *string `json:"departamento_id,omitempty" validate:"omitempty,uuid"`
	MunicipioID    *string `json:"municipio_id,omitempty" validate:"omitempty,uuid"`
	Direccion      *string `json:"direccion,omitempty"`
}

// UpsertFincaRequest creates or updates a farm.
type UpsertFincaRequest struct {
	Nombre         string  `json:"nombre" validate:"required"`
	Contacto       *string `json:"contacto,omitempty"`
	Telefono       *string `json:"telefono,omitempty"`
	DepartamentoID *string `json:"departamento_id,omitempty" validate:"omitempty,uuid"`
	MunicipioID    *string `json:"municipio_id,omitempty" validate:"omitempty,uuid"`
	Direccion      *string `json:"direccion,omitempty"`
	UsuarioID      *string `json:"usuario_id,omitempty" validate:"omitempty,uuid"`
}

func departamentoFromModel(d *models.Departamento) DepartamentoDTO {
	return DepartamentoDTO{ID: d.ID, Nombre: d.Nombre, Region: d.Region}
}

func municipioFromModel(m *models.Municipio) MunicipioDTO {
	dto := MunicipioDTO{ID: m.ID, Nombre: m.Nombre, DepartamentoID: m.DepartamentoID}
	if m.Departamento != nil {
		dto.Departamento = m.Departamento.Nombre
	}
	return dto
}

func puntoSiembraFromModel(p *models.PuntoSiembra) PuntoSiembraDTO {
	return PuntoSiembraDTO{
		ID:             p.ID,
		Nombre:         p.Nombre,
		Contacto:       p.Contacto,
		Telefono:       p.Telefono,
		DepartamentoID: p.DepartamentoID,
		MunicipioID:    p.MunicipioID,
		Direccion:      p.Direccion,
		Activo:         p.Activo,
	}
}

func fincaFromModel(f *models.Finca) FincaDTO {
	return FincaDTO{
		ID:             f.ID,
		Nombre:         f.Nombre,
		Contacto:       f.Contacto,
		Telefono:       f.Telefono,
		DepartamentoID: f.DepartamentoID,
		MunicipioID:    f.MunicipioID,
		Direccion:      f.Direccion,
		UsuarioID:      f.UsuarioID,
		Activo:         f.Activo,
	}
}
