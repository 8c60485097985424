package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
)

// UsuarioDTO is the API representation of a user.
type UsuarioDTO struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	NombreCompleto string     `json:"nombre_completo"`
	Telefono       *string    `json:"telefono,omitempty"`
	Direccion      *string    `json:"direccion,omitempty"`
	MunicipioID    *uuid.UUID `json:"municipio_id,omitempty"`
	Activo         bool       `json:"activo"`
	IsStaff        bool       `json:"is_staff"`
	Roles          []string   `json:"roles"`
	FechaRegistro  time.Time  `json:"fecha_registro"`
	UltimoAcceso   *time.Time `json:"ultimo_acceso,omitempty"`
}

// FromModel maps the persistence model onto the API DTO. Only active role
// assignments surface as roles.
func FromModel(u *models.Usuario) *UsuarioDTO {
	if u == nil {
		return nil
	}
	roles := make([]string, 0, len(u.Roles))
	for _, asignacion := range u.Roles {
		if asignacion.Activo && asignacion.Rol != nil {
			roles = append(roles, asignacion.Rol.NombreRol)
		}
	}
	return &UsuarioDTO{
		ID:             u.ID,
		Email:          u.Email,
		NombreCompleto: u.NombreCompleto,
		Telefono:       u.Telefono,
		Direccion:      u.Direccion,
		MunicipioID:    u.MunicipioID,
		Activo:         u.Activo,
		IsStaff:        u.IsStaff,
		Roles:          roles,
		FechaRegistro:  u.FechaRegistro,
		UltimoAcceso:   u.UltimoAcceso,
	}
}

// RolSet derives the capability set for authorization decisions.
func (d *UsuarioDTO) RolSet() enums.RolSet {
	return enums.ParseRolSet(d.Roles)
}

// CreateUsuarioRequest is the admin payload for creating a user.
type CreateUsuarioRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=8"`
	NombreCompleto string   `json:"nombre_completo" validate:"required"`
	Telefono       *string  `json:"telefono,omitempty"`
	Direccion      *string  `json:"direccion,omitempty"`
	MunicipioID    *string  `json:"municipio_id,omitempty" validate:"omitempty,uuid"`
	IsStaff        bool     `json:"is_staff"`
	Roles          []string `json:"roles" validate:"omitempty,dive,required"`
}

// UpdateUsuarioRequest carries partial profile updates.
type UpdateUsuarioRequest struct {
	NombreCompleto *string `json:"nombre_completo,omitempty"`
	Telefono       *string `json:"telefono,omitempty"`
	Direccion      *string `json:"direccion,omitempty"`
	MunicipioID    *string `json:"municipio_id,omitempty" validate:"omitempty,uuid"`
}

// AsignarRolRequest names the role to grant.
type AsignarRolRequest struct {
	Rol string `json:"rol" validate:"required"`
}

// ParcelaDTO is the API representation of a grower plot.
type ParcelaDTO struct {
	ID            uuid.UUID       `json:"id"`
	UsuarioID     uuid.UUID       `json:"usuario_id"`
	MunicipioID   *uuid.UUID      `json:"municipio_id,omitempty"`
	Nombre        string          `json:"nombre"`
	Direccion     *string         `json:"direccion,omitempty"`
	AreaHectareas decimal.Decimal `json:"area_hectareas"`
	TipoCultivo   *string         `json:"tipo_cultivo,omitempty"`
	Activa        bool            `json:"activa"`
	Observaciones *string         `json:"observaciones,omitempty"`
}

// ParcelaFromModel maps the persistence model onto the API DTO.
func ParcelaFromModel(p *models.Parcela) *ParcelaDTO {
	if p == nil {
		return nil
	}
	return &ParcelaDTO{
		ID:            p.ID,
		UsuarioID:     p.UsuarioID,
		MunicipioID:   p.MunicipioID,
		Nombre:        p.Nombre,
		Direccion:     p.Direccion,
		AreaHectareas: p.AreaHectareas,
		TipoCultivo:   p.TipoCultivo,
		Activa:        p.Activa,
		Observaciones: p.Observaciones,
	}
}

// CreateParcelaRequest registers a plot for a user.
type CreateParcelaRequest struct {
	Nombre        string  `json:"nombre" validate:"required"`
	MunicipioID   *string `json:"municipio_id,omitempty" validate:"omitempty,uuid"`
	Direccion     *string `json:"direccion,omitempty"`
	AreaHectareas string  `json:"area_hectareas" validate:"required"`
	TipoCultivo   *string `json:"tipo_cultivo,omitempty"`
	Observaciones *string `json:"observaciones,omitempty"`
}
