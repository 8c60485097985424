package fleet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/db/models"
)

// VehiculoDTO is the API representation of a delivery vehicle.
type VehiculoDTO struct {
	ID                 uuid.UUID        `json:"id"`
	Placa              string           `json:"placa"`
	Marca              string           `json:"marca"`
	Modelo             string           `json:"modelo"`
	Anio               *int             `json:"anio,omitempty"`
	Tipo               string           `json:"tipo"`
	CapacidadCargaKg   decimal.Decimal  `json:"capacidad_carga_kg"`
	CapacidadVolumenM3 *decimal.Decimal `json:"capacidad_volumen_m3,omitempty"`
	LargoM             *decimal.Decimal `json:"largo_m,omitempty"`
	AnchoM             *decimal.Decimal `json:"ancho_m,omitempty"`
	AltoM              *decimal.Decimal `json:"alto_m,omitempty"`
	TransportistaID    *uuid.UUID       `json:"transportista_id,omitempty"`
	Transportista      string           `json:"transportista,omitempty"`
	Activo             bool             `json:"activo"`
	Documentos         []DocumentoDTO   `json:"documentos,omitempty"`
}

// DocumentoDTO is one piece of vehicle paperwork with derived expiry fields.
type DocumentoDTO struct {
	ID               uuid.UUID  `json:"id"`
	VehiculoID       uuid.UUID  `json:"vehiculo_id"`
	Tipo             string     `json:"tipo"`
	NumeroDocumento  string     `json:"numero_documento"`
	FechaEmision     *time.Time `json:"fecha_emision,omitempty"`
	FechaVencimiento time.Time  `json:"fecha_vencimiento"`
	Archivo          *string    `json:"archivo,omitempty"`
	EstaVencido      bool       `json:"esta_vencido"`
	DiasParaVencer   int        `json:"dias_para_vencer"`
}

// TransportistaDTO is the API representation of a carrier.
type TransportistaDTO struct {
	ID       uuid.UUID `json:"id"`
	Nombre   string    `json:"nombre"`
	Contacto *string   `json:"contacto,omitempty"`
	Telefono *string   `json:"telefono,omitempty"`
	Activo   bool      `json:"activo"`
}

// UpsertVehiculoRequest creates or updates a vehicle.
type UpsertVehiculoRequest struct {
	Placa              string  `json:"placa" validate:"required"`
	Marca              string  `json:"marca" validate:"required"`
	Modelo             string  `json:"modelo" validate:"required"`
	Anio               *int    `json:"anio,omitempty"`
	Tipo               string  `json:"tipo" validate:"required"`
	CapacidadCargaKg   string  `json:"capacidad_carga_kg" validate:"required"`
	CapacidadVolumenM3 *string `json:"capacidad_volumen_m3,omitempty"`
	LargoM             *string `json:"largo_m,omitempty"`
	AnchoM             *string `json:"ancho_m,omitempty"`
	AltoM              *string `json:"alto_m,omitempty"`
	TransportistaID    *string `json:"transportista_id,omitempty" validate:"omitempty,uuid"`
	Activo             *bool   `json:"activo,omitempty"`
}

// UpsertDocumentoRequest creates or updates a vehicle document.
type UpsertDocumentoRequest struct {
	Tipo             string     `json:"tipo" validate:"required"`
	NumeroDocumento  string     `json:"numero_documento" validate:"required"`
	FechaEmision     *time.Time `json:"fecha_emision,omitempty"`
	FechaVencimiento time.Time  `json:"fecha_vencimiento" validate:"required"`
	Archivo          *string    `json:"archivo,omitempty"`
}

// UpsertTransportistaRequest creates or updates a carrier.
type UpsertTransportistaRequest struct {
	Nombre   string  `json:"nombre" validate:"required"`
	Contacto *string `json:"contacto,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
	Activo   *bool   `json:"activo,omitempty"`
}

func vehiculoFromModel(v *models.Vehiculo, hoy time.Time) VehiculoDTO {
	dto := VehiculoDTO{
		ID:                 v.ID,
		Placa:              v.Placa,
		Marca:              v.Marca,
		Modelo:             v.Modelo,
		Anio:               v.Anio,
		Tipo:               v.Tipo,
		CapacidadCargaKg:   v.CapacidadCargaKg,
		CapacidadVolumenM3: v.CapacidadVolumenM3,
		LargoM:             v.LargoM,
		AnchoM:             v.AnchoM,
		AltoM:              v.AltoM,
		TransportistaID:    v.TransportistaID,
		Activo:             v.Activo,
	}
	if v.Transportista != nil {
		dto.Transportista = v.Transportista.Nombre
	}
	for i := range v.Documentos {
		dto.Documentos = append(dto.Documentos, documentoFromModel(&v.Documentos[i], hoy))
	}
	return dto
}

func documentoFromModel(d *models.DocumentoVehiculo, hoy time.Time) DocumentoDTO {
	return DocumentoDTO{
		ID:               d.ID,
		VehiculoID:       d.VehiculoID,
		Tipo:             d.Tipo.String(),
		NumeroDocumento:  d.NumeroDocumento,
		FechaEmision:     d.FechaEmision,
		FechaVencimiento: d.FechaVencimiento,
		Archivo:          d.Archivo,
		EstaVencido:      d.EstaVencido(hoy),
		DiasParaVencer:   d.DiasParaVencer(hoy),
	}
}

func transportistaFromModel(t *models.Transportista) TransportistaDTO {
	return TransportistaDTO{
		ID:       t.ID,
		Nombre:   t.Nombre,
		Contacto: t.Contacto,
		Telefono: t.Telefono,
		Activo:   t.Activo,
	}
}
