package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/enums"
)

// Vehiculo is a delivery vehicle. Volume capacity and dimensions are
// optional; capacity validation skips whatever the vehicle does not declare.
type Vehiculo struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Placa              string              `gorm:"column:placa;not null;uniqueIndex"`
	Marca              string              `gorm:"column:marca;not null"`
	Modelo             string              `gorm:"column:modelo;not null"`
	Anio               *int                `gorm:"column:anio"`
	Tipo               string              `gorm:"column:tipo;not null"`
	CapacidadCargaKg   decimal.Decimal     `gorm:"column:capacidad_carga_kg;type:numeric(10,2);not null;default:0"`
	CapacidadVolumenM3 *decimal.Decimal    `gorm:"column:capacidad_volumen_m3;type:numeric(10,3)"`
	LargoM             *decimal.Decimal    `gorm:"column:largo_m;type:numeric(6,2)"`
	AnchoM             *decimal.Decimal    `gorm:"column:ancho_m;type:numeric(6,2)"`
	AltoM              *decimal.Decimal    `gorm:"column:alto_m;type:numeric(6,2)"`
	TransportistaID    *uuid.UUID          `gorm:"column:transportista_id;type:uuid"`
	Transportista      *Transportista      `gorm:"foreignKey:TransportistaID"`
	Activo             bool                `gorm:"column:activo;not null;default:true"`
	Documentos         []DocumentoVehiculo `gorm:"foreignKey:VehiculoID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vehiculo) TableName() string { return "vehiculos" }

// DocumentoVehiculo tracks a vehicle's paperwork and its expiry.
type DocumentoVehiculo struct {
	ID               uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehiculoID       uuid.UUID                   `gorm:"column:vehiculo_id;type:uuid;not null;index"`
	Tipo             enums.TipoDocumentoVehiculo `gorm:"column:tipo;not null"`
	NumeroDocumento  string                      `gorm:"column:numero_documento;not null"`
	FechaEmision     *time.Time                  `gorm:"column:fecha_emision"`
	FechaVencimiento time.Time                   `gorm:"column:fecha_vencimiento;not null"`
	Archivo          *string                     `gorm:"column:archivo"`
	CreatedAt        time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

func (DocumentoVehiculo) TableName() string { return "documentos_vehiculo" }

// EstaVencido reports whether the document expired before hoy (a calendar
// date in the reporting zone).
func (d DocumentoVehiculo) EstaVencido(hoy time.Time) bool {
	return d.FechaVencimiento.Before(hoy)
}

// DiasParaVencer returns whole days until expiry; negative when overdue.
func (d DocumentoVehiculo) DiasParaVencer(hoy time.Time) int {
	return int(d.FechaVencimiento.Sub(hoy).Hours() / 24)
}

// Transportista is an external carrier.
type Transportista struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Nombre    string    `gorm:"column:nombre;not null"`
	Contacto  *string   `gorm:"column:contacto"`
	Telefono  *string   `gorm:"column:telefono"`
	Activo    bool      `gorm:"column:activo;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transportista) TableName() string { return "transportistas" }
