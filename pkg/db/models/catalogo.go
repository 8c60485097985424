package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoriaPlanta groups catalog varieties.
type CategoriaPlanta struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Nombre      string    `gorm:"column:nombre;not null;uniqueIndex"`
	Descripcion string    `gorm:"column:descripcion"`
	Activo      bool      `gorm:"column:activo;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CategoriaPlanta) TableName() string { return "categorias_planta" }

// CatalogoPilon is a sellable seedling variety. Stock is only guarded at
// order creation; the column itself may go negative through manual edits.
type CatalogoPilon struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NombreVariedad   string           `gorm:"column:nombre_variedad;not null"`
	CategoriaID      uuid.UUID        `gorm:"column:categoria_id;type:uuid;not null;index"`
	Categoria        *CategoriaPlanta `gorm:"foreignKey:CategoriaID"`
	Descripcion      string           `gorm:"column:descripcion"`
	PrecioUnitario   decimal.Decimal  `gorm:"column:precio_unitario;type:numeric(10,2);not null"`
	TiempoProduccion int              `gorm:"column:tiempo_produccion;not null;default:0"`
	Stock            int              `gorm:"column:stock;not null;default:0"`
	StockMinimo      int              `gorm:"column:stock_minimo;not null;default:10"`
	Activo           bool             `gorm:"column:activo;not null;default:true"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (CatalogoPilon) TableName() string { return "catalogo_pilones" }

// StockBajo reports whether the variety is at or under its minimum.
func (c CatalogoPilon) StockBajo() bool {
	return c.Stock <= c.StockMinimo
}
