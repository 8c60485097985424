package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriconecta/backend/pkg/db/models"
)

// CategoriaDTO is the API representation of a plant category.
type CategoriaDTO struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion string    `json:"descripcion"`
	Activo      bool      `json:"activo"`
}

// PilonDTO is the API representation of a catalog variety.
type PilonDTO struct {
	ID               uuid.UUID       `json:"id"`
	NombreVariedad   string          `json:"nombre_variedad"`
	CategoriaID      uuid.UUID       `json:"categoria_id"`
	Categoria        string          `json:"categoria,omitempty"`
	Descripcion      string          `json:"descripcion"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	TiempoProduccion int             `json:"tiempo_produccion"`
	Stock            int             `json:"stock"`
	StockMinimo      int             `json:"stock_minimo"`
	StockBajo        bool            `json:"stock_bajo"`
	Activo           bool            `json:"activo"`
	CreatedAt        time.Time       `json:"created_at"`
}

// UpsertCategoriaRequest creates or updates a category.
type UpsertCategoriaRequest struct {
	Nombre      string `json:"nombre" validate:"required"`
	Descripcion string `json:"descripcion"`
	Activo      *bool  `json:"activo,omitempty"`
}

// UpsertPilonRequest creates or updates a catalog variety.
type UpsertPilonRequest struct {
	NombreVariedad   string `json:"nombre_variedad" validate:"required"`
	CategoriaID      string `json:"categoria_id" validate:"required,uuid"`
	Descripcion      string `json:"descripcion"`
	PrecioUnitario   string `json:"precio_unitario" validate:"required"`
	TiempoProduccion int    `json:"tiempo_produccion" validate:"gte=0"`
	Stock            int    `json:"stock" validate:"gte=0"`
	StockMinimo      *int   `json:"stock_minimo,omitempty" validate:"omitempty,gte=0"`
	Activo           *bool  `json:"activo,omitempty"`
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	Search      string
	CategoriaID *uuid.UUID
	StockBajo   bool
	SoloActivos bool
}

func categoriaFromModel(c *models.CategoriaPlanta) CategoriaDTO {
	return CategoriaDTO{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}

func pilonFromModel(p *models.CatalogoPilon) PilonDTO {
	dto := PilonDTO{
		ID:               p.ID,
		NombreVariedad:   p.NombreVariedad,
		CategoriaID:      p.CategoriaID,
		Descripcion:      p.Descripcion,
		PrecioUnitario:   p.PrecioUnitario,
		TiempoProduccion: p.TiempoProduccion,
		Stock:            p.Stock,
		StockMinimo:      p.StockMinimo,
		StockBajo:        p.StockBajo(),
		Activo:           p.Activo,
		CreatedAt:        p.CreatedAt,
	}
	if p.Categoria != nil {
		dto.Categoria = p.Categoria.Nombre
	}
	return dto
}
