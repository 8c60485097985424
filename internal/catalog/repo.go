package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
)

// Repository exposes catalog persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListCategorias(ctx context.Context) ([]models.CategoriaPlanta, error)
	FindCategoria(ctx context.Context, id uuid.UUID) (*models.CategoriaPlanta, error)
	SaveCategoria(ctx context.Context, categoria *models.CategoriaPlanta) error

	ListPilones(ctx context.Context, filter ListFilter) ([]models.CatalogoPilon, error)
	FindPilon(ctx context.Context, id uuid.UUID) (*models.CatalogoPilon, error)
	SavePilon(ctx context.Context, pilon *models.CatalogoPilon) error
	DeactivatePilon(ctx context.Context, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListCategorias(ctx context.Context) ([]models.CategoriaPlanta, error) {
	var out []models.CategoriaPlanta
	if err := r.db.WithContext(ctx).Order("nombre ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) FindCategoria(ctx context.Context, id uuid.UUID) (*models.CategoriaPlanta, error) {
	var categoria models.CategoriaPlanta
	if err := r.db.WithContext(ctx).First(&categoria, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &categoria, nil
}

func (r *repositoryImpl) SaveCategoria(ctx context.Context, categoria *models.CategoriaPlanta) error {
	return r.db.WithContext(ctx).Save(categoria).Error
}

func (r *repositoryImpl) ListPilones(ctx context.Context, filter ListFilter) ([]models.CatalogoPilon, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CatalogoPilon{}).
		Preload("Categoria").
		Order("nombre_variedad ASC")
	if filter.SoloActivos {
		query = query.Where("activo = ?", true)
	}
	if filter.CategoriaID != nil {
		query = query.Where("categoria_id = ?", *filter.CategoriaID)
	}
	if filter.Search != "" {
		// LOWER+LIKE instead of ILIKE so the query also runs on sqlite.
		query = query.Where("LOWER(nombre_variedad) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.StockBajo {
		query = query.Where("stock <= stock_minimo")
	}
	var out []models.CatalogoPilon
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) FindPilon(ctx context.Context, id uuid.UUID) (*models.CatalogoPilon, error) {
	var pilon models.CatalogoPilon
	err := r.db.WithContext(ctx).Preload("Categoria").First(&pilon, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pilon, nil
}

func (r *repositoryImpl) SavePilon(ctx context.Context, pilon *models.CatalogoPilon) error {
	return r.db.WithContext(ctx).Save(pilon).Error
}

func (r *repositoryImpl) DeactivatePilon(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CatalogoPilon{}).
		Where("id = ?", id).
		UpdateColumn("activo", false).Error
}
