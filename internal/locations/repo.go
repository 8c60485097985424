package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
)

// Repository exposes geographic reference data and route waypoints.
type Repository interface {
	ListDepartamentos(ctx context.Context) ([]models.Departamento, error)
	ListMunicipios(ctx context.Context, departamentoID *uuid.UUID) ([]models.Municipio, error)

	ListPuntosSiembra(ctx context.Context) ([]models.PuntoSiembra, error)
	FindPuntoSiembra(ctx context.Context, id uuid.UUID) (*models.PuntoSiembra, error)
	SavePuntoSiembra(ctx context.Context, punto *models.PuntoSiembra) error

	ListFincas(ctx context.Context) ([]models.Finca, error)
	FindFinca(ctx context.Context, id uuid.UUID) (*models.Finca, error)
	SaveFinca(ctx context.Context, finca *models.Finca) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a locations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListDepartamentos(ctx context.Context) ([]models.Departamento, error) {
	var out []models.Departamento
	if err := r.db.WithContext(ctx).Order("nombre ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) ListMunicipios(ctx context.Context, departamentoID *uuid.UUID) ([]models.Municipio, error) {
	query := r.db.WithContext(ctx).Preload("Departamento").Order("nombre ASC")
	if departamentoID != nil {
		query = query.Where("departamento_id = ?", *departamentoID)
	}
	var out []models.Municipio
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) ListPuntosSiembra(ctx context.Context) ([]models.PuntoSiembra, error) {
	var out []models.PuntoSiembra
	err := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) FindPuntoSiembra(ctx context.Context, id uuid.UUID) (*models.PuntoSiembra, error) {
	var punto models.PuntoSiembra
	if err := r.db.WithContext(ctx).First(&punto, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &punto, nil
}

func (r *repositoryImpl) SavePuntoSiembra(ctx context.Context, punto *models.PuntoSiembra) error {
	return r.db.WithContext(ctx).Save(punto).Error
}

func (r *repositoryImpl) ListFincas(ctx context.Context) ([]models.Finca, error) {
	var out []models.Finca
	err := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) FindFinca(ctx context.Context, id uuid.UUID) (*models.Finca, error) {
	var finca models.Finca
	if err := r.db.WithContext(ctx).First(&finca, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &finca, nil
}

func (r *repositoryImpl) SaveFinca(ctx context.Context, finca *models.Finca) error {
	return r.db.WithContext(ctx).Save(finca).Error
}
