package fleet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
)

// Repository exposes fleet persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListVehiculos(ctx context.Context, soloActivos bool) ([]models.Vehiculo, error)
	FindVehiculo(ctx context.Context, id uuid.UUID) (*models.Vehiculo, error)
	SaveVehiculo(ctx context.Context, vehiculo *models.Vehiculo) error
	DeactivateVehiculo(ctx context.Context, id uuid.UUID) error

	ListDocumentos(ctx context.Context, vehiculoID uuid.UUID) ([]models.DocumentoVehiculo, error)
	FindDocumento(ctx context.Context, id uuid.UUID) (*models.DocumentoVehiculo, error)
	SaveDocumento(ctx context.Context, documento *models.DocumentoVehiculo) error
	DeleteDocumento(ctx context.Context, id uuid.UUID) error

	ListTransportistas(ctx context.Context, soloActivos bool) ([]models.Transportista, error)
	FindTransportista(ctx context.Context, id uuid.UUID) (*models.Transportista, error)
	SaveTransportista(ctx context.Context, transportista *models.Transportista) error
	DeactivateTransportista(ctx context.Context, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a fleet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListVehiculos(ctx context.Context, soloActivos bool) ([]models.Vehiculo, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Vehiculo{}).
		Preload("Transportista").
		Preload("Documentos").
		Order("placa ASC")
	if soloActivos {
		query = query.Where("activo = ?", true)
	}
	var out []models.Vehiculo
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) FindVehiculo(ctx context.Context, id uuid.UUID) (*models.Vehiculo, error) {
	var vehiculo models.Vehiculo
	err := r.db.WithContext(ctx).
		Preload("Transportista").
		Preload("Documentos").
		First(&vehiculo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &vehiculo, nil
}

func (r *repositoryImpl) SaveVehiculo(ctx context.Context, vehiculo *models.Vehiculo) error {
	return r.db.WithContext(ctx).Omit("Documentos", "Transportista").Save(vehiculo).Error
}

func (r *repositoryImpl) DeactivateVehiculo(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehiculo{}).
		Where("id = ?", id).
		UpdateColumn("activo", false).Error
}

func (r *repositoryImpl) ListDocumentos(ctx context.Context, vehiculoID uuid.UUID) ([]models.DocumentoVehiculo, error) {
	var out []models.DocumentoVehiculo
	err := r.db.WithContext(ctx).
		Where("vehiculo_id = ?", vehiculoID).
		Order("fecha_vencimiento ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) FindDocumento(ctx context.Context, id uuid.UUID) (*models.DocumentoVehiculo, error) {
	var documento models.DocumentoVehiculo
	if err := r.db.WithContext(ctx).First(&documento, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &documento, nil
}

func (r *repositoryImpl) SaveDocumento(ctx context.Context, documento *models.DocumentoVehiculo) error {
	return r.db.WithContext(ctx).Save(documento).Error
}

func (r *repositoryImpl) DeleteDocumento(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DocumentoVehiculo{}, "id = ?", id).Error
}

func (r *repositoryImpl) ListTransportistas(ctx context.Context, soloActivos bool) ([]models.Transportista, error) {
	query := r.db.WithContext(ctx).Model(&models.Transportista{}).Order("nombre ASC")
	if soloActivos {
		query = query.Where("activo = ?", true)
	}
	var out []models.Transportista
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) FindTransportista(ctx context.Context, id uuid.UUID) (*models.Transportista, error) {
	var transportista models.Transportista
	if err := r.db.WithContext(ctx).First(&transportista, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transportista, nil
}

func (r *repositoryImpl) SaveTransportista(ctx context.Context, transportista *models.Transportista) error {
	return r.db.WithContext(ctx).Save(transportista).Error
}

func (r *repositoryImpl) DeactivateTransportista(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Transportista{}).
		Where("id = ?", id).
		UpdateColumn("activo", false).Error
}
