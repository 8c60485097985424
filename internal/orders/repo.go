package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
)

// Repository exposes order persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, pedido *models.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pedido, error)
	List(ctx context.Context, filter ListFilter) ([]models.Pedido, error)
	Save(ctx context.Context, pedido *models.Pedido) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	AddHistorial(ctx context.Context, entry *models.HistorialEstadoPedido) error

	FindPilonForUpdate(ctx context.Context, id uuid.UUID) (*models.CatalogoPilon, error)
	UpdatePilonStock(ctx context.Context, id uuid.UUID, stock int) error
	FindMunicipio(ctx context.Context, id uuid.UUID) (*models.Municipio, error)
	ListStaffIDs(ctx context.Context) ([]uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, pedido *models.Pedido) error {
	return r.db.WithContext(ctx).Create(pedido).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Pedido, error) {
	var pedido models.Pedido
	err := r.db.WithContext(ctx).
		Preload("Usuario").
		Preload("MunicipioEntrega").
		Preload("MunicipioEntrega.Departamento").
		Preload("Detalles").
		Preload("Detalles.Pilon").
		Preload("Historial", func(db *gorm.DB) *gorm.DB {
			return db.Order("fecha_cambio ASC")
		}).
		First(&pedido, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.Pedido, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Preload("Usuario").
		Preload("Detalles").
		Where("activo = ?", true).
		Order("fecha_pedido DESC")
	if filter.UsuarioID != nil {
		query = query.Where("usuario_id = ?", *filter.UsuarioID)
	}
	if filter.Estado != nil {
		query = query.Where("estado = ?", *filter.Estado)
	}
	if filter.Search != "" {
		// LOWER+LIKE instead of ILIKE so the query also runs on sqlite.
		query = query.Where("LOWER(codigo_seguimiento) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var out []models.Pedido
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) Save(ctx context.Context, pedido *models.Pedido) error {
	return r.db.WithContext(ctx).Omit("Detalles", "Historial", "Usuario", "MunicipioEntrega").Save(pedido).Error
}

func (r *repositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Where("id = ?", id).
		UpdateColumn("activo", false).Error
}

func (r *repositoryImpl) AddHistorial(ctx context.Context, entry *models.HistorialEstadoPedido) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindPilonForUpdate locks the catalog row for the duration of the enclosing
// transaction so concurrent orders cannot oversell the same variety.
func (r *repositoryImpl) FindPilonForUpdate(ctx context.Context, id uuid.UUID) (*models.CatalogoPilon, error) {
	var pilon models.CatalogoPilon
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pilon, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pilon, nil
}

func (r *repositoryImpl) UpdatePilonStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).
		Model(&models.CatalogoPilon{}).
		Where("id = ?", id).
		UpdateColumn("stock", stock).Error
}

func (r *repositoryImpl) FindMunicipio(ctx context.Context, id uuid.UUID) (*models.Municipio, error) {
	var municipio models.Municipio
	err := r.db.WithContext(ctx).
		Preload("Departamento").
		First(&municipio, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &municipio, nil
}

// ListStaffIDs returns ids of active users holding a nursery staff role.
func (r *repositoryImpl) ListStaffIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Distinct("usuarios.id").
		Joins("JOIN usuario_roles ur ON ur.usuario_id = usuarios.id AND ur.activo = true").
		Joins("JOIN roles ON roles.id = ur.rol_id").
		Where("usuarios.activo = ?", true).
		Where("roles.nombre_rol IN ?", []string{
			enums.RolAdministrador.String(),
			enums.RolPersonalVivero.String(),
		}).
		Pluck("usuarios.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
