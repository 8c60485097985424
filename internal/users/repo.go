package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.Usuario) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Usuario, error)
	FindByEmail(ctx context.Context, email string) (*models.Usuario, error)
	List(ctx context.Context, filter ListFilter) ([]models.Usuario, error)
	Update(ctx context.Context, user *models.Usuario) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	UpdateUltimoAcceso(ctx context.Context, id uuid.UUID, at time.Time) error

	FindRolByNombre(ctx context.Context, nombre string) (*models.Rol, error)
	FindAsignacion(ctx context.Context, usuarioID, rolID uuid.UUID) (*models.UsuarioRol, error)
	CreateAsignacion(ctx context.Context, asignacion *models.UsuarioRol) error
	ReactivateAsignacion(ctx context.Context, id uuid.UUID, at time.Time) error

	ListParcelas(ctx context.Context, usuarioID uuid.UUID) ([]models.Parcela, error)
	CreateParcela(ctx context.Context, parcela *models.Parcela) error
}

// ListFilter narrows the user listing.
type ListFilter struct {
	Search      string
	SoloActivos bool
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, user *models.Usuario) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Usuario, error) {
	var user models.Usuario
	err := r.db.WithContext(ctx).
		Preload("Roles", "activo = ?", true).
		Preload("Roles.Rol").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	var user models.Usuario
	err := r.db.WithContext(ctx).
		Preload("Roles", "activo = ?", true).
		Preload("Roles.Rol").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.Usuario, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Preload("Roles", "activo = ?", true).
		Preload("Roles.Rol").
		Order("nombre_completo ASC")
	if filter.SoloActivos {
		query = query.Where("activo = ?", true)
	}
	if filter.Search != "" {
		// LOWER+LIKE instead of ILIKE so the query also runs on sqlite.
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(nombre_completo) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}
	var out []models.Usuario
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) Update(ctx context.Context, user *models.Usuario) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Where("id = ?", id).
		UpdateColumn("activo", false).Error
}

func (r *repositoryImpl) UpdateUltimoAcceso(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Where("id = ?", id).
		UpdateColumn("ultimo_acceso", at).Error
}

func (r *repositoryImpl) FindRolByNombre(ctx context.Context, nombre string) (*models.Rol, error) {
	var rol models.Rol
	if err := r.db.WithContext(ctx).Where("nombre_rol = ?", nombre).First(&rol).Error; err != nil {
		return nil, err
	}
	return &rol, nil
}

func (r *repositoryImpl) FindAsignacion(ctx context.Context, usuarioID, rolID uuid.UUID) (*models.UsuarioRol, error) {
	var asignacion models.UsuarioRol
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND rol_id = ?", usuarioID, rolID).
		First(&asignacion).Error
	if err != nil {
		return nil, err
	}
	return &asignacion, nil
}

func (r *repositoryImpl) CreateAsignacion(ctx context.Context, asignacion *models.UsuarioRol) error {
	return r.db.WithContext(ctx).Create(asignacion).Error
}

func (r *repositoryImpl) ReactivateAsignacion(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.UsuarioRol{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"activo": true, "fecha_asignacion": at}).Error
}

func (r *repositoryImpl) ListParcelas(ctx context.Context, usuarioID uuid.UUID) ([]models.Parcela, error) {
	var out []models.Parcela
	err := r.db.WithContext(ctx).
		Where("usuario_id = ?", usuarioID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) CreateParcela(ctx context.Context, parcela *models.Parcela) error {
	return r.db.WithContext(ctx).Create(parcela).Error
}
