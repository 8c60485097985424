package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/pagination"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notificacion *models.Notificacion) error
	List(ctx context.Context, params listParams) ([]models.Notificacion, *pagination.Cursor, error)
	CountNoLeidas(ctx context.Context, usuarioID uuid.UUID) (int64, error)
	MarcarLeida(ctx context.Context, usuarioID, notificacionID uuid.UUID) (markResult, error)
	MarcarTodasLeidas(ctx context.Context, usuarioID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listParams struct {
	UsuarioID    uuid.UUID
	Limit        int
	Cursor       *pagination.Cursor
	SoloNoLeidas bool
}

type markResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notificacion *models.Notificacion) error {
	return r.db.WithContext(ctx).Create(notificacion).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listParams) ([]models.Notificacion, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Notificacion{}).
		Where("usuario_id = ?", params.UsuarioID)
	if params.SoloNoLeidas {
		query = query.Where("leida = ?", false)
	}
	if params.Cursor != nil {
		query = query.Where("(fecha_creacion, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Notificacion
	if err := query.Order("fecha_creacion DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.FechaCreacion, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) CountNoLeidas(ctx context.Context, usuarioID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) MarcarLeida(ctx context.Context, usuarioID, notificacionID uuid.UUID) (markResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notificacion{}).
		Where("id = ? AND usuario_id = ? AND leida = ?", notificacionID, usuarioID, false).
		UpdateColumn("leida", true)
	if result.Error != nil {
		return markResult{}, result.Error
	}

	mark := markResult{Updated: result.RowsAffected > 0}
	if mark.Updated {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notificacion{}).
		Where("id = ? AND usuario_id = ?", notificacionID, usuarioID).
		Count(&count).Error; err != nil {
		return markResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) MarcarTodasLeidas(ctx context.Context, usuarioID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		UpdateColumn("leida", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
