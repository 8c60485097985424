package logistics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
)

// Repository exposes route persistence operations. Delivery confirmation also
// touches the order tables, so the order-side writes it needs live here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRuta(ctx context.Context, ruta *models.RutaEntrega) error
	FindRuta(ctx context.Context, id uuid.UUID) (*models.RutaEntrega, error)
	ListRutas(ctx context.Context, filter ListFilter) ([]models.RutaEntrega, error)
	SaveRuta(ctx context.Context, ruta *models.RutaEntrega) error
	DeleteRuta(ctx context.Context, id uuid.UUID) error

	FindParada(ctx context.Context, rutaID, pedidoID uuid.UUID) (*models.PedidoRuta, error)
	SaveParada(ctx context.Context, parada *models.PedidoRuta) error

	FindPedido(ctx context.Context, id uuid.UUID) (*models.Pedido, error)
	SavePedido(ctx context.Context, pedido *models.Pedido) error
	AddHistorialPedido(ctx context.Context, entry *models.HistorialEstadoPedido) error

	FindVehiculo(ctx context.Context, id uuid.UUID) (*models.Vehiculo, error)

	CountRutasActivas(ctx context.Context) (int64, error)
	CountPedidosSinAsignar(ctx context.Context) (int64, error)
	CountEntregasEntre(ctx context.Context, desde, hasta time.Time) (int64, error)
	CountVehiculos(ctx context.Context) (total, enRuta int64, err error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a logistics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateRuta(ctx context.Context, ruta *models.RutaEntrega) error {
	return r.db.WithContext(ctx).Create(ruta).Error
}

func (r *repositoryImpl) FindRuta(ctx context.Context, id uuid.UUID) (*models.RutaEntrega, error) {
	var ruta models.RutaEntrega
	err := r.db.WithContext(ctx).
		Preload("TecnicoCampo").
		Preload("Vehiculo").
		Preload("Transportista").
		Preload("Departamento").
		Preload("Paradas", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden_entrega ASC")
		}).
		Preload("Paradas.Pedido").
		First(&ruta, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ruta, nil
}

func (r *repositoryImpl) ListRutas(ctx context.Context, filter ListFilter) ([]models.RutaEntrega, error) {
	query := r.db.WithContext(ctx).
		Model(&models.RutaEntrega{}).
		Preload("TecnicoCampo").
		Preload("Vehiculo").
		Order("fecha_planificada DESC")
	if filter.TecnicoCampoID != nil {
		query = query.Where("tecnico_campo_id = ?", *filter.TecnicoCampoID)
	}
	if filter.Estado != nil {
		query = query.Where("estado = ?", *filter.Estado)
	}
	if filter.Fecha != nil {
		query = query.Where("fecha_planificada::date = ?::date", *filter.Fecha)
	}

	var out []models.RutaEntrega
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) SaveRuta(ctx context.Context, ruta *models.RutaEntrega) error {
	return r.db.WithContext(ctx).
		Omit("Paradas", "TecnicoCampo", "Vehiculo", "Transportista", "Departamento").
		Save(ruta).Error
}

func (r *repositoryImpl) DeleteRuta(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.RutaEntrega{}, "id = ?", id).Error
}

func (r *repositoryImpl) FindParada(ctx context.Context, rutaID, pedidoID uuid.UUID) (*models.PedidoRuta, error) {
	var parada models.PedidoRuta
	err := r.db.WithContext(ctx).
		Preload("Pedido").
		First(&parada, "ruta_id = ? AND pedido_id = ?", rutaID, pedidoID).Error
	if err != nil {
		return nil, err
	}
	return &parada, nil
}

func (r *repositoryImpl) SaveParada(ctx context.Context, parada *models.PedidoRuta) error {
	return r.db.WithContext(ctx).Omit("Pedido").Save(parada).Error
}

func (r *repositoryImpl) FindPedido(ctx context.Context, id uuid.UUID) (*models.Pedido, error) {
	var pedido models.Pedido
	if err := r.db.WithContext(ctx).First(&pedido, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pedido, nil
}

func (r *repositoryImpl) SavePedido(ctx context.Context, pedido *models.Pedido) error {
	return r.db.WithContext(ctx).
		Omit("Detalles", "Historial", "Usuario", "MunicipioEntrega").
		Save(pedido).Error
}

func (r *repositoryImpl) AddHistorialPedido(ctx context.Context, entry *models.HistorialEstadoPedido) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) FindVehiculo(ctx context.Context, id uuid.UUID) (*models.Vehiculo, error) {
	var vehiculo models.Vehiculo
	if err := r.db.WithContext(ctx).First(&vehiculo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehiculo, nil
}

func (r *repositoryImpl) CountRutasActivas(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RutaEntrega{}).
		Where("estado NOT IN ?", []enums.EstadoRuta{enums.EstadoRutaCompletada, enums.EstadoRutaCancelada}).
		Count(&count).Error
	return count, err
}

// CountPedidosSinAsignar counts active ready-for-delivery orders that are not
// yet on any route.
func (r *repositoryImpl) CountPedidosSinAsignar(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Where("activo = ?", true).
		Where("estado = ?", enums.EstadoPedidoListoEntrega).
		Where("NOT EXISTS (SELECT 1 FROM pedidos_ruta pr WHERE pr.pedido_id = pedidos.id)").
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountEntregasEntre(ctx context.Context, desde, hasta time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Where("activo = ?", true).
		Where("fecha_entrega_real >= ? AND fecha_entrega_real < ?", desde, hasta).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountVehiculos(ctx context.Context) (int64, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Vehiculo{}).
		Where("activo = ?", true).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var enRuta int64
	err := r.db.WithContext(ctx).
		Model(&models.RutaEntrega{}).
		Where("vehiculo_id IS NOT NULL").
		Where("estado IN ?", []enums.EstadoRuta{
			enums.EstadoRutaEnProgreso,
			enums.EstadoRutaEnTransito,
			enums.EstadoRutaEntregando,
		}).
		Distinct("vehiculo_id").
		Count(&enRuta).Error
	if err != nil {
		return 0, 0, err
	}
	return total, enRuta, nil
}
