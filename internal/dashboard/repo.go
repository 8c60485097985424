package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
)

// PedidoVentana is the slice of an order the per-day series needs. Day
// bucketing happens in the service so the reporting zone is applied once.
type PedidoVentana struct {
	FechaPedido time.Time
	Total       decimal.Decimal
	Estado      enums.EstadoPedido
}

// Repository exposes the aggregate reads behind the dashboard.
type Repository interface {
	TotalesPedidos(ctx context.Context) (total, pendientes, entregados int64, err error)
	TotalesUsuarios(ctx context.Context, activosDesde time.Time) (total, activos int64, err error)
	PlantasEnStock(ctx context.Context) (int64, error)
	RutasPendientes(ctx context.Context) (int64, error)
	IngresosEntregadosEntre(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error)

	PedidosVentana(ctx context.Context, desde, hasta time.Time) ([]PedidoVentana, error)
	TopProductos(ctx context.Context, desde, hasta time.Time, limit int) ([]TopProducto, error)
	StockBajo(ctx context.Context, limit int) ([]models.CatalogoPilon, error)
	CountStockBajo(ctx context.Context) (int64, error)
	PedidosPorEstado(ctx context.Context) (map[string]int64, error)
	ConteoPedidosEntre(ctx context.Context, desde, hasta time.Time) (ConteoPeriodo, error)
	CountEntregasEntre(ctx context.Context, desde, hasta time.Time) (int64, error)

	ConteoPedidosUsuario(ctx context.Context, usuarioID uuid.UUID) (total, enProceso, entregados int64, err error)
	NotificacionesSinLeer(ctx context.Context, usuarioID uuid.UUID) (int64, error)
	RutasActivas(ctx context.Context) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a dashboard repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) TotalesPedidos(ctx context.Context) (int64, int64, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Pedido{}).Where("activo = ?", true)
	}

	var total, pendientes, entregados int64
	if err := base().Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := base().
		Where("estado NOT IN ?", []enums.EstadoPedido{enums.EstadoPedidoEntregado, enums.EstadoPedidoCancelado}).
		Count(&pendientes).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := base().
		Where("estado = ?", enums.EstadoPedidoEntregado).
		Count(&entregados).Error; err != nil {
		return 0, 0, 0, err
	}
	return total, pendientes, entregados, nil
}

func (r *repositoryImpl) TotalesUsuarios(ctx context.Context, activosDesde time.Time) (int64, int64, error) {
	var total, activos int64
	if err := r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Where("activo = ?", true).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Where("activo = ? AND ultimo_acceso >= ?", true, activosDesde).
		Count(&activos).Error; err != nil {
		return 0, 0, err
	}
	return total, activos, nil
}

func (r *repositoryImpl) PlantasEnStock(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CatalogoPilon{}).
		Where("activo = ?", true).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repositoryImpl) RutasPendientes(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RutaEntrega{}).
		Where("estado IN ?", []enums.EstadoRuta{enums.EstadoRutaPlanificada, enums.EstadoRutaAsignada}).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) IngresosEntregadosEntre(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Where("activo = ? AND estado = ?", true, enums.EstadoPedidoEntregado).
		Where("fecha_entrega_real >= ? AND fecha_entrega_real < ?", desde, hasta).
		Select("SUM(total)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	return raw.Decimal, nil
}

func (r *repositoryImpl) PedidosVentana(ctx context.Context, desde, hasta time.Time) ([]PedidoVentana, error) {
	var out []PedidoVentana
	err := r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Where("activo = ? AND estado <> ?", true, enums.EstadoPedidoCancelado).
		Where("fecha_pedido >= ? AND fecha_pedido < ?", desde, hasta).
		Select("fecha_pedido, total, estado").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) TopProductos(ctx context.Context, desde, hasta time.Time, limit int) ([]TopProducto, error) {
	var out []TopProducto
	err := r.db.WithContext(ctx).
		Table("detalles_pedido dp").
		Joins("JOIN pedidos p ON p.id = dp.pedido_id").
		Joins("JOIN catalogo_pilones cp ON cp.id = dp.pilon_id").
		Where("p.activo = ? AND p.estado <> ?", true, enums.EstadoPedidoCancelado).
		Where("p.fecha_pedido >= ? AND p.fecha_pedido < ?", desde, hasta).
		Group("cp.id, cp.nombre_variedad").
		Order("SUM(dp.cantidad) DESC").
		Limit(limit).
		Select("cp.id AS pilon_id, cp.nombre_variedad AS variedad, SUM(dp.cantidad) AS cantidad").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) StockBajo(ctx context.Context, limit int) ([]models.CatalogoPilon, error) {
	var out []models.CatalogoPilon
	err := r.db.WithContext(ctx).
		Model(&models.CatalogoPilon{}).
		Where("activo = ? AND stock <= stock_minimo AND stock_minimo > 0", true).
		Order("(stock::numeric / stock_minimo) ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) CountStockBajo(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CatalogoPilon{}).
		Where("activo = ? AND stock <= stock_minimo", true).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) PedidosPorEstado(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Estado   string
		Cantidad int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Where("activo = ?", true).
		Group("estado").
		Select("estado, COUNT(*) AS cantidad").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Estado] = row.Cantidad
	}
	return out, nil
}

func (r *repositoryImpl) ConteoPedidosEntre(ctx context.Context, desde, hasta time.Time) (ConteoPeriodo, error) {
	var row struct {
		Cantidad int64
		Total    decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Where("activo = ? AND estado <> ?", true, enums.EstadoPedidoCancelado).
		Where("fecha_pedido >= ? AND fecha_pedido < ?", desde, hasta).
		Select("COUNT(*) AS cantidad, SUM(total) AS total").
		Scan(&row).Error
	if err != nil {
		return ConteoPeriodo{}, err
	}
	conteo := ConteoPeriodo{Cantidad: row.Cantidad, Total: decimal.Zero}
	if row.Total.Valid {
		conteo.Total = row.Total.Decimal
	}
	return conteo, nil
}

func (r *repositoryImpl) CountEntregasEntre(ctx context.Context, desde, hasta time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Pedido{}).
		Where("activo = ? AND estado = ?", true, enums.EstadoPedidoEntregado).
		Where("fecha_entrega_real >= ? AND fecha_entrega_real < ?", desde, hasta).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ConteoPedidosUsuario(ctx context.Context, usuarioID uuid.UUID) (int64, int64, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Pedido{}).
			Where("activo = ? AND usuario_id = ?", true, usuarioID)
	}

	var total, enProceso, entregados int64
	if err := base().Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := base().
		Where("estado NOT IN ?", []enums.EstadoPedido{enums.EstadoPedidoEntregado, enums.EstadoPedidoCancelado}).
		Count(&enProceso).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := base().
		Where("estado = ?", enums.EstadoPedidoEntregado).
		Count(&entregados).Error; err != nil {
		return 0, 0, 0, err
	}
	return total, enProceso, entregados, nil
}

func (r *repositoryImpl) NotificacionesSinLeer(ctx context.Context, usuarioID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) RutasActivas(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RutaEntrega{}).
		Where("estado NOT IN ?", []enums.EstadoRuta{enums.EstadoRutaCompletada, enums.EstadoRutaCancelada}).
		Count(&count).Error
	return count, err
}
