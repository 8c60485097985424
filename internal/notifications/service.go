package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/pagination"
)

// Service defines notification list/read operations plus the typed creation
// helpers used by the order and route workflows.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	NoLeidas(ctx context.Context, usuarioID uuid.UUID) (*NoLeidasResult, error)
	MarcarLeida(ctx context.Context, usuarioID, notificacionID uuid.UUID) error
	MarcarTodasLeidas(ctx context.Context, usuarioID uuid.UUID) (int64, error)

	NotificarCambioEstado(ctx context.Context, tx *gorm.DB, usuarioID, pedidoID uuid.UUID, codigo string, nuevo enums.EstadoPedido) error
	NotificarEntrega(ctx context.Context, tx *gorm.DB, usuarioID, pedidoID uuid.UUID, codigo string) error
	NotificarRutaAsignada(ctx context.Context, tx *gorm.DB, usuarioID, rutaID uuid.UUID, codigo string) error
	NotificarStockBajo(ctx context.Context, tx *gorm.DB, usuarioIDs []uuid.UUID, variedad string, stock, minimo int) error
}

type service struct {
	repo Repository
}

// ListParams configures pagination for a user's notification feed.
type ListParams struct {
	UsuarioID    uuid.UUID
	Limit        int
	Cursor       string
	SoloNoLeidas bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []NotificacionDTO `json:"items"`
	Cursor string            `json:"cursor"`
}

// NoLeidasResult carries the unread badge count and the most recent unread rows.
type NoLeidasResult struct {
	Total int64             `json:"total"`
	Items []NotificacionDTO `json:"items"`
}

// NotificacionDTO is the API representation of a notification.
type NotificacionDTO struct {
	ID            uuid.UUID  `json:"id"`
	Tipo          string     `json:"tipo"`
	Titulo        string     `json:"titulo"`
	Mensaje       string     `json:"mensaje"`
	Leida         bool       `json:"leida"`
	FechaCreacion time.Time  `json:"fecha_creacion"`
	PedidoID      *uuid.UUID `json:"pedido_id,omitempty"`
	RutaID        *uuid.UUID `json:"ruta_id,omitempty"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UsuarioID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usuario requerido")
	}

	query := listParams{
		UsuarioID:    params.UsuarioID,
		Limit:        params.Limit,
		SoloNoLeidas: params.SoloNoLeidas,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cursor invalido")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar notificaciones")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: fromModels(rows), Cursor: cursor}, nil
}

func (s *service) NoLeidas(ctx context.Context, usuarioID uuid.UUID) (*NoLeidasResult, error) {
	if usuarioID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usuario requerido")
	}
	total, err := s.repo.CountNoLeidas(ctx, usuarioID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar no leidas")
	}
	rows, _, err := s.repo.List(ctx, listParams{UsuarioID: usuarioID, SoloNoLeidas: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar no leidas")
	}
	return &NoLeidasResult{Total: total, Items: fromModels(rows)}, nil
}

func (s *service) MarcarLeida(ctx context.Context, usuarioID, notificacionID uuid.UUID) error {
	mark, err := s.repo.MarcarLeida(ctx, usuarioID, notificacionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marcar leida")
	}
	if !mark.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notificacion no encontrada")
	}
	return nil
}

func (s *service) MarcarTodasLeidas(ctx context.Context, usuarioID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarcarTodasLeidas(ctx, usuarioID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marcar todas leidas")
	}
	return updated, nil
}

func (s *service) NotificarCambioEstado(ctx context.Context, tx *gorm.DB, usuarioID, pedidoID uuid.UUID, codigo string, nuevo enums.EstadoPedido) error {
	return s.crear(ctx, tx, &models.Notificacion{
		UsuarioID: usuarioID,
		Tipo:      enums.NotificacionCambioEstado,
		Titulo:    fmt.Sprintf("Pedido %s actualizado", codigo),
		Mensaje:   fmt.Sprintf("Tu pedido %s ahora esta en estado: %s", codigo, nuevo),
		PedidoID:  &pedidoID,
	})
}

func (s *service) NotificarEntrega(ctx context.Context, tx *gorm.DB, usuarioID, pedidoID uuid.UUID, codigo string) error {
	return s.crear(ctx, tx, &models.Notificacion{
		UsuarioID: usuarioID,
		Tipo:      enums.NotificacionEntregaRealizada,
		Titulo:    fmt.Sprintf("Pedido %s entregado", codigo),
		Mensaje:   fmt.Sprintf("Tu pedido %s fue entregado. Gracias por tu compra.", codigo),
		PedidoID:  &pedidoID,
	})
}

func (s *service) NotificarRutaAsignada(ctx context.Context, tx *gorm.DB, usuarioID, rutaID uuid.UUID, codigo string) error {
	return s.crear(ctx, tx, &models.Notificacion{
		UsuarioID: usuarioID,
		Tipo:      enums.NotificacionRutaAsignada,
		Titulo:    fmt.Sprintf("Ruta %s asignada", codigo),
		Mensaje:   fmt.Sprintf("Se te asigno la ruta de entrega %s", codigo),
		RutaID:    &rutaID,
	})
}

func (s *service) NotificarStockBajo(ctx context.Context, tx *gorm.DB, usuarioIDs []uuid.UUID, variedad string, stock, minimo int) error {
	for _, usuarioID := range usuarioIDs {
		err := s.crear(ctx, tx, &models.Notificacion{
			UsuarioID: usuarioID,
			Tipo:      enums.NotificacionStockBajo,
			Titulo:    fmt.Sprintf("Stock bajo: %s", variedad),
			Mensaje:   fmt.Sprintf("La variedad %s tiene stock %d, por debajo del minimo %d", variedad, stock, minimo),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) crear(ctx context.Context, tx *gorm.DB, notificacion *models.Notificacion) error {
	if err := s.repo.WithTx(tx).Create(ctx, notificacion); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear notificacion")
	}
	return nil
}

func fromModels(rows []models.Notificacion) []NotificacionDTO {
	out := make([]NotificacionDTO, 0, len(rows))
	for i := range rows {
		n := rows[i]
		out = append(out, NotificacionDTO{
			ID:            n.ID,
			Tipo:          n.Tipo.String(),
			Titulo:        n.Titulo,
			Mensaje:       n.Mensaje,
			Leida:         n.Leida,
			FechaCreacion: n.FechaCreacion,
			PedidoID:      n.PedidoID,
			RutaID:        n.RutaID,
		})
	}
	return out
}
