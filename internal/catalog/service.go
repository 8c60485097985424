package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

// Service defines the behavior needed by the catalog controllers.
type Service interface {
	Categorias(ctx context.Context) ([]CategoriaDTO, error)
	CrearCategoria(ctx context.Context, req UpsertCategoriaRequest) (*CategoriaDTO, error)
	ActualizarCategoria(ctx context.Context, id uuid.UUID, req UpsertCategoriaRequest) (*CategoriaDTO, error)

	Pilones(ctx context.Context, filter ListFilter) ([]PilonDTO, error)
	Pilon(ctx context.Context, id uuid.UUID) (*PilonDTO, error)
	Disponibles(ctx context.Context) ([]PilonDTO, error)
	StockBajo(ctx context.Context) ([]PilonDTO, error)
	CrearPilon(ctx context.Context, req UpsertPilonRequest) (*PilonDTO, error)
	ActualizarPilon(ctx context.Context, id uuid.UUID, req UpsertPilonRequest) (*PilonDTO, error)
	DesactivarPilon(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService constructs a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Categorias(ctx context.Context) ([]CategoriaDTO, error) {
	rows, err := s.repo.ListCategorias(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar categorias")
	}
	out := make([]CategoriaDTO, 0, len(rows))
	for i := range rows {
		out = append(out, categoriaFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CrearCategoria(ctx context.Context, req UpsertCategoriaRequest) (*CategoriaDTO, error) {
	categoria := &models.CategoriaPlanta{
		Nombre:      strings.TrimSpace(req.Nombre),
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if req.Activo != nil {
		categoria.Activo = *req.Activo
	}
	if err := s.repo.SaveCategoria(ctx, categoria); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crear categoria")
	}
	dto := categoriaFromModel(categoria)
	return &dto, nil
}

func (s *service) ActualizarCategoria(ctx context.Context, id uuid.UUID, req UpsertCategoriaRequest) (*CategoriaDTO, error) {
	categoria, err := s.repo.FindCategoria(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "categoria no encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar categoria")
	}
	categoria.Nombre = strings.TrimSpace(req.Nombre)
	categoria.Descripcion = req.Descripcion
	if req.Activo != nil {
		categoria.Activo = *req.Activo
	}
	if err := s.repo.SaveCategoria(ctx, categoria); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "actualizar categoria")
	}
	dto := categoriaFromModel(categoria)
	return &dto, nil
}

func (s *service) Pilones(ctx context.Context, filter ListFilter) ([]PilonDTO, error) {
	rows, err := s.repo.ListPilones(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar catalogo")
	}
	out := make([]PilonDTO, 0, len(rows))
	for i := range rows {
		out = append(out, pilonFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Pilon(ctx context.Context, id uuid.UUID) (*PilonDTO, error) {
	pilon, err := s.findPilon(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := pilonFromModel(pilon)
	return &dto, nil
}

// Disponibles lists active varieties with stock on hand.
func (s *service) Disponibles(ctx context.Context) ([]PilonDTO, error) {
	rows, err := s.repo.ListPilones(ctx, ListFilter{SoloActivos: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar disponibles")
	}
	out := make([]PilonDTO, 0, len(rows))
	for i := range rows {
		if rows[i].Stock > 0 {
			out = append(out, pilonFromModel(&rows[i]))
		}
	}
	return out, nil
}

func (s *service) StockBajo(ctx context.Context) ([]PilonDTO, error) {
	return s.Pilones(ctx, ListFilter{SoloActivos: true, StockBajo: true})
}

func (s *service) CrearPilon(ctx context.Context, req UpsertPilonRequest) (*PilonDTO, error) {
	pilon := &models.CatalogoPilon{Activo: true, StockMinimo: 10}
	if err := s.applyPilon(ctx, pilon, req); err != nil {
		return nil, err
	}
	if err := s.repo.SavePilon(ctx, pilon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crear pilon")
	}
	dto := pilonFromModel(pilon)
	return &dto, nil
}

func (s *service) ActualizarPilon(ctx context.Context, id uuid.UUID, req UpsertPilonRequest) (*PilonDTO, error) {
	pilon, err := s.findPilon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyPilon(ctx, pilon, req); err != nil {
		return nil, err
	}
	if err := s.repo.SavePilon(ctx, pilon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "actualizar pilon")
	}
	dto := pilonFromModel(pilon)
	return &dto, nil
}

func (s *service) DesactivarPilon(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findPilon(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeactivatePilon(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "desactivar pilon")
	}
	return nil
}

func (s *service) findPilon(ctx context.Context, id uuid.UUID) (*models.CatalogoPilon, error) {
	pilon, err := s.repo.FindPilon(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pilon no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar pilon")
	}
	return pilon, nil
}

func (s *service) applyPilon(ctx context.Context, pilon *models.CatalogoPilon, req UpsertPilonRequest) error {
	categoriaID, err := uuid.Parse(req.CategoriaID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "categoria_id invalida")
	}
	if _, err := s.repo.FindCategoria(ctx, categoriaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "la categoria no existe")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar categoria")
	}

	precio, err := decimal.NewFromString(req.PrecioUnitario)
	if err != nil || precio.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "precio_unitario invalido")
	}

	pilon.NombreVariedad = strings.TrimSpace(req.NombreVariedad)
	pilon.CategoriaID = categoriaID
	pilon.Descripcion = req.Descripcion
	pilon.PrecioUnitario = precio
	pilon.TiempoProduccion = req.TiempoProduccion
	pilon.Stock = req.Stock
	if req.StockMinimo != nil {
		pilon.StockMinimo = *req.StockMinimo
	}
	if req.Activo != nil {
		pilon.Activo = *req.Activo
	}
	return nil
}
