package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

// Service defines the behavior needed by the locations controllers.
type Service interface {
	Departamentos(ctx context.Context) ([]DepartamentoDTO, error)
	Municipios(ctx context.Context, departamentoID *uuid.UUID) ([]MunicipioDTO, error)

	PuntosSiembra(ctx context.Context) ([]PuntoSiembraDTO, error)
	CrearPuntoSiembra(ctx context.Context, req UpsertPuntoSiembraRequest) (*PuntoSiembraDTO, error)
	ActualizarPuntoSiembra(ctx context.Context, id uuid.UUID, req UpsertPuntoSiembraRequest) (*PuntoSiembraDTO, error)

	Fincas(ctx context.Context) ([]FincaDTO, error)
	CrearFinca(ctx context.Context, req UpsertFincaRequest) (*FincaDTO, error)
	ActualizarFinca(ctx context.Context, id uuid.UUID, req UpsertFincaRequest) (*FincaDTO, error)
}

type service struct {
	repo Repository
}

// NewService constructs a locations service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("locations repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Departamentos(ctx context.Context) ([]DepartamentoDTO, error) {
	rows, err := s.repo.ListDepartamentos(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar departamentos")
	}
	out := make([]DepartamentoDTO, 0, len(rows))
	for i := range rows {
		out = append(out, departamentoFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Municipios(ctx context.Context, departamentoID *uuid.UUID) ([]MunicipioDTO, error) {
	rows, err := s.repo.ListMunicipios(ctx, departamentoID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar municipios")
	}
	out := make([]MunicipioDTO, 0, len(rows))
	for i := range rows {
		out = append(out, municipioFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) PuntosSiembra(ctx context.Context) ([]PuntoSiembraDTO, error) {
	rows, err := s.repo.ListPuntosSiembra(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar puntos de siembra")
	}
	out := make([]PuntoSiembraDTO, 0, len(rows))
	for i := range rows {
		out = append(out, puntoSiembraFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CrearPuntoSiembra(ctx context.Context, req UpsertPuntoSiembraRequest) (*PuntoSiembraDTO, error) {
	punto := &models.PuntoSiembra{Activo: true}
	if err := applyPuntoSiembra(punto, req); err != nil {
		return nil, err
	}
	if err := s.repo.SavePuntoSiembra(ctx, punto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crear punto de siembra")
	}
	dto := puntoSiembraFromModel(punto)
	return &dto, nil
}

func (s *service) ActualizarPuntoSiembra(ctx context.Context, id uuid.UUID, req UpsertPuntoSiembraRequest) (*PuntoSiembraDTO, error) {
	punto, err := s.repo.FindPuntoSiembra(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "punto de siembra no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar punto de siembra")
	}
	if err := applyPuntoSiembra(punto, req); err != nil {
		return nil, err
	}
	if err := s.repo.SavePuntoSiembra(ctx, punto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "actualizar punto de siembra")
	}
	dto := puntoSiembraFromModel(punto)
	return &dto, nil
}

func (s *service) Fincas(ctx context.Context) ([]FincaDTO, error) {
	rows, err := s.repo.ListFincas(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar fincas")
	}
	out := make([]FincaDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fincaFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CrearFinca(ctx context.Context, req UpsertFincaRequest) (*FincaDTO, error) {
	finca := &models.Finca{Activo: true}
	if err := applyFinca(finca, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveFinca(ctx, finca); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crear finca")
	}
	dto := fincaFromModel(finca)
	return &dto, nil
}

func (s *service) ActualizarFinca(ctx context.Context, id uuid.UUID, req UpsertFincaRequest) (*FincaDTO, error) {
	finca, err := s.repo.FindFinca(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "finca no encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar finca")
	}
	if err := applyFinca(finca, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveFinca(ctx, finca); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "actualizar finca")
	}
	dto := fincaFromModel(finca)
	return &dto, nil
}

func applyPuntoSiembra(punto *models.PuntoSiembra, req UpsertPuntoSiembraRequest) error {
	departamentoID, err := parseOptionalUUID(req.DepartamentoID)
	if err != nil {
		return err
	}
	municipioID, err := parseOptionalUUID(req.MunicipioID)
	if err != nil {
		return err
	}
	punto.Nombre = strings.TrimSpace(req.Nombre)
	punto.Contacto = req.Contacto
	punto.Telefono = req.Telefono
	punto.DepartamentoID = departamentoID
	punto.MunicipioID = municipioID
	punto.Direccion = req.Direccion
	return nil
}

func applyFinca(finca *models.Finca, req UpsertFincaRequest) error {
	departamentoID, err := parseOptionalUUID(req.DepartamentoID)
	if err != nil {
		return err
	}
	municipioID, err := parseOptionalUUID(req.MunicipioID)
	if err != nil {
		return err
	}
	usuarioID, err := parseOptionalUUID(req.UsuarioID)
	if err != nil {
		return err
	}
	finca.Nombre = strings.TrimSpace(req.Nombre)
	finca.Contacto = req.Contacto
	finca.Telefono = req.Telefono
	finca.DepartamentoID = departamentoID
	finca.MunicipioID = municipioID
	finca.UsuarioID = usuarioID
	finca.Direccion = req.Direccion
	return nil
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identificador invalido")
	}
	return &id, nil
}
