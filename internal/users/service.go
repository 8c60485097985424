package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/config"
	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/security"
)

// Service defines the behavior needed by the users controller.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]UsuarioDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UsuarioDTO, error)
	Create(ctx context.Context, req CreateUsuarioRequest) (*UsuarioDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUsuarioRequest) (*UsuarioDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	AsignarRol(ctx context.Context, id uuid.UUID, req AsignarRolRequest) (*UsuarioDTO, error)
	Parcelas(ctx context.Context, id uuid.UUID) ([]ParcelaDTO, error)
	CrearParcela(ctx context.Context, id uuid.UUID, req CreateParcelaRequest) (*ParcelaDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo        Repository
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           Repository
	TxRunner       txRunner
	PasswordConfig config.PasswordConfig
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.TxRunner,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]UsuarioDTO, error) {
	usuarios, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar usuarios")
	}
	out := make([]UsuarioDTO, 0, len(usuarios))
	for i := range usuarios {
		out = append(out, *FromModel(&usuarios[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UsuarioDTO, error) {
	user, err := s.findUsuario(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Create(ctx context.Context, req CreateUsuarioRequest) (*UsuarioDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "ya existe un usuario con ese email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verificar email")
	}

	roles := make([]enums.Rol, 0, len(req.Roles))
	for _, nombre := range req.Roles {
		rol, err := enums.ParseRol(nombre)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rol desconocido %q", nombre))
		}
		roles = append(roles, rol)
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	municipioID, err := parseOptionalUUID(req.MunicipioID)
	if err != nil {
		return nil, err
	}

	user := &models.Usuario{
		Email:          email,
		PasswordHash:   hash,
		NombreCompleto: strings.TrimSpace(req.NombreCompleto),
		Telefono:       req.Telefono,
		Direccion:      req.Direccion,
		MunicipioID:    municipioID,
		Activo:         true,
		IsStaff:        req.IsStaff,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		for _, rol := range roles {
			rolRow, err := repo.FindRolByNombre(ctx, string(rol))
			if err != nil {
				return fmt.Errorf("rol %s: %w", rol, err)
			}
			asignacion := &models.UsuarioRol{
				UsuarioID: user.ID,
				RolID:     rolRow.ID,
				Activo:    true,
			}
			if err := repo.CreateAsignacion(ctx, asignacion); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crear usuario")
	}

	return s.Get(ctx, user.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateUsuarioRequest) (*UsuarioDTO, error) {
	user, err := s.findUsuario(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.NombreCompleto != nil {
		user.NombreCompleto = strings.TrimSpace(*req.NombreCompleto)
	}
	if req.Telefono != nil {
		user.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		user.Direccion = req.Direccion
	}
	if req.MunicipioID != nil {
		municipioID, err := parseOptionalUUID(req.MunicipioID)
		if err != nil {
			return nil, err
		}
		user.MunicipioID = municipioID
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "actualizar usuario")
	}
	return FromModel(user), nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findUsuario(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "desactivar usuario")
	}
	return nil
}

func (s *service) AsignarRol(ctx context.Context, id uuid.UUID, req AsignarRolRequest) (*UsuarioDTO, error) {
	rol, err := enums.ParseRol(req.Rol)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rol desconocido %q", req.Rol))
	}

	if _, err := s.findUsuario(ctx, id); err != nil {
		return nil, err
	}

	rolRow, err := s.repo.FindRolByNombre(ctx, string(rol))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar rol")
	}

	asignacion, err := s.repo.FindAsignacion(ctx, id, rolRow.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		nueva := &models.UsuarioRol{UsuarioID: id, RolID: rolRow.ID, Activo: true}
		if err := s.repo.CreateAsignacion(ctx, nueva); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "asignar rol")
		}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar asignacion")
	case asignacion.Activo:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "el usuario ya tiene este rol")
	default:
		if err := s.repo.ReactivateAsignacion(ctx, asignacion.ID, time.Now().UTC()); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reactivar asignacion")
		}
	}

	return s.Get(ctx, id)
}

func (s *service) Parcelas(ctx context.Context, id uuid.UUID) ([]ParcelaDTO, error) {
	if _, err := s.findUsuario(ctx, id); err != nil {
		return nil, err
	}
	parcelas, err := s.repo.ListParcelas(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listar parcelas")
	}
	out := make([]ParcelaDTO, 0, len(parcelas))
	for i := range parcelas {
		out = append(out, *ParcelaFromModel(&parcelas[i]))
	}
	return out, nil
}

func (s *service) CrearParcela(ctx context.Context, id uuid.UUID, req CreateParcelaRequest) (*ParcelaDTO, error) {
	if _, err := s.findUsuario(ctx, id); err != nil {
		return nil, err
	}

	area, err := decimal.NewFromString(req.AreaHectareas)
	if err != nil || area.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "area_hectareas invalida")
	}
	municipioID, err := parseOptionalUUID(req.MunicipioID)
	if err != nil {
		return nil, err
	}

	parcela := &models.Parcela{
		UsuarioID:     id,
		MunicipioID:   municipioID,
		Nombre:        strings.TrimSpace(req.Nombre),
		Direccion:     req.Direccion,
		AreaHectareas: area,
		TipoCultivo:   req.TipoCultivo,
		Activa:        true,
		Observaciones: req.Observaciones,
	}
	if err := s.repo.CreateParcela(ctx, parcela); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crear parcela")
	}
	return ParcelaFromModel(parcela), nil
}

func (s *service) findUsuario(ctx context.Context, id uuid.UUID) (*models.Usuario, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "usuario no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar usuario")
	}
	return user, nil
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
