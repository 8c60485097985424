package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/internal/users"
	pkgAuth "github.com/agriconecta/backend/pkg/auth"
	"github.com/agriconecta/backend/pkg/auth/session"
	"github.com/agriconecta/backend/pkg/config"
	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/security"
)

const invalidCredentialsMessage = "credenciales invalidas"

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessID string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type loginLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	users       users.Repository
	session     sessionManager
	limiter     loginLimiter
	tx          txRunner
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       users.Repository
	SessionManager sessionManager
	LoginLimiter   loginLimiter
	TxRunner       txRunner
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		limiter:     params.LoginLimiter,
		tx:          params.TxRunner,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.allowLoginAttempt(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.authenticate(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.users.UpdateUltimoAcceso(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "actualizar ultimo acceso")
	}
	user.UltimoAcceso = &now

	return s.issueTokens(ctx, user, now)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "ya existe un usuario con ese email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verificar email")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var municipioID *uuid.UUID
	if req.MunicipioID != nil && strings.TrimSpace(*req.MunicipioID) != "" {
		parsed, err := uuid.Parse(*req.MunicipioID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "municipio_id invalido")
		}
		municipioID = &parsed
	}

	user := &models.Usuario{
		Email:          email,
		PasswordHash:   hash,
		NombreCompleto: strings.TrimSpace(req.NombreCompleto),
		Telefono:       req.Telefono,
		Direccion:      req.Direccion,
		MunicipioID:    municipioID,
		Activo:         true,
	}

	// Public registration always lands in the Agricultor role.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		rol, err := repo.FindRolByNombre(ctx, string(enums.RolAgricultor))
		if err != nil {
			return fmt.Errorf("rol agricultor: %w", err)
		}
		return repo.CreateAsignacion(ctx, &models.UsuarioRol{
			UsuarioID: user.ID,
			RolID:     rol.ID,
			Activo:    true,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "registrar usuario")
	}

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cargar usuario")
	}
	return s.issueTokens(ctx, created, time.Now().UTC())
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotar sesion")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil || !user.Activo {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		Roles:   activeRoles(user),
		IsStaff: user.IsStaff,
		JTI:     newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revocar sesion")
	}
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	if req.PasswordNueva != req.PasswordConfirmacion {
		return pkgerrors.New(pkgerrors.CodeValidation, "la confirmacion no coincide con la nueva password")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "usuario no encontrado")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar usuario")
	}

	valid, err := security.VerifyPassword(req.PasswordActual, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verificar password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeValidation, "la password actual es incorrecta")
	}

	hash, err := security.HashPassword(req.PasswordNueva, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user.PasswordHash = hash

	if err := s.users.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "actualizar password")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Usuario, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buscar usuario")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verificar password")
	}
	if !valid || !user.Activo {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.Usuario, now time.Time) (*LoginResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		Roles:   activeRoles(user),
		IsStaff: user.IsStaff,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "guardar refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) allowLoginAttempt(ctx context.Context, email string) error {
	if s.limiter == nil || email == "" {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, "login:"+email, loginRateLimit, loginRateWindow)
	if err != nil {
		// Redis being down must not lock everyone out.
		return nil
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeValidation, "demasiados intentos de inicio de sesion, intente mas tarde")
	}
	return nil
}

func activeRoles(user *models.Usuario) []enums.Rol {
	roles := make([]enums.Rol, 0, len(user.Roles))
	for _, asignacion := range user.Roles {
		if !asignacion.Activo || asignacion.Rol == nil {
			continue
		}
		if rol, err := enums.ParseRol(asignacion.Rol.NombreRol); err == nil {
			roles = append(roles, rol)
		}
	}
	return roles
}
