package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/internal/users"
	"github.com/agriconecta/backend/pkg/auth/session"
	"github.com/agriconecta/backend/pkg/config"
	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/security"
)

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16,
}

var testJWTCfg = config.JWTConfig{
	Secret: "secreto", Issuer: "agriconecta", ExpirationMinutes: 60, RefreshTokenTTLMinutes: 10080,
}

type fakeUserRepo struct {
	porID    map[uuid.UUID]*models.Usuario
	porEmail map[string]*models.Usuario
	roles    map[string]*models.Rol
	granted  []string
}

func newFakeUserRepo() *fakeUserRepo {
	repo := &fakeUserRepo{
		porID:    make(map[uuid.UUID]*models.Usuario),
		porEmail: make(map[string]*models.Usuario),
		roles:    make(map[string]*models.Rol),
	}
	for _, nombre := range []string{"Administrador", "Personal Vivero", "Tecnico Campo", "Agricultor"} {
		repo.roles[nombre] = &models.Rol{ID: uuid.New(), NombreRol: nombre}
	}
	return repo
}

func (f *fakeUserRepo) agregar(email, password string, activo bool, roles ...string) *models.Usuario {
	hash, _ := security.HashPassword(password, testPasswordCfg)
	user := &models.Usuario{ID: uuid.New(), Email: email, PasswordHash: hash, Activo: activo}
	for _, nombre := range roles {
		rol := f.roles[nombre]
		user.Roles = append(user.Roles, models.UsuarioRol{
			ID: uuid.New(), UsuarioID: user.ID, RolID: rol.ID, Rol: rol, Activo: true,
		})
	}
	f.porID[user.ID] = user
	f.porEmail[email] = user
	return user
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) users.Repository { return f }

func (f *fakeUserRepo) Create(_ context.Context, user *models.Usuario) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.porID[user.ID] = user
	f.porEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Usuario, error) {
	u, ok := f.porID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.Usuario, error) {
	u, ok := f.porEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) List(_ context.Context, _ users.ListFilter) ([]models.Usuario, error) {
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.Usuario) error {
	f.porID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Deactivate(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeUserRepo) UpdateUltimoAcceso(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := f.porID[id]; ok {
		u.UltimoAcceso = &at
	}
	return nil
}

func (f *fakeUserRepo) FindRolByNombre(_ context.Context, nombre string) (*models.Rol, error) {
	rol, ok := f.roles[nombre]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rol, nil
}

func (f *fakeUserRepo) FindAsignacion(_ context.Context, _, _ uuid.UUID) (*models.UsuarioRol, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) CreateAsignacion(_ context.Context, asignacion *models.UsuarioRol) error {
	user := f.porID[asignacion.UsuarioID]
	for nombre, rol := range f.roles {
		if rol.ID == asignacion.RolID {
			f.granted = append(f.granted, nombre)
			asignacion.Rol = rol
		}
	}
	user.Roles = append(user.Roles, *asignacion)
	return nil
}

func (f *fakeUserRepo) ReactivateAsignacion(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

func (f *fakeUserRepo) ListParcelas(_ context.Context, _ uuid.UUID) ([]models.Parcela, error) {
	return nil, nil
}

func (f *fakeUserRepo) CreateParcela(_ context.Context, _ *models.Parcela) error { return nil }

type fakeSession struct {
	revoked []string
}

func (f *fakeSession) Generate(_ context.Context, accessID string) (string, error) {
	return "refresh-" + accessID, nil
}

func (f *fakeSession) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if provided != "refresh-"+oldAccessID {
		return "", "", session.ErrInvalidRefreshToken
	}
	next := uuid.NewString()
	return next, "refresh-" + next, nil
}

func (f *fakeSession) Revoke(_ context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

type fakeLimiter struct {
	allowed bool
	calls   int
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, _ string, _ int64, _ time.Duration) (bool, int64, error) {
	f.calls++
	return f.allowed, int64(f.calls), nil
}

type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func newTestService(t *testing.T, repo *fakeUserRepo, limiter loginLimiter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: &fakeSession{},
		LoginLimiter:   limiter,
		TxRunner:       fakeTx{},
		JWTConfig:      testJWTCfg,
		PasswordConfig: testPasswordCfg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestLoginReturnsTokensAndRecordsAccess(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.agregar("maria@example.com", "secreta123", true, "Personal Vivero")
	svc := newTestService(t, repo, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "MARIA@example.com", Password: "secreta123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}
	if user.UltimoAcceso == nil {
		t.Fatalf("ultimo_acceso not recorded")
	}
	if len(resp.User.Roles) != 1 || resp.User.Roles[0] != "Personal Vivero" {
		t.Fatalf("unexpected roles %v", resp.User.Roles)
	}
}

func TestLoginRejectsWrongPasswordAndInactive(t *testing.T) {
	repo := newFakeUserRepo()
	repo.agregar("activo@example.com", "secreta123", true, "Agricultor")
	repo.agregar("baja@example.com", "secreta123", false, "Agricultor")
	svc := newTestService(t, repo, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "activo@example.com", Password: "otra"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "baja@example.com", Password: "secreta123"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nadie@example.com", Password: "secreta123"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginHonorsRateLimit(t *testing.T) {
	repo := newFakeUserRepo()
	repo.agregar("maria@example.com", "secreta123", true, "Agricultor")
	svc := newTestService(t, repo, &fakeLimiter{allowed: false})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "maria@example.com", Password: "secreta123"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRegisterAssignsAgricultor(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:          "Nuevo@Example.com",
		Password:       "secreta123",
		NombreCompleto: "Nuevo Agricultor",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(repo.granted) != 1 || repo.granted[0] != string(enums.RolAgricultor) {
		t.Fatalf("expected Agricultor grant, got %v", repo.granted)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected auto-login token")
	}
	if resp.User.Email != "nuevo@example.com" {
		t.Fatalf("email not normalized: %s", resp.User.Email)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.agregar("dup@example.com", "secreta123", true, "Agricultor")
	svc := newTestService(t, repo, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:          "dup@example.com",
		Password:       "secreta123",
		NombreCompleto: "Duplicado",
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestChangePasswordGuards(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.agregar("maria@example.com", "vieja1234", true, "Agricultor")
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		PasswordActual: "vieja1234", PasswordNueva: "nueva1234", PasswordConfirmacion: "distinta",
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		PasswordActual: "equivocada", PasswordNueva: "nueva1234", PasswordConfirmacion: "nueva1234",
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	if err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		PasswordActual: "vieja1234", PasswordNueva: "nueva1234", PasswordConfirmacion: "nueva1234",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	ok, err := security.VerifyPassword("nueva1234", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password not persisted")
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)

	_, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: "no-es-jwt", RefreshToken: "x"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newFakeUserRepo()
	sess := &fakeSession{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sess,
		TxRunner:       fakeTx{},
		JWTConfig:      testJWTCfg,
		PasswordConfig: testPasswordCfg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Logout(context.Background(), "jti-activo"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sess.revoked) != 1 || sess.revoked[0] != "jti-activo" {
		t.Fatalf("session not revoked: %v", sess.revoked)
	}
}
