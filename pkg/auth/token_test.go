package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agriconecta/backend/pkg/config"
	"github.com/agriconecta/backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "agriconecta",
		ExpirationMinutes: 60,
	}
	now := time.Now().UTC()
	userID := uuid.New()

	payload := AccessTokenPayload{
		UserID:  userID,
		Roles:   []enums.Rol{enums.RolPersonalVivero, enums.RolTecnicoCampo},
		IsStaff: true,
		JTI:     "jti-estable",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if !claims.IsStaff {
		t.Fatalf("is_staff not preserved")
	}
	set := claims.RolSet()
	if !set.Contains(enums.RolPersonalVivero) || !set.Contains(enums.RolTecnicoCampo) {
		t.Fatalf("roles not preserved: %v", claims.Roles)
	}
	if set.Contains(enums.RolAdministrador) {
		t.Fatalf("unexpected administrador in role set")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID != "jti-estable" {
		t.Fatalf("jti not preserved, got %s", claims.ID)
	}
	wantExpiry := now.Add(60 * time.Minute)
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Sub(wantExpiry).Abs() > time.Second {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
}

func TestMintAccessTokenRejectsInvalidRole(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "agriconecta", ExpirationMinutes: 60}
	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Roles:  []enums.Rol{"Gerente"},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid rol") {
		t.Fatalf("expected invalid rol error, got %v", err)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "agriconecta", ExpirationMinutes: 60}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Roles:  []enums.Rol{enums.RolAgricultor},
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	cfg.Secret = "otro"
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected signature validation failure")
	}
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "agriconecta", ExpirationMinutes: 60}
	past := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenPayload{
		UserID: uuid.New(),
		Roles:  []enums.Rol{enums.RolAgricultor},
		JTI:    "jti-vencido",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected expired-token error")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow-expired parse: %v", err)
	}
	if claims.ID != "jti-vencido" {
		t.Fatalf("jti not recovered, got %s", claims.ID)
	}
}
