package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/agriconecta/backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Roles   []enums.Rol
	IsStaff bool
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID   `json:"user_id"`
	Roles   []enums.Rol `json:"roles"`
	IsStaff bool        `json:"is_staff"`
	jwt.RegisteredClaims
}

// RolSet materializes the claim roles as a membership set.
func (c *AccessTokenClaims) RolSet() enums.RolSet {
	return enums.NewRolSet(c.Roles...)
}
