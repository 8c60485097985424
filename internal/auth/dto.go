package auth

import "github.com/agriconecta/backend/internal/users"

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         *users.UsuarioDTO `json:"user"`
}

// RegisterRequest is the public self-registration payload.
type RegisterRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=8"`
	NombreCompleto string  `json:"nombre_completo" validate:"required"`
	Telefono       *string `json:"telefono,omitempty"`
	Direccion      *string `json:"direccion,omitempty"`
	MunicipioID    *string `json:"municipio_id,omitempty" validate:"omitempty,uuid"`
}

// RefreshRequest carries the expired access token plus the refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest carries the old and new credentials.
type ChangePasswordRequest struct {
	PasswordActual       string `json:"password_actual" validate:"required"`
	PasswordNueva        string `json:"password_nueva" validate:"required,min=8"`
	PasswordConfirmacion string `json:"password_confirmacion" validate:"required"`
}
