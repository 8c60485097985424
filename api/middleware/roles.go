package middleware

import (
	"net/http"

	"github.com/agriconecta/backend/api/responses"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/logger"
)

// RequireRoles rejects callers whose role set intersects none of the allowed
// roles.
func RequireRoles(logg *logger.Logger, allowed ...enums.Rol) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RolesFromContext(r.Context()).ContainsAny(allowed...) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "rol insuficiente"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
