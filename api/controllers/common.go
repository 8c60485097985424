package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agriconecta/backend/api/middleware"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

// pathUUID parses a chi route parameter as a uuid.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "identificador invalido").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

// callerID returns the authenticated user id or an unauthorized error.
func callerID(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}
