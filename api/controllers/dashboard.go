package controllers

import (
	"net/http"
	"strings"

	"github.com/agriconecta/backend/api/middleware"
	"github.com/agriconecta/backend/api/responses"
	"github.com/agriconecta/backend/internal/dashboard"
	"github.com/agriconecta/backend/internal/export"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/logger"
)

func estadisticasRequest(r *http.Request) dashboard.EstadisticasRequest {
	q := r.URL.Query()
	req := dashboard.EstadisticasRequest{
		Rango: dashboard.Rango(strings.TrimSpace(q.Get("rango"))),
	}
	if raw := strings.TrimSpace(q.Get("fecha_inicio")); raw != "" {
		req.FechaInicio = &raw
	}
	if raw := strings.TrimSpace(q.Get("fecha_fin")); raw != "" {
		req.FechaFin = &raw
	}
	return req
}

func DashboardResumen(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resumen, err := svc.Resumen(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resumen)
	}
}

func DashboardEstadisticas(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Estadisticas(r.Context(), estadisticasRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func DashboardMetricas(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		actor := dashboard.Actor{UsuarioID: userID, Roles: middleware.RolesFromContext(r.Context())}
		metricas, err := svc.Metricas(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, metricas)
	}
}

func DashboardExport(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		archivo, err := svc.Exportar(r.Context(), estadisticasRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, archivo.Nombre, export.ContentType, archivo.Contenido)
	}
}
