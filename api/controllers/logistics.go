package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agriconecta/backend/api/middleware"
	"github.com/agriconecta/backend/api/responses"
	"github.com/agriconecta/backend/api/validators"
	"github.com/agriconecta/backend/internal/logistics"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/logger"
)

func logisticsActor(r *http.Request) (logistics.Actor, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return logistics.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return logistics.Actor{UsuarioID: id, Roles: middleware.RolesFromContext(r.Context())}, nil
}

func RutasCrear(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req logistics.CrearRutaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruta, err := svc.Crear(r.Context(), actor, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ruta)
	}
}

func RutasActualizar(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "rutaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req logistics.ActualizarRutaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruta, err := svc.Actualizar(r.Context(), actor, id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ruta)
	}
}

func RutasActualizarParada(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rutaID, err := pathUUID(r, "rutaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pedidoID, err := pathUUID(r, "pedidoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req logistics.ActualizarParadaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruta, err := svc.ActualizarParada(r.Context(), actor, rutaID, pedidoID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ruta)
	}
}

func RutasList(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filter logistics.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("estado")); raw != "" {
			estado, err := enums.ParseEstadoRuta(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "estado invalido"))
				return
			}
			filter.Estado = &estado
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("tecnico_id")); raw != "" {
			tecnicoID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "tecnico_id invalido"))
				return
			}
			filter.TecnicoCampoID = &tecnicoID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("fecha")); raw != "" {
			fecha, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "fecha invalida, formato esperado YYYY-MM-DD"))
				return
			}
			filter.Fecha = &fecha
		}
		items, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func RutasGet(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "rutaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruta, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ruta)
	}
}

func RutasEliminar(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "rutaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Eliminar(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ruta eliminada"})
	}
}

func RutasIniciar(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "rutaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruta, err := svc.Iniciar(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ruta)
	}
}

func RutasFinalizar(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "rutaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruta, err := svc.Finalizar(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ruta)
	}
}

func RutasConfirmarEntrega(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "rutaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req logistics.ConfirmarEntregaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruta, err := svc.ConfirmarEntrega(r.Context(), actor, id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ruta)
	}
}

func RutasValidarCapacidad(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "rutaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ValidarCapacidad(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func RutasEstadisticas(svc logistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := logisticsActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Estadisticas(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
