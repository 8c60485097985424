package controllers

import (
	"net/http"
	"strings"

	"github.com/agriconecta/backend/api/responses"
	"github.com/agriconecta/backend/api/validators"
	"github.com/agriconecta/backend/internal/catalog"
	"github.com/agriconecta/backend/pkg/logger"
)

func CategoriasList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Categorias(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func CategoriasCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.UpsertCategoriaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoria, err := svc.CrearCategoria(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, categoria)
	}
}

func CategoriasUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "categoriaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req catalog.UpsertCategoriaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoria, err := svc.ActualizarCategoria(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categoria)
	}
}

func PilonesList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoriaID, err := validators.ParseQueryUUID(r, "categoria_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		soloActivos, err := validators.ParseQueryBool(r, "solo_activos", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stockBajo, err := validators.ParseQueryBool(r, "stock_bajo", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := catalog.ListFilter{
			Search:      strings.TrimSpace(r.URL.Query().Get("search")),
			CategoriaID: categoriaID,
			StockBajo:   stockBajo,
			SoloActivos: soloActivos,
		}
		items, err := svc.Pilones(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func PilonesGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "pilonId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pilon, err := svc.Pilon(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pilon)
	}
}

// PilonesDisponibles lists active varieties with stock, the public storefront
// view.
func PilonesDisponibles(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Disponibles(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func PilonesStockBajo(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.StockBajo(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func PilonesCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.UpsertPilonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pilon, err := svc.CrearPilon(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, pilon)
	}
}

func PilonesUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "pilonId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req catalog.UpsertPilonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pilon, err := svc.ActualizarPilon(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pilon)
	}
}

func PilonesDeactivate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "pilonId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DesactivarPilon(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "pilon desactivado"})
	}
}
