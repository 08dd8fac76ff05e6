package contentapi

import (
	"log/slog"
	"net/http"

	"github.com/starquake/kioskquiz/internal/httputil"
	"github.com/starquake/kioskquiz/internal/material"
)

// HandleMaterialList returns all materials.
func HandleMaterialList(logger *slog.Logger, materialStore material.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		materials, err := materialStore.List(r.Context())
		if err != nil {
			writeStoreError(w, r, logger, "Failed to load materials", err)

			return
		}

		encode(w, r, logger, http.StatusOK, materials)
	})
}

// HandleMaterialGet returns a single material.
func HandleMaterialGet(logger *slog.Logger, materialStore material.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httputil.ParseIDFromPath(w, r, logger, "id")
		if !ok {
			return
		}

		m, err := materialStore.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, logger, "Failed to load material", err)

			return
		}

		encode(w, r, logger, http.StatusOK, m)
	})
}

// HandleMaterialCreate creates a material and returns it with status 201.
func HandleMaterialCreate(logger *slog.Logger, materialStore material.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := httputil.DecodeJSON[material.Patch](r)
		if err != nil {
			logger.WarnContext(r.Context(), "error decoding material", slog.Any("err", err))
			httputil.Error(w, logger, r, http.StatusBadRequest, "Invalid material")

			return
		}

		m, err := materialStore.Create(r.Context(), p)
		if err != nil {
			writeStoreError(w, r, logger, "Failed to create material", err)

			return
		}

		encode(w, r, logger, http.StatusCreated, m)
	})
}

// HandleMaterialUpdate merges the request body into a material.
// Returns 400 if the body moves the material to an ID that is already taken.
func HandleMaterialUpdate(logger *slog.Logger, materialStore material.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httputil.ParseIDFromPath(w, r, logger, "id")
		if !ok {
			return
		}

		p, err := httputil.DecodeJSON[material.Patch](r)
		if err != nil {
			logger.WarnContext(r.Context(), "error decoding material", slog.Any("err", err))
			httputil.Error(w, logger, r, http.StatusBadRequest, "Invalid material")

			return
		}

		m, err := materialStore.Update(r.Context(), id, p)
		if err != nil {
			writeStoreError(w, r, logger, "Failed to update material", err)

			return
		}

		encode(w, r, logger, http.StatusOK, m)
	})
}

// HandleMaterialDelete removes a material.
func HandleMaterialDelete(logger *slog.Logger, materialStore material.Store) http.Handler {
	type deleteResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httputil.ParseIDFromPath(w, r, logger, "id")
		if !ok {
			return
		}

		if err := materialStore.Delete(r.Context(), id); err != nil {
			writeStoreError(w, r, logger, "Failed to delete material", err)

			return
		}

		encode(w, r, logger, http.StatusOK, deleteResponse{Message: "Material deleted"})
	})
}
