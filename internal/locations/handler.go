package locations

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pechomax/pechomax-api/internal/auth"
	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
	"github.com/pechomax/pechomax-api/internal/store"
)

// Handler holds fishing-spot HTTP handlers.
type Handler struct {
	store *store.PostgresStore
}

func NewHandler(st *store.PostgresStore) *Handler {
	return &Handler{store: st}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListLocations(r.Context())
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	loc, err := h.store.GetLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, loc)
}

type locationRequest struct {
	Longitude   string `json:"longitude"`
	Latitude    string `json:"latitude"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create registers a fishing spot owned by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	if req.Longitude == "" || req.Latitude == "" || req.Name == "" {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "longitude, latitude and name are required"))
		return
	}
	loc, err := h.store.CreateLocation(r.Context(), &models.Location{
		Longitude:   req.Longitude,
		Latitude:    req.Latitude,
		Name:        req.Name,
		Description: req.Description,
		UserID:      claims.ID,
	})
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, loc)
}

// Delete removes a fishing spot owned by the caller, or any spot for an
// admin.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	loc, err := h.store.GetLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if loc.UserID != claims.ID && claims.Role != models.RoleAdmin {
		httpapi.WriteError(w, httpapi.E(httpapi.KindNotFound, "location not found"))
		return
	}
	if err := h.store.DeleteLocation(r.Context(), loc.ID); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"id": loc.ID})
}
