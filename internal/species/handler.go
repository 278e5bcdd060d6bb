package species

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/store"
)

// Handler holds species HTTP handlers. Reads are public, writes are
// admin-gated at the router.
type Handler struct {
	store *store.PostgresStore
}

func NewHandler(st *store.PostgresStore) *Handler {
	return &Handler{store: st}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListSpecies(r.Context())
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sp, err := h.store.GetSpecies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, sp)
}

type speciesRequest struct {
	Name       string `json:"name"`
	PointValue int    `json:"point_value"`
}

func (req *speciesRequest) validate() error {
	if req.Name == "" {
		return httpapi.E(httpapi.KindValidation, "name is required")
	}
	if req.PointValue < 0 {
		return httpapi.E(httpapi.KindValidation, "point_value must be non-negative")
	}
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req speciesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	sp, err := h.store.CreateSpecies(r.Context(), req.Name, req.PointValue)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, sp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req speciesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	sp, err := h.store.UpdateSpecies(r.Context(), chi.URLParam(r, "id"), req.Name, req.PointValue)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, sp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteSpecies(r.Context(), id); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}
