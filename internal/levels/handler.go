package levels

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/store"
)

// Handler holds level-tier HTTP handlers. Writes are admin-gated at the
// router.
type Handler struct {
	store *store.PostgresStore
}

func NewHandler(st *store.PostgresStore) *Handler {
	return &Handler{store: st}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListLevels(r.Context())
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

type levelRequest struct {
	Title string `json:"title"`
	Value int    `json:"value"`
	Start int    `json:"start"`
	End   *int   `json:"end"`
}

func (req *levelRequest) validate() error {
	if req.Title == "" {
		return httpapi.E(httpapi.KindValidation, "title is required")
	}
	if req.Start < 0 {
		return httpapi.E(httpapi.KindValidation, "start must be non-negative")
	}
	if req.End != nil && *req.End <= req.Start {
		return httpapi.E(httpapi.KindValidation, "end must be greater than start")
	}
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	level, err := h.store.CreateLevel(r.Context(), req.Title, req.Value, req.Start, req.End)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, level)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	level, err := h.store.UpdateLevel(r.Context(), chi.URLParam(r, "id"), req.Title, req.Value, req.Start, req.End)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, level)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteLevel(r.Context(), id); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}
