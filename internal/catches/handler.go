package catches

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pechomax/pechomax-api/internal/auth"
	"github.com/pechomax/pechomax-api/internal/game"
	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
	"github.com/pechomax/pechomax-api/internal/store"
)

// Handler holds catch HTTP handlers.
type Handler struct {
	store       *store.PostgresStore
	engine      *game.Engine
	uploads     *store.MinioStore
	maxFileSize int64
}

func NewHandler(st *store.PostgresStore, engine *game.Engine, uploads *store.MinioStore, maxFileSize int64) *Handler {
	return &Handler{store: st, engine: engine, uploads: uploads, maxFileSize: maxFileSize}
}

// List returns every catch.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListCatches(r.Context())
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

// Get returns a single catch.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, c)
}

// Create logs a new catch from a multipart form, uploads its pictures and
// runs the score/level engine.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid multipart form"))
		return
	}

	length, err := strconv.ParseFloat(r.FormValue("length"), 64)
	if err != nil || length <= 0 {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "length must be a positive number"))
		return
	}
	weight, err := strconv.ParseFloat(r.FormValue("weight"), 64)
	if err != nil || weight <= 0 {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "weight must be a positive number"))
		return
	}
	speciesID := r.FormValue("speciesId")
	if speciesID == "" {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "speciesId is required"))
		return
	}
	date, err := time.Parse("2006-01-02", r.FormValue("date"))
	if err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "date must be YYYY-MM-DD"))
		return
	}

	pictures := []string{}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["pictures"] {
			if fh.Size > h.maxFileSize {
				httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "file too large"))
				return
			}
			f, err := fh.Open()
			if err != nil {
				httpapi.WriteError(w, httpapi.Wrap(httpapi.KindInternal, "open upload", err))
				return
			}
			url, err := h.uploads.Upload(r.Context(), "catch", fh.Header.Get("Content-Type"), f, fh.Size)
			f.Close()
			if err != nil {
				httpapi.WriteError(w, httpapi.Wrap(httpapi.KindInternal, "upload picture", err))
				return
			}
			pictures = append(pictures, url)
		}
	}

	c := &models.Catch{
		Length:      length,
		Weight:      weight,
		Location:    r.FormValue("location"),
		Pictures:    pictures,
		Description: r.FormValue("description"),
		Date:        date,
		SpeciesID:   speciesID,
		UserID:      claims.ID,
	}
	created, err := h.engine.RecordCatch(r.Context(), claims.Username, c)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, created)
}

type updateRequest struct {
	Length      *float64 `json:"length"`
	Weight      *float64 `json:"weight"`
	Location    *string  `json:"location"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

// Update edits a catch owned by the caller (or any catch for an admin)
// and re-runs the score/level engine with delta semantics.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}

	c, err := h.store.GetCatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if c.UserID != claims.ID && claims.Role != models.RoleAdmin {
		// Hide other users' catches from non-owners.
		httpapi.WriteError(w, httpapi.E(httpapi.KindNotFound, "catch not found"))
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	if req.Length != nil {
		if *req.Length <= 0 {
			httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "length must be a positive number"))
			return
		}
		c.Length = *req.Length
	}
	if req.Weight != nil {
		if *req.Weight <= 0 {
			httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "weight must be a positive number"))
			return
		}
		c.Weight = *req.Weight
	}
	if req.Location != nil {
		c.Location = *req.Location
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "date must be YYYY-MM-DD"))
			return
		}
		c.Date = date
	}

	updated, err := h.engine.AmendCatch(r.Context(), claims.Username, c)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, updated)
}

// Delete removes a catch owned by the caller (or any catch for an admin).
// The owner's score keeps the points already earned.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	c, err := h.store.GetCatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if c.UserID != claims.ID && claims.Role != models.RoleAdmin {
		httpapi.WriteError(w, httpapi.E(httpapi.KindNotFound, "catch not found"))
		return
	}
	if err := h.store.DeleteCatch(r.Context(), c.ID); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"id": c.ID})
}
