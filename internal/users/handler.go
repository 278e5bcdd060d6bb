package users

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pechomax/pechomax-api/internal/auth"
	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/leaderboard"
	"github.com/pechomax/pechomax-api/internal/models"
	"github.com/pechomax/pechomax-api/internal/store"
)

// Handler holds user HTTP handlers.
type Handler struct {
	store       *store.PostgresStore
	svc         *auth.Service
	hasher      *auth.Hasher
	signer      *auth.CookieSigner
	uploads     *store.MinioStore
	board       *leaderboard.Board // optional
	sessionTTL  time.Duration
	pageSize    int
	maxFileSize int64
}

func NewHandler(
	st *store.PostgresStore,
	svc *auth.Service,
	hasher *auth.Hasher,
	signer *auth.CookieSigner,
	uploads *store.MinioStore,
	board *leaderboard.Board,
	sessionTTL time.Duration,
	pageSize int,
	maxFileSize int64,
) *Handler {
	return &Handler{
		store:       st,
		svc:         svc,
		hasher:      hasher,
		signer:      signer,
		uploads:     uploads,
		board:       board,
		sessionTTL:  sessionTTL,
		pageSize:    pageSize,
		maxFileSize: maxFileSize,
	}
}

// List returns one page of accounts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "page must be a positive integer"))
			return
		}
		page = n
	}
	list, err := h.store.ListUsers(r.Context(), page, h.pageSize)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

// Self returns the caller's own account.
func (h *Handler) Self(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	user, err := h.store.GetUserByID(r.Context(), claims.ID)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, user)
}

// ByUsername returns a public profile.
func (h *Handler) ByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, user)
}

type createRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Create lets an admin create an account with an explicit role.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if len(req.Username) < 3 {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "username must be at least 3 characters"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "email is not valid"))
		return
	}
	if len(req.Password) < 8 {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "password must be at least 8 characters"))
		return
	}
	if !req.Role.Valid() {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "role must be Admin or User"))
		return
	}
	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		httpapi.WriteError(w, httpapi.Wrap(httpapi.KindInternal, "hash password", err))
		return
	}
	user, err := h.store.CreateUser(r.Context(), req.Username, req.Email, hashed, req.Role)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, user)
}

// UpdateSelf edits the caller's profile from a multipart form and
// refreshes the session cookie with the new claims.
func (h *Handler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	upd, err := h.parseUpdateForm(r, false)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	user, err := h.store.UpdateUser(r.Context(), claims.ID, *upd)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	h.reissueSession(w, user)
	httpapi.WriteJSON(w, http.StatusOK, user)
}

// UpdateByID lets an admin edit any account, including role and score.
// A score edit re-resolves the level tier. Editing your own account
// refreshes your session cookie.
func (h *Handler) UpdateByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	id := chi.URLParam(r, "id")
	upd, err := h.parseUpdateForm(r, true)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	user, err := h.store.UpdateUser(r.Context(), id, *upd)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if upd.Score != nil {
		if err := h.store.AssignLevelForScore(r.Context(), id, *upd.Score); err != nil {
			httpapi.WriteError(w, err)
			return
		}
		if h.board != nil {
			if err := h.board.SetScore(r.Context(), user.ID, user.Username, user.Score); err != nil {
				slog.Warn("leaderboard update failed", "user_id", user.ID, "error", err)
			}
		}
	}
	if id == claims.ID {
		h.reissueSession(w, user)
	}
	httpapi.WriteJSON(w, http.StatusOK, user)
}

// DeleteSelf removes the caller's own account and clears the session.
// The cookie must go out before the body: headers set after WriteHeader
// are dropped.
func (h *Handler) DeleteSelf(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	if err := h.store.DeleteUser(r.Context(), claims.ID); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if h.board != nil {
		if err := h.board.Remove(r.Context(), claims.ID); err != nil {
			slog.Warn("leaderboard remove failed", "user_id", claims.ID, "error", err)
		}
	}
	auth.ClearSession(w)
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"id": claims.ID})
}

// DeleteByID lets an admin remove any account.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	h.deleteUser(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if h.board != nil {
		if err := h.board.Remove(r.Context(), id); err != nil {
			slog.Warn("leaderboard remove failed", "user_id", id, "error", err)
		}
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

// Leaderboard returns the top scorers, served from the Redis cache and
// rebuilt from Postgres when the cache is empty or failing.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if h.board != nil {
		entries, err := h.board.Top(r.Context(), h.pageSize)
		if err == nil && len(entries) > 0 {
			httpapi.WriteJSON(w, http.StatusOK, entries)
			return
		}
		if err != nil {
			slog.Warn("leaderboard cache read failed", "error", err)
		}
	}
	entries, err := h.store.TopUsersByScore(r.Context(), h.pageSize)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if h.board != nil && len(entries) > 0 {
		if err := h.board.Rebuild(r.Context(), entries); err != nil {
			slog.Warn("leaderboard rebuild failed", "error", err)
		}
	}
	httpapi.WriteJSON(w, http.StatusOK, entries)
}

// parseUpdateForm reads the optional profile fields of a multipart
// update, hashing a new password and uploading a new profile picture
// when present. Admin-only fields are honored only when admin is true.
func (h *Handler) parseUpdateForm(r *http.Request, admin bool) (*models.UserUpdate, error) {
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		return nil, httpapi.E(httpapi.KindValidation, "invalid multipart form")
	}
	upd := &models.UserUpdate{}

	if v, ok := formValue(r, "username"); ok {
		if len(v) < 3 {
			return nil, httpapi.E(httpapi.KindValidation, "username must be at least 3 characters")
		}
		upd.Username = &v
	}
	if v, ok := formValue(r, "email"); ok {
		if _, err := mail.ParseAddress(v); err != nil {
			return nil, httpapi.E(httpapi.KindValidation, "email is not valid")
		}
		upd.Email = &v
	}
	if v, ok := formValue(r, "password"); ok {
		if len(v) < 8 {
			return nil, httpapi.E(httpapi.KindValidation, "password must be at least 8 characters")
		}
		hashed, err := h.hasher.Hash(v)
		if err != nil {
			return nil, httpapi.Wrap(httpapi.KindInternal, "hash password", err)
		}
		upd.Password = &hashed
	}
	if v, ok := formValue(r, "phoneNumber"); ok {
		upd.PhoneNumber = &v
	}
	if v, ok := formValue(r, "city"); ok {
		upd.City = &v
	}
	if v, ok := formValue(r, "region"); ok {
		upd.Region = &v
	}
	if v, ok := formValue(r, "zipCode"); ok {
		upd.ZipCode = &v
	}
	if admin {
		if v, ok := formValue(r, "role"); ok {
			role := models.Role(v)
			if !role.Valid() {
				return nil, httpapi.E(httpapi.KindValidation, "role must be Admin or User")
			}
			upd.Role = &role
		}
		if v, ok := formValue(r, "score"); ok {
			score, err := strconv.Atoi(v)
			if err != nil || score < 0 {
				return nil, httpapi.E(httpapi.KindValidation, "score must be a non-negative integer")
			}
			upd.Score = &score
		}
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["profilePic"]; len(files) > 0 {
			fh := files[0]
			if fh.Size > h.maxFileSize {
				return nil, httpapi.E(httpapi.KindValidation, "file too large")
			}
			f, err := fh.Open()
			if err != nil {
				return nil, httpapi.Wrap(httpapi.KindInternal, "open upload", err)
			}
			defer f.Close()
			url, err := h.uploads.Upload(r.Context(), "profile_pic", fh.Header.Get("Content-Type"), f, fh.Size)
			if err != nil {
				return nil, httpapi.Wrap(httpapi.KindInternal, "upload profile picture", err)
			}
			upd.ProfilePic = &url
		}
	}
	return upd, nil
}

// reissueSession refreshes the cookie so the claims track the updated
// account. Failure to re-sign is logged, not fatal: the old cookie is
// still valid.
func (h *Handler) reissueSession(w http.ResponseWriter, user *models.User) {
	_, token, err := h.svc.Issue(user)
	if err != nil {
		slog.Warn("session refresh failed", "user_id", user.ID, "error", err)
		return
	}
	auth.SetSession(w, h.signer, token, h.sessionTTL)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return httpapi.E(httpapi.KindValidation, "invalid request body")
	}
	return nil
}

func formValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.MultipartForm.Value[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
