package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc    *Service
	signer *CookieSigner
	ttl    time.Duration
}

func NewHandler(svc *Service, signer *CookieSigner, ttl time.Duration) *Handler {
	return &Handler{svc: svc, signer: signer, ttl: ttl}
}

// Init creates the bootstrap admin account. No session is issued; the
// admin logs in afterwards like everyone else.
func (h *Handler) Init(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	user, err := h.svc.Bootstrap(r.Context(), req)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, user)
}

// Register creates a new account and opens a session for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	claims, token, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	SetSession(w, h.signer, token, h.ttl)
	httpapi.WriteJSON(w, http.StatusCreated, claims)
}

// Login authenticates a credential/password pair and opens a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, httpapi.E(httpapi.KindValidation, "invalid request body"))
		return
	}
	claims, token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	SetSession(w, h.signer, token, h.ttl)
	httpapi.WriteJSON(w, http.StatusOK, claims)
}

// Introspect returns the claims of the current session.
func (h *Handler) Introspect(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, claims)
}

// Logout clears the session cookie. Tokens are self-contained, so there
// is nothing server-side to revoke.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSession(w)
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
