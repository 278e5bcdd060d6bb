package auth

import (
	"context"
	"net/mail"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

// UserStore defines the persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string, role models.Role) (*models.User, error)
	CreateFirstAdmin(ctx context.Context, username, email, hashedPw string) (*models.User, error)
	GetUserByCredential(ctx context.Context, credential string) (*models.User, error)
}

// Service orchestrates registration, first-admin bootstrap and login.
type Service struct {
	users  UserStore
	hasher *Hasher
	codec  *TokenCodec
}

func NewService(users UserStore, hasher *Hasher, codec *TokenCodec) *Service {
	return &Service{users: users, hasher: hasher, codec: codec}
}

func validateRegistration(req models.RegisterRequest) error {
	if len(req.Username) < 3 {
		return httpapi.E(httpapi.KindValidation, "username must be at least 3 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return httpapi.E(httpapi.KindValidation, "email is not valid")
	}
	if len(req.Password) < 8 {
		return httpapi.E(httpapi.KindValidation, "password must be at least 8 characters")
	}
	return nil
}

// Bootstrap creates the first admin account. It fails with Conflict once
// any admin exists; the store makes the check-and-insert atomic.
func (s *Service) Bootstrap(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "hash password", err)
	}
	return s.users.CreateFirstAdmin(ctx, req.Username, req.Email, hashed)
}

// Register creates a regular account and issues a session token for it.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (Claims, string, error) {
	if err := validateRegistration(req); err != nil {
		return Claims{}, "", err
	}
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return Claims{}, "", httpapi.Wrap(httpapi.KindInternal, "hash password", err)
	}
	user, err := s.users.CreateUser(ctx, req.Username, req.Email, hashed, models.RoleUser)
	if err != nil {
		return Claims{}, "", err
	}
	return s.issue(user)
}

// Login verifies credentials and issues a session token. The credential
// matches a username or an email; no match is NotFound, a password
// mismatch is Unauthorized.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (Claims, string, error) {
	if req.Credential == "" || req.Password == "" {
		return Claims{}, "", httpapi.E(httpapi.KindValidation, "credential and password are required")
	}
	user, err := s.users.GetUserByCredential(ctx, req.Credential)
	if err != nil {
		return Claims{}, "", err
	}
	if !s.hasher.Verify(req.Password, user.Password) {
		return Claims{}, "", httpapi.E(httpapi.KindUnauthorized, "wrong password")
	}
	return s.issue(user)
}

// Issue builds and signs a session for an already-authenticated account,
// used when a profile update refreshes the cookie.
func (s *Service) Issue(user *models.User) (Claims, string, error) {
	return s.issue(user)
}

func (s *Service) issue(user *models.User) (Claims, string, error) {
	claims := ClaimsFromUser(user)
	token, err := s.codec.Sign(claims)
	if err != nil {
		return Claims{}, "", httpapi.Wrap(httpapi.KindInternal, "issue session", err)
	}
	return claims, token, nil
}
