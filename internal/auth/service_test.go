package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

// fakeUserStore keeps accounts in memory with the same uniqueness and
// lookup semantics as the Postgres store.
type fakeUserStore struct {
	users  []*models.User
	nextID int
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, email, hashedPw string, role models.Role) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return nil, httpapi.E(httpapi.KindConflict, "user already exists")
		}
	}
	f.nextID++
	u := &models.User{
		ID:       string(rune('a' + f.nextID)),
		Username: username,
		Email:    email,
		Password: hashedPw,
		Role:     role,
	}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUserStore) CreateFirstAdmin(ctx context.Context, username, email, hashedPw string) (*models.User, error) {
	for _, u := range f.users {
		if u.Role == models.RoleAdmin {
			return nil, httpapi.E(httpapi.KindConflict, "admin already exists")
		}
	}
	return f.CreateUser(ctx, username, email, hashedPw, models.RoleAdmin)
}

func (f *fakeUserStore) GetUserByCredential(_ context.Context, credential string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == credential {
			return u, nil
		}
	}
	for _, u := range f.users {
		if u.Email == credential {
			return u, nil
		}
	}
	return nil, httpapi.E(httpapi.KindNotFound, "user not found")
}

func newTestService() (*Service, *fakeUserStore) {
	store := &fakeUserStore{}
	svc := NewService(store, NewHasherWithCost(bcrypt.MinCost), NewTokenCodec("token-secret", time.Hour))
	return svc, store
}

func TestRegisterIssuesSession(t *testing.T) {
	svc, store := newTestService()

	claims, token, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "brochet", Email: "brochet@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "brochet", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, 0, claims.Score)
	assert.NotEmpty(t, token)

	// The stored digest is not the plaintext.
	require.Len(t, store.users, 1)
	assert.NotEqual(t, "password123", store.users[0].Password)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"short username", models.RegisterRequest{Username: "ab", Email: "a@example.com", Password: "password123"}},
		{"bad email", models.RegisterRequest{Username: "abc", Email: "not-an-email", Password: "password123"}},
		{"short password", models.RegisterRequest{Username: "abc", Email: "a@example.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.req)
			assert.True(t, httpapi.IsKind(err, httpapi.KindValidation))
		})
	}
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	svc, _ := newTestService()
	req := models.RegisterRequest{Username: "brochet", Email: "brochet@example.com", Password: "password123"}

	_, _, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), req)
	assert.True(t, httpapi.IsKind(err, httpapi.KindConflict))
}

func TestBootstrapOnlyOnce(t *testing.T) {
	svc, store := newTestService()
	req := models.RegisterRequest{Username: "admin", Email: "admin@example.com", Password: "password123"}

	admin, err := svc.Bootstrap(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = svc.Bootstrap(context.Background(), models.RegisterRequest{
		Username: "admin2", Email: "admin2@example.com", Password: "password123",
	})
	assert.True(t, httpapi.IsKind(err, httpapi.KindConflict))

	admins := 0
	for _, u := range store.users {
		if u.Role == models.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	svc, _ := newTestService()
	_, _, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "brochet", Email: "brochet@example.com", Password: "password123",
	})
	require.NoError(t, err)

	for _, credential := range []string{"brochet", "brochet@example.com"} {
		claims, token, err := svc.Login(context.Background(), models.LoginRequest{
			Credential: credential, Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "brochet", claims.Username)
		assert.NotEmpty(t, token)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService()
	_, _, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "brochet", Email: "brochet@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Credential: "nobody", Password: "password123"})
	assert.True(t, httpapi.IsKind(err, httpapi.KindNotFound))

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Credential: "brochet", Password: "wrongpassword"})
	assert.True(t, httpapi.IsKind(err, httpapi.KindUnauthorized))

	_, _, err = svc.Login(context.Background(), models.LoginRequest{})
	assert.True(t, httpapi.IsKind(err, httpapi.KindValidation))
}
