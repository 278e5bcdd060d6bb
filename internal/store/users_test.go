package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

func uniqueViolation() *pgconn.PgError {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "email", "password", "role", "phone_number", "profile_pic",
		"city", "region", "zip_code", "score", "level_id", "created_at", "updated_at",
	})
}

func addUserRow(rows *pgxmock.Rows, id, username, email string, role models.Role, score int) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(id, username, email, "digest", role, nil, nil, nil, nil, nil, score, nil, now, now)
}

func TestCreateUserConflictOnUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("brochet", "brochet@example.com", "digest", models.RoleUser).
		WillReturnError(uniqueViolation())

	st := NewPostgresStore(mock)
	_, err = st.CreateUser(context.Background(), "brochet", "brochet@example.com", "digest", models.RoleUser)
	assert.True(t, httpapi.IsKind(err, httpapi.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserReturnsRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("brochet", "brochet@example.com", "digest", models.RoleUser).
		WillReturnRows(addUserRow(userRows(), "u-1", "brochet", "brochet@example.com", models.RoleUser, 0))

	st := NewPostgresStore(mock)
	u, err := st.CreateUser(context.Background(), "brochet", "brochet@example.com", "digest", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByCredentialPrefersUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`ORDER BY \(username = \$1\) DESC`).
		WithArgs("brochet").
		WillReturnRows(addUserRow(userRows(), "u-1", "brochet", "other@example.com", models.RoleUser, 0))

	st := NewPostgresStore(mock)
	u, err := st.GetUserByCredential(context.Background(), "brochet")
	require.NoError(t, err)
	assert.Equal(t, "brochet", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByCredentialNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users`).
		WithArgs("nobody").
		WillReturnRows(userRows())

	st := NewPostgresStore(mock)
	_, err = st.GetUserByCredential(context.Background(), "nobody")
	assert.True(t, httpapi.IsKind(err, httpapi.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddScoreIncrementsInPlace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`UPDATE users SET score = GREATEST\(score \+ \$2, 0\)`).
		WithArgs("u-1", 60).
		WillReturnRows(pgxmock.NewRows([]string{"score"}).AddRow(60))

	st := NewPostgresStore(mock)
	score, err := st.AddScore(context.Background(), "u-1", 60)
	require.NoError(t, err)
	assert.Equal(t, 60, score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddScoreClampsAtZero(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// A -60 delta against a score of 10 lands on 0, not -50.
	mock.ExpectQuery(`UPDATE users SET score = GREATEST\(score \+ \$2, 0\)`).
		WithArgs("u-1", -60).
		WillReturnRows(pgxmock.NewRows([]string{"score"}).AddRow(0))

	st := NewPostgresStore(mock)
	score, err := st.AddScore(context.Background(), "u-1", -60)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFirstAdminConflictsWhenAdminExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(adminBootstrapLock).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role`).
		WithArgs(models.RoleAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	st := NewPostgresStore(mock)
	_, err = st.CreateFirstAdmin(context.Background(), "admin", "admin@example.com", "digest")
	assert.True(t, httpapi.IsKind(err, httpapi.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFirstAdminInserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(adminBootstrapLock).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role`).
		WithArgs(models.RoleAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("admin", "admin@example.com", "digest", models.RoleAdmin).
		WillReturnRows(addUserRow(userRows(), "u-1", "admin", "admin@example.com", models.RoleAdmin, 0))
	mock.ExpectCommit()
	mock.ExpectRollback()

	st := NewPostgresStore(mock)
	admin, err := st.CreateFirstAdmin(context.Background(), "admin", "admin@example.com", "digest")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM users`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	st := NewPostgresStore(mock)
	err = st.DeleteUser(context.Background(), "missing")
	assert.True(t, httpapi.IsKind(err, httpapi.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
