package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

const userColumns = `id, username, email, password, role, phone_number, profile_pic,
	city, region, zip_code, score, level_id, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.PhoneNumber,
		&u.ProfilePic, &u.City, &u.Region, &u.ZipCode, &u.Score, &u.LevelID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new account. A duplicate username, email or phone
// number surfaces as Conflict.
func (s *PostgresStore) CreateUser(ctx context.Context, username, email, hashedPw string, role models.Role) (*models.User, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		username, email, hashedPw, role,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, classify(err, "user already exists", "user not found")
	}
	return u, nil
}

// CreateFirstAdmin creates the bootstrap admin account. The check and the
// insert run in one transaction under an advisory lock, so two concurrent
// bootstrap calls cannot both succeed.
func (s *PostgresStore) CreateFirstAdmin(ctx context.Context, username, email, hashedPw string) (*models.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, adminBootstrapLock); err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "acquire bootstrap lock", err)
	}

	var admins int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, models.RoleAdmin).Scan(&admins); err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "count admins", err)
	}
	if admins > 0 {
		return nil, httpapi.E(httpapi.KindConflict, "admin already exists")
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		username, email, hashedPw, models.RoleAdmin,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, classify(err, "user already exists", "user not found")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "commit transaction", err)
	}
	return u, nil
}

// adminBootstrapLock is the advisory lock key guarding first-admin creation.
const adminBootstrapLock = 0x9ec40a1

// GetUserByID returns the account with the given id.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, classify(err, "user already exists", "user not found")
	}
	return u, nil
}

// GetUserByUsername returns the account with the given username.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, classify(err, "user already exists", "user not found")
	}
	return u, nil
}

// GetUserByCredential matches a login credential against username or
// email. An exact username match wins over an email match so the result
// is deterministic when both could apply.
func (s *PostgresStore) GetUserByCredential(ctx context.Context, credential string) (*models.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE username = $1 OR email = $1
		 ORDER BY (username = $1) DESC
		 LIMIT 1`,
		credential,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, classify(err, "user already exists", "user not found")
	}
	return u, nil
}

// ListUsers returns one page of accounts ordered by creation time.
func (s *PostgresStore) ListUsers(ctx context.Context, page, pageSize int) ([]models.User, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at
		 LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, httpapi.Wrap(httpapi.KindInternal, "scan user", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser applies the non-nil fields of upd to the account.
func (s *PostgresStore) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Username != nil {
		add("username", *upd.Username)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Password != nil {
		add("password", *upd.Password)
	}
	if upd.Role != nil {
		add("role", *upd.Role)
	}
	if upd.PhoneNumber != nil {
		add("phone_number", *upd.PhoneNumber)
	}
	if upd.ProfilePic != nil {
		add("profile_pic", *upd.ProfilePic)
	}
	if upd.City != nil {
		add("city", *upd.City)
	}
	if upd.Region != nil {
		add("region", *upd.Region)
	}
	if upd.ZipCode != nil {
		add("zip_code", *upd.ZipCode)
	}
	if upd.Score != nil {
		add("score", *upd.Score)
	}

	row := s.db.QueryRow(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = $1 RETURNING `+userColumns,
		args...,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, classify(err, "user already exists", "user not found")
	}
	return u, nil
}

// DeleteUser removes the account; catches cascade at the schema level.
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return httpapi.Wrap(httpapi.KindInternal, "delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return httpapi.E(httpapi.KindNotFound, "user not found")
	}
	return nil
}

// AddScore moves the account's cumulative score by delta and returns the
// new total. The arithmetic happens at the database so concurrent catches
// never lose updates, and the result is clamped at zero: a downward catch
// edit after an admin score reset must not take the total negative.
func (s *PostgresStore) AddScore(ctx context.Context, userID string, delta int) (int, error) {
	var score int
	err := s.db.QueryRow(ctx,
		`UPDATE users SET score = GREATEST(score + $2, 0), updated_at = NOW()
		 WHERE id = $1
		 RETURNING score`,
		userID, delta,
	).Scan(&score)
	if err != nil {
		return 0, classify(err, "user already exists", "user not found")
	}
	return score, nil
}

// TopUsersByScore returns the n highest-scoring accounts, used to rebuild
// the leaderboard cache.
func (s *PostgresStore) TopUsersByScore(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, username, score FROM users
		 ORDER BY score DESC, username
		 LIMIT $1`,
		n,
	)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "top users", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Score); err != nil {
			return nil, httpapi.Wrap(httpapi.KindInternal, "scan leaderboard entry", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
