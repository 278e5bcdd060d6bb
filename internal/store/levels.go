package store

import (
	"context"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

const levelColumns = `id, title, value, start, "end"`

func scanLevel(row interface{ Scan(dest ...any) error }) (*models.Level, error) {
	var l models.Level
	if err := row.Scan(&l.ID, &l.Title, &l.Value, &l.Start, &l.End); err != nil {
		return nil, err
	}
	return &l, nil
}

// LevelForScore resolves the tier for a score. Policy: the level with the
// highest start threshold not exceeding the score wins; the top tier has
// no upper bound, and a score falling in a threshold gap resolves to the
// tier below it.
func (s *PostgresStore) LevelForScore(ctx context.Context, score int) (*models.Level, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+levelColumns+` FROM levels
		 WHERE start <= $1
		 ORDER BY start DESC
		 LIMIT 1`,
		score,
	)
	l, err := scanLevel(row)
	if err != nil {
		return nil, classify(err, "level already exists", "no level for score")
	}
	return l, nil
}

// AssignLevelForScore points the account at the tier matching score using
// the same policy as LevelForScore. A lookup miss leaves the current
// level untouched instead of nulling it out.
func (s *PostgresStore) AssignLevelForScore(ctx context.Context, userID string, score int) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users
		 SET level_id = COALESCE(
		     (SELECT id FROM levels WHERE start <= $2 ORDER BY start DESC LIMIT 1),
		     level_id
		 ), updated_at = NOW()
		 WHERE id = $1`,
		userID, score,
	)
	if err != nil {
		return httpapi.Wrap(httpapi.KindInternal, "assign level", err)
	}
	return nil
}

// ListLevels returns all tiers ordered by their start threshold.
func (s *PostgresStore) ListLevels(ctx context.Context) ([]models.Level, error) {
	rows, err := s.db.Query(ctx, `SELECT `+levelColumns+` FROM levels ORDER BY start`)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "list levels", err)
	}
	defer rows.Close()

	levels := []models.Level{}
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, httpapi.Wrap(httpapi.KindInternal, "scan level", err)
		}
		levels = append(levels, *l)
	}
	return levels, rows.Err()
}

// CreateLevel inserts a new tier. Duplicate titles or ordinals conflict.
func (s *PostgresStore) CreateLevel(ctx context.Context, title string, value, start int, end *int) (*models.Level, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO levels (title, value, start, "end")
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+levelColumns,
		title, value, start, end,
	)
	l, err := scanLevel(row)
	if err != nil {
		return nil, classify(err, "level already exists", "level not found")
	}
	return l, nil
}

// UpdateLevel rewrites a tier's definition.
func (s *PostgresStore) UpdateLevel(ctx context.Context, id, title string, value, start int, end *int) (*models.Level, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE levels SET title = $2, value = $3, start = $4, "end" = $5
		 WHERE id = $1
		 RETURNING `+levelColumns,
		id, title, value, start, end,
	)
	l, err := scanLevel(row)
	if err != nil {
		return nil, classify(err, "level already exists", "level not found")
	}
	return l, nil
}

// DeleteLevel removes a tier. Accounts referencing it fall back to NULL
// at the schema level.
func (s *PostgresStore) DeleteLevel(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM levels WHERE id = $1`, id)
	if err != nil {
		return httpapi.Wrap(httpapi.KindInternal, "delete level", err)
	}
	if tag.RowsAffected() == 0 {
		return httpapi.E(httpapi.KindNotFound, "level not found")
	}
	return nil
}
