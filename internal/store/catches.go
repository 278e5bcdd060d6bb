package store

import (
	"context"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

const catchColumns = `id, length, weight, location, pictures, description,
	point_value, date, species_id, user_id, created_at`

func scanCatch(row interface{ Scan(dest ...any) error }) (*models.Catch, error) {
	var c models.Catch
	err := row.Scan(
		&c.ID, &c.Length, &c.Weight, &c.Location, &c.Pictures, &c.Description,
		&c.PointValue, &c.Date, &c.SpeciesID, &c.UserID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCatch inserts a catch row with its derived point value.
func (s *PostgresStore) CreateCatch(ctx context.Context, c *models.Catch) (*models.Catch, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO catches (length, weight, location, pictures, description,
		                      point_value, date, species_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+catchColumns,
		c.Length, c.Weight, c.Location, c.Pictures, c.Description,
		c.PointValue, c.Date, c.SpeciesID, c.UserID,
	)
	created, err := scanCatch(row)
	if err != nil {
		return nil, classify(err, "catch already exists", "catch not found")
	}
	return created, nil
}

// GetCatch returns one catch by id.
func (s *PostgresStore) GetCatch(ctx context.Context, id string) (*models.Catch, error) {
	row := s.db.QueryRow(ctx, `SELECT `+catchColumns+` FROM catches WHERE id = $1`, id)
	c, err := scanCatch(row)
	if err != nil {
		return nil, classify(err, "catch already exists", "catch not found")
	}
	return c, nil
}

// ListCatches returns every catch, newest first.
func (s *PostgresStore) ListCatches(ctx context.Context) ([]models.Catch, error) {
	rows, err := s.db.Query(ctx, `SELECT `+catchColumns+` FROM catches ORDER BY created_at DESC`)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "list catches", err)
	}
	defer rows.Close()

	list := []models.Catch{}
	for rows.Next() {
		c, err := scanCatch(rows)
		if err != nil {
			return nil, httpapi.Wrap(httpapi.KindInternal, "scan catch", err)
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

// UpdateCatch rewrites the mutable fields of a catch, including its
// recomputed point value.
func (s *PostgresStore) UpdateCatch(ctx context.Context, c *models.Catch) (*models.Catch, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE catches
		 SET length = $2, weight = $3, location = $4, pictures = $5,
		     description = $6, point_value = $7, date = $8
		 WHERE id = $1
		 RETURNING `+catchColumns,
		c.ID, c.Length, c.Weight, c.Location, c.Pictures,
		c.Description, c.PointValue, c.Date,
	)
	updated, err := scanCatch(row)
	if err != nil {
		return nil, classify(err, "catch already exists", "catch not found")
	}
	return updated, nil
}

// DeleteCatch removes a catch row.
func (s *PostgresStore) DeleteCatch(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM catches WHERE id = $1`, id)
	if err != nil {
		return httpapi.Wrap(httpapi.KindInternal, "delete catch", err)
	}
	if tag.RowsAffected() == 0 {
		return httpapi.E(httpapi.KindNotFound, "catch not found")
	}
	return nil
}
