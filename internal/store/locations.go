package store

import (
	"context"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

const locationColumns = `id, longitude, latitude, name, description, user_id, created_at, updated_at`

func scanLocation(row interface{ Scan(dest ...any) error }) (*models.Location, error) {
	var l models.Location
	err := row.Scan(
		&l.ID, &l.Longitude, &l.Latitude, &l.Name, &l.Description,
		&l.UserID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLocations returns every fishing spot.
func (s *PostgresStore) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := s.db.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY created_at DESC`)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "list locations", err)
	}
	defer rows.Close()

	list := []models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, httpapi.Wrap(httpapi.KindInternal, "scan location", err)
		}
		list = append(list, *l)
	}
	return list, rows.Err()
}

// GetLocation returns one fishing spot by id.
func (s *PostgresStore) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	row := s.db.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	l, err := scanLocation(row)
	if err != nil {
		return nil, classify(err, "location already exists", "location not found")
	}
	return l, nil
}

// CreateLocation registers a new fishing spot owned by a user.
func (s *PostgresStore) CreateLocation(ctx context.Context, loc *models.Location) (*models.Location, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO locations (longitude, latitude, name, description, user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+locationColumns,
		loc.Longitude, loc.Latitude, loc.Name, loc.Description, loc.UserID,
	)
	created, err := scanLocation(row)
	if err != nil {
		return nil, classify(err, "location already exists", "location not found")
	}
	return created, nil
}

// DeleteLocation removes a fishing spot.
func (s *PostgresStore) DeleteLocation(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return httpapi.Wrap(httpapi.KindInternal, "delete location", err)
	}
	if tag.RowsAffected() == 0 {
		return httpapi.E(httpapi.KindNotFound, "location not found")
	}
	return nil
}
