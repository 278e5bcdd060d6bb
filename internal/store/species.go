package store

import (
	"context"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

// GetSpecies returns one species by id.
func (s *PostgresStore) GetSpecies(ctx context.Context, id string) (*models.Species, error) {
	var sp models.Species
	err := s.db.QueryRow(ctx,
		`SELECT id, name, point_value FROM species WHERE id = $1`, id,
	).Scan(&sp.ID, &sp.Name, &sp.PointValue)
	if err != nil {
		return nil, classify(err, "species already exists", "species not found")
	}
	return &sp, nil
}

// ListSpecies returns every species ordered by name.
func (s *PostgresStore) ListSpecies(ctx context.Context) ([]models.Species, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, point_value FROM species ORDER BY name`)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "list species", err)
	}
	defer rows.Close()

	list := []models.Species{}
	for rows.Next() {
		var sp models.Species
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.PointValue); err != nil {
			return nil, httpapi.Wrap(httpapi.KindInternal, "scan species", err)
		}
		list = append(list, sp)
	}
	return list, rows.Err()
}

// CreateSpecies inserts a new species.
func (s *PostgresStore) CreateSpecies(ctx context.Context, name string, pointValue int) (*models.Species, error) {
	var sp models.Species
	err := s.db.QueryRow(ctx,
		`INSERT INTO species (name, point_value) VALUES ($1, $2)
		 RETURNING id, name, point_value`,
		name, pointValue,
	).Scan(&sp.ID, &sp.Name, &sp.PointValue)
	if err != nil {
		return nil, classify(err, "species already exists", "species not found")
	}
	return &sp, nil
}

// UpdateSpecies rewrites a species.
func (s *PostgresStore) UpdateSpecies(ctx context.Context, id, name string, pointValue int) (*models.Species, error) {
	var sp models.Species
	err := s.db.QueryRow(ctx,
		`UPDATE species SET name = $2, point_value = $3 WHERE id = $1
		 RETURNING id, name, point_value`,
		id, name, pointValue,
	).Scan(&sp.ID, &sp.Name, &sp.PointValue)
	if err != nil {
		return nil, classify(err, "species already exists", "species not found")
	}
	return &sp, nil
}

// DeleteSpecies removes a species; its catches cascade at the schema level.
func (s *PostgresStore) DeleteSpecies(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM species WHERE id = $1`, id)
	if err != nil {
		return httpapi.Wrap(httpapi.KindInternal, "delete species", err)
	}
	if tag.RowsAffected() == 0 {
		return httpapi.E(httpapi.KindNotFound, "species not found")
	}
	return nil
}
