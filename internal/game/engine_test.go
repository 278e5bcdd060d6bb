package game

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
	"github.com/pechomax/pechomax-api/internal/store"
)

func TestPointValue(t *testing.T) {
	cases := []struct {
		name          string
		speciesPoints int
		length        float64
		weight        float64
		want          int
	}{
		{"whole product", 10, 2, 3, 60},
		{"rounds up", 10, 1.5, 1.7, 26},  // 25.5 rounds away from zero
		{"rounds down", 10, 1.2, 1.2, 14}, // 14.4
		{"zero species points", 0, 5, 5, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PointValue(tc.speciesPoints, tc.length, tc.weight))
		})
	}
}

func catchRows(c *models.Catch) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "length", "weight", "location", "pictures", "description",
		"point_value", "date", "species_id", "user_id", "created_at",
	}).AddRow(
		"c-1", c.Length, c.Weight, c.Location, c.Pictures, c.Description,
		c.PointValue, c.Date, c.SpeciesID, c.UserID, time.Now(),
	)
}

func TestRecordCatchScoresAndLevels(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := &models.Catch{
		Length:    2,
		Weight:    3,
		Location:  "Lac Leman",
		Pictures:  []string{"https://cdn.example.com/catch/1.jpg"},
		Date:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		SpeciesID: "sp-1",
		UserID:    "u-1",
	}

	mock.ExpectQuery(`SELECT id, name, point_value FROM species`).
		WithArgs("sp-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "point_value"}).
			AddRow("sp-1", "Brochet", 10))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO catches`).
		WithArgs(c.Length, c.Weight, c.Location, c.Pictures, c.Description,
			60, c.Date, c.SpeciesID, c.UserID).
		WillReturnRows(catchRows(&models.Catch{
			Length: c.Length, Weight: c.Weight, Location: c.Location,
			Pictures: c.Pictures, PointValue: 60, Date: c.Date,
			SpeciesID: c.SpeciesID, UserID: c.UserID,
		}))
	mock.ExpectQuery(`UPDATE users SET score = GREATEST\(score \+ \$2, 0\)`).
		WithArgs("u-1", 60).
		WillReturnRows(pgxmock.NewRows([]string{"score"}).AddRow(60))
	mock.ExpectExec(`SET level_id = COALESCE`).
		WithArgs("u-1", 60).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	engine := NewEngine(store.NewPostgresStore(mock), nil)
	created, err := engine.RecordCatch(context.Background(), "brochet", c)
	require.NoError(t, err)
	assert.Equal(t, "c-1", created.ID)
	assert.Equal(t, 60, created.PointValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCatchUnknownSpeciesAbortsBeforeWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, point_value FROM species`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "point_value"}))

	engine := NewEngine(store.NewPostgresStore(mock), nil)
	_, err = engine.RecordCatch(context.Background(), "brochet", &models.Catch{
		Length: 2, Weight: 3, SpeciesID: "missing", UserID: "u-1",
	})
	assert.True(t, httpapi.IsKind(err, httpapi.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAmendCatchAppliesScoreDelta(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Previously scored at 60; shorter measurements bring it down to 30,
	// so only the -30 difference moves the cumulative score.
	c := &models.Catch{
		ID:         "c-1",
		Length:     1,
		Weight:     3,
		Location:   "Lac Leman",
		Pictures:   []string{},
		PointValue: 60,
		Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		SpeciesID:  "sp-1",
		UserID:     "u-1",
	}

	mock.ExpectQuery(`SELECT id, name, point_value FROM species`).
		WithArgs("sp-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "point_value"}).
			AddRow("sp-1", "Brochet", 10))
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE catches`).
		WithArgs("c-1", c.Length, c.Weight, c.Location, c.Pictures,
			c.Description, 30, c.Date).
		WillReturnRows(catchRows(&models.Catch{
			Length: c.Length, Weight: c.Weight, Location: c.Location,
			Pictures: c.Pictures, PointValue: 30, Date: c.Date,
			SpeciesID: c.SpeciesID, UserID: c.UserID,
		}))
	mock.ExpectQuery(`UPDATE users SET score = GREATEST\(score \+ \$2, 0\)`).
		WithArgs("u-1", -30).
		WillReturnRows(pgxmock.NewRows([]string{"score"}).AddRow(30))
	mock.ExpectExec(`SET level_id = COALESCE`).
		WithArgs("u-1", 30).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	engine := NewEngine(store.NewPostgresStore(mock), nil)
	updated, err := engine.AmendCatch(context.Background(), "brochet", c)
	require.NoError(t, err)
	assert.Equal(t, 30, updated.PointValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
