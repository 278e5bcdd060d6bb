package levels

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pechomax/pechomax-api/internal/store"
)

func TestCreateLevelValidation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	h := NewHandler(store.NewPostgresStore(mock))

	cases := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing title", `{"value":1,"start":0}`},
		{"negative start", `{"title":"Debutant","value":1,"start":-1}`},
		{"end not above start", `{"title":"Debutant","value":1,"start":100,"end":100}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/levels/create", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLevelPersists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	end := 100
	mock.ExpectQuery(`INSERT INTO levels`).
		WithArgs("Debutant", 1, 0, &end).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "value", "start", "end"}).
			AddRow("l-1", "Debutant", 1, 0, &end))

	h := NewHandler(store.NewPostgresStore(mock))
	req := httptest.NewRequest(http.MethodPost, "/levels/create",
		strings.NewReader(`{"title":"Debutant","value":1,"start":0,"end":100}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Debutant"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLevelDuplicateConflicts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO levels`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	h := NewHandler(store.NewPostgresStore(mock))
	req := httptest.NewRequest(http.MethodPost, "/levels/create",
		strings.NewReader(`{"title":"Debutant","value":1,"start":0}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
