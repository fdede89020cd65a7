package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/utils"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestTerritoryRepository_GetAllSites(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT name, logo FROM sites WHERE is_active = true").
		WillReturnRows(sqlmock.NewRows([]string{"name", "logo"}).
			AddRow("ThaiDeal", "thaideal.png").
			AddRow("Lucky", ""))

	sites, err := NewTerritoryRepository(db).GetAllSites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Site{{Name: "ThaiDeal", Logo: "thaideal.png"}, {Name: "Lucky"}}, sites)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTerritoryRepository_GetAllSitesEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM sites").WillReturnRows(sqlmock.NewRows([]string{"name", "logo"}))

	sites, err := NewTerritoryRepository(db).GetAllSites(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sites)
	assert.Empty(t, sites)
}

func TestSubmissionRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO prize_submissions").
		WithArgs("sub-1", "sess-a", "ThaiDeal", "player01", sqlmock.AnyArg(), "Success", 200, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, created))

	rec := &models.Submission{
		SubmissionID: "sub-1",
		SessionID:    "sess-a",
		SiteName:     "ThaiDeal",
		Username:     "player01",
		Payload:      []byte(`{"status":"pending"}`),
		Status:       models.SubmissionSuccess,
		HTTPStatus:   200,
	}
	require.NoError(t, NewSubmissionRepository(db).Create(context.Background(), rec))
	assert.Equal(t, 7, rec.ID)
	assert.True(t, rec.CreatedAt.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_GetBySubmissionID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	columns := []string{"id", "submission_id", "session_id", "site_name", "username", "payload", "status", "http_status", "error_message", "created_at"}
	mock.ExpectQuery("FROM prize_submissions WHERE submission_id").
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(7, "sub-1", "sess-a", "ThaiDeal", "player01", []byte(`{"status":"pending"}`), "Rejected", 400, "bad phone", created))
	mock.ExpectQuery("FROM prize_submissions WHERE submission_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	rec, err := repo.GetBySubmissionID(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Equal(t, "bad phone", *rec.ErrorMessage)
	assert.JSONEq(t, `{"status":"pending"}`, string(rec.ToResponse().Payload))

	_, err = repo.GetBySubmissionID(context.Background(), "missing")
	assert.ErrorIs(t, err, utils.ErrSubmissionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
