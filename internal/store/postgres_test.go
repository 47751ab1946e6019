package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smegrowth/profiler-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_CreateSubmission(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO submissions`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "submitted", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sub, err := s.CreateSubmission(context.Background(), model.FormData{BusinessName: "Perera Bakery"})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, model.SubmissionStatusSubmitted, sub.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSubmission(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	formJSON, err := json.Marshal(model.FormData{BusinessName: "Perera Bakery"})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, form_data, status, created_at, updated_at FROM submissions WHERE id = \$1`).
		WithArgs("sub-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "form_data", "status", "created_at", "updated_at"}).
			AddRow("sub-1", formJSON, "processed", now, now))

	sub, err := s.GetSubmission(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Perera Bakery", sub.FormData.BusinessName)
	assert.Equal(t, model.SubmissionStatusProcessed, sub.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSubmission_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, form_data, status, created_at, updated_at FROM submissions WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSubmission(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateSubmissionStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE submissions SET status`).
		WithArgs("processed", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateSubmissionStatus(context.Background(), "missing", model.SubmissionStatusProcessed)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SubmissionStats(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM submissions GROUP BY status`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("submitted", 2).
			AddRow("processed", 5).
			AddRow("failed", 1))

	stats, err := s.SubmissionStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 2, stats.Submitted)
	assert.Equal(t, 5, stats.Processed)
	assert.Equal(t, 3, stats.Pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAndGetProfile(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs(pgxmock.AnyArg(), "sub-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	profile := model.NewBusinessProfile()
	profile.BusinessIdentity.BusinessType = "Food & Beverage"

	rec, err := s.SaveProfile(context.Background(), "sub-1", profile)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", rec.SubmissionID)

	profileJSON, err := json.Marshal(profile)
	require.NoError(t, err)
	subID := "sub-1"

	mock.ExpectQuery(`SELECT id, submission_id, profile, created_at FROM profiles WHERE id = \$1`).
		WithArgs(rec.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "submission_id", "profile", "created_at"}).
			AddRow(rec.ID, &subID, profileJSON, time.Now().UTC()))

	got, err := s.GetProfile(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food & Beverage", got.Profile.BusinessIdentity.BusinessType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteProfile_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM profiles WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
