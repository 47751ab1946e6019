package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/smegrowth/profiler-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS submissions (
	id         TEXT PRIMARY KEY,
	form_data  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'submitted',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profiles (
	id            TEXT PRIMARY KEY,
	submission_id TEXT REFERENCES submissions(id),
	profile       TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);
CREATE INDEX IF NOT EXISTS idx_profiles_submission_id ON profiles(submission_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSubmission(ctx context.Context, form model.FormData) (*model.FormSubmission, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal form")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, form_data, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(formJSON), string(model.SubmissionStatusSubmitted), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert submission")
	}

	return &model.FormSubmission{
		ID:        id,
		FormData:  form,
		Status:    model.SubmissionStatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) GetSubmission(ctx context.Context, id string) (*model.FormSubmission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, form_data, status, created_at, updated_at FROM submissions WHERE id = ?`,
		id,
	)
	return scanSubmission(row)
}

func (s *SQLiteStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.FormSubmission, error) {
	query := `SELECT id, form_data, status, created_at, updated_at FROM submissions WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list submissions")
	}
	defer rows.Close()

	var subs []model.FormSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "sqlite: list submissions iterate")
}

func (s *SQLiteStore) UpdateSubmissionStatus(ctx context.Context, id string, status model.SubmissionStatus) error {
	if !model.ValidSubmissionStatus(status) {
		return eris.Errorf("sqlite: invalid status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update submission status %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) DeleteSubmission(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete submission %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) SubmissionStats(ctx context.Context) (*model.SubmissionStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: submission stats")
	}
	defer rows.Close()

	stats := &model.SubmissionStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stats")
		}
		applyStat(stats, model.SubmissionStatus(status), count)
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: stats iterate")
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, submissionID string, profile *model.BusinessProfile) (*model.ProfileRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal profile")
	}

	var subID any
	if submissionID != "" {
		subID = submissionID
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, submission_id, profile, created_at) VALUES (?, ?, ?, ?)`,
		id, subID, string(profileJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert profile")
	}

	return &model.ProfileRecord{
		ID:           id,
		SubmissionID: submissionID,
		Profile:      profile,
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*model.ProfileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, submission_id, profile, created_at FROM profiles WHERE id = ?`,
		id,
	)
	return scanProfile(row)
}

func (s *SQLiteStore) GetProfileBySubmission(ctx context.Context, submissionID string) (*model.ProfileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, submission_id, profile, created_at FROM profiles
		 WHERE submission_id = ? ORDER BY created_at DESC LIMIT 1`,
		submissionID,
	)
	return scanProfile(row)
}

func (s *SQLiteStore) ListProfiles(ctx context.Context, limit, offset int) ([]model.ProfileRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, profile, created_at FROM profiles
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var records []model.ProfileRecord
	for rows.Next() {
		rec, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

func (s *SQLiteStore) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete profile %s", id)
	}
	return checkRowsAffected(res)
}

// helpers

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func applyStat(stats *model.SubmissionStats, status model.SubmissionStatus, count int) {
	stats.Total += count
	switch status {
	case model.SubmissionStatusSubmitted:
		stats.Submitted += count
		stats.Pending += count
	case model.SubmissionStatusProcessed:
		stats.Processed += count
	case model.SubmissionStatusFailed:
		stats.Pending += count
	}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSubmission(row scannable) (*model.FormSubmission, error) {
	var sub model.FormSubmission
	var formJSON string
	var status string

	err := row.Scan(&sub.ID, &formJSON, &status, &sub.CreatedAt, &sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan submission")
	}

	if err := json.Unmarshal([]byte(formJSON), &sub.FormData); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal form data")
	}
	sub.Status = model.SubmissionStatus(status)
	return &sub, nil
}

func scanProfile(row scannable) (*model.ProfileRecord, error) {
	var rec model.ProfileRecord
	var subID sql.NullString
	var profileJSON string

	err := row.Scan(&rec.ID, &subID, &profileJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan profile")
	}

	rec.SubmissionID = subID.String
	rec.Profile = &model.BusinessProfile{}
	if err := json.Unmarshal([]byte(profileJSON), rec.Profile); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal profile")
	}
	return &rec, nil
}
