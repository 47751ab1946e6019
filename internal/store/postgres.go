package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/smegrowth/profiler-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS submissions (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	form_data  JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'submitted',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	submission_id TEXT REFERENCES submissions(id),
	profile       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);
CREATE INDEX IF NOT EXISTS idx_profiles_submission_id ON profiles(submission_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateSubmission(ctx context.Context, form model.FormData) (*model.FormSubmission, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal form")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO submissions (id, form_data, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, formJSON, string(model.SubmissionStatusSubmitted), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert submission")
	}

	return &model.FormSubmission{
		ID:        id,
		FormData:  form,
		Status:    model.SubmissionStatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) GetSubmission(ctx context.Context, id string) (*model.FormSubmission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, form_data, status, created_at, updated_at FROM submissions WHERE id = $1`,
		id,
	)
	return scanPgSubmission(row)
}

func (s *PostgresStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.FormSubmission, error) {
	query := `SELECT id, form_data, status, created_at, updated_at FROM submissions`
	var args []any

	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list submissions")
	}
	defer rows.Close()

	var subs []model.FormSubmission
	for rows.Next() {
		sub, err := scanPgSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "postgres: list submissions iterate")
}

func (s *PostgresStore) UpdateSubmissionStatus(ctx context.Context, id string, status model.SubmissionStatus) error {
	if !model.ValidSubmissionStatus(status) {
		return eris.Errorf("postgres: invalid status %q", status)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE submissions SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update submission status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSubmission(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete submission %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SubmissionStats(ctx context.Context) (*model.SubmissionStats, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: submission stats")
	}
	defer rows.Close()

	stats := &model.SubmissionStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stats")
		}
		applyStat(stats, model.SubmissionStatus(status), count)
	}
	return stats, eris.Wrap(rows.Err(), "postgres: stats iterate")
}

func (s *PostgresStore) SaveProfile(ctx context.Context, submissionID string, profile *model.BusinessProfile) (*model.ProfileRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal profile")
	}

	var subID any
	if submissionID != "" {
		subID = submissionID
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (id, submission_id, profile, created_at) VALUES ($1, $2, $3, $4)`,
		id, subID, profileJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert profile")
	}

	return &model.ProfileRecord{
		ID:           id,
		SubmissionID: submissionID,
		Profile:      profile,
		CreatedAt:    now,
	}, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*model.ProfileRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, submission_id, profile, created_at FROM profiles WHERE id = $1`,
		id,
	)
	return scanPgProfile(row)
}

func (s *PostgresStore) GetProfileBySubmission(ctx context.Context, submissionID string) (*model.ProfileRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, submission_id, profile, created_at FROM profiles
		 WHERE submission_id = $1 ORDER BY created_at DESC LIMIT 1`,
		submissionID,
	)
	return scanPgProfile(row)
}

func (s *PostgresStore) ListProfiles(ctx context.Context, limit, offset int) ([]model.ProfileRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, submission_id, profile, created_at FROM profiles
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var records []model.ProfileRecord
	for rows.Next() {
		rec, err := scanPgProfile(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete profile %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// helpers

func scanPgSubmission(row pgx.Row) (*model.FormSubmission, error) {
	var sub model.FormSubmission
	var formJSON []byte
	var status string

	err := row.Scan(&sub.ID, &formJSON, &status, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan submission")
	}

	if err := json.Unmarshal(formJSON, &sub.FormData); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal form data")
	}
	sub.Status = model.SubmissionStatus(status)
	return &sub, nil
}

func scanPgProfile(row pgx.Row) (*model.ProfileRecord, error) {
	var rec model.ProfileRecord
	var subID *string
	var profileJSON []byte

	err := row.Scan(&rec.ID, &subID, &profileJSON, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan profile")
	}

	if subID != nil {
		rec.SubmissionID = *subID
	}
	rec.Profile = &model.BusinessProfile{}
	if err := json.Unmarshal(profileJSON, rec.Profile); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal profile")
	}
	return &rec, nil
}
