// Package store persists intake submissions and built profiles. Two backends
// implement the same interface: SQLite for single-node CLI use and Postgres
// for the served deployment.
package store

import (
	"context"
	"errors"

	"github.com/smegrowth/profiler-cli/internal/model"
)

// ErrNotFound is returned when a submission or profile id does not exist.
var ErrNotFound = errors.New("store: not found")

// SubmissionFilter specifies criteria for listing submissions.
type SubmissionFilter struct {
	Status model.SubmissionStatus `json:"status,omitempty"`
	Limit  int                    `json:"limit,omitempty"`
	Offset int                    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the intake system.
type Store interface {
	// Submissions
	CreateSubmission(ctx context.Context, form model.FormData) (*model.FormSubmission, error)
	GetSubmission(ctx context.Context, id string) (*model.FormSubmission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.FormSubmission, error)
	UpdateSubmissionStatus(ctx context.Context, id string, status model.SubmissionStatus) error
	DeleteSubmission(ctx context.Context, id string) error
	SubmissionStats(ctx context.Context) (*model.SubmissionStats, error)

	// Profiles
	SaveProfile(ctx context.Context, submissionID string, profile *model.BusinessProfile) (*model.ProfileRecord, error)
	GetProfile(ctx context.Context, id string) (*model.ProfileRecord, error)
	GetProfileBySubmission(ctx context.Context, submissionID string) (*model.ProfileRecord, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]model.ProfileRecord, error)
	DeleteProfile(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
