package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smegrowth/profiler-cli/internal/model"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu          sync.RWMutex
	submissions map[string]model.FormSubmission
	profiles    map[string]model.ProfileRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		submissions: map[string]model.FormSubmission{},
		profiles:    map[string]model.ProfileRecord{},
	}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }

func (s *MemoryStore) CreateSubmission(_ context.Context, form model.FormData) (*model.FormSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := model.FormSubmission{
		ID:        uuid.New().String(),
		FormData:  form,
		Status:    model.SubmissionStatusSubmitted,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.submissions[sub.ID] = sub
	return &sub, nil
}

func (s *MemoryStore) GetSubmission(_ context.Context, id string) (*model.FormSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (s *MemoryStore) ListSubmissions(_ context.Context, filter SubmissionFilter) ([]model.FormSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var subs []model.FormSubmission
	for _, sub := range s.submissions {
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return paginate(subs, filter.Limit, filter.Offset), nil
}

func (s *MemoryStore) UpdateSubmissionStatus(_ context.Context, id string, status model.SubmissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[id]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	sub.UpdatedAt = time.Now().UTC()
	s.submissions[id] = sub
	return nil
}

func (s *MemoryStore) DeleteSubmission(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.submissions[id]; !ok {
		return ErrNotFound
	}
	delete(s.submissions, id)
	return nil
}

func (s *MemoryStore) SubmissionStats(context.Context) (*model.SubmissionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &model.SubmissionStats{}
	for _, sub := range s.submissions {
		applyStat(stats, sub.Status, 1)
	}
	return stats, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, submissionID string, profile *model.BusinessProfile) (*model.ProfileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := model.ProfileRecord{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		Profile:      profile,
		CreatedAt:    time.Now().UTC(),
	}
	s.profiles[rec.ID] = rec
	return &rec, nil
}

func (s *MemoryStore) GetProfile(_ context.Context, id string) (*model.ProfileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) GetProfileBySubmission(_ context.Context, submissionID string) (*model.ProfileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *model.ProfileRecord
	for id := range s.profiles {
		rec := s.profiles[id]
		if rec.SubmissionID != submissionID {
			continue
		}
		if newest == nil || rec.CreatedAt.After(newest.CreatedAt) {
			newest = &rec
		}
	}
	if newest == nil {
		return nil, ErrNotFound
	}
	return newest, nil
}

func (s *MemoryStore) ListProfiles(_ context.Context, limit, offset int) ([]model.ProfileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []model.ProfileRecord
	for _, rec := range s.profiles {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return paginate(records, limit, offset), nil
}

func (s *MemoryStore) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
