package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/finance-dashboard/internal/jobs"
)

// Store is an in-memory implementation of jobs.Store.
// It is safe for concurrent use. Data is lost on restart.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.Job
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.Job),
	}
}

// Save implements jobs.Store. The payload is not retained.
func (s *Store) Save(ctx context.Context, job *jobs.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid external modifications
	jobCopy := *job
	jobCopy.Payload = nil
	s.jobs[job.ID] = &jobCopy

	return nil
}

// Get implements jobs.Store.
func (s *Store) Get(ctx context.Context, id string) (*jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", jobs.ErrNotFound, id)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// List implements jobs.Store.
func (s *Store) List(ctx context.Context, filter jobs.Filter) ([]*jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*jobs.Job{}
	for _, job := range s.jobs {
		if filter.Kind != "" && job.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}

		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	// Apply limit and offset
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.Job{}, nil
		}
		result = result[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

var _ jobs.Store = (*Store)(nil)
