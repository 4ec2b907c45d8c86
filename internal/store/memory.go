package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// MemoryStore keeps jobs in process memory. Expired jobs are invisible to Get and are
// removed by Sweep.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.AnalysisJob
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*models.AnalysisJob),
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.AnalysisJob, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok || job.Expired(s.now()) {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *MemoryStore) Put(_ context.Context, job *models.AnalysisJob) error {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired jobs and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, job := range s.jobs {
		if job.Expired(now) {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("Swept expired jobs.", "count", n)
			}
		}
	}
}

// Len returns the number of stored jobs, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
