// Package store persists completed analysis jobs so reports can be fetched after the
// analyze request returns. Every backend honours the job's ExpiresAt.
package store

import (
	"context"
	"errors"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

var ErrJobNotFound = errors.New("store: job not found")

// JobStore is implemented by the memory, Redis and Firestore backends.
type JobStore interface {
	Get(ctx context.Context, id string) (*models.AnalysisJob, error)
	Put(ctx context.Context, job *models.AnalysisJob) error
	Delete(ctx context.Context, id string) error
}
