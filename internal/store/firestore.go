package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// maxInlineReport is the largest report stored inside the job document. Firestore
// documents are capped at 1 MiB; larger reports are only reachable via ReportURI.
const maxInlineReport = 700 << 10

// jobDocument keeps expiresAt at the top level so a Firestore TTL policy can target it.
type jobDocument struct {
	Job       *models.AnalysisJob `firestore:"job"`
	Report    []byte              `firestore:"report,omitempty"`
	ExpiresAt time.Time           `firestore:"expiresAt"`
}

// FirestoreStore keeps one document per job in a collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection, now: time.Now}
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*models.AnalysisJob, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", id, err)
	}

	var doc jobDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	if doc.Job == nil || doc.Job.Expired(s.now()) {
		return nil, ErrJobNotFound
	}
	doc.Job.ReportBytes = doc.Report
	return doc.Job, nil
}

func (s *FirestoreStore) Put(ctx context.Context, job *models.AnalysisJob) error {
	doc := jobDocument{Job: job, ExpiresAt: job.ExpiresAt}
	if len(job.ReportBytes) <= maxInlineReport {
		doc.Report = job.ReportBytes
	}
	if _, err := s.client.Collection(s.collection).Doc(job.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to write job %s: %w", job.ID, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Collection(s.collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return nil
}
