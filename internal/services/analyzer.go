package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
	"github.com/Boakye-20/ai-compliance-tool/internal/store"
)

// Runner runs one analysis. *Pipeline is the production implementation.
type Runner interface {
	Run(ctx context.Context, doc []byte, requested []models.Framework, onStatus StatusFunc) (*models.PipelineRun, error)
}

// ReportSaver persists a rendered report and returns where it was written.
type ReportSaver interface {
	Save(ctx context.Context, jobID, contentType string, content []byte) (string, error)
}

// WorkflowStarter hands a completed job to a downstream workflow.
type WorkflowStarter interface {
	Trigger(ctx context.Context, payload any) (string, error)
}

const DefaultJobTTL = 24 * time.Hour

// Analyzer owns the job lifecycle around a pipeline run: ID assignment, persistence,
// report archival and hand-off. Reports and hand-off are optional.
type Analyzer struct {
	pipeline Runner
	jobs     store.JobStore
	reports  ReportSaver
	handoff  WorkflowStarter
	ttl      time.Duration
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewAnalyzer(pipeline Runner, jobs store.JobStore, reports ReportSaver, handoff WorkflowStarter, ttl time.Duration, logger *slog.Logger) *Analyzer {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		pipeline: pipeline,
		jobs:     jobs,
		reports:  reports,
		handoff:  handoff,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Analyze runs the pipeline and stores the result as a new job. The returned job's run
// carries no document text.
func (a *Analyzer) Analyze(ctx context.Context, filename string, doc []byte, frameworks []models.Framework, onStatus StatusFunc) (*models.AnalysisJob, error) {
	jobID := a.newID()
	logCtx := a.logger.With("jobId", jobID, "filename", filename)
	logCtx.InfoContext(ctx, "Starting analysis.", "frameworks", joinFrameworks(frameworks), "bytes", len(doc))

	run, err := a.pipeline.Run(ctx, doc, frameworks, onStatus)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	job := &models.AnalysisJob{
		ID:                jobID,
		OriginalFilename:  filename,
		Run:               run.ForTransport(),
		ReportBytes:       run.ReportBytes,
		ReportContentType: run.ReportContentType,
		CreatedAt:         now,
		ExpiresAt:         now.Add(a.ttl),
	}

	if a.reports != nil && len(job.ReportBytes) > 0 {
		uri, err := a.reports.Save(ctx, jobID, job.ReportContentType, job.ReportBytes)
		if err != nil {
			logCtx.WarnContext(ctx, "Failed to archive report.", "error", err)
		} else {
			job.ReportURI = uri
			logCtx.InfoContext(ctx, "Report archived.", "reportUri", uri)
		}
	}

	if err := a.jobs.Put(ctx, job); err != nil {
		logCtx.ErrorContext(ctx, "Failed to store job.", "error", err)
		return nil, fmt.Errorf("failed to store job %s: %w", jobID, err)
	}

	if a.handoff != nil {
		execution, err := a.handoff.Trigger(ctx, handoffPayload(job))
		if err != nil {
			logCtx.WarnContext(ctx, "Failed to trigger hand-off workflow.", "error", err)
		} else {
			logCtx.InfoContext(ctx, "Hand-off workflow triggered.", "executionId", execution)
		}
	}

	logCtx.InfoContext(ctx, "Analysis stored.", "compositeScore", run.Synthesis.CompositeScore, "expiresAt", job.ExpiresAt)
	return job, nil
}

// Job returns a stored job, or store.ErrJobNotFound.
func (a *Analyzer) Job(ctx context.Context, id string) (*models.AnalysisJob, error) {
	return a.jobs.Get(ctx, id)
}

func handoffPayload(job *models.AnalysisJob) models.HandoffPayload {
	p := models.HandoffPayload{
		JobID:     job.ID,
		Filename:  job.OriginalFilename,
		ReportURI: job.ReportURI,
	}
	if s := job.Run.Synthesis; s != nil {
		p.CompositeScore = s.CompositeScore
		p.FrameworkScore = s.PerFrameworkScore
		p.CriticalGaps = s.TotalCriticalGaps
	}
	return p
}
