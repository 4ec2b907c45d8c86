// Package app builds the analysis service from configuration. Both the Cloud Functions
// entry points and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"

	"github.com/Boakye-20/ai-compliance-tool/internal/api"
	"github.com/Boakye-20/ai-compliance-tool/internal/config"
	"github.com/Boakye-20/ai-compliance-tool/internal/gcp"
	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/services"
	"github.com/Boakye-20/ai-compliance-tool/internal/store"
)

const (
	sweepInterval = 5 * time.Minute
	reportPrefix  = "reports"
)

// App owns every long-lived client. Close releases them.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Pipeline *services.Pipeline
	Analyzer *services.Analyzer

	storage *storage.Client
	closers []func() error
	cancel  context.CancelFunc
}

// New builds the model client named by cfg.LLM.Provider and wires the service around it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	client, closeClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := NewWithClient(ctx, cfg, client, logger)
	if err != nil {
		if closeClient != nil {
			_ = closeClient()
		}
		return nil, err
	}
	if closeClient != nil {
		a.closers = append(a.closers, closeClient)
	}
	return a, nil
}

// NewWithClient wires the service around an existing model client. The client is rate
// limited here; it is not closed by Close.
func NewWithClient(ctx context.Context, cfg *config.Config, client llm.Client, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bgCtx, cancel := context.WithCancel(context.Background())
	a := &App{Config: cfg, Logger: logger, cancel: cancel}

	limited := llm.NewRateLimited(client, cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)
	a.Pipeline = services.NewDefaultPipeline(
		limited,
		services.PDFTextExtractor{},
		services.ExtractorConfig{
			MaxPages:              cfg.Pipeline.MaxPages,
			FullTextChars:         cfg.Pipeline.FullTextChars,
			ExtractionPromptChars: cfg.Pipeline.ExtractionPromptChars,
		},
		services.PipelineConfig{
			Concurrency:       cfg.Pipeline.Concurrency,
			EvaluationTimeout: cfg.Pipeline.EvaluationTimeout,
		},
		logger,
	)

	jobs, err := a.newJobStore(ctx, bgCtx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	// Optional collaborators stay untyped nil when unset so the analyzer skips them.
	var reports services.ReportSaver
	if cfg.GCP.ReportBucket != "" {
		sc, err := a.storageClient(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		reports = gcp.NewReportBucket(sc, cfg.GCP.ReportBucket, reportPrefix)
	}

	var handoff services.WorkflowStarter
	if cfg.GCP.WorkflowID != "" {
		trigger, err := gcp.NewWorkflowTrigger(ctx, cfg.GCP.ProjectID, cfg.GCP.WorkflowLocation, cfg.GCP.WorkflowID)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, trigger.Close)
		handoff = trigger
	}

	a.Analyzer = services.NewAnalyzer(a.Pipeline, jobs, reports, handoff, cfg.Store.TTL, logger)
	logger.Info("Analysis service initialized.",
		"environment", cfg.Environment,
		"llmProvider", cfg.LLM.Provider,
		"storeBackend", cfg.Store.Backend,
		"reportBucket", cfg.GCP.ReportBucket,
		"workflowId", cfg.GCP.WorkflowID,
	)
	return a, nil
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, func() error, error) {
	m := llm.Models{
		Fast:      cfg.LLM.FastModel,
		Analysis:  cfg.LLM.AnalysisModel,
		Reasoning: cfg.LLM.ReasoningModel,
	}
	switch cfg.LLM.Provider {
	case "vertex":
		c, err := gcp.NewVertexClient(ctx, cfg.GCP.ProjectID, cfg.GCP.Region, m)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case "gemini":
		c, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, m)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		c, err := llm.NewProvider(ctx, cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.BaseURL, m, cfg.LLM.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	}
}

func (a *App) newJobStore(ctx, bgCtx context.Context) (store.JobStore, error) {
	cfg := a.Config
	switch cfg.Store.Backend {
	case "redis":
		s, err := store.NewRedisStore(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case "firestore":
		fc, err := gcp.NewFirestoreClient(ctx, cfg.GCP.ProjectID, cfg.GCP.FirestoreDatabase)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, fc.Close)
		return store.NewFirestoreStore(fc, cfg.GCP.FirestoreCollection), nil
	default:
		s := store.NewMemoryStore()
		go s.RunSweeper(bgCtx, sweepInterval)
		return s, nil
	}
}

func (a *App) storageClient(ctx context.Context) (*storage.Client, error) {
	if a.storage != nil {
		return a.storage, nil
	}
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	a.storage = sc
	a.closers = append(a.closers, sc.Close)
	return sc, nil
}

// Router returns the HTTP API.
func (a *App) Router() http.Handler {
	return api.NewRouter(api.NewHandler(a.Analyzer, a.Config.Server.MaxUploadBytes, a.Logger))
}

// UploadFunction returns the bucket trigger handler. It opens a storage client on first use.
func (a *App) UploadFunction(ctx context.Context) (*services.UploadFunction, error) {
	sc, err := a.storageClient(ctx)
	if err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context, bucket, object string) (*gcp.ObjectInfo, error) {
		return gcp.DownloadObject(ctx, sc, bucket, object)
	}
	return services.NewUploadFunction(a.Analyzer, fetch, a.Config.DefaultFrameworks(), a.Logger), nil
}

// Close stops background work and closes clients in reverse order of creation.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
