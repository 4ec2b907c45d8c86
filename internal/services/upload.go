package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Boakye-20/ai-compliance-tool/internal/gcp"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// FrameworksMetadataKey is the object metadata key listing the frameworks to assess,
// comma-separated.
const FrameworksMetadataKey = "frameworks"

type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ObjectFetcher reads an uploaded object and its metadata.
type ObjectFetcher func(ctx context.Context, bucket, object string) (*gcp.ObjectInfo, error)

// UploadFunction analyses PDFs as they land in a bucket.
type UploadFunction struct {
	analyzer          *Analyzer
	fetch             ObjectFetcher
	defaultFrameworks []models.Framework
	logger            *slog.Logger
}

func NewUploadFunction(analyzer *Analyzer, fetch ObjectFetcher, defaultFrameworks []models.Framework, logger *slog.Logger) *UploadFunction {
	if logger == nil {
		logger = slog.Default()
	}
	if len(defaultFrameworks) == 0 {
		defaultFrameworks = models.AllFrameworks
	}
	return &UploadFunction{
		analyzer:          analyzer,
		fetch:             fetch,
		defaultFrameworks: defaultFrameworks,
		logger:            logger,
	}
}

// Process runs one analysis for a finalized object. Permanent input problems are logged
// and swallowed so the event is not redelivered; transient failures are returned.
func (f *UploadFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := f.logger.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if !strings.EqualFold(path.Ext(e.Name), ".pdf") {
		logCtx.Info("Ignoring non-PDF object.")
		return nil
	}
	logCtx.Info("Processing new GCS object.")

	obj, err := f.fetch(ctx, e.Bucket, e.Name)
	if errors.Is(err, gcp.ErrObjectTooLarge) {
		logCtx.Error("Source PDF is too large. Skipping.", "error", err)
		return nil
	}
	if err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return err
	}
	sum := sha256.Sum256(obj.Data)
	logCtx = logCtx.With("fileHash", hex.EncodeToString(sum[:]))

	frameworks, err := f.frameworksFor(obj.Metadata)
	if err != nil {
		logCtx.Error("Invalid frameworks metadata. Skipping.", "error", err)
		return nil
	}

	job, err := f.analyzer.Analyze(ctx, path.Base(e.Name), obj.Data, frameworks, func(msg string) {
		logCtx.Debug("Pipeline status.", "status", msg)
	})
	if errors.Is(err, ErrInvalidDocument) {
		logCtx.Error("Object is not a readable PDF. Skipping.", "error", err)
		return nil
	}
	if err != nil {
		logCtx.Error("Analysis failed", "error", err)
		return fmt.Errorf("analysis of gs://%s/%s failed: %w", e.Bucket, e.Name, err)
	}

	logCtx.Info("Analysis complete.", "jobId", job.ID, "reportUri", job.ReportURI)
	return nil
}

func (f *UploadFunction) frameworksFor(metadata map[string]string) ([]models.Framework, error) {
	raw := strings.TrimSpace(metadata[FrameworksMetadataKey])
	if raw == "" {
		return f.defaultFrameworks, nil
	}
	var codes []string
	for _, c := range strings.Split(raw, ",") {
		if strings.TrimSpace(c) != "" {
			codes = append(codes, c)
		}
	}
	frameworks, err := models.ParseFrameworks(codes)
	if err != nil {
		return nil, err
	}
	if len(frameworks) == 0 {
		return f.defaultFrameworks, nil
	}
	return frameworks, nil
}
