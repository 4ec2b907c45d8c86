package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/metrics"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
	"github.com/Boakye-20/ai-compliance-tool/internal/telemetry"
)

// DocumentExtractor produces the document profile. An error aborts the run.
type DocumentExtractor interface {
	Extract(ctx context.Context, doc []byte) (*models.ExtractedProfile, error)
}

// ReportRenderer turns a finished run into a downloadable artifact.
type ReportRenderer interface {
	Render(run *models.PipelineRun) (contentType string, data []byte, err error)
}

// StatusFunc receives each status message as it is appended to the run's log.
type StatusFunc func(msg string)

type PipelineConfig struct {
	// Concurrency bounds in-flight evaluator calls. Zero or less runs every requested
	// framework at once.
	Concurrency int
	// EvaluationTimeout bounds each evaluator call. Zero disables the bound.
	EvaluationTimeout time.Duration
}

// Pipeline sequences extraction, selection, evaluation, synthesis and report rendering.
// A Pipeline holds no per-run state and may serve concurrent runs.
type Pipeline struct {
	extractor  DocumentExtractor
	evaluators map[models.Framework]Evaluator
	renderer   ReportRenderer
	config     PipelineConfig
	logger     *slog.Logger
}

func NewPipeline(extractor DocumentExtractor, evaluators []Evaluator, renderer ReportRenderer, config PipelineConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	byFramework := make(map[models.Framework]Evaluator, len(evaluators))
	for _, e := range evaluators {
		byFramework[e.Framework()] = e
	}
	return &Pipeline{
		extractor:  extractor,
		evaluators: byFramework,
		renderer:   renderer,
		config:     config,
		logger:     logger,
	}
}

// NewDefaultPipeline wires the PDF extractor, the four framework evaluators and the
// Markdown report renderer around one model client.
func NewDefaultPipeline(client llm.Client, text TextExtractor, extractorConfig ExtractorConfig, config PipelineConfig, logger *slog.Logger) *Pipeline {
	evaluators := []Evaluator{
		NewICOEvaluator(client, logger),
		NewDPAEvaluator(client, logger),
		NewEUAIActEvaluator(client, logger),
		NewISO42001Evaluator(client, logger),
	}
	return NewPipeline(NewExtractor(text, client, extractorConfig, logger), evaluators, NewMarkdownRenderer(), config, logger)
}

var statusNames = map[models.Framework]string{
	models.FrameworkICO:      "ICO",
	models.FrameworkDPA:      "DPA/GDPR",
	models.FrameworkEUAIAct:  "EU AI Act",
	models.FrameworkISO42001: "ISO 42001",
}

// statusLog is the run's ordered progress log. Evaluators finish concurrently, so
// appends are serialised.
type statusLog struct {
	mu       sync.Mutex
	run      *models.PipelineRun
	onStatus StatusFunc
}

func (l *statusLog) add(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.run.StatusMessages = append(l.run.StatusMessages, msg)
	if l.onStatus != nil {
		l.onStatus(msg)
	}
}

// Run analyses one document against the requested frameworks. Only extraction and
// synthesis failures are returned as errors; a framework that cannot be evaluated is
// represented by its fallback result.
func (p *Pipeline) Run(ctx context.Context, doc []byte, requested []models.Framework, onStatus StatusFunc) (*models.PipelineRun, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.run")
	defer span.End()

	// Repeated codes collapse to their first occurrence.
	unique := make([]models.Framework, 0, len(requested))
	for _, f := range requested {
		if !f.Valid() {
			return nil, fmt.Errorf("unknown framework %q", f)
		}
		if !models.ContainsFramework(unique, f) {
			unique = append(unique, f)
		}
	}
	requested = unique

	run := &models.PipelineRun{
		RequestedFrameworks: requested,
		StatusMessages:      []string{},
	}
	status := &statusLog{run: run, onStatus: onStatus}
	fail := func(stage string, err error) (*models.PipelineRun, error) {
		status.add("Error: %v", err)
		span.RecordError(err)
		metrics.RecordRun("failure")
		p.logger.ErrorContext(ctx, "Pipeline run failed.", "stage", stage, "error", err)
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	status.add("Extracting document data...")
	profile, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		return fail("extraction", err)
	}
	run.Profile = profile
	status.add("Extracted: %s document", profile.DocumentType)

	status.add("Routing to frameworks...")
	run.SelectedFrameworks = Select(profile, requested)
	status.add("Frameworks: %s", joinFrameworks(run.SelectedFrameworks))
	if extra := notSelected(SuggestFrameworks(profile), run.SelectedFrameworks); len(extra) > 0 {
		status.add("Profile also suggests: %s (not added)", joinFrameworks(extra))
	}
	span.SetAttributes(attribute.String("frameworks", joinFrameworks(run.SelectedFrameworks)))

	for _, res := range p.evaluate(ctx, profile, run.SelectedFrameworks, status) {
		run.SetResult(res)
	}

	status.add("Synthesizing results...")
	synthesis, err := Synthesize(run.ICO, run.DPA, run.EUAIAct, run.ISO42001, run.SelectedFrameworks)
	if err != nil {
		return fail("synthesis", err)
	}
	run.Synthesis = synthesis
	status.add("UK Alignment Score: %d%%", synthesis.CompositeScore)
	metrics.RecordComposite(synthesis.CompositeScore)
	for _, g := range synthesis.CrossFrameworkGaps {
		metrics.RecordCrossFrameworkGap(g.IssueName)
	}

	if p.renderer != nil {
		status.add("Generating report...")
		contentType, data, err := p.renderer.Render(run)
		if err != nil {
			p.logger.WarnContext(ctx, "Report rendering failed.", "error", err)
			status.add("Report generation failed: %v", err)
		} else {
			run.ReportContentType = contentType
			run.ReportBytes = data
			status.add("Report ready")
		}
	}

	metrics.RecordRun("success")
	p.logger.InfoContext(ctx, "Pipeline run complete.",
		"compositeScore", synthesis.CompositeScore,
		"frameworks", len(run.SelectedFrameworks),
		"crossFrameworkGaps", len(synthesis.CrossFrameworkGaps),
	)
	return run, nil
}

// evaluate runs the selected evaluators through a bounded pool. Each goroutine writes
// only its own slot; the results are read after Wait.
func (p *Pipeline) evaluate(ctx context.Context, profile *models.ExtractedProfile, selected []models.Framework, status *statusLog) []*models.FrameworkResult {
	results := make([]*models.FrameworkResult, len(selected))

	var g errgroup.Group
	if p.config.Concurrency > 0 {
		g.SetLimit(p.config.Concurrency)
	}
	for i, f := range selected {
		status.add("Analyzing %s compliance...", statusNames[f])
		g.Go(func() error {
			res := p.evaluateOne(ctx, f, profile)
			results[i] = res
			if f == models.FrameworkEUAIAct {
				status.add("%s: %d%% - %s", statusNames[f], res.Score, res.RiskTier())
			} else {
				status.add("%s: %d%% (%d critical gaps)", statusNames[f], res.Score, res.CriticalGapCount)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pipeline) evaluateOne(ctx context.Context, f models.Framework, profile *models.ExtractedProfile) (res *models.FrameworkResult) {
	evaluator, ok := p.evaluators[f]
	if !ok {
		p.logger.WarnContext(ctx, "No evaluator configured.", "framework", string(f))
		return models.FallbackResult(f)
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "Evaluator panicked, using fallback result.", "framework", string(f), "panic", r)
			res = models.FallbackResult(f)
		}
	}()

	if p.config.EvaluationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.EvaluationTimeout)
		defer cancel()
	}
	res = evaluator.Evaluate(ctx, profile)
	if res == nil || res.Framework != f {
		return models.FallbackResult(f)
	}
	return res
}

func joinFrameworks(fs []models.Framework) string {
	if len(fs) == 0 {
		return "none"
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

func notSelected(suggested, selected []models.Framework) []models.Framework {
	var out []models.Framework
	for _, f := range suggested {
		if !models.ContainsFramework(selected, f) {
			out = append(out, f)
		}
	}
	return out
}
