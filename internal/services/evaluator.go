package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Boakye-20/ai-compliance-tool/internal/catalog"
	"github.com/Boakye-20/ai-compliance-tool/internal/jsonrepair"
	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/metrics"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
	"github.com/Boakye-20/ai-compliance-tool/internal/telemetry"
)

// Evaluator scores a document profile against one framework. Evaluate never fails:
// any error is logged and replaced by the framework's fallback result.
type Evaluator interface {
	Framework() models.Framework
	Evaluate(ctx context.Context, profile *models.ExtractedProfile) *models.FrameworkResult
}

// promptSpec is the framework-specific part of an evaluation prompt.
type promptSpec struct {
	intro    string
	guidance []string
	details  bool
}

// extensionDecoder reads framework-specific fields from the decoded payload. It owns
// result.Findings when set.
type extensionDecoder func(fields map[string]json.RawMessage, def catalog.Definition, res *models.FrameworkResult)

type frameworkEvaluator struct {
	def    catalog.Definition
	client llm.Client
	model  llm.ModelHint
	spec   promptSpec
	extend extensionDecoder
	logger *slog.Logger
}

func newFrameworkEvaluator(f models.Framework, client llm.Client, model llm.ModelHint, spec promptSpec, extend extensionDecoder, logger *slog.Logger) *frameworkEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &frameworkEvaluator{
		def:    catalog.Default().MustGet(f),
		client: client,
		model:  model,
		spec:   spec,
		extend: extend,
		logger: logger.With("framework", string(f)),
	}
}

func (e *frameworkEvaluator) Framework() models.Framework {
	return e.def.Code
}

func (e *frameworkEvaluator) Evaluate(ctx context.Context, profile *models.ExtractedProfile) *models.FrameworkResult {
	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.evaluate")
	span.SetAttributes(attribute.String("framework", string(e.def.Code)))
	defer span.End()

	start := time.Now()
	res, err := e.evaluate(ctx, profile)
	if err != nil {
		span.RecordError(err)
		e.logger.WarnContext(ctx, "Evaluation failed, using fallback result.", "error", err)
		res = models.FallbackResult(e.def.Code)
	} else {
		e.logger.InfoContext(ctx, "Evaluation complete.", "score", res.Score, "criticalGaps", res.CriticalGapCount)
	}
	span.SetAttributes(attribute.Int("score", res.Score), attribute.Bool("assessed", res.Assessed))
	metrics.RecordEvaluation(string(e.def.Code), res.Assessed, time.Since(start))
	return res
}

func (e *frameworkEvaluator) evaluate(ctx context.Context, profile *models.ExtractedProfile) (*models.FrameworkResult, error) {
	if profile == nil {
		return nil, errors.New("no document profile")
	}
	prompt, err := renderPrompt(evaluationTemplate, evaluationPrompt{
		Intro:       e.spec.intro,
		Guidance:    e.spec.guidance,
		Details:     e.spec.details,
		EUAIAct:     e.def.Code == models.FrameworkEUAIAct,
		DocType:     profile.DocumentType,
		Profile:     profile,
		Checkpoints: e.def.Checkpoints,
		Excerpt:     truncateRunes(profile.FullText, e.def.ExcerptChars),
	})
	if err != nil {
		return nil, err
	}

	raw, err := e.client.Invoke(ctx, prompt, e.model)
	if err != nil {
		return nil, fmt.Errorf("invoking model: %w", err)
	}
	payload, err := jsonrepair.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return e.decode(payload)
}

func (e *frameworkEvaluator) decode(payload []byte) (*models.FrameworkResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	res := &models.FrameworkResult{
		Framework:            e.def.Code,
		FrameworkLabel:       e.def.Label(),
		Assessed:             true,
		Score:                scoreField(fields, "overall_score"),
		CriticalGaps:         listField(fields, "critical_gaps"),
		Strengths:            listField(fields, "strengths"),
		PriorityActions:      listField(fields, "priority_actions"),
		Summary:              stringField(fields, "compliance_summary"),
		DocumentTypeDetected: models.NormalizeDocumentType(stringField(fields, "document_type_detected")),
	}
	if res.Summary == "" {
		res.Summary = "Analysis completed."
	}

	if e.extend != nil {
		e.extend(fields, e.def, res)
	} else {
		res.Findings = decodeFindings(fields, e.def)
	}
	if res.Findings == nil {
		res.Findings = []models.KeyedFinding{}
	}
	res.CriticalGapCount = res.CountCritical()
	return res, nil
}

// decodeFindings reads the checkpoint objects in catalog order, skipping any the model
// omitted or malformed.
func decodeFindings(fields map[string]json.RawMessage, def catalog.Definition) []models.KeyedFinding {
	out := make([]models.KeyedFinding, 0, len(def.Checkpoints))
	for _, cp := range def.Checkpoints {
		raw, ok := fields[cp.Key]
		if !ok {
			continue
		}
		var f models.PrincipleFinding
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		if f.EvidenceQuotes == nil {
			f.EvidenceQuotes = models.StringList{}
		}
		out = append(out, models.KeyedFinding{Key: cp.Key, Finding: f})
	}
	return out
}

// scoreField returns a numeric score rounded and clamped to 0..100. Anything that is
// not a JSON number scores 0.
func scoreField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 100:
		return 100
	}
	return int(math.Round(v))
}
