package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Boakye-20/ai-compliance-tool/internal/jsonrepair"
	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
	"github.com/Boakye-20/ai-compliance-tool/internal/telemetry"
)

var (
	// ErrInvalidDocument means the bytes could not be read as a document at all. It is
	// the only extraction failure that reaches the pipeline caller.
	ErrInvalidDocument = errors.New("invalid document")
)

type ExtractorConfig struct {
	MaxPages              int
	FullTextChars         int
	ExtractionPromptChars int
}

// DefaultExtractorConfig mirrors the pipeline defaults.
var DefaultExtractorConfig = ExtractorConfig{MaxPages: 30, FullTextChars: 50000, ExtractionPromptChars: 15000}

// Extractor produces the document profile every evaluator works from.
type Extractor struct {
	text   TextExtractor
	client llm.Client
	config ExtractorConfig
	logger *slog.Logger
}

func NewExtractor(text TextExtractor, client llm.Client, config ExtractorConfig, logger *slog.Logger) *Extractor {
	if text == nil {
		text = PDFTextExtractor{}
	}
	if config.MaxPages <= 0 {
		config.MaxPages = DefaultExtractorConfig.MaxPages
	}
	if config.FullTextChars <= 0 {
		config.FullTextChars = DefaultExtractorConfig.FullTextChars
	}
	if config.ExtractionPromptChars <= 0 {
		config.ExtractionPromptChars = DefaultExtractorConfig.ExtractionPromptChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{text: text, client: client, config: config, logger: logger}
}

// Extract reads the document text and asks the fast model for a structured profile.
// A model or parse failure yields a degraded profile; only unreadable input is an error.
func (e *Extractor) Extract(ctx context.Context, doc []byte) (*models.ExtractedProfile, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.extract")
	defer span.End()

	text, pageCount, err := e.text.ExtractText(ctx, doc, e.config.MaxPages)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	logCtx := e.logger.With("pageCount", pageCount, "textChars", len(text))
	fullText := truncateRunes(text, e.config.FullTextChars)

	profile, err := e.profile(ctx, text)
	if err != nil {
		logCtx.WarnContext(ctx, "Profile extraction failed, using degraded profile.", "error", err)
		profile = models.DegradedProfile(fullText)
	} else {
		profile.FullText = fullText
	}
	profile.PageCount = pageCount
	profile.Normalize()

	logCtx.InfoContext(ctx, "Document profile extracted.", "documentType", profile.DocumentType)
	return profile, nil
}

func (e *Extractor) profile(ctx context.Context, text string) (*models.ExtractedProfile, error) {
	prompt, err := renderPrompt(extractionTemplate, struct{ Text string }{truncateRunes(text, e.config.ExtractionPromptChars)})
	if err != nil {
		return nil, err
	}
	raw, err := e.client.Invoke(ctx, prompt, llm.ModelFast)
	if err != nil {
		return nil, err
	}
	payload, err := jsonrepair.Extract(raw)
	if err != nil {
		return nil, err
	}
	return decodeProfile(payload)
}

// decodeProfile reads each field on its own so one malformed value does not discard
// the rest of the profile.
func decodeProfile(payload []byte) (*models.ExtractedProfile, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	p := &models.ExtractedProfile{
		DocumentType:            models.NormalizeDocumentType(stringField(fields, "document_type")),
		UseCase:                 stringField(fields, "use_case"),
		SystemType:              stringField(fields, "system_type"),
		DataTypes:               listField(fields, "data_types"),
		HasPersonalData:         boolField(fields, "has_personal_data"),
		HasBiometricData:        boolField(fields, "has_biometric_data"),
		HasHumanOversight:       boolField(fields, "has_human_oversight"),
		DeploymentContext:       stringField(fields, "deployment_context"),
		RiskIndicators:          listField(fields, "risk_indicators"),
		ComplianceTopicsCovered: listField(fields, "compliance_topics_covered"),
		Keywords:                listField(fields, "keywords"),
	}
	return p, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}

func boolField(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s == "true" || s == "True" || s == "yes"
	}
	return false
}

func listField(fields map[string]json.RawMessage, key string) []string {
	var l models.StringList
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, &l)
	}
	if l == nil {
		return []string{}
	}
	return l
}

func truncateRunes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
