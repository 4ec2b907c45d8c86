package services

import (
	"log/slog"

	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// NewISO42001Evaluator assesses the ISO/IEC 42001 management system areas. It runs on
// the reasoning model, whose preamble the response parser strips.
func NewISO42001Evaluator(client llm.Client, logger *slog.Logger) Evaluator {
	return newFrameworkEvaluator(models.FrameworkISO42001, client, llm.ModelReasoning, promptSpec{
		intro: "You are an ISO/IEC 42001:2023 (AI Management System) compliance specialist.",
		guidance: []string{
			`If document_type is "GUIDANCE": Score based on whether it PROVIDES FRAMEWORKS for AI governance, risk management, lifecycle management. Government guidance covering these topics should score WELL.`,
			`If document_type is "SYSTEM_SPEC": Score based on specific organizational implementation.`,
		},
		details: true,
	}, nil, logger)
}
