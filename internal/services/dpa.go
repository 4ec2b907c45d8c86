package services

import (
	"log/slog"

	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// NewDPAEvaluator assesses the UK DPA 2018 / UK GDPR articles that bear on AI processing.
func NewDPAEvaluator(client llm.Client, logger *slog.Logger) Evaluator {
	return newFrameworkEvaluator(models.FrameworkDPA, client, llm.ModelAnalysis, promptSpec{
		intro: "You are a UK Data Protection Act 2018 specialist analyzing AI compliance against the UK GDPR.",
	}, nil, logger)
}
