package services

import (
	"log/slog"

	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// NewICOEvaluator assesses the five ICO AI principles.
func NewICOEvaluator(client llm.Client, logger *slog.Logger) Evaluator {
	return newFrameworkEvaluator(models.FrameworkICO, client, llm.ModelAnalysis, promptSpec{
		intro: "You are a UK ICO AI compliance specialist analyzing against the 5 ICO AI principles.",
	}, nil, logger)
}
