package services

import (
	"encoding/json"
	"log/slog"

	"github.com/Boakye-20/ai-compliance-tool/internal/catalog"
	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// NewEUAIActEvaluator classifies the system's EU AI Act risk tier and, for high-risk
// systems, assesses the Chapter III obligations.
func NewEUAIActEvaluator(client llm.Client, logger *slog.Logger) Evaluator {
	return newFrameworkEvaluator(models.FrameworkEUAIAct, client, llm.ModelAnalysis, promptSpec{
		intro: "You are an EU AI Act compliance specialist.",
		guidance: []string{
			`If document_type is "GUIDANCE": Assess whether it provides frameworks for EU AI Act compliance (risk classification, high-risk obligations, transparency). Government guidance covering these = HIGH score.`,
			`If document_type is "SYSTEM_SPEC": Assess specific system against EU AI Act requirements.`,
		},
		details: true,
	}, decodeEUAIAct, logger)
}

// decodeEUAIAct attaches obligation findings only for HIGH_RISK systems, so they are
// neither counted nor correlated for any other tier.
func decodeEUAIAct(fields map[string]json.RawMessage, def catalog.Definition, res *models.FrameworkResult) {
	details := &models.EUAIActDetails{
		RiskTier:          models.NormalizeRiskTier(stringField(fields, "risk_tier")),
		RiskJustification: stringField(fields, "risk_justification"),
		EvidenceFound:     listField(fields, "evidence_found"),
		SectionsRelevant:  listField(fields, "sections_relevant"),
	}
	if raw, ok := fields["eu_act_coverage"]; ok {
		var cov models.EUAIActCoverage
		if json.Unmarshal(raw, &cov) == nil {
			details.Coverage = &cov
		}
	}
	res.EUAIAct = details

	res.Findings = []models.KeyedFinding{}
	if details.RiskTier != models.RiskTierHighRisk {
		return
	}
	raw, ok := fields["obligations_if_high_risk"]
	if !ok {
		return
	}
	var obligations map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obligations); err != nil {
		return
	}
	res.Findings = decodeFindings(obligations, def)
}
