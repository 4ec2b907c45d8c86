package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

func testProfile() *models.ExtractedProfile {
	return &models.ExtractedProfile{
		DocumentType:            models.DocumentTypeSystemSpec,
		UseCase:                 "Automated CV screening",
		SystemType:              "Classifier",
		HasPersonalData:         true,
		ComplianceTopicsCovered: []string{"bias testing"},
		FullText:                "The system ranks job applicants. A recruiter reviews every rejection.",
	}
}

// replyWith returns a client that answers every prompt with body and records the hint.
func replyWith(body string, hint *llm.ModelHint) llm.Client {
	return llm.ClientFunc(func(_ context.Context, _ string, model llm.ModelHint) (string, error) {
		if hint != nil {
			*hint = model
		}
		return body, nil
	})
}

const icoReply = "Here is the analysis:\n```json\n" + `{
  "document_type_detected": "SYSTEM_SPEC",
  "principle_1_safety": {"status": "MET", "evidence_found": ["tested quarterly"], "gap": "none", "priority": "LOW"},
  "principle_2_fairness": {"status": "NOT_MET", "evidence_found": [], "gap": "No bias testing", "priority": "CRITICAL"},
  "principle_4_contestability": {"status": "partially met", "evidence_found": "A recruiter reviews every rejection.", "gap": "No appeal route", "priority": "high"},
  "overall_score": 64.6,
  "critical_gaps": ["No bias testing"],
  "strengths": ["Human review"],
  "priority_actions": ["Run a bias audit", ...],
  "compliance_summary": "Partial alignment."
}` + "\n```"

func TestEvaluatorDecodesResponse(t *testing.T) {
	var hint llm.ModelHint
	e := NewICOEvaluator(replyWith(icoReply, &hint), nil)

	res := e.Evaluate(context.Background(), testProfile())

	assert.Equal(t, llm.ModelAnalysis, hint)
	assert.Equal(t, models.FrameworkICO, res.Framework)
	assert.Equal(t, "UK ICO", res.FrameworkLabel)
	assert.True(t, res.Assessed)
	assert.Equal(t, 65, res.Score)
	assert.Equal(t, 1, res.CriticalGapCount)
	assert.Equal(t, []string{"Run a bias audit"}, res.PriorityActions)
	assert.Equal(t, "Partial alignment.", res.Summary)
	assert.Equal(t, models.DocumentTypeSystemSpec, res.DocumentTypeDetected)

	require.Len(t, res.Findings, 3)
	assert.Equal(t, "principle_1_safety", res.Findings[0].Key)
	assert.Equal(t, "principle_2_fairness", res.Findings[1].Key)
	contest := res.Findings[2]
	assert.Equal(t, "principle_4_contestability", contest.Key)
	assert.Equal(t, models.StatusPartiallyMet, contest.Finding.Status)
	assert.Equal(t, models.PriorityHigh, contest.Finding.Priority)
	assert.Equal(t, models.StringList{"A recruiter reviews every rejection."}, contest.Finding.EvidenceQuotes)
}

func TestEvaluatorKeepsMembersAroundElidedValues(t *testing.T) {
	reply := `{"principle_2_fairness": {"status": "NOT_MET", "evidence_found": ..., "gap": "No bias testing", "priority": "CRITICAL"}, "compliance_summary": ..., "overall_score": 72}`
	e := NewICOEvaluator(replyWith(reply, nil), nil)

	res := e.Evaluate(context.Background(), testProfile())

	assert.True(t, res.Assessed)
	assert.Equal(t, 72, res.Score)
	assert.Equal(t, "Analysis completed.", res.Summary)
	assert.Equal(t, 1, res.CriticalGapCount)
	require.Len(t, res.Findings, 1)
	f := res.Findings[0].Finding
	assert.Equal(t, models.StatusNotMet, f.Status)
	assert.Equal(t, "No bias testing", f.GapDescription)
	assert.Equal(t, models.PriorityCritical, f.Priority)
	assert.Empty(t, f.EvidenceQuotes)
}

func TestEvaluatorFallsBackOnProseBracesOnly(t *testing.T) {
	e := NewICOEvaluator(replyWith("Scores use the {framework} rubric, see {appendix}.", nil), nil)

	res := e.Evaluate(context.Background(), testProfile())

	assert.False(t, res.Assessed)
	assert.Equal(t, 0, res.Score)
}

func TestEvaluatorFallback(t *testing.T) {
	tests := []struct {
		name   string
		client llm.Client
	}{
		{"client error", llm.ClientFunc(func(context.Context, string, llm.ModelHint) (string, error) {
			return "", &llm.APIError{Provider: "Perplexity", StatusCode: 429, Body: "rate limited"}
		})},
		{"empty response", llm.ClientFunc(func(context.Context, string, llm.ModelHint) (string, error) {
			return "", llm.ErrEmptyResponse
		})},
		{"no payload", replyWith("I am unable to assess this document.", nil)},
		{"not an object", replyWith(`["MET"]`, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewDPAEvaluator(tt.client, nil).Evaluate(context.Background(), testProfile())

			assert.Equal(t, models.FallbackResult(models.FrameworkDPA), res)
			assert.False(t, res.Assessed)
			assert.Zero(t, res.Score)
			assert.Empty(t, res.CriticalGaps)
			assert.Empty(t, res.Strengths)
			assert.Empty(t, res.PriorityActions)
			assert.Contains(t, res.Summary, "could not be completed")
		})
	}
}

func TestEvaluatorNilProfile(t *testing.T) {
	called := false
	client := llm.ClientFunc(func(context.Context, string, llm.ModelHint) (string, error) {
		called = true
		return "{}", nil
	})
	res := NewICOEvaluator(client, nil).Evaluate(context.Background(), nil)
	assert.False(t, called)
	assert.False(t, res.Assessed)
}

func TestEvaluatorPromptContents(t *testing.T) {
	var prompt string
	client := llm.ClientFunc(func(_ context.Context, p string, _ llm.ModelHint) (string, error) {
		prompt = p
		return `{"overall_score": 50}`, nil
	})
	res := NewISO42001Evaluator(client, nil).Evaluate(context.Background(), testProfile())

	assert.True(t, res.Assessed)
	assert.Equal(t, "Analysis completed.", res.Summary)
	assert.Contains(t, prompt, "ISO/IEC 42001:2023")
	assert.Contains(t, prompt, "DOCUMENT TYPE: SYSTEM_SPEC")
	assert.Contains(t, prompt, "- Topics covered: bias testing")
	assert.Contains(t, prompt, `"risk_management": {`)
	assert.Contains(t, prompt, "The system ranks job applicants.")
}

func TestISOUsesReasoningModel(t *testing.T) {
	var hint llm.ModelHint
	reply := "<think>The document describes a classifier...</think>\n{\"overall_score\": 40}"
	res := NewISO42001Evaluator(replyWith(reply, &hint), nil).Evaluate(context.Background(), testProfile())

	assert.Equal(t, llm.ModelReasoning, hint)
	assert.True(t, res.Assessed)
	assert.Equal(t, 40, res.Score)
}

func TestScoreField(t *testing.T) {
	e := NewICOEvaluator(replyWith("", nil), nil).(*frameworkEvaluator)
	tests := map[string]int{
		`{"overall_score": 72}`:     72,
		`{"overall_score": 150}`:    100,
		`{"overall_score": -3}`:     0,
		`{"overall_score": "high"}`: 0,
		`{}`:                        0,
	}
	for payload, want := range tests {
		res, err := e.decode([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, want, res.Score, payload)
	}
}

const euHighRiskReply = `{
  "risk_tier": "high_risk",
  "risk_justification": "Recruitment is listed in Annex III.",
  "eu_act_coverage": {"risk_classification_discussed": true},
  "evidence_found": ["ranks job applicants"],
  "obligations_if_high_risk": {
    "risk_management_system": {"status": "NOT_MET", "evidence_found": [], "gap": "No RMS", "priority": "CRITICAL"},
    "human_oversight": {"status": "MET", "evidence_found": ["A recruiter reviews every rejection."], "gap": "none", "priority": "LOW"}
  },
  "overall_score": 45,
  "priority_actions": ["Establish a risk management system"]
}`

func TestEUAIActHighRisk(t *testing.T) {
	res := NewEUAIActEvaluator(replyWith(euHighRiskReply, nil), nil).Evaluate(context.Background(), testProfile())

	require.NotNil(t, res.EUAIAct)
	assert.Equal(t, models.RiskTierHighRisk, res.RiskTier())
	assert.Equal(t, "Recruitment is listed in Annex III.", res.EUAIAct.RiskJustification)
	require.NotNil(t, res.EUAIAct.Coverage)
	assert.True(t, res.EUAIAct.Coverage.RiskClassificationDiscussed)
	assert.Equal(t, models.StringList{"ranks job applicants"}, res.EUAIAct.EvidenceFound)

	require.Len(t, res.Findings, 2)
	assert.Equal(t, "risk_management_system", res.Findings[0].Key)
	assert.Equal(t, "human_oversight", res.Findings[1].Key)
	assert.Equal(t, 1, res.CriticalGapCount)
}

func TestEUAIActObligationsIgnoredBelowHighRisk(t *testing.T) {
	reply := `{
  "risk_tier": "LIMITED_RISK",
  "obligations_if_high_risk": {
    "risk_management_system": {"status": "NOT_MET", "priority": "CRITICAL"}
  },
  "overall_score": 80
}`
	res := NewEUAIActEvaluator(replyWith(reply, nil), nil).Evaluate(context.Background(), testProfile())

	assert.Equal(t, models.RiskTierLimitedRisk, res.RiskTier())
	assert.Empty(t, res.Findings)
	assert.Zero(t, res.CriticalGapCount)
	assert.Equal(t, 80, res.Score)
}

func TestEUAIActMissingTier(t *testing.T) {
	res := NewEUAIActEvaluator(replyWith(`{"overall_score": 10}`, nil), nil).Evaluate(context.Background(), testProfile())
	assert.Equal(t, models.RiskTierUnknown, res.RiskTier())
	assert.True(t, res.Assessed)
}

func TestEvaluatorRespectsCancellation(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, _ string, _ llm.ModelHint) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewICOEvaluator(client, nil).Evaluate(ctx, testProfile())
	assert.False(t, res.Assessed)
}
