package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// ErrSynthesisInput means the evaluator results handed to Synthesize are inconsistent.
// It indicates a defect upstream and aborts the run.
var ErrSynthesisInput = errors.New("invalid synthesis input")

// MaxPriorityActions caps the merged remediation list.
const MaxPriorityActions = 10

type gapCheck struct {
	framework models.Framework
	key       string
}

type gapPattern struct {
	issue          string
	checks         []gapCheck
	recommendation string
}

// crossFrameworkPatterns are evaluated in order; each check names the checkpoint whose
// failure in that framework counts towards the pattern.
var crossFrameworkPatterns = []gapPattern{
	{
		issue: "Bias and Fairness Gap",
		checks: []gapCheck{
			{models.FrameworkICO, "principle_2_fairness"},
			{models.FrameworkEUAIAct, "data_governance"},
		},
		recommendation: "Implement comprehensive bias testing across training data and model outputs.",
	},
	{
		issue: "Human Oversight Gap",
		checks: []gapCheck{
			{models.FrameworkICO, "principle_4_contestability"},
			{models.FrameworkEUAIAct, "human_oversight"},
			{models.FrameworkDPA, "article_22_adm"},
		},
		recommendation: "Establish clear human review processes and appeal mechanisms for AI decisions.",
	},
	{
		issue: "Transparency Gap",
		checks: []gapCheck{
			{models.FrameworkICO, "principle_2_fairness"},
			{models.FrameworkDPA, "article_13_transparency"},
			{models.FrameworkEUAIAct, "transparency"},
		},
		recommendation: "Develop explainability documentation and user-facing AI disclosure notices.",
	},
	{
		issue: "Risk Management Gap",
		checks: []gapCheck{
			{models.FrameworkICO, "principle_1_safety"},
			{models.FrameworkISO42001, "risk_management"},
			{models.FrameworkEUAIAct, "risk_management_system"},
		},
		recommendation: "Implement formal AI risk assessment and treatment processes.",
	},
	{
		issue: "Data Protection Impact Assessment Gap",
		checks: []gapCheck{
			{models.FrameworkDPA, "article_35_dpia"},
			{models.FrameworkICO, "principle_5_data_minimization"},
		},
		recommendation: "Complete or update DPIA covering all AI processing activities.",
	},
}

// Synthesize aggregates the evaluated frameworks. Nil results are frameworks that were
// not requested; they take no part in scoring, correlation or action merging.
func Synthesize(ico, dpa, euAct, iso *models.FrameworkResult, requested []models.Framework) (*models.Synthesis, error) {
	slots := map[models.Framework]*models.FrameworkResult{
		models.FrameworkICO:      ico,
		models.FrameworkDPA:      dpa,
		models.FrameworkEUAIAct:  euAct,
		models.FrameworkISO42001: iso,
	}
	for _, f := range requested {
		if !f.Valid() {
			return nil, fmt.Errorf("%w: unknown framework %q requested", ErrSynthesisInput, f)
		}
		if slots[f] == nil {
			return nil, fmt.Errorf("%w: no result for requested framework %s", ErrSynthesisInput, f)
		}
	}

	var present []*models.FrameworkResult
	for _, f := range models.AllFrameworks {
		res := slots[f]
		if res == nil {
			continue
		}
		if res.Framework != f {
			return nil, fmt.Errorf("%w: %s result passed in the %s slot", ErrSynthesisInput, res.Framework, f)
		}
		if res.Score < 0 || res.Score > 100 {
			return nil, fmt.Errorf("%w: %s score %d outside 0..100", ErrSynthesisInput, f, res.Score)
		}
		present = append(present, res)
	}

	s := &models.Synthesis{
		PerFrameworkScore:   make(map[string]int, len(present)),
		FrameworksEvaluated: make([]string, 0, len(present)),
		CrossFrameworkGaps:  crossFrameworkGaps(slots),
		PriorityActions:     mergePriorityActions(present),
	}

	var weighted, totalWeight int
	for _, res := range present {
		label := res.Framework.Label()
		s.PerFrameworkScore[label] = res.Score
		s.FrameworksEvaluated = append(s.FrameworksEvaluated, label)
		s.TotalCriticalGaps += res.CriticalGapCount

		w := res.Framework.WeightPercent()
		weighted += res.Score * w
		totalWeight += w
	}
	if totalWeight > 0 {
		s.CompositeScore = int(math.Round(float64(weighted) / float64(totalWeight)))
	}
	s.SummaryText = summaryText(s.CompositeScore, s.TotalCriticalGaps)
	return s, nil
}

func crossFrameworkGaps(slots map[models.Framework]*models.FrameworkResult) []models.CrossFrameworkGap {
	gaps := []models.CrossFrameworkGap{}
	for _, p := range crossFrameworkPatterns {
		var impacts []string
		for _, c := range p.checks {
			res := slots[c.framework]
			if res == nil {
				continue
			}
			if f, ok := res.Finding(c.key); ok && f.Status.Failing() {
				impacts = append(impacts, c.framework.Label())
			}
		}
		if len(impacts) >= 2 {
			gaps = append(gaps, models.CrossFrameworkGap{
				IssueName:          p.issue,
				ImpactedFrameworks: impacts,
				Recommendation:     p.recommendation,
			})
		}
	}
	return gaps
}

func mergePriorityActions(results []*models.FrameworkResult) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, res := range results {
		for _, a := range res.PriorityActions {
			if seen[a] {
				continue
			}
			seen[a] = true
			out = append(out, a)
			if len(out) == MaxPriorityActions {
				return out
			}
		}
	}
	return out
}

func summaryText(score, criticalGaps int) string {
	switch {
	case score >= 70:
		if criticalGaps > 0 {
			return fmt.Sprintf("Good compliance posture with UK AI governance frameworks (UK Alignment Score: %d%%). %d gaps require attention.", score, criticalGaps)
		}
		return fmt.Sprintf("Good compliance posture with UK AI governance frameworks (UK Alignment Score: %d%%). No critical gaps identified.", score)
	case score >= 50:
		return fmt.Sprintf("Partial compliance with UK AI governance frameworks (UK Alignment Score: %d%%). %d critical gaps require remediation.", score, criticalGaps)
	default:
		return fmt.Sprintf("Critical compliance gaps with UK AI governance frameworks (UK Alignment Score: %d%%). %d critical gaps require immediate attention.", score, criticalGaps)
	}
}
