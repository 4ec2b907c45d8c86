package models

import "fmt"

// RiskTier is the EU AI Act risk classification.
type RiskTier string

const (
	RiskTierProhibited  RiskTier = "PROHIBITED"
	RiskTierHighRisk    RiskTier = "HIGH_RISK"
	RiskTierLimitedRisk RiskTier = "LIMITED_RISK"
	RiskTierMinimalRisk RiskTier = "MINIMAL_RISK"
	RiskTierGuidance    RiskTier = "N/A_GUIDANCE"
	RiskTierUnknown     RiskTier = "UNKNOWN"
)

// NormalizeRiskTier maps model output onto a known tier, defaulting to UNKNOWN.
func NormalizeRiskTier(s string) RiskTier {
	switch v := RiskTier(NormalizeStatus(s)); v {
	case RiskTierProhibited, RiskTierHighRisk, RiskTierLimitedRisk, RiskTierMinimalRisk, RiskTierGuidance:
		return v
	case "N/A", "GUIDANCE", "N/A_GUIDANCE_DOCUMENT":
		return RiskTierGuidance
	default:
		return RiskTierUnknown
	}
}

// EUAIActCoverage records which parts of the Act a guidance document discusses.
type EUAIActCoverage struct {
	RiskClassificationDiscussed       bool `json:"risk_classification_discussed" firestore:"riskClassificationDiscussed"`
	HighRiskObligationsDiscussed      bool `json:"high_risk_obligations_discussed" firestore:"highRiskObligationsDiscussed"`
	TransparencyRequirementsDiscussed bool `json:"transparency_requirements_discussed" firestore:"transparencyRequirementsDiscussed"`
	ProhibitedPracticesDiscussed      bool `json:"prohibited_practices_discussed" firestore:"prohibitedPracticesDiscussed"`
}

// EUAIActDetails carries the fields only the EU AI Act evaluator produces. The conditional
// obligation findings live in FrameworkResult.Findings and are only present for HIGH_RISK.
type EUAIActDetails struct {
	RiskTier          RiskTier         `json:"risk_tier" firestore:"riskTier"`
	RiskJustification string           `json:"risk_justification" firestore:"riskJustification"`
	Coverage          *EUAIActCoverage `json:"eu_act_coverage,omitempty" firestore:"coverage,omitempty"`
	EvidenceFound     StringList       `json:"evidence_found" firestore:"evidenceFound"`
	SectionsRelevant  StringList       `json:"sections_relevant" firestore:"sectionsRelevant"`
}

// FrameworkResult is one framework's full evaluation.
type FrameworkResult struct {
	Framework            Framework       `json:"framework_code" firestore:"frameworkCode"`
	FrameworkLabel       string          `json:"framework" firestore:"framework"`
	Assessed             bool            `json:"assessed" firestore:"assessed"`
	Score                int             `json:"score" firestore:"score"`
	CriticalGapCount     int             `json:"critical_gaps_count" firestore:"criticalGapsCount"`
	CriticalGaps         []string        `json:"critical_gaps" firestore:"criticalGaps"`
	Strengths            []string        `json:"strengths" firestore:"strengths"`
	PriorityActions      []string        `json:"priority_actions" firestore:"priorityActions"`
	Summary              string          `json:"compliance_summary" firestore:"complianceSummary"`
	DocumentTypeDetected DocumentType    `json:"document_type_detected,omitempty" firestore:"documentTypeDetected,omitempty"`
	Findings             []KeyedFinding  `json:"findings" firestore:"findings"`
	EUAIAct              *EUAIActDetails `json:"eu_ai_act,omitempty" firestore:"euAiAct,omitempty"`
}

// FallbackResult is substituted whenever a framework could not be evaluated.
func FallbackResult(f Framework) *FrameworkResult {
	r := &FrameworkResult{
		Framework:       f,
		FrameworkLabel:  f.Label(),
		CriticalGaps:    []string{},
		Strengths:       []string{},
		PriorityActions: []string{},
		Findings:        []KeyedFinding{},
		Summary:         fmt.Sprintf("%s analysis could not be completed. Treat this framework as not yet assessed.", f.Label()),
	}
	if f == FrameworkEUAIAct {
		r.EUAIAct = &EUAIActDetails{RiskTier: RiskTierUnknown}
	}
	return r
}

// Finding returns the finding recorded for a checkpoint key.
func (r *FrameworkResult) Finding(key string) (PrincipleFinding, bool) {
	if r == nil {
		return PrincipleFinding{}, false
	}
	for _, kf := range r.Findings {
		if kf.Key == key {
			return kf.Finding, true
		}
	}
	return PrincipleFinding{}, false
}

// CountCritical returns how many findings carry CRITICAL priority.
func (r *FrameworkResult) CountCritical() int {
	n := 0
	for _, kf := range r.Findings {
		if kf.Finding.Priority == PriorityCritical {
			n++
		}
	}
	return n
}

// RiskTier returns the EU AI Act tier, or UNKNOWN for other frameworks.
func (r *FrameworkResult) RiskTier() RiskTier {
	if r == nil || r.EUAIAct == nil {
		return RiskTierUnknown
	}
	return r.EUAIAct.RiskTier
}
