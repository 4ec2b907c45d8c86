package models

import (
	"encoding/json"
	"strings"
)

// Status is the compliance verdict for a single checkpoint.
type Status string

const (
	StatusMet             Status = "MET"
	StatusPartiallyMet    Status = "PARTIALLY_MET"
	StatusNotMet          Status = "NOT_MET"
	StatusEvidenceMissing Status = "EVIDENCE_MISSING"
	StatusNotApplicable   Status = "N/A"
)

// NormalizeStatus upper-cases the value and converts spaces and dashes to underscores.
// Values outside the known set are kept so they remain visible in reports.
func NormalizeStatus(s string) Status {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "N/A", "NA", "N_A", "NOT_APPLICABLE", "NOT APPLICABLE":
		return StatusNotApplicable
	}
	return Status(strings.NewReplacer(" ", "_", "-", "_").Replace(v))
}

// Failing reports whether the status counts as a gap for cross-framework correlation.
func (s Status) Failing() bool {
	return s == StatusNotMet || s == StatusEvidenceMissing
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = NormalizeStatus(v)
	return nil
}

// Priority ranks how urgently a gap should be addressed.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

func (p *Priority) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*p = ""
		return nil
	}
	*p = Priority(strings.ToUpper(strings.TrimSpace(v)))
	return nil
}

// PrincipleFinding is one regulatory checkpoint's assessment.
type PrincipleFinding struct {
	Status           Status     `json:"status" firestore:"status"`
	EvidenceQuotes   StringList `json:"evidence_found" firestore:"evidenceFound"`
	SectionsRelevant StringList `json:"sections_relevant,omitempty" firestore:"sectionsRelevant,omitempty"`
	GapDescription   string     `json:"gap" firestore:"gap"`
	Priority         Priority   `json:"priority" firestore:"priority"`
}

// KeyedFinding pairs a checkpoint key with its finding so every framework exposes
// its findings the same way, in catalog order.
type KeyedFinding struct {
	Key     string           `json:"key" firestore:"key"`
	Finding PrincipleFinding `json:"finding" firestore:"finding"`
}

// StringList decodes either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var many []any
	if err := json.Unmarshal(b, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, v := range many {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if strings.TrimSpace(one) == "" {
			*l = StringList{}
		} else {
			*l = StringList{one}
		}
		return nil
	}
	*l = StringList{}
	return nil
}
