package models

import (
	"encoding/json"
	"strings"
)

// DocumentType classifies what kind of document was submitted.
type DocumentType string

const (
	DocumentTypeGuidance   DocumentType = "GUIDANCE"
	DocumentTypeSystemSpec DocumentType = "SYSTEM_SPEC"
	DocumentTypeStrategy   DocumentType = "STRATEGY"
	DocumentTypeAssessment DocumentType = "ASSESSMENT"
	DocumentTypeUnknown    DocumentType = "UNKNOWN"
)

// NormalizeDocumentType maps free-form model output onto a known DocumentType.
func NormalizeDocumentType(s string) DocumentType {
	switch DocumentType(strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, " ", "_")))) {
	case DocumentTypeGuidance:
		return DocumentTypeGuidance
	case DocumentTypeSystemSpec:
		return DocumentTypeSystemSpec
	case DocumentTypeStrategy:
		return DocumentTypeStrategy
	case DocumentTypeAssessment:
		return DocumentTypeAssessment
	default:
		return DocumentTypeUnknown
	}
}

// UnmarshalJSON normalises the value so unknown types decode as UNKNOWN.
func (d *DocumentType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = DocumentTypeUnknown
		return nil
	}
	*d = NormalizeDocumentType(s)
	return nil
}

// ExtractedProfile is the structured description of a document produced once per run.
// It is read-only after extraction completes.
type ExtractedProfile struct {
	DocumentType            DocumentType `json:"document_type" firestore:"documentType"`
	UseCase                 string       `json:"use_case" firestore:"useCase"`
	SystemType              string       `json:"system_type" firestore:"systemType"`
	DataTypes               []string     `json:"data_types" firestore:"dataTypes"`
	HasPersonalData         bool         `json:"has_personal_data" firestore:"hasPersonalData"`
	HasBiometricData        bool         `json:"has_biometric_data" firestore:"hasBiometricData"`
	HasHumanOversight       bool         `json:"has_human_oversight" firestore:"hasHumanOversight"`
	DeploymentContext       string       `json:"deployment_context" firestore:"deploymentContext"`
	RiskIndicators          []string     `json:"risk_indicators" firestore:"riskIndicators"`
	ComplianceTopicsCovered []string     `json:"compliance_topics_covered" firestore:"complianceTopicsCovered"`
	Keywords                []string     `json:"keywords" firestore:"keywords"`
	PageCount               int          `json:"page_count" firestore:"pageCount"`
	FullText                string       `json:"full_text,omitempty" firestore:"-"`
}

// DegradedProfile is returned when the structured profile could not be extracted.
// Personal data is assumed present so privacy frameworks are not under-assessed.
func DegradedProfile(fullText string) *ExtractedProfile {
	return &ExtractedProfile{
		DocumentType:            DocumentTypeUnknown,
		UseCase:                 "Unable to extract - see full text",
		SystemType:              "Unknown",
		DataTypes:               []string{},
		HasPersonalData:         true,
		DeploymentContext:       "Unknown",
		RiskIndicators:          []string{},
		ComplianceTopicsCovered: []string{},
		Keywords:                []string{},
		FullText:                fullText,
	}
}

// Normalize fills nil collections, de-duplicates set-valued fields and fixes the document type.
func (p *ExtractedProfile) Normalize() {
	if p.DocumentType == "" {
		p.DocumentType = DocumentTypeUnknown
	}
	p.DataTypes = uniqueStrings(p.DataTypes)
	p.ComplianceTopicsCovered = uniqueStrings(p.ComplianceTopicsCovered)
	p.Keywords = uniqueStrings(p.Keywords)
	if p.RiskIndicators == nil {
		p.RiskIndicators = []string{}
	}
}

// WithoutFullText returns a shallow copy with the document text removed, for transport.
func (p *ExtractedProfile) WithoutFullText() *ExtractedProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.FullText = ""
	return &cp
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
