package services

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Boakye-20/ai-compliance-tool/internal/catalog"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

var promptFuncs = template.FuncMap{
	"add1": func(i int) int { return i + 1 },
	"join": strings.Join,
}

var extractionTemplate = template.Must(template.New("extraction").Parse(`
You are extracting key information from a document related to AI systems.

Document text (first portion):
{{.Text}}

FIRST: Determine the document type:
- "GUIDANCE" = Policy, playbook, framework, best practices guide (tells others what to do)
- "SYSTEM_SPEC" = Procurement doc, vendor spec, DPIA, technical spec (describes a specific AI system)
- "STRATEGY" = High-level strategy, vision document (aspirational, not operational)
- "ASSESSMENT" = Audit report, compliance assessment, gap analysis

Extract and return ONLY a JSON object:
{
  "document_type": "GUIDANCE" | "SYSTEM_SPEC" | "STRATEGY" | "ASSESSMENT",
  "use_case": "Brief description of what this document covers",
  "system_type": "Type of AI system discussed (or 'N/A - Guidance document')",
  "data_types": ["List", "of", "data", "types", "mentioned"],
  "has_personal_data": true/false,
  "has_biometric_data": true/false,
  "has_human_oversight": true/false,
  "deployment_context": "Where/how AI is deployed (or 'General guidance')",
  "risk_indicators": ["List", "of", "risks", "discussed"],
  "compliance_topics_covered": ["List topics like 'bias testing', 'DPIA', 'transparency', 'human oversight'"],
  "keywords": ["Key", "terms", "from", "document"]
}

CRITICAL: Output ONLY valid JSON, no markdown, no explanation.
`))

// evaluationPrompt is the data behind every framework prompt.
type evaluationPrompt struct {
	Intro       string
	Guidance    []string
	Details     bool
	EUAIAct     bool
	DocType     models.DocumentType
	Profile     *models.ExtractedProfile
	Checkpoints []catalog.Checkpoint
	Excerpt     string
}

func (p evaluationPrompt) Topics() string {
	if len(p.Profile.ComplianceTopicsCovered) == 0 {
		return "None identified"
	}
	return strings.Join(p.Profile.ComplianceTopicsCovered, ", ")
}

var evaluationTemplate = template.Must(template.New("evaluation").Funcs(promptFuncs).Parse(`
{{.Intro}}

TASK: Create a JSON object with your analysis - NO TEXT before or after the JSON object.

DOCUMENT TYPE: {{.DocType}}
{{- if .Guidance}}

CRITICAL SCORING GUIDANCE:
{{- range .Guidance}}
- {{.}}
{{- end}}
{{- end}}

DOCUMENT DETAILS:
- Document type: {{.DocType}}
- Use case: {{or .Profile.UseCase "Unknown"}}
{{- if .Details}}
- Topics covered: {{.Topics}}
- System type: {{or .Profile.SystemType "Unknown"}}
- Personal data: {{.Profile.HasPersonalData}}
- Biometric data: {{.Profile.HasBiometricData}}
- Human oversight: {{.Profile.HasHumanOversight}}
- Deployment: {{or .Profile.DeploymentContext "Unknown"}}
{{- end}}

{{if .EUAIAct}}Obligations to assess if the system is high-risk:{{else}}Focus on these requirements:{{end}}
{{- range $i, $c := .Checkpoints}}
{{add1 $i}}. {{$c.Title}}
{{- end}}

DOCUMENT TEXT:
{{.Excerpt}}

---

Return a valid JSON object with this structure:
{
  "document_type_detected": "{{.DocType}}",
{{- if .EUAIAct}}
  "risk_tier": "PROHIBITED" | "HIGH_RISK" | "LIMITED_RISK" | "MINIMAL_RISK" | "N/A_GUIDANCE",
  "risk_justification": "Why this classification (or 'Guidance document - assessing coverage')",
  "eu_act_coverage": {
    "risk_classification_discussed": true/false,
    "high_risk_obligations_discussed": true/false,
    "transparency_requirements_discussed": true/false,
    "prohibited_practices_discussed": true/false
  },
  "evidence_found": ["Key quotes about EU AI Act compliance"],
  "sections_relevant": ["Relevant section names"],
  "obligations_if_high_risk": {
{{- range $i, $c := .Checkpoints}}{{if $i}},{{end}}
    "{{$c.Key}}": {"status": "MET"|"PARTIALLY_MET"|"NOT_MET"|"EVIDENCE_MISSING"|"N/A", "evidence_found": [], "gap": "", "priority": "..."}
{{- end}}
  },
{{- else}}
{{- range .Checkpoints}}
  "{{.Key}}": {
    "status": "MET",
    "evidence_found": ["Quote from document"],
    "gap": "none",
    "priority": "LOW"
  },
{{- end}}
{{- end}}
  "overall_score": 65,
  "critical_gaps": ["Gap 1"],
  "strengths": ["Strength 1", "Strength 2"],
  "priority_actions": ["Action 1", "Action 2"],
  "compliance_summary": "2-3 sentence summary of compliance status"
}

Status options: MET, PARTIALLY_MET, NOT_MET, EVIDENCE_MISSING{{if .EUAIAct}}, N/A{{end}}
Priority options: CRITICAL, HIGH, MEDIUM, LOW
Score: 0-100 (number)

IMPORTANT: Generate ONLY the JSON - no explanation text, no markdown, nothing else.
`))

func renderPrompt(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return sb.String(), nil
}
