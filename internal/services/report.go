package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Boakye-20/ai-compliance-tool/internal/catalog"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

const MarkdownContentType = "text/markdown; charset=utf-8"

var reportFuncs = template.FuncMap{
	"join": strings.Join,
	"cell": func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
	},
	"orNone": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "none"
		}
		return s
	},
	"yesNo": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(`# AI Compliance Report

Generated {{.Generated}}

## Document profile

| Field | Value |
|---|---|
| Document type | {{.Profile.DocumentType}} |
| Use case | {{cell .Profile.UseCase}} |
| System type | {{cell .Profile.SystemType}} |
| Deployment context | {{cell .Profile.DeploymentContext}} |
| Pages | {{.Profile.PageCount}} |
| Personal data | {{yesNo .Profile.HasPersonalData}} |
| Biometric data | {{yesNo .Profile.HasBiometricData}} |
| Human oversight | {{yesNo .Profile.HasHumanOversight}} |
{{- if .Profile.DataTypes}}
| Data types | {{cell (join .Profile.DataTypes ", ")}} |
{{- end}}

## UK Alignment Score: {{.Synthesis.CompositeScore}}%

{{.Synthesis.SummaryText}}

| Framework | Score | Critical gaps | Weight |
|---|---|---|---|
{{- range .Frameworks}}
| {{.Label}} | {{.Result.Score}}%{{if not .Result.Assessed}} (not assessed){{end}} | {{.Result.CriticalGapCount}} | {{.Weight}}% |
{{- end}}
{{range .Frameworks}}
## {{.Label}}

{{.Result.Summary}}
{{- with .Result.EUAIAct}}

**Risk tier:** {{.RiskTier}}{{if .RiskJustification}} - {{.RiskJustification}}{{end}}
{{- end}}
{{- if .Findings}}

| Checkpoint | Status | Priority | Gap |
|---|---|---|---|
{{- range .Findings}}
| {{cell .Title}} | {{.Finding.Status}} | {{.Finding.Priority}} | {{cell (orNone .Finding.GapDescription)}} |
{{- end}}
{{- range .Findings}}{{if .Finding.EvidenceQuotes}}

**Evidence for {{.Title}}:**
{{range .Finding.EvidenceQuotes}}
> {{.}}
{{end}}{{end}}{{end}}
{{- end}}
{{- if .Result.Strengths}}

**Strengths:**
{{range .Result.Strengths}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Result.CriticalGaps}}

**Critical gaps:**
{{range .Result.CriticalGaps}}
- {{.}}
{{- end}}
{{- end}}
{{end}}
## Cross-framework gaps
{{if .Synthesis.CrossFrameworkGaps}}
{{- range .Synthesis.CrossFrameworkGaps}}
### {{.IssueName}}

Impacts: {{join .ImpactedFrameworks ", "}}

{{.Recommendation}}
{{end}}
{{- else}}
No cross-framework gaps identified.
{{end}}
## Priority actions
{{if .Synthesis.PriorityActions}}
{{range $i, $a := .Synthesis.PriorityActions}}{{if $i}}
{{end}}- {{$a}}{{end}}
{{else}}
No priority actions recorded.
{{end}}`))

type reportFinding struct {
	Title   string
	Finding models.PrincipleFinding
}

type reportFramework struct {
	Label    string
	Weight   int
	Result   *models.FrameworkResult
	Findings []reportFinding
}

type reportData struct {
	Generated  string
	Profile    *models.ExtractedProfile
	Synthesis  *models.Synthesis
	Frameworks []reportFramework
}

// MarkdownRenderer renders a finished run as a Markdown document.
type MarkdownRenderer struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{catalog: catalog.Default(), now: time.Now}
}

func (r *MarkdownRenderer) Render(run *models.PipelineRun) (string, []byte, error) {
	if run == nil || run.Synthesis == nil {
		return "", nil, errors.New("report requires a synthesized run")
	}
	profile := run.Profile
	if profile == nil {
		profile = &models.ExtractedProfile{DocumentType: models.DocumentTypeUnknown}
	}

	data := reportData{
		Generated: r.now().UTC().Format(time.RFC1123),
		Profile:   profile,
		Synthesis: run.Synthesis,
	}
	for _, res := range run.Results() {
		fw := reportFramework{
			Label:  res.Framework.Label(),
			Weight: res.Framework.WeightPercent(),
			Result: res,
		}
		def, _ := r.catalog.Get(res.Framework)
		for _, kf := range res.Findings {
			fw.Findings = append(fw.Findings, reportFinding{Title: def.Title(kf.Key), Finding: kf.Finding})
		}
		data.Frameworks = append(data.Frameworks, fw)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", nil, fmt.Errorf("rendering report: %w", err)
	}
	return MarkdownContentType, buf.Bytes(), nil
}
