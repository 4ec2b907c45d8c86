package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

func reportRun(t *testing.T) *models.PipelineRun {
	t.Helper()
	ico := result(models.FrameworkICO, 62,
		finding("principle_2_fairness", models.StatusNotMet, models.PriorityCritical),
	)
	ico.Findings[0].Finding.GapDescription = "No bias | fairness testing"
	ico.Findings[0].Finding.EvidenceQuotes = models.StringList{"Models are retrained monthly."}
	ico.Strengths = []string{"Clear ownership"}
	ico.PriorityActions = []string{"Run a bias audit"}
	eu := models.FallbackResult(models.FrameworkEUAIAct)

	s, err := Synthesize(ico, nil, eu, nil, []models.Framework{models.FrameworkICO, models.FrameworkEUAIAct})
	require.NoError(t, err)
	return &models.PipelineRun{
		Profile:   testProfile(),
		ICO:       ico,
		EUAIAct:   eu,
		Synthesis: s,
	}
}

func TestMarkdownRenderer(t *testing.T) {
	r := NewMarkdownRenderer()
	r.now = func() time.Time { return time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC) }

	contentType, data, err := r.Render(reportRun(t))
	require.NoError(t, err)
	assert.Equal(t, MarkdownContentType, contentType)

	md := string(data)
	for _, want := range []string{
		"# AI Compliance Report",
		"Generated Tue, 04 Mar 2025 09:30:00 UTC",
		"| Use case | Automated CV screening |",
		"| Personal data | Yes |",
		"## UK Alignment Score: 50%",
		"| UK ICO | 62% | 1 | 40% |",
		"| EU AI Act | 0% (not assessed) | 0 | 10% |",
		"| Fairness & Transparency | NOT_MET | CRITICAL | No bias \\| fairness testing |",
		"> Models are retrained monthly.",
		"- Clear ownership",
		"**Risk tier:** UNKNOWN",
		"No cross-framework gaps identified.",
		"- Run a bias audit",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "<no value>")
	assert.False(t, strings.Contains(md, "ISO/IEC 42001"), "frameworks that were not run are omitted")
}

func TestMarkdownRendererRequiresSynthesis(t *testing.T) {
	_, _, err := NewMarkdownRenderer().Render(&models.PipelineRun{})
	assert.Error(t, err)
}
