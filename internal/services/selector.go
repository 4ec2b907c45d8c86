package services

import (
	"strings"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// Select returns the frameworks to evaluate. The caller's choice is authoritative: the
// requested set is returned unchanged, in order, and never expanded from the profile.
func Select(_ *models.ExtractedProfile, requested []models.Framework) []models.Framework {
	out := make([]models.Framework, len(requested))
	copy(out, requested)
	return out
}

// highRiskKeywords are the signals that suggest an EU AI Act high-risk use case.
var highRiskKeywords = []string{
	"biometric",
	"facial",
	"emotion",
	"credit scoring",
	"recruitment",
	"law enforcement",
	"border control",
	"facial recognition",
	"live facial",
	"watchlist",
}

// SuggestFrameworks infers which frameworks a profile would warrant. It only feeds an
// informational status message; Select never applies it.
func SuggestFrameworks(profile *models.ExtractedProfile) []models.Framework {
	if profile == nil {
		return nil
	}
	var out []models.Framework
	if profile.HasPersonalData {
		out = append(out, models.FrameworkICO, models.FrameworkDPA)
	}
	if profile.HasBiometricData || mentionsHighRisk(profile) {
		out = append(out, models.FrameworkEUAIAct)
	}
	if len(out) > 0 {
		out = append(out, models.FrameworkISO42001)
	}
	return out
}

func mentionsHighRisk(profile *models.ExtractedProfile) bool {
	haystack := strings.ToLower(strings.Join([]string{
		profile.UseCase,
		profile.SystemType,
		profile.DeploymentContext,
		strings.Join(profile.RiskIndicators, " "),
		strings.Join(profile.Keywords, " "),
	}, " "))
	for _, kw := range highRiskKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
