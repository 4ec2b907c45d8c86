package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

func TestSelectIsIdentity(t *testing.T) {
	biometric := &models.ExtractedProfile{HasPersonalData: true, HasBiometricData: true}
	sets := [][]models.Framework{
		nil,
		{models.FrameworkICO},
		{models.FrameworkISO42001, models.FrameworkICO},
		{models.FrameworkDPA, models.FrameworkEUAIAct, models.FrameworkICO, models.FrameworkISO42001},
	}
	for _, requested := range sets {
		got := Select(biometric, requested)
		assert.Equal(t, len(requested), len(got))
		for i := range requested {
			assert.Equal(t, requested[i], got[i])
		}
	}

	requested := []models.Framework{models.FrameworkICO}
	got := Select(nil, requested)
	got[0] = models.FrameworkDPA
	assert.Equal(t, models.FrameworkICO, requested[0], "Select must not alias the caller's slice")
}

func TestSuggestFrameworks(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.ExtractedProfile
		want    []models.Framework
	}{
		{"nil profile", nil, nil},
		{"no signals", &models.ExtractedProfile{UseCase: "Weather forecasting"}, nil},
		{"personal data", &models.ExtractedProfile{HasPersonalData: true},
			[]models.Framework{models.FrameworkICO, models.FrameworkDPA, models.FrameworkISO42001}},
		{"biometric", &models.ExtractedProfile{HasBiometricData: true},
			[]models.Framework{models.FrameworkEUAIAct, models.FrameworkISO42001}},
		{"high-risk keyword", &models.ExtractedProfile{HasPersonalData: true, Keywords: []string{"Live Facial Recognition"}},
			[]models.Framework{models.FrameworkICO, models.FrameworkDPA, models.FrameworkEUAIAct, models.FrameworkISO42001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestFrameworks(tt.profile))
		})
	}
}
