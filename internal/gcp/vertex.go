package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Boakye-20/ai-compliance-tool/internal/llm"
)

// DefaultVertexModels are used when no model names are configured.
var DefaultVertexModels = llm.Models{Fast: "gemini-1.5-flash", Analysis: "gemini-1.5-pro", Reasoning: "gemini-1.5-pro"}

const extractionSystemPrompt = "You are a document analyst. You read AI governance documents and describe them as structured JSON. Respond with a single JSON object only."

const evaluationSystemPrompt = "You are an AI regulatory compliance auditor. You assess documents against regulatory frameworks using only evidence quoted from the document. Respond with a single JSON object only."

// VertexClient holds the pre-configured generative models used by the pipeline.
// It satisfies llm.Client.
type VertexClient struct {
	FastModel     *genai.GenerativeModel
	AnalysisModel *genai.GenerativeModel
	baseClient    *genai.Client
}

// NewVertexClient creates a client holding one model per hint.
func NewVertexClient(ctx context.Context, projectID, region string, models llm.Models) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if models.Analysis == "" {
		models = DefaultVertexModels
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	fastModel := newJSONModel(baseClient, models.Name(llm.ModelFast), extractionSystemPrompt)
	analysisModel := newJSONModel(baseClient, models.Name(llm.ModelAnalysis), evaluationSystemPrompt)

	return &VertexClient{
		FastModel:     fastModel,
		AnalysisModel: analysisModel,
		baseClient:    baseClient,
	}, nil
}

func newJSONModel(client *genai.Client, name, system string) *genai.GenerativeModel {
	m := client.GenerativeModel(name)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
	}
	// Regulatory documents discuss biometrics and surveillance; don't let safety filters
	// blank the evaluation.
	m.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}
	return m
}

// Invoke implements llm.Client.
func (c *VertexClient) Invoke(ctx context.Context, prompt string, hint llm.ModelHint) (string, error) {
	model := c.AnalysisModel
	if hint == llm.ModelFast {
		model = c.FastModel
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vertex GenerateContent: %w", err)
	}
	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
