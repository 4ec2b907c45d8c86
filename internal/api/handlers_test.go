package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
	"github.com/Boakye-20/ai-compliance-tool/internal/services"
	"github.com/Boakye-20/ai-compliance-tool/internal/store"
)

type fakeAnalyzer struct {
	err        error
	filename   string
	doc        []byte
	frameworks []models.Framework
	jobs       map[string]*models.AnalysisJob
}

func (f *fakeAnalyzer) Analyze(_ context.Context, filename string, doc []byte, frameworks []models.Framework, _ services.StatusFunc) (*models.AnalysisJob, error) {
	f.filename, f.doc, f.frameworks = filename, doc, frameworks
	if f.err != nil {
		return nil, f.err
	}
	return &models.AnalysisJob{
		ID: "job-42",
		Run: &models.PipelineRun{
			SelectedFrameworks: frameworks,
			Synthesis:          &models.Synthesis{CompositeScore: 71},
			StatusMessages:     []string{"Report ready"},
		},
		ReportBytes:       []byte("# AI Compliance Report"),
		ReportContentType: services.MarkdownContentType,
	}, nil
}

func (f *fakeAnalyzer) Job(_ context.Context, id string) (*models.AnalysisJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return job, nil
}

func multipartBody(t *testing.T, file []byte, frameworks ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		fw, err := mw.CreateFormFile("file", "policy.pdf")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	for _, f := range frameworks {
		require.NoError(t, mw.WriteField("frameworks", f))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestAnalyze(t *testing.T) {
	fa := &fakeAnalyzer{}
	body, contentType := multipartBody(t, []byte("%PDF-1.7"), "ico", "DPA,EU_AI_ACT")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := serve(NewHandler(fa, 0, nil), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "policy.pdf", fa.filename)
	assert.Equal(t, []byte("%PDF-1.7"), fa.doc)
	assert.Equal(t, []models.Framework{models.FrameworkICO, models.FrameworkDPA, models.FrameworkEUAIAct}, fa.frameworks)

	var resp struct {
		JobID        string          `json:"job_id"`
		Analysis     json.RawMessage `json:"analysis"`
		ReportBase64 *string         `json:"report_base64"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "job-42", resp.JobID)
	assert.Contains(t, string(resp.Analysis), `"uk_alignment_score":71`)
	require.NotNil(t, resp.ReportBase64)
	report, err := base64.StdEncoding.DecodeString(*resp.ReportBase64)
	require.NoError(t, err)
	assert.Equal(t, "# AI Compliance Report", string(report))
}

func TestAnalyzeBadRequests(t *testing.T) {
	tests := []struct {
		name       string
		file       []byte
		frameworks []string
		wantStatus int
		wantError  string
	}{
		{"no frameworks", []byte("%PDF"), nil, http.StatusBadRequest, "At least one framework must be selected."},
		{"blank frameworks", []byte("%PDF"), []string{" , "}, http.StatusBadRequest, "At least one framework must be selected."},
		{"no file", nil, []string{"ICO"}, http.StatusBadRequest, "A PDF file is required."},
		{"unknown framework", []byte("%PDF"), []string{"NIST"}, http.StatusBadRequest, `unknown framework "NIST"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{}
			body, contentType := multipartBody(t, tt.file, tt.frameworks...)
			req := httptest.NewRequest(http.MethodPost, "/analyze", body)
			req.Header.Set("Content-Type", contentType)

			rec := serve(NewHandler(fa, 0, nil), req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec))
			assert.Nil(t, fa.doc)
		})
	}
}

func TestAnalyzeNotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"frameworks":["ICO"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(NewHandler(&fakeAnalyzer{}, 0, nil), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeTooLarge(t *testing.T) {
	body, contentType := multipartBody(t, bytes.Repeat([]byte("x"), 4096), "ICO")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := serve(NewHandler(&fakeAnalyzer{}, 1024, nil), req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("extraction: %w", services.ErrInvalidDocument), http.StatusUnprocessableEntity},
		{errors.New("synthesis: invalid synthesis input"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		body, contentType := multipartBody(t, []byte("%PDF"), "ICO")
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", contentType)

		rec := serve(NewHandler(&fakeAnalyzer{err: tt.err}, 0, nil), req)
		assert.Equal(t, tt.wantStatus, rec.Code, tt.err.Error())
	}
}

func TestReport(t *testing.T) {
	fa := &fakeAnalyzer{jobs: map[string]*models.AnalysisJob{
		"job-1":   {ID: "job-1", ReportBytes: []byte("# Report"), ReportContentType: services.MarkdownContentType},
		"no-body": {ID: "no-body", ReportURI: "gs://bucket/reports/no-body.md"},
	}}
	h := NewHandler(fa, 0, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/report/job-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.MarkdownContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="compliance_report_job-1.md"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "# Report", rec.Body.String())

	for _, id := range []string{"missing", "no-body"} {
		rec = serve(h, httptest.NewRequest(http.MethodGet, "/report/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "Report not found", decodeError(t, rec))
	}
}

func TestHealthAndFrameworks(t *testing.T) {
	h := NewHandler(&fakeAnalyzer{}, 0, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/frameworks", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var infos []models.FrameworkInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&infos))
	require.Len(t, infos, 4)
	assert.Equal(t, models.FrameworkICO, infos[0].Code)
	assert.Equal(t, 0.4, infos[0].Weight)

	rec = serve(h, httptest.NewRequest(http.MethodOptions, "/analyze", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
