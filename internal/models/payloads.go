package models

// These structs define the JSON payloads exchanged with HTTP callers and the
// downstream hand-off workflow.

// AnalyzeRequest is the validated form of a multipart analyze request.
type AnalyzeRequest struct {
	Filename   string   `validate:"required"`
	Document   []byte   `validate:"required,min=1"`
	Frameworks []string `validate:"required,min=1,dive,required"`
}

// AnalyzeResponse is returned by the analyze endpoint.
type AnalyzeResponse struct {
	JobID        string       `json:"job_id"`
	Analysis     *PipelineRun `json:"analysis"`
	ReportBase64 *string      `json:"report_base64"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FrameworkInfo describes one supported framework for listing endpoints.
type FrameworkInfo struct {
	Code        Framework `json:"code"`
	Label       string    `json:"label"`
	Weight      float64   `json:"weight"`
	Description string    `json:"description"`
	Checkpoints []string  `json:"checkpoints"`
}

// HandoffPayload is the argument passed to the post-analysis workflow.
type HandoffPayload struct {
	JobID          string         `json:"jobId"`
	Filename       string         `json:"filename,omitempty"`
	CompositeScore int            `json:"compositeScore"`
	FrameworkScore map[string]int `json:"frameworkScores"`
	CriticalGaps   int            `json:"totalCriticalGaps"`
	ReportURI      string         `json:"reportUri,omitempty"`
}
