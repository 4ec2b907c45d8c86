package models

import "time"

// AnalysisJob is the stored record of a completed analysis, keyed by job ID.
type AnalysisJob struct {
	ID                string       `json:"id" firestore:"id"`
	OriginalFilename  string       `json:"original_filename,omitempty" firestore:"originalFilename,omitempty"`
	Run               *PipelineRun `json:"analysis" firestore:"analysis"`
	ReportBytes       []byte       `json:"report_bytes,omitempty" firestore:"-"`
	ReportContentType string       `json:"report_content_type,omitempty" firestore:"reportContentType,omitempty"`
	ReportURI         string       `json:"report_uri,omitempty" firestore:"reportUri,omitempty"`
	CreatedAt         time.Time    `json:"created_at" firestore:"createdAt"`
	ExpiresAt         time.Time    `json:"expires_at" firestore:"expiresAt"`
}

// Expired reports whether the job is past its retention window.
func (j *AnalysisJob) Expired(now time.Time) bool {
	return !j.ExpiresAt.IsZero() && !now.Before(j.ExpiresAt)
}
