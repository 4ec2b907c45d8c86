package models

// CrossFrameworkGap is a weakness independently flagged by two or more frameworks.
type CrossFrameworkGap struct {
	IssueName          string   `json:"issue" firestore:"issue"`
	ImpactedFrameworks []string `json:"impacts" firestore:"impacts"`
	Recommendation     string   `json:"recommendation" firestore:"recommendation"`
}

// Synthesis is the aggregate of all evaluated frameworks for one run.
type Synthesis struct {
	CompositeScore      int                 `json:"uk_alignment_score" firestore:"ukAlignmentScore"`
	PerFrameworkScore   map[string]int      `json:"framework_scores" firestore:"frameworkScores"`
	FrameworksEvaluated []string            `json:"frameworks_analyzed" firestore:"frameworksAnalyzed"`
	TotalCriticalGaps   int                 `json:"total_critical_gaps" firestore:"totalCriticalGaps"`
	CrossFrameworkGaps  []CrossFrameworkGap `json:"cross_framework_gaps" firestore:"crossFrameworkGaps"`
	PriorityActions     []string            `json:"priority_actions" firestore:"priorityActions"`
	SummaryText         string              `json:"summary" firestore:"summary"`
}
