package model

import "time"

// ListAssessmentsQuery filters the admin assessment list.
type ListAssessmentsQuery struct {
	Limit           int
	Skip            int
	Email           string
	EnvironmentName string
	DateFrom        *time.Time
	DateTo          *time.Time
}

// AssessmentStatistics aggregates scores over the filtered set.
type AssessmentStatistics struct {
	TotalAssessments int64   `json:"total_assessments"`
	AverageScore     float64 `json:"average_score"`
	MinScore         int     `json:"min_score"`
	MaxScore         int     `json:"max_score"`
}

// ListAssessmentsResult is the admin list payload.
type ListAssessmentsResult struct {
	Items      []Submission         `json:"items"`
	Statistics AssessmentStatistics `json:"statistics"`
	Total      int64                `json:"-"`
	Limit      int                  `json:"-"`
	Skip       int                  `json:"-"`
}

// HasMore reports whether records exist beyond this page.
func (r *ListAssessmentsResult) HasMore() bool {
	return r.Total > int64(r.Skip+r.Limit)
}
