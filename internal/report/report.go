// Package report renders assessment results as downloadable PDF documents.
package report

import (
	"time"

	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/scoring"
)

// Report is everything shown in an assessment report.
type Report struct {
	Respondent  model.Respondent
	Environment model.Environment
	Language    string
	Score       int
	Band        scoring.Band
	Headline    string
	Scoring     scoring.Result
	Summary     []scoring.ResponseCount
	Categories  []scoring.CategoryScore
	Answers     []model.DetailedAnswer
	SubmittedAt time.Time
	GeneratedAt time.Time
}

// Build assembles the report for a scored submission.
func Build(s model.Submission, now time.Time) Report {
	lang := s.Metadata.Language
	if lang != "fr" {
		lang = "en"
	}

	questions := make([]scoring.Question, 0, len(s.DetailedAnswers))
	for _, a := range s.DetailedAnswers {
		questions = append(questions, scoring.Question{ID: a.QuestionID, Category: a.Category})
	}

	submitted := s.CreatedAt
	if submitted.IsZero() {
		submitted = s.Metadata.SubmittedAt
	}

	band := scoring.MaturityBand(s.Score)
	return Report{
		Respondent:  s.Respondent,
		Environment: s.Environment,
		Language:    lang,
		Score:       s.Score,
		Band:        band,
		Headline:    band.Headline(lang),
		Scoring:     scoring.Calculate(s.Answers),
		Summary:     scoring.ResponseSummary(s.Answers),
		Categories:  scoring.CategoryBreakdown(s.Answers, questions),
		Answers:     s.DetailedAnswers,
		SubmittedAt: submitted,
		GeneratedAt: now,
	}
}
