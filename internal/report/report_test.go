package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/scoring"
)

func sample() model.Submission {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return model.Submission{
		Respondent:  model.Respondent{Name: "Ana Silva", Email: "ana@example.com"},
		Environment: model.Environment{UniqueName: "Payments"},
		Answers:     map[string]string{"q1": "5", "q2": "3", "q3": "8"},
		DetailedAnswers: []model.DetailedAnswer{
			{QuestionID: "q1", QuestionText: "MFA enforced?", AnswerValue: "5", AnswerLabel: "In all cases", Category: "Identity"},
			{QuestionID: "q2", QuestionText: "Backups tested?", AnswerValue: "3", AnswerLabel: "About half cases", Category: "Recovery"},
			{QuestionID: "q3", AnswerValue: "8", AnswerLabel: "Not applicable"},
		},
		Score:     80,
		CreatedAt: created,
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	r := Build(sample(), now)

	assert.Equal(t, "en", r.Language)
	assert.Equal(t, scoring.BandSolid, r.Band)
	assert.Equal(t, 80, r.Scoring.Percentage)
	assert.Equal(t, 3, r.Scoring.TotalAnswered)
	require.Len(t, r.Categories, 3)
	assert.Equal(t, "Identity", r.Categories[0].Category)
	assert.Equal(t, 100, r.Categories[0].Percentage)
	assert.Equal(t, "Uncategorized", r.Categories[2].Category)
	assert.Equal(t, now, r.GeneratedAt)
}

func TestRenderPDF(t *testing.T) {
	for _, lang := range []string{"en", "fr"} {
		t.Run(lang, func(t *testing.T) {
			s := sample()
			s.Metadata.Language = lang
			out, err := RenderPDF(Build(s, time.Now()))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
			assert.Greater(t, len(out), 1000)
		})
	}
}
