package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseSummary(t *testing.T) {
	answers := map[string]string{"q1": "5", "q2": "5", "q3": "3", "q4": "8", "q5": "bogus"}

	got := ResponseSummary(answers)

	require.Len(t, got, 4)
	assert.Equal(t, ResponseCount{Code: CodeHalfCases, Label: "About half cases", Count: 1, Percentage: 20}, got[0])
	assert.Equal(t, ResponseCount{Code: CodeAllCases, Label: "In all cases", Count: 2, Percentage: 40}, got[1])
	assert.Equal(t, CodeNotApplicable, got[2].Code)
	assert.Equal(t, CodeNotAnswered, got[3].Code)
}

func TestResponseSummaryEmpty(t *testing.T) {
	assert.Empty(t, ResponseSummary(nil))
}

func TestCategoryBreakdown(t *testing.T) {
	answers := map[string]string{"q1": "5", "q2": "3", "q3": "6", "q4": "2"}
	questions := []Question{
		{ID: "q1", Category: "Governance"},
		{ID: "q2", Category: "Governance"},
		{ID: "q3", Category: "Protection"},
	}

	got := CategoryBreakdown(answers, questions)

	require.Len(t, got, 3)
	assert.Equal(t, CategoryScore{Category: "Governance", Answered: 2, RawScore: 8, MaxScore: 10, Percentage: 80}, got[0])
	assert.Equal(t, CategoryScore{Category: "Protection", Answered: 1}, got[1])
	assert.Equal(t, CategoryScore{Category: "Uncategorized", Answered: 1, RawScore: 2, MaxScore: 5, Percentage: 40}, got[2])
}
