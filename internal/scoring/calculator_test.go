package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
		want    Result
	}{
		{
			name:    "empty",
			answers: map[string]string{},
			want:    Result{},
		},
		{
			name:    "nil",
			answers: nil,
			want:    Result{},
		},
		{
			name:    "two scorable answers",
			answers: map[string]string{"q1": "5", "q2": "3"},
			want:    Result{TotalAnswered: 2, ScoredCount: 2, RawScore: 8, MaxPossible: 10, Percentage: 80},
		},
		{
			name:    "all best",
			answers: map[string]string{"q1": "5", "q2": "5", "q3": "5"},
			want:    Result{TotalAnswered: 3, ScoredCount: 3, RawScore: 15, MaxPossible: 15, Percentage: 100},
		},
		{
			name:    "all worst",
			answers: map[string]string{"q1": "1", "q2": "1"},
			want:    Result{TotalAnswered: 2, ScoredCount: 2, RawScore: 2, MaxPossible: 10, Percentage: 20},
		},
		{
			name:    "non-scorable codes excluded",
			answers: map[string]string{"q1": "5", "q2": "6", "q3": "8", "q4": "9", "q5": "7"},
			want:    Result{TotalAnswered: 5, ScoredCount: 1, RawScore: 5, MaxPossible: 5, Percentage: 100},
		},
		{
			name:    "only non-scorable",
			answers: map[string]string{"q1": "6", "q2": "8"},
			want:    Result{TotalAnswered: 2},
		},
		{
			name:    "unknown code ignored",
			answers: map[string]string{"q1": "4", "q2": "42"},
			want:    Result{TotalAnswered: 2, ScoredCount: 1, RawScore: 4, MaxPossible: 5, Percentage: 80},
		},
		{
			name:    "rounds half up",
			answers: map[string]string{"q1": "2", "q2": "3", "q3": "3", "q4": "3"},
			want:    Result{TotalAnswered: 4, ScoredCount: 4, RawScore: 11, MaxPossible: 20, Percentage: 55},
		},
		{
			name:    "rounds fraction",
			answers: map[string]string{"q1": "1", "q2": "1", "q3": "2"},
			want:    Result{TotalAnswered: 3, ScoredCount: 3, RawScore: 4, MaxPossible: 15, Percentage: 27},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.answers))
		})
	}
}

func TestCalculateAlwaysInRange(t *testing.T) {
	codes := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "", "x"}
	for i := range codes {
		for j := range codes {
			answers := map[string]string{"a": codes[i], "b": codes[j]}
			p := Calculate(answers).Percentage
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
		}
	}
}

func TestMaturityBand(t *testing.T) {
	tests := []struct {
		score int
		want  Band
	}{
		{100, BandAdvanced},
		{85, BandAdvanced},
		{84, BandSolid},
		{65, BandSolid},
		{64, BandBasic},
		{35, BandBasic},
		{34, BandUrgent},
		{0, BandUrgent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaturityBand(tt.score), "score %d", tt.score)
	}
}

func TestBandHeadlineFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, BandSolid.Headline("en"), BandSolid.Headline("de"))
	assert.NotEqual(t, BandSolid.Headline("en"), BandSolid.Headline("fr"))
}

func TestCodeLabels(t *testing.T) {
	assert.Equal(t, "In all cases", CodeAllCases.Label())
	assert.Equal(t, "Not answered", Code("77").Label())
	assert.True(t, CodeNotApplicable.Valid())
	assert.False(t, Code("0").Valid())
}
