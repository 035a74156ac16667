// Package scoring turns questionnaire answers into scores and report summaries.
// Everything here is pure.
package scoring

import "math"

// Result is the outcome of scoring an answer set.
type Result struct {
	TotalAnswered int `json:"total_answered"`
	ScoredCount   int `json:"scored_count"`
	RawScore      int `json:"raw_score"`
	MaxPossible   int `json:"max_possible"`
	Percentage    int `json:"percentage"`
}

// Calculate scores an answer set. Codes outside the ordinal scale ("don't know",
// "not applicable", unknown values) count as answered but are left out of both
// the raw score and the maximum.
func Calculate(answers map[string]string) Result {
	res := Result{TotalAnswered: len(answers)}
	for _, v := range answers {
		n, ok := Code(v).Value()
		if !ok {
			continue
		}
		res.ScoredCount++
		res.RawScore += n
	}
	res.MaxPossible = res.ScoredCount * MaxCodeValue
	res.Percentage = percentage(res.RawScore, res.MaxPossible)
	return res
}

func percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	p := int(math.Round(float64(part) / float64(whole) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
