package scoring

import (
	"math"
	"sort"
)

// ResponseCount is how often one response code was chosen.
type ResponseCount struct {
	Code       Code    `json:"code"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ResponseSummary counts answers per response code, in code order, skipping
// codes nobody picked. Percentages are of all answers, one decimal.
func ResponseSummary(answers map[string]string) []ResponseCount {
	counts := make(map[Code]int, len(AllCodes))
	for _, v := range answers {
		c := Code(v)
		if !c.Valid() {
			c = CodeNotAnswered
		}
		counts[c]++
	}

	out := make([]ResponseCount, 0, len(counts))
	for _, c := range AllCodes {
		n := counts[c]
		if n == 0 {
			continue
		}
		out = append(out, ResponseCount{
			Code:       c,
			Label:      c.Label(),
			Count:      n,
			Percentage: round1(float64(n) / float64(len(answers)) * 100),
		})
	}
	return out
}

// Question carries the category of an answered question.
type Question struct {
	ID       string
	Category string
}

// CategoryScore is the score of one category.
type CategoryScore struct {
	Category   string `json:"category"`
	Answered   int    `json:"answered"`
	RawScore   int    `json:"raw_score"`
	MaxScore   int    `json:"max_score"`
	Percentage int    `json:"percentage"`
}

// CategoryBreakdown scores answers grouped by category, sorted by category name.
// Answers whose question is unknown are grouped under "Uncategorized".
func CategoryBreakdown(answers map[string]string, questions []Question) []CategoryScore {
	categoryOf := make(map[string]string, len(questions))
	for _, q := range questions {
		categoryOf[q.ID] = q.Category
	}

	byCategory := make(map[string]*CategoryScore)
	for qid, v := range answers {
		cat := categoryOf[qid]
		if cat == "" {
			cat = "Uncategorized"
		}
		cs, ok := byCategory[cat]
		if !ok {
			cs = &CategoryScore{Category: cat}
			byCategory[cat] = cs
		}
		cs.Answered++
		if n, ok := Code(v).Value(); ok {
			cs.RawScore += n
			cs.MaxScore += MaxCodeValue
		}
	}

	out := make([]CategoryScore, 0, len(byCategory))
	for _, cs := range byCategory {
		cs.Percentage = percentage(cs.RawScore, cs.MaxScore)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
