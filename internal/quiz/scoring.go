package quiz

import "github.com/edusync/gateway/internal/domain"

// PassThreshold is the minimum percentage, inclusive, at which an attempt
// counts as passed. Pass/fail is caller policy; the scoring itself never
// consults it.
const PassThreshold = 36.0

// Score computes the outcome of an attempt over an ordered question list and
// the answers recorded by 0-based question index. A question contributes its
// points to Achieved only when the recorded answer matches its correct answer
// exactly; every question contributes its points to Max whether answered or
// not. Max is recomputed from the questions themselves; an assessment's
// stored maxScore is ignored so the two can never disagree here.
//
// Answer keys outside [0, len(questions)) are never looked up and have no
// effect. The function is pure: same inputs, same result.
func Score(questions []domain.Question, answers map[int]string) domain.ScoreSummary {
	var sum domain.ScoreSummary
	for i, q := range questions {
		sum.Max += q.Points
		if a, ok := answers[i]; ok && a == q.CorrectAnswer {
			sum.Achieved += q.Points
		}
	}

	// An empty quiz scores 0%, not a division error.
	if sum.Max > 0 {
		sum.Percentage = float64(sum.Achieved) / float64(sum.Max) * 100
	}

	return sum
}

// Passed reports whether a percentage clears the pass threshold. The boundary
// is inclusive: exactly PassThreshold passes.
func Passed(percentage float64) bool {
	return percentage >= PassThreshold
}
