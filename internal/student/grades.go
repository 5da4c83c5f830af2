package student

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/quiz"
)

// GradeEntry is one past attempt joined with its quiz definition. The
// percentage here is computed against the assessment's stored maxScore: for a
// historical result, that stored value is all the backend keeps.
type GradeEntry struct {
	Result     domain.Result     `json:"result"`
	Assessment domain.Assessment `json:"assessment"`
	Percentage float64           `json:"percentage"`
	Passed     bool              `json:"passed"`
}

// GradeReport lists the actor's attempts, newest first, with an overall
// standing across all of them.
type GradeReport struct {
	Entries           []GradeEntry `json:"entries"`
	OverallPercentage float64      `json:"overallPercentage"`
	OverallPassed     bool         `json:"overallPassed"`
}

// Grades builds the actor's grade report: their results sorted by attempt
// date descending, each joined with its assessment. Unlike per-course
// assignment fetches, a missing assessment fails the whole report; a grade
// without its quiz definition cannot be interpreted.
func (s *Service) Grades(ctx context.Context, actor domain.Actor) (*GradeReport, error) {
	results, err := s.backend.ListUserResults(ctx, actor.Token, actor.Claims.Subject)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AttemptDate.After(results[j].AttemptDate)
	})

	assessments, err := s.fetchAssessments(ctx, actor, results)
	if err != nil {
		return nil, err
	}

	report := &GradeReport{Entries: make([]GradeEntry, 0, len(results))}

	totalScore := decimal.Zero
	totalMax := decimal.Zero
	for _, r := range results {
		a := assessments[r.AssessmentID]

		pct := 0.0
		if a.MaxScore > 0 {
			pct = float64(r.Score) / float64(a.MaxScore) * 100
		}

		report.Entries = append(report.Entries, GradeEntry{
			Result:     r,
			Assessment: a,
			Percentage: pct,
			Passed:     quiz.Passed(pct),
		})

		totalScore = totalScore.Add(decimal.NewFromInt(int64(r.Score)))
		totalMax = totalMax.Add(decimal.NewFromInt(int64(a.MaxScore)))
	}

	if totalMax.IsPositive() {
		report.OverallPercentage = totalScore.Div(totalMax).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	report.OverallPassed = quiz.Passed(report.OverallPercentage)

	return report, nil
}

// fetchAssessments loads the quiz definition behind each result, deduplicated
// and fetched concurrently.
func (s *Service) fetchAssessments(ctx context.Context, actor domain.Actor, results []domain.Result) (map[string]domain.Assessment, error) {
	ids := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if !seen[r.AssessmentID] {
			seen[r.AssessmentID] = true
			ids = append(ids, r.AssessmentID)
		}
	}

	var (
		mu          sync.Mutex
		assessments = make(map[string]domain.Assessment, len(ids))
	)

	var eg errgroup.Group
	eg.SetLimit(s.maxFetches)
	for _, id := range ids {
		eg.Go(func() error {
			a, err := s.backend.GetAssessment(ctx, actor.Token, id)
			if err != nil {
				return err
			}

			mu.Lock()
			assessments[a.AssessmentID] = a
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return assessments, nil
}
