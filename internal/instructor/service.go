package instructor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/edusync/gateway/internal/assessment"
	"github.com/edusync/gateway/internal/backend"
	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/quiz"
)

const defaultMaxFetches = 8

type Config struct {
	Backend *backend.Client

	MaxConcurrentFetches int
}

// Service drives the instructor-facing flows: managing courses and their
// quizzes, and reviewing student results.
type Service struct {
	backend    *backend.Client
	maxFetches int
}

func NewService(c Config) *Service {
	maxFetches := c.MaxConcurrentFetches
	if maxFetches <= 0 {
		maxFetches = defaultMaxFetches
	}

	return &Service{
		backend:    c.Backend,
		maxFetches: maxFetches,
	}
}

// Courses lists the courses owned by the acting instructor.
func (s *Service) Courses(ctx context.Context, actor domain.Actor) ([]domain.Course, error) {
	return s.backend.ListInstructorCourses(ctx, actor.Token, actor.Claims.Subject)
}

type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Service) CreateCourse(ctx context.Context, actor domain.Actor, in CourseInput) (domain.Course, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Course{}, fmt.Errorf("generate course ID: %w", err)
	}

	course := domain.Course{
		CourseID:     id.String(),
		Title:        in.Title,
		Description:  in.Description,
		InstructorID: actor.Claims.Subject,
	}

	if err := s.backend.CreateCourse(ctx, actor.Token, course); err != nil {
		return domain.Course{}, err
	}

	return course, nil
}

func (s *Service) UpdateCourse(ctx context.Context, actor domain.Actor, courseID string, in CourseInput) (domain.Course, error) {
	course := domain.Course{
		CourseID:     courseID,
		Title:        in.Title,
		Description:  in.Description,
		InstructorID: actor.Claims.Subject,
	}

	if err := s.backend.UpdateCourse(ctx, actor.Token, course); err != nil {
		return domain.Course{}, err
	}

	return course, nil
}

func (s *Service) DeleteCourse(ctx context.Context, actor domain.Actor, courseID string) error {
	return s.backend.DeleteCourse(ctx, actor.Token, courseID)
}

func (s *Service) Assessments(ctx context.Context, actor domain.Actor, courseID string) ([]domain.Assessment, error) {
	return s.backend.ListCourseAssessments(ctx, actor.Token, courseID)
}

// AssessmentInput is an authored quiz. Questions arrive structured and are
// encoded into the transport string the backend stores.
type AssessmentInput struct {
	CourseID  string            `json:"courseId"`
	Title     string            `json:"title"`
	MaxScore  int               `json:"maxScore"`
	Questions []domain.Question `json:"questions"`
}

func (s *Service) CreateAssessment(ctx context.Context, actor domain.Actor, in AssessmentInput) (domain.Assessment, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("generate assessment ID: %w", err)
	}

	a, err := s.buildAssessment(id.String(), in)
	if err != nil {
		return domain.Assessment{}, err
	}

	if err := s.backend.CreateAssessment(ctx, actor.Token, a); err != nil {
		return domain.Assessment{}, err
	}

	return a, nil
}

func (s *Service) UpdateAssessment(ctx context.Context, actor domain.Actor, assessmentID string, in AssessmentInput) (domain.Assessment, error) {
	a, err := s.buildAssessment(assessmentID, in)
	if err != nil {
		return domain.Assessment{}, err
	}

	if err := s.backend.UpdateAssessment(ctx, actor.Token, a); err != nil {
		return domain.Assessment{}, err
	}

	return a, nil
}

func (s *Service) DeleteAssessment(ctx context.Context, actor domain.Actor, assessmentID string) error {
	return s.backend.DeleteAssessment(ctx, actor.Token, assessmentID)
}

func (s *Service) buildAssessment(id string, in AssessmentInput) (domain.Assessment, error) {
	if err := assessment.ValidateQuestions(in.Questions); err != nil {
		return domain.Assessment{}, err
	}

	encoded, err := assessment.EncodeQuestions(in.Questions)
	if err != nil {
		return domain.Assessment{}, err
	}

	return domain.Assessment{
		AssessmentID: id,
		CourseID:     in.CourseID,
		Title:        in.Title,
		MaxScore:     in.MaxScore,
		Questions:    encoded,
	}, nil
}

// ResultEntry is one student attempt in a course roster, joined with the quiz
// it was for.
type ResultEntry struct {
	Result          domain.Result `json:"result"`
	AssessmentTitle string        `json:"assessmentTitle"`
	MaxScore        int           `json:"maxScore"`
	Percentage      float64       `json:"percentage"`
	Passed          bool          `json:"passed"`
}

// CourseResults builds the roster of student attempts for one course, newest
// first.
func (s *Service) CourseResults(ctx context.Context, actor domain.Actor, courseID string) ([]ResultEntry, error) {
	results, err := s.backend.ListCourseResults(ctx, actor.Token, courseID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AttemptDate.After(results[j].AttemptDate)
	})

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

	entries := make([]ResultEntry, 0, len(results))
	for _, r := range results {
		a := assessments[r.AssessmentID]

		pct := 0.0
		if a.MaxScore > 0 {
			pct = float64(r.Score) / float64(a.MaxScore) * 100
		}

		entries = append(entries, ResultEntry{
			Result:          r,
			AssessmentTitle: a.Title,
			MaxScore:        a.MaxScore,
			Percentage:      pct,
			Passed:          quiz.Passed(pct),
		})
	}

	return entries, nil
}
