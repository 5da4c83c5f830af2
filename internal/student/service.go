package student

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/edusync/gateway/internal/backend"
	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/errors"
	"github.com/edusync/gateway/internal/event"
	"github.com/edusync/gateway/internal/quiz"
)

const defaultMaxFetches = 8

type Config struct {
	Backend  *backend.Client
	Sessions *quiz.Registry
	EventBus *event.Bus

	// MaxConcurrentFetches bounds the per-course assessment fan-out.
	MaxConcurrentFetches int
}

// Service drives the learner-facing flows: browsing courses and quizzes,
// taking a quiz, and reading back grades.
type Service struct {
	backend    *backend.Client
	sessions   *quiz.Registry
	eb         *event.Bus
	maxFetches int
}

func NewService(c Config) *Service {
	maxFetches := c.MaxConcurrentFetches
	if maxFetches <= 0 {
		maxFetches = defaultMaxFetches
	}

	return &Service{
		backend:    c.Backend,
		sessions:   c.Sessions,
		eb:         c.EventBus,
		maxFetches: maxFetches,
	}
}

func (s *Service) ListCourses(ctx context.Context, actor domain.Actor) ([]domain.Course, error) {
	return s.backend.ListCourses(ctx, actor.Token)
}

// CourseAssignments pairs a course with the quizzes currently available in
// it.
type CourseAssignments struct {
	Course      domain.Course       `json:"course"`
	Assessments []domain.Assessment `json:"assessments"`
}

// LoadAssignments fetches the available quizzes for every enrolled course.
// Fetches run independently per course; one course failing degrades to an
// empty list in its slot and never blocks the others.
func (s *Service) LoadAssignments(ctx context.Context, actor domain.Actor) ([]CourseAssignments, error) {
	courses, err := s.backend.ListCourses(ctx, actor.Token)
	if err != nil {
		return nil, err
	}

	out := make([]CourseAssignments, len(courses))

	var eg errgroup.Group
	eg.SetLimit(s.maxFetches)
	for i, course := range courses {
		out[i].Course = course
		eg.Go(func() error {
			list, err := s.backend.ListCourseAssessments(ctx, actor.Token, course.CourseID)
			if err != nil {
				slog.ErrorContext(ctx, "student: fetch assessments failed",
					"course", course.CourseID,
					"error", err,
				)
				out[i].Assessments = []domain.Assessment{}
				return nil
			}

			if list == nil {
				list = []domain.Assessment{}
			}
			out[i].Assessments = list
			return nil
		})
	}
	_ = eg.Wait()

	return out, nil
}

// StartQuiz opens an assessment for taking and registers it as the actor's
// active session, replacing any prior unsubmitted attempt.
func (s *Service) StartQuiz(ctx context.Context, actor domain.Actor, assessmentID string) (*quiz.Session, error) {
	a, err := s.backend.GetAssessment(ctx, actor.Token, assessmentID)
	if err != nil {
		return nil, err
	}

	ss, err := quiz.Start(a)
	if err != nil {
		return nil, err
	}

	s.sessions.Put(actor.Claims.Subject, ss)
	return ss, nil
}

// SelectAnswer records the chosen option on the actor's active session.
func (s *Service) SelectAnswer(_ context.Context, actor domain.Actor, assessmentID string, index int, option string) error {
	ss, err := s.activeSession(actor, assessmentID)
	if err != nil {
		return err
	}

	return ss.SelectAnswer(index, option)
}

// DiscardQuiz drops the actor's active session. All in-memory answer state is
// lost; nothing is persisted.
func (s *Service) DiscardQuiz(_ context.Context, actor domain.Actor) {
	s.sessions.Discard(actor.Claims.Subject)
}

// SubmitQuizResponse reports the frozen score of a submitted attempt.
// Persisted is false when the backend rejected the result record or was
// unreachable; the score stands regardless and the learner may re-submit
// explicitly.
type SubmitQuizResponse struct {
	Score     domain.ScoreSummary `json:"score"`
	Passed    bool                `json:"passed"`
	Persisted bool                `json:"persisted"`
	Result    domain.Result       `json:"result"`
}

// SubmitQuiz submits the actor's active session: the score is computed and
// frozen first, then the result record is sent to the backend. A persistence
// failure is reported but never rolls the local score back, and there is no
// automatic retry.
func (s *Service) SubmitQuiz(ctx context.Context, actor domain.Actor, assessmentID string) (*SubmitQuizResponse, error) {
	ss, err := s.activeSession(actor, assessmentID)
	if err != nil {
		return nil, err
	}

	sum, err := ss.Submit()
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate result ID: %w", err)
	}

	res := domain.Result{
		ResultID:     id.String(),
		AssessmentID: ss.Assessment().AssessmentID,
		UserID:       actor.Claims.Subject,
		Score:        sum.Achieved,
		AttemptDate:  time.Now().UTC(),
	}

	resp := &SubmitQuizResponse{
		Score:  sum,
		Passed: quiz.Passed(sum.Percentage),
		Result: res,
	}

	if err := s.backend.SubmitResult(ctx, actor.Token, res); err != nil {
		slog.ErrorContext(ctx, "student: submit result failed",
			"assessment", res.AssessmentID,
			"user", res.UserID,
			"error", err,
		)
		return resp, nil
	}

	resp.Persisted = true
	s.eb.Publish(ctx, domain.EventResultRecorded{Result: res})
	return resp, nil
}

func (s *Service) activeSession(actor domain.Actor, assessmentID string) (*quiz.Session, error) {
	ss, ok := s.sessions.Get(actor.Claims.Subject)
	if !ok {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no active quiz session"))
	}

	if ss.Assessment().AssessmentID != assessmentID {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("active session is for assessment %s, not %s", ss.Assessment().AssessmentID, assessmentID))
	}

	return ss, nil
}
