package quiz

import (
	"github.com/edusync/gateway/internal/assessment"
	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/errors"
)

// State of one quiz attempt. Transitions move strictly forward:
// NotStarted -> InProgress -> Submitted.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateSubmitted:
		return "submitted"
	}

	return "unknown"
}

// Session tracks one in-progress or completed quiz attempt. It is ephemeral
// and client-owned: discarding it loses all answer state, and only the
// submitted result record survives remotely. A new attempt needs a new
// Session; a submitted one never goes back in progress.
type Session struct {
	assessment domain.Assessment
	questions  []domain.Question
	answers    map[int]string
	state      State
	score      domain.ScoreSummary
}

// Start opens an assessment for taking, decoding its question transport
// string. A decode failure aborts the attempt before it begins.
func Start(a domain.Assessment) (*Session, error) {
	questions, err := assessment.DecodeQuestions(a.Questions)
	if err != nil {
		return nil, err
	}

	return &Session{
		assessment: a,
		questions:  questions,
		answers:    make(map[int]string),
		state:      StateInProgress,
	}, nil
}

func (s *Session) Assessment() domain.Assessment { return s.assessment }

func (s *Session) Questions() []domain.Question { return s.questions }

func (s *Session) State() State { return s.state }

// Answers returns a copy of the recorded answers keyed by question index. The
// session alone owns the live map.
func (s *Session) Answers() map[int]string {
	out := make(map[int]string, len(s.answers))
	for i, a := range s.answers {
		out[i] = a
	}

	return out
}

// SelectAnswer records the chosen option for a question, overwriting any
// earlier choice for that index. Answers may change freely until submission.
func (s *Session) SelectAnswer(index int, option string) error {
	if s.state != StateInProgress {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("session is %s, answers are frozen", s.state))
	}

	if index < 0 || index >= len(s.questions) {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question index %d out of range [0, %d)", index, len(s.questions)))
	}

	s.answers[index] = option
	return nil
}

// CanSubmit reports whether every question has an answer recorded. Submission
// stays blocked until it does; an incomplete attempt is a precondition
// failure, not a scoring outcome.
func (s *Session) CanSubmit() bool {
	if s.state != StateInProgress {
		return false
	}

	for i := range s.questions {
		if _, ok := s.answers[i]; !ok {
			return false
		}
	}

	return true
}

// Submit moves the session to its terminal state, computing and freezing the
// score. Submitting an already-submitted session returns the frozen score
// unchanged; nothing is recomputed.
func (s *Session) Submit() (domain.ScoreSummary, error) {
	if s.state == StateSubmitted {
		return s.score, nil
	}

	if !s.CanSubmit() {
		return domain.ScoreSummary{}, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("answered %d of %d questions", len(s.answers), len(s.questions)))
	}

	s.score = Score(s.questions, s.answers)
	s.state = StateSubmitted
	return s.score, nil
}

// Score returns the frozen score; ok is false before submission.
func (s *Session) Score() (sum domain.ScoreSummary, ok bool) {
	if s.state != StateSubmitted {
		return domain.ScoreSummary{}, false
	}

	return s.score, true
}
