package instructor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edusync/gateway/internal/assessment"
	"github.com/edusync/gateway/internal/backend"
	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/errors"
	"github.com/edusync/gateway/internal/instructor"
)

var testActor = domain.Actor{
	Token:  "tok-1",
	Claims: domain.Claims{Subject: "i1", Role: "instructor", Name: "Grace"},
}

func TestService_CreateCourse(t *testing.T) {
	var created domain.Course

	mux := http.NewServeMux()
	mux.HandleFunc("/api/CourseModels", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
	})

	s := makeService(t, mux)

	got, err := s.CreateCourse(context.Background(), testActor, instructor.CourseInput{
		Title:       "Networks 101",
		Description: "Intro to networking",
	})
	require.NoError(t, err)

	require.NotEmpty(t, got.CourseID)
	require.Equal(t, "i1", got.InstructorID, "ownership comes from the actor, not the input")
	require.Equal(t, got, created, "what the caller sees is what was sent")
}

func TestService_CreateAssessment(t *testing.T) {
	questions := []domain.Question{
		{QuestionText: "q1", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "B", Points: 5},
		{QuestionText: "q2", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "C", Points: 3},
	}

	t.Run("encodes the questions for transport", func(t *testing.T) {
		var created domain.Assessment

		mux := http.NewServeMux()
		mux.HandleFunc("/api/AssessmentModels", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
		})

		s := makeService(t, mux)

		got, err := s.CreateAssessment(context.Background(), testActor, instructor.AssessmentInput{
			CourseID:  "c1",
			Title:     "Quiz 1",
			MaxScore:  8,
			Questions: questions,
		})
		require.NoError(t, err)
		require.NotEmpty(t, got.AssessmentID)

		decoded, err := assessment.DecodeQuestions(created.Questions)
		require.NoError(t, err)
		require.Equal(t, questions, decoded)
	})

	t.Run("rejects an answer key missing from the options", func(t *testing.T) {
		s := makeService(t, http.NewServeMux())

		bad := []domain.Question{
			{QuestionText: "q1", Options: []string{"A", "B"}, CorrectAnswer: "Z", Points: 1},
		}

		_, err := s.CreateAssessment(context.Background(), testActor, instructor.AssessmentInput{
			CourseID:  "c1",
			Title:     "Quiz 1",
			Questions: bad,
		})
		require.Error(t, err)
		require.Equal(t, errors.CodeInvalidArgument, errors.Convert(err).Code)
	})
}

func TestService_CourseResults(t *testing.T) {
	older := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/ResultModels/course/c1/instructor", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []domain.Result{
			{ResultID: "r1", AssessmentID: "a1", UserID: "u1", Score: 4, AttemptDate: older},
			{ResultID: "r2", AssessmentID: "a2", UserID: "u2", Score: 0, AttemptDate: newer},
			{ResultID: "r3", AssessmentID: "a1", UserID: "u2", Score: 10, AttemptDate: newer},
		})
	})
	mux.HandleFunc("/api/AssessmentModels/a1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, domain.Assessment{AssessmentID: "a1", Title: "Quiz 1", MaxScore: 10})
	})
	mux.HandleFunc("/api/AssessmentModels/a2", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, domain.Assessment{AssessmentID: "a2", Title: "Quiz 2", MaxScore: 0})
	})

	s := makeService(t, mux)

	got, err := s.CourseResults(context.Background(), testActor, "c1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest attempts first, each joined with its quiz.
	require.Equal(t, "r2", got[0].Result.ResultID)
	require.Equal(t, "r3", got[1].Result.ResultID)
	require.Equal(t, "r1", got[2].Result.ResultID)

	require.Equal(t, "Quiz 1", got[1].AssessmentTitle)
	require.Equal(t, 100.0, got[1].Percentage)
	require.True(t, got[1].Passed)

	require.Equal(t, 40.0, got[2].Percentage)
	require.True(t, got[2].Passed)

	// A zero-weight quiz never divides by zero.
	require.Equal(t, 0.0, got[0].Percentage)
	require.False(t, got[0].Passed)
}

func TestService_CourseResults_FetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ResultModels/course/c1/instructor", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []domain.Result{
			{ResultID: "r1", AssessmentID: "a1", UserID: "u1", Score: 4},
		})
	})
	mux.HandleFunc("/api/AssessmentModels/a1", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	s := makeService(t, mux)

	_, err := s.CourseResults(context.Background(), testActor, "c1")
	require.Error(t, err, "a roster with missing quiz context is worse than no roster")
}

func makeService(t *testing.T, handler http.Handler) *instructor.Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return instructor.NewService(instructor.Config{
		Backend: backend.NewClient(backend.Config{BaseURL: srv.URL}),
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
