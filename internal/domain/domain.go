package domain

import "time"

// Claims identifies the actor extracted from a bearer token. Claim-name
// aliasing (schema URIs vs. short names) is resolved once at decode time;
// callers only ever see these three fields.
type Claims struct {
	Subject string
	Role    string
	Name    string
}

// Actor is an authenticated caller: the raw bearer token forwarded to the
// backend plus the claims decoded from it.
type Actor struct {
	Token  string
	Claims Claims
}

type Course struct {
	CourseID     string `json:"courseId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	InstructorID string `json:"instructorId"`
}

type Question struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Points        int      `json:"points"`
}

// Assessment is a quiz definition belonging to a course. Questions travel as
// an encoded transport string; the assessment package decodes them.
type Assessment struct {
	AssessmentID string `json:"assessmentId"`
	CourseID     string `json:"courseId"`
	Title        string `json:"title"`
	MaxScore     int    `json:"maxScore"`
	Questions    string `json:"questions"`
}

// Result is the persisted outcome of one quiz attempt by one actor.
type Result struct {
	ResultID     string    `json:"resultId"`
	AssessmentID string    `json:"assessmentId"`
	UserID       string    `json:"userId"`
	Score        int       `json:"score"`
	AttemptDate  time.Time `json:"attemptDate"`
}

// ScoreSummary is the computed outcome of one quiz attempt.
type ScoreSummary struct {
	Achieved   int     `json:"achieved"`
	Max        int     `json:"max"`
	Percentage float64 `json:"percentage"`
}
