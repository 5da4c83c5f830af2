package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusync/gateway/internal/errors"
)

func (a *API) studentCourses(c *gin.Context) {
	courses, err := a.student.ListCourses(c.Request.Context(), actor(c))
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (a *API) studentAssignments(c *gin.Context) {
	assignments, err := a.student.LoadAssignments(c.Request.Context(), actor(c))
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

func (a *API) studentGrades(c *gin.Context) {
	report, err := a.student.Grades(c.Request.Context(), actor(c))
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// quizView is the in-progress attempt as rendered to the learner. The
// correct answers never leave the gateway while the attempt is open.
type quizView struct {
	AssessmentID string         `json:"assessmentId"`
	Title        string         `json:"title"`
	State        string         `json:"state"`
	Questions    []questionView `json:"questions"`
	Answers      map[int]string `json:"answers"`
	CanSubmit    bool           `json:"canSubmit"`
}

type questionView struct {
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	Points       int      `json:"points"`
}

func (a *API) startQuiz(c *gin.Context) {
	ss, err := a.student.StartQuiz(c.Request.Context(), actor(c), c.Param("assessmentID"))
	if err != nil {
		a.abort(c, err)
		return
	}

	questions := make([]questionView, 0, len(ss.Questions()))
	for _, q := range ss.Questions() {
		questions = append(questions, questionView{
			QuestionText: q.QuestionText,
			Options:      q.Options,
			Points:       q.Points,
		})
	}

	c.JSON(http.StatusOK, quizView{
		AssessmentID: ss.Assessment().AssessmentID,
		Title:        ss.Assessment().Title,
		State:        ss.State().String(),
		Questions:    questions,
		Answers:      ss.Answers(),
		CanSubmit:    ss.CanSubmit(),
	})
}

type answerRequest struct {
	QuestionIndex int    `json:"questionIndex"`
	Option        string `json:"option"`
}

func (a *API) selectAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abort(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	err := a.student.SelectAnswer(c.Request.Context(), actor(c), c.Param("assessmentID"), req.QuestionIndex, req.Option)
	if err != nil {
		a.abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) submitQuiz(c *gin.Context) {
	resp, err := a.student.SubmitQuiz(c.Request.Context(), actor(c), c.Param("assessmentID"))
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a *API) discardQuiz(c *gin.Context) {
	a.student.DiscardQuiz(c.Request.Context(), actor(c))
	c.Status(http.StatusNoContent)
}
