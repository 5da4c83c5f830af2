package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusync/gateway/internal/errors"
	"github.com/edusync/gateway/internal/instructor"
)

func (a *API) instructorCourses(c *gin.Context) {
	courses, err := a.instructor.Courses(c.Request.Context(), actor(c))
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (a *API) createCourse(c *gin.Context) {
	var in instructor.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		a.abort(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	course, err := a.instructor.CreateCourse(c.Request.Context(), actor(c), in)
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (a *API) updateCourse(c *gin.Context) {
	var in instructor.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		a.abort(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	course, err := a.instructor.UpdateCourse(c.Request.Context(), actor(c), c.Param("courseID"), in)
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (a *API) deleteCourse(c *gin.Context) {
	if err := a.instructor.DeleteCourse(c.Request.Context(), actor(c), c.Param("courseID")); err != nil {
		a.abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) listAssessments(c *gin.Context) {
	assessments, err := a.instructor.Assessments(c.Request.Context(), actor(c), c.Param("courseID"))
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, assessments)
}

func (a *API) createAssessment(c *gin.Context) {
	var in instructor.AssessmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		a.abort(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	created, err := a.instructor.CreateAssessment(c.Request.Context(), actor(c), in)
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (a *API) updateAssessment(c *gin.Context) {
	var in instructor.AssessmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		a.abort(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	updated, err := a.instructor.UpdateAssessment(c.Request.Context(), actor(c), c.Param("assessmentID"), in)
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (a *API) deleteAssessment(c *gin.Context) {
	if err := a.instructor.DeleteAssessment(c.Request.Context(), actor(c), c.Param("assessmentID")); err != nil {
		a.abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) courseResults(c *gin.Context) {
	entries, err := a.instructor.CourseResults(c.Request.Context(), actor(c), c.Param("courseID"))
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
