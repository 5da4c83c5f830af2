package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/edusync/gateway/internal/backend"
	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/errors"
	"github.com/edusync/gateway/internal/event"
	"github.com/edusync/gateway/internal/instructor"
	"github.com/edusync/gateway/internal/student"
	"github.com/edusync/gateway/internal/token"
	"github.com/edusync/gateway/internal/tokens"
)

// Client id transport: issued at login, echoed back by the browser either as
// a cookie or a header. It keys the stored bearer token, the server-side
// stand-in for localStorage.
const (
	clientCookie = "edusync_client"
	clientHeader = "X-Client-ID"

	ctxActor = "api.actor"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

type Config struct {
	Router       *gin.Engine
	EventBus     *event.Bus
	Backend      *backend.Client
	Tokens       tokens.Store
	Student      *student.Service
	Instructor   *instructor.Service
	Redis        Redis
	PubsubPrefix string
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	backend    *backend.Client
	tokens     tokens.Store
	student    *student.Service
	instructor *instructor.Service

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		backend:    c.Backend,
		tokens:     c.Tokens,
		student:    c.Student,
		instructor: c.Instructor,
		redis:      c.Redis,
		prefix:     c.PubsubPrefix,
	}

	a.routes(c.Router)

	// Register event handlers
	c.EventBus.Subscribe(domain.EventNameResultRecorded, func(ctx context.Context, e event.Event) error {
		return a.PublishResultRecorded(ctx, e.(domain.EventResultRecorded))
	})

	return a
}

func (a *API) routes(e *gin.Engine) {
	e.POST("/auth/register", a.register)
	e.POST("/auth/login", a.login)
	e.DELETE("/auth/session", a.logout)

	st := e.Group("/student", a.authenticate(RoleStudent))
	st.GET("/courses", a.studentCourses)
	st.GET("/assignments", a.studentAssignments)
	st.GET("/grades", a.studentGrades)
	st.POST("/quiz/:assessmentID/start", a.startQuiz)
	st.PUT("/quiz/:assessmentID/answer", a.selectAnswer)
	st.POST("/quiz/:assessmentID/submit", a.submitQuiz)
	st.DELETE("/quiz/:assessmentID", a.discardQuiz)

	in := e.Group("/instructor", a.authenticate(RoleInstructor))
	in.GET("/courses", a.instructorCourses)
	in.POST("/courses", a.createCourse)
	in.PUT("/courses/:courseID", a.updateCourse)
	in.DELETE("/courses/:courseID", a.deleteCourse)
	in.GET("/courses/:courseID/assessments", a.listAssessments)
	in.GET("/courses/:courseID/results", a.courseResults)
	in.POST("/assessments", a.createAssessment)
	in.PUT("/assessments/:assessmentID", a.updateAssessment)
	in.DELETE("/assessments/:assessmentID", a.deleteAssessment)
}

// authenticate resolves the caller's stored token into an actor and, when
// role is non-empty, requires that role. A missing client id, missing token
// or undecodable token all leave the caller unauthenticated: no identity, no
// action.
func (a *API) authenticate(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := clientID(c)
		if id == "" {
			a.abort(c, errors.New(errors.CodeUnauthenticated,
				errors.WithMessagef("missing client id")))
			return
		}

		tok, err := a.tokens.Get(c.Request.Context(), id)
		if err != nil {
			a.abort(c, err)
			return
		}

		claims, err := token.DecodeClaims(tok)
		if err != nil {
			a.abort(c, err)
			return
		}

		if role != "" && claims.Role != role {
			a.abort(c, errors.New(errors.CodeUnauthenticated,
				errors.WithMessagef("requires %s role", role)))
			return
		}

		c.Set(ctxActor, domain.Actor{Token: tok, Claims: claims})
	}
}

func clientID(c *gin.Context) string {
	if id := c.GetHeader(clientHeader); id != "" {
		return id
	}

	if id, err := c.Cookie(clientCookie); err == nil {
		return id
	}

	return ""
}

func actor(c *gin.Context) domain.Actor {
	return c.MustGet(ctxActor).(domain.Actor)
}

func (a *API) abort(c *gin.Context, err error) {
	e := errors.Convert(err)

	slog.ErrorContext(c.Request.Context(), "api: request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)

	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}

type authResponse struct {
	ClientID  string `json:"clientId"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Dashboard string `json:"dashboard"`
}

func (a *API) register(c *gin.Context) {
	a.issueSession(c, a.backend.Register)
}

func (a *API) login(c *gin.Context) {
	a.issueSession(c, a.backend.Login)
}

func (a *API) issueSession(c *gin.Context, authenticate func(context.Context, backend.Credentials) (*backend.AuthResponse, error)) {
	var cred backend.Credentials
	if err := c.ShouldBindJSON(&cred); err != nil {
		a.abort(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	resp, err := authenticate(c.Request.Context(), cred)
	if err != nil {
		a.abort(c, err)
		return
	}

	claims, err := token.DecodeClaims(resp.Token)
	if err != nil {
		a.abort(c, err)
		return
	}

	dashboard := dashboardPath(claims.Role)
	if dashboard == "" {
		a.abort(c, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("invalid user role: %q", claims.Role)))
		return
	}

	id := uuid.NewString()
	if err := a.tokens.Set(c.Request.Context(), id, resp.Token); err != nil {
		a.abort(c, err)
		return
	}

	c.SetCookie(clientCookie, id, 0, "/", "", false, true)
	c.JSON(http.StatusOK, authResponse{
		ClientID:  id,
		Role:      claims.Role,
		Name:      claims.Name,
		Dashboard: dashboard,
	})
}

func (a *API) logout(c *gin.Context) {
	id := clientID(c)
	if id != "" {
		if err := a.tokens.Clear(c.Request.Context(), id); err != nil {
			a.abort(c, err)
			return
		}
	}

	c.SetCookie(clientCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func dashboardPath(role string) string {
	switch role {
	case RoleStudent:
		return "/student-dashboard"
	case RoleInstructor:
		return "/instructor-dashboard"
	}

	return ""
}
