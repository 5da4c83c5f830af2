package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/errors"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the remote EduSync REST API, the system of record for
// users, courses, assessments and results. Every authenticated call forwards
// the caller's bearer token; the gateway holds no credentials of its own.
type Client struct {
	base string
	http *http.Client
}

func NewClient(c Config) *Client {
	hc := c.HTTPClient
	if hc == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		base: strings.TrimRight(c.BaseURL, "/"),
		http: hc,
	}
}

type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse carries the bearer token issued on login or registration.
type AuthResponse struct {
	Token string `json:"token"`
}

func (c *Client) Register(ctx context.Context, cred Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", cred, &resp); err != nil {
		return nil, err
	}

	if resp.Token == "" {
		return nil, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("no token received from backend"))
	}

	return &resp, nil
}

func (c *Client) Login(ctx context.Context, cred Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", cred, &resp); err != nil {
		return nil, err
	}

	if resp.Token == "" {
		return nil, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("no token received from backend"))
	}

	return &resp, nil
}

func (c *Client) ListCourses(ctx context.Context, token string) ([]domain.Course, error) {
	var courses []domain.Course
	if err := c.do(ctx, http.MethodGet, "/api/CourseModels", token, nil, &courses); err != nil {
		return nil, err
	}

	return courses, nil
}

func (c *Client) GetCourse(ctx context.Context, token, courseID string) (domain.Course, error) {
	var course domain.Course
	err := c.do(ctx, http.MethodGet, "/api/CourseModels/"+url.PathEscape(courseID), token, nil, &course)
	return course, err
}

func (c *Client) ListInstructorCourses(ctx context.Context, token, instructorID string) ([]domain.Course, error) {
	var courses []domain.Course
	err := c.do(ctx, http.MethodGet, "/api/CourseModels/instructor/"+url.PathEscape(instructorID), token, nil, &courses)
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (c *Client) CreateCourse(ctx context.Context, token string, course domain.Course) error {
	return c.do(ctx, http.MethodPost, "/api/CourseModels", token, course, nil)
}

func (c *Client) UpdateCourse(ctx context.Context, token string, course domain.Course) error {
	return c.do(ctx, http.MethodPut, "/api/CourseModels/"+url.PathEscape(course.CourseID), token, course, nil)
}

func (c *Client) DeleteCourse(ctx context.Context, token, courseID string) error {
	return c.do(ctx, http.MethodDelete, "/api/CourseModels/"+url.PathEscape(courseID), token, nil, nil)
}

func (c *Client) ListCourseAssessments(ctx context.Context, token, courseID string) ([]domain.Assessment, error) {
	var assessments []domain.Assessment
	err := c.do(ctx, http.MethodGet, "/api/AssessmentModels/course/"+url.PathEscape(courseID), token, nil, &assessments)
	if err != nil {
		return nil, err
	}

	return assessments, nil
}

func (c *Client) GetAssessment(ctx context.Context, token, assessmentID string) (domain.Assessment, error) {
	var a domain.Assessment
	err := c.do(ctx, http.MethodGet, "/api/AssessmentModels/"+url.PathEscape(assessmentID), token, nil, &a)
	return a, err
}

func (c *Client) CreateAssessment(ctx context.Context, token string, a domain.Assessment) error {
	return c.do(ctx, http.MethodPost, "/api/AssessmentModels", token, a, nil)
}

func (c *Client) UpdateAssessment(ctx context.Context, token string, a domain.Assessment) error {
	return c.do(ctx, http.MethodPut, "/api/AssessmentModels/"+url.PathEscape(a.AssessmentID), token, a, nil)
}

func (c *Client) DeleteAssessment(ctx context.Context, token, assessmentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/AssessmentModels/"+url.PathEscape(assessmentID), token, nil, nil)
}

func (c *Client) SubmitResult(ctx context.Context, token string, r domain.Result) error {
	return c.do(ctx, http.MethodPost, "/api/ResultModels", token, r, nil)
}

func (c *Client) ListUserResults(ctx context.Context, token, userID string) ([]domain.Result, error) {
	var results []domain.Result
	err := c.do(ctx, http.MethodGet, "/api/ResultModels/user/"+url.PathEscape(userID), token, nil, &results)
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (c *Client) ListCourseResults(ctx context.Context, token, courseID string) ([]domain.Result, error) {
	var results []domain.Result
	err := c.do(ctx, http.MethodGet, "/api/ResultModels/course/"+url.PathEscape(courseID)+"/instructor", token, nil, &results)
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Internal(fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return errors.Internal(fmt.Errorf("build request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.New(errors.CodeUnavailable,
			errors.WithMessagef("backend unreachable"),
			errors.WithCause(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Internal(fmt.Errorf("decode %s %s response: %w", method, path, err))
	}

	return nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	code := errors.CodeInternal
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		code = errors.CodeInvalidArgument
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		code = errors.CodeUnauthenticated
	case resp.StatusCode == http.StatusNotFound:
		code = errors.CodeNotFound
	case resp.StatusCode == http.StatusConflict:
		code = errors.CodeAlreadyExists
	case resp.StatusCode >= http.StatusInternalServerError:
		code = errors.CodeUnavailable
	}

	return errors.New(code,
		errors.WithMessagef("backend: %s: %s", resp.Status, bytes.TrimSpace(msg)))
}
