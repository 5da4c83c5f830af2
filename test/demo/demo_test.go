//go:build integration_test

// Package demo drives a running gateway end to end. It expects the gateway on
// localhost:8080, its redis on localhost:6379 and a reachable EduSync backend
// configured behind the gateway.
package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	gatewayURL   = "http://localhost:8080"
	pubsubPrefix = "local:pubsub"
)

func TestTakeQuiz(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wg := new(sync.WaitGroup)

	// Log in and find something to take.
	login := call(t, ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "student@example.com",
		"password": "Student1!",
	})

	var session struct {
		ClientID  string `json:"clientId"`
		Name      string `json:"name"`
		Dashboard string `json:"dashboard"`
	}
	require.NoError(t, json.Unmarshal(login, &session))
	t.Logf("Logged in as %q, dashboard %s", session.Name, session.Dashboard)

	var assignments []struct {
		Course struct {
			Title string `json:"title"`
		} `json:"course"`
		Assessments []struct {
			AssessmentID string `json:"assessmentId"`
			Title        string `json:"title"`
		} `json:"assessments"`
	}
	require.NoError(t, json.Unmarshal(
		call(t, ctx, http.MethodGet, "/student/assignments", session.ClientID, nil), &assignments))

	var assessmentID string
	for _, a := range assignments {
		for _, q := range a.Assessments {
			t.Logf("Course %q offers quiz %q", a.Course.Title, q.Title)
			assessmentID = q.AssessmentID
		}
	}
	require.NotEmpty(t, assessmentID, "demo needs at least one authored quiz")

	// Watch for the recorded-result notification before submitting.
	subscribeNotifications(t, makeRedis(t), wg)

	// Take the quiz: answer everything with the first option, then submit.
	var quiz struct {
		Questions []struct {
			QuestionText string   `json:"questionText"`
			Options      []string `json:"options"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(
		call(t, ctx, http.MethodPost, "/student/quiz/"+assessmentID+"/start", session.ClientID, nil), &quiz))

	for i, q := range quiz.Questions {
		require.NotEmpty(t, q.Options)
		call(t, ctx, http.MethodPut, "/student/quiz/"+assessmentID+"/answer", session.ClientID, map[string]any{
			"questionIndex": i,
			"option":        q.Options[0],
		})
	}

	var result struct {
		Score struct {
			Achieved   int     `json:"achieved"`
			Max        int     `json:"max"`
			Percentage float64 `json:"percentage"`
		} `json:"score"`
		Passed    bool `json:"passed"`
		Persisted bool `json:"persisted"`
	}
	require.NoError(t, json.Unmarshal(
		call(t, ctx, http.MethodPost, "/student/quiz/"+assessmentID+"/submit", session.ClientID, nil), &result))

	t.Logf("Scored %d/%d (%.1f%%), passed=%v, persisted=%v",
		result.Score.Achieved, result.Score.Max, result.Score.Percentage, result.Passed, result.Persisted)

	wg.Wait()
}

func call(t *testing.T, ctx context.Context, method, path, clientID string, body any) []byte {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, gatewayURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Less(t, resp.StatusCode, 300, "%s %s: %s", method, path, out.String())

	return out.Bytes()
}

func subscribeNotifications(t *testing.T, rc redis.UniversalClient, wg *sync.WaitGroup) {
	wg.Add(1)
	sub := subscribeRedis(t, rc, fmt.Sprintf("%s:user:*", pubsubPrefix))
	go func() {
		defer wg.Done()

		for msg := range sub {
			var n struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				t.Logf("unmarshal notification: %v", err)
				continue
			}

			t.Logf("Notification on %s: %s %s", msg.Channel, n.Event, n.Data)
			return
		}
	}()
}

func subscribeRedis(t *testing.T, rc redis.UniversalClient, pattern string) <-chan *redis.Message {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sub := rc.PSubscribe(ctx, pattern)
	t.Cleanup(func() { sub.Close() })

	c := make(chan *redis.Message)
	go func() {
		defer close(c)

		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				t.Log(err)
				return
			}

			c <- msg
		}
	}()

	return c
}

func makeRedis(t *testing.T) redis.UniversalClient {
	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{"localhost:6379"},
	})
	t.Cleanup(func() { r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Ping(ctx).Err(); err != nil {
		t.Fatal(err)
	}

	return r
}
