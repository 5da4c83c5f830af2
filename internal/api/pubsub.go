package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edusync/gateway/internal/domain"
)

type (
	Notification struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}

	ResultRecorded struct {
		ResultID     string `json:"result_id"`
		AssessmentID string `json:"assessment_id"`
		Score        int    `json:"score"`
		AttemptDate  string `json:"attempt_date"`
	}
)

// PublishResultRecorded notifies the attempting user's channel that their
// result reached the backend. Notification delivery is best effort and never
// blocks the submission response, which has already been sent.
func (a *API) PublishResultRecorded(ctx context.Context, e domain.EventResultRecorded) error {
	r := e.Result

	data := ResultRecorded{
		ResultID:     r.ResultID,
		AssessmentID: r.AssessmentID,
		Score:        r.Score,
		AttemptDate:  r.AttemptDate.Format(time.RFC3339),
	}

	return a.publishNotification(ctx, r.UserID, e.Name(), data)
}

func (a *API) publishNotification(ctx context.Context, user, event string, data any) error {
	n := Notification{
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return a.redis.Publish(ctx, fmt.Sprintf("%s:user:%s", a.prefix, user), b).Err()
}
