package domain

const (
	EventNameResultRecorded = "result.recorded"
)

type EventResultRecorded struct {
	Result Result
}

func (EventResultRecorded) Name() string { return EventNameResultRecorded }
