package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobCompletedMessage notifies the refresh worker that a service job changed
// status, so the service-job aggregates need rematerializing. It carries only
// the id; the worker re-reads base tables anyway.
type JobCompletedMessage struct {
	EventID   string    `json:"eventId"`
	JobID     int64     `json:"jobId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewJobCompletedMessage(jobID int64) *JobCompletedMessage {
	return &JobCompletedMessage{
		EventID:   uuid.NewString(),
		JobID:     jobID,
		Timestamp: time.Now(),
	}
}

func (m *JobCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func JobCompletedMessageFromJSON(data []byte) (*JobCompletedMessage, error) {
	var msg JobCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
