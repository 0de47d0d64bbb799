package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendCheckInEmailTaskName  = "sendCheckInEmailTask"
	SendCheckInEmailQueueName = "checkInQueue"
)

// SendCheckInEmail carries one recipient's weekly check-in mail. The
// action links already embed signed tokens scoped to that recipient, so
// the processor needs no further lookups.
type SendCheckInEmail struct {
	Email         string `json:"email"`
	RecipientName string `json:"recipient_name"`
	UserFullName  string `json:"user_full_name"`
	AliveURL      string `json:"alive_url"`
	DeceasedURL   string `json:"deceased_url"`
}

func NewSendCheckInEmailTask(data SendCheckInEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendCheckInEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendCheckInEmailQueueName),
	), nil
}
