package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendWillReleasedEmailTaskName  = "sendWillReleasedEmailTask"
	SendWillReleasedEmailQueueName = "checkInQueue"
)

type SendWillReleasedEmail struct {
	Email        string `json:"email"`
	ContactName  string `json:"contact_name"`
	UserFullName string `json:"user_full_name"`
}

func NewSendWillReleasedEmailTask(data SendWillReleasedEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendWillReleasedEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendWillReleasedEmailQueueName),
	), nil
}
