package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendDeathOTPEmailTaskName  = "sendDeathOTPEmailTask"
	SendDeathOTPEmailQueueName = "checkInQueue"
)

type SendDeathOTPEmail struct {
	Email        string `json:"email"`
	ContactName  string `json:"contact_name"`
	UserFullName string `json:"user_full_name"`
	Code         string `json:"code"`
}

func NewSendDeathOTPEmailTask(data SendDeathOTPEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendDeathOTPEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendDeathOTPEmailQueueName),
	), nil
}
