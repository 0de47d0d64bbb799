package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendInvitationEmailTaskName  = "sendInvitationEmailTask"
	SendInvitationEmailQueueName = "sendEmailQueue"
)

type SendInvitationEmail struct {
	Email        string `json:"email"`
	ContactName  string `json:"contact_name"`
	UserFullName string `json:"user_full_name"`
	Role         string `json:"role"`
	AcceptURL    string `json:"accept_url"`
	DeclineURL   string `json:"decline_url"`
}

func NewSendInvitationEmailTask(data SendInvitationEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendInvitationEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendInvitationEmailQueueName),
	), nil
}
