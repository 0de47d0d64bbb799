package task

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	CheckInSweepTaskName  = "checkInSweepTask"
	CheckInSweepQueueName = "checkInQueue"
)

// NewCheckInSweepTask builds the periodic sweep trigger. The task is
// unique for the sweep window so a slow run cannot be stacked behind a
// second enqueue of the same cycle.
func NewCheckInSweepTask() *asynq.Task {
	return asynq.NewTask(
		CheckInSweepTaskName,
		nil,
		asynq.MaxRetry(2),
		asynq.Queue(CheckInSweepQueueName),
		asynq.Unique(time.Hour),
	)
}
