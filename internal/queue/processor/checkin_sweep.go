package processor

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/everkeep/backend/internal/worker"
)

type checkInSweepProcessor struct {
	workers *worker.Workers
}

func NewCheckInSweepProcessor(workers *worker.Workers) *checkInSweepProcessor {
	return &checkInSweepProcessor{workers: workers}
}

func (p *checkInSweepProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if err := p.workers.CheckInScheduler.Run(ctx); err != nil {
		return fmt.Errorf("check-in sweep failed: %w", err)
	}

	return nil
}
