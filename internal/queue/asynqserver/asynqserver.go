package asynqserver

import (
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/everkeep/backend/internal/cache"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/queue/processor"
	"github.com/everkeep/backend/internal/queue/task"
	"github.com/everkeep/backend/internal/worker"
)

func New(cfg config.Cache, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)
	srv := asynq.NewServer(
		RedisOptions(cfg),
		asynq.Config{
			Concurrency: 10,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

// NewPeriodicScheduler registers the check-in sweep on its cron spec.
func NewPeriodicScheduler(cacheCfg config.Cache, checkInCfg config.CheckInConfig) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisOptions(cacheCfg), &asynq.SchedulerOpts{
		LogLevel: asynq.ErrorLevel,
	})

	if _, err := scheduler.Register(checkInCfg.CronSpec, task.NewCheckInSweepTask()); err != nil {
		return nil, fmt.Errorf("register check-in sweep failed: %w", err)
	}

	return scheduler, nil
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{Addrs: cfg.RedisCluster.Addresses}
	} else {
		opts = asynq.RedisClientOpt{Addr: cfg.Redis.Address}
	}
	return opts
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendVerificationEmailTaskName, processor.NewSendVerificationEmailProcessor(workers))
	mux.Handle(task.SendInvitationEmailTaskName, processor.NewSendInvitationEmailProcessor(workers))
	mux.Handle(task.SendCheckInEmailTaskName, processor.NewSendCheckInEmailProcessor(workers))
	mux.Handle(task.SendDeathOTPEmailTaskName, processor.NewSendDeathOTPEmailProcessor(workers))
	mux.Handle(task.SendWillReleasedEmailTaskName, processor.NewSendWillReleasedEmailProcessor(workers))
	mux.Handle(task.CheckInSweepTaskName, processor.NewCheckInSweepProcessor(workers))

	queues := map[string]int{
		task.SendVerificationEmailQueueName: 1,
		task.CheckInSweepQueueName:          2,
	}
	return mux, queues
}
