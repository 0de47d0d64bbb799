package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
)

type ctxKey int

const (
	_ ctxKey = iota
	asyncQCtxKey
)

var (
	globalClient *asynq.Client
	globalMu     sync.RWMutex
)

// GetClient returns the global Client, which can be reconfigured with SetClient.
// It's safe for concurrent use.
func GetClient(ctx context.Context) *asynq.Client {
	c := ctx.Value(asyncQCtxKey)
	if c != nil {
		client, ok := c.(*asynq.Client)
		if !ok {
			return nil
		}

		return client
	}

	globalMu.RLock()
	client := globalClient
	globalMu.RUnlock()

	return client
}

// SetClient replaces the global Client, and returns a
// function to restore the original value. It's safe for concurrent use.
func SetClient(client *asynq.Client) func() {
	globalMu.Lock()
	prev := globalClient
	globalClient = client
	globalMu.Unlock()
	return func() { SetClient(prev) }
}

// Enqueue hands the task to the global client. A nil client (tests,
// queue disabled) is reported as an error rather than a panic.
func Enqueue(ctx context.Context, task *asynq.Task) error {
	c := GetClient(ctx)
	if c == nil {
		return fmt.Errorf("no asynq client configured")
	}

	if _, err := c.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue task %s failed: %w", task.Type(), err)
	}

	return nil
}
