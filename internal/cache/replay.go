package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	usedTokenKeyPrefix = "checkin:used:"
	sweepLockKey       = "checkin:sweep:lock"
)

// ReplayGuard marks check-in token ids as consumed so a forwarded or
// re-clicked email link cannot record a second attestation.
type ReplayGuard interface {
	// IsUsed reports whether the token id has already been consumed.
	IsUsed(ctx context.Context, tokenID string) (bool, error)
	// MarkUsed returns true if the token id was free and is now taken.
	MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}

// RunLock serializes sweep runs across instances.
type RunLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

type redisReplayGuard struct {
	client redis.UniversalClient
}

func NewReplayGuard(client redis.UniversalClient) ReplayGuard {
	return &redisReplayGuard{client: client}
}

func (g *redisReplayGuard) IsUsed(ctx context.Context, tokenID string) (bool, error) {
	n, err := g.client.Exists(ctx, usedTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check token used failed: %w", err)
	}
	return n > 0, nil
}

func (g *redisReplayGuard) MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, usedTokenKeyPrefix+tokenID, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark token used failed: %w", err)
	}
	return ok, nil
}

type redisRunLock struct {
	client redis.UniversalClient
}

func NewRunLock(client redis.UniversalClient) RunLock {
	return &redisRunLock{client: client}
}

func (l *redisRunLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, sweepLockKey, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire sweep lock failed: %w", err)
	}
	return ok, nil
}

func (l *redisRunLock) Release(ctx context.Context) error {
	if err := l.client.Del(ctx, sweepLockKey).Err(); err != nil {
		return fmt.Errorf("release sweep lock failed: %w", err)
	}
	return nil
}
