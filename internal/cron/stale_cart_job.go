package cron

import (
	"context"
	"fmt"
	"time"
)

const (
	StaleCartJobName        = "stale-cart-abandon"
	defaultStaleCartIdle    = 72 * time.Hour
	defaultStaleCartBatches = 500
)

type cartAbandoner interface {
	AbandonStale(ctx context.Context, before time.Time, limit int) (int, error)
}

// StaleCartJobParams configures the sweeper. Carts untouched for IdleAfter are
// abandoned, at most BatchSize per run.
type StaleCartJobParams struct {
	Carts     cartAbandoner
	IdleAfter time.Duration
	BatchSize int
}

type staleCartJob struct {
	carts     cartAbandoner
	idleAfter time.Duration
	batchSize int
	now       func() time.Time
}

func NewStaleCartJob(params StaleCartJobParams) (Job, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.IdleAfter <= 0 {
		params.IdleAfter = defaultStaleCartIdle
	}
	if params.BatchSize <= 0 {
		params.BatchSize = defaultStaleCartBatches
	}
	return &staleCartJob{
		carts:     params.Carts,
		idleAfter: params.IdleAfter,
		batchSize: params.BatchSize,
		now:       time.Now,
	}, nil
}

func (j *staleCartJob) Name() string { return StaleCartJobName }

func (j *staleCartJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.idleAfter)
	n, err := j.carts.AbandonStale(ctx, cutoff, j.batchSize)
	if err != nil {
		return int64(n), fmt.Errorf("abandon stale carts: %w", err)
	}
	return int64(n), nil
}
