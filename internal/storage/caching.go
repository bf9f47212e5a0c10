package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/service"
)

// CachingQueue wraps a JobQueue. Enqueue always reaches the backend, so every
// poll refers to an enqueued job. A fresh stored dataset answers Poll without
// waiting for the backend, and ready poll results are stored. Cache failures
// are logged and never fail the job.
type CachingQueue struct {
	next   service.JobQueue
	cache  service.ResultCache
	logger *slog.Logger
}

var _ service.JobQueue = (*CachingQueue)(nil)

// NewCachingQueue decorates next with cache.
func NewCachingQueue(next service.JobQueue, cache service.ResultCache, logger *slog.Logger) *CachingQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingQueue{next: next, cache: cache, logger: logger}
}

// Enqueue registers the job with the backend.
func (q *CachingQueue) Enqueue(ctx context.Context, address model.Address, year model.TaxYear) error {
	return q.next.Enqueue(ctx, address, year)
}

// Poll answers from the cache when it can and stores ready results.
func (q *CachingQueue) Poll(ctx context.Context, address model.Address, year model.TaxYear) (model.PollResult, error) {
	if cached, ok := q.lookup(ctx, address, year); ok {
		q.logger.Debug("Answering poll from cache",
			"address", address.Short(),
			"tax_year", year.String())
		return model.PollResult{Ready: true, Data: cached.Data}, nil
	}

	result, err := q.next.Poll(ctx, address, year)
	if err != nil || !result.Ready {
		return result, err
	}

	if err := q.cache.SaveResult(ctx, address, year, result.Data); err != nil {
		q.logger.Warn("Failed to cache result",
			"address", address.Short(),
			"tax_year", year.String(),
			"error", err)
	}
	return result, nil
}

func (q *CachingQueue) lookup(ctx context.Context, address model.Address, year model.TaxYear) (*service.CachedResult, bool) {
	cached, err := q.cache.GetResult(ctx, address, year)
	if err == nil {
		return cached, true
	}
	if !errors.Is(err, common.ErrNotFound) {
		q.logger.Warn("Failed to read cached result",
			"address", address.Short(),
			"tax_year", year.String(),
			"error", err)
	}
	return nil, false
}
