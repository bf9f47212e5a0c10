// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/hntax/internal/model"
)

// JobQueue is the backend contract the controller relies on.
type JobQueue interface {
	// Enqueue registers a job for the pair. Any success is an acknowledgement.
	Enqueue(ctx context.Context, address model.Address, year model.TaxYear) error
	// Poll checks on the job. A not-ready result is not an error.
	Poll(ctx context.Context, address model.Address, year model.TaxYear) (model.PollResult, error)
}

// ResultCache persists completed datasets between runs.
type ResultCache interface {
	GetResult(ctx context.Context, address model.Address, year model.TaxYear) (*CachedResult, error)
	SaveResult(ctx context.Context, address model.Address, year model.TaxYear, data model.DataSet) error
	ListResults(ctx context.Context) ([]CachedResult, error)
	DeleteExpired(ctx context.Context) (int64, error)
	Clear(ctx context.Context) (int64, error)
	Close() error
}

// CachedResult is a dataset stored by the result cache.
type CachedResult struct {
	FetchedAt time.Time
	Address   model.Address
	Data      model.DataSet
	Year      model.TaxYear
}
