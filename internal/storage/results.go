package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/service"
)

var _ service.ResultCache = (*SQLiteStorage)(nil)

// GetResult returns the fresh dataset stored for the pair. A missing or
// expired entry yields common.ErrNotFound.
func (s *SQLiteStorage) GetResult(ctx context.Context, address model.Address, year model.TaxYear) (*service.CachedResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKey(address, year); err != nil {
		return nil, err
	}

	var (
		raw       string
		fetchedAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT data, fetched_at FROM results
		WHERE address = ? AND tax_year = ?
	`, string(address), int(year)).Scan(&raw, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %s/%s: %w", address.Short(), year, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if s.expired(fetchedAt) {
		return nil, fmt.Errorf("result %s/%s expired: %w", address.Short(), year, common.ErrNotFound)
	}

	var data model.DataSet
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}

	return &service.CachedResult{
		Address:   address,
		Year:      year,
		Data:      data,
		FetchedAt: fetchedAt,
	}, nil
}

// SaveResult stores data for the pair, replacing any previous entry.
func (s *SQLiteStorage) SaveResult(ctx context.Context, address model.Address, year model.TaxYear, data model.DataSet) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKey(address, year); err != nil {
		return err
	}
	if err := validateDataSet(data); err != nil {
		return err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (address, tax_year, data, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address, tax_year) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, string(address), int(year), string(raw), s.timestamp())
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

// ListResults returns every stored entry, newest first, including expired
// ones.
func (s *SQLiteStorage) ListResults(ctx context.Context) ([]service.CachedResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT address, tax_year, data, fetched_at FROM results
		ORDER BY fetched_at DESC, address, tax_year
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []service.CachedResult
	for rows.Next() {
		var (
			r    service.CachedResult
			addr string
			year int
			raw  string
		)
		if err := rows.Scan(&addr, &year, &raw, &r.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &r.Data); err != nil {
			return nil, fmt.Errorf("failed to decode stored result for %s: %w", addr, err)
		}
		r.Address = model.Address(addr)
		r.Year = model.TaxYear(year)
		results = append(results, r)
	}

	return results, rows.Err()
}

// DeleteExpired removes entries older than the TTL.
func (s *SQLiteStorage) DeleteExpired(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	cutoff := s.timestamp().Add(-s.ttl)
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired results: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every entry.
func (s *SQLiteStorage) Clear(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM results`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear results: %w", err)
	}
	return res.RowsAffected()
}

// Expired reports whether an entry fetched at t is past the TTL.
func (s *SQLiteStorage) Expired(t time.Time) bool {
	return s.expired(t)
}

func (s *SQLiteStorage) expired(fetchedAt time.Time) bool {
	return s.now().Sub(fetchedAt) >= s.ttl
}

// timestamp is the current time at the precision stored in the database.
func (s *SQLiteStorage) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}
