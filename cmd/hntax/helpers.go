package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/hntax/internal/backend"
	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/config"
	"github.com/Veraticus/hntax/internal/report"
	"github.com/Veraticus/hntax/internal/service"
	"github.com/Veraticus/hntax/internal/storage"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// loadSettings reads the validated configuration from the global viper.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, common.NewUserError("invalid configuration", err)
	}
	return settings, nil
}

// newBackend creates the HTTP job queue.
func newBackend(settings config.Settings, logger *slog.Logger) (*backend.Client, error) {
	return backend.NewClient(settings.BaseURL,
		backend.WithTimeout(settings.HTTPTimeout),
		backend.WithUserAgent("hntax/"+version),
		backend.WithLogger(logger),
	)
}

// initStorage opens the result cache and brings its schema up to date.
func initStorage(ctx context.Context, settings config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.CachePath, storage.WithTTL(settings.CacheTTL))
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newQueue builds the job queue used by the controller. With the cache
// enabled the backend is wrapped so finished reports are reused. A cache
// that cannot be opened is logged and skipped.
func newQueue(ctx context.Context, settings config.Settings) (service.JobQueue, func(), error) {
	client, err := newBackend(settings, common.LoggerFrom(ctx))
	if err != nil {
		return nil, nil, common.NewUserError("invalid backend URL", err)
	}

	if !settings.CacheEnabled {
		return client, func() {}, nil
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		slog.Warn("Result cache unavailable, continuing without it",
			"path", settings.CachePath,
			"error", err)
		return client, func() {}, nil
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			common.LogError(err, "Failed to close result cache", common.Fields{"path": store.Path()})
		}
	}
	return storage.NewCachingQueue(client, store, common.LoggerFrom(ctx)), cleanup, nil
}

func moneyFormatter(settings config.Settings) (*report.MoneyFormatter, error) {
	money, err := report.NewMoneyFormatter(settings.Currency, settings.Locale)
	if err != nil {
		return nil, common.NewUserError("invalid display settings", err)
	}
	return money, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
