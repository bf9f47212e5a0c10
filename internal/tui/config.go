package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/hntax/internal/controller"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/report"
	"github.com/Veraticus/hntax/internal/service"
	"github.com/Veraticus/hntax/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Context      context.Context
	Theme        themes.Theme
	Queue        service.JobQueue
	Money        *report.MoneyFormatter
	Scheduler    controller.Scheduler
	Logger       *slog.Logger
	Address      string
	CSVDir       string
	TaxYear      model.TaxYear
	PollInterval time.Duration
	Width        int
	Height       int
	AutoSubmit   bool
	AltScreen    bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		TaxYear:      model.FirstTaxYear,
		PollInterval: controller.DefaultPollInterval,
		CSVDir:       ".",
		Width:        80,
		Height:       24,
		AltScreen:    true,
	}
}

// WithQueue sets the backend job queue.
func WithQueue(queue service.JobQueue) Option {
	return func(c *Config) {
		c.Queue = queue
	}
}

// WithMoneyFormatter sets how totals are displayed.
func WithMoneyFormatter(money *report.MoneyFormatter) Option {
	return func(c *Config) {
		c.Money = money
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPrefill fills the form. When submit is true the form is submitted as
// soon as the program starts.
func WithPrefill(address string, year model.TaxYear, submit bool) Option {
	return func(c *Config) {
		c.Address = address
		if year != 0 {
			c.TaxYear = year
		}
		c.AutoSubmit = submit
	}
}

// WithPollInterval sets the delay between status checks.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = d
	}
}

// WithScheduler replaces the poll timer, mainly for tests.
func WithScheduler(s controller.Scheduler) Option {
	return func(c *Config) {
		c.Scheduler = s
	}
}

// WithLogger sets the logger handed to the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCSVDir sets where saved CSV exports are written.
func WithCSVDir(dir string) Option {
	return func(c *Config) {
		c.CSVDir = dir
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithContext sets the context passed to backend calls.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}
