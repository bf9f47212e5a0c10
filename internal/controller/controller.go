package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/report"
	"github.com/Veraticus/hntax/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultPollInterval is the delay between status checks.
const DefaultPollInterval = 10 * time.Second

// Scheduler returns a command that waits d and then produces fn's message.
type Scheduler func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// ContextScheduler waits on a timer that is abandoned when ctx is done.
func ContextScheduler(ctx context.Context) Scheduler {
	return func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		return func() tea.Msg {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil
			case ts := <-timer.C:
				return fn(ts)
			}
		}
	}
}

// Result is what a Loaded controller shows.
type Result struct {
	Data    model.DataSet
	Summary report.Summary
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the timer used between polls.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		c.schedule = s
	}
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithContext sets the context passed to backend calls.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		c.ctx = ctx
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMoneyFormatter sets the formatter used for the total.
func WithMoneyFormatter(money *report.MoneyFormatter) Option {
	return func(c *Controller) {
		c.money = money
	}
}

// Controller drives one submission at a time through enqueue and polling.
// It is not safe for concurrent use; all methods run on the caller's event
// loop and asynchronous work comes back as messages passed to Update.
type Controller struct {
	ctx      context.Context
	queue    service.JobQueue
	money    *report.MoneyFormatter
	schedule Scheduler
	logger   *slog.Logger
	result   *Result
	err      error
	address  model.Address
	regions  Regions
	interval time.Duration
	state    UIState
	year     model.TaxYear
	chain    int
	polls    int
}

// New creates a controller in the Initial state.
func New(queue service.JobQueue, opts ...Option) (*Controller, error) {
	if queue == nil {
		return nil, fmt.Errorf("controller requires a job queue")
	}

	c := &Controller{
		ctx:      context.Background(),
		queue:    queue,
		schedule: tea.Tick,
		logger:   slog.Default(),
		interval: DefaultPollInterval,
		state:    StateInitial,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.money == nil {
		money, err := report.NewMoneyFormatter(report.DefaultCurrency, report.DefaultLocale)
		if err != nil {
			return nil, err
		}
		c.money = money
	}

	return c, nil
}

// State returns the active state.
func (c *Controller) State() UIState { return c.state }

// Regions returns the current region visibility.
func (c *Controller) Regions() Regions { return c.regions }

// Result returns the loaded result, or nil outside Loaded.
func (c *Controller) Result() *Result {
	if c.state != StateLoaded {
		return nil
	}
	return c.result
}

// Err returns the error that caused BadAddress or Failed.
func (c *Controller) Err() error { return c.err }

// Polls returns how many status checks the current submission has issued.
func (c *Controller) Polls() int { return c.polls }

// Request returns the address and tax year of the current submission.
func (c *Controller) Request() (model.Address, model.TaxYear) { return c.address, c.year }

// PollInterval returns the delay between status checks.
func (c *Controller) PollInterval() time.Duration { return c.interval }

// SetState makes target the active state and updates region visibility.
// Calling it again with the same target changes nothing.
func (c *Controller) SetState(target UIState) {
	if c.state != target {
		c.logger.Debug("State transition",
			"from", c.state.String(),
			"to", target.String(),
			"chain", c.chain)
	}
	c.state = target
	c.regions = c.regions.apply(target)
}

// ToggleCSV flips the CSV region. It only has an effect while Loaded.
func (c *Controller) ToggleCSV() {
	if c.state != StateLoaded {
		return
	}
	c.regions.CSV = !c.regions.CSV
}

// Reset abandons the current submission and returns to Initial.
func (c *Controller) Reset() {
	c.chain++
	c.polls = 0
	c.result = nil
	c.err = nil
	c.SetState(StateInitial)
}

// Submit validates the input and starts a new job. It returns nil when the
// address is rejected, otherwise the command that enqueues the job. Any
// submission still in flight is superseded.
func (c *Controller) Submit(address string, year model.TaxYear) tea.Cmd {
	addr := model.Address(address)
	if err := addr.Validate(); err != nil {
		return c.reject(err)
	}
	if err := year.Validate(); err != nil {
		return c.reject(err)
	}

	c.chain++
	c.polls = 0
	c.result = nil
	c.err = nil
	c.address = addr
	c.year = year
	c.SetState(StateLoading)

	c.logger.Info("Submitting job",
		"address", addr.Short(),
		"tax_year", year.String(),
		"chain", c.chain)

	return c.enqueueCmd(c.chain)
}

func (c *Controller) reject(err error) tea.Cmd {
	c.logger.Debug("Rejected input", "error", err)
	c.err = err
	c.SetState(StateBadAddress)
	return nil
}

// Update handles a message produced by one of the controller's commands and
// returns the next command, if any. Messages from superseded submissions
// are dropped.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case EnqueuedMsg:
		if c.stale(msg.Chain) {
			return nil
		}
		if msg.Err != nil {
			c.fail(msg.Err, "enqueue")
			return nil
		}
		return c.pollCmd(msg.Chain)

	case PolledMsg:
		if c.stale(msg.Chain) {
			return nil
		}
		if msg.Err != nil {
			c.fail(msg.Err, "poll")
			return nil
		}
		if !msg.Result.Ready {
			c.logger.Debug("Job not ready",
				"poll", c.polls,
				"retry_in", c.interval.String(),
				"chain", msg.Chain)
			chain := msg.Chain
			return c.schedule(c.interval, func(time.Time) tea.Msg {
				return PollDueMsg{Chain: chain}
			})
		}
		c.load(msg.Result.Data)
		return nil

	case PollDueMsg:
		if c.stale(msg.Chain) {
			return nil
		}
		return c.pollCmd(msg.Chain)
	}

	return nil
}

func (c *Controller) stale(chain int) bool {
	if chain != c.chain || c.state != StateLoading {
		c.logger.Debug("Dropping stale message", "chain", chain, "current", c.chain)
		return true
	}
	return false
}

func (c *Controller) fail(err error, step string) {
	c.logger.Warn("Job failed", "step", step, "error", err, "polls", c.polls)
	c.err = err
	c.SetState(StateFailed)
}

// load enters Loaded and then computes the derived views. Only ready
// datasets reach here, and a ready dataset is never empty.
func (c *Controller) load(data model.DataSet) {
	c.SetState(StateLoaded)
	summary, err := report.Summarize(data, c.money)
	if err != nil {
		panic(fmt.Sprintf("summarize ready dataset: %v", err))
	}
	c.result = &Result{Data: data, Summary: summary}

	c.logger.Info("Job loaded",
		"records", summary.Records,
		"total", summary.Total.String(),
		"polls", c.polls)
}

func (c *Controller) enqueueCmd(chain int) tea.Cmd {
	ctx, queue, addr, year := c.ctx, c.queue, c.address, c.year
	return func() tea.Msg {
		return EnqueuedMsg{Chain: chain, Err: queue.Enqueue(ctx, addr, year)}
	}
}

func (c *Controller) pollCmd(chain int) tea.Cmd {
	c.polls++
	ctx, queue, addr, year := c.ctx, c.queue, c.address, c.year
	return func() tea.Msg {
		result, err := queue.Poll(ctx, addr, year)
		return PolledMsg{Chain: chain, Result: result, Err: err}
	}
}
