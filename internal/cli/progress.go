package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// PollProgress shows an indeterminate spinner while a job is being polled.
// A disabled PollProgress does nothing, so callers need not check whether
// output is a terminal.
type PollProgress struct {
	bar     *progressbar.ProgressBar
	done    chan struct{}
	writer  io.Writer
	once    sync.Once
	enabled bool
}

// NewPollProgress creates a spinner writing to w.
func NewPollProgress(w io.Writer, enabled bool) *PollProgress {
	return &PollProgress{writer: w, enabled: enabled, done: make(chan struct{})}
}

// Start draws the spinner and keeps it moving until Finish.
func (p *PollProgress) Start(description string) {
	if !p.enabled || p.bar != nil {
		return
	}

	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
	)

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				if err := p.bar.Add(1); err != nil {
					slog.Debug("Failed to update progress bar", "error", err)
				}
			}
		}
	}()
}

// Checked updates the description after a status check.
func (p *PollProgress) Checked(polls int, next time.Duration) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("[cyan]Waiting for results[reset] (check %d, next in %s)", polls, next))
}

// Finish stops and clears the spinner.
func (p *PollProgress) Finish() {
	if p.bar == nil {
		return
	}
	p.once.Do(func() {
		close(p.done)
		if err := p.bar.Finish(); err != nil {
			slog.Debug("Failed to finish progress bar", "error", err)
		}
	})
}
