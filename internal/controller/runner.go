package controller

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run executes cmd and every command that follows from it, feeding each
// message back into c, until no work is left. It is the event loop used
// when there is no terminal program. onUpdate, if set, is called after every
// message c handles.
func Run(ctx context.Context, c *Controller, cmd tea.Cmd, onUpdate func(*Controller)) (UIState, error) {
	pending := []tea.Cmd{cmd}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return c.State(), err
		}

		next := pending[0]
		pending = pending[1:]
		if next == nil {
			continue
		}

		msg := next()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			pending = append(pending, batch...)
			continue
		}

		if follow := c.Update(msg); follow != nil {
			pending = append(pending, follow)
		}
		if onUpdate != nil {
			onUpdate(c)
		}
	}

	return c.State(), ctx.Err()
}
