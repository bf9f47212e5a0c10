package controller

import "github.com/Veraticus/hntax/internal/model"

// Messages carry asynchronous outcomes back to the controller. Chain ties
// each one to the submission that issued it.

// EnqueuedMsg reports the outcome of the enqueue request.
type EnqueuedMsg struct {
	Err   error
	Chain int
}

// PolledMsg reports the outcome of one status check.
type PolledMsg struct {
	Err    error
	Result model.PollResult
	Chain  int
}

// PollDueMsg fires when the delay before the next status check has elapsed.
type PollDueMsg struct {
	Chain int
}
