// Package controller owns the client-side job lifecycle: validating input,
// enqueueing a job, polling it until the backend has data and deciding which
// display regions are visible at each step.
package controller

// UIState is the single active state of the controller.
type UIState int

// Controller states.
const (
	StateInitial UIState = iota
	StateBadAddress
	StateLoading
	StateLoaded
	StateFailed
)

var stateNames = map[UIState]string{
	StateInitial:    "initial",
	StateBadAddress: "bad_address",
	StateLoading:    "loading",
	StateLoaded:     "loaded",
	StateFailed:     "failed",
}

func (s UIState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether a submission has finished in this state.
func (s UIState) Terminal() bool {
	return s == StateLoaded || s == StateFailed
}

// Regions is the visibility of every display region.
type Regions struct {
	Loading    bool
	Loaded     bool
	Error      bool
	CSV        bool
	InputError bool
}

// apply updates r for target. Regions a state does not mention keep their
// current value.
func (r Regions) apply(target UIState) Regions {
	switch target {
	case StateInitial:
		return Regions{}
	case StateBadAddress:
		r.InputError = true
	case StateLoading:
		r.Loading = true
		r.Loaded = false
		r.Error = false
		r.CSV = false
		r.InputError = false
	case StateLoaded:
		r.Loading = false
		r.Loaded = true
		r.Error = false
	case StateFailed:
		r.Loading = false
		r.Loaded = false
		r.Error = true
		r.CSV = false
	}
	return r
}
