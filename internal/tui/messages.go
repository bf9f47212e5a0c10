package tui

// csvSavedMsg reports the outcome of writing the CSV export to disk.
type csvSavedMsg struct {
	err  error
	path string
}

// submitMsg asks the model to submit the form, used for prefilled runs.
type submitMsg struct{}

// field identifies the focused form element.
type field int

const (
	fieldAddress field = iota
	fieldYear
	fieldResults
)

func (f field) next() field {
	return (f + 1) % 3
}

func (f field) prev() field {
	return (f + 2) % 3
}
