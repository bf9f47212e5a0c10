// Package components holds the reusable pieces of the terminal UI.
package components

import (
	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// YearPickerModel is an exclusive choice between the supported tax years.
// Exactly one year is always selected.
type YearPickerModel struct {
	theme   themes.Theme
	years   []model.TaxYear
	index   int
	focused bool
}

// NewYearPickerModel selects initial when it is one of the supported
// years, otherwise the first year.
func NewYearPickerModel(initial model.TaxYear, theme themes.Theme) YearPickerModel {
	years := model.TaxYears()
	index := 0
	for i, y := range years {
		if y == initial {
			index = i
			break
		}
	}
	return YearPickerModel{theme: theme, years: years, index: index}
}

// Selected returns the chosen year.
func (m YearPickerModel) Selected() model.TaxYear {
	return m.years[m.index]
}

// Next moves the selection right, stopping at the last year.
func (m *YearPickerModel) Next() {
	if m.index < len(m.years)-1 {
		m.index++
	}
}

// Prev moves the selection left, stopping at the first year.
func (m *YearPickerModel) Prev() {
	if m.index > 0 {
		m.index--
	}
}

// Focus marks the picker as the active field.
func (m *YearPickerModel) Focus() { m.focused = true }

// Blur clears focus.
func (m *YearPickerModel) Blur() { m.focused = false }

// Focused reports whether the picker is the active field.
func (m YearPickerModel) Focused() bool { return m.focused }

// View renders the years as a row of radio options.
func (m YearPickerModel) View() string {
	options := make([]string, 0, len(m.years))
	for i, y := range m.years {
		if i == m.index {
			style := m.theme.Selected
			if !m.focused {
				style = m.theme.Bold.Padding(0, 1)
			}
			options = append(options, style.Render("● "+y.Label()))
			continue
		}
		options = append(options, m.theme.Unselected.Render("○ "+y.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, options...)
}
