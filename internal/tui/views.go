package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render("hntax · hotspot earnings tax report"),
		m.renderForm(),
	}

	regions := m.ctrl.Regions()
	if regions.Loading {
		sections = append(sections, m.renderLoading())
	}
	if regions.Loaded {
		sections = append(sections, m.renderLoaded())
	}
	if regions.CSV {
		sections = append(sections, m.renderCSV())
	}
	if regions.Error {
		sections = append(sections, m.renderError())
	}
	if m.status != "" {
		sections = append(sections, m.status)
	}

	sections = append(sections, "", m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderForm renders the address input and the tax-year choice.
func (m Model) renderForm() string {
	regions := m.ctrl.Regions()

	panel := m.theme.Panel
	switch {
	case regions.InputError:
		panel = m.theme.ErrorPanel
	case m.focus == fieldAddress:
		panel = m.theme.FocusedPanel
	}

	count := fmt.Sprintf("%d/%d", len(m.input.Value()), model.AddressLength)
	lines := []string{
		m.theme.Bold.Render("Address") + "  " + m.theme.Faint.Render(count),
		panel.Width(m.contentWidth()).Render(m.input.View()),
	}
	if regions.InputError {
		lines = append(lines, m.theme.StatusError.Render(inputErrorText(m.ctrl.Err())))
	}

	lines = append(lines,
		"",
		m.theme.Bold.Render("Tax year"),
		m.years.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func inputErrorText(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidTaxYear):
		return "Choose one of the listed tax years."
	default:
		return fmt.Sprintf("The address must be exactly %d characters.", model.AddressLength)
	}
}

// renderLoading renders the waiting region.
func (m Model) renderLoading() string {
	addr, year := m.ctrl.Request()

	detail := fmt.Sprintf("Computing %s for %s", year.Label(), addr.Short())
	if polls := m.ctrl.Polls(); polls > 0 {
		detail += fmt.Sprintf(" · check %d, next in %s", polls, m.ctrl.PollInterval())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.spinner.View()+" "+m.theme.StatusInfo.Render("Working on it"),
		m.theme.StatusPending.Render(detail),
	)
	return m.theme.Panel.Width(m.contentWidth()).Render(content)
}

// renderLoaded renders the result region.
func (m Model) renderLoaded() string {
	hint := m.theme.Faint.Render("c: show/hide CSV · w: write CSV file")
	if m.focus == fieldAddress {
		hint = m.theme.Faint.Render("Tab to the results, then c: show/hide CSV · w: write CSV file")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, m.summary.View(), "", hint)
	return m.theme.FocusedPanel.Width(m.contentWidth()).Render(content)
}

// renderCSV renders the CSV export region.
func (m Model) renderCSV() string {
	title := m.theme.Subtitle.Render("CSV")
	if m.csv.TotalLineCount() > m.csv.Height {
		title += m.theme.Faint.Render(fmt.Sprintf("  %3.f%%", m.csv.ScrollPercent()*100))
	}
	body := m.theme.Code.Render(strings.TrimSuffix(m.csv.View(), "\n"))
	return m.theme.Panel.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

// renderError renders the failure region.
func (m Model) renderError() string {
	msg := "Something went wrong fetching results. Press Enter to try again."
	if err := m.ctrl.Err(); err != nil {
		msg = lipgloss.JoinVertical(lipgloss.Left, msg, m.theme.Faint.Render(err.Error()))
	}
	return m.theme.ErrorPanel.Width(m.contentWidth()).Render(m.theme.StatusError.Render("Error") + "\n" + msg)
}
