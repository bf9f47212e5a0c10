package components

import (
	"fmt"

	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/report"
	"github.com/Veraticus/hntax/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// SummaryModel renders a loaded dataset's headline figures.
type SummaryModel struct {
	theme   themes.Theme
	data    model.DataSet
	summary report.Summary
	year    model.TaxYear
	width   int
}

// NewSummaryModel builds the panel for one loaded result.
func NewSummaryModel(data model.DataSet, summary report.Summary, year model.TaxYear, theme themes.Theme) SummaryModel {
	return SummaryModel{
		theme:   theme,
		data:    data,
		summary: summary,
		year:    year,
	}
}

// Resize sets the available width.
func (m *SummaryModel) Resize(width int) {
	m.width = width
}

// View renders the total followed by the dataset's extent.
func (m SummaryModel) View() string {
	lines := []string{
		m.theme.Subtitle.Render("Total earnings"),
		m.theme.Total.Render(m.summary.TotalText),
		"",
		m.row("Tax year", m.year.Label()),
		m.row("Period", m.period()),
		m.row("Records", fmt.Sprintf("%d", m.summary.Records)),
	}

	if len(m.data) > 0 {
		first, last := m.data[0].Date, m.data[len(m.data)-1].Date
		lines = append(lines, m.row("Dates", fmt.Sprintf("%s → %s", first, last)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(content)
	}
	return content
}

func (m SummaryModel) row(label, value string) string {
	return m.theme.Faint.Render(fmt.Sprintf("%-9s", label)) + " " + m.theme.Normal.Render(value)
}

// period renders the tax year's inclusive date range.
func (m SummaryModel) period() string {
	start, end := m.year.Period()
	return start.Format("2 Jan 2006") + " → " + end.AddDate(0, 0, -1).Format("2 Jan 2006")
}
