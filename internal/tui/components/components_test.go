package components

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/report"
	"github.com/Veraticus/hntax/internal/tui/themes"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearPicker_Initial(t *testing.T) {
	tests := []struct {
		name    string
		initial model.TaxYear
		want    model.TaxYear
	}{
		{name: "supported year", initial: 2022, want: 2022},
		{name: "unset falls back to first", initial: 0, want: model.FirstTaxYear},
		{name: "unsupported falls back to first", initial: 2030, want: model.FirstTaxYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewYearPickerModel(tt.initial, themes.Default)
			assert.Equal(t, tt.want, m.Selected())
		})
	}
}

func TestYearPicker_Navigation(t *testing.T) {
	m := NewYearPickerModel(model.FirstTaxYear, themes.Default)

	m.Prev()
	assert.Equal(t, model.FirstTaxYear, m.Selected(), "stops at first year")

	for range model.TaxYears() {
		m.Next()
	}
	assert.Equal(t, model.LastTaxYear, m.Selected(), "stops at last year")

	m.Prev()
	assert.Equal(t, model.LastTaxYear-1, m.Selected())
}

func TestYearPicker_View(t *testing.T) {
	m := NewYearPickerModel(2021, themes.Default)
	m.Focus()
	assert.True(t, m.Focused())

	view := m.View()
	for _, y := range model.TaxYears() {
		assert.Contains(t, view, y.Label())
	}
	assert.Equal(t, 1, strings.Count(view, "●"), "exactly one year selected")

	m.Blur()
	assert.False(t, m.Focused())
}

func TestSummary_View(t *testing.T) {
	data := model.DataSet{
		{
			Date:     model.NewDate(2021, time.April, 6),
			Earnings: decimal.RequireFromString("1.5"),
			Tokens:   decimal.RequireFromString("0.2"),
			Price:    decimal.RequireFromString("7.5"),
		},
		{
			Date:     model.NewDate(2021, time.April, 7),
			Earnings: decimal.RequireFromString("2"),
			Tokens:   decimal.RequireFromString("0.3"),
			Price:    decimal.RequireFromString("7"),
		},
	}
	money, err := report.NewMoneyFormatter(report.DefaultCurrency, report.DefaultLocale)
	require.NoError(t, err)
	summary, err := report.Summarize(data, money)
	require.NoError(t, err)

	m := NewSummaryModel(data, summary, 2021, themes.CatppuccinMocha)
	m.Resize(80)
	view := m.View()

	assert.Contains(t, view, "Total earnings")
	assert.Contains(t, view, "3.50")
	assert.Contains(t, view, "2021/22")
	assert.Contains(t, view, "2021-04-06")
	assert.Contains(t, view, "2021-04-07")
	assert.Contains(t, view, "6 Apr 2021")
	assert.Contains(t, view, "5 Apr 2022")
}

func TestGetTheme(t *testing.T) {
	assert.Equal(t, themes.CatppuccinMocha.Palette, themes.GetTheme("catppuccin-mocha").Palette)
	assert.Equal(t, themes.Default.Palette, themes.GetTheme("unknown").Palette)
}
