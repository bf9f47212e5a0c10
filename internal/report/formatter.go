// Package report turns a job's dataset into the views shown to the user:
// a running total of earnings and a CSV export.
package report

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CSVHeader is the first line of every export.
const CSVHeader = "date, earnings, tokens mined, daily price\n"

// Defaults agreed with the presentation layer.
const (
	DefaultCurrency = "GBP"
	DefaultLocale   = "en-GB"
)

// Summary bundles the derived views of one dataset.
type Summary struct {
	Total     decimal.Decimal
	TotalText string
	CSV       string
	Records   int
}

// ComputeTotal sums earnings across all records. There is no total for an
// empty dataset.
func ComputeTotal(data model.DataSet) (decimal.Decimal, error) {
	if len(data) == 0 {
		return decimal.Zero, fmt.Errorf("compute total: %w", common.ErrEmptyInput)
	}

	total := data[0].Earnings
	for _, rec := range data[1:] {
		total = total.Add(rec.Earnings)
	}
	return total, nil
}

// ToCSV renders the dataset in its given order, one line per record.
func ToCSV(data model.DataSet) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("csv export: %w", common.ErrEmptyInput)
	}

	var b strings.Builder
	b.WriteString(CSVHeader)
	for _, rec := range data {
		b.WriteString(rec.Date.String())
		b.WriteByte(',')
		b.WriteString(rec.Earnings.String())
		b.WriteByte(',')
		b.WriteString(rec.Tokens.String())
		b.WriteByte(',')
		b.WriteString(rec.Price.String())
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// MoneyFormatter renders amounts in a fixed currency and locale.
type MoneyFormatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewMoneyFormatter validates the ISO currency code and locale tag.
func NewMoneyFormatter(currencyCode, locale string) (*MoneyFormatter, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: currency %q: %v", common.ErrInvalidConfig, currencyCode, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %v", common.ErrInvalidConfig, locale, err)
	}

	return &MoneyFormatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}, nil
}

// Currency returns the ISO code in use.
func (f *MoneyFormatter) Currency() string {
	return f.unit.String()
}

// Format renders amount with the currency symbol, rounded to the currency's
// standard minor units.
func (f *MoneyFormatter) Format(amount decimal.Decimal) string {
	scale, _ := currency.Standard.Rounding(f.unit)
	rounded := amount.Round(int32(scale))
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(rounded.InexactFloat64())))
}

// Summarize computes every derived view of data.
func Summarize(data model.DataSet, money *MoneyFormatter) (Summary, error) {
	total, err := ComputeTotal(data)
	if err != nil {
		return Summary{}, err
	}
	csv, err := ToCSV(data)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Total:     total,
		TotalText: money.Format(total),
		CSV:       csv,
		Records:   len(data),
	}, nil
}
