package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/hntax/internal/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// Format names an output format for the headless report.
type Format string

// Output formats.
const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted output formats.
func Formats() []Format {
	return []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML}
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of table, csv, json, yaml)", s)
}

// Document is the machine-readable report.
type Document struct {
	Address  string          `json:"address" yaml:"address"`
	TaxYear  string          `json:"tax_year" yaml:"tax_year"`
	Currency string          `json:"currency" yaml:"currency"`
	Total    string          `json:"total" yaml:"total"`
	Records  []DocumentEntry `json:"records" yaml:"records"`
}

// DocumentEntry is one record with amounts as exact decimal strings.
type DocumentEntry struct {
	Date     string `json:"date" yaml:"date"`
	Earnings string `json:"earnings" yaml:"earnings"`
	Tokens   string `json:"tokens" yaml:"tokens"`
	Price    string `json:"price" yaml:"price"`
}

// Renderer writes a finished report in one of the supported formats.
type Renderer struct {
	Money   *MoneyFormatter
	Address model.Address
	Year    model.TaxYear
}

// Render writes data to w in format f.
func (r Renderer) Render(w io.Writer, f Format, data model.DataSet) error {
	switch f {
	case FormatTable:
		return r.RenderTable(w, data)
	case FormatCSV:
		return RenderCSV(w, data)
	case FormatJSON:
		return r.RenderJSON(w, data)
	case FormatYAML:
		return r.RenderYAML(w, data)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// RenderCSV writes the CSV export.
func RenderCSV(w io.Writer, data model.DataSet) error {
	csv, err := ToCSV(data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, csv)
	return err
}

// RenderTable writes a bordered table with a total footer.
func (r Renderer) RenderTable(w io.Writer, data model.DataSet) error {
	total, err := ComputeTotal(data)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%s  ·  tax year %s", r.Address.Short(), r.Year.Label()))
	tw.AppendHeader(table.Row{"Date", "Earnings", "Tokens mined", "Daily price"})
	for _, rec := range data {
		tw.AppendRow(table.Row{
			rec.Date.String(),
			r.Money.Format(rec.Earnings),
			rec.Tokens.String(),
			r.Money.Format(rec.Price),
		})
	}
	tw.AppendFooter(table.Row{"Total", r.Money.Format(total), "", ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	tw.Render()

	return nil
}

// RenderJSON writes an indented JSON document.
func (r Renderer) RenderJSON(w io.Writer, data model.DataSet) error {
	doc, err := r.document(data)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// RenderYAML writes a YAML document.
func (r Renderer) RenderYAML(w io.Writer, data model.DataSet) error {
	doc, err := r.document(data)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func (r Renderer) document(data model.DataSet) (Document, error) {
	total, err := ComputeTotal(data)
	if err != nil {
		return Document{}, err
	}

	entries := make([]DocumentEntry, 0, len(data))
	for _, rec := range data {
		entries = append(entries, DocumentEntry{
			Date:     rec.Date.String(),
			Earnings: rec.Earnings.String(),
			Tokens:   rec.Tokens.String(),
			Price:    rec.Price.String(),
		})
	}

	return Document{
		Address:  r.Address.String(),
		TaxYear:  r.Year.String(),
		Currency: r.Money.Currency(),
		Total:    total.String(),
		Records:  entries,
	}, nil
}
