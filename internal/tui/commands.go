package tui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/hntax/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// csvFileName is the export name for one address and tax year.
func csvFileName(address model.Address, year model.TaxYear) string {
	short := string(address)
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("hntax-%s-%s.csv", short, year)
}

// saveCSV writes csv into dir.
func saveCSV(dir string, address model.Address, year model.TaxYear, csv string) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return csvSavedMsg{err: fmt.Errorf("failed to create export directory: %w", err)}
		}

		path := filepath.Join(dir, csvFileName(address, year))
		if err := os.WriteFile(path, []byte(csv), 0600); err != nil {
			return csvSavedMsg{err: fmt.Errorf("failed to write CSV: %w", err)}
		}
		return csvSavedMsg{path: path}
	}
}

// submit fires the form submission on the next update.
func submit() tea.Msg {
	return submitMsg{}
}
