// Package themes holds the colour schemes of the terminal UI.
package themes

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colours a theme is built from.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Border     lipgloss.Color
	Muted      lipgloss.Color
	Surface    lipgloss.Color
}

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Faint         lipgloss.Style
	Code          lipgloss.Style
	Selected      lipgloss.Style
	Unselected    lipgloss.Style
	Panel         lipgloss.Style
	FocusedPanel  lipgloss.Style
	ErrorPanel    lipgloss.Style
	Total         lipgloss.Style
	Spinner       lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	Palette       Palette
}

func build(p Palette) Theme {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)

	return Theme{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Subtle),
		Normal: lipgloss.NewStyle().
			Foreground(p.Foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Foreground),
		Faint: lipgloss.NewStyle().
			Foreground(p.Muted),
		Code: lipgloss.NewStyle().
			Background(p.Surface).
			Foreground(p.Foreground),
		Selected: lipgloss.NewStyle().
			Background(p.Primary).
			Foreground(p.Surface).
			Bold(true).
			Padding(0, 1),
		Unselected: lipgloss.NewStyle().
			Foreground(p.Subtle).
			Padding(0, 1),

		Panel:        panel,
		FocusedPanel: panel.BorderForeground(p.Primary),
		ErrorPanel:   panel.BorderForeground(p.Error),

		Total: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Success),
		Spinner: lipgloss.NewStyle().
			Foreground(p.Secondary),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(p.Success).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(p.Warning).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(p.Info).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),
	}
}

// Default is the default theme.
var Default = build(Palette{
	Primary:    lipgloss.Color("#7c3aed"),
	Secondary:  lipgloss.Color("#a78bfa"),
	Success:    lipgloss.Color("#10b981"),
	Warning:    lipgloss.Color("#f59e0b"),
	Error:      lipgloss.Color("#ef4444"),
	Info:       lipgloss.Color("#3b82f6"),
	Foreground: lipgloss.Color("#fafafa"),
	Subtle:     lipgloss.Color("#a3a3a3"),
	Border:     lipgloss.Color("#404040"),
	Muted:      lipgloss.Color("#737373"),
	Surface:    lipgloss.Color("#262626"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(Palette{
	Primary:    lipgloss.Color("#cba6f7"),
	Secondary:  lipgloss.Color("#f5c2e7"),
	Success:    lipgloss.Color("#a6e3a1"),
	Warning:    lipgloss.Color("#f9e2af"),
	Error:      lipgloss.Color("#f38ba8"),
	Info:       lipgloss.Color("#89dceb"),
	Foreground: lipgloss.Color("#cdd6f4"),
	Subtle:     lipgloss.Color("#a6adc8"),
	Border:     lipgloss.Color("#45475a"),
	Muted:      lipgloss.Color("#6c7086"),
	Surface:    lipgloss.Color("#1e1e2e"),
})

// GetTheme returns a theme by name, falling back to Default.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
