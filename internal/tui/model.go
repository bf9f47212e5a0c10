// Package tui is the interactive terminal front end. It renders the
// controller's display regions and turns key presses into submissions.
package tui

import (
	"fmt"

	"github.com/Veraticus/hntax/internal/controller"
	"github.com/Veraticus/hntax/internal/tui/components"
	"github.com/Veraticus/hntax/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the main TUI state.
type Model struct {
	theme    themes.Theme
	ctrl     *controller.Controller
	shown    *controller.Result
	summary  components.SummaryModel
	years    components.YearPickerModel
	input    textinput.Model
	spinner  spinner.Model
	csv      viewport.Model
	help     help.Model
	keymap   KeyMap
	config   Config
	status   string
	focus    field
	width    int
	height   int
	quitting bool
}

// New creates the model and its controller.
func New(opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Queue == nil {
		return Model{}, fmt.Errorf("tui requires a job queue")
	}

	ctrlOpts := []controller.Option{controller.WithPollInterval(cfg.PollInterval)}
	if cfg.Money != nil {
		ctrlOpts = append(ctrlOpts, controller.WithMoneyFormatter(cfg.Money))
	}
	if cfg.Scheduler != nil {
		ctrlOpts = append(ctrlOpts, controller.WithScheduler(cfg.Scheduler))
	}
	if cfg.Logger != nil {
		ctrlOpts = append(ctrlOpts, controller.WithLogger(cfg.Logger))
	}
	if cfg.Context != nil {
		ctrlOpts = append(ctrlOpts, controller.WithContext(cfg.Context))
	}
	ctrl, err := controller.New(cfg.Queue, ctrlOpts...)
	if err != nil {
		return Model{}, err
	}

	return newModel(cfg, ctrl), nil
}

func newModel(cfg Config, ctrl *controller.Controller) Model {
	input := textinput.New()
	input.Placeholder = "51-character account address"
	input.Prompt = "› "
	input.CharLimit = 128
	input.SetValue(cfg.Address)
	input.Focus()

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(cfg.Theme.Spinner),
	)

	m := Model{
		theme:   cfg.Theme,
		ctrl:    ctrl,
		years:   components.NewYearPickerModel(cfg.TaxYear, cfg.Theme),
		input:   input,
		spinner: spin,
		csv:     viewport.New(cfg.Width, 10),
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		config:  cfg,
		focus:   fieldAddress,
		width:   cfg.Width,
		height:  cfg.Height,
	}
	m.resize()
	return m
}

// Controller exposes the state machine behind the model.
func (m Model) Controller() *controller.Controller {
	return m.ctrl
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.config.AutoSubmit {
		cmds = append(cmds, submit)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case submitMsg:
		return m, m.submit()

	case csvSavedMsg:
		if msg.err != nil {
			m.status = m.theme.StatusError.Render(msg.err.Error())
		} else {
			m.status = m.theme.StatusSuccess.Render("Saved " + msg.path)
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State() != controller.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case controller.EnqueuedMsg, controller.PolledMsg, controller.PollDueMsg:
		cmd := m.ctrl.Update(msg)
		m.syncResult()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey routes key presses. While the address field is focused every
// key except the form controls goes to the input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keymap.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keymap.NextField):
		return m, m.setFocus(m.focus.next())
	case key.Matches(msg, m.keymap.PrevField):
		return m, m.setFocus(m.focus.prev())
	case key.Matches(msg, m.keymap.Reset):
		m.reset()
		return m, m.setFocus(fieldAddress)
	}

	if m.focus == fieldAddress {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keymap.PrevYear):
		if m.focus == fieldYear {
			m.years.Prev()
		}
	case key.Matches(msg, m.keymap.NextYear):
		if m.focus == fieldYear {
			m.years.Next()
		}
	case key.Matches(msg, m.keymap.ToggleCSV):
		m.ctrl.ToggleCSV()
		m.csv.GotoTop()
	case key.Matches(msg, m.keymap.SaveCSV):
		if result := m.ctrl.Result(); result != nil {
			addr, year := m.ctrl.Request()
			return m, saveCSV(m.config.CSVDir, addr, year, result.Summary.CSV)
		}
	case key.Matches(msg, m.keymap.ScrollUp), key.Matches(msg, m.keymap.ScrollDn):
		if m.ctrl.Regions().CSV {
			var cmd tea.Cmd
			m.csv, cmd = m.csv.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// submit hands the form to the controller. A rejected address moves focus
// back to the input.
func (m *Model) submit() tea.Cmd {
	m.status = ""
	cmd := m.ctrl.Submit(m.input.Value(), m.years.Selected())
	if cmd == nil {
		return m.setFocus(fieldAddress)
	}
	m.shown = nil
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) reset() {
	m.ctrl.Reset()
	m.shown = nil
	m.status = ""
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	m.years.Blur()
	if f == fieldAddress {
		return m.input.Focus()
	}
	m.input.Blur()
	if f == fieldYear {
		m.years.Focus()
	}
	return nil
}

// syncResult rebuilds the result views when the controller has loaded a new
// dataset.
func (m *Model) syncResult() {
	result := m.ctrl.Result()
	if result == nil || result == m.shown {
		return
	}
	m.shown = result

	_, year := m.ctrl.Request()
	m.summary = components.NewSummaryModel(result.Data, result.Summary, year, m.theme)
	m.summary.Resize(m.contentWidth())
	m.csv.SetContent(result.Summary.CSV)
	m.csv.GotoTop()
}

func (m *Model) resize() {
	width := m.contentWidth()
	m.input.Width = max(width-4, 10)
	m.help.Width = width
	m.summary.Resize(width)
	m.csv.Width = width
	m.csv.Height = max(m.height-22, 5)
}

func (m Model) contentWidth() int {
	return max(m.width-4, 20)
}
