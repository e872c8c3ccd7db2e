package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/furrow/internal/irrigation"
	"github.com/five82/furrow/internal/prefs"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    irrigation.Service
	Logger    *slog.Logger
	BaseURL   string
	StartView View
	ThemeName string
	PrefsPath string
}

// loadState is the observable state of a view's request.
type loadState int

const (
	stateAwaiting loadState = iota // nothing requested yet
	stateLoading
	stateLoaded
	stateFailed
)

func (s loadState) label() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateLoaded:
		return "loaded"
	case stateFailed:
		return "failed"
	default:
		return "idle"
	}
}

var errNoClient = errors.New("no backend client configured")

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    irrigation.Service
	logger    *slog.Logger
	baseURL   string
	prefsPath string
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model

	// Per-view state. Each view owns the data it fetched; nothing is shared.
	fields     fieldsState
	sensors    sensorsState
	irrigation irrigationState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		logger:      logger,
		baseURL:     opts.BaseURL,
		prefsPath:   prefsPath,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: opts.StartView,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		fields:      newFieldsState(),
		sensors:     newSensorsState(),
	}
	m.applyTheme()
	return m
}

// activateMsg activates a view once the program is running.
type activateMsg struct {
	view View
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	view := m.currentView
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return activateMsg{view: view} },
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case activateMsg:
		m.currentView = msg.view
		cmd := m.activate(msg.view)
		return m, cmd

	case fieldsLoadedMsg:
		m.handleFieldsLoaded(msg)
		return m, nil

	case fieldLoadedMsg:
		m.handleFieldLoaded(msg)
		return m, nil

	case sensorsLoadedMsg:
		m.handleSensorsLoaded(msg)
		return m, nil

	case irrigationDoneMsg:
		m.handleIrrigationDone(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		cmd := m.switchView(m.currentView.next())
		return m, cmd
	case key.Matches(msg, m.keys.ShiftTab):
		cmd := m.switchView(m.currentView.prev())
		return m, cmd
	case key.Matches(msg, m.keys.ViewFields):
		cmd := m.switchView(ViewFields)
		return m, cmd
	case key.Matches(msg, m.keys.ViewSensors):
		cmd := m.switchView(ViewSensors)
		return m, cmd
	case key.Matches(msg, m.keys.ViewIrrigation):
		cmd := m.switchView(ViewIrrigation)
		return m, cmd
	}

	switch m.currentView {
	case ViewFields:
		return m.handleFieldsKey(msg)
	case ViewSensors:
		return m.handleSensorsKey(msg)
	case ViewIrrigation:
		return m.handleIrrigationKey(msg)
	}
	return m, nil
}

// switchView deactivates the current view and activates v. Activating the
// view already shown is a no-op.
func (m *Model) switchView(v View) tea.Cmd {
	if v == m.currentView {
		return nil
	}
	m.deactivate(m.currentView)
	m.currentView = v
	return m.activate(v)
}

// activate resets v and issues its on-load request, if it has one.
func (m *Model) activate(v View) tea.Cmd {
	switch v {
	case ViewSensors:
		m.sensors.reset()
		return m.loadSensors()
	case ViewIrrigation:
		m.irrigation.reset()
		return nil
	default:
		m.fields.reset()
		return m.loadFields()
	}
}

// deactivate detaches v. Its data is discarded and results of requests
// still in flight are dropped when they arrive.
func (m *Model) deactivate(v View) {
	switch v {
	case ViewSensors:
		m.sensors.reset()
	case ViewIrrigation:
		m.irrigation.reset()
	default:
		m.fields.reset()
	}
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.applyTheme()
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.logger.Warn("save prefs failed", slog.Any("err", err))
	}
}

func (m *Model) applyTheme() {
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	m.fields.applyTheme(m.theme)
	if len(m.sensors.readings) > 0 {
		m.sensors.viewport.SetContent(m.formatReadings(m.sensors.readings))
	}
}

// resize propagates terminal dimensions to the view components.
func (m *Model) resize() {
	inner := m.contentInnerSize()
	m.fields.resize(inner.width, inner.height)
	m.sensors.resize(inner.width, inner.height)
}

type size struct {
	width  int
	height int
}

// contentInnerSize is the area inside the content box below its title.
func (m Model) contentInnerSize() size {
	// Borders, padding and the title line.
	w := m.width - 4
	h := m.contentHeight() - 3
	if w < 10 {
		w = 10
	}
	if h < 3 {
		h = 3
	}
	return size{width: w, height: h}
}

func (m Model) contentHeight() int {
	h := m.height - chromeHeight
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) renderContent() string {
	var title, body string
	switch m.currentView {
	case ViewSensors:
		title, body = m.sensorsTitle(), m.renderSensors()
	case ViewIrrigation:
		title, body = "Irrigation control", m.renderIrrigation()
	default:
		title, body = m.fieldsTitle(), m.renderFields()
	}
	return m.renderBox(title, body, m.width, m.contentHeight())
}

// renderBox draws a bordered box of exactly width x height with a title line.
func (m Model) renderBox(title, body string, width, height int) string {
	styles := m.theme.Styles()
	innerHeight := height - 2
	innerWidth := width - 4
	if innerHeight < 1 || innerWidth < 1 {
		return body
	}

	lines := append([]string{styles.AccentText.Bold(true).Render(truncate(title, innerWidth))},
		strings.Split(body, "\n")...)
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(0, 1).
		Width(width - 2).
		Height(innerHeight).
		Render(strings.Join(lines, "\n"))
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil && opts.Context != nil && opts.Context.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
