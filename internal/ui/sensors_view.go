package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/furrow/internal/irrigation"
)

// sensorsState is the sensor readings view.
type sensorsState struct {
	seq      uint64
	state    loadState
	readings irrigation.SensorReadings
	err      error
	loadedAt time.Time
	viewport viewport.Model
}

type sensorsLoadedMsg struct {
	seq      uint64
	readings irrigation.SensorReadings
	err      error
}

func newSensorsState() sensorsState {
	return sensorsState{viewport: viewport.New(80, 10)}
}

// reset discards loaded data and invalidates requests in flight.
func (s *sensorsState) reset() {
	s.seq++
	s.state = stateAwaiting
	s.readings = nil
	s.err = nil
	s.loadedAt = time.Time{}
	s.viewport.SetContent("")
	s.viewport.GotoTop()
}

func (s *sensorsState) resize(width, height int) {
	s.viewport.Width = width
	s.viewport.Height = height
}

func (m *Model) loadSensors() tea.Cmd {
	m.sensors.seq++
	m.sensors.state = stateLoading
	seq := m.sensors.seq
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		if client == nil {
			return sensorsLoadedMsg{seq: seq, err: errNoClient}
		}
		readings, err := client.ListSensorReadings(ctx)
		return sensorsLoadedMsg{seq: seq, readings: readings, err: err}
	}
}

func (m *Model) handleSensorsLoaded(msg sensorsLoadedMsg) {
	if m.currentView != ViewSensors || msg.seq != m.sensors.seq {
		m.logger.Debug("dropping stale sensors result", slog.Uint64("seq", msg.seq))
		return
	}
	if msg.err != nil {
		m.sensors.state = stateFailed
		m.sensors.err = msg.err
		m.logger.Warn("list sensor readings failed", slog.Any("err", msg.err))
		return
	}
	m.sensors.state = stateLoaded
	m.sensors.err = nil
	m.sensors.readings = msg.readings
	m.sensors.loadedAt = time.Now()
	m.sensors.viewport.SetContent(m.formatReadings(msg.readings))
}

func (m Model) handleSensorsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Reload) {
		cmd := m.loadSensors()
		return m, cmd
	}
	var cmd tea.Cmd
	m.sensors.viewport, cmd = m.sensors.viewport.Update(msg)
	return m, cmd
}

// formatReadings renders the usual reading list as a report. Payloads of any
// other shape are shown as indented JSON.
func (m Model) formatReadings(data irrigation.SensorReadings) string {
	styles := m.theme.Styles()
	readings, ok := data.Readings()
	if !ok {
		pretty := data.Pretty()
		if strings.TrimSpace(pretty) == "" || pretty == "null" {
			return styles.MutedText.Render("No sensor readings.")
		}
		return pretty
	}
	if len(readings) == 0 {
		return styles.MutedText.Render("No sensor readings.")
	}

	var b strings.Builder
	for i, r := range readings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Sensor %d", r.SensorID)))
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("  field %d", r.FieldID)))
		b.WriteString("\n")
		if len(r.RawData) == 0 {
			b.WriteString("  " + styles.FaintText.Render("no measurements") + "\n")
			continue
		}
		for _, ms := range r.RawData {
			value := ms.ValueString()
			if ms.Unit != "" {
				value += " " + ms.Unit
			}
			b.WriteString("  ")
			b.WriteString(styles.MutedText.Render(padRight(ms.Type, 14)))
			b.WriteString(styles.Text.Render(padRight(value, 28)))
			b.WriteString(styles.FaintText.Render(ms.Timestamp))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) sensorsTitle() string {
	if m.sensors.state == stateLoaded {
		if readings, ok := m.sensors.readings.Readings(); ok {
			return fmt.Sprintf("Sensor readings (%d)", len(readings))
		}
	}
	return "Sensor readings"
}

func (m Model) renderSensors() string {
	styles := m.theme.Styles()
	switch m.sensors.state {
	case stateAwaiting:
		return m.spinner.View() + " " + styles.MutedText.Render("Loading sensor readings...")
	case stateLoading:
		if len(m.sensors.readings) == 0 {
			return m.spinner.View() + " " + styles.MutedText.Render("Loading sensor readings...")
		}
	case stateFailed:
		if len(m.sensors.readings) == 0 {
			return m.renderError(m.sensors.err)
		}
		return m.renderError(m.sensors.err) + "\n" + m.sensors.viewport.View()
	}
	return m.sensors.viewport.View()
}
