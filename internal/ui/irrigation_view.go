package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/furrow/internal/irrigation"
)

type irrigationAction int

const (
	actionNone irrigationAction = iota
	actionStart
	actionStop
)

func (a irrigationAction) String() string {
	switch a {
	case actionStart:
		return "start"
	case actionStop:
		return "stop"
	default:
		return "none"
	}
}

// irrigationState is the irrigation control view. Only the most recent
// command's outcome is shown.
type irrigationState struct {
	seq       uint64
	state     loadState
	action    irrigationAction
	status    irrigation.IrrigationStatus
	err       error
	settledAt time.Time
}

type irrigationDoneMsg struct {
	seq    uint64
	action irrigationAction
	status irrigation.IrrigationStatus
	err    error
}

// reset clears the last outcome and invalidates commands in flight.
func (s *irrigationState) reset() {
	s.seq++
	s.state = stateAwaiting
	s.action = actionNone
	s.status = irrigation.IrrigationStatus{}
	s.err = nil
	s.settledAt = time.Time{}
}

// sendIrrigation issues a start or stop command. Every press sends a
// request; the previous outcome is cleared until the new one settles.
func (m *Model) sendIrrigation(action irrigationAction) tea.Cmd {
	s := &m.irrigation
	s.seq++
	s.state = stateLoading
	s.action = action
	s.status = irrigation.IrrigationStatus{}
	s.err = nil
	seq := s.seq
	client, ctx := m.client, m.ctx
	m.logger.Info("irrigation command sent", slog.String("action", action.String()))
	return func() tea.Msg {
		if client == nil {
			return irrigationDoneMsg{seq: seq, action: action, err: errNoClient}
		}
		var (
			status irrigation.IrrigationStatus
			err    error
		)
		if action == actionStop {
			status, err = client.StopIrrigation(ctx)
		} else {
			status, err = client.StartIrrigation(ctx)
		}
		return irrigationDoneMsg{seq: seq, action: action, status: status, err: err}
	}
}

func (m *Model) handleIrrigationDone(msg irrigationDoneMsg) {
	s := &m.irrigation
	if m.currentView != ViewIrrigation || msg.seq != s.seq {
		m.logger.Debug("dropping stale irrigation result", slog.String("action", msg.action.String()))
		return
	}
	s.settledAt = time.Now()
	if msg.err != nil {
		s.state = stateFailed
		s.err = msg.err
		m.logger.Warn("irrigation command failed",
			slog.String("action", msg.action.String()),
			slog.Any("err", msg.err))
		return
	}
	s.state = stateLoaded
	s.status = msg.status
	m.logger.Info("irrigation command settled",
		slog.String("action", msg.action.String()),
		slog.String("status", msg.status.Status))
}

func (m Model) handleIrrigationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Start):
		cmd := m.sendIrrigation(actionStart)
		return m, cmd
	case key.Matches(msg, m.keys.Stop):
		cmd := m.sendIrrigation(actionStop)
		return m, cmd
	}
	return m, nil
}

func (m Model) renderIrrigation() string {
	styles := m.theme.Styles()
	s := m.irrigation

	var b strings.Builder
	b.WriteString(styles.Text.Render("Send a command to the irrigation controller."))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("s") + styles.MutedText.Render(" Start irrigation    "))
	b.WriteString(styles.AccentText.Render("x") + styles.MutedText.Render(" Stop irrigation"))
	b.WriteString("\n\n")

	switch s.state {
	case stateAwaiting:
		b.WriteString(styles.StateStyle("idle").Render("idle"))
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render("No command sent yet."))
	case stateLoading:
		b.WriteString(styles.StateStyle("pending").Render("pending"))
		b.WriteString(" ")
		b.WriteString(m.spinner.View())
		b.WriteString(styles.MutedText.Render(fmt.Sprintf(" Sending %s request...", s.action)))
	case stateFailed:
		b.WriteString(styles.StateStyle("failed").Render("failed"))
		b.WriteString(" ")
		b.WriteString(styles.DangerText.Render(fmt.Sprintf("Irrigation %s request failed", s.action)))
		b.WriteString("\n")
		b.WriteString(m.renderError(s.err))
	case stateLoaded:
		// The status is shown exactly as the backend sent it.
		if status := s.status.Status; status != "" {
			b.WriteString(styles.StateStyle(status).Render(status))
			b.WriteString(" ")
			b.WriteString(styles.Text.Render("Backend status: " + status))
		} else {
			b.WriteString(styles.StateStyle("unknown").Render("unknown"))
			b.WriteString(" ")
			b.WriteString(styles.MutedText.Render("Backend reply had no status"))
		}
		if msg := s.status.Message; strings.TrimSpace(msg) != "" {
			b.WriteString("\n")
			b.WriteString(styles.MutedText.Render(msg))
		}
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("%s acknowledged at %s", s.action, s.settledAt.Format("15:04:05"))))
	}
	return b.String()
}
