package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/furrow/internal/irrigation"
)

// renderHeader renders the logo, the view tabs and the backend address.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	tabs := make([]string, 0, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v.Title())
		style := styles.MutedText
		if v == m.currentView {
			style = styles.AccentText.Bold(true).Underline(true)
		}
		tabs = append(tabs, bg.Render(label, style))
	}

	left := bg.Render("furrow", styles.Logo) + bg.Spaces(3) + bg.Join(tabs, "   ")

	url := m.baseURL
	if url == "" {
		url = "no backend"
	}
	// Header style pads one column on each side.
	avail := m.width - 2 - lipgloss.Width(left) - 2
	right := ""
	if avail > 8 {
		right = bg.Render(truncateMiddle(url, avail), styles.FaintText)
	}
	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)

	return styles.Header.Width(m.width).Render(left + bg.Spaces(gap) + right)
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewSensors:
		commands = []cmd{
			{"r", "Reload"},
			{"j/k", "Scroll"},
			{"tab", "Next view"},
			{"?", "More"},
		}
	case ViewIrrigation:
		commands = []cmd{
			{"s", "Start"},
			{"x", "Stop"},
			{"tab", "Next view"},
			{"?", "More"},
		}
	default: // ViewFields
		if m.fields.detail.open {
			commands = []cmd{
				{"esc", "Back"},
				{"r", "Reload"},
				{"?", "More"},
			}
		} else {
			commands = []cmd{
				{"enter", "Detail"},
				{"r", "Reload"},
				{"j/k", "Navigate"},
				{"tab", "Next view"},
				{"?", "More"},
			}
		}
	}

	colon := bg.Render(":", styles.FaintText)
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// renderFooter shows the request state of the current view.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	var (
		state loadState
		at    time.Time
		err   error
	)
	switch m.currentView {
	case ViewSensors:
		state, at, err = m.sensors.state, m.sensors.loadedAt, m.sensors.err
	case ViewIrrigation:
		state, at, err = m.irrigation.state, m.irrigation.settledAt, m.irrigation.err
	default:
		if m.fields.detail.open {
			state, err = m.fields.detail.state, m.fields.detail.err
		} else {
			state, at, err = m.fields.state, m.fields.loadedAt, m.fields.err
		}
	}

	label := state.label()
	if m.currentView == ViewIrrigation && state == stateLoading {
		label = "pending"
	}
	parts := []string{styles.StateStyle(label).Render(label)}
	if !at.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+at.Format("15:04:05")))
	}
	if state == stateFailed && err != nil {
		parts = append(parts, styles.DangerText.Render(describeError(err)))
	}
	return lipgloss.NewStyle().Width(m.width).Render(" " + strings.Join(parts, "  "))
}

// renderError renders a request failure as a headline plus the raw error.
func (m Model) renderError(err error) string {
	if err == nil {
		return ""
	}
	styles := m.theme.Styles()
	width := m.contentInnerSize().width
	return styles.DangerText.Render(describeError(err)) + "\n" +
		styles.MutedText.Render(truncate(err.Error(), width))
}

// describeError classifies a failed request for display.
func describeError(err error) string {
	if errors.Is(err, errNoClient) {
		return "No backend configured"
	}
	switch irrigation.KindOf(err) {
	case irrigation.KindTransport:
		return "Backend unreachable"
	case irrigation.KindStatus:
		if errors.Is(err, irrigation.ErrNotFound) {
			return "Not found (404)"
		}
		return fmt.Sprintf("Backend returned %d", irrigation.StatusCode(err))
	case irrigation.KindDecode:
		return "Unexpected response from backend"
	default:
		return "Request failed"
	}
}
