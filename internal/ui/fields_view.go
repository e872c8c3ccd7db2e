package ui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/furrow/internal/irrigation"
)

// fieldsState is the home view: the field list plus an optional detail panel.
type fieldsState struct {
	seq      uint64
	state    loadState
	fields   []irrigation.Field
	err      error
	loadedAt time.Time
	table    table.Model
	wide     bool // coordinate columns shown
	detail   fieldDetailState
}

// fieldDetailState holds one getField lookup.
type fieldDetailState struct {
	open  bool
	seq   uint64
	state loadState
	id    int64
	field irrigation.Field
	err   error
}

type fieldsLoadedMsg struct {
	seq    uint64
	fields []irrigation.Field
	err    error
}

type fieldLoadedMsg struct {
	seq   uint64
	id    int64
	field irrigation.Field
	err   error
}

func newFieldsState() fieldsState {
	return fieldsState{
		table: table.New(
			table.WithColumns(fieldColumns(80)),
			table.WithFocused(true),
			table.WithHeight(10),
		),
	}
}

// reset discards loaded data and invalidates requests in flight.
func (s *fieldsState) reset() {
	s.seq++
	s.state = stateAwaiting
	s.fields = nil
	s.err = nil
	s.loadedAt = time.Time{}
	s.table.SetRows(nil)
	s.closeDetail()
}

func (s *fieldsState) closeDetail() {
	s.detail.seq++
	s.detail.open = false
	s.detail.state = stateAwaiting
	s.detail.field = irrigation.Field{}
	s.detail.err = nil
}

// resize rebuilds columns and rows for width. Rows are cleared while the
// columns change so the table never renders cells it has no column for.
func (s *fieldsState) resize(width, height int) {
	cursor := s.table.Cursor()
	s.table.SetRows(nil)
	s.table.SetColumns(fieldColumns(width))
	s.table.SetWidth(width)
	s.table.SetHeight(height)
	s.wide = width >= LayoutWideWidth
	s.syncRows(cursor)
}

// syncRows renders the loaded fields and keeps the selection on a real row.
func (s *fieldsState) syncRows(cursor int) {
	s.table.SetRows(fieldRows(s.fields, s.wide))
	if n := len(s.fields); n > 0 {
		s.table.SetCursor(max(0, min(cursor, n-1)))
	}
}

func (s *fieldsState) applyTheme(t Theme) {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		BorderBottom(true).
		Foreground(lipgloss.Color(t.Muted)).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(lipgloss.Color(t.Text))
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(t.SelectionText)).
		Background(lipgloss.Color(t.SelectionBg)).
		Bold(false)
	s.table.SetStyles(styles)
}

// fieldColumns sizes the table for width. Coordinates only appear on wide
// terminals; the name column absorbs the remaining space.
func fieldColumns(width int) []table.Column {
	cols := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 0},
		{Title: "Location", Width: 18},
		{Title: "Size (ha)", Width: 10},
		{Title: "Crop", Width: 6},
		{Title: "Planted", Width: 10},
	}
	if width >= LayoutWideWidth {
		cols = append(cols,
			table.Column{Title: "Latitude", Width: 11},
			table.Column{Title: "Longitude", Width: 11},
		)
	}

	used := 0
	for _, c := range cols {
		// Cells carry one column of padding on each side.
		used += c.Width + 2
	}
	name := width - used - 2
	if name < 12 {
		name = 12
	}
	cols[1].Width = name
	return cols
}

func fieldRows(fields []irrigation.Field, wide bool) []table.Row {
	rows := make([]table.Row, 0, len(fields))
	for _, f := range fields {
		crop := "-"
		if f.CropTypeID != nil {
			crop = strconv.FormatInt(*f.CropTypeID, 10)
		}
		planted := "-"
		if f.PlantingDate != nil && strings.TrimSpace(*f.PlantingDate) != "" {
			planted = *f.PlantingDate
		}
		row := table.Row{
			strconv.FormatInt(f.ID, 10),
			f.Name,
			f.Location,
			formatFloat(f.Size),
			crop,
			planted,
		}
		if wide {
			row = append(row, formatFloat(f.Latitude), formatFloat(f.Longitude))
		}
		rows = append(rows, row)
	}
	return rows
}

// loadFields issues listFields for the current activation. Previously loaded
// rows stay visible until the result arrives.
func (m *Model) loadFields() tea.Cmd {
	m.fields.seq++
	m.fields.state = stateLoading
	seq := m.fields.seq
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		if client == nil {
			return fieldsLoadedMsg{seq: seq, err: errNoClient}
		}
		fields, err := client.ListFields(ctx)
		return fieldsLoadedMsg{seq: seq, fields: fields, err: err}
	}
}

func (m *Model) handleFieldsLoaded(msg fieldsLoadedMsg) {
	if m.currentView != ViewFields || msg.seq != m.fields.seq {
		m.logger.Debug("dropping stale fields result", slog.Uint64("seq", msg.seq))
		return
	}
	if msg.err != nil {
		m.fields.state = stateFailed
		m.fields.err = msg.err
		m.logger.Warn("list fields failed", slog.Any("err", msg.err))
		return
	}
	m.fields.state = stateLoaded
	m.fields.err = nil
	m.fields.fields = msg.fields
	m.fields.loadedAt = time.Now()
	m.fields.syncRows(m.fields.table.Cursor())
}

// openDetail issues getField for the selected row.
func (m *Model) openDetail() tea.Cmd {
	idx := m.fields.table.Cursor()
	if idx < 0 || idx >= len(m.fields.fields) {
		return nil
	}
	return m.loadDetail(m.fields.fields[idx].ID)
}

func (m *Model) loadDetail(id int64) tea.Cmd {
	d := &m.fields.detail
	d.seq++
	d.open = true
	d.state = stateLoading
	d.id = id
	d.err = nil
	seq := d.seq
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		if client == nil {
			return fieldLoadedMsg{seq: seq, id: id, err: errNoClient}
		}
		field, err := client.GetField(ctx, id)
		return fieldLoadedMsg{seq: seq, id: id, field: field, err: err}
	}
}

func (m *Model) handleFieldLoaded(msg fieldLoadedMsg) {
	d := &m.fields.detail
	if m.currentView != ViewFields || !d.open || msg.seq != d.seq {
		m.logger.Debug("dropping stale field result", slog.Int64("id", msg.id))
		return
	}
	if msg.err != nil {
		d.state = stateFailed
		d.err = msg.err
		m.logger.Warn("get field failed", slog.Int64("id", msg.id), slog.Any("err", msg.err))
		return
	}
	d.state = stateLoaded
	d.err = nil
	d.field = msg.field
}

func (m Model) handleFieldsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.fields.detail.open {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.fields.closeDetail()
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			cmd := m.loadDetail(m.fields.detail.id)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Reload):
		cmd := m.loadFields()
		return m, cmd
	case key.Matches(msg, m.keys.Open):
		cmd := m.openDetail()
		return m, cmd
	}

	var cmd tea.Cmd
	m.fields.table, cmd = m.fields.table.Update(msg)
	return m, cmd
}

func (m Model) fieldsTitle() string {
	if m.fields.detail.open {
		return fmt.Sprintf("Field %d", m.fields.detail.id)
	}
	if m.fields.state == stateLoaded {
		return fmt.Sprintf("Fields (%d)", len(m.fields.fields))
	}
	return "Fields"
}

func (m Model) renderFields() string {
	if m.fields.detail.open {
		return m.renderFieldDetail()
	}

	styles := m.theme.Styles()
	var b strings.Builder
	switch m.fields.state {
	case stateAwaiting, stateLoading:
		if len(m.fields.fields) == 0 {
			b.WriteString(m.spinner.View() + " " + styles.MutedText.Render("Loading fields..."))
			return b.String()
		}
	case stateFailed:
		b.WriteString(m.renderError(m.fields.err))
		if len(m.fields.fields) == 0 {
			return b.String()
		}
		b.WriteString("\n")
	}

	if len(m.fields.fields) == 0 {
		b.WriteString(styles.MutedText.Render("No fields registered."))
		return b.String()
	}
	b.WriteString(m.fields.table.View())
	return b.String()
}

func (m Model) renderFieldDetail() string {
	styles := m.theme.Styles()
	d := m.fields.detail

	switch d.state {
	case stateAwaiting, stateLoading:
		return m.spinner.View() + " " + styles.MutedText.Render(fmt.Sprintf("Loading field %d...", d.id))
	case stateFailed:
		return m.renderError(d.err) + "\n\n" + styles.FaintText.Render("esc back · r retry")
	}

	f := d.field
	crop := "-"
	if f.CropTypeID != nil {
		crop = strconv.FormatInt(*f.CropTypeID, 10)
	}
	planted := "-"
	if date := f.ParsedPlantingDate(); !date.IsZero() {
		planted = fmt.Sprintf("%s (%d days ago)", date.Format("2006-01-02"), int(time.Since(date).Hours()/24))
	} else if f.PlantingDate != nil && *f.PlantingDate != "" {
		planted = *f.PlantingDate
	}

	rows := [][2]string{
		{"Name", f.Name},
		{"Location", f.Location},
		{"Coordinates", formatFloat(f.Latitude) + ", " + formatFloat(f.Longitude)},
		{"Size", formatFloat(f.Size) + " ha"},
		{"Sensor density", formatFloat(f.SensorDensity)},
		{"Crop type", crop},
		{"Planted", planted},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(styles.MutedText.Render(padRight(r[0], 16)))
		b.WriteString(styles.Text.Render(r[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("esc back · r reload"))
	return b.String()
}
