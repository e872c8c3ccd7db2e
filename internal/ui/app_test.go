package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/furrow/internal/irrigation"
	"github.com/five82/furrow/internal/prefs"
)

type fakeService struct {
	mu sync.Mutex

	fields      []irrigation.Field
	fieldsErr   error
	fieldErr    error
	readings    irrigation.SensorReadings
	readingsErr error
	actionErr   error
	startReply  *irrigation.IrrigationStatus

	calls []string
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) ListFields(context.Context) ([]irrigation.Field, error) {
	f.record("listFields")
	if f.fieldsErr != nil {
		return nil, f.fieldsErr
	}
	return f.fields, nil
}

func (f *fakeService) GetField(_ context.Context, id int64) (irrigation.Field, error) {
	f.record(fmt.Sprintf("getField:%d", id))
	if f.fieldErr != nil {
		return irrigation.Field{}, f.fieldErr
	}
	for _, field := range f.fields {
		if field.ID == id {
			return field, nil
		}
	}
	return irrigation.Field{}, &irrigation.StatusError{Method: "GET", Path: fmt.Sprintf("/fields/%d", id), Code: 404}
}

func (f *fakeService) ListSensorReadings(context.Context) (irrigation.SensorReadings, error) {
	f.record("listSensorReadings")
	if f.readingsErr != nil {
		return nil, f.readingsErr
	}
	return f.readings, nil
}

func (f *fakeService) StartIrrigation(context.Context) (irrigation.IrrigationStatus, error) {
	f.record("start")
	if f.actionErr != nil {
		return irrigation.IrrigationStatus{}, f.actionErr
	}
	if f.startReply != nil {
		return *f.startReply, nil
	}
	return irrigation.IrrigationStatus{Status: "started"}, nil
}

func (f *fakeService) StopIrrigation(context.Context) (irrigation.IrrigationStatus, error) {
	f.record("stop")
	if f.actionErr != nil {
		return irrigation.IrrigationStatus{}, f.actionErr
	}
	return irrigation.IrrigationStatus{Status: "stopped"}, nil
}

func sampleService() *fakeService {
	date := "2024-04-02"
	crop := int64(3)
	return &fakeService{
		fields: []irrigation.Field{
			{ID: 1, Name: "North maize", Location: "Meknes", Size: 12.5, CropTypeID: &crop, PlantingDate: &date},
			{ID: 42, Name: "River parcel", Location: "Fes", Size: 4},
		},
		readings: irrigation.SensorReadings(`[{"sensor_id":10,"field_id":1,"raw_data":[{"type":"humidity","valeur":41.5,"unit":"%","timestamp":"2024-05-01T10:00:00"}]}]`),
	}
}

func newTestModel(t *testing.T, svc irrigation.Service, view View) Model {
	t.Helper()
	m := New(Options{
		Client:    svc,
		StartView: view,
		BaseURL:   "http://stub.test/api",
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out, cmd
}

// settle runs cmd and feeds its message back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	m, _ = update(t, m, cmd())
	return m
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return update(t, m, msg)
}

func activate(t *testing.T, m Model, v View) Model {
	t.Helper()
	m, cmd := update(t, m, activateMsg{view: v})
	if cmd != nil {
		m = settle(t, m, cmd)
	}
	return m
}

func equalCalls(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestInitActivatesStartView(t *testing.T) {
	m := newTestModel(t, sampleService(), ViewSensors)
	batch, ok := m.Init()().(tea.BatchMsg)
	if !ok {
		t.Fatal("Init should batch the spinner and the activation")
	}
	found := false
	for _, cmd := range batch {
		if cmd == nil {
			continue
		}
		if msg, ok := cmd().(activateMsg); ok {
			found = true
			if msg.view != ViewSensors {
				t.Fatalf("activate view = %v, want sensors", msg.view)
			}
		}
	}
	if !found {
		t.Fatal("Init did not activate the start view")
	}
}

func TestViewBeforeResize(t *testing.T) {
	m := New(Options{Client: sampleService()})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View before size = %q", got)
	}
}

func TestFieldsLoadOnActivation(t *testing.T) {
	svc := sampleService()
	m := newTestModel(t, svc, ViewFields)

	m, cmd := update(t, m, activateMsg{view: ViewFields})
	if m.fields.state != stateLoading {
		t.Fatalf("state = %v, want loading", m.fields.state)
	}
	if !strings.Contains(m.View(), "Loading fields") {
		t.Fatal("expected loading indicator while listFields is pending")
	}

	m = settle(t, m, cmd)
	if !equalCalls(svc.Calls(), "listFields") {
		t.Fatalf("calls = %v, want one listFields", svc.Calls())
	}
	view := m.View()
	for _, want := range []string{"Fields (2)", "North maize", "River parcel", "12.5"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFieldsEmptyList(t *testing.T) {
	svc := &fakeService{fields: []irrigation.Field{}}
	m := activate(t, newTestModel(t, svc, ViewFields), ViewFields)
	if !strings.Contains(m.View(), "No fields registered.") {
		t.Fatalf("empty list not rendered:\n%s", m.View())
	}
}

func TestStaleFieldsResultDropped(t *testing.T) {
	svc := sampleService()
	m := newTestModel(t, svc, ViewFields)

	m, pending := update(t, m, activateMsg{view: ViewFields})
	m, _ = press(t, m, "2")
	if m.currentView != ViewSensors {
		t.Fatalf("currentView = %v, want sensors", m.currentView)
	}

	late := pending()
	m, _ = update(t, m, late)
	if m.fields.fields != nil {
		t.Fatal("detached fields view was updated by a late result")
	}

	// Returning issues a fresh request; the old result is still stale.
	m, _ = press(t, m, "1")
	m, _ = update(t, m, late)
	if m.fields.state != stateLoading || m.fields.fields != nil {
		t.Fatalf("stale result applied after re-activation: state=%v fields=%d", m.fields.state, len(m.fields.fields))
	}
}

func TestNavigationDiscardsData(t *testing.T) {
	m := activate(t, newTestModel(t, sampleService(), ViewFields), ViewFields)
	if len(m.fields.fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(m.fields.fields))
	}
	m, _ = press(t, m, "3")
	if m.fields.fields != nil || m.fields.state != stateAwaiting {
		t.Fatal("fields data kept after navigating away")
	}
}

func TestReloadKeepsRowsOnFailure(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewFields), ViewFields)

	svc.fieldsErr = &irrigation.StatusError{Method: "GET", Path: "/fields", Code: 500, Body: "boom"}
	m, cmd := press(t, m, "r")
	if m.fields.state != stateLoading || len(m.fields.fields) != 2 {
		t.Fatal("reload should keep rows while pending")
	}
	m = settle(t, m, cmd)

	if m.fields.state != stateFailed {
		t.Fatalf("state = %v, want failed", m.fields.state)
	}
	view := m.View()
	if !strings.Contains(view, "Backend returned 500") || !strings.Contains(view, "North maize") {
		t.Fatalf("expected error beside previous rows:\n%s", view)
	}
	if !equalCalls(svc.Calls(), "listFields", "listFields") {
		t.Fatalf("calls = %v", svc.Calls())
	}
}

func TestFieldsFailureWithoutData(t *testing.T) {
	svc := &fakeService{fieldsErr: fmt.Errorf("%w: dial tcp: connection refused", irrigation.ErrTransport)}
	m := activate(t, newTestModel(t, svc, ViewFields), ViewFields)
	if !strings.Contains(m.View(), "Backend unreachable") {
		t.Fatalf("transport failure not shown:\n%s", m.View())
	}
}

func TestFieldDetail(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewFields), ViewFields)

	m, _ = press(t, m, "j")
	m, cmd := press(t, m, "enter")
	if !m.fields.detail.open || m.fields.detail.id != 42 {
		t.Fatalf("detail = %+v, want open for 42", m.fields.detail)
	}
	m = settle(t, m, cmd)

	if !equalCalls(svc.Calls(), "listFields", "getField:42") {
		t.Fatalf("calls = %v", svc.Calls())
	}
	view := m.View()
	if !strings.Contains(view, "Field 42") || !strings.Contains(view, "River parcel") {
		t.Fatalf("detail not rendered:\n%s", view)
	}

	m, _ = press(t, m, "esc")
	if m.fields.detail.open {
		t.Fatal("esc should close the detail panel")
	}
	if !strings.Contains(m.View(), "Fields (2)") {
		t.Fatal("list not restored after closing detail")
	}
}

func TestFieldsCursorOnFirstRowAfterLoad(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewFields), ViewFields)

	if got := m.fields.table.Cursor(); got != 0 {
		t.Fatalf("cursor = %d, want 0", got)
	}
	if row := m.fields.table.SelectedRow(); len(row) == 0 || row[0] != "1" {
		t.Fatalf("selected row = %v, want field 1", row)
	}
	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)
	if !equalCalls(svc.Calls(), "listFields", "getField:1") {
		t.Fatalf("calls = %v", svc.Calls())
	}

	// A fresh activation starts from the first row again.
	m, _ = press(t, m, "esc")
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "2")
	m, cmd = press(t, m, "1")
	m = settle(t, m, cmd)
	if got := m.fields.table.Cursor(); got != 0 {
		t.Fatalf("cursor after re-activation = %d, want 0", got)
	}
}

func TestFieldsResizeAcrossWideLayout(t *testing.T) {
	m := newTestModel(t, sampleService(), ViewFields)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	m = activate(t, m, ViewFields)
	if cols := len(m.fields.table.Columns()); cols != 8 {
		t.Fatalf("wide columns = %d, want 8", cols)
	}
	if !strings.Contains(m.View(), "Latitude") {
		t.Fatalf("wide layout missing coordinates:\n%s", m.View())
	}
	m, _ = press(t, m, "j")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 90, Height: 40})
	view := m.View()
	if cols := len(m.fields.table.Columns()); cols != 6 {
		t.Fatalf("narrow columns = %d, want 6", cols)
	}
	for _, row := range m.fields.table.Rows() {
		if len(row) != 6 {
			t.Fatalf("row %v has %d cells, want 6", row, len(row))
		}
	}
	if strings.Contains(view, "Latitude") || !strings.Contains(view, "River parcel") {
		t.Fatalf("narrow layout not rendered:\n%s", view)
	}
	if got := m.fields.table.Cursor(); got != 1 {
		t.Fatalf("cursor after resize = %d, want 1", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	if !strings.Contains(m.View(), "Latitude") || len(m.fields.table.Rows()[0]) != 8 {
		t.Fatal("coordinates not restored after growing")
	}
}

func TestFieldsLoadNearWideBoundary(t *testing.T) {
	for width := LayoutWideWidth - 2; width <= LayoutWideWidth+6; width++ {
		m := newTestModel(t, sampleService(), ViewFields)
		m, _ = update(t, m, tea.WindowSizeMsg{Width: width, Height: 40})
		m = activate(t, m, ViewFields)
		_ = m.View()

		cols := len(m.fields.table.Columns())
		for _, row := range m.fields.table.Rows() {
			if len(row) != cols {
				t.Fatalf("width %d: row has %d cells for %d columns", width, len(row), cols)
			}
		}
		if wide := cols == 8; wide != (m.contentInnerSize().width >= LayoutWideWidth) {
			t.Fatalf("width %d: %d columns for inner width %d", width, cols, m.contentInnerSize().width)
		}
	}
}

func TestFieldDetailNotFound(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewFields), ViewFields)
	cmd := m.loadDetail(9)
	m = settle(t, m, cmd)
	if m.fields.detail.state != stateFailed {
		t.Fatalf("state = %v, want failed", m.fields.detail.state)
	}
	if !strings.Contains(m.View(), "Not found (404)") {
		t.Fatalf("404 not shown:\n%s", m.View())
	}
}

func TestFieldDetailStaleAfterClose(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewFields), ViewFields)
	m, cmd := press(t, m, "enter")
	m, _ = press(t, m, "esc")
	m = settle(t, m, cmd)
	if m.fields.detail.open || m.fields.detail.field.ID != 0 {
		t.Fatal("closed detail panel was updated by a late result")
	}
}

func TestSensorsRendersReadings(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewSensors), ViewSensors)

	if !equalCalls(svc.Calls(), "listSensorReadings") {
		t.Fatalf("calls = %v", svc.Calls())
	}
	view := m.View()
	for _, want := range []string{"Sensor readings (1)", "Sensor 10", "humidity", "41.5 %"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSensorsRendersUnknownShape(t *testing.T) {
	svc := &fakeService{readings: irrigation.SensorReadings(`{"gateway":"g1","battery":87}`)}
	m := activate(t, newTestModel(t, svc, ViewSensors), ViewSensors)
	if !strings.Contains(m.View(), `"battery": 87`) {
		t.Fatalf("raw payload not rendered:\n%s", m.View())
	}
}

func TestSensorsFailure(t *testing.T) {
	svc := &fakeService{readingsErr: fmt.Errorf("%w: decode response: unexpected EOF", irrigation.ErrDecode)}
	m := activate(t, newTestModel(t, svc, ViewSensors), ViewSensors)
	if !strings.Contains(m.View(), "Unexpected response from backend") {
		t.Fatalf("decode failure not shown:\n%s", m.View())
	}
}

func TestIrrigationShowsStatusOnlyAfterSettling(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewIrrigation), ViewIrrigation)

	if len(svc.Calls()) != 0 {
		t.Fatalf("irrigation view requested %v on activation", svc.Calls())
	}
	if strings.Contains(m.View(), "started") {
		t.Fatal("status shown before any command")
	}

	m, cmd := press(t, m, "s")
	view := m.View()
	if strings.Contains(view, "started") {
		t.Fatalf("status shown while request pending:\n%s", view)
	}
	if !strings.Contains(view, "Sending start request") {
		t.Fatalf("pending indicator missing:\n%s", view)
	}

	m = settle(t, m, cmd)
	if !strings.Contains(m.View(), "Backend status: started") {
		t.Fatalf("settled status missing:\n%s", m.View())
	}
}

func TestIrrigationEveryPressSendsRequest(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewIrrigation), ViewIrrigation)

	for i := 0; i < 3; i++ {
		var cmd tea.Cmd
		m, cmd = press(t, m, "s")
		m = settle(t, m, cmd)
	}
	m, cmd := press(t, m, "x")
	m = settle(t, m, cmd)

	if !equalCalls(svc.Calls(), "start", "start", "start", "stop") {
		t.Fatalf("calls = %v", svc.Calls())
	}
	if !strings.Contains(m.View(), "Backend status: stopped") {
		t.Fatalf("stop status missing:\n%s", m.View())
	}
}

func TestIrrigationFailure(t *testing.T) {
	svc := &fakeService{actionErr: &irrigation.StatusError{Method: "POST", Path: "/irrigation/start", Code: 503}}
	m := activate(t, newTestModel(t, svc, ViewIrrigation), ViewIrrigation)
	m, cmd := press(t, m, "s")
	m = settle(t, m, cmd)

	view := m.View()
	if !strings.Contains(view, "Irrigation start request failed") || !strings.Contains(view, "Backend returned 503") {
		t.Fatalf("failure not shown:\n%s", view)
	}
	if strings.Contains(view, "started") {
		t.Fatal("failed command must not show a status")
	}
}

func TestIrrigationResultDroppedAfterLeaving(t *testing.T) {
	svc := sampleService()
	m := activate(t, newTestModel(t, svc, ViewIrrigation), ViewIrrigation)

	m, cmd := press(t, m, "s")
	m, _ = press(t, m, "1")
	m, _ = update(t, m, cmd())
	if m.irrigation.state != stateAwaiting {
		t.Fatalf("detached irrigation view updated: state=%v", m.irrigation.state)
	}

	m, _ = press(t, m, "3")
	if strings.Contains(m.View(), "started") {
		t.Fatal("result from a previous visit leaked into the view")
	}
}

func TestViewCycling(t *testing.T) {
	m := newTestModel(t, sampleService(), ViewFields)

	m, _ = press(t, m, "tab")
	if m.currentView != ViewSensors {
		t.Fatalf("tab -> %v, want sensors", m.currentView)
	}
	m, _ = press(t, m, "tab")
	if m.currentView != ViewIrrigation {
		t.Fatalf("tab -> %v, want irrigation", m.currentView)
	}
	m, _ = press(t, m, "tab")
	if m.currentView != ViewFields {
		t.Fatalf("tab -> %v, want fields", m.currentView)
	}
	m, _ = press(t, m, "shift+tab")
	if m.currentView != ViewIrrigation {
		t.Fatalf("shift+tab -> %v, want irrigation", m.currentView)
	}

	// Selecting the active view does not refetch.
	m, cmd := press(t, m, "3")
	if cmd != nil {
		t.Fatal("re-selecting the current view issued a command")
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(t, sampleService(), ViewFields)
	m, _ = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	m, _ = press(t, m, "s")
	if m.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	m := newTestModel(t, sampleService(), ViewFields)
	m, _ = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	if got := prefs.Load(m.prefsPath).Theme; got != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", got)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, sampleService(), ViewFields)
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not produce QuitMsg")
	}
}

func TestNoClientConfigured(t *testing.T) {
	m := activate(t, newTestModel(t, nil, ViewFields), ViewFields)
	if !strings.Contains(m.View(), "No backend configured") {
		t.Fatalf("missing client not reported:\n%s", m.View())
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: timeout", irrigation.ErrTransport), "Backend unreachable"},
		{&irrigation.StatusError{Code: 404}, "Not found (404)"},
		{&irrigation.StatusError{Code: 502}, "Backend returned 502"},
		{fmt.Errorf("%w: bad json", irrigation.ErrDecode), "Unexpected response from backend"},
		{errNoClient, "No backend configured"},
		{fmt.Errorf("other"), "Request failed"},
	}
	for _, tt := range tests {
		if got := describeError(tt.err); got != tt.want {
			t.Fatalf("describeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIrrigationEmptyStatusIsReported(t *testing.T) {
	svc := sampleService()
	svc.startReply = &irrigation.IrrigationStatus{}
	m := activate(t, newTestModel(t, svc, ViewIrrigation), ViewIrrigation)

	m, cmd := press(t, m, "s")
	m = settle(t, m, cmd)
	view := m.View()
	if !strings.Contains(view, "Backend reply had no status") {
		t.Fatalf("missing status not reported:\n%s", view)
	}
	if strings.Contains(view, "Backend status:") {
		t.Fatalf("status invented for an empty reply:\n%s", view)
	}
}

func TestIrrigationStatusShownVerbatim(t *testing.T) {
	svc := sampleService()
	svc.startReply = &irrigation.IrrigationStatus{Status: "Queued (valve 3)", Message: "Pump warming up"}
	m := activate(t, newTestModel(t, svc, ViewIrrigation), ViewIrrigation)

	m, cmd := press(t, m, "s")
	m = settle(t, m, cmd)
	view := m.View()
	for _, want := range []string{"Backend status: Queued (valve 3)", "Pump warming up"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
