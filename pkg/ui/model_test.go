package ui_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/config"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/testutil"
	"github.com/vanderheijden86/eoview/pkg/ui"
	"github.com/vanderheijden86/eoview/pkg/view"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m ui.Model, keys ...string) ui.Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(ui.Model)
	}
	return m
}

func TestNewModel_InitialView(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "orders.json")

	testutil.AssertIDs(t, m.VisibleRecords(), 1, 2)
	if m.Filter().Active() {
		t.Errorf("expected no filter, got %s", m.Filter())
	}
	if m.Sort().Active() {
		t.Errorf("expected natural order, got %s", m.Sort())
	}
	if msg, _ := m.Status(); msg != "" {
		t.Errorf("expected empty status, got %q", msg)
	}
	if r := m.SelectedRecord(); r == nil || r.ID != 1 {
		t.Errorf("expected record 1 selected, got %v", r)
	}
}

func TestNewModel_SkipsMalformed(t *testing.T) {
	records := append(testutil.Pair(), model.Record{
		ID:         3,
		Title:      "Broken",
		Forecast:   "n/a",
		Impact:     3,
		Categories: []model.Category{model.CategoryEnergy},
	})
	m := ui.NewModel(records, "")

	testutil.AssertIDs(t, m.VisibleRecords(), 1, 2)
	msg, isErr := m.Status()
	if !isErr || !strings.Contains(msg, "Skipped 1 malformed record") {
		t.Errorf("unexpected status %q (error=%v)", msg, isErr)
	}
}

func TestNewModel_Empty(t *testing.T) {
	m := ui.NewModel(nil, "")
	if len(m.VisibleRecords()) != 0 {
		t.Fatalf("expected empty view")
	}
	if m.SelectedRecord() != nil {
		t.Error("expected no selection")
	}
	if out := m.View(); !strings.Contains(out, "0 of 0 orders") {
		t.Errorf("header should report the empty view:\n%s", out)
	}
}

func TestForecastCycle(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")

	steps := []struct {
		want   bucket.ForecastBucket
		wantID []int
	}{
		{bucket.High, []int{2}},
		{bucket.Medium, nil},
		{bucket.Low, []int{1}},
		{"", []int{1, 2}},
	}
	for i, s := range steps {
		m = press(t, m, "f")
		if m.Filter().Forecast != s.want {
			t.Fatalf("step %d: forecast = %q, want %q", i, m.Filter().Forecast, s.want)
		}
		testutil.AssertIDs(t, m.VisibleRecords(), s.wantID...)
	}
}

func TestCategoryAndImpactFilters(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")

	m = press(t, m, "c")
	if m.Filter().Category != model.CategoryEnvironment {
		t.Fatalf("expected environment, got %q", m.Filter().Category)
	}
	testutil.AssertIDs(t, m.VisibleRecords(), 1)

	m = press(t, m, "x", "i", "i")
	if m.Filter().Impact != 2 {
		t.Fatalf("expected impact 2, got %d", m.Filter().Impact)
	}
	testutil.AssertIDs(t, m.VisibleRecords(), 1)

	m = press(t, m, "i", "i", "i")
	testutil.AssertIDs(t, m.VisibleRecords(), 2)

	// Past 5 the impact slot wraps back to unconstrained.
	m = press(t, m, "i")
	if m.Filter().Impact != 0 {
		t.Errorf("expected impact to wrap to 0, got %d", m.Filter().Impact)
	}
	testutil.AssertIDs(t, m.VisibleRecords(), 1, 2)
}

func TestFiltersCombine(t *testing.T) {
	m := ui.NewModel(testutil.QuickRecords(40), "")
	m = press(t, m, "f", "c")

	want, err := view.Select(testutil.QuickRecords(40), m.Filter())
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertIDs(t, m.VisibleRecords(), testutil.GetIDs(want)...)
}

func TestSortToggle(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")

	// "5" is the forecast column.
	m = press(t, m, "5")
	if got := m.Sort(); got.Field != view.SortForecast || got.Direction != view.Ascending {
		t.Fatalf("expected forecast asc, got %s", got)
	}
	testutil.AssertIDs(t, m.VisibleRecords(), 1, 2)

	m = press(t, m, "5")
	if got := m.Sort(); got.Direction != view.Descending {
		t.Fatalf("expected forecast desc, got %s", got)
	}
	testutil.AssertIDs(t, m.VisibleRecords(), 2, 1)

	m = press(t, m, "5")
	if m.Sort().Active() {
		t.Fatalf("expected natural order, got %s", m.Sort())
	}
	testutil.AssertIDs(t, m.VisibleRecords(), 1, 2)

	// Switching field restarts ascending.
	m = press(t, m, "6", "6", "2")
	if got := m.Sort(); got.Field != view.SortTitle || got.Direction != view.Ascending {
		t.Errorf("expected title asc, got %s", got)
	}
	m = press(t, m, "0")
	if m.Sort().Active() {
		t.Errorf("0 should reset to natural order")
	}
}

func TestSortKeepsFilter(t *testing.T) {
	m := ui.NewModel(testutil.QuickRecords(30), "")
	m = press(t, m, "f", "6", "6")

	for _, r := range m.VisibleRecords() {
		b, err := bucket.ForRecord(r)
		if err != nil || b != bucket.High {
			t.Fatalf("record %d escaped the forecast filter", r.ID)
		}
	}
	recs := m.VisibleRecords()
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Impact < recs[i].Impact {
			t.Fatalf("records not sorted by impact desc at %d", i)
		}
	}
}

func TestWithView_InvalidSelectionKeepsState(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")
	m = m.WithView(view.FilterState{Category: "space"}, view.SortState{})

	if m.Filter().Active() {
		t.Errorf("invalid filter should not be applied, got %s", m.Filter())
	}
	testutil.AssertIDs(t, m.VisibleRecords(), 1, 2)
	msg, isErr := m.Status()
	if !isErr || !strings.Contains(msg, "space") {
		t.Errorf("expected error status naming the value, got %q", msg)
	}
}

func TestWithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filters.Forecast = "high"
	cfg.UI.DefaultSort = "impact"
	cfg.UI.DefaultDirection = "desc"

	m := ui.NewModel(testutil.QuickRecords(25), "").WithConfig(cfg)

	if !m.IsSplitView() {
		t.Error("show_detail should start in split view")
	}
	if m.Filter().Forecast != bucket.High {
		t.Errorf("expected high forecast filter, got %s", m.Filter())
	}
	if got := m.Sort(); got.Field != view.SortImpact || got.Direction != view.Descending {
		t.Errorf("expected impact desc, got %s", got)
	}
}

func TestWithConfig_BadFilter(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filters.Category = "space"

	m := ui.NewModel(testutil.Pair(), "").WithConfig(cfg)
	if m.Filter().Active() {
		t.Errorf("expected unfiltered view, got %s", m.Filter())
	}
	if _, isErr := m.Status(); !isErr {
		t.Error("expected an error status")
	}

	cfg.Categories = []string{"space"}
	m = ui.NewModel(testutil.Pair(), "").WithConfig(cfg)
	if m.Filter().Category != "space" {
		t.Errorf("extra category should be selectable, got %s", m.Filter())
	}
	if len(m.VisibleRecords()) != 0 {
		t.Errorf("no record carries the extra category")
	}
}

func TestDetailFocus(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")

	m = press(t, m, "enter")
	if m.FocusState() != "detail" {
		t.Fatalf("expected detail focus, got %s", m.FocusState())
	}
	if out := m.View(); !strings.Contains(out, "Unleashing American Energy") {
		t.Errorf("detail should show the selected order")
	}

	m = press(t, m, "esc")
	if m.FocusState() != "list" {
		t.Fatalf("expected list focus, got %s", m.FocusState())
	}

	// q leaves the full-screen detail before it quits.
	m = press(t, m, "enter", "q")
	if m.FocusState() != "list" {
		t.Errorf("q in detail should return to the list")
	}
}

func TestSplitViewToggle(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 30})
	m = next.(ui.Model)

	m = press(t, m, "s")
	if !m.IsSplitView() {
		t.Fatal("expected split view")
	}
	m = press(t, m, "tab")
	if m.FocusState() != "detail" {
		t.Errorf("tab should focus the detail pane")
	}
	m = press(t, m, "tab", "s")
	if m.IsSplitView() {
		t.Error("expected list view")
	}
}

func TestHelpOverlay(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")
	m = press(t, m, "?")
	if m.FocusState() != "help" {
		t.Fatalf("expected help, got %s", m.FocusState())
	}
	if out := m.View(); !strings.Contains(out, "cycle forecast bucket") {
		t.Error("help overlay should list the filter keys")
	}
	// Filter keys are inert while help is open.
	m = press(t, m, "f")
	if m.Filter().Active() {
		t.Error("help should swallow filter keys")
	}
	m = press(t, m, "esc")
	if m.FocusState() != "list" {
		t.Errorf("esc should close help")
	}
}

func TestCopyLink_NoLink(t *testing.T) {
	recs := testutil.Pair()
	recs[0].SourceLink = ""
	m := press(t, ui.NewModel(recs, ""), "y")

	msg, isErr := m.Status()
	if !isErr || !strings.Contains(msg, "no source link") {
		t.Errorf("unexpected status %q", msg)
	}
}

func TestReloadWithoutLoader(t *testing.T) {
	m := press(t, ui.NewModel(testutil.Pair(), ""), "r")
	if _, isErr := m.Status(); !isErr {
		t.Error("reload without a loader should report an error")
	}
}

func TestQuit(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestViewRendersHeaderAndRows(t *testing.T) {
	m := ui.NewModel(testutil.Pair(), "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m = next.(ui.Model)
	m = press(t, m, "6")

	out := m.View()
	for _, want := range []string{"EO View", "2 of 2 orders", "Impact (1-5) ↑", "Protecting the Meaning", "IMP↑"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines > 20 {
		t.Errorf("view has %d lines, terminal has 20", lines)
	}
}
