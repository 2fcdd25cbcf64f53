// Package ui implements the interactive executive-order browser: a record
// list with filter and sort controls, a markdown detail pane, and live reload
// when the data file changes.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/config"
	"github.com/vanderheijden86/eoview/pkg/debug"
	"github.com/vanderheijden86/eoview/pkg/export"
	"github.com/vanderheijden86/eoview/pkg/metrics"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/view"
	"github.com/vanderheijden86/eoview/pkg/watcher"
)

const (
	defaultWidth  = 120
	defaultHeight = 40

	minSplitRatio = 0.2
	maxSplitRatio = 0.8

	reloadTimeout = 30 * time.Second
)

type focus int

const (
	focusList focus = iota
	focusDetail
	focusHelp
)

// FileChangedMsg is sent when the watched data file changes.
type FileChangedMsg struct{}

// recordsLoadedMsg carries the result of a reload.
type recordsLoadedMsg struct {
	records []model.Record
	err     error
}

// LoadFunc reloads the record set from its source.
type LoadFunc func(ctx context.Context) ([]model.Record, error)

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadCmd runs load in the background and reports the result.
func ReloadCmd(load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		defer debug.LogEnterExit("reload")()
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		recs, err := load(ctx)
		return recordsLoadedMsg{records: recs, err: err}
	}
}

// Model is the bubbletea model of the browser.
type Model struct {
	// Data
	records  []model.Record // classifiable records, in load order
	dropped  int            // malformed records skipped at the last load
	visible  []model.Record // current view
	dataPath string
	engine   *view.Engine
	halt     bool

	// View state
	filter view.FilterState
	order  view.SortState

	// Live reload
	watcher *watcher.Watcher
	load    LoadFunc

	// UI Components
	list     list.Model
	viewport viewport.Model
	renderer *MarkdownRenderer
	theme    Theme

	// Focus and layout
	focused         focus
	focusBeforeHelp focus
	isSplitView     bool
	splitPaneRatio  float64
	showDetails     bool
	ready           bool
	width           int
	height          int

	// Status bar
	statusMsg     string
	statusIsError bool
}

// NewModel builds a browser over records. Records with unclassifiable
// forecast or impact values are skipped with a status message.
func NewModel(records []model.Record, dataPath string) Model {
	theme := DefaultTheme(lipgloss.NewRenderer(os.Stdout))

	delegate := RecordDelegate{Theme: theme}
	l := list.New([]list.Item{}, delegate, defaultWidth, defaultHeight-4)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = lipgloss.NewStyle()
	l.Styles.TitleBar = lipgloss.NewStyle()
	l.Styles.StatusBar = lipgloss.NewStyle()
	l.Styles.StatusEmpty = lipgloss.NewStyle()
	l.Styles.NoItems = lipgloss.NewStyle().Foreground(ColorMuted).PaddingLeft(2)
	l.Styles.PaginationStyle = lipgloss.NewStyle()
	l.Styles.HelpStyle = lipgloss.NewStyle()

	m := Model{
		dataPath:       dataPath,
		engine:         view.NewEngine(model.DefaultVocabulary()),
		list:           l,
		viewport:       viewport.New(defaultWidth, defaultHeight-2),
		renderer:       NewMarkdownRenderer(defaultWidth),
		theme:          theme,
		splitPaneRatio: 0.4,
		ready:          true,
		width:          defaultWidth,
		height:         defaultHeight,
	}
	m.setRecords(records)
	return m
}

// WithConfig applies the vocabulary, malformed-record policy, initial view and
// layout preferences of cfg. Invalid initial selections are reported in the
// status bar and leave the view unfiltered.
func (m Model) WithConfig(cfg config.Config) Model {
	m.engine = view.NewEngine(cfg.Vocabulary())
	m.halt = cfg.HaltOnMalformed()
	if r := cfg.UI.SplitRatio; r >= minSplitRatio && r <= maxSplitRatio {
		m.splitPaneRatio = r
	}
	m.isSplitView = cfg.UI.ShowDetail

	filter, ferr := cfg.InitialFilter()
	order, serr := cfg.InitialSort()
	switch {
	case ferr != nil:
		m.setError(fmt.Errorf("config filter: %w", ferr))
	case serr != nil:
		m.setError(fmt.Errorf("config sort: %w", serr))
	default:
		m.applyView(filter, order)
	}
	m.resize()
	return m
}

// WithView sets the initial filter and sort, reporting invalid ones in the
// status bar.
func (m Model) WithView(filter view.FilterState, order view.SortState) Model {
	m.applyView(filter, order)
	return m
}

// WithWatcher enables live reload: every change of w reloads through load.
func (m Model) WithWatcher(w *watcher.Watcher, load LoadFunc) Model {
	m.watcher = w
	m.load = load
	return m
}

// WithLoader sets the function used for manual reloads.
func (m Model) WithLoader(load LoadFunc) Model {
	m.load = load
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case FileChangedMsg:
		debug.Log("ui: data file changed, reloading %s", m.dataPath)
		if m.load != nil {
			m.statusMsg = "Reloading…"
			m.statusIsError = false
			cmds = append(cmds, ReloadCmd(m.load))
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case recordsLoadedMsg:
		m.handleReload(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.focused == focusHelp {
				m.focused = m.focusBeforeHelp
				return m, nil
			}
			if m.focused == focusDetail && !m.isSplitView {
				m.focused = focusList
				m.showDetails = false
				return m, nil
			}
			return m, tea.Quit
		case "?":
			if m.focused == focusHelp {
				m.focused = m.focusBeforeHelp
			} else {
				m.focusBeforeHelp = m.focused
				m.focused = focusHelp
			}
			return m, nil
		}

		// Any key other than the ones above clears a stale status.
		m.statusMsg = ""
		m.statusIsError = false

		switch m.focused {
		case focusHelp:
			if msg.String() == "esc" {
				m.focused = m.focusBeforeHelp
			}
			return m, nil
		case focusDetail:
			switch msg.String() {
			case "esc", "tab":
				m.focused = focusList
				m.showDetails = false
				return m, nil
			}
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		default:
			var consumed bool
			m, consumed = m.handleListKeys(msg)
			if consumed {
				if msg.String() == "r" && m.load != nil {
					cmds = append(cmds, ReloadCmd(m.load))
				}
				return m, tea.Batch(cmds...)
			}
			prev := m.list.Index()
			m.list, cmd = m.list.Update(msg)
			if m.list.Index() != prev {
				m.updateViewportContent()
			}
			return m, cmd
		}
	}
	return m, nil
}

// handleListKeys handles the view controls. The bool reports whether the key
// was consumed.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, bool) {
	switch key := msg.String(); key {
	case "enter":
		m.focused = focusDetail
		if !m.isSplitView {
			m.showDetails = true
		}
		m.viewport.GotoTop()
		m.updateViewportContent()
		return m, true
	case "tab":
		if m.isSplitView {
			m.focused = focusDetail
		}
		return m, true
	case "s":
		m.isSplitView = !m.isSplitView
		m.resize()
		return m, true
	case "<":
		m.adjustSplit(-0.05)
		return m, true
	case ">":
		m.adjustSplit(0.05)
		return m, true
	case "home", "g":
		m.list.Select(0)
		m.updateViewportContent()
		return m, true
	case "G", "end":
		if n := len(m.list.Items()); n > 0 {
			m.list.Select(n - 1)
			m.updateViewportContent()
		}
		return m, true
	case "c":
		f := m.filter
		f.Category = nextCategory(f.Category, m.engine.Vocabulary())
		m.applyView(f, m.order)
		return m, true
	case "f":
		f := m.filter
		f.Forecast = nextBucket(f.Forecast)
		m.applyView(f, m.order)
		return m, true
	case "i":
		f := m.filter
		f.Impact = (f.Impact + 1) % (bucket.MaxImpact + 1)
		m.applyView(f, m.order)
		return m, true
	case "x":
		m.applyView(view.FilterState{}, m.order)
		return m, true
	case "1", "2", "3", "4", "5", "6":
		fields := view.SortFields()
		idx := int(key[0] - '1')
		if idx < len(fields) {
			m.applyView(m.filter, m.order.Toggle(fields[idx]))
		}
		return m, true
	case "0":
		m.applyView(m.filter, view.SortState{})
		return m, true
	case "y":
		m.copySourceLink()
		return m, true
	case "r":
		if m.load == nil {
			m.statusMsg = "Reload is not available for this source"
			m.statusIsError = true
		} else {
			m.statusMsg = "Reloading…"
		}
		return m, true
	}
	return m, false
}

// applyView rebuilds the visible records for filter and order. On failure the
// previous view and selection stay in place and the error is shown.
func (m *Model) applyView(filter view.FilterState, order view.SortState) {
	visible, err := m.engine.Build(m.records, filter, order)
	if err != nil {
		m.setError(err)
		return
	}
	m.filter = filter
	m.order = order
	m.visible = visible
	m.refreshList()
}

func (m *Model) refreshList() {
	selectedID := -1
	if r := m.SelectedRecord(); r != nil {
		selectedID = r.ID
	}

	items := make([]list.Item, len(m.visible))
	for i, it := range toItems(m.visible) {
		items[i] = it
	}
	m.list.SetItems(items)

	idx := 0
	for i, r := range m.visible {
		if r.ID == selectedID {
			idx = i
			break
		}
	}
	if len(items) > 0 {
		m.list.Select(idx)
	}
	m.updateViewportContent()
}

// setRecords applies the skip policy and replaces the record set.
func (m *Model) setRecords(records []model.Record) {
	kept, dropped, _ := view.ApplyPolicy(records, false)
	m.records = kept
	m.dropped = len(dropped)
	debug.LogIf(m.dropped > 0, "skipped %d malformed records", m.dropped)
	if m.dropped > 0 {
		m.statusMsg = fmt.Sprintf("Skipped %d malformed %s", m.dropped, plural(m.dropped, "record", "records"))
		m.statusIsError = true
	}
	m.applyView(m.filter, m.order)
}

func (m *Model) handleReload(msg recordsLoadedMsg) {
	if msg.err != nil {
		m.setError(fmt.Errorf("reload failed: %w", msg.err))
		return
	}
	kept, dropped, err := view.ApplyPolicy(msg.records, m.halt)
	if err != nil {
		m.setError(fmt.Errorf("reload halted: %w", err))
		return
	}

	prevRecords, prevDropped := m.records, m.dropped
	m.records = kept
	m.dropped = len(dropped)
	visible, err := m.engine.Build(m.records, m.filter, m.order)
	if err != nil {
		m.records, m.dropped = prevRecords, prevDropped
		m.setError(fmt.Errorf("reload: %w", err))
		return
	}
	m.visible = visible
	m.refreshList()

	m.statusMsg = fmt.Sprintf("Reloaded %d %s", len(kept), plural(len(kept), "order", "orders"))
	m.statusIsError = false
	if m.dropped > 0 {
		m.statusMsg += fmt.Sprintf(" (skipped %d malformed)", m.dropped)
	}
}

func (m *Model) setError(err error) {
	m.statusMsg = summarizeErr(err)
	m.statusIsError = true
	debug.Log("ui: %v", err)
}

func (m *Model) copySourceLink() {
	r := m.SelectedRecord()
	switch {
	case r == nil:
		m.statusMsg = "No order selected"
		m.statusIsError = true
	case r.SourceLink == "":
		m.statusMsg = fmt.Sprintf("EO %d has no source link", r.ID)
		m.statusIsError = true
	default:
		if err := clipboard.WriteAll(r.SourceLink); err != nil {
			m.statusMsg = fmt.Sprintf("Clipboard error: %v", err)
			m.statusIsError = true
			return
		}
		m.statusMsg = fmt.Sprintf("Copied link of EO %d", r.ID)
		m.statusIsError = false
	}
}

func (m *Model) adjustSplit(delta float64) {
	if !m.isSplitView {
		return
	}
	r := m.splitPaneRatio + delta
	if r < minSplitRatio {
		r = minSplitRatio
	}
	if r > maxSplitRatio {
		r = maxSplitRatio
	}
	m.splitPaneRatio = r
	m.resize()
}

// bodyHeight is the height between the global header and the footer.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) resize() {
	if !m.isSplitView {
		if m.focused == focusDetail && !m.showDetails {
			m.focused = focusList
		}
		// Column header line above the list.
		m.list.SetSize(m.width, m.bodyHeight()-1)
		m.viewport = viewport.New(m.width, m.bodyHeight())
		m.renderer.SetWidth(m.width - 4)
		m.updateViewportContent()
		return
	}

	// Two panels with borders(2)+padding(2) each.
	availWidth := m.width - 8
	if availWidth < 10 {
		availWidth = 10
	}
	listInnerWidth := int(float64(availWidth) * m.splitPaneRatio)
	detailInnerWidth := availWidth - listInnerWidth

	listHeight := m.bodyHeight() - 3
	if listHeight < 1 {
		listHeight = 1
	}
	m.list.SetSize(listInnerWidth, listHeight)
	m.viewport = viewport.New(detailInnerWidth, m.bodyHeight()-2)
	m.renderer.SetWidth(detailInnerWidth)
	m.updateViewportContent()
}

func (m *Model) updateViewportContent() {
	r := m.SelectedRecord()
	if r == nil {
		m.viewport.SetContent("No executive orders match this view.")
		return
	}
	rendered, err := m.renderer.Render(export.RecordMarkdown(*r))
	if err != nil {
		m.viewport.SetContent(fmt.Sprintf("Error rendering markdown: %v", err))
		return
	}
	m.viewport.SetContent(rendered)
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if !m.ready {
		return "Initializing..."
	}

	var body string
	switch {
	case m.focused == focusHelp:
		body = m.renderHelpOverlay()
	case m.showDetails && !m.isSplitView:
		body = m.viewport.View()
	case m.isSplitView:
		body = m.renderSplitView()
	default:
		body = m.renderListWithHeader()
	}

	finalStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.renderGlobalHeader(), body, m.renderFooter()))
}

func (m Model) renderGlobalHeader() string {
	t := m.theme
	title := t.Header.Render("EO View")
	info := fmt.Sprintf(" %s  │  %s  │  %d of %d orders",
		describeFilter(m.filter), describeSort(m.order), len(m.visible), len(m.records))
	info = t.SecondaryText.Render(truncate(info, m.width-lipgloss.Width(title)-1))
	line := title + info
	if pad := m.width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

// columnHeader renders the list header, marking the sorted column.
func (m Model) columnHeader(width int) string {
	label := func(f view.SortField, text string) string {
		if m.order.Field == f {
			return text + m.order.Direction.Indicator()
		}
		return text
	}
	text := fmt.Sprintf("  %-10s %-5s %-4s %s",
		label(view.SortForecast, "FORECAST"),
		label(view.SortImpact, "IMP"),
		label(view.SortID, "ID"),
		label(view.SortTitle, "EOs"))
	if width > 70 {
		status := label(view.SortStatus, "STATUS")
		if pad := width - 1 - lipgloss.Width(text) - 15; pad > 0 {
			text += strings.Repeat(" ", pad) + fmt.Sprintf("%-15s", status)
		}
	}
	return m.theme.Renderer.NewStyle().
		Background(m.theme.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Width(width).
		MaxWidth(width).
		Render(text)
}

func (m Model) renderListWithHeader() string {
	content := lipgloss.JoinVertical(lipgloss.Left, m.columnHeader(m.width), m.list.View())
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.bodyHeight()).
		MaxHeight(m.bodyHeight()).
		Render(content)
}

func (m Model) renderSplitView() string {
	listStyle, detailStyle := FocusedPanelStyle, PanelStyle
	if m.focused == focusDetail {
		listStyle, detailStyle = PanelStyle, FocusedPanelStyle
	}

	listInnerWidth := m.list.Width()
	panelHeight := m.bodyHeight() - 2

	listContent := lipgloss.JoinVertical(lipgloss.Left, m.columnHeader(listInnerWidth), m.list.View())
	listView := listStyle.
		Width(listInnerWidth + 2).
		Height(panelHeight).
		MaxHeight(panelHeight + 2).
		Padding(0, 1).
		Render(listContent)

	detailView := detailStyle.
		Width(m.viewport.Width + 2).
		Height(panelHeight).
		MaxHeight(panelHeight + 2).
		Padding(0, 1).
		Render(m.viewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listView, detailView)
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Filter", [][2]string{
		{"c", "cycle category"},
		{"f", "cycle forecast bucket"},
		{"i", "cycle impact 1-5"},
		{"x", "clear filters"},
	}},
	{"Sort", [][2]string{
		{"1-6", "ID, EOs, TLDR, Status, Forecast, Impact (asc, desc, off)"},
		{"0", "natural order"},
	}},
	{"View", [][2]string{
		{"enter", "open detail"},
		{"esc", "back to list"},
		{"s", "toggle split view"},
		{"tab", "focus detail pane"},
		{"< >", "resize split"},
		{"y", "copy source link"},
		{"r", "reload data"},
		{"q", "quit"},
	}},
}

func (m Model) renderHelpOverlay() string {
	t := m.theme
	var sb strings.Builder
	for i, sec := range helpSections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(t.PrimaryBold.Render(sec.title))
		sb.WriteString("\n")
		for _, k := range sec.keys {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", t.SuccessText.Render(fmt.Sprintf("%-6s", k[0])), k[1]))
		}
	}
	box := FocusedPanelStyle.Padding(1, 2).Render(strings.TrimRight(sb.String(), "\n"))
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		var msgStyle lipgloss.Style
		if m.statusIsError {
			msgStyle = lipgloss.NewStyle().
				Background(ColorForecastHighBg).
				Foreground(ColorDanger).
				Bold(true).
				Padding(0, 2)
		} else {
			msgStyle = lipgloss.NewStyle().
				Background(ColorForecastLowBg).
				Foreground(ColorSuccess).
				Bold(true).
				Padding(0, 2)
		}
		prefix := "✓ "
		if m.statusIsError {
			prefix = "✗ "
		}
		msgSection := msgStyle.Render(truncate(prefix+m.statusMsg, m.width-4))
		remaining := m.width - lipgloss.Width(msgSection)
		if remaining < 0 {
			remaining = 0
		}
		return lipgloss.JoinHorizontal(lipgloss.Bottom, msgSection, lipgloss.NewStyle().Width(remaining).Render(""))
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	labelStyle := lipgloss.NewStyle().Foreground(ColorText)

	hints := [][2]string{{"c/f/i", "filter"}, {"x", "clear"}, {"1-6", "sort"}, {"enter", "detail"}, {"s", "split"}, {"?", "help"}, {"q", "quit"}}
	if m.focused == focusDetail {
		hints = [][2]string{{"j/k", "scroll"}, {"esc", "back"}, {"?", "help"}, {"q", "quit"}}
	}
	var parts []string
	for _, h := range hints {
		parts = append(parts, keyStyle.Render(h[0])+":"+labelStyle.Render(h[1]))
	}
	bar := " " + strings.Join(parts, "  ")
	remaining := m.width - lipgloss.Width(bar)
	if remaining < 0 {
		remaining = 0
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, bar, lipgloss.NewStyle().Width(remaining).Render(""))
}

// SelectedRecord returns the highlighted record, or nil when the view is empty.
func (m Model) SelectedRecord() *model.Record {
	item, ok := m.list.SelectedItem().(RecordItem)
	if !ok {
		return nil
	}
	r := item.Record
	return &r
}

// Filter returns the active filter.
func (m Model) Filter() view.FilterState { return m.filter }

// Sort returns the active sort.
func (m Model) Sort() view.SortState { return m.order }

// VisibleRecords returns the records of the current view in display order.
func (m Model) VisibleRecords() []model.Record { return m.visible }

// Status returns the status bar message and whether it is an error.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

// IsSplitView reports whether the detail pane is shown beside the list.
func (m Model) IsSplitView() bool { return m.isSplitView }

// FocusState returns "list", "detail" or "help".
func (m Model) FocusState() string {
	switch m.focused {
	case focusDetail:
		return "detail"
	case focusHelp:
		return "help"
	default:
		return "list"
	}
}

func nextBucket(cur bucket.ForecastBucket) bucket.ForecastBucket {
	all := bucket.AllBuckets()
	if cur == "" {
		return all[0]
	}
	for i, b := range all {
		if b == cur && i+1 < len(all) {
			return all[i+1]
		}
	}
	return ""
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
