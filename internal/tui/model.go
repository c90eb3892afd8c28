package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"killpath/internal/app"
	"killpath/internal/matcher"
)

var lookupTimeout = 30 * time.Second

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	Find(ctx context.Context, path string) (app.FindResult, error)
	Terminate(ctx context.Context, path string, pids []int, dryRun bool) []app.Event
}

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller
	paths      []string
	dryRun     bool

	list     list.Model
	items    []processItem
	selected map[int]bool

	statusMsg string
	problems  []string
	lastKill  []app.Event

	loading bool

	width  int
	height int

	lastUpdated time.Time
}

// New constructs a TUI model for the given target paths.
func New(ctrl Controller, paths []string, dryRun bool) *Model {
	delegate := list.NewDefaultDelegate()
	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Matching processes"
	lst.SetShowHelp(false)
	lst.SetFilteringEnabled(false)
	lst.DisableQuitKeybindings()

	return &Model{
		controller: ctrl,
		paths:      append([]string(nil), paths...),
		dryRun:     dryRun,
		list:       lst,
		statusMsg:  "Collecting process listings…",
		loading:    true,
		selected:   make(map[int]bool),
	}
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller, paths []string, dryRun bool) error {
	m := New(ctrl, paths, dryRun)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return loadProcessesCmd(m.controller, m.paths)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 6 {
			m.list.SetSize(msg.Width, msg.Height-6)
		}

	case processesLoadedMsg:
		m.loading = false
		m.problems = msg.problems
		m.items = msg.items
		newSelected := make(map[int]bool)
		items := make([]list.Item, 0, len(msg.items))
		for _, it := range msg.items {
			it.Selected = m.selected[it.PID]
			if it.Selected {
				newSelected[it.PID] = true
			}
			items = append(items, it)
		}
		m.selected = newSelected
		m.list.SetItems(items)
		m.lastUpdated = time.Now()
		m.statusMsg = fmt.Sprintf("%d matching process(es). Press r to refresh, q to quit.", len(msg.items))

	case killedMsg:
		m.lastKill = msg.events
		m.statusMsg = summarizeKill(msg.events, m.dryRun)
		m.selected = make(map[int]bool)
		m.loading = true
		return m, loadProcessesCmd(m.controller, m.paths)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, loadProcessesCmd(m.controller, m.paths)
		case " ":
			m.toggleCurrentSelection()
		case "a":
			m.selectAll()
		case "c":
			if len(m.selected) > 0 {
				m.clearSelection()
			}
		case "x":
			if batch := m.killBatch(); len(batch) > 0 {
				m.statusMsg = "Terminating…"
				return m, killCmd(m.controller, batch, m.dryRun)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	statusStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	if len(m.items) == 0 {
		statusStyle = statusStyle.Foreground(lipgloss.Color("203"))
	}
	b.WriteString(statusStyle.Render(m.statusMsg))
	b.WriteByte('\n')

	if m.loading {
		b.WriteString("Loading processes…\n")
	}

	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	for _, p := range m.problems {
		b.WriteString(warnStyle.Render(p))
		b.WriteByte('\n')
	}

	if len(m.list.Items()) == 0 && !m.loading {
		b.WriteString("No running instances found.\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteByte('\n')
	}

	if len(m.lastKill) > 0 {
		lines := make([]string, 0, len(m.lastKill))
		for _, ev := range m.lastKill {
			lines = append(lines, ev.Message())
		}
		detailStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginBottom(1)
		b.WriteString(detailStyle.Render(strings.Join(lines, "\n")))
		b.WriteByte('\n')
	}

	help := "Commands: q quit • r reload • space select • a select all • c clear selection • x kill"
	if m.dryRun {
		help += " (dry run)"
	}
	if count := len(m.selected); count > 0 {
		help += fmt.Sprintf(" • selected=%d", count)
	}
	if !m.lastUpdated.IsZero() {
		help += fmt.Sprintf(" • last update %s", m.lastUpdated.Format(time.Kitchen))
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// processItem adapts one matched record to the bubbles list item interface.
type processItem struct {
	Path     string
	Image    string
	ExecPath string
	PID      int
	Selected bool
}

func (p processItem) Title() string {
	mark := " "
	if p.Selected {
		mark = "✓"
	}
	return fmt.Sprintf("[%s] pid=%d %s", mark, p.PID, p.Image)
}

func (p processItem) Description() string {
	return fmt.Sprintf("exe=%s | target=%s", p.ExecPath, p.Path)
}

func (p processItem) FilterValue() string {
	return fmt.Sprintf("%d %s %s", p.PID, p.ExecPath, p.Path)
}

func (m *Model) toggleCurrentSelection() {
	idx := m.list.Index()
	items := m.list.Items()
	if idx < 0 || idx >= len(items) {
		return
	}
	item, ok := items[idx].(processItem)
	if !ok {
		return
	}
	if item.Selected {
		delete(m.selected, item.PID)
	} else {
		m.selected[item.PID] = true
	}
	item.Selected = !item.Selected
	m.list.SetItem(idx, item)
}

func (m *Model) selectAll() {
	for i, it := range m.list.Items() {
		if pi, ok := it.(processItem); ok && !pi.Selected {
			pi.Selected = true
			m.selected[pi.PID] = true
			m.list.SetItem(i, pi)
		}
	}
}

func (m *Model) clearSelection() {
	m.selected = make(map[int]bool)
	items := m.list.Items()
	for i, it := range items {
		if pi, ok := it.(processItem); ok && pi.Selected {
			pi.Selected = false
			m.list.SetItem(i, pi)
		}
	}
}

// killBatch groups the selected pids, or the highlighted one when nothing
// is selected, by target path.
func (m *Model) killBatch() map[string][]int {
	batch := make(map[string][]int)
	for _, it := range m.list.Items() {
		if pi, ok := it.(processItem); ok && m.selected[pi.PID] {
			batch[pi.Path] = append(batch[pi.Path], pi.PID)
		}
	}
	if len(batch) > 0 {
		return batch
	}
	idx := m.list.Index()
	items := m.list.Items()
	if idx < 0 || idx >= len(items) {
		return nil
	}
	if pi, ok := items[idx].(processItem); ok {
		batch[pi.Path] = []int{pi.PID}
	}
	return batch
}

func summarizeKill(events []app.Event, dryRun bool) string {
	ok, failed := 0, 0
	for _, ev := range events {
		if ev.Kind == app.EventTerminateRequested {
			ok++
		} else {
			failed++
		}
	}
	prefix := "Terminated"
	if dryRun {
		prefix = "Would terminate"
	}
	if failed == 0 {
		return fmt.Sprintf("%s %d process(es).", prefix, ok)
	}
	return fmt.Sprintf("%s %d process(es), %d failed.", prefix, ok, failed)
}

type processesLoadedMsg struct {
	items    []processItem
	problems []string
}

type killedMsg struct {
	events []app.Event
}

// loadProcessesCmd looks up every path under its own deadline. A pid matched
// by several paths is listed once, under the first of them.
func loadProcessesCmd(ctrl Controller, paths []string) tea.Cmd {
	return func() tea.Msg {
		var msg processesLoadedMsg
		seen := make(map[int]bool)
		for _, path := range paths {
			res, err := findOne(ctrl, path)
			if err != nil {
				msg.problems = append(msg.problems, fmt.Sprintf("%s: %v", path, err))
				continue
			}
			if !res.Running() {
				msg.problems = append(msg.problems, fmt.Sprintf("%s is not running", res.Image))
				continue
			}
			for _, rec := range res.Records {
				pid, ok := matcher.ParsePID(rec.ProcessID)
				if !ok || seen[pid] {
					continue
				}
				seen[pid] = true
				msg.items = append(msg.items, processItem{
					Path:     path,
					Image:    res.Image,
					ExecPath: rec.ExecutablePath,
					PID:      pid,
				})
			}
		}
		return msg
	}
}

func findOne(ctrl Controller, path string) (app.FindResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	return ctrl.Find(ctx, path)
}

func killCmd(ctrl Controller, batch map[string][]int, dryRun bool) tea.Cmd {
	return func() tea.Msg {
		paths := make([]string, 0, len(batch))
		for path := range batch {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		var events []app.Event
		for _, path := range paths {
			events = append(events, ctrl.Terminate(context.Background(), path, batch[path], dryRun)...)
		}
		return killedMsg{events: events}
	}
}
