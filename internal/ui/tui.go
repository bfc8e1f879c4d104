// Package ui provides the optional terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/task"
)

// RunTUI starts the read-only task viewer. newStore builds a fresh store
// for each reload so edits made from another terminal show up live.
func RunTUI(ctx context.Context, newStore func() *task.Store) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(newStore)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// IsTTY reports whether w is attached to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}

type tuiModel struct {
	newStore func() *task.Store

	store        *task.Store
	loadErr      error
	warnings     []string
	tickInterval time.Duration

	filter        task.Priority
	hideCompleted bool
	showHelp      bool
}

type tickMsg time.Time

func newTUIModel(newStore func() *task.Store) *tuiModel {
	return &tuiModel{
		newStore:     newStore,
		tickInterval: time.Second,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "c":
			m.hideCompleted = !m.hideCompleted
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "1":
			m.filter = task.PriorityHigh
			return m, nil
		case "2":
			m.filter = task.PriorityMedium
			return m, nil
		case "3":
			m.filter = task.PriorityLow
			return m, nil
		case "0":
			m.filter = ""
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error loading tasks file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.store == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s (0 to clear)\n\n", m.filter)
	}
	if m.hideCompleted {
		b.WriteString("Hiding completed (c to show)\n\n")
	}

	writeOverview(&b, m.store.Stats())
	writeTasks(&b, m.store.List(task.Filter{Priority: m.filter, HideCompleted: m.hideCompleted}))
	for _, w := range m.warnings {
		b.WriteString("Warning: " + w + "\n")
	}
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func (m *tuiModel) refresh() {
	store := m.newStore()
	warnings, err := store.Load()
	if err != nil {
		m.loadErr = err
		m.store = nil
		return
	}
	m.loadErr = nil
	m.warnings = warnings
	m.store = store
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func writeTitle(b *strings.Builder) {
	title := "Taskdeck"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, stats task.Stats) {
	fmt.Fprintf(b, "  Open: %d  Done: %d  Overdue: %d\n\n",
		stats.Incomplete, stats.Completed, stats.Overdue)
}

func writeTasks(b *strings.Builder, entries []task.Entry) {
	b.WriteString("Tasks\n\n")
	if len(entries) == 0 {
		b.WriteString("  No tasks.\n\n")
		return
	}
	now := time.Now()
	for _, e := range entries {
		fmt.Fprintf(b, "  %3d. %s\n", e.Index, e.Task.Render(now))
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh now\n")
	b.WriteString("  c            Toggle completed tasks\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter by high priority\n")
	b.WriteString("  2            Filter by medium priority\n")
	b.WriteString("  3            Filter by low priority\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	fmt.Fprintf(b, "Press h for help | q to quit | Refreshing every %s\n", interval)
}
