package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focusdo/internal/modules/session/domain"
	sessiondto "focusdo/internal/modules/session/dto"
	"focusdo/internal/ui/theme"
)

// sessionPort is the slice of the session controller this view needs.
type sessionPort interface {
	Snapshot(ctx context.Context) sessiondto.Snapshot
	Complete(ctx context.Context, actionID string, actualMin int) error
	Uncomplete(ctx context.Context, actionID string) error
	Skip(ctx context.Context, actionID string) error
	Reactivate(ctx context.Context, actionID string) error
	Focus(ctx context.Context, actionID string) error
	Extend(ctx context.Context, actionID string, minutes int) error
	LogTime(ctx context.Context, minutes int) error
	Finish(ctx context.Context) error
	Summary(ctx context.Context) domain.Summary
	Sync(ctx context.Context) (sessiondto.SyncOutput, error)
}

type tickMsg time.Time

type refreshMsg struct{ snap sessiondto.Snapshot }

type syncDoneMsg struct {
	out sessiondto.SyncOutput
	err error
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Focus    key.Binding
	Complete key.Binding
	Undo     key.Binding
	Skip     key.Binding
	Extend   key.Binding
	Finish   key.Binding
	Sync     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Focus:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "focus action")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo / reactivate")),
		Skip:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		Extend:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "+5 min")),
		Finish:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish session")),
		Sync:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sync now")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Skip, k.Sync, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus},
		{k.Complete, k.Undo, k.Skip, k.Extend},
		{k.Finish, k.Sync, k.Help, k.Quit},
	}
}

// Model is the focus-timer view: the action list on the left, the timer
// and stats pane on the right. Business logic lives behind sessionPort;
// this model only routes keys and renders snapshots.
type Model struct {
	session sessionPort

	snap      sessiondto.Snapshot
	cursor    int
	keys      keyMap
	help      help.Model
	showHelp  bool
	status    string
	startedAt time.Time
	elapsed   time.Duration
	width     int
	height    int
	finished  bool
}

func NewModel(session sessionPort) Model {
	return Model{
		session:   session,
		keys:      defaultKeys(),
		help:      help.New(),
		startedAt: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{snap: m.session.Snapshot(context.Background())}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.elapsed = time.Since(m.startedAt)
		// keep the session's logged minutes roughly in step with the timer
		minutes := int(m.elapsed.Minutes())
		if minutes > m.snap.ActualSpent && !m.finished {
			_ = m.session.LogTime(context.Background(), minutes)
		}
		return m, tea.Batch(tick(), m.refresh())

	case refreshMsg:
		m.snap = msg.snap
		if m.cursor >= len(m.snap.Actions) && m.cursor > 0 {
			m.cursor = len(m.snap.Actions) - 1
		}
		return m, nil

	case syncDoneMsg:
		if msg.err != nil {
			m.status = "sync: " + msg.err.Error()
		} else if msg.out.Failed > 0 {
			m.status = fmt.Sprintf("synced %d, %d failed", msg.out.Synced, msg.out.Failed)
		} else {
			m.status = fmt.Sprintf("synced %d operations", msg.out.Synced)
		}
		return m, m.refresh()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Actions)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		if a, ok := m.cursorAction(); ok {
			if err := m.session.Focus(ctx, a.ID); err != nil {
				m.status = err.Error()
			}
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Complete):
		if a, ok := m.cursorAction(); ok {
			actual := int(m.elapsed.Minutes())
			if err := m.session.Complete(ctx, a.ID, actual); err != nil {
				m.status = err.Error()
			}
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Undo):
		if a, ok := m.cursorAction(); ok {
			var err error
			if a.Status == domain.StatusCompleted {
				err = m.session.Uncomplete(ctx, a.ID)
			} else {
				err = m.session.Reactivate(ctx, a.ID)
			}
			if err != nil {
				m.status = err.Error()
			}
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Skip):
		if a, ok := m.cursorAction(); ok {
			if err := m.session.Skip(ctx, a.ID); err != nil {
				m.status = err.Error()
			}
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Extend):
		if a, ok := m.cursorAction(); ok {
			if err := m.session.Extend(ctx, a.ID, 5); err != nil {
				m.status = err.Error()
			} else {
				m.status = "added 5 minutes to " + a.Text
			}
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Finish):
		if err := m.session.Finish(ctx); err != nil {
			m.status = err.Error()
		} else {
			m.finished = true
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Sync):
		m.status = "syncing..."
		return m, func() tea.Msg {
			out, err := m.session.Sync(context.Background())
			return syncDoneMsg{out: out, err: err}
		}
	}
	return m, nil
}

func (m Model) cursorAction() (domain.Action, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Actions) {
		return domain.Action{}, false
	}
	return m.snap.Actions[m.cursor], true
}

func (m Model) View() string {
	left := m.renderActions()
	right := m.renderSidebar()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{
		theme.Title.Render("focusdo") + "  " + theme.Muted.Render(m.snap.Goal),
		body,
	}
	if m.status != "" {
		sections = append(sections, theme.Muted.Render(m.status))
	}
	if m.snap.Error != "" {
		sections = append(sections, theme.Alert.Render(m.snap.Error))
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return theme.App.Render(strings.Join(sections, "\n\n"))
}

func (m Model) renderActions() string {
	if len(m.snap.Actions) == 0 {
		return theme.Pane.Render(theme.Muted.Render("no actions yet"))
	}
	lines := make([]string, 0, len(m.snap.Actions))
	for i, a := range m.snap.Actions {
		marker := "[ ]"
		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch a.Status {
		case domain.StatusCompleted:
			marker = "[x]"
			style = theme.Done
		case domain.StatusSkipped:
			marker = "[-]"
			style = theme.Skipped
		case domain.StatusActive:
			marker = "[>]"
			style = theme.Focus
		}
		label := a.Text
		if a.HasEstimate {
			label = fmt.Sprintf("%s (%dm)", a.Text, a.EstimateMin)
		}
		line := style.Render(fmt.Sprintf("%s %s", marker, label))
		if i == m.cursor {
			line = theme.Hot.Render("› ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return theme.PaneActive.Render(strings.Join(lines, "\n"))
}

func (m Model) renderSidebar() string {
	stats := m.snap.Stats
	elapsed := m.elapsed.Round(time.Second)
	lines := []string{
		theme.Title.Render("timer"),
		theme.Hot.Render(fmt.Sprintf("%02d:%02d:%02d", int(elapsed.Hours()), int(elapsed.Minutes())%60, int(elapsed.Seconds())%60)),
		"",
		theme.Title.Render("progress"),
		fmt.Sprintf("%d/%d done (%.0f%%)", stats.CompletedActions, stats.TotalActions, stats.CompletionRate),
		theme.Muted.Render(fmt.Sprintf("estimate %dm, actual %dm", stats.TotalEstimateMin, stats.TotalActualMin)),
	}
	if m.snap.PendingSync > 0 {
		lines = append(lines, "", theme.Alert.Render(fmt.Sprintf("%d ops awaiting sync", m.snap.PendingSync)))
	}
	if m.snap.SessionComplete {
		summary := m.session.Summary(context.Background())
		lines = append(lines, "", theme.Done.Render(summary.Title), theme.Muted.Render(summary.Message))
	}
	return theme.Pane.Render(strings.Join(lines, "\n"))
}
