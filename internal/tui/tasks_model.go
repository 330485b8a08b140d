package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/nav"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/parser"
	"github.com/balkashynov/zen/internal/store"
)

// TaskBoard is what the tasks screen needs from the task store
type TaskBoard interface {
	Filter(status models.SessionStatus, term string) []models.Task
	Filtered() []models.Task
	Criteria() store.Criteria
	Edit(ctx context.Context, id string, patch models.TaskPatch) error
	Delete(ctx context.Context, id string) error
}

// TasksModel lists the user's tasks
type TasksModel struct {
	ctx   context.Context
	board TaskBoard
	notes *notify.Queue
	now   func() time.Time

	width  int
	height int

	rows      []models.Task
	pager     pager
	search    textinput.Model
	searching bool
	confirm   bool

	start     key.Binding
	highlight *Highlight
	keys      listKeys
	help      help.Model
	status    notify.Notification

	outcome Outcome
}

// NewTasksModel shows board under its remembered filter
func NewTasksModel(ctx context.Context, board TaskBoard, notes *notify.Queue, animations bool) TasksModel {
	m := TasksModel{
		ctx:       ctx,
		board:     board,
		notes:     notes,
		now:       time.Now,
		search:    newSearchInput("Search tasks..."),
		start:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		highlight: NewHighlight(animations),
		keys:      newListKeys("sessions"),
		help:      help.New(),
	}
	m.keys.Open.SetEnabled(false)
	m.search.SetValue(board.Criteria().Term)
	m.refresh()
	return m
}

func (m TasksModel) Init() tea.Cmd {
	return m.highlight.Tick()
}

// Outcome is what the app loop should do next
func (m TasksModel) Outcome() Outcome { return m.outcome }

func (m TasksModel) Rows() []models.Task { return m.rows }

func (m *TasksModel) refresh() {
	m.rows = m.board.Filtered()
	m.pager.setCount(len(m.rows))
}

func (m TasksModel) selected() (models.Task, bool) {
	if len(m.rows) == 0 {
		return models.Task{}, false
	}
	return m.rows[m.pager.selected], true
}

func (m TasksModel) applyFilter(status models.SessionStatus, term string) TasksModel {
	m.board.Filter(status, term)
	m.pager.selected = 0
	m.refresh()
	m.highlight.Reset()
	return m
}

func (m TasksModel) edit(id string, patch models.TaskPatch) tea.Cmd {
	ctx, board := m.ctx, m.board
	return func() tea.Msg {
		return boardChangedMsg{err: board.Edit(ctx, id, patch)}
	}
}

func (m TasksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.pager.setPerPage(msg.Height - 8)
		return m, nil

	case highlightTickMsg:
		m.highlight.Advance()
		return m, m.highlight.Tick()

	case boardChangedMsg:
		m.refresh()
		if m.notes != nil {
			if n := m.notes.Drain(); len(n) > 0 {
				m.status = n[len(n)-1]
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.searching:
			return m.handleSearchKey(msg)
		case m.confirm:
			m.confirm = false
			t, ok := m.selected()
			if !ok || strings.ToLower(msg.String()) != "y" {
				return m, nil
			}
			ctx, board := m.ctx, m.board
			return m, func() tea.Msg { return boardChangedMsg{err: board.Delete(ctx, t.ID)} }
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m TasksModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.board.Criteria().Term)
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m.applyFilter(m.board.Criteria().Status, strings.TrimSpace(m.search.Value())), nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m TasksModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), msg.Type == tea.KeyEsc:
		m.outcome = Outcome{Action: ActionQuit}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.pager.up() {
			m.highlight.Reset()
		}
	case key.Matches(msg, m.keys.Down):
		if m.pager.down() {
			m.highlight.Reset()
		}
	case key.Matches(msg, m.keys.PrevPage):
		m.pager.prev()
	case key.Matches(msg, m.keys.NextPage):
		m.pager.next()

	case key.Matches(msg, m.keys.Add):
		m.outcome = Outcome{Action: ActionAddTask}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.outcome = Outcome{Action: ActionEditTask, ID: t.ID}
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.Complete):
		if t, ok := m.selected(); ok && t.Status != models.StatusCompleted {
			return m, m.edit(t.ID, models.TaskPatch{Status: models.Ptr(models.StatusCompleted)})
		}
	case key.Matches(msg, m.start):
		if t, ok := m.selected(); ok && t.Status == models.StatusPending {
			return m, m.edit(t.ID, models.TaskPatch{Status: models.Ptr(models.StatusInProgress)})
		}
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.confirm = true
		}
	case key.Matches(msg, m.keys.Filter):
		c := m.board.Criteria()
		next := filterCycle[0]
		for i, s := range filterCycle {
			if s == c.Status {
				next = filterCycle[(i+1)%len(filterCycle)]
				break
			}
		}
		return m.applyFilter(next, c.Term), nil
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Switch):
		m.outcome = Outcome{Action: ActionNavigate, Route: nav.Route{Screen: nav.Dashboard}}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logout):
		m.outcome = Outcome{Action: ActionLogout}
		return m, tea.Quit
	}
	return m, nil
}

func (m TasksModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	c := m.board.Criteria()
	filter := "Filter: " + filterLabel(c.Status)
	filter = strings.Replace(filter, "Sessions", "Tasks", 1)
	if c.Term != "" {
		filter += fmt.Sprintf(" · Search: %q", c.Term)
	}

	var footer string
	switch {
	case m.searching:
		footer = m.search.View()
	case m.confirm:
		t, _ := m.selected()
		footer = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).
			Render(fmt.Sprintf("Delete %q? This action cannot be undone. (y/N)", t.Title))
	default:
		footer = m.help.ShortHelpView(append(m.keys.ShortHelp(), m.start))
		if line := renderNotification(m.status); line != "" {
			footer = line + "\n" + footer
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Your Tasks"),
		mutedStyle.Render(filter),
		"",
		m.renderTable(),
		footer,
	)
}

func (m TasksModel) renderTable() string {
	if len(m.rows) == 0 {
		return cardStyle.Width(m.width - 2).Render(mutedStyle.Italic(true).Render("No tasks found"))
	}

	now := m.now()
	titleWidth := max(16, m.width-46)
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentSoft)).
		Render(fmt.Sprintf("  %-*s %-12s %-8s %-10s", titleWidth, "TITLE", "STATUS", "PRIORITY", "DUE"))

	lines := []string{header}
	start, end := m.pager.window()
	for i := start; i < end; i++ {
		t := m.rows[i]
		title := truncate(t.Title, titleWidth)
		if i == m.pager.selected {
			title = m.highlight.Render(t.Title, titleWidth)
		}
		status := lipgloss.NewStyle().Foreground(statusColor(t.Status)).Render(fmt.Sprintf("%-12s", t.Status.Label()))
		priority := lipgloss.NewStyle().Foreground(priorityColor(t.Priority)).Render(fmt.Sprintf("%-8s", t.Priority))

		due := parser.FormatDueDate(t.DueDate, now)
		if due == "" {
			due = "-"
		}
		dueStyle := mutedStyle
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != models.StatusCompleted {
			dueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
		}

		marker := "  "
		if i == m.pager.selected {
			marker = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent)).Bold(true).Render("› ")
		}
		lines = append(lines, fmt.Sprintf("%s%s%s %s %s %s", marker, title,
			strings.Repeat(" ", max(0, titleWidth-lipgloss.Width(title))),
			status, priority, dueStyle.Render(due)))
		if i == m.pager.selected && t.Description != "" {
			lines = append(lines, "    "+mutedStyle.Italic(true).Render(truncate(t.Description, m.width-8)))
		}
	}
	if m.pager.pages() > 1 {
		lines = append(lines, helpStyle.Render(fmt.Sprintf("Page %d/%d (%d tasks)",
			m.pager.page+1, m.pager.pages(), len(m.rows))))
	}
	return cardStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}
