package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/zen/internal/metrics"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/nav"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/store"
	"github.com/balkashynov/zen/internal/timer"
)

// SessionBoard is what the dashboard needs from the session store
type SessionBoard interface {
	Filter(status models.SessionStatus, term string) []models.Session
	Filtered() []models.Session
	Criteria() store.Criteria
	Metrics() metrics.Metrics
	Chart() []metrics.Bucket
	Edit(ctx context.Context, id string, patch models.SessionPatch) error
	Delete(ctx context.Context, id string) error
}

// Action is what a list screen asks the app loop to do after it closes
type Action int

const (
	ActionQuit Action = iota
	ActionNavigate
	ActionAddSession
	ActionEditSession
	ActionAddTask
	ActionEditTask
	ActionLogout
)

// Outcome is the result of a list screen
type Outcome struct {
	Action Action
	Route  nav.Route // for ActionNavigate
	ID     string    // for the edit actions
}

// filterCycle is the order the status filter steps through
var filterCycle = []models.SessionStatus{"", models.StatusCompleted, models.StatusPending, models.StatusInProgress}

func filterLabel(s models.SessionStatus) string {
	if s == "" {
		return "All Sessions"
	}
	return s.Label()
}

// boardChangedMsg follows a store write made from a list screen
type boardChangedMsg struct{ err error }

type listKeys struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Open     key.Binding
	Add      key.Binding
	Edit     key.Binding
	Complete key.Binding
	Delete   key.Binding
	Filter   key.Binding
	Search   key.Binding
	Switch   key.Binding
	Logout   key.Binding
	Quit     key.Binding
}

func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Open, k.Add, k.Edit, k.Complete, k.Delete, k.Filter, k.Search, k.Switch, k.Quit}
}

func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Open, k.Add, k.Edit, k.Complete, k.Delete},
		{k.Filter, k.Search, k.Switch, k.Logout, k.Quit},
	}
}

func newListKeys(switchHelp string) listKeys {
	return listKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "nav")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		PrevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
		Open:     key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "timer")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Delete:   key.NewBinding(key.WithKeys("x", "d"), key.WithHelp("x", "delete")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Switch:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", switchHelp)),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func newSearchInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = placeholder
	ti.CharLimit = 80
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
	return ti
}

// DashboardModel lists sessions with metrics, chart, filter and search
type DashboardModel struct {
	ctx   context.Context
	board SessionBoard
	notes *notify.Queue
	user  string

	width  int
	height int

	rows      []models.Session
	pager     pager
	search    textinput.Model
	searching bool
	confirm   bool // delete confirmation pending

	highlight *Highlight
	keys      listKeys
	help      help.Model
	status    notify.Notification

	outcome Outcome
}

// NewDashboardModel shows board for user under its remembered filter
func NewDashboardModel(ctx context.Context, board SessionBoard, user string, notes *notify.Queue, animations bool) DashboardModel {
	m := DashboardModel{
		ctx:       ctx,
		board:     board,
		notes:     notes,
		user:      user,
		search:    newSearchInput("Search sessions..."),
		highlight: NewHighlight(animations),
		keys:      newListKeys("tasks"),
		help:      help.New(),
	}
	m.search.SetValue(board.Criteria().Term)
	m.refresh()
	m.pullNotes()
	return m
}

// Init starts the row highlight
func (m DashboardModel) Init() tea.Cmd {
	return m.highlight.Tick()
}

// Outcome is what the app loop should do next
func (m DashboardModel) Outcome() Outcome { return m.outcome }

// Rows are the sessions currently listed
func (m DashboardModel) Rows() []models.Session { return m.rows }

func (m *DashboardModel) refresh() {
	m.rows = m.board.Filtered()
	m.pager.setCount(len(m.rows))
}

func (m *DashboardModel) pullNotes() {
	if m.notes == nil {
		return
	}
	if n := m.notes.Drain(); len(n) > 0 {
		m.status = n[len(n)-1]
	}
}

func (m DashboardModel) selected() (models.Session, bool) {
	if len(m.rows) == 0 {
		return models.Session{}, false
	}
	return m.rows[m.pager.selected], true
}

func (m DashboardModel) applyFilter(status models.SessionStatus, term string) DashboardModel {
	m.board.Filter(status, term)
	m.pager.selected = 0
	m.refresh()
	m.highlight.Reset()
	return m
}

// Update handles navigation and actions
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// cards, chart, filter bar and help take roughly this much
		m.pager.setPerPage(msg.Height - 22)
		return m, nil

	case highlightTickMsg:
		m.highlight.Advance()
		return m, m.highlight.Tick()

	case boardChangedMsg:
		m.refresh()
		m.pullNotes()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		if m.confirm {
			return m.handleConfirmKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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

func (m DashboardModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirm = false
	s, ok := m.selected()
	if !ok || (msg.String() != "y" && msg.String() != "Y") {
		return m, nil
	}
	ctx, board, id := m.ctx, m.board, s.ID
	return m, func() tea.Msg {
		return boardChangedMsg{err: board.Delete(ctx, id)}
	}
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.outcome = Outcome{Action: ActionQuit}
		return m, tea.Quit

	case msg.Type == tea.KeyEsc:
		// Esc clears an active search before anything else
		if c := m.board.Criteria(); c.Term != "" {
			m.search.SetValue("")
			return m.applyFilter(c.Status, ""), nil
		}
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

	case key.Matches(msg, m.keys.Open):
		if s, ok := m.selected(); ok {
			m.outcome = Outcome{Action: ActionNavigate, Route: nav.SessionRoute(s.ID)}
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.Add):
		m.outcome = Outcome{Action: ActionAddSession}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Edit):
		if s, ok := m.selected(); ok {
			m.outcome = Outcome{Action: ActionEditSession, ID: s.ID}
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.Complete):
		s, ok := m.selected()
		if !ok || s.Status != models.StatusPending {
			return m, nil
		}
		ctx, board, id := m.ctx, m.board, s.ID
		return m, func() tea.Msg {
			return boardChangedMsg{err: board.Edit(ctx, id, models.StatusPatch(models.StatusCompleted))}
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

	// The metric cards double as filters
	case msg.String() == "1":
		return m.applyFilter("", m.board.Criteria().Term), nil
	case msg.String() == "2":
		return m.applyFilter(models.StatusCompleted, m.board.Criteria().Term), nil
	case msg.String() == "3":
		return m.applyFilter(models.StatusPending, m.board.Criteria().Term), nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Switch):
		m.outcome = Outcome{Action: ActionNavigate, Route: nav.Route{Screen: nav.Tasks}}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logout):
		m.outcome = Outcome{Action: ActionLogout}
		return m, tea.Quit
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("🧘 zen"),
		"  ",
		mutedStyle.Render("Welcome back, "+m.user),
	)

	listWidth := m.width
	var details string
	if m.width >= 100 {
		listWidth = m.width * 60 / 100
		details = m.renderDetails(m.width - listWidth - 1)
	}
	list := m.renderList(listWidth)
	if details != "" {
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, " ", details)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.renderCards(),
		m.renderChart(),
		m.renderFilterBar(),
		list,
		m.renderFooter(),
	)
}

func (m DashboardModel) renderCards() string {
	mt := m.board.Metrics()
	card := func(n int, title string, value int, desc, color string) string {
		return cardStyle.Width(max(20, m.width/3-2)).Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).
				Render(fmt.Sprintf("%s [%d]", title, n)),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(fmt.Sprint(value)),
			mutedStyle.Render(desc),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card(1, "Total Sessions", mt.Total, "All meditation sessions", ColorAccent),
		card(2, "Completed Sessions", mt.Completed, "Your meditation achievements", ColorSuccess),
		card(3, "Pending Sessions", mt.Pending, "Upcoming meditations", metrics.ColorPending),
	)
}

func (m DashboardModel) renderChart() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session Distribution"))
	b.WriteString("\n")

	mt := m.board.Metrics()
	if mt.Total == 0 {
		b.WriteString(mutedStyle.Render("No data available"))
		return b.String()
	}

	barWidth := max(10, min(m.width-30, 50))
	for _, bucket := range m.board.Chart() {
		n := bucket.Value * barWidth / mt.Total
		share := float64(bucket.Value) / float64(mt.Total) * 100
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(bucket.Color)).Render(strings.Repeat("█", n))
		fmt.Fprintf(&b, "%-12s %s%s %s\n", bucket.Name, bar,
			strings.Repeat(" ", barWidth-n), mutedStyle.Render(fmt.Sprintf("%.0f%%", share)))
	}
	fmt.Fprintf(&b, "%s", mutedStyle.Render(fmt.Sprintf("Completion rate %.0f%%", mt.CompletionRate())))
	return b.String()
}

func (m DashboardModel) renderFilterBar() string {
	c := m.board.Criteria()
	parts := []string{"Filter: " + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentSoft)).Render(filterLabel(c.Status))}
	if c.Term != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", c.Term))
	}
	return "\n" + mutedStyle.Render(strings.Join(parts, " · "))
}

func (m DashboardModel) renderList(width int) string {
	var b strings.Builder

	if len(m.rows) == 0 {
		b.WriteString(mutedStyle.Italic(true).Render("No meditation sessions found"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("press a to schedule your first session"))
		return cardStyle.Width(width - 2).Render(b.String())
	}

	titleWidth := max(16, width-44)
	start, end := m.pager.window()
	for i := start; i < end; i++ {
		s := m.rows[i]
		title := truncate(s.Title, titleWidth)
		if i == m.pager.selected {
			title = m.highlight.Render(s.Title, titleWidth)
		}
		dot := lipgloss.NewStyle().Foreground(statusColor(s.Status)).Render("●")
		row := fmt.Sprintf("%s %s%s %4dm  %-22s", dot, title,
			strings.Repeat(" ", max(0, titleWidth-lipgloss.Width(title))),
			s.Duration, scheduleLabel(s))
		if i == m.pager.selected {
			row = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent)).Render("› ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if m.pager.pages() > 1 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("Page %d/%d (%d sessions)",
			m.pager.page+1, m.pager.pages(), len(m.rows))))
	}
	return cardStyle.Width(width - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func (m DashboardModel) renderDetails(width int) string {
	s, ok := m.selected()
	if !ok {
		return ""
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).Render(s.Title),
		"",
		"Status: " + lipgloss.NewStyle().Foreground(statusColor(s.Status)).Bold(true).Render(s.Status.Label()),
		fmt.Sprintf("Duration: %d minutes", s.Duration),
		"When: " + scheduleLabel(s),
	}
	if s.ElapsedTime != nil {
		lines = append(lines, "Elapsed: "+timer.FormatClock(*s.ElapsedTime))
	}
	if s.Notes != "" {
		lines = append(lines, "", mutedStyle.Italic(true).Width(width-6).Render(s.Notes))
	}
	return cardStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m DashboardModel) renderFooter() string {
	switch {
	case m.searching:
		return m.search.View()
	case m.confirm:
		s, _ := m.selected()
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).
			Render(fmt.Sprintf("Delete %q? This action cannot be undone. (y/N)", s.Title))
	}
	footer := m.help.View(m.keys)
	if line := renderNotification(m.status); line != "" {
		footer = line + "\n" + footer
	}
	return footer
}

// renderNotification colors a notification by level
func renderNotification(n notify.Notification) string {
	if n.Message == "" {
		return ""
	}
	color := ColorSecondaryText
	switch n.Level {
	case notify.Error:
		color = ColorError
	case notify.Success:
		color = ColorSuccess
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(n.Message)
}
