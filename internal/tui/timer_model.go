package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/nav"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/timer"
)

// SessionSource is what the timer screen needs from the session store
type SessionSource interface {
	Get(id string) (models.Session, bool)
	Refresh(ctx context.Context, id string) (models.Session, error)
	Checkpoint(ctx context.Context, id string, patch models.SessionPatch) error
}

// TimerOptions wires a timer screen to storage
type TimerOptions struct {
	Sessions SessionSource
	// Engine builds the engine for the session; defaults to timer.New
	Engine func(models.Session) *timer.Engine
	// Lease is renewed after every checkpoint when set
	Lease    timer.Lease
	Holder   string
	LeaseTTL time.Duration
	// Notes is drained into the status line after each write
	Notes      *notify.Queue
	Logger     *slog.Logger
	Animations bool
}

// statusTicks is how many seconds a status message stays up while running
const statusTicks = 4

type timerTickMsg struct{ gen int }

type writeDoneMsg struct {
	write timer.Write
	err   error
}

type timerKeys struct {
	Toggle   key.Binding
	Complete key.Binding
	Back     key.Binding
}

func (k timerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Complete, k.Back}
}

func (k timerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newTimerKeys() timerKeys {
	return timerKeys{
		Toggle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "start")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Back:     key.NewBinding(key.WithKeys("esc", "b", "q", "ctrl+c"), key.WithHelp("esc", "back to dashboard")),
	}
}

// TimerModel is the per-session timer screen
type TimerModel struct {
	ctx  context.Context
	opts TimerOptions

	width  int
	height int

	session models.Session
	found   bool
	engine  *timer.Engine
	seq     *timer.Sequencer

	bar       progress.Model
	keys      timerKeys
	help      help.Model
	highlight *Highlight

	gen       int // invalidates ticks scheduled before a pause
	status    notify.Notification
	statusTTL int

	leaving bool
	next    nav.Route
}

// NewTimerModel opens the timer for sessionID. The session is reread from
// storage so the engine resumes from what was last saved, even by another
// timer; the local copy is used only when that read fails.
func NewTimerModel(ctx context.Context, sessionID string, opts TimerOptions) TimerModel {
	if opts.Engine == nil {
		opts.Engine = func(s models.Session) *timer.Engine { return timer.New(s) }
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	m := TimerModel{
		ctx:       ctx,
		opts:      opts,
		bar:       progress.New(progress.WithGradient(ColorAccent, ColorAccentSoft), progress.WithoutPercentage()),
		keys:      newTimerKeys(),
		help:      help.New(),
		highlight: NewHighlight(opts.Animations),
		next:      nav.Route{Screen: nav.Dashboard},
	}
	s, err := opts.Sessions.Refresh(ctx, sessionID)
	switch {
	case err == nil:
		m.session, m.found = s, true
	case errors.Is(err, db.ErrNotFound):
	default:
		opts.Logger.Warn("session_refresh_failed", "session_id", sessionID, "error", err)
		m.session, m.found = opts.Sessions.Get(sessionID)
	}
	if m.found {
		m.engine = opts.Engine(m.session)
		m.seq = timer.NewSequencer(opts.Sessions)
	}
	return m
}

// Init commits a pending session to in-progress
func (m TimerModel) Init() tea.Cmd {
	if !m.found {
		return nil
	}
	return tea.Batch(m.dispatch(m.engine.Mount()), m.highlight.Tick())
}

// Update handles keys, ticks and write acknowledgements
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(msg.Width-10, 48))
		m.help.Width = msg.Width
		return m, nil

	case timerTickMsg:
		if msg.gen != m.gen || !m.found || m.engine.State() != timer.Running {
			return m, nil
		}
		if m.statusTTL > 0 {
			m.statusTTL--
		}
		cmds := []tea.Cmd{m.dispatch(m.engine.Tick())}
		if m.engine.State() == timer.Running {
			cmds = append(cmds, m.tick())
		}
		return m, tea.Batch(cmds...)

	case highlightTickMsg:
		if m.leaving {
			return m, nil
		}
		m.highlight.Advance()
		return m, m.highlight.Tick()

	case writeDoneMsg:
		m.pullNotes()
		if msg.err != nil {
			m.opts.Logger.Warn("timer_write_failed",
				"session_id", msg.write.SessionID, "reason", string(msg.write.Reason), "error", msg.err)
		}
		if m.leaving && (msg.write.Reason == timer.ReasonLeave || msg.write.Reason == timer.ReasonComplete) {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.leaving {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m TimerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.found {
		if key.Matches(msg, m.keys.Back) || msg.Type == tea.KeyEnter {
			m.leaving = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if !m.engine.Toggle() {
			return m, nil
		}
		if m.engine.State() == timer.Running {
			m.gen++
			return m, m.tick()
		}
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		m.leaving = true
		writes := m.engine.Complete()
		if len(writes) == 0 {
			return m, tea.Quit
		}
		return m, m.dispatch(writes)

	case key.Matches(msg, m.keys.Back):
		m.leaving = true
		return m, m.dispatch(m.engine.Leave())
	}
	return m, nil
}

func (m TimerModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{gen: gen} })
}

// dispatch turns engine writes into commands. The screen never waits on
// them except to quit after the exit-save; the sequencer makes them land in
// the order the engine produced them.
func (m TimerModel) dispatch(writes []timer.Write) tea.Cmd {
	if len(writes) == 0 {
		return nil
	}
	ctx := context.WithoutCancel(m.ctx)
	opts := m.opts
	cmds := make([]tea.Cmd, 0, len(writes))
	for _, w := range writes {
		save := m.seq.Queue(ctx, w)
		cmds = append(cmds, func() tea.Msg {
			err := save()
			if err == nil && w.Reason == timer.ReasonCheckpoint && opts.Lease != nil {
				if lerr := opts.Lease.Renew(ctx, w.SessionID, opts.Holder, opts.LeaseTTL); lerr != nil {
					opts.Logger.Warn("lease_renew_failed", "session_id", w.SessionID, "error", lerr)
				}
			}
			return writeDoneMsg{write: w, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (m *TimerModel) pullNotes() {
	if m.opts.Notes == nil {
		return
	}
	if notes := m.opts.Notes.Drain(); len(notes) > 0 {
		m.status = notes[len(notes)-1]
		m.statusTTL = statusTicks
	}
}

// Next is the route to show after the screen closes
func (m TimerModel) Next() nav.Route { return m.next }

// Found reports whether the session existed when the screen opened
func (m TimerModel) Found() bool { return m.found }

// Engine exposes the timer state, nil when the session was not found
func (m TimerModel) Engine() *timer.Engine { return m.engine }

// toggleLabel is the label of the start/pause action
func (m TimerModel) toggleLabel() string {
	switch {
	case m.engine.State() == timer.Running:
		return "Pause"
	case m.engine.State() == timer.Completed || m.engine.Status() == models.StatusCompleted:
		return "Completed"
	case m.engine.Elapsed() == 0:
		return "Start"
	default:
		return "Resume"
	}
}

// View renders the timer screen
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if !m.found {
		return m.renderNotFound()
	}

	m.keys.Toggle.SetHelp("space", strings.ToLower(m.toggleLabel()))
	helpBar := lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center).
		Render(m.help.View(m.keys))
	contentHeight := m.height - 2

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderTimerPanel(m.width, contentHeight, true),
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2
	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight, false),
		"  ",
		m.renderDetailsPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

func (m TimerModel) renderNotFound() string {
	msg := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true).Render("Session not found."),
		"",
		helpStyle.Render("esc / enter  return to dashboard"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

func (m TimerModel) renderTimerPanel(width, height int, withNotes bool) string {
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
	var parts []string

	title := m.session.Title
	if m.engine.State() == timer.Running {
		title = m.highlight.Render(title, width-4)
	} else {
		title = titleStyle.Render(truncate(title, width-4))
	}
	parts = append(parts, center.Render(title))
	parts = append(parts, center.Inherit(mutedStyle).Render(
		fmt.Sprintf("%d minute session", m.session.Duration)))

	parts = append(parts, center.Render(renderBigClock(m.engine.Elapsed())))
	parts = append(parts, center.Inherit(mutedStyle).Italic(true).Render(
		"Target: "+timer.FormatClock(m.engine.Target())))
	parts = append(parts, center.Render(m.bar.ViewAs(m.engine.Progress()/100)))
	parts = append(parts, center.Render(m.renderButtons()))

	if line := m.renderStatus(); line != "" {
		parts = append(parts, center.Render(line))
	}
	if withNotes && m.session.Notes != "" {
		parts = append(parts, center.Render(m.renderNotes(width-8)))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(parts, "\n\n"))
}

func (m TimerModel) renderButtons() string {
	active := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccent)).
		Bold(true).
		Padding(0, 2)
	outline := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentSoft)).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(0, 2)

	toggle := active.Render("▶ " + m.toggleLabel())
	if m.engine.State() == timer.Running {
		toggle = active.Render("⏸ Pause")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, toggle, "   ", outline.Render("✓ Complete"))
}

func (m TimerModel) renderStatus() string {
	if m.status.Message == "" {
		return ""
	}
	// Fades only while the clock moves; a paused screen keeps the last word
	if m.statusTTL == 0 && m.engine.State() == timer.Running {
		return ""
	}
	return renderNotification(m.status)
}

func (m TimerModel) renderNotes(width int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).Render("Notes:"),
		mutedStyle.Width(max(10, width)).Render(m.session.Notes),
	)
}

func (m TimerModel) renderDetailsPanel(width, height int) string {
	row := func(label, value string, color lipgloss.TerminalColor) string {
		return fmt.Sprintf("%s %s", mutedStyle.Render(label),
			lipgloss.NewStyle().Foreground(color).Bold(true).Render(value))
	}

	status := m.engine.Status()
	lines := []string{
		cardStyle.Width(width - 8).Align(lipgloss.Center).Render(titleStyle.Render(m.session.Title)),
		"",
		row("Status:", status.Label(), statusColor(status)),
		row("Scheduled:", scheduleLabel(m.session), lipgloss.Color(ColorPrimaryText)),
		row("Remaining:", timer.FormatClock(m.engine.Remaining()), lipgloss.Color(ColorAccentSoft)),
		row("Progress:", fmt.Sprintf("%.0f%%", m.engine.Progress()), lipgloss.Color(ColorAccent)),
	}
	if m.session.Notes != "" {
		lines = append(lines, "", m.renderNotes(width-8))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(2, 2).
		Render(strings.Join(lines, "\n"))
}

// scheduleLabel renders the session date as "Fri, January 10 at 07:00"
func scheduleLabel(s models.Session) string {
	day := s.Date
	if d, err := time.Parse("2006-01-02", s.Date); err == nil {
		day = d.Format("Mon, January 2")
	}
	if s.Time == "" {
		return day
	}
	return day + " at " + s.Time
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width > 3 && len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return s
}

// bigDigits are 5x5 glyphs for the clock
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock draws the elapsed time in block digits
func renderBigClock(seconds int) string {
	var rows [5]strings.Builder
	for _, ch := range timer.FormatClock(seconds) {
		glyph, ok := bigDigits[ch]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i].WriteString(glyph[i])
			rows[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent)).Bold(true)
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = style.Render(rows[i].String())
	}
	return strings.Join(out, "\n")
}
