package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/parser"
	"github.com/balkashynov/zen/internal/store"
	"github.com/balkashynov/zen/internal/validate"
)

// ErrCancelled is returned when the user backs out of a form
var ErrCancelled = errors.New("cancelled")

func zenHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	accent := lipgloss.Color(ColorAccent)
	text := lipgloss.Color(ColorPrimaryText)
	dim := lipgloss.Color(ColorDisabledText)

	t.Focused.Title = lipgloss.NewStyle().Foreground(accent).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(accent)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentSoft))
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(text)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(text).Background(accent).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(dim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(accent)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(accent)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(text)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(dim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(dim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(dim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(dim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(dim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(dim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(dim)

	return t
}

// runForm runs f and maps an abort to ErrCancelled
func runForm(f *huh.Form) error {
	err := f.WithTheme(zenHuhTheme()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

// auth forms

// Credentials are the login form values
type Credentials struct {
	Email    string
	Password string
}

func loginForm(c *Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&c.Email).
				Validate(validate.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(validate.Password),
		).Title("Welcome back").Description("Sign in to continue your practice"),
	)
}

// RunLoginForm asks for email and password
func RunLoginForm() (Credentials, error) {
	var c Credentials
	if err := runForm(loginForm(&c)); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// Registration is the register form values
type Registration struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

func registerForm(r *Registration) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Your name").
				Value(&r.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return validate.FieldError{Field: "name", Message: "Name is required"}
					}
					return nil
				}),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&r.Email).
				Validate(validate.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&r.Password).
				Validate(validate.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&r.Confirm).
				Validate(func(s string) error { return validate.Confirm(r.Password, s) }),
		).Title("Create an account"),
	)
}

// RunRegisterForm asks for the new account's details
func RunRegisterForm() (Registration, error) {
	var r Registration
	if err := runForm(registerForm(&r)); err != nil {
		return Registration{}, err
	}
	return r, nil
}

// session forms

// SessionInput is the session form values, all as typed
type SessionInput struct {
	Title    string
	Duration string
	Date     string
	Time     string
	Notes    string
}

// NewSessionInput prefills a new session for now
func NewSessionInput(now time.Time) SessionInput {
	return SessionInput{
		Duration: "10",
		Date:     now.Format(validate.DateLayout),
		Time:     now.Format(validate.TimeLayout),
	}
}

// SessionInputFrom prefills the form for editing s
func SessionInputFrom(s models.Session) SessionInput {
	return SessionInput{
		Title:    s.Title,
		Duration: strconv.Itoa(s.Duration),
		Date:     s.Date,
		Time:     s.Time,
		Notes:    s.Notes,
	}
}

func parseDuration(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "m")))
	if err != nil {
		return 0, fmt.Errorf("duration must be a whole number of minutes")
	}
	return n, validate.Duration(n)
}

// NewSession converts the input, resolving relative dates against now
func (in SessionInput) NewSession(now time.Time) (store.NewSession, error) {
	duration, err := parseDuration(in.Duration)
	if err != nil {
		return store.NewSession{}, err
	}
	date, err := parser.ParseSessionDate(in.Date, now)
	if err != nil {
		return store.NewSession{}, err
	}
	clock, err := parser.ParseClock(in.Time)
	if err != nil {
		return store.NewSession{}, err
	}
	return store.NewSession{
		Title:    strings.TrimSpace(in.Title),
		Duration: duration,
		Date:     date,
		Time:     clock,
		Notes:    strings.TrimSpace(in.Notes),
	}, nil
}

// Patch returns only the fields that differ from orig
func (in SessionInput) Patch(orig models.Session, now time.Time) (models.SessionPatch, error) {
	ns, err := in.NewSession(now)
	if err != nil {
		return models.SessionPatch{}, err
	}
	var p models.SessionPatch
	if ns.Title != orig.Title {
		p.Title = &ns.Title
	}
	if ns.Duration != orig.Duration {
		p.Duration = &ns.Duration
	}
	if ns.Date != orig.Date {
		p.Date = &ns.Date
	}
	if ns.Time != orig.Time {
		p.Time = &ns.Time
	}
	if ns.Notes != orig.Notes {
		p.Notes = &ns.Notes
	}
	return p, nil
}

func sessionForm(in *SessionInput, editing bool, now time.Time) *huh.Form {
	title := "Schedule a Meditation"
	if editing {
		title = "Edit Meditation"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Morning Mindfulness").
				Value(&in.Title).
				Validate(validate.Title),
			huh.NewInput().
				Title("Duration (minutes)").
				Placeholder("10").
				Value(&in.Duration).
				Validate(func(s string) error { _, err := parseDuration(s); return err }),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, dd/mm/yyyy, today, tomorrow").
				Value(&in.Date).
				Validate(func(s string) error { _, err := parser.ParseSessionDate(s, now); return err }),
			huh.NewInput().
				Title("Time").
				Placeholder("07:00").
				Value(&in.Time).
				Validate(func(s string) error { _, err := parser.ParseClock(s); return err }),
			huh.NewText().
				Title("Notes (optional)").
				Placeholder("Any preparation or focus area for this session").
				Lines(3).
				Value(&in.Notes),
		).Title(title),
	)
}

// RunSessionForm edits in place; editing only changes the heading
func RunSessionForm(in *SessionInput, editing bool, now time.Time) error {
	return runForm(sessionForm(in, editing, now))
}

// task forms

// TaskInput is the task form values
type TaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Due         string
}

// NewTaskInput has the defaults of a fresh task
func NewTaskInput() TaskInput {
	return TaskInput{
		Status:   string(models.StatusPending),
		Priority: string(models.PriorityMedium),
	}
}

// TaskInputFrom prefills the form for editing t
func TaskInputFrom(t models.Task) TaskInput {
	in := TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
	}
	if t.DueDate != nil {
		in.Due = t.DueDate.Format(validate.DateLayout)
	}
	return in
}

func (in TaskInput) due(now time.Time) (*time.Time, error) {
	if strings.TrimSpace(in.Due) == "" {
		return nil, nil
	}
	return parser.ParseDueDate(in.Due, now)
}

// NewTask converts the input
func (in TaskInput) NewTask(now time.Time) (store.NewTask, error) {
	due, err := in.due(now)
	if err != nil {
		return store.NewTask{}, err
	}
	return store.NewTask{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      models.SessionStatus(in.Status),
		Priority:    models.Priority(in.Priority),
		DueDate:     due,
	}, nil
}

// Patch returns only the fields that differ from orig
func (in TaskInput) Patch(orig models.Task, now time.Time) (models.TaskPatch, error) {
	nt, err := in.NewTask(now)
	if err != nil {
		return models.TaskPatch{}, err
	}
	var p models.TaskPatch
	if nt.Title != orig.Title {
		p.Title = &nt.Title
	}
	if nt.Description != orig.Description {
		p.Description = &nt.Description
	}
	if nt.Status != orig.Status {
		p.Status = &nt.Status
	}
	if nt.Priority != orig.Priority {
		p.Priority = &nt.Priority
	}
	switch {
	case nt.DueDate == nil && orig.DueDate != nil:
		p.ClearDue = true
	case nt.DueDate != nil && (orig.DueDate == nil || !nt.DueDate.Equal(*orig.DueDate)):
		p.DueDate = nt.DueDate
	}
	return p, nil
}

func taskForm(in *TaskInput, editing bool, now time.Time) *huh.Form {
	title := "Add Task"
	if editing {
		title = "Edit Task"
	}
	statuses := make([]huh.Option[string], 0, len(models.Statuses))
	for _, s := range models.Statuses {
		statuses = append(statuses, huh.NewOption(s.Label(), string(s)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Task title").
				Value(&in.Title).
				Validate(validate.Title),
			huh.NewText().
				Title("Description (optional)").
				Placeholder("Task description").
				Lines(2).
				Value(&in.Description),
			huh.NewSelect[string]().
				Title("Status").
				Options(statuses...).
				Value(&in.Status),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("Low", string(models.PriorityLow)),
					huh.NewOption("Medium", string(models.PriorityMedium)),
					huh.NewOption("High", string(models.PriorityHigh)),
				).
				Value(&in.Priority),
			huh.NewInput().
				Title("Due Date (optional)").
				Description("dd/mm/yyyy, YYYY-MM-DD, today, tomorrow, 3days, 2w").
				Value(&in.Due).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := parser.ParseDueDate(s, now)
					return err
				}),
		).Title(title),
	)
}

// RunTaskForm edits in place
func RunTaskForm(in *TaskInput, editing bool, now time.Time) error {
	return runForm(taskForm(in, editing, now))
}
