package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type pingMsg struct{}

// counter counts pings and quits on q
type counter struct {
	pings int
	width int
}

func (c counter) Init() tea.Cmd {
	return func() tea.Msg { return pingMsg{} }
}

func (c counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
	case pingMsg:
		c.pings++
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return c, tea.Quit
		case "p":
			ping := func() tea.Msg { return pingMsg{} }
			return c, tea.Batch(ping, ping)
		case "t":
			return c, tea.Tick(time.Hour, func(time.Time) tea.Msg { return pingMsg{} })
		}
	}
	return c, nil
}

func (c counter) View() string { return "" }

func TestDriverDrainsBatches(t *testing.T) {
	d := New(t, counter{}, WithSize(80, 24))
	d.DrainInit()
	assert.Equal(t, 80, d.Model.(counter).width)
	assert.Equal(t, 1, d.Model.(counter).pings)

	d.PressKey('p')
	assert.Equal(t, 3, d.Model.(counter).pings)
}

func TestDriverAbandonsTimers(t *testing.T) {
	d := New(t, counter{})
	d.PressKey('t')
	assert.Equal(t, 0, d.Model.(counter).pings)
}

func TestDriverStopsAfterQuit(t *testing.T) {
	d := New(t, counter{})
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d.PressKey('p')
	assert.Equal(t, 0, d.Model.(counter).pings)
}
