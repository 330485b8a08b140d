package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// highlightTickMsg advances the sweep on the selected row
type highlightTickMsg struct{}

const (
	highlightInterval = 100 * time.Millisecond
	highlightWidth    = 0.25 // fraction of the text lit at once
	highlightCycle    = 18   // ticks for one pass
	highlightRest     = 5    // ticks of pause between passes
)

// base and peak colors of the sweep, as rgb
var (
	sweepBase = [3]float64{180, 174, 200}
	sweepPeak = [3]float64{234, 230, 255}
)

// Highlight sweeps a band of light across a line of text. With animations
// off it renders a flat accent color and never ticks.
type Highlight struct {
	enabled bool
	step    int
}

// NewHighlight creates a sweep; enabled follows ui.animations
func NewHighlight(enabled bool) *Highlight {
	return &Highlight{enabled: enabled}
}

// Reset starts the sweep over, as when the selection moves
func (h *Highlight) Reset() {
	h.step = 0
}

// Advance moves one tick forward
func (h *Highlight) Advance() {
	h.step = (h.step + 1) % (highlightCycle + highlightRest)
}

// Tick schedules the next step, or nil when animations are off
func (h *Highlight) Tick() tea.Cmd {
	if !h.enabled {
		return nil
	}
	return tea.Tick(highlightInterval, func(time.Time) tea.Msg { return highlightTickMsg{} })
}

// Render draws text truncated to maxWidth with the band at its current spot
func (h *Highlight) Render(text string, maxWidth int) string {
	runes := []rune(text)
	if maxWidth > 3 && len(runes) > maxWidth {
		runes = append(runes[:maxWidth-3], []rune("...")...)
	}
	if len(runes) == 0 {
		return ""
	}
	if !h.enabled {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentSoft)).Render(string(runes))
	}

	n := float64(len(runes))
	// The band starts left of the text and leaves past its end
	span := n * (1 + 2*highlightWidth)
	center := -n*highlightWidth + span*float64(min(h.step, highlightCycle))/highlightCycle
	sigma := math.Max(1, highlightWidth*n/2)

	var b strings.Builder
	for i, r := range runes {
		dx := float64(i) - center
		w := math.Exp(-(dx * dx) / (2 * sigma * sigma))
		c := fmt.Sprintf("#%02x%02x%02x",
			blend(sweepBase[0], sweepPeak[0], w),
			blend(sweepBase[1], sweepPeak[1], w),
			blend(sweepBase[2], sweepPeak[2], w))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(string(r)))
	}
	return b.String()
}

func blend(from, to, w float64) int {
	return int(from*(1-w) + to*w)
}
