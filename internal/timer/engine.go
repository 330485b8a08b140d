// Package timer drives the elapsed time of one session while its timer is open.
//
// The Engine is a plain state machine: each transition returns the writes it
// wants persisted and the caller dispatches them without waiting. A failed
// write never changes engine state.
package timer

import (
	"fmt"

	"github.com/balkashynov/zen/internal/models"
)

// State of a timer visit
type State int

const (
	Idle State = iota
	Running
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// DefaultCheckpointEvery is the checkpoint period in elapsed seconds
const DefaultCheckpointEvery = 5

// Reason says why a write was produced
type Reason string

const (
	ReasonEnter        Reason = "enter"
	ReasonCheckpoint   Reason = "checkpoint"
	ReasonAutoComplete Reason = "auto-complete"
	ReasonComplete     Reason = "complete"
	ReasonLeave        Reason = "leave"
)

// Write is one persistence request for the session
type Write struct {
	SessionID string
	Patch     models.SessionPatch
	Reason    Reason
}

// Engine is the per-visit timer state for one session. It is not safe for
// concurrent use; drive it from a single loop.
type Engine struct {
	sessionID string
	status    models.SessionStatus
	target    int
	elapsed   int
	state     State
	mounted   bool
	revision  uint64
	every     int
}

// Option configures an Engine
type Option func(*Engine)

// WithCheckpointEvery changes the checkpoint period; values below 1 are ignored
func WithCheckpointEvery(seconds int) Option {
	return func(e *Engine) {
		if seconds >= 1 {
			e.every = seconds
		}
	}
}

// New seeds an idle engine from the persisted session, resuming its elapsed time
func New(s models.Session, opts ...Option) *Engine {
	e := &Engine{
		sessionID: s.ID,
		status:    s.Status,
		target:    s.TargetSeconds(),
		elapsed:   s.Elapsed(),
		state:     Idle,
		revision:  s.Revision,
		every:     DefaultCheckpointEvery,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) write(reason Reason, patch models.SessionPatch) []Write {
	e.revision++
	patch.Revision = e.revision
	return []Write{{SessionID: e.sessionID, Patch: patch, Reason: reason}}
}

// Mount is called once when the view opens. A pending session is committed
// to in-progress; later calls do nothing.
func (e *Engine) Mount() []Write {
	if e.mounted {
		return nil
	}
	e.mounted = true
	if e.status != models.StatusPending {
		return nil
	}
	e.status = models.StatusInProgress
	return e.write(ReasonEnter, models.StatusPatch(models.StatusInProgress))
}

// CanStart reports whether Start would begin ticking
func (e *Engine) CanStart() bool {
	if e.state == Running || e.state == Completed {
		return false
	}
	return e.status != models.StatusCompleted && e.elapsed < e.target
}

// Start moves idle or paused to running
func (e *Engine) Start() bool {
	if !e.CanStart() {
		return false
	}
	e.state = Running
	return true
}

// Pause stops ticking. The last checkpoint stands.
func (e *Engine) Pause() bool {
	if e.state != Running {
		return false
	}
	e.state = Paused
	return true
}

// Toggle starts or pauses
func (e *Engine) Toggle() bool {
	if e.state == Running {
		return e.Pause()
	}
	return e.Start()
}

// Tick advances one second while running. Reaching the target completes the
// session in the same write; otherwise every checkpoint period is persisted.
func (e *Engine) Tick() []Write {
	if e.state != Running {
		return nil
	}
	e.elapsed++

	if e.elapsed >= e.target {
		e.state = Completed
		e.status = models.StatusCompleted
		return e.write(ReasonAutoComplete, models.CompletionPatch(e.elapsed))
	}
	if e.elapsed%e.every == 0 {
		return e.write(ReasonCheckpoint, models.ElapsedPatch(e.elapsed))
	}
	return nil
}

// Complete finishes the session at the current elapsed time
func (e *Engine) Complete() []Write {
	if e.state == Completed {
		return nil
	}
	e.state = Completed
	e.status = models.StatusCompleted
	return e.write(ReasonComplete, models.CompletionPatch(e.elapsed))
}

// Leave is called when the view closes. Elapsed time is always saved and
// status is left alone.
func (e *Engine) Leave() []Write {
	if e.state == Running {
		e.state = Paused
	}
	return e.write(ReasonLeave, models.ElapsedPatch(e.elapsed))
}

// Progress is elapsed over target in percent, clamped to [0, 100]
func (e *Engine) Progress() float64 {
	if e.target <= 0 {
		return 100
	}
	p := float64(e.elapsed) / float64(e.target) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Remaining seconds until the target, never negative
func (e *Engine) Remaining() int {
	if r := e.target - e.elapsed; r > 0 {
		return r
	}
	return 0
}

func (e *Engine) SessionID() string { return e.sessionID }
func (e *Engine) State() State { return e.state }
func (e *Engine) Elapsed() int { return e.elapsed }
func (e *Engine) Target() int { return e.target }
func (e *Engine) Status() models.SessionStatus { return e.status }
func (e *Engine) Revision() uint64 { return e.revision }

// FormatClock renders seconds as mm:ss, or h:mm:ss past an hour
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
