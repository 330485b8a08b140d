// Package notify turns operation outcomes into non-blocking user notices.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level of a notification
type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is one user-facing message
type Notification struct {
	Level   Level
	Message string
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// Successf sends a success notification
func Successf(n Notifier, format string, args ...any) {
	n.Notify(Notification{Level: Success, Message: fmt.Sprintf(format, args...)})
}

// Errorf sends an error notification
func Errorf(n Notifier, format string, args ...any) {
	n.Notify(Notification{Level: Error, Message: fmt.Sprintf(format, args...)})
}

// Infof sends an informational notification
func Infof(n Notifier, format string, args ...any) {
	n.Notify(Notification{Level: Info, Message: fmt.Sprintf(format, args...)})
}

// Printer writes notifications as single lines, for plain CLI output
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter writes to out
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Notify(n Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefix := "ℹ️ "
	switch n.Level {
	case Success:
		prefix = "✅"
	case Error:
		prefix = "❌"
	}
	fmt.Fprintf(p.out, "%s %s\n", prefix, n.Message)
}

// Queue buffers notifications until a screen drains them
type Queue struct {
	mu      sync.Mutex
	pending []Notification
}

func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	q.pending = append(q.pending, n)
	q.mu.Unlock()
}

// Drain returns and clears buffered notifications
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Logged forwards to next and records errors in the log
type Logged struct {
	Next   Notifier
	Logger *slog.Logger
}

func (l Logged) Notify(n Notification) {
	if n.Level == Error && l.Logger != nil {
		l.Logger.Warn("user_notified", "message", n.Message)
	}
	if l.Next != nil {
		l.Next.Notify(n)
	}
}

// Discard drops every notification
type Discard struct{}

func (Discard) Notify(Notification) {}
