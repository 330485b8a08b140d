package timer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/zen/internal/models"
)

// Persister saves timer writes
type Persister interface {
	Checkpoint(ctx context.Context, id string, patch models.SessionPatch) error
}

// Lease keeps a session owned by a single open timer
type Lease interface {
	Acquire(ctx context.Context, sessionID, holder string, ttl time.Duration) error
	Renew(ctx context.Context, sessionID, holder string, ttl time.Duration) error
	Release(ctx context.Context, sessionID, holder string) error
}

// Ticker returns a channel firing once per period and a stop func
type Ticker func(period time.Duration) (<-chan time.Time, func())

// RealTicker wraps time.NewTicker
func RealTicker(period time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(period)
	return t.C, t.Stop
}

// RunnerOptions configures a headless run
type RunnerOptions struct {
	Lease    Lease
	LeaseTTL time.Duration
	Holder   string
	Ticker   Ticker
	Logger   *slog.Logger

	// OnTick is called after every tick with the engine state
	OnTick func(e *Engine)
	// OnWrite is called when a dispatched write finishes
	OnWrite func(w Write, err error)
}

// Runner drives an Engine on a real clock without a screen
type Runner struct {
	engine  *Engine
	seq     *Sequencer
	opts    RunnerOptions

	inflight sync.WaitGroup
}

// NewRunner prepares a run for engine
func NewRunner(engine *Engine, persist Persister, opts RunnerOptions) *Runner {
	if opts.Ticker == nil {
		opts.Ticker = RealTicker
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Holder == "" {
		opts.Holder = uuid.New().String()
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 30 * time.Second
	}
	return &Runner{engine: engine, seq: NewSequencer(persist), opts: opts}
}

// Run mounts, starts and ticks the engine until it completes or ctx is
// cancelled. Cancellation is a normal exit and saves elapsed time.
func (r *Runner) Run(ctx context.Context) error {
	id := r.engine.SessionID()
	log := r.opts.Logger.With("session_id", id, "holder", r.opts.Holder)

	if r.opts.Lease != nil {
		if err := r.opts.Lease.Acquire(ctx, id, r.opts.Holder, r.opts.LeaseTTL); err != nil {
			return fmt.Errorf("opening timer: %w", err)
		}
		defer func() {
			if err := r.opts.Lease.Release(context.WithoutCancel(ctx), id, r.opts.Holder); err != nil {
				log.Warn("lease_release_failed", "error", err)
			}
		}()
	}

	r.dispatch(ctx, r.engine.Mount())
	if !r.engine.Start() {
		log.Info("timer_not_started", "state", r.engine.State().String(), "elapsed", r.engine.Elapsed())
		r.inflight.Wait()
		return nil
	}
	log.Info("timer_started", "elapsed", r.engine.Elapsed(), "target", r.engine.Target())

	ticks, stop := r.opts.Ticker(time.Second)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			r.dispatch(ctx, r.engine.Leave())
			r.inflight.Wait()
			log.Info("timer_left", "elapsed", r.engine.Elapsed())
			return nil
		case <-ticks:
			writes := r.engine.Tick()
			r.dispatch(ctx, writes)
			if r.opts.OnTick != nil {
				r.opts.OnTick(r.engine)
			}
			if r.engine.State() == Completed {
				r.inflight.Wait()
				log.Info("timer_completed", "elapsed", r.engine.Elapsed())
				return nil
			}
		}
	}
}

// Complete finishes the session from outside the loop's tick path
func (r *Runner) Complete(ctx context.Context) {
	r.dispatch(ctx, r.engine.Complete())
	r.inflight.Wait()
}

// dispatch sends writes without blocking the loop. They land in the order
// the engine produced them and outlive ctx so an exit-save is not cancelled
// by the exit itself.
func (r *Runner) dispatch(ctx context.Context, writes []Write) {
	wctx := context.WithoutCancel(ctx)
	for _, w := range writes {
		save := r.seq.Queue(wctx, w)
		r.inflight.Add(1)
		go func() {
			defer r.inflight.Done()
			err := save()
			if err != nil {
				r.opts.Logger.Warn("timer_write_failed",
					"session_id", w.SessionID, "reason", string(w.Reason), "error", err)
			} else if w.Reason == ReasonCheckpoint && r.opts.Lease != nil {
				if lerr := r.opts.Lease.Renew(wctx, w.SessionID, r.opts.Holder, r.opts.LeaseTTL); lerr != nil {
					r.opts.Logger.Warn("lease_renew_failed", "session_id", w.SessionID, "error", lerr)
				}
			}
			if r.opts.OnWrite != nil {
				r.opts.OnWrite(w, err)
			}
		}()
	}
}
