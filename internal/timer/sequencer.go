package timer

import (
	"context"
	"sync"
)

// Sequencer persists one engine's writes in the order the engine produced
// them. Queueing never blocks; each write waits only for the one before it,
// so a later checkpoint can never land ahead of an earlier write.
type Sequencer struct {
	persist Persister

	mu   sync.Mutex
	tail chan struct{} // closed when the last queued write has finished
}

// NewSequencer orders writes to persist
func NewSequencer(persist Persister) *Sequencer {
	return &Sequencer{persist: persist}
}

// Queue takes the next place in line for w and returns the call that saves
// it. The call blocks until the previous write has finished, so run it off
// the caller's loop, and run every call Queue returns or the line stalls.
func (s *Sequencer) Queue(ctx context.Context, w Write) func() error {
	done := make(chan struct{})
	s.mu.Lock()
	prev := s.tail
	s.tail = done
	s.mu.Unlock()

	return func() error {
		defer close(done)
		if prev != nil {
			<-prev
		}
		return s.persist.Checkpoint(ctx, w.SessionID, w.Patch)
	}
}
