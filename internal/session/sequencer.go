package session

import (
	"context"
	"sync"
)

// Sequencer lets the newest of several overlapping requests win.
// Begin cancels the previous ticket's context; a ticket whose response arrives after a
// newer Begin reports Current() == false and its result must be dropped.
type Sequencer struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Ticket identifies one request issued through a Sequencer.
type Ticket struct {
	ctx    context.Context
	seq    uint64
	owner  *Sequencer
	cancel context.CancelFunc
}

// Begin starts a new request derived from ctx and supersedes any earlier one.
func (s *Sequencer) Begin(ctx context.Context) *Ticket {
	tctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	prev := s.cancel
	s.seq++
	t := &Ticket{ctx: tctx, seq: s.seq, owner: s, cancel: cancel}
	s.cancel = cancel
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return t
}

// Context is cancelled when the ticket is superseded or its parent is done.
func (t *Ticket) Context() context.Context { return t.ctx }

// Seq returns the ticket's sequence number.
func (t *Ticket) Seq() uint64 { return t.seq }

// Current reports whether no newer ticket has been issued.
func (t *Ticket) Current() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.owner.seq == t.seq
}

// Done releases the ticket's context.
func (t *Ticket) Done() {
	t.owner.mu.Lock()
	if t.owner.seq == t.seq {
		t.owner.cancel = nil
	}
	t.owner.mu.Unlock()
	t.cancel()
}
