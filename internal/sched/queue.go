// Package sched turns designer calls into an ordered queue of deferred
// actions and admits them one at a time as their targets go idle.
package sched

import (
	"fmt"

	"go.uber.org/zap"
)

// Target is anything a queued event can act on.
type Target interface {
	ObjectName() string
	Busy() bool
}

// Handler performs one queued action. It must mark its target busy
// before arranging any asynchronous completion.
type Handler func(ev *Event) error

// Event is a deferred action. It is immutable once enqueued.
type Event struct {
	Name    string
	Handler Handler
	Target  Target
	Args    []any
	seq     uint64
}

// Seq is the enqueue sequence number, unique per queue.
func (e *Event) Seq() uint64 { return e.seq }

func (e *Event) String() string {
	return fmt.Sprintf("%s(%s)#%d", e.Name, e.Target.ObjectName(), e.seq)
}

// IdleHandler is consulted when a tick neither retired nor admitted
// anything. It reports whether it did any work.
type IdleHandler interface {
	Idle() bool
}

// Scheduler is what the session drives every frame.
type Scheduler interface {
	Enqueue(name string, h Handler, target Target, args ...any) *Event
	Tick() bool
	Wait()
	Waiting() bool
	Len() int
	Names() []string
	SetIdleHandler(h IdleHandler)
}

type Option func(*Queue)

// WithStrict makes handler failures propagate as panics instead of
// being logged.
func WithStrict(strict bool) Option {
	return func(q *Queue) { q.strict = strict }
}

func WithIdleHandler(h IdleHandler) Option {
	return func(q *Queue) { q.idle = h }
}

// Queue is the single global FIFO of deferred actions with one read
// cursor. Only the game loop goroutine may touch it.
type Queue struct {
	events  []*Event
	cursor  int
	waiting bool
	current *Event
	seq     uint64

	idle   IdleHandler
	strict bool
	log    *zap.Logger
}

func NewQueue(log *zap.Logger, opts ...Option) *Queue {
	q := &Queue{
		events: make([]*Event, 0, 64),
		log:    log,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends an event and returns it. It never runs the handler.
func (q *Queue) Enqueue(name string, h Handler, target Target, args ...any) *Event {
	q.seq++
	ev := &Event{Name: name, Handler: h, Target: target, Args: args, seq: q.seq}
	q.events = append(q.events, ev)
	return ev
}

// Wait stops admission until every started event's target is idle.
func (q *Queue) Wait() { q.waiting = true }

func (q *Queue) Waiting() bool { return q.waiting }

// Cursor is the index of the next event eligible to start.
func (q *Queue) Cursor() int { return q.cursor }

func (q *Queue) Len() int { return len(q.events) }

// Current is the most recently admitted event, nil before the first.
func (q *Queue) Current() *Event { return q.current }

func (q *Queue) SetIdleHandler(h IdleHandler) { q.idle = h }

// Events returns a snapshot of the pending and started events.
func (q *Queue) Events() []*Event {
	out := make([]*Event, len(q.events))
	copy(out, q.events)
	return out
}

// Names lists the handler names in queue order.
func (q *Queue) Names() []string {
	out := make([]string, len(q.events))
	for i, ev := range q.events {
		out[i] = ev.Name
	}
	return out
}

// Tick performs one scheduling step and reports whether it is safe to
// tick again immediately.
func (q *Queue) Tick() bool {
	safe, progressed, blocked := q.step()
	if !progressed && !blocked && q.idle != nil {
		q.idle.Idle()
	}
	return safe
}

// step runs wait-check, retirement and admission. blocked is true when
// the tick stopped on a busy object, in which case no idle work may run.
func (q *Queue) step() (safe, progressed, blocked bool) {
	if q.waiting {
		if !q.startedIdle() {
			return false, false, true
		}
		q.waiting = false
	}

	retired := q.retire()
	progressed = retired > 0

	if q.cursor < len(q.events) {
		ev := q.events[q.cursor]
		if ev.Target.Busy() {
			return false, progressed, true
		}
		// the cursor moves past the event whatever the handler does
		q.cursor++
		q.current = ev
		q.invoke(ev)
		if !ev.Target.Busy() {
			return true, true, false
		}
		return false, true, false
	}
	return false, progressed, false
}

func (q *Queue) startedIdle() bool {
	for _, ev := range q.events[:q.cursor] {
		if ev.Target.Busy() {
			return false
		}
	}
	return true
}

// retire removes started events whose targets are idle, keeping the
// relative order of everything that remains.
func (q *Queue) retire() int {
	if q.cursor == 0 {
		return 0
	}
	kept := q.events[:0]
	removed := 0
	for i, ev := range q.events {
		if i < q.cursor && !ev.Target.Busy() {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	for i := len(kept); i < len(q.events); i++ {
		q.events[i] = nil
	}
	q.events = kept
	q.cursor -= removed
	return removed
}

func (q *Queue) invoke(ev *Event) {
	Guard(q.log, q.strict, ev.Name, ev.Target.ObjectName(), func() error {
		return ev.Handler(ev)
	})
}
