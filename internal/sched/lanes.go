package sched

import "go.uber.org/zap"

// Lanes keeps one queue per target. Each frame every lane's head is
// polled, so a stuck object only stalls its own actions. Ordering across
// different objects is not preserved; use Queue when scripts rely on it.
type Lanes struct {
	lanes map[string]*Queue
	order []string
	seq   uint64

	idle   IdleHandler
	strict bool
	log    *zap.Logger
}

func NewLanes(log *zap.Logger, opts ...Option) *Lanes {
	base := &Queue{}
	for _, opt := range opts {
		opt(base)
	}
	return &Lanes{
		lanes:  make(map[string]*Queue),
		idle:   base.idle,
		strict: base.strict,
		log:    log,
	}
}

func (l *Lanes) lane(name string) *Queue {
	q, ok := l.lanes[name]
	if !ok {
		q = NewQueue(l.log.With(zap.String("lane", name)), WithStrict(l.strict))
		l.lanes[name] = q
		l.order = append(l.order, name)
	}
	return q
}

func (l *Lanes) Enqueue(name string, h Handler, target Target, args ...any) *Event {
	q := l.lane(target.ObjectName())
	ev := q.Enqueue(name, h, target, args...)
	l.seq++
	ev.seq = l.seq
	return ev
}

// Tick gives every lane one scheduling step.
func (l *Lanes) Tick() bool {
	safe, progressed, blocked := false, false, false
	for _, name := range l.order {
		s, p, b := l.lanes[name].step()
		safe = safe || s
		progressed = progressed || p
		blocked = blocked || b
	}
	l.prune()
	if !progressed && !blocked && l.idle != nil {
		l.idle.Idle()
	}
	return safe
}

// Wait puts every lane into waiting mode.
func (l *Lanes) Wait() {
	for _, q := range l.lanes {
		q.Wait()
	}
}

func (l *Lanes) Waiting() bool {
	for _, q := range l.lanes {
		if q.Waiting() {
			return true
		}
	}
	return false
}

func (l *Lanes) Len() int {
	n := 0
	for _, q := range l.lanes {
		n += q.Len()
	}
	return n
}

// Names lists handler names lane by lane, lanes in creation order.
func (l *Lanes) Names() []string {
	var out []string
	for _, name := range l.order {
		out = append(out, l.lanes[name].Names()...)
	}
	return out
}

// Lane returns the queue for one target, or nil.
func (l *Lanes) Lane(target string) *Queue { return l.lanes[target] }

func (l *Lanes) SetIdleHandler(h IdleHandler) { l.idle = h }

func (l *Lanes) prune() {
	kept := l.order[:0]
	for _, name := range l.order {
		q := l.lanes[name]
		if q.Len() == 0 && !q.Waiting() {
			delete(l.lanes, name)
			continue
		}
		kept = append(kept, name)
	}
	l.order = kept
}
