package game

type timer struct {
	left float64
	fn   func()
}

// after runs fn once seconds of game time have elapsed.
func (g *Game) after(seconds float64, fn func()) {
	g.timers = append(g.timers, &timer{left: seconds, fn: fn})
}

func (g *Game) advanceTimers(dt float64) {
	if len(g.timers) == 0 {
		return
	}
	due := g.timers[:0:0]
	kept := g.timers[:0]
	for _, t := range g.timers {
		t.left -= dt
		if t.left <= 0 {
			due = append(due, t)
			continue
		}
		kept = append(kept, t)
	}
	g.timers = kept
	// callbacks may schedule more timers
	for _, t := range due {
		t.fn()
	}
}

// PendingTimers reports how many timers have not fired yet.
func (g *Game) PendingTimers() int { return len(g.timers) }
