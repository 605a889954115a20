package system

import (
	"context"
	"sort"
	"time"
)

// Runner executes systems in phase order each frame.
// All systems run on the goroutine that calls Tick or Run.
type Runner struct {
	systems []System
	sorted  bool
	frames  uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.frames++
}

// Frames reports how many full ticks have run.
func (r *Runner) Frames() uint64 { return r.frames }

// Run ticks at a fixed rate until ctx is cancelled or done reports true
// after a frame. A nil done never stops the loop on its own.
func (r *Runner) Run(ctx context.Context, interval time.Duration, done func() bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Tick(interval)
			if done != nil && done() {
				return nil
			}
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
