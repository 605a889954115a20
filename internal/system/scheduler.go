package system

import (
	"time"

	coresys "github.com/vidago/vida/internal/core/system"
	"github.com/vidago/vida/internal/game"
)

// SchedulerSystem advances walks and timers, then ticks the event queue.
// Phase 1 (Update).
type SchedulerSystem struct {
	game *game.Game
}

func NewSchedulerSystem(g *game.Game) *SchedulerSystem {
	return &SchedulerSystem{game: g}
}

func (s *SchedulerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SchedulerSystem) Update(dt time.Duration) {
	s.game.Update(dt.Seconds())
}
