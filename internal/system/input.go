package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/vidago/vida/internal/core/system"
	"github.com/vidago/vida/internal/game"
)

// Pointer is one pointer release in screen coordinates.
type Pointer struct {
	X, Y float64
}

// InputSystem drains pointer releases queued by the windowing collaborator
// and routes them through the session's click dispatcher. Phase 0 (Input).
type InputSystem struct {
	game       *game.Game
	in         <-chan Pointer
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(g *game.Game, in <-chan Pointer, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		game:       g,
		in:         in,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case p := <-s.in:
			if !s.game.Click(p.X, p.Y) {
				s.log.Debug("click hit nothing", zap.Float64("x", p.X), zap.Float64("y", p.Y))
			}
		default:
			return
		}
	}
}
