package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/vidago/vida/internal/core/system"
	"github.com/vidago/vida/internal/game"
)

// CleanupSystem releases the IDs of dialogue objects closed during the
// frame. Phase 3 (Cleanup).
type CleanupSystem struct {
	game *game.Game
	log  *zap.Logger
}

func NewCleanupSystem(g *game.Game, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{game: g, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.game.FlushDismissed(); n > 0 {
		s.log.Debug("released dismissed objects", zap.Int("count", n))
	}
}
