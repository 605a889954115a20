package system

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/core/event"
	coresys "github.com/vidago/vida/internal/core/system"
	"github.com/vidago/vida/internal/game"
	"github.com/vidago/vida/internal/persist"
)

// JournalWriter is the part of persist.JournalRepo the system needs.
type JournalWriter interface {
	RecordSteps(ctx context.Context, runID ulid.ULID, steps []persist.StepRecord) error
}

// JournalSystem collects played walkthrough steps and writes them to the
// run journal every interval frames. Phase 2 (Persist).
type JournalSystem struct {
	repo      JournalWriter
	runID     ulid.ULID
	pending   []persist.StepRecord
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks
	now       func() time.Time
}

func NewJournalSystem(g *game.Game, repo JournalWriter, runID ulid.ULID, intervalTicks int, log *zap.Logger) *JournalSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	s := &JournalSystem{
		repo:     repo,
		runID:    runID,
		log:      log,
		interval: intervalTicks,
		now:      time.Now,
	}
	g.Observe(func(b *event.Bus) {
		event.Subscribe(b, s.onStep)
	})
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) onStep(e event.StepPlayed) {
	s.pending = append(s.pending, persist.StepRecord{
		Step:     e.Index,
		Kind:     e.Kind,
		Target:   e.Target,
		Extra:    e.Extra,
		Outcome:  e.Outcome,
		PlayedAt: s.now(),
	})
}

func (s *JournalSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Pending reports how many steps are waiting to be written.
func (s *JournalSystem) Pending() int { return len(s.pending) }

// Flush writes every pending step now. A failed write keeps the steps for
// the next attempt. Called on shutdown so no played step is lost.
func (s *JournalSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.RecordSteps(ctx, s.runID, s.pending); err != nil {
		s.log.Error("journal flush failed",
			zap.String("run", s.runID.String()),
			zap.Int("steps", len(s.pending)),
			zap.Error(err),
		)
		return
	}
	s.log.Debug("journal flushed", zap.Int("steps", len(s.pending)))
	s.pending = nil
}
