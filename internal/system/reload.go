package system

import (
	"os"
	"time"

	"go.uber.org/zap"

	coresys "github.com/vidago/vida/internal/core/system"
)

// Reloader reloads designer scripts. scripting.Engine satisfies it.
type Reloader interface {
	Reload() error
}

// ReloadSystem reloads scripts on the loop goroutine when a signal
// arrives, so no script runs while the VM is being replaced. Several
// signals in one frame cause a single reload. Phase 0 (Input).
type ReloadSystem struct {
	scripts Reloader
	signals <-chan os.Signal
	log     *zap.Logger
}

func NewReloadSystem(scripts Reloader, signals <-chan os.Signal, log *zap.Logger) *ReloadSystem {
	return &ReloadSystem{scripts: scripts, signals: signals, log: log}
}

func (s *ReloadSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ReloadSystem) Update(_ time.Duration) {
	requested := false
drain:
	for {
		select {
		case sig := <-s.signals:
			s.log.Info("script reload requested", zap.Stringer("signal", sig))
			requested = true
		default:
			break drain
		}
	}
	if !requested {
		return
	}
	if err := s.scripts.Reload(); err != nil {
		s.log.Error("script reload failed, keeping previous scripts", zap.Error(err))
	}
}
