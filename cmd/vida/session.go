package main

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/vidago/vida/internal/config"
	"github.com/vidago/vida/internal/data"
	"github.com/vidago/vida/internal/game"
	"github.com/vidago/vida/internal/scripting"
	"github.com/vidago/vida/internal/walkthrough"
)

// session is a game assembled from its data files and scripts, ready to
// be driven by the frame loop.
type session struct {
	game     *game.Game
	engine   *scripting.Engine
	manifest *data.Manifest
	steps    []walkthrough.Step
	start    string
}

func loadSession(cfg *config.Config, log *zap.Logger) (*session, error) {
	m, err := data.LoadManifest(cfg.Game.Manifest)
	if err != nil {
		return nil, err
	}
	g := game.New(game.Options{
		Name:              cfg.Game.Name,
		ResolutionX:       cfg.Game.ResolutionX,
		ResolutionY:       cfg.Game.ResolutionY,
		Headless:          cfg.Engine.Headless,
		CatchExceptions:   cfg.Engine.CatchExceptions,
		MaxEventsPerFrame: cfg.Engine.MaxEventsPerFrame,
		PerObjectQueues:   cfg.Engine.PerObjectQueues,
	}, log)

	start, err := g.Build(m)
	if err != nil {
		return nil, fmt.Errorf("build game: %w", err)
	}
	if cfg.Game.DefaultPlayer != "" {
		if err := g.SetPlayer(cfg.Game.DefaultPlayer); err != nil {
			return nil, err
		}
	}
	statesDir := cfg.Game.StatesDir
	g.SetStateLoader(func(scene, state string) ([]data.StateOp, error) {
		return data.LoadState(statesDir, scene, state)
	})

	steps, err := loadSteps(cfg.Walkthrough.File, log)
	if err != nil {
		return nil, err
	}
	g.Walkthrough().Load(steps)

	engine, err := scripting.NewEngine(cfg.Game.ScriptsDir, g, log.Named("scripting"))
	if err != nil {
		return nil, err
	}
	return &session{game: g, engine: engine, manifest: m, steps: steps, start: start}, nil
}

// loadSteps reads the walkthrough file. A game without one simply has no
// steps to replay.
func loadSteps(path string, log *zap.Logger) ([]walkthrough.Step, error) {
	if path == "" {
		return nil, nil
	}
	steps, err := data.LoadWalkthrough(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("no walkthrough file", zap.String("file", path))
		return nil, nil
	}
	return steps, err
}

// begin queues the move to the start scene so its camera hooks run
// through the queue like any other switch.
func (s *session) begin() {
	if s.start != "" {
		s.game.Camera().Scene(s.start)
	}
}

func (s *session) Close() {
	s.engine.Close()
}
