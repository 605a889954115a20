package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/config"
	coresys "github.com/vidago/vida/internal/core/system"
	"github.com/vidago/vida/internal/game"
	"github.com/vidago/vida/internal/persist"
	"github.com/vidago/vida/internal/system"
)

// playOptions holds command line overrides for the play command.
type playOptions struct {
	headless     bool
	target       int
	exitAtTarget bool
}

func newPlayCmd() *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run the game loop",
		Long: `Run the game loop. With a walkthrough target the recorded steps are
replayed up to that step before the player takes over. SIGHUP reloads
the lua scripts between frames.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.headless, "headless", false, "auto-resolve dialogue and skip delays")
	cmd.Flags().IntVar(&opts.target, "target", 0, "replay the walkthrough up to this step")
	cmd.Flags().BoolVar(&opts.exitAtTarget, "exit-at-target", false, "stop once the walkthrough target is reached")

	return cmd
}

// apply overrides config values only for flags given on the command line.
func (o *playOptions) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("headless") {
		cfg.Engine.Headless = o.headless
	}
	if flags.Changed("target") {
		cfg.Walkthrough.TargetStep = o.target
	}
	if flags.Changed("exit-at-target") {
		cfg.Walkthrough.ExitAtTarget = o.exitAtTarget
	}
}

func runPlay(cmd *cobra.Command, opts *playOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts.apply(cmd.Flags(), cfg)

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	out := console{w: cmd.OutOrStdout()}
	out.banner(cfg.Game.Name, cfg.Game.Version)

	out.section("Data")
	s, err := loadSession(cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()
	g := s.game
	out.stat("objects", len(g.Objects()))
	out.stat("scenes", len(g.Scenes()))
	out.stat("walkthrough steps", len(s.steps))
	if missing := s.engine.Missing(); len(missing) > 0 {
		out.stat("objects using default interact", len(missing))
	}
	fmt.Fprintln(cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// pointer events are fed by the windowing layer
	pointer := make(chan system.Pointer, 64)
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(g, pointer, 64, log.Named("input")))
	runner.Register(system.NewSchedulerSystem(g))
	runner.Register(system.NewCleanupSystem(g, log))

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	runner.Register(system.NewReloadSystem(s.engine, hup, log.Named("scripting")))

	if cfg.Database.DSN != "" {
		out.section("Journal")
		j, err := openJournal(ctx, cfg, g, log)
		if err != nil {
			return err
		}
		defer j.close(log)
		runner.Register(j.system)
		out.ok(fmt.Sprintf("recording run %s", j.run.ID))
		fmt.Fprintln(cmd.OutOrStdout())
	}

	if cfg.Walkthrough.TargetStep > 0 {
		g.Walkthrough().AdvanceTarget(cfg.Walkthrough.TargetStep)
	}
	s.begin()

	done := func() bool {
		// leaving headless is itself queued, wait for it
		return cfg.Walkthrough.ExitAtTarget && g.WalkthroughFinished() && !g.Headless()
	}
	if cfg.Walkthrough.ExitAtTarget && cfg.Walkthrough.TargetStep <= 0 {
		out.warn("exit-at-target without a target step, running until interrupted")
	}

	out.section("Ready")
	out.ready(fmt.Sprintf("game loop started (%s per frame)", cfg.Game.FrameDuration()))

	err = runner.Run(ctx, cfg.Game.FrameDuration(), done)
	if errors.Is(err, context.Canceled) {
		log.Info("game loop stopped", zap.Uint64("frames", runner.Frames()))
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("walkthrough target reached",
		zap.Int("step", g.Walkthrough().Index()),
		zap.Uint64("frames", runner.Frames()),
	)
	return nil
}

// journalRun is an open run journal for one play session.
type journalRun struct {
	db     *persist.DB
	repo   *persist.JournalRepo
	run    persist.Run
	system *system.JournalSystem
}

func openJournal(ctx context.Context, cfg *config.Config, g *game.Game, log *zap.Logger) (*journalRun, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(dbCtx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := persist.Migrate(dbCtx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	repo := persist.NewJournalRepo(db.Pool)
	run := persist.Run{
		ID:         ulid.Make(),
		Game:       cfg.Game.Name,
		TargetStep: cfg.Walkthrough.TargetStep,
		StartedAt:  time.Now(),
	}
	if err := repo.StartRun(dbCtx, run); err != nil {
		db.Close()
		return nil, err
	}
	sys := system.NewJournalSystem(g, repo, run.ID, cfg.Database.FlushInterval, log.Named("journal"))
	return &journalRun{db: db, repo: repo, run: run, system: sys}, nil
}

// close flushes pending steps and marks the run finished.
func (j *journalRun) close(log *zap.Logger) {
	j.system.Flush()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := j.repo.FinishRun(ctx, j.run.ID, time.Now()); err != nil {
		log.Error("finish journal run", zap.Error(err))
	}
	j.db.Close()
}
