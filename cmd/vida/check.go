package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidago/vida/internal/walkthrough"
)

func newCheckCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the manifest, scripts and walkthrough",
		Long: `Load the game without running it and report objects that fall back to
default interact text and walkthrough steps naming unknown objects or scenes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			s, err := loadSession(cfg, log)
			if err != nil {
				return err
			}
			defer s.Close()

			out := console{w: cmd.OutOrStdout()}
			out.section("Scripts")
			missing := s.engine.Missing()
			for _, name := range missing {
				out.warn("no handler " + name)
			}
			if len(missing) == 0 {
				out.ok("every item and actor has an interact handler")
			}

			out.section("Walkthrough")
			unresolved := s.unresolvedSteps()
			for _, u := range unresolved {
				out.warn(u)
			}
			if len(unresolved) == 0 {
				out.ok(fmt.Sprintf("%d steps, all targets resolve", len(s.steps)))
			}

			if strict && len(missing)+len(unresolved) > 0 {
				return fmt.Errorf("check failed: %d missing handlers, %d unresolved steps", len(missing), len(unresolved))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when anything is reported")

	return cmd
}

// unresolvedSteps describes every walkthrough step whose target the game
// does not know.
func (s *session) unresolvedSteps() []string {
	var out []string
	for i, step := range s.steps {
		switch step.Kind {
		case walkthrough.KindLocation:
			if s.game.SceneNamed(step.Target) == nil {
				out = append(out, fmt.Sprintf("step %d: unknown scene %q", i, step.Target))
			}
		case walkthrough.KindInteract, walkthrough.KindLook, walkthrough.KindUse:
			if _, ok := s.game.Resolve(step.Target); !ok {
				out = append(out, fmt.Sprintf("step %d: unknown object %q", i, step.Target))
			}
			if step.Kind == walkthrough.KindUse {
				if _, ok := s.game.Resolve(step.Extra); !ok {
					out = append(out, fmt.Sprintf("step %d: unknown item %q", i, step.Extra))
				}
			}
		}
	}
	return out
}
