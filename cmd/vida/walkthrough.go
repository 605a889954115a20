package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/walkthrough"
)

func newWalkthroughCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "walkthrough",
		Short: "Print the walkthrough as a readable document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			steps, err := loadSteps(cfg.Walkthrough.File, zap.NewNop())
			if err != nil {
				return fmt.Errorf("load walkthrough: %w", err)
			}
			return walkthrough.WriteDocument(cmd.OutOrStdout(), cfg.Game.Name, steps)
		},
	}
}
