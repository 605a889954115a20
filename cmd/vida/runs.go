package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidago/vida/internal/persist"
)

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent walkthrough runs from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return errors.New("no database configured, set [database] dsn")
			}
			log, err := newLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			db, err := persist.NewDB(ctx, cfg.Database, log)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer db.Close()

			runs, err := persist.NewJournalRepo(db.Pool).RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			return writeRuns(cmd, runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")

	return cmd
}

func writeRuns(cmd *cobra.Command, runs []persist.Run) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tGAME\tTARGET\tSTEPS\tSTARTED\tDURATION")
	for _, r := range runs {
		duration := "running"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.Game, r.TargetStep, r.Steps, r.StartedAt.Format(time.DateTime), duration)
	}
	return tw.Flush()
}
