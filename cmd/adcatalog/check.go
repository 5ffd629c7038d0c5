package main

import (
	"github.com/spf13/cobra"

	"github.com/ignite/creative-catalog/internal/media"
	"github.com/ignite/creative-catalog/internal/pipeline"
)

func checkCmd() *cobra.Command {
	var probeLocal bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit creative URLs and record which are missing or broken",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := openCatalog(ctx)
			if err != nil {
				return err
			}

			checker := media.NewChecker(nil,
				media.WithCheckTimeout(cfg.Checker.Timeout()),
				media.WithBatchSize(cfg.Checker.Concurrency),
				media.WithGetFallback(cfg.Checker.FallbackToGet))

			summary, runErr := pipeline.AuditRun(ctx, store, checker, pipeline.AuditOptions{
				BatchSize:  cfg.Checker.Concurrency,
				ProbeLocal: probeLocal,
				Progress:   newProgress(store.Len(), "Checking media"),
			})
			return finish(cmd.OutOrStdout(), "Media check", cfg.Reports.BrokenMedia, summary, runErr)
		},
	}

	cmd.Flags().BoolVar(&probeLocal, "probe-local", false, "probe URLs even when the creative is already downloaded")
	return cmd
}
