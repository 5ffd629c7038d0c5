package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
	"github.com/ignite/creative-catalog/internal/report"
	"github.com/ignite/creative-catalog/internal/traits"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write flagged-ad reports from the current catalog",
		Long: `Write a CSV report from the catalog as it is, without touching the
network. Run "check" first to refresh broken-media status.`,
	}

	cmd.AddCommand(reportSubCmd("missing", "Ads with no creative URL",
		func() string { return cfg.Reports.MissingMedia }, report.MissingMedia))
	cmd.AddCommand(reportSubCmd("broken", "Ads whose creative URL failed the last check",
		func() string { return cfg.Reports.BrokenMedia }, report.BrokenMedia))
	cmd.AddCommand(reportSubCmd("unanalyzed", "Image ads without traits or missing framework categories",
		func() string { return cfg.Reports.Unanalyzed }, unanalyzedEntries))
	return cmd
}

// unanalyzedEntries lists image ads never classified, then analyzed ads
// lacking categories the framework gained since. Without a readable
// framework only the first group is reported.
func unanalyzedEntries(records []domain.AdRecord) []report.Entry {
	entries := report.Unanalyzed(records)
	fw, err := traits.LoadFramework(cfg.Traits.FrameworkPath)
	if err != nil {
		logger.Warn("framework unavailable, skipping missing-category check", "path", cfg.Traits.FrameworkPath, "error", err)
		return entries
	}
	return append(entries, report.Incomplete(records, fw.Names())...)
}

// reportSubCmd builds one report command. The file name is resolved at run
// time because the config is only loaded then.
func reportSubCmd(use, short string, fileName func() string, selectFn func([]domain.AdRecord) []report.Entry) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			entries := selectFn(store.Records())
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d records flagged\n", len(entries), store.Len())
			return writeReport(cmd.OutOrStdout(), fileName(), entries)
		},
	}
}
