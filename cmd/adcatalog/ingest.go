package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignite/creative-catalog/internal/datanorm"
	"github.com/ignite/creative-catalog/internal/pipeline"
)

func ingestCmd() *cobra.Command {
	var (
		name   string
		kind   string
		marker string
		key    string
	)

	cmd := &cobra.Command{
		Use:   "ingest [csv files...]",
		Short: "Import campaign CSV exports into the catalog",
		Long: `Import campaign exports into the catalog.

With no arguments the datasets listed in the config file are imported.
Files given on the command line take their category from --category or,
when omitted, from the file name, and their kind from --kind or the
file name and headers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			datasets := pipeline.Datasets(cfg.Datasets)
			if len(args) > 0 {
				datasets = datasets[:0]
				for _, path := range args {
					datasets = append(datasets, datanorm.Dataset{
						Name:         name,
						Path:         path,
						Kind:         datanorm.DatasetKind(kind),
						HeaderMarker: marker,
						KeyColumn:    key,
					})
				}
			}
			if len(datasets) == 0 {
				return fmt.Errorf("no datasets: pass CSV files or list them under datasets in the config")
			}

			store, _, err := openCatalog(ctx)
			if err != nil {
				return err
			}

			var categories []string
			for _, ds := range cfg.Datasets {
				if ds.Name != "" {
					categories = append(categories, ds.Name)
				}
			}

			results, err := pipeline.Ingest(ctx, store, datasets, datanorm.NewClassifier(categories...))
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "%-40s %-10s %-12s imported=%d skipped=%d errors=%d (%s)\n",
					r.File, r.Kind, r.Category, r.ImportedRows, r.SkippedRows, r.ErrorRows, r.Duration.Round(time.Millisecond))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "catalog %s now holds %d records\n", store.Path(), store.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "category", "c", "", "category tag for the given files")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "dataset kind: ads, targeting or roas_chart")
	cmd.Flags().StringVar(&marker, "header-marker", "", "cell text identifying the header row below a report preamble")
	cmd.Flags().StringVar(&key, "key-column", "", "drop rows with an empty value in this column")
	return cmd
}
