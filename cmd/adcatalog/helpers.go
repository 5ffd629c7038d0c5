package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/ignite/creative-catalog/internal/report"
	"github.com/ignite/creative-catalog/internal/storage"
)

// openCatalog opens the configured catalog, mirrored to S3 when a bucket
// is set. The mirror is returned so image uploads can reuse it.
func openCatalog(ctx context.Context) (*storage.CatalogStore, *storage.S3Mirror, error) {
	opts := []storage.Option{storage.WithLayout(storage.Layout(cfg.Catalog.Layout))}

	var mirror *storage.S3Mirror
	if cfg.Storage.Enabled() {
		m, err := storage.NewS3Mirror(ctx, cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		mirror = m
		opts = append(opts, storage.WithMirror(m))
	}

	store, err := storage.Open(ctx, cfg.Catalog.Path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return store, mirror, nil
}

func newProgress(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

// writeReport writes entries to the named report in the reports directory.
func writeReport(w io.Writer, name string, entries []report.Entry) error {
	path := filepath.Join(cfg.Reports.Dir, name)
	if err := report.WriteCSV(path, entries); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %d entries to %s\n", len(entries), path)
	return nil
}

// finish prints the summary and writes the flagged report. The run error,
// if any, is returned after the partial results are out.
func finish(w io.Writer, title, reportName string, summary report.Summary, runErr error) error {
	report.PrintSummary(w, title, summary)
	if err := writeReport(w, reportName, summary.Flagged); err != nil {
		if runErr != nil {
			return runErr
		}
		return err
	}
	return runErr
}
