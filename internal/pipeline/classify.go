package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
	"github.com/ignite/creative-catalog/internal/report"
	"github.com/ignite/creative-catalog/internal/storage"
	"github.com/ignite/creative-catalog/internal/traits"
)

// TraitClassifier classifies a local creative. *traits.Classifier
// satisfies it.
type TraitClassifier interface {
	ClassifyFile(ctx context.Context, path, category string) (traits.Assignment, error)
	ClassifyCategories(ctx context.Context, path, category string, names []string) (traits.Assignment, error)
	Framework() *traits.Framework
}

// ClassifyOptions configures ClassifyRun.
type ClassifyOptions struct {
	Delay time.Duration
	// Limit caps the number of model calls; zero means no cap.
	Limit int
	// NewCategories classifies analyzed records for the framework
	// categories they lack and adds the result to their traits. Records
	// never analyzed are left for a full run.
	NewCategories bool
	Progress      Progress
}

// PendingClassification returns image records that have a local creative
// but no traits yet.
func PendingClassification(store *storage.CatalogStore) []domain.AdRecord {
	var out []domain.AdRecord
	for _, rec := range store.Records() {
		if rec.HasTraits() || rec.LooksLikeVideo() || !fileExists(rec.LocalImage) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// PendingNewCategories returns analyzed image records with a local creative
// that lack some of the framework's categories.
func PendingNewCategories(store *storage.CatalogStore, fw *traits.Framework) []domain.AdRecord {
	names := fw.Names()
	var out []domain.AdRecord
	for _, rec := range store.Records() {
		if !rec.HasTraits() || rec.LooksLikeVideo() || !fileExists(rec.LocalImage) {
			continue
		}
		if len(rec.MissingTraits(names)) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// ClassifyRun assigns traits to every pending record, one model call at a
// time. A failed classification leaves the record untouched and is
// flagged; a failed catalog save aborts the run. With NewCategories set
// only the categories an analyzed record lacks are requested, and the
// reply is added to its existing traits.
func ClassifyRun(ctx context.Context, store *storage.CatalogStore, classifier TraitClassifier, opts ClassifyOptions) (Summary, error) {
	summary := newSummary()
	records := store.Records()
	names := classifier.Framework().Names()

	logger.Info("pipeline: classify started", "run", summary.RunID,
		"records", len(records), "new_categories", opts.NewCategories)

	calls := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		var missing []string
		if opts.NewCategories {
			missing = rec.MissingTraits(names)
		}

		switch {
		case rec.LooksLikeVideo():
			summary.Skipped++
			tick(opts.Progress, 1)
			continue
		case opts.NewCategories && (!rec.HasTraits() || len(missing) == 0):
			summary.Skipped++
			tick(opts.Progress, 1)
			continue
		case !opts.NewCategories && rec.HasTraits():
			summary.Skipped++
			tick(opts.Progress, 1)
			continue
		case rec.LocalImage == "":
			summary.Skipped++
			summary.Flagged = append(summary.Flagged, report.EntryFor(rec, "no local image"))
			tick(opts.Progress, 1)
			continue
		case !fileExists(rec.LocalImage):
			summary.Skipped++
			summary.Flagged = append(summary.Flagged, report.EntryFor(rec, "local image missing"))
			tick(opts.Progress, 1)
			continue
		}

		if opts.Limit > 0 && calls >= opts.Limit {
			break
		}
		if calls > 0 {
			if err := wait(ctx, opts.Delay); err != nil {
				return summary, err
			}
		}
		calls++

		var (
			assignment traits.Assignment
			err        error
		)
		if opts.NewCategories {
			assignment, err = classifier.ClassifyCategories(ctx, rec.LocalImage, rec.Category, missing)
		} else {
			assignment, err = classifier.ClassifyFile(ctx, rec.LocalImage, rec.Category)
		}
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logger.Warn("pipeline: classification failed", "ad", rec.Name, "error", err)
			summary.Failed++
			summary.Flagged = append(summary.Flagged, report.EntryFor(rec, err.Error()))
			tick(opts.Progress, 1)
			continue
		}

		analyzedAt := time.Now().UTC()
		err = store.Update(rec.Key(), func(r *domain.AdRecord) {
			if !opts.NewCategories || r.Traits == nil {
				r.Traits = make(map[string]string, len(assignment))
			}
			for k, v := range assignment {
				r.Traits[k] = v
			}
			r.AnalyzedAt = &analyzedAt
		})
		if err != nil {
			return summary, err
		}
		if err := store.Save(ctx); err != nil {
			return summary, fmt.Errorf("save catalog: %w", err)
		}
		summary.Succeeded++
		tick(opts.Progress, 1)
	}

	logger.Info("pipeline: classify finished", "run", summary.RunID,
		"succeeded", summary.Succeeded, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}
