package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/media"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
	"github.com/ignite/creative-catalog/internal/report"
	"github.com/ignite/creative-catalog/internal/storage"
)

// AuditOptions configures AuditRun.
type AuditOptions struct {
	// BatchSize is the number of URLs probed between catalog saves.
	BatchSize int
	// ProbeLocal probes URLs even when the creative is already on disk.
	ProbeLocal bool
	Progress   Progress
}

// AuditRun records the media status of every ad. Ads without a URL are
// missing, ads whose creative is already on disk are working, and the rest
// are probed. Missing and broken ads are flagged.
func AuditRun(ctx context.Context, store *storage.CatalogStore, checker *media.Checker, opts AuditOptions) (Summary, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	summary := newSummary()
	now := time.Now().UTC()

	var probe []domain.AdRecord
	for _, rec := range store.Records() {
		switch {
		case rec.SourceURL == "":
			summary.Failed++
			summary.Flagged = append(summary.Flagged, report.EntryFor(rec, "no url"))
			setStatus(store, rec.Key(), domain.MediaMissing, "no url", now)
			tick(opts.Progress, 1)
		case !opts.ProbeLocal && fileExists(rec.LocalImage):
			summary.Skipped++
			setStatus(store, rec.Key(), domain.MediaWorking, "local file", now)
			tick(opts.Progress, 1)
		default:
			probe = append(probe, rec)
		}
	}
	if err := store.Save(ctx); err != nil {
		return summary, fmt.Errorf("save catalog: %w", err)
	}

	logger.Info("pipeline: audit started", "run", summary.RunID, "probes", len(probe), "missing", summary.Failed)

	for start := 0; start < len(probe); start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		end := start + opts.BatchSize
		if end > len(probe) {
			end = len(probe)
		}
		batch := probe[start:end]

		urls := make([]string, len(batch))
		for i, rec := range batch {
			urls[i] = rec.SourceURL
		}
		results := checker.CheckAll(ctx, urls, nil)
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		checkedAt := time.Now().UTC()
		for i, rec := range batch {
			res := results[i]
			if res.Working {
				summary.Succeeded++
				setStatus(store, rec.Key(), domain.MediaWorking, "", checkedAt)
				continue
			}
			summary.Failed++
			summary.Flagged = append(summary.Flagged, report.EntryFor(rec, res.Detail))
			setStatus(store, rec.Key(), domain.MediaBroken, res.Detail, checkedAt)
		}

		if err := store.Save(ctx); err != nil {
			return summary, fmt.Errorf("save catalog: %w", err)
		}
		tick(opts.Progress, len(batch))
	}

	logger.Info("pipeline: audit finished", "run", summary.RunID,
		"working", summary.Succeeded, "local", summary.Skipped, "flagged", len(summary.Flagged))
	return summary, nil
}

func setStatus(store *storage.CatalogStore, key string, status domain.MediaStatus, detail string, at time.Time) {
	err := store.Update(key, func(r *domain.AdRecord) {
		r.MediaStatus = status
		r.MediaDetail = detail
		t := at
		r.MediaCheckedAt = &t
	})
	if err != nil {
		logger.Warn("pipeline: status update failed", "key", key, "error", err)
	}
}
