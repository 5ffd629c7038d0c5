// Package pipeline runs the batch stages over the catalog: ingest, media
// download, availability audit and trait classification. Every stage is
// sequential except the audit, which probes in bounded batches, and every
// stage saves the catalog as it goes so an interrupted run loses at most
// the item in flight.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/creative-catalog/internal/report"
)

// Summary is the outcome of one run.
type Summary = report.Summary

// Progress receives one tick per processed record. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(n int) error
}

func newSummary() Summary {
	return Summary{RunID: uuid.NewString()}
}

func tick(p Progress, n int) {
	if p != nil {
		p.Add(n)
	}
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
