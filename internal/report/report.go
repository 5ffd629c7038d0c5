// Package report writes the flagged-item CSVs and end-of-run summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/ignite/creative-catalog/internal/domain"
)

// Entry is one flagged ad.
type Entry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Reason   string `json:"reason"`
}

// EntryFor builds an entry from a record.
func EntryFor(rec domain.AdRecord, reason string) Entry {
	return Entry{Name: rec.Name, Category: rec.Category, URL: rec.SourceURL, Reason: reason}
}

// Summary is the outcome of one batch run.
type Summary struct {
	RunID     string  `json:"runId"`
	Succeeded int     `json:"succeeded"`
	Skipped   int     `json:"skipped"`
	Failed    int     `json:"failed"`
	Flagged   []Entry `json:"flagged,omitempty"`
}

// Total is the number of records the run looked at.
func (s Summary) Total() int { return s.Succeeded + s.Skipped + s.Failed }

var header = []string{"name", "category", "url", "reason"}

// WriteCSV writes entries to path, creating parent directories. A report
// with no entries still gets its header row.
func WriteCSV(path string, entries []Entry) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes entries as CSV to w.
func Write(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Name, e.Category, e.URL, e.Reason}); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// PrintSummary writes a short human-readable run summary.
func PrintSummary(w io.Writer, title string, s Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", title)
	if s.RunID != "" {
		fmt.Fprintf(tw, "  run\t%s\n", s.RunID)
	}
	fmt.Fprintf(tw, "  succeeded\t%d\n", s.Succeeded)
	fmt.Fprintf(tw, "  skipped\t%d\n", s.Skipped)
	fmt.Fprintf(tw, "  failed\t%d\n", s.Failed)
	fmt.Fprintf(tw, "  flagged\t%d\n", len(s.Flagged))
	tw.Flush()
}
