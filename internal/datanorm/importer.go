package datanorm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
)

// RecordSink receives normalized records. *storage.CatalogStore satisfies it.
type RecordSink interface {
	Merge(rec domain.AdRecord) domain.AdRecord
	Update(key string, fn func(*domain.AdRecord)) error
}

// Dataset describes one CSV input.
type Dataset struct {
	Name         string // category tag
	Path         string
	Kind         DatasetKind
	HeaderMarker string
	KeyColumn    string
}

// Importer reads dataset files and merges their rows into a sink.
type Importer struct {
	sink       RecordSink
	classifier *Classifier
}

// NewImporter creates an importer writing into sink.
func NewImporter(sink RecordSink, classifier *Classifier) *Importer {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Importer{sink: sink, classifier: classifier}
}

// ImportFile reads one dataset file and merges it into the sink.
func (imp *Importer) ImportFile(ctx context.Context, ds Dataset) (*ImportResult, error) {
	data, err := os.ReadFile(ds.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", ds.Path, err)
	}
	return imp.ImportText(ctx, string(data), ds)
}

// ImportText is ImportFile for CSV content already in memory.
func (imp *Importer) ImportText(ctx context.Context, text string, ds Dataset) (*ImportResult, error) {
	start := time.Now()

	opts := ReaderOptions{HeaderMode: HeaderFirstLine, KeyColumn: ds.KeyColumn}
	if ds.HeaderMarker != "" {
		opts.HeaderMode = HeaderScanForMarker
		opts.Marker = ds.HeaderMarker
	}
	table, err := ReadCSV(text, opts)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", ds.Path, err)
	}

	category := ds.Name
	if category == "" {
		category = imp.classifier.InferCategory(ds.Path)
	}
	kind := ds.Kind
	if kind == "" {
		kind = imp.classifier.InferKind(ds.Path, table.Headers)
	}

	result := &ImportResult{
		File:      ds.Path,
		Kind:      kind,
		Category:  category,
		TotalRows: len(table.Rows) + table.Skipped + table.Excluded,
		ErrorRows: table.Skipped,
	}
	result.SkippedRows = table.Excluded

	switch kind {
	case KindAds:
		err = imp.importAds(ctx, table, category, result)
	case KindTargeting:
		err = imp.importTargeting(ctx, table, category, result)
	case KindROASChart:
		err = imp.importChart(ctx, table, category, result)
	default:
		err = fmt.Errorf("unknown dataset kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", ds.Path, err)
	}

	result.Duration = time.Since(start)
	logger.Info("datanorm: dataset imported",
		"file", ds.Path, "kind", kind, "category", category,
		"rows", result.TotalRows, "imported", result.ImportedRows,
		"skipped", result.SkippedRows, "errors", result.ErrorRows)
	return result, nil
}

func (imp *Importer) importAds(ctx context.Context, table *Table, category string, result *ImportResult) error {
	records, dropped, err := NormalizeTable(table, category)
	if err != nil {
		return err
	}
	result.SkippedRows += dropped
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		imp.sink.Merge(*rec)
		result.ImportedRows++
	}
	return nil
}

func (imp *Importer) importTargeting(ctx context.Context, table *Table, category string, result *ImportResult) error {
	set, err := ParseTargeting(table)
	if err != nil {
		return err
	}
	result.SkippedRows += set.Orphans
	for _, name := range set.Order {
		if err := ctx.Err(); err != nil {
			return err
		}
		lines := set.Lines[name]
		err := imp.sink.Update(domain.RecordKey(category, name), func(rec *domain.AdRecord) {
			rec.Targeting = lines
		})
		if err != nil {
			logger.Warn("datanorm: targeting for unknown ad", "ad", name, "category", category)
			result.SkippedRows++
			continue
		}
		result.ImportedRows++
	}
	return nil
}

func (imp *Importer) importChart(ctx context.Context, table *Table, category string, result *ImportResult) error {
	set, err := ParseROASChart(table)
	if err != nil {
		return err
	}
	for _, name := range set.Order {
		if err := ctx.Err(); err != nil {
			return err
		}
		series := set.Series[name]
		err := imp.sink.Update(domain.RecordKey(category, name), func(rec *domain.AdRecord) {
			rec.WeeklyROAS = series
		})
		if err != nil {
			logger.Warn("datanorm: weekly ROAS for unknown ad", "ad", name, "category", category)
			result.SkippedRows++
			continue
		}
		result.ImportedRows++
	}
	return nil
}
