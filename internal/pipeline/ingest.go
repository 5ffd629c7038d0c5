package pipeline

import (
	"context"
	"fmt"

	"github.com/ignite/creative-catalog/internal/config"
	"github.com/ignite/creative-catalog/internal/datanorm"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
	"github.com/ignite/creative-catalog/internal/storage"
)

// Datasets converts configured inputs to importer datasets. Ad datasets
// come first so targeting and chart rows find their records.
func Datasets(cfgs []config.DatasetConfig) []datanorm.Dataset {
	var ads, rest []datanorm.Dataset
	for _, c := range cfgs {
		ds := datanorm.Dataset{
			Name:         c.Name,
			Path:         c.Path,
			Kind:         datanorm.DatasetKind(c.Kind),
			HeaderMarker: c.HeaderMarker,
			KeyColumn:    c.KeyColumn,
		}
		if ds.Kind == datanorm.KindAds || ds.Kind == "" {
			ads = append(ads, ds)
		} else {
			rest = append(rest, ds)
		}
	}
	return append(ads, rest...)
}

// Ingest imports each dataset into the store and saves after every file.
// A dataset that cannot be read or parsed stops the run.
func Ingest(ctx context.Context, store *storage.CatalogStore, datasets []datanorm.Dataset, classifier *datanorm.Classifier) ([]*datanorm.ImportResult, error) {
	importer := datanorm.NewImporter(store, classifier)

	results := make([]*datanorm.ImportResult, 0, len(datasets))
	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := importer.ImportFile(ctx, ds)
		if err != nil {
			return results, err
		}
		results = append(results, res)

		if err := store.Save(ctx); err != nil {
			return results, fmt.Errorf("save catalog after %s: %w", ds.Path, err)
		}
	}

	logger.Info("pipeline: ingest complete", "datasets", len(results), "records", store.Len())
	return results, nil
}
