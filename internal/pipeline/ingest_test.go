package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/creative-catalog/internal/config"
	"github.com/ignite/creative-catalog/internal/datanorm"
	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/media"
)

func TestDatasets_AdsFirst(t *testing.T) {
	got := Datasets([]config.DatasetConfig{
		{Name: "Solar", Path: "t.csv", Kind: "targeting"},
		{Name: "Solar", Path: "a.csv", Kind: "ads"},
		{Name: "Solar", Path: "c.csv", Kind: "roas_chart"},
		{Path: "Roofing - Top Ads.csv"},
	})

	paths := make([]string, len(got))
	for i, ds := range got {
		paths[i] = ds.Path
	}
	assert.Equal(t, []string{"a.csv", "Roofing - Top Ads.csv", "t.csv", "c.csv"}, paths)
	assert.Equal(t, datanorm.KindTargeting, got[2].Kind)
}

func TestIngest_TargetingAfterAds(t *testing.T) {
	dir := t.TempDir()
	ads := writeFile(t, filepath.Join(dir, "ads.csv"), []byte("ad_name,spend\nAd One,100\n"))
	tgt := writeFile(t, filepath.Join(dir, "targeting.csv"), []byte(
		"Ad Name,Targeting,Spend,BAR,ROAS\n"+
			"Ad One,Homeowners 35+,60,0.3,2.5\n"+
			",Lookalike 1%,40,0.2,1.5\n"))

	store := newStore(t)
	results, err := Ingest(context.Background(), store, []datanorm.Dataset{
		{Name: "Solar", Path: ads, Kind: datanorm.KindAds},
		{Name: "Solar", Path: tgt, Kind: datanorm.KindTargeting},
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	rec := mustGet(t, reopen(t, store), "Solar/Ad One")
	assert.Equal(t, 100.0, rec.Spend)
	require.Len(t, rec.Targeting, 2)
	assert.Equal(t, "Lookalike 1%", rec.Targeting[1].Targeting)
}

func TestIngest_ReimportAppliesBlankAndZeroValues(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := newStore(t)

	first := writeFile(t, filepath.Join(dir, "week1.csv"), []byte("ad_name,spend,url\nAd One,100,http://x/a.jpg\n"))
	_, err := Ingest(ctx, store, []datanorm.Dataset{{Name: "Solar", Path: first, Kind: datanorm.KindAds}}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Update("Solar/Ad One", func(r *domain.AdRecord) {
		r.Traits = map[string]string{"Tone": "Calm"}
	}))

	second := writeFile(t, filepath.Join(dir, "week2.csv"), []byte("ad_name,spend,url\nAd One,0,\n"))
	_, err = Ingest(ctx, store, []datanorm.Dataset{{Name: "Solar", Path: second, Kind: datanorm.KindAds}}, nil)
	require.NoError(t, err)

	rec := mustGet(t, reopen(t, store), "Solar/Ad One")
	assert.Equal(t, 0.0, rec.Spend)
	assert.Empty(t, rec.SourceURL)
	assert.Equal(t, "Calm", rec.Traits["Tone"])

	summary, err := AuditRun(ctx, store, media.NewChecker(nil), AuditOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Flagged, 1)
	assert.Equal(t, "no url", summary.Flagged[0].Reason)
}

func TestIngest_MissingFileStops(t *testing.T) {
	store := newStore(t)
	_, err := Ingest(context.Background(), store, []datanorm.Dataset{
		{Name: "Solar", Path: filepath.Join(t.TempDir(), "nope.csv"), Kind: datanorm.KindAds},
	}, nil)
	assert.Error(t, err)
}
