package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cfgFile, logLevel = "", ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestIngestThenReportMissing(t *testing.T) {
	t.Setenv("CATALOG_S3_BUCKET", "")
	t.Setenv("CATALOG_PATH", "")
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
catalog:
  path: %s
reports:
  dir: %s
`, filepath.Join(dir, "catalog.json"), filepath.Join(dir, "reports"))), 0644))

	csvPath := filepath.Join(dir, "ads.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Ad Name,Spend,URL\nAd One,10,https://cdn.example.com/one.jpg\nAd Two,5,\n"), 0644))

	out := run(t, "--config", cfgPath, "ingest", "--category", "Roofing", "--kind", "ads", csvPath)
	assert.Contains(t, out, "imported=2")
	assert.Contains(t, out, "now holds 2 records")

	out = run(t, "--config", cfgPath, "report", "missing")
	assert.Contains(t, out, "1 of 2 records flagged")

	f, err := os.Open(filepath.Join(dir, "reports", "Ads Missing Media.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "category", "url", "reason"},
		{"Ad Two", "Roofing", "", "no url"},
	}, rows)
}

func TestFrameworkBuild(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "traits.csv")
	require.NoError(t, os.WriteFile(sheet, []byte(
		"Color Scheme,CTA (Text Itself)\nBright,Call now\nMuted,Get a quote\nBright,\n"), 0644))
	output := filepath.Join(dir, "framework.json")

	out := run(t, "framework", "build", sheet, "--output", output)
	assert.Contains(t, out, "wrote 2 categories")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Color Scheme": {"kind": "selectable", "options": ["Bright", "Muted"]},
		"CTA (Text Itself)": {"kind": "freetext", "options": []}
	}`, string(data))
}

func TestNewCategoriesDryRunAndUnanalyzedReport(t *testing.T) {
	t.Setenv("CATALOG_S3_BUCKET", "")
	t.Setenv("CATALOG_PATH", "")
	dir := t.TempDir()

	img := filepath.Join(dir, "ad-one.jpg")
	require.NoError(t, os.WriteFile(img, []byte("jpeg"), 0644))
	fwPath := filepath.Join(dir, "framework.json")
	require.NoError(t, os.WriteFile(fwPath, []byte(`{
		"Color Scheme": {"kind": "selectable", "options": ["Bright", "Muted"]},
		"People": {"kind": "selectable", "options": ["Yes", "No"]}
	}`), 0644))
	catalogPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(fmt.Sprintf(`{
		"Roofing/Ad One": {"adName": "Ad One", "category": "Roofing", "url": "", "localImage": %q,
			"mediaType": "image", "traits": {"Color Scheme": "Bright"}},
		"Roofing/Ad Two": {"adName": "Ad Two", "category": "Roofing", "url": "", "mediaType": "image"}
	}`, img)), 0644))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
catalog:
  path: %s
traits:
  framework_path: %s
reports:
  dir: %s
`, catalogPath, fwPath, filepath.Join(dir, "reports"))), 0644))

	out := run(t, "--config", cfgPath, "classify", "--dry-run", "--new-categories")
	assert.Contains(t, out, "1 records waiting for classification")
	assert.Contains(t, out, "Roofing/Ad One (missing: People)")
	assert.NotContains(t, out, "Ad Two")

	out = run(t, "--config", cfgPath, "report", "unanalyzed")
	assert.Contains(t, out, "2 of 2 records flagged")

	f, err := os.Open(filepath.Join(dir, "reports", "Ads Not Analyzed.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "category", "url", "reason"},
		{"Ad Two", "Roofing", "", "no local image"},
		{"Ad One", "Roofing", "", "missing traits: People"},
	}, rows)
}
