package datanorm

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Classifier derives a dataset's category tag and kind from its file name
// and header row when the configuration leaves them out.
type Classifier struct {
	categories []string
}

// NewClassifier returns a classifier that recognises the given category
// keywords in file names, e.g. "windows", "bath".
func NewClassifier(categories ...string) *Classifier {
	return &Classifier{categories: categories}
}

var (
	targetingKeywords = []string{"targeting", "breakdown", "audience"}
	chartKeywords     = []string{"roas chart", "roas-chart", "roas_chart", "weekly roas", "weekly"}
	targetingHeaders  = []string{"targeting"}
)

// InferCategory returns the title-cased category named in a file path.
// Known keywords win; otherwise the text before the first " - " in the
// file name is used ("Windows - Top Ads.csv" → "Windows").
func (c *Classifier) InferCategory(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	lower := strings.ToLower(base)

	for _, kw := range c.categories {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return titleCase(kw)
		}
	}
	if prefix, _, found := strings.Cut(base, " - "); found {
		return titleCase(strings.TrimSpace(prefix))
	}
	return ""
}

// InferKind determines the dataset kind from the file name and header row.
func (c *Classifier) InferKind(path string, headers []string) DatasetKind {
	lower := strings.ToLower(filepath.Base(path))

	for _, kw := range chartKeywords {
		if strings.Contains(lower, kw) {
			return KindROASChart
		}
	}
	for _, kw := range targetingKeywords {
		if strings.Contains(lower, kw) {
			return KindTargeting
		}
	}
	for _, h := range headers {
		hLower := strings.ToLower(strings.TrimSpace(h))
		for _, th := range targetingHeaders {
			if hLower == th {
				return KindTargeting
			}
		}
	}
	return KindAds
}

// titleCase builds a Caser per call; Casers are stateful and not safe to share.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}
