package datanorm

import (
	"testing"
)

func TestClassifierInferKind(t *testing.T) {
	c := NewClassifier("windows", "bath")

	tests := []struct {
		name     string
		filename string
		headers  []string
		want     DatasetKind
	}{
		{"top ads", "Windows - Top Ads.csv", []string{"Concepts", "ad_name"}, KindAds},
		{"targeting keyword", "Windows - Targeting Breakdown.csv", []string{"ad_name"}, KindTargeting},
		{"weekly chart", "Bath - Weekly ROAS Performance.csv", []string{"ad_name", "W1"}, KindROASChart},
		{"targeting header", "export.csv", []string{"ad_name", "Targeting", "spend"}, KindTargeting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.InferKind(tt.filename, tt.headers)
			if got != tt.want {
				t.Errorf("InferKind(%q, %v) = %s, want %s", tt.filename, tt.headers, got, tt.want)
			}
		})
	}
}

func TestClassifierInferCategory(t *testing.T) {
	c := NewClassifier("windows", "bath")

	tests := []struct {
		path string
		want string
	}{
		{"data/windows-top-ads.csv", "Windows"},
		{"BATH_targeting.csv", "Bath"},
		{"exports/Roofing - Top Ads.csv", "Roofing"},
		{"misc.csv", ""},
	}
	for _, tt := range tests {
		if got := c.InferCategory(tt.path); got != tt.want {
			t.Errorf("InferCategory(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
