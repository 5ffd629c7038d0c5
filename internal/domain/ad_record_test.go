package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "Windows/Ad One", RecordKey("Windows", "Ad One"))
	assert.Equal(t, "Ad One", RecordKey("", "Ad One"))
	assert.Equal(t, "Bath/x", AdRecord{Name: "x", Category: "Bath"}.Key())
}

func TestLooksLikeVideo(t *testing.T) {
	tests := []struct {
		rec  AdRecord
		want bool
	}{
		{AdRecord{Name: "spring_vid_01"}, true},
		{AdRecord{Name: "Testimonial Video A"}, true},
		{AdRecord{Name: "hero", SourceURL: "https://cdn.example.com/clip.MP4?x=1"}, true},
		{AdRecord{Name: "hero", MediaType: MediaVideo}, true},
		{AdRecord{Name: "hero", SourceURL: "https://cdn.example.com/hero.jpg"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rec.LooksLikeVideo(), tt.rec.Name)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := AdRecord{
		Name:       "a",
		Traits:     map[string]string{"Tone": "Calm"},
		Targeting:  []TargetingLine{{Targeting: "Broad"}},
		WeeklyROAS: &ROASSeries{Weeks: []string{"W1"}, Values: []float64{1.5}},
	}
	cp := orig.Clone()
	cp.Traits["Tone"] = "Urgent"
	cp.Targeting[0].Targeting = "Lookalike"
	cp.WeeklyROAS.Values[0] = 9

	assert.Equal(t, "Calm", orig.Traits["Tone"])
	assert.Equal(t, "Broad", orig.Targeting[0].Targeting)
	assert.Equal(t, 1.5, orig.WeeklyROAS.Values[0])
	assert.True(t, cp.HasTraits())
}

func TestExtraField(t *testing.T) {
	header, ok := IsExtraField(ExtraField("Platform"))
	assert.True(t, ok)
	assert.Equal(t, "Platform", header)

	_, ok = IsExtraField(FieldSpend)
	assert.False(t, ok)
}

func TestCloneCopiesSourced(t *testing.T) {
	rec := AdRecord{Name: "a", Sourced: map[string]bool{FieldURL: true}}
	c := rec.Clone()
	c.Sourced[FieldSpend] = true

	assert.True(t, c.HasSource(FieldURL))
	assert.False(t, rec.HasSource(FieldSpend))
}

func TestMissingTraits(t *testing.T) {
	rec := AdRecord{Traits: map[string]string{"Tone": "Calm", "Human presence": ""}}
	names := []string{"Tone", "FREE present", "Human presence", "ALL CAPS headline"}

	assert.Equal(t, []string{"FREE present", "ALL CAPS headline"}, rec.MissingTraits(names))
	assert.Equal(t, names, AdRecord{}.MissingTraits(names))
	assert.Nil(t, rec.MissingTraits([]string{"Tone"}))
}
