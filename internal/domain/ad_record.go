package domain

import (
	"strings"
	"time"
)

// MediaKind classifies the creative behind an ad.
type MediaKind string

const (
	MediaUnknown MediaKind = ""
	MediaImage   MediaKind = "image"
	MediaVideo   MediaKind = "video"
)

// MediaStatus records the last availability verdict for an ad's source URL.
type MediaStatus string

const (
	MediaUnchecked MediaStatus = ""
	MediaWorking   MediaStatus = "working"
	MediaBroken    MediaStatus = "broken"
	MediaMissing   MediaStatus = "missing"
)

// AdRecord is one ad from a campaign export plus everything later stages
// attach to it. Enrichment fields are only ever added or overwritten,
// never cleared by ingestion.
type AdRecord struct {
	Name     string `json:"adName"`
	ID       string `json:"adId,omitempty"`
	Category string `json:"category,omitempty"`
	Concept  string `json:"concept,omitempty"`

	Spend        float64 `json:"spend"`
	Leads        int     `json:"leads"`
	Appointments int     `json:"appointments"`
	Revenue      float64 `json:"revenue"`
	BAR          string  `json:"bar"`
	ROAS         float64 `json:"roas"`
	AdSets       int     `json:"adsets"`
	CTR          string  `json:"ctr,omitempty"`
	CVR          string  `json:"cvr,omitempty"`

	SourceURL  string `json:"url"`
	LocalImage string `json:"localImage,omitempty"`

	MediaType      MediaKind   `json:"mediaType,omitempty"`
	Width          int         `json:"width,omitempty"`
	Height         int         `json:"height,omitempty"`
	Thumbnail      string      `json:"thumbnail,omitempty"`
	MediaStatus    MediaStatus `json:"mediaStatus,omitempty"`
	MediaDetail    string      `json:"mediaDetail,omitempty"`
	MediaCheckedAt *time.Time  `json:"mediaCheckedAt,omitempty"`

	Targeting  []TargetingLine `json:"targeting,omitempty"`
	WeeklyROAS *ROASSeries     `json:"weeklyRoas,omitempty"`

	Traits     map[string]string `json:"traits,omitempty"`
	AnalyzedAt *time.Time        `json:"analyzedAt,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`

	// Sourced names the export columns this record was read from. The
	// catalog overwrites exactly these on merge, blank or not, and never
	// stores the set itself.
	Sourced map[string]bool `json:"-"`
}

// Fields a campaign export can supply. Unmapped columns are sourced as
// ExtraField(header).
const (
	FieldID           = "id"
	FieldConcept      = "concept"
	FieldSpend        = "spend"
	FieldLeads        = "leads"
	FieldAppointments = "appointments"
	FieldRevenue      = "revenue"
	FieldBAR          = "bar"
	FieldROAS         = "roas"
	FieldAdSets       = "adsets"
	FieldCTR          = "ctr"
	FieldCVR          = "cvr"
	FieldURL          = "url"
)

const extraFieldPrefix = "extra:"

// ExtraField is the Sourced name of an unmapped export column.
func ExtraField(header string) string {
	return extraFieldPrefix + header
}

// IsExtraField reports whether field names an unmapped column and returns
// the column header.
func IsExtraField(field string) (string, bool) {
	if !strings.HasPrefix(field, extraFieldPrefix) {
		return "", false
	}
	return strings.TrimPrefix(field, extraFieldPrefix), true
}

// HasSource reports whether the record was read with field present.
func (r AdRecord) HasSource(field string) bool {
	return r.Sourced[field]
}

// TargetingLine is one audience breakdown row for an ad. The per-ad
// summary row carries IsTotal.
type TargetingLine struct {
	Targeting string  `json:"targeting"`
	Spend     float64 `json:"spend"`
	BAR       string  `json:"bar"`
	ROAS      float64 `json:"roas"`
	CTR       string  `json:"ctr"`
	CVR       string  `json:"cvr"`
	IsTotal   bool    `json:"isTotal,omitempty"`
}

// ROASSeries is an ad's weekly return-on-ad-spend, aligned by index.
type ROASSeries struct {
	Weeks  []string  `json:"weeks"`
	Values []float64 `json:"values"`
}

// RecordKey builds the catalog key for an ad. Category-qualified keys keep
// identically named ads from different datasets apart.
func RecordKey(category, name string) string {
	if category == "" {
		return name
	}
	return category + "/" + name
}

// Key returns the record's catalog key.
func (r AdRecord) Key() string {
	return RecordKey(r.Category, r.Name)
}

// HasTraits reports whether the record has been classified.
func (r AdRecord) HasTraits() bool {
	return len(r.Traits) > 0
}

// MissingTraits returns the names, in the given order, the record's traits
// have no value for. A record without traits is missing all of them.
func (r AdRecord) MissingTraits(names []string) []string {
	var missing []string
	for _, n := range names {
		if _, ok := r.Traits[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// LooksLikeVideo applies the naming heuristics used across campaign
// exports: "_vid_" or "video" in the ad name, or an .mp4 source.
func (r AdRecord) LooksLikeVideo() bool {
	if r.MediaType == MediaVideo {
		return true
	}
	name := strings.ToLower(r.Name)
	if strings.Contains(name, "_vid_") || strings.Contains(name, "video") {
		return true
	}
	u := strings.ToLower(r.SourceURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.HasSuffix(u, ".mp4")
}

// Clone returns a deep copy so callers can mutate without touching the
// stored record.
func (r AdRecord) Clone() AdRecord {
	out := r
	if r.Targeting != nil {
		out.Targeting = append([]TargetingLine(nil), r.Targeting...)
	}
	if r.WeeklyROAS != nil {
		w := ROASSeries{
			Weeks:  append([]string(nil), r.WeeklyROAS.Weeks...),
			Values: append([]float64(nil), r.WeeklyROAS.Values...),
		}
		out.WeeklyROAS = &w
	}
	out.Traits = cloneMap(r.Traits)
	out.Extra = cloneMap(r.Extra)
	if r.Sourced != nil {
		out.Sourced = make(map[string]bool, len(r.Sourced))
		for k, v := range r.Sourced {
			out.Sourced[k] = v
		}
	}
	if r.AnalyzedAt != nil {
		t := *r.AnalyzedAt
		out.AnalyzedAt = &t
	}
	if r.MediaCheckedAt != nil {
		t := *r.MediaCheckedAt
		out.MediaCheckedAt = &t
	}
	return out
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
