package report

import (
	"strings"

	"github.com/ignite/creative-catalog/internal/domain"
)

// MissingMedia lists records with no source URL.
func MissingMedia(records []domain.AdRecord) []Entry {
	var out []Entry
	for _, r := range records {
		if r.SourceURL == "" {
			out = append(out, EntryFor(r, "no url"))
		}
	}
	return out
}

// BrokenMedia lists records whose last availability check failed. The
// reason is the recorded probe detail.
func BrokenMedia(records []domain.AdRecord) []Entry {
	var out []Entry
	for _, r := range records {
		if r.MediaStatus != domain.MediaBroken {
			continue
		}
		reason := r.MediaDetail
		if reason == "" {
			reason = "broken"
		}
		out = append(out, EntryFor(r, reason))
	}
	return out
}

// Unanalyzed lists image records that carry no traits yet.
func Unanalyzed(records []domain.AdRecord) []Entry {
	var out []Entry
	for _, r := range records {
		if r.HasTraits() || r.LooksLikeVideo() {
			continue
		}
		reason := "not analyzed"
		if r.LocalImage == "" {
			reason = "no local image"
		}
		out = append(out, EntryFor(r, reason))
	}
	return out
}

// Incomplete lists analyzed records that lack some of the named trait
// categories, typically ones added to the framework after they were
// classified.
func Incomplete(records []domain.AdRecord, categories []string) []Entry {
	var out []Entry
	for _, r := range records {
		if !r.HasTraits() || r.LooksLikeVideo() {
			continue
		}
		if missing := r.MissingTraits(categories); len(missing) > 0 {
			out = append(out, EntryFor(r, "missing traits: "+strings.Join(missing, ", ")))
		}
	}
	return out
}
