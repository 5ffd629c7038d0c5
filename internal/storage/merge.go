package storage

import "github.com/ignite/creative-catalog/internal/domain"

// overlay folds src into dst. Export fields src was read with (src.Sourced)
// always win, so a spend that drops to 0 or a URL removed upstream is
// recorded. Any other field is taken from src only when it is set there;
// enrichment never comes from an export and is kept. Traits are replaced
// as a unit because a classification is only valid as a whole.
func overlay(dst *domain.AdRecord, src domain.AdRecord) {
	has := src.HasSource

	mergeString(&dst.ID, src.ID, has(domain.FieldID))
	mergeString(&dst.Concept, src.Concept, has(domain.FieldConcept))

	mergeFloat(&dst.Spend, src.Spend, has(domain.FieldSpend))
	mergeInt(&dst.Leads, src.Leads, has(domain.FieldLeads))
	mergeInt(&dst.Appointments, src.Appointments, has(domain.FieldAppointments))
	mergeFloat(&dst.Revenue, src.Revenue, has(domain.FieldRevenue))
	mergeString(&dst.BAR, src.BAR, has(domain.FieldBAR))
	mergeFloat(&dst.ROAS, src.ROAS, has(domain.FieldROAS))
	mergeInt(&dst.AdSets, src.AdSets, has(domain.FieldAdSets))
	mergeString(&dst.CTR, src.CTR, has(domain.FieldCTR))
	mergeString(&dst.CVR, src.CVR, has(domain.FieldCVR))

	mergeString(&dst.SourceURL, src.SourceURL, has(domain.FieldURL))
	mergeString(&dst.LocalImage, src.LocalImage, false)

	if src.MediaType != domain.MediaUnknown {
		dst.MediaType = src.MediaType
	}
	mergeInt(&dst.Width, src.Width, false)
	mergeInt(&dst.Height, src.Height, false)
	mergeString(&dst.Thumbnail, src.Thumbnail, false)
	if src.MediaStatus != domain.MediaUnchecked {
		dst.MediaStatus = src.MediaStatus
	}
	mergeString(&dst.MediaDetail, src.MediaDetail, false)
	if src.MediaCheckedAt != nil {
		dst.MediaCheckedAt = src.MediaCheckedAt
	}

	if len(src.Targeting) > 0 {
		dst.Targeting = src.Targeting
	}
	if src.WeeklyROAS != nil {
		dst.WeeklyROAS = src.WeeklyROAS
	}

	if len(src.Traits) > 0 {
		dst.Traits = src.Traits
	}
	if src.AnalyzedAt != nil {
		dst.AnalyzedAt = src.AnalyzedAt
	}

	for k, v := range src.Extra {
		if dst.Extra == nil {
			dst.Extra = make(map[string]string, len(src.Extra))
		}
		dst.Extra[k] = v
	}
	// Blank export columns clear what an earlier export stored
	for field := range src.Sourced {
		header, ok := domain.IsExtraField(field)
		if !ok {
			continue
		}
		if _, set := src.Extra[header]; !set {
			delete(dst.Extra, header)
		}
	}
	if len(dst.Extra) == 0 {
		dst.Extra = nil
	}
}

func mergeString(dst *string, v string, sourced bool) {
	if sourced || v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int, sourced bool) {
	if sourced || v != 0 {
		*dst = v
	}
}

func mergeFloat(dst *float64, v float64, sourced bool) {
	if sourced || v != 0 {
		*dst = v
	}
}
