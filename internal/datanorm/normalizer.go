package datanorm

import (
	"github.com/ignite/creative-catalog/internal/domain"
)

// sourcedFields maps the columns that feed record fields to the names the
// catalog uses when merging. Name and category form the key and are not
// listed.
var sourcedFields = map[CanonicalField]string{
	FieldID:           domain.FieldID,
	FieldConcept:      domain.FieldConcept,
	FieldSpend:        domain.FieldSpend,
	FieldLeads:        domain.FieldLeads,
	FieldAppointments: domain.FieldAppointments,
	FieldRevenue:      domain.FieldRevenue,
	FieldBAR:          domain.FieldBAR,
	FieldROAS:         domain.FieldROAS,
	FieldAdSets:       domain.FieldAdSets,
	FieldCTR:          domain.FieldCTR,
	FieldCVR:          domain.FieldCVR,
	FieldURL:          domain.FieldURL,
}

// NormalizeRow converts one mapped CSV row into an AdRecord. The category
// argument is the dataset tag and, with the name, forms the record key. A
// Category column in the row is kept in Extra like any unmapped column, so
// targeting and chart files for the same dataset find the record.
// Rows without an ad name return ErrMissingName.
func NormalizeRow(row Row, m *ColumnMapping, category string) (*domain.AdRecord, error) {
	rec := &domain.AdRecord{Category: category, Sourced: make(map[string]bool)}

	for _, h := range m.RawNames {
		raw := row.Values[h]
		field, mapped := m.FieldMap[h]
		if !mapped {
			rec.Sourced[domain.ExtraField(h)] = true
			if v := CleanString(raw); v != "" {
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[h] = v
			}
			continue
		}
		if sourced, ok := sourcedFields[field]; ok {
			rec.Sourced[sourced] = true
		}

		switch field {
		case FieldName:
			rec.Name = CleanString(raw)
		case FieldID:
			rec.ID = CleanString(raw)
		case FieldConcept:
			rec.Concept = CleanString(raw)
		case FieldSpend:
			rec.Spend = ParseNumber(raw)
		case FieldLeads:
			rec.Leads = ParseInt(raw)
		case FieldAppointments:
			rec.Appointments = ParseInt(raw)
		case FieldRevenue:
			rec.Revenue = ParseNumber(raw)
		case FieldBAR:
			rec.BAR = FormatPercent(raw, BARDecimals)
		case FieldROAS:
			rec.ROAS = ParseNumber(raw)
		case FieldAdSets:
			rec.AdSets = ParseInt(raw)
		case FieldCTR:
			rec.CTR = FormatPercent(raw, RateDecimals)
		case FieldCVR:
			rec.CVR = FormatPercent(raw, RateDecimals)
		case FieldURL:
			// Stored verbatim; signed CDN links break if re-encoded.
			rec.SourceURL = CleanString(raw)
		}
	}

	if rec.Name == "" {
		return nil, ErrMissingName
	}
	if rec.LooksLikeVideo() {
		rec.MediaType = domain.MediaVideo
	}
	return rec, nil
}

// NormalizeTable converts every row of an ads table. Rows without a name
// are counted, not returned.
func NormalizeTable(t *Table, category string) ([]*domain.AdRecord, int, error) {
	m := MapColumns(t.Headers)
	if m == nil {
		return nil, 0, ErrNoNameColumn
	}
	records := make([]*domain.AdRecord, 0, len(t.Rows))
	dropped := 0
	for _, row := range t.Rows {
		rec, err := NormalizeRow(row, m, category)
		if err != nil {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}
