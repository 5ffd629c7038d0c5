package datanorm

import "strings"

// CanonicalField is a normalized field name shared by every campaign export.
type CanonicalField string

const (
	FieldName         CanonicalField = "name"
	FieldID           CanonicalField = "id"
	FieldConcept      CanonicalField = "concept"
	FieldSpend        CanonicalField = "spend"
	FieldLeads        CanonicalField = "leads"
	FieldAppointments CanonicalField = "appointments"
	FieldRevenue      CanonicalField = "revenue"
	FieldBAR          CanonicalField = "bar"
	FieldROAS         CanonicalField = "roas"
	FieldAdSets       CanonicalField = "adsets"
	FieldCTR          CanonicalField = "ctr"
	FieldCVR          CanonicalField = "cvr"
	FieldURL          CanonicalField = "url"
	FieldTargeting    CanonicalField = "targeting"
)

// columnAliases maps lowercase header names to canonical fields.
// When multiple raw headers mean the same thing, they all map here.
var columnAliases = map[string]CanonicalField{
	// Ad name
	"ad_name": FieldName,
	"ad name": FieldName,
	"adname":  FieldName,
	"name":    FieldName,

	// Ad id
	"ad_id": FieldID,
	"ad id": FieldID,
	"adid":  FieldID,

	"concepts": FieldConcept,
	"concept":  FieldConcept,

	// Performance
	"sum of spend":         FieldSpend,
	"spend":                FieldSpend,
	"amount spent":         FieldSpend,
	"sum of matched_leads": FieldLeads,
	"matched_leads":        FieldLeads,
	"leads":                FieldLeads,
	"sum of booked_appts":  FieldAppointments,
	"booked_appts":         FieldAppointments,
	"appointments":         FieldAppointments,
	"sum of hs_rev":        FieldRevenue,
	"hs_rev":               FieldRevenue,
	"revenue":              FieldRevenue,
	"bar":                  FieldBAR,
	"roas":                 FieldROAS,
	"# of adsets":          FieldAdSets,
	"adsets":               FieldAdSets,
	"ctr":                  FieldCTR,
	"cvr":                  FieldCVR,

	// Creative URL
	"url":          FieldURL,
	"creative_url": FieldURL,
	"image_url":    FieldURL,
	"media_url":    FieldURL,
	"image url":    FieldURL,

	"targeting": FieldTargeting,
}

// ColumnMapping holds the resolved mapping from header names to canonical fields.
type ColumnMapping struct {
	NameHeader string
	FieldMap   map[string]CanonicalField // raw header -> canonical field
	RawNames   []string                  // original header names
}

// Header returns the raw header mapped to a canonical field, or "".
func (m *ColumnMapping) Header(field CanonicalField) string {
	for _, h := range m.RawNames {
		if m.FieldMap[h] == field {
			return h
		}
	}
	return ""
}

// MapColumns takes a trimmed header row and returns a resolved mapping.
// Returns nil if no ad name column is found.
func MapColumns(header []string) *ColumnMapping {
	m := &ColumnMapping{
		FieldMap: make(map[string]CanonicalField, len(header)),
		RawNames: header,
	}

	for _, h := range header {
		normalized := strings.ToLower(strings.TrimSpace(h))
		normalized = strings.Trim(normalized, "\"'")

		field, ok := columnAliases[normalized]
		if !ok {
			continue
		}
		// First column wins when two headers alias the same field.
		if m.Header(field) != "" {
			continue
		}
		m.FieldMap[h] = field
		if field == FieldName {
			m.NameHeader = h
		}
	}

	// Fallback: any header mentioning "ad" and "name"
	if m.NameHeader == "" {
		for _, h := range header {
			lower := strings.ToLower(h)
			if strings.Contains(lower, "name") && strings.Contains(lower, "ad") {
				m.FieldMap[h] = FieldName
				m.NameHeader = h
				break
			}
		}
	}

	if m.NameHeader == "" {
		return nil
	}
	return m
}
