package datanorm

import (
	"strings"

	"github.com/ignite/creative-catalog/internal/domain"
)

// TargetingSet groups targeting breakdown lines by ad name, preserving
// the order ads first appear in the export.
type TargetingSet struct {
	Order []string
	Lines map[string][]domain.TargetingLine
	// Orphans counts rows with no ad name and no preceding ad to inherit.
	Orphans int
}

const totalSuffix = " Total"

// ParseTargeting reads a targeting breakdown table. Pivot exports leave
// the ad name blank on continuation rows, so a blank name inherits the
// previous ad's. "<ad> Total" rows with an empty targeting cell become
// the ad's summary line.
func ParseTargeting(t *Table) (*TargetingSet, error) {
	m := MapColumns(t.Headers)
	if m == nil {
		return nil, ErrNoNameColumn
	}
	nameH := m.NameHeader
	targetingH := m.Header(FieldTargeting)
	if targetingH == "" && len(t.Headers) > 1 {
		// Unlabelled second column in pivot exports
		targetingH = t.Headers[1]
	}

	set := &TargetingSet{Lines: make(map[string][]domain.TargetingLine)}
	current := ""
	for _, row := range t.Rows {
		name := CleanString(row.Get(nameH))
		targeting := CleanString(row.Get(targetingH))

		line := domain.TargetingLine{
			Targeting: targeting,
			Spend:     ParseNumber(row.Get(m.Header(FieldSpend))),
			BAR:       FormatPercent(row.Get(m.Header(FieldBAR)), BARDecimals),
			ROAS:      ParseNumber(row.Get(m.Header(FieldROAS))),
			CTR:       FormatPercent(row.Get(m.Header(FieldCTR)), RateDecimals),
			CVR:       FormatPercent(row.Get(m.Header(FieldCVR)), RateDecimals),
		}

		switch {
		case strings.HasSuffix(name, totalSuffix) && targeting == "":
			name = strings.TrimSpace(strings.TrimSuffix(name, totalSuffix))
			line.Targeting = "Total"
			line.IsTotal = true
			current = ""
		case name == "":
			if current == "" {
				set.Orphans++
				continue
			}
			name = current
		default:
			current = name
		}

		if _, seen := set.Lines[name]; !seen {
			set.Order = append(set.Order, name)
		}
		set.Lines[name] = append(set.Lines[name], line)
	}
	return set, nil
}
