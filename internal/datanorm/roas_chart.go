package datanorm

import (
	"strings"

	"github.com/ignite/creative-catalog/internal/domain"
)

// ChartSet maps ad names to their weekly ROAS series.
type ChartSet struct {
	Order  []string
	Series map[string]*domain.ROASSeries
}

// ParseROASChart reads a weekly ROAS export: the first column is the ad
// name and every following column is a week label. A trailing "lookup"
// helper column is ignored.
func ParseROASChart(t *Table) (*ChartSet, error) {
	if len(t.Headers) < 2 {
		return nil, ErrNoNameColumn
	}
	end := len(t.Headers)
	if strings.EqualFold(t.Headers[end-1], "lookup") {
		end--
	}

	var weeks []string
	var cols []int
	for i := 1; i < end; i++ {
		if t.Headers[i] == "" {
			continue
		}
		weeks = append(weeks, t.Headers[i])
		cols = append(cols, i)
	}

	set := &ChartSet{Series: make(map[string]*domain.ROASSeries)}
	for _, row := range t.Rows {
		name := CleanString(row.Fields[0])
		if name == "" {
			continue
		}
		values := make([]float64, len(cols))
		for j, c := range cols {
			values[j] = ParseNumber(row.Fields[c])
		}
		if _, seen := set.Series[name]; !seen {
			set.Order = append(set.Order, name)
		}
		set.Series[name] = &domain.ROASSeries{
			Weeks:  append([]string(nil), weeks...),
			Values: values,
		}
	}
	return set, nil
}
