package datanorm

import (
	"errors"
	"time"
)

// DatasetKind selects how a CSV file is interpreted.
type DatasetKind string

const (
	KindAds       DatasetKind = "ads"
	KindTargeting DatasetKind = "targeting"
	KindROASChart DatasetKind = "roas_chart"
)

var (
	// ErrHeaderNotFound is returned when no line carries the header marker.
	ErrHeaderNotFound = errors.New("datanorm: header row not found")
	// ErrNoNameColumn is returned when the header has no ad name column.
	ErrNoNameColumn = errors.New("datanorm: no ad name column in header")
	// ErrMissingName is returned for rows whose ad name is empty.
	ErrMissingName = errors.New("datanorm: row has no ad name")
)

// ImportResult tracks the outcome of importing one dataset file.
type ImportResult struct {
	File         string
	Kind         DatasetKind
	Category     string
	TotalRows    int
	ImportedRows int
	SkippedRows  int
	ErrorRows    int
	Duration     time.Duration
}
