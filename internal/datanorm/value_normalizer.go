package datanorm

import (
	"math"
	"strconv"
	"strings"
)

// numberNoise is stripped from numeric cells before parsing.
var numberNoise = strings.NewReplacer("$", "", ",", "", "%", "", `"`, "", "'", "", " ", "")

// parseNumber returns the numeric value of a cell and whether it parsed.
// NaN and infinities never parse.
func parseNumber(raw string) (float64, bool) {
	s := numberNoise.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseNumber coerces a money or count cell to a float. "$1,234.50" → 1234.5.
// Empty or unparseable cells become 0.
func ParseNumber(raw string) float64 {
	v, _ := parseNumber(raw)
	return v
}

// ParseInt coerces a count cell, truncating any fraction. Unparseable → 0.
func ParseInt(raw string) int {
	v, ok := parseNumber(raw)
	if !ok {
		return 0
	}
	return int(v)
}

// CleanString trims whitespace and surrounding quote characters.
func CleanString(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
}

// FormatPercent renders a percentage cell with a fixed number of decimals.
// A bare value in [0,1) is a ratio and is multiplied by 100; anything else,
// or a value already carrying "%", is taken as scaled. "0.0523" and "5.23"
// both give "5.23%" at two decimals. Empty or unparseable cells give "".
func FormatPercent(raw string, decimals int) string {
	s := CleanString(raw)
	if s == "" {
		return ""
	}
	v, ok := parseNumber(s)
	if !ok {
		return ""
	}
	if !strings.HasSuffix(s, "%") && v >= 0 && v < 1 {
		v *= 100
	}
	return strconv.FormatFloat(v, 'f', decimals, 64) + "%"
}

// Decimal places used for the percentage fields.
const (
	BARDecimals  = 0
	RateDecimals = 2
)
