package datanorm

import (
	"encoding/csv"
	"strings"

	"github.com/ignite/creative-catalog/internal/pkg/logger"
)

// HeaderMode selects how the header line is located.
type HeaderMode int

const (
	// HeaderFirstLine treats the first non-blank line as the header.
	HeaderFirstLine HeaderMode = iota
	// HeaderScanForMarker treats the first line containing a cell equal to
	// ReaderOptions.Marker (case-insensitive) as the header. Lines above it
	// are report preamble and are ignored.
	HeaderScanForMarker
)

// ReaderOptions configures ReadCSV.
type ReaderOptions struct {
	HeaderMode HeaderMode
	Marker     string
	// KeyColumn, when set, drops rows whose value in that column is empty.
	KeyColumn string
}

// Row is one data line keyed by trimmed header name. Fields keeps the
// positional values, padded to the header width.
type Row struct {
	Line   int
	Values map[string]string
	Fields []string
}

// Get returns the trimmed value for a header, or "" when the header is
// empty or absent.
func (r Row) Get(header string) string {
	if header == "" {
		return ""
	}
	return r.Values[header]
}

// Table is the parsed content of a CSV export.
type Table struct {
	Headers []string
	Rows    []Row
	// Skipped counts malformed lines that were dropped with a warning.
	Skipped int
	// Excluded counts rows dropped because the key column was empty.
	Excluded int
}

const utf8BOM = "\uFEFF"

// ReadCSV parses CSV text line by line. Lines are split first and each
// line is then split into fields, so quoted fields may contain commas but
// not line breaks. Blank lines are discarded.
func ReadCSV(text string, opts ReaderOptions) (*Table, error) {
	text = strings.TrimPrefix(text, utf8BOM)
	lines := splitLines(text)

	headerIdx := -1
	var headers []string
	for i, l := range lines {
		fields, ok := parseCSVLine(l.text)
		if !ok {
			continue
		}
		if opts.HeaderMode == HeaderFirstLine || hasMarker(fields, opts.Marker) {
			headerIdx = i
			headers = trimAll(fields)
			break
		}
	}
	if headerIdx < 0 {
		if opts.HeaderMode == HeaderFirstLine {
			return &Table{}, nil
		}
		return nil, ErrHeaderNotFound
	}

	table := &Table{Headers: headers}
	for _, l := range lines[headerIdx+1:] {
		fields, ok := parseCSVLine(l.text)
		if !ok {
			logger.Warn("datanorm: skipping malformed CSV line", "line", l.number)
			table.Skipped++
			continue
		}

		row := Row{
			Line:   l.number,
			Values: make(map[string]string, len(headers)),
			Fields: make([]string, len(headers)),
		}
		for i, h := range headers {
			v := ""
			if i < len(fields) {
				v = strings.TrimSpace(fields[i])
			}
			row.Fields[i] = v
			row.Values[h] = v
		}

		if opts.KeyColumn != "" && row.Values[opts.KeyColumn] == "" {
			table.Excluded++
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

type numberedLine struct {
	number int
	text   string
}

// splitLines splits on \n, drops a trailing \r and discards blank lines.
// Line numbers are 1-based positions in the original text.
func splitLines(text string) []numberedLine {
	raw := strings.Split(text, "\n")
	out := make([]numberedLine, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, numberedLine{number: i + 1, text: l})
	}
	return out
}

// parseCSVLine splits a single line into fields. A line with an
// unbalanced double quote is malformed. encoding/csv handles escaped
// quotes; the quote-toggle splitter is the fallback when it rejects a line.
func parseCSVLine(line string) ([]string, bool) {
	if strings.Count(line, `"`)%2 != 0 {
		return nil, false
	}
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return splitQuoted(line), true
	}
	return fields, true
}

// splitQuoted splits on commas outside double quotes. Quote characters
// toggle the in-quotes state and are not kept.
func splitQuoted(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, current.String())
}

func hasMarker(fields []string, marker string) bool {
	if marker == "" {
		return false
	}
	for _, f := range fields {
		if strings.EqualFold(strings.TrimSpace(f), marker) {
			return true
		}
	}
	return false
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
