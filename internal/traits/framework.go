package traits

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ignite/creative-catalog/internal/datanorm"
)

// Kind distinguishes closed-vocabulary categories from free text.
type Kind string

const (
	KindSelectable Kind = "selectable"
	KindFreetext   Kind = "freetext"
)

// ErrInvalidFramework is returned when a framework file cannot be used.
var ErrInvalidFramework = errors.New("traits: invalid framework")

// DefaultFreetextColumns are the spreadsheet columns that hold copy rather
// than a choice.
var DefaultFreetextColumns = []string{"Headline (Hook Text)", "CTA (Text Itself)"}

// Category is one trait dimension.
type Category struct {
	Name    string   `json:"-"`
	Kind    Kind     `json:"kind"`
	Options []string `json:"options"`
}

// Allows reports whether value is acceptable for the category.
func (c Category) Allows(value string) bool {
	if c.Kind == KindFreetext {
		return true
	}
	for _, o := range c.Options {
		if o == value {
			return true
		}
	}
	return false
}

// Framework is the ordered set of trait categories.
type Framework struct {
	Categories []Category
	index      map[string]int
}

// NewFramework builds a framework from categories in display order.
func NewFramework(categories []Category) (*Framework, error) {
	fw := &Framework{index: make(map[string]int, len(categories))}
	for _, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: category with empty name", ErrInvalidFramework)
		}
		if _, dup := fw.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidFramework, c.Name)
		}
		if c.Kind != KindSelectable && c.Kind != KindFreetext {
			return nil, fmt.Errorf("%w: category %q has kind %q", ErrInvalidFramework, c.Name, c.Kind)
		}
		fw.index[c.Name] = len(fw.Categories)
		fw.Categories = append(fw.Categories, c)
	}
	if len(fw.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidFramework)
	}
	return fw, nil
}

// Get returns the named category.
func (fw *Framework) Get(name string) (Category, bool) {
	i, ok := fw.index[name]
	if !ok {
		return Category{}, false
	}
	return fw.Categories[i], true
}

// Names returns category names in framework order.
func (fw *Framework) Names() []string {
	names := make([]string, len(fw.Categories))
	for i, c := range fw.Categories {
		names[i] = c.Name
	}
	return names
}

// Subset returns a framework holding only the named categories, in
// framework order.
func (fw *Framework) Subset(names []string) (*Framework, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := fw.index[n]; !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidFramework, n)
		}
		want[n] = true
	}
	var cats []Category
	for _, c := range fw.Categories {
		if want[c.Name] {
			cats = append(cats, c)
		}
	}
	return NewFramework(cats)
}

// LoadFramework reads a framework JSON file.
func LoadFramework(path string) (*Framework, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read framework %s: %w", path, err)
	}
	return ParseFramework(data)
}

// rawCategory accepts both the current shape and the spreadsheet export
// shape ({"type": "select"|"text"}).
type rawCategory struct {
	Kind    string   `json:"kind"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

// ParseFramework decodes {"<name>": {"kind": ..., "options": [...]}} and
// keeps the categories in file order.
func ParseFramework(data []byte) (*Framework, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFramework, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidFramework)
	}

	var categories []Category
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFramework, err)
		}
		name, _ := tok.(string)

		var raw rawCategory
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidFramework, name, err)
		}
		kind, err := parseKind(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidFramework, name, err)
		}
		categories = append(categories, Category{Name: name, Kind: kind, Options: raw.Options})
	}
	return NewFramework(categories)
}

func parseKind(raw rawCategory) (Kind, error) {
	k := strings.ToLower(strings.TrimSpace(raw.Kind))
	if k == "" {
		k = strings.ToLower(strings.TrimSpace(raw.Type))
	}
	switch k {
	case "selectable", "select":
		return KindSelectable, nil
	case "freetext", "text":
		return KindFreetext, nil
	default:
		return "", fmt.Errorf("unknown kind %q", k)
	}
}

// MarshalJSON writes the framework as an object in category order.
func (fw *Framework) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range fw.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		options := c.Options
		if options == nil {
			options = []string{}
		}
		body, err := json.Marshal(struct {
			Kind    Kind     `json:"kind"`
			Options []string `json:"options"`
		}{c.Kind, options})
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BuildFramework derives a framework from a trait spreadsheet exported to
// CSV: every column is a category, the freetext columns accept any copy,
// and the options of the others are the distinct non-empty values seen in
// that column, in first-seen order.
func BuildFramework(table *datanorm.Table, freetext []string) (*Framework, error) {
	isText := make(map[string]bool, len(freetext))
	for _, f := range freetext {
		isText[strings.ToLower(f)] = true
	}

	var categories []Category
	for i, h := range table.Headers {
		if h == "" {
			continue
		}
		if isText[strings.ToLower(h)] {
			categories = append(categories, Category{Name: h, Kind: KindFreetext, Options: []string{}})
			continue
		}
		seen := make(map[string]bool)
		options := []string{}
		for _, row := range table.Rows {
			v := row.Fields[i]
			if v == "" || strings.EqualFold(v, "nan") || seen[v] {
				continue
			}
			seen[v] = true
			options = append(options, v)
		}
		categories = append(categories, Category{Name: h, Kind: KindSelectable, Options: options})
	}
	return NewFramework(categories)
}
