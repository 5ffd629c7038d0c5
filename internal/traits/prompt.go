package traits

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/osteele/liquid"
)

// DefaultPromptTemplate asks the model for one exact option per selectable
// category, the literal text for freetext ones, and a bare JSON object.
const DefaultPromptTemplate = `Analyze this {{ category }} ad image and classify it using the creative framework below.

For each selectable category choose exactly one of the listed options and copy it character for character. Do not invent new options.
{% for c in categories %}{% if c.freetext %}
- {{ c.name | quote }}: the exact text shown in the image, or "" if there is none{% else %}
- {{ c.name | quote }}: one of {{ c.options | quote_each | join: ", " }}{% endif %}{% endfor %}

Respond with a single JSON object and nothing else. It must contain every category above as a key, for example:
{ {% for c in categories %}{{ c.name | quote }}: "..."{% unless forloop.last %}, {% endunless %}{% endfor %} }
`

// PromptBuilder renders classification prompts from a Liquid template.
type PromptBuilder struct {
	engine *liquid.Engine
	tpl    *liquid.Template
}

// NewPromptBuilder parses source, or DefaultPromptTemplate when source is
// empty.
func NewPromptBuilder(source string) (*PromptBuilder, error) {
	if strings.TrimSpace(source) == "" {
		source = DefaultPromptTemplate
	}

	engine := liquid.NewEngine()
	registerPromptFilters(engine)

	tpl, err := engine.ParseTemplate([]byte(source))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &PromptBuilder{engine: engine, tpl: tpl}, nil
}

// LoadPromptBuilder reads a template override from path. An empty path
// selects the built-in template.
func LoadPromptBuilder(path string) (*PromptBuilder, error) {
	if path == "" {
		return NewPromptBuilder("")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template %s: %w", path, err)
	}
	return NewPromptBuilder(string(data))
}

func registerPromptFilters(engine *liquid.Engine) {
	// {{ name | quote }} -> "name"
	engine.RegisterFilter("quote", func(s string) string {
		return jsonQuote(s)
	})

	// {{ options | quote_each | join: ", " }}
	engine.RegisterFilter("quote_each", func(values []string) []string {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = jsonQuote(v)
		}
		return out
	})
}

func jsonQuote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `"` + s + `"`
	}
	return string(b)
}

// Render builds the prompt for an ad of the given category.
func (p *PromptBuilder) Render(fw *Framework, category string) (string, error) {
	if category == "" {
		category = "creative"
	}

	cats := make([]map[string]interface{}, 0, len(fw.Categories))
	for _, c := range fw.Categories {
		options := c.Options
		if options == nil {
			options = []string{}
		}
		cats = append(cats, map[string]interface{}{
			"name":     c.Name,
			"freetext": c.Kind == KindFreetext,
			"options":  options,
		})
	}

	out, err := p.tpl.Render(liquid.Bindings{
		"category":   category,
		"categories": cats,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return string(out), nil
}
