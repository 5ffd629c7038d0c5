package traits

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation marks a model reply that does not fit the framework.
var ErrValidation = errors.New("traits: assignment does not match framework")

// Assignment maps category name to the chosen option or transcribed text.
type Assignment map[string]string

// ValidationError lists every problem found in one reply.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validate checks a decoded reply against the framework. The key set must
// match exactly, selectable values must be one of the listed options and
// every value must be a string.
func Validate(fw *Framework, raw map[string]interface{}) (Assignment, error) {
	var problems []string

	for _, c := range fw.Categories {
		if _, ok := raw[c.Name]; !ok {
			problems = append(problems, fmt.Sprintf("missing category %q", c.Name))
		}
	}

	extra := make([]string, 0)
	for k := range raw {
		if _, ok := fw.Get(k); !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		problems = append(problems, fmt.Sprintf("unknown category %q", k))
	}

	out := make(Assignment, len(fw.Categories))
	for _, c := range fw.Categories {
		v, ok := raw[c.Name]
		if !ok {
			continue
		}
		s, isString := v.(string)
		if !isString {
			problems = append(problems, fmt.Sprintf("category %q: expected a string, got %T", c.Name, v))
			continue
		}
		if !c.Allows(s) {
			problems = append(problems, fmt.Sprintf("category %q: %q is not an allowed option", c.Name, s))
			continue
		}
		out[c.Name] = s
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return out, nil
}
