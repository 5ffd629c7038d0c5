package traits

import (
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when a reply holds no complete JSON object.
var ErrNoJSONObject = errors.New("traits: no JSON object in model reply")

// ExtractJSONObject returns the first balanced {...} in text. Braces inside
// string literals are ignored, so prose or code fences around the object
// do not matter.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := matchObject(text, start); end > 0 {
			return text[start:end], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

// matchObject returns the index just past the brace closing the object that
// opens at start, or -1.
func matchObject(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
