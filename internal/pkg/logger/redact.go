package logger

import (
	"net/url"
	"regexp"
	"strings"
)

// Query parameters that carry signatures or expiring tokens on CDN and
// presigned S3 links.
var sensitiveParams = map[string]bool{
	"oh":                   true,
	"oe":                   true,
	"_nc_sid":              true,
	"_nc_ohc":              true,
	"token":                true,
	"signature":            true,
	"x-amz-signature":      true,
	"x-amz-credential":     true,
	"x-amz-security-token": true,
}

var urlRegex = regexp.MustCompile(`https?://[^\s"']+`)

// RedactURL masks signature-bearing query parameters in a media URL.
// "https://cdn.example.com/a.jpg?oh=abc&w=10" → "https://cdn.example.com/a.jpg?oh=***&w=10"
// Values that do not parse as URLs are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	parts := strings.Split(u.RawQuery, "&")
	changed := false
	for i, p := range parts {
		name, _, found := strings.Cut(p, "=")
		if found && sensitiveParams[strings.ToLower(name)] {
			parts[i] = name + "=***"
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = strings.Join(parts, "&")
	return u.String()
}

func redactValue(val string) string {
	if !strings.Contains(val, "://") {
		return val
	}
	return urlRegex.ReplaceAllStringFunc(val, RedactURL)
}
