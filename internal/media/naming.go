package media

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ignite/creative-catalog/internal/domain"
)

// Naming selects how destination file names are derived.
type Naming string

const (
	// NamingByName uses "<category>_<sanitized ad name><ext>".
	NamingByName Naming = "name"
	// NamingByID uses "<ad id><ext>".
	NamingByID Naming = "id"
)

// ErrNoAdID is returned by Destination when id naming is selected and
// the record has no ad id.
var ErrNoAdID = errors.New("media: record has no ad id")

const maxFilenameLen = 200

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	underscores = regexp.MustCompile(`_+`)
)

// SanitizeFilename maps a free-form name onto a portable file name stem:
// anything outside [A-Za-z0-9._-] becomes "_", runs of "_" collapse, and
// the result is capped at 200 bytes.
func SanitizeFilename(name string) string {
	s := unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.ReplaceAll(s, "..", "_")
	s = underscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	return s
}

// ExtensionFromURL guesses a file extension from the URL path. This is a
// heuristic, not content sniffing: ".jpg"/".jpeg" → ".jpg", ".png" →
// ".png", ".mp4" → ".mp4"; anything else returns fallback. CDN links often
// carry no extension, so the fallback is the common case.
func ExtensionFromURL(rawURL, fallback string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg":
		return ".jpg"
	case ".png":
		return ".png"
	case ".mp4":
		return ".mp4"
	default:
		return fallback
	}
}

// Destination returns the local path a record's creative is saved to.
func Destination(dir string, rec domain.AdRecord, naming Naming, fallbackExt string) (string, error) {
	ext := ExtensionFromURL(rec.SourceURL, fallbackExt)
	if rec.LooksLikeVideo() && ext == fallbackExt {
		ext = ".mp4"
	}

	var stem string
	switch naming {
	case NamingByID:
		stem = SanitizeFilename(rec.ID)
		if stem == "" {
			return "", ErrNoAdID
		}
	default:
		stem = SanitizeFilename(rec.Name)
		if rec.Category != "" {
			stem = SanitizeFilename(rec.Category) + "_" + stem
		}
	}
	return filepath.Join(dir, stem+ext), nil
}

// Disambiguate appends a short hash of key to the stem of dest. It is used
// when two ads sanitize to the same file name; the hash keeps the suffix
// stable across runs.
func Disambiguate(dest, key string) string {
	sum := sha1.Sum([]byte(key))
	ext := filepath.Ext(dest)
	return strings.TrimSuffix(dest, ext) + "_" + hex.EncodeToString(sum[:4]) + ext
}
