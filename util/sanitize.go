package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// MaxFilenameLength is the longest name SanitizeFilename returns.
const MaxFilenameLength = 255

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeFilename replaces characters that are invalid in file names with
// underscores and truncates the base name so the result, extension
// included, fits MaxFilenameLength bytes.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(SanitizeString(name), "_")
	if len(name) <= MaxFilenameLength {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	base = strings.ToValidUTF8(base[:MaxFilenameLength-len(ext)], "")
	return base + ext
}
