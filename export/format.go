package export

import (
	"strings"

	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/util"
)

// Format identifies an export target.
type Format string

const (
	FormatTXT          Format = "txt"
	FormatSRT          Format = "srt"
	FormatVTT          Format = "vtt"
	FormatTTML         Format = "ttml"
	FormatEnhancedVTT  Format = "enhanced-vtt"
	FormatEnhancedTTML Format = "enhanced-ttml"
	FormatYTT          Format = "ytt"
)

type formatInfo struct {
	suffix      string
	contentType string
}

var formats = map[Format]formatInfo{
	FormatTXT:          {"_transcript.txt", "text/plain; charset=utf-8"},
	FormatSRT:          {"_subtitle.srt", "application/x-subrip"},
	FormatVTT:          {"_subtitle.vtt", "text/vtt"},
	FormatTTML:         {".ttml", "application/ttml+xml"},
	FormatEnhancedVTT:  {"_enhanced.vtt", "text/vtt"},
	FormatEnhancedTTML: {".ttml", "application/ttml+xml"},
	FormatYTT:          {"_youtube.vtt", "text/vtt"},
}

// ParseFormat normalizes s and reports UNSUPPORTED_FORMAT for unknown values.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formats[f]; !ok {
		return "", errors.UnsupportedFormat(s)
	}
	return f, nil
}

// Filename derives the download name from a transcript title: spaces
// become underscores and characters unsafe in file names are replaced.
func Filename(title string, f Format) string {
	base := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	if base == "" {
		base = "transcript"
	}
	return util.SanitizeFilename(base + formats[f].suffix)
}

// ContentType returns the media type served for f.
func ContentType(f Format) string {
	return formats[f].contentType
}
