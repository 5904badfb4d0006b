package acquisition

import (
	"regexp"
	"strings"

	"github.com/kbukum/tubescript/errors"
)

// Kind classifies a source locator.
type Kind string

const (
	KindVideo    Kind = "video"
	KindPlaylist Kind = "playlist"
	KindChannel  Kind = "channel"
	KindUnknown  Kind = "unknown"
)

var (
	videoPattern    = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	playlistPattern = regexp.MustCompile(`^(https?://)?(www\.|m\.)?youtube\.com/playlist\?(.*&)?list=([a-zA-Z0-9_-]+)`)
	channelPattern  = regexp.MustCompile(`^(https?://)?(www\.|m\.)?youtube\.com/(@[\w.-]+|channel/UC[\w-]+|c/[\w.-]+|user/[\w.-]+)`)
)

// Classify reports what kind of source url points at.
func Classify(url string) Kind {
	url = strings.TrimSpace(url)
	switch {
	case videoPattern.MatchString(url):
		return KindVideo
	case playlistPattern.MatchString(url):
		return KindPlaylist
	case channelPattern.MatchString(url):
		return KindChannel
	default:
		return KindUnknown
	}
}

// IsCollection reports whether k lists several items.
func (k Kind) IsCollection() bool {
	return k == KindPlaylist || k == KindChannel
}

// ValidateVideo returns an InvalidSource error unless url is a single video.
func ValidateVideo(url string) error {
	if Classify(url) != KindVideo {
		return errors.InvalidSource(url, "YouTube video URL")
	}
	return nil
}

// ValidateCollection returns the collection kind of url, or an InvalidSource
// error when url is not a playlist or channel.
func ValidateCollection(url string) (Kind, error) {
	k := Classify(url)
	if !k.IsCollection() {
		return k, errors.InvalidSource(url, "YouTube playlist or channel URL")
	}
	return k, nil
}
