package transcript

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/kbukum/tubescript/errors"
)

// DefaultTitle is used when the source does not report a title.
const DefaultTitle = "Unknown"

// Segment is a time-bounded, single-speaker span of transcribed speech.
// Only Speaker changes after assembly.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// SourceInfo describes the media a transcript was produced from.
type SourceInfo struct {
	Title     string  `json:"title"`
	SourceURL string  `json:"source_url"`
	Duration  float64 `json:"duration"`
	Uploader  string  `json:"uploader,omitempty"`
}

// Metadata is the header of a transcript. SpeakerCount is derived from the
// segments and refreshed by every identity edit.
type Metadata struct {
	Title        string  `json:"title"`
	SourceURL    string  `json:"source_url"`
	Duration     float64 `json:"duration"`
	SpeakerCount int     `json:"num_speakers"`
}

// FormattedDuration renders Duration as HH:MM:SS.mmm.
func (m Metadata) FormattedDuration() string {
	return FormatTimestamp(m.Duration)
}

// Transcript pairs metadata with segments ordered by start time.
type Transcript struct {
	Metadata Metadata  `json:"metadata"`
	Segments []Segment `json:"segments"`
}

// MergeResult reports the outcome of MergeSpeakers.
type MergeResult struct {
	MergedLabels     []string `json:"merged_speakers"`
	NewLabel         string   `json:"new_speaker_name"`
	AffectedSegments int      `json:"affected_segments"`
	UniqueSpeakers   int      `json:"unique_speakers"`
	Speakers         []string `json:"speakers"`
}

// Assemble builds a transcript from transcribed segments. Segments are copied
// and stably sorted by start time.
func Assemble(segments []Segment, info SourceInfo) *Transcript {
	segs := slices.Clone(segments)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = DefaultTitle
	}
	t := &Transcript{
		Metadata: Metadata{
			Title:     title,
			SourceURL: info.SourceURL,
			Duration:  info.Duration,
		},
		Segments: segs,
	}
	t.refresh()
	return t
}

// Speakers returns the distinct speaker labels in order of first appearance.
func (t *Transcript) Speakers() []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	for _, s := range t.Segments {
		if _, ok := seen[s.Speaker]; ok {
			continue
		}
		seen[s.Speaker] = struct{}{}
		out = append(out, s.Speaker)
	}
	return out
}

// SpeakerCount returns the number of distinct speakers in the segments.
func (t *Transcript) SpeakerCount() int {
	return len(t.Speakers())
}

// RenameSpeakers replaces every mapped speaker label and returns the number
// of segments touched. Labels absent from mapping are left alone.
func (t *Transcript) RenameSpeakers(mapping map[string]string) int {
	renamed := 0
	for i := range t.Segments {
		if to, ok := mapping[t.Segments[i].Speaker]; ok {
			t.Segments[i].Speaker = to
			renamed++
		}
	}
	t.refresh()
	return renamed
}

// MergeSpeakers reassigns every segment spoken by one of labels to newLabel.
// At least two distinct labels are required.
func (t *Transcript) MergeSpeakers(labels []string, newLabel string) (MergeResult, error) {
	set := make(map[string]struct{}, len(labels))
	merged := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, dup := set[l]; dup {
			continue
		}
		set[l] = struct{}{}
		merged = append(merged, l)
	}
	if len(merged) < 2 {
		return MergeResult{}, errors.InvalidInput("labels", "at least 2 speakers are required to merge")
	}
	newLabel = strings.TrimSpace(newLabel)
	if newLabel == "" {
		return MergeResult{}, errors.InvalidInput("new_label", "new speaker label must not be empty")
	}

	affected := 0
	for i := range t.Segments {
		if _, ok := set[t.Segments[i].Speaker]; ok {
			t.Segments[i].Speaker = newLabel
			affected++
		}
	}
	t.refresh()

	speakers := t.Speakers()
	sort.Strings(speakers)
	return MergeResult{
		MergedLabels:     merged,
		NewLabel:         newLabel,
		AffectedSegments: affected,
		UniqueSpeakers:   len(speakers),
		Speakers:         speakers,
	}, nil
}

// Clone returns a deep copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	return &Transcript{Metadata: t.Metadata, Segments: slices.Clone(t.Segments)}
}

// Plaintext renders the canonical text form of the transcript from the
// current segments.
func (t *Transcript) Plaintext() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", t.Metadata.Title)
	fmt.Fprintf(&b, "URL: %s\n", t.Metadata.SourceURL)
	fmt.Fprintf(&b, "Duration: %s\n", t.Metadata.FormattedDuration())
	fmt.Fprintf(&b, "Speakers Detected: %d\n\n", t.SpeakerCount())
	for _, s := range t.Segments {
		fmt.Fprintf(&b, "[%s --> %s] %s: %s\n\n", FormatTimestamp(s.Start), FormatTimestamp(s.End), s.Speaker, s.Text)
	}
	return b.String()
}

func (t *Transcript) refresh() {
	t.Metadata.SpeakerCount = t.SpeakerCount()
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	return formatClock(seconds, '.')
}

// FormatSRTTimestamp renders seconds as HH:MM:SS,mmm.
func FormatSRTTimestamp(seconds float64) string {
	return formatClock(seconds, ',')
}

func formatClock(seconds float64, sep byte) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	micros := int64(math.Round(seconds * 1e6))
	ms := (micros / 1000) % 1000
	total := micros / 1e6
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}
