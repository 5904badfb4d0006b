package stage

import (
	"context"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/transcript"
)

// Names used in StageError details, logs and spans.
const (
	NameAcquire    = "acquisition"
	NameDiarize    = "diarization"
	NameTranscribe = "transcription"
	NameAssemble   = "assembly"
)

// DefaultSpeaker labels the single span used when diarization is disabled.
const DefaultSpeaker = "Speaker 1"

// Span is a speaker-attributed time range in seconds.
type Span struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Acquirer fetches the audio of one item.
type Acquirer interface {
	AcquireAudio(ctx context.Context, source string) (*acquisition.Audio, transcript.SourceInfo, error)
}

// Lister enumerates the items of a collection. A limit of zero returns all.
type Lister interface {
	ListItems(ctx context.Context, source string, limit int) (*acquisition.Listing, error)
}

// Diarizer splits audio into speaker spans ordered by start time.
type Diarizer interface {
	Diarize(ctx context.Context, audio *acquisition.Audio, sensitivity float64) ([]Span, error)
}

// Transcriber turns every span into a transcript segment, preserving order.
// onSegmentDone receives the number of leading spans finished so far; it is
// called with non-decreasing values.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *acquisition.Audio, spans []Span, onSegmentDone func(done int)) ([]transcript.Segment, error)
}

// SingleSpeaker returns one span covering the whole duration.
func SingleSpeaker(duration float64) []Span {
	return []Span{{Speaker: DefaultSpeaker, Start: 0, End: duration}}
}
