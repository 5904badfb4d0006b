package stage

import (
	"context"
	"sort"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/diarization"
	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/provider"
)

// DiarizerOptions bounds the speaker count passed to the backend.
type DiarizerOptions struct {
	MinSpeakers int
	MaxSpeakers int
}

type diarizer struct {
	providers *provider.Manager[diarization.Provider]
	opts      DiarizerOptions
}

// NewDiarizer adapts the diarization provider manager to Diarizer.
func NewDiarizer(providers *provider.Manager[diarization.Provider], opts DiarizerOptions) Diarizer {
	return &diarizer{providers: providers, opts: opts}
}

func (d *diarizer) Diarize(ctx context.Context, audio *acquisition.Audio, sensitivity float64) ([]Span, error) {
	p, err := d.providers.Get(ctx)
	if err != nil {
		return nil, errors.StageError(NameDiarize, err)
	}
	resp, err := p.Diarize(ctx, diarization.Request{
		AudioPath:   audio.Path,
		Sensitivity: sensitivity,
		MinSpeakers: d.opts.MinSpeakers,
		MaxSpeakers: d.opts.MaxSpeakers,
	})
	if err != nil {
		return nil, errors.StageError(NameDiarize, err)
	}
	spans := make([]Span, len(resp.Segments))
	for i, seg := range resp.Segments {
		spans[i] = Span{Speaker: seg.Speaker, Start: seg.Start, End: seg.End}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans, nil
}
