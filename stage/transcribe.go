package stage

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/provider"
	"github.com/kbukum/tubescript/transcript"
	"github.com/kbukum/tubescript/transcription"
)

// TranscriberOptions configures span transcription.
type TranscriberOptions struct {
	// Concurrency is the number of spans transcribed at once; values below 1 mean 1.
	Concurrency int
	Language    string
	Model       string
}

type transcriber struct {
	providers *provider.Manager[transcription.Provider]
	opts      TranscriberOptions
}

// NewTranscriber adapts the transcription provider manager to Transcriber.
func NewTranscriber(providers *provider.Manager[transcription.Provider], opts TranscriberOptions) Transcriber {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &transcriber{providers: providers, opts: opts}
}

func (t *transcriber) Transcribe(ctx context.Context, audio *acquisition.Audio, spans []Span, onSegmentDone func(done int)) ([]transcript.Segment, error) {
	p, err := t.providers.Get(ctx)
	if err != nil {
		return nil, errors.StageError(NameTranscribe, err)
	}

	segments := make([]transcript.Segment, len(spans))
	tracker := newDoneTracker(len(spans), onSegmentDone)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Concurrency)
	for i, span := range spans {
		g.Go(func() error {
			resp, err := p.Transcribe(gctx, transcription.Request{
				AudioPath: audio.Path,
				Start:     span.Start,
				End:       span.End,
				Language:  t.opts.Language,
				Model:     t.opts.Model,
			})
			if err != nil {
				return err
			}
			segments[i] = transcript.Segment{
				Start:   span.Start,
				End:     span.End,
				Speaker: span.Speaker,
				Text:    resp.Text,
			}
			tracker.finish(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.StageError(NameTranscribe, err)
	}
	return segments, nil
}

// doneTracker reports the length of the finished prefix so callbacks never
// go backwards when spans complete out of order.
type doneTracker struct {
	mu       sync.Mutex
	finished []bool
	prefix   int
	notify   func(int)
}

func newDoneTracker(n int, notify func(int)) *doneTracker {
	return &doneTracker{finished: make([]bool, n), notify: notify}
}

func (d *doneTracker) finish(i int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finished[i] = true
	advanced := false
	for d.prefix < len(d.finished) && d.finished[d.prefix] {
		d.prefix++
		advanced = true
	}
	if advanced && d.notify != nil {
		d.notify(d.prefix)
	}
}
