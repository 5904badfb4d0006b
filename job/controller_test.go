package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/resilience"
	"github.com/kbukum/tubescript/stage"
	"github.com/kbukum/tubescript/store"
	"github.com/kbukum/tubescript/transcript"
)

type fakeAcquirer struct {
	dir  string
	info transcript.SourceInfo
	err  error
}

func (f *fakeAcquirer) AcquireAudio(_ context.Context, source string) (*acquisition.Audio, transcript.SourceInfo, error) {
	if f.err != nil {
		return nil, transcript.SourceInfo{}, f.err
	}
	info := f.info
	info.SourceURL = source
	return &acquisition.Audio{Path: filepath.Join(f.dir, "audio.wav"), Dir: f.dir}, info, nil
}

type fakeDiarizer struct {
	spans       []stage.Span
	err         error
	called      bool
	sensitivity float64
}

func (f *fakeDiarizer) Diarize(_ context.Context, _ *acquisition.Audio, sensitivity float64) ([]stage.Span, error) {
	f.called = true
	f.sensitivity = sensitivity
	return f.spans, f.err
}

type fakeTranscriber struct {
	got    []stage.Span
	err    error
	cancel context.CancelFunc
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ *acquisition.Audio, spans []stage.Span, done func(int)) ([]transcript.Segment, error) {
	f.got = spans
	if f.cancel != nil {
		defer f.cancel()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]transcript.Segment, len(spans))
	for i, s := range spans {
		out[i] = transcript.Segment{Start: s.Start, End: s.End, Speaker: s.Speaker, Text: fmt.Sprintf("line %d", i)}
		done(i + 1)
	}
	return out, nil
}

type recorder struct {
	mu     sync.Mutex
	events []Summary
}

func (r *recorder) Publish(topic, _ string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := payload.(Summary)
	if s.ID != topic {
		panic("topic mismatch")
	}
	r.events = append(r.events, s)
}

func newAudioDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "work")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

type harness struct {
	acq   *fakeAcquirer
	diar  *fakeDiarizer
	trans *fakeTranscriber
	repo  *store.Memory[*Job]
	pub   *recorder
}

func newHarness(t *testing.T) *harness {
	return &harness{
		acq:   &fakeAcquirer{dir: newAudioDir(t), info: transcript.SourceInfo{Title: "Talk", Duration: 30}},
		diar:  &fakeDiarizer{spans: []stage.Span{{Speaker: "Speaker 1", Start: 0, End: 10}, {Speaker: "Speaker 2", Start: 10, End: 30}}},
		trans: &fakeTranscriber{},
		repo:  store.NewMemory[*Job]("job"),
		pub:   &recorder{},
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Pipeline:   Pipeline{Acquirer: h.acq, Diarizer: h.diar, Transcriber: h.trans},
		Repository: h.repo,
		Publisher:  h.pub,
	}
}

func TestControllerCompletes(t *testing.T) {
	h := newHarness(t)
	j := New("https://youtu.be/abc", Options{DiarizationEnabled: true, DiarizationSensitivity: 0.7})

	final, err := NewController(j, h.deps()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != StatusCompleted || final.Progress != 1.0 || final.Message != MessageComplete {
		t.Fatalf("unexpected final state %+v", final.Summary())
	}
	if h.diar.sensitivity != 0.7 {
		t.Errorf("sensitivity = %v", h.diar.sensitivity)
	}
	tr := final.Result.Transcript
	if tr.Metadata.Title != "Talk" || tr.Metadata.SpeakerCount != 2 || len(tr.Segments) != 2 {
		t.Errorf("unexpected transcript %+v", tr.Metadata)
	}
	if len(final.Result.OriginalSpeakers) != 2 || final.Result.OriginalSpeakers["Speaker 2"] != "Speaker 2" {
		t.Errorf("original speakers = %v", final.Result.OriginalSpeakers)
	}
	if final.Title != "Talk" {
		t.Errorf("title = %q", final.Title)
	}

	stored, err := h.repo.Get(context.Background(), j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != StatusCompleted || stored.Result == nil {
		t.Errorf("stored snapshot %+v", stored.Summary())
	}
	if _, err := os.Stat(h.acq.dir); !os.IsNotExist(err) {
		t.Errorf("audio dir still present: %v", err)
	}
}

func TestControllerProgressSequence(t *testing.T) {
	h := newHarness(t)
	j := New("https://youtu.be/abc", Options{DiarizationEnabled: true})
	if _, err := NewController(j, h.deps()).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []struct {
		progress float64
		message  string
	}{
		{0.1, MessageDownloading},
		{0.3, MessageDiarizing},
		{0.6, MessageTranscribing},
		{0.7, MessageTranscribing + " (1/2)"},
		{0.8, MessageTranscribing + " (2/2)"},
		{0.8, MessageAssembling},
		{1.0, MessageComplete},
	}
	if len(h.pub.events) != len(want) {
		t.Fatalf("got %d events: %+v", len(h.pub.events), h.pub.events)
	}
	for i, w := range want {
		got := h.pub.events[i]
		if diff := got.Progress - w.progress; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("event %d progress = %v, want %v", i, got.Progress, w.progress)
		}
		if got.Message != w.message {
			t.Errorf("event %d message = %q, want %q", i, got.Message, w.message)
		}
	}
}

func TestControllerDiarizationDisabled(t *testing.T) {
	h := newHarness(t)
	j := New("https://youtu.be/abc", Options{})
	final, _ := NewController(j, h.deps()).Run(context.Background())

	if h.diar.called {
		t.Error("diarizer called while disabled")
	}
	if len(h.trans.got) != 1 || h.trans.got[0] != (stage.Span{Speaker: stage.DefaultSpeaker, Start: 0, End: 30}) {
		t.Errorf("spans = %+v", h.trans.got)
	}
	if final.Result.Transcript.Metadata.SpeakerCount != 1 {
		t.Errorf("speaker count = %d", final.Result.Transcript.Metadata.SpeakerCount)
	}
}

func TestControllerEmptyDiarization(t *testing.T) {
	h := newHarness(t)
	h.diar.spans = nil
	j := New("https://youtu.be/abc", Options{DiarizationEnabled: true})
	final, _ := NewController(j, h.deps()).Run(context.Background())

	if final.Status != StatusCompleted {
		t.Fatalf("status = %s", final.Status)
	}
	if len(h.trans.got) != 1 || h.trans.got[0].Speaker != stage.DefaultSpeaker {
		t.Errorf("spans = %+v", h.trans.got)
	}
}

func TestControllerStageFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		code  errors.ErrorCode
	}{
		{"acquisition", func(h *harness) { h.acq.err = errors.AcquisitionError("x", fmt.Errorf("403")) }, errors.ErrCodeAcquisition},
		{"diarization", func(h *harness) { h.diar.err = errors.StageError(stage.NameDiarize, fmt.Errorf("boom")) }, errors.ErrCodeStage},
		{"transcription", func(h *harness) { h.trans.err = errors.StageError(stage.NameTranscribe, fmt.Errorf("boom")) }, errors.ErrCodeStage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)
			j := New("https://youtu.be/abc", Options{DiarizationEnabled: true})

			final, err := NewController(j, h.deps()).Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if final.Status != StatusFailed || final.Progress != 0 || final.Result != nil {
				t.Fatalf("unexpected final state %+v", final.Summary())
			}
			if !strings.HasPrefix(final.Message, "Error: ") || !strings.Contains(final.Message, string(tt.code)) {
				t.Errorf("message = %q", final.Message)
			}
			stored, _ := h.repo.Get(context.Background(), j.ID)
			if stored.Status != StatusFailed {
				t.Errorf("stored status = %s", stored.Status)
			}
		})
	}
}

func TestControllerCancelledBeforeAssembly(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.trans.cancel = cancel
	j := New("https://youtu.be/abc", Options{DiarizationEnabled: true})

	final, err := NewController(j, h.deps()).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != StatusFailed || final.Progress != 0 || final.Result != nil {
		t.Fatalf("unexpected final state %+v", final.Summary())
	}
	if !strings.Contains(final.Message, string(errors.ErrCodeStage)) {
		t.Errorf("message = %q", final.Message)
	}
}

func TestControllerSingleUse(t *testing.T) {
	h := newHarness(t)
	c := NewController(New("https://youtu.be/abc", Options{}), h.deps())
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Run(context.Background()); err != ErrControllerUsed {
		t.Errorf("second run err = %v", err)
	}
}

func TestControllerWaitsForSlot(t *testing.T) {
	h := newHarness(t)
	slots := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "pipeline", MaxConcurrent: 1})
	release, err := slots.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	deps := h.deps()
	deps.Slots = slots

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	j := New("https://youtu.be/abc", Options{})
	final, _ := NewController(j, deps).Run(ctx)
	release()

	if final.Status != StatusFailed {
		t.Fatalf("status = %s", final.Status)
	}
	if len(h.pub.events) != 1 {
		t.Errorf("expected only the failure event, got %+v", h.pub.events)
	}
}

func TestJobClone(t *testing.T) {
	j := New("u", Options{})
	j.Result = &Result{
		Transcript:       transcript.Assemble([]transcript.Segment{{Start: 0, End: 1, Speaker: "A", Text: "hi"}}, transcript.SourceInfo{}),
		OriginalSpeakers: map[string]string{"A": "A"},
	}
	c := j.Clone()
	c.Result.Transcript.RenameSpeakers(map[string]string{"A": "B"})
	c.Result.OriginalSpeakers["B"] = "B"

	if j.Result.Transcript.Segments[0].Speaker != "A" || len(j.Result.OriginalSpeakers) != 1 {
		t.Error("clone shares state with original")
	}
	if !StatusCompleted.Terminal() || StatusProcessing.Terminal() {
		t.Error("unexpected Terminal result")
	}
}
