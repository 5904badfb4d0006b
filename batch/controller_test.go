package batch

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/job"
	"github.com/kbukum/tubescript/store"
)

type fakeLister struct {
	listing *acquisition.Listing
	err     error
	limit   int
}

func (f *fakeLister) ListItems(_ context.Context, _ string, limit int) (*acquisition.Listing, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	l := *f.listing
	l.Items = slices.Clone(f.listing.Items)
	if limit > 0 && len(l.Items) > limit {
		l.Items = l.Items[:limit]
	}
	return &l, nil
}

func listing(ids ...string) *acquisition.Listing {
	l := &acquisition.Listing{Kind: acquisition.KindPlaylist, Title: "Playlist", Uploader: "Someone"}
	for _, id := range ids {
		l.Items = append(l.Items, acquisition.Item{ID: id, Title: "Video " + id, URL: "https://www.youtube.com/watch?v=" + id})
	}
	return l
}

// runner completes every job except those whose URL ends with a listed id.
type runner struct {
	mu     sync.Mutex
	fail   map[string]bool
	panics map[string]bool
	seen   []*job.Job
}

func (r *runner) run(_ context.Context, j *job.Job) (*job.Job, error) {
	r.mu.Lock()
	r.seen = append(r.seen, j.Clone())
	r.mu.Unlock()

	id := j.SourceURL[strings.LastIndex(j.SourceURL, "=")+1:]
	if r.panics[id] {
		panic("worker exploded")
	}
	final := j.Clone()
	final.Status = job.StatusCompleted
	if r.fail[id] {
		final.Status = job.StatusFailed
	}
	return final, nil
}

type recorder struct {
	mu     sync.Mutex
	events []Summary
}

func (r *recorder) Publish(_ string, _ string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload.(Summary))
}

func runBatch(t *testing.T, l *fakeLister, r *runner, opts Options, concurrency int) (*Batch, *recorder, *store.Memory[*Batch]) {
	t.Helper()
	repo := store.NewMemory[*Batch]("batch")
	pub := &recorder{}
	b := New("https://www.youtube.com/playlist?list=PL1", acquisition.KindPlaylist, opts)
	final, err := NewController(b, Deps{
		Lister:      l,
		Repository:  repo,
		RunJob:      r.run,
		Publisher:   pub,
		Concurrency: concurrency,
	}).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return final, pub, repo
}

func TestBatchOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		fail      map[string]bool
		want      Status
		completed int
	}{
		{"all succeed", nil, StatusCompleted, 3},
		{"some fail", map[string]bool{"b": true}, StatusPartial, 2},
		{"all fail", map[string]bool{"a": true, "b": true, "c": true}, StatusFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &runner{fail: tt.fail}
			final, _, repo := runBatch(t, &fakeLister{listing: listing("a", "b", "c")}, r, Options{}, 1)

			if final.Status != tt.want {
				t.Errorf("status = %s, want %s", final.Status, tt.want)
			}
			if len(final.CompletedJobIDs) != tt.completed || final.Done() != 3 || final.TotalItems != 3 {
				t.Errorf("completed=%v failed=%v total=%d", final.CompletedJobIDs, final.FailedJobIDs, final.TotalItems)
			}
			if final.Progress != 1.0 {
				t.Errorf("progress = %v", final.Progress)
			}
			for _, it := range final.Items {
				if it.JobID == "" {
					t.Errorf("item %s has no job id", it.ID)
				}
			}
			stored, _ := repo.Get(context.Background(), final.ID)
			if stored.Status != tt.want {
				t.Errorf("stored status = %s", stored.Status)
			}
		})
	}
}

func TestBatchNoItems(t *testing.T) {
	final, _, _ := runBatch(t, &fakeLister{listing: listing()}, &runner{}, Options{}, 1)
	if final.Status != StatusCompleted || final.TotalItems != 0 || final.Message != MessageNoItems {
		t.Errorf("unexpected final state %+v", final.Summary())
	}
}

func TestBatchSelectionMatchesNothing(t *testing.T) {
	final, _, _ := runBatch(t, &fakeLister{listing: listing("a", "b")}, &runner{}, Options{SelectedIDs: []string{"zzz"}}, 1)
	if final.Status != StatusCompleted || final.TotalItems != 0 {
		t.Errorf("unexpected final state %+v", final.Summary())
	}
}

func TestBatchProgressSequence(t *testing.T) {
	_, pub, _ := runBatch(t, &fakeLister{listing: listing("a", "b", "c")}, &runner{}, Options{}, 1)

	var statuses []Status
	var progress []float64
	for _, e := range pub.events {
		if len(statuses) == 0 || statuses[len(statuses)-1] != e.Status {
			statuses = append(statuses, e.Status)
		}
		progress = append(progress, e.Progress)
	}
	if !slices.Equal(statuses, []Status{StatusExtracting, StatusProcessing, StatusCompleted}) {
		t.Errorf("statuses = %v", statuses)
	}
	if !slices.IsSorted(progress) {
		t.Errorf("progress went backwards: %v", progress)
	}
	last := pub.events[len(pub.events)-2]
	if last.Message != "Processing items (3/3)" {
		t.Errorf("last item message = %q", last.Message)
	}
}

func TestBatchFilterAndLimit(t *testing.T) {
	l := &fakeLister{listing: listing("a", "b", "c", "d")}
	r := &runner{}
	final, _, _ := runBatch(t, l, r, Options{SelectedIDs: []string{"d", "b", "c"}, Limit: 2}, 1)

	if l.limit != 0 {
		t.Errorf("selection should list everything, got limit %d", l.limit)
	}
	var got []string
	for _, it := range final.Items {
		got = append(got, it.ID)
	}
	if !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("items = %v", got)
	}
	if final.Title != "Playlist" || final.Uploader != "Someone" {
		t.Errorf("title=%q uploader=%q", final.Title, final.Uploader)
	}
}

func TestBatchLimitPassedToLister(t *testing.T) {
	l := &fakeLister{listing: listing("a", "b", "c")}
	final, _, _ := runBatch(t, l, &runner{}, Options{Limit: 1}, 1)
	if l.limit != 1 || final.TotalItems != 1 {
		t.Errorf("limit=%d total=%d", l.limit, final.TotalItems)
	}
}

func TestBatchJobsInheritSettings(t *testing.T) {
	r := &runner{}
	final, _, _ := runBatch(t, &fakeLister{listing: listing("a")}, r, Options{DiarizationEnabled: true, DiarizationSensitivity: 0.8}, 1)
	if len(r.seen) != 1 {
		t.Fatalf("jobs run = %d", len(r.seen))
	}
	j := r.seen[0]
	if j.BatchID != final.ID || !j.DiarizationEnabled || j.DiarizationSensitivity != 0.8 || j.Status != job.StatusQueued {
		t.Errorf("unexpected job %+v", j)
	}
}

func TestBatchListingFailure(t *testing.T) {
	l := &fakeLister{err: errors.AcquisitionError("x", fmt.Errorf("private playlist"))}
	final, _, _ := runBatch(t, l, &runner{}, Options{}, 1)
	if final.Status != StatusFailed || !strings.HasPrefix(final.Message, "Error: ") {
		t.Errorf("unexpected final state %+v", final.Summary())
	}
}

func TestBatchPanicIsFailedItem(t *testing.T) {
	r := &runner{panics: map[string]bool{"b": true}}
	final, _, _ := runBatch(t, &fakeLister{listing: listing("a", "b", "c", "d")}, r, Options{}, 3)

	if final.Status != StatusPartial {
		t.Errorf("status = %s", final.Status)
	}
	if len(final.CompletedJobIDs) != 3 || len(final.FailedJobIDs) != 1 {
		t.Errorf("completed=%v failed=%v", final.CompletedJobIDs, final.FailedJobIDs)
	}
	if final.FailedJobIDs[0] != final.Items[1].JobID {
		t.Errorf("failed id %s does not match item b", final.FailedJobIDs[0])
	}
}

func TestBatchSingleUse(t *testing.T) {
	c := NewController(New("u", acquisition.KindPlaylist, Options{}), Deps{
		Lister:     &fakeLister{listing: listing()},
		Repository: store.NewMemory[*Batch]("batch"),
		RunJob:     (&runner{}).run,
	})
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Run(context.Background()); err != ErrControllerUsed {
		t.Errorf("second run err = %v", err)
	}
}

func TestBatchClone(t *testing.T) {
	b := New("u", acquisition.KindChannel, Options{SelectedIDs: []string{"a"}})
	b.CompletedJobIDs = append(b.CompletedJobIDs, "j1")
	c := b.Clone()
	c.CompletedJobIDs[0] = "changed"
	c.SelectedIDs[0] = "changed"
	if b.CompletedJobIDs[0] != "j1" || b.SelectedIDs[0] != "a" {
		t.Error("clone shares slices")
	}
	if !StatusPartial.HasResults() || StatusFailed.HasResults() || !StatusFailed.Terminal() {
		t.Error("unexpected status predicates")
	}
}
