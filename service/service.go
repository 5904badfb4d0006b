package service

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/batch"
	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/export"
	"github.com/kbukum/tubescript/job"
	"github.com/kbukum/tubescript/logger"
	"github.com/kbukum/tubescript/observability"
	"github.com/kbukum/tubescript/resilience"
	"github.com/kbukum/tubescript/stage"
	"github.com/kbukum/tubescript/store"
	"github.com/kbukum/tubescript/transcript"
	"github.com/kbukum/tubescript/util"
	"github.com/kbukum/tubescript/validation"
)

// Deps are the collaborators of a Service. Publisher and Metrics are
// optional.
type Deps struct {
	Pipeline  job.Pipeline
	Lister    stage.Lister
	Jobs      store.Repository[*job.Job]
	Batches   store.Repository[*batch.Batch]
	Publisher job.Publisher
	Metrics   *observability.PipelineMetrics
}

// Service runs jobs and batches in the background and serves reads and
// identity edits on their results.
type Service struct {
	cfg   Config
	deps  Deps
	slots *resilience.Bulkhead
	locks *keyedLocks
	log   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a Service. Background runs use a context that Shutdown
// cancels.
func New(cfg Config, deps Deps) *Service {
	cfg.ApplyDefaults()
	log := logger.Get("service")
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:  cfg,
		deps: deps,
		slots: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "pipeline",
			MaxConcurrent: cfg.MaxConcurrentJobs,
			OnAcquire: func(name string) {
				log.Debug("pipeline slot acquired", logger.Fields(logger.FieldComponent, name))
			},
		}),
		locks:  newKeyedLocks(),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SubmitJob queues a single-video job and starts it in the background.
func (s *Service) SubmitJob(ctx context.Context, req SubmitJobRequest) (job.Summary, error) {
	if err := validation.Validate(req); err != nil {
		return job.Summary{}, err
	}
	if err := acquisition.ValidateVideo(req.URL); err != nil {
		return job.Summary{}, err
	}

	enabled, sensitivity := s.diarization(req.DiarizationEnabled, req.DiarizationSensitivity)
	j := job.New(req.URL, job.Options{DiarizationEnabled: enabled, DiarizationSensitivity: sensitivity})
	summary := j.Summary()

	err := s.start(ctx,
		func(ctx context.Context) error { return s.deps.Jobs.Put(ctx, j) },
		func(ctx context.Context) { _, _ = s.runJob(ctx, j) },
	)
	if err != nil {
		return job.Summary{}, err
	}
	s.log.Info("job submitted", logger.Fields(logger.FieldJobID, j.ID, logger.FieldSource, j.SourceURL))
	return summary, nil
}

// Job returns the current snapshot of a job.
func (s *Service) Job(ctx context.Context, id string) (*job.Job, error) {
	if err := validation.ID("job_id", id); err != nil {
		return nil, err
	}
	l, err := s.lockFor(ctx, id)
	if err != nil {
		return nil, err
	}
	l.RLock()
	defer l.RUnlock()
	return s.deps.Jobs.Get(ctx, id)
}

// lockFor returns the edit lock of an existing job. Unknown ids fail with
// NOT_FOUND without allocating a lock.
func (s *Service) lockFor(ctx context.Context, id string) (*sync.RWMutex, error) {
	if l, ok := s.locks.lookup(id); ok {
		return l, nil
	}
	if _, err := s.deps.Jobs.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.locks.get(id), nil
}

// Jobs returns the summaries of every known job in submission order.
func (s *Service) Jobs(ctx context.Context) ([]job.Summary, error) {
	jobs, err := s.deps.Jobs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]job.Summary, len(jobs))
	for i, j := range jobs {
		out[i] = j.Summary()
	}
	return out, nil
}

// Transcript returns the transcript of a completed job.
func (s *Service) Transcript(ctx context.Context, id string) (*transcript.Transcript, error) {
	j, err := s.completedJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return j.Result.Transcript, nil
}

// RenameSpeakers relabels speakers of a completed job.
func (s *Service) RenameSpeakers(ctx context.Context, id string, req RenameRequest) (RenameResult, error) {
	if err := validation.Validate(req); err != nil {
		return RenameResult{}, err
	}
	var result RenameResult
	err := s.edit(ctx, id, func(t *transcript.Transcript) error {
		result = RenameResult{
			RenamedSegments: t.RenameSpeakers(req.Mapping),
			Mapping:         req.Mapping,
			SpeakerCount:    t.SpeakerCount(),
		}
		return nil
	})
	if err != nil {
		return RenameResult{}, err
	}
	s.log.Info("speakers renamed", logger.Fields(logger.FieldJobID, id, "segments", result.RenamedSegments))
	return result, nil
}

// MergeSpeakers collapses several speakers of a completed job into one.
func (s *Service) MergeSpeakers(ctx context.Context, id string, req MergeRequest) (transcript.MergeResult, error) {
	if err := validation.Validate(req); err != nil {
		return transcript.MergeResult{}, err
	}
	var result transcript.MergeResult
	err := s.edit(ctx, id, func(t *transcript.Transcript) error {
		var err error
		result, err = t.MergeSpeakers(req.Labels, req.NewLabel)
		return err
	})
	if err != nil {
		return transcript.MergeResult{}, err
	}
	s.log.Info("speakers merged", logger.Fields(logger.FieldJobID, id, "segments", result.AffectedSegments))
	return result, nil
}

// Export renders the transcript of a completed job. rawOptions is the
// serialized styling payload and may be empty.
func (s *Service) Export(ctx context.Context, id, format, rawOptions string) (*export.Document, error) {
	j, err := s.completedJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return export.Build(j.Result.Transcript, format, rawOptions)
}

// completedJob reads a job under its lock and fails with NotReady unless
// it has completed.
func (s *Service) completedJob(ctx context.Context, id string) (*job.Job, error) {
	j, err := s.Job(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status != job.StatusCompleted || j.Result == nil {
		return nil, errors.NotReady("transcript", id, string(j.Status))
	}
	return j, nil
}

// edit applies fn to the transcript of a completed job and stores the
// result, holding the job's write lock throughout.
func (s *Service) edit(ctx context.Context, id string, fn func(*transcript.Transcript) error) error {
	if err := validation.ID("job_id", id); err != nil {
		return err
	}
	l, err := s.lockFor(ctx, id)
	if err != nil {
		return err
	}
	l.Lock()
	defer l.Unlock()

	j, err := s.deps.Jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	if j.Status != job.StatusCompleted || j.Result == nil {
		return errors.NotReady("transcript", id, string(j.Status))
	}
	if err := fn(j.Result.Transcript); err != nil {
		return err
	}
	j.UpdatedAt = time.Now().UTC()
	return s.deps.Jobs.Put(ctx, j)
}

// SubmitBatch queues a playlist or channel batch and starts it in the
// background.
func (s *Service) SubmitBatch(ctx context.Context, req SubmitBatchRequest) (batch.Summary, error) {
	if err := validation.Validate(req); err != nil {
		return batch.Summary{}, err
	}
	kind, err := acquisition.ValidateCollection(req.URL)
	if err != nil {
		return batch.Summary{}, err
	}

	enabled, sensitivity := s.diarization(req.DiarizationEnabled, req.DiarizationSensitivity)
	b := batch.New(req.URL, kind, batch.Options{
		Limit:                  req.Limit,
		SelectedIDs:            req.SelectedIDs,
		DiarizationEnabled:     enabled,
		DiarizationSensitivity: sensitivity,
	})
	summary := b.Summary()

	err = s.start(ctx,
		func(ctx context.Context) error { return s.deps.Batches.Put(ctx, b) },
		func(ctx context.Context) {
			_, _ = batch.NewController(b, batch.Deps{
				Lister:      s.deps.Lister,
				Repository:  s.deps.Batches,
				RunJob:      s.runBatchJob,
				Publisher:   s.deps.Publisher,
				Metrics:     s.deps.Metrics,
				Concurrency: s.cfg.BatchConcurrency,
			}).Run(ctx)
		},
	)
	if err != nil {
		return batch.Summary{}, err
	}
	s.log.Info("batch submitted", logger.Fields(logger.FieldBatchID, b.ID, logger.FieldSource, b.SourceURL))
	return summary, nil
}

// Batch returns the current snapshot of a batch.
func (s *Service) Batch(ctx context.Context, id string) (*batch.Batch, error) {
	if err := validation.ID("batch_id", id); err != nil {
		return nil, err
	}
	return s.deps.Batches.Get(ctx, id)
}

// Batches returns the summaries of every known batch in submission order.
func (s *Service) Batches(ctx context.Context) ([]batch.Summary, error) {
	batches, err := s.deps.Batches.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]batch.Summary, len(batches))
	for i, b := range batches {
		out[i] = b.Summary()
	}
	return out, nil
}

// BatchResults returns the transcripts of the succeeded items, in listing
// order, once the batch is completed or partial.
func (s *Service) BatchResults(ctx context.Context, id string) (*BatchResults, error) {
	b, err := s.Batch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.HasResults() {
		return nil, errors.NotReady("batch results", id, string(b.Status))
	}

	completed := make(map[string]bool, len(b.CompletedJobIDs))
	for _, jobID := range b.CompletedJobIDs {
		completed[jobID] = true
	}
	out := &BatchResults{BatchID: b.ID, Status: b.Status, Results: []ItemResult{}}
	for _, item := range b.Items {
		if !completed[item.JobID] {
			continue
		}
		t, err := s.Transcript(ctx, item.JobID)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, ItemResult{
			JobID:      item.JobID,
			Title:      item.Title,
			SourceURL:  item.URL,
			Transcript: t,
		})
	}
	return out, nil
}

// Preview returns up to limit leading items of a collection and whether
// more exist. A limit of zero uses the configured preview size.
func (s *Service) Preview(ctx context.Context, url string, limit int) (*Preview, error) {
	if err := validation.New().Required("url", url).Min("limit", limit, 0).Max("limit", limit, s.cfg.MaxPageLimit).Err(); err != nil {
		return nil, err
	}
	if _, err := acquisition.ValidateCollection(url); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = s.cfg.PreviewLimit
	}

	listing, err := s.deps.Lister.ListItems(ctx, url, limit+1)
	if err != nil {
		return nil, err
	}
	items := listing.Items
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	return &Preview{Kind: listing.Kind, Title: listing.Title, Items: nonNil(items), HasMore: hasMore}, nil
}

// ListItems returns one offset/limit page of a collection. A limit of zero
// uses the configured page size.
func (s *Service) ListItems(ctx context.Context, url string, offset, limit int) (*Page, error) {
	err := validation.New().
		Required("url", url).
		Min("offset", offset, 0).
		Min("limit", limit, 0).
		Max("limit", limit, s.cfg.MaxPageLimit).
		Err()
	if err != nil {
		return nil, err
	}
	if _, err := acquisition.ValidateCollection(url); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = s.cfg.PageLimit
	}

	listing, err := s.deps.Lister.ListItems(ctx, url, 0)
	if err != nil {
		return nil, err
	}
	total := len(listing.Items)
	start := min(offset, total)
	end := start + min(limit, total-start)
	return &Page{
		Kind:     listing.Kind,
		Title:    listing.Title,
		Uploader: listing.Uploader,
		Total:    total,
		Items:    nonNil(listing.Items[start:end]),
		Offset:   offset,
		Limit:    limit,
		HasMore:  end < total,
	}, nil
}

// Shutdown stops accepting work, cancels running jobs and batches and waits
// for them to reach a terminal state or for ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Timeout("pipeline shutdown")
	}
}

// start stores the initial snapshot and launches run unless the service is
// shutting down.
func (s *Service) start(ctx context.Context, put func(context.Context) error, run func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ServiceUnavailable("pipeline")
	}
	if err := put(ctx); err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		run(s.ctx)
	}()
	return nil
}

func (s *Service) runJob(ctx context.Context, j *job.Job) (*job.Job, error) {
	return job.NewController(j, job.Deps{
		Pipeline:   s.deps.Pipeline,
		Repository: s.deps.Jobs,
		Publisher:  s.deps.Publisher,
		Slots:      s.slots,
		Metrics:    s.deps.Metrics,
	}).Run(ctx)
}

// runBatchJob stores a batch item's queued job so it can be polled, then
// runs it.
func (s *Service) runBatchJob(ctx context.Context, j *job.Job) (*job.Job, error) {
	if err := s.deps.Jobs.Put(ctx, j); err != nil {
		return nil, err
	}
	return s.runJob(ctx, j)
}

func (s *Service) diarization(enabled *bool, sensitivity *float64) (bool, float64) {
	return util.DerefOr(enabled, *s.cfg.DiarizationEnabled), util.DerefOr(sensitivity, s.cfg.DiarizationSensitivity)
}

func nonNil(items []acquisition.Item) []acquisition.Item {
	if items == nil {
		return []acquisition.Item{}
	}
	return items
}
