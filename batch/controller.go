package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/job"
	"github.com/kbukum/tubescript/logger"
	"github.com/kbukum/tubescript/observability"
	"github.com/kbukum/tubescript/sse"
	"github.com/kbukum/tubescript/stage"
	"github.com/kbukum/tubescript/store"
)

// ErrControllerUsed is returned when Run is called more than once.
var ErrControllerUsed = errors.Conflict("batch controller has already run")

// RunJobFunc runs one queued job to a terminal state and returns its final
// snapshot.
type RunJobFunc func(ctx context.Context, j *job.Job) (*job.Job, error)

// Deps are the collaborators of a Controller. Publisher and Metrics are
// optional.
type Deps struct {
	Lister     stage.Lister
	Repository store.Repository[*Batch]
	RunJob     RunJobFunc
	Publisher  job.Publisher
	Metrics    *observability.PipelineMetrics
	// Concurrency is the number of items run at once; values below 1 mean 1.
	Concurrency int
}

// Controller drives one batch to a terminal state. It is single use.
type Controller struct {
	deps Deps
	log  *logger.Logger
	used atomic.Bool

	// mu serializes every write to batch after extraction.
	mu    sync.Mutex
	batch *Batch
}

// NewController creates a controller for b.
func NewController(b *Batch, deps Deps) *Controller {
	if deps.Concurrency < 1 {
		deps.Concurrency = 1
	}
	return &Controller{batch: b, deps: deps, log: logger.Get("batch")}
}

// Run resolves the item list, runs one job per item and returns the
// terminal snapshot. The only error is ErrControllerUsed.
func (c *Controller) Run(ctx context.Context) (*Batch, error) {
	if !c.used.CompareAndSwap(false, true) {
		return nil, ErrControllerUsed
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanBatch,
		attribute.String(observability.AttrBatchID, c.batch.ID),
		attribute.String(observability.AttrSource, c.batch.SourceURL),
	)
	err := c.execute(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	observability.EndSpan(span, string(c.batch.Status), err)
	return c.batch.Clone(), nil
}

func (c *Controller) execute(ctx context.Context) error {
	log := c.log.WithFields(logger.Fields(logger.FieldBatchID, c.batch.ID))
	log.Info("batch started", logger.Fields(logger.FieldSource, c.batch.SourceURL))

	c.update(ctx, func(b *Batch) {
		b.Status = StatusExtracting
		b.Message = MessageExtracting
	})

	items, err := c.extract(ctx)
	if err != nil {
		c.update(ctx, func(b *Batch) {
			b.Status = StatusFailed
			b.Progress = 0
			b.Message = "Error: " + err.Error()
		})
		log.Error("batch listing failed", logger.MergeWithError(nil, err))
		return err
	}

	if len(items) == 0 {
		c.update(ctx, func(b *Batch) {
			b.Status = StatusCompleted
			b.Progress = 1.0
			b.TotalItems = 0
			b.Message = MessageNoItems
		})
		log.Info("batch has no items")
		return nil
	}

	c.update(ctx, func(b *Batch) {
		b.Status = StatusProcessing
		b.Items = items
		b.TotalItems = len(items)
		b.Progress = 0.1
		b.Message = fmt.Sprintf("Processing items (0/%d)", len(items))
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.deps.Concurrency)
	for i := range items {
		g.Go(func() error {
			c.runItem(gctx, i)
			return nil
		})
	}
	_ = g.Wait()

	c.update(ctx, func(b *Batch) {
		b.Status, b.Message = outcome(len(b.CompletedJobIDs), b.TotalItems)
		b.Progress = 1.0
	})
	log.Info("batch finished", logger.Fields(
		logger.FieldStatus, string(c.batch.Status),
		"completed", len(c.batch.CompletedJobIDs),
		"failed", len(c.batch.FailedJobIDs),
	))
	return nil
}

// extract lists the source and applies the id filter and the limit.
func (c *Controller) extract(ctx context.Context) ([]Item, error) {
	limit := c.batch.Limit
	if len(c.batch.SelectedIDs) > 0 {
		limit = 0
	}
	listing, err := c.deps.Lister.ListItems(ctx, c.batch.SourceURL, limit)
	if err != nil {
		return nil, err
	}
	c.update(ctx, func(b *Batch) {
		if listing.Title != "" {
			b.Title = listing.Title
		}
		b.Uploader = listing.Uploader
	})

	selected := listing.Filter(c.batch.SelectedIDs)
	if c.batch.Limit > 0 && len(selected) > c.batch.Limit {
		selected = selected[:c.batch.Limit]
	}
	items := make([]Item, len(selected))
	for i, it := range selected {
		items[i] = Item{Item: it}
	}
	return items, nil
}

// runItem runs the job for item i and records the outcome. A panic or an
// error outside the job controller counts as a failed item.
func (c *Controller) runItem(ctx context.Context, i int) {
	c.mu.Lock()
	item := c.batch.Items[i]
	j := job.New(item.URL, job.Options{
		DiarizationEnabled:     c.batch.DiarizationEnabled,
		DiarizationSensitivity: c.batch.DiarizationSensitivity,
		BatchID:                c.batch.ID,
	})
	c.mu.Unlock()

	c.update(ctx, func(b *Batch) { b.Items[i].JobID = j.ID })

	succeeded := false
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("batch item panicked", logger.Fields(
				logger.FieldBatchID, c.batch.ID,
				logger.FieldJobID, j.ID,
				logger.FieldError, fmt.Sprint(r),
			))
			succeeded = false
		}
		c.record(ctx, j.ID, succeeded)
	}()

	final, err := c.deps.RunJob(ctx, j)
	if err != nil {
		c.log.Error("batch item failed", logger.MergeWithError(logger.Fields(
			logger.FieldBatchID, c.batch.ID,
			logger.FieldJobID, j.ID,
		), err))
		return
	}
	succeeded = final != nil && final.Status == job.StatusCompleted
}

func (c *Controller) record(ctx context.Context, jobID string, succeeded bool) {
	outcome := "failed"
	if succeeded {
		outcome = "completed"
	}
	c.deps.Metrics.BatchItem(ctx, outcome)

	c.update(ctx, func(b *Batch) {
		if succeeded {
			b.CompletedJobIDs = append(b.CompletedJobIDs, jobID)
		} else {
			b.FailedJobIDs = append(b.FailedJobIDs, jobID)
		}
		done := b.Done()
		b.Progress = 0.1 + 0.9*float64(done)/float64(b.TotalItems)
		b.Message = fmt.Sprintf("Processing items (%d/%d)", done, b.TotalItems)
	})
}

// outcome derives the terminal status from the number of completed items.
func outcome(completed, total int) (Status, string) {
	switch {
	case completed == total:
		return StatusCompleted, fmt.Sprintf("All %d items completed", total)
	case completed == 0:
		return StatusFailed, fmt.Sprintf("All %d items failed", total)
	default:
		return StatusPartial, fmt.Sprintf("%d of %d items completed", completed, total)
	}
}

// update applies mutate under the batch lock, then stores and publishes a
// snapshot.
func (c *Controller) update(ctx context.Context, mutate func(*Batch)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mutate(c.batch)
	c.batch.UpdatedAt = time.Now().UTC()

	if err := c.deps.Repository.Put(context.WithoutCancel(ctx), c.batch); err != nil {
		c.log.Error("failed to store batch snapshot", logger.MergeWithError(logger.Fields(logger.FieldBatchID, c.batch.ID), err))
	}
	if c.deps.Publisher != nil {
		c.deps.Publisher.Publish(c.batch.ID, sse.EventBatch, c.batch.Summary())
	}
}
