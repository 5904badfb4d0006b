package job

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/logger"
	"github.com/kbukum/tubescript/observability"
	"github.com/kbukum/tubescript/resilience"
	"github.com/kbukum/tubescript/sse"
	"github.com/kbukum/tubescript/stage"
	"github.com/kbukum/tubescript/store"
	"github.com/kbukum/tubescript/transcript"
)

// ErrControllerUsed is returned when Run is called more than once.
var ErrControllerUsed = errors.Conflict("job controller has already run")

// Publisher delivers state-change notifications. sse.Hub implements it.
type Publisher interface {
	Publish(topic, eventType string, payload any)
}

// Pipeline groups the stage collaborators a controller drives.
type Pipeline struct {
	Acquirer    stage.Acquirer
	Diarizer    stage.Diarizer
	Transcriber stage.Transcriber
}

// Deps are the collaborators of a Controller. Publisher, Slots and Metrics
// are optional.
type Deps struct {
	Pipeline   Pipeline
	Repository store.Repository[*Job]
	Publisher  Publisher
	Slots      *resilience.Bulkhead
	Metrics    *observability.PipelineMetrics
}

// Controller drives one job from queued to a terminal state. It is single
// use.
type Controller struct {
	job  *Job
	deps Deps
	log  *logger.Logger
	used atomic.Bool
}

// NewController creates a controller for j. The controller owns j until Run
// returns.
func NewController(j *Job, deps Deps) *Controller {
	return &Controller{job: j, deps: deps, log: logger.Get("job")}
}

// Run executes the pipeline and returns the terminal snapshot. Stage
// failures end in StatusFailed and are not returned as errors; the only
// error is ErrControllerUsed.
func (c *Controller) Run(ctx context.Context) (*Job, error) {
	if !c.used.CompareAndSwap(false, true) {
		return nil, ErrControllerUsed
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanJob,
		attribute.String(observability.AttrJobID, c.job.ID),
		attribute.String(observability.AttrSource, c.job.SourceURL),
	)

	err := c.execute(ctx)
	if err != nil {
		c.fail(ctx, err)
	}
	observability.EndSpan(span, string(c.job.Status), err)
	return c.job.Clone(), nil
}

func (c *Controller) execute(ctx context.Context) error {
	if c.deps.Slots != nil {
		release, err := c.deps.Slots.Acquire(ctx)
		if err != nil {
			return err
		}
		defer release()
	}

	start := time.Now()
	c.deps.Metrics.JobStarted(ctx)
	err := c.process(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	c.deps.Metrics.JobFinished(ctx, string(status), time.Since(start))
	return err
}

func (c *Controller) process(ctx context.Context) error {
	log := c.log.WithFields(logger.Fields(logger.FieldJobID, c.job.ID))
	log.Info("job started", logger.Fields(logger.FieldSource, c.job.SourceURL))

	c.update(ctx, func(j *Job) {
		j.Status = StatusProcessing
		j.Progress = 0.1
		j.Message = MessageDownloading
	})

	var (
		audio *acquisition.Audio
		info  transcript.SourceInfo
	)
	err := c.runStage(ctx, stage.NameAcquire, func(ctx context.Context) error {
		var err error
		audio, info, err = c.deps.Pipeline.Acquirer.AcquireAudio(ctx, c.job.SourceURL)
		return err
	})
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := audio.Remove(); rmErr != nil {
			log.Warn("failed to remove audio", logger.MergeWithError(nil, rmErr))
		}
	}()

	c.update(ctx, func(j *Job) {
		j.Title = info.Title
		j.Progress = 0.3
		j.Message = MessageDiarizing
	})

	spans, err := c.diarize(ctx, audio, info.Duration)
	if err != nil {
		return err
	}

	c.update(ctx, func(j *Job) {
		j.Progress = 0.6
		j.Message = MessageTranscribing
	})

	total := len(spans)
	var segments []transcript.Segment
	err = c.runStage(ctx, stage.NameTranscribe, func(ctx context.Context) error {
		var err error
		segments, err = c.deps.Pipeline.Transcriber.Transcribe(ctx, audio, spans, func(done int) {
			c.update(ctx, func(j *Job) {
				j.Progress = 0.6 + 0.2*float64(done)/float64(total)
				j.Message = fmt.Sprintf("%s (%d/%d)", MessageTranscribing, done, total)
			})
		})
		return err
	})
	if err != nil {
		return err
	}

	c.update(ctx, func(j *Job) {
		j.Progress = 0.8
		j.Message = MessageAssembling
	})

	var result *Result
	err = c.runStage(ctx, stage.NameAssemble, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return errors.StageError(stage.NameAssemble, err)
		}
		t := transcript.Assemble(segments, info)
		original := make(map[string]string)
		for _, s := range t.Speakers() {
			original[s] = s
		}
		result = &Result{Transcript: t, OriginalSpeakers: original}
		return nil
	})
	if err != nil {
		return err
	}

	c.update(ctx, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 1.0
		j.Message = MessageComplete
		j.Result = result
	})
	log.Info("job completed", logger.Fields(
		"segments", len(result.Transcript.Segments),
		"speakers", result.Transcript.Metadata.SpeakerCount,
	))
	return nil
}

// diarize returns the speaker spans, substituting a single span when
// diarization is disabled or finds nothing.
func (c *Controller) diarize(ctx context.Context, audio *acquisition.Audio, duration float64) ([]stage.Span, error) {
	if !c.job.DiarizationEnabled {
		return stage.SingleSpeaker(duration), nil
	}
	var spans []stage.Span
	err := c.runStage(ctx, stage.NameDiarize, func(ctx context.Context) error {
		var err error
		spans, err = c.deps.Pipeline.Diarizer.Diarize(ctx, audio, c.job.DiarizationSensitivity)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		c.log.Warn("diarization found no speakers, using a single span", logger.Fields(logger.FieldJobID, c.job.ID))
		return stage.SingleSpeaker(duration), nil
	}
	return spans, nil
}

func (c *Controller) runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanStage,
		attribute.String(observability.AttrJobID, c.job.ID),
		attribute.String(observability.AttrStage, name),
	)
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)

	c.deps.Metrics.StageFinished(ctx, name, d, err)
	status := "ok"
	fields := logger.StageFields(c.job.ID, name, d)
	if err != nil {
		status = "error"
		c.log.Error("stage failed", logger.MergeWithError(fields, err))
	} else {
		c.log.Debug("stage finished", fields)
	}
	observability.EndSpan(span, status, err)
	return err
}

func (c *Controller) fail(ctx context.Context, err error) {
	c.update(ctx, func(j *Job) {
		j.Status = StatusFailed
		j.Progress = 0
		j.Message = "Error: " + err.Error()
		j.Result = nil
	})
	c.log.Error("job failed", logger.MergeWithError(logger.Fields(logger.FieldJobID, c.job.ID), err))
}

// update applies mutate to the owned job, then stores and publishes a
// snapshot. Storage errors are logged; the run continues.
func (c *Controller) update(ctx context.Context, mutate func(*Job)) {
	mutate(c.job)
	c.job.UpdatedAt = time.Now().UTC()

	if err := c.deps.Repository.Put(context.WithoutCancel(ctx), c.job); err != nil {
		c.log.Error("failed to store job snapshot", logger.MergeWithError(logger.Fields(logger.FieldJobID, c.job.ID), err))
	}
	if c.deps.Publisher != nil {
		c.deps.Publisher.Publish(c.job.ID, sse.EventJob, c.job.Summary())
	}
}
