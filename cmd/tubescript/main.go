// Command tubescript serves the transcription API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/api"
	"github.com/kbukum/tubescript/batch"
	"github.com/kbukum/tubescript/bootstrap"
	"github.com/kbukum/tubescript/config"
	"github.com/kbukum/tubescript/diarization"
	"github.com/kbukum/tubescript/diarization/pyannote"
	"github.com/kbukum/tubescript/job"
	"github.com/kbukum/tubescript/logger"
	"github.com/kbukum/tubescript/observability"
	"github.com/kbukum/tubescript/provider"
	"github.com/kbukum/tubescript/redis"
	"github.com/kbukum/tubescript/server"
	"github.com/kbukum/tubescript/server/endpoint"
	"github.com/kbukum/tubescript/service"
	"github.com/kbukum/tubescript/sse"
	"github.com/kbukum/tubescript/stage"
	"github.com/kbukum/tubescript/store"
	"github.com/kbukum/tubescript/transcription"
	"github.com/kbukum/tubescript/transcription/whisper"
)

const serviceName = "tubescript"

// Set at link time: -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	shutdownTelemetry, err := observability.Setup(ctx, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}, cfg.Observability)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	app.OnStop(func(ctx context.Context) error { return shutdownTelemetry(ctx) })

	var redisComp *redis.Component
	if cfg.Redis.Enabled {
		redisComp = redis.NewComponent(cfg.Redis)
		if err := app.RegisterComponent(redisComp); err != nil {
			return err
		}
	}

	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		return configure(ctx, a, redisComp)
	})
	return app.Run(ctx)
}

// configure builds the pipeline, the service and the HTTP surface once the
// infrastructure components are running.
func configure(_ context.Context, app *bootstrap.App[*Config], redisComp *redis.Component) error {
	cfg := app.Cfg
	log := app.Logger

	jobs, batches := repositories(redisComp)

	diarizers, err := diarizationProviders(cfg.Diarization)
	if err != nil {
		return err
	}
	transcribers, err := transcriptionProviders(cfg.Transcription)
	if err != nil {
		return err
	}

	ytdlp := acquisition.NewYTDLP(cfg.Acquisition, nil)
	events := sse.NewComponent("/api/events/:id")

	svc := service.New(cfg.Pipeline, service.Deps{
		Pipeline: job.Pipeline{
			Acquirer: stage.NewAcquirer(ytdlp),
			Diarizer: stage.NewDiarizer(diarizers, stage.DiarizerOptions{
				MinSpeakers: cfg.Diarization.MinSpeakers,
				MaxSpeakers: cfg.Diarization.MaxSpeakers,
			}),
			Transcriber: stage.NewTranscriber(transcribers, stage.TranscriberOptions{
				Concurrency: cfg.Transcription.Concurrency,
				Language:    cfg.Transcription.Whisper.Language,
				Model:       cfg.Transcription.Whisper.Model,
			}),
		},
		Lister:    stage.NewLister(ytdlp),
		Jobs:      jobs,
		Batches:   batches,
		Publisher: events.Hub(),
		Metrics:   observability.MustPipelineMetrics(),
	})

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(endpoint.BuildInfo{
		Service:     cfg.Name,
		Version:     cfg.Version,
		Commit:      commit,
		Environment: cfg.Environment,
	}, app.Components.HealthAll)
	api.NewHandler(svc, events.Hub(), cfg.Events.KeepAlive).Register(srv.GinEngine())

	log.Info("Pipeline configured", logger.Fields(
		"store", storeBackend(redisComp),
		"diarization_strategy", cfg.Diarization.Strategy,
		"transcription_strategy", cfg.Transcription.Strategy,
	))
	if err := app.RegisterComponent(events); err != nil {
		return err
	}
	if err := app.RegisterComponent(svc); err != nil {
		return err
	}
	return app.RegisterComponent(server.NewComponent(srv))
}

func repositories(redisComp *redis.Component) (store.Repository[*job.Job], store.Repository[*batch.Batch]) {
	if redisComp == nil {
		return store.NewMemory[*job.Job]("job"), store.NewMemory[*batch.Batch]("batch")
	}
	client := redisComp.Client()
	return redis.NewStore[*job.Job](client, "job"), redis.NewStore[*batch.Batch](client, "batch")
}

func storeBackend(redisComp *redis.Component) string {
	if redisComp == nil {
		return "memory"
	}
	return "redis"
}

func diarizationProviders(cfg DiarizationConfig) (*provider.Manager[diarization.Provider], error) {
	m := diarization.NewManager(provider.NewSelector[diarization.Provider](cfg.Strategy, []string{pyannote.ProviderName}))
	m.Register(pyannote.ProviderName, pyannote.Factory())
	err := m.Initialize(pyannote.ProviderName, map[string]any{
		"base_url": cfg.Pyannote.BaseURL,
		"timeout":  cfg.Pyannote.Timeout,
	})
	return m, err
}

func transcriptionProviders(cfg TranscriptionConfig) (*provider.Manager[transcription.Provider], error) {
	m := transcription.NewManager(provider.NewSelector[transcription.Provider](cfg.Strategy, []string{whisper.ProviderName}))
	m.Register(whisper.ProviderName, whisper.Factory())
	err := m.Initialize(whisper.ProviderName, map[string]any{
		"url":      cfg.Whisper.URL,
		"model":    cfg.Whisper.Model,
		"language": cfg.Whisper.Language,
		"timeout":  cfg.Whisper.Timeout,
	})
	return m, err
}
