package mediator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"productshot/config"
	"productshot/internal/gallery"
	"productshot/internal/generation"
	"productshot/internal/logo"
	"productshot/internal/orchestrator"
	"productshot/internal/queue"
	"productshot/internal/services"

	"github.com/charmbracelet/log"
)

type App struct {
	api      *services.Api
	hub      *services.Hub
	gallery  *services.GalleryService
	closeGen func() error
	cancel   context.CancelFunc
	// settings
	Config *config.Config
}

// NewGenerator builds the configured transport and wraps it in the retry
// decorator when retries are enabled. The returned close func releases the
// transport and is never nil.
func NewGenerator(cfg config.Config) (generation.Generator, func() error, error) {
	var (
		gen     generation.Generator
		closeFn = func() error { return nil }
	)

	switch cfg.Generation.Transport {
	case config.TransportGrpc:
		rpc, err := generation.NewRPCClient(cfg.Rpc, cfg.Generation)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating rpc client: %w", err)
		}
		gen, closeFn = rpc, rpc.Close
	case config.TransportHttp, "":
		gen = generation.NewClient(cfg.Generation)
	default:
		return nil, nil, fmt.Errorf("unknown generation transport %q", cfg.Generation.Transport)
	}

	if cfg.Generation.MaxRetries > 0 {
		gen = generation.WithRetry(gen, generation.RetryPolicyFromConfig(cfg.Generation))
	}
	return gen, closeFn, nil
}

func NewApp(cfg config.Config) (*App, error) {
	cfg = cfg.WithDefaults()
	ConfigureLogging(cfg.Log)

	gen, closeGen, err := NewGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating newapp: %w", err)
	}

	hub := services.NewHub()
	orch := orchestrator.New(
		gen,
		orchestrator.WithQueue(queue.New(cfg.Queue.Concurrency)),
		orchestrator.WithBaseURL(cfg.Generation.BaseUrl),
		orchestrator.WithObserver(hub.PublishState),
	)

	ctx, cancel := context.WithCancel(context.Background())
	dl := gallery.NewDownloader(cfg.Gallery, &http.Client{Timeout: 5 * time.Minute})
	gal := services.NewGalleryService(ctx, hub, cfg.Gallery, dl)

	uploader := logo.NewUploader(cfg.Generation, nil)
	api := services.NewApi(cfg.Api, orch, uploader, hub, gal)

	log.Info("app configured",
		"transport", cfg.Generation.Transport,
		"baseUrl", cfg.Generation.BaseUrl,
		"retries", cfg.Generation.MaxRetries,
		"concurrency", cfg.Queue.Concurrency,
	)

	return &App{
		api:      api,
		hub:      hub,
		gallery:  gal,
		closeGen: closeGen,
		cancel:   cancel,
		Config:   &cfg,
	}, nil
}

// Start blocks serving HTTP until the server stops.
func (a *App) Start() error {
	a.gallery.Run()
	return a.api.Start()
}

func (a *App) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.api.Shutdown(ctx); err != nil {
		log.Warn("api shutdown", "err", err)
	}
	a.cancel()
	a.gallery.Shutdown()
	a.hub.Shutdown()
	if err := a.closeGen(); err != nil {
		log.Warn("generator close", "err", err)
	}
}
