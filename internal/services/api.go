package services

import (
	"context"
	"fmt"

	"productshot/config"
	"productshot/internal/logo"
	"productshot/internal/orchestrator"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Api struct {
	server         *fiber.App
	orch           *orchestrator.Orchestrator
	uploader       *logo.Uploader
	gallery        *GalleryService
	hub            *Hub
	port           string
	allowedOrigins string
	log            *log.Logger
}

// NewApi builds the fiber app with every route mounted. gallery may be nil,
// in which case POST /api/gallery answers 503.
func NewApi(cfg config.ApiConfig, orch *orchestrator.Orchestrator, uploader *logo.Uploader, hub *Hub, gallery *GalleryService) *Api {
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "*"
	}
	if cfg.Port == "" {
		cfg.Port = config.DefaultApiPort
	}

	a := &Api{
		server:         fiber.New(fiber.Config{BodyLimit: 4 * 1024 * 1024}),
		orch:           orch,
		uploader:       uploader,
		gallery:        gallery,
		hub:            hub,
		port:           cfg.Port,
		allowedOrigins: cfg.AllowedOrigins,
		log:            log.With("component", "api"),
	}

	allowCredentials := a.allowedOrigins != "*"

	a.server.Use(cors.New(cors.Config{
		AllowOrigins:     a.allowedOrigins,
		AllowCredentials: allowCredentials,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,Accept,Origin",
	}))
	a.server.Use(RequestLogger())

	a.addRoutes()
	return a
}

// App exposes the underlying fiber app, mostly for app.Test.
func (a *Api) App() *fiber.App {
	return a.server
}

func (a *Api) Start() error {
	a.log.Info("listening", "port", a.port)
	return a.server.Listen(fmt.Sprint(":", a.port))
}

func (a *Api) Shutdown(ctx context.Context) error {
	return a.server.ShutdownWithContext(ctx)
}

func (a *Api) addRoutes() {
	a.server.Add("GET", "/health", a.Health())

	api := a.server.Group("/api")
	api.Get("/options", a.Options())
	api.Post("/generate", a.Generate())
	api.Get("/state", a.State())
	api.Delete("/error", a.DismissError())
	api.Post("/upload-logo", a.UploadLogo())
	api.Post("/gallery", a.SaveGallery())

	// websocket connection
	a.server.Use("/ws", a.WsUpgrade())
	a.server.Get("/ws/:id", a.Notifications())
}
