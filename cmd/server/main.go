package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"productshot/config"
	"productshot/internal/mediator"

	"github.com/charmbracelet/log"
)

func main() {

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("load config", "err", err)
	}

	app, err := mediator.NewApp(cfg)
	if err != nil {
		log.Fatal("create app", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		app.Shutdown()
	}()

	if err := app.Start(); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}
