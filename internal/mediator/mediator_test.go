package mediator

import (
	"testing"

	"productshot/config"
	"productshot/internal/generation"
)

func TestNewGenerator(t *testing.T) {
	t.Run("http without retries", func(t *testing.T) {
		cfg := config.Config{Generation: config.GenerationConfig{Transport: config.TransportHttp}}.WithDefaults()
		gen, closeFn, err := NewGenerator(cfg)
		if err != nil {
			t.Fatalf("NewGenerator: %v", err)
		}
		defer closeFn()
		if _, ok := gen.(*generation.Client); !ok {
			t.Fatalf("expected *generation.Client, got %T", gen)
		}
	})

	t.Run("http with retries", func(t *testing.T) {
		gen, closeFn, err := NewGenerator(config.Default())
		if err != nil {
			t.Fatalf("NewGenerator: %v", err)
		}
		defer closeFn()
		if _, ok := gen.(*generation.Client); ok {
			t.Fatal("retries enabled but client is not decorated")
		}
	})

	t.Run("grpc", func(t *testing.T) {
		cfg := config.Config{
			Generation: config.GenerationConfig{Transport: config.TransportGrpc},
			Rpc:        config.RpcConfig{Peer: "localhost", Port: "50051"},
		}.WithDefaults()
		gen, closeFn, err := NewGenerator(cfg)
		if err != nil {
			t.Fatalf("NewGenerator: %v", err)
		}
		if _, ok := gen.(*generation.RPCClient); !ok {
			t.Fatalf("expected *generation.RPCClient, got %T", gen)
		}
		if err := closeFn(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})

	t.Run("unknown transport", func(t *testing.T) {
		cfg := config.Config{Generation: config.GenerationConfig{Transport: "carrier-pigeon"}}.WithDefaults()
		if _, _, err := NewGenerator(cfg); err == nil {
			t.Fatal("expected an error for an unknown transport")
		}
	})
}

func TestNewApp(t *testing.T) {
	cfg := config.Default()
	cfg.Gallery.Dir = t.TempDir()

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Config.Api.Port != config.DefaultApiPort {
		t.Fatalf("port = %q", app.Config.Api.Port)
	}
	app.Shutdown()
}
