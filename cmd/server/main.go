package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acheong08/threatlens/internal/analysis"
	"github.com/acheong08/threatlens/internal/config"
	"github.com/acheong08/threatlens/internal/netprobe"
	"github.com/acheong08/threatlens/internal/preprocess"
	"github.com/acheong08/threatlens/internal/registry"
	"github.com/acheong08/threatlens/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gateway := analysis.NewGateway(analysis.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.LLMBaseURL,
	})
	pre := preprocess.New(registry.NewClient(cfg.RegistryURL), netprobe.NewProber())
	pipeline := server.NewPipeline(pre, gateway)

	handler := server.NewHandler(pipeline, server.Options{
		Production: cfg.Production(),
		StaticDir:  cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[INFO] ThreatLens server starting on port %s (%s)", cfg.Port, cfg.Env)
	log.Printf("[INFO] Model: %s", gateway.Model())
	if cfg.GeminiAPIKey == "" {
		log.Printf("[WARN] GEMINI_API_KEY is not set, analysis requests will fail")
	} else {
		log.Printf("[INFO] API key loaded")
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	if err := serve(ctx, srv, ln); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Printf("[INFO] Server stopped")
}

// serve runs srv on ln until ctx is done, then drains in-flight requests
// before returning.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Printf("[INFO] Shutting down, waiting for in-flight requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-done; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
