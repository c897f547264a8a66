package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"lcaload/internal/app"
	"lcaload/internal/config"
	"lcaload/internal/handler"
	"lcaload/internal/router"
)

// @title lcaload API
// @version 1.0
// @description Resumable chunked ingest of LCA disclosures and prevailing wages.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	// Initialize handlers
	ingestH := handler.NewIngestHandler(a.Ingest, a.Patch)
	healthH := handler.NewHealthHandler(a.DB)

	// Setup router
	r := router.Setup(ingestH, healthH, cfg.S3.MaxFileSizeMB*1024*1024)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	}

	// In-flight chunks hold a valid input cursor, so callers can retry after restart.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
