package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/creative-catalog/internal/api"
	"github.com/ignite/creative-catalog/internal/config"
	"github.com/ignite/creative-catalog/internal/media"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
	"github.com/ignite/creative-catalog/internal/storage"
	"github.com/ignite/creative-catalog/internal/traits"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %v", addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := flag.String("config", "", "config file (default: built-in defaults plus .env)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		logger.Error("pre-flight check failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	opts := []storage.Option{storage.WithLayout(storage.Layout(cfg.Catalog.Layout))}
	if cfg.Storage.Enabled() {
		mirror, err := storage.NewS3Mirror(ctx, cfg.Storage)
		if err != nil {
			logger.Error("failed to initialize S3 mirror", "error", err)
			os.Exit(1)
		}
		opts = append(opts, storage.WithMirror(mirror))
	}
	store, err := storage.Open(ctx, cfg.Catalog.Path, opts...)
	if err != nil {
		logger.Error("failed to open catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}

	// The framework is optional until the first "framework build"
	fw, err := traits.LoadFramework(cfg.Traits.FrameworkPath)
	if err != nil {
		logger.Warn("trait framework not loaded", "path", cfg.Traits.FrameworkPath, "error", err)
		fw = nil
	}

	checker := media.NewChecker(nil,
		media.WithCheckTimeout(cfg.Checker.Timeout()),
		media.WithGetFallback(cfg.Checker.FallbackToGet))

	handlers := api.NewHandlers(store, fw, checker)
	server := api.NewServer(cfg.Server, handlers, cfg.Media.Dir)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting dashboard server", "addr", addr, "records", store.Len())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
