package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/rainfall-intel/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/rainfall-intel/internal/adapter/kafka"
	"github.com/couchcryptid/rainfall-intel/internal/adapter/modelfile"
	"github.com/couchcryptid/rainfall-intel/internal/adapter/modelhttp"
	"github.com/couchcryptid/rainfall-intel/internal/config"
	"github.com/couchcryptid/rainfall-intel/internal/dataset"
	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/couchcryptid/rainfall-intel/internal/gateway"
	"github.com/couchcryptid/rainfall-intel/internal/observability"
	"github.com/couchcryptid/rainfall-intel/internal/pipeline"
	"github.com/couchcryptid/rainfall-intel/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	records, err := dataset.Open(cfg.DatasetPath, cfg.DatasetSchemaFile, logger)
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	}
	index := domain.NewLocationIndex(records)
	metrics.DatasetRecords.Set(float64(index.Len()))
	logger.Info("dataset loaded", "path", cfg.DatasetPath, "records", index.Len(), "states", len(index.States()))
	for _, c := range index.Conflicts() {
		logger.Warn("district listed under several states", "district", c.District, "states", c.States)
	}

	gw := gateway.New(loadModels(cfg, metrics, logger), metrics, logger)
	svc := service.New(index, gw, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var closers []func() error
	if cfg.PipelineEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, reader.Close, writer.Close)

		p := pipeline.New(reader, pipeline.NewTransformer(svc, logger), writer, logger, metrics, cfg.BatchSize)
		g.Go(func() error { return p.Run(gctx) })
	} else {
		logger.Info("kafka pipeline disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Error("kafka close error", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// loadModels opens the configured model handles. A handle that fails to load
// is left nil so the gateway answers ErrModelUnavailable for it.
func loadModels(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) gateway.Models {
	var models gateway.Models

	if cfg.ModelPath != "" {
		m, err := modelfile.Load(cfg.ModelPath)
		if err != nil {
			logger.Error("rainfall model unavailable", "path", cfg.ModelPath, "error", err)
		} else {
			models.Rainfall = m
			logger.Info("rainfall model loaded", "name", m.Name)
		}
	}

	if cfg.ModelServerURL != "" {
		client := modelhttp.NewClient(cfg.ModelServerURL, cfg.ModelServerTimeout, logger)
		cached := modelhttp.NewCachedModel(client, cfg.ModelCacheSize, metrics)
		models.Location = cached
		models.Condition = cached
		if models.Rainfall == nil {
			models.Rainfall = client
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			logger.Warn("model server not reachable at startup", "url", cfg.ModelServerURL, "error", err)
		} else {
			logger.Info("model server reachable", "url", cfg.ModelServerURL, "cache_size", cfg.ModelCacheSize)
		}
	}

	return models
}
