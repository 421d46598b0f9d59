// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cost-analysis-engine/internal/api"
	"cost-analysis-engine/internal/bootstrap"
	"cost-analysis-engine/internal/common/camunda"
	"cost-analysis-engine/internal/common/config"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/common/observability"

	analyzecost "cost-analysis-engine/internal/workers/cost-analysis/analyze-cost"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting cost analysis engine",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("cacheStore", cfg.Cache.Store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(ctx, cfg.App.Name, cfg.Tracing, log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		obs.Shutdown(shutdownCtx)
	}()

	engine, err := bootstrap.NewEngine(ctx, cfg, obs, log)
	if err != nil {
		zapLog.Fatal("engine initialization failed", zap.Error(err))
	}
	defer engine.Close()
	defaults := bootstrap.DefaultOptions(cfg)

	// --- Zeebe worker ---
	var workers []*camunda.Worker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, analyzecost.TaskType) {
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress, config.GetDuration(cfg.Camunda.RequestTimeout))
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected", zap.String("gateway", cfg.Camunda.BrokerAddress))

		handler, err := analyzecost.NewHandler(analyzecost.HandlerOptions{
			AppConfig:     cfg,
			Analyzer:      engine.Service,
			Observability: obs,
			Logger:        log,
		})
		if err != nil {
			zapLog.Fatal("failed to create analyze-cost handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(
			zeebe.GetClient(), analyzecost.TaskType, config.GetWorkerConfig(cfg, analyzecost.TaskType), handler, log,
		))
	} else {
		zapLog.Info("Zeebe worker disabled")
	}

	// --- HTTP API ---
	var server *http.Server
	if cfg.Server.Enabled {
		h := api.NewHandler(engine.Service, defaults, log)
		server = &http.Server{
			Addr:         cfg.Server.Address,
			Handler:      api.NewRouter(h, config.GetDuration(cfg.Server.WriteTimeout)),
			ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout) + time.Second,
		}
		go func() {
			zapLog.Info("HTTP API listening", zap.String("address", cfg.Server.Address))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zapLog.Error("HTTP server failed", zap.Error(err))
				stop()
			}
		}()
	}

	if server == nil && len(workers) == 0 {
		zapLog.Warn("Neither the HTTP API nor the Zeebe worker is enabled; exiting")
		return
	}

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}
	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("failed to close zeebe client", zap.Error(err))
		}
	}
	zapLog.Info("All workers stopped. Exiting.")
}
