// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"university-matcher/internal/app"
	"university-matcher/internal/common/camunda"
	"university-matcher/internal/common/config"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/observability"

	ga "university-matcher/internal/workers/advisor/generate-advice"
	ru "university-matcher/internal/workers/university/rank-universities"
)

const healthPort = 8080

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{"service": "worker-manager"})

	zapLog.Info("Starting worker manager...")

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    cfg.App.Name + "-workers",
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, cfg.App.Name+"-workers", log)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	// --- Zeebe client ---
	zeebeClient, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		MaxAttempts:            10,
		InitialDelay:           2 * time.Second,
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Workers ---
	var workers []worker.JobWorker

	rankCfg := config.GetWorkerConfig(cfg, ru.TaskType)
	rankHandler := ru.NewHandler(&ru.Config{Timeout: config.GetDuration(rankCfg.Timeout)}, a.Ranking, log)
	if jw := camunda.StartWorker(zeebeClient, ru.TaskType, rankCfg, rankHandler, log); jw != nil {
		workers = append(workers, jw)
	}

	adviceCfg := config.GetWorkerConfig(cfg, ga.TaskType)
	adviceHandler := ga.NewHandler(&ga.Config{Timeout: config.GetDuration(adviceCfg.Timeout)}, a.Advisor, log)
	if jw := camunda.StartWorker(zeebeClient, ga.TaskType, adviceCfg, adviceHandler, log); jw != nil {
		workers = append(workers, jw)
	}

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Ranking.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	healthServer := &http.Server{Addr: fmt.Sprintf(":%d", healthPort), Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.Int("port", healthPort))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}
	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Health/Metrics server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("tracing shutdown failed", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
