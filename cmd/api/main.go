// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"university-matcher/internal/api"
	"university-matcher/internal/app"
	"university-matcher/internal/common/config"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/observability"
)

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
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{"service": "api"})

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    cfg.App.Name + "-api",
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, cfg.App.Name+"-api", log)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	server := api.NewServer(api.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:    config.GetDuration(cfg.Server.WriteTimeout),
		ShutdownTimeout: config.GetDuration(cfg.Server.ShutdownTimeout),
	}, a.Ranking, a.Advisor, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLog.Info("shutdown signal received")
	}

	if err := server.Shutdown(context.Background()); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(context.Background()); err != nil {
		zapLog.Error("tracing shutdown failed", zap.Error(err))
	}
	zapLog.Info("api stopped")
}
