package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/DaDevFox/task-systems/forecast-core/internal/config"
	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/events"
	"github.com/DaDevFox/task-systems/forecast-core/internal/logging"
	"github.com/DaDevFox/task-systems/forecast-core/internal/metrics"
	"github.com/DaDevFox/task-systems/forecast-core/internal/repository"
	"github.com/DaDevFox/task-systems/forecast-core/internal/rpc"
	"github.com/DaDevFox/task-systems/forecast-core/internal/service"
)

const serviceName = "forecast-core"

func main() {
	cfg, err := config.Load(os.Getenv("FORECAST_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	store, err := repository.NewForecastStore(ctx, repository.DatabaseType(cfg.Database.Type), cfg.Database.Path, cfg.Database.URL)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize repository")
	}
	defer store.Close()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize event bus
	eventBus := events.NewEventBus(serviceName, logger)
	eventBus.Subscribe(events.EventRestockRecommended, func(ctx context.Context, event *events.Event) error {
		payload, ok := event.Payload.(events.RestockRecommended)
		if !ok {
			return fmt.Errorf("unexpected payload %T", event.Payload)
		}
		if payload.Urgency == string(domain.UrgencyCritical) {
			logger.WithFields(logrus.Fields{
				"product_id":    payload.ProductID,
				"product_name":  payload.ProductName,
				"total_restock": payload.TotalRestockNeeded,
			}).Warn("critical restock required")
		}
		return nil
	})

	// Initialize services
	opts := []service.Option{service.WithMetrics(m), service.WithEventPublisher(eventBus)}
	forecaster := service.NewForecastService(store, logger, opts...)
	planner := service.NewRestockPlanner(forecaster, store, logger, opts...)

	defaults := rpc.Defaults{
		Horizon:    cfg.Forecast.DefaultHorizon,
		PeriodType: domain.PeriodType(cfg.Forecast.DefaultPeriod),
	}

	// Create gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(rpc.NewLoggingInterceptor(logger).Unary()))
	rpc.RegisterForecastServiceServer(grpcServer, rpc.NewServer(forecaster, planner, defaults, logger))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Server.Port))
	if err != nil {
		logger.WithError(err).Fatal("failed to listen")
	}

	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           metricsMux(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"port":         cfg.Server.Port,
		"metrics_addr": cfg.Server.MetricsAddr,
		"database":     cfg.Database.Type,
	}).Info("starting forecast-core gRPC server")

	// Start servers in goroutines
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.WithError(err).Error("gRPC server failed")
			cancel()
		}
	}()

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server failed")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("received shutdown signal")
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	logger.Info("shutting down forecast-core server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("metrics server shutdown failed")
	}
	grpcServer.GracefulStop()
}

func metricsMux(registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
