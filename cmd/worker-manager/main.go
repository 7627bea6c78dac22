// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"business-finder/internal/common/camunda"
	"business-finder/internal/common/config"
	"business-finder/internal/common/logger"
	"business-finder/internal/common/observability"
	"business-finder/internal/common/places"
	"business-finder/pkg/registry"

	ar "business-finder/internal/workers/business-search/aggregate-results"
	ec "business-finder/internal/workers/business-search/export-csv"
	fr "business-finder/internal/workers/business-search/filter-results"
	rl "business-finder/internal/workers/business-search/resolve-location"
)

func main() {
	zapLog := logger.New("info", "console")
	defer func() { _ = zapLog.Sync() }()

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	log := logger.NewZapAdapter(zapLog)

	if !cfg.Camunda.Enabled {
		zapLog.Fatal("camunda is disabled; set camunda.enabled and camunda.broker_address")
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	placesClient := places.NewClientFromConfig(cfg.Places, log)
	if err := placesClient.Ready(); err != nil {
		// jobs will fail with MISSING_CREDENTIAL until the key is set
		zapLog.Warn("places provider not ready", zap.Error(err))
	}

	handlers, err := buildHandlers(cfg, placesClient, log)
	if err != nil {
		zapLog.Fatal("failed to build worker handlers", zap.Error(err))
	}

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry not loaded", zap.String("path", cfg.Registry.Path), zap.Error(err))
	} else if missing := reg.Undeclared(taskTypes(handlers)); len(missing) > 0 {
		zapLog.Fatal("workers not declared in activity registry", zap.Strings("taskTypes", missing))
	}

	zeebe, err := camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	registrar := camunda.NewRegistrar(zeebe.Zeebe(), config.WorkerConfig{
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Camunda.Timeout,
	}, log)

	for name, h := range handlers {
		registrar.Register(h, config.GetWorkerConfig(cfg, name))
	}
	zapLog.Info("workers registered", zap.Strings("taskTypes", registrar.TaskTypes()))

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           healthMux(zeebe),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registrar.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// buildHandlers returns the business search handlers keyed by worker name.
func buildHandlers(cfg *config.Config, placesClient *places.Client, log logger.Logger) (map[string]camunda.JobHandler, error) {
	resolve, err := rl.NewHandler(rl.HandlerOptions{AppConfig: cfg, Geocoder: placesClient, Logger: log})
	if err != nil {
		return nil, err
	}
	aggregate, err := ar.NewHandler(ar.HandlerOptions{AppConfig: cfg, Places: placesClient, Logger: log})
	if err != nil {
		return nil, err
	}
	filter, err := fr.NewHandler(fr.HandlerOptions{AppConfig: cfg, Logger: log})
	if err != nil {
		return nil, err
	}
	export, err := ec.NewHandler(ec.HandlerOptions{AppConfig: cfg, Logger: log})
	if err != nil {
		return nil, err
	}

	return map[string]camunda.JobHandler{
		rl.WorkerName: resolve,
		ar.WorkerName: aggregate,
		fr.WorkerName: filter,
		ec.WorkerName: export,
	}, nil
}

func taskTypes(handlers map[string]camunda.JobHandler) []string {
	out := make([]string, 0, len(handlers))
	for _, h := range handlers {
		out = append(out, h.GetTaskType())
	}
	return out
}

func healthMux(zeebe *camunda.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
