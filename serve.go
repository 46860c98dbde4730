package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mch/internal/filesystem"
	"mch/internal/handlers"
	"mch/internal/logging"
	"mch/internal/memory"
	"mch/internal/metrics"
	"mch/internal/middleware"
	"mch/internal/source"
	"mch/internal/startup"
)

func runServe(envFile string) error {
	startTime := time.Now()

	config, err := startup.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	startup.LogMemoryConfig(memory.Configure(config.Memory.Limit, config.Memory.Ratio))

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	sourceStart := time.Now()
	src, location, err := newSource(config)
	if err != nil {
		return fmt.Errorf("failed to initialize content source: %w", err)
	}
	startup.LogContentSourceInit(config.Content.Backend, location, time.Since(sourceStart))

	h := handlers.New(src, config.Content.Backend)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.Log.StaticFiles, config.Log.HealthChecks)

	handler, names := buildChain(router, config)
	startup.LogMiddlewareChain(names)

	srv := &http.Server{
		Addr:              ":" + config.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.Metrics.Enabled {
		metricsSrv = newMetricsServer(config.Server.MetricsPort)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, h, config.Server.ShutdownTimeout)
		close(shutdownDone)
	}()

	h.SetReady(true)
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Server.Port,
		MetricsPort:     config.Server.MetricsPort,
		MetricsEnabled:  config.Metrics.Enabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-shutdownDone
	return nil
}

// newSource opens the configured content backend and returns it with a
// human readable location for the startup log.
func newSource(config *startup.Config) (source.Source, string, error) {
	switch config.Content.Backend {
	case source.BackendMinio:
		store, err := source.NewObjectStore(config.Minio)
		if err != nil {
			return nil, "", err
		}
		location := fmt.Sprintf("%s/%s", config.Minio.Endpoint, config.Minio.Bucket)
		return source.NewMinio(store, config.Minio.Bucket), location, nil
	default:
		filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
			"content": config.Content.Root,
		}))
		local, err := source.NewLocal(config.Content.Root, filesystem.DefaultRetryConfig())
		if err != nil {
			return nil, "", err
		}
		return local, local.Root(), nil
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.HandleFunc("/content/{path:.*}", h.GetContent).Methods(http.MethodGet, http.MethodHead)

	return r
}

// buildChain wraps the router in the middleware stack and returns the names
// in request order, outermost first. Range wraps Compression, so byte offsets
// index the encoded body.
func buildChain(router http.Handler, config *startup.Config) (http.Handler, []string) {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.Log.StaticFiles
	loggingConfig.LogHealthChecks = config.Log.HealthChecks

	compressionConfig := middleware.DefaultCompressionConfig()
	compressionConfig.Level = config.Compression.Level
	compressionConfig.MinSize = config.Compression.MinSize

	var (
		names []string
		mws   []middleware.Middleware
	)
	use := func(name string, mw middleware.Middleware) {
		names = append(names, name)
		mws = append(mws, mw)
	}

	if config.Metrics.Enabled {
		use("metrics", middleware.Metrics(middleware.DefaultMetricsConfig()))
	}
	use("logger", middleware.Logger(loggingConfig))
	use("range", middleware.Range())
	use("compression", middleware.Compression(compressionConfig))
	use("conditional", middleware.Conditional())

	return middleware.Chain(router, mws...), names
}

func newMetricsServer(port string) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, h *handlers.Handlers, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	startup.LogShutdownStep("Marking service not ready")
	h.SetReady(false)
	startup.LogShutdownStepComplete("Service marked not ready")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
