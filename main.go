package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photo-gallery/internal/database"
	"photo-gallery/internal/handlers"
	"photo-gallery/internal/library"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/memory"
	"photo-gallery/internal/metrics"
	"photo-gallery/internal/middleware"
	"photo-gallery/internal/startup"
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics(config.ThumbnailHeight, config.DisplayHeight)

	// Accounts database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("closing database: %v", err)
		}
	}()
	startup.LogDatabaseInit(time.Since(dbStart))

	startup.LogFFmpegCheck(startup.CheckFFmpeg())

	// Album tree
	startup.LogLibraryInit(config.MediaDir)
	lib := library.New(config.MediaDir, config.RenditionDir, config.ThumbnailHeight, config.DisplayHeight)
	if err := lib.Reload(); err != nil {
		logging.Fatal("Failed to build album tree: %v", err)
	}

	warmCtx, cancelWarm := context.WithCancel(context.Background())
	defer cancelWarm()
	if config.WarmThumbnails {
		go lib.WarmThumbnails(warmCtx)
	}

	// Expired sessions accumulate unless something sweeps them.
	go func() {
		ticker := time.NewTicker(config.SessionSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.CleanExpiredSessions(); err != nil {
				logging.Warn("session sweep: %v", err)
			}
		}
	}()

	h := handlers.New(db, lib)

	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	h.RegisterRoutes(router)
	router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	handler := middleware.Logging(config.LogStaticFiles, config.LogHealthChecks)(router)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, cancelWarm)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, cancelWarm context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping rendition warming")
	cancelWarm()
	startup.LogShutdownStepComplete("Rendition warming stopped")

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
