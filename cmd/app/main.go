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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/prasetyowira/qrlink/api"
	"github.com/prasetyowira/qrlink/config"
	"github.com/prasetyowira/qrlink/constant"
	"github.com/prasetyowira/qrlink/domain/qrcode"
	"github.com/prasetyowira/qrlink/domain/shortener"
	"github.com/prasetyowira/qrlink/infrastructure/cache"
	"github.com/prasetyowira/qrlink/infrastructure/db"
	"github.com/prasetyowira/qrlink/infrastructure/isgd"
	appLogger "github.com/prasetyowira/qrlink/infrastructure/logger"
	"github.com/prasetyowira/qrlink/infrastructure/metrics"
	qrencoder "github.com/prasetyowira/qrlink/infrastructure/qrcode"
)

func main() {
	// Load configuration from flags and QRLINK_* environment variables
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", constant.MsgFailedToLoadConfig, err)
		os.Exit(2)
	}

	if err := appLogger.Initialize(cfg.IsProduction()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Close()

	appLogger.Info(constant.MsgApplicationStarting, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
		Data: map[string]interface{}{
			constant.DataPort:     cfg.Port,
			constant.DataDBPath:   cfg.DatabaseURL,
			constant.DataLogLevel: cfg.LogLevel,
		},
	})

	// Create SQLite repository for the link history
	repository, err := db.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal(constant.MsgFailedToInitDB, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppDBInit,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
			Data: map[string]interface{}{
				constant.DataDBPath: cfg.DatabaseURL,
			},
		})
	}
	defer repository.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	cacheLRU := cache.NewNamespaceLRU(cfg.CacheSize)
	qrService := qrcode.NewService(qrencoder.NewGenerator(), cacheLRU, appMetrics)

	client := isgd.NewClient(cfg.ShortenerEndpoint, cfg.ShortenerTimeout)
	shortenerService := shortener.NewService(client, repository, appMetrics, shortener.Options{
		Rate:    cfg.ShortenerRate,
		Burst:   cfg.ShortenerBurst,
		TTL:     cfg.ShortLinkTTL,
		Timeout: cfg.ShortenerTimeout,
	})
	defer shortenerService.Close()

	// Create API handler and router
	handler := api.NewHandler(qrService, shortenerService, cfg.PNGSize)
	router := api.NewRouter(handler, metrics.Handler(registry), cfg.AuthUser, cfg.AuthPass)
	router.SetupRoutes()

	// Configure HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info(constant.MsgServerStarting, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Data: map[string]interface{}{
				constant.DataAddress: server.Addr,
			},
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(constant.MsgServerFailedToStart, appLogger.LoggerInfo{
				ContextFunction: constant.CtxMain,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeAppServerStart,
					Message: err.Error(),
					Type:    constant.ErrTypeApp,
				},
				Data: map[string]interface{}{
					constant.DataPort: cfg.Port,
				},
			})
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info(constant.MsgServerShuttingDown, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
	})

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error(constant.MsgServerShutdownError, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppServerShutdown,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
		})
	}

	appLogger.Info(constant.MsgServerStopped, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
	})
}
