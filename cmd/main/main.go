package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"market-buzz/src/config"
	"market-buzz/src/grpc_control"
	"market-buzz/src/logger"
	"market-buzz/src/notify"
	"market-buzz/src/pipeline"
	"market-buzz/src/server"
	"market-buzz/src/utils"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Environment and command line flags
	config.LoadDotEnv()

	defaultPath := "config/default.yaml"
	if v := os.Getenv(config.EnvConfigPath); v != "" {
		defaultPath = v
	}
	configPath := flag.String("config", defaultPath, "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	logger.Configure(conf)
	appLogger := logger.NewLogger(conf, conf.Name)

	// Lifecycle Management
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Setup Components
	cache := setupCache(ctx, conf.MConfig, appLogger)
	if cache != nil {
		defer cache.Close()
	}

	networkManager := setupNetwork(conf.MConfig)
	stocks, social := setupDataSources(conf.MConfig, networkManager)

	scheduler := utils.NewMarketScheduler(conf.Market.Symbols, logger.NewLogger(conf, "MarketScheduler"))
	analyzer := setupAnalysis(conf.MConfig, scheduler)

	engine := pipeline.NewPipeline(conf.MConfig, stocks, social, analyzer, logger.NewLogger(conf, "Pipeline"))
	engine.Cache = cache

	// 5. Servers
	history := utils.NewMemoryManager(conf.Refresh.HistorySize)
	srv := server.NewFastAPIServer(conf.MConfig, engine, history, logger.NewLogger(conf, "Server"))
	healthService := grpc_control.NewHealthService(conf.MConfig, logger.NewLogger(conf, "HealthService"))

	// Failures reach the log and every connected dashboard
	engine.Notifier = notify.NewMultiNotifier(notify.NewLogNotifier(logger.NewLogger(conf, "Notifier")), srv)
	engine.Health = healthService

	errs := startServers(srv, healthService, appLogger)

	// 6. Refresh Loop
	var wg sync.WaitGroup
	if conf.Refresh.Enabled {
		refresher := pipeline.NewRefresher(engine, srv, scheduler, conf.Pairs(), time.Duration(conf.Refresh.IntervalSeconds)*time.Second)

		wg.Add(1)
		go func() {
			defer wg.Done()
			refresher.Run(ctx)
		}()
		appLogger.Info("Refreshing %d pairs every %ds", len(refresher.Pairs), conf.Refresh.IntervalSeconds)
	} else {
		appLogger.Info("Refresh loop disabled, serving on demand only")
	}

	// 7. Wait for shutdown
	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down...")
	case err := <-errs:
		appLogger.Error("Shutting down after server failure: %v", err)
		stop()
	}

	wg.Wait()
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown failed: %v", err)
	}
	healthService.Stop()
	appLogger.Info("Shutdown complete.")
}
