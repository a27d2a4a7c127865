package main

import (
	"context"

	"market-buzz/src/analysis"
	"market-buzz/src/data_source/reddit"
	"market-buzz/src/data_source/yahoo"
	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
	"market-buzz/src/network"
	"market-buzz/src/storage"
	"market-buzz/src/utils"
)

// -----------------------------------------------------------------------------

// setupCache opens the configured fetch cache. A broken cache is not fatal:
// the engine then fetches straight from the sources.
func setupCache(ctx context.Context, config *models.MConfig, appLogger *logger.Logger) interfaces.ICache {
	cache, err := storage.NewCache(config, logger.NewLogger(config, "Cache"))
	if err != nil {
		appLogger.Error("Failed to create %s cache: %v. Running without cache.", config.Storage.DBType, err)
		return nil
	}

	if err := cache.Initialize(ctx); err != nil {
		appLogger.Error("Failed to initialize %s cache: %v. Running without cache.", config.Storage.DBType, err)
		cache.Close()
		return nil
	}

	appLogger.Info("Fetch cache ready (%s, ttl %d min)", config.Storage.DBType, config.Storage.CacheTTLMinutes)
	return cache
}

// -----------------------------------------------------------------------------

func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	return network.NewAsyncNetworkManager(config, logger.NewLogger(config, "Network"))
}

// -----------------------------------------------------------------------------

func setupDataSources(config *models.MConfig, networkManager interfaces.INetworkManager) (interfaces.IStockSource, interfaces.ISocialSource) {
	return yahoo.NewYahooFinanceSource(config, networkManager), reddit.NewRedditSource(config, networkManager)
}

// -----------------------------------------------------------------------------

func setupAnalysis(config *models.MConfig, scheduler *utils.MarketScheduler) *analysis.AnalysisFacade {
	return analysis.NewAnalysisFacade(config, scheduler, logger.NewLogger(config, "Analysis"))
}
