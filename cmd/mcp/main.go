package main

import (
	"context"
	"fmt"
	"os"

	"market-buzz/src/config"
	"market-buzz/src/data_source/reddit"
	"market-buzz/src/data_source/yahoo"
	"market-buzz/src/logger"
	"market-buzz/src/network"
	"market-buzz/src/pipeline"
	"market-buzz/src/storage"

	"github.com/mark3labs/mcp-go/server"
)

const version = "1.0.0"

func main() {
	// Stdout carries the MCP protocol, keep logs off it
	logger.SetOutput(os.Stderr)

	// Load configuration
	config.LoadDotEnv()
	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = "config/default.yaml"
	}

	conf, err := config.NewConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Configure(conf)
	log := logger.NewLogger(conf, "MCP")

	// Sources and engine, without analysis-side market calendars
	networkManager := network.NewAsyncNetworkManager(conf.MConfig, log)
	engine := pipeline.NewPipeline(conf.MConfig,
		yahoo.NewYahooFinanceSource(conf.MConfig, networkManager),
		reddit.NewRedditSource(conf.MConfig, networkManager),
		nil, log)

	// Cache is optional here too
	if cache, err := storage.NewCache(conf.MConfig, log); err == nil {
		if err := cache.Initialize(context.Background()); err == nil {
			engine.Cache = cache
			defer cache.Close()
		} else {
			log.Warning("Cache unavailable: %v", err)
		}
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		conf.Name,
		version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetStockDataTool(), handleGetStockData(engine, log))
	mcpServer.AddTool(createGetRedditPostsTool(), handleGetRedditPosts(engine, log))
	mcpServer.AddTool(createComputeCorrelationTool(), handleComputeCorrelation(engine, log))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Critical("MCP server failed: %v", err)
	}
}
