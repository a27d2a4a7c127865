package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetStockDataTool returns the get_stock_data tool definition
func createGetStockDataTool() mcp.Tool {
	return mcp.NewTool("get_stock_data",
		mcp.WithDescription("Fetch daily OHLCV bars for a stock or index symbol from Yahoo Finance"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. ^GSPC, ^IXIC, AAPL"),
		),
		mcp.WithNumber("range_days",
			mcp.Description("Days of history to fetch (default: 30, max: 365)"),
		),
	)
}

// createGetRedditPostsTool returns the get_reddit_posts tool definition
func createGetRedditPostsTool() mcp.Tool {
	return mcp.NewTool("get_reddit_posts",
		mcp.WithDescription("Fetch recent posts of a subreddit with their score and comment counts"),
		mcp.WithString("subreddit",
			mcp.Required(),
			mcp.Description("Subreddit name without the r/ prefix, e.g. wallstreetbets"),
		),
		mcp.WithNumber("range_days",
			mcp.Description("Days of history to fetch (default: 30, max: 365)"),
		),
	)
}

// createComputeCorrelationTool returns the compute_correlation tool definition
func createComputeCorrelationTool() mcp.Tool {
	return mcp.NewTool("compute_correlation",
		mcp.WithDescription("Correlate daily stock volatility with subreddit popularity over a date range"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. ^GSPC"),
		),
		mcp.WithString("subreddit",
			mcp.Required(),
			mcp.Description("Subreddit name, e.g. wallstreetbets"),
		),
		mcp.WithNumber("range_days",
			mcp.Description("Days of history to correlate (default: 30, max: 365)"),
		),
	)
}
