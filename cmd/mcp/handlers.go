package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"market-buzz/src/logger"
	"market-buzz/src/models"
	"market-buzz/src/utils"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// correlationEngine is the part of pipeline.Pipeline the tools need.
type correlationEngine interface {
	StockBars(ctx context.Context, symbol string, rangeDays int) ([]models.MPriceBar, error)
	SocialPosts(ctx context.Context, subreddit string, rangeDays int) ([]models.MSocialPost, error)
	Run(ctx context.Context, req models.MCorrelationRequest) (*models.MSnapshot, error)
}

// -----------------------------------------------------------------------------

// handleGetStockData implements the get_stock_data tool
func handleGetStockData(engine correlationEngine, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || strings.TrimSpace(symbol) == "" {
			return textResult("Error: symbol parameter is required"), nil
		}
		rangeDays, err := rangeArg(request)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		bars, err := engine.StockBars(ctx, strings.TrimSpace(symbol), rangeDays)
		if err != nil {
			log.Error("get_stock_data %s failed: %v", symbol, err)
			return textResult(fmt.Sprintf("Stock data error: %v", err)), nil
		}

		return jsonResult(fmt.Sprintf("%d daily bars for %s over %d days", len(bars), symbol, rangeDays), bars), nil
	}
}

// -----------------------------------------------------------------------------

// handleGetRedditPosts implements the get_reddit_posts tool
func handleGetRedditPosts(engine correlationEngine, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subreddit, err := request.RequireString("subreddit")
		if err != nil || strings.TrimSpace(subreddit) == "" {
			return textResult("Error: subreddit parameter is required"), nil
		}
		rangeDays, err := rangeArg(request)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		posts, err := engine.SocialPosts(ctx, strings.TrimSpace(subreddit), rangeDays)
		if err != nil {
			log.Error("get_reddit_posts %s failed: %v", subreddit, err)
			return textResult(fmt.Sprintf("Reddit error: %v", err)), nil
		}

		return jsonResult(fmt.Sprintf("%d posts from r/%s over %d days", len(posts), subreddit, rangeDays), posts), nil
	}
}

// -----------------------------------------------------------------------------

// handleComputeCorrelation implements the compute_correlation tool
func handleComputeCorrelation(engine correlationEngine, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil {
			return textResult("Error: symbol parameter is required"), nil
		}
		subreddit, err := request.RequireString("subreddit")
		if err != nil {
			return textResult("Error: subreddit parameter is required"), nil
		}
		rangeDays, err := rangeArg(request)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		snapshot, err := engine.Run(ctx, models.MCorrelationRequest{
			Symbol:    symbol,
			Subreddit: subreddit,
			RangeDays: rangeDays,
		})
		if err != nil {
			log.Error("compute_correlation %s/%s failed: %v", symbol, subreddit, err)
			return textResult(fmt.Sprintf("Correlation error: %v", err)), nil
		}

		return textResult(formatSnapshot(snapshot)), nil
	}
}

// -----------------------------------------------------------------------------
// Formatting
// -----------------------------------------------------------------------------

// rangeArg reads range_days, defaulting to utils.DefaultRangeDays.
func rangeArg(request mcp.CallToolRequest) (int, error) {
	days := request.GetInt("range_days", utils.DefaultRangeDays)
	if days <= 0 || days > utils.MaxRangeDays {
		return 0, fmt.Errorf("range_days must be between 1 and %d", utils.MaxRangeDays)
	}
	return days, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func jsonResult(summary string, payload interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return textResult(fmt.Sprintf("Encoding error: %v", err))
	}
	return textResult(fmt.Sprintf("%s\n\n```json\n%s\n```", summary, data))
}

// formatSnapshot renders the correlation as markdown followed by the aligned
// daily series.
func formatSnapshot(s *models.MSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s vs r/%s (%d days)\n\n", s.Symbol, s.Subreddit, s.RangeDays)
	fmt.Fprintf(&b, "- **Coefficient:** %.4f\n", s.Correlation.Coefficient)
	fmt.Fprintf(&b, "- **Strength:** %s\n", s.Correlation.Strength)
	fmt.Fprintf(&b, "- **p-value:** %.4f\n", s.Correlation.PValue)
	fmt.Fprintf(&b, "- **Sample size:** %d days\n", s.Correlation.SampleSize)

	popularity := make(map[models.MCalendarDay]models.MPopularityPoint, len(s.Popularity))
	for _, p := range s.Popularity {
		popularity[p.Date] = p
	}

	b.WriteString("\n| Date | Volatility % | Popularity | Posts |\n|---|---|---|---|\n")
	for _, v := range s.Volatility {
		p, ok := popularity[v.Date]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %.3f | %.0f | %d |\n", v.Date, v.Volatility, p.Popularity, p.Posts)
	}

	return b.String()
}
