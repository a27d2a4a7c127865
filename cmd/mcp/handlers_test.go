package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"market-buzz/src/logger"
	"market-buzz/src/models"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	rangeDays int
	req       models.MCorrelationRequest
	err       error
}

func (f *fakeEngine) StockBars(_ context.Context, symbol string, rangeDays int) ([]models.MPriceBar, error) {
	f.rangeDays = rangeDays
	if f.err != nil {
		return nil, f.err
	}
	return []models.MPriceBar{{Symbol: symbol, Timestamp: 1717400000, Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000}}, nil
}

func (f *fakeEngine) SocialPosts(_ context.Context, subreddit string, rangeDays int) ([]models.MSocialPost, error) {
	f.rangeDays = rangeDays
	if f.err != nil {
		return nil, f.err
	}
	return []models.MSocialPost{{ID: "abc", Subreddit: subreddit, Title: "to the moon", Score: 10, NumComments: 4}}, nil
}

func (f *fakeEngine) Run(_ context.Context, req models.MCorrelationRequest) (*models.MSnapshot, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	day := models.MCalendarDay{Year: 2024, Month: time.June, Day: 3}
	return &models.MSnapshot{
		Symbol:      req.Symbol,
		Subreddit:   req.Subreddit,
		RangeDays:   req.RangeDays,
		Volatility:  []models.MVolatilityPoint{{Date: day, Volatility: 1.25}},
		Popularity:  []models.MPopularityPoint{{Date: day, Popularity: 18, Posts: 1}},
		Correlation: models.MCorrelationResult{Coefficient: 0.61, Strength: models.StrengthModerate, PValue: 0.01, SampleSize: 22},
	}, nil
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func testLogger() *logger.Logger {
	return logger.NewLogger(nil, "MCPTest")
}

func TestGetStockData(t *testing.T) {
	engine := &fakeEngine{}
	handler := handleGetStockData(engine, testLogger())

	res, err := handler(context.Background(), call(map[string]interface{}{"symbol": "^GSPC", "range_days": float64(14)}))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "1 daily bars for ^GSPC over 14 days")
	assert.Contains(t, out, `"close": 101`)
	assert.Equal(t, 14, engine.rangeDays)
}

func TestGetStockData_Defaults(t *testing.T) {
	engine := &fakeEngine{}
	handler := handleGetStockData(engine, testLogger())

	_, err := handler(context.Background(), call(map[string]interface{}{"symbol": "AAPL"}))
	require.NoError(t, err)
	assert.Equal(t, 30, engine.rangeDays)
}

func TestGetStockData_InvalidArguments(t *testing.T) {
	handler := handleGetStockData(&fakeEngine{}, testLogger())

	res, err := handler(context.Background(), call(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "symbol parameter is required")

	res, err = handler(context.Background(), call(map[string]interface{}{"symbol": "AAPL", "range_days": float64(900)}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "range_days must be between 1 and 365")
}

func TestGetRedditPosts(t *testing.T) {
	handler := handleGetRedditPosts(&fakeEngine{}, testLogger())

	res, err := handler(context.Background(), call(map[string]interface{}{"subreddit": "stocks"}))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "1 posts from r/stocks over 30 days")
	assert.Contains(t, out, "to the moon")

	handler = handleGetRedditPosts(&fakeEngine{err: errors.New("reddit returned 429")}, testLogger())
	res, err = handler(context.Background(), call(map[string]interface{}{"subreddit": "stocks"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Reddit error: reddit returned 429")
}

func TestComputeCorrelation(t *testing.T) {
	engine := &fakeEngine{}
	handler := handleComputeCorrelation(engine, testLogger())

	res, err := handler(context.Background(), call(map[string]interface{}{
		"symbol":     "^IXIC",
		"subreddit":  "wallstreetbets",
		"range_days": float64(60),
	}))
	require.NoError(t, err)

	assert.Equal(t, models.MCorrelationRequest{Symbol: "^IXIC", Subreddit: "wallstreetbets", RangeDays: 60}, engine.req)
	out := text(t, res)
	assert.Contains(t, out, "# ^IXIC vs r/wallstreetbets (60 days)")
	assert.Contains(t, out, "**Strength:** Moderate")
	assert.Contains(t, out, "| 2024-06-03 | 1.250 | 18 | 1 |")
}

func TestComputeCorrelation_Errors(t *testing.T) {
	handler := handleComputeCorrelation(&fakeEngine{}, testLogger())
	res, err := handler(context.Background(), call(map[string]interface{}{"symbol": "^GSPC"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "subreddit parameter is required")

	handler = handleComputeCorrelation(&fakeEngine{err: errors.New("insufficient data")}, testLogger())
	res, err = handler(context.Background(), call(map[string]interface{}{"symbol": "^GSPC", "subreddit": "stocks"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Correlation error: insufficient data")
}
