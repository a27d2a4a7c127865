package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
)

const SourceName = "yahoo"

type YahooFinanceSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	BaseURL string

	now func() time.Time
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return SourceName
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooFinanceSource {
	return &YahooFinanceSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg, "YahooFinanceSource"),
		BaseURL: strings.TrimRight(cfg.Market.BaseURL, "/"),
		now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

// FetchDailyBars fetches daily bars for symbol over the last rangeDays days.
func (s *YahooFinanceSource) FetchDailyBars(ctx context.Context, symbol string, rangeDays int) ([]models.MPriceBar, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, helpers.NewValidationError("symbol cannot be empty", nil)
	}
	if rangeDays <= 0 {
		return nil, helpers.NewValidationError(fmt.Sprintf("invalid range %d", rangeDays), nil)
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -rangeDays)

	params := map[string]string{
		"interval":       "1d",
		"period1":        strconv.FormatInt(start.Unix(), 10),
		"period2":        strconv.FormatInt(end.Unix(), 10),
		"includePrePost": "false",
		"events":         "div,split",
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", s.BaseURL, url.PathEscape(symbol))

	respBytes, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string  `json:"currency"`
				Symbol               string  `json:"symbol"`
				ExchangeName         string  `json:"exchangeName"`
				InstrumentType       string  `json:"instrumentType"`
				Timezone             string  `json:"timezone"`
				ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				DataGranularity      string  `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`   // Use pointers to handle null
					Low    []*float64 `json:"low"`    // Use pointers to handle null
					Open   []*float64 `json:"open"`   // Use pointers to handle null
					Close  []*float64 `json:"close"`  // Use pointers to handle null
					Volume []*float64 `json:"volume"` // Use pointers to handle null
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, data []byte) ([]models.MPriceBar, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewDataSourceError("json unmarshal failed for "+symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, helpers.NewDataSourceError(
			fmt.Sprintf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description), nil)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, helpers.NewDataSourceError("no result in response for "+symbol, nil)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, helpers.NewDataSourceError("no timestamps in response for "+symbol, nil)
	}

	indicators := result.Indicators.Quote
	if len(indicators) == 0 {
		return nil, helpers.NewDataSourceError("no quote data in response for "+symbol, nil)
	}

	quote := indicators[0]

	// 1. Validation: Alignment check
	n := len(result.Timestamp)
	if n != len(quote.Close) || n != len(quote.Open) || n != len(quote.High) ||
		n != len(quote.Low) || n != len(quote.Volume) {
		s.Logger.Info("Data alignment error for %s: Mismatched array lengths", symbol)
		return nil, helpers.NewDataSourceError("data alignment error for "+symbol, nil)
	}

	// 2. Data cleaning
	bars := make([]models.MPriceBar, 0, n)
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			s.Logger.Debug("Invalid OHLCV data received for %s at index %d", symbol, i)
			continue
		}

		bar := models.MPriceBar{
			Symbol:    symbol,
			Timestamp: ts,
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    *quote.Volume[i],
		}

		if bar.Close <= 0 || bar.Volume < 0 {
			s.Logger.Debug("Skipping invalid point for %s: close=%f, volume=%f", symbol, bar.Close, bar.Volume)
			continue
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, helpers.NewDataSourceError("no valid data points for "+symbol, nil)
	}

	// 3. Sort by timestamp
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp < bars[j].Timestamp
	})

	s.Logger.Info("Fetched %s: %d daily bars [%s -> %s]", symbol, len(bars),
		models.DayOfUnix(bars[0].Timestamp), models.DayOfUnix(bars[len(bars)-1].Timestamp))

	return bars, nil
}
