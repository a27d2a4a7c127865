package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/models"
	"market-buzz/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "^GSPC", "exchangeName": "SNP"},
      "timestamp": [1717594200, 1717421400, 1717507800, 1717680600],
      "indicators": {"quote": [{
        "open":   [5340.0, 5297.1, 5283.4, null],
        "high":   [5375.1, 5302.1, 5354.2, 5360.0],
        "low":    [5331.3, 5234.3, 5283.4, 5340.0],
        "close":  [5354.0, 5283.4, 5291.3, 5352.9],
        "volume": [3.1e9, 3.4e9, 3.0e9, 2.9e9]
      }]}
    }],
    "error": null
  }
}`

type fakeNetwork struct {
	url    string
	params map[string]string
	body   []byte
	err    error
}

func (f *fakeNetwork) Get(_ context.Context, url string, params map[string]string) ([]byte, error) {
	f.url = url
	f.params = params
	return f.body, f.err
}

func newTestSource(netMgr *fakeNetwork) *YahooFinanceSource {
	cfg := &models.MConfig{Market: models.MMarketConfig{BaseURL: "https://chart.test/"}}
	s := NewYahooFinanceSource(cfg, netMgr)
	s.now = func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestFetchDailyBars_ParsesAndSorts(t *testing.T) {
	netMgr := &fakeNetwork{body: []byte(chartFixture)}
	s := newTestSource(netMgr)

	bars, err := s.FetchDailyBars(context.Background(), "^GSPC", 7)
	require.NoError(t, err)

	assert.Equal(t, "https://chart.test/v8/finance/chart/%5EGSPC", netMgr.url)
	assert.Equal(t, "1d", netMgr.params["interval"])
	assert.Equal(t, strconv.FormatInt(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC).Unix(), 10), netMgr.params["period1"])
	assert.Equal(t, strconv.FormatInt(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC).Unix(), 10), netMgr.params["period2"])

	// The bar with a null open is dropped.
	require.Len(t, bars, 3)
	assert.Equal(t, int64(1717421400), bars[0].Timestamp)
	assert.Equal(t, int64(1717507800), bars[1].Timestamp)
	assert.Equal(t, int64(1717594200), bars[2].Timestamp)
	assert.Equal(t, 5283.4, bars[0].Close)
	assert.Equal(t, "^GSPC", bars[2].Symbol)
}

func TestFetchDailyBars_Errors(t *testing.T) {
	cases := map[string]string{
		"api error":       `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
		"empty result":    `{"chart":{"result":[],"error":null}}`,
		"misaligned":      `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"open":[1],"high":[1,2],"low":[1,2],"close":[1,2],"volume":[1,2]}]}}]}}`,
		"no valid points": `{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[{"open":[1],"high":[1],"low":[1],"close":[0],"volume":[1]}]}}]}}`,
		"malformed":       `{"chart":`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestSource(&fakeNetwork{body: []byte(body)})
			_, err := s.FetchDailyBars(context.Background(), "ZZZZ", 30)

			require.Error(t, err)
			var dsErr *helpers.DataSourceError
			assert.True(t, errors.As(err, &dsErr), "got %v", err)
		})
	}
}

func TestFetchDailyBars_InvalidArguments(t *testing.T) {
	s := newTestSource(&fakeNetwork{})

	_, err := s.FetchDailyBars(context.Background(), " ", 30)
	assert.Error(t, err)

	_, err = s.FetchDailyBars(context.Background(), "AAPL", 0)
	assert.Error(t, err)
}

func TestFetchDailyBars_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	cfg := &models.MConfig{
		Market:  models.MMarketConfig{BaseURL: srv.URL},
		Network: models.MNetworkConfig{RequestTimeout: 5},
	}
	s := NewYahooFinanceSource(cfg, network.NewAsyncNetworkManager(cfg, nil))

	bars, err := s.FetchDailyBars(context.Background(), "^GSPC", 30)
	require.NoError(t, err)
	assert.Len(t, bars, 3)
}
