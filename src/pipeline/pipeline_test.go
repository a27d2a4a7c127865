package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/logger"
	"market-buzz/src/models"
	"market-buzz/src/notify"
	"market-buzz/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) int64 {
	return time.Date(2024, 6, day, hour, 0, 0, 0, time.UTC).Unix()
}

type fakeStocks struct {
	calls int32
	bars  []models.MPriceBar
	err   error
}

func (f *fakeStocks) Name() string { return "fake-stocks" }

func (f *fakeStocks) FetchDailyBars(ctx context.Context, symbol string, rangeDays int) ([]models.MPriceBar, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

type fakeSocial struct {
	calls int32
	posts []models.MSocialPost
	err   error
	block bool
}

func (f *fakeSocial) Name() string { return "fake-social" }

func (f *fakeSocial) FetchPosts(ctx context.Context, subreddit string, rangeDays int) ([]models.MSocialPost, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

// brokenCache fails every operation.
type brokenCache struct{}

func (brokenCache) Initialize(context.Context) error { return errors.New("down") }
func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, helpers.NewCacheError("get", errors.New("down"))
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return helpers.NewCacheError("set", errors.New("down"))
}
func (brokenCache) CleanupExpired(context.Context) (int64, error) { return 0, errors.New("down") }
func (brokenCache) Close() error                                   { return nil }

type healthRecorder struct {
	mu     sync.Mutex
	status map[string]bool
}

func (h *healthRecorder) SetServing(service string, serving bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == nil {
		h.status = make(map[string]bool)
	}
	h.status[service] = serving
}

func testConfig() *models.MConfig {
	return &models.MConfig{
		Market:  models.MMarketConfig{DefaultRangeDays: 30},
		Storage: models.MStorageConfig{CacheTTLMinutes: 60},
	}
}

func sampleData() ([]models.MPriceBar, []models.MSocialPost) {
	var bars []models.MPriceBar
	var posts []models.MSocialPost
	for d := 3; d <= 7; d++ {
		swing := float64(d - 2)
		bars = append(bars, models.MPriceBar{
			Symbol: "^GSPC", Timestamp: at(d, 13), Open: 100, High: 100 + swing, Low: 100 - swing, Close: 100, Volume: 1,
		})
		posts = append(posts, models.MSocialPost{ID: "p", Score: d * 10, CreatedUTC: at(d, 18)})
	}
	// A weekend post has no matching trading day.
	posts = append(posts, models.MSocialPost{Score: 999, CreatedUTC: at(8, 12)})
	return bars, posts
}

func newTestPipeline(stocks *fakeStocks, social *fakeSocial) *Pipeline {
	return NewPipeline(testConfig(), stocks, social, nil, logger.NewLogger(nil, "PipelineTest"))
}

func TestRun_ComputesSnapshot(t *testing.T) {
	bars, posts := sampleData()
	health := &healthRecorder{}
	p := newTestPipeline(&fakeStocks{bars: bars}, &fakeSocial{posts: posts})
	p.Health = health

	snap, err := p.Run(context.Background(), models.MCorrelationRequest{Symbol: " ^GSPC ", Subreddit: "r/stocks"})
	require.NoError(t, err)

	assert.NotEmpty(t, snap.RunID)
	assert.Equal(t, "^GSPC", snap.Symbol)
	assert.Equal(t, "stocks", snap.Subreddit)
	assert.Equal(t, 30, snap.RangeDays)
	assert.Len(t, snap.Volatility, 5)
	assert.Len(t, snap.Popularity, 6)
	assert.Equal(t, 5, snap.Correlation.SampleSize)
	assert.InDelta(t, 1.0, snap.Correlation.Coefficient, 1e-9)
	assert.Equal(t, models.StrengthStrong, snap.Correlation.Strength)
	assert.False(t, snap.GeneratedAt.IsZero())

	assert.True(t, health.status[models.ServiceStockSource])
	assert.True(t, health.status[models.ServiceSocialSource])
}

func TestRun_ValidatesRequest(t *testing.T) {
	p := newTestPipeline(&fakeStocks{}, &fakeSocial{})

	cases := []models.MCorrelationRequest{
		{Symbol: "", Subreddit: "stocks"},
		{Symbol: "^GSPC", Subreddit: "  "},
		{Symbol: "^GSPC", Subreddit: "stocks", RangeDays: -1},
		{Symbol: "^GSPC", Subreddit: "stocks", RangeDays: 366},
	}
	for _, req := range cases {
		_, err := p.Run(context.Background(), req)
		var valErr *helpers.ValidationError
		assert.True(t, errors.As(err, &valErr), "request %+v", req)
	}
}

func TestRun_FetchFailureNotifies(t *testing.T) {
	recorder := &notify.Recorder{}
	health := &healthRecorder{}
	upstream := helpers.NewNetworkError("GET /v8/finance/chart", errors.New("status 500"))

	p := newTestPipeline(&fakeStocks{err: upstream}, &fakeSocial{block: true})
	p.Notifier = recorder
	p.Health = health

	_, err := p.Run(context.Background(), models.MCorrelationRequest{Symbol: "^GSPC", Subreddit: "stocks", RangeDays: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)

	// The cancelled social fetch is not reported.
	msgs := recorder.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.NotifyError, msgs[0].Level)
	assert.Contains(t, msgs[0].Message, "^GSPC")

	assert.False(t, health.status[models.ServiceStockSource])
	_, reported := health.status[models.ServiceSocialSource]
	assert.False(t, reported)
}

func TestRun_UsesCache(t *testing.T) {
	bars, posts := sampleData()
	stocks := &fakeStocks{bars: bars}
	social := &fakeSocial{posts: posts}
	p := newTestPipeline(stocks, social)

	cfg := &models.MConfig{Storage: models.MStorageConfig{DBPath: filepath.Join(t.TempDir(), "cache.db")}}
	cache, err := storage.NewAsyncSQLiteDB(cfg, logger.NewLogger(nil, "CacheTest"))
	require.NoError(t, err)
	require.NoError(t, cache.Initialize(context.Background()))
	defer cache.Close()
	p.Cache = cache

	req := models.MCorrelationRequest{Symbol: "^GSPC", Subreddit: "stocks", RangeDays: 14}
	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&stocks.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&social.calls))
	assert.Equal(t, first.Correlation, second.Correlation)
	assert.NotEqual(t, first.RunID, second.RunID)

	// A different range is a different cache entry.
	_, err = p.Run(context.Background(), models.MCorrelationRequest{Symbol: "^GSPC", Subreddit: "stocks", RangeDays: 7})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&stocks.calls))
}

func TestRun_CacheFailuresAreBypassed(t *testing.T) {
	bars, posts := sampleData()
	p := newTestPipeline(&fakeStocks{bars: bars}, &fakeSocial{posts: posts})
	p.Cache = brokenCache{}

	snap, err := p.Run(context.Background(), models.MCorrelationRequest{Symbol: "^GSPC", Subreddit: "stocks"})
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Correlation.SampleSize)

	p.CleanupCache(context.Background())
}

func TestRun_NoOverlap(t *testing.T) {
	bars, _ := sampleData()
	posts := []models.MSocialPost{{Score: 5, CreatedUTC: at(20, 12)}}
	p := newTestPipeline(&fakeStocks{bars: bars}, &fakeSocial{posts: posts})

	snap, err := p.Run(context.Background(), models.MCorrelationRequest{Symbol: "^GSPC", Subreddit: "stocks"})
	require.NoError(t, err)
	assert.Equal(t, models.MCorrelationResult{Coefficient: 0, Strength: models.StrengthVeryWeak, PValue: 1, SampleSize: 0}, snap.Correlation)
}

func TestSeries(t *testing.T) {
	bars, posts := sampleData()
	p := newTestPipeline(&fakeStocks{bars: bars}, &fakeSocial{posts: posts})

	vol, err := p.VolatilitySeries(context.Background(), "^GSPC", 30)
	require.NoError(t, err)
	assert.Len(t, vol, 5)

	pop, err := p.PopularitySeries(context.Background(), "stocks", 30)
	require.NoError(t, err)
	assert.Len(t, pop, 6)

	failing := newTestPipeline(&fakeStocks{err: errors.New("down")}, &fakeSocial{err: errors.New("down")})
	_, err = failing.VolatilitySeries(context.Background(), "^GSPC", 30)
	assert.Error(t, err)
	_, err = failing.PopularitySeries(context.Background(), "stocks", 30)
	assert.Error(t, err)
}
