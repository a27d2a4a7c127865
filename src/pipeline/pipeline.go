package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"market-buzz/src/analysis"
	"market-buzz/src/helpers"
	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
	"market-buzz/src/notify"
	"market-buzz/src/storage"
	"market-buzz/src/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

// Pipeline fetches both series of a pair, through the cache when one is
// configured, and turns them into a correlation snapshot. Cache, Notifier and
// Health are optional.
type Pipeline struct {
	Config   *models.MConfig
	Stocks   interfaces.IStockSource
	Social   interfaces.ISocialSource
	Analysis *analysis.AnalysisFacade
	Cache    interfaces.ICache
	Notifier interfaces.INotifier
	Health   interfaces.IHealthReporter
	Logger   *logger.Logger
	CacheTTL time.Duration

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewPipeline(
	cfg *models.MConfig,
	stocks interfaces.IStockSource,
	social interfaces.ISocialSource,
	facade *analysis.AnalysisFacade,
	log *logger.Logger,
) *Pipeline {
	if log == nil {
		log = logger.NewLogger(cfg, "Pipeline")
	}
	if facade == nil {
		facade = analysis.NewAnalysisFacade(cfg, nil, log)
	}

	return &Pipeline{
		Config:   cfg,
		Stocks:   stocks,
		Social:   social,
		Analysis: facade,
		Logger:   log,
		CacheTTL: time.Duration(cfg.Storage.CacheTTLMinutes) * time.Minute,
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// Normalize fills in the default range and validates a request.
func (p *Pipeline) Normalize(req models.MCorrelationRequest) (models.MCorrelationRequest, error) {
	req.Symbol = strings.TrimSpace(req.Symbol)
	req.Subreddit = strings.TrimPrefix(strings.TrimSpace(req.Subreddit), "r/")

	if req.RangeDays == 0 {
		req.RangeDays = p.Config.Market.DefaultRangeDays
		if req.RangeDays == 0 {
			req.RangeDays = utils.DefaultRangeDays
		}
	}

	if req.Symbol == "" {
		return req, helpers.NewValidationError("symbol is required", nil)
	}
	if req.Subreddit == "" {
		return req, helpers.NewValidationError("subreddit is required", nil)
	}
	if req.RangeDays < 1 || req.RangeDays > utils.MaxRangeDays {
		return req, helpers.NewValidationError(
			fmt.Sprintf("range must be between 1 and %d days, got %d", utils.MaxRangeDays, req.RangeDays), nil)
	}
	return req, nil
}

// -----------------------------------------------------------------------------

// Run computes the snapshot of one (symbol, subreddit) pair. Both series are
// fetched concurrently; the first failure cancels the other fetch.
func (p *Pipeline) Run(ctx context.Context, req models.MCorrelationRequest) (*models.MSnapshot, error) {
	req, err := p.Normalize(req)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := p.Logger.WithField("run_id", runID)
	started := p.now()

	var bars []models.MPriceBar
	var posts []models.MSocialPost

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bars, err = p.StockBars(gctx, req.Symbol, req.RangeDays)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = p.SocialPosts(gctx, req.Subreddit, req.RangeDays)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	volatility := p.Analysis.BuildVolatilitySeries(req.Symbol, bars)
	popularity := p.Analysis.BuildPopularitySeries(posts)

	result, err := p.Analysis.Correlate(volatility, popularity)
	if err != nil {
		return nil, fmt.Errorf("correlating %s with r/%s: %w", req.Symbol, req.Subreddit, err)
	}

	log.Info("%s vs r/%s over %dd: r=%.3f (%s), p=%.3f, n=%d in %v",
		req.Symbol, req.Subreddit, req.RangeDays, result.Coefficient, result.Strength,
		result.PValue, result.SampleSize, p.now().Sub(started).Round(time.Millisecond))

	return &models.MSnapshot{
		RunID:       runID,
		Symbol:      req.Symbol,
		Subreddit:   req.Subreddit,
		RangeDays:   req.RangeDays,
		Volatility:  volatility,
		Popularity:  popularity,
		Correlation: result,
		GeneratedAt: p.now().UTC(),
	}, nil
}

// -----------------------------------------------------------------------------

// StockBars returns the daily bars of symbol, from the cache when fresh.
func (p *Pipeline) StockBars(ctx context.Context, symbol string, rangeDays int) ([]models.MPriceBar, error) {
	key := storage.CacheKey(storage.KindBars, symbol, rangeDays)

	bars, err := fetchCached(ctx, p, key, func() ([]models.MPriceBar, error) {
		return p.Stocks.FetchDailyBars(ctx, symbol, rangeDays)
	})
	if err != nil {
		p.reportFailure(models.ServiceStockSource, fmt.Sprintf("Could not load prices for %s", symbol), err)
		return nil, err
	}

	p.setServing(models.ServiceStockSource, true)
	return bars, nil
}

// -----------------------------------------------------------------------------

// SocialPosts returns the recent posts of subreddit, from the cache when fresh.
func (p *Pipeline) SocialPosts(ctx context.Context, subreddit string, rangeDays int) ([]models.MSocialPost, error) {
	key := storage.CacheKey(storage.KindPosts, subreddit, rangeDays)

	posts, err := fetchCached(ctx, p, key, func() ([]models.MSocialPost, error) {
		return p.Social.FetchPosts(ctx, subreddit, rangeDays)
	})
	if err != nil {
		p.reportFailure(models.ServiceSocialSource, fmt.Sprintf("Could not load posts for r/%s", subreddit), err)
		return nil, err
	}

	p.setServing(models.ServiceSocialSource, true)
	return posts, nil
}

// -----------------------------------------------------------------------------

// VolatilitySeries fetches the bars of symbol and derives its daily volatility.
func (p *Pipeline) VolatilitySeries(ctx context.Context, symbol string, rangeDays int) ([]models.MVolatilityPoint, error) {
	bars, err := p.StockBars(ctx, symbol, rangeDays)
	if err != nil {
		return nil, err
	}
	return p.Analysis.BuildVolatilitySeries(symbol, bars), nil
}

// -----------------------------------------------------------------------------

// PopularitySeries fetches the posts of subreddit and derives its daily popularity.
func (p *Pipeline) PopularitySeries(ctx context.Context, subreddit string, rangeDays int) ([]models.MPopularityPoint, error) {
	posts, err := p.SocialPosts(ctx, subreddit, rangeDays)
	if err != nil {
		return nil, err
	}
	return p.Analysis.BuildPopularitySeries(posts), nil
}

// -----------------------------------------------------------------------------

// CleanupCache drops expired cache entries.
func (p *Pipeline) CleanupCache(ctx context.Context) {
	if p.Cache == nil {
		return
	}
	if _, err := p.Cache.CleanupExpired(ctx); err != nil {
		p.Logger.Warning("Cache cleanup failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

// fetchCached serves key from the cache or calls fetch and stores the result.
// Cache failures only cost a refetch.
func fetchCached[T any](ctx context.Context, p *Pipeline, key string, fetch func() ([]T, error)) ([]T, error) {
	if p.Cache != nil {
		payload, found, err := p.Cache.Get(ctx, key)
		switch {
		case err != nil:
			p.Logger.Warning("Cache read %s failed, fetching directly: %v", key, err)
		case found:
			var items []T
			if err := json.Unmarshal(payload, &items); err == nil {
				p.Logger.Debug("Cache hit %s (%d items)", key, len(items))
				return items, nil
			}
			p.Logger.Warning("Discarding undecodable cache entry %s", key)
		}
	}

	items, err := fetch()
	if err != nil {
		return nil, err
	}

	if p.Cache != nil && p.CacheTTL > 0 {
		payload, err := json.Marshal(items)
		if err == nil {
			err = p.Cache.Set(ctx, key, payload, p.CacheTTL)
		}
		if err != nil {
			p.Logger.Warning("Cache write %s failed: %v", key, err)
		}
	}

	return items, nil
}

// -----------------------------------------------------------------------------

func (p *Pipeline) reportFailure(service, message string, err error) {
	// The sibling fetch failed first; that failure is the one worth reporting.
	if errors.Is(err, context.Canceled) {
		return
	}

	p.Logger.Error("%s: %v", message, err)
	p.setServing(service, false)

	if p.Notifier != nil {
		p.Notifier.Notify(notify.New(models.NotifyError, fmt.Sprintf("%s: %v", message, err)))
	}
}

// -----------------------------------------------------------------------------

func (p *Pipeline) setServing(service string, serving bool) {
	if p.Health != nil {
		p.Health.SetServing(service, serving)
	}
}
