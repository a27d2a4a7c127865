package pipeline

import (
	"context"
	"time"

	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
	"market-buzz/src/notify"
)

// MarketChecker reports whether any tracked exchange is trading right now.
// utils.MarketScheduler satisfies it.
type MarketChecker interface {
	AnyMarketOpen() bool
}

// -----------------------------------------------------------------------------

// Refresher recomputes every configured pair on a fixed interval and pushes
// the snapshots to the exchanger.
type Refresher struct {
	Pipeline  *Pipeline
	Exchanger interfaces.IDataExchanger
	Markets   MarketChecker // Optional, nil refreshes on every tick
	Notifier  interfaces.INotifier
	Pairs     []models.MCorrelationRequest
	Interval  time.Duration
	Logger    *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRefresher(p *Pipeline, exchanger interfaces.IDataExchanger, markets MarketChecker, pairs []models.MCorrelationRequest, interval time.Duration) *Refresher {
	return &Refresher{
		Pipeline:  p,
		Exchanger: exchanger,
		Markets:   markets,
		Notifier:  p.Notifier,
		Pairs:     pairs,
		Interval:  interval,
		Logger:    logger.NewLogger(p.Config, "Refresher"),
	}
}

// -----------------------------------------------------------------------------

// Run refreshes once right away, so clients have data on startup, then on
// every tick until ctx is cancelled. Ticks are skipped while every tracked
// market is closed.
func (r *Refresher) Run(ctx context.Context) {
	r.RefreshOnce(ctx)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("Refresh loop stopped")
			return
		case <-ticker.C:
			if r.Markets != nil && !r.Markets.AnyMarketOpen() {
				r.Logger.Info("All markets are closed. Skipping refresh.")
				continue
			}
			r.RefreshOnce(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// RefreshOnce runs every pair sequentially and returns how many succeeded.
// Sequential runs keep the request rate towards both APIs low.
func (r *Refresher) RefreshOnce(ctx context.Context) int {
	r.Pipeline.CleanupCache(ctx)

	succeeded := 0
	for _, pair := range r.Pairs {
		if ctx.Err() != nil {
			return succeeded
		}

		snapshot, err := r.Pipeline.Run(ctx, pair)
		if err != nil {
			r.Logger.Warning("Refresh of %s failed: %v", models.PairKey(pair.Symbol, pair.Subreddit), err)
			continue
		}

		succeeded++
		if r.Exchanger != nil {
			r.Exchanger.Broadcast(snapshot)
		}
	}

	r.Logger.Info("Refreshed %d/%d pairs", succeeded, len(r.Pairs))
	if succeeded == 0 && len(r.Pairs) > 0 && r.Notifier != nil && ctx.Err() == nil {
		r.Notifier.Notify(notify.New(models.NotifyWarning, "Refresh produced no snapshot; showing previous data"))
	}
	return succeeded
}
