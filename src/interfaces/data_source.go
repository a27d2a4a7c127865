package interfaces

import (
	"context"

	"market-buzz/src/models"
)

// -----------------------------------------------------------------------------
// IStockSource fetches daily OHLCV bars for a market symbol.
// -----------------------------------------------------------------------------

type IStockSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchDailyBars retrieves one bar per trading day covering the last
	// rangeDays calendar days, oldest first.
	FetchDailyBars(ctx context.Context, symbol string, rangeDays int) ([]models.MPriceBar, error)
}

// -----------------------------------------------------------------------------
// ISocialSource fetches recent posts of a community.
// -----------------------------------------------------------------------------

type ISocialSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchPosts retrieves the posts created during the last rangeDays days.
	FetchPosts(ctx context.Context, subreddit string, rangeDays int) ([]models.MSocialPost, error)
}
