package interfaces

import (
	"context"

	"market-buzz/src/models"
)

// -----------------------------------------------------------------------------
// ICorrelationService computes series and correlation snapshots on demand.
// -----------------------------------------------------------------------------

type ICorrelationService interface {

	// Run computes the full snapshot of one pair.
	Run(ctx context.Context, req models.MCorrelationRequest) (*models.MSnapshot, error)

	// -----------------------------------------------------------------------------

	// VolatilitySeries returns the daily volatility of a symbol.
	VolatilitySeries(ctx context.Context, symbol string, rangeDays int) ([]models.MVolatilityPoint, error)

	// -----------------------------------------------------------------------------

	// PopularitySeries returns the daily popularity of a subreddit.
	PopularitySeries(ctx context.Context, subreddit string, rangeDays int) ([]models.MPopularityPoint, error)
}
