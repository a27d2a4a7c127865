package models

import "time"

// MCorrelationRequest identifies the pair of series to correlate.
type MCorrelationRequest struct {
	Symbol    string `json:"symbol"`
	Subreddit string `json:"subreddit"`
	RangeDays int    `json:"range_days"`
}

// -----------------------------------------------------------------------------

// MSnapshot is everything a client needs to render one correlation panel.
type MSnapshot struct {
	RunID       string             `json:"run_id"`
	Symbol      string             `json:"symbol"`
	Subreddit   string             `json:"subreddit"`
	RangeDays   int                `json:"range_days"`
	Volatility  []MVolatilityPoint `json:"volatility"`
	Popularity  []MPopularityPoint `json:"popularity"`
	Correlation MCorrelationResult `json:"correlation"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Key identifies the pair a snapshot belongs to.
func (s MSnapshot) Key() string {
	return PairKey(s.Symbol, s.Subreddit)
}

// -----------------------------------------------------------------------------

// PairKey builds the key used for latest-snapshot bookkeeping.
func PairKey(symbol, subreddit string) string {
	return symbol + "|" + subreddit
}
