package core

import "math"

// -----------------------------------------------------------------------------

// CalculateChangePercent calculates percentage change in percent.
func CalculateChangePercent(current, previous float64) float64 {
	if previous <= 0 {
		return 0.0
	}
	return (current - previous) / previous * 100
}

// -----------------------------------------------------------------------------

// CalculateRangePercent is the intraday high-low span relative to the open.
func CalculateRangePercent(high, low, open float64) float64 {
	if open <= 0 || high < low {
		return 0.0
	}
	return (high - low) / open * 100
}

// -----------------------------------------------------------------------------

// CalculateVolumeSpike is how far volume sits above the average, in percent.
// Below-average volume is not a spike and reports 0.
func CalculateVolumeSpike(volume, avgVolume float64) float64 {
	if avgVolume <= 0 {
		return 0.0
	}
	return math.Max(0, (volume/avgVolume-1)*100)
}

// -----------------------------------------------------------------------------

// CalculateVolatility blends the close-to-close move with the intraday range.
func CalculateVolatility(dailyChange, dayRange float64) float64 {
	return (math.Abs(dailyChange) + math.Max(0, dayRange)) / 2
}
