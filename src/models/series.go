package models

// MVolatilityPoint summarises one trading day of price movement. All
// percentages are expressed in percent, not fractions.
type MVolatilityPoint struct {
	Date        MCalendarDay `json:"date"`
	Volatility  float64      `json:"volatility"`
	DailyChange float64      `json:"daily_change"`
	DayRange    float64      `json:"day_range"`
	VolumeSpike float64      `json:"volume_spike"`
}

// MPopularityPoint aggregates the posts created on one calendar day.
type MPopularityPoint struct {
	Date          MCalendarDay `json:"date"`
	Popularity    float64      `json:"popularity"`
	Posts         int          `json:"posts"`
	AvgScore      float64      `json:"avg_score"`
	TotalComments int          `json:"total_comments"`
}
